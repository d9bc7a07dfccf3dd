package session

import "time"

// DefaultBindSequence is the sequence number assumed for the bind request
// until one is registered.
const DefaultBindSequence uint32 = 1

// MaxSequenceNumber is the largest sequence number a request may carry.
const MaxSequenceNumber uint32 = 0x7FFFFFFF

type Config struct {
	// TransactionTimeout bounds the time a request waits for its response.
	// Zero disables expiry.
	TransactionTimeout time.Duration
	// SweepInterval is how often expired requests are failed.
	SweepInterval time.Duration
	// EnquireLinkInterval is how often a bound session probes its peer.
	// Zero disables probing.
	EnquireLinkInterval time.Duration
	// BindTimeout bounds the time Bind waits for the bind response.
	BindTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		TransactionTimeout:  10 * time.Second,
		SweepInterval:       time.Second,
		EnquireLinkInterval: 30 * time.Second,
		BindTimeout:         10 * time.Second,
	}
}
