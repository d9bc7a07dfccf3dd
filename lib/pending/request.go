package pending

import (
	"context"
	"errors"
	"sync"
	"time"

	"smppgw/core/lib/pdu"
)

var ErrAlreadyResolved = errors.New("pending request was already resolved")

// Request is one outbound request that awaits its correlated response.
// Its outcome is set exactly once, either by Done or by Fail.
type Request struct {
	SequenceNumber uint32
	Expected       pdu.CommandID
	CreatedAt      time.Time

	mutex    sync.Mutex
	resolved chan struct{}
	value    any
	err      error
}

func NewRequest(sequenceNumber uint32, expected pdu.CommandID, createdAt time.Time) *Request {
	return &Request{
		SequenceNumber: sequenceNumber,
		Expected:       expected,
		CreatedAt:      createdAt,
		resolved:       make(chan struct{}),
	}
}

// Done completes the request with a response value.
func (r *Request) Done(value any) error {
	return r.complete(value, nil)
}

// Fail completes the request with an error.
func (r *Request) Fail(err error) error {
	if err == nil {
		panic("pending: Fail called with a nil error")
	}
	return r.complete(nil, err)
}

func (r *Request) complete(value any, err error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	select {
	case <-r.resolved:
		return ErrAlreadyResolved
	default:
	}
	r.value = value
	r.err = err
	close(r.resolved)
	return nil
}

// Resolved returns a channel that is closed once the request has an outcome.
func (r *Request) Resolved() <-chan struct{} {
	return r.resolved
}

// Outcome returns the outcome of a resolved request.
// The boolean is false while the request is still unresolved.
func (r *Request) Outcome() (value any, err error, ok bool) {
	select {
	case <-r.resolved:
	default:
		return nil, nil, false
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.value, r.err, true
}

// Wait blocks until the request is resolved or the context is done.
// A done context does not resolve the request.
func (r *Request) Wait(ctx context.Context) (any, error) {
	select {
	case <-r.resolved:
		value, err, _ := r.Outcome()
		return value, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
