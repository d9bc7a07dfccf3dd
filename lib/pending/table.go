package pending

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"smppgw/core/lib/pdu"
)

var ErrDuplicateSequence = errors.New("a request with this sequence number is already pending")

// TimeoutError is the outcome of a request that outlived its deadline.
type TimeoutError struct {
	Sequence uint32
	Expected pdu.CommandID
	Age      time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no %s for sequence number %d after %s", e.Expected, e.Sequence, e.Age)
}

// Clock returns the current time.
type Clock func() time.Time

type Option func(*Table)

// WithClock replaces the clock that stamps and expires requests.
func WithClock(clock Clock) Option {
	return func(t *Table) {
		t.now = clock
	}
}

// Table maps sequence numbers to requests that await a response.
// It is safe for concurrent use.
type Table struct {
	timeout time.Duration
	now     Clock

	mutex   sync.Mutex
	entries map[uint32]*Request
}

// NewTable creates a Table whose entries expire after timeout.
// A timeout of zero disables expiry.
func NewTable(timeout time.Duration, opts ...Option) *Table {
	t := &Table{
		timeout: timeout,
		now:     time.Now,
		entries: make(map[uint32]*Request),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register inserts a new request for sequenceNumber.
func (t *Table) Register(sequenceNumber uint32, expected pdu.CommandID) (*Request, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, ok := t.entries[sequenceNumber]; ok {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateSequence, sequenceNumber)
	}
	request := NewRequest(sequenceNumber, expected, t.now())
	t.entries[sequenceNumber] = request
	return request, nil
}

// Resolve removes and returns the request for sequenceNumber.
// Only the first caller for a registered request observes it,
// every later call reports false.
func (t *Table) Resolve(sequenceNumber uint32) (*Request, bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.resolveLocked(sequenceNumber)
}

func (t *Table) resolveLocked(sequenceNumber uint32) (*Request, bool) {
	request, ok := t.entries[sequenceNumber]
	if ok {
		delete(t.entries, sequenceNumber)
	}
	return request, ok
}

// Len returns the number of pending requests.
func (t *Table) Len() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.entries)
}

// Sweep removes every request that is older than the timeout at now
// and fails it with a TimeoutError. The expired requests are returned
// ordered by sequence number.
func (t *Table) Sweep(now time.Time) []*Request {
	if t.timeout <= 0 {
		return nil
	}
	t.mutex.Lock()
	var expired []*Request
	for sequenceNumber, request := range t.entries {
		if now.Sub(request.CreatedAt) < t.timeout {
			continue
		}
		if r, ok := t.resolveLocked(sequenceNumber); ok {
			expired = append(expired, r)
		}
	}
	t.mutex.Unlock()

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].SequenceNumber < expired[j].SequenceNumber
	})
	for _, request := range expired {
		_ = request.Fail(&TimeoutError{
			Sequence: request.SequenceNumber,
			Expected: request.Expected,
			Age:      now.Sub(request.CreatedAt),
		})
	}
	return expired
}

// FailAll removes every request and fails it with err.
// It returns the number of requests that were failed.
func (t *Table) FailAll(err error) int {
	t.mutex.Lock()
	entries := t.entries
	t.entries = make(map[uint32]*Request)
	t.mutex.Unlock()

	n := 0
	for _, request := range entries {
		if request.Fail(err) == nil {
			n++
		}
	}
	return n
}

// Now returns the current time of the table's clock.
func (t *Table) Now() time.Time {
	return t.now()
}
