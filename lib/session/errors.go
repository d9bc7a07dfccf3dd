package session

import (
	"errors"
	"fmt"

	"smppgw/core/lib/pdu"
	"smppgw/core/lib/pending"
)

var (
	ErrSessionClosed      = errors.New("session is closed")
	ErrNotBound           = errors.New("session is not bound for this request")
	ErrNotOpen            = errors.New("session is not waiting for a bind")
	ErrBindInProgress     = errors.New("a bind request is already outstanding")
	ErrUnsupportedCommand = errors.New("command cannot be sent as a request")
	ErrDuplicateSequence  = pending.ErrDuplicateSequence
	ErrAlreadyResolved    = pending.ErrAlreadyResolved
)

// InvalidResponseError is the outcome of a request whose response could not be decoded.
type InvalidResponseError struct {
	Command pdu.CommandID
	Cause   error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Command, e.Cause)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Cause
}

// UnmatchedResponseError describes a response without a pending request.
// It is only logged.
type UnmatchedResponseError struct {
	Command  pdu.CommandID
	Sequence uint32
}

func (e *UnmatchedResponseError) Error() string {
	return fmt.Sprintf("no request with sequence number %d for %s", e.Sequence, e.Command)
}

// UnexpectedPduError is the outcome of a request that was answered
// with a PDU that is illegal in the current state.
type UnexpectedPduError struct {
	Command pdu.CommandID
	State   State
}

func (e *UnexpectedPduError) Error() string {
	return fmt.Sprintf("received unexpected %s in state %s", e.Command, e.State)
}

// UnknownCommandError is the outcome of a request that shares its
// sequence number with a PDU of an unknown command id.
type UnknownCommandError struct {
	Command pdu.CommandID
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("received unknown %s", e.Command)
}

// NegativeResponseError is the outcome of a request the peer rejected,
// either with a non-zero command_status or with a generic_nack.
type NegativeResponseError struct {
	Command pdu.CommandID
	Status  pdu.Status
}

func (e *NegativeResponseError) Error() string {
	return fmt.Sprintf("%s with status %s", e.Command, e.Status)
}
