package pdu

import "fmt"

// DecodeError is returned when a PDU body is malformed.
// Status is the command_status to report to the peer in a generic_nack.
type DecodeError struct {
	Command CommandID
	Field   string
	Status  Status
	Cause   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pdu: failed decoding %s field %s (%s): %v", e.Command, e.Field, e.Status, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func decodeError(command CommandID, field string, status Status, cause error) *DecodeError {
	return &DecodeError{
		Command: command,
		Field:   field,
		Status:  status,
		Cause:   cause,
	}
}
