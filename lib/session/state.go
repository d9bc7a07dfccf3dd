package session

import (
	"fmt"

	"smppgw/core/lib/automaton"
	"smppgw/core/lib/pdu"
)

// State is the protocol state of a session.
type State automaton.State

const (
	Open State = iota + 1
	BoundTransmitter
	BoundReceiver
	BoundTransceiver
	Outbound
	Unbound
	Closed
)

var stateNames = map[State]string{
	Open:             "OPEN",
	BoundTransmitter: "BOUND_TX",
	BoundReceiver:    "BOUND_RX",
	BoundTransceiver: "BOUND_TRX",
	Outbound:         "OUTBOUND",
	Unbound:          "UNBOUND",
	Closed:           "CLOSED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsBound reports whether bind negotiation completed successfully.
func (s State) IsBound() bool {
	return s == BoundTransmitter || s == BoundReceiver || s == BoundTransceiver
}

// IsTransmittable reports whether submit_sm and query_sm may be sent.
func (s State) IsTransmittable() bool {
	return s == BoundTransmitter || s == BoundTransceiver
}

// IsReceivable reports whether deliver_sm may be received.
func (s State) IsReceivable() bool {
	return s == BoundReceiver || s == BoundTransceiver
}

// IsNegotiating reports whether a bind is the only legal request.
func (s State) IsNegotiating() bool {
	return s == Open || s == Outbound
}

func (s State) automaton() automaton.State {
	return automaton.State(s)
}

// BindType is the capability a session binds with.
type BindType int

const (
	BindTransmitter BindType = iota + 1
	BindReceiver
	BindTransceiver
)

func (t BindType) String() string {
	switch t {
	case BindTransmitter:
		return "transmitter"
	case BindReceiver:
		return "receiver"
	case BindTransceiver:
		return "transceiver"
	default:
		return fmt.Sprintf("bind_type(%d)", int(t))
	}
}

// ParseBindType maps the names returned by String back to a BindType.
func ParseBindType(name string) (BindType, error) {
	switch name {
	case "transmitter", "tx":
		return BindTransmitter, nil
	case "receiver", "rx":
		return BindReceiver, nil
	case "transceiver", "trx":
		return BindTransceiver, nil
	default:
		return 0, fmt.Errorf("unknown bind type %q", name)
	}
}

// State is the state a successful bind of this type leads to.
func (t BindType) State() State {
	switch t {
	case BindTransmitter:
		return BoundTransmitter
	case BindReceiver:
		return BoundReceiver
	case BindTransceiver:
		return BoundTransceiver
	default:
		return 0
	}
}

// Command is the bind request command of this type.
func (t BindType) Command() pdu.CommandID {
	switch t {
	case BindTransmitter:
		return pdu.CommandBindTransmitter
	case BindReceiver:
		return pdu.CommandBindReceiver
	case BindTransceiver:
		return pdu.CommandBindTransceiver
	default:
		return 0
	}
}

// bindTypeOf returns the bind type that response answers.
func bindTypeOf(response pdu.CommandID) (BindType, bool) {
	for _, t := range []BindType{BindTransmitter, BindReceiver, BindTransceiver} {
		if t.Command().Response() == response {
			return t, true
		}
	}
	return 0, false
}
