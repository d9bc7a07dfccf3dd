package session

import (
	"errors"

	"github.com/rs/zerolog"

	"smppgw/core/lib/pdu"
)

// Variant is the behaviour of a session in one State.
// Each method handles one kind of incoming PDU. The returned error is
// only ever a failure to write to the peer, protocol anomalies are
// absorbed by failing a pending request or by logging.
type Variant interface {
	State() State
	ProcessBindResp(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessSubmitSmResp(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessQuerySmResp(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessDeliverSm(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessEnquireLink(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessEnquireLinkResp(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessGenericNack(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessUnbind(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessUnbindResp(header pdu.Header, body []byte, rh ResponseHandler) error
	ProcessUnknownCid(header pdu.Header, body []byte, rh ResponseHandler) error
}

var variants = map[State]Variant{
	Open:             openVariant{state: Open},
	Outbound:         openVariant{state: Outbound},
	BoundTransmitter: boundVariant{state: BoundTransmitter},
	BoundReceiver:    boundVariant{state: BoundReceiver},
	BoundTransceiver: boundVariant{state: BoundTransceiver},
	Unbound:          unboundVariant{},
	Closed:           closedVariant{},
}

// VariantOf returns the behaviour of state.
func VariantOf(state State) Variant {
	if v, ok := variants[state]; ok {
		return v
	}
	return closedVariant{}
}

func pduLogger(rh ResponseHandler, header pdu.Header) *zerolog.Logger {
	log := rh.Logger().With().
		Stringer("command", header.CommandID).
		Uint32("sequence", header.SequenceNumber).
		Logger()
	return &log
}

// decodeStatus is the command_status that reports err to the peer.
func decodeStatus(err error) pdu.Status {
	var decodeErr *pdu.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Status
	}
	return pdu.StatusSysErr
}

// failPending fails the request with sequenceNumber if there is one.
func failPending(rh ResponseHandler, sequenceNumber uint32, cause error) bool {
	request, ok := rh.RemovePending(sequenceNumber)
	if !ok {
		return false
	}
	_ = request.Fail(cause)
	return true
}

// completeResponse resolves the request that header answers with the
// value decode returns. Unmatched responses and decode failures are
// reported to the peer with a generic_nack.
func completeResponse(state State, header pdu.Header, rh ResponseHandler, decode func() (any, error)) error {
	log := pduLogger(rh, header)
	request, ok := rh.RemovePending(header.SequenceNumber)
	if !ok {
		log.Error().
			Err(&UnmatchedResponseError{Command: header.CommandID, Sequence: header.SequenceNumber}).
			Msg("dropping response")
		return rh.SendGenericNack(pdu.StatusInvDftMsgID, header.SequenceNumber)
	}
	if request.Expected != header.CommandID {
		log.Warn().Stringer("expected", request.Expected).Msg("response does not answer its request")
		_ = request.Fail(&UnexpectedPduError{Command: header.CommandID, State: state})
		return nil
	}
	if header.CommandStatus != pdu.StatusOK {
		_ = request.Fail(&NegativeResponseError{Command: header.CommandID, Status: header.CommandStatus})
		return nil
	}
	value, err := decode()
	if err != nil {
		log.Error().Err(err).Msg("failed decoding response")
		sendErr := rh.SendGenericNack(decodeStatus(err), header.SequenceNumber)
		_ = request.Fail(&InvalidResponseError{Command: header.CommandID, Cause: err})
		return sendErr
	}
	_ = request.Done(value)
	return nil
}

// completeHeader resolves the request that header answers with the header
// itself, for responses without a body. Unmatched responses are only logged.
func completeHeader(header pdu.Header, rh ResponseHandler) error {
	request, ok := rh.RemovePending(header.SequenceNumber)
	if !ok {
		pduLogger(rh, header).Warn().
			Err(&UnmatchedResponseError{Command: header.CommandID, Sequence: header.SequenceNumber}).
			Msg("dropping response")
		return nil
	}
	if header.CommandStatus != pdu.StatusOK {
		_ = request.Fail(&NegativeResponseError{Command: header.CommandID, Status: header.CommandStatus})
		return nil
	}
	_ = request.Done(header)
	return nil
}

// completeNack fails the request a generic_nack refers to.
func completeNack(header pdu.Header, rh ResponseHandler) error {
	request, ok := rh.RemovePending(header.SequenceNumber)
	if !ok {
		pduLogger(rh, header).Warn().
			Stringer("status", header.CommandStatus).
			Msg("generic_nack without a request")
		return nil
	}
	_ = request.Fail(&NegativeResponseError{Command: header.CommandID, Status: header.CommandStatus})
	return nil
}
