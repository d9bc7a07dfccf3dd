package session

import (
	"smppgw/core/lib/pdu"
)

// unboundVariant waits for the unbind_resp of an unbind the session sent.
// The peer is owed no responses any more.
type unboundVariant struct{}

func (unboundVariant) State() State {
	return Unbound
}

func (v unboundVariant) unexpected(header pdu.Header, rh ResponseHandler) error {
	pduLogger(rh, header).Warn().Msg("ignoring pdu after unbind")
	// Peer requests land here too and fail whatever request of ours
	// shares their sequence number.
	failPending(rh, header.SequenceNumber, &UnexpectedPduError{Command: header.CommandID, State: Unbound})
	return nil
}

func (v unboundVariant) ProcessBindResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v unboundVariant) ProcessSubmitSmResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v unboundVariant) ProcessQuerySmResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v unboundVariant) ProcessDeliverSm(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v unboundVariant) ProcessEnquireLink(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v unboundVariant) ProcessEnquireLinkResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (unboundVariant) ProcessGenericNack(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return completeNack(header, rh)
}

func (v unboundVariant) ProcessUnbind(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (unboundVariant) ProcessUnbindResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return completeHeader(header, rh)
}

func (v unboundVariant) ProcessUnknownCid(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}
