package session

import (
	"smppgw/core/lib/pdu"
)

// openVariant serves OPEN and OUTBOUND. The only legal PDU is the
// response to the outstanding bind request. Anything else fails that
// bind request without answering the peer.
type openVariant struct {
	state State
}

func (v openVariant) State() State {
	return v.state
}

func (v openVariant) ProcessBindResp(header pdu.Header, body []byte, rh ResponseHandler) error {
	return completeResponse(v.state, header, rh, func() (any, error) {
		return rh.Decoder().BindResp(header.CommandID, body)
	})
}

func (v openVariant) unexpected(header pdu.Header, rh ResponseHandler) error {
	cause := &UnexpectedPduError{Command: header.CommandID, State: v.state}
	if !failPending(rh, rh.BindSequence(), cause) {
		pduLogger(rh, header).Warn().Msg("ignoring pdu before bind")
		return nil
	}
	pduLogger(rh, header).Error().Err(cause).Msg("failed bind request")
	return nil
}

func (v openVariant) ProcessSubmitSmResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v openVariant) ProcessQuerySmResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v openVariant) ProcessDeliverSm(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v openVariant) ProcessEnquireLink(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v openVariant) ProcessEnquireLinkResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v openVariant) ProcessGenericNack(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v openVariant) ProcessUnbind(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v openVariant) ProcessUnbindResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}

func (v openVariant) ProcessUnknownCid(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.unexpected(header, rh)
}
