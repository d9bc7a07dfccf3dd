package session

import (
	"smppgw/core/lib/pdu"
)

// boundVariant serves the three bound states. Responses are correlated
// by their own sequence number.
type boundVariant struct {
	state State
}

func (v boundVariant) State() State {
	return v.state
}

// reject answers a PDU the bind type does not permit.
func (v boundVariant) reject(header pdu.Header, rh ResponseHandler, status pdu.Status) error {
	pduLogger(rh, header).Warn().Stringer("status", status).Msg("rejecting pdu")
	err := rh.SendGenericNack(status, header.SequenceNumber)
	if header.CommandID.IsResponse() {
		failPending(rh, header.SequenceNumber, &UnexpectedPduError{Command: header.CommandID, State: v.state})
	}
	return err
}

func (v boundVariant) ProcessBindResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.reject(header, rh, pdu.StatusAlyBnd)
}

func (v boundVariant) ProcessSubmitSmResp(header pdu.Header, body []byte, rh ResponseHandler) error {
	if !v.state.IsTransmittable() {
		return v.reject(header, rh, pdu.StatusInvBndSts)
	}
	return completeResponse(v.state, header, rh, func() (any, error) {
		return rh.Decoder().SubmitSmResp(body)
	})
}

func (v boundVariant) ProcessQuerySmResp(header pdu.Header, body []byte, rh ResponseHandler) error {
	if !v.state.IsTransmittable() {
		return v.reject(header, rh, pdu.StatusInvBndSts)
	}
	return completeResponse(v.state, header, rh, func() (any, error) {
		return rh.Decoder().QuerySmResp(body)
	})
}

func (v boundVariant) ProcessDeliverSm(header pdu.Header, body []byte, rh ResponseHandler) error {
	if !v.state.IsReceivable() {
		return v.reject(header, rh, pdu.StatusInvBndSts)
	}
	message, err := rh.Decoder().DeliverSm(body)
	if err != nil {
		pduLogger(rh, header).Error().Err(err).Msg("failed decoding deliver_sm")
		return rh.SendGenericNack(decodeStatus(err), header.SequenceNumber)
	}
	status := rh.AcceptDeliverSm(header, message)
	return rh.SendDeliverSmResp(status, header.SequenceNumber)
}

func (v boundVariant) ProcessEnquireLink(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return rh.SendEnquireLinkResp(header.SequenceNumber)
}

func (v boundVariant) ProcessEnquireLinkResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return completeHeader(header, rh)
}

func (v boundVariant) ProcessGenericNack(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return completeNack(header, rh)
}

func (v boundVariant) ProcessUnbind(header pdu.Header, _ []byte, rh ResponseHandler) error {
	err := rh.SendUnbindResp(header.SequenceNumber)
	rh.NotifyUnbound()
	return err
}

func (v boundVariant) ProcessUnbindResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return completeHeader(header, rh)
}

func (v boundVariant) ProcessUnknownCid(header pdu.Header, _ []byte, rh ResponseHandler) error {
	pduLogger(rh, header).Warn().Msg("unknown command id")
	err := rh.SendGenericNack(pdu.StatusInvCmdID, header.SequenceNumber)
	// Fails our request even when the peer originated the PDU and only
	// its sequence number collides, both directions number independently.
	failPending(rh, header.SequenceNumber, &UnknownCommandError{Command: header.CommandID})
	return err
}
