package session

import (
	"smppgw/core/lib/pdu"
)

// closedVariant drops everything.
type closedVariant struct{}

func (closedVariant) State() State {
	return Closed
}

func (closedVariant) drop(header pdu.Header, rh ResponseHandler) error {
	pduLogger(rh, header).Debug().Msg("dropping pdu on closed session")
	return nil
}

func (v closedVariant) ProcessBindResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessSubmitSmResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessQuerySmResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessDeliverSm(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessEnquireLink(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessEnquireLinkResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessGenericNack(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessUnbind(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessUnbindResp(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}

func (v closedVariant) ProcessUnknownCid(header pdu.Header, _ []byte, rh ResponseHandler) error {
	return v.drop(header, rh)
}
