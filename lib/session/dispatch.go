package session

import (
	"smppgw/core/lib/pdu"
)

type handlerFunc func(v Variant, header pdu.Header, body []byte, rh ResponseHandler) error

// dispatchTable maps every command id a Variant has a handler for.
// Anything else goes to ProcessUnknownCid.
var dispatchTable = map[pdu.CommandID]handlerFunc{
	pdu.CommandBindReceiverResp:    Variant.ProcessBindResp,
	pdu.CommandBindTransmitterResp: Variant.ProcessBindResp,
	pdu.CommandBindTransceiverResp: Variant.ProcessBindResp,
	pdu.CommandSubmitSmResp:        Variant.ProcessSubmitSmResp,
	pdu.CommandQuerySmResp:         Variant.ProcessQuerySmResp,
	pdu.CommandDeliverSm:           Variant.ProcessDeliverSm,
	pdu.CommandEnquireLink:         Variant.ProcessEnquireLink,
	pdu.CommandEnquireLinkResp:     Variant.ProcessEnquireLinkResp,
	pdu.CommandGenericNack:         Variant.ProcessGenericNack,
	pdu.CommandUnbind:              Variant.ProcessUnbind,
	pdu.CommandUnbindResp:          Variant.ProcessUnbindResp,
}

// Dispatch routes one incoming PDU to the handler of v.
func Dispatch(v Variant, header pdu.Header, body []byte, rh ResponseHandler) error {
	handle, ok := dispatchTable[header.CommandID]
	if !ok {
		handle = Variant.ProcessUnknownCid
	}
	return handle(v, header, body, rh)
}
