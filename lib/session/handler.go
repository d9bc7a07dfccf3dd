package session

import (
	"github.com/rs/zerolog"

	"smppgw/core/lib/pdu"
	"smppgw/core/lib/pending"
)

// ResponseHandler is what a Variant may do in reaction to a PDU.
type ResponseHandler interface {
	// RemovePending removes and returns the request with the sequence number.
	RemovePending(sequenceNumber uint32) (*pending.Request, bool)
	SendGenericNack(status pdu.Status, sequenceNumber uint32) error
	SendEnquireLinkResp(sequenceNumber uint32) error
	SendUnbindResp(sequenceNumber uint32) error
	SendDeliverSmResp(status pdu.Status, sequenceNumber uint32) error
	// AcceptDeliverSm hands a received message to the application
	// and returns the command_status of the deliver_sm_resp.
	AcceptDeliverSm(header pdu.Header, message pdu.DeliverSm) pdu.Status
	// NotifyUnbound tells the session that the peer unbound it.
	NotifyUnbound()
	// BindSequence is the sequence number of the outstanding bind request.
	BindSequence() uint32
	Decoder() pdu.Decoder
	Logger() zerolog.Logger
}

// MessageReceiver receives the messages of deliver_sm PDUs.
type MessageReceiver interface {
	Receive(header pdu.Header, message pdu.DeliverSm) pdu.Status
}

// ReceiverFunc adapts a function to a MessageReceiver.
type ReceiverFunc func(header pdu.Header, message pdu.DeliverSm) pdu.Status

func (f ReceiverFunc) Receive(header pdu.Header, message pdu.DeliverSm) pdu.Status {
	return f(header, message)
}
