package pdu

import (
	"fmt"

	"github.com/stoewer/go-strcase"
)

// CommandID identifies the kind of a PDU.
type CommandID uint32

// responseBit is set in the command_id of every response PDU.
const responseBit CommandID = 0x80000000

const (
	CommandGenericNack         CommandID = 0x80000000
	CommandBindReceiver        CommandID = 0x00000001
	CommandBindReceiverResp    CommandID = 0x80000001
	CommandBindTransmitter     CommandID = 0x00000002
	CommandBindTransmitterResp CommandID = 0x80000002
	CommandQuerySm             CommandID = 0x00000003
	CommandQuerySmResp         CommandID = 0x80000003
	CommandSubmitSm            CommandID = 0x00000004
	CommandSubmitSmResp        CommandID = 0x80000004
	CommandDeliverSm           CommandID = 0x00000005
	CommandDeliverSmResp       CommandID = 0x80000005
	CommandUnbind              CommandID = 0x00000006
	CommandUnbindResp          CommandID = 0x80000006
	CommandReplaceSm           CommandID = 0x00000007
	CommandReplaceSmResp       CommandID = 0x80000007
	CommandCancelSm            CommandID = 0x00000008
	CommandCancelSmResp        CommandID = 0x80000008
	CommandBindTransceiver     CommandID = 0x00000009
	CommandBindTransceiverResp CommandID = 0x80000009
	CommandOutbind             CommandID = 0x0000000B
	CommandEnquireLink         CommandID = 0x00000015
	CommandEnquireLinkResp     CommandID = 0x80000015
	CommandSubmitMulti         CommandID = 0x00000021
	CommandSubmitMultiResp     CommandID = 0x80000021
	CommandAlertNotification   CommandID = 0x00000102
	CommandDataSm              CommandID = 0x00000103
	CommandDataSmResp          CommandID = 0x80000103
)

// commandNames holds the Go spelling of every known command.
// String derives the protocol's snake_case spelling from it.
var commandNames = map[CommandID]string{
	CommandGenericNack:         "GenericNack",
	CommandBindReceiver:        "BindReceiver",
	CommandBindReceiverResp:    "BindReceiverResp",
	CommandBindTransmitter:     "BindTransmitter",
	CommandBindTransmitterResp: "BindTransmitterResp",
	CommandQuerySm:             "QuerySm",
	CommandQuerySmResp:         "QuerySmResp",
	CommandSubmitSm:            "SubmitSm",
	CommandSubmitSmResp:        "SubmitSmResp",
	CommandDeliverSm:           "DeliverSm",
	CommandDeliverSmResp:       "DeliverSmResp",
	CommandUnbind:              "Unbind",
	CommandUnbindResp:          "UnbindResp",
	CommandReplaceSm:           "ReplaceSm",
	CommandReplaceSmResp:       "ReplaceSmResp",
	CommandCancelSm:            "CancelSm",
	CommandCancelSmResp:        "CancelSmResp",
	CommandBindTransceiver:     "BindTransceiver",
	CommandBindTransceiverResp: "BindTransceiverResp",
	CommandOutbind:             "Outbind",
	CommandEnquireLink:         "EnquireLink",
	CommandEnquireLinkResp:     "EnquireLinkResp",
	CommandSubmitMulti:         "SubmitMulti",
	CommandSubmitMultiResp:     "SubmitMultiResp",
	CommandAlertNotification:   "AlertNotification",
	CommandDataSm:              "DataSm",
	CommandDataSmResp:          "DataSmResp",
}

// String returns the command name as the protocol specification spells it,
// e.g. "bind_transmitter_resp".
func (c CommandID) String() string {
	name, ok := commandNames[c]
	if !ok {
		return fmt.Sprintf("command_id(0x%08x)", uint32(c))
	}
	return strcase.SnakeCase(name)
}

// IsKnown reports whether the protocol defines c.
func (c CommandID) IsKnown() bool {
	_, ok := commandNames[c]
	return ok
}

// IsResponse reports whether c identifies a response PDU.
func (c CommandID) IsResponse() bool {
	return c&responseBit != 0
}

// Response returns the command id of the response to request c.
func (c CommandID) Response() CommandID {
	return c | responseBit
}
