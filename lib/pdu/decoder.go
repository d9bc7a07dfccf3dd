package pdu

import (
	"errors"

	"smppgw/core/lib/util/buffer"
)

// Decoder turns response and deliver bodies into values.
// Implementations must be safe for concurrent use.
type Decoder interface {
	BindResp(command CommandID, body []byte) (BindResp, error)
	SubmitSmResp(body []byte) (SubmitSmResp, error)
	QuerySmResp(body []byte) (QuerySmResp, error)
	DeliverSm(body []byte) (DeliverSm, error)
}

// DefaultDecoder decodes SMPP 3.4 bodies.
type DefaultDecoder struct{}

var _ Decoder = DefaultDecoder{}

func (DefaultDecoder) BindResp(command CommandID, body []byte) (resp BindResp, err error) {
	r := buffer.NewReader(body)
	resp.SystemID, err = r.ReadCString(SystemIDSize)
	if err != nil {
		return BindResp{}, decodeError(command, "system_id", StatusInvSysID, err)
	}
	resp.OptionalParameters, err = readOptionalParameters(command, r)
	if err != nil {
		return BindResp{}, err
	}
	return resp, nil
}

func (DefaultDecoder) SubmitSmResp(body []byte) (resp SubmitSmResp, err error) {
	r := buffer.NewReader(body)
	resp.MessageID, err = r.ReadCString(MessageIDSize)
	if err != nil {
		return SubmitSmResp{}, decodeError(CommandSubmitSmResp, "message_id", StatusInvMsgID, err)
	}
	if r.Remaining() != 0 {
		return SubmitSmResp{}, decodeError(CommandSubmitSmResp, "message_id", StatusInvMsgLen, errors.New("trailing bytes"))
	}
	return resp, nil
}

func (DefaultDecoder) QuerySmResp(body []byte) (resp QuerySmResp, err error) {
	r := buffer.NewReader(body)
	if resp.MessageID, err = r.ReadCString(MessageIDSize); err != nil {
		return QuerySmResp{}, decodeError(CommandQuerySmResp, "message_id", StatusInvMsgID, err)
	}
	if resp.FinalDate, err = r.ReadCString(DateSize); err != nil {
		return QuerySmResp{}, decodeError(CommandQuerySmResp, "final_date", StatusInvMsgLen, err)
	}
	if resp.MessageState, err = r.ReadByte(); err != nil {
		return QuerySmResp{}, decodeError(CommandQuerySmResp, "message_state", StatusInvMsgLen, err)
	}
	if resp.ErrorCode, err = r.ReadByte(); err != nil {
		return QuerySmResp{}, decodeError(CommandQuerySmResp, "error_code", StatusInvMsgLen, err)
	}
	return resp, nil
}

func (DefaultDecoder) DeliverSm(body []byte) (d DeliverSm, err error) {
	r := buffer.NewReader(body)
	fail := func(field string, status Status, cause error) (DeliverSm, error) {
		return DeliverSm{}, decodeError(CommandDeliverSm, field, status, cause)
	}
	if d.ServiceType, err = r.ReadCString(ServiceTypeSize); err != nil {
		return fail("service_type", StatusInvSerTyp, err)
	}
	if d.SourceAddrTon, err = r.ReadByte(); err != nil {
		return fail("source_addr_ton", StatusInvMsgLen, err)
	}
	if d.SourceAddrNpi, err = r.ReadByte(); err != nil {
		return fail("source_addr_npi", StatusInvMsgLen, err)
	}
	if d.SourceAddr, err = r.ReadCString(AddressSize); err != nil {
		return fail("source_addr", StatusInvSrcAdr, err)
	}
	if d.DestAddrTon, err = r.ReadByte(); err != nil {
		return fail("dest_addr_ton", StatusInvMsgLen, err)
	}
	if d.DestAddrNpi, err = r.ReadByte(); err != nil {
		return fail("dest_addr_npi", StatusInvMsgLen, err)
	}
	if d.DestinationAddr, err = r.ReadCString(AddressSize); err != nil {
		return fail("destination_addr", StatusInvDstAdr, err)
	}
	if d.EsmClass, err = r.ReadByte(); err != nil {
		return fail("esm_class", StatusInvMsgLen, err)
	}
	if d.ProtocolID, err = r.ReadByte(); err != nil {
		return fail("protocol_id", StatusInvMsgLen, err)
	}
	if d.PriorityFlag, err = r.ReadByte(); err != nil {
		return fail("priority_flag", StatusInvMsgLen, err)
	}
	if d.ScheduleDeliveryTime, err = r.ReadCString(DateSize); err != nil {
		return fail("schedule_delivery_time", StatusInvSched, err)
	}
	if d.ValidityPeriod, err = r.ReadCString(DateSize); err != nil {
		return fail("validity_period", StatusInvExpiry, err)
	}
	if d.RegisteredDelivery, err = r.ReadByte(); err != nil {
		return fail("registered_delivery", StatusInvMsgLen, err)
	}
	if d.ReplaceIfPresentFlag, err = r.ReadByte(); err != nil {
		return fail("replace_if_present_flag", StatusInvMsgLen, err)
	}
	if d.DataCoding, err = r.ReadByte(); err != nil {
		return fail("data_coding", StatusInvMsgLen, err)
	}
	if d.SmDefaultMsgID, err = r.ReadByte(); err != nil {
		return fail("sm_default_msg_id", StatusInvMsgLen, err)
	}
	length, err := r.ReadByte()
	if err != nil {
		return fail("sm_length", StatusInvMsgLen, err)
	}
	if d.ShortMessage, err = r.ReadBytes(int(length)); err != nil {
		return fail("short_message", StatusInvMsgLen, err)
	}
	if d.OptionalParameters, err = readOptionalParameters(CommandDeliverSm, r); err != nil {
		return DeliverSm{}, err
	}
	return d, nil
}

func readOptionalParameters(command CommandID, r *buffer.Reader) ([]OptionalParameter, error) {
	var params []OptionalParameter
	for r.Remaining() > 0 {
		tag, err := r.ReadUint16()
		if err != nil {
			return nil, decodeError(command, "optional_parameters", StatusInvOptParStream, err)
		}
		length, err := r.ReadUint16()
		if err != nil {
			return nil, decodeError(command, "optional_parameters", StatusInvOptParStream, err)
		}
		value, err := r.ReadBytes(int(length))
		if err != nil {
			return nil, decodeError(command, "optional_parameters", StatusInvParLen, err)
		}
		params = append(params, OptionalParameter{Tag: tag, Value: value})
	}
	return params, nil
}
