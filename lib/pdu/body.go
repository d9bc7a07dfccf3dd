package pdu

import (
	"smppgw/core/lib/util/buffer"
)

// InterfaceVersion is the SMPP version this module speaks.
const InterfaceVersion = 0x34

// Field sizes including the NULL terminator.
const (
	SystemIDSize       = 16
	PasswordSize       = 9
	SystemTypeSize     = 13
	AddressRangeSize   = 41
	ServiceTypeSize    = 6
	AddressSize        = 21
	MessageIDSize      = 65
	DateSize           = 17
	ShortMessageMaxLen = 254
)

// TagSCInterfaceVersion is the optional parameter an SMSC reports its version in.
const TagSCInterfaceVersion uint16 = 0x0210

// OptionalParameter is one TLV trailing the mandatory body fields.
type OptionalParameter struct {
	Tag   uint16
	Value []byte
}

// Bind is the body of bind_transmitter, bind_receiver and bind_transceiver.
type Bind struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion byte
	AddrTon          byte
	AddrNpi          byte
	AddressRange     string
}

func (b Bind) Bytes() ([]byte, error) {
	w := buffer.NewWriter()
	if err := w.WriteCString(b.SystemID, SystemIDSize); err != nil {
		return nil, err
	}
	if err := w.WriteCString(b.Password, PasswordSize); err != nil {
		return nil, err
	}
	if err := w.WriteCString(b.SystemType, SystemTypeSize); err != nil {
		return nil, err
	}
	version := b.InterfaceVersion
	if version == 0 {
		version = InterfaceVersion
	}
	_ = w.WriteByte(version)
	_ = w.WriteByte(b.AddrTon)
	_ = w.WriteByte(b.AddrNpi)
	if err := w.WriteCString(b.AddressRange, AddressRangeSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// BindResp is the body of every bind response.
type BindResp struct {
	SystemID           string
	OptionalParameters []OptionalParameter
}

// SCInterfaceVersion returns the version the SMSC reported, if it did.
func (r BindResp) SCInterfaceVersion() (byte, bool) {
	for _, p := range r.OptionalParameters {
		if p.Tag == TagSCInterfaceVersion && len(p.Value) == 1 {
			return p.Value[0], true
		}
	}
	return 0, false
}

func (r BindResp) Bytes() ([]byte, error) {
	w := buffer.NewWriter()
	if err := w.WriteCString(r.SystemID, SystemIDSize); err != nil {
		return nil, err
	}
	writeOptionalParameters(w, r.OptionalParameters)
	return w.Bytes(), nil
}

// SubmitSmResp is the body of submit_sm_resp.
type SubmitSmResp struct {
	MessageID string
}

func (r SubmitSmResp) Bytes() ([]byte, error) {
	w := buffer.NewWriter()
	if err := w.WriteCString(r.MessageID, MessageIDSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// QuerySm is the body of query_sm.
type QuerySm struct {
	MessageID     string
	SourceAddrTon byte
	SourceAddrNpi byte
	SourceAddr    string
}

func (q QuerySm) Bytes() ([]byte, error) {
	w := buffer.NewWriter()
	if err := w.WriteCString(q.MessageID, MessageIDSize); err != nil {
		return nil, err
	}
	_ = w.WriteByte(q.SourceAddrTon)
	_ = w.WriteByte(q.SourceAddrNpi)
	if err := w.WriteCString(q.SourceAddr, AddressSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// QuerySmResp is the body of query_sm_resp.
type QuerySmResp struct {
	MessageID    string
	FinalDate    string
	MessageState byte
	ErrorCode    byte
}

func (r QuerySmResp) Bytes() ([]byte, error) {
	w := buffer.NewWriter()
	if err := w.WriteCString(r.MessageID, MessageIDSize); err != nil {
		return nil, err
	}
	if err := w.WriteCString(r.FinalDate, DateSize); err != nil {
		return nil, err
	}
	_ = w.WriteByte(r.MessageState)
	_ = w.WriteByte(r.ErrorCode)
	return w.Bytes(), nil
}

// DeliverSm is the body of deliver_sm. ShortMessage is kept as raw octets.
type DeliverSm struct {
	ServiceType          string
	SourceAddrTon        byte
	SourceAddrNpi        byte
	SourceAddr           string
	DestAddrTon          byte
	DestAddrNpi          byte
	DestinationAddr      string
	EsmClass             byte
	ProtocolID           byte
	PriorityFlag         byte
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   byte
	ReplaceIfPresentFlag byte
	DataCoding           byte
	SmDefaultMsgID       byte
	ShortMessage         []byte
	OptionalParameters   []OptionalParameter
}

// Coding interprets the data_coding octet.
func (d DeliverSm) Coding() (DataCoding, error) {
	return ParseDataCoding(d.DataCoding)
}

func (d DeliverSm) Bytes() ([]byte, error) {
	w := buffer.NewWriter()
	if err := w.WriteCString(d.ServiceType, ServiceTypeSize); err != nil {
		return nil, err
	}
	_ = w.WriteByte(d.SourceAddrTon)
	_ = w.WriteByte(d.SourceAddrNpi)
	if err := w.WriteCString(d.SourceAddr, AddressSize); err != nil {
		return nil, err
	}
	_ = w.WriteByte(d.DestAddrTon)
	_ = w.WriteByte(d.DestAddrNpi)
	if err := w.WriteCString(d.DestinationAddr, AddressSize); err != nil {
		return nil, err
	}
	_ = w.WriteByte(d.EsmClass)
	_ = w.WriteByte(d.ProtocolID)
	_ = w.WriteByte(d.PriorityFlag)
	if err := w.WriteCString(d.ScheduleDeliveryTime, DateSize); err != nil {
		return nil, err
	}
	if err := w.WriteCString(d.ValidityPeriod, DateSize); err != nil {
		return nil, err
	}
	_ = w.WriteByte(d.RegisteredDelivery)
	_ = w.WriteByte(d.ReplaceIfPresentFlag)
	_ = w.WriteByte(d.DataCoding)
	_ = w.WriteByte(d.SmDefaultMsgID)
	if len(d.ShortMessage) > ShortMessageMaxLen {
		return nil, buffer.ErrTooLong
	}
	_ = w.WriteByte(byte(len(d.ShortMessage)))
	w.WriteBytes(d.ShortMessage)
	writeOptionalParameters(w, d.OptionalParameters)
	return w.Bytes(), nil
}

// SubmitSm is the body of submit_sm. Its mandatory fields match deliver_sm.
type SubmitSm DeliverSm

func (s SubmitSm) Bytes() ([]byte, error) {
	return DeliverSm(s).Bytes()
}

func writeOptionalParameters(w *buffer.Writer, params []OptionalParameter) {
	for _, p := range params {
		w.WriteUint16(p.Tag)
		w.WriteUint16(uint16(len(p.Value)))
		w.WriteBytes(p.Value)
	}
}
