package pdu

import (
	"encoding/binary"
	"fmt"
	"io"

	"smppgw/core/lib/packet"
)

// HeaderSize is the size of the fixed PDU header.
const HeaderSize = 16

// ErrInvalidCommandLength is returned for a command_length outside
// [HeaderSize, packet.MaxLength].
var ErrInvalidCommandLength = packet.ErrInvalidLength

// Header is the fixed part every PDU starts with.
type Header struct {
	CommandLength  uint32
	CommandID      CommandID
	CommandStatus  Status
	SequenceNumber uint32
}

func (h Header) String() string {
	return fmt.Sprintf("(%d, %s, %s, %d)", h.CommandLength, h.CommandID, h.CommandStatus, h.SequenceNumber)
}

// DecodeHeader decodes the first HeaderSize bytes of raw.
func DecodeHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %v bytes, got %v", ErrInvalidCommandLength, HeaderSize, len(raw))
	}
	return Header{
		CommandLength:  binary.BigEndian.Uint32(raw[0:4]),
		CommandID:      CommandID(binary.BigEndian.Uint32(raw[4:8])),
		CommandStatus:  Status(binary.BigEndian.Uint32(raw[8:12])),
		SequenceNumber: binary.BigEndian.Uint32(raw[12:16]),
	}, nil
}

// Bytes encodes the header. CommandLength is written as stored.
func (h Header) Bytes() []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.CommandLength)
	binary.BigEndian.PutUint32(buf[4:8], uint32(h.CommandID))
	binary.BigEndian.PutUint32(buf[8:12], uint32(h.CommandStatus))
	binary.BigEndian.PutUint32(buf[12:16], h.SequenceNumber)
	return buf
}

// ReadFrom reads one PDU from r and splits it into its header and body.
func ReadFrom(r io.Reader) (Header, []byte, error) {
	f, err := packet.Read(r)
	if err != nil {
		return Header{}, nil, err
	}
	header, err := DecodeHeader(f)
	if err != nil {
		return Header{}, nil, err
	}
	return header, f[HeaderSize:], nil
}

// WriteTo writes one PDU to w. The command_length of h is computed from body.
func WriteTo(w io.Writer, h Header, body []byte) error {
	payload := make([]byte, 0, HeaderSize-packet.LengthSize+len(body))
	payload = append(payload, h.Bytes()[packet.LengthSize:]...)
	payload = append(payload, body...)
	f, err := packet.Build(payload)
	if err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
