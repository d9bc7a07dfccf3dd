package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Length is the command_length field that prefixes every PDU on the wire.
// It counts the whole PDU including its own four bytes.
type Length uint32

// LengthSize is the byte size of a Length.
const LengthSize = 4

// MinLength is the smallest legal Length: a PDU header without a body.
const MinLength = 16

// MaxLength bounds the size of a single PDU.
// SMPP itself does not define a limit, peers that send more are misbehaving.
const MaxLength = 64 * 1024

var ErrInvalidLength = errors.New("invalid command length")

// LengthOf returns the Length of a PDU whose bytes following the length field are data.
func LengthOf(data []byte) (Length, error) {
	n := len(data) + LengthSize
	if n < MinLength || n > MaxLength {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLength, n)
	}
	return Length(n), nil
}

// DecodeLength decodes a Length that was encoded with Length.Bytes.
func DecodeLength(raw []byte) (Length, error) {
	if len(raw) != LengthSize {
		return 0, fmt.Errorf("a length field must be %v bytes long", LengthSize)
	}
	l := Length(binary.BigEndian.Uint32(raw))
	if l < MinLength || l > MaxLength {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLength, uint32(l))
	}
	return l, nil
}

// Bytes encodes a Length to four bytes with big endian encoding.
func (l Length) Bytes() []byte {
	bytes := make([]byte, LengthSize)
	binary.BigEndian.PutUint32(bytes, uint32(l))
	return bytes
}

// Remaining is the number of bytes that follow the length field.
func (l Length) Remaining() int {
	return int(l) - LengthSize
}
