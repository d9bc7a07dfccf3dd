package buffer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrTruncated    = errors.New("buffer is truncated")
	ErrUnterminated = errors.New("c-octet string is not terminated")
	ErrTooLong      = errors.New("c-octet string exceeds its maximum length")
)

// Reader walks the octets of a PDU body.
// Every read either consumes exactly the requested bytes or fails without moving the cursor.
type Reader struct {
	Data   []byte
	cursor int
}

func NewReader(data []byte) *Reader {
	return &Reader{
		Data:   data,
		cursor: 0,
	}
}

// Remaining returns the number of unread bytes.
func (b *Reader) Remaining() int {
	return len(b.Data) - b.cursor
}

func (b *Reader) ReadByte() (byte, error) {
	if b.Remaining() < 1 {
		return 0, ErrTruncated
	}
	v := b.Data[b.cursor]
	b.cursor++
	return v, nil
}

func (b *Reader) ReadUint16() (uint16, error) {
	if b.Remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint16(b.Data[b.cursor:])
	b.cursor += 2
	return v, nil
}

func (b *Reader) ReadUint32() (uint32, error) {
	if b.Remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(b.Data[b.cursor:])
	b.cursor += 4
	return v, nil
}

// ReadBytes returns a copy of the next n bytes.
func (b *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || b.Remaining() < n {
		return nil, ErrTruncated
	}
	v := make([]byte, n)
	copy(v, b.Data[b.cursor:b.cursor+n])
	b.cursor += n
	return v, nil
}

// ReadCString reads a NULL terminated octet string.
// max is the field size including the terminator, as the protocol tables state it.
func (b *Reader) ReadCString(max int) (string, error) {
	rest := b.Data[b.cursor:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", ErrUnterminated
	}
	if end+1 > max {
		return "", fmt.Errorf("%w: %v > %v", ErrTooLong, end+1, max)
	}
	b.cursor += end + 1
	return string(rest[:end]), nil
}

// Writer builds the octets of a PDU body.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteByte(v byte) error {
	return w.buf.WriteByte(v)
}

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteBytes(v []byte) {
	w.buf.Write(v)
}

// WriteCString writes s followed by a NULL terminator.
func (w *Writer) WriteCString(s string, max int) error {
	if len(s)+1 > max {
		return fmt.Errorf("%w: %v > %v", ErrTooLong, len(s)+1, max)
	}
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
	return nil
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
