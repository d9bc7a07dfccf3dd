package packet

import (
	"fmt"
	"io"
)

// Frame is one whole PDU as it appears on the wire,
// starting with its command_length field.
type Frame []byte

// Build prepends the command_length field to the bytes that follow it.
func Build(payload []byte) (Frame, error) {
	length, err := LengthOf(payload)
	if err != nil {
		return nil, err
	}
	f := make(Frame, 0, int(length))
	f = append(f, length.Bytes()...)
	return append(f, payload...), nil
}

// Parse checks that raw holds exactly one frame.
func Parse(raw []byte) (Frame, error) {
	if len(raw) < LengthSize {
		return nil, fmt.Errorf("%w: %v bytes cannot hold a length field", ErrInvalidLength, len(raw))
	}
	length, err := DecodeLength(raw[:LengthSize])
	if err != nil {
		return nil, err
	}
	if len(raw) != int(length) {
		return nil, fmt.Errorf("frame of %v bytes declares %v", len(raw), uint32(length))
	}
	return Frame(raw), nil
}

// Read reads the next frame from r. A stream that ends between frames
// returns io.EOF, one that ends inside a frame io.ErrUnexpectedEOF.
func Read(r io.Reader) (Frame, error) {
	var field [LengthSize]byte
	if _, err := io.ReadFull(r, field[:]); err != nil {
		return nil, err
	}
	length, err := DecodeLength(field[:])
	if err != nil {
		return nil, err
	}
	f := make(Frame, int(length))
	copy(f, field[:])
	if _, err := io.ReadFull(r, f[LengthSize:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return f, nil
}

func (f Frame) Length() Length {
	return Length(len(f))
}

// Payload returns the bytes after the command_length field.
func (f Frame) Payload() []byte {
	return f[LengthSize:]
}

// WriteTo writes the frame with a single write.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f)
	return int64(n), err
}
