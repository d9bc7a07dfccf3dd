package buffer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_CString(t *testing.T) {
	r := NewReader([]byte("smsc\x00id\x00"))
	s, err := r.ReadCString(16)
	require.Nil(t, err)
	assert.Equal(t, "smsc", s)
	s, err = r.ReadCString(3)
	require.Nil(t, err)
	assert.Equal(t, "id", s)
	assert.Equal(t, 0, r.Remaining())
}

func TestReader_CStringErrors(t *testing.T) {
	r := NewReader([]byte("abc"))
	_, err := r.ReadCString(16)
	assert.True(t, errors.Is(err, ErrUnterminated))
	assert.Equal(t, 3, r.Remaining())

	r = NewReader([]byte("abcdef\x00"))
	_, err = r.ReadCString(4)
	assert.True(t, errors.Is(err, ErrTooLong))
	assert.Equal(t, 7, r.Remaining())
}

func TestReader_Integers(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x00, 0x00, 0x00, 0x04, 0x05})
	b, err := r.ReadByte()
	require.Nil(t, err)
	assert.EqualValues(t, 1, b)
	u16, err := r.ReadUint16()
	require.Nil(t, err)
	assert.EqualValues(t, 0x0203, u16)
	u32, err := r.ReadUint32()
	require.Nil(t, err)
	assert.EqualValues(t, 4, u32)
	_, err = r.ReadUint16()
	assert.True(t, errors.Is(err, ErrTruncated))
	rest, err := r.ReadBytes(1)
	require.Nil(t, err)
	assert.Equal(t, []byte{0x05}, rest)
}

func TestWriter_RoundTrip(t *testing.T) {
	w := NewWriter()
	require.Nil(t, w.WriteCString("esme", 16))
	require.Nil(t, w.WriteByte(0x34))
	w.WriteUint16(0x0210)
	w.WriteUint32(7)
	assert.NotNil(t, w.WriteCString("much too long", 4))

	r := NewReader(w.Bytes())
	s, err := r.ReadCString(16)
	require.Nil(t, err)
	assert.Equal(t, "esme", s)
	b, _ := r.ReadByte()
	assert.EqualValues(t, 0x34, b)
	u16, _ := r.ReadUint16()
	assert.EqualValues(t, 0x0210, u16)
	u32, _ := r.ReadUint32()
	assert.EqualValues(t, 7, u32)
	assert.Equal(t, 0, r.Remaining())
}
