package packet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLength_Bytes(t *testing.T) {
	d := make([]byte, 12)
	l1, err := LengthOf(d)
	assert.Nil(t, err)
	assert.EqualValues(t, len(d)+LengthSize, l1)
	l2, err := DecodeLength(l1.Bytes())
	assert.Nil(t, err)
	assert.EqualValues(t, l1, l2)
	assert.Equal(t, len(d), l2.Remaining())
}

func TestLengthOf_TooShort(t *testing.T) {
	_, err := LengthOf([]byte("short"))
	assert.True(t, errors.Is(err, ErrInvalidLength))
}

func TestDecodeLength_OutOfRange(t *testing.T) {
	_, err := DecodeLength([]byte{0, 0, 0, 15})
	assert.True(t, errors.Is(err, ErrInvalidLength))
	_, err = DecodeLength([]byte{0x7f, 0, 0, 0})
	assert.True(t, errors.Is(err, ErrInvalidLength))
	_, err = DecodeLength([]byte{0, 16})
	assert.NotNil(t, err)
}
