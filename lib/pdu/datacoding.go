package pdu

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAlphabet        = errors.New("pdu: invalid alphabet")
	ErrInvalidMessageClass    = errors.New("pdu: invalid message class")
	ErrUnsupportedCodingGroup = errors.New("pdu: unsupported data coding group")
)

// Alphabet is the character set selected by a data coding octet.
type Alphabet byte

const (
	AlphabetDefault Alphabet = iota
	Alphabet8Bit
	AlphabetUCS2
	AlphabetReserved
)

func (a Alphabet) String() string {
	switch a {
	case AlphabetDefault:
		return "default"
	case Alphabet8Bit:
		return "8bit"
	case AlphabetUCS2:
		return "ucs2"
	case AlphabetReserved:
		return "reserved"
	default:
		return fmt.Sprintf("alphabet(%d)", byte(a))
	}
}

// MessageClass is the GSM message class carried in a data coding octet.
type MessageClass byte

const (
	MessageClass0 MessageClass = iota
	MessageClass1
	MessageClass2
	MessageClass3
)

func (c MessageClass) String() string {
	if c > MessageClass3 {
		return fmt.Sprintf("class(%d)", byte(c))
	}
	return fmt.Sprintf("class%d", byte(c))
}

// DataCoding is one interpretation of the data_coding octet.
type DataCoding interface {
	Byte() byte
	Alphabet() Alphabet
	MessageClass() MessageClass
}

// ParseDataCoding selects the interpretation whose coding group accepts b.
func ParseDataCoding(b byte) (DataCoding, error) {
	switch {
	case IsGeneralDataCoding(b):
		return GeneralDataCoding(b), nil
	case IsMessageClassDataCoding(b):
		return MessageClassDataCoding(b), nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedCodingGroup, b)
	}
}

const (
	maskGeneralGroup         byte = 0xC0
	patternGeneralGroup      byte = 0x00
	maskCompressed           byte = 0x20
	maskContainsMessageClass byte = 0x10
	maskGeneralAlphabet      byte = 0x0C
	shiftGeneralAlphabet          = 2
	maskMessageClass         byte = 0x03

	maskMessageClassGroup    byte = 0xF0
	patternMessageClassGroup byte = 0xF0
	maskMessageClassAlphabet byte = 0x04
	shiftMessageClassAlpha        = 2
)

func setFlag(v byte, mask byte, on bool) byte {
	if on {
		return v | mask
	}
	return v &^ mask
}

func setField(v byte, mask byte, shift uint, value byte) byte {
	return v&^mask | (value<<shift)&mask
}

// GeneralDataCoding is the data coding octet of coding group 00xx:
//
//	bit 7..6  coding group, always 00
//	bit 5     text is compressed
//	bit 4     bits 1..0 carry a message class
//	bit 3..2  alphabet
//	bit 1..0  message class
type GeneralDataCoding byte

// IsGeneralDataCoding reports whether b belongs to the general coding group.
func IsGeneralDataCoding(b byte) bool {
	return b&maskGeneralGroup == patternGeneralGroup
}

// NewGeneralDataCoding builds the octet from its sub-fields.
func NewGeneralDataCoding(compressed, containsMessageClass bool, class MessageClass, alphabet Alphabet) (GeneralDataCoding, error) {
	var c GeneralDataCoding
	c.SetCompressed(compressed)
	c.SetContainsMessageClass(containsMessageClass)
	if err := c.SetMessageClass(class); err != nil {
		return 0, err
	}
	if err := c.SetAlphabet(alphabet); err != nil {
		return 0, err
	}
	return c, nil
}

func (c GeneralDataCoding) Byte() byte {
	return byte(c)
}

func (c GeneralDataCoding) Compressed() bool {
	return byte(c)&maskCompressed == maskCompressed
}

func (c *GeneralDataCoding) SetCompressed(compressed bool) {
	*c = GeneralDataCoding(setFlag(byte(*c), maskCompressed, compressed))
}

func (c GeneralDataCoding) ContainsMessageClass() bool {
	return byte(c)&maskContainsMessageClass == maskContainsMessageClass
}

func (c *GeneralDataCoding) SetContainsMessageClass(contains bool) {
	*c = GeneralDataCoding(setFlag(byte(*c), maskContainsMessageClass, contains))
}

func (c GeneralDataCoding) Alphabet() Alphabet {
	return Alphabet((byte(c) & maskGeneralAlphabet) >> shiftGeneralAlphabet)
}

func (c *GeneralDataCoding) SetAlphabet(alphabet Alphabet) error {
	if alphabet > AlphabetReserved {
		return fmt.Errorf("%w: %v", ErrInvalidAlphabet, alphabet)
	}
	*c = GeneralDataCoding(setField(byte(*c), maskGeneralAlphabet, shiftGeneralAlphabet, byte(alphabet)))
	return nil
}

func (c GeneralDataCoding) MessageClass() MessageClass {
	return MessageClass(byte(c) & maskMessageClass)
}

func (c *GeneralDataCoding) SetMessageClass(class MessageClass) error {
	if class > MessageClass3 {
		return fmt.Errorf("%w: %v", ErrInvalidMessageClass, class)
	}
	*c = GeneralDataCoding(setField(byte(*c), maskMessageClass, 0, byte(class)))
	return nil
}

// MessageClassDataCoding is the data coding octet of coding group 1111:
//
//	bit 7..4  coding group, always 1111
//	bit 3     reserved
//	bit 2     alphabet, default or 8-bit
//	bit 1..0  message class
type MessageClassDataCoding byte

// IsMessageClassDataCoding reports whether b belongs to the 1111 coding group.
func IsMessageClassDataCoding(b byte) bool {
	return b&maskMessageClassGroup == patternMessageClassGroup
}

func NewMessageClassDataCoding(alphabet Alphabet, class MessageClass) (MessageClassDataCoding, error) {
	c := MessageClassDataCoding(patternMessageClassGroup)
	if err := c.SetAlphabet(alphabet); err != nil {
		return 0, err
	}
	if err := c.SetMessageClass(class); err != nil {
		return 0, err
	}
	return c, nil
}

func (c MessageClassDataCoding) Byte() byte {
	return byte(c)
}

func (c MessageClassDataCoding) Alphabet() Alphabet {
	if byte(c)&maskMessageClassAlphabet != 0 {
		return Alphabet8Bit
	}
	return AlphabetDefault
}

// SetAlphabet accepts only the alphabets the group can express.
func (c *MessageClassDataCoding) SetAlphabet(alphabet Alphabet) error {
	switch alphabet {
	case AlphabetDefault, Alphabet8Bit:
	default:
		return fmt.Errorf("%w: %v", ErrInvalidAlphabet, alphabet)
	}
	*c = MessageClassDataCoding(setField(byte(*c), maskMessageClassAlphabet, shiftMessageClassAlpha, byte(alphabet)))
	return nil
}

func (c MessageClassDataCoding) MessageClass() MessageClass {
	return MessageClass(byte(c) & maskMessageClass)
}

func (c *MessageClassDataCoding) SetMessageClass(class MessageClass) error {
	if class > MessageClass3 {
		return fmt.Errorf("%w: %v", ErrInvalidMessageClass, class)
	}
	*c = MessageClassDataCoding(setField(byte(*c), maskMessageClass, 0, byte(class)))
	return nil
}
