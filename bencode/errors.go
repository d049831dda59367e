package bencode

import "fmt"

// StringDelimiterNotFoundError is returned when a byte-string length prefix
// has no ':' delimiter.
type StringDelimiterNotFoundError struct{}

func (e StringDelimiterNotFoundError) Error() string {
	return "bencode: string delimiter ':' not found"
}

// InvalidStringLengthValueError is returned when the length prefix of a
// byte string is not a valid unsigned decimal number.
type InvalidStringLengthValueError struct {
	Raw []byte
}

func (e InvalidStringLengthValueError) Error() string {
	return fmt.Sprintf("bencode: invalid string length value %q", e.Raw)
}

// StringLengthValueTooBigError is returned when a byte string's declared
// length exceeds the bytes remaining in the buffer.
type StringLengthValueTooBigError struct {
	Expected int
	Actual   int
}

func (e StringLengthValueTooBigError) Error() string {
	return fmt.Sprintf("bencode: string length value too big: expected %d, actual %d", e.Expected, e.Actual)
}

// InvalidIntValueError is returned when an 'i...e' integer's payload is
// empty or not a valid signed decimal number.
type InvalidIntValueError struct {
	Repr string
}

func (e InvalidIntValueError) Error() string {
	return fmt.Sprintf("bencode: invalid int value %q", e.Repr)
}

// EndingDelimiterNotFoundError is returned when a list, dict, or integer is
// not terminated by the expected 'e' before the buffer runs out.
type EndingDelimiterNotFoundError struct{}

func (e EndingDelimiterNotFoundError) Error() string {
	return "bencode: ending delimiter 'e' not found"
}

// UnexpectedEndOfBufferError is returned when the decoder runs out of bytes
// in the middle of reading a tag byte.
type UnexpectedEndOfBufferError struct{}

func (e UnexpectedEndOfBufferError) Error() string {
	return "bencode: unexpected end of buffer"
}

// UnknownTagError is returned by DecodeDict when the decoded root value is
// not a dictionary; Tag is the first byte of the buffer.
type UnknownTagError struct {
	Tag byte
}

func (e UnknownTagError) Error() string {
	return fmt.Sprintf("bencode: unknown value tag %q", e.Tag)
}

// NonStringDictKeyError is returned when a dict alternates away from a
// byte-string key (keys must be byte strings per the bencoding grammar).
type NonStringDictKeyError struct{}

func (e NonStringDictKeyError) Error() string {
	return "bencode: dictionary key is not a byte string"
}
