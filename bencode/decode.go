package bencode

import (
	"strconv"

	"github.com/jrmo/bitpeer/ids"
)

// Decoder decodes bencoded values from a fixed byte buffer. It tracks its
// cursor as a plain index into buf so that, when it enters a dict, it can
// record the exact [start, end) byte range that dict occupied in the
// source and hash it without re-serializing anything.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a Decoder reading from buf. buf is not copied, so it
// must not change while decoding is in progress. Decoded values do not
// reference buf afterwards: ByteStrings are copied into fresh slices (see
// decodeByteString) and each Dict.SHA1 is computed when its dict closes.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Pos returns the decoder's current cursor, i.e. how many bytes of buf it
// has consumed so far.
func (d *Decoder) Pos() int {
	return d.pos
}

// Remaining returns the unconsumed tail of the source buffer.
func (d *Decoder) Remaining() []byte {
	return d.buf[d.pos:]
}

// Decode decodes one Value starting at the current cursor and advances
// past it.
func (d *Decoder) Decode() (Value, error) {
	if d.pos >= len(d.buf) {
		return Value{}, UnexpectedEndOfBufferError{}
	}
	switch tag := d.buf[d.pos]; {
	case tag == 'i':
		return d.decodeInt()
	case tag == 'l':
		return d.decodeList()
	case tag == 'd':
		return d.decodeDict()
	case tag >= '0' && tag <= '9':
		return d.decodeByteString()
	default:
		// Any other leading byte is read as a byte string's length prefix,
		// so a non-decimal prefix surfaces as InvalidStringLengthValueError
		// (or StringDelimiterNotFoundError when there is no ':').
		return d.decodeByteString()
	}
}

// DecodeDict decodes a single root dictionary, the shape every metainfo
// file and tracker response takes.
func (d *Decoder) DecodeDict() (Dict, error) {
	v, err := d.Decode()
	if err != nil {
		return Dict{}, err
	}
	if v.Kind != KindDict {
		return Dict{}, UnknownTagError{Tag: d.buf[0]}
	}
	return v.Dict, nil
}

func (d *Decoder) decodeInt() (Value, error) {
	start := d.pos
	d.pos++ // consume 'i'
	digitsStart := d.pos
	for d.pos < len(d.buf) && d.buf[d.pos] != 'e' {
		d.pos++
	}
	if d.pos >= len(d.buf) {
		return Value{}, EndingDelimiterNotFoundError{}
	}
	repr := string(d.buf[digitsStart:d.pos])
	d.pos++ // consume 'e'
	if repr == "" {
		return Value{}, InvalidIntValueError{Repr: repr}
	}
	n, err := strconv.ParseInt(repr, 10, 64)
	if err != nil {
		d.pos = start
		return Value{}, InvalidIntValueError{Repr: repr}
	}
	return Value{Kind: KindInt, Int: n}, nil
}

func (d *Decoder) decodeByteString() (Value, error) {
	lenStart := d.pos
	for d.pos < len(d.buf) && d.buf[d.pos] != ':' {
		d.pos++
	}
	if d.pos >= len(d.buf) {
		d.pos = lenStart
		return Value{}, StringDelimiterNotFoundError{}
	}
	lenRepr := d.buf[lenStart:d.pos]
	length, err := strconv.ParseUint(string(lenRepr), 10, 63)
	if err != nil {
		return Value{}, InvalidStringLengthValueError{Raw: lenRepr}
	}
	d.pos++ // consume ':'
	start := d.pos
	end := start + int(length)
	if end > len(d.buf) {
		return Value{}, StringLengthValueTooBigError{
			Expected: int(length),
			Actual:   len(d.buf) - start,
		}
	}
	out := make([]byte, length)
	copy(out, d.buf[start:end])
	d.pos = end
	return Value{Kind: KindByteString, ByteString: out}, nil
}

func (d *Decoder) decodeList() (Value, error) {
	d.pos++ // consume 'l'
	var list []Value
	for {
		if d.pos >= len(d.buf) {
			return Value{}, EndingDelimiterNotFoundError{}
		}
		if d.buf[d.pos] == 'e' {
			d.pos++
			return Value{Kind: KindList, List: list}, nil
		}
		v, err := d.Decode()
		if err != nil {
			return Value{}, err
		}
		list = append(list, v)
	}
}

func (d *Decoder) decodeDict() (Value, error) {
	start := d.pos
	d.pos++ // consume 'd'
	dict := newDict()
	for {
		if d.pos >= len(d.buf) {
			return Value{}, EndingDelimiterNotFoundError{}
		}
		if d.buf[d.pos] == 'e' {
			d.pos++
			dict.SHA1 = hashRange(d.buf, start, d.pos)
			return Value{Kind: KindDict, Dict: dict}, nil
		}
		key, err := d.decodeByteString()
		if err != nil {
			return Value{}, err
		}
		if key.Kind != KindByteString {
			return Value{}, NonStringDictKeyError{}
		}
		val, err := d.Decode()
		if err != nil {
			return Value{}, err
		}
		dict.set(string(key.ByteString), val)
	}
}

// hashRange computes the SHA-1 of buf[start:end] directly — this is the
// content-addressing mechanism that lets info_hash be derived without
// re-encoding the info dict.
func hashRange(buf []byte, start, end int) ids.Sha1 {
	return ids.SumSha1(buf[start:end])
}
