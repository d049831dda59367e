// Package bencode decodes BitTorrent's bencoded byte streams into a typed
// value tree, recording the exact source byte range of every dictionary so
// its SHA-1 can be computed without re-serializing it.
package bencode

import "github.com/jrmo/bitpeer/ids"

// Value is a decoded bencoded element. Exactly one of the fields below is
// meaningful for a given Value; which one is determined by Kind.
type Value struct {
	Kind Kind

	Int        int64
	ByteString []byte
	List       []Value
	Dict       Dict
}

// Kind tags which variant a Value holds.
type Kind int

const (
	KindInt Kind = iota
	KindByteString
	KindList
	KindDict
)

// Dict is a bencoded dictionary: an ordered-by-insertion mapping from
// byte-string key to Value, plus the SHA-1 of the exact byte range it
// occupied in the source buffer (including its 'd' and 'e' delimiters).
type Dict struct {
	keys   []string
	values map[string]Value
	SHA1   ids.Sha1
}

func newDict() Dict {
	return Dict{values: make(map[string]Value)}
}

// set stores a value for key, last-write-wins on duplicates (see
// SPEC_FULL.md "Supplemented features" Open Question (ii)).
func (d *Dict) set(key string, v Value) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value stored under key, if any.
func (d Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the dict's keys in first-insertion order.
func (d Dict) Keys() []string {
	return d.keys
}

// Len returns the number of distinct keys in the dict.
func (d Dict) Len() int {
	return len(d.keys)
}

// GetString is a convenience accessor for a byte-string valued key.
func (d Dict) GetString(key string) ([]byte, bool) {
	v, ok := d.Get(key)
	if !ok || v.Kind != KindByteString {
		return nil, false
	}
	return v.ByteString, true
}

// GetInt is a convenience accessor for an int valued key.
func (d Dict) GetInt(key string) (int64, bool) {
	v, ok := d.Get(key)
	if !ok || v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}

// GetDict is a convenience accessor for a dict valued key.
func (d Dict) GetDict(key string) (Dict, bool) {
	v, ok := d.Get(key)
	if !ok || v.Kind != KindDict {
		return Dict{}, false
	}
	return v.Dict, true
}
