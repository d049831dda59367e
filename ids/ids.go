// Package ids holds the small fixed-size identifiers shared across the
// decoder, tracker, wire protocol and download engine: SHA-1 content
// hashes and 20-byte peer identifiers.
package ids

import "crypto/sha1"

// Sha1 is a 20-byte opaque SHA-1 digest. Equality is byte-wise.
type Sha1 [20]byte

// SumSha1 computes the SHA-1 of data.
func SumSha1(data []byte) Sha1 {
	return Sha1(sha1.Sum(data))
}

// Verify reports whether SHA1(data) equals s.
func (s Sha1) Verify(data []byte) bool {
	return s == SumSha1(data)
}

func (s Sha1) String() string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 40)
	for i, b := range s {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0xf]
	}
	return string(buf)
}

// PeerId is the 20-byte identifier a client chooses for itself for the
// lifetime of a session.
type PeerId [20]byte
