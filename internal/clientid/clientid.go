// Package clientid generates the 20-byte peer id this client presents
// during the wire handshake (spec.md §3 PeerId).
package clientid

import (
	"crypto/rand"

	"github.com/jrmo/bitpeer/ids"
)

// prefix is the Azureus-style client identifier: "-" + 2 letters + 4
// digit version + "-".
const prefix = "-BP0100-"

// New returns a fresh peer id: prefix followed by random bytes, fixed
// for the lifetime of one download.
func New() ids.PeerId {
	var id ids.PeerId
	copy(id[:], prefix)
	rand.Read(id[len(prefix):])
	return id
}
