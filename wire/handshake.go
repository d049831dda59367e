// Package wire implements the BitTorrent peer wire protocol: the 68-byte
// handshake and the length-prefixed message framing and codec used for
// everything after it.
package wire

import (
	"fmt"
	"io"

	"github.com/jrmo/bitpeer/ids"
)

// Protocol is the protocol name string carried in every handshake.
const Protocol = "BitTorrent protocol"

// HandshakeSize is the fixed size of a handshake message.
const HandshakeSize = 1 + len(Protocol) + 8 + 20 + 20

// HandshakeFailedError reports a handshake that completed an I/O round
// trip but failed to validate.
type HandshakeFailedError struct{ Reason string }

func (e HandshakeFailedError) Error() string {
	return fmt.Sprintf("wire: handshake failed: %s", e.Reason)
}

// BuildHandshake encodes the fixed handshake message:
// [19]["BitTorrent protocol"][8 zero bytes][info_hash][peer_id].
func BuildHandshake(infoHash ids.Sha1, peerID ids.PeerId) []byte {
	buf := make([]byte, HandshakeSize)
	buf[0] = byte(len(Protocol))
	copy(buf[1:], Protocol)
	// buf[1+len(Protocol) : 1+len(Protocol)+8] stays zero (reserved extension bits)
	copy(buf[1+len(Protocol)+8:], infoHash[:])
	copy(buf[1+len(Protocol)+8+20:], peerID[:])
	return buf
}

// ReadHandshake reads and validates a 68-byte handshake reply, returning
// the remote's peer id.
func ReadHandshake(r io.Reader) (ids.PeerId, error) {
	buf := make([]byte, HandshakeSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return ids.PeerId{}, err
	}
	pstrlen := int(buf[0])
	if 1+pstrlen+8+20+20 != HandshakeSize || string(buf[1:1+pstrlen]) != Protocol {
		return ids.PeerId{}, HandshakeFailedError{Reason: fmt.Sprintf("unexpected protocol string %q", buf[1:1+min(pstrlen, len(buf)-1)])}
	}
	var peerID ids.PeerId
	copy(peerID[:], buf[1+pstrlen+8+20:])
	return peerID, nil
}
