// Package session performs the post-handshake gate required before this
// client will download from a peer: the peer must advertise a complete
// bitfield (this client only downloads from a seed), after which the
// client sends Interested and waits for Unchoke.
package session

import (
	"fmt"

	"github.com/jrmo/bitpeer/wire"
)

// BitfieldSizeMismatchError reports a bitfield whose length doesn't match
// ceil(pieceCount / 8).
type BitfieldSizeMismatchError struct {
	Expected, Received int
}

func (e BitfieldSizeMismatchError) Error() string {
	return fmt.Sprintf("session: bitfield size mismatch: expected %d bytes, received %d", e.Expected, e.Received)
}

// IncompleteFileError reports a peer whose bitfield does not have every
// piece bit set.
type IncompleteFileError struct{}

func (e IncompleteFileError) Error() string {
	return "session: peer does not have the complete file"
}

// UnexpectedMessageError reports a message received where a specific kind
// was required.
type UnexpectedMessageError struct {
	Expected string
	Actual   wire.MessageKind
}

func (e UnexpectedMessageError) Error() string {
	return fmt.Sprintf("session: expected %s, got message kind %d instead", e.Expected, e.Actual)
}

// receiver is the narrow contract session.Establish needs from a
// wire.Channel: just enough to run the handshake gate, so tests can supply
// a fake.
type receiver interface {
	Receive() (*wire.PeerMessage, error)
	SendInterested() error
}

// Establish runs the post-handshake seed-only gate over ch: receive
// Bitfield, validate every piece bit is set, send Interested, receive
// Unchoke.
func Establish(ch receiver, pieceCount int) error {
	msg, err := ch.Receive()
	if err != nil {
		return err
	}
	if msg.Kind != wire.KindBitfield {
		return UnexpectedMessageError{Expected: "Bitfield", Actual: msg.Kind}
	}
	if err := validateComplete(msg.Bitfield, pieceCount); err != nil {
		return err
	}

	if err := ch.SendInterested(); err != nil {
		return err
	}

	msg, err = ch.Receive()
	if err != nil {
		return err
	}
	if msg.Kind != wire.KindUnchoke {
		return UnexpectedMessageError{Expected: "Unchoke", Actual: msg.Kind}
	}
	return nil
}

// validateComplete checks that every piece bit in b is set, MSB-first,
// using an explicit mask for the final partial byte rather than a signed
// shift (spec.md §9 Open Question (iii)).
func validateComplete(b []byte, pieceCount int) error {
	expectedLen := (pieceCount + 7) / 8
	if len(b) != expectedLen {
		return BitfieldSizeMismatchError{Expected: expectedLen, Received: len(b)}
	}
	fullBytes := pieceCount / 8
	for i := 0; i < fullBytes; i++ {
		if b[i] != 0xFF {
			return IncompleteFileError{}
		}
	}
	if rem := pieceCount % 8; rem != 0 {
		mask := byte((1<<uint(rem) - 1) << (8 - rem))
		if b[fullBytes]&mask != mask {
			return IncompleteFileError{}
		}
	}
	return nil
}
