package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// messageID is the single byte following the length prefix that tags a
// non-keepalive message.
type messageID uint8

const (
	idChoke      messageID = 0
	idUnchoke    messageID = 1
	idInterested messageID = 2
	idBitfield   messageID = 5
	idRequest    messageID = 6
	idPiece      messageID = 7
)

// MessageKind tags which variant of PeerMessage a decoded message is.
type MessageKind int

const (
	KindBitfield MessageKind = iota
	KindInterested
	KindUnchoke
	KindRequest
	KindPiece
	KindUnknown
)

// PeerMessage is a decoded peer wire message. Only the fields relevant to
// Kind are populated.
type PeerMessage struct {
	Kind MessageKind

	Bitfield []byte

	// Request / Piece
	PieceIndex uint32
	Offset     uint32
	Length     uint32 // Request only
	Block      []byte // Piece only

	// Unknown
	UnknownID      uint8
	UnknownPayload []byte
}

// ReadMessage reads one message from r, transparently retrying on
// zero-length keep-alive messages (spec.md §4.5 — the client never sends
// them, but must tolerate receiving them).
func ReadMessage(r io.Reader) (*PeerMessage, error) {
	for {
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, err
		}
		length := binary.BigEndian.Uint32(lenBuf[:])
		if length == 0 {
			continue // keep-alive
		}
		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
		return decodeMessage(messageID(body[0]), body[1:])
	}
}

func decodeMessage(id messageID, payload []byte) (*PeerMessage, error) {
	switch id {
	case idUnchoke:
		return &PeerMessage{Kind: KindUnchoke}, nil
	case idBitfield:
		return &PeerMessage{Kind: KindBitfield, Bitfield: payload}, nil
	case idPiece:
		if len(payload) < 8 {
			return nil, fmt.Errorf("wire: piece message payload too short: %d bytes", len(payload))
		}
		return &PeerMessage{
			Kind:       KindPiece,
			PieceIndex: binary.BigEndian.Uint32(payload[0:4]),
			Offset:     binary.BigEndian.Uint32(payload[4:8]),
			Block:      payload[8:],
		}, nil
	default:
		return &PeerMessage{Kind: KindUnknown, UnknownID: uint8(id), UnknownPayload: payload}, nil
	}
}

// EncodeInterested serialises an Interested message (id=2, no payload).
func EncodeInterested() []byte {
	return encode(idInterested, nil)
}

// EncodeRequest serialises a Request message (id=6, 12-byte payload).
func EncodeRequest(pieceIndex, offset, length uint32) []byte {
	payload := make([]byte, 12)
	binary.BigEndian.PutUint32(payload[0:4], pieceIndex)
	binary.BigEndian.PutUint32(payload[4:8], offset)
	binary.BigEndian.PutUint32(payload[8:12], length)
	return encode(idRequest, payload)
}

func encode(id messageID, payload []byte) []byte {
	out := make([]byte, 4+1+len(payload))
	binary.BigEndian.PutUint32(out[0:4], uint32(1+len(payload)))
	out[4] = byte(id)
	copy(out[5:], payload)
	return out
}
