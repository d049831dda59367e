package wire

import (
	"bytes"
	"testing"
)

func TestEncodeInterestedRoundTrip(t *testing.T) {
	buf := bytes.NewBuffer(EncodeInterested())
	msg, err := ReadMessage(buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != KindUnknown || msg.UnknownID != uint8(idInterested) {
		t.Errorf("got %+v, want an id=2 message (this client never receives Interested)", msg)
	}
}

func TestEncodeRequestRoundTrip(t *testing.T) {
	buf := bytes.NewBuffer(EncodeRequest(3, 16384, 16384))
	msg, err := ReadMessage(buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != KindUnknown || msg.UnknownID != uint8(idRequest) {
		t.Fatalf("got %+v, want raw id=6 message", msg)
	}
	if len(msg.UnknownPayload) != 12 {
		t.Fatalf("payload length = %d, want 12", len(msg.UnknownPayload))
	}
}

func TestReadMessageSkipsKeepAlives(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0}) // keep-alive
	buf.Write([]byte{0, 0, 0, 0}) // keep-alive
	buf.Write(rawUnchoke())

	msg, err := ReadMessage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != KindUnchoke {
		t.Errorf("Kind = %v, want KindUnchoke", msg.Kind)
	}
}

func TestReadMessageBitfield(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0xFF, 0xFF}
	buf.Write([]byte{0, 0, 0, byte(len(payload) + 1)})
	buf.WriteByte(byte(idBitfield))
	buf.Write(payload)

	msg, err := ReadMessage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != KindBitfield {
		t.Fatalf("Kind = %v, want KindBitfield", msg.Kind)
	}
	if !bytes.Equal(msg.Bitfield, payload) {
		t.Errorf("Bitfield = %v, want %v", msg.Bitfield, payload)
	}
}

func TestReadMessagePiece(t *testing.T) {
	var buf bytes.Buffer
	block := []byte("block-data")
	payload := make([]byte, 8+len(block))
	payload[3] = 5  // piece index 5
	payload[7] = 10 // offset 10
	copy(payload[8:], block)
	buf.Write([]byte{0, 0, 0, byte(len(payload) + 1)})
	buf.WriteByte(byte(idPiece))
	buf.Write(payload)

	msg, err := ReadMessage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != KindPiece || msg.PieceIndex != 5 || msg.Offset != 10 {
		t.Fatalf("unexpected decode: %+v", msg)
	}
	if !bytes.Equal(msg.Block, block) {
		t.Errorf("Block = %q, want %q", msg.Block, block)
	}
}

func TestReadMessageUnknownIsNotFatal(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 2, 42, 0xAA})
	msg, err := ReadMessage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != KindUnknown || msg.UnknownID != 42 {
		t.Errorf("got %+v, want Unknown{id:42}", msg)
	}
}

func rawUnchoke() []byte {
	return encode(idUnchoke, nil)
}
