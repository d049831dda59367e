package metainfo

import (
	"bytes"
	"testing"

	"github.com/jrmo/bitpeer/bencode"
)

func encode(t *testing.T, s string) bencode.Dict {
	t.Helper()
	d, err := bencode.NewDecoder([]byte(s)).DecodeDict()
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return d
}

func TestParseSingleFileTorrent(t *testing.T) {
	pieces := bytes.Repeat([]byte{0xAB}, 40) // two piece hashes
	src := "d8:announce26:http://tracker.example/ann4:infod" +
		"6:lengthi20e4:name4:file12:piece lengthi10e6:pieces" +
		"40:" + string(pieces) + "ee"
	root := encode(t, src)

	torrent, err := Parse(root)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if torrent.Announce != "http://tracker.example/ann" {
		t.Errorf("Announce = %q", torrent.Announce)
	}
	if torrent.Info.Name != "file" {
		t.Errorf("Name = %q", torrent.Info.Name)
	}
	if torrent.Info.PieceLength != 10 || torrent.Info.Length != 20 {
		t.Errorf("PieceLength/Length = %d/%d", torrent.Info.PieceLength, torrent.Info.Length)
	}
	if torrent.Info.PieceCount() != 2 {
		t.Errorf("PieceCount() = %d, want 2", torrent.Info.PieceCount())
	}
	if torrent.Info.PieceLen(0) != 10 || torrent.Info.PieceLen(1) != 10 {
		t.Errorf("unexpected effective piece lengths")
	}
}

func TestParseShortLastPiece(t *testing.T) {
	pieces := bytes.Repeat([]byte{0xCD}, 60) // three piece hashes
	src := "d8:announce4:http4:infod" +
		"6:lengthi25e4:name4:file12:piece lengthi10e6:pieces" +
		"60:" + string(pieces) + "ee"
	root := encode(t, src)

	torrent, err := Parse(root)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if torrent.Info.PieceCount() != 3 {
		t.Fatalf("PieceCount() = %d, want 3", torrent.Info.PieceCount())
	}
	if torrent.Info.PieceLen(2) != 5 {
		t.Errorf("last piece length = %d, want 5", torrent.Info.PieceLen(2))
	}
}

func TestParseRejectsInconsistentPieceCount(t *testing.T) {
	pieces := bytes.Repeat([]byte{0xAB}, 20) // one hash, but length implies two
	src := "d8:announce4:http4:infod" +
		"6:lengthi20e4:name4:file12:piece lengthi10e6:pieces" +
		"20:" + string(pieces) + "ee"
	root := encode(t, src)

	if _, err := Parse(root); err == nil {
		t.Fatal("expected an error for mismatched piece count")
	}
}

func TestParseRejectsMissingAnnounce(t *testing.T) {
	src := "d4:infod6:lengthi1e4:name1:a12:piece lengthi1e6:pieces20:" +
		string(bytes.Repeat([]byte{0}, 20)) + "ee"
	root := encode(t, src)
	if _, err := Parse(root); err == nil {
		t.Fatal("expected an error for missing announce")
	}
}
