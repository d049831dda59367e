// Package metainfo exposes a typed view over a decoded .torrent file: the
// announce URL and the info dictionary (name, piece length, file length,
// per-piece SHA-1s, and the info dict's own content hash).
package metainfo

import (
	"fmt"

	"github.com/jrmo/bitpeer/bencode"
	"github.com/jrmo/bitpeer/ids"
)

// Info is the typed "info" sub-dictionary of a single-file torrent.
type Info struct {
	Name        string
	PieceLength uint32
	Length      int
	Pieces      []ids.Sha1
	SHA1        ids.Sha1
}

// Torrent is a parsed single-file .torrent metainfo file.
type Torrent struct {
	Announce string
	Info     Info
}

// Parse reads a decoded root dict into a Torrent, validating the
// invariants spec.md §3/§4.2 require: piece count matches file/piece
// length, and the pieces blob is a multiple of 20 bytes.
func Parse(root bencode.Dict) (*Torrent, error) {
	announce, ok := root.GetString("announce")
	if !ok {
		return nil, fmt.Errorf("metainfo: missing or non-string \"announce\" key")
	}
	infoDict, ok := root.GetDict("info")
	if !ok {
		return nil, fmt.Errorf("metainfo: missing or non-dict \"info\" key")
	}
	info, err := parseInfo(infoDict)
	if err != nil {
		return nil, err
	}
	return &Torrent{Announce: string(announce), Info: *info}, nil
}

func parseInfo(d bencode.Dict) (*Info, error) {
	name, ok := d.GetString("name")
	if !ok {
		return nil, fmt.Errorf("metainfo: info missing or non-string \"name\" key")
	}
	pieceLength, ok := d.GetInt("piece length")
	if !ok || pieceLength <= 0 {
		return nil, fmt.Errorf("metainfo: info missing or invalid \"piece length\" key")
	}
	length, ok := d.GetInt("length")
	if !ok || length <= 0 {
		return nil, fmt.Errorf("metainfo: info missing or invalid \"length\" key")
	}
	piecesBlob, ok := d.GetString("pieces")
	if !ok {
		return nil, fmt.Errorf("metainfo: info missing or non-string \"pieces\" key")
	}
	pieces, err := splitPieces(piecesBlob)
	if err != nil {
		return nil, err
	}

	expectedCount := (int(length)-1)/int(pieceLength) + 1
	if len(pieces) == 0 || len(pieces) != expectedCount {
		return nil, fmt.Errorf(
			"metainfo: inconsistent piece count: have %d pieces, expected %d for length=%d piece_length=%d",
			len(pieces), expectedCount, length, pieceLength,
		)
	}

	return &Info{
		Name:        string(name),
		PieceLength: uint32(pieceLength),
		Length:      int(length),
		Pieces:      pieces,
		SHA1:        d.SHA1,
	}, nil
}

// splitPieces chunks the concatenated 20-byte-per-piece blob into
// individual SHA-1 digests.
func splitPieces(pieces []byte) ([]ids.Sha1, error) {
	if len(pieces)%20 != 0 {
		return nil, fmt.Errorf("metainfo: pieces blob has length %d, not a multiple of 20", len(pieces))
	}
	hashes := make([]ids.Sha1, len(pieces)/20)
	for i := range hashes {
		copy(hashes[i][:], pieces[i*20:(i+1)*20])
	}
	return hashes, nil
}

// PieceCount is a convenience for ceil(Length / PieceLength).
func (i Info) PieceCount() int {
	return len(i.Pieces)
}

// PieceLen returns the effective length of piece index: PieceLength for
// every piece but the last, which may be shorter.
func (i Info) PieceLen(index int) int {
	if index == len(i.Pieces)-1 {
		if rem := i.Length % int(i.PieceLength); rem != 0 {
			return rem
		}
	}
	return int(i.PieceLength)
}
