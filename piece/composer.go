// Package piece reassembles blocks received from a peer into complete,
// strictly-ordered pieces.
package piece

import "fmt"

// Block is a fragment of a piece received over the wire.
type Block struct {
	PieceIndex uint32
	Offset     uint32
	Data       []byte
}

// Piece is a fully reassembled piece, not yet hash-verified.
type Piece struct {
	Index uint32
	Data  []byte
}

// UnexpectedPieceIndexError reports a block belonging to a piece other
// than the one currently being assembled.
type UnexpectedPieceIndexError struct{ Expected, Actual uint32 }

func (e UnexpectedPieceIndexError) Error() string {
	return fmt.Sprintf("piece: unexpected piece index: expected %d, got %d", e.Expected, e.Actual)
}

// UnexpectedBlockOffsetError reports a block that does not continue the
// current piece contiguously.
type UnexpectedBlockOffsetError struct{ Expected, Actual uint32 }

func (e UnexpectedBlockOffsetError) Error() string {
	return fmt.Sprintf("piece: unexpected block offset: expected %d, got %d", e.Expected, e.Actual)
}

// PieceLenFunc returns the effective length of piece index (the last
// piece in a file may be shorter than the nominal piece length).
type PieceLenFunc func(index int) int

// Composer reassembles a single piece's blocks at a time, in strict
// ascending offset order with no gaps and no overlap.
type Composer struct {
	pieceLen PieceLenFunc

	hasCurrent bool
	current    uint32
	buffer     []byte
}

// NewComposer returns a Composer that looks up piece lengths via
// pieceLen.
func NewComposer(pieceLen PieceLenFunc) *Composer {
	return &Composer{pieceLen: pieceLen}
}

// AppendBlock folds block into the piece currently being assembled. It
// returns a non-nil Piece once block completes it.
func (c *Composer) AppendBlock(b Block) (*Piece, error) {
	if !c.hasCurrent {
		c.current = b.PieceIndex
		c.hasCurrent = true
	}
	if b.PieceIndex != c.current {
		return nil, UnexpectedPieceIndexError{Expected: c.current, Actual: b.PieceIndex}
	}
	if int(b.Offset) != len(c.buffer) {
		return nil, UnexpectedBlockOffsetError{Expected: uint32(len(c.buffer)), Actual: b.Offset}
	}

	c.buffer = append(c.buffer, b.Data...)

	full := c.pieceLen(int(c.current))
	if len(c.buffer) < full {
		return nil, nil
	}

	out := &Piece{Index: c.current, Data: c.buffer}
	c.buffer = nil
	c.hasCurrent = false
	return out, nil
}
