// Package request enumerates the (piece, offset, length) block requests
// that cover a single-file torrent, in order.
package request

// Sender is the narrow contract the Emitter needs to push a Request
// message over the wire.
type Sender interface {
	SendRequest(pieceIndex, offset, length uint32) error
}

// PieceLenFunc returns the effective length of piece index.
type PieceLenFunc func(index int) int

// Emitter walks every block of every piece in a file, in order, sending
// one Request per call to RequestNext.
type Emitter struct {
	pieceCount  int
	pieceLen    PieceLenFunc
	blockLength uint32

	nextPiece        int
	nextBlockInPiece uint32
}

// DefaultBlockLength is the conventional 16 KiB block size.
const DefaultBlockLength = 16384

// NewEmitter returns an Emitter over pieceCount pieces, using pieceLen to
// look up each piece's effective length and blockLength as the max size
// of a single block request.
func NewEmitter(pieceCount int, pieceLen PieceLenFunc, blockLength uint32) *Emitter {
	return &Emitter{pieceCount: pieceCount, pieceLen: pieceLen, blockLength: blockLength}
}

// Done reports whether every block has already been requested.
func (e *Emitter) Done() bool {
	return e.nextPiece >= e.pieceCount
}

// RequestNext sends the next (piece, offset, length) request over ch and
// advances. It is a no-op once the emitter is exhausted.
func (e *Emitter) RequestNext(ch Sender) error {
	if e.Done() {
		return nil
	}

	pieceLen := uint32(e.pieceLen(e.nextPiece))
	blockCount := (pieceLen + e.blockLength - 1) / e.blockLength

	offset := e.nextBlockInPiece * e.blockLength
	length := e.blockLength
	if offset+length > pieceLen {
		length = pieceLen - offset
	}

	if err := ch.SendRequest(uint32(e.nextPiece), offset, length); err != nil {
		return err
	}

	e.nextBlockInPiece++
	if e.nextBlockInPiece == blockCount {
		e.nextBlockInPiece = 0
		e.nextPiece++
	}
	return nil
}

// RequestFirst calls RequestNext n times, priming the pipeline.
func (e *Emitter) RequestFirst(n int, ch Sender) error {
	for i := 0; i < n && !e.Done(); i++ {
		if err := e.RequestNext(ch); err != nil {
			return err
		}
	}
	return nil
}
