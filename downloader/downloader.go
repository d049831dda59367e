// Package downloader is the request pump (spec.md §4.9): it primes a
// window of outstanding block requests, then for every received block
// emits one replacement request, reassembles pieces, verifies their
// SHA-1, and places them into an in-memory output buffer while reporting
// progress.
package downloader

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jrmo/bitpeer/ids"
	"github.com/jrmo/bitpeer/piece"
	"github.com/jrmo/bitpeer/request"
	"github.com/jrmo/bitpeer/wire"
)

// DefaultWindow is the default number of outstanding block requests kept
// in flight (spec.md §4.9 rationale: enough to hide peer-side latency
// without exceeding common peer limits).
const DefaultWindow = 150

// PieceHashMismatchError reports a piece whose SHA-1 does not match the
// metainfo's recorded hash — a fatal, unrecoverable protocol error.
type PieceHashMismatchError struct{ Index uint32 }

func (e PieceHashMismatchError) Error() string {
	return fmt.Sprintf("downloader: piece %d failed hash verification", e.Index)
}

// UnexpectedMessageError reports any message other than Piece received
// while the pump is waiting for block data.
type UnexpectedMessageError struct{ Kind wire.MessageKind }

func (e UnexpectedMessageError) Error() string {
	return fmt.Sprintf("downloader: unexpected message kind %d while awaiting a piece", e.Kind)
}

// Channel is the contract the pump needs from a peer connection: send a
// block request, receive the next message.
type Channel interface {
	SendRequest(pieceIndex, offset, length uint32) error
	Receive() (*wire.PeerMessage, error)
}

// ProgressFunc is invoked once per completed piece, with the running
// total of downloaded bytes and the file's total length.
type ProgressFunc func(downloadedBytes, totalBytes int)

// FileInfo is the subset of metainfo.Info the pump needs.
type FileInfo struct {
	Length      int
	PieceLength uint32
	PieceHashes []ids.Sha1
	PieceLen    func(index int) int
}

// Options configures window size and block length; both default to the
// spec's recommended values when zero.
type Options struct {
	Window      int
	BlockLength uint32
	OnProgress  ProgressFunc
}

var log = logrus.WithField("component", "downloader")

// Download drives the full single-peer download over ch, returning the
// assembled and verified file bytes.
func Download(ch Channel, info FileInfo, opts Options) ([]byte, error) {
	window := opts.Window
	if window == 0 {
		window = DefaultWindow
	}
	blockLength := opts.BlockLength
	if blockLength == 0 {
		blockLength = request.DefaultBlockLength
	}

	pieceCount := len(info.PieceHashes)
	emitter := request.NewEmitter(pieceCount, info.PieceLen, blockLength)
	composer := piece.NewComposer(info.PieceLen)
	out := make([]byte, info.Length)

	if err := emitter.RequestFirst(window, ch); err != nil {
		return nil, errors.Wrap(err, "priming request window")
	}

	downloadedBytes := 0
	downloadedPieces := 0
	for downloadedPieces < pieceCount {
		msg, err := ch.Receive()
		if err != nil {
			return nil, errors.Wrap(err, "receiving block")
		}
		if msg.Kind != wire.KindPiece {
			return nil, UnexpectedMessageError{Kind: msg.Kind}
		}

		if err := emitter.RequestNext(ch); err != nil {
			return nil, errors.Wrap(err, "replenishing request window")
		}

		block := piece.Block{PieceIndex: msg.PieceIndex, Offset: msg.Offset, Data: msg.Block}
		completed, err := composer.AppendBlock(block)
		if err != nil {
			return nil, errors.Wrap(err, "reassembling piece")
		}
		if completed == nil {
			continue
		}

		if !info.PieceHashes[completed.Index].Verify(completed.Data) {
			log.WithField("piece", completed.Index).Error("piece failed hash verification")
			return nil, PieceHashMismatchError{Index: completed.Index}
		}

		start := int(completed.Index) * int(info.PieceLength)
		copy(out[start:], completed.Data)

		downloadedPieces++
		downloadedBytes += len(completed.Data)
		log.WithFields(logrus.Fields{
			"piece":     completed.Index,
			"completed": downloadedPieces,
			"total":     pieceCount,
		}).Debug("piece verified")
		if opts.OnProgress != nil {
			opts.OnProgress(downloadedBytes, info.Length)
		}
	}

	return out, nil
}
