package request

import "testing"

type recordingSender struct {
	reqs [][3]uint32
}

func (r *recordingSender) SendRequest(pieceIndex, offset, length uint32) error {
	r.reqs = append(r.reqs, [3]uint32{pieceIndex, offset, length})
	return nil
}

func pieceLenFor(fileLength, pieceLength int) PieceLenFunc {
	pieceCount := (fileLength-1)/pieceLength + 1
	return func(index int) int {
		if index == pieceCount-1 {
			if rem := fileLength % pieceLength; rem != 0 {
				return rem
			}
		}
		return pieceLength
	}
}

func TestEmitterShortFileSequence(t *testing.T) {
	// file_length=15, piece_length=10, block_length=10
	pieceCount := (15-1)/10 + 1 // 2
	e := NewEmitter(pieceCount, pieceLenFor(15, 10), 10)
	s := &recordingSender{}

	for !e.Done() {
		if err := e.RequestNext(s); err != nil {
			t.Fatal(err)
		}
	}

	want := [][3]uint32{{0, 0, 10}, {1, 0, 5}}
	assertReqs(t, want, s.reqs)

	// Exhausted: further calls are no-ops.
	if err := e.RequestNext(s); err != nil {
		t.Fatal(err)
	}
	assertReqs(t, want, s.reqs)
}

func TestEmitterFirstThreeEmissions(t *testing.T) {
	// file_length=1000, piece_length=15, block_length=10
	pieceCount := (1000-1)/15 + 1
	e := NewEmitter(pieceCount, pieceLenFor(1000, 15), 10)
	s := &recordingSender{}

	if err := e.RequestFirst(3, s); err != nil {
		t.Fatal(err)
	}
	want := [][3]uint32{{0, 0, 10}, {0, 10, 5}, {1, 0, 10}}
	assertReqs(t, want, s.reqs)
}

func assertReqs(t *testing.T, want, got [][3]uint32) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("got %d requests %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("request %d = %v, want %v", i, got[i], want[i])
		}
	}
}
