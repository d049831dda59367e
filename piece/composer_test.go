package piece

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLen(n int) PieceLenFunc {
	return func(int) int { return n }
}

func TestComposerEmitsPieceOnCompletion(t *testing.T) {
	c := NewComposer(fixedLen(9))

	p, err := c.AppendBlock(Block{PieceIndex: 0, Offset: 0, Data: []byte("aaa")})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = c.AppendBlock(Block{PieceIndex: 0, Offset: 3, Data: []byte("bbb")})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = c.AppendBlock(Block{PieceIndex: 0, Offset: 6, Data: []byte("ccc")})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, uint32(0), p.Index)
	assert.Equal(t, "aaabbbccc", string(p.Data))
}

func TestComposerShortLastPieceCompletesAtExactLength(t *testing.T) {
	c := NewComposer(func(index int) int {
		if index == 1 {
			return 4
		}
		return 10
	})
	p, err := c.AppendBlock(Block{PieceIndex: 1, Offset: 0, Data: []byte("ab")})
	require.NoError(t, err)
	assert.Nil(t, p)
	p, err = c.AppendBlock(Block{PieceIndex: 1, Offset: 2, Data: []byte("cd")})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "abcd", string(p.Data))
}

func TestComposerRejectsWrongPieceIndex(t *testing.T) {
	c := NewComposer(fixedLen(10))
	_, err := c.AppendBlock(Block{PieceIndex: 0, Offset: 0, Data: []byte("a")})
	require.NoError(t, err)

	_, err = c.AppendBlock(Block{PieceIndex: 1, Offset: 1, Data: []byte("b")})
	require.Error(t, err)
	assert.Equal(t, UnexpectedPieceIndexError{Expected: 0, Actual: 1}, err)
}

func TestComposerRejectsGap(t *testing.T) {
	c := NewComposer(fixedLen(10))
	_, err := c.AppendBlock(Block{PieceIndex: 0, Offset: 0, Data: []byte("aaa")})
	require.NoError(t, err)

	_, err = c.AppendBlock(Block{PieceIndex: 0, Offset: 5, Data: []byte("bbb")})
	require.Error(t, err)
	assert.Equal(t, UnexpectedBlockOffsetError{Expected: 3, Actual: 5}, err)
}

func TestComposerRejectsDuplicateOffset(t *testing.T) {
	c := NewComposer(fixedLen(10))
	_, err := c.AppendBlock(Block{PieceIndex: 0, Offset: 0, Data: []byte("aaa")})
	require.NoError(t, err)

	_, err = c.AppendBlock(Block{PieceIndex: 0, Offset: 0, Data: []byte("aaa")})
	require.Error(t, err)
}

func TestComposerStartsNewPieceAfterCompletion(t *testing.T) {
	c := NewComposer(fixedLen(3))
	p, err := c.AppendBlock(Block{PieceIndex: 0, Offset: 0, Data: []byte("abc")})
	require.NoError(t, err)
	require.NotNil(t, p)

	p, err = c.AppendBlock(Block{PieceIndex: 1, Offset: 0, Data: []byte("def")})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, uint32(1), p.Index)
}
