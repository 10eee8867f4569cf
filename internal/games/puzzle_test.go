package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/models"
)

func TestPuzzleShuffleIsPermutationAndUnsolved(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		p, err := NewPuzzle(&models.PuzzleConfig{GridSize: 3}, SeededRand(seed))
		require.NoError(t, err)
		assert.False(t, p.Solved())
		assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, p.Tiles)
	}
}

func TestPuzzleMoves(t *testing.T) {
	p := &Puzzle{Size: 3, Tiles: []int{1, 2, 3, 4, 5, 6, 7, 0, 8}}
	var done []Result
	p.OnComplete(func(r Result) { done = append(done, r) })

	assert.ErrorIs(t, p.Move(1), ErrInvalidMove, "tile not adjacent to blank")
	assert.ErrorIs(t, p.Move(0), ErrInvalidMove)
	assert.ErrorIs(t, p.Move(42), ErrInvalidMove)
	assert.Equal(t, 0, p.Moves)

	require.NoError(t, p.Move(8))
	assert.True(t, p.Solved())
	assert.Equal(t, 1, p.Moves)
	require.Len(t, done, 1)
	assert.ErrorIs(t, p.Move(6), ErrGameOver)
}

func TestPuzzleAdjacencyDoesNotWrapRows(t *testing.T) {
	p := &Puzzle{Size: 3}
	assert.True(t, p.Adjacent(0, 1))
	assert.True(t, p.Adjacent(0, 3))
	assert.False(t, p.Adjacent(2, 3))
	assert.False(t, p.Adjacent(0, 4))
}

func TestNewPuzzleRejectsBadGrid(t *testing.T) {
	_, err := NewPuzzle(&models.PuzzleConfig{GridSize: 9}, SeededRand(1))
	assert.ErrorIs(t, err, ErrMisconfigured)
}
