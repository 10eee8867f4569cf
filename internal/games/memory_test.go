package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/models"
)

func pairsOf(m *Memory) map[string][]int {
	out := map[string][]int{}
	for i, c := range m.Cards {
		out[c.PairID] = append(out[c.PairID], i)
	}
	return out
}

func TestMemoryDeck(t *testing.T) {
	m, err := NewMemory(&models.MemoryConfig{Pairs: 4, Cards: []models.MemoryCard{{ID: "cat", Label: "Cat"}}}, SeededRand(3))
	require.NoError(t, err)
	assert.Len(t, m.Cards, 8)
	pairs := pairsOf(m)
	assert.Len(t, pairs, 4)
	for _, idx := range pairs {
		assert.Len(t, idx, 2)
	}
	assert.Contains(t, pairs, "cat")
	assert.Equal(t, MemoryIdle, m.State())
}

func TestMemoryMovesCountAttemptsAndCompletes(t *testing.T) {
	m, err := NewMemory(&models.MemoryConfig{Pairs: 3}, SeededRand(9))
	require.NoError(t, err)
	completions := 0
	m.OnComplete(func(Result) { completions++ })

	pairs := pairsOf(m)
	var ids []string
	for id := range pairs {
		ids = append(ids, id)
	}

	attempts := 0
	// One deliberate mismatch per pair, then the match.
	for k, id := range ids {
		other := ids[(k+1)%len(ids)]
		if !m.Cards[pairs[other][0]].Matched {
			out, err := m.Flip(pairs[id][0])
			require.NoError(t, err)
			assert.Equal(t, MemoryOneUp, out.State)
			out, err = m.Flip(pairs[other][0])
			require.NoError(t, err)
			attempts++
			assert.True(t, out.Compared)
			assert.False(t, out.Match)
			assert.Equal(t, MemoryMismatch, m.State())
			m.Settle()
			assert.Equal(t, MemoryIdle, m.State())
		}
		assert.False(t, m.Done)
		_, err := m.Flip(pairs[id][0])
		require.NoError(t, err)
		out, err := m.Flip(pairs[id][1])
		require.NoError(t, err)
		attempts++
		assert.True(t, out.Match)
	}

	assert.Equal(t, attempts, m.Moves)
	assert.True(t, m.Done)
	assert.Equal(t, MemoryComplete, m.State())
	assert.Equal(t, 1, completions)

	_, err = m.Flip(0)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestMemoryMismatchFlipsBackOnNextFlip(t *testing.T) {
	m, err := NewMemory(&models.MemoryConfig{Pairs: 2}, SeededRand(5))
	require.NoError(t, err)
	pairs := pairsOf(m)
	a, b := pairs["0"][0], pairs["1"][0]

	_, err = m.Flip(a)
	require.NoError(t, err)
	_, err = m.Flip(b)
	require.NoError(t, err)

	_, err = m.Flip(pairs["0"][1])
	require.NoError(t, err)
	assert.False(t, m.Cards[a].FaceUp)
	assert.False(t, m.Cards[b].FaceUp)
	assert.Equal(t, 1, m.Moves)
}

func TestMemoryRejectsInvalidFlips(t *testing.T) {
	m, err := NewMemory(&models.MemoryConfig{Pairs: 2}, SeededRand(5))
	require.NoError(t, err)
	_, err = m.Flip(-1)
	assert.ErrorIs(t, err, ErrInvalidMove)
	_, err = m.Flip(0)
	require.NoError(t, err)
	_, err = m.Flip(0)
	assert.ErrorIs(t, err, ErrInvalidMove)
	assert.Equal(t, 0, m.Moves)
}
