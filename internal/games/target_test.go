package games

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/models"
)

func TestTargetSession(t *testing.T) {
	tg := NewTarget(&models.TargetConfig{Targets: 4, Speed: 1000, Duration: 5}, SeededRand(7))
	assert.ErrorIs(t, tg.Hit(1), ErrGameOver)
	require.NoError(t, tg.Start())
	require.Len(t, tg.Spots, 4)

	seen := map[Point]bool{}
	for _, s := range tg.Spots {
		assert.Contains(t, TargetPositions, s.Pos)
		seen[s.Pos] = true
	}
	assert.Len(t, seen, 4, "targets spawn at distinct positions")

	require.NoError(t, tg.Hit(tg.Spots[0].ID))
	assert.Equal(t, 1, tg.Score)
	assert.Len(t, tg.Spots, 3)
	assert.ErrorIs(t, tg.Hit(999), ErrInvalidMove)
	require.NoError(t, tg.Miss())
	assert.Equal(t, 1, tg.Misses)

	tg.Advance(1500 * time.Millisecond)
	assert.Len(t, tg.Spots, 4, "refresh respawns the full set")
	assert.Equal(t, 500*time.Millisecond, tg.Elapsed)

	var res *Result
	tg.OnComplete(func(r Result) { res = &r })
	tg.Advance(10 * time.Second)
	assert.Equal(t, TargetOver, tg.State)
	assert.Equal(t, time.Duration(0), tg.Remaining)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Score)
	assert.ErrorIs(t, tg.Miss(), ErrGameOver)
}

func TestTargetDefaults(t *testing.T) {
	tg := NewTarget(nil, SeededRand(1))
	assert.Equal(t, DefaultTargetDuration, tg.Remaining)
	assert.Equal(t, 3, tg.Count)
}

func TestTargetConfigIsBounded(t *testing.T) {
	tg := NewTarget(&models.TargetConfig{Targets: 3, Speed: 1, Duration: 1 << 40}, SeededRand(1))
	assert.Equal(t, MaxTargetDuration, tg.Remaining)
	assert.Equal(t, MinTargetInterval, tg.Interval)

	require.NoError(t, tg.Start())
	before := tg.NextID
	tg.Advance(MaxTargetDuration - time.Second)
	assert.Equal(t, before+3, tg.NextID, "one refresh however many intervals passed")
	assert.Less(t, tg.Elapsed, tg.Interval)
}
