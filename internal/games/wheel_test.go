package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/models"
)

func weight(v float64) *float64 { return &v }

func TestPickSegmentTieBreak(t *testing.T) {
	segs := []models.WheelSegment{{Label: "a"}, {Label: "b"}, {Label: "c"}}
	assert.Equal(t, 0, PickSegment(segs, 0))
	assert.Equal(t, 0, PickSegment(segs, 1.0/3), "draw on a boundary picks the first segment reaching it")
	assert.Equal(t, 1, PickSegment(segs, 0.5))
	assert.Equal(t, 2, PickSegment(segs, 0.999))
}

func TestWheelFrequencyConverges(t *testing.T) {
	cfg := &models.WheelConfig{Segments: []models.WheelSegment{
		{Label: "a", Probability: weight(1)},
		{Label: "b", Probability: weight(2)},
		{Label: "c", Chance: weight(7)},
	}}
	rng := SeededRand(42)
	const n = 100000
	counts := make([]int, 3)
	for i := 0; i < n; i++ {
		w, err := NewWheel(cfg, rng)
		require.NoError(t, err)
		res, err := w.Spin()
		require.NoError(t, err)
		counts[res.Index]++
	}
	for i, want := range []float64{0.1, 0.2, 0.7} {
		assert.InDelta(t, want, float64(counts[i])/n, 0.01, "segment %d", i)
	}
}

func TestWheelStateMachine(t *testing.T) {
	cfg := models.DefaultGameConfig(models.TypeWheel).(*models.WheelConfig)
	w, err := NewWheel(cfg, SeededRand(1))
	require.NoError(t, err)
	assert.ErrorIs(t, w.Stop(), ErrInvalidMove)

	var results []Result
	w.OnComplete(func(r Result) { results = append(results, r) })

	res, err := w.Spin()
	require.NoError(t, err)
	assert.Equal(t, WheelSpinning, w.State)
	assert.Equal(t, cfg.Segments[res.Index].Label, res.Label)
	assert.Greater(t, res.Rotation, float64(WheelExtraTurns*360))

	_, err = w.Spin()
	assert.ErrorIs(t, err, ErrInvalidMove)

	require.NoError(t, w.Stop())
	assert.Equal(t, WheelStopped, w.State)
	assert.ErrorIs(t, w.Stop(), ErrInvalidMove)
	require.Len(t, results, 1)
	assert.Equal(t, res.Label, results[0].Label)
}

func TestRotationLandsOnSegmentCenter(t *testing.T) {
	assert.Equal(t, 5*360+315.0, Rotation(0, 4))
	assert.Equal(t, 5*360+45.0, Rotation(3, 4))
}

func TestNewWheelRequiresSegments(t *testing.T) {
	_, err := NewWheel(&models.WheelConfig{}, SeededRand(1))
	assert.ErrorIs(t, err, ErrMisconfigured)
}
