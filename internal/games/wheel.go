package games

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/promogame/backend/internal/models"
)

// WheelState is the phase of a wheel play-through.
type WheelState string

const (
	WheelIdle     WheelState = "idle"
	WheelSpinning WheelState = "spinning"
	WheelStopped  WheelState = "stopped"
)

const (
	// WheelExtraTurns is the number of full turns before landing.
	WheelExtraTurns = 5
	// WheelSpinDuration is how long the spin animation lasts.
	WheelSpinDuration = 4 * time.Second
)

// SpinResult is the drawn segment and the rotation the client animates.
type SpinResult struct {
	Index    int           `json:"index"`
	Label    string        `json:"label"`
	Rotation float64       `json:"rotation"`
	Duration time.Duration `json:"duration"`
}

// Wheel is the wheel of fortune.
type Wheel struct {
	Completion
	State  WheelState  `json:"state"`
	Landed *SpinResult `json:"landed,omitempty"`

	cfg *models.WheelConfig
	rng *rand.Rand
}

// NewWheel builds an idle wheel. A wheel needs at least one segment.
func NewWheel(cfg *models.WheelConfig, rng *rand.Rand) (*Wheel, error) {
	if cfg == nil || len(cfg.Segments) == 0 {
		return nil, fmt.Errorf("%w: wheel has no segments", ErrMisconfigured)
	}
	return &Wheel{State: WheelIdle, cfg: cfg, rng: rng}, nil
}

// PickSegment returns the index selected by a uniform draw u in [0,1): the draw is scaled
// to the total weight and each weight is subtracted in order until it reaches zero.
func PickSegment(segments []models.WheelSegment, u float64) int {
	total := 0.0
	for _, s := range segments {
		total += s.Weight()
	}
	r := u * total
	for i, s := range segments {
		r -= s.Weight()
		if r <= 0 {
			return i
		}
	}
	return len(segments) - 1
}

// Rotation is the final angle in degrees for landing the pointer on segment i of n.
func Rotation(i, n int) float64 {
	seg := 360.0 / float64(n)
	center := float64(i)*seg + seg/2
	return WheelExtraTurns*360 + (360 - center)
}

// Spin draws the winning segment and moves the wheel to spinning.
func (w *Wheel) Spin() (SpinResult, error) {
	if w.State != WheelIdle {
		return SpinResult{}, fmt.Errorf("%w: wheel is %s", ErrInvalidMove, w.State)
	}
	i := PickSegment(w.cfg.Segments, w.rng.Float64())
	res := SpinResult{
		Index:    i,
		Label:    w.cfg.Segments[i].Label,
		Rotation: Rotation(i, len(w.cfg.Segments)),
		Duration: WheelSpinDuration,
	}
	w.State = WheelSpinning
	w.Landed = &res
	return res, nil
}

// Stop ends the animation and reports the winning label.
func (w *Wheel) Stop() error {
	if w.State != WheelSpinning {
		return fmt.Errorf("%w: wheel is %s", ErrInvalidMove, w.State)
	}
	w.State = WheelStopped
	w.complete(Result{
		Game:    models.TypeWheel,
		Label:   w.Landed.Label,
		Won:     true,
		Details: map[string]any{"index": w.Landed.Index, "rotation": w.Landed.Rotation},
	})
	return nil
}
