package games

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/promogame/backend/internal/models"
)

const (
	// DefaultTargetDuration is the length of a target session.
	DefaultTargetDuration = 30 * time.Second
	defaultTargetCount    = 3
	defaultTargetInterval = 1500 * time.Millisecond

	// MaxTargetDuration bounds the length of a target session.
	MaxTargetDuration = 10 * time.Minute
	// MinTargetInterval bounds how often targets refresh.
	MinTargetInterval = 100 * time.Millisecond
)

// TargetPositions is the pool targets spawn from, in percent of the play area.
var TargetPositions = []Point{
	{X: 20, Y: 20}, {X: 50, Y: 20}, {X: 80, Y: 20},
	{X: 20, Y: 50}, {X: 50, Y: 50}, {X: 80, Y: 50},
	{X: 20, Y: 80}, {X: 50, Y: 80}, {X: 80, Y: 80},
}

// TargetState is the phase of a target session.
type TargetState string

const (
	TargetIdle    TargetState = "idle"
	TargetRunning TargetState = "running"
	TargetOver    TargetState = "over"
)

// Spot is one clickable target.
type Spot struct {
	ID  int   `json:"id"`
	Pos Point `json:"pos"`
}

// Target is the timed target shooting game.
type Target struct {
	Completion
	State     TargetState   `json:"state"`
	Count     int           `json:"count"`
	Interval  time.Duration `json:"interval"`
	Remaining time.Duration `json:"remaining"`
	Elapsed   time.Duration `json:"since_refresh"`
	Spots     []Spot        `json:"spots"`
	Score     int           `json:"score"`
	Misses    int           `json:"misses"`
	NextID    int           `json:"next_id"`

	rng *rand.Rand
}

// NewTarget builds an idle session.
func NewTarget(cfg *models.TargetConfig, rng *rand.Rand) *Target {
	t := &Target{
		State:     TargetIdle,
		Count:     defaultTargetCount,
		Interval:  defaultTargetInterval,
		Remaining: DefaultTargetDuration,
		Spots:     []Spot{},
		rng:       rng,
	}
	if cfg != nil {
		if cfg.Targets > 0 {
			t.Count = min(cfg.Targets, len(TargetPositions))
		}
		if cfg.Speed > 0 {
			ms := max(cfg.Speed, int(MinTargetInterval/time.Millisecond))
			t.Interval = time.Duration(min(ms, int(MaxTargetDuration/time.Millisecond))) * time.Millisecond
		}
		if cfg.Duration > 0 {
			t.Remaining = time.Duration(min(cfg.Duration, int(MaxTargetDuration/time.Second))) * time.Second
		}
	}
	return t
}

// Attach sets the randomness source of a session restored from a snapshot.
func (t *Target) Attach(rng *rand.Rand) { t.rng = rng }

// Start begins the countdown and spawns the first targets.
func (t *Target) Start() error {
	if t.State != TargetIdle {
		return fmt.Errorf("%w: session is %s", ErrInvalidMove, t.State)
	}
	t.State = TargetRunning
	t.spawn()
	return nil
}

func (t *Target) spawn() {
	perm := t.rng.Perm(len(TargetPositions))
	t.Spots = t.Spots[:0]
	for _, p := range perm[:t.Count] {
		t.NextID++
		t.Spots = append(t.Spots, Spot{ID: t.NextID, Pos: TargetPositions[p]})
	}
}

// Hit scores the target with the given id and removes it until the next refresh.
func (t *Target) Hit(id int) error {
	if t.State != TargetRunning {
		return ErrGameOver
	}
	for i, s := range t.Spots {
		if s.ID == id {
			t.Score++
			t.Spots = append(t.Spots[:i], t.Spots[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: no target %d", ErrInvalidMove, id)
}

// Miss counts a click on the background.
func (t *Target) Miss() error {
	if t.State != TargetRunning {
		return ErrGameOver
	}
	t.Misses++
	return nil
}

// Advance moves the clock by d, refreshing targets every interval and ending the session
// when the timer reaches zero.
func (t *Target) Advance(d time.Duration) {
	if t.State != TargetRunning || d <= 0 {
		return
	}
	if d >= t.Remaining {
		t.Remaining = 0
		t.State = TargetOver
		t.Spots = t.Spots[:0]
		t.complete(Result{
			Game:    models.TypeTarget,
			Label:   fmt.Sprintf("%d hits", t.Score),
			Won:     t.Score > 0,
			Score:   t.Score,
			Details: map[string]any{"score": t.Score, "misses": t.Misses},
		})
		return
	}
	t.Remaining -= d
	t.Elapsed += d
	if t.Elapsed >= t.Interval {
		t.Elapsed %= t.Interval
		t.spawn()
	}
}
