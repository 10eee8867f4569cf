// Package games implements the playable mechanics of a campaign as state machines.
// Every widget is built from its typed configuration, reports completion at most once per
// play-through, and draws randomness from an injected source.
package games

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/promogame/backend/internal/models"
)

var (
	// ErrGameOver is returned for actions after completion or time-out.
	ErrGameOver = errors.New("game is over")
	// ErrInvalidMove is returned for actions the current state does not allow.
	ErrInvalidMove = errors.New("invalid move")
	// ErrMisconfigured is returned when a configuration cannot produce a playable game.
	ErrMisconfigured = errors.New("game is misconfigured")
)

// Result is what a widget reports on completion.
type Result struct {
	Game    models.CampaignType `json:"game"`
	Label   string              `json:"label"`
	Won     bool                `json:"won"`
	Score   int                 `json:"score"`
	Details map[string]any      `json:"details,omitempty"`
}

// CompleteFunc receives the result of a finished play-through.
type CompleteFunc func(Result)

// Completion guards a widget's completion callback so it fires once.
type Completion struct {
	Done   bool    `json:"done"`
	Result *Result `json:"result,omitempty"`
	fn     CompleteFunc
}

// OnComplete sets the callback invoked when the play-through finishes.
func (c *Completion) OnComplete(fn CompleteFunc) { c.fn = fn }

// Finished returns the result once the play-through is over.
func (c *Completion) Finished() (*Result, bool) { return c.Result, c.Done }

func (c *Completion) complete(r Result) bool {
	if c.Done {
		return false
	}
	c.Done = true
	c.Result = &r
	if c.fn != nil {
		c.fn(r)
	}
	return true
}

// NewRand returns a randomness source seeded from the clock.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}

// SeededRand returns a deterministic randomness source.
func SeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
