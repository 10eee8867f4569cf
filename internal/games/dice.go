package games

import (
	"math/rand/v2"
	"strconv"

	"github.com/promogame/backend/internal/models"
)

const (
	defaultDiceSides = 6
	diceFrames       = 10
)

// DiceRoll is the rolled value and the faces shown while the die tumbles.
type DiceRoll struct {
	Value  int   `json:"value"`
	Frames []int `json:"frames"`
}

// Dice is a single die.
type Dice struct {
	Completion
	Sides int `json:"sides"`
	rng   *rand.Rand
}

// NewDice builds a die; sides below 2 fall back to six.
func NewDice(cfg *models.DiceConfig, rng *rand.Rand) *Dice {
	sides := defaultDiceSides
	if cfg != nil && cfg.Sides >= 2 {
		sides = cfg.Sides
	}
	return &Dice{Sides: sides, rng: rng}
}

// Roll draws a uniform value in [1, sides]; the last animation frame is the value.
func (d *Dice) Roll() (DiceRoll, error) {
	if d.Done {
		return DiceRoll{}, ErrGameOver
	}
	frames := make([]int, diceFrames)
	for i := range frames[:diceFrames-1] {
		frames[i] = d.rng.IntN(d.Sides) + 1
	}
	v := d.rng.IntN(d.Sides) + 1
	frames[diceFrames-1] = v
	d.complete(Result{
		Game:    models.TypeDice,
		Label:   strconv.Itoa(v),
		Won:     v == d.Sides,
		Score:   v,
		Details: map[string]any{"value": v},
	})
	return DiceRoll{Value: v, Frames: frames}, nil
}
