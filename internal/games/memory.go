package games

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/promogame/backend/internal/models"
)

// MemoryState is the phase of a memory play-through.
type MemoryState string

const (
	MemoryIdle     MemoryState = "idle"
	MemoryOneUp    MemoryState = "one_flipped"
	MemoryMismatch MemoryState = "mismatch"
	MemoryComplete MemoryState = "complete"
)

// DefaultMemoryPairs is used when the configuration sets no pair count.
const DefaultMemoryPairs = 6

// MemoryCard is one card on the table.
type MemoryCard struct {
	PairID  string `json:"pair_id"`
	Label   string `json:"label,omitempty"`
	Image   string `json:"image,omitempty"`
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
}

// FlipOutcome describes the effect of one flip.
type FlipOutcome struct {
	Index    int         `json:"index"`
	Card     MemoryCard  `json:"card"`
	Compared bool        `json:"compared"`
	Match    bool        `json:"match"`
	Moves    int         `json:"moves"`
	State    MemoryState `json:"state"`
}

// Memory is the card matching game.
type Memory struct {
	Completion
	Cards   []MemoryCard `json:"cards"`
	Up      []int        `json:"up"`
	Moves   int          `json:"moves"`
	Matches int          `json:"matches"`
	Pairs   int          `json:"pairs"`
}

// NewMemory deals a shuffled deck of two cards per pair. Configured card faces are used in
// order; missing faces are numbered.
func NewMemory(cfg *models.MemoryConfig, rng *rand.Rand) (*Memory, error) {
	pairs := DefaultMemoryPairs
	if cfg != nil && cfg.Pairs > 0 {
		pairs = cfg.Pairs
	}
	if pairs > 32 {
		return nil, fmt.Errorf("%w: %d pairs", ErrMisconfigured, pairs)
	}
	deck := make([]MemoryCard, 0, pairs*2)
	for p := 0; p < pairs; p++ {
		card := MemoryCard{PairID: strconv.Itoa(p), Label: strconv.Itoa(p + 1)}
		if cfg != nil && p < len(cfg.Cards) {
			face := cfg.Cards[p]
			if face.ID != "" {
				card.PairID = face.ID
			}
			card.Label, card.Image = face.Label, face.Image
		}
		deck = append(deck, card, card)
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return &Memory{Cards: deck, Up: []int{}, Pairs: pairs}, nil
}

// State reports the current phase.
func (m *Memory) State() MemoryState {
	switch {
	case m.Done:
		return MemoryComplete
	case len(m.Up) == 2:
		return MemoryMismatch
	case len(m.Up) == 1:
		return MemoryOneUp
	}
	return MemoryIdle
}

// Flip turns card i face up. The second flip of an attempt counts one move and compares the
// pair: a match locks both cards, a mismatch leaves them up until Settle or the next flip.
func (m *Memory) Flip(i int) (FlipOutcome, error) {
	if m.Done {
		return FlipOutcome{}, ErrGameOver
	}
	if i < 0 || i >= len(m.Cards) {
		return FlipOutcome{}, fmt.Errorf("%w: card %d out of range", ErrInvalidMove, i)
	}
	if len(m.Up) == 2 {
		m.Settle()
	}
	card := &m.Cards[i]
	if card.Matched || card.FaceUp {
		return FlipOutcome{}, fmt.Errorf("%w: card %d already face up", ErrInvalidMove, i)
	}
	card.FaceUp = true
	m.Up = append(m.Up, i)
	out := FlipOutcome{Index: i, Card: *card}

	if len(m.Up) == 2 {
		m.Moves++
		out.Compared = true
		a, b := &m.Cards[m.Up[0]], &m.Cards[m.Up[1]]
		if a.PairID == b.PairID {
			a.Matched, b.Matched = true, true
			m.Up = m.Up[:0]
			m.Matches++
			out.Match = true
			if m.Matches == m.Pairs {
				m.complete(Result{
					Game:    models.TypeMemory,
					Label:   "complete",
					Won:     true,
					Score:   m.Moves,
					Details: map[string]any{"moves": m.Moves, "pairs": m.Pairs},
				})
			}
		}
	}
	out.Moves = m.Moves
	out.State = m.State()
	return out, nil
}

// Settle turns a mismatched pair back face down.
func (m *Memory) Settle() {
	if len(m.Up) != 2 {
		return
	}
	for _, i := range m.Up {
		m.Cards[i].FaceUp = false
	}
	m.Up = m.Up[:0]
}
