package play

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/goccy/go-json"

	"github.com/promogame/backend/internal/games"
	"github.com/promogame/backend/internal/models"
)

// ErrUnknownAction is returned for actions the session's game does not understand.
var ErrUnknownAction = errors.New("unknown action")

// Action is one player input sent to a stateful game.
type Action struct {
	Type  string      `json:"type" binding:"required"`
	Index int         `json:"index"`
	Tile  int         `json:"tile"`
	Spot  int         `json:"spot"`
	From  games.Point `json:"from"`
	To    games.Point `json:"to"`
}

// Immediate reports whether the game resolves in a single server-side draw.
func Immediate(t models.CampaignType) bool {
	switch t {
	case models.TypeWheel, models.TypeJackpot, models.TypeDice:
		return true
	}
	return false
}

// resolve plays a single-draw game and returns what the client animates and the result.
func resolve(ctx context.Context, c *models.Campaign, rng *rand.Rand, winners games.WinnerCap) (any, *games.Result, error) {
	switch cfg := c.LiveGameConfig().(type) {
	case *models.WheelConfig:
		w, err := games.NewWheel(cfg, rng)
		if err != nil {
			return nil, nil, err
		}
		spin, err := w.Spin()
		if err != nil {
			return nil, nil, err
		}
		if err := w.Stop(); err != nil {
			return nil, nil, err
		}
		return spin, w.Result, nil
	case *models.JackpotConfig:
		j, err := games.NewJackpot(cfg, rng)
		if err != nil {
			return nil, nil, err
		}
		pull, err := j.Pull(ctx, winners, CapKey(c.ID))
		if err != nil {
			return nil, nil, err
		}
		return pull, j.Result, nil
	case *models.DiceConfig:
		d := games.NewDice(cfg, rng)
		roll, err := d.Roll()
		if err != nil {
			return nil, nil, err
		}
		return roll, d.Result, nil
	}
	return nil, nil, fmt.Errorf("%w: %s has no single-draw game", games.ErrMisconfigured, c.Type)
}

// widget is a stateful game restored from a session.
type widget interface {
	Finished() (*games.Result, bool)
}

// deal builds a fresh stateful game for the campaign. Targets start their timer right away.
func deal(c *models.Campaign, rng *rand.Rand) (widget, error) {
	switch cfg := c.LiveGameConfig().(type) {
	case *models.MemoryConfig:
		return games.NewMemory(cfg, rng)
	case *models.PuzzleConfig:
		return games.NewPuzzle(cfg, rng)
	case *models.ScratchConfig:
		return games.NewScratch(cfg), nil
	case *models.TargetConfig:
		t := games.NewTarget(cfg, rng)
		if err := t.Start(); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s is not playable", games.ErrMisconfigured, c.Type)
}

func restore(s *Session) (widget, error) {
	var w widget
	switch s.Game {
	case models.TypeMemory:
		w = &games.Memory{}
	case models.TypePuzzle:
		w = &games.Puzzle{}
	case models.TypeScratch:
		w = &games.Scratch{}
	case models.TypeTarget:
		t := &games.Target{}
		if err := json.Unmarshal(s.State, t); err != nil {
			return nil, fmt.Errorf("restore target: %w", err)
		}
		t.Attach(games.SeededRand(s.Seed + uint64(s.Actions)))
		return t, nil
	default:
		return nil, fmt.Errorf("%w: no session game %s", games.ErrMisconfigured, s.Game)
	}
	if err := json.Unmarshal(s.State, w); err != nil {
		return nil, fmt.Errorf("restore %s: %w", s.Game, err)
	}
	return w, nil
}

// store writes w back into the session.
func store(s *Session, w widget) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", s.Game, err)
	}
	s.State = raw
	_, s.Done = w.Finished()
	return nil
}

// apply runs one action against the session's game, advancing timed games to now first.
// It returns the action's own outcome (nil when it has none) and the refreshed game.
func apply(s *Session, a Action, now time.Time) (any, widget, error) {
	if s.Done {
		return nil, nil, games.ErrGameOver
	}
	w, err := restore(s)
	if err != nil {
		return nil, nil, err
	}
	elapsed := now.Sub(s.LastTick)
	s.LastTick, s.Actions = now, s.Actions+1
	if t, ok := w.(*games.Target); ok {
		t.Advance(elapsed)
		// Time ran out before the action arrived: the session ends with the score so far.
		if _, done := t.Finished(); done {
			return nil, w, store(s, w)
		}
	}

	var out any
	switch g := w.(type) {
	case *games.Memory:
		switch a.Type {
		case "flip":
			out, err = g.Flip(a.Index)
		case "settle":
			g.Settle()
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownAction, a.Type)
		}
	case *games.Puzzle:
		switch a.Type {
		case "move":
			err = g.Move(a.Tile)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownAction, a.Type)
		}
	case *games.Scratch:
		switch a.Type {
		case "stroke":
			out = map[string]float64{"revealed": g.Stroke(a.From, a.To)}
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownAction, a.Type)
		}
	case *games.Target:
		switch a.Type {
		case "hit":
			err = g.Hit(a.Spot)
		case "miss":
			err = g.Miss()
		case "tick":
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownAction, a.Type)
		}
	}
	if err != nil {
		return nil, w, err
	}
	if err := store(s, w); err != nil {
		return nil, nil, err
	}
	return out, w, nil
}

// MemoryView is the memory table as the player may see it: faces of hidden cards are blanked.
type MemoryView struct {
	Cards   []games.MemoryCard `json:"cards"`
	Moves   int                `json:"moves"`
	Matches int                `json:"matches"`
	Pairs   int                `json:"pairs"`
	State   games.MemoryState  `json:"state"`
}

// ScratchView reports progress without the pixel layer; the prize shows once revealed.
type ScratchView struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Brush         int     `json:"brush"`
	RevealPercent float64 `json:"reveal_percent"`
	Revealed      float64 `json:"revealed"`
	Prize         string  `json:"prize,omitempty"`
}

// View is the public projection of a session's game.
type View struct {
	Game   models.CampaignType `json:"game"`
	Board  any                 `json:"board"`
	Done   bool                `json:"done"`
	Result *games.Result       `json:"result,omitempty"`
}

func viewOf(t models.CampaignType, w widget) View {
	res, done := w.Finished()
	v := View{Game: t, Done: done, Result: res}
	switch g := w.(type) {
	case *games.Memory:
		cards := make([]games.MemoryCard, len(g.Cards))
		for i, c := range g.Cards {
			if c.FaceUp || c.Matched {
				cards[i] = c
			}
		}
		v.Board = MemoryView{Cards: cards, Moves: g.Moves, Matches: g.Matches, Pairs: g.Pairs, State: g.State()}
	case *games.Scratch:
		b := g.Canvas.Bounds()
		sv := ScratchView{Width: b.Dx(), Height: b.Dy(), Brush: g.Brush, RevealPercent: g.RevealPercent, Revealed: g.Revealed}
		if done {
			sv.Prize = g.Prize
		}
		v.Board = sv
	default:
		v.Board = w
	}
	return v
}
