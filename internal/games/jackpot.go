package games

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/promogame/backend/internal/models"
)

const (
	defaultReels = 3
	// MaxReels bounds the number of reels of a slot machine.
	MaxReels = 10
)

// WinnerCap grants instant wins up to a maximum per key. TryClaim must be atomic: two
// concurrent claims against the last free slot cannot both succeed.
type WinnerCap interface {
	TryClaim(ctx context.Context, key string, max int) (bool, error)
}

// ClaimCounter returns the number of winners already granted under key, typically from
// stored results. Caps use it to start from the persisted count instead of zero.
type ClaimCounter func(ctx context.Context, key string) (int, error)

// MemoryCap is a process-local WinnerCap.
type MemoryCap struct {
	mu     sync.Mutex
	counts map[string]int
	seed   ClaimCounter
}

// NewMemoryCap creates an empty in-process cap.
func NewMemoryCap() *MemoryCap {
	return &MemoryCap{counts: make(map[string]int)}
}

// NewSeededMemoryCap creates an in-process cap that loads the count of a key from seed
// the first time the key is claimed.
func NewSeededMemoryCap(seed ClaimCounter) *MemoryCap {
	return &MemoryCap{counts: make(map[string]int), seed: seed}
}

// TryClaim increments the count for key when it is below max.
func (m *MemoryCap) TryClaim(ctx context.Context, key string, max int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, loaded := m.counts[key]; !loaded && m.seed != nil {
		n, err := m.seed(ctx, key)
		if err != nil {
			return false, fmt.Errorf("load winner count: %w", err)
		}
		m.counts[key] = n
	}
	if max > 0 && m.counts[key] >= max {
		return false, nil
	}
	m.counts[key]++
	return true, nil
}

// JackpotResult is the outcome of one pull.
type JackpotResult struct {
	Symbols    []string `json:"symbols"`
	Won        bool     `json:"won"`
	InstantWin bool     `json:"instant_win"`
	Message    string   `json:"message"`
}

// Jackpot is the slot machine.
type Jackpot struct {
	Completion
	cfg *models.JackpotConfig
	rng *rand.Rand
}

// NewJackpot builds a slot machine; it needs at least one symbol.
func NewJackpot(cfg *models.JackpotConfig, rng *rand.Rand) (*Jackpot, error) {
	if cfg == nil || len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("%w: jackpot has no symbols", ErrMisconfigured)
	}
	return &Jackpot{cfg: cfg, rng: rng}, nil
}

// Pull draws one symbol per reel; the pull wins when every reel shows the same symbol.
// When instant win is enabled an independent draw below winProbability claims a slot from
// winners under capKey; a granted claim wins and the reels are aligned on one symbol.
func (j *Jackpot) Pull(ctx context.Context, winners WinnerCap, capKey string) (JackpotResult, error) {
	if j.Done {
		return JackpotResult{}, ErrGameOver
	}
	reels := j.cfg.Reels
	if reels <= 0 {
		reels = defaultReels
	}
	reels = min(reels, MaxReels)
	symbols := make([]string, reels)
	for i := range symbols {
		symbols[i] = j.cfg.Symbols[j.rng.IntN(len(j.cfg.Symbols))]
	}
	res := JackpotResult{Symbols: symbols, Won: allSame(symbols)}

	iw := j.cfg.InstantWin
	if iw.Enabled && winners != nil && j.rng.Float64() < iw.WinProbability {
		ok, err := winners.TryClaim(ctx, capKey, iw.MaxWinners)
		if err != nil {
			return JackpotResult{}, fmt.Errorf("claim instant win: %w", err)
		}
		if ok {
			res.InstantWin = true
			res.Won = true
			for i := range res.Symbols {
				res.Symbols[i] = res.Symbols[0]
			}
		}
	}

	res.Message = j.cfg.LoseMessage
	if res.Won {
		res.Message = j.cfg.WinMessage
	}
	j.complete(Result{
		Game:    models.TypeJackpot,
		Label:   res.Message,
		Won:     res.Won,
		Details: map[string]any{"symbols": res.Symbols, "instant_win": res.InstantWin},
	})
	return res, nil
}

func allSame(s []string) bool {
	for _, v := range s[1:] {
		if v != s[0] {
			return false
		}
	}
	return true
}
