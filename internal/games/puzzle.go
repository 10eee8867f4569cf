package games

import (
	"fmt"
	"math/rand/v2"

	"github.com/promogame/backend/internal/models"
)

const (
	defaultGridSize = 3
	maxGridSize     = 6
)

// Puzzle is the sliding tile puzzle. Tiles holds the tile number at each cell in row-major
// order; 0 is the blank. The solved board is 1..n²-1 followed by the blank.
type Puzzle struct {
	Completion
	Size  int   `json:"size"`
	Tiles []int `json:"tiles"`
	Moves int   `json:"moves"`
}

// NewPuzzle shuffles a solved board with random legal moves, so the result is always solvable.
func NewPuzzle(cfg *models.PuzzleConfig, rng *rand.Rand) (*Puzzle, error) {
	size := defaultGridSize
	if cfg != nil && cfg.GridSize > 0 {
		size = cfg.GridSize
	}
	if size < 2 || size > maxGridSize {
		return nil, fmt.Errorf("%w: grid size %d", ErrMisconfigured, size)
	}
	p := &Puzzle{Size: size, Tiles: solvedTiles(size)}
	blank, prev := len(p.Tiles)-1, -1
	for i := 0; i < size*size*20 || p.Solved(); i++ {
		options := p.neighbours(blank)
		next := options[rng.IntN(len(options))]
		if next == prev && len(options) > 1 {
			continue
		}
		p.Tiles[blank], p.Tiles[next] = p.Tiles[next], p.Tiles[blank]
		prev, blank = blank, next
	}
	return p, nil
}

func solvedTiles(size int) []int {
	tiles := make([]int, size*size)
	for i := range tiles[:len(tiles)-1] {
		tiles[i] = i + 1
	}
	return tiles
}

func (p *Puzzle) neighbours(cell int) []int {
	row, col := cell/p.Size, cell%p.Size
	var out []int
	if row > 0 {
		out = append(out, cell-p.Size)
	}
	if row < p.Size-1 {
		out = append(out, cell+p.Size)
	}
	if col > 0 {
		out = append(out, cell-1)
	}
	if col < p.Size-1 {
		out = append(out, cell+1)
	}
	return out
}

// Adjacent reports whether cells a and b share an edge.
func (p *Puzzle) Adjacent(a, b int) bool {
	ra, ca := a/p.Size, a%p.Size
	rb, cb := b/p.Size, b%p.Size
	return (ra == rb && abs(ca-cb) == 1) || (ca == cb && abs(ra-rb) == 1)
}

// Solved reports whether every tile is in place.
func (p *Puzzle) Solved() bool {
	for i, t := range p.Tiles[:len(p.Tiles)-1] {
		if t != i+1 {
			return false
		}
	}
	return true
}

// Move slides tile into the blank. The tile must be orthogonally adjacent to the blank.
func (p *Puzzle) Move(tile int) error {
	if p.Done {
		return ErrGameOver
	}
	from, blank := -1, -1
	for i, t := range p.Tiles {
		switch t {
		case tile:
			from = i
		case 0:
			blank = i
		}
	}
	if tile == 0 || from < 0 {
		return fmt.Errorf("%w: no tile %d", ErrInvalidMove, tile)
	}
	if !p.Adjacent(from, blank) {
		return fmt.Errorf("%w: tile %d is not next to the blank", ErrInvalidMove, tile)
	}
	p.Tiles[from], p.Tiles[blank] = 0, tile
	p.Moves++
	if p.Solved() {
		p.complete(Result{
			Game:    models.TypePuzzle,
			Label:   "solved",
			Won:     true,
			Score:   p.Moves,
			Details: map[string]any{"moves": p.Moves},
		})
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
