package games

import (
	"image"
	"image/color"
	"math"

	"github.com/promogame/backend/internal/models"
)

const (
	// DefaultRevealPercent is the erased share that completes a card.
	DefaultRevealPercent = 50
	// SampleStride is the pixel step used when measuring the erased share.
	SampleStride = 4

	defaultScratchWidth  = 300
	defaultScratchHeight = 150
	defaultBrushSize     = 20

	// MaxScratchSide bounds the canvas width and height in pixels.
	MaxScratchSide = 1200
	// MaxBrushSize bounds the brush diameter in pixels.
	MaxBrushSize = 200
)

// Point is a pointer position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scratch is the scratch card: an opaque alpha layer erased along the pointer path.
type Scratch struct {
	Completion
	Canvas        *image.Alpha `json:"canvas"`
	Brush         int          `json:"brush"`
	RevealPercent float64      `json:"reveal_percent"`
	Revealed      float64      `json:"revealed"`
	Prize         string       `json:"prize"`
}

// NewScratch builds a fully covered card.
func NewScratch(cfg *models.ScratchConfig) *Scratch {
	w, h := defaultScratchWidth, defaultScratchHeight
	brush := defaultBrushSize
	reveal := float64(DefaultRevealPercent)
	prize := ""
	if cfg != nil {
		if cfg.Width > 0 {
			w = min(cfg.Width, MaxScratchSide)
		}
		if cfg.Height > 0 {
			h = min(cfg.Height, MaxScratchSide)
		}
		if cfg.BrushSize > 0 {
			brush = min(cfg.BrushSize, MaxBrushSize)
		}
		if cfg.RevealPercent > 0 {
			reveal = min(cfg.RevealPercent, 100)
		}
		prize = cfg.Prize.Text
	}
	canvas := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range canvas.Pix {
		canvas.Pix[i] = 0xff
	}
	return &Scratch{Canvas: canvas, Brush: brush, RevealPercent: reveal, Prize: prize}
}

// Stroke erases the brush along the segment from a to b, then samples the canvas. It
// returns the erased share in percent. Both ends are clamped to the canvas grown by the
// brush radius, so the work per stroke is bounded by the canvas size.
func (s *Scratch) Stroke(a, b Point) float64 {
	r := float64(s.Brush) / 2
	a, b = s.clamp(a, r), s.clamp(b, r)
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	step := math.Max(1, r/2)
	n := int(math.Ceil(dist / step))
	for i := 0; i <= n; i++ {
		t := 0.0
		if n > 0 {
			t = float64(i) / float64(n)
		}
		s.erase(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t, r)
	}
	s.Revealed = s.sample()
	if s.Revealed > s.RevealPercent {
		s.complete(Result{
			Game:    models.TypeScratch,
			Label:   s.Prize,
			Won:     true,
			Details: map[string]any{"revealed": s.Revealed},
		})
	}
	return s.Revealed
}

func (s *Scratch) clamp(p Point, r float64) Point {
	bounds := s.Canvas.Bounds()
	return Point{
		X: clampCoord(p.X, float64(bounds.Min.X)-r, float64(bounds.Max.X)+r),
		Y: clampCoord(p.Y, float64(bounds.Min.Y)-r, float64(bounds.Max.Y)+r),
	}
}

func clampCoord(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func (s *Scratch) erase(cx, cy, r float64) {
	bounds := s.Canvas.Bounds()
	area := image.Rect(int(cx-r), int(cy-r), int(cx+r)+1, int(cy+r)+1).Intersect(bounds)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r*r {
				s.Canvas.SetAlpha(x, y, color.Alpha{})
			}
		}
	}
}

// sample returns the percentage of transparent pixels among every SampleStride-th pixel.
func (s *Scratch) sample() float64 {
	total, clear := 0, 0
	for i := 0; i < len(s.Canvas.Pix); i += SampleStride {
		total++
		if s.Canvas.Pix[i] == 0 {
			clear++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(clear) / float64(total) * 100
}
