package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// GameConfig is the per-mechanic configuration of a campaign. Each variant reports the
// campaign type it belongs to, so a widget only ever receives its own shape.
type GameConfig interface {
	GameType() CampaignType
}

// WheelSegment is one slice of the wheel of fortune.
type WheelSegment struct {
	Label       string   `json:"label"`
	Chance      *float64 `json:"chance,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
	Color       string   `json:"color"`
	Image       string   `json:"image,omitempty"`
}

// Weight is the draw weight of the segment: probability, then chance, then 1.
func (s WheelSegment) Weight() float64 {
	if s.Probability != nil && *s.Probability > 0 {
		return *s.Probability
	}
	if s.Chance != nil && *s.Chance > 0 {
		return *s.Chance
	}
	return 1
}

// WheelConfig configures the wheel of fortune.
type WheelConfig struct {
	Segments     []WheelSegment `json:"segments"`
	Theme        string         `json:"theme"`
	BorderColor  string         `json:"borderColor"`
	PointerColor string         `json:"pointerColor"`
	Size         int            `json:"size"`
	Position     string         `json:"position"`
}

func (WheelConfig) GameType() CampaignType { return TypeWheel }

// InstantWin grants a prize by an independent probability check, capped at MaxWinners.
type InstantWin struct {
	Enabled        bool    `json:"enabled"`
	WinProbability float64 `json:"winProbability"`
	MaxWinners     int     `json:"maxWinners"`
}

// JackpotConfig configures the slot machine.
type JackpotConfig struct {
	Symbols     []string   `json:"symbols"`
	Reels       int        `json:"reels"`
	WinMessage  string     `json:"winMessage"`
	LoseMessage string     `json:"loseMessage"`
	InstantWin  InstantWin `json:"instantWin"`
}

func (JackpotConfig) GameType() CampaignType { return TypeJackpot }

// MemoryCard is the face of one pair of the memory game.
type MemoryCard struct {
	ID    string `json:"id"`
	Image string `json:"image,omitempty"`
	Label string `json:"label,omitempty"`
}

// MemoryConfig configures the memory game.
type MemoryConfig struct {
	Pairs int          `json:"pairs"`
	Cards []MemoryCard `json:"cards"`
}

func (MemoryConfig) GameType() CampaignType { return TypeMemory }

// ScratchPrize is what the scratch card reveals.
type ScratchPrize struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// ScratchConfig configures the scratch card.
type ScratchConfig struct {
	Prize         ScratchPrize `json:"prize"`
	RevealPercent float64      `json:"revealPercent"`
	BrushSize     int          `json:"brushSize"`
	Width         int          `json:"width"`
	Height        int          `json:"height"`
}

func (ScratchConfig) GameType() CampaignType { return TypeScratch }

// PuzzleConfig configures the sliding puzzle.
type PuzzleConfig struct {
	ImageURL string `json:"imageUrl"`
	GridSize int    `json:"gridSize"`
}

func (PuzzleConfig) GameType() CampaignType { return TypePuzzle }

// DiceConfig configures the dice roll.
type DiceConfig struct {
	Sides int    `json:"sides"`
	Style string `json:"style"`
}

func (DiceConfig) GameType() CampaignType { return TypeDice }

// TargetConfig configures the target shooting game.
type TargetConfig struct {
	Targets  int `json:"targets"`
	Speed    int `json:"speed"`
	Duration int `json:"duration"`
}

func (TargetConfig) GameType() CampaignType { return TypeTarget }

// DefaultGameConfig returns the configuration a new campaign of type t starts with,
// or nil for types without a game widget.
func DefaultGameConfig(t CampaignType) GameConfig {
	switch t {
	case TypeWheel:
		return &WheelConfig{
			Segments: []WheelSegment{
				{Label: "Prize 1", Color: "#FF6B6B"},
				{Label: "Prize 2", Color: "#4ECDC4"},
				{Label: "Prize 3", Color: "#45B7D1"},
				{Label: "Try again", Color: "#96CEB4"},
			},
			Theme:        "default",
			BorderColor:  "#FFFFFF",
			PointerColor: "#841b60",
			Size:         300,
			Position:     "center",
		}
	case TypeJackpot:
		return &JackpotConfig{
			Symbols:     []string{"🍒", "🍋", "🍊", "🍇", "⭐"},
			Reels:       3,
			WinMessage:  "Congratulations, you won!",
			LoseMessage: "Not this time, try again!",
			InstantWin:  InstantWin{Enabled: false, WinProbability: 0.1, MaxWinners: 10},
		}
	case TypeMemory:
		return &MemoryConfig{Pairs: 6}
	case TypeScratch:
		return &ScratchConfig{
			Prize:         ScratchPrize{Text: "You won!"},
			RevealPercent: 50,
			BrushSize:     20,
			Width:         300,
			Height:        150,
		}
	case TypePuzzle:
		return &PuzzleConfig{GridSize: 3}
	case TypeDice:
		return &DiceConfig{Sides: 6, Style: "classic"}
	case TypeTarget:
		return &TargetConfig{Targets: 3, Speed: 1500, Duration: 30}
	}
	return nil
}

// DecodeGameConfig decodes a raw settings blob into the variant for t.
func DecodeGameConfig(t CampaignType, raw []byte) (GameConfig, error) {
	var cfg GameConfig
	switch t {
	case TypeWheel:
		cfg = &WheelConfig{}
	case TypeJackpot:
		cfg = &JackpotConfig{}
	case TypeMemory:
		cfg = &MemoryConfig{}
	case TypeScratch:
		cfg = &ScratchConfig{}
	case TypePuzzle:
		cfg = &PuzzleConfig{}
	case TypeDice:
		cfg = &DiceConfig{}
	case TypeTarget:
		cfg = &TargetConfig{}
	default:
		return nil, fmt.Errorf("type %q has no game config", t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultGameConfig(t), nil
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", t, err)
	}
	return cfg, nil
}

// EncodeGameConfig encodes a variant for storage.
func EncodeGameConfig(cfg GameConfig) ([]byte, error) {
	return json.Marshal(cfg)
}

// GameConfigs holds one configuration per game type; only the key equal to the campaign
// type is live.
type GameConfigs map[CampaignType]GameConfig

// MarshalJSON encodes the map as {type: config}.
func (g GameConfigs) MarshalJSON() ([]byte, error) {
	out := make(map[string]GameConfig, len(g))
	for t, cfg := range g {
		if cfg != nil {
			out[string(t)] = cfg
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes {type: config}, dispatching each key to its variant.
// Keys for types without a game widget are ignored.
func (g *GameConfigs) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(GameConfigs, len(raw))
	for k, v := range raw {
		t := CampaignType(k)
		if !t.IsGame() {
			continue
		}
		cfg, err := DecodeGameConfig(t, v)
		if err != nil {
			return err
		}
		out[t] = cfg
	}
	*g = out
	return nil
}
