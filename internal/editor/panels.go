package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/models"
)

// Panel names a configurator form. Every panel owns a fixed slice of the campaign.
type Panel string

const (
	PanelGeneral  Panel = "general"
	PanelContent  Panel = "content"
	PanelDesign   Panel = "design"
	PanelScreens  Panel = "screens"
	PanelSettings Panel = "settings"
)

var (
	// ErrUnknownPanel is returned for a panel name outside the fixed set.
	ErrUnknownPanel = errors.New("unknown panel")
	// ErrForeignPath is returned when a panel writes outside its slice.
	ErrForeignPath = errors.New("path does not belong to panel")
)

var panelSlices = map[Panel][]string{
	PanelGeneral:  {"name", "description", "public_url", "type"},
	PanelContent:  {"questions", "fields", "game_config"},
	PanelDesign:   {"colors", "style", "background_image"},
	PanelScreens:  {"screens"},
	PanelSettings: {"status", "start_date", "end_date", "start_time", "end_time"},
}

// Mutation is one control of a panel writing one value.
type Mutation struct {
	Panel Panel           `json:"panel" binding:"required"`
	Path  string          `json:"path" binding:"required"`
	Value json.RawMessage `json:"value"`
}

// Owns reports whether path falls in the panel's slice.
func (p Panel) Owns(path string) bool {
	head, _, _ := strings.Cut(path, ".")
	for _, s := range panelSlices[p] {
		if s == head {
			return true
		}
	}
	return false
}

// Apply validates that the mutation stays in its panel's slice and applies it through
// campaign.Update. The content panel may only edit the game configuration of the live type,
// never the whole game_config map at once.
func Apply(c *models.Campaign, m Mutation) (*models.Campaign, error) {
	if _, ok := panelSlices[m.Panel]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, m.Panel)
	}
	if !m.Panel.Owns(m.Path) {
		return nil, fmt.Errorf("%w: %s writes %s", ErrForeignPath, m.Panel, m.Path)
	}
	if m.Path == "game_config" {
		return nil, fmt.Errorf("%w: game_config needs a game type, e.g. game_config.%s", ErrForeignPath, c.Type)
	}
	if rest, ok := strings.CutPrefix(m.Path, "game_config."); ok {
		t, _, _ := strings.Cut(rest, ".")
		if models.CampaignType(t) != c.Type {
			return nil, fmt.Errorf("%w: game_config.%s is not live for %s", ErrForeignPath, t, c.Type)
		}
	}
	value := []byte(m.Value)
	if len(value) == 0 {
		value = []byte("null")
	}
	return campaign.Update(c, m.Path, value)
}
