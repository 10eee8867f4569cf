package editor

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/models"
)

func newCampaign(t models.CampaignType) *models.Campaign {
	return campaign.New(t, uuid.New(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
}

func raw(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestTabsPerType(t *testing.T) {
	assert.Equal(t, []Tab{TabGeneral, TabQuestions, TabDesign, TabScreens, TabMobile, TabSettings}, Tabs(models.TypeQuiz))
	assert.Equal(t, TabFields, Tabs(models.TypeForm)[1])
	assert.Equal(t, TabContent, Tabs(models.TypeWheel)[1])
	for _, ct := range models.CampaignTypes {
		tabs := Tabs(ct)
		assert.Len(t, tabs, 6, ct)
		assert.Equal(t, TabGeneral, tabs[0])
	}
}

func TestShellSelect(t *testing.T) {
	s := NewShell(newCampaign(models.TypeWheel))
	assert.Equal(t, TabGeneral, s.Active)
	require.NoError(t, s.Select(TabContent))
	assert.Equal(t, TabContent, s.Active)
	assert.ErrorIs(t, s.Select(TabQuestions), ErrUnknownTab)
	assert.Equal(t, TabContent, s.Active)
}

func TestShellTypeChangeFallsBackToGeneral(t *testing.T) {
	s := NewShell(newCampaign(models.TypeWheel))
	require.NoError(t, s.Select(TabContent))
	require.NoError(t, s.Apply(Mutation{Panel: PanelGeneral, Path: "type", Value: raw(t, "quiz")}))
	assert.Equal(t, models.TypeQuiz, s.Campaign.Type)
	assert.Equal(t, TabGeneral, s.Active)
	assert.Contains(t, s.Tabs, TabQuestions)
	assert.Contains(t, s.Campaign.GameConfig, models.TypeWheel, "stale configuration is kept")

	require.NoError(t, s.Select(TabDesign))
	require.NoError(t, s.Apply(Mutation{Panel: PanelGeneral, Path: "type", Value: raw(t, "survey")}))
	assert.Equal(t, TabDesign, s.Active, "tab survives when still offered")
}

func TestApplyRejectsForeignPaths(t *testing.T) {
	c := newCampaign(models.TypeWheel)
	_, err := Apply(c, Mutation{Panel: PanelDesign, Path: "name", Value: raw(t, "x")})
	assert.ErrorIs(t, err, ErrForeignPath)
	_, err = Apply(c, Mutation{Panel: PanelContent, Path: "game_config.dice.sides", Value: raw(t, 8)})
	assert.ErrorIs(t, err, ErrForeignPath)
	_, err = Apply(c, Mutation{Panel: "mobile", Path: "colors.button"})
	assert.ErrorIs(t, err, ErrUnknownPanel)
}

func TestApplyRejectsWholeGameConfig(t *testing.T) {
	c := newCampaign(models.TypeWheel)
	before := c.LiveGameConfig()
	all := map[string]any{
		"wheel": map[string]any{"pointerColor": "#222222"},
		"dice":  map[string]any{"sides": 100},
	}
	_, err := Apply(c, Mutation{Panel: PanelContent, Path: "game_config", Value: raw(t, all)})
	assert.ErrorIs(t, err, ErrForeignPath)
	assert.Same(t, before, c.LiveGameConfig())

	next, err := Apply(c, Mutation{Panel: PanelContent, Path: "game_config.wheel", Value: raw(t, map[string]any{"pointerColor": "#222222"})})
	require.NoError(t, err)
	assert.Equal(t, "#222222", next.LiveGameConfig().(*models.WheelConfig).PointerColor)
}

func TestApplyTouchesOnlyItsSlice(t *testing.T) {
	c := newCampaign(models.TypeWheel)
	next, err := Apply(c, Mutation{Panel: PanelDesign, Path: "colors.button", Value: raw(t, "#000000")})
	require.NoError(t, err)
	assert.Equal(t, "#000000", next.Colors.Button)
	assert.Equal(t, "#841b60", c.Colors.Button)
	assert.Same(t, c.Style, next.Style)
	assert.Same(t, c.Screens, next.Screens)

	next, err = Apply(c, Mutation{Panel: PanelContent, Path: "game_config.wheel.pointerColor", Value: raw(t, "#111111")})
	require.NoError(t, err)
	assert.Equal(t, "#111111", next.LiveGameConfig().(*models.WheelConfig).PointerColor)
	assert.Same(t, c.Colors, next.Colors)
}

func TestPreviewFollowsCampaign(t *testing.T) {
	s := NewShell(newCampaign(models.TypeScratch))
	p := s.Preview()
	assert.Equal(t, WidgetScratch, p.Widget)
	assert.IsType(t, &models.ScratchConfig{}, p.Config)
	assert.Empty(t, p.Questions)

	require.NoError(t, s.Apply(Mutation{Panel: PanelScreens, Path: "screens.welcome.title", Value: raw(t, "Hello")}))
	assert.Equal(t, "Hello", s.Preview().Screens.Welcome.Title)

	require.NoError(t, s.Apply(Mutation{Panel: PanelGeneral, Path: "type", Value: raw(t, "contest")}))
	p = s.Preview()
	assert.Equal(t, WidgetQuiz, p.Widget)
	assert.Nil(t, p.Config)
	assert.Len(t, p.Questions, 1)
}

func TestDeriveFillsMissingSlices(t *testing.T) {
	p := Derive(&models.Campaign{Type: models.TypeDice})
	assert.Equal(t, *campaign.DefaultColors(), p.Colors)
	assert.Equal(t, 6, p.Config.(*models.DiceConfig).Sides)
	assert.Len(t, p.Fields, 2)
}

func TestPanelFor(t *testing.T) {
	assert.Equal(t, PanelContent, PanelFor(TabQuestions))
	assert.Equal(t, PanelDesign, PanelFor(TabMobile))
	assert.Equal(t, PanelSettings, PanelFor(TabSettings))
	assert.Equal(t, PanelGeneral, PanelFor(TabGeneral))
}
