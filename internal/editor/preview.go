package editor

import (
	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/models"
)

// Widget is the renderer a preview uses for the campaign type.
type Widget string

const (
	WidgetQuiz    Widget = "quiz"
	WidgetForm    Widget = "form"
	WidgetWheel   Widget = "wheel"
	WidgetScratch Widget = "scratch"
	WidgetMemory  Widget = "memory"
	WidgetPuzzle  Widget = "puzzle"
	WidgetDice    Widget = "dice"
	WidgetTarget  Widget = "target"
	WidgetJackpot Widget = "jackpot"
)

// Preview is everything the live preview renders. It is rebuilt from the campaign on every
// change.
type Preview struct {
	Widget          Widget                `json:"widget"`
	Config          models.GameConfig     `json:"config,omitempty"`
	Colors          models.Colors         `json:"colors"`
	Style           models.Style          `json:"style"`
	BackgroundImage string                `json:"background_image,omitempty"`
	Screens         models.Screens        `json:"screens"`
	Questions       []models.Question     `json:"questions,omitempty"`
	Fields          []models.FormField    `json:"fields"`
	Status          models.CampaignStatus `json:"status"`
}

// WidgetFor maps a campaign type to its renderer.
func WidgetFor(t models.CampaignType) Widget {
	switch {
	case t.UsesQuestions():
		return WidgetQuiz
	case t == models.TypeForm:
		return WidgetForm
	}
	return Widget(t)
}

// Derive builds the preview of c. Missing design slices fall back to the defaults, and a
// game type without a stored configuration previews its default one.
func Derive(c *models.Campaign) Preview {
	p := Preview{
		Widget:          WidgetFor(c.Type),
		Config:          c.LiveGameConfig(),
		Colors:          *campaign.DefaultColors(),
		Style:           *campaign.DefaultStyle(),
		Screens:         *campaign.DefaultScreens(),
		BackgroundImage: c.BackgroundImage,
		Fields:          c.Fields,
		Status:          c.Status,
	}
	if p.Config == nil && c.Type.IsGame() {
		p.Config = models.DefaultGameConfig(c.Type)
	}
	if c.Colors != nil {
		p.Colors = *c.Colors
	}
	if c.Style != nil {
		p.Style = *c.Style
	}
	if c.Screens != nil {
		p.Screens = *c.Screens
	}
	if c.Type.UsesQuestions() {
		p.Questions = c.Questions
	}
	if p.Fields == nil {
		p.Fields = campaign.DefaultFields()
	}
	return p
}
