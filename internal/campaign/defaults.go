// Package campaign holds the campaign configuration contract: defaults, path updates
// with structural sharing, slugs, numeric coercion and scheduling rules.
package campaign

import (
	"time"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
)

// DefaultColors is the palette of a new campaign.
func DefaultColors() *models.Colors {
	return &models.Colors{
		Button:             "#841b60",
		ButtonText:         "#ffffff",
		Text:               "#333333",
		Border:             "#E5E7EB",
		QuestionBackground: "#ffffff",
		ProgressBar:        "#841b60",
		Background:         "#ebf4f7",
	}
}

// DefaultStyle is the container and button geometry of a new campaign.
func DefaultStyle() *models.Style {
	return &models.Style{
		ContainerRadius:  8,
		ButtonRadius:     8,
		ContainerOpacity: 1,
		Spacing:          16,
		Shadows:          true,
		Borders:          true,
		FontFamily:       "Inter",
		Typography:       models.Typography{TitleSize: 24, TitleWeight: "bold", BodySize: 16, BodyWeight: "normal"},
	}
}

// DefaultScreens returns the welcome, game and end screens of a new campaign.
func DefaultScreens() *models.Screens {
	return &models.Screens{
		Welcome: models.Screen{
			Title:           "Welcome!",
			Description:     "Take part and try your luck.",
			ButtonText:      "Start",
			ShowTitle:       true,
			ShowDescription: true,
			ShowButton:      true,
		},
		Game: models.Screen{
			Title:      "Your turn",
			ButtonText: "Play",
			ShowTitle:  true,
			ShowButton: true,
		},
		End: models.Screen{
			Title:           "Thank you!",
			Description:     "Your participation has been recorded.",
			ButtonText:      "Play again",
			ShowTitle:       true,
			ShowDescription: true,
		},
	}
}

// DefaultFields is the participation form of a new campaign.
func DefaultFields() []models.FormField {
	return []models.FormField{
		{ID: "name", Label: "Name", Type: "text", Required: true, Placeholder: "Your name"},
		{ID: "email", Label: "Email", Type: "email", Required: true, Placeholder: "you@example.com"},
	}
}

// New builds an unsaved draft campaign of type t owned by owner.
func New(t models.CampaignType, owner uuid.UUID, now time.Time) *models.Campaign {
	if !t.Valid() {
		t = models.TypeQuiz
	}
	c := &models.Campaign{
		ID:         uuid.New(),
		UserID:     owner,
		Name:       "New campaign",
		Type:       t,
		Status:     models.StatusDraft,
		StartDate:  now.Format(DateLayout),
		StartTime:  "00:00",
		EndDate:    now.AddDate(0, 1, 0).Format(DateLayout),
		EndTime:    "23:59",
		Colors:     DefaultColors(),
		Style:      DefaultStyle(),
		Screens:    DefaultScreens(),
		Fields:     DefaultFields(),
		Questions:  []models.Question{},
		GameConfig: models.GameConfigs{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if t.UsesQuestions() {
		c.Questions = []models.Question{NewQuestion()}
	}
	if cfg := models.DefaultGameConfig(t); cfg != nil {
		c.GameConfig[t] = cfg
	}
	return c
}

// NewQuestion returns a blank single-choice question with a fresh id.
func NewQuestion() models.Question {
	return models.Question{
		ID:      uuid.NewString(),
		Text:    "New question",
		Type:    "single",
		Options: []string{"Option 1", "Option 2"},
	}
}

// NewField returns a blank optional text field with a fresh id.
func NewField() models.FormField {
	return models.FormField{ID: uuid.NewString(), Label: "New field", Type: "text"}
}
