package campaign

import (
	"errors"

	"github.com/promogame/backend/internal/models"
)

// ErrNotFound is returned when a question or field id is not part of the campaign.
var ErrNotFound = errors.New("item not found")

// WithType switches the campaign type. A default configuration is seeded for the new type
// when it has none; configurations of other types are left in place.
func WithType(c *models.Campaign, t models.CampaignType) *models.Campaign {
	cp := *c
	cp.Type = t
	if _, ok := c.GameConfig[t]; !ok {
		if cfg := models.DefaultGameConfig(t); cfg != nil {
			cp.GameConfig = WithGameConfigEntry(c.GameConfig, t, cfg)
		}
	}
	if t.UsesQuestions() && len(c.Questions) == 0 {
		cp.Questions = []models.Question{NewQuestion()}
	}
	return &cp
}

// WithGameConfigEntry returns a copy of m with t set to cfg. Other entries are shared.
func WithGameConfigEntry(m models.GameConfigs, t models.CampaignType, cfg models.GameConfig) models.GameConfigs {
	out := make(models.GameConfigs, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[t] = cfg
	return out
}

// WithGameConfig replaces the live game configuration.
func WithGameConfig(c *models.Campaign, cfg models.GameConfig) *models.Campaign {
	cp := *c
	cp.GameConfig = WithGameConfigEntry(c.GameConfig, cfg.GameType(), cfg)
	return &cp
}

// WithColors replaces the palette.
func WithColors(c *models.Campaign, colors models.Colors) *models.Campaign {
	cp := *c
	cp.Colors = &colors
	return &cp
}

// WithStyle replaces the style.
func WithStyle(c *models.Campaign, style models.Style) *models.Campaign {
	cp := *c
	cp.Style = &style
	return &cp
}

// WithScreens replaces the screens.
func WithScreens(c *models.Campaign, screens models.Screens) *models.Campaign {
	cp := *c
	cp.Screens = &screens
	return &cp
}

// WithQuestions replaces the question list.
func WithQuestions(c *models.Campaign, questions []models.Question) *models.Campaign {
	cp := *c
	cp.Questions = questions
	return &cp
}

// WithFields replaces the form fields.
func WithFields(c *models.Campaign, fields []models.FormField) *models.Campaign {
	cp := *c
	cp.Fields = fields
	return &cp
}

// WithSchedule replaces the scheduling bounds.
func WithSchedule(c *models.Campaign, startDate, startTime, endDate, endTime string) *models.Campaign {
	cp := *c
	cp.StartDate, cp.StartTime = startDate, startTime
	cp.EndDate, cp.EndTime = endDate, endTime
	return &cp
}

// AddQuestion appends q to a fresh copy of the question list.
func AddQuestion(c *models.Campaign, q models.Question) *models.Campaign {
	questions := make([]models.Question, 0, len(c.Questions)+1)
	questions = append(questions, c.Questions...)
	return WithQuestions(c, append(questions, q))
}

// RemoveQuestion drops the question with the given id.
func RemoveQuestion(c *models.Campaign, id string) (*models.Campaign, error) {
	questions := make([]models.Question, 0, len(c.Questions))
	for _, q := range c.Questions {
		if q.ID != id {
			questions = append(questions, q)
		}
	}
	if len(questions) == len(c.Questions) {
		return nil, ErrNotFound
	}
	return WithQuestions(c, questions), nil
}

// AddField appends f to a fresh copy of the form fields.
func AddField(c *models.Campaign, f models.FormField) *models.Campaign {
	fields := make([]models.FormField, 0, len(c.Fields)+1)
	fields = append(fields, c.Fields...)
	return WithFields(c, append(fields, f))
}

// RemoveField drops the form field with the given id.
func RemoveField(c *models.Campaign, id string) (*models.Campaign, error) {
	fields := make([]models.FormField, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.ID != id {
			fields = append(fields, f)
		}
	}
	if len(fields) == len(c.Fields) {
		return nil, ErrNotFound
	}
	return WithFields(c, fields), nil
}
