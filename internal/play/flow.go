package play

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/models"
)

// Step is one screen of the public flow.
type Step string

const (
	StepWelcome   Step = "welcome"
	StepForm      Step = "form"
	StepQuestions Step = "questions"
	StepGame      Step = "game"
	StepEnd       Step = "end"
)

// Steps lists the screens a visitor walks through for the campaign type.
func Steps(t models.CampaignType) []Step {
	steps := []Step{StepWelcome, StepForm}
	switch {
	case t.UsesQuestions():
		steps = append(steps, StepQuestions)
	case t.IsGame():
		steps = append(steps, StepGame)
	}
	return append(steps, StepEnd)
}

// Next returns the screen after from, or StepEnd.
func Next(t models.CampaignType, from Step) Step {
	steps := Steps(t)
	for i, s := range steps {
		if s == from && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return StepEnd
}

// FieldErrors maps form field ids to what is wrong with them.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+": "+e[id])
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

// formFields returns the campaign form, falling back to the default name and email form.
func formFields(c *models.Campaign) []models.FormField {
	if len(c.Fields) == 0 {
		return campaign.DefaultFields()
	}
	return c.Fields
}

// CleanForm keeps the configured fields of data, trimmed, and checks required fields, email
// syntax and choice options. It returns the cleaned data and the email address, if any.
func CleanForm(fields []models.FormField, data map[string]string) (map[string]string, string, error) {
	out := make(map[string]string, len(fields))
	errs := FieldErrors{}
	email := ""
	for _, f := range fields {
		v := strings.TrimSpace(data[f.ID])
		if v == "" {
			if f.Required {
				errs[f.ID] = "required"
			}
			continue
		}
		switch f.Type {
		case "email":
			addr, err := mail.ParseAddress(v)
			if err != nil {
				errs[f.ID] = "not a valid email address"
				continue
			}
			v = addr.Address
			if email == "" {
				email = v
			}
		case "select", "radio":
			if len(f.Options) > 0 && !contains(f.Options, v) {
				errs[f.ID] = fmt.Sprintf("%q is not an option", v)
				continue
			}
		case "checkbox":
			if v != "true" && v != "false" {
				errs[f.ID] = "must be true or false"
				continue
			}
			if f.Required && v != "true" {
				errs[f.ID] = "required"
				continue
			}
		}
		out[f.ID] = v
	}
	if len(errs) > 0 {
		return nil, "", errs
	}
	return out, email, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Public strips what visitors must not see from a campaign: correct answers, the owner and
// the scratch card prize, which is only revealed through the session.
func Public(c *models.Campaign) *models.Campaign {
	cp := *c
	cp.UserID = uuid.Nil
	cp.Fields = formFields(c)
	if len(c.Questions) > 0 {
		cp.Questions = make([]models.Question, len(c.Questions))
		for i, q := range c.Questions {
			q.CorrectAnswer = nil
			cp.Questions[i] = q
		}
	}
	live := c.LiveGameConfig()
	if c.Type == models.TypeScratch {
		live = hiddenPrize(live)
	}
	if live != nil {
		cp.GameConfig = models.GameConfigs{c.Type: live}
	} else {
		cp.GameConfig = models.GameConfigs{}
	}
	return &cp
}

func hiddenPrize(cfg models.GameConfig) models.GameConfig {
	sc, ok := cfg.(*models.ScratchConfig)
	if !ok || sc == nil {
		sc, _ = models.DefaultGameConfig(models.TypeScratch).(*models.ScratchConfig)
	}
	out := *sc
	out.Prize = models.ScratchPrize{}
	return &out
}
