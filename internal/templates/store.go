// Package templates stores reusable campaign payloads and turns them into draft campaigns.
package templates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/models"
)

// ErrNotFound is returned when no template matches.
var ErrNotFound = errors.New("template not found")

// Template is a named campaign payload offered as a starting point.
type Template struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        models.CampaignType `json:"type"`
	Payload     json.RawMessage     `json:"payload,omitempty"`
	CreatedBy   *uuid.UUID          `json:"created_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Store persists templates.
type Store interface {
	// List returns templates without payloads, optionally filtered by type.
	List(ctx context.Context, t models.CampaignType) ([]Template, error)
	Get(ctx context.Context, id uuid.UUID) (*Template, error)
	Create(ctx context.Context, tpl *Template) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// Snapshot builds a template payload from a campaign. Identity and counters are dropped.
func Snapshot(c *models.Campaign) (json.RawMessage, error) {
	cp := *c
	cp.ID, cp.UserID = uuid.Nil, uuid.Nil
	cp.PublicURL = ""
	cp.Participants = 0
	cp.Status = models.StatusDraft
	cp.CreatedAt, cp.UpdatedAt = time.Time{}, time.Time{}
	return json.Marshal(&cp)
}

// Instantiate decodes a template payload over the defaults of its type and returns a new draft
// campaign owned by owner. The caller still has to assign a unique public URL.
func Instantiate(tpl *Template, owner uuid.UUID, now time.Time) (*models.Campaign, error) {
	c := campaign.New(tpl.Type, owner, now)
	if len(tpl.Payload) > 0 {
		if err := json.Unmarshal(tpl.Payload, c); err != nil {
			return nil, fmt.Errorf("decode template payload: %w", err)
		}
	}
	c.ID = uuid.New()
	c.UserID = owner
	c.Type = tpl.Type
	c.Status = models.StatusDraft
	c.Participants = 0
	c.PublicURL = ""
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Name == "" {
		c.Name = tpl.Name
	}
	if c.GameConfig == nil {
		c.GameConfig = models.GameConfigs{}
	}
	if cfg := models.DefaultGameConfig(c.Type); cfg != nil && c.GameConfig[c.Type] == nil {
		c.GameConfig[c.Type] = cfg
	}
	for i := range c.Questions {
		c.Questions[i].ID = uuid.NewString()
	}
	for i := range c.Fields {
		c.Fields[i].ID = uuid.NewString()
	}
	return c, nil
}

// Builtins returns one starter template per campaign type.
func Builtins(now time.Time) ([]*Template, error) {
	out := make([]*Template, 0, len(models.CampaignTypes))
	for _, t := range models.CampaignTypes {
		c := campaign.New(t, uuid.Nil, now)
		c.Name = starterNames[t]
		payload, err := Snapshot(c)
		if err != nil {
			return nil, err
		}
		out = append(out, &Template{
			ID:          uuid.New(),
			Name:        starterNames[t],
			Description: "Starter " + string(t) + " campaign",
			Type:        t,
			Payload:     payload,
			CreatedAt:   now,
		})
	}
	return out, nil
}

var starterNames = map[models.CampaignType]string{
	models.TypeQuiz:    "Product quiz",
	models.TypeSurvey:  "Customer survey",
	models.TypeContest: "Photo contest",
	models.TypeForm:    "Newsletter signup",
	models.TypeWheel:   "Wheel of fortune",
	models.TypeScratch: "Scratch card",
	models.TypeMemory:  "Memory game",
	models.TypePuzzle:  "Sliding puzzle",
	models.TypeDice:    "Dice roll",
	models.TypeTarget:  "Target shooting",
	models.TypeJackpot: "Jackpot",
}

// Seed inserts the starter templates when the store is empty.
func Seed(ctx context.Context, store Store, now time.Time) (int, error) {
	n, err := store.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	builtins, err := Builtins(now)
	if err != nil {
		return 0, err
	}
	for _, tpl := range builtins {
		if err := store.Create(ctx, tpl); err != nil {
			return 0, fmt.Errorf("seed %s template: %w", tpl.Type, err)
		}
	}
	return len(builtins), nil
}
