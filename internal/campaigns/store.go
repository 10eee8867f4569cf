// Package campaigns persists campaigns and serves the dashboard campaign and editor routes.
package campaigns

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/campaign"
	"github.com/promogame/backend/internal/models"
)

var (
	// ErrNotFound is returned when no campaign matches.
	ErrNotFound = errors.New("campaign not found")
	// ErrSlugTaken is returned when another campaign already uses the public URL.
	ErrSlugTaken = errors.New("public url already in use")
)

// Store is the campaign persistence adapter.
type Store interface {
	// Create inserts a new campaign with its questions, fields and live game settings.
	Create(ctx context.Context, c *models.Campaign) error
	// Get loads a campaign with questions, fields and every stored game settings row.
	Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	// GetBySlug resolves a public URL, falling back to a raw campaign id.
	GetBySlug(ctx context.Context, slug string) (*models.Campaign, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.CampaignSummary, error)
	// Save rewrites the campaign row, replaces question and field rows and upserts the live
	// settings row in one transaction.
	Save(ctx context.Context, c *models.Campaign) error
	Delete(ctx context.Context, id uuid.UUID) error
	SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error)
	// IncrementParticipants adds one participant and returns the new count.
	IncrementParticipants(ctx context.Context, id uuid.UUID) (int, error)
}

// settingsTables maps each game type to its settings table.
var settingsTables = map[models.CampaignType]string{
	models.TypeWheel:   "wheel_settings",
	models.TypeMemory:  "memory_settings",
	models.TypeScratch: "scratch_settings",
	models.TypePuzzle:  "puzzle_settings",
	models.TypeDice:    "dice_settings",
	models.TypeTarget:  "target_settings",
	models.TypeJackpot: "jackpot_settings",
}

// SettingsTable returns the settings table of a game type, or "" for non-game types.
func SettingsTable(t models.CampaignType) string {
	return settingsTables[t]
}

// UniqueSlug derives a public URL from base that no other campaign uses, appending -2, -3, ...
func UniqueSlug(ctx context.Context, store Store, base string, except uuid.UUID) (string, error) {
	slug := campaign.Slugify(base)
	if slug == "" {
		slug = "campaign"
	}
	candidate := slug
	for i := 2; ; i++ {
		taken, err := store.SlugTaken(ctx, candidate, except)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, i)
	}
}

// resolve parses s as a campaign id for the slug fallback.
func resolve(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	return id, err == nil
}
