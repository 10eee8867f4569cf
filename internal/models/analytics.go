package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType is a public-page analytics event.
type EventType string

const (
	EventView           EventType = "view"
	EventParticipation  EventType = "participation"
	EventFormSubmission EventType = "form_submission"
	EventCompletion     EventType = "completion"
)

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	switch e {
	case EventView, EventParticipation, EventFormSubmission, EventCompletion:
		return true
	}
	return false
}

// AnalyticsEvent is one row of campaign_analytics.
type AnalyticsEvent struct {
	ID         uuid.UUID       `json:"id"`
	CampaignID uuid.UUID       `json:"campaign_id"`
	EventType  EventType       `json:"event_type"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Participation is one visitor's submission on the public page.
type Participation struct {
	ID         uuid.UUID         `json:"id"`
	CampaignID uuid.UUID         `json:"campaign_id"`
	Email      string            `json:"email,omitempty"`
	FormData   map[string]string `json:"form_data"`
	Answers    map[string]string `json:"answers,omitempty"`
	Score      *int              `json:"score,omitempty"`
	Completed  bool              `json:"completed"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// GameResult records the outcome of one play-through.
type GameResult struct {
	ID              uuid.UUID       `json:"id"`
	CampaignID      uuid.UUID       `json:"campaign_id"`
	ParticipationID uuid.UUID       `json:"participation_id"`
	GameType        CampaignType    `json:"game_type"`
	Result          string          `json:"result"`
	Won             bool            `json:"won"`
	Details         json.RawMessage `json:"details,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ContentTemplate is a reusable starting point for a new campaign.
type ContentTemplate struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        CampaignType    `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
