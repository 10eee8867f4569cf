package play

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
)

var (
	// ErrParticipationNotFound is returned for unknown participation ids.
	ErrParticipationNotFound = errors.New("participation not found")
	// ErrAlreadyCompleted is returned when a participation already has its result.
	ErrAlreadyCompleted = errors.New("participation already completed")
)

// Store persists participations and game results.
type Store interface {
	CreateParticipation(ctx context.Context, p *models.Participation) error
	GetParticipation(ctx context.Context, id uuid.UUID) (*models.Participation, error)
	SaveAnswers(ctx context.Context, id uuid.UUID, answers map[string]string, score *int) error
	// Complete marks the participation completed and stores its result in one transaction.
	// It returns ErrAlreadyCompleted when the participation was completed before.
	Complete(ctx context.Context, r *models.GameResult) error
	ListParticipations(ctx context.Context, campaignID uuid.UUID) ([]models.Participation, error)
	// CountInstantWins returns the number of stored results granted by an instant win.
	CountInstantWins(ctx context.Context, campaignID uuid.UUID) (int, error)
}
