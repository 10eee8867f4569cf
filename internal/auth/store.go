package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
)

var (
	// ErrUserNotFound is returned for unknown ids or emails.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore persists dashboard accounts.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, companyName string) (*models.User, error)
	List(ctx context.Context) ([]models.UserPublic, error)
}
