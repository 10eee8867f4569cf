package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/database"
)

// SQLiteRepository handles user persistence on SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite auth repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ UserStore = (*SQLiteRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(row rowScanner) (*models.User, error) {
	var u models.User
	var id, role string
	var created, updated int64
	err := row.Scan(&id, &u.Email, &u.Password, &u.FullName, &u.CompanyName, &role, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	u.Role = models.Role(role)
	u.CreatedAt, u.UpdatedAt = database.FromMillis(created), database.FromMillis(updated)
	return &u, nil
}

// GetByID returns a user by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanSQLiteUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String()))
}

// GetByEmail returns a user by email.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanSQLiteUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// List returns all users for the admin view.
func (r *SQLiteRepository) List(ctx context.Context) ([]models.UserPublic, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY full_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		u, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u.ToPublic())
	}
	return list, rows.Err()
}

// Create inserts a new user and fills in its id and timestamps.
func (r *SQLiteRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	id := uuid.New()
	var company any
	if u.CompanyName != "" {
		company = u.CompanyName
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users
		(id, email, password_hash, full_name, company_name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), u.Email, u.Password, u.FullName, company, string(u.Role), database.ToMillis(now), database.ToMillis(now))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, u.CreatedAt, u.UpdatedAt = id, now, now
	return nil
}

// UpdateProfile changes the display fields of an account.
func (r *SQLiteRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, companyName string) (*models.User, error) {
	var company any
	if companyName != "" {
		company = companyName
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET full_name = ?, company_name = ?, updated_at = ? WHERE id = ?`,
		fullName, company, database.ToMillis(time.Now()), id.String())
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}
