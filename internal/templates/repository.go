package templates

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promogame/backend/internal/models"
)

// Repository handles template persistence on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a template repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// List returns templates without payloads.
func (r *Repository) List(ctx context.Context, t models.CampaignType) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, type, created_by, created_at
		FROM content_templates WHERE ($1 = '' OR type = $1) ORDER BY name`, string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []Template{}
	for rows.Next() {
		var tpl Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &tpl.Type, &tpl.CreatedBy, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, tpl)
	}
	return list, rows.Err()
}

// Get returns a template with its payload.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Template, error) {
	var tpl Template
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, type, payload, created_by, created_at
		FROM content_templates WHERE id = $1`, id).
		Scan(&tpl.ID, &tpl.Name, &tpl.Description, &tpl.Type, &payload, &tpl.CreatedBy, &tpl.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tpl.Payload = payload
	return &tpl, nil
}

// Create inserts a template.
func (r *Repository) Create(ctx context.Context, tpl *Template) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO content_templates (id, name, description, type, payload, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tpl.ID, tpl.Name, tpl.Description, string(tpl.Type), []byte(tpl.Payload), tpl.CreatedBy, tpl.CreatedAt)
	return err
}

// Delete removes a template.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM content_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored templates.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM content_templates`).Scan(&n)
	return n, err
}
