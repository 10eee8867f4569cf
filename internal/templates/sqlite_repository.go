package templates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/database"
)

// SQLiteRepository handles template persistence on SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite template repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Store = (*SQLiteRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner, withPayload bool) (*Template, error) {
	var tpl Template
	var id string
	var createdBy sql.NullString
	var created int64
	var payload []byte
	dest := []any{&id, &tpl.Name, &tpl.Description, &tpl.Type}
	if withPayload {
		dest = append(dest, &payload)
	}
	dest = append(dest, &createdBy, &created)
	err := row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if tpl.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse template id: %w", err)
	}
	if createdBy.Valid {
		by, err := uuid.Parse(createdBy.String)
		if err != nil {
			return nil, fmt.Errorf("parse template author: %w", err)
		}
		tpl.CreatedBy = &by
	}
	tpl.CreatedAt = database.FromMillis(created)
	tpl.Payload = payload
	return &tpl, nil
}

// List returns templates without payloads.
func (r *SQLiteRepository) List(ctx context.Context, t models.CampaignType) ([]Template, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, type, created_by, created_at
		FROM content_templates WHERE (? = '' OR type = ?) ORDER BY name`, string(t), string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []Template{}
	for rows.Next() {
		tpl, err := scanTemplate(rows, false)
		if err != nil {
			return nil, err
		}
		list = append(list, *tpl)
	}
	return list, rows.Err()
}

// Get returns a template with its payload.
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (*Template, error) {
	return scanTemplate(r.db.QueryRowContext(ctx, `SELECT id, name, description, type, payload, created_by, created_at
		FROM content_templates WHERE id = ?`, id.String()), true)
}

// Create inserts a template.
func (r *SQLiteRepository) Create(ctx context.Context, tpl *Template) error {
	var createdBy any
	if tpl.CreatedBy != nil {
		createdBy = tpl.CreatedBy.String()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO content_templates (id, name, description, type, payload, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID.String(), tpl.Name, tpl.Description, string(tpl.Type), string(tpl.Payload), createdBy, database.ToMillis(tpl.CreatedAt))
	return err
}

// Delete removes a template.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM content_templates WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored templates.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_templates`).Scan(&n)
	return n, err
}
