package campaigns

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

// SQLiteRepository handles campaign persistence on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite campaign repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Store = (*SQLiteRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCampaign(row rowScanner) (*models.Campaign, error) {
	var c models.Campaign
	var d designColumns
	var id, userID string
	var created, updated int64
	err := row.Scan(&id, &userID, &c.PublicURL, &c.Name, &c.Description, &c.Type, &c.Status,
		&c.StartDate, &c.EndDate, &c.StartTime, &c.EndTime, &d.colors, &d.style, &d.screens, &c.BackgroundImage,
		&c.Participants, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse campaign id: %w", err)
	}
	if c.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = database.FromMillis(created), database.FromMillis(updated)
	if err := d.decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Create inserts the campaign and its children.
func (r *SQLiteRepository) Create(ctx context.Context, c *models.Campaign) error {
	d, err := encodeDesign(c)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	c.CreatedAt, c.UpdatedAt = now, now
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `INSERT INTO campaigns (` + campaignColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, q, c.ID.String(), c.UserID.String(), c.PublicURL, c.Name, c.Description,
			string(c.Type), string(c.Status), c.StartDate, c.EndDate, c.StartTime, c.EndTime,
			nullBytes(d.colors), nullBytes(d.style), nullBytes(d.screens), c.BackgroundImage,
			c.Participants, database.ToMillis(now), database.ToMillis(now))
		if err != nil {
			return sqliteUnique(err)
		}
		return r.writeChildren(ctx, tx, c, now)
	})
}

// Get loads a campaign by id.
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := scanSQLiteCampaign(r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id.String()))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetBySlug loads a campaign by public URL, then by raw id.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	c, err := scanSQLiteCampaign(r.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE public_url = ?`, slug))
	if errors.Is(err, ErrNotFound) {
		if id, ok := resolve(slug); ok {
			return r.Get(ctx, id)
		}
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *SQLiteRepository) loadChildren(ctx context.Context, c *models.Campaign) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, text, type, options, correct_answer FROM questions
		WHERE campaign_id = ? ORDER BY position`, c.ID.String())
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	c.Questions = []models.Question{}
	for rows.Next() {
		var q models.Question
		var opts []byte
		var correct sql.NullString
		if err := rows.Scan(&q.ID, &q.Text, &q.Type, &opts, &correct); err != nil {
			rows.Close()
			return err
		}
		if q.Options, err = decodeOptions(opts); err != nil {
			rows.Close()
			return err
		}
		if correct.Valid {
			q.CorrectAnswer = &correct.String
		}
		c.Questions = append(c.Questions, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT id, label, type, required, options, placeholder FROM form_fields
		WHERE campaign_id = ? ORDER BY position`, c.ID.String())
	if err != nil {
		return fmt.Errorf("load fields: %w", err)
	}
	c.Fields = []models.FormField{}
	for rows.Next() {
		var f models.FormField
		var opts []byte
		if err := rows.Scan(&f.ID, &f.Label, &f.Type, &f.Required, &opts, &f.Placeholder); err != nil {
			rows.Close()
			return err
		}
		if f.Options, err = decodeOptions(opts); err != nil {
			rows.Close()
			return err
		}
		c.Fields = append(c.Fields, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	c.GameConfig = models.GameConfigs{}
	for t, table := range settingsTables {
		var raw []byte
		err := r.db.QueryRowContext(ctx, `SELECT config FROM `+table+` WHERE campaign_id = ?`, c.ID.String()).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", table, err)
		}
		cfg, err := models.DecodeGameConfig(t, raw)
		if err != nil {
			return err
		}
		c.GameConfig[t] = cfg
	}
	return nil
}

// ListByOwner returns the summaries of a user's campaigns, newest first.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.CampaignSummary, error) {
	const q = `SELECT id, public_url, name, type, status, start_date, end_date, participants, updated_at
		FROM campaigns WHERE user_id = ? ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, q, owner.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.CampaignSummary{}
	for rows.Next() {
		var s models.CampaignSummary
		var id string
		var updated int64
		if err := rows.Scan(&id, &s.PublicURL, &s.Name, &s.Type, &s.Status, &s.StartDate, &s.EndDate,
			&s.Participants, &updated); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		s.UpdatedAt = database.FromMillis(updated)
		list = append(list, s)
	}
	return list, rows.Err()
}

// Save persists every slice of the campaign in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, c *models.Campaign) error {
	d, err := encodeDesign(c)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `UPDATE campaigns SET public_url = ?, name = ?, description = ?, type = ?, status = ?,
			start_date = ?, end_date = ?, start_time = ?, end_time = ?, colors = ?, style = ?,
			screens = ?, background_image = ?, updated_at = ?
			WHERE id = ?`
		res, err := tx.ExecContext(ctx, q, c.PublicURL, c.Name, c.Description, string(c.Type), string(c.Status),
			c.StartDate, c.EndDate, c.StartTime, c.EndTime, nullBytes(d.colors), nullBytes(d.style), nullBytes(d.screens),
			c.BackgroundImage, database.ToMillis(now), c.ID.String())
		if err != nil {
			return sqliteUnique(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE campaign_id = ?`, c.ID.String()); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM form_fields WHERE campaign_id = ?`, c.ID.String()); err != nil {
			return fmt.Errorf("clear fields: %w", err)
		}
		if err := r.writeChildren(ctx, tx, c, now); err != nil {
			return err
		}
		c.UpdatedAt = now
		return nil
	})
}

func (r *SQLiteRepository) writeChildren(ctx context.Context, tx *sql.Tx, c *models.Campaign, now time.Time) error {
	for i, q := range c.Questions {
		opts, err := encodeOptions(q.Options)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO questions (id, campaign_id, position, text, type, options, correct_answer)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, q.ID, c.ID.String(), i, q.Text, q.Type, opts, q.CorrectAnswer); err != nil {
			return fmt.Errorf("write question %s: %w", q.ID, err)
		}
	}
	for i, f := range c.Fields {
		opts, err := encodeOptions(f.Options)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO form_fields (id, campaign_id, position, label, type, required, options, placeholder)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, f.ID, c.ID.String(), i, f.Label, f.Type, f.Required, opts, f.Placeholder); err != nil {
			return fmt.Errorf("write field %s: %w", f.ID, err)
		}
	}
	table, raw, err := liveSettings(c)
	if err != nil || table == "" {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO `+table+` (campaign_id, config, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (campaign_id) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at`,
		c.ID.String(), raw, database.ToMillis(now))
	if err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	return nil
}

// Delete removes a campaign; child rows cascade.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugTaken reports whether a campaign other than except uses slug.
func (r *SQLiteRepository) SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE public_url = ? AND id <> ?)`,
		slug, except.String()).Scan(&exists)
	return exists == 1, err
}

// IncrementParticipants bumps the participant counter.
func (r *SQLiteRepository) IncrementParticipants(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `UPDATE campaigns SET participants = participants + 1 WHERE id = ? RETURNING participants`,
		id.String()).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return n, err
}

func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func sqliteUnique(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed: campaigns.public_url") {
		return ErrSlugTaken
	}
	return err
}
