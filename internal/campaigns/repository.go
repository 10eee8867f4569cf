package campaigns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promogame/backend/internal/models"
)

const campaignColumns = `id, user_id, public_url, name, description, type, status,
	start_date, end_date, start_time, end_time, colors, style, screens, background_image,
	participants, created_at, updated_at`

// Repository handles campaign persistence on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a campaign repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	var d designColumns
	err := row.Scan(&c.ID, &c.UserID, &c.PublicURL, &c.Name, &c.Description, &c.Type, &c.Status,
		&c.StartDate, &c.EndDate, &c.StartTime, &c.EndTime, &d.colors, &d.style, &d.screens, &c.BackgroundImage,
		&c.Participants, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := d.decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts the campaign and its children.
func (r *Repository) Create(ctx context.Context, c *models.Campaign) error {
	d, err := encodeDesign(c)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO campaigns (` + campaignColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
		_, err := tx.Exec(ctx, q, c.ID, c.UserID, c.PublicURL, c.Name, c.Description, c.Type, c.Status,
			c.StartDate, c.EndDate, c.StartTime, c.EndTime, d.colors, d.style, d.screens, c.BackgroundImage,
			c.Participants, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return uniqueViolation(err)
		}
		return writeChildren(ctx, tx, c, now)
	})
}

// Get loads a campaign by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetBySlug loads a campaign by public URL, then by raw id.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE public_url = $1`, slug))
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

func (r *Repository) loadChildren(ctx context.Context, c *models.Campaign) error {
	rows, err := r.pool.Query(ctx, `SELECT id, text, type, options, correct_answer FROM questions
		WHERE campaign_id = $1 ORDER BY position`, c.ID)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	c.Questions = []models.Question{}
	for rows.Next() {
		var q models.Question
		var opts []byte
		if err := rows.Scan(&q.ID, &q.Text, &q.Type, &opts, &q.CorrectAnswer); err != nil {
			rows.Close()
			return err
		}
		if q.Options, err = decodeOptions(opts); err != nil {
			rows.Close()
			return err
		}
		c.Questions = append(c.Questions, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `SELECT id, label, type, required, options, placeholder FROM form_fields
		WHERE campaign_id = $1 ORDER BY position`, c.ID)
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
		err := r.pool.QueryRow(ctx, `SELECT config FROM `+table+` WHERE campaign_id = $1`, c.ID).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
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
func (r *Repository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]models.CampaignSummary, error) {
	const q = `SELECT id, public_url, name, type, status, start_date, end_date, participants, updated_at
		FROM campaigns WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, q, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.CampaignSummary{}
	for rows.Next() {
		var s models.CampaignSummary
		if err := rows.Scan(&s.ID, &s.PublicURL, &s.Name, &s.Type, &s.Status, &s.StartDate, &s.EndDate,
			&s.Participants, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Save persists every slice of the campaign in one transaction.
func (r *Repository) Save(ctx context.Context, c *models.Campaign) error {
	d, err := encodeDesign(c)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `UPDATE campaigns SET public_url = $2, name = $3, description = $4, type = $5, status = $6,
			start_date = $7, end_date = $8, start_time = $9, end_time = $10, colors = $11, style = $12,
			screens = $13, background_image = $14, updated_at = $15
			WHERE id = $1`
		tag, err := tx.Exec(ctx, q, c.ID, c.PublicURL, c.Name, c.Description, c.Type, c.Status,
			c.StartDate, c.EndDate, c.StartTime, c.EndTime, d.colors, d.style, d.screens, c.BackgroundImage, now)
		if err != nil {
			return uniqueViolation(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE campaign_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM form_fields WHERE campaign_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clear fields: %w", err)
		}
		if err := writeChildren(ctx, tx, c, now); err != nil {
			return err
		}
		c.UpdatedAt = now
		return nil
	})
}

func writeChildren(ctx context.Context, tx pgx.Tx, c *models.Campaign, now time.Time) error {
	batch := &pgx.Batch{}
	for i, q := range c.Questions {
		opts, err := encodeOptions(q.Options)
		if err != nil {
			return err
		}
		batch.Queue(`INSERT INTO questions (id, campaign_id, position, text, type, options, correct_answer)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`, q.ID, c.ID, i, q.Text, q.Type, opts, q.CorrectAnswer)
	}
	for i, f := range c.Fields {
		opts, err := encodeOptions(f.Options)
		if err != nil {
			return err
		}
		batch.Queue(`INSERT INTO form_fields (id, campaign_id, position, label, type, required, options, placeholder)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, f.ID, c.ID, i, f.Label, f.Type, f.Required, opts, f.Placeholder)
	}
	table, raw, err := liveSettings(c)
	if err != nil {
		return err
	}
	if table != "" {
		batch.Queue(`INSERT INTO `+table+` (campaign_id, config, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (campaign_id) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at`,
			c.ID, raw, now)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write campaign rows: %w", err)
	}
	return nil
}

// Delete removes a campaign; child rows cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugTaken reports whether a campaign other than except uses slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM campaigns WHERE public_url = $1 AND id <> $2)`, slug, except).
		Scan(&exists)
	return exists, err
}

// IncrementParticipants bumps the participant counter.
func (r *Repository) IncrementParticipants(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `UPDATE campaigns SET participants = participants + 1 WHERE id = $1 RETURNING participants`, id).
		Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return n, err
}

func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "public_url") {
		return ErrSlugTaken
	}
	return err
}
