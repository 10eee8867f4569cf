package play

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/database"
)

// SQLiteRepository handles participation persistence on SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite participation repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Store = (*SQLiteRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteParticipation(row rowScanner) (*models.Participation, error) {
	var p models.Participation
	var id, campaignID, formData string
	var answers sql.NullString
	var score sql.NullInt64
	var completed int
	var created, updated int64
	err := row.Scan(&id, &campaignID, &p.Email, &formData, &answers, &score, &completed, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParticipationNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse participation id: %w", err)
	}
	if p.CampaignID, err = uuid.Parse(campaignID); err != nil {
		return nil, fmt.Errorf("parse campaign id: %w", err)
	}
	if score.Valid {
		s := int(score.Int64)
		p.Score = &s
	}
	p.Completed = completed != 0
	p.CreatedAt, p.UpdatedAt = database.FromMillis(created), database.FromMillis(updated)
	var rawAnswers []byte
	if answers.Valid {
		rawAnswers = []byte(answers.String)
	}
	if err := decodeMaps(&p, []byte(formData), rawAnswers); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateParticipation inserts p.
func (r *SQLiteRepository) CreateParticipation(ctx context.Context, p *models.Participation) error {
	formData, err := json.Marshal(p.FormData)
	if err != nil {
		return fmt.Errorf("encode form data: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt, p.UpdatedAt = now, now
	_, err = r.db.ExecContext(ctx, `INSERT INTO participations
		(id, campaign_id, email, form_data, completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.CampaignID.String(), p.Email, string(formData), boolInt(p.Completed),
		database.ToMillis(now), database.ToMillis(now))
	if err != nil {
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

// GetParticipation returns one participation.
func (r *SQLiteRepository) GetParticipation(ctx context.Context, id uuid.UUID) (*models.Participation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+participationColumns+` FROM participations WHERE id = ?`, id.String())
	return scanSQLiteParticipation(row)
}

// SaveAnswers stores quiz answers and the score.
func (r *SQLiteRepository) SaveAnswers(ctx context.Context, id uuid.UUID, answers map[string]string, score *int) error {
	raw, err := encodeAnswers(answers)
	if err != nil {
		return err
	}
	var rawArg, scoreArg any
	if raw != nil {
		rawArg = string(raw)
	}
	if score != nil {
		scoreArg = *score
	}
	res, err := r.db.ExecContext(ctx, `UPDATE participations SET answers = ?, score = ?, updated_at = ? WHERE id = ?`,
		rawArg, scoreArg, database.ToMillis(time.Now()), id.String())
	if err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrParticipationNotFound
	}
	return nil
}

// Complete marks the participation completed and stores its result.
func (r *SQLiteRepository) Complete(ctx context.Context, res *models.GameResult) error {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	var details any
	if len(res.Details) > 0 {
		details = string(res.Details)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upd, err := tx.ExecContext(ctx, `UPDATE participations SET completed = 1, updated_at = ?
		WHERE id = ? AND campaign_id = ? AND completed = 0`,
		database.ToMillis(res.CreatedAt), res.ParticipationID.String(), res.CampaignID.String())
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if n, _ := upd.RowsAffected(); n == 0 {
		var found int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM participations WHERE id = ?`, res.ParticipationID.String()).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrParticipationNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyCompleted
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO game_results
		(id, campaign_id, participation_id, game_type, result, won, details, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID.String(), res.CampaignID.String(), res.ParticipationID.String(), string(res.GameType), res.Result,
		boolInt(res.Won), details, database.ToMillis(res.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	return tx.Commit()
}

// ListParticipations returns the participations of a campaign, oldest first.
func (r *SQLiteRepository) ListParticipations(ctx context.Context, campaignID uuid.UUID) ([]models.Participation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+participationColumns+` FROM participations
		WHERE campaign_id = ? ORDER BY created_at, id`, campaignID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Participation
	for rows.Next() {
		p, err := scanSQLiteParticipation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CountInstantWins returns the number of stored instant-win results of a campaign.
func (r *SQLiteRepository) CountInstantWins(ctx context.Context, campaignID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_results
		WHERE campaign_id = ? AND won = 1 AND json_extract(details, '$.instant_win') = 1`,
		campaignID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count instant wins: %w", err)
	}
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
