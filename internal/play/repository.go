package play

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promogame/backend/internal/models"
)

const participationColumns = `id, campaign_id, email, form_data, answers, score, completed, created_at, updated_at`

// Repository handles participation persistence on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a participation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func scanParticipation(row pgx.Row) (*models.Participation, error) {
	var p models.Participation
	var formData, answers []byte
	err := row.Scan(&p.ID, &p.CampaignID, &p.Email, &formData, &answers, &p.Score, &p.Completed, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrParticipationNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeMaps(&p, formData, answers); err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeMaps(p *models.Participation, formData, answers []byte) error {
	p.FormData = map[string]string{}
	if len(formData) > 0 {
		if err := json.Unmarshal(formData, &p.FormData); err != nil {
			return fmt.Errorf("decode form data: %w", err)
		}
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &p.Answers); err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}
	}
	return nil
}

func encodeAnswers(answers map[string]string) ([]byte, error) {
	if answers == nil {
		return nil, nil
	}
	return json.Marshal(answers)
}

// CreateParticipation inserts p.
func (r *Repository) CreateParticipation(ctx context.Context, p *models.Participation) error {
	formData, err := json.Marshal(p.FormData)
	if err != nil {
		return fmt.Errorf("encode form data: %w", err)
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	const q = `INSERT INTO participations (id, campaign_id, email, form_data, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`
	if _, err := r.pool.Exec(ctx, q, p.ID, p.CampaignID, p.Email, formData, p.Completed, now); err != nil {
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

// GetParticipation returns one participation.
func (r *Repository) GetParticipation(ctx context.Context, id uuid.UUID) (*models.Participation, error) {
	q := `SELECT ` + participationColumns + ` FROM participations WHERE id = $1`
	return scanParticipation(r.pool.QueryRow(ctx, q, id))
}

// SaveAnswers stores quiz answers and the score.
func (r *Repository) SaveAnswers(ctx context.Context, id uuid.UUID, answers map[string]string, score *int) error {
	raw, err := encodeAnswers(answers)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE participations SET answers = $2, score = $3, updated_at = NOW() WHERE id = $1`,
		id, raw, score)
	if err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrParticipationNotFound
	}
	return nil
}

// Complete marks the participation completed and stores its result.
func (r *Repository) Complete(ctx context.Context, res *models.GameResult) error {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	var details []byte
	if len(res.Details) > 0 {
		details = res.Details
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE participations SET completed = TRUE, updated_at = NOW()
			WHERE id = $1 AND campaign_id = $2 AND completed = FALSE`, res.ParticipationID, res.CampaignID)
		if err != nil {
			return fmt.Errorf("mark completed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM participations WHERE id = $1)`, res.ParticipationID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrParticipationNotFound
			}
			return ErrAlreadyCompleted
		}
		_, err = tx.Exec(ctx, `INSERT INTO game_results (id, campaign_id, participation_id, game_type, result, won, details, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			res.ID, res.CampaignID, res.ParticipationID, string(res.GameType), res.Result, res.Won, details, res.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert game result: %w", err)
		}
		return nil
	})
}

// ListParticipations returns the participations of a campaign, oldest first.
func (r *Repository) ListParticipations(ctx context.Context, campaignID uuid.UUID) ([]models.Participation, error) {
	q := `SELECT ` + participationColumns + ` FROM participations WHERE campaign_id = $1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CountInstantWins returns the number of stored instant-win results of a campaign.
func (r *Repository) CountInstantWins(ctx context.Context, campaignID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_results
		WHERE campaign_id = $1 AND won AND details->>'instant_win' = 'true'`, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count instant wins: %w", err)
	}
	return n, nil
}
