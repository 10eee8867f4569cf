package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promogame/backend/internal/models"
)

// Repository reads and writes campaign_analytics on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// InsertEvent stores one event.
func (r *Repository) InsertEvent(ctx context.Context, e *models.AnalyticsEvent) error {
	const q = `INSERT INTO campaign_analytics (id, campaign_id, event_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`
	var metadata []byte
	if len(e.Metadata) > 0 {
		metadata = e.Metadata
	}
	_, err := r.pool.Exec(ctx, q, e.ID, e.CampaignID, string(e.EventType), metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// EventCounts returns the number of events per type for a campaign.
func (r *Repository) EventCounts(ctx context.Context, campaignID uuid.UUID) (map[models.EventType]int, error) {
	const q = `SELECT event_type, COUNT(*) FROM campaign_analytics WHERE campaign_id = $1 GROUP BY event_type`
	rows, err := r.pool.Query(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[models.EventType]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[models.EventType(t)] = n
	}
	return out, rows.Err()
}

// DailyCounts returns per-day, per-type counts since the given time.
func (r *Repository) DailyCounts(ctx context.Context, campaignID uuid.UUID, since time.Time) ([]DailyCount, error) {
	const q = `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, event_type, COUNT(*)
		FROM campaign_analytics WHERE campaign_id = $1 AND created_at >= $2
		GROUP BY day, event_type ORDER BY day`
	rows, err := r.pool.Query(ctx, q, campaignID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyCount
	for rows.Next() {
		var d DailyCount
		var t string
		if err := rows.Scan(&d.Day, &t, &d.Count); err != nil {
			return nil, err
		}
		d.EventType = models.EventType(t)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ResultCounts returns how often each game outcome occurred.
func (r *Repository) ResultCounts(ctx context.Context, campaignID uuid.UUID) ([]ResultCount, error) {
	const q = `SELECT result, won, COUNT(*) FROM game_results WHERE campaign_id = $1
		GROUP BY result, won ORDER BY COUNT(*) DESC, result`
	rows, err := r.pool.Query(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ResultCount
	for rows.Next() {
		var rc ResultCount
		if err := rows.Scan(&rc.Result, &rc.Won, &rc.Count); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
