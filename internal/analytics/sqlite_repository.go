package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/database"
)

// SQLiteRepository reads and writes campaign_analytics on SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite analytics repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Store = (*SQLiteRepository)(nil)

// InsertEvent stores one event.
func (r *SQLiteRepository) InsertEvent(ctx context.Context, e *models.AnalyticsEvent) error {
	var metadata sql.NullString
	if len(e.Metadata) > 0 {
		metadata = sql.NullString{String: string(e.Metadata), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO campaign_analytics
		(id, campaign_id, event_type, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID.String(), e.CampaignID.String(), string(e.EventType), metadata, database.ToMillis(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// EventCounts returns the number of events per type for a campaign.
func (r *SQLiteRepository) EventCounts(ctx context.Context, campaignID uuid.UUID) (map[models.EventType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_type, COUNT(*) FROM campaign_analytics WHERE campaign_id = ? GROUP BY event_type`,
		campaignID.String())
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
func (r *SQLiteRepository) DailyCounts(ctx context.Context, campaignID uuid.UUID, since time.Time) ([]DailyCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT strftime('%Y-%m-%d', created_at / 1000, 'unixepoch') AS day,
		event_type, COUNT(*) FROM campaign_analytics WHERE campaign_id = ? AND created_at >= ?
		GROUP BY day, event_type ORDER BY day`, campaignID.String(), database.ToMillis(since))
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
func (r *SQLiteRepository) ResultCounts(ctx context.Context, campaignID uuid.UUID) ([]ResultCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT result, won, COUNT(*) FROM game_results WHERE campaign_id = ?
		GROUP BY result, won ORDER BY COUNT(*) DESC, result`, campaignID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ResultCount
	for rows.Next() {
		var rc ResultCount
		var won int
		if err := rows.Scan(&rc.Result, &won, &rc.Count); err != nil {
			return nil, err
		}
		rc.Won = won != 0
		out = append(out, rc)
	}
	return out, rows.Err()
}
