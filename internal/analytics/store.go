package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promogame/backend/internal/models"
)

// DailyCount is the number of events of one type recorded on one UTC day (YYYY-MM-DD).
type DailyCount struct {
	Day       string
	EventType models.EventType
	Count     int
}

// ResultCount is the number of game results sharing an outcome label.
type ResultCount struct {
	Result string
	Won    bool
	Count  int
}

// Store persists analytics events and answers the aggregate queries statistics are built from.
type Store interface {
	// InsertEvent stores e. Inserting an id that already exists is a no-op, so queue
	// retries never double count.
	InsertEvent(ctx context.Context, e *models.AnalyticsEvent) error
	EventCounts(ctx context.Context, campaignID uuid.UUID) (map[models.EventType]int, error)
	DailyCounts(ctx context.Context, campaignID uuid.UUID, since time.Time) ([]DailyCount, error)
	ResultCounts(ctx context.Context, campaignID uuid.UUID) ([]ResultCount, error)
}
