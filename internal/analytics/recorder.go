package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/queue"
)

// Notifier is told about every stored event; implemented by realtime.Hub and realtime.RedisPubSub.
type Notifier interface {
	Notify(campaignID uuid.UUID, eventType models.EventType)
}

// Enqueuer hands events to the background worker.
type Enqueuer interface {
	EnqueueEvent(ctx context.Context, payload queue.EventPayload) error
}

// Writer stores events and notifies live dashboards.
type Writer struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
}

// NewWriter creates an event writer. notifier may be nil.
func NewWriter(store Store, notifier Notifier, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, notifier: notifier, logger: logger}
}

// Write stores e and announces it.
func (w *Writer) Write(ctx context.Context, e *models.AnalyticsEvent) error {
	if !e.EventType.Valid() {
		return fmt.Errorf("unknown event type %q", e.EventType)
	}
	if err := w.store.InsertEvent(ctx, e); err != nil {
		return err
	}
	if w.notifier != nil {
		w.notifier.Notify(e.CampaignID, e.EventType)
	}
	return nil
}

// EventFromPayload converts a queued job payload back into an event row.
func EventFromPayload(p queue.EventPayload) *models.AnalyticsEvent {
	return &models.AnalyticsEvent{
		ID:         p.EventID,
		CampaignID: p.CampaignID,
		EventType:  models.EventType(p.EventType),
		Metadata:   []byte(p.Metadata),
		CreatedAt:  p.OccurredAt,
	}
}

// Recorder records public-page events. With a queue the write happens in the worker,
// otherwise inline.
type Recorder struct {
	queue  Enqueuer
	writer *Writer
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder. q may be nil when Redis is not configured.
func NewRecorder(q Enqueuer, writer *Writer, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{queue: q, writer: writer, logger: logger, now: time.Now}
}

// Record records one event. metadata is encoded as JSON and may be nil.
func (r *Recorder) Record(ctx context.Context, campaignID uuid.UUID, t models.EventType, metadata any) error {
	if !t.Valid() {
		return fmt.Errorf("unknown event type %q", t)
	}
	var raw []byte
	if metadata != nil {
		var err error
		if raw, err = json.Marshal(metadata); err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}
	payload := queue.EventPayload{
		EventID:    uuid.New(),
		CampaignID: campaignID,
		EventType:  string(t),
		Metadata:   raw,
		OccurredAt: r.now().UTC(),
	}
	if r.queue != nil {
		err := r.queue.EnqueueEvent(ctx, payload)
		if err == nil {
			return nil
		}
		r.logger.Warn("enqueue analytics event failed, writing inline",
			zap.String("campaign_id", campaignID.String()), zap.String("event_type", string(t)), zap.Error(err))
	}
	return r.writer.Write(ctx, EventFromPayload(payload))
}

// Track records an event and only logs failures. Public requests never fail on analytics.
func (r *Recorder) Track(ctx context.Context, campaignID uuid.UUID, t models.EventType, metadata any) {
	if err := r.Record(ctx, campaignID, t, metadata); err != nil {
		r.logger.Error("record analytics event", zap.String("campaign_id", campaignID.String()),
			zap.String("event_type", string(t)), zap.Error(err))
	}
}
