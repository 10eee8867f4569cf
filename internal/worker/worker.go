package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/analytics"
	"github.com/promogame/backend/pkg/queue"
)

// JobSource is the queue side the processor consumes.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job, cause error) error
}

// AnalyticsProcessor stores queued analytics events and announces them to live dashboards.
type AnalyticsProcessor struct {
	writer  *analytics.Writer
	queue   JobSource
	logger  *zap.Logger
	backoff time.Duration
}

// NewAnalyticsProcessor creates an analytics event processor.
func NewAnalyticsProcessor(writer *analytics.Writer, q JobSource, logger *zap.Logger) *AnalyticsProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsProcessor{writer: writer, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one analytics event job.
func (p *AnalyticsProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEvent {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EventPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.writer.Write(ctx, analytics.EventFromPayload(payload)); err != nil {
		return fmt.Errorf("store event: %w", err)
	}
	p.logger.Debug("analytics event stored", zap.String("event_id", payload.EventID.String()),
		zap.String("campaign_id", payload.CampaignID.String()), zap.String("event_type", payload.EventType))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *AnalyticsProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("analytics worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job, err); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *AnalyticsProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
