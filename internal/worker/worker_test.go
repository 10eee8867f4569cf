package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promogame/backend/internal/analytics"
	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/queue"
)

type memStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.AnalyticsEvent
	fail   error
}

func (m *memStore) InsertEvent(_ context.Context, e *models.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.events == nil {
		m.events = map[uuid.UUID]*models.AnalyticsEvent{}
	}
	m.events[e.ID] = e
	return nil
}

func (m *memStore) EventCounts(context.Context, uuid.UUID) (map[models.EventType]int, error) {
	return nil, nil
}

func (m *memStore) DailyCounts(context.Context, uuid.UUID, time.Time) ([]analytics.DailyCount, error) {
	return nil, nil
}

func (m *memStore) ResultCounts(context.Context, uuid.UUID) ([]analytics.ResultCount, error) {
	return nil, nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type memQueue struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retried []*queue.Job
}

func (q *memQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, nil
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, nil
}

func (q *memQueue) Retry(_ context.Context, job *queue.Job, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	job.LastError = cause.Error()
	q.retried = append(q.retried, job)
	return nil
}

type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) Notify(uuid.UUID, models.EventType) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func eventJob(t *testing.T, typ string) *queue.Job {
	t.Helper()
	job, err := queue.NewJob(queue.JobTypeEvent, queue.EventPayload{
		EventID:    uuid.New(),
		CampaignID: uuid.New(),
		EventType:  typ,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	return job
}

func TestProcessStoresAndNotifies(t *testing.T) {
	store := &memStore{}
	n := &countingNotifier{}
	p := NewAnalyticsProcessor(analytics.NewWriter(store, n, nil), &memQueue{}, nil)

	require.NoError(t, p.Process(context.Background(), eventJob(t, "view")))
	assert.Equal(t, 1, store.len())
	assert.Equal(t, 1, n.n)
}

func TestProcessRejectsBadJobs(t *testing.T) {
	p := NewAnalyticsProcessor(analytics.NewWriter(&memStore{}, nil, nil), &memQueue{}, nil)

	assert.Error(t, p.Process(context.Background(), &queue.Job{Type: "recording_upload"}))
	assert.Error(t, p.Process(context.Background(), eventJob(t, "share")))
}

func TestRunRetriesFailedJobs(t *testing.T) {
	store := &memStore{fail: errors.New("db down")}
	q := &memQueue{jobs: []*queue.Job{eventJob(t, "completion")}}
	p := NewAnalyticsProcessor(analytics.NewWriter(store, nil, nil), q, nil)
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.retried) > 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, 1, q.retried[0].Attempt)
	assert.Contains(t, q.retried[0].LastError, "db down")
}
