package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/models"
	"github.com/promogame/backend/pkg/queue"
)

type stubQueue struct {
	payloads []queue.EventPayload
	err      error
}

func (s *stubQueue) EnqueueEvent(_ context.Context, p queue.EventPayload) error {
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, p)
	return nil
}

type stubNotifier struct {
	calls []models.EventType
}

func (s *stubNotifier) Notify(_ uuid.UUID, t models.EventType) { s.calls = append(s.calls, t) }

func TestRecorderEnqueuesWhenQueueAvailable(t *testing.T) {
	f := newFixture(t)
	q := &stubQueue{}
	n := &stubNotifier{}
	r := NewRecorder(q, NewWriter(f.store, n, zap.NewNop()), zap.NewNop())

	require.NoError(t, r.Record(context.Background(), f.campaign.ID, models.EventView, map[string]string{"ref": "qr"}))

	require.Len(t, q.payloads, 1)
	assert.Equal(t, "view", q.payloads[0].EventType)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(q.payloads[0].Metadata, &meta))
	assert.Equal(t, "qr", meta["ref"])
	assert.Empty(t, n.calls, "the worker notifies once it has stored the event")

	counts, err := f.store.EventCounts(context.Background(), f.campaign.ID)
	require.NoError(t, err)
	assert.Zero(t, counts[models.EventView])
}

func TestRecorderWritesInlineWithoutQueue(t *testing.T) {
	f := newFixture(t)
	n := &stubNotifier{}
	r := NewRecorder(nil, NewWriter(f.store, n, nil), nil)

	require.NoError(t, r.Record(context.Background(), f.campaign.ID, models.EventParticipation, nil))

	counts, err := f.store.EventCounts(context.Background(), f.campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.EventParticipation])
	assert.Equal(t, []models.EventType{models.EventParticipation}, n.calls)
}

func TestRecorderFallsBackWhenEnqueueFails(t *testing.T) {
	f := newFixture(t)
	r := NewRecorder(&stubQueue{err: errors.New("redis down")}, NewWriter(f.store, nil, nil), nil)

	require.NoError(t, r.Record(context.Background(), f.campaign.ID, models.EventCompletion, nil))

	counts, err := f.store.EventCounts(context.Background(), f.campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.EventCompletion])
}

func TestRecorderRejectsUnknownType(t *testing.T) {
	r := NewRecorder(nil, NewWriter(nil, nil, nil), nil)
	err := r.Record(context.Background(), uuid.New(), models.EventType("share"), nil)
	assert.Error(t, err)
}
