package play

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionsLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessions(time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	s := &Session{ID: uuid.New(), State: []byte(`{"moves":0}`)}
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Update(ctx, s.ID, func(s *Session) error {
		s.Actions++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Actions)

	_, err = store.Update(ctx, s.ID, func(s *Session) error {
		s.Actions = 99
		return errors.New("rejected")
	})
	require.Error(t, err)
	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Actions, "failed updates are not written")

	clock = clock.Add(2 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
