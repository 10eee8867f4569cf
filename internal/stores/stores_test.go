package stores

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promogame/backend/config"
	"github.com/promogame/backend/internal/models"
)

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	s, err := Open(context.Background(), config.DatabaseConfig{URL: "sqlite://" + path}, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "sqlite", s.Driver)
	ctx := context.Background()
	u := &models.User{Email: "a@b.co", Password: "x", FullName: "A", Role: models.RoleEditor}
	require.NoError(t, s.Users.Create(ctx, u))

	list, err := s.Campaigns.ListByOwner(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	n, err := s.Templates.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
