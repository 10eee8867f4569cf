// Package stores opens the configured database and builds every repository on top of it.
package stores

import (
	"context"

	"go.uber.org/zap"

	"github.com/promogame/backend/config"
	"github.com/promogame/backend/internal/analytics"
	"github.com/promogame/backend/internal/auth"
	"github.com/promogame/backend/internal/campaigns"
	"github.com/promogame/backend/internal/play"
	"github.com/promogame/backend/internal/templates"
	"github.com/promogame/backend/pkg/database"
)

// Stores groups the repositories of one database.
type Stores struct {
	Users        auth.UserStore
	Campaigns    campaigns.Store
	Participants play.Store
	Analytics    analytics.Store
	Templates    templates.Store
	Driver       string

	close func()
}

// Close releases the database handle.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to PostgreSQL, or to SQLite for a sqlite:// URL, and applies migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	if cfg.IsSQLite() {
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath(), logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:        auth.NewSQLiteRepository(db),
			Campaigns:    campaigns.NewSQLiteRepository(db),
			Participants: play.NewSQLiteRepository(db),
			Analytics:    analytics.NewSQLiteRepository(db),
			Templates:    templates.NewSQLiteRepository(db),
			Driver:       "sqlite",
			close:        func() { _ = db.Close() },
		}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DSN(), cfg.MaxConns, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Stores{
		Users:        auth.NewRepository(pool),
		Campaigns:    campaigns.NewRepository(pool),
		Participants: play.NewRepository(pool),
		Analytics:    analytics.NewRepository(pool),
		Templates:    templates.NewRepository(pool),
		Driver:       "postgres",
		close:        pool.Close,
	}, nil
}
