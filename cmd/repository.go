package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/revise/internal/config"
	"github.com/abhisek/revise/internal/mastery"
	"github.com/abhisek/revise/internal/store"
)

// recordStore is what the CLI needs from a configured backend.
type recordStore interface {
	mastery.Repository
	mastery.Writer
	DeleteCourse(ctx context.Context, studentID, courseID string) error
}

// openStore opens the backend selected by database.driver. The returned
// function releases it.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (recordStore, func(), error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		pool, err := store.OpenPostgres(ctx, cfg.DB.URL, int32(cfg.DB.MaxConnections), cfg.DB.MaxConnLifetime)
		if err != nil {
			return nil, nil, err
		}
		repo := store.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Debug("using postgres store")
		return repo, pool.Close, nil

	case config.DriverRedis:
		client, err := store.OpenRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("using redis store", zap.String("key_prefix", cfg.Redis.KeyPrefix))
		return store.NewRedisRepository(client, cfg.Redis.KeyPrefix), func() { client.Close() }, nil

	default:
		path, err := resolveDBPath(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		log.Debug("using sqlite store", zap.String("path", path))
		return st, func() { st.Close() }, nil
	}
}

// resolveDBPath returns the database path using --db or database.path
// (highest priority), then REVISE_DB env var, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.DB.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
