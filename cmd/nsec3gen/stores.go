package main

import (
	"context"
	"fmt"

	"github.com/poyrazK/nsec3gen/internal/adapters/store"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
)

// openStores builds the writer chain: the file store always, then Redis
// and Postgres when they are configured. close releases connections.
func (a *app) openStores(ctx context.Context, fileStore *store.FileStore) (ports.CacheWriter, func(), error) {
	writers := []ports.CacheWriter{fileStore}
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if a.env.RedisAddr != "" {
		rs, err := a.openRedis(ctx)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, rs)
		closers = append(closers, func() { _ = rs.Close() })
	}

	if a.env.DatabaseURL != "" {
		ps, closeDB, err := a.openPostgres(ctx)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		writers = append(writers, ps)
		closers = append(closers, closeDB)
	}

	return store.NewMultiWriter(writers...), closeAll, nil
}

func (a *app) openRedis(ctx context.Context) (*store.RedisStore, error) {
	rs := store.NewRedisStore(a.env.RedisAddr, a.env.RedisPassword, a.env.RedisDB, a.env.RedisKeyPrefix, a.logger)
	if err := rs.Ping(ctx); err != nil {
		_ = rs.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", a.env.RedisAddr, err)
	}
	a.logger.Info("redis output enabled", "addr", a.env.RedisAddr, "prefix", a.env.RedisKeyPrefix)
	return rs, nil
}

func (a *app) openPostgres(ctx context.Context) (*store.PostgresStore, func(), error) {
	db, err := store.OpenPostgres(ctx, a.env.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if errClose := db.Close(); errClose != nil {
			a.logger.Error("failed to close database", "error", errClose)
		}
	}

	ps := store.NewPostgresStore(db, a.logger)
	if err := ps.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	a.logger.Info("postgres output enabled")
	return ps, closeDB, nil
}
