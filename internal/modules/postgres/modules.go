package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"stark_bridge/pkg/db"
	"stark_bridge/pkg/logger"
)

// Migrations: встроенные миграции конкретного хранилища.
type Migrations struct {
	FS  fs.FS
	Dir string
}

const (
	maxConns          = 8
	healthCheckPeriod = 30 * time.Second
)

// Connect открывает пул и накатывает миграции. При ошибке миграции пул закрывается.
func Connect(ctx context.Context, dsn string, m *Migrations) (*db.Pool, error) {
	pool, err := db.Open(ctx, db.Config{
		DSN:               dsn,
		MaxConns:          maxConns,
		HealthCheckPeriod: healthCheckPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if m != nil {
		if err := db.Migrate(dsn, m.FS, m.Dir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
	}
	logger.Info("postgres: connected, max conns %d", maxConns)
	return pool, nil
}
