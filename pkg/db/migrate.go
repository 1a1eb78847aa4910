package db

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"stark_bridge/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate накатывает миграции из fsys/dir на базу dsn.
func Migrate(dsn string, fsys fs.FS, dir string) error {
	logger.Info("starting postgres migration")

	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	migration, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	defer migration.Close()

	err = migration.Up()
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("postgres migration skipped as there are no changes")
			return nil
		}
		return err
	}

	logger.Info("postgres migration performed successfully")
	return nil
}

// migrateURL: драйвер pgx/v5 у migrate регистрируется под схемой pgx5.
func migrateURL(dsn string) string {
	for _, p := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, p) {
			return "pgx5://" + strings.TrimPrefix(dsn, p)
		}
	}
	return dsn
}
