package credentials

import (
	"context"

	"stark_bridge/internal/modules/config"
	"stark_bridge/internal/modules/credentials/service"
	"stark_bridge/internal/modules/credentials/service/pg"
	"stark_bridge/internal/modules/credentials/service/sqlite"
	health "stark_bridge/internal/modules/health/service"
	"stark_bridge/internal/modules/postgres"
	"stark_bridge/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("credentials",
		fx.Provide(NewStore),
	)
}

// NewStore выбирает бэкенд по storage.driver. Если база недоступна, работаем в памяти.
func NewStore(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, state *health.State) service.Store {
	st, driver := open(ctx, lc, cfg, state)
	state.SetStoreDriver(driver)
	return st
}

func open(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, state *health.State) (service.Store, string) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Storage.DSN, &postgres.Migrations{FS: pg.Migrations, Dir: pg.MigrationsDir})
		if err != nil {
			logger.Error("credentials: postgres init failed, using in-memory store: %v", err)
			return service.NewMemory(), "memory"
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			pool.Close()
			return nil
		}})
		logger.Info("credentials: postgres store")
		state.SetStoreCheck(pool.Ping)
		return pg.New(pool), "postgres"
	case "sqlite":
		st, err := sqlite.Open(cfg.Storage.DSN)
		if err != nil {
			logger.Error("credentials: sqlite init failed, using in-memory store: %v", err)
			return service.NewMemory(), "memory"
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			return st.Close()
		}})
		logger.Info("credentials: sqlite store %s", cfg.Storage.DSN)
		state.SetStoreCheck(st.Ping)
		return st, "sqlite"
	}
	logger.Info("credentials: in-memory store")
	return service.NewMemory(), "memory"
}
