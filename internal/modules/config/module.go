package config

import (
	"stark_bridge/pkg/logger"

	"go.uber.org/fx"
)

// Module регистрирует конфиг как fx-провайдер и сразу поднимает логгер.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
		),
		fx.Invoke(func(cfg *Config) error {
			if err := logger.Init("stark-bridge", cfg.Log.Level); err != nil {
				return err
			}
			logger.Info("effective config:\n%s", cfg.Dump())
			return nil
		}),
	)
}
