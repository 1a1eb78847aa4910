package session

import (
	"time"

	"stark_bridge/internal/modules/config"
	"stark_bridge/internal/modules/session/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("session",
		fx.Provide(func(cfg *config.Config) *service.Nonces {
			return service.NewNonces(cfg.Session.NonceTTL, time.Now)
		}),
	)
}
