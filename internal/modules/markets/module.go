package markets

import (
	"stark_bridge/internal/modules/config"
	extended "stark_bridge/internal/modules/extended_client/service"
	"stark_bridge/internal/modules/markets/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("markets",
		fx.Provide(func(cfg *config.Config, client *extended.Client) *service.Cache {
			return service.NewCache(client, cfg.Markets.CacheTTL)
		}),
	)
}
