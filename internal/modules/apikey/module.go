package apikey

import (
	"time"

	"stark_bridge/internal/modules/apikey/service"
	"stark_bridge/internal/modules/config"
	credentials "stark_bridge/internal/modules/credentials/service"
	extended "stark_bridge/internal/modules/extended_client/service"
	"stark_bridge/internal/notify"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("apikey",
		fx.Provide(func(
			cfg *config.Config,
			client *extended.Client,
			store credentials.Store,
			notifier notify.Notifier,
		) *service.Issuer {
			return service.NewIssuer(client, store, notifier, cfg.Extended.APIKeyDescriptor, time.Now)
		}),
	)
}
