package extended_client

import (
	"stark_bridge/internal/modules/config"
	"stark_bridge/internal/modules/extended_client/service"
	health "stark_bridge/internal/modules/health/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("extended_client",
		fx.Provide(NewClient),
	)
}

func NewClient(cfg *config.Config, state *health.State) *service.Client {
	active := cfg.Active()
	return service.NewClient(service.Options{
		APIBaseURL:     active.APIBaseURL,
		OnboardingURL:  active.OnboardingURL,
		MarketsBaseURL: cfg.Extended.Mainnet.APIBaseURL,
		Timeout:        cfg.Extended.Timeout,
		RateLimitRPS:   cfg.Extended.RateLimitRPS,
		RateLimitBurst: cfg.Extended.RateLimitBurst,
		OnSuccess:      state.TouchUpstream,
	})
}
