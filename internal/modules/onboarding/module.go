package onboarding

import (
	"time"

	"stark_bridge/internal/modules/config"
	credentials "stark_bridge/internal/modules/credentials/service"
	extended "stark_bridge/internal/modules/extended_client/service"
	"stark_bridge/internal/modules/onboarding/service"
	"stark_bridge/internal/notify"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("onboarding",
		fx.Provide(
			func(cfg *config.Config) *service.TypedDataBuilder {
				active := cfg.Active()
				return service.NewTypedDataBuilder(active.SigningDomain, active.OnboardingURL, time.Now)
			},
			func(
				cfg *config.Config,
				builder *service.TypedDataBuilder,
				client *extended.Client,
				store credentials.Store,
				notifier notify.Notifier,
			) *service.Orchestrator {
				return service.NewOrchestrator(builder, client, store, notifier, service.Options{
					ReferralCode:      cfg.Extended.ReferralCode,
					VerifyL1Signature: cfg.Onboarding.VerifyL1Signature,
				})
			},
		),
	)
}
