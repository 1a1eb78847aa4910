package orders

import (
	"fmt"

	"stark_bridge/internal/modules/config"
	credentials "stark_bridge/internal/modules/credentials/service"
	extended "stark_bridge/internal/modules/extended_client/service"
	markets "stark_bridge/internal/modules/markets/service"
	"stark_bridge/internal/modules/orders/service"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("orders",
		fx.Provide(NewEngine),
	)
}

// NewEngine: активная сеть из env, mainnet, для use_mainnet. Клиент mainnet делит лимитер с активным.
func NewEngine(cfg *config.Config, client *extended.Client, cache *markets.Cache, store credentials.Store) (*service.Engine, error) {
	feeRate, err := decimal.NewFromString(cfg.Orders.DefaultFeeRate)
	if err != nil {
		return nil, fmt.Errorf("orders.default_fee_rate: %w", err)
	}

	active := cfg.Active()
	mainnet := cfg.Extended.Mainnet

	return service.NewEngine(cache, store,
		service.Network{Name: cfg.Env, ChainID: active.ChainID, Exchange: client},
		service.Network{
			Name:     config.EnvMainnet,
			ChainID:  mainnet.ChainID,
			Exchange: client.WithEndpoint(mainnet.APIBaseURL, mainnet.OnboardingURL),
		},
		service.Options{Expiry: cfg.Orders.Expiry, DefaultFeeRate: feeRate},
	), nil
}
