package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"stark_bridge/internal/modules/api"
	"stark_bridge/internal/modules/apikey"
	"stark_bridge/internal/modules/config"
	"stark_bridge/internal/modules/credentials"
	"stark_bridge/internal/modules/extended_client"
	"stark_bridge/internal/modules/health"
	"stark_bridge/internal/modules/markets"
	"stark_bridge/internal/modules/onboarding"
	"stark_bridge/internal/modules/orders"
	"stark_bridge/internal/modules/session"
	"stark_bridge/internal/notify"
	"stark_bridge/pkg/logger"
	"stark_bridge/pkg/tracing"

	"go.uber.org/fx"
)

// initTracing: jaeger только если включён, иначе глобальный noop трейсер.
func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.Tracing.Enabled {
		return nil
	}
	closer, err := tracing.InitTracer(tracing.Config{
		Service: "stark-bridge",
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		closer()
		return nil
	}})
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return ctx
			},
		),
		fx.NopLogger,
		config.Module(),
		fx.Invoke(initTracing),
		health.Module(),
		notify.Module(),
		extended_client.Module(),
		credentials.Module(),
		markets.Module(),
		onboarding.Module(),
		apikey.Module(),
		orders.Module(),
		session.Module(),
		api.Module(),
	)
	if err := app.Start(ctx); err != nil {
		log.Fatal(err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Error("stop: %v", err)
	}
	logger.Sync()
}
