package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"stark_bridge/internal/modules/api/service"
	apikey "stark_bridge/internal/modules/apikey/service"
	"stark_bridge/internal/modules/config"
	credentials "stark_bridge/internal/modules/credentials/service"
	health "stark_bridge/internal/modules/health/service"
	onboarding "stark_bridge/internal/modules/onboarding/service"
	orders "stark_bridge/internal/modules/orders/service"
	session "stark_bridge/internal/modules/session/service"
	"stark_bridge/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(
			NewHandler,
			NewRouter,
		),
		fx.Invoke(RunHTTP),
	)
}

func NewHandler(
	o *onboarding.Orchestrator,
	i *apikey.Issuer,
	e *orders.Engine,
	n *session.Nonces,
	store credentials.Store,
) *service.Handler {
	return service.NewHandler(o, i, e, n, store)
}

func NewRouter(cfg *config.Config, h *service.Handler) *gin.Engine {
	debug := strings.EqualFold(cfg.Log.Level, "debug")
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	return service.NewRouter(h, debug)
}

// RunHTTP поднимает публичный API и после успешного listen помечает сервис готовым.
func RunHTTP(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, state *health.State) {
	addr := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.PublicPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			logger.Info("public api listening on %s", addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("public api: %v", err)
					state.SetReady(false)
				}
			}()
			state.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})
}
