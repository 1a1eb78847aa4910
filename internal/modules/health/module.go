package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"stark_bridge/internal/modules/config"
	"stark_bridge/internal/modules/health/service"
	"stark_bridge/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const storeCheckTimeout = 2 * time.Second

type Config struct {
	Addr string
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.AdminPort)}
}

type healthReport struct {
	Ready            bool   `json:"ready"`
	Store            string `json:"store"`
	StoreError       string `json:"storeError,omitempty"`
	UptimeSec        int64  `json:"uptimeSec"`
	LastUpstreamUnix int64  `json:"lastUpstreamUnix"`
}

func checkStore(r *http.Request, state *service.State) error {
	ctx, cancel := context.WithTimeout(r.Context(), storeCheckTimeout)
	defer cancel()
	return state.CheckStore(ctx)
}

// NewMux: админский порт: пробы оркестратора и метрики.
func NewMux(state *service.State) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// готовы, когда публичный API слушает и база учёток отвечает
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !state.Ready() {
			http.Error(w, "api not started", http.StatusServiceUnavailable)
			return
		}
		if err := checkStore(r, state); err != nil {
			http.Error(w, "store: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		report := healthReport{
			Ready:     state.Ready(),
			Store:     state.StoreDriver(),
			UptimeSec: int64(state.Uptime().Seconds()),
		}
		if t := state.LastUpstream(); !t.IsZero() {
			report.LastUpstreamUnix = t.Unix()
		}
		if err := checkStore(r, state); err != nil {
			report.StoreError = err.Error()
		}

		body, err := sonic.Marshal(report)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("admin http: %w", err)
			}
			logger.Info("admin http listening on %s", cfg.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("admin http: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewConfig,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
