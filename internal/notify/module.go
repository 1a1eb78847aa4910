package notify

import (
	"context"
	"fmt"
	"time"

	"stark_bridge/internal/modules/config"
	"stark_bridge/internal/modules/health/service"
	"stark_bridge/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(NewNotifier),
	)
}

func NewNotifier(lc fx.Lifecycle, cfg *config.Config, state *service.State) Notifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return NewStdout()
	}

	tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		logger.Error("telegram init failed, notifications go to log: %v", err)
		return NewStdout()
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			tg.Start(ctx, func() string { return StatusText(cfg.Env, state) })
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			tg.Stop()
			return nil
		},
	})
	return tg
}

// StatusText: ответ на /status.
func StatusText(env string, state *service.State) string {
	last := "never"
	if t := state.LastUpstream(); !t.IsZero() {
		last = t.UTC().Format("2006-01-02 15:04:05Z")
	}
	store := state.StoreDriver()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := state.CheckStore(ctx); err != nil {
		store += " (down: " + err.Error() + ")"
	}
	return fmt.Sprintf("stark-bridge [%s]\nready: %v\nstore: %s\nuptime: %s\nlast upstream ok: %s",
		env, state.Ready(), store, state.Uptime().Truncate(time.Second), last)
}
