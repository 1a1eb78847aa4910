package notify

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"stark_bridge/internal/modules/health/service"
	"stark_bridge/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	os.Exit(m.Run())
}

func TestStatusText(t *testing.T) {
	st := service.NewState()
	st.SetReady(true)

	txt := StatusText("testnet", st)
	if !strings.Contains(txt, "ready: true") || !strings.Contains(txt, "last upstream ok: never") {
		t.Fatalf("unexpected status: %s", txt)
	}

	st.TouchUpstream(time.Date(2024, 7, 30, 16, 1, 2, 0, time.UTC))
	if txt := StatusText("testnet", st); !strings.Contains(txt, "2024-07-30 16:01:02Z") {
		t.Fatalf("last upstream not rendered: %s", txt)
	}
}

func TestNilTelegramIsNoop(t *testing.T) {
	var tg *Telegram
	tg.Send("nothing happens")
	tg.Stop()
}

func TestTelegramSendDoesNotWaitForAPI(t *testing.T) {
	release := make(chan struct{})
	got := make(chan string, 2)
	tg := newTelegram(1, func(msg string) error {
		<-release
		got <- msg
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tg.Start(ctx, func() string { return "" })

	start := time.Now()
	tg.Send("onboarded")
	tg.Sendf("api key issued for %d", 7)
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("send blocked on the api")
	}

	close(release)
	for _, want := range []string{"onboarded", "api key issued for 7"} {
		select {
		case msg := <-got:
			if msg != want {
				t.Fatalf("got %q want %q", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("%q not delivered", want)
		}
	}
}

func TestTelegramQueueFullDrops(t *testing.T) {
	tg := newTelegram(1, func(string) error { return nil })
	for i := 0; i < queueSize+10; i++ {
		tg.Send("x")
	}
	if len(tg.queue) != queueSize {
		t.Fatalf("queue len %d", len(tg.queue))
	}
}
