package notify

import (
	"context"
	"fmt"

	"stark_bridge/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier: операционные сообщения (онбординг, выпуск ключей, отказы биржи).
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

const queueSize = 64

// Telegram: пассивный нотифайер + команда /status в чате операторов.
// Send только кладёт сообщение в очередь, в API оно уходит из отдельной горутины.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	queue  chan string
	post   func(msg string) error
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	t := newTelegram(chatID, func(msg string) error {
		_, err := b.Send(tgbot.NewMessage(chatID, msg))
		return err
	})
	t.bot = b
	return t, nil
}

func newTelegram(chatID int64, post func(string) error) *Telegram {
	return &Telegram{
		chatID: chatID,
		queue:  make(chan string, queueSize),
		post:   post,
	}
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.post == nil || t.chatID == 0 {
		return
	}
	select {
	case t.queue <- msg:
	default:
		logger.Warn("telegram queue full, dropped: %s", msg)
	}
}

// deliver разгребает очередь до отмены ctx.
func (t *Telegram) deliver(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-t.queue:
			if err := t.post(msg); err != nil {
				logger.Warn("telegram send: %v", err)
			}
		}
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// Start: доставка очереди и long-polling, отвечаем только своему чату.
func (t *Telegram) Start(ctx context.Context, status func() string) {
	if t == nil || t.post == nil {
		return
	}
	go t.deliver(ctx)
	if t.bot == nil {
		return
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				if upd.Message == nil || upd.Message.Chat == nil ||
					upd.Message.Chat.ID != t.chatID || !upd.Message.IsCommand() {
					continue
				}
				switch upd.Message.Command() {
				case "status":
					t.Send(status())
				case "ping":
					t.Send("pong")
				}
			}
		}
	}()
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}

// Stdout: когда токена нет, сообщения уходят в лог.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { logger.Info("notify: %s", msg) }
func (s *Stdout) Sendf(format string, args ...any) { s.Send(fmt.Sprintf(format, args...)) }
