package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"golang.org/x/time/rate"

	"dealve/internal/domain/service/browse"
	"dealve/internal/transport/bot/view"
	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Telegram allows about one message per second to a chat.
const (
	messageInterval = time.Second
	messageBurst    = 3
)

// Sender is the part of *telego.Bot the notifier needs.
type Sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramBot pushes settled browse states to one chat.
type TelegramBot struct {
	bot     Sender
	chatID  int64
	limiter *rate.Limiter

	lastGeneration uint64
	lastPhase      browse.Phase
	lastCount      int
}

func NewTelegramBot(bot Sender, chatID int64) *TelegramBot {
	return &TelegramBot{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(messageInterval), messageBurst),
	}
}

// WithInterval replaces the pacing between messages.
func (b *TelegramBot) WithInterval(interval time.Duration, burst int) *TelegramBot {
	b.limiter = rate.NewLimiter(rate.Every(interval), burst)
	return b
}

// Run sends every new Loaded or Error state until ctx is done or states is
// closed.
func (b *TelegramBot) Run(ctx context.Context, states <-chan browse.State) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-states:
			if !ok {
				return nil
			}

			if !b.changed(s) {
				continue
			}

			if err := b.SendState(ctx, s); err != nil {
				logger(ctx).Error("failed to send state",
					slog.String(logx.FieldState, s.String()), logx.Error(err))
			}
		}
	}
}

// changed reports whether s settles a generation not sent yet. An append
// on the same generation counts when the row count grew.
func (b *TelegramBot) changed(s browse.State) bool {
	if s.Phase != browse.PhaseLoaded && s.Phase != browse.PhaseError {
		return false
	}

	if s.Generation == b.lastGeneration && s.Phase == b.lastPhase && len(s.Deals) == b.lastCount {
		return false
	}

	b.lastGeneration = s.Generation
	b.lastPhase = s.Phase
	b.lastCount = len(s.Deals)

	return true
}

func (b *TelegramBot) SendState(ctx context.Context, s browse.State) error {
	text := view.State(s)
	if text == "" {
		return nil
	}

	return b.SendText(ctx, text)
}

func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for send slot: %w", err)
	}

	msg := tu.Message(tu.ID(b.chatID), text).
		WithParseMode(telego.ModeHTML).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true})

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}
