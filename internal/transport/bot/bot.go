package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"golang.org/x/sync/errgroup"

	"dealve/internal/config"
	"dealve/internal/domain/service/browse"
	"dealve/internal/infrastructure/notifier"
	"dealve/internal/transport/bot/handler"
	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const pollTimeoutSeconds = 60

type Coordinator interface {
	handler.Coordinator
	Subscribe() (<-chan browse.State, func())
}

// Bot mirrors the browsing session into one Telegram chat.
type Bot struct {
	bot         *telego.Bot
	chatID      int64
	coordinator Coordinator
	handler     *handler.Handler
	notifier    *notifier.TelegramBot
}

func New(cfg config.Bot, coordinator Coordinator, details handler.Details) (*Bot, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telego.NewBot: %w", err)
	}

	return &Bot{
		bot:         bot,
		chatID:      cfg.ChatID,
		coordinator: coordinator,
		handler:     handler.New(coordinator, details),
		notifier:    notifier.NewTelegramBot(bot, cfg.ChatID),
	}, nil
}

// Run polls updates and pushes settled states until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: pollTimeoutSeconds,
	})
	if err != nil {
		return fmt.Errorf("bot.UpdatesViaLongPolling: %w", err)
	}

	botHandler, err := th.NewBotHandler(b.bot, updates)
	if err != nil {
		return fmt.Errorf("th.NewBotHandler: %w", err)
	}

	b.handler.RegisterRoutes(botHandler, b.chatID)

	states, unsubscribe := b.coordinator.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := botHandler.Start(); err != nil {
			return fmt.Errorf("botHandler.Start: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		return b.notifier.Run(gctx, states)
	})

	g.Go(func() error {
		<-gctx.Done()

		if err := botHandler.Stop(); err != nil {
			logger(ctx).Error("failed to stop bot handler", logx.Error(err))
		}

		return nil
	})

	logger(ctx).Info("telegram bot started")

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}
