package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"dealve/internal/transport/bot/view"
	"dealve/internal/transport/command"
	"dealve/pkg/logx"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

// OnText handles every text message with the shared command syntax.
// Intents are answered by the notifier once their state is reached.
func (h *Handler) OnText(ctx *th.Context, msg telego.Message) error {
	reply, err := h.Reply(ctx, msg.Text)
	if err != nil {
		logger(ctx).Debug("bot command rejected", slog.String(logx.FieldIntent, msg.Text), logx.Error(err))
		return h.sendHTML(ctx, msg.Chat.ID, view.Error(err))
	}

	if reply == "" {
		return nil
	}

	return h.sendHTML(ctx, msg.Chat.ID, reply)
}

// Reply runs one command line and returns the HTML answer, empty when the
// answer will arrive as a state notification.
func (h *Handler) Reply(ctx context.Context, text string) (string, error) {
	cmd, err := command.Parse(text)
	if err != nil {
		return "", err
	}

	switch cmd.Kind {
	case command.KindIntent:
		return "", h.coordinator.Dispatch(ctx, cmd.Intent)
	case command.KindStores:
		return view.Stores(h.coordinator.State().Filter), nil
	case command.KindSorts:
		return view.Sorts(h.coordinator.State().Filter.Sort), nil
	case command.KindInfo, command.KindHistory:
		deals := h.coordinator.State().Deals
		if cmd.Index > len(deals) {
			return fmt.Sprintf(view.NoRowTemplate, cmd.Index), nil
		}

		deal := deals[cmd.Index-1]

		if cmd.Kind == command.KindInfo {
			info, err := h.details.Info(ctx, deal.Game.ID)
			if err != nil {
				return "", err
			}

			return view.Info(info), nil
		}

		points, err := h.details.History(ctx, deal.Game.ID)
		if err != nil {
			return "", err
		}

		return view.History(deal.Game.Title, points), nil
	case command.KindState:
		if s := view.State(h.coordinator.State()); s != "" {
			return s, nil
		}

		return "⏳ " + h.coordinator.State().String(), nil
	case command.KindHelp:
		return view.Help(), nil
	case command.KindQuit:
		return view.QuitMessage, nil
	default:
		return "", nil
	}
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, tu.Message(tu.ID(chatID), text).
		WithParseMode(telego.ModeHTML).
		WithLinkPreviewOptions(&telego.LinkPreviewOptions{IsDisabled: true}))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}
