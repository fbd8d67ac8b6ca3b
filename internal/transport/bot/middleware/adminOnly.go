package middleware

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// AdminOnly drops updates that do not come from the configured chat.
func AdminOnly(chatID int64) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		if Allowed(update, chatID) {
			return ctx.Next(update)
		}

		return nil
	}
}

func Allowed(update telego.Update, chatID int64) bool {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID == chatID
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID == chatID
	default:
		return false
	}
}
