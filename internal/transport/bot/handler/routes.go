package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"dealve/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, chatID int64) {
	group := bh.Group(th.AnyMessage())
	group.Use(middleware.AdminOnly(chatID))

	group.HandleMessage(h.OnStart, th.CommandEqual("start"))
	group.HandleMessage(h.OnText, th.AnyMessageWithText())
}
