package handler

import (
	"context"

	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/internal/domain/service/query"
	"dealve/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Coordinator interface {
	Dispatch(ctx context.Context, intent query.Intent) error
	State() browse.State
}

type Details interface {
	Info(ctx context.Context, id string) (entity.GameInfo, error)
	History(ctx context.Context, id string) ([]entity.PricePoint, error)
}

type Handler struct {
	coordinator Coordinator
	details     Details
}

func New(coordinator Coordinator, details Details) *Handler {
	return &Handler{
		coordinator: coordinator,
		details:     details,
	}
}
