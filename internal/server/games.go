package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dealve/internal/domain/entity"
	"dealve/pkg/httpx/reply"
)

type gameDetails interface {
	Info(ctx context.Context, id string) (entity.GameInfo, error)
	History(ctx context.Context, id string) ([]entity.PricePoint, error)
}

type GameServer struct {
	details gameDetails
}

func NewGameServer(details gameDetails) GameServer {
	return GameServer{
		details: details,
	}
}

func (s GameServer) getV1Game(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	info, err := s.details.Info(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("details.Info: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, info)

	return nil
}

func (s GameServer) getV1GameHistory(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	points, err := s.details.History(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("details.History: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTHistory(points))

	return nil
}
