package server

import (
	"context"
	"fmt"
	"net/http"

	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/internal/domain/service/query"
	"dealve/internal/infrastructure/cache"
	"dealve/pkg/httpx/reply"
	"dealve/pkg/httpx/req"
	"dealve/pkg/rest"
)

type coordinator interface {
	Dispatch(ctx context.Context, intent query.Intent) error
	State() browse.State
}

type cacheStats interface {
	Stats() cache.Stats
}

type StatusServer struct {
	coordinator coordinator
	cache       cacheStats
}

func NewStatusServer(coordinator coordinator, cache cacheStats) StatusServer {
	return StatusServer{
		coordinator: coordinator,
		cache:       cache,
	}
}

func (s StatusServer) getV1State(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTState(s.coordinator.State()))

	return nil
}

// postV1Intents queues one intent. The answer carries the state at the
// time of queueing; clients poll /v1/state for the outcome.
func (s StatusServer) postV1Intents(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.Intent

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	intent, err := newDomainIntent(request)
	if err != nil {
		return fmt.Errorf("newDomainIntent: %w", err)
	}

	if err := s.coordinator.Dispatch(ctx, intent); err != nil {
		return fmt.Errorf("coordinator.Dispatch: %w", err)
	}

	reply.JSON(ctx, w, http.StatusAccepted, newRESTState(s.coordinator.State()))

	return nil
}

func (s StatusServer) getV1Cache(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, newRESTCacheStats(s.cache.Stats()))

	return nil
}

func (s StatusServer) getV1Stores(w http.ResponseWriter, r *http.Request) error {
	active := s.coordinator.State().Filter

	stores := make([]rest.Store, 0, len(entity.Stores()))
	for _, st := range entity.Stores() {
		stores = append(stores, rest.Store{ID: st.ID, Name: st.Name, Active: active.HasStore(st.ID)})
	}

	reply.JSON(r.Context(), w, http.StatusOK, stores)

	return nil
}
