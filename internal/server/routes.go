package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dealve/pkg/httpx/reply"
	"dealve/pkg/logx"
	"dealve/pkg/middlewarex"
)

// Handler builds the router with the request logging chain.
func (s Server) Handler(masker logx.SensitiveDataMaskerInterface, logFieldMaxLen int) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewarex.TraceID,
		middlewarex.Logging(masker, logFieldMaxLen),
		middlewarex.Recovery,
	)

	s.RegisterRoutes(r)

	return r
}

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", handler(s.getV1State))
		r.Post("/intents", handler(s.postV1Intents))
		r.Get("/cache", handler(s.getV1Cache))
		r.Get("/stores", handler(s.getV1Stores))

		r.Get("/games/{id}", handler(s.getV1Game))
		r.Get("/games/{id}/history", handler(s.getV1GameHistory))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
