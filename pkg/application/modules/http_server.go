// Package modules runs the long-lived parts of the application inside an
// errgroup.
package modules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 5 * time.Second
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// HTTPServer serves Handler on ListenAddress until ctx is done, then shuts
// down gracefully. Requests inherit ctx values such as the logger.
type HTTPServer struct {
	Name            string
	ListenAddress   string
	Handler         http.Handler
	ShutdownTimeout time.Duration
}

func (h HTTPServer) Run(ctx context.Context, g *errgroup.Group) {
	httpServer := &http.Server{
		//nolint:exhaustruct
		Addr:              h.ListenAddress,
		Handler:           h.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	log := logger(ctx).With(slog.String("server", h.Name), slog.String("address", h.ListenAddress))

	g.Go(func() error {
		go func() {
			<-ctx.Done()

			timeout := h.ShutdownTimeout
			if timeout <= 0 {
				timeout = defaultShutdownTimeout
			}

			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout) //nolint:govet
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				log.Error("httpServer.Shutdown", logx.Error(err))
			}
		}()

		log.Info("http server started")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s ListenAndServe: %w", h.Name, err)
		}

		log.Info("http server stopped")

		return nil
	})
}
