package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"dealve/internal/config"
	"dealve/internal/domain/service/details"
	"dealve/internal/domain/service/query"
	"dealve/internal/infrastructure/cache"
	"dealve/internal/infrastructure/itad"
	"dealve/internal/server"
	"dealve/internal/transport/bot"
	"dealve/internal/transport/console"
	"dealve/internal/worker"
	"dealve/pkg/application/connectors"
	"dealve/pkg/application/modules"
	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	AppName = "dealve"

	shutdownTimeout = 5 * time.Second
)

// Version is set at build time.
var Version = "dev" //nolint:gochecknoglobals

// Terminal is where the console front end reads and writes.
type Terminal struct {
	In      io.Reader
	Out     io.Writer
	Colored bool
}

// Run wires every component and blocks until the user quits or ctx ends.
func Run(ctx context.Context, cfg config.Config, term Terminal) error {
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldAppName, AppName),
		slog.String(logx.FieldAppVersion, Version),
	))

	// 1. Upstream client
	budget := itad.NewBudget(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	client := itad.NewClient(cfg.ITAD, budget, cfg.Log.FieldMaxLen)

	// 2. Result cache, snapshotted to Redis when configured
	results := cache.New(cfg.Cache.Freshness, cfg.Cache.Capacity)
	keeper := worker.NewCacheKeeper(results, cfg.Cache.Freshness, cfg.Cache.SweepInterval)

	if cfg.Redis.Enabled() {
		rc := &connectors.Redis{
			Username:       cfg.Redis.Username,
			Password:       cfg.Redis.Password,
			Address:        cfg.Redis.Address,
			DatabaseNumber: cfg.Redis.DB,
			PoolSize:       cfg.Redis.PoolSize,
		}

		redisClient, err := rc.Client(ctx)
		if err != nil {
			logger(ctx).Warn("cache snapshots disabled", logx.Error(err))
		} else {
			defer rc.Close(ctx)

			keeper.WithSnapshots(cache.NewSnapshotStore(redisClient, cfg.Redis.SnapshotKey, cfg.Cache.Freshness))
		}
	}

	// 3. Services
	initial, err := InitialFilter(cfg)
	if err != nil {
		return fmt.Errorf("InitialFilter: %w", err)
	}

	coordinator := query.NewCoordinator(client, results, initial,
		query.WithDebounce(cfg.Query.Debounce),
		query.WithAllowWait(cfg.Query.AllowWait()),
	)

	games := details.NewService(client, cfg.ITAD.Country, cfg.Details.CacheTTL).
		WithDelay(cfg.Details.InfoDelay)

	// 4. Modules
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return coordinator.Run(ctx)
	})

	if err := keeper.Start(ctx); err != nil {
		return fmt.Errorf("keeper.Start: %w", err)
	}
	defer keeper.Stop()

	if cfg.Bot.Enabled() {
		telegramBot, err := bot.New(cfg.Bot, coordinator, games)
		if err != nil {
			return fmt.Errorf("bot.New: %w", err)
		}

		g.Go(func() error {
			return telegramBot.Run(ctx)
		})
	}

	if cfg.Servers.StatusAddress != "" {
		srv := server.NewServer(
			server.NewStatusServer(coordinator, results),
			server.NewGameServer(games),
		)

		modules.HTTPServer{
			Name:            "status",
			ListenAddress:   cfg.Servers.StatusAddress,
			Handler:         srv.Handler(logx.NewSensitiveDataMasker(), cfg.Log.FieldMaxLen),
			ShutdownTimeout: shutdownTimeout,
		}.Run(ctx, g)
	}

	if cfg.Servers.MetricsAddress != "" {
		modules.MetricServer{ListenAddress: cfg.Servers.MetricsAddress}.Run(ctx, g)
	}

	if cfg.Servers.ProbeAddress != "" {
		modules.ProbeServer{
			Name:          AppName,
			Version:       Version,
			ListenAddress: cfg.Servers.ProbeAddress,
			Ready:         keeper.IsRunning,
		}.Run(ctx, g)
	}

	// 5. Console; leaving it stops everything else
	g.Go(func() error {
		defer cancel()

		err := console.New(coordinator, games, term.In, term.Out, term.Colored).Run(ctx)
		if errors.Is(err, console.ErrQuit) {
			return nil
		}

		return err
	})

	logger(ctx).Info("application started")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("application: %w", err)
	}

	logger(ctx).Info("application stopping")

	return nil
}
