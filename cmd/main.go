package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"dealve/internal/application"
	"dealve/internal/config"
	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "dealve:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logFile := os.Stderr

	if cfg.Log.File != "" {
		logFile, err = os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("os.OpenFile: %w", err)
		}
		defer logFile.Close()
	}

	log := slog.New(logx.NewHandler(logFile, logx.ParseLevel(cfg.Log.Level), !isTerminal(logFile)))
	slog.SetDefault(log)

	ctx = contextx.WithLogger(ctx, log)

	err = application.Run(ctx, cfg, application.Terminal{
		In:      os.Stdin,
		Out:     os.Stdout,
		Colored: isTerminal(os.Stdout),
	})
	if err != nil {
		log.Error("application failed", logx.Error(err))
		return err
	}

	log.Info("application stopped")

	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
