// Command keycheck validates an IsThereAnyDeal API key and, with -save,
// stores it in the user config file.
//
//	keycheck [-save] [KEY]
//
// The key defaults to ITAD_API_KEY or the one already saved. The exit
// status is non-zero when the key is rejected or cannot be checked.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dealve/internal/config"
	"dealve/internal/domain"
	"dealve/internal/infrastructure/itad"
	"dealve/pkg/contextx"
	"dealve/pkg/errcodes"
	"dealve/pkg/logx"
)

func main() {
	save := flag.Bool("save", false, "write the key to the user config file when it is valid")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, strings.TrimSpace(flag.Arg(0)), *save); err != nil {
		fmt.Fprintln(os.Stderr, "keycheck:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, key string, save bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log := slog.New(logx.NewHandler(os.Stderr, logx.ParseLevel(cfg.Log.Level), false))
	ctx = contextx.WithLogger(ctx, log)

	if key == "" {
		key = cfg.ITAD.APIKey
	}

	if key == "" {
		return domain.NewError(errcodes.ConfigError, "no API key given")
	}

	if err := itad.ValidateKey(ctx, cfg.ITAD, key); err != nil {
		return err
	}

	fmt.Println("API key is valid")

	if !save {
		return nil
	}

	path := cfg.ITAD.ConfigFile
	if path == "" {
		path = config.DefaultUserFilePath()
	}

	if path == "" {
		return domain.NewError(errcodes.ConfigError, "no user config directory, set DEALVE_CONFIG_FILE")
	}

	file, err := config.ReadUserFile(path)
	if err != nil {
		return fmt.Errorf("config.ReadUserFile: %w", err)
	}

	file.APIKey = key

	if err := config.WriteUserFile(path, file); err != nil {
		return fmt.Errorf("config.WriteUserFile: %w", err)
	}

	fmt.Println("saved to", path)

	return nil
}
