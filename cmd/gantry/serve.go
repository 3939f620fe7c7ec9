package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nebulus-dev/gantry/internal/config"
	"github.com/nebulus-dev/gantry/pkg/search"
	"github.com/nebulus-dev/gantry/pkg/server"
	"github.com/nebulus-dev/gantry/pkg/state"
	"github.com/nebulus-dev/gantry/pkg/vault"
)

func serveCmd() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Gantry server",
		Long: `Start the Gantry backend server.

Serves the search, state, and document-vault endpoints, the
WebSocket state sync channel, and health/metrics surfaces.

Examples:
  gantry serve
  gantry serve --addr=0.0.0.0:8090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, dir)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from gantry.json)")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory containing gantry.json")

	return cmd
}

func runServe(addr, dir string) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	store := state.NewStore(state.DefaultAppState().State())
	index := search.NewIndex()

	var vaultStore vault.Store
	if cfg.Vault.Backend == "disk" {
		vaultStore, err = vault.NewDiskStore(cfg.Vault.Dir, cfg.Vault.MaxSizeBytes)
		if err != nil {
			return err
		}
	}
	// The s3 backend needs AWS credentials resolved by the caller; see
	// vault.NewS3Store for wiring it explicitly.

	srv := server.New(&server.Config{
		Addr:            cfg.Addr,
		MinQueryLength:  cfg.Search.MinQueryLength,
		VaultMaxSize:    cfg.Vault.MaxSizeBytes,
		ShutdownTimeout: 10 * time.Second,
		Logger:          logger,
	}, store, index, vaultStore)

	info("serving on http://%s", cfg.Addr)
	return srv.Start(context.Background())
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
