package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"watchtower-hq/janus/pkg/config"
	"watchtower-hq/janus/pkg/events"
	"watchtower-hq/janus/pkg/server"
	"watchtower-hq/janus/pkg/store"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watchConfig   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Janus front door",
	Long: `Start the Janus front door with the specified configuration.

The server opens the IdP record store, starts the health gate and
admission sampler, subscribes the observation synchronizer, and only then
binds the listening endpoint.

Examples:
  # Start with default config
  janus run

  # Start with custom config
  janus run --config /etc/janus/config.yaml

  # Override listen address
  janus run --listen 0.0.0.0:8080`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runServer())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watchConfig, "watch-config", true, "reload runtime-tunable settings on config file changes")
}

// runServer returns the process exit code: 0 on graceful stop, 1 for
// startup-fatal failures (unloadable config, unopenable store).
func runServer() int {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	setupLogging(cfg.Telemetry.Logging)

	// The store must open before anything else is wired; a front door
	// with no store behind it must never bind the listener.
	st, err := store.OpenSQLite(cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		return 1
	}

	bus := events.NewBus()

	srv := server.New(cfg, st, bus)

	var watcher *config.Watcher
	if runFlags.watchConfig {
		watcher, err = config.NewWatcher(cfgFile, srv.ApplyRuntime)
		if err != nil {
			slog.Warn("config watcher unavailable, runtime reload disabled", "error", err)
		} else if err := watcher.Start(); err != nil {
			slog.Warn("config watcher failed to start, runtime reload disabled", "error", err)
			watcher = nil
		}
	}
	if watcher != nil {
		// The watcher drains before anything else so no reload fires
		// into components that are already stopping.
		srv.RegisterDrainHook("config watcher", func(context.Context) error {
			watcher.Stop()
			return nil
		})
	}

	if err := srv.Start(context.Background()); err != nil {
		slog.Error("server exited with error", "error", err)
		return 1
	}

	return 0
}

func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
