// Command ember runs the wellbeing companion daemon: the SQLite store, the
// per-user context synthesis engines, the notification worker, and the
// HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odvcencio/ember/pkg/api"
	"github.com/odvcencio/ember/pkg/bus"
	"github.com/odvcencio/ember/pkg/config"
	"github.com/odvcencio/ember/pkg/logging"
	"github.com/odvcencio/ember/pkg/metrics"
	"github.com/odvcencio/ember/pkg/push"
	"github.com/odvcencio/ember/pkg/storage"
	"github.com/odvcencio/ember/pkg/synthesis"
	"github.com/odvcencio/ember/pkg/views"
)

// Version information - set via ldflags during build
var (
	version   = "1.0.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config.yaml (overrides default locations)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ember %s (%s, built %s)\n", version, commit, buildDate)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	for _, warning := range cfg.ValidationWarnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Data.Dir, 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	store, err := storage.New(cfg.Data.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	logger, err := logging.NewLogger(cfg.LogDir(), "daemon")
	if err != nil {
		return fmt.Errorf("opening logs: %w", err)
	}
	defer logger.Close()
	logger.SetMinLevel(logging.Level(strings.ToLower(cfg.Logging.MinLevel)))

	messageBus, err := openBus(cfg)
	if err != nil {
		return fmt.Errorf("connecting bus: %w", err)
	}
	defer messageBus.Close()

	registry := api.NewRegistry(store, logger)
	registry.SetStaleness(cfg.Synthesis.Staleness())
	registry.SetSourceTimeout(cfg.Synthesis.SourceTimeout())
	registry.OnPublish(func(userID string, _ *synthesis.Context, producedAt time.Time, version uint64) {
		err := bus.PublishContextUpdated(ctx, messageBus, bus.ContextUpdated{
			UserID:     userID,
			Version:    version,
			ProducedAt: producedAt,
		})
		if err != nil {
			logger.Warn(logging.CategoryBus, "publish_failed", err.Error(), map[string]any{"user_id": userID})
		}
	})

	apiCfg := api.Config{BindAddress: cfg.API.Bind}
	if cfg.API.EnableMetrics {
		promRegistry := prometheus.NewRegistry()
		registry.SetMetrics(metrics.New(promRegistry))
		apiCfg.MetricsHandler = promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})
	}

	composer := views.NewComposer(store)

	var worker *push.Worker
	if cfg.Push.Enabled {
		worker, err = push.NewWorker(store, messageBus.Queue(cfg.Push.Queue),
			api.NewPolicyAdapter(registry, composer), &push.Config{Subject: cfg.Push.Subject})
		if err != nil {
			return fmt.Errorf("starting push worker: %w", err)
		}
		if err := worker.Start(ctx); err != nil {
			return fmt.Errorf("starting push worker: %w", err)
		}
		defer worker.Stop()
	}

	server := api.NewServer(apiCfg, store, registry, composer, worker)
	logger.Info(logging.CategoryAPI, "daemon_started", "ember daemon up", map[string]any{
		"version": version,
		"bind":    cfg.API.Bind,
		"bus":     cfg.Bus.Mode,
	})
	return server.Start(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func openBus(cfg *config.Config) (bus.MessageBus, error) {
	if cfg.Bus.Mode == "nats" {
		return bus.NewNATSBus(bus.Config{URL: cfg.Bus.URL, Name: cfg.Bus.Name})
	}
	return bus.NewMemoryBus(), nil
}
