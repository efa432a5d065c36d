// Command service runs the quote generator HTTP API together with the
// background reconciler that keeps the local store in step with the remote
// quote server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-generator/internal/adapters/featureflags"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-generator/internal/adapters/notify"
	"github.com/jsamuelsen/quote-generator/internal/adapters/storage/session"
	"github.com/jsamuelsen/quote-generator/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-generator/internal/app"
	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/config"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
	"github.com/jsamuelsen/quote-generator/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)
	logger.Info("starting quote generator",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Path),
		slog.String("remote", cfg.Services.Quote.BaseURL),
	)

	otelProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer closeLogged(logger, "telemetry", func() error {
		return otelProvider.Shutdown(context.WithoutCancel(ctx))
	})

	syncMetrics, err := telemetry.NewSyncMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering sync metrics: %w", err)
	}

	repo, err := sqlite.Open(cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer closeLogged(logger, "storage", repo.Close)

	remote, err := acl.FromConfig(cfg, logger, syncMetrics)
	if err != nil {
		return err
	}

	// Storage failing makes the service unready; the remote only degrades it.
	health := ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{repo, remote} {
		if err := health.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	store := domain.NewQuoteStore()
	sessions := session.New(cfg.Session.TTL)
	banner := notify.NewBanner(cfg.Notify.DismissAfter, logger)

	reconciler := app.NewReconciler(app.ReconcilerConfig{
		Store:        store,
		Remote:       remote,
		Repository:   repo,
		Notifier:     banner,
		Flags:        featureflags.NewStatic(cfg.Features),
		Metrics:      syncMetrics,
		Interval:     cfg.Sync.Interval,
		CycleTimeout: cfg.Sync.CycleTimeout,
		Logger:       logger,
	})

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		Store:      store,
		Repository: repo,
		Sessions:   sessions,
		Sync:       reconciler,
		Logger:     logger,
	})
	quotes.Restore(ctx)

	server := http.New(&cfg.Server, logger)
	routes := http.NewRouterConfig(
		logger,
		&cfg.App,
		handlers.NewHealthHandler(health, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		handlers.NewQuoteHandler(quotes),
		handlers.NewSyncHandler(reconciler, banner),
	)
	routes.CORSOrigins = cfg.Server.CORSOrigins
	http.SetupRouter(server.Engine(), routes)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return reconciler.Run(gctx) })
	g.Go(func() error { return sessions.RunJanitor(gctx, cfg.Session.TTL/2) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}

// loadConfig reads configs/<APP_ENVIRONMENT>.yaml over the base file and
// refuses to start on an invalid result.
func loadConfig() (*config.Config, error) {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
}

func closeLogged(logger *slog.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error("closing "+what, slog.Any("error", err))
	}
}
