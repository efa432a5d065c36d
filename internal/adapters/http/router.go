package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-generator/internal/platform/config"
	"github.com/jsamuelsen/quote-generator/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds every /api/v1 request except a manual sync.
const DefaultRequestTimeout = 30 * time.Second

var (
	// probePaths are polled by orchestrators and kept out of the request log.
	probePaths = []string{"/-/live", "/-/ready", "/-/metrics"}

	// A manual sync is bounded by sync.cycle_timeout inside the reconciler.
	deadlineExempt = []string{"/api/v1/sync"}
)

// RouterConfig holds what SetupRouter mounts. Nil handlers leave their
// routes unregistered.
type RouterConfig struct {
	Logger    *slog.Logger
	AppConfig *config.AppConfig

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
	SyncHandler   *handlers.SyncHandler

	// Timeout is the per-request deadline on /api/v1. Zero disables it.
	Timeout time.Duration

	// CORSOrigins enables CORS for these origins. Empty disables it.
	CORSOrigins []string
}

// NewRouterConfig wires the handlers with DefaultRequestTimeout.
func NewRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	health *handlers.HealthHandler,
	quotes *handlers.QuoteHandler,
	sync *handlers.SyncHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: health,
		QuoteHandler:  quotes,
		SyncHandler:   sync,
		Timeout:       DefaultRequestTimeout,
	}
}

// SetupRouter installs the middleware chain and mounts the routes.
//
// Recovery runs first so it also attaches the logger every later stage
// reads from the context. The request, correlation and session IDs are
// resolved before tracing and logging so both can carry them. CORS, when
// configured, sits right after Recovery so preflights stop there.
//
//	/-/      live, ready, build, metrics
//	/api/v1  quotes, categories, session, sync, notifications
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	service := "quote-generator"
	if cfg.AppConfig != nil && cfg.AppConfig.Name != "" {
		service = cfg.AppConfig.Name
	}

	engine.Use(middleware.Recovery(cfg.Logger))
	if len(cfg.CORSOrigins) > 0 {
		engine.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}

	engine.Use(
		middleware.RequestID(),
		middleware.CorrelationID(),
		middleware.Session(),
		telemetry.TracingMiddleware(service),
		telemetry.Middleware(),
		middleware.Logging(probePaths...),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine.Group("/-"))
	}

	api := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		api.Use(middleware.Deadline(cfg.Timeout, deadlineExempt...))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(api)
	}
	if cfg.SyncHandler != nil {
		cfg.SyncHandler.RegisterSyncRoutes(api)
	}
}

// corsConfig lets a browser client on origins send and read the ID headers
// and the export download name.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			middleware.HeaderRequestID, middleware.HeaderCorrelationID, middleware.HeaderSessionID,
		},
		ExposeHeaders: []string{
			middleware.HeaderRequestID, middleware.HeaderSessionID, "Content-Disposition",
		},
		MaxAge: 12 * time.Hour,
	}
}
