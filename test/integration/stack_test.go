//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-generator/internal/adapters/featureflags"
	httpadapter "github.com/jsamuelsen/quote-generator/internal/adapters/http"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-generator/internal/adapters/notify"
	"github.com/jsamuelsen/quote-generator/internal/adapters/storage/session"
	"github.com/jsamuelsen/quote-generator/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-generator/internal/app"
	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/config"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

// fakeRemote is a jsonplaceholder-style /posts collection.
type fakeRemote struct {
	mu     sync.Mutex
	titles []string
	down   bool
	pushes [][]byte
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		f.pushes = append(f.pushes, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	default:
		items := make([]map[string]any, len(f.titles))
		for i, t := range f.titles {
			items[i] = map[string]any{"id": i + 1, "title": t}
		}
		_ = json.NewEncoder(w).Encode(items)
	}
}

func (f *fakeRemote) serve(titles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.titles = titles
	f.down = false
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.down = down
}

func (f *fakeRemote) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.pushes)
}

// stack is the whole service wired in process against a fake remote.
type stack struct {
	api        *httptest.Server
	remote     *fakeRemote
	remoteAPI  *httptest.Server
	repo       *sqlite.Store
	store      *domain.QuoteStore
	reconciler *app.Reconciler
	service    *app.QuoteService
	banner     *notify.Banner
}

// stackConfig returns the configuration the stack runs with.
func stackConfig(remoteURL, dbPath string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "quote-generator-it", Version: "test", Environment: "test"},
		Client: config.ClientConfig{
			Timeout: 2 * time.Second,
			Retry: config.RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 10 * time.Millisecond,
				MaxInterval:     50 * time.Millisecond,
				Multiplier:      2,
			},
			CircuitBreaker: config.CircuitBreakerConfig{
				MaxFailures:   1,
				Timeout:       time.Minute,
				HalfOpenLimit: 1,
			},
		},
		Services: config.ServicesConfig{
			Quote: config.ServiceEndpointConfig{BaseURL: remoteURL, Name: "quote-remote"},
		},
		Storage: config.StorageConfig{Path: dbPath},
		Sync: config.SyncConfig{
			Interval:          time.Hour,
			FetchPath:         "/posts",
			PushPath:          "/posts",
			MaxRemoteItems:    config.DefaultSyncMaxRemoteItems,
			DefaultCategory:   config.DefaultSyncCategory,
			CycleTimeout:      5 * time.Second,
			TransportAttempts: 1,
		},
		Notify:   config.NotifyConfig{DismissAfter: time.Minute},
		Session:  config.SessionConfig{TTL: time.Hour},
		Features: map[string]any{ports.FlagSyncPush: true},
	}
}

// newStack builds the service on a database under dir. Reusing dir
// simulates a restart.
func newStack(dir string, remote *fakeRemote) (*stack, error) {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	remoteAPI := httptest.NewServer(remote)

	cfg := stackConfig(remoteAPI.URL, filepath.Join(dir, "quotes.db"))

	repo, err := sqlite.Open(cfg.Storage.Path, logger)
	if err != nil {
		remoteAPI.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	source, err := acl.FromConfig(cfg, logger, nil)
	if err != nil {
		remoteAPI.Close()
		_ = repo.Close()
		return nil, err
	}

	registry := ports.NewHealthRegistry()
	_ = registry.Register(repo)
	_ = registry.Register(source)

	store := domain.NewQuoteStore()
	banner := notify.NewBanner(cfg.Notify.DismissAfter, logger)

	reconciler := app.NewReconciler(app.ReconcilerConfig{
		Store:        store,
		Remote:       source,
		Repository:   repo,
		Notifier:     banner,
		Flags:        featureflags.NewStatic(cfg.Features),
		Interval:     cfg.Sync.Interval,
		CycleTimeout: cfg.Sync.CycleTimeout,
		Logger:       logger,
	})

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:      store,
		Repository: repo,
		Sessions:   session.New(cfg.Session.TTL),
		Sync:       reconciler,
		Logger:     logger,
	})
	service.Restore(context.Background())

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.NewRouterConfig(
		logger,
		&cfg.App,
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")),
		handlers.NewQuoteHandler(service),
		handlers.NewSyncHandler(reconciler, banner),
	))

	return &stack{
		api:        httptest.NewServer(engine),
		remote:     remote,
		remoteAPI:  remoteAPI,
		repo:       repo,
		store:      store,
		reconciler: reconciler,
		service:    service,
		banner:     banner,
	}, nil
}

func (s *stack) Close() {
	s.api.Close()
	s.remoteAPI.Close()
	_ = s.repo.Close()
}
