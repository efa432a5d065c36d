package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpadapter "github.com/jsamuelsen/quote-generator/internal/adapters/http"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-generator/internal/adapters/quotefile"
	"github.com/jsamuelsen/quote-generator/internal/adapters/storage/session"
	"github.com/jsamuelsen/quote-generator/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quote-generator/internal/app"
	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// manyQuotes builds n quotes spread over ten categories.
func manyQuotes(n int) []domain.Quote {
	quotes := make([]domain.Quote, n)
	for i := range quotes {
		quotes[i] = domain.Quote{
			Text:     fmt.Sprintf("quote number %d", i),
			Category: fmt.Sprintf("category-%d", i%10),
		}
	}
	return quotes
}

// newRouter wires the full middleware chain over a store of n quotes.
func newRouter(b *testing.B, n int) *gin.Engine {
	b.Helper()

	logger := discardLogger()

	repo, err := sqlite.Open(sqlite.MemoryPath, logger)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = repo.Close() })

	store := domain.NewQuoteStore()
	store.Load(manyQuotes(n))

	registry := ports.NewHealthRegistry()
	_ = registry.Register(repo)
	_ = registry.Register(optionalChecker{name: "quote-remote", err: errors.New("circuit breaker is open")})

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:      store,
		Repository: repo,
		Sessions:   session.New(time.Hour),
		Logger:     logger,
	})

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        logger,
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z")),
		QuoteHandler:  handlers.NewQuoteHandler(service),
		Timeout:       httpadapter.DefaultRequestTimeout,
	})

	return engine
}

// BenchmarkRandomQuote measures a random pick through the full middleware chain.
func BenchmarkRandomQuote(b *testing.B) {
	router := newRouter(b, 1000)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/random?category=category-3", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkListQuotes measures one page of a category listing.
func BenchmarkListQuotes(b *testing.B) {
	router := newRouter(b, 1000)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes?category=category-1&limit=50", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkReadiness measures readiness with a critical and a degraded check.
func BenchmarkReadiness(b *testing.B) {
	router := newRouter(b, 3)
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkMergeFromRemote measures the server-wins merge against a large local list.
func BenchmarkMergeFromRemote(b *testing.B) {
	local := manyQuotes(5000)
	remote := manyQuotes(3)

	b.ReportAllocs()

	for b.Loop() {
		store := domain.NewQuoteStore()
		store.Load(local)
		store.MergeFromRemote(remote)
	}
}

// BenchmarkExport measures pretty-printing the whole store.
func BenchmarkExport(b *testing.B) {
	quotes := manyQuotes(5000)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := quotefile.MarshalPretty(quotes); err != nil {
			b.Fatal(err)
		}
	}
}

// optionalChecker is a non-critical health checker for benchmarking.
type optionalChecker struct {
	name string
	err  error
}

func (c optionalChecker) Name() string                  { return c.name }
func (c optionalChecker) Check(_ context.Context) error { return c.err }
func (c optionalChecker) Optional() bool                { return true }
