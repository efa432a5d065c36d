package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-generator/internal/adapters/featureflags"
	"github.com/jsamuelsen/quote-generator/internal/adapters/quotefile"
	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/config"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
	"github.com/jsamuelsen/quote-generator/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

// RemoteSourceConfig contains configuration for the remote quote source.
type RemoteSourceConfig struct {
	// Client is the HTTP client; its BaseURL points at the remote service.
	Client *clients.Client

	// ServiceName identifies the remote in errors and health checks.
	ServiceName string

	// FetchPath is the collection read on every sync cycle.
	FetchPath string

	// PushPath receives the merged collection after a successful merge.
	PushPath string

	// MaxItems bounds how many mapped remote quotes a fetch returns.
	MaxItems int

	// DefaultCategory labels remote items that carry no author.
	DefaultCategory string

	// Flags may override MaxItems per fetch through FlagSyncMaxRemoteItems.
	Flags ports.FeatureFlags

	// Logger is the structured logger.
	Logger *slog.Logger
}

// RemoteSource implements ports.RemoteQuoteSource against a JSON collection
// endpoint such as jsonplaceholder's /posts.
type RemoteSource struct {
	endpoint

	fetchPath       string
	pushPath        string
	maxItems        int
	defaultCategory string
	flags           ports.FeatureFlags
	logger          *slog.Logger
}

// NewRemoteSource creates the remote quote adapter.
// Panics if Client is nil. Defaults the logger, service name, category and bound.
func NewRemoteSource(cfg RemoteSourceConfig) *RemoteSource {
	if cfg.Client == nil {
		panic("RemoteSource: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.ServiceName
	if name == "" {
		name = "quote-remote"
	}

	category := strings.TrimSpace(cfg.DefaultCategory)
	if category == "" {
		category = domain.DefaultCategoryLabel
	}

	maxItems := cfg.MaxItems
	if maxItems < 1 {
		maxItems = 3
	}

	return &RemoteSource{
		endpoint:        endpoint{client: cfg.Client, service: name},
		fetchPath:       cfg.FetchPath,
		pushPath:        cfg.PushPath,
		maxItems:        maxItems,
		defaultCategory: category,
		flags:           cfg.Flags,
		logger:          logger.With(slog.String("component", "acl.RemoteSource")),
	}
}

// remoteItem is the external DTO for one element of the remote collection.
// This is an internal type - never exposed outside the ACL.
// Only the mapped fields are typed; the id is kept raw for logging.
type remoteItem struct {
	ID     json.RawMessage `json:"id"`
	Title  string          `json:"title"`
	Author string          `json:"author"`
}

// FetchQuotes reads the remote collection and maps it to domain quotes.
// Items with a blank title are dropped; at most MaxItems quotes are returned.
// Implements ports.RemoteQuoteSource.
func (s *RemoteSource) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	const operation = "fetch quotes"

	s.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", s.fetchPath))

	body, err := s.get(ctx, s.fetchPath, operation)
	if err != nil {
		return nil, err
	}

	items, err := decodeJSON[[]json.RawMessage](body)
	if err != nil {
		return nil, domain.NewTransportError(s.ServiceName(), operation, fmt.Sprintf("malformed response: %v", err))
	}

	quotes := translateBounded(items, s.translate, s.limit(ctx))

	s.logger.DebugContext(ctx, "fetched remote quotes",
		slog.Int("received", len(items)),
		slog.Int("accepted", len(quotes)),
	)

	return quotes, nil
}

// PushQuotes sends the full collection as {"quotes": [...]}. Any 2xx is success.
// Implements ports.RemoteQuoteSource.
func (s *RemoteSource) PushQuotes(ctx context.Context, quotes []domain.Quote) error {
	const operation = "push quotes"

	payload, err := quotefile.MarshalEnvelope(quotes)
	if err != nil {
		return domain.NewTransportError(s.ServiceName(), operation, err.Error())
	}

	body, err := s.post(ctx, s.pushPath, bytes.NewReader(payload), operation)
	if err != nil {
		return err
	}
	_ = body.Close()

	s.logger.DebugContext(ctx, "pushed quotes", slog.Int("count", len(quotes)))

	return nil
}

// limit is the configured bound unless a positive flag value replaces it.
func (s *RemoteSource) limit(ctx context.Context) int {
	if s.flags == nil {
		return s.maxItems
	}
	if n := s.flags.GetInt(ctx, ports.FlagSyncMaxRemoteItems, s.maxItems); n > 0 {
		return n
	}
	return s.maxItems
}

// translate converts one remote element to a domain quote. Elements that
// are not objects or carry non-string title or author are dropped alone.
// This is the only place that knows the remote field names.
func (s *RemoteSource) translate(raw *json.RawMessage) (domain.Quote, bool) {
	var item remoteItem
	if err := json.Unmarshal(*raw, &item); err != nil {
		s.logger.Log(context.Background(), logging.LevelTrace, "dropping malformed remote item",
			slog.String("error", err.Error()))
		return domain.Quote{}, false
	}

	text := strings.TrimSpace(item.Title)
	if text == "" {
		s.logger.Log(context.Background(), logging.LevelTrace, "dropping remote item without title",
			slog.String("remote_id", string(item.ID)))
		return domain.Quote{}, false
	}

	category := strings.TrimSpace(item.Author)
	if category == "" {
		category = s.defaultCategory
	}

	return domain.Quote{Text: text, Category: category}, true
}

// Name returns the health check name for this adapter.
// Implements ports.HealthChecker.
func (s *RemoteSource) Name() string {
	return s.ServiceName()
}

// Check reports the remote as unhealthy while the circuit breaker is open.
// It does not call the remote: readiness probes must not spend its rate limit.
// Implements ports.HealthChecker.
func (s *RemoteSource) Check(_ context.Context) error {
	snap := s.client.Circuit()
	if snap.State != clients.StateOpen {
		return nil
	}

	return domain.NewTransportError(s.ServiceName(), "health check",
		"circuit breaker open until "+snap.RetryAt.UTC().Format(time.RFC3339))
}

// Optional marks the remote as non-critical: quotes are still served from
// the local store while it is unreachable.
// Implements ports.OptionalChecker.
func (s *RemoteSource) Optional() bool {
	return true
}

// FromConfig builds the remote source the reconciler uses. Sync calls use
// sync.transport_attempts in place of the client-wide retry count: the next
// tick is the retry. Breaker transitions are exported through metrics,
// which may be nil.
func FromConfig(cfg *config.Config, logger *slog.Logger, metrics *telemetry.SyncMetrics) (*RemoteSource, error) {
	retry := cfg.Client.Retry
	retry.MaxAttempts = cfg.Sync.TransportAttempts

	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		OnCircuitChange: func(t clients.Transition) {
			metrics.RemoteCircuit(t.To == clients.StateOpen)
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating remote client: %w", err)
	}

	return NewRemoteSource(RemoteSourceConfig{
		Client:          client,
		ServiceName:     cfg.Services.Quote.Name,
		FetchPath:       cfg.Sync.FetchPath,
		PushPath:        cfg.Sync.PushPath,
		MaxItems:        cfg.Sync.MaxRemoteItems,
		DefaultCategory: cfg.Sync.DefaultCategory,
		Flags:           featureflags.NewStatic(cfg.Features),
		Logger:          logger,
	}), nil
}
