// Package sqlite is the durable side of the persistence adapter: a flat
// key-value table in a pure-Go SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jsamuelsen/quote-generator/internal/adapters/quotefile"
	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

// Storage keys.
const (
	KeyQuotes           = "quotes"
	KeySelectedCategory = "selectedCategory"
)

// MemoryPath opens a private in-process database.
const MemoryPath = ":memory:"

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// Store implements ports.QuoteRepository on SQLite.
// It holds no business rules: values are serialized and returned as-is.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating when needed) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	// One connection: an in-memory database is per-connection, and the
	// store only ever has a single writer.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{
		db:     db,
		path:   path,
		logger: logger.With(slog.String("component", "sqlite.Store")),
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteQuotes persists the full list under KeyQuotes.
func (s *Store) WriteQuotes(ctx context.Context, quotes []domain.Quote) error {
	data, err := quotefile.Marshal(quotes)
	if err != nil {
		return domain.NewPersistenceError("write", KeyQuotes, err)
	}

	if err := s.put(ctx, KeyQuotes, string(data)); err != nil {
		return err
	}

	logging.FromContext(ctx).Log(ctx, logging.LevelTrace, "persisted quotes",
		slog.Int("count", len(quotes)))

	return nil
}

// ReadQuotes returns the persisted list. ok is false when the key is absent.
// A value that is not a JSON array of quotes is a PersistenceError.
func (s *Store) ReadQuotes(ctx context.Context) ([]domain.Quote, bool, error) {
	raw, ok, err := s.get(ctx, KeyQuotes)
	if err != nil || !ok {
		return nil, false, err
	}

	quotes, err := quotefile.Unmarshal([]byte(raw))
	if err != nil {
		return nil, false, domain.NewPersistenceError("read", KeyQuotes, err)
	}

	return quotes, true, nil
}

// WriteSelectedCategory persists the active filter as a plain string.
func (s *Store) WriteSelectedCategory(ctx context.Context, category string) error {
	return s.put(ctx, KeySelectedCategory, category)
}

// ReadSelectedCategory returns the persisted filter. ok is false when absent.
func (s *Store) ReadSelectedCategory(ctx context.Context) (string, bool, error) {
	return s.get(ctx, KeySelectedCategory)
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "storage"
}

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value)
	if err != nil {
		return domain.NewPersistenceError("write", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.NewPersistenceError("read", key, err)
	}
	return value, true, nil
}
