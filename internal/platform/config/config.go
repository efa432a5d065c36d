// Package config loads the service configuration with koanf: built-in
// defaults, then configs/base.yaml, then configs/<profile>.yaml, then APP_
// environment variables, each layer overriding the one before.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults referenced outside defaults(), mostly by tests and the CLI.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10
	DefaultTransportIdleConnTimeout     = 90 * time.Second

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultSyncMaxRemoteItems bounds how many remote items one cycle merges.
	DefaultSyncMaxRemoteItems = 3

	// DefaultSyncCategory labels remote quotes that carry no author.
	DefaultSyncCategory = "Server"
)

// Config is everything the service and quotectl read at startup. Keys are
// the koanf tags; APP_SYNC_CYCLE_TIMEOUT sets sync.cycle_timeout.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"`
	Services  ServicesConfig  `koanf:"services"`
	Storage   StorageConfig   `koanf:"storage"`
	Sync      SyncConfig      `koanf:"sync"`
	Notify    NotifyConfig    `koanf:"notify"`
	Session   SessionConfig   `koanf:"session"`

	// Features holds boolean or integer feature flags keyed by flag name.
	Features map[string]any `koanf:"features"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig configures the inbound HTTP server. MaxRequestSize also caps
// quote file imports.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`

	// CORSOrigins lists browser origins allowed to call /api/v1. Empty
	// installs no CORS handling.
	CORSOrigins []string `koanf:"cors_origins" validate:"dive,http_url"`
}

type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig adds a lumberjack-rotated JSON copy of every record.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig configures OTLP export. Disabled, the global providers
// stay no-ops.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// ClientConfig tunes the outbound client used for the remote quote server.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout" validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	Transport      TransportConfig      `koanf:"transport"`
}

// RetryConfig is jittered exponential backoff. JitterFactor spreads each
// wait over plus or minus that fraction.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig opens after MaxFailures consecutive failures, stays
// open for Timeout, then lets HalfOpenLimit probes through.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// ServicesConfig lists remote dependencies. Quote is the server the
// reconciler fetches from and pushes to.
type ServicesConfig struct {
	Quote ServiceEndpointConfig `koanf:"quote"`
}

// ServiceEndpointConfig names a remote; Name appears in health output and
// transport errors.
type ServiceEndpointConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Name    string `koanf:"name"     validate:"required"`
}

// StorageConfig contains durable quote storage settings.
type StorageConfig struct {
	// Path is the SQLite database file. ":memory:" keeps everything in process.
	Path string `koanf:"path" validate:"required"`
}

// SyncConfig contains remote reconciliation settings.
type SyncConfig struct {
	Interval        time.Duration `koanf:"interval"         validate:"required,min=1s"`
	FetchPath       string        `koanf:"fetch_path"       validate:"required,startswith=/"`
	PushPath        string        `koanf:"push_path"        validate:"required,startswith=/"`
	MaxRemoteItems  int           `koanf:"max_remote_items" validate:"required,min=1,max=100"`
	DefaultCategory string        `koanf:"default_category" validate:"required"`
	CycleTimeout    time.Duration `koanf:"cycle_timeout"    validate:"required,min=100ms"`

	// TransportAttempts overrides client.retry.max_attempts for sync calls.
	// The next tick is the retry mechanism, so this defaults to a single attempt.
	TransportAttempts int `koanf:"transport_attempts" validate:"required,min=1,max=10"`
}

// NotifyConfig contains user notification settings.
type NotifyConfig struct {
	DismissAfter time.Duration `koanf:"dismiss_after" validate:"required,min=100ms"`
}

// SessionConfig contains transient session storage settings.
type SessionConfig struct {
	TTL time.Duration `koanf:"ttl" validate:"required,min=1s"`
}

// defaults is the bottom layer. Every key an operator may set through the
// environment needs an entry here or in a file so envKeyResolver finds it.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quote-generator",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,
		"server.cors_origins":     []string{},

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quote-generator",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"services.quote.base_url": "https://jsonplaceholder.typicode.com",
		"services.quote.name":     "quote-remote",

		"storage.path": "./data/quotes.db",

		"sync.interval":           "30s",
		"sync.fetch_path":         "/posts",
		"sync.push_path":          "/posts",
		"sync.max_remote_items":   DefaultSyncMaxRemoteItems,
		"sync.default_category":   DefaultSyncCategory,
		"sync.cycle_timeout":      "10s",
		"sync.transport_attempts": 1,

		"notify.dismiss_after": "3s",

		"session.ttl": "30m",

		"features.sync-push-enabled":     true,
		"features.sync-max-remote-items": 0,
	}
}

// ConfigDir holds base.yaml and the per-profile files.
const ConfigDir = "configs"

// EnvPrefix marks environment variables that override configuration.
const EnvPrefix = "APP_"

// Load resolves configuration from, lowest precedence first:
//  1. defaults()
//  2. configs/base.yaml
//  3. configs/<profile>.yaml
//  4. APP_ environment variables
//
// Missing files are skipped. The result is not validated; call Validate.
func Load(profile string) (*Config, error) {
	return LoadFrom(ConfigDir, profile)
}

// LoadFrom is Load with an explicit configuration directory.
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyResolver(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyResolver maps APP_SYNC_CYCLE_TIMEOUT to sync.cycle_timeout. An
// underscore in an env name is ambiguous between nesting and a key's own
// underscore, so names are matched against the keys already loaded. Unknown
// names fall back to treating every underscore as nesting.
func envKeyResolver(known []string) func(string) string {
	byFlat := make(map[string]string, len(known))
	for _, key := range known {
		byFlat[flattenKey(key)] = key
	}

	return func(name string) string {
		flat := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if key, ok := byFlat[flat]; ok {
			return key
		}
		return strings.ReplaceAll(flat, "_", ".")
	}
}

func flattenKey(key string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(key)
}

// loadFileIfExists loads a YAML file, ignoring one that does not exist.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
