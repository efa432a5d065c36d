// Package logging builds the service's slog logger: JSON, text or charm
// pretty output on stdout, an optional lumberjack file copy, secret
// redaction, and a per-request logger carried in the context.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace sits below debug and is used for request/response level detail
// such as remote payload mapping inside a sync cycle.
const LevelTrace = slog.Level(-8)

// Config is the logging subset of the service config. Service and Version
// are stamped on every record.
type Config struct {
	Level   string
	Format  string
	Service string
	Version string
	File    FileConfig
}

// FileConfig enables a rotated JSON copy of the log, whatever Format says.
type FileConfig struct {
	Enabled    bool
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New logs to stdout.
func New(cfg *Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter logs to w. The json and text handlers redact secrets; the
// pretty handler is meant for a developer terminal.
func NewWithWriter(cfg *Config, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: NewReplaceAttr(),
	}

	handler := terminalHandler(cfg.Format, level, opts, w)

	if cfg.File.Enabled && cfg.File.Path != "" {
		rolling := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		handler = fanout{handler, slog.NewJSONHandler(rolling, opts)}
	}

	return slog.New(handler).With(
		slog.String("service_name", cfg.Service),
		slog.String("service_version", cfg.Version),
	)
}

func terminalHandler(format string, level slog.Level, opts *slog.HandlerOptions, w io.Writer) slog.Handler {
	switch strings.ToLower(format) {
	case "pretty":
		return log.NewWithOptions(w, log.Options{
			Level:           slogToCharmLevel(level),
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		})
	case "text":
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

// parseLevel accepts trace plus anything slog.Level understands, such as
// "warn" or "debug+2". Unknown names fall back to info.
func parseLevel(name string) slog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "trace":
		return LevelTrace
	case "warning":
		name = "warn"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// slogToCharmLevel maps slog levels onto the coarser charm levels.
// Trace has no charm equivalent and renders as debug.
func slogToCharmLevel(level slog.Level) log.Level {
	switch {
	case level < slog.LevelInfo:
		return log.DebugLevel
	case level < slog.LevelWarn:
		return log.InfoLevel
	case level < slog.LevelError:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}
