// Package featureflags provides a ports.FeatureFlags adapter backed by the
// features section of the loaded configuration.
package featureflags

import (
	"context"
	"strconv"
	"strings"
)

// Static evaluates flags from a fixed map. Values may be typed (from YAML)
// or strings (from APP_FEATURES_* environment variables).
type Static struct {
	values map[string]any
}

// NewStatic creates a flag source from values. Keys are matched case-insensitively.
func NewStatic(values map[string]any) *Static {
	normalized := make(map[string]any, len(values))
	for k, v := range values {
		normalized[strings.ToLower(k)] = v
	}

	return &Static{values: normalized}
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	switch v := s.values[strings.ToLower(flag)].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}

	return defaultValue
}

// GetInt implements ports.FeatureFlags.
func (s *Static) GetInt(_ context.Context, flag string, defaultValue int) int {
	switch v := s.values[strings.ToLower(flag)].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}

	return defaultValue
}
