package ports

import (
	"context"
)

// Flag names. Values come from the features section of the config, so they
// can be flipped per profile or with APP_FEATURES_* variables.
const (
	// FlagSyncPush gates the best-effort push after a merge.
	FlagSyncPush = "sync-push-enabled"

	// FlagSyncMaxRemoteItems overrides sync.max_remote_items when positive.
	FlagSyncMaxRemoteItems = "sync-max-remote-items"
)

// FeatureFlags answers flag lookups. Evaluation never fails from the
// caller's point of view: an unknown or unparsable flag yields the default.
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
	GetInt(ctx context.Context, flag string, defaultValue int) int
}
