// Package core holds the ports and cache policy of the webview backend.
package core

import (
	"context"
	"time"

	"github.com/arafatkatze/cline/internal/domain/model"
)

// Ports are implemented by the data and adapter layers; services depend on
// these interfaces only.

// CacheRepository stores opaque values under string keys.
type CacheRepository interface {
	// Set stores value under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil, nil when the key is missing or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the backing connection.
	Health(ctx context.Context) error
}

// KeyInfoFetcher looks up OpenRouter key metadata. Implementations are total:
// failures are reported through the status, never as an error.
type KeyInfoFetcher interface {
	FetchKeyInfo(ctx context.Context, apiKey, baseURL string) (*model.OpenRouterKeyInfo, model.KeyInfoStatus)
}
