package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/arafatkatze/cline/internal/domain/model"
	apperrors "github.com/arafatkatze/cline/internal/errors"
	"github.com/arafatkatze/cline/internal/observability/metrics"
	"github.com/arafatkatze/cline/internal/observability/statsd"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultKeyInfoStaleTime is how long a cached lookup is served without refetching.
	DefaultKeyInfoStaleTime = 30 * time.Second
	// DefaultKeyInfoGCTime is how long a cached lookup is kept at all.
	DefaultKeyInfoGCTime = 5 * time.Minute

	keyInfoQueryPrefix = "openrouter-key-info"

	// KeyInfoKeyPrefix starts every key built by KeyInfoQueryKey.
	KeyInfoKeyPrefix = keyInfoQueryPrefix + ":"
)

// QueryPolicy controls caching of key-info lookups.
type QueryPolicy struct {
	StaleTime time.Duration
	GCTime    time.Duration
	// KeyFunc derives the cache key; the raw API key must not appear in it.
	KeyFunc func(apiKey, baseURL string) string
	// Enabled gates the lookup. Disabled queries never touch cache or network.
	Enabled func(apiKey string) bool
}

// DefaultQueryPolicy returns the 30s/5m policy enabled for any non-empty key.
func DefaultQueryPolicy() QueryPolicy {
	return QueryPolicy{
		StaleTime: DefaultKeyInfoStaleTime,
		GCTime:    DefaultKeyInfoGCTime,
		KeyFunc:   KeyInfoQueryKey,
		Enabled:   func(apiKey string) bool { return apiKey != "" },
	}
}

func (p QueryPolicy) withDefaults() QueryPolicy {
	def := DefaultQueryPolicy()
	if p.StaleTime <= 0 {
		p.StaleTime = def.StaleTime
	}
	if p.GCTime <= 0 {
		p.GCTime = def.GCTime
	}
	if p.GCTime < p.StaleTime {
		p.GCTime = p.StaleTime
	}
	if p.KeyFunc == nil {
		p.KeyFunc = def.KeyFunc
	}
	if p.Enabled == nil {
		p.Enabled = def.Enabled
	}
	return p
}

// KeyInfoQueryKey builds "openrouter-key-info:<key digest>:<baseURL>".
func KeyInfoQueryKey(apiKey, baseURL string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return KeyInfoKeyPrefix + hex.EncodeToString(sum[:8]) + ":" + NormalizeBaseURL(baseURL)
}

// NormalizeBaseURL trims whitespace and trailing slashes.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// KeyInfoResult is the answer to one query.
type KeyInfoResult struct {
	Info      *model.OpenRouterKeyInfo `json:"data"`
	Status    model.KeyInfoStatus      `json:"status"`
	FetchedAt time.Time                `json:"fetchedAt"`
	// Cache is one of the metrics.Cache* values.
	Cache string `json:"cache"`
}

type cachedKeyInfo struct {
	Info      *model.OpenRouterKeyInfo `json:"info"`
	Status    model.KeyInfoStatus      `json:"status"`
	FetchedAt time.Time                `json:"fetched_at"`
}

// KeyInfoQueryServiceOptions bundles dependencies for NewKeyInfoQueryService.
type KeyInfoQueryServiceOptions struct {
	Fetcher KeyInfoFetcher
	// Cache may be nil, in which case every query fetches.
	Cache   CacheRepository
	Policy  QueryPolicy
	Logger  *slog.Logger
	Metrics statsd.Sink
	Now     func() time.Time
}

// KeyInfoQueryService serves key-info lookups through a cache with
// stale-while-fetch semantics. Concurrent queries for the same key share one
// fetch. Nothing is retried.
type KeyInfoQueryService struct {
	fetcher KeyInfoFetcher
	cache   CacheRepository
	policy  QueryPolicy
	logger  *slog.Logger
	metrics statsd.Sink
	now     func() time.Time
	group   singleflight.Group
}

// NewKeyInfoQueryService creates a KeyInfoQueryService.
func NewKeyInfoQueryService(opts KeyInfoQueryServiceOptions) *KeyInfoQueryService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &KeyInfoQueryService{
		fetcher: opts.Fetcher,
		cache:   opts.Cache,
		policy:  opts.Policy.withDefaults(),
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
	}
}

// Policy returns the effective policy.
func (s *KeyInfoQueryService) Policy() QueryPolicy { return s.policy }

// Get answers a key-info query. The only errors are from ctx; a caller that
// gives up while a fetch is in flight gets its context error and the fetch
// still completes and fills the cache.
func (s *KeyInfoQueryService) Get(ctx context.Context, apiKey, baseURL string) (KeyInfoResult, error) {
	if !s.policy.Enabled(apiKey) {
		metrics.EmitCacheLookup(s.metrics, metrics.CacheDisabled)
		return KeyInfoResult{Status: model.KeyInfoStatusDisabled, Cache: metrics.CacheDisabled}, nil
	}
	if err := ctx.Err(); err != nil {
		return KeyInfoResult{}, apperrors.FromContext(err)
	}

	key := s.policy.KeyFunc(apiKey, baseURL)
	lookup := metrics.CacheMiss
	if entry, ok := s.read(ctx, key); ok {
		if s.now().Sub(entry.FetchedAt) < s.policy.StaleTime {
			metrics.EmitCacheLookup(s.metrics, metrics.CacheHit)
			return entry.result(metrics.CacheHit), nil
		}
		lookup = metrics.CacheStale
	}
	metrics.EmitCacheLookup(s.metrics, lookup)

	ch := s.group.DoChan(key, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), key, apiKey, baseURL), nil
	})
	select {
	case <-ctx.Done():
		return KeyInfoResult{}, apperrors.FromContext(ctx.Err())
	case res := <-ch:
		entry, _ := res.Val.(cachedKeyInfo)
		return entry.result(lookup), nil
	}
}

// fetch must get a context without caller cancellation; the fetcher's own
// timeout bounds it.
func (s *KeyInfoQueryService) fetch(ctx context.Context, key, apiKey, baseURL string) cachedKeyInfo {
	info, status := s.fetcher.FetchKeyInfo(ctx, apiKey, baseURL)
	entry := cachedKeyInfo{Info: info, Status: status, FetchedAt: s.now()}
	s.write(ctx, key, entry)
	return entry
}

// Invalidate drops the cached lookup for apiKey and baseURL.
func (s *KeyInfoQueryService) Invalidate(ctx context.Context, apiKey, baseURL string) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	deleted, err := s.cache.Delete(ctx, s.policy.KeyFunc(apiKey, baseURL))
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeInternal, "invalidate key info")
	}
	return deleted, nil
}

func (s *KeyInfoQueryService) read(ctx context.Context, key string) (cachedKeyInfo, bool) {
	if s.cache == nil {
		return cachedKeyInfo{}, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.EmitCacheLookup(s.metrics, metrics.CacheError)
		s.logger.WarnContext(ctx, "key info cache read failed", "error", err)
		return cachedKeyInfo{}, false
	}
	if raw == nil {
		return cachedKeyInfo{}, false
	}
	var entry cachedKeyInfo
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.WarnContext(ctx, "discarding undecodable key info cache entry", "error", err)
		return cachedKeyInfo{}, false
	}
	return entry, true
}

func (s *KeyInfoQueryService) write(ctx context.Context, key string, entry cachedKeyInfo) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		s.logger.WarnContext(ctx, "encode key info cache entry", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.policy.GCTime); err != nil {
		metrics.EmitCacheLookup(s.metrics, metrics.CacheError)
		s.logger.WarnContext(ctx, "key info cache write failed", "error", err)
	}
}

func (e cachedKeyInfo) result(lookup string) KeyInfoResult {
	return KeyInfoResult{Info: e.Info, Status: e.Status, FetchedAt: e.FetchedAt, Cache: lookup}
}
