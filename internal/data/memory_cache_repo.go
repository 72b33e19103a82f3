package data

import (
	"context"
	"strings"
	"time"

	"github.com/arafatkatze/cline/internal/core"
	"github.com/jellydator/ttlcache/v3"
)

var _ core.CacheRepository = (*MemoryCacheRepo)(nil)

// MemoryCacheRepo is an in-process core.CacheRepository backed by ttlcache.
// Expired entries are never returned; RunSweeper removes them from memory.
type MemoryCacheRepo struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryCacheRepo creates an empty MemoryCacheRepo.
func NewMemoryCacheRepo() *MemoryCacheRepo {
	return &MemoryCacheRepo{
		cache: ttlcache.New[string, []byte](
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

// Set stores a copy of value. A ttl <= 0 means no expiry.
func (m *MemoryCacheRepo) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.cache.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Get returns a copy of the stored value, or nil when missing or expired.
func (m *MemoryCacheRepo) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	item := m.cache.Get(key)
	if item == nil {
		return nil, nil
	}
	return append([]byte(nil), item.Value()...), nil
}

// Delete removes key and reports whether a live entry was removed.
func (m *MemoryCacheRepo) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	live := m.cache.Get(key) != nil
	m.cache.Delete(key)
	return live, nil
}

// DeletePrefix removes every key starting with prefix and returns how many
// live entries were removed.
func (m *MemoryCacheRepo) DeletePrefix(_ context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, ErrEmptyKey
	}
	deleted := 0
	for _, k := range m.cache.Keys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if m.cache.Get(k) != nil {
			deleted++
		}
		m.cache.Delete(k)
	}
	return deleted, nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *MemoryCacheRepo) Len() int { return m.cache.Len() }

// Health always succeeds.
func (m *MemoryCacheRepo) Health(context.Context) error { return nil }

// RunSweeper runs the cache's expiry loop until ctx is done. It must not be
// called more than once at a time.
func (m *MemoryCacheRepo) RunSweeper(ctx context.Context) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		m.cache.Start()
	}()
	<-ctx.Done()
	m.cache.Stop()
	<-stopped
	return nil
}
