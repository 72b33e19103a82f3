package config

import (
	"strings"
	"time"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterConfig controls the key-info fetcher.
type OpenRouterConfig struct {
	// BaseURL is used when a request does not name one.
	BaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`

	// Timeout bounds a single /key request.
	Timeout time.Duration `env:"OPENROUTER_TIMEOUT" envDefault:"5s"`
}

// Sanitize applies guardrails to OpenRouter configuration values.
func (c *OpenRouterConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultOpenRouterBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
}

// CacheBackend selects where key-info query results are cached.
type CacheBackend string

const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// KeyInfoCacheConfig controls caching of key-info lookups.
type KeyInfoCacheConfig struct {
	// StaleTime is how long a cached lookup is served without refetching.
	StaleTime time.Duration `env:"KEY_INFO_STALE_TIME" envDefault:"30s"`

	// GCTime is how long a cached lookup is kept at all.
	GCTime time.Duration `env:"KEY_INFO_GC_TIME" envDefault:"5m"`

	// Backend is memory or redis.
	Backend CacheBackend `env:"KEY_INFO_BACKEND" envDefault:"memory"`
}

// Sanitize applies guardrails to key-info cache configuration values.
func (c *KeyInfoCacheConfig) Sanitize() {
	if c.StaleTime <= 0 {
		c.StaleTime = 30 * time.Second
	}
	if c.GCTime < c.StaleTime {
		c.GCTime = c.StaleTime
	}
	switch CacheBackend(strings.ToLower(strings.TrimSpace(string(c.Backend)))) {
	case CacheBackendRedis:
		c.Backend = CacheBackendRedis
	default:
		c.Backend = CacheBackendMemory
	}
}
