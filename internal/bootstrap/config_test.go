package bootstrap

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/arafatkatze/cline/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVICES", "http,cache-sweeper")
	t.Setenv("KEY_INFO_BACKEND", "REDIS")
	t.Setenv("KEY_INFO_STALE_TIME", "10s")
	t.Setenv("OPENROUTER_BASE_URL", "https://proxy.example.com/api/v1/")
	t.Setenv("LOG_LEVEL", "Debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.KeyInfoCache.Backend != config.CacheBackendRedis {
		t.Fatalf("backend = %q", cfg.KeyInfoCache.Backend)
	}
	if cfg.KeyInfoCache.StaleTime != 10*time.Second {
		t.Fatalf("stale time = %v", cfg.KeyInfoCache.StaleTime)
	}
	if cfg.OpenRouter.BaseURL != "https://proxy.example.com/api/v1" {
		t.Fatalf("base url = %q", cfg.OpenRouter.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	want := []string{"http", "cache-sweeper"}
	if got := GetEnabledServices(&cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("GetEnabledServices() = %v, want %v", got, want)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("KEY_INFO_GC_TIME", "soon")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateServiceConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.AppConfig
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "http", cfg: &config.AppConfig{Services: "http"}},
		{name: "empty", cfg: &config.AppConfig{Services: ""}, wantErr: true},
		{name: "unknown", cfg: &config.AppConfig{Services: "http,rules-engine"}, wantErr: true},
		{
			name: "sweeper alone with memory cache",
			cfg: &config.AppConfig{
				Services:     "cache-sweeper",
				KeyInfoCache: config.KeyInfoCacheConfig{Backend: config.CacheBackendMemory},
			},
		},
		{
			name: "sweeper alone with redis cache",
			cfg: &config.AppConfig{
				Services:     "cache-sweeper",
				KeyInfoCache: config.KeyInfoCacheConfig{Backend: config.CacheBackendRedis},
			},
			wantErr: true,
		},
		{
			name: "sweeper with http and redis cache",
			cfg: &config.AppConfig{
				Services:     "http,cache-sweeper",
				KeyInfoCache: config.KeyInfoCacheConfig{Backend: config.CacheBackendRedis},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServiceConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateServiceConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnabledServicesInvalid(t *testing.T) {
	if got := GetEnabledServices(&config.AppConfig{Services: "bogus"}); len(got) != 0 {
		t.Fatalf("expected no services, got %v", got)
	}
	if got := GetEnabledServices(nil); len(got) != 0 {
		t.Fatalf("expected no services, got %v", got)
	}
}
