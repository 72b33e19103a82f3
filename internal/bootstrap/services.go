package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arafatkatze/cline/config"
	"github.com/arafatkatze/cline/internal/adapters/openrouter"
	"github.com/arafatkatze/cline/internal/core"
	"github.com/arafatkatze/cline/internal/data"
	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/arafatkatze/cline/internal/observability/statsd"
	"github.com/arafatkatze/cline/internal/service/browsersession"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	KeyInfo         *core.KeyInfoQueryService
	KeyInfoClient   *openrouter.Client
	BrowserSessions *browsersession.Service
	// Cache is the key-info cache; exactly one of MemoryCache and RedisCache
	// backs it.
	Cache         core.CacheRepository
	MemoryCache   *data.MemoryCacheRepo
	RedisCache    *data.RedisCacheRepo
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// Sink returns the metrics sink, or nil when metrics are disabled.
//
//nolint:ireturn // callers take the interface.
func (o ObservabilityContainer) Sink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// Close releases observability resources.
func (o ObservabilityContainer) Close() error {
	return o.MetricsSink.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	// RedisClient is required when the key info cache uses redis.
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// Now overrides the key-info query clock; tests only.
	Now func() time.Time
}

// buildObservability configures the metrics sink. A sink that cannot be
// dialed is logged and skipped.
func buildObservability(ctx context.Context, logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.Dial(ctx, statsd.Config{
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// buildCache picks the key info cache backend.
func buildCache(deps *ServiceDeps) (ServiceContainer, error) {
	cfg := deps.Config
	var c ServiceContainer
	switch cfg.KeyInfoCache.Backend {
	case config.CacheBackendRedis:
		if deps.RedisClient == nil {
			return c, errors.New("redis key info backend requires a redis client")
		}
		c.RedisCache = data.NewRedisCacheRepo(deps.RedisClient, cfg.Redis.KeyPrefix)
		c.Cache = c.RedisCache
	default:
		c.MemoryCache = data.NewMemoryCacheRepo()
		c.Cache = c.MemoryCache
	}
	return c, nil
}

// NewServices wires the domain services from configuration.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	container, err := buildCache(deps)
	if err != nil {
		return ServiceContainer{}, err
	}
	container.Observability = buildObservability(ctx, logger, cfg.Observability)
	sink := container.Observability.Sink()

	client := openrouter.NewClient(openrouter.Config{
		BaseURL: cfg.OpenRouter.BaseURL,
		Timeout: cfg.OpenRouter.Timeout,
		Logger:  logger,
		Metrics: sink,
	})
	container.KeyInfoClient = client

	container.KeyInfo = core.NewKeyInfoQueryService(core.KeyInfoQueryServiceOptions{
		Fetcher: client,
		Cache:   container.Cache,
		Policy:  keyInfoPolicy(cfg.KeyInfoCache, client),
		Logger:  logger,
		Metrics: sink,
		Now:     deps.Now,
	})

	container.BrowserSessions = browsersession.NewService(browsersession.ServiceOptions{
		DefaultSettings: model.BrowserSettings{Viewport: model.Viewport{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		}},
		Lenient: cfg.Browser.LenientResults,
		Logger:  logger,
		Metrics: sink,
	})

	return container, nil
}

// keyInfoPolicy keys lookups by the resolved base URL so that an omitted base
// URL and the explicit default share one cache entry.
func keyInfoPolicy(cfg config.KeyInfoCacheConfig, client *openrouter.Client) core.QueryPolicy {
	policy := core.DefaultQueryPolicy()
	policy.StaleTime = cfg.StaleTime
	policy.GCTime = cfg.GCTime
	policy.KeyFunc = func(apiKey, baseURL string) string {
		return core.KeyInfoQueryKey(apiKey, client.ResolveBaseURL(baseURL))
	}
	return policy
}

// ServiceOrchestrationConfig contains dependencies for running services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// ServiceStartupResult holds what startServices launched.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
		Errors:   deps.errCh,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error",
					"service", descriptor.name,
					"error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newCacheSweeperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeCacheSweeper,
		name: "cache sweeper",
		start: func(ctx context.Context) error {
			cache := deps.cfg.Services.MemoryCache
			if cache == nil {
				// Redis expires entries on its own.
				deps.logger.InfoContext(ctx, "cache sweeper idle: key info cache is not in memory")
				<-ctx.Done()
				return nil
			}
			return cache.RunSweeper(ctx)
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	return []backgroundService{
		newCacheSweeperBackgroundService(deps),
	}
}

func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts every enabled service and blocks until
// SIGINT, SIGTERM or the first service error.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	return runServices(cfg, quit)
}

func runServices(cfg *ServiceOrchestrationConfig, quit <-chan os.Signal) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	// Start all enabled services
	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		quit:        quit,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	size := errorChannelCapacity(enabled) + 1
	if size < 1 {
		return 1
	}
	return size
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	quit        <-chan os.Signal
	errCh       <-chan error
	httpServer  *http.Server
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case <-cfg.quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		// The service context is already canceled; shutdown gets a fresh one.
		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: context.WithoutCancel(cfg.ctx),
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	// Wait for background services to finish
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
