package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	KeyInfo         KeyInfoService
	BrowserSessions BrowserSessionService
	// Cache backs the readiness probe; nil reports ready.
	Cache HealthChecker
	// Evaluator is optional; defaults to go-jmespath.
	Evaluator    JMESPathEvaluator
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	evaluator := services.Evaluator
	if evaluator == nil {
		evaluator = jmespathLibEvaluator{}
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readinessHandler(services.Cache, logger))

	if services.KeyInfo != nil {
		h := &KeyInfoHandlers{Svc: services.KeyInfo, Logger: logger}
		mux.HandleFunc("GET /api/openrouter/key-info", h.Get)
	}
	if services.BrowserSessions != nil {
		h := &BrowserSessionHandlers{
			Svc:          services.BrowserSessions,
			Evaluator:    evaluator,
			MaxBodyBytes: services.MaxBodyBytes,
			Logger:       logger,
		}
		mux.HandleFunc("POST /api/browser-sessions/pages", h.Pages)
	}

	return mux
}
