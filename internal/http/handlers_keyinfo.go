package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arafatkatze/cline/internal/core"
)

// KeyInfoHeader is an alternative to the Authorization header for clients
// that already use it for something else.
const KeyInfoHeader = "X-OpenRouter-Key"

// KeyInfoService is the subset of core.KeyInfoQueryService the handlers use.
type KeyInfoService interface {
	Get(ctx context.Context, apiKey, baseURL string) (core.KeyInfoResult, error)
}

// KeyInfoHandlers serves the OpenRouter key lookup.
type KeyInfoHandlers struct {
	Svc    KeyInfoService
	Logger *slog.Logger
}

// Get returns the key info for the caller's key. A missing key, a rejected
// key and an upstream failure all produce 200 with "data": null and a status
// naming the reason.
func (h *KeyInfoHandlers) Get(w http.ResponseWriter, r *http.Request) {
	apiKey := apiKeyFromRequest(r)
	baseURL := strings.TrimSpace(r.URL.Query().Get("base_url"))

	res, err := h.Svc.Get(r.Context(), apiKey, baseURL)
	if err != nil {
		h.Logger.DebugContext(r.Context(), "key info request aborted", "error", err)
		WriteAppError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, res)
}

func apiKeyFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(KeyInfoHeader))
}
