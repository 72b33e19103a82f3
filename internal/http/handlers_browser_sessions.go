package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/arafatkatze/cline/internal/service/browsersession"
)

// BrowserSessionService builds the paged view of a chat log.
type BrowserSessionService interface {
	Build(ctx context.Context, req browsersession.BuildRequest) (browsersession.State, error)
}

// BrowserSessionHandlers serves the browser-session page view.
type BrowserSessionHandlers struct {
	Svc          BrowserSessionService
	Evaluator    JMESPathEvaluator
	MaxBodyBytes int64
	Logger       *slog.Logger
}

type browserSessionRequest struct {
	Messages        []model.ClineMessage   `json:"messages"`
	BrowserSettings *model.BrowserSettings `json:"browserSettings"`
	SelectedIndex   *int                   `json:"selectedIndex"`
}

// Pages segments the posted log and returns the state of the selected page.
// The optional query parameter is a JMESPath expression applied to the
// response before it is written.
func (h *BrowserSessionHandlers) Pages(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query != "" {
		if err := h.Evaluator.Validate(query); err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_query", Err: err})
			return
		}
	}

	var req browserSessionRequest
	if !DecodeJSONWith(w, r, &req, DecodeOptions{AllowUnknownFields: true, MaxBytes: h.MaxBodyBytes}) {
		return
	}

	build := browsersession.BuildRequest{
		Messages:      req.Messages,
		SelectedIndex: req.SelectedIndex,
	}
	if req.BrowserSettings != nil {
		build.Settings = *req.BrowserSettings
	}

	state, err := h.Svc.Build(r.Context(), build)
	if err != nil {
		var malformed *browsersession.MalformedResultError
		if errors.As(err, &malformed) {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnprocessableEntity,
				ErrCode: "malformed_result",
				Err:     malformed,
				Extra:   map[string]any{"index": malformed.Index},
			})
			return
		}
		WriteAppError(w, err)
		return
	}

	if query == "" {
		WriteJSON(w, http.StatusOK, state)
		return
	}

	projected, err := project(h.Evaluator, query, state)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "browser session projection failed", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_query", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, projected)
}
