package browsersession

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/arafatkatze/cline/internal/domain/model"
	apperrors "github.com/arafatkatze/cline/internal/errors"
	"github.com/arafatkatze/cline/internal/observability/metrics"
	"github.com/arafatkatze/cline/internal/observability/statsd"
)

// ServiceOptions bundles dependencies for NewService.
type ServiceOptions struct {
	// DefaultSettings is used when a request carries no viewport.
	DefaultSettings model.BrowserSettings
	Lenient         bool
	Logger          *slog.Logger
	Metrics         statsd.Sink
}

// Service builds session views on request. It holds no per-session state.
type Service struct {
	defaults model.BrowserSettings
	lenient  bool
	logger   *slog.Logger
	metrics  statsd.Sink
}

// NewService creates a Service.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defaults := opts.DefaultSettings
	if defaults.Validate() != nil {
		defaults = model.DefaultBrowserSettings()
	}
	return &Service{
		defaults: defaults,
		lenient:  opts.Lenient,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// BuildRequest is the input of Build.
type BuildRequest struct {
	Messages []model.ClineMessage
	Settings model.BrowserSettings
	// SelectedIndex picks a page; nil selects the newest page.
	SelectedIndex *int
}

// Build segments the log and resolves the display state for the selection.
func (s *Service) Build(ctx context.Context, req BuildRequest) (State, error) {
	settings := req.Settings
	if settings.IsZero() {
		settings = s.defaults
	}
	if err := settings.Validate(); err != nil {
		return State{}, apperrors.ValidationField("browserSettings.viewport", err.Error())
	}

	start := time.Now()
	view, err := NewView(req.Messages, settings, SegmentOptions{Lenient: s.lenient})
	metrics.EmitSegmentation(s.metrics, metrics.SegmentationMetric{
		Messages: len(req.Messages),
		Pages:    pageCount(view),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		var malformed *MalformedResultError
		if errors.As(err, &malformed) {
			s.logger.WarnContext(ctx, "browser session log has a malformed result",
				"index", malformed.Index,
				"messages", len(req.Messages))
			return State{}, apperrors.Wrap(err, apperrors.ErrCodeMalformed, "segment browser session")
		}
		return State{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "segment browser session")
	}

	index := view.LastIndex()
	if req.SelectedIndex != nil {
		index = *req.SelectedIndex
		if _, ok := view.CurrentPage(index); !ok {
			return State{}, apperrors.ValidationField("selectedIndex",
				"selected page is out of range")
		}
	}

	return view.StateAt(index), nil
}

func pageCount(v *View) int {
	if v == nil {
		return 0
	}
	return v.PageCount()
}
