package browsersession

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/arafatkatze/cline/internal/domain/model"
	"golang.org/x/net/publicsuffix"
)

// Fractions of the viewport used for the default pointer position.
const (
	defaultMouseXFraction = 0.7
	defaultMouseYFraction = 0.5
)

// InitialURL returns the text of the first launch message, or "".
func InitialURL(messages []model.ClineMessage) string {
	for i := range messages {
		if messages[i].Role() == model.EventRoleLaunch {
			return messages[i].Text
		}
	}
	return ""
}

// LatestState scans pages from the end and returns the snapshot fields of the
// first page with a known URL or screenshot. Messages are not carried over.
func LatestState(pages []model.BrowserPage) model.PageState {
	for i := len(pages) - 1; i >= 0; i-- {
		st := pages[i].CurrentState
		if st.HasKnownState() {
			return model.PageState{
				URL:           st.URL,
				Screenshot:    st.Screenshot,
				MousePosition: st.MousePosition,
				ConsoleLogs:   st.ConsoleLogs,
			}
		}
	}
	return model.PageState{}
}

// DefaultMousePosition formats "x,y" at 70% of the viewport width and 50% of
// its height, using the shortest decimal form of each coordinate.
func DefaultMousePosition(settings model.BrowserSettings) string {
	x := float64(settings.Viewport.Width) * defaultMouseXFraction
	y := float64(settings.Viewport.Height) * defaultMouseYFraction
	return formatCoordinate(x) + "," + formatCoordinate(y)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// View is the derived, read-only state of one browser session.
type View struct {
	pages        []model.BrowserPage
	initialURL   string
	latest       model.PageState
	defaultMouse string
}

// NewView segments messages and precomputes the session-wide fallbacks.
func NewView(messages []model.ClineMessage, settings model.BrowserSettings, opts SegmentOptions) (*View, error) {
	pages, err := Segment(messages, opts)
	if err != nil {
		return nil, err
	}
	return &View{
		pages:        pages,
		initialURL:   InitialURL(messages),
		latest:       LatestState(pages),
		defaultMouse: DefaultMousePosition(settings),
	}, nil
}

// Pages returns the segmented pages.
func (v *View) Pages() []model.BrowserPage { return v.pages }

// PageCount returns the number of pages.
func (v *View) PageCount() int { return len(v.pages) }

// LastIndex is the index of the frontier page; -1 when there are no pages.
func (v *View) LastIndex() int { return len(v.pages) - 1 }

// InitialURL returns the launch URL of the session.
func (v *View) InitialURL() string { return v.initialURL }

// LatestState returns the most recent known snapshot.
func (v *View) LatestState() model.PageState { return v.latest }

// DefaultMousePosition returns the configured pointer fallback.
func (v *View) DefaultMousePosition() string { return v.defaultMouse }

// IsLastPage reports whether index selects the frontier page.
func (v *View) IsLastPage(index int) bool { return index == v.LastIndex() }

// CurrentPage returns the page at index, if any.
func (v *View) CurrentPage(index int) (model.BrowserPage, bool) {
	if index < 0 || index >= len(v.pages) {
		return model.BrowserPage{}, false
	}
	return v.pages[index], true
}

// DisplayState resolves what to render for the page at index.
//
// The frontier page falls back to the latest known snapshot before the global
// defaults; earlier pages only fall back to the defaults.
func (v *View) DisplayState(index int) model.DisplayState {
	page, _ := v.CurrentPage(index)
	own := page.CurrentState

	var ds model.DisplayState
	if v.IsLastPage(index) {
		ds = model.DisplayState{
			URL:           firstNonEmpty(own.URL, v.latest.URL, v.initialURL),
			MousePosition: firstNonEmpty(own.MousePosition, v.latest.MousePosition, v.defaultMouse),
			ConsoleLogs:   firstNonEmpty(own.ConsoleLogs, v.latest.ConsoleLogs),
			Screenshot:    firstNonEmpty(own.Screenshot, v.latest.Screenshot),
		}
	} else {
		ds = model.DisplayState{
			URL:           firstNonEmpty(own.URL, v.initialURL),
			MousePosition: firstNonEmpty(own.MousePosition, v.defaultMouse),
			ConsoleLogs:   own.ConsoleLogs,
			Screenshot:    own.Screenshot,
		}
	}
	ds.Site = SiteOf(ds.URL)
	return ds
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// SiteOf returns the registrable domain (eTLD+1) of rawURL. Hosts without a
// public suffix, such as localhost or IP addresses, are returned as-is.
func SiteOf(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}
