package model

import (
	"errors"
	"fmt"
)

// Default viewport used when the settings store does not provide one.
const (
	DefaultViewportWidth  = 900
	DefaultViewportHeight = 600
)

// Viewport is the size of the headless browser window.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BrowserSettings is the subset of application settings the session view needs.
type BrowserSettings struct {
	Viewport Viewport `json:"viewport"`
}

// DefaultBrowserSettings returns settings with the default viewport.
func DefaultBrowserSettings() BrowserSettings {
	return BrowserSettings{Viewport: Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}}
}

// Validate checks that the viewport has a usable size.
func (s BrowserSettings) Validate() error {
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", s.Viewport.Width, s.Viewport.Height)
	}
	return nil
}

// IsZero reports whether no viewport was supplied at all.
func (s BrowserSettings) IsZero() bool {
	return s.Viewport.Width == 0 && s.Viewport.Height == 0
}

// BrowserActionResult is the snapshot carried by a browser_action_result message.
// Every field is optional.
type BrowserActionResult struct {
	Screenshot           string `json:"screenshot,omitempty"`
	Logs                 string `json:"logs,omitempty"`
	CurrentURL           string `json:"currentUrl,omitempty"`
	CurrentMousePosition string `json:"currentMousePosition,omitempty"`
}

// PageState is the state half of a page: the parsed snapshot plus the messages
// up to and including the result that produced it.
type PageState struct {
	URL           string         `json:"url,omitempty"`
	Screenshot    string         `json:"screenshot,omitempty"`
	MousePosition string         `json:"mousePosition,omitempty"`
	ConsoleLogs   string         `json:"consoleLogs,omitempty"`
	Messages      []ClineMessage `json:"messages"`
}

// HasKnownState reports whether the snapshot identifies a location or a capture.
func (s PageState) HasKnownState() bool {
	return s.URL != "" || s.Screenshot != ""
}

// PageAction holds the messages leading to the next result.
type PageAction struct {
	Messages []ClineMessage `json:"messages"`
}

// BrowserPage pairs a state snapshot with the actions that follow it.
type BrowserPage struct {
	CurrentState PageState   `json:"currentState"`
	NextAction   *PageAction `json:"nextAction,omitempty"`
}

// Complete reports whether the page was closed by a result message.
func (p BrowserPage) Complete() bool {
	n := len(p.CurrentState.Messages)
	if n == 0 {
		return false
	}
	return p.CurrentState.Messages[n-1].Role() == EventRoleResult
}

// DisplayState is what the UI renders for the selected page. URL and
// MousePosition always resolve; the remaining fields may be empty.
type DisplayState struct {
	URL           string `json:"url"`
	MousePosition string `json:"mousePosition"`
	ConsoleLogs   string `json:"consoleLogs,omitempty"`
	Screenshot    string `json:"screenshot,omitempty"`
	Site          string `json:"site,omitempty"`
}

// ErrNoPages reports a log that yields no browser pages.
var ErrNoPages = errors.New("browser session has no pages")
