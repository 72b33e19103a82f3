package browsersession

import (
	"fmt"
	"sync"

	"github.com/arafatkatze/cline/internal/domain/model"
)

// State is the UI-facing view of a session at its current selection.
type State struct {
	Pages            []model.BrowserPage `json:"pages"`
	CurrentPageIndex int                 `json:"currentPageIndex"`
	CurrentPage      *model.BrowserPage  `json:"currentPage,omitempty"`
	IsLastPage       bool                `json:"isLastPage"`
	DisplayState     model.DisplayState  `json:"displayState"`
	InitialURL       string              `json:"initialUrl"`
}

// StateAt assembles the State for the page at index.
func (v *View) StateAt(index int) State {
	st := State{
		Pages:            v.pages,
		CurrentPageIndex: index,
		IsLastPage:       v.IsLastPage(index),
		DisplayState:     v.DisplayState(index),
		InitialURL:       v.initialURL,
	}
	if page, ok := v.CurrentPage(index); ok {
		st.CurrentPage = &page
	}
	return st
}

// Session tracks the selected page across log updates. Whenever the page count
// changes the selection jumps to the newest page; a manual selection only
// lasts until then.
type Session struct {
	mu        sync.Mutex
	settings  model.BrowserSettings
	opts      SegmentOptions
	view      *View
	selected  int
	pageCount int
}

// NewSession returns a session with no messages.
func NewSession(settings model.BrowserSettings, opts SegmentOptions) *Session {
	s := &Session{settings: settings, opts: opts, pageCount: -1}
	// An empty log always segments cleanly.
	_ = s.Update(nil)
	return s
}

// Update recomputes the view from the full message log. On error the previous
// view and selection are kept.
func (s *Session) Update(messages []model.ClineMessage) error {
	view, err := NewView(messages, s.settings, s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	if view.PageCount() != s.pageCount {
		s.pageCount = view.PageCount()
		s.selected = view.LastIndex()
	}
	return nil
}

// Select moves the selection to index.
func (s *Session) Select(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= s.view.PageCount() {
		return fmt.Errorf("page index %d out of range [0,%d)", index, s.view.PageCount())
	}
	s.selected = index
	return nil
}

// SelectedIndex returns the current selection.
func (s *Session) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// State returns the view at the current selection.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.StateAt(s.selected)
}
