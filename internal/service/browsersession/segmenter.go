// Package browsersession turns a chat log into the paged browser-session view:
// each page pairs a browser snapshot with the actions that led to the next one.
package browsersession

import (
	"errors"
	"fmt"
	"slices"

	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/tidwall/gjson"
)

// ErrMalformedResult matches any *MalformedResultError via errors.Is.
var ErrMalformedResult = errors.New("malformed browser action result")

// MalformedResultError reports a browser_action_result whose payload is not JSON.
type MalformedResultError struct {
	Index int
	Text  string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("browser action result at index %d is not valid JSON", e.Index)
}

// Is lets callers test against ErrMalformedResult.
func (e *MalformedResultError) Is(target error) bool {
	return target == ErrMalformedResult
}

// SegmentOptions tunes Segment.
type SegmentOptions struct {
	// Lenient turns a malformed result into a page without snapshot fields
	// instead of failing the whole pass.
	Lenient bool
}

// accumulator is the fold state threaded through one Segment pass.
type accumulator struct {
	pages   []model.BrowserPage
	state   []model.ClineMessage
	actions []model.ClineMessage
}

func (a *accumulator) emit(snapshot model.BrowserActionResult) {
	a.pages = append(a.pages, model.BrowserPage{
		CurrentState: model.PageState{
			URL:           snapshot.CurrentURL,
			Screenshot:    snapshot.Screenshot,
			MousePosition: snapshot.CurrentMousePosition,
			ConsoleLogs:   snapshot.Logs,
			Messages:      slices.Clone(a.state),
		},
		NextAction: a.nextAction(),
	})
	a.state = nil
	a.actions = nil
}

func (a *accumulator) nextAction() *model.PageAction {
	if len(a.actions) == 0 {
		return nil
	}
	return &model.PageAction{Messages: slices.Clone(a.actions)}
}

// emitPending closes the pass with the in-progress page, if any.
func (a *accumulator) emitPending() {
	if len(a.state) == 0 && len(a.actions) == 0 {
		return
	}
	state := a.state
	if state == nil {
		state = []model.ClineMessage{}
	}
	a.pages = append(a.pages, model.BrowserPage{
		CurrentState: model.PageState{Messages: state},
		NextAction:   a.nextAction(),
	})
}

// ClassifyRole tags msg with the part it plays in page segmentation.
func ClassifyRole(msg model.ClineMessage) model.EventRole {
	return msg.Role()
}

// Segment partitions messages into pages in a single forward pass.
//
// A launch restarts state collection but leaves pending actions in place, so
// actions recorded before a relaunch are attributed to the next result.
// Empty results mark the session start and are dropped.
func Segment(messages []model.ClineMessage, opts SegmentOptions) ([]model.BrowserPage, error) {
	acc := accumulator{pages: make([]model.BrowserPage, 0, len(messages)/2+1)}

	for i := range messages {
		msg := messages[i]
		switch ClassifyRole(msg) {
		case model.EventRoleLaunch:
			acc.state = []model.ClineMessage{msg}
		case model.EventRoleResult:
			if msg.IsSessionStartSentinel() {
				continue
			}
			acc.state = append(acc.state, msg)
			snapshot, err := ParseResult(msg.ResultPayload())
			if err != nil {
				if !opts.Lenient {
					return nil, &MalformedResultError{Index: i, Text: msg.Text}
				}
				snapshot = model.BrowserActionResult{}
			}
			acc.emit(snapshot)
		case model.EventRoleIntermediateAction:
			acc.actions = append(acc.actions, msg)
		case model.EventRoleOther:
			acc.state = append(acc.state, msg)
		}
	}

	acc.emitPending()
	return acc.pages, nil
}

var errInvalidJSON = errors.New("invalid JSON")

// ParseResult extracts the snapshot fields from a result payload. Absent or
// non-string fields are left empty.
func ParseResult(text string) (model.BrowserActionResult, error) {
	if !gjson.Valid(text) {
		return model.BrowserActionResult{}, errInvalidJSON
	}
	fields := gjson.GetMany(text, "currentUrl", "screenshot", "currentMousePosition", "logs")
	return model.BrowserActionResult{
		CurrentURL:           stringField(fields[0]),
		Screenshot:           stringField(fields[1]),
		CurrentMousePosition: stringField(fields[2]),
		Logs:                 stringField(fields[3]),
	}, nil
}

func stringField(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
