// Package model defines the core data types shared by the webview backend.
package model

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Message types recorded in the chat log.
const (
	MessageTypeAsk = "ask"
	MessageTypeSay = "say"
)

// Ask and say values that drive the browser-session view.
const (
	AskBrowserActionLaunch = "browser_action_launch"
	SayBrowserActionLaunch = "browser_action_launch"
	SayBrowserActionResult = "browser_action_result"
	SayBrowserAction       = "browser_action"
	SayAPIReqStarted       = "api_req_started"
	SayText                = "text"
)

// ClineMessage is one entry of the chat/action log. Entries are append-only and
// never mutated once recorded.
//
// A decoded message re-encodes to the record it was decoded from, fields this
// type does not model included.
type ClineMessage struct {
	TS      int64    `json:"ts"`
	Type    string   `json:"type"`
	Ask     string   `json:"ask,omitempty"`
	Say     string   `json:"say,omitempty"`
	Text    string   `json:"text"`
	Images  []string `json:"images,omitempty"`
	Partial bool     `json:"partial,omitempty"`

	// NoText marks a record whose text is absent or null, as opposed to "".
	NoText bool `json:"-"`

	raw json.RawMessage
}

type clineMessageFields ClineMessage

// UnmarshalJSON implements json.Unmarshaler.
func (m *ClineMessage) UnmarshalJSON(data []byte) error {
	var fields clineMessageFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*m = ClineMessage(fields)
	text := gjson.GetBytes(data, "text")
	m.NoText = !text.Exists() || text.Type == gjson.Null
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m ClineMessage) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	if m.NoText {
		return json.Marshal(struct {
			clineMessageFields
			Text *string `json:"text,omitempty"`
		}{clineMessageFields: clineMessageFields(m)})
	}
	return json.Marshal(clineMessageFields(m))
}

// EventRole tags a log entry with the part it plays in a browser session.
type EventRole int

const (
	// EventRoleOther covers every entry that is not one of the roles below.
	// These entries belong to the state being collected.
	EventRoleOther EventRole = iota
	// EventRoleLaunch starts a browser session.
	EventRoleLaunch
	// EventRoleResult carries a snapshot of the browser after an action.
	EventRoleResult
	// EventRoleIntermediateAction leads to the next result (requests, narration, actions).
	EventRoleIntermediateAction
)

// String implements fmt.Stringer.
func (r EventRole) String() string {
	switch r {
	case EventRoleLaunch:
		return "launch"
	case EventRoleResult:
		return "result"
	case EventRoleIntermediateAction:
		return "intermediate-action"
	case EventRoleOther:
		return "other"
	default:
		return "unknown"
	}
}

// Role classifies the message. A launch may arrive as either an ask or a say.
func (m ClineMessage) Role() EventRole {
	switch {
	case m.Ask == AskBrowserActionLaunch || m.Say == SayBrowserActionLaunch:
		return EventRoleLaunch
	case m.Say == SayBrowserActionResult:
		return EventRoleResult
	case m.Say == SayAPIReqStarted, m.Say == SayText, m.Say == SayBrowserAction:
		return EventRoleIntermediateAction
	default:
		return EventRoleOther
	}
}

// IsSessionStartSentinel reports whether the message is the empty result that
// signals the browser session has started. A result without any text is not.
func (m ClineMessage) IsSessionStartSentinel() bool {
	return m.Role() == EventRoleResult && !m.NoText && m.Text == ""
}

// ResultPayload returns the snapshot JSON of a result; a missing text reads as
// an empty object.
func (m ClineMessage) ResultPayload() string {
	if m.NoText {
		return "{}"
	}
	return m.Text
}
