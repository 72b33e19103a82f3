package testutil

import "github.com/arafatkatze/cline/internal/domain/model"

// LogBuilder assembles a chat log with increasing timestamps.
type LogBuilder struct {
	msgs []model.ClineMessage
	ts   int64
}

// NewLog starts an empty log.
func NewLog() *LogBuilder {
	return &LogBuilder{ts: TestTime().UnixMilli()}
}

func (b *LogBuilder) add(msg model.ClineMessage) *LogBuilder {
	b.ts++
	msg.TS = b.ts
	b.msgs = append(b.msgs, msg)
	return b
}

// Say appends a say message.
func (b *LogBuilder) Say(say, text string) *LogBuilder {
	return b.add(model.ClineMessage{Type: model.MessageTypeSay, Say: say, Text: text})
}

// Ask appends an ask message.
func (b *LogBuilder) Ask(ask, text string) *LogBuilder {
	return b.add(model.ClineMessage{Type: model.MessageTypeAsk, Ask: ask, Text: text})
}

// Launch appends the launch request for url.
func (b *LogBuilder) Launch(url string) *LogBuilder {
	return b.Ask(model.AskBrowserActionLaunch, url)
}

// SessionStarted appends the empty result that marks the session start.
func (b *LogBuilder) SessionStarted() *LogBuilder {
	return b.Say(model.SayBrowserActionResult, "")
}

// Result appends a result carrying snapshot.
func (b *LogBuilder) Result(snapshot model.BrowserActionResult) *LogBuilder {
	return b.Say(model.SayBrowserActionResult, MustJSON(snapshot))
}

// ResultWithoutText appends a result record that has no text field.
func (b *LogBuilder) ResultWithoutText() *LogBuilder {
	return b.add(model.ClineMessage{
		Type:   model.MessageTypeSay,
		Say:    model.SayBrowserActionResult,
		NoText: true,
	})
}

// ResultRaw appends a result with a verbatim payload.
func (b *LogBuilder) ResultRaw(text string) *LogBuilder {
	return b.Say(model.SayBrowserActionResult, text)
}

// Text appends assistant narration.
func (b *LogBuilder) Text(text string) *LogBuilder {
	return b.Say(model.SayText, text)
}

// APIRequest appends an api_req_started message.
func (b *LogBuilder) APIRequest() *LogBuilder {
	return b.Say(model.SayAPIReqStarted, `{"request":"..."}`)
}

// Action appends a browser_action message, e.g. Action("click", "200,300").
func (b *LogBuilder) Action(action, coordinate string) *LogBuilder {
	return b.Say(model.SayBrowserAction, MustJSON(map[string]string{
		"action":     action,
		"coordinate": coordinate,
	}))
}

// Build returns a copy of the log.
func (b *LogBuilder) Build() []model.ClineMessage {
	out := make([]model.ClineMessage, len(b.msgs))
	copy(out, b.msgs)
	return out
}
