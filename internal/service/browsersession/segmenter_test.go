package browsersession

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/arafatkatze/cline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotURL(url string) model.BrowserActionResult {
	return model.BrowserActionResult{CurrentURL: url}
}

func TestSegment_LaunchSentinelResult(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://a").
		SessionStarted().
		ResultRaw(`{"currentUrl":"http://a"}`).
		Build()

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 1)

	page := pages[0]
	assert.Equal(t, "http://a", page.CurrentState.URL)
	assert.Nil(t, page.NextAction)
	require.Len(t, page.CurrentState.Messages, 2)
	assert.Equal(t, log[0], page.CurrentState.Messages[0])
	assert.Equal(t, log[2], page.CurrentState.Messages[1])
	assert.True(t, page.Complete())
}

func TestSegment_ResultWithoutTextIsNotSentinel(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://a").
		SessionStarted().
		ResultWithoutText().
		Build()

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 1)

	page := pages[0]
	assert.True(t, page.Complete())
	assert.Equal(t, []model.ClineMessage{log[0], log[2]}, page.CurrentState.Messages)
	assert.Empty(t, page.CurrentState.URL)
	assert.Empty(t, page.CurrentState.Screenshot)
}

func TestSegment_DecodedResultWithoutText(t *testing.T) {
	t.Parallel()

	raw := `[
		{"ts":1,"type":"ask","ask":"browser_action_launch","text":"http://a"},
		{"ts":2,"type":"say","say":"browser_action_result","text":""},
		{"ts":3,"type":"say","say":"browser_action_result"}
	]`
	var log []model.ClineMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &log))

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.True(t, pages[0].Complete())
	assert.Len(t, pages[0].CurrentState.Messages, 2)
}

func TestSegment_ActionsAttachToFollowingPage(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://a").
		Text("hi").
		Result(snapshotURL("b")).
		Action("click", "10,20").
		Result(snapshotURL("c")).
		Build()

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "b", pages[0].CurrentState.URL)
	require.NotNil(t, pages[0].NextAction)
	assert.Equal(t, []model.ClineMessage{log[1]}, pages[0].NextAction.Messages)

	assert.Equal(t, "c", pages[1].CurrentState.URL)
	require.NotNil(t, pages[1].NextAction)
	assert.Equal(t, []model.ClineMessage{log[3]}, pages[1].NextAction.Messages)
	assert.Equal(t, []model.ClineMessage{log[4]}, pages[1].CurrentState.Messages)
}

func TestSegment_ParsesAllSnapshotFields(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("https://example.com").
		Result(model.BrowserActionResult{
			CurrentURL:           "https://example.com/home",
			Screenshot:           "data:image/webp;base64,AAAA",
			CurrentMousePosition: "400,300",
			Logs:                 "console.log: ready",
		}).
		Build()

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 1)

	st := pages[0].CurrentState
	assert.Equal(t, "https://example.com/home", st.URL)
	assert.Equal(t, "data:image/webp;base64,AAAA", st.Screenshot)
	assert.Equal(t, "400,300", st.MousePosition)
	assert.Equal(t, "console.log: ready", st.ConsoleLogs)
}

func TestSegment_TrailingIncompletePage(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://a").
		Result(snapshotURL("http://a")).
		APIRequest().
		Action("scroll_down", "").
		Build()

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 2)

	last := pages[1]
	assert.False(t, last.Complete())
	assert.Empty(t, last.CurrentState.URL)
	assert.NotNil(t, last.CurrentState.Messages)
	assert.Empty(t, last.CurrentState.Messages)
	require.NotNil(t, last.NextAction)
	assert.Equal(t, log[2:], last.NextAction.Messages)
}

func TestSegment_OtherMessagesJoinState(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://a").
		Say("error", "something odd").
		Result(snapshotURL("http://a")).
		Build()

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, log, pages[0].CurrentState.Messages)
}

func TestSegment_RelaunchKeepsPendingActions(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://a").
		Say("error", "dropped with the first launch").
		Text("retrying").
		Launch("http://b").
		Result(snapshotURL("http://b")).
		Build()

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, []model.ClineMessage{log[3], log[4]}, pages[0].CurrentState.Messages)
	require.NotNil(t, pages[0].NextAction)
	assert.Equal(t, []model.ClineMessage{log[2]}, pages[0].NextAction.Messages)
}

func TestSegment_Empty(t *testing.T) {
	t.Parallel()

	pages, err := Segment(nil, SegmentOptions{})
	require.NoError(t, err)
	assert.NotNil(t, pages)
	assert.Empty(t, pages)

	pages, err = Segment(testutil.NewLog().SessionStarted().Build(), SegmentOptions{})
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestSegment_MalformedResult(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://a").
		Result(snapshotURL("http://a")).
		Text("next").
		ResultRaw(`{"currentUrl": "http://b"`).
		Build()

	t.Run("strict fails the pass", func(t *testing.T) {
		t.Parallel()

		pages, err := Segment(log, SegmentOptions{})
		require.Error(t, err)
		assert.Nil(t, pages)
		assert.True(t, errors.Is(err, ErrMalformedResult))

		var malformed *MalformedResultError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 3, malformed.Index)
	})

	t.Run("lenient keeps an unknown-state page", func(t *testing.T) {
		t.Parallel()

		pages, err := Segment(log, SegmentOptions{Lenient: true})
		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.False(t, pages[1].CurrentState.HasKnownState())
		assert.Equal(t, []model.ClineMessage{log[3]}, pages[1].CurrentState.Messages)
		require.NotNil(t, pages[1].NextAction)
		assert.Equal(t, []model.ClineMessage{log[2]}, pages[1].NextAction.Messages)
	})
}

func TestSegment_PagesDoNotAliasEachOther(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://a").
		Result(snapshotURL("1")).
		Text("a").
		Result(snapshotURL("2")).
		Build()

	pages, err := Segment(log, SegmentOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 2)

	pages[0].CurrentState.Messages[0].Text = "mutated"
	assert.Equal(t, "http://a", log[0].Text)
	assert.Equal(t, model.SayBrowserActionResult, pages[1].CurrentState.Messages[0].Say)
}

// Every message except the session-start sentinel lands in exactly one page
// buffer, and each buffer keeps log order.
func TestSegment_RoundTrip(t *testing.T) {
	t.Parallel()

	logs := map[string][]model.ClineMessage{
		"single page": testutil.NewLog().
			Launch("http://a").SessionStarted().Result(snapshotURL("http://a")).Build(),
		"many steps": testutil.NewLog().
			Launch("http://a").SessionStarted().Result(snapshotURL("http://a")).
			APIRequest().Text("clicking").Action("click", "1,1").Say("error", "warn").
			Result(snapshotURL("http://a/next")).
			APIRequest().Action("type", "").Result(snapshotURL("http://a/form")).
			APIRequest().Text("closing").Build(),
		"lenient malformed": testutil.NewLog().
			Launch("http://a").ResultRaw("not json").Text("x").Build(),
	}

	for name, log := range logs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pages, err := Segment(log, SegmentOptions{Lenient: true})
			require.NoError(t, err)

			var got []model.ClineMessage
			for _, p := range pages {
				assertOrdered(t, p.CurrentState.Messages)
				got = append(got, p.CurrentState.Messages...)
				if p.NextAction != nil {
					require.NotEmpty(t, p.NextAction.Messages)
					assertOrdered(t, p.NextAction.Messages)
					got = append(got, p.NextAction.Messages...)
				}
			}
			sort.Slice(got, func(i, j int) bool { return got[i].TS < got[j].TS })

			var want []model.ClineMessage
			for _, m := range log {
				if !m.IsSessionStartSentinel() {
					want = append(want, m)
				}
			}
			assert.Equal(t, want, got)
		})
	}
}

func assertOrdered(t *testing.T, msgs []model.ClineMessage) {
	t.Helper()
	for i := 1; i < len(msgs); i++ {
		assert.Less(t, msgs[i-1].TS, msgs[i].TS)
	}
}

func TestParseResult(t *testing.T) {
	t.Parallel()

	got, err := ParseResult(`{"currentUrl":"https://x.test","screenshot":7,"logs":"ok","extra":true}`)
	require.NoError(t, err)
	assert.Equal(t, model.BrowserActionResult{CurrentURL: "https://x.test", Logs: "ok"}, got)

	got, err = ParseResult(`{}`)
	require.NoError(t, err)
	assert.Equal(t, model.BrowserActionResult{}, got)

	_, err = ParseResult(`{"currentUrl":`)
	assert.Error(t, err)
}
