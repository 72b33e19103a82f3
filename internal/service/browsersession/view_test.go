package browsersession

import (
	"testing"

	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/arafatkatze/cline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestView(t *testing.T, messages []model.ClineMessage) *View {
	t.Helper()
	v, err := NewView(messages, model.DefaultBrowserSettings(), SegmentOptions{})
	require.NoError(t, err)
	return v
}

func TestInitialURL(t *testing.T) {
	t.Parallel()

	assert.Empty(t, InitialURL(nil))
	assert.Empty(t, InitialURL(testutil.NewLog().Text("no launch").Build()))

	log := testutil.NewLog().
		Text("first").
		Launch("https://first.test").
		Launch("https://second.test").
		Build()
	assert.Equal(t, "https://first.test", InitialURL(log))
}

func TestLatestState(t *testing.T) {
	t.Parallel()

	pages := []model.BrowserPage{
		{CurrentState: model.PageState{URL: "old", MousePosition: "1,1"}},
		{CurrentState: model.PageState{Screenshot: "shot", ConsoleLogs: "log",
			Messages: []model.ClineMessage{{Say: model.SayBrowserActionResult}}}},
		{CurrentState: model.PageState{MousePosition: "9,9"}},
	}

	got := LatestState(pages)
	assert.Equal(t, model.PageState{Screenshot: "shot", ConsoleLogs: "log"}, got)
	assert.Equal(t, model.PageState{}, LatestState(nil))
}

func TestDefaultMousePosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		width, height int
		want          string
	}{
		{900, 600, "630,300"},
		{900, 601, "630,300.5"},
		{1000, 1000, "700,500"},
	}
	for _, tt := range tests {
		settings := model.BrowserSettings{Viewport: model.Viewport{Width: tt.width, Height: tt.height}}
		assert.Equal(t, tt.want, DefaultMousePosition(settings))
	}
}

func TestView_FrontierFallsBackToLatestState(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("https://start.test").
		Result(model.BrowserActionResult{
			CurrentURL:           "https://www.example.co.uk/a",
			Screenshot:           "shot-a",
			CurrentMousePosition: "10,10",
			Logs:                 "loaded",
		}).
		Action("click", "10,10").
		Build()

	v := newTestView(t, log)
	require.Equal(t, 2, v.PageCount())
	require.Equal(t, 1, v.LastIndex())

	ds := v.DisplayState(1)
	assert.Equal(t, model.DisplayState{
		URL:           "https://www.example.co.uk/a",
		Screenshot:    "shot-a",
		MousePosition: "10,10",
		ConsoleLogs:   "loaded",
		Site:          "example.co.uk",
	}, ds)
}

func TestView_EarlierPagesIgnoreLatestState(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("http://localhost:3000").
		ResultRaw(`{"logs":"booting"}`).
		Text("continue").
		Result(model.BrowserActionResult{CurrentURL: "https://later.test", Screenshot: "later"}).
		Build()

	v := newTestView(t, log)
	require.Equal(t, 2, v.PageCount())

	first := v.DisplayState(0)
	assert.Equal(t, "http://localhost:3000", first.URL)
	assert.Equal(t, "630,300", first.MousePosition)
	assert.Equal(t, "booting", first.ConsoleLogs)
	assert.Empty(t, first.Screenshot)
	assert.Equal(t, "localhost", first.Site)

	last := v.DisplayState(1)
	assert.Equal(t, "https://later.test", last.URL)
	assert.Equal(t, "later", last.Screenshot)
	assert.Equal(t, "630,300", last.MousePosition)
}

func TestView_FrontierWithoutAnySnapshot(t *testing.T) {
	t.Parallel()

	v := newTestView(t, testutil.NewLog().Launch("https://start.test").Build())
	require.Equal(t, 1, v.PageCount())

	ds := v.DisplayState(0)
	assert.Equal(t, "https://start.test", ds.URL)
	assert.Equal(t, "630,300", ds.MousePosition)
	assert.Empty(t, ds.Screenshot)
	assert.Empty(t, ds.ConsoleLogs)
}

func TestView_NoPages(t *testing.T) {
	t.Parallel()

	v := newTestView(t, nil)
	assert.Equal(t, 0, v.PageCount())
	assert.Equal(t, -1, v.LastIndex())
	assert.True(t, v.IsLastPage(-1))

	_, ok := v.CurrentPage(-1)
	assert.False(t, ok)

	ds := v.DisplayState(-1)
	assert.Empty(t, ds.URL)
	assert.Equal(t, "630,300", ds.MousePosition)

	st := v.StateAt(v.LastIndex())
	assert.Nil(t, st.CurrentPage)
	assert.True(t, st.IsLastPage)
	assert.Equal(t, -1, st.CurrentPageIndex)
	assert.Empty(t, st.Pages)
}

func TestView_StateAt(t *testing.T) {
	t.Parallel()

	log := testutil.NewLog().
		Launch("https://a.test").
		Result(model.BrowserActionResult{CurrentURL: "https://a.test/1"}).
		Text("next").
		Result(model.BrowserActionResult{CurrentURL: "https://a.test/2"}).
		Build()
	v := newTestView(t, log)

	st := v.StateAt(0)
	require.NotNil(t, st.CurrentPage)
	assert.Equal(t, "https://a.test/1", st.CurrentPage.CurrentState.URL)
	assert.False(t, st.IsLastPage)
	assert.Equal(t, "https://a.test", st.InitialURL)
	assert.Len(t, st.Pages, 2)
	assert.Equal(t, "a.test", st.DisplayState.Site)
}

func TestSiteOf(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                                 "",
		"https://www.example.co.uk/path":   "example.co.uk",
		"https://docs.python.org/3":        "python.org",
		"example.com/page":                 "example.com",
		"http://localhost:3000":            "localhost",
		"http://127.0.0.1:8080/index.html": "127.0.0.1",
		"http://[::1]:9000/":               "::1",
		"HTTPS://API.Example.COM":          "example.com",
	}
	for in, want := range tests {
		assert.Equal(t, want, SiteOf(in), "SiteOf(%q)", in)
	}
}
