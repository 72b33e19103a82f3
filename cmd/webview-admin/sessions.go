package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/arafatkatze/cline/internal/domain/model"
	"github.com/arafatkatze/cline/internal/service/browsersession"
)

type sessionPagesOptions struct {
	File    string
	Lenient bool
	Width   int
	Height  int
	JSON    bool
}

func parseSessionPagesFlags(args []string, defaults model.BrowserSettings) (sessionPagesOptions, error) {
	fs := flag.NewFlagSet("session-pages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := sessionPagesOptions{Width: defaults.Viewport.Width, Height: defaults.Viewport.Height}
	fs.StringVar(&opts.File, "file", "", "Path to ui_messages.json (\"-\" reads stdin)")
	fs.BoolVar(&opts.Lenient, "lenient", false, "Keep going past malformed browser_action_result payloads")
	fs.IntVar(&opts.Width, "width", opts.Width, "Viewport width")
	fs.IntVar(&opts.Height, "height", opts.Height, "Viewport height")
	fs.BoolVar(&opts.JSON, "json", false, "Print the full session state as JSON")

	if err := fs.Parse(args); err != nil {
		return sessionPagesOptions{}, err
	}

	opts.File = strings.TrimSpace(opts.File)
	if opts.File == "" {
		return sessionPagesOptions{}, errors.New("--file is required")
	}
	return opts, nil
}

func runSessionPages(cmdCtx *commandContext, args []string) error {
	defaults := model.BrowserSettings{Viewport: model.Viewport{
		Width:  cmdCtx.Config.Browser.ViewportWidth,
		Height: cmdCtx.Config.Browser.ViewportHeight,
	}}
	opts, err := parseSessionPagesFlags(args, defaults)
	if err != nil {
		return err
	}

	messages, err := readMessages(cmdCtx, opts.File)
	if err != nil {
		return err
	}

	settings := model.BrowserSettings{Viewport: model.Viewport{Width: opts.Width, Height: opts.Height}}
	if err := settings.Validate(); err != nil {
		return err
	}

	view, err := browsersession.NewView(messages, settings, browsersession.SegmentOptions{Lenient: opts.Lenient})
	if err != nil {
		return fmt.Errorf("segment %s: %w", opts.File, err)
	}
	if view.PageCount() == 0 {
		return fmt.Errorf("%s: %w", opts.File, model.ErrNoPages)
	}

	state := view.StateAt(view.LastIndex())
	if opts.JSON {
		enc := json.NewEncoder(cmdCtx.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			return fmt.Errorf("encode session state: %w", err)
		}
		return nil
	}

	if err := renderPagesTable(cmdCtx.Stdout, view.Pages()); err != nil {
		return err
	}
	return renderDisplayState(cmdCtx.Stdout, view.InitialURL(), state.DisplayState)
}

func readMessages(cmdCtx *commandContext, path string) ([]model.ClineMessage, error) {
	var r io.Reader
	if path == "-" {
		r = cmdCtx.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open chat log: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				cmdCtx.Logger.Warn("close chat log failed", "error", cerr)
			}
		}()
		r = f
	}

	var messages []model.ClineMessage
	if err := json.NewDecoder(r).Decode(&messages); err != nil {
		return nil, fmt.Errorf("decode chat log: %w", err)
	}
	return messages, nil
}

func renderPagesTable(w io.Writer, pages []model.BrowserPage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "INDEX\tURL\tSCREENSHOT\tSTATE MSGS\tACTION MSGS\tCOMPLETE"); err != nil {
		return fmt.Errorf("write pages header row: %w", err)
	}

	for i, page := range pages {
		actions := 0
		if page.NextAction != nil {
			actions = len(page.NextAction.Messages)
		}
		if err := writef(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			i,
			orDash(page.CurrentState.URL),
			yesNo(page.CurrentState.Screenshot != ""),
			len(page.CurrentState.Messages),
			actions,
			yesNo(page.Complete()),
		); err != nil {
			return fmt.Errorf("write page row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush pages table: %w", err)
	}
	return nil
}

func renderDisplayState(w io.Writer, initialURL string, ds model.DisplayState) error {
	lines := []struct{ label, value string }{
		{"Initial URL", orDash(initialURL)},
		{"URL", orDash(ds.URL)},
		{"Site", orDash(ds.Site)},
		{"Mouse", ds.MousePosition},
		{"Screenshot", yesNo(ds.Screenshot != "")},
		{"Console logs", orDash(firstLine(ds.ConsoleLogs))},
	}
	if err := writef(w, "\nDisplay state (last page)\n"); err != nil {
		return fmt.Errorf("print display state header: %w", err)
	}
	for _, l := range lines {
		if err := writef(w, "  %-13s %s\n", l.label+":", l.value); err != nil {
			return fmt.Errorf("print display state: %w", err)
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
