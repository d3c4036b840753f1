package formatter

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/gnolang/scryer/match"
	"github.com/gnolang/scryer/syntax"
)

// PathPlaceholder is printed in place of a file path that is not valid text.
const PathPlaceholder = "⁉⁉⁉"

var (
	fileStyle  = color.New(color.FgCyan, color.Bold)
	labelStyle = color.New(color.FgYellow, color.Bold)
	lineStyle  = color.New(color.FgHiBlue, color.Bold)
	noStyle    = color.New(color.FgWhite)
)

// Format selects the output encoding of a Reporter.
type Format int

const (
	Text Format = iota
	JSON
)

func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// Reporter prints the matches of one file at a time.
//
// Output for a file is only produced once its first match is reported, so
// files without matches leave no trace.
type Reporter struct {
	w      io.Writer
	format Format

	path    string
	source  []byte
	started bool
	pending []jsonMatch

	summary Summary
}

// New creates a Reporter writing to w.
func New(w io.Writer, format Format) *Reporter {
	return &Reporter{w: w, format: format}
}

// BeginFile starts the output of a file. source is the text the matches of
// the file were computed over.
func (r *Reporter) BeginFile(path string, source []byte) {
	r.path = path
	r.source = source
	r.started = false
	r.pending = r.pending[:0]
	r.summary.Files++
}

// Report prints one match of the current file.
func (r *Reporter) Report(m *match.Match) error {
	r.summary.Matches++
	if !r.started {
		r.started = true
		r.summary.MatchedFiles++
		if r.format == Text {
			if _, err := fileStyle.Fprintf(r.w, "%s:\n", displayPath(r.path)); err != nil {
				return err
			}
		}
	}

	if r.format == JSON {
		r.pending = append(r.pending, r.jsonMatch(m))
		return nil
	}

	for _, g := range m.Groups() {
		if _, err := fmt.Fprintf(r.w, "  %s\n", labelStyle.Sprintf("%s:", g.Name)); err != nil {
			return err
		}
		for _, n := range g.Nodes {
			row := lineStyle.Sprintf("%d:", n.Span().Start.Row)
			text := noStyle.Sprint(syntax.TextOrPlaceholder(n, r.source))
			if _, err := fmt.Fprintf(r.w, "    %s %s\n", row, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// EndFile finishes the current file. For JSON output the file's record is
// written here.
func (r *Reporter) EndFile() error {
	defer func() {
		r.source = nil
		r.pending = r.pending[:0]
	}()
	if r.format != JSON || !r.started {
		return nil
	}
	return r.writeJSON()
}

// Failed records a file that could not be processed.
func (r *Reporter) Failed() { r.summary.FailedFiles++ }

// Summary returns the counters accumulated so far.
func (r *Reporter) Summary() Summary { return r.summary }

func displayPath(path string) string {
	if !utf8.ValidString(path) {
		return PathPlaceholder
	}
	return path
}
