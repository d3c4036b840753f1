package formatter

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/scryer/match"
	"github.com/gnolang/scryer/query"
	"github.com/gnolang/scryer/syntax/syntaxtest"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func report(t *testing.T, r *Reporter, path, source, sexp, q string) {
	t.Helper()
	tree := syntaxtest.Tree(t, source, sexp)
	r.BeginFile(path, []byte(source))
	c := match.Matches(query.MustCompile(q), tree)
	for c.Next() {
		require.NoError(t, r.Report(c.Match()))
	}
	require.NoError(t, c.Err())
	require.NoError(t, r.EndFile())
}

func TestReporter_Text(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := New(&buf, Text)

	report(t, r, "src/bah.erl", syntaxtest.CallsSource, syntaxtest.CallsSexp,
		"(call args: (expr_args _* (atom)@atomo _*))")

	expected := `src/bah.erl:
  atomo:
    3: x
  atomo:
    4: x
  atomo:
    5: x
`
	assert.Equal(t, expected, buf.String())
}

func TestReporter_RepeatedLabel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := New(&buf, Text)

	report(t, r, "bah.erl", syntaxtest.ModuleSource, syntaxtest.ModuleSexp,
		"(function_clause name: (atom)@fname body: (clause_body exprs: (tuple expr: (_)@e expr: (_)@e)))")

	expected := `bah.erl:
  fname:
    2: foo
  e:
    2: ?A
    2: X + 1
`
	assert.Equal(t, expected, buf.String())
}

func TestReporter_NoMatchesNoOutput(t *testing.T) {
	t.Parallel()
	for _, format := range []Format{Text, JSON} {
		var buf bytes.Buffer
		r := New(&buf, format)
		report(t, r, "bah.erl", syntaxtest.ModuleSource, syntaxtest.ModuleSexp, "(call)")
		assert.Empty(t, buf.String(), format.String())

		s := r.Summary()
		assert.Equal(t, 1, s.Files)
		assert.Equal(t, 0, s.MatchedFiles)
		assert.Equal(t, 0, s.Matches)
	}
}

func TestReporter_HeaderOncePerFile(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := New(&buf, Text)

	report(t, r, "a.erl", syntaxtest.CallsSource, syntaxtest.CallsSexp, "(call expr: (atom)@f)")
	report(t, r, "b.erl", syntaxtest.ModuleSource, syntaxtest.ModuleSexp, "(call expr: (atom)@f)")
	report(t, r, "c.erl", syntaxtest.ModuleSource, syntaxtest.ModuleSexp, "(module_attribute name: (atom)@m)")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "a.erl:\n"))
	assert.NotContains(t, out, "b.erl")
	assert.Contains(t, out, "c.erl:\n  m:\n    0: bah\n")

	s := r.Summary()
	assert.Equal(t, Summary{Files: 3, MatchedFiles: 2, Matches: 4}, s)
}

func TestReporter_Placeholders(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := New(&buf, Text)

	source := "x"
	tree := syntaxtest.Tree(t, source, `(atom "x")`)
	ms, err := match.All(query.MustCompile("(atom)@a"), tree)
	require.NoError(t, err)
	require.Len(t, ms, 1)

	// the source handed to the reporter does not cover the node
	r.BeginFile("bad\xffname.erl", []byte{})
	require.NoError(t, r.Report(ms[0]))
	require.NoError(t, r.EndFile())

	assert.Equal(t, "⁉⁉⁉:\n  a:\n    0: ⁈⁈⁈\n", buf.String())
}

func TestReporter_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := New(&buf, JSON)

	report(t, r, "bah.erl", syntaxtest.CallsSource, syntaxtest.CallsSexp,
		"(call expr: (atom)@fn args: (expr_args (integer) (atom)@arg))")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)

	var got jsonFile
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "bah.erl", got.File)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, []jsonCapture{
		{Name: "fn", Kind: "atom", Text: "bah", Start: jsonPoint{5, 2}, End: jsonPoint{5, 5}},
		{Name: "arg", Kind: "atom", Text: "x", Start: jsonPoint{5, 9}, End: jsonPoint{5, 10}},
	}, got.Matches[0].Captures)
}

func TestSummary_Write(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Summary{Files: 4, MatchedFiles: 2, Matches: 7, FailedFiles: 1}.Write(&buf))
	assert.Equal(t, "4 files scanned, 2 matched, 7 matches, 1 failed\n", buf.String())
}
