package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/scryer/formatter"
	"github.com/gnolang/scryer/internal/sitter"
	"github.com/gnolang/scryer/match"
	"github.com/gnolang/scryer/query"
	"github.com/gnolang/scryer/syntax"
	"github.com/gnolang/scryer/syntax/syntaxtest"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type mockParser struct {
	mock.Mock
}

func (m *mockParser) Parse(source []byte) (syntax.Node, error) {
	args := m.Called(source)
	n, _ := args.Get(0).(syntax.Node)
	return n, args.Error(1)
}

func createTempFiles(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for _, name := range []string{"a.erl", "b.erl", "c.erl"} {
		content, ok := files[name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, map[string]string{"a.erl": syntaxtest.CallsSource})
	tree := syntaxtest.Tree(t, syntaxtest.CallsSource, syntaxtest.CallsSexp)

	parser := new(mockParser)
	parser.On("Parse", []byte(syntaxtest.CallsSource)).Return(tree, nil)

	var out bytes.Buffer
	s := New(zap.NewNop(), query.MustCompile("(call args: (expr_args _* (atom)@atomo _*))"),
		parser, formatter.New(&out, formatter.Text))

	require.NoError(t, s.ProcessFile(paths[0]))
	assert.Equal(t, paths[0]+":\n  atomo:\n    3: x\n  atomo:\n    4: x\n  atomo:\n    5: x\n", out.String())
	parser.AssertExpectations(t)
}

func TestRun_IsolatesFailures(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, map[string]string{
		"a.erl": "broken",
		"c.erl": syntaxtest.ModuleSource,
	})
	missing := filepath.Join(dir, "b.erl")
	files := []string{paths[0], missing, paths[1]}

	parser := new(mockParser)
	parser.On("Parse", []byte("broken")).Return(nil, sitter.ErrParseFailed)
	parser.On("Parse", []byte(syntaxtest.ModuleSource)).
		Return(syntaxtest.Tree(t, syntaxtest.ModuleSource, syntaxtest.ModuleSexp), nil)

	core, logs := observer.New(zapcore.DebugLevel)
	var out bytes.Buffer
	reporter := formatter.New(&out, formatter.Text)
	s := New(zap.New(core), query.MustCompile("(function_clause name: (atom)@fname)"), parser, reporter)

	require.NoError(t, s.Run(context.Background(), files))
	assert.Equal(t, paths[1]+":\n  fname:\n    2: foo\n", out.String())
	assert.Equal(t, formatter.Summary{Files: 1, MatchedFiles: 1, Matches: 1, FailedFiles: 2}, reporter.Summary())

	failures := logs.FilterMessage("Error processing file").All()
	require.Len(t, failures, 2)

	var fe *FileError
	err0, ok := failures[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, err0, "parse")
	assert.Equal(t, paths[0], failures[0].ContextMap()["file"])
	assert.Equal(t, missing, failures[1].ContextMap()["file"])

	err := s.ProcessFile(missing)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "read", fe.Op)
	assert.ErrorIs(t, err, ErrFileRead)
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = s.ProcessFile(paths[0])
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "parse", fe.Op)
	assert.ErrorIs(t, err, sitter.ErrParseFailed)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()
	parser := new(mockParser)
	s := New(nil, query.MustCompile("(_)"), parser, formatter.New(&bytes.Buffer{}, formatter.Text))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Run(ctx, []string{"a.erl"})
	assert.ErrorIs(t, err, context.Canceled)
	parser.AssertNotCalled(t, "Parse", mock.Anything)
}

func TestProcessFile_Budget(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, map[string]string{"a.erl": syntaxtest.CallsSource})

	parser := new(mockParser)
	parser.On("Parse", mock.Anything).Return(syntaxtest.Tree(t, syntaxtest.CallsSource, syntaxtest.CallsSexp), nil)

	var out bytes.Buffer
	s := New(nil, query.MustCompile("(_)"), parser, formatter.New(&out, formatter.JSON), WithMaxSteps(5))

	err := s.ProcessFile(paths[0])
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "match", fe.Op)
	assert.True(t, errors.Is(err, match.ErrBudgetExceeded))
	// the five matches found before the limit are still written
	assert.Equal(t, 5, bytes.Count(out.Bytes(), []byte(`"captures"`)))
}

func TestTreeOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, map[string]string{"a.erl": "x"})

	parser := new(mockParser)
	parser.On("Parse", []byte("x")).Return(syntaxtest.Tree(t, "x", `(source_file (atom "x"))`), nil)

	var dump, out bytes.Buffer
	s := New(nil, query.MustCompile("(nothing)"), parser, formatter.New(&out, formatter.Text), WithTreeDump(&dump))
	require.NoError(t, s.ProcessFile(paths[0]))
	assert.Equal(t, "whole tree:\n  (source_file (atom))\n", dump.String())
	assert.Empty(t, out.String())

	var trees bytes.Buffer
	tree := New(nil, nil, parser, nil)
	require.NoError(t, tree.RunFunc(context.Background(), paths, tree.PrintTree(&trees)))
	assert.Equal(t, paths[0]+":\n  (source_file (atom))\n", trees.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTreeOutput_WriteError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, map[string]string{"a.erl": "x"})

	parser := new(mockParser)
	parser.On("Parse", []byte("x")).Return(syntaxtest.Tree(t, "x", `(source_file (atom "x"))`), nil)

	var out bytes.Buffer
	s := New(nil, query.MustCompile("(atom)@a"), parser, formatter.New(&out, formatter.Text), WithTreeDump(failingWriter{}))
	err := s.ProcessFile(paths[0])
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "report", fe.Op)
	assert.Equal(t, paths[0], fe.Path)
	assert.Empty(t, out.String(), "matches are not reported after a failed dump")

	err = s.PrintTree(failingWriter{})(paths[0])
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "report", fe.Op)
}

func TestRun_Progress(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, map[string]string{"a.erl": "x", "b.erl": "x"})

	parser := new(mockParser)
	parser.On("Parse", mock.Anything).Return(syntax.NewNode("atom", syntax.Span{StartByte: 0, EndByte: 1}), nil)

	var out, progress bytes.Buffer
	s := New(nil, query.MustCompile("(atom)@a"), parser, formatter.New(&out, formatter.Text), WithProgress(&progress))
	require.NoError(t, s.Run(context.Background(), paths))

	assert.Contains(t, out.String(), paths[0]+":\n  a:\n    0: x\n")
	assert.Contains(t, out.String(), paths[1]+":\n")
	assert.NotEmpty(t, progress.String())
	parser.AssertNumberOfCalls(t, "Parse", 2)
}
