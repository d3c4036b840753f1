// Package scan drives a query over the files of a project: each file is
// read, parsed, matched and reported on its own, and a file that cannot be
// read or parsed is logged and skipped without stopping the run.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/scryer/match"
	"github.com/gnolang/scryer/query"
	"github.com/gnolang/scryer/syntax"
)

// ErrFileRead is wrapped by the FileError of files that cannot be read.
var ErrFileRead = errors.New("file read failed")

// FileError is the failure of one file. Op is "read", "parse", "match" or
// "report".
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Parser builds the syntax tree of a source file.
type Parser interface {
	Parse(source []byte) (syntax.Node, error)
}

// Reporter receives the matches of each file.
type Reporter interface {
	BeginFile(path string, source []byte)
	Report(m *match.Match) error
	EndFile() error
	Failed()
}

type Scanner struct {
	logger   *zap.Logger
	pattern  *query.Pattern
	parser   Parser
	reporter Reporter

	maxSteps int
	treeOut  io.Writer
	progress io.Writer
	readFile func(string) ([]byte, error)
}

type Option func(*Scanner)

// WithMaxSteps bounds the match search of each file.
func WithMaxSteps(n int) Option {
	return func(s *Scanner) {
		s.maxSteps = n
	}
}

// WithTreeDump prints the whole tree of every file to w before its matches.
func WithTreeDump(w io.Writer) Option {
	return func(s *Scanner) {
		s.treeOut = w
	}
}

// WithProgress draws a progress bar on w.
func WithProgress(w io.Writer) Option {
	return func(s *Scanner) {
		s.progress = w
	}
}

// New creates a Scanner running pattern over the files it is given. pattern
// may be nil for scanners that only print trees.
func New(logger *zap.Logger, pattern *query.Pattern, parser Parser, reporter Reporter, opts ...Option) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scanner{
		logger:   logger,
		pattern:  pattern,
		parser:   parser,
		reporter: reporter,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes files in order with ProcessFile.
func (s *Scanner) Run(ctx context.Context, files []string) error {
	return s.RunFunc(ctx, files, s.ProcessFile)
}

// RunFunc calls processor for each file in order. Failures of single files
// are logged and counted; only cancellation of ctx stops the run.
func (s *Scanner) RunFunc(ctx context.Context, files []string, processor func(path string) error) error {
	var bar *progressbar.ProgressBar
	if s.progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		defer bar.Finish()
	}

	for _, path := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := processor(path); err != nil {
			s.logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
			if s.reporter != nil {
				s.reporter.Failed()
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return nil
}

// ProcessFile reads, parses and matches one file and reports its matches.
// Matches found before a search budget failure are still reported.
func (s *Scanner) ProcessFile(path string) error {
	source, root, err := s.load(path)
	if err != nil {
		return err
	}
	if s.treeOut != nil {
		if _, err := fmt.Fprintf(s.treeOut, "whole tree:\n  %s\n", syntax.Sexp(root)); err != nil {
			return &FileError{Path: path, Op: "report", Err: err}
		}
	}

	s.reporter.BeginFile(path, source)
	cursor := match.Matches(s.pattern, root, match.WithMaxSteps(s.maxSteps))
	count := 0
	for cursor.Next() {
		count++
		if err := s.reporter.Report(cursor.Match()); err != nil {
			return &FileError{Path: path, Op: "report", Err: err}
		}
	}
	if err := s.reporter.EndFile(); err != nil {
		return &FileError{Path: path, Op: "report", Err: err}
	}

	s.logger.Debug("File processed",
		zap.String("file", path),
		zap.Int("matches", count),
		zap.Int("steps", cursor.Steps()))

	if err := cursor.Err(); err != nil {
		return &FileError{Path: path, Op: "match", Err: err}
	}
	return nil
}

// PrintTree returns a processor writing the tree of each file to w.
func (s *Scanner) PrintTree(w io.Writer) func(path string) error {
	return func(path string) error {
		_, root, err := s.load(path)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s:\n  %s\n", path, syntax.Sexp(root)); err != nil {
			return &FileError{Path: path, Op: "report", Err: err}
		}
		return nil
	}
}

func (s *Scanner) load(path string) ([]byte, syntax.Node, error) {
	source, err := s.readFile(path)
	if err != nil {
		return nil, nil, &FileError{Path: path, Op: "read", Err: fmt.Errorf("%w: %w", ErrFileRead, err)}
	}
	root, err := s.parser.Parse(source)
	if err != nil {
		return nil, nil, &FileError{Path: path, Op: "parse", Err: err}
	}
	return source, root, nil
}
