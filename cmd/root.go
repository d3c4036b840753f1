package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gnolang/scryer/formatter"
	"github.com/gnolang/scryer/query"
	"github.com/gnolang/scryer/scan"
)

const defaultTimeout = 5 * time.Minute

var (
	rootDir     string
	cfgFile     string
	language    string
	extensions  []string
	grammarDirs []string
	excludes    []string
	noIgnore    bool
	hidden      bool
	strict      bool
	noColor     bool
	verbose     bool
	timeout     time.Duration

	// query flags, shared by the root and watch commands
	queryText  string
	jsonOutput bool
	dumpTree   bool
	maxSteps   int
	progress   bool
	stats      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scryer -q QUERY [-r ROOT]",
	Short: "scryer - structural queries over source trees",
	Long: `scryer parses every source file under a directory and prints the nodes
captured by a tree query.

Example) scryer -r src -q '(call args: (expr_args _* (atom)@atomo _*))'`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return runQuery(ctx, cmd)
	},
}

// Execute runs the command line and returns the error that ended it.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "error:", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootDir, "root", "r", ".", "Directory to scan")
	pf.StringVarP(&cfgFile, "config", "c", scan.DefaultConfigFile, "Configuration file (.yaml or .toml)")
	pf.StringVar(&language, "language", "", "Grammar to parse with (default from config: erlang)")
	pf.StringSliceVar(&extensions, "ext", nil, "File extension to scan, repeatable (default from config: .erl)")
	pf.StringSliceVar(&grammarDirs, "grammar-dir", nil, "Trusted directory holding grammar libraries, repeatable")
	pf.StringSliceVar(&excludes, "exclude", nil, "Glob of paths to skip, repeatable")
	pf.BoolVar(&noIgnore, "no-ignore", false, "Do not honor .gitignore and .ignore files")
	pf.BoolVar(&hidden, "hidden", false, "Also scan hidden files and directories")
	pf.BoolVar(&strict, "strict", false, "Skip files whose tree contains syntax errors")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for the scan")

	addQueryFlags(rootCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(watchCmd)
}

func addQueryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&queryText, "query", "q", "", "Tree query to run (required)")
	f.BoolVar(&jsonOutput, "json", false, "Output matches as JSON lines")
	f.BoolVar(&dumpTree, "dump-tree", false, "Print the whole tree of each file before its matches")
	f.IntVar(&maxSteps, "max-steps", 0, "Search step budget per file, 0 for unlimited (default from config)")
	f.BoolVar(&progress, "progress", false, "Show a progress bar on stderr")
	f.BoolVar(&stats, "stats", false, "Print a summary on stderr")
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	if noColor {
		color.NoColor = true
	}
	logger = newLogger(cmd.ErrOrStderr(), verbose)
	return nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if noColor || color.NoColor {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level)
	return zap.New(core)
}

// compileQuery compiles the query flag before any file is touched.
func compileQuery() (*query.Pattern, error) {
	if queryText == "" {
		return nil, errors.New("a query is required (-q)")
	}
	pattern, err := query.Compile(queryText)
	if err != nil {
		var ce *query.CompileError
		if errors.As(err, &ce) {
			return nil, fmt.Errorf("%w\n%s", err, ce.Snippet())
		}
		return nil, err
	}
	logger.Debug("Query compiled", zap.Stringer("pattern", pattern), zap.Strings("captures", pattern.CaptureNames()))
	return pattern, nil
}

func runQuery(ctx context.Context, cmd *cobra.Command) error {
	pattern, err := compileQuery()
	if err != nil {
		return err
	}

	env, err := newEnvironment(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	format := formatter.Text
	if jsonOutput {
		format = formatter.JSON
	}
	reporter := formatter.New(cmd.OutOrStdout(), format)
	scanner := scan.New(logger, pattern, env.parser, reporter, env.scanOptions(cmd)...)

	if err := scanner.Run(ctx, env.files); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("scan timed out after %s", timeout)
		}
		return err
	}

	if stats {
		return reporter.Summary().Write(cmd.ErrOrStderr())
	}
	return nil
}
