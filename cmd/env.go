package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/scryer/internal/sitter"
	"github.com/gnolang/scryer/internal/walk"
	"github.com/gnolang/scryer/scan"
)

// environment is everything a command needs before the first file is read.
type environment struct {
	config scan.Config
	loader *sitter.Loader
	parser *sitter.Parser
	walker *walk.Walker
	files  []string
}

// loadConfig reads the configuration file and applies the flags the user
// set on top of it. A missing default file is not an error.
func loadConfig(cmd *cobra.Command) (scan.Config, error) {
	config, err := scan.LoadConfig(cfgFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return config, fmt.Errorf("loading configuration: %w", err)
		}
		config = scan.DefaultConfig()
	} else {
		logger.Debug("Configuration loaded", zap.String("path", cfgFile))
	}

	flags := cmd.Flags()
	if flags.Changed("language") {
		config.Language = language
	}
	if flags.Changed("ext") {
		config.Extensions = extensions
	}
	if flags.Changed("grammar-dir") {
		config.GrammarDirs = append(config.GrammarDirs, grammarDirs...)
	}
	if flags.Changed("exclude") {
		config.Exclude = append(config.Exclude, excludes...)
	}
	if flags.Changed("no-ignore") {
		config.NoIgnore = noIgnore
	}
	if flags.Changed("hidden") {
		config.Hidden = hidden
	}
	if flags.Changed("strict") {
		config.Strict = strict
	}
	if flags.Changed("max-steps") {
		config.MaxSteps = maxSteps
	}
	return config, nil
}

func newEnvironment(ctx context.Context, cmd *cobra.Command) (*environment, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	env := &environment{config: config}

	var loaderOpts []sitter.LoaderOption
	for _, dir := range config.GrammarDirs {
		loaderOpts = append(loaderOpts, sitter.WithTrustedDir(dir))
	}
	env.loader = sitter.NewLoader(loaderOpts...)

	lang, err := env.loader.Load(config.Language)
	if err != nil {
		env.Close()
		return nil, err
	}
	logger.Debug("Grammar loaded", zap.String("language", lang.Name), zap.String("path", lang.Path))

	env.parser, err = sitter.NewParser(lang, sitter.WithStrict(config.Strict))
	if err != nil {
		env.Close()
		return nil, err
	}

	if _, err := os.Stat(rootDir); err != nil {
		env.Close()
		return nil, fmt.Errorf("cannot read root: %w", err)
	}

	walkOpts := []walk.Option{
		walk.WithExtensions(config.Extensions...),
		walk.WithExcludes(config.Exclude...),
		walk.WithErrorHandler(func(path string, err error) {
			logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
		}),
	}
	if config.NoIgnore {
		walkOpts = append(walkOpts, walk.WithoutIgnoreFiles())
	}
	if config.Hidden {
		walkOpts = append(walkOpts, walk.WithHidden())
	}
	env.walker, err = walk.New(rootDir, walkOpts...)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.files, err = env.walker.Files(ctx)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("walking %s: %w", rootDir, err)
	}
	logger.Debug("Files selected", zap.String("root", rootDir), zap.Int("count", len(env.files)))
	return env, nil
}

// scanOptions turns the configuration and query flags into scanner options.
func (e *environment) scanOptions(cmd *cobra.Command) []scan.Option {
	opts := []scan.Option{scan.WithMaxSteps(e.config.MaxSteps)}
	if dumpTree {
		opts = append(opts, scan.WithTreeDump(cmd.OutOrStdout()))
	}
	if progress {
		opts = append(opts, scan.WithProgress(cmd.ErrOrStderr()))
	}
	return opts
}

func (e *environment) Close() {
	if e.parser != nil {
		e.parser.Close()
	}
	if e.loader != nil {
		e.loader.Close()
	}
}
