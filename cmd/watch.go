package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gnolang/scryer/formatter"
	"github.com/gnolang/scryer/scan"
)

var debounce = scan.DefaultDebounce

// watchCmd: scryer watch
var watchCmd = &cobra.Command{
	Use:   "watch -q QUERY [-r ROOT]",
	Short: "Rerun a query on files as they change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, err := compileQuery()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
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

		err = scan.NewWatcher(scanner, env.walker, debounce).Watch(ctx, nil)
		if stats {
			_ = reporter.Summary().Write(cmd.ErrOrStderr())
		}
		return err
	},
}

func init() {
	addQueryFlags(watchCmd)
	watchCmd.Flags().DurationVar(&debounce, "debounce", scan.DefaultDebounce, "Wait this long after the last change before rescanning")
}
