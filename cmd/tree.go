package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/scryer/scan"
)

// treeCmd: scryer tree
var treeCmd = &cobra.Command{
	Use:   "tree [-r ROOT]",
	Short: "Print the syntax tree of every selected file",
	Long: `Print the tree of named nodes the matcher sees for every selected file,
as an s-expression. Useful when writing queries.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		env, err := newEnvironment(ctx, cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		scanner := scan.New(logger, nil, env.parser, nil)
		err = scanner.RunFunc(ctx, env.files, scanner.PrintTree(cmd.OutOrStdout()))
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("scan timed out after %s", timeout)
		}
		return err
	},
}
