package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/scryer/scan"
)

var force bool

// initCmd: scryer init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to the file named by --config
(.scryer.yaml unless given). A .toml name selects TOML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = scan.DefaultConfigFile
	}

	if _, err := os.Stat(configurationPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configurationPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return scan.WriteConfig(configurationPath, scan.DefaultConfig())
}
