package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-msgreader/internal/config"
	"github.com/deploymenttheory/go-msgreader/internal/utils/fsutil"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or save the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print where the configuration was loaded from",
	Run: func(cmd *cobra.Command, args []string) {
		if !config.ConfigLoaded {
			fmt.Fprintln(cmd.OutOrStdout(), "no config file loaded, using defaults")
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile)
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Write the effective configuration to a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			dir, err := fsutil.GetConfigDir(config.AppName)
			if err != nil {
				return err
			}
			path = filepath.Join(dir, config.AppName+".yaml")
		}
		if err := config.SaveConfig(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSaveCmd)
	rootCmd.AddCommand(configCmd)
}
