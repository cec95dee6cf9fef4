package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-msgreader/internal/config"
	"github.com/deploymenttheory/go-msgreader/internal/export"
	"github.com/deploymenttheory/go-msgreader/internal/logger"
	"github.com/deploymenttheory/go-msgreader/pkg/tooling"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert <file.msg>",
	Short: "Convert a message to an .eml file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertOut == "-" {
			m, err := tooling.OpenFile(args[0])
			if err != nil {
				return err
			}
			return export.WriteEML(cmd.OutOrStdout(), m)
		}

		out := convertOut
		if out == "" {
			out = filepath.Join(config.Instance.Output.Dir, tooling.OutputStem(args[0])+".eml")
		}
		n, err := tooling.ConvertFile(args[0], out)
		if err != nil {
			return err
		}

		logger.LogInfo("Message converted", map[string]interface{}{
			"input":  args[0],
			"output": out,
			"bytes":  n,
		})
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertOut, "out", "", `Output file, "-" for stdout (default <out-dir>/<name>.eml)`)
	convertCmd.Flags().StringP("out-dir", "o", ".", "Directory the .eml file is written to")
	rootCmd.AddCommand(convertCmd)
}
