package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-msgreader/internal/config"
	"github.com/deploymenttheory/go-msgreader/pkg/tooling"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file.msg>",
	Short: "Print the property tree of a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return tooling.DumpFile(cmd.OutOrStdout(), args[0], config.Instance.Output.Format)
	},
}

func init() {
	dumpCmd.Flags().StringP("format", "f", "text",
		fmt.Sprintf("Output format: %s", strings.Join(config.OutputFormats, ", ")))
	rootCmd.AddCommand(dumpCmd)
}
