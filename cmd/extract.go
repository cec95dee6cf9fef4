package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-msgreader/internal/config"
	"github.com/deploymenttheory/go-msgreader/pkg/tooling"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.msg>",
	Short: "Write the bodies and attachments of a message to disk",
	Long: `extract writes the bodies and attachment payloads of a message to
<out-dir>/<file name>/ together with a manifest.json listing every file and
its hashes. With --archive the directory is packed afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ec := config.Instance.Extract
		result, err := tooling.ExtractFile(args[0], config.Instance.Output.Dir, tooling.ExtractSettings{
			Archive:         ec.Archive,
			IncludeEmbedded: ec.IncludeEmbedded,
			RTF:             ec.RTF,
			Hashes:          ec.Hashes,
		})
		if err != nil {
			return err
		}

		out := result.Dir
		if result.Archive != "" {
			out = result.Archive
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d files written to %s\n", len(result.Manifest.Files), out)
		for _, s := range result.Manifest.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped %s\n", s)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringP("out-dir", "o", ".", "Directory the message folder is created in")
	extractCmd.Flags().String("archive", "none",
		fmt.Sprintf("Pack the output: %s", strings.Join(config.ArchiveKinds, ", ")))
	extractCmd.Flags().Bool("embedded", true, "Descend into embedded messages")
	extractCmd.Flags().Bool("rtf", true, "Write the decompressed RTF body")
	extractCmd.Flags().StringSlice("hash", []string{"sha256"}, "Hash algorithms recorded in the manifest")
	rootCmd.AddCommand(extractCmd)
}
