package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-msgreader/internal/config"
	"github.com/deploymenttheory/go-msgreader/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-msgreader/internal/utils/vtutil"
	"github.com/deploymenttheory/go-msgreader/pkg/tooling"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file.msg>",
	Short: "Look attachment payloads up on VirusTotal",
	Long: `scan hashes every by-value attachment of a message and prints what
VirusTotal knows about each hash as JSON. Payloads are never uploaded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newVTClient()
		if err != nil {
			return err
		}

		reports, err := tooling.ScanFile(cmd.Context(), client, args[0], config.Instance.Extract.IncludeEmbedded)
		if err != nil {
			return err
		}
		return jsonutil.Encode(cmd.OutOrStdout(), reports)
	},
}

func newVTClient() (*vtutil.Client, error) {
	vc := config.Instance.VirusTotal
	mode := vtutil.CacheMode(vc.CacheMode)
	dir := vc.CacheDir
	if mode == vtutil.CacheModeFile && dir == "" {
		dir = config.DefaultCacheDir()
	}
	cache, err := vtutil.NewCache(mode, dir)
	if err != nil {
		return nil, err
	}

	opts := []vtutil.Option{vtutil.WithCache(cache, 0)}
	if vc.RateLimitPerMin > 0 {
		opts = append(opts, vtutil.WithRateLimit(vc.RateLimitPerMin))
	}
	if vc.Host != "" {
		opts = append(opts, vtutil.WithCustomHost(vc.Host))
	}
	return vtutil.NewClient(vc.APIKey, opts...)
}

func init() {
	scanCmd.Flags().Bool("embedded", true, "Include attachments of embedded messages")
	scanCmd.Flags().String("api-key", "", "VirusTotal API key (or MSGREADER_VIRUSTOTAL_API_KEY)")
	scanCmd.Flags().String("vt-host", "", "Alternative VirusTotal API host")
	scanCmd.Flags().String("cache", "memory", "Report cache: none, memory or file")
	scanCmd.Flags().String("cache-dir", "", "Directory of the file cache")
	rootCmd.AddCommand(scanCmd)
}
