package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/deploymenttheory/go-msgreader/internal/config"
	"github.com/deploymenttheory/go-msgreader/internal/logger"
	"github.com/deploymenttheory/go-msgreader/pkg/tooling"
)

var cfgFile string

// flagKeys maps command line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"debug":      "debug",
	"log-format": "log_format",
	"log-file":   "log_file",
	"format":     "output.format",
	"out-dir":    "output.dir",
	"archive":    "extract.archive",
	"embedded":   "extract.include_embedded",
	"rtf":        "extract.rtf",
	"hash":       "extract.hashes",
	"api-key":    "virustotal.api_key",
	"vt-host":    "virustotal.host",
	"cache":      "virustotal.cache_mode",
	"cache-dir":  "virustotal.cache_dir",
}

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   "go-msgreader",
	Short: "Read Outlook .msg files",
	Long: `go-msgreader decodes Outlook item files (.msg) and lets you dump
their property tree, extract bodies and attachments, convert them to
RFC 5322 .eml files and look attachment payloads up on VirusTotal.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.LogError("Command execution failed", err, nil)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("MSGREADER_CONFIG"), "config file (default is search in standard locations)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "Log format: json or human")
	rootCmd.PersistentFlags().String("log-file", "", `Also log to this file ("default" for the per-user log directory)`)

	rootCmd.AddCommand(versionCmd)
}

// setup loads the configuration, lets the flags of the running command
// override it and then starts logging.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return err
	}

	v := config.Viper()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}
	if err := config.Reload(); err != nil {
		return err
	}

	logFile := config.Instance.LogFile
	if logFile == "default" {
		logFile = config.DefaultLogFile()
	}
	if err := logger.InitLogger(logger.LoggerConfig{
		Debug:     config.Instance.Debug,
		LogFormat: config.Instance.LogFormat,
		LogFile:   logFile,
	}); err != nil {
		return err
	}

	logger.LogDebug("Configuration loaded", map[string]interface{}{
		"config_file": config.ConfigFile,
		"command":     cmd.Name(),
	})
	return nil
}

// versionCmd shows the application version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "go-msgreader v%s\n", tooling.GetVersion())
	},
}
