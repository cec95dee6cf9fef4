// Package tooling lets other Go programs drive go-msgreader the way the
// command line does: open a .msg file, dump it, extract it, convert it or
// scan its attachments.
package tooling

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-msgreader/internal/cfb"
	"github.com/deploymenttheory/go-msgreader/internal/config"
	"github.com/deploymenttheory/go-msgreader/internal/export"
	"github.com/deploymenttheory/go-msgreader/internal/logger"
	compression "github.com/deploymenttheory/go-msgreader/internal/utils/compressionutil"
	"github.com/deploymenttheory/go-msgreader/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-msgreader/internal/utils/fsutil"
	"github.com/deploymenttheory/go-msgreader/internal/utils/vtutil"
	"github.com/deploymenttheory/go-msgreader/pkg/msg"
)

// Version of go-msgreader.
var Version = "0.1.0"

// InitOptions contains options for initializing the tooling API
type InitOptions struct {
	ConfigFile  string // Path to configuration file
	Debug       bool   // Enable debug logging
	LogFormat   string // Log format: "human" or "json"
	LogFile     string // Path to log file
	SuppressLog bool   // Suppress all logging
}

// ExtractSettings controls ExtractFile.
type ExtractSettings struct {
	Archive         string   // compression kind, "none" or "" to keep the directory
	IncludeEmbedded bool     // descend into embedded messages
	RTF             bool     // write body.rtf
	Hashes          []string // manifest hash algorithms, SHA-256 when empty
}

// ExtractResult describes what ExtractFile produced.
type ExtractResult struct {
	Dir      string           `json:"dir"`
	Archive  string           `json:"archive,omitempty"`
	Manifest *export.Manifest `json:"manifest"`
}

var initialized bool

// Initialize loads the configuration and starts logging. Commands run
// through the CLI do this themselves.
func Initialize(options InitOptions) error {
	if initialized {
		return nil
	}

	configErr := config.Initialize(options.ConfigFile)

	if options.Debug {
		config.Instance.Debug = true
	}
	if options.LogFormat != "" {
		config.Instance.LogFormat = options.LogFormat
	}
	if options.LogFile != "" {
		config.Instance.LogFile = options.LogFile
	}

	if options.SuppressLog {
		logger.Nop()
	} else {
		logConfig := logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
		}
		if err := logger.InitLogger(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.LogInfo("Tooling API initialized", map[string]interface{}{
			"config_file": options.ConfigFile,
			"debug":       config.Instance.Debug,
			"log_format":  config.Instance.LogFormat,
		})
		if configErr != nil {
			logger.LogWarn("Configuration initialization warning", map[string]interface{}{
				"error": configErr.Error(),
			})
		}
	}

	initialized = true
	return nil
}

// DefaultOptions returns the default initialization options
func DefaultOptions() InitOptions {
	return InitOptions{LogFormat: "human"}
}

// OpenFile reads the .msg file at path. Properties that fail to decode and
// an unreadable named property map are logged as warnings.
func OpenFile(path string) (*msg.Message, error) {
	root, err := cfb.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := msg.Open(root, msg.WithDiagnostics(diagnostics(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.LogDebug("Message opened", map[string]interface{}{
		"file":        path,
		"recipients":  len(m.Recipients()),
		"attachments": len(m.Attachments()),
	})
	return m, nil
}

// diagnostics logs the non-fatal decoding failures of the file at path.
func diagnostics(path string) msg.DiagnosticFunc {
	return func(object string, tag msg.PropertyTag, err error) {
		if tag == (msg.PropertyTag{}) {
			logger.LogWarn("Named properties unavailable", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
			return
		}
		logger.LogWarn("Property could not be decoded", map[string]interface{}{
			"file":   path,
			"object": object,
			"tag":    tag.String(),
			"error":  err.Error(),
		})
	}
}

// DumpFile writes the property tree of the message at path to w.
func DumpFile(w io.Writer, path, format string) error {
	m, err := OpenFile(path)
	if err != nil {
		return err
	}
	return export.Dump(w, m, format)
}

// OutputStem names the output of an operation after its input file.
func OutputStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return fsutil.SanitizeFilename(stem)
}

// ExtractFile writes the bodies and attachments of the message at path to
// outDir/<name>/ and packs them when settings.Archive asks for it.
func ExtractFile(path, outDir string, settings ExtractSettings) (*ExtractResult, error) {
	kind, err := archiveKind(settings.Archive)
	if err != nil {
		return nil, err
	}
	m, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	return extractMessage(m, filepath.Join(outDir, OutputStem(path)), kind, settings)
}

func archiveKind(s string) (compression.Kind, error) {
	if s == "" {
		return compression.KindNone, nil
	}
	return compression.ParseKind(s)
}

func extractMessage(m *msg.Message, dir string, kind compression.Kind, settings ExtractSettings) (*ExtractResult, error) {
	opts := export.ExtractOptions{
		Dir:             dir,
		IncludeEmbedded: settings.IncludeEmbedded,
		RTF:             settings.RTF,
	}
	for _, h := range settings.Hashes {
		opts.Hashes = append(opts.Hashes, cryptoutil.HashAlgorithm(strings.ToLower(h)))
	}

	manifest, err := export.Extract(m, opts)
	if err != nil {
		return nil, err
	}
	result := &ExtractResult{Dir: dir, Manifest: manifest}

	if kind != compression.KindNone {
		result.Archive = dir + kind.Extension()
		if err := compression.Archive(dir, result.Archive, kind); err != nil {
			return nil, err
		}
		logger.LogInfo("Archive written", map[string]interface{}{
			"archive": result.Archive,
			"kind":    string(kind),
		})
	}
	return result, nil
}

// ConvertFile renders the message at path as an .eml file at out and
// returns the number of bytes written.
func ConvertFile(path, out string) (int, error) {
	m, err := OpenFile(path)
	if err != nil {
		return 0, err
	}
	return convertMessage(m, out)
}

func convertMessage(m *msg.Message, out string) (int, error) {
	var buf bytes.Buffer
	if err := export.WriteEML(&buf, m); err != nil {
		return 0, err
	}
	if err := fsutil.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// ScanFile looks the attachment payloads of the message at path up with
// client.
func ScanFile(ctx context.Context, client *vtutil.Client, path string, includeEmbedded bool) ([]vtutil.SampleReport, error) {
	m, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	return scanMessage(ctx, client, m, includeEmbedded)
}

func scanMessage(ctx context.Context, client *vtutil.Client, m *msg.Message, includeEmbedded bool) ([]vtutil.SampleReport, error) {
	var samples []vtutil.Sample
	for _, p := range export.Payloads(m, includeEmbedded) {
		samples = append(samples, vtutil.Sample{Source: p.Source, Name: p.Name, Data: p.Data})
	}
	logger.LogInfo("Scanning attachments", map[string]interface{}{
		"samples": len(samples),
	})
	return client.Scan(ctx, samples)
}

// GetVersion returns the current version of the tooling API
func GetVersion() string {
	return Version
}

// Shutdown performs any necessary cleanup before the application exits
func Shutdown() error {
	if initialized {
		logger.LogInfo("Tooling API shutting down", nil)
		logger.Sync()
	}
	return nil
}
