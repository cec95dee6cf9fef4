package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-msgreader/internal/utils/cryptoutil"
	errs "github.com/deploymenttheory/go-msgreader/internal/utils/errors"
	"github.com/deploymenttheory/go-msgreader/internal/utils/fsutil"
	"github.com/deploymenttheory/go-msgreader/internal/utils/osutil"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "go-msgreader"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "MSGREADER"
)

// Output formats accepted by dump.
var OutputFormats = []string{"text", "json", "yaml", "plist"}

// Archive kinds accepted by extract.
var ArchiveKinds = []string{"none", "tar", "tar.gz", "tar.xz", "tar.bz2", "zip"}

// CacheModes accepted by virustotal.cache_mode.
var CacheModes = []string{"none", "memory", "file"}

// AppConfig holds the application configuration
type AppConfig struct {
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	Output struct {
		Format string `mapstructure:"format"`
		Dir    string `mapstructure:"dir"`
	} `mapstructure:"output"`

	Extract struct {
		Archive         string   `mapstructure:"archive"`
		IncludeEmbedded bool     `mapstructure:"include_embedded"`
		RTF             bool     `mapstructure:"rtf"`
		Hashes          []string `mapstructure:"hashes"`
	} `mapstructure:"extract"`

	VirusTotal struct {
		APIKey          string `mapstructure:"api_key"`
		Host            string `mapstructure:"host"`
		RateLimitPerMin int    `mapstructure:"rate_limit_per_min"`
		CacheMode       string `mapstructure:"cache_mode"`
		CacheDir        string `mapstructure:"cache_dir"`
	} `mapstructure:"virustotal"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	v *viper.Viper

	initOnce sync.Once
)

// Initialize sets up the configuration system
func Initialize(cfgFile string) error {
	var err error

	initOnce.Do(func() {
		v = viper.New()
		err = load(v, cfgFile, &Instance)
	})

	return err
}

// Viper returns the viper instance behind Instance so commands can bind
// their flags to it. It is nil before Initialize.
func Viper() *viper.Viper {
	return v
}

// Reload re-reads flags and environment bound to the viper instance into
// Instance.
func Reload() error {
	if v == nil {
		return fmt.Errorf("%w: configuration not initialized", errs.ErrConfigInvalid)
	}
	if err := v.Unmarshal(&Instance); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConfigParseError, err)
	}
	return Instance.Validate()
}

func load(v *viper.Viper, cfgFile string, cfg *AppConfig) error {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if readErr := v.ReadInConfig(); readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			// Only capture error if the config file was found but couldn't be read
			return fmt.Errorf("%w: %v", errs.ErrConfigParseError, readErr)
		}
		ConfigLoaded = false
		ConfigFile = ""
	} else {
		ConfigLoaded = true
		ConfigFile = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConfigParseError, err)
	}
	return cfg.Validate()
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", "")

	v.SetDefault("output.format", "text")
	v.SetDefault("output.dir", ".")

	v.SetDefault("extract.archive", "none")
	v.SetDefault("extract.include_embedded", true)
	v.SetDefault("extract.rtf", true)
	v.SetDefault("extract.hashes", []string{"sha256"})

	v.SetDefault("virustotal.api_key", "")
	v.SetDefault("virustotal.host", "")
	v.SetDefault("virustotal.rate_limit_per_min", 4)
	v.SetDefault("virustotal.cache_mode", "memory")
	v.SetDefault("virustotal.cache_dir", "")
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	v.AddConfigPath(".")

	if osutil.IsDevEnvironment() {
		configDir, err := fsutil.GetConfigDir(AppName)
		if err == nil {
			v.AddConfigPath(configDir)
		}
		return
	}

	if osutil.IsRunningInPipeline() {
		v.AddConfigPath("/etc/" + AppName)
		return
	}

	configDir, err := fsutil.GetConfigDir(AppName)
	if err == nil {
		v.AddConfigPath(configDir)
	}

	systemConfigDir, err := fsutil.GetSystemConfigDir(AppName)
	if err == nil {
		v.AddConfigPath(systemConfigDir)
	}
}

// DefaultLogFile returns the log file used when log_file is set to "default".
func DefaultLogFile() string {
	logDir, err := fsutil.GetLogDir(AppName)
	if err != nil {
		return filepath.Join("logs", "msgreader.log")
	}
	return filepath.Join(logDir, "msgreader.log")
}

// DefaultCacheDir returns the directory of the VirusTotal file cache when
// virustotal.cache_dir is empty.
func DefaultCacheDir() string {
	configDir, err := fsutil.GetConfigDir(AppName)
	if err != nil {
		return filepath.Join(".cache", AppName)
	}
	return filepath.Join(configDir, "cache")
}

// Validate rejects values the commands cannot act on.
func (c *AppConfig) Validate() error {
	if !contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("%w: output.format %q (want one of %s)",
			errs.ErrConfigInvalid, c.Output.Format, strings.Join(OutputFormats, ", "))
	}
	if !contains(ArchiveKinds, c.Extract.Archive) {
		return fmt.Errorf("%w: extract.archive %q (want one of %s)",
			errs.ErrConfigInvalid, c.Extract.Archive, strings.Join(ArchiveKinds, ", "))
	}
	hashes := make([]string, 0, len(cryptoutil.Algorithms))
	for _, alg := range cryptoutil.Algorithms {
		hashes = append(hashes, string(alg))
	}
	for _, h := range c.Extract.Hashes {
		if !contains(hashes, strings.ToLower(h)) {
			return fmt.Errorf("%w: extract.hashes entry %q (want one of %s)",
				errs.ErrConfigInvalid, h, strings.Join(hashes, ", "))
		}
	}
	if !contains(CacheModes, c.VirusTotal.CacheMode) {
		return fmt.Errorf("%w: virustotal.cache_mode %q (want one of %s)",
			errs.ErrConfigInvalid, c.VirusTotal.CacheMode, strings.Join(CacheModes, ", "))
	}
	if c.LogFormat != "human" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format %q", errs.ErrConfigInvalid, c.LogFormat)
	}
	if c.VirusTotal.RateLimitPerMin < 0 {
		return fmt.Errorf("%w: virustotal.rate_limit_per_min must not be negative", errs.ErrConfigInvalid)
	}
	return nil
}

// SaveConfig saves the current configuration to a file
func SaveConfig(filePath string) error {
	saveV := viper.New()
	saveV.SetConfigFile(filePath)

	for k, val := range structToMap(Instance) {
		saveV.Set(k, val)
	}

	configDir := filepath.Dir(filePath)
	if err := fsutil.CreateDirIfNotExists(configDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return saveV.WriteConfig()
}

// structToMap flattens the configuration into viper keys.
func structToMap(c AppConfig) map[string]interface{} {
	return map[string]interface{}{
		"debug":                         c.Debug,
		"log_format":                    c.LogFormat,
		"log_file":                      c.LogFile,
		"output.format":                 c.Output.Format,
		"output.dir":                    c.Output.Dir,
		"extract.archive":               c.Extract.Archive,
		"extract.include_embedded":      c.Extract.IncludeEmbedded,
		"extract.rtf":                   c.Extract.RTF,
		"extract.hashes":                c.Extract.Hashes,
		"virustotal.api_key":            c.VirusTotal.APIKey,
		"virustotal.host":               c.VirusTotal.Host,
		"virustotal.rate_limit_per_min": c.VirusTotal.RateLimitPerMin,
		"virustotal.cache_mode":         c.VirusTotal.CacheMode,
		"virustotal.cache_dir":          c.VirusTotal.CacheDir,
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
