// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/wirecap/internal/core"
)

// GlobalConfig represents the top-level configuration.
// Maps to the `wirecap:` root key in YAML.
type GlobalConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Capture CaptureConfig `mapstructure:"capture"`
	Query   QueryConfig   `mapstructure:"query"`
	Report  ReportConfig  `mapstructure:"report"`
	Blob    BlobConfig    `mapstructure:"blob"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`   // trace / debug / info / warn / error
	Format  string           `mapstructure:"format"`  // pattern / json
	Pattern string           `mapstructure:"pattern"` // used by the pattern format
	Time    string           `mapstructure:"time"`    // time layout for %time
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains log destinations besides stdout.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Capture ───

// CaptureConfig controls how capture files are read.
type CaptureConfig struct {
	StrictMagic bool `mapstructure:"strict_magic"` // reject unknown magic or link type
	Limit       int  `mapstructure:"limit"`        // 0 = all records
	EtherType   int  `mapstructure:"ether_type"`   // 0 = no filter
}

// ─── Query ───

// QueryConfig configures the name-resolution client.
type QueryConfig struct {
	Server           string        `mapstructure:"server"` // host:port
	Timeout          time.Duration `mapstructure:"timeout"`
	RecursionDesired bool          `mapstructure:"recursion_desired"`
	TxID             *int          `mapstructure:"tx_id"` // nil = random
}

// ─── Report ───

// ReportConfig selects the reporter and its options.
type ReportConfig struct {
	Type    string         `mapstructure:"type"` // console / pcap
	Options map[string]any `mapstructure:"options"`
}

// ─── Blob ───

// BlobConfig configures the blob command.
type BlobConfig struct {
	Output string `mapstructure:"output"`
}

// ─── Metrics ───

// MetricsConfig configures the Prometheus textfile dump written after each
// command. Empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `wirecap: ...`.
type configRoot struct {
	Wirecap GlobalConfig `mapstructure:"wirecap"`
}

// Load loads configuration from file. An empty path yields the defaults.
// Env vars override file values, e.g. WIRECAP_LOG_LEVEL for wirecap.log.level.
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Wirecap

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "wirecap." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("wirecap.log.level", "info")
	v.SetDefault("wirecap.log.format", "pattern")
	v.SetDefault("wirecap.log.pattern", "%time [%level] %field %msg")
	v.SetDefault("wirecap.log.time", "2006-01-02 15:04:05")
	v.SetDefault("wirecap.log.outputs.file.enabled", false)
	v.SetDefault("wirecap.log.outputs.file.path", "wirecap.log")
	v.SetDefault("wirecap.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("wirecap.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("wirecap.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("wirecap.log.outputs.file.rotation.compress", true)

	// Capture defaults
	v.SetDefault("wirecap.capture.strict_magic", false)
	v.SetDefault("wirecap.capture.limit", 0)
	v.SetDefault("wirecap.capture.ether_type", 0)

	// Query defaults
	v.SetDefault("wirecap.query.server", "8.8.8.8:53")
	v.SetDefault("wirecap.query.timeout", "5s")
	v.SetDefault("wirecap.query.recursion_desired", true)
	// No default for tx_id: unset means a random ID per query. Binding the
	// key keeps WIRECAP_QUERY_TX_ID visible to Unmarshal.
	_ = v.BindEnv("wirecap.query.tx_id")

	// Report defaults
	v.SetDefault("wirecap.report.type", "console")

	// Blob defaults
	v.SetDefault("wirecap.blob.output", "wirecap.bin")

	// Metrics defaults
	v.SetDefault("wirecap.metrics.textfile", "")
}

// ValidateAndApplyDefaults validates configuration and fills runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: invalid log level: %s (must be trace/debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	if cfg.Log.Format != "pattern" && cfg.Log.Format != "json" {
		return fmt.Errorf("%w: invalid log format: %s (must be pattern/json)", core.ErrConfigInvalid, cfg.Log.Format)
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return fmt.Errorf("%w: log.outputs.file.path is required when file output is enabled", core.ErrConfigInvalid)
	}

	// ── Capture validation ──
	if cfg.Capture.Limit < 0 {
		return fmt.Errorf("%w: capture.limit must not be negative", core.ErrConfigInvalid)
	}
	if cfg.Capture.EtherType < 0 || cfg.Capture.EtherType > 0xFFFF {
		return fmt.Errorf("%w: capture.ether_type 0x%x does not fit 16 bits", core.ErrConfigInvalid, cfg.Capture.EtherType)
	}

	// ── Query validation ──
	if _, _, err := net.SplitHostPort(cfg.Query.Server); err != nil {
		return fmt.Errorf("%w: query.server %q: %v", core.ErrConfigInvalid, cfg.Query.Server, err)
	}
	if cfg.Query.Timeout <= 0 {
		return fmt.Errorf("%w: query.timeout must be positive", core.ErrConfigInvalid)
	}
	if id := cfg.Query.TxID; id != nil && (*id < 0 || *id > 0xFFFF) {
		return fmt.Errorf("%w: query.tx_id %d does not fit 16 bits", core.ErrConfigInvalid, *id)
	}

	// ── Report ──
	if cfg.Report.Type == "" {
		return fmt.Errorf("%w: report.type is required", core.ErrConfigInvalid)
	}
	if cfg.Report.Options == nil {
		cfg.Report.Options = map[string]any{}
	}

	return nil
}
