package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"firestige.xyz/wirecap/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
wirecap:
  log:
    level: "debug"
    format: "json"
  capture:
    strict_magic: true
    limit: 10
    ether_type: 0x0800
  query:
    server: "127.0.0.1:5353"
    timeout: "2s"
    recursion_desired: false
    tx_id: 4660
  report:
    type: "pcap"
    options:
      path: "/tmp/out.pcap"
  blob:
    output: "/tmp/out.bin"
  metrics:
    textfile: "/tmp/wirecap.prom"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected log format json, got %s", cfg.Log.Format)
	}
	if !cfg.Capture.StrictMagic || cfg.Capture.Limit != 10 || cfg.Capture.EtherType != 0x0800 {
		t.Errorf("Unexpected capture config: %+v", cfg.Capture)
	}
	if cfg.Query.Server != "127.0.0.1:5353" {
		t.Errorf("Expected server 127.0.0.1:5353, got %s", cfg.Query.Server)
	}
	if cfg.Query.Timeout != 2*time.Second {
		t.Errorf("Expected timeout 2s, got %v", cfg.Query.Timeout)
	}
	if cfg.Query.RecursionDesired {
		t.Error("Expected recursion_desired false")
	}
	if cfg.Query.TxID == nil || *cfg.Query.TxID != 0x1234 {
		t.Errorf("Expected tx_id 0x1234, got %v", cfg.Query.TxID)
	}
	if cfg.Report.Type != "pcap" || cfg.Report.Options["path"] != "/tmp/out.pcap" {
		t.Errorf("Unexpected report config: %+v", cfg.Report)
	}
	if cfg.Blob.Output != "/tmp/out.bin" {
		t.Errorf("Expected blob output /tmp/out.bin, got %s", cfg.Blob.Output)
	}
	if cfg.Metrics.Textfile != "/tmp/wirecap.prom" {
		t.Errorf("Expected metrics textfile /tmp/wirecap.prom, got %s", cfg.Metrics.Textfile)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if cfg.Log.Level != "info" || cfg.Log.Format != "pattern" {
		t.Errorf("Unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.Log.Pattern == "" || cfg.Log.Time == "" {
		t.Error("Expected pattern and time layout defaults")
	}
	if cfg.Query.Server != "8.8.8.8:53" || cfg.Query.Timeout != 5*time.Second || !cfg.Query.RecursionDesired {
		t.Errorf("Unexpected query defaults: %+v", cfg.Query)
	}
	if cfg.Report.Type != "console" || cfg.Report.Options == nil {
		t.Errorf("Unexpected report defaults: %+v", cfg.Report)
	}
	if cfg.Capture.StrictMagic || cfg.Capture.Limit != 0 {
		t.Errorf("Unexpected capture defaults: %+v", cfg.Capture)
	}
	if cfg.Query.TxID != nil {
		t.Errorf("Expected random tx_id by default, got %d", *cfg.Query.TxID)
	}
}

func TestLoadFixedZeroTxID(t *testing.T) {
	cfg, err := Load(writeConfig(t, "wirecap:\n  query:\n    tx_id: 0\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Query.TxID == nil || *cfg.Query.TxID != 0 {
		t.Errorf("Expected fixed tx_id 0, got %v", cfg.Query.TxID)
	}

	t.Setenv("WIRECAP_QUERY_TX_ID", "0")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Query.TxID == nil || *cfg.Query.TxID != 0 {
		t.Errorf("Expected env tx_id 0, got %v", cfg.Query.TxID)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("WIRECAP_LOG_LEVEL", "warn")
	t.Setenv("WIRECAP_QUERY_SERVER", "1.1.1.1:53")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected env level warn, got %s", cfg.Log.Level)
	}
	if cfg.Query.Server != "1.1.1.1:53" {
		t.Errorf("Expected env server 1.1.1.1:53, got %s", cfg.Query.Server)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"log level", "wirecap:\n  log:\n    level: \"loud\"\n"},
		{"log format", "wirecap:\n  log:\n    format: \"xml\"\n"},
		{"server", "wirecap:\n  query:\n    server: \"nohost\"\n"},
		{"timeout", "wirecap:\n  query:\n    timeout: \"0s\"\n"},
		{"tx id", "wirecap:\n  query:\n    tx_id: 70000\n"},
		{"limit", "wirecap:\n  capture:\n    limit: -1\n"},
		{"ether type", "wirecap:\n  capture:\n    ether_type: 65536\n"},
		{"file path", "wirecap:\n  log:\n    outputs:\n      file:\n        enabled: true\n        path: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, core.ErrConfigInvalid) {
				t.Errorf("Expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}

func TestValidateNormalisesLevel(t *testing.T) {
	cfg := GlobalConfig{
		Log:    LogConfig{Level: "DEBUG", Format: "pattern"},
		Query:  QueryConfig{Server: "localhost:53", Timeout: time.Second},
		Report: ReportConfig{Type: "console"},
	}
	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected lower-case level, got %s", cfg.Log.Level)
	}
	if cfg.Report.Options == nil {
		t.Error("Expected options map to be initialised")
	}
}
