// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/wirecap/internal/config"
	"firestige.xyz/wirecap/internal/log"
	"firestige.xyz/wirecap/internal/metrics"
)

var (
	// Global flags
	configFile  string
	logLevel    string
	metricsFile string

	// cfg is loaded by the root pre-run hook before any subcommand runs.
	cfg *config.GlobalConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wirecap",
	Short: "wirecap - capture file decoder and name-resolution probe",
	Long: `wirecap decodes Ethernet capture files, sends single name-resolution
queries over UDP and writes stamped payload blobs.

Configuration is read from the file given with --config (root key "wirecap:")
and can be overridden with WIRECAP_* environment variables.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if dumpErr := writeMetrics(); dumpErr != nil && err == nil {
		err = dumpErr
	}
	return err
}

// writeMetrics dumps the collectors when a textfile is configured. Failed
// commands are dumped too so their error counters are visible.
func writeMetrics() error {
	path := metricsFile
	if path == "" && cfg != nil {
		path = cfg.Metrics.Textfile
	}
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults only when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override log level (trace/debug/info/warn/error)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "",
		"write Prometheus metrics to this file on exit (overrides metrics.textfile)")

	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(blobCmd)
	rootCmd.AddCommand(validateCmd)
}

// loadConfig loads configuration and initialises logging. The validate
// command loads the file itself so it can report problems as output.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd == validateCmd {
		return nil
	}
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
		if err := loaded.ValidateAndApplyDefaults(); err != nil {
			return err
		}
	}
	if err := log.Init(loaded.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	cfg = loaded
	return nil
}
