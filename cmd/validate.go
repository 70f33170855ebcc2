package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/wirecap/internal/config"
	"firestige.xyz/wirecap/pkg/plugin"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration given with --config, apply environment overrides
and defaults, and check that the configured reporter exists.

Examples:
  wirecap validate -c wirecap.yml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(configFile, cmd.OutOrStdout())
	},
}

func runValidate(path string, out io.Writer) error {
	loaded, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(out, "INVALID: %v\n", err)
		return err
	}
	if _, err := plugin.GetReporterFactory(loaded.Report.Type); err != nil {
		fmt.Fprintf(out, "INVALID: %v\n", err)
		return err
	}

	source := path
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(out, "VALID: %s (log %s/%s, reporter %s, server %s)\n",
		source, loaded.Log.Level, loaded.Log.Format, loaded.Report.Type, loaded.Query.Server)
	return nil
}
