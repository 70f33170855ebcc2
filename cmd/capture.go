package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"firestige.xyz/wirecap/internal/codec/pcap"
	"firestige.xyz/wirecap/internal/log"
	"firestige.xyz/wirecap/internal/metrics"
	"firestige.xyz/wirecap/internal/source/file"
	"firestige.xyz/wirecap/pkg/plugin"
	_ "firestige.xyz/wirecap/plugins"
)

// CaptureOpener yields a decoded capture.
type CaptureOpener interface {
	Open(ctx context.Context) (*pcap.Reader, error)
}

type captureOptions struct {
	etherType uint16 // 0 = all
	limit     int    // 0 = all
}

var captureCmd = &cobra.Command{
	Use:   "capture <file>",
	Short: "Decode a capture file and report its records",
	Long: `Decode every record of an Ethernet capture file and hand it to the
configured reporter (console by default).

Examples:
  wirecap capture trace.pcap
  wirecap capture trace.pcap --ether-type 0x0806 --limit 10
  wirecap capture trace.pcap --report pcap --report-opt path=out.pcap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := captureOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
		src, err := file.NewSource(args[0], file.WithStrictMagic(cfg.Capture.StrictMagic))
		if err != nil {
			return err
		}
		rep, err := newReporter(cmd)
		if err != nil {
			return err
		}
		return runCapture(cmd.Context(), src, rep, opts, cmd.OutOrStdout())
	},
}

func init() {
	captureCmd.Flags().String("ether-type", "", "only report frames with this ether-type (e.g. 0x0800)")
	captureCmd.Flags().Int("limit", 0, "stop after this many reported records (0 = all)")
	captureCmd.Flags().String("report", "", "reporter name (overrides report.type)")
	captureCmd.Flags().StringToString("report-opt", nil, "reporter option key=value (repeatable)")
}

func captureOptionsFromFlags(cmd *cobra.Command) (captureOptions, error) {
	opts := captureOptions{etherType: uint16(cfg.Capture.EtherType), limit: cfg.Capture.Limit}
	if cmd.Flags().Changed("ether-type") {
		s, _ := cmd.Flags().GetString("ether-type")
		v, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return opts, fmt.Errorf("invalid --ether-type %q: %w", s, err)
		}
		opts.etherType = uint16(v)
	}
	if cmd.Flags().Changed("limit") {
		opts.limit, _ = cmd.Flags().GetInt("limit")
		if opts.limit < 0 {
			return opts, fmt.Errorf("--limit must not be negative")
		}
	}
	return opts, nil
}

// newReporter builds the reporter named by flags or config. Stream reporters
// write to the command's output.
func newReporter(cmd *cobra.Command) (plugin.Reporter, error) {
	name := cfg.Report.Type
	if cmd.Flags().Changed("report") {
		name, _ = cmd.Flags().GetString("report")
	}
	options := make(map[string]any, len(cfg.Report.Options))
	for k, v := range cfg.Report.Options {
		options[k] = v
	}
	if extra, _ := cmd.Flags().GetStringToString("report-opt"); len(extra) > 0 {
		for k, v := range extra {
			options[k] = v
		}
	}
	rep, err := plugin.NewReporter(name, options)
	if err != nil {
		return nil, err
	}
	if s, ok := rep.(plugin.OutputSetter); ok {
		s.SetOutput(cmd.OutOrStdout())
	}
	return rep, nil
}

// runCapture decodes the capture and reports every matching record. Records
// decoded before a failure are still reported; the failure is returned.
func runCapture(ctx context.Context, src CaptureOpener, rep plugin.Reporter, opts captureOptions, out io.Writer) (err error) {
	reader, err := src.Open(ctx)
	if err != nil {
		metrics.CaptureErrorsTotal.WithLabelValues(metrics.StageOpen).Inc()
		return fmt.Errorf("failed to open capture: %w", err)
	}

	if err := rep.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reporter %s: %w", rep.Name(), err)
	}
	defer func() {
		if stopErr := rep.Stop(ctx); stopErr != nil && err == nil {
			err = fmt.Errorf("failed to stop reporter %s: %w", rep.Name(), stopErr)
		}
	}()

	logger := log.GetLogger().WithField("reporter", rep.Name())
	decoded, reported := 0, 0
	var decodeErr error
	for rec, recErr := range reader.Records() {
		if recErr != nil {
			metrics.CaptureErrorsTotal.WithLabelValues(metrics.StageDecode).Inc()
			decodeErr = recErr
			break
		}
		decoded++
		metrics.CaptureRecordsTotal.WithLabelValues(metrics.OutcomeDecoded).Inc()
		if opts.etherType != 0 && rec.Frame.EtherType != opts.etherType {
			metrics.CaptureRecordsTotal.WithLabelValues(metrics.OutcomeFiltered).Inc()
			continue
		}
		if err := rep.Report(ctx, &rec); err != nil {
			metrics.CaptureErrorsTotal.WithLabelValues(metrics.StageReport).Inc()
			return fmt.Errorf("failed to report record %d: %w", rec.Index, err)
		}
		reported++
		metrics.CaptureRecordsTotal.WithLabelValues(metrics.OutcomeReported).Inc()
		if opts.limit > 0 && reported >= opts.limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if err := rep.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush reporter %s: %w", rep.Name(), err)
	}
	logger.WithFields(map[string]interface{}{
		"decoded":  decoded,
		"reported": reported,
	}).Info("capture processed")

	if decodeErr != nil {
		return fmt.Errorf("failed to decode capture: %w", decodeErr)
	}
	return nil
}
