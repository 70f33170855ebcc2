package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/wirecap/internal/codec/blob"
	"firestige.xyz/wirecap/internal/log"
	"firestige.xyz/wirecap/internal/metrics"
)

var blobCmd = &cobra.Command{
	Use:   "blob",
	Short: "Write a stamped payload blob",
	Long: `Write the payload, framed by a weekday/after-noon flag byte, a length
byte and a time-of-day footer, to the output file. Without --payload the
payload is read from stdin; an oversized line is asked for once more.

Examples:
  wirecap blob --payload hello
  echo hello | wirecap blob -o hello.bin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output := cfg.Blob.Output
		if cmd.Flags().Changed("output") {
			output, _ = cmd.Flags().GetString("output")
		}
		opts := blobOptions{output: output, now: time.Now()}
		if cmd.Flags().Changed("payload") {
			p, _ := cmd.Flags().GetString("payload")
			opts.payload = &p
		}
		return runBlob(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	blobCmd.Flags().StringP("payload", "p", "", "payload text (read from stdin when absent)")
	blobCmd.Flags().StringP("output", "o", "", "output file (overrides blob.output)")
}

type blobOptions struct {
	payload *string // nil = prompt on in
	output  string
	now     time.Time
}

func runBlob(in io.Reader, out io.Writer, opts blobOptions) error {
	var payload string
	if opts.payload != nil {
		payload = *opts.payload
	} else {
		var err error
		if payload, err = promptPayload(in, out); err != nil {
			return err
		}
	}

	b := blob.FromTime(opts.now, []byte(payload))
	data, err := blob.Encode(b)
	if err != nil {
		return fmt.Errorf("failed to encode blob: %w", err)
	}

	fmt.Fprintf(out, "Header #1 (datetime): %08b\n", data[0])
	fmt.Fprintf(out, "Header #2 (payload length): %d\n", len(b.Payload))
	fmt.Fprintf(out, "Footer (minute seconds): %d\n", b.MinuteSecond)
	fmt.Fprintf(out, "Footer (day seconds): %d\n", b.DaySeconds)

	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	metrics.BlobBytesTotal.Add(float64(len(data)))
	log.GetLogger().WithFields(map[string]interface{}{
		"path":  opts.output,
		"bytes": len(data),
	}).Info("blob written")
	return nil
}

// promptPayload reads one line from in. A line longer than the limit is
// asked for once more; a second oversized line is an error.
func promptPayload(in io.Reader, out io.Writer) (string, error) {
	r := bufio.NewReader(in)
	for attempt := 0; attempt < 2; attempt++ {
		fmt.Fprintln(out, "Enter payload: ")
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", fmt.Errorf("failed to read payload: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) <= blob.MaxPayloadLen {
			return line, nil
		}
		fmt.Fprintf(out, "Payload must be no greater than %d bytes\n", blob.MaxPayloadLen)
	}
	return "", fmt.Errorf("payload exceeds %d bytes", blob.MaxPayloadLen)
}
