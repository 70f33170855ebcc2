// Package console implements the console reporter.
// Prints every decoded record as a text line, a JSON object or a YAML document.
package console

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/log"
	"firestige.xyz/wirecap/pkg/plugin"
)

const Name = "console"

// ConsoleReporter writes records to a stream, stdout by default.
type ConsoleReporter struct {
	cfg           Config
	out           io.Writer
	reportedCount atomic.Uint64
}

// Config represents console reporter options.
type Config struct {
	Format string `mapstructure:"format"` // text / json / yaml, default text
	Layers bool   `mapstructure:"layers"` // decode the payload with gopacket and list its layers
}

// NewConsoleReporter creates a new console reporter.
func NewConsoleReporter() plugin.Reporter {
	return &ConsoleReporter{
		cfg: Config{Format: "text"},
		out: os.Stdout,
	}
}

func (r *ConsoleReporter) Name() string { return Name }

func (r *ConsoleReporter) SetOutput(w io.Writer) { r.out = w }

// Init decodes options over the defaults.
func (r *ConsoleReporter) Init(config map[string]any) error {
	if err := mapstructure.WeakDecode(config, &r.cfg); err != nil {
		return fmt.Errorf("invalid console options: %w", err)
	}
	switch r.cfg.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid format %q, must be text, json or yaml", r.cfg.Format)
	}
	return nil
}

func (r *ConsoleReporter) Start(ctx context.Context) error {
	log.GetLogger().WithField("format", r.cfg.Format).Debug("console reporter started")
	return nil
}

func (r *ConsoleReporter) Stop(ctx context.Context) error {
	log.GetLogger().WithField("total_reported", r.reportedCount.Load()).Debug("console reporter stopped")
	return nil
}

// Report prints one record.
func (r *ConsoleReporter) Report(ctx context.Context, rec *core.Record) error {
	if rec == nil {
		return fmt.Errorf("nil record")
	}

	r.reportedCount.Add(1)

	switch r.cfg.Format {
	case "json":
		return r.reportJSON(rec)
	case "yaml":
		return r.reportYAML(rec)
	}
	return r.reportText(rec)
}

// Flush is a no-op, the stream is unbuffered.
func (r *ConsoleReporter) Flush(ctx context.Context) error {
	return nil
}

// Count returns how many records were reported.
func (r *ConsoleReporter) Count() uint64 { return r.reportedCount.Load() }

func (r *ConsoleReporter) reportJSON(rec *core.Record) error {
	data, err := json.Marshal(r.fields(rec))
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(data))
	return err
}

func (r *ConsoleReporter) reportYAML(rec *core.Record) error {
	data, err := yaml.Marshal(r.fields(rec))
	if err != nil {
		return fmt.Errorf("yaml marshal failed: %w", err)
	}
	_, err = fmt.Fprintf(r.out, "---\n%s", data)
	return err
}

func (r *ConsoleReporter) reportText(rec *core.Record) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d [%s] %s > %s %s len=%d payload=%d",
		rec.Index,
		timestamp(rec.Header),
		rec.Frame.SrcMAC, rec.Frame.DstMAC,
		etherTypeName(rec.Frame.EtherType),
		rec.Header.CaptureLen,
		len(rec.Frame.Payload),
	)
	if r.cfg.Layers {
		if names := payloadLayers(rec.Frame); len(names) > 0 {
			fmt.Fprintf(&sb, " layers=%s", strings.Join(names, "/"))
		}
	}
	_, err := fmt.Fprintln(r.out, sb.String())
	return err
}

const (
	microLayout = "2006-01-02T15:04:05.000000Z07:00"
	nanoLayout  = "2006-01-02T15:04:05.000000000Z07:00"
)

// timestamp formats at the capture's own resolution.
func timestamp(h core.RecordHeader) string {
	if h.Nanos {
		return h.Timestamp().Format(nanoLayout)
	}
	return h.Timestamp().Format(microLayout)
}

func (r *ConsoleReporter) fields(rec *core.Record) core.Fields {
	f := core.Fields{
		core.FieldIndex:      rec.Index,
		core.FieldTimestamp:  timestamp(rec.Header),
		core.FieldCapLen:     rec.Header.CaptureLen,
		core.FieldOrigLen:    rec.Header.OrigLen,
		core.FieldEthDst:     rec.Frame.DstMAC.String(),
		core.FieldEthSrc:     rec.Frame.SrcMAC.String(),
		core.FieldEthType:    etherTypeName(rec.Frame.EtherType),
		core.FieldEthPayload: len(rec.Frame.Payload),
		core.FieldEthFCS:     hex.EncodeToString(rec.Frame.FCS),
	}
	if r.cfg.Layers {
		f[core.FieldLayers] = payloadLayers(rec.Frame)
	}
	return f
}

func etherTypeName(t uint16) string {
	return fmt.Sprintf("%s(0x%04x)", layers.EthernetType(t), t)
}

// payloadLayers decodes the frame payload starting at its ether-type and
// returns the layer names gopacket recognises.
func payloadLayers(frame core.EthernetFrame) []string {
	pkt := gopacket.NewPacket(frame.Payload, layers.EthernetType(frame.EtherType), gopacket.NoCopy)
	var names []string
	for _, l := range pkt.Layers() {
		names = append(names, l.LayerType().String())
	}
	return names
}
