// Package pcap implements a reporter that re-exports records to a capture file.
package pcap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/mitchellh/mapstructure"

	capture "firestige.xyz/wirecap/internal/codec/pcap"
	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/log"
	"firestige.xyz/wirecap/pkg/plugin"
)

const Name = "pcap"

// Config represents pcap reporter options.
type Config struct {
	Path    string `mapstructure:"path"`
	SnapLen uint32 `mapstructure:"snap_len"`
}

// PcapReporter writes every reported record to Config.Path.
type PcapReporter struct {
	cfg Config

	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	writer *capture.Writer
}

func NewPcapReporter() plugin.Reporter {
	return &PcapReporter{cfg: Config{SnapLen: capture.DefaultSnapLen}}
}

func (r *PcapReporter) Name() string { return Name }

func (r *PcapReporter) Init(config map[string]any) error {
	if err := mapstructure.WeakDecode(config, &r.cfg); err != nil {
		return fmt.Errorf("invalid pcap options: %w", err)
	}
	if r.cfg.Path == "" {
		return fmt.Errorf("pcap reporter requires 'path'")
	}
	if r.cfg.SnapLen == 0 {
		return fmt.Errorf("pcap reporter 'snap_len' must be positive")
	}
	return nil
}

// Start creates the output file and writes the capture header.
func (r *PcapReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Create(r.cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", r.cfg.Path, err)
	}
	r.file = f
	r.buf = bufio.NewWriter(f)
	r.writer = capture.NewWriter(r.buf)
	if err := r.writer.WriteHeader(capture.NewCaptureHeader(r.cfg.SnapLen, capture.LinkTypeEthernet)); err != nil {
		_ = f.Close()
		r.file = nil
		return err
	}
	log.GetLogger().WithField("path", r.cfg.Path).Debug("pcap reporter started")
	return nil
}

func (r *PcapReporter) Report(ctx context.Context, rec *core.Record) error {
	if rec == nil {
		return fmt.Errorf("nil record")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writer == nil {
		return fmt.Errorf("pcap reporter not started")
	}
	return r.writer.WriteRecord(*rec)
}

func (r *PcapReporter) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.buf == nil {
		return nil
	}
	return r.buf.Flush()
}

// Stop flushes and closes the output file.
func (r *PcapReporter) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := errors.Join(r.buf.Flush(), r.file.Close())
	log.GetLogger().WithFields(map[string]interface{}{
		"path":    r.cfg.Path,
		"records": r.writer.Count(),
	}).Debug("pcap reporter stopped")
	r.file, r.buf, r.writer = nil, nil, nil
	return err
}
