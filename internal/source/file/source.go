// Package file reads capture files from disk.
package file

import (
	"context"
	"fmt"
	"os"

	"firestige.xyz/wirecap/internal/codec/pcap"
	"firestige.xyz/wirecap/internal/log"
)

// Source loads a whole capture file into memory.
type Source struct {
	path        string
	strictMagic bool
	logger      log.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithStrictMagic makes Open reject files whose header fails pcap.CheckMagic.
func WithStrictMagic(strict bool) Option {
	return func(s *Source) { s.strictMagic = strict }
}

func NewSource(path string, opts ...Option) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	s := &Source{path: path}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.GetLogger().WithField("path", path)
	return s, nil
}

func (s *Source) Path() string { return s.path }

// Read returns the file contents.
func (s *Source) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file %s: %w", s.path, err)
	}
	s.logger.WithField("bytes", len(data)).Debug("capture file loaded")
	return data, nil
}

// Open reads the file and decodes its global header.
func (s *Source) Open(ctx context.Context) (*pcap.Reader, error) {
	data, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	r, err := pcap.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	h := r.Header()
	if s.strictMagic {
		if err := pcap.CheckMagic(h); err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}
	} else if err := pcap.CheckMagic(h); err != nil {
		s.logger.WithError(err).Warn("unexpected capture header, decoding anyway")
	}
	s.logger.WithFields(map[string]interface{}{
		"magic":    fmt.Sprintf("0x%08x", h.Magic),
		"version":  fmt.Sprintf("%d.%d", h.VersionMajor, h.VersionMinor),
		"snaplen":  h.SnapLen,
		"linktype": h.LinkType,
	}).Debug("capture header decoded")
	return r, nil
}
