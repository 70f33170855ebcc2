package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wirecap/internal/codec/pcap"
	"firestige.xyz/wirecap/internal/core"
)

func writeCapture(t *testing.T, h core.CaptureHeader, payloads ...[]byte) string {
	t.Helper()
	var buf bytes.Buffer
	w := pcap.NewWriter(&buf)
	require.NoError(t, w.WriteHeader(h))
	for i, p := range payloads {
		rec := pcap.NewRecord(time.Unix(int64(1700000000+i), 0), core.EthernetFrame{EtherType: 0x0800, Payload: p})
		require.NoError(t, w.WriteRecord(rec))
	}
	path := filepath.Join(t.TempDir(), "in.pcap")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestNewSourceRequiresPath(t *testing.T) {
	_, err := NewSource("")
	assert.Error(t, err)
}

func TestOpenDecodesRecords(t *testing.T) {
	path := writeCapture(t, pcap.NewCaptureHeader(pcap.DefaultSnapLen, pcap.LinkTypeEthernet), []byte("one"), []byte("two"))
	s, err := NewSource(path, WithStrictMagic(true))
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	r, err := s.Open(context.Background())
	require.NoError(t, err)

	var payloads []string
	for rec, err := range r.Records() {
		require.NoError(t, err)
		payloads = append(payloads, string(rec.Frame.Payload))
	}
	assert.Equal(t, []string{"one", "two"}, payloads)
}

func TestOpenStrictMagic(t *testing.T) {
	h := pcap.NewCaptureHeader(pcap.DefaultSnapLen, pcap.LinkTypeEthernet)
	h.Magic = 0xdeadbeef
	path := writeCapture(t, h, []byte("x"))

	strict, err := NewSource(path, WithStrictMagic(true))
	require.NoError(t, err)
	_, err = strict.Open(context.Background())
	assert.ErrorIs(t, err, core.ErrBadMagic)

	lenient, err := NewSource(path)
	require.NoError(t, err)
	r, err := lenient.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), r.Header().Magic)
}

func TestOpenTruncatedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.pcap")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0644))

	s, err := NewSource(path)
	require.NoError(t, err)
	_, err = s.Open(context.Background())
	assert.ErrorIs(t, err, core.ErrTruncated)
}

func TestReadMissingFile(t *testing.T) {
	s, err := NewSource(filepath.Join(t.TempDir(), "missing.pcap"))
	require.NoError(t, err)
	_, err = s.Read(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadCancelled(t *testing.T) {
	s, err := NewSource("any.pcap")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
