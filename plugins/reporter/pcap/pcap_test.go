package pcap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	capture "firestige.xyz/wirecap/internal/codec/pcap"
	"firestige.xyz/wirecap/internal/core"
)

func record(i int, payload []byte) *core.Record {
	rec := capture.NewRecord(time.Unix(1700000000+int64(i), 0), core.EthernetFrame{
		DstMAC:    core.MAC{1, 2, 3, 4, 5, 6},
		SrcMAC:    core.MAC{6, 5, 4, 3, 2, 1},
		EtherType: 0x0800,
		Payload:   payload,
		FCS:       []byte{0, 0, 0, 0},
	})
	rec.Index = i
	return &rec
}

func TestPcapReporter_Init(t *testing.T) {
	r := NewPcapReporter()
	assert.Error(t, r.Init(nil), "path is required")
	assert.Error(t, r.Init(map[string]any{"path": "x.pcap", "snap_len": 0}))
	assert.NoError(t, r.Init(map[string]any{"path": "x.pcap", "snap_len": "1500"}))
	assert.Equal(t, uint32(1500), r.(*PcapReporter).cfg.SnapLen)
}

func TestPcapReporter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcap")
	r := NewPcapReporter()
	require.NoError(t, r.Init(map[string]any{"path": path}))

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Report(ctx, record(0, []byte("first payload"))))
	require.NoError(t, r.Report(ctx, record(1, make([]byte, 46))))
	require.NoError(t, r.Flush(ctx))
	require.NoError(t, r.Stop(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	h, recs, err := capture.DecodeAll(data)
	require.NoError(t, err)
	assert.NoError(t, capture.CheckMagic(h))
	require.Len(t, recs, 2)
	assert.Equal(t, []byte("first payload"), recs[0].Frame.Payload)
	assert.Equal(t, 1, recs[1].Index)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	pr, err := pcapgo.NewReader(f)
	require.NoError(t, err)
	frame, ci, err := pr.ReadPacketData()
	require.NoError(t, err)
	assert.Equal(t, core.EthernetOverhead+len("first payload"), len(frame))
	assert.Equal(t, int64(1700000000), ci.Timestamp.Unix())
}

func TestPcapReporter_NanosecondRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcap")
	r := NewPcapReporter()
	require.NoError(t, r.Init(map[string]any{"path": path}))

	rec := record(0, []byte("nanos"))
	rec.Header.TsFrac, rec.Header.Nanos = 999999999, true

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Report(ctx, rec))
	require.NoError(t, r.Stop(ctx))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	pr, err := pcapgo.NewReader(f)
	require.NoError(t, err)
	_, ci, err := pr.ReadPacketData()
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1700000000, 999999000).UTC(), ci.Timestamp.UTC())
}

func TestPcapReporter_NotStarted(t *testing.T) {
	r := NewPcapReporter()
	require.NoError(t, r.Init(map[string]any{"path": filepath.Join(t.TempDir(), "x.pcap")}))
	assert.Error(t, r.Report(context.Background(), record(0, []byte("a"))))
	assert.NoError(t, r.Stop(context.Background()))
}

func TestPcapReporter_RejectsOversized(t *testing.T) {
	r := NewPcapReporter()
	require.NoError(t, r.Init(map[string]any{"path": filepath.Join(t.TempDir(), "x.pcap"), "snap_len": 64}))
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop(context.Background())

	err := r.Report(context.Background(), record(0, make([]byte, 100)))
	assert.ErrorIs(t, err, core.ErrFieldOverflow)
}
