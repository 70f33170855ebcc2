package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firestige.xyz/wirecap/internal/codec/pcap"
	"firestige.xyz/wirecap/internal/core"
)

// MockReporter implements plugin.Reporter
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Name() string { return "mock" }

func (m *MockReporter) Init(cfg map[string]any) error {
	args := m.Called(cfg)
	return args.Error(0)
}

func (m *MockReporter) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockReporter) Stop(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockReporter) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockReporter) Report(ctx context.Context, rec *core.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// MockExchanger implements Exchanger
type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) Exchange(ctx context.Context, req []byte) ([]byte, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// bufferOpener serves a capture held in memory.
type bufferOpener struct {
	buf []byte
	err error
}

func (o bufferOpener) Open(context.Context) (*pcap.Reader, error) {
	if o.err != nil {
		return nil, o.err
	}
	return pcap.Open(o.buf)
}

// captureBytes builds a capture with one record per ether-type.
func captureBytes(t *testing.T, etherTypes ...uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := pcap.NewWriter(&buf)
	for i, et := range etherTypes {
		rec := pcap.NewRecord(time.Unix(int64(1700000000+i), 0), core.EthernetFrame{
			EtherType: et,
			Payload:   []byte{byte(i), 1, 2, 3},
		})
		require.NoError(t, w.WriteRecord(rec))
	}
	return buf.Bytes()
}
