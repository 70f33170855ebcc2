package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(CaptureRecordsTotal.WithLabelValues(OutcomeDecoded))
	CaptureRecordsTotal.WithLabelValues(OutcomeDecoded).Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(CaptureRecordsTotal.WithLabelValues(OutcomeDecoded)))

	before = testutil.ToFloat64(BlobBytesTotal)
	BlobBytesTotal.Add(28)
	assert.Equal(t, before+28, testutil.ToFloat64(BlobBytesTotal))
}

func TestWriteTextfile(t *testing.T) {
	QueryExchangesTotal.WithLabelValues("NOERROR").Inc()
	QueryLatencySeconds.Observe(0.002)

	path := filepath.Join(t.TempDir(), "wirecap.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `wirecap_query_exchanges_total{rcode="NOERROR"}`), text)
	assert.True(t, strings.Contains(text, "# TYPE wirecap_query_latency_seconds histogram"), text)
}

func TestWriteTextfile_BadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "wirecap.prom"))
	assert.Error(t, err)
}
