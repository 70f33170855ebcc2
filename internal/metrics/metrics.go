// Package metrics implements Prometheus metrics.
//
// wirecap runs one command and exits, so metrics are not served over HTTP;
// they are written in the text exposition format for the node_exporter
// textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every wirecap collector. The default registry is not used
// so that a dump contains only wirecap series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// CaptureRecordsTotal counts capture records by outcome
	// (decoded, filtered, reported).
	CaptureRecordsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wirecap_capture_records_total",
			Help: "Total number of capture records processed",
		},
		[]string{"outcome"},
	)

	// CaptureErrorsTotal counts capture failures by stage.
	CaptureErrorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wirecap_capture_errors_total",
			Help: "Total number of capture errors",
		},
		[]string{"stage"},
	)

	// QueryExchangesTotal counts query round trips by response code, or
	// "error" when no usable response arrived.
	QueryExchangesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wirecap_query_exchanges_total",
			Help: "Total number of query exchanges",
		},
		[]string{"rcode"},
	)

	// QueryLatencySeconds measures the datagram round trip.
	QueryLatencySeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wirecap_query_latency_seconds",
			Help:    "Latency of query exchanges in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
	)

	// BlobBytesTotal counts encoded blob bytes written.
	BlobBytesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "wirecap_blob_bytes_total",
			Help: "Total number of blob bytes written",
		},
	)
)

// Outcome and stage label values.
const (
	OutcomeDecoded  = "decoded"
	OutcomeFiltered = "filtered"
	OutcomeReported = "reported"

	StageOpen   = "open"
	StageDecode = "decode"
	StageReport = "report"

	RcodeError = "error"
)

// WriteTextfile writes the current value of every collector to path.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
