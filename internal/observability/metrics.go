// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal          *prometheus.CounterVec
	AnalysisDuration       prometheus.Histogram
	TransactionsClassified prometheus.Counter
	SwapsProduced          *prometheus.CounterVec
	TradesArchived         prometheus.Counter
	SnapshotsRecorded      prometheus.Counter

	// Upstream metrics
	RPCCallLatency  *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec
	TxFetchesFailed prometheus.Counter

	// Cache metrics
	ATHCacheHits   prometheus.Counter
	ATHCacheMisses prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulAnalysis prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_trade_lab"
	}

	return &Metrics{
		// Analysis metrics
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of wallet analyses by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Wallet analysis duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TransactionsClassified: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "transactions_classified_total",
			Help:      "Total number of transactions run through the swap classifier",
		}),
		SwapsProduced: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "swaps_produced_total",
			Help:      "Total number of swaps produced by direction",
		}, []string{"direction"}),
		TradesArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trades_archived_total",
			Help:      "Total number of trades written to the archive",
		}),
		SnapshotsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "position_snapshots_recorded_total",
			Help:      "Total number of position snapshot rows recorded",
		}),

		// Upstream metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "rpc_call_duration_seconds",
			Help:      "Chain RPC call duration in seconds by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Total number of upstream errors by source",
		}, []string{"source"}),
		TxFetchesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "transaction_fetches_failed_total",
			Help:      "Total number of individual transaction fetches that failed and were skipped",
		}),

		// Cache metrics
		ATHCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "ath_hits_total",
			Help:      "Total number of ATH estimate cache hits",
		}),
		ATHCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "ath_misses_total",
			Help:      "Total number of ATH estimate cache misses",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulAnalysis: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last successful wallet analysis",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAnalysis records one wallet analysis run.
func RecordAnalysis(status string, durationSeconds float64) {
	DefaultMetrics.AnalysesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.AnalysisDuration.Observe(durationSeconds)
}

// RecordSwap increments the swap counter for a direction.
func RecordSwap(direction string) {
	DefaultMetrics.SwapsProduced.WithLabelValues(direction).Inc()
}

// RecordTransactionClassified increments the classified-transaction counter.
func RecordTransactionClassified() {
	DefaultMetrics.TransactionsClassified.Inc()
}

// RecordUpstreamError records an upstream failure by source.
func RecordUpstreamError(source string) {
	DefaultMetrics.UpstreamErrors.WithLabelValues(source).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordATHCache records an ATH cache lookup outcome.
func RecordATHCache(hit bool) {
	if hit {
		DefaultMetrics.ATHCacheHits.Inc()
	} else {
		DefaultMetrics.ATHCacheMisses.Inc()
	}
}
