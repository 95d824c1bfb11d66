package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts record store calls by operation, collection and result.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialvibe_store_operations_total",
		Help: "Total number of record store operations",
	}, []string{"operation", "collection", "result"})

	// StoreLatency records medium latency by operation and collection.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialvibe_store_latency_seconds",
		Help:    "Record store latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	// StoreDocumentBytes is the size of the last document written per collection.
	StoreDocumentBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "socialvibe_store_document_bytes",
		Help: "Size in bytes of the last document written per collection",
	}, []string{"collection"})

	// StoreQuotaExceeded counts writes rejected because the medium is full.
	StoreQuotaExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialvibe_store_quota_exceeded_total",
		Help: "Total number of writes rejected for exceeding the storage quota",
	}, []string{"collection"})

	// StoreVersionConflicts counts lost updates detected by the version check.
	StoreVersionConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialvibe_store_version_conflicts_total",
		Help: "Total number of writes rejected by the collection version check",
	}, []string{"collection"})

	// StoreParseErrors counts corrupt documents read from the medium.
	StoreParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialvibe_store_parse_errors_total",
		Help: "Total number of corrupt documents read from the medium",
	}, []string{"collection"})
)

// TrackStore returns a function that records the operation latency when called (e.g. defer).
func TrackStore(operation, collection string) func() {
	start := time.Now()
	return func() {
		StoreLatency.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	}
}

// CountStore records the outcome of a store operation.
func CountStore(operation, collection string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(operation, collection, result).Inc()
}
