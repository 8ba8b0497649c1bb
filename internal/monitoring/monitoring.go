package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MergesPerformed      prometheus.Counter
	MergeDuration        prometheus.Histogram
	ConflictsResolved    prometheus.Counter
	DeltasComputed       prometheus.Counter
	DeltasApplied        prometheus.Counter
	ORSetOps             prometheus.Counter
	TextItemsIntegrated  prometheus.Counter
	BlockCoalesceEvents  prometheus.Counter
	FractionalIndexDepth prometheus.Histogram
	ErrorCount           prometheus.Counter
	ActiveReplicas       prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		MergesPerformed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "synckit_merges_total",
			Help: "Total number of merge operations across all CRDT types",
		}),
		MergeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "synckit_merge_duration_seconds",
			Help:    "Time taken to perform a merge",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 10),
		}),
		ConflictsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "synckit_conflicts_resolved_total",
			Help: "Total number of fields updated by document merges",
		}),
		DeltasComputed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "synckit_deltas_computed_total",
			Help: "Total number of deltas computed between document states",
		}),
		DeltasApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "synckit_deltas_applied_total",
			Help: "Total number of deltas applied to a document",
		}),
		ORSetOps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "synckit_orset_ops_total",
			Help: "Total number of OR-Set add/remove operations",
		}),
		TextItemsIntegrated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "synckit_text_items_integrated_total",
			Help: "Total number of text CRDT items integrated into a sequence",
		}),
		BlockCoalesceEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "synckit_text_block_coalesce_total",
			Help: "Total number of adjacent text items fused by block coalescing",
		}),
		FractionalIndexDepth: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "synckit_fractional_index_depth",
			Help:    "Digit depth reached by Between before a key was produced",
			Buckets: prometheus.LinearBuckets(1, 1, 20),
		}),
		ErrorCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "synckit_errors_total",
			Help: "Total number of errors surfaced by the replicator layer",
		}),
		ActiveReplicas: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "synckit_active_replicas",
			Help: "Number of replica instances currently tracked by this process",
		}),
	}
}
