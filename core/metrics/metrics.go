// Package metrics provides Prometheus metrics for bucket diffing and replication.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Listing metrics
	listPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucketdiff_list_pages_total",
			Help: "Total number of listing pages fetched",
		},
		[]string{"backend", "bucket", "status"},
	)

	listEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucketdiff_list_entries_total",
			Help: "Total number of object versions returned by listings",
		},
		[]string{"backend", "bucket"},
	)

	listDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bucketdiff_list_duration_seconds",
			Help:    "Listing page latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// Diff round metrics
	roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucketdiff_rounds_total",
			Help: "Total number of diff rounds by outcome",
		},
		[]string{"pair", "status"},
	)

	roundDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bucketdiff_round_duration_seconds",
			Help:    "Diff round duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pair"},
	)

	classifiedKeysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucketdiff_classified_keys_total",
			Help: "Keys classified by diff rounds",
		},
		[]string{"pair", "class"},
	)

	leftoverGroups = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bucketdiff_leftover_groups",
			Help: "Unclassified key groups carried to the next round",
		},
		[]string{"pair"},
	)

	// Replication metrics
	replicationActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucketdiff_replication_actions_total",
			Help: "Replication actions executed",
		},
		[]string{"type", "status"},
	)
)

// RecordListPage records one listing call.
func RecordListPage(backend, bucket string, duration time.Duration, entries int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	listPagesTotal.WithLabelValues(backend, bucket, status).Inc()
	listDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if success {
		listEntriesTotal.WithLabelValues(backend, bucket).Add(float64(entries))
	}
}

// RecordRound records a completed or failed diff round.
func RecordRound(pair, status string, duration time.Duration) {
	roundsTotal.WithLabelValues(pair, status).Inc()
	roundDuration.WithLabelValues(pair).Observe(duration.Seconds())
}

// RecordClassified adds n keys to a classification class (only_in_first, only_in_second, differing, equal).
func RecordClassified(pair, class string, n int) {
	if n > 0 {
		classifiedKeysTotal.WithLabelValues(pair, class).Add(float64(n))
	}
}

// SetLeftover sets the number of groups carried to the next round.
func SetLeftover(pair string, n int) {
	leftoverGroups.WithLabelValues(pair).Set(float64(n))
}

// RecordReplicationAction records one executed replication action.
func RecordReplicationAction(actionType string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	replicationActionsTotal.WithLabelValues(actionType, status).Inc()
}
