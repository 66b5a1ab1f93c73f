// Package metrics counts fetch outcomes of one run and writes them in the
// Prometheus text format, for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	NotModified = "not_modified"
	Fetched     = "fetched"
	Unhandled   = "unhandled"
	Failed      = "error"
)

var (
	Registry = prometheus.NewRegistry()

	fetchTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "mars_fetch_total",
		Help: "Feed fetches by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "mars_fetch_duration_seconds",
		Help:    "Duration of feed requests",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	storedTotal = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Name: "mars_feeds_stored_total",
		Help: "Feeds whose changed content was written to the cache",
	})

	aggregatedEntries = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "mars_aggregated_entries",
		Help: "Entries in the last aggregation",
	})

	lastRun = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Name: "mars_last_run_timestamp_seconds",
		Help: "Unix time the last run finished",
	})
)

// ObserveFetch records one fetch with its outcome and duration.
func ObserveFetch(outcome string, d time.Duration) {
	fetchTotal.WithLabelValues(outcome).Inc()
	fetchDuration.Observe(d.Seconds())
}

// ObserveStored counts a feed written to the cache.
func ObserveStored() { storedTotal.Inc() }

// ObserveAggregation records the size of the aggregated entry list.
func ObserveAggregation(n int) { aggregatedEntries.Set(float64(n)) }

// WriteTextfile stamps the run time and writes all metrics to path.
func WriteTextfile(path string) error {
	lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
