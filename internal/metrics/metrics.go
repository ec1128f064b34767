// Package metrics defines the Prometheus collectors for the ingestion
// pipeline and exposes the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors. Construct one per process with a
// dedicated registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	ItemsProcessed     *prometheus.CounterVec
	ItemsFailed        *prometheus.CounterVec
	ExtractionFailures *prometheus.CounterVec
	ChunksIndexed      prometheus.Counter
	DrainDuration      prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ItemsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_items_processed_total",
				Help: "Queue items processed successfully, by action and content type.",
			},
			[]string{"action", "content_type"},
		),
		ItemsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_items_failed_total",
				Help: "Queue item attempts that failed and were left pending.",
			},
			[]string{"action", "content_type"},
		),
		ExtractionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_extraction_failures_total",
				Help: "Extractions that failed and fell back to empty text, by content family.",
			},
			[]string{"family"},
		),
		ChunksIndexed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_chunks_indexed_total",
				Help: "Vector records upserted into the index.",
			},
		),
		DrainDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_drain_duration_seconds",
				Help:    "Wall-clock duration of one drain cycle.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 120, 300},
			},
		),
	}
}

// Handler serves the scrape endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
