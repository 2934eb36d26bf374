// Package prometheus instruments pagelens services with Prometheus metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics holds the pagelens collectors.
type Metrics struct {
	FetchesTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	FetchBytes    prometheus.Histogram

	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	ContentTypesTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pagelens_fetches_total",
			Help: "Total number of page fetches by result.",
		}, []string{"result"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagelens_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		FetchBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagelens_fetch_bytes",
			Help:    "Size of fetched HTML documents in bytes.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		PipelineRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pagelens_pipeline_runs_total",
			Help: "Total number of pipeline runs by result; failed stages are reported by name.",
		}, []string{"result"}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagelens_pipeline_duration_seconds",
			Help:    "Duration of pipeline runs in seconds.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		ContentTypesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pagelens_content_types_total",
			Help: "Total number of analyzed pages by content type.",
		}, []string{"content_type"}),
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
