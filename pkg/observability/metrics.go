// Package observability holds the Prometheus metrics of the report pipeline.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "workreport"

// Pipeline stages, used as the "stage" label.
const (
	StageAggregate = "aggregate"
	StageMerge     = "merge"
	StageRender    = "render"
	StageDeliver   = "deliver"
)

type Metrics struct {
	// ReportsGenerated counts GenerateReport calls by outcome (error kind or "ok") and mode.
	ReportsGenerated *prometheus.CounterVec
	// OrphanedArtifacts counts objects uploaded without a tracking record.
	OrphanedArtifacts prometheus.Counter
	StageDuration     *prometheus.HistogramVec
	ArtifactBytes     prometheus.Histogram
	SweepOrphans      prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers the pipeline metrics with reg. A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Report generation attempts by outcome and delivery mode.",
		}, []string{"outcome", "mode"}),
		OrphanedArtifacts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_artifacts_total",
			Help:      "Artifacts uploaded to object storage whose tracking record could not be written.",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each report pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		ArtifactBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of rendered report artifacts.",
			Buckets:   prometheus.ExponentialBuckets(4096, 2, 10),
		}),
		SweepOrphans: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sweep_orphans",
			Help:      "Orphaned objects found by the last sweep.",
		}),
		gatherer: reg,
	}
}

// ObserveStage records the time elapsed since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
