package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Registry *prometheus.Registry

	SlidesDiscovered    prometheus.Gauge
	ResolutionsTotal    *prometheus.CounterVec // source label
	CaptureOutcomes     *prometheus.CounterVec // outcome label
	AlignmentsTotal     *prometheus.CounterVec // result: aligned, exhausted
	RunDuration         prometheus.Histogram
	UploadsTotal        *prometheus.CounterVec // backend, status
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers every metric on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		SlidesDiscovered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "banner_slides_discovered",
			Help: "Unique slides found by the last discovery pass.",
		}),
		ResolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "banner_resolutions_total",
			Help: "Resolved banner records by destination source.",
		}, []string{"source"}),
		CaptureOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "banner_capture_outcomes_total",
			Help: "Navigation capture outcomes.",
		}, []string{"outcome"}),
		AlignmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "banner_alignments_total",
			Help: "Carousel alignment attempts.",
		}, []string{"result"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "banner_run_duration_seconds",
			Help:    "Duration of full resolution runs.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		}),
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "banner_uploads_total",
			Help: "Dataset uploads by backend and status.",
		}, []string{"backend", "status"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) ObserveResolution(source string) {
	m.ResolutionsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveCapture(outcome string) {
	m.CaptureOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAlignment(aligned bool) {
	result := "exhausted"
	if aligned {
		result = "aligned"
	}
	m.AlignmentsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveUpload(backend string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.UploadsTotal.WithLabelValues(backend, status).Inc()
}
