package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	chartsAssembled *prometheus.CounterVec
	chartBodies     prometheus.Histogram
	chartAspects    prometheus.Histogram
	compatibility   prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		chartsAssembled: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrolabe_charts_assembled_total",
				Help: "Charts assembled, by input source",
			},
			[]string{"source"},
		),
		chartBodies: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "astrolabe_chart_bodies",
			Help:    "Bodies per assembled chart",
			Buckets: []float64{1, 5, 10, 11, 12, 13},
		}),
		chartAspects: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "astrolabe_chart_aspects",
			Help:    "Same-chart aspects per assembled chart",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
		compatibility: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "astrolabe_compatibility_score",
			Help:    "Overall compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrolabe_chart_cache_lookups_total",
				Help: "Chart cache lookups by result",
			},
			[]string{"hit"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrolabe_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astrolabe_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordChartAssembled(source string, bodies, aspects int) {
	r.chartsAssembled.WithLabelValues(source).Inc()
	r.chartBodies.Observe(float64(bodies))
	r.chartAspects.Observe(float64(aspects))
}

func (r *Recorder) RecordCompatibility(score int) {
	r.compatibility.Observe(float64(score))
}

func (r *Recorder) RecordCacheLookup(hit bool) {
	r.cacheLookups.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordChartAssembled(string, int, int) {}
func (Nop) RecordCompatibility(int)               {}
func (Nop) RecordCacheLookup(bool)                {}
func (Nop) RecordError(string)                    {}
func (Nop) RecordLatency(string, float64)         {}
