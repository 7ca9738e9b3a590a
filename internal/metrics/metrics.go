// Package metrics exposes Prometheus collectors for translation, model
// loading, recognition and synthesis. A nil *Recorder is valid and records
// nothing, so components can take one unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "babelcast"

// Recorder groups the collectors of one process.
type Recorder struct {
	translations  *prometheus.CounterVec
	modelLoads    *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
	recognitions  *prometheus.CounterVec
	syntheses     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	modelsInCache prometheus.Gauge
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		translations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "translations_total",
				Help:      "Total number of translations by language pair",
			},
			[]string{"pair", "status"}, // status: success, error
		),
		modelLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_loads_total",
				Help:      "Total number of translation model loads",
			},
			[]string{"model", "status"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_load_duration_seconds",
				Help:      "Duration of translation model loads in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"model"},
		),
		recognitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recognitions_total",
				Help:      "Total number of speech recognitions by outcome",
			},
			[]string{"outcome"},
		),
		syntheses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "syntheses_total",
				Help:      "Total number of speech syntheses",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_run_duration_seconds",
				Help:      "Duration of one session run in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),
		modelsInCache: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "models_cached",
				Help:      "Number of translation models held in the process cache",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			r.translations,
			r.modelLoads,
			r.loadDuration,
			r.recognitions,
			r.syntheses,
			r.runDuration,
			r.modelsInCache,
		)
	}

	return r
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ModelLoaded records one loader invocation.
func (r *Recorder) ModelLoaded(model string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.modelLoads.WithLabelValues(model, statusLabel(err)).Inc()
	r.loadDuration.WithLabelValues(model).Observe(d.Seconds())
	if err == nil {
		r.modelsInCache.Inc()
	}
}

// Translation records one translation for a pair key.
func (r *Recorder) Translation(pair string, err error) {
	if r == nil {
		return
	}
	r.translations.WithLabelValues(pair, statusLabel(err)).Inc()
}

// Recognition records one recognition outcome.
func (r *Recorder) Recognition(outcome string) {
	if r == nil {
		return
	}
	r.recognitions.WithLabelValues(outcome).Inc()
}

// Synthesis records one synthesize-and-play call.
func (r *Recorder) Synthesis(err error) {
	if r == nil {
		return
	}
	r.syntheses.WithLabelValues(statusLabel(err)).Inc()
}

// Run records the duration of one session run.
func (r *Recorder) Run(mode string, d time.Duration) {
	if r == nil {
		return
	}
	r.runDuration.WithLabelValues(mode).Observe(d.Seconds())
}
