package report

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/YuminosukeSato/outcomecv/metrics"
	"github.com/YuminosukeSato/outcomecv/pkg/errors"
)

// RunMetrics collects one run's summary in a private registry so it can be
// written as a node-exporter textfile.
type RunMetrics struct {
	registry *prometheus.Registry

	info     *prometheus.GaugeVec
	errors   *prometheus.GaugeVec
	variance prometheus.Gauge
	samples  prometheus.Gauge
	features prometheus.Gauge
	duration prometheus.Gauge
}

// NewRunMetrics registers the run gauges.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "outcomecv",
			Name:      "run_info",
			Help:      "Constant 1, labelled with the run id, model family and outcome.",
		}, []string{"run_id", "model", "outcome"}),
		errors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "outcomecv",
			Name:      "loo_error",
			Help:      "Leave-one-out error of the model and of the mean baseline.",
		}, []string{"metric", "predictor"}),
		variance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outcomecv",
			Name:      "variance_explained",
			Help:      "Explained variance score of the held-out predictions.",
		}),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outcomecv",
			Name:      "samples",
			Help:      "Number of patients.",
		}),
		features: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outcomecv",
			Name:      "training_features",
			Help:      "Number of features used for training.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outcomecv",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the run.",
		}),
	}
	m.registry.MustRegister(m.info, m.errors, m.variance, m.samples, m.features, m.duration)
	return m
}

// Observe records the evaluation of a finished run.
func (m *RunMetrics) Observe(runID, model, outcome string, samples, features int, r metrics.Report, elapsed time.Duration) {
	m.info.WithLabelValues(runID, model, outcome).Set(1)
	for name, pair := range map[string]metrics.Pair{"rmse": r.RMSE, "mse": r.MSE, "mae": r.MAE} {
		m.errors.WithLabelValues(name, "held-out").Set(pair.HeldOut)
		m.errors.WithLabelValues(name, "baseline").Set(pair.Baseline)
	}
	m.variance.Set(r.VarianceExplained)
	m.samples.Set(float64(samples))
	m.features.Set(float64(features))
	m.duration.Set(elapsed.Seconds())
}

// Registry exposes the underlying registry, e.g. for testutil.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Encode writes the metrics in the Prometheus text exposition format.
func (m *RunMetrics) Encode(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "encode %s", mf.GetName())
		}
	}
	return nil
}

// WriteTextfile writes the metrics to path for the node-exporter textfile
// collector.
func (m *RunMetrics) WriteTextfile(path string) error {
	return writeAtomic(path, m.Encode)
}
