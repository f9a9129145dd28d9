// Package metrics exports sampler activity as Prometheus metrics.
//
// The ic50 command is a batch job, so metrics are collected in a private
// registry and written once to a node-exporter textfile after the fit.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/ic50"
	"github.com/arloliu/ic50/sampler"
)

const namespace = "ic50"

// Metrics implements sampler.Observer.
type Metrics struct {
	registry *prometheus.Registry

	Proposals           *prometheus.CounterVec
	Accepted            *prometheus.CounterVec
	NumericalRejections *prometheus.CounterVec
	ChainDuration       prometheus.Histogram
	Warnings            *prometheus.CounterVec

	FitDuration  prometheus.Gauge
	Observations prometheus.Gauge
	Drugs        prometheus.Gauge
	LastSuccess  prometheus.Gauge
}

var _ sampler.Observer = (*Metrics)(nil)

// New creates the metrics and registers them in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Proposals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sampler",
				Name:      "proposals_total",
				Help:      "Single-coordinate proposals, warm-up included",
			},
			[]string{"chain"},
		),
		Accepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sampler",
				Name:      "accepted_total",
				Help:      "Accepted proposals, warm-up included",
			},
			[]string{"chain"},
		),
		NumericalRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sampler",
				Name:      "numerical_rejections_total",
				Help:      "Proposals rejected for a NaN or +Inf log density",
			},
			[]string{"chain"},
		),
		ChainDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "sampler",
				Name:      "chain_duration_seconds",
				Help:      "Wall-clock time of one chain",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
		),
		Warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sampler",
				Name:      "warnings_total",
				Help:      "Convergence warnings by kind",
			},
			[]string{"kind"},
		),

		FitDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fit",
			Name:      "duration_seconds",
			Help:      "Wall-clock time of the last fit",
		}),
		Observations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fit",
			Name:      "observations",
			Help:      "Observations in the last fit",
		}),
		Drugs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fit",
			Name:      "drugs",
			Help:      "Drug groups in the last fit",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fit",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time the last fit finished",
		}),
	}

	m.registry.MustRegister(
		m.Proposals, m.Accepted, m.NumericalRejections, m.ChainDuration, m.Warnings,
		m.FitDuration, m.Observations, m.Drugs, m.LastSuccess,
	)

	return m
}

// Registry returns the registry holding every metric.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveChain implements sampler.Observer.
func (m *Metrics) ObserveChain(s sampler.ChainStats) {
	chain := strconv.Itoa(s.Chain)
	m.Proposals.WithLabelValues(chain).Add(float64(s.Proposals))
	m.Accepted.WithLabelValues(chain).Add(float64(s.Accepted))
	m.NumericalRejections.WithLabelValues(chain).Add(float64(s.Numerical))
	m.ChainDuration.Observe(s.Duration.Seconds())
}

// ObserveWarning implements sampler.Observer.
func (m *Metrics) ObserveWarning(w sampler.Warning) {
	m.Warnings.WithLabelValues(w.Kind.String()).Inc()
}

// ObserveFit records the outcome of a finished fit.
func (m *Metrics) ObserveFit(res *ic50.Result, now time.Time) {
	m.FitDuration.Set(res.Duration.Seconds())
	m.Observations.Set(float64(res.Model.Observations()))
	m.Drugs.Set(float64(res.Model.Drugs()))
	m.LastSuccess.Set(float64(now.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
