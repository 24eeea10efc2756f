// SPDX-License-Identifier: MIT

// Package metrics exports engine fit outcomes as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/sparselm/engine"
)

// Namespace prefixes every metric name.
const Namespace = "sparselm"

// Metrics implements engine.Observer.
type Metrics struct {
	// Fits by family, terminal state and solver status.
	Fits *prometheus.CounterVec

	// Wall time of a fit call by family and backend.
	FitDuration *prometheus.HistogramVec

	// Adaptive reweighting rounds per fit.
	AdaptiveIterations *prometheus.HistogramVec

	// Branch-and-bound nodes explored per mixed-integer fit.
	Nodes *prometheus.HistogramVec

	// Warnings attached to successful fits.
	Warnings *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		Fits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fits_total",
			Help:      "Fit calls by family, terminal state and solver status",
		}, []string{"family", "state", "status"}),

		FitDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "fit_duration_seconds",
			Help:      "Duration of fit calls including every adaptive round",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"family", "backend"}),

		AdaptiveIterations: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "adaptive_iterations",
			Help:      "Solve rounds per fit",
			Buckets:   []float64{1, 2, 3, 5, 10, 20},
		}, []string{"family"}),

		Nodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "bnb_nodes",
			Help:      "Branch-and-bound nodes explored per fit",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"family"}),

		Warnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fit_warnings_total",
			Help:      "Warnings attached to successful fits",
		}, []string{"family"}),
	}
}

// ObserveFit implements engine.Observer.
func (m *Metrics) ObserveFit(ev engine.FitEvent) {
	if m == nil {
		return
	}
	family := ev.Family.String()
	m.Fits.WithLabelValues(family, ev.State.String(), ev.Status.String()).Inc()
	m.FitDuration.WithLabelValues(family, ev.Backend).Observe(ev.Duration.Seconds())
	if ev.State != engine.Solved {
		return
	}
	m.AdaptiveIterations.WithLabelValues(family).Observe(float64(ev.AdaptiveIters))
	if ev.Family.MixedInteger() {
		m.Nodes.WithLabelValues(family).Observe(float64(ev.Nodes))
	}
	if ev.Warnings > 0 {
		m.Warnings.WithLabelValues(family).Add(float64(ev.Warnings))
	}
}

var _ engine.Observer = (*Metrics)(nil)
