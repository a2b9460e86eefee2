// Package observability содержит метрики Prometheus и трассировку OpenTelemetry
// для расчётов пропагатора.
package observability

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/art-injener/orbitprop/internal/sgp4"
)

// Значения метки outcome.
const (
	OutcomeOK      = "ok"
	OutcomeWarning = "warning"
	OutcomeError   = "error"
)

// PropagationCollector собирает метрики расчётов SGP4/SDP4.
// Реализует sgp4.Observer.
type PropagationCollector struct {
	gatherer prometheus.Gatherer

	Propagations *prometheus.CounterVec
	Durations    *prometheus.HistogramVec
	Warnings     *prometheus.CounterVec
	ModelErrors  *prometheus.CounterVec
}

var _ sgp4.Observer = (*PropagationCollector)(nil)

// NewPropagationCollector регистрирует метрики в reg. При nil используется глобальный реестр.
func NewPropagationCollector(reg prometheus.Registerer) (*PropagationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	propagations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbitprop_propagations_total",
		Help: "Total number of propagations, labeled by regime and outcome.",
	}, []string{"regime", "outcome"}), "orbitprop_propagations_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orbitprop_propagation_duration_seconds",
		Help:    "Single propagation latency in seconds.",
		Buckets: []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3},
	}, []string{"regime"}), "orbitprop_propagation_duration_seconds")
	if err != nil {
		return nil, err
	}

	warnings, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbitprop_propagation_warnings_total",
		Help: "Advisory propagation flags, labeled by flag.",
	}, []string{"flag"}), "orbitprop_propagation_warnings_total")
	if err != nil {
		return nil, err
	}

	modelErrors, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orbitprop_model_errors_total",
		Help: "Fatal model-limit errors, labeled by reason.",
	}, []string{"reason"}), "orbitprop_model_errors_total")
	if err != nil {
		return nil, err
	}

	return &PropagationCollector{
		gatherer:     gatherer,
		Propagations: propagations,
		Durations:    durations,
		Warnings:     warnings,
		ModelErrors:  modelErrors,
	}, nil
}

// ObservePropagation учитывает один расчёт.
func (c *PropagationCollector) ObservePropagation(regime sgp4.Regime, elapsed time.Duration, w sgp4.Warning, err error) {
	if c == nil {
		return
	}

	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
	case w != 0:
		outcome = OutcomeWarning
	}

	c.Propagations.WithLabelValues(regime.String(), outcome).Inc()
	c.Durations.WithLabelValues(regime.String()).Observe(elapsed.Seconds())

	if w.Has(sgp4.DecayedOrbit) {
		c.Warnings.WithLabelValues("decayed_orbit").Inc()
	}
	if w.Has(sgp4.NearSingularGeometry) {
		c.Warnings.WithLabelValues("near_singular_geometry").Inc()
	}

	if err != nil {
		reason := "other"
		var me *sgp4.ModelError
		if errors.As(err, &me) {
			reason = reasonLabel(me.Reason)
		}
		c.ModelErrors.WithLabelValues(reason).Inc()
	}
}

// WriteTextfile сохраняет текущие значения метрик в формате textfile-коллектора node_exporter.
func (c *PropagationCollector) WriteTextfile(path string) error {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}

	return nil
}

func reasonLabel(r sgp4.ModelReason) string {
	switch r {
	case sgp4.ReasonMeanMotion:
		return "mean_motion"
	case sgp4.ReasonEccentricity:
		return "eccentricity"
	case sgp4.ReasonPerturbedEccentricity:
		return "perturbed_eccentricity"
	case sgp4.ReasonSemiLatusRectum:
		return "semi_latus_rectum"
	default:
		return "other"
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}

			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}

		return nil, err
	}

	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}

			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}

		return nil, err
	}

	return vec, nil
}
