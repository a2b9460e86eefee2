package sgp4

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/art-injener/orbitprop/internal/tle"
)

// MaxRangePoints наибольшее число точек, которое вернёт PropagateRange.
const MaxRangePoints = 1_000_000

const (
	rangeEpsilon  = 1e-9
	rangePrealloc = 4096
)

// Observer получает сведения о каждом расчёте Propagator (метрики, трассировка).
type Observer interface {
	ObservePropagation(regime Regime, elapsed time.Duration, warnings Warning, err error)
}

// WithLogger задаёт логгер Propagator. По умолчанию slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver подключает наблюдателя за расчётами.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Propagator рассчитывает положение спутника по одному TLE.
// Элементы инициализируются один раз; методы безопасны для конкурентного вызова.
type Propagator struct {
	tle      *tle.TLE
	elements *Elements
	logger   *slog.Logger
	observer Observer
}

// NewPropagator создаёт Propagator из разобранного TLE.
func NewPropagator(t *tle.TLE, opts ...Option) (*Propagator, error) {
	if t == nil {
		return nil, ErrNilTLE
	}

	o := buildOptions(opts)

	el, err := Convert(t, opts...)
	if err != nil {
		return nil, fmt.Errorf("convert TLE %d: %w", t.NoradID, err)
	}

	logger := o.logger.With(
		slog.Int("norad_id", t.NoradID),
		slog.String("regime", el.Regime.String()),
	)
	logger.Debug("propagator initialized",
		slog.Float64("period_min", el.Period),
		slog.Float64("perigee_km", el.PerigeeAltitude()),
		slog.String("resonance", el.Resonance.String()),
		slog.String("gravity", el.Gravity.String()),
		slog.String("opsmode", el.OpsMode.String()),
	)

	return &Propagator{
		tle:      t,
		elements: el,
		logger:   logger,
		observer: o.observer,
	}, nil
}

// Propagate рассчитывает вектор состояния на tsince минут от эпохи.
func (p *Propagator) Propagate(tsince float64) (StateVector, error) {
	if p == nil {
		return StateVector{}, ErrNilElements
	}

	start := time.Now()
	sv, err := Propagate(p.elements, tsince)

	if p.observer != nil {
		p.observer.ObservePropagation(p.elements.Regime, time.Since(start), sv.Warnings, err)
	}

	switch {
	case err != nil:
		p.logger.Debug("propagation failed", slog.Float64("tsince", tsince), slog.Any("error", err))
	case sv.Warnings.Has(DecayedOrbit):
		p.logger.Debug("decayed orbit", slog.Float64("tsince", tsince), slog.Float64("radius_km", sv.Radius()))
	}

	return sv, err
}

// PropagateAt рассчитывает вектор состояния на момент t.
func (p *Propagator) PropagateAt(t time.Time) (StateVector, error) {
	if p == nil {
		return StateVector{}, ErrNilElements
	}

	return p.Propagate(p.elements.Tsince(t))
}

// PropagateRange рассчитывает векторы состояния на интервале [start, end] с шагом step (мин).
// При ошибке возвращаются уже рассчитанные точки.
func (p *Propagator) PropagateRange(start, end, step float64) ([]StateVector, error) {
	if p == nil {
		return nil, ErrNilElements
	}

	if !(step > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}

	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return nil, fmt.Errorf("%w: range [%v, %v]", ErrInvalidTsince, start, end)
	}

	if end < start {
		start, end = end, start
	}

	// Допуск сохраняет конец интервала при накоплении ошибки округления: (0, 0.3, 0.1) даёт 4 точки.
	count := math.Floor((end-start)/step+rangeEpsilon) + 1
	if count > MaxRangePoints {
		return nil, fmt.Errorf("%w: %.0f points, limit %d", ErrTooManyPoints, count, MaxRangePoints)
	}

	n := int(count)
	states := make([]StateVector, 0, min(n, rangePrealloc))

	for i := 0; i < n; i++ {
		ts := min(start+float64(i)*step, end)

		sv, err := p.Propagate(ts)
		if err != nil {
			return states, fmt.Errorf("propagation at tsince=%.4f: %w", ts, err)
		}

		states = append(states, sv)
	}

	return states, nil
}

// Elements возвращает инициализированные элементы.
func (p *Propagator) Elements() *Elements {
	if p == nil {
		return nil
	}

	return p.elements
}

// TLE возвращает исходный TLE.
func (p *Propagator) TLE() *tle.TLE {
	if p == nil {
		return nil
	}

	return p.tle
}
