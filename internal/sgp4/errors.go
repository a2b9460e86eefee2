package sgp4

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки SGP4.
var (
	ErrNilTLE          = errors.New("TLE is nil")
	ErrNilElements     = errors.New("elements are nil")
	ErrInvalidElements = errors.New("invalid orbital elements")
	ErrModelLimits     = errors.New("SGP4 model limits exceeded")
	ErrInvalidStep     = errors.New("step must be positive")
	ErrInvalidTsince   = errors.New("tsince must be finite")
	ErrTooManyPoints   = errors.New("too many points in range")

	// ErrDecayedOrbit и ErrNearSingularGeometry сопоставляются с PropagationWarning через errors.Is.
	ErrDecayedOrbit         = errors.New("decayed orbit")
	ErrNearSingularGeometry = errors.New("near-singular geometry")
)

// InvalidElementError вырожденная геометрия орбиты после преобразования.
type InvalidElementError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidElementError) Error() string {
	return fmt.Sprintf("%v: %s = %g: %s", ErrInvalidElements, e.Field, e.Value, e.Reason)
}

func (e *InvalidElementError) Unwrap() error {
	return ErrInvalidElements
}

// ModelReason причина выхода за пределы применимости модели.
type ModelReason int

const (
	ReasonMeanMotion ModelReason = iota + 1
	ReasonEccentricity
	ReasonPerturbedEccentricity
	ReasonSemiLatusRectum
)

func (r ModelReason) String() string {
	switch r {
	case ReasonMeanMotion:
		return "mean motion is not positive"
	case ReasonEccentricity:
		return "mean eccentricity outside [-0.001, 1)"
	case ReasonPerturbedEccentricity:
		return "perturbed eccentricity outside [0, 1]"
	case ReasonSemiLatusRectum:
		return "semi-latus rectum is negative"
	default:
		return fmt.Sprintf("ModelReason(%d)", int(r))
	}
}

// ModelError фатальный выход за пределы модели на заданном tsince.
// Вектор состояния в этом случае не имеет смысла и не возвращается.
type ModelError struct {
	Tsince float64
	Reason ModelReason
	Value  float64
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%v at tsince=%.6f min: %s (value %g)", ErrModelLimits, e.Tsince, e.Reason, e.Value)
}

func (e *ModelError) Unwrap() error {
	return ErrModelLimits
}

// Warning набор флагов-предупреждений пропагации.
type Warning uint8

const (
	// DecayedOrbit перигей или текущий радиус ниже поверхности Земли.
	DecayedOrbit Warning = 1 << iota
	// NearSingularGeometry сработала защита для почти круговой или почти экваториальной орбиты.
	NearSingularGeometry
)

// Has сообщает, установлен ли флаг.
func (w Warning) Has(flag Warning) bool {
	return w&flag != 0
}

func (w Warning) String() string {
	if w == 0 {
		return "none"
	}

	var parts []string
	if w.Has(DecayedOrbit) {
		parts = append(parts, ErrDecayedOrbit.Error())
	}
	if w.Has(NearSingularGeometry) {
		parts = append(parts, ErrNearSingularGeometry.Error())
	}

	return strings.Join(parts, ", ")
}

// PropagationWarning нефатальное предупреждение, приложенное к корректному вектору состояния.
type PropagationWarning struct {
	Tsince float64
	Flags  Warning
}

func (w *PropagationWarning) Error() string {
	return fmt.Sprintf("propagation warning at tsince=%.6f min: %s", w.Tsince, w.Flags)
}

// Is позволяет проверять отдельные флаги: errors.Is(err, ErrDecayedOrbit).
func (w *PropagationWarning) Is(target error) bool {
	switch target {
	case ErrDecayedOrbit:
		return w.Flags.Has(DecayedOrbit)
	case ErrNearSingularGeometry:
		return w.Flags.Has(NearSingularGeometry)
	default:
		return false
	}
}
