// Package sgp4 реализует модель SGP4/SDP4: преобразование TLE в средние
// элементы и расчёт положения и скорости в системе TEME.
package sgp4

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/art-injener/orbitprop/internal/tle"
)

const (
	twoPi         = 2 * math.Pi
	deg2rad       = math.Pi / 180
	minutesPerDay = 1440.0
	x2o3          = 2.0 / 3.0

	// DeepSpacePeriod граница периода в минутах, начиная с которой применяется SDP4.
	DeepSpacePeriod = 225.0

	// jd1950 начало отсчёта эпохи модели (1949-12-31 00:00 UT).
	jd1950 = 2433281.5

	// Пороги защиты от вырождения.
	circularEcc     = 1.0e-4
	minEccentricity = 1.0e-6
	polarGuard      = 1.5e-12
)

// Regime режим модели по периоду обращения.
type Regime int

const (
	NearEarth Regime = iota
	DeepSpace
)

func (r Regime) String() string {
	if r == DeepSpace {
		return "deep-space"
	}

	return "near-earth"
}

// Resonance тип резонанса глубокого космоса.
type Resonance int

const (
	ResonanceNone Resonance = iota
	// ResonanceSynchronous суточный (24 ч) резонанс.
	ResonanceSynchronous
	// ResonanceHalfDay полусуточный (12 ч) резонанс.
	ResonanceHalfDay
)

func (r Resonance) String() string {
	switch r {
	case ResonanceSynchronous:
		return "24h"
	case ResonanceHalfDay:
		return "12h"
	default:
		return "none"
	}
}

// Option настраивает преобразование элементов и Propagator.
type Option func(*options)

type options struct {
	gravity  GravityModel
	opsMode  OpsMode
	logger   *slog.Logger
	observer Observer
}

// WithGravity задаёт гравитационную модель. По умолчанию GravityWGS72.
func WithGravity(g GravityModel) Option {
	return func(o *options) {
		o.gravity = g
	}
}

// WithOpsMode задаёт режим расчёта. По умолчанию OpsImproved.
func WithOpsMode(m OpsMode) Option {
	return func(o *options) {
		o.opsMode = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Elements средние элементы в единицах модели и константы, вычисленные
// один раз при преобразовании. После Convert не изменяются, поэтому один
// экземпляр можно использовать из нескольких горутин.
type Elements struct {
	SatNum int

	Epoch   time.Time // эпоха из TLE, UTC
	EpochJD float64   // юлианская дата эпохи

	Inclination  float64 // рад
	RAAN         float64 // рад
	Eccentricity float64
	ArgPerigee   float64 // рад
	MeanAnomaly  float64 // рад

	KozaiMeanMotion float64 // рад/мин, как в TLE
	MeanMotion      float64 // рад/мин, восстановленное (Brouwer)
	NDot            float64 // рад/мин²
	NDDot           float64 // рад/мин³
	Bstar           float64

	SemiMajorAxis float64 // земные радиусы
	PerigeeRadius float64 // земные радиусы
	ApogeeRadius  float64 // земные радиусы
	Period        float64 // мин

	Regime    Regime
	Resonance Resonance
	Gravity   GravityModel
	OpsMode   OpsMode

	// Guards защиты от вырождения, сработавшие при инициализации.
	Guards Warning

	grav gravity
	gsto float64
	sec  secularCoeffs
	deep *deepSpace
}

// Convert переводит TLE в единицы модели, классифицирует орбиту и
// инициализирует модель.
func Convert(t *tle.TLE, opts ...Option) (*Elements, error) {
	if t == nil {
		return nil, ErrNilTLE
	}

	o := buildOptions(opts)

	el := &Elements{
		SatNum:          t.NoradID,
		Epoch:           t.Epoch,
		EpochJD:         julian.CalendarGregorianToJD(t.EpochYear, 1, t.EpochDay),
		Inclination:     t.Inclination * deg2rad,
		RAAN:            t.RAAN * deg2rad,
		Eccentricity:    t.Eccentricity,
		ArgPerigee:      t.ArgOfPerigee * deg2rad,
		MeanAnomaly:     t.MeanAnomaly * deg2rad,
		KozaiMeanMotion: t.MeanMotion * twoPi / minutesPerDay,
		NDot:            t.MeanMotionDot * twoPi / (minutesPerDay * minutesPerDay),
		NDDot:           t.MeanMotionDot2 * twoPi / (minutesPerDay * minutesPerDay * minutesPerDay),
		Bstar:           t.Bstar,
		Gravity:         o.gravity,
		OpsMode:         o.opsMode,
		grav:            o.gravity.constants(),
	}

	if err := el.checkRaw(); err != nil {
		return nil, err
	}

	el.recoverMeanMotion()

	if el.SemiMajorAxis <= 1 {
		return nil, &InvalidElementError{
			Field:  "semi-major axis",
			Value:  el.SemiMajorAxis * el.grav.radius,
			Reason: "orbit lies inside the Earth",
		}
	}

	el.initSecular()
	if el.Regime == DeepSpace {
		el.deep = newDeepSpace(el)
		el.Resonance = el.deep.irez
	}

	// Пробный расчёт на эпоху отсекает наборы, которые модель не может обработать.
	if _, err := Propagate(el, 0); err != nil {
		var me *ModelError
		if errors.As(err, &me) {
			return nil, &InvalidElementError{Field: "epoch state", Value: me.Value, Reason: me.Reason.String()}
		}

		return nil, err
	}

	return el, nil
}

// checkRaw проверяет элементы до инициализации модели.
func (el *Elements) checkRaw() error {
	switch {
	case !(el.Eccentricity >= 0 && el.Eccentricity < 1):
		return &InvalidElementError{Field: "eccentricity", Value: el.Eccentricity, Reason: "must be in [0, 1)"}
	case !(el.KozaiMeanMotion > 0) || math.IsInf(el.KozaiMeanMotion, 0):
		return &InvalidElementError{Field: "mean motion", Value: el.KozaiMeanMotion, Reason: "must be positive"}
	case !(el.Inclination >= 0 && el.Inclination <= math.Pi):
		return &InvalidElementError{Field: "inclination", Value: el.Inclination, Reason: "must be in [0, pi]"}
	}

	finite := []struct {
		name string
		v    float64
	}{
		{"raan", el.RAAN},
		{"argument of perigee", el.ArgPerigee},
		{"mean anomaly", el.MeanAnomaly},
		{"mean motion dot", el.NDot},
		{"mean motion ddot", el.NDDot},
		{"bstar", el.Bstar},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InvalidElementError{Field: f.name, Value: f.v, Reason: "must be finite"}
		}
	}

	return nil
}

// recoverMeanMotion убирает из среднего движения TLE поправку Kozai
// и вычисляет большую полуось, радиусы апсид, период и режим.
func (el *Elements) recoverMeanMotion() {
	g := el.grav

	e := el.Eccentricity
	omeosq := 1 - e*e
	rteosq := math.Sqrt(omeosq)
	cosio := math.Cos(el.Inclination)
	cosio2 := cosio * cosio

	ak := math.Pow(g.xke/el.KozaiMeanMotion, x2o3)
	d1 := 0.75 * g.j2 * (3*cosio2 - 1) / (rteosq * omeosq)
	del := d1 / (ak * ak)
	adel := ak * (1 - del*del - del*(1.0/3.0+134*del*del/81))
	del = d1 / (adel * adel)

	el.MeanMotion = el.KozaiMeanMotion / (1 + del)
	el.SemiMajorAxis = math.Pow(g.xke/el.MeanMotion, x2o3)
	el.PerigeeRadius = el.SemiMajorAxis * (1 - e)
	el.ApogeeRadius = el.SemiMajorAxis * (1 + e)
	el.Period = twoPi / el.MeanMotion

	if el.Period >= DeepSpacePeriod {
		el.Regime = DeepSpace
	}

	epoch := el.EpochJD - jd1950
	if el.OpsMode == OpsAFSPC {
		el.gsto = gstoAFSPC(epoch)
	} else {
		el.gsto = GMST(el.EpochJD)
	}
}

// EarthRadius возвращает экваториальный радиус выбранной модели, км.
func (el *Elements) EarthRadius() float64 {
	return el.grav.radius
}

// EpochTime возвращает эпоху, восстановленную из юлианской даты.
// Совпадает с Epoch с точностью до округления юлианской даты (~10 мкс).
func (el *Elements) EpochTime() time.Time {
	return JDToTime(el.EpochJD)
}

// Tsince возвращает время от эпохи до t в минутах.
func (el *Elements) Tsince(t time.Time) float64 {
	return t.Sub(el.Epoch).Minutes()
}

// PerigeeAltitude возвращает высоту перигея над экватором, км.
func (el *Elements) PerigeeAltitude() float64 {
	return (el.PerigeeRadius - 1) * el.grav.radius
}

// ApogeeAltitude возвращает высоту апогея над экватором, км.
func (el *Elements) ApogeeAltitude() float64 {
	return (el.ApogeeRadius - 1) * el.grav.radius
}
