package sgp4

import (
	"fmt"
	"math"
)

// secularCoeffs константы вековых возмущений и сопротивления атмосферы.
type secularCoeffs struct {
	// isimp упрощённая модель сопротивления: перигей ниже 220 км или SDP4.
	isimp bool

	aycof, xlcof           float64
	con41, x1mth2, x7thm1  float64
	cc1, cc4, cc5          float64
	d2, d3, d4             float64
	t2cof, t3cof           float64
	t4cof, t5cof           float64
	eta, delmo, sinmao     float64
	omgcof, xmcof, nodecf  float64
	mdot, argpdot, nodedot float64
}

// initSecular вычисляет коэффициенты J2/J3/J4 и сопротивления (C1…C5, D2…D4).
func (el *Elements) initSecular() {
	g := el.grav
	s := &el.sec

	ao := el.SemiMajorAxis
	no := el.MeanMotion
	ecco := el.Eccentricity
	bstar := el.Bstar

	eccsq := ecco * ecco
	omeosq := 1 - eccsq
	rteosq := math.Sqrt(omeosq)
	sinio, cosio := math.Sincos(el.Inclination)
	cosio2 := cosio * cosio
	cosio4 := cosio2 * cosio2
	po := ao * omeosq
	pinvsq := 1 / (po * po)

	con42 := 1 - 5*cosio2
	s.con41 = -con42 - cosio2 - cosio2
	s.x1mth2 = 1 - cosio2
	s.x7thm1 = 7*cosio2 - 1

	// Перигей ниже 220 км: только линейный член сопротивления.
	s.isimp = el.PerigeeRadius < 220/g.radius+1

	// Параметр плотности s и (q0 - s)^4 с поправкой для низкого перигея.
	sfour := 78/g.radius + 1
	qzms24 := math.Pow((120-78)/g.radius, 4)
	if perigee := (el.PerigeeRadius - 1) * g.radius; perigee < 156 {
		sfour = perigee - 78
		if perigee < 98 {
			sfour = 20
		}
		qzms24 = math.Pow((120-sfour)/g.radius, 4)
		sfour = sfour/g.radius + 1
	}

	tsi := 1 / (ao - sfour)
	s.eta = ao * ecco * tsi
	etasq := s.eta * s.eta
	eeta := ecco * s.eta
	psisq := math.Abs(1 - etasq)
	coef := qzms24 * math.Pow(tsi, 4)
	coef1 := coef / math.Pow(psisq, 3.5)

	cc2 := coef1 * no * (ao*(1+1.5*etasq+eeta*(4+etasq)) +
		0.375*g.j2*tsi/psisq*s.con41*(8+3*etasq*(8+etasq)))
	s.cc1 = bstar * cc2

	var cc3 float64
	if ecco > circularEcc {
		cc3 = -2 * coef * tsi * g.j3oj2 * no * sinio / ecco
	} else {
		el.Guards |= NearSingularGeometry
	}

	s.cc4 = 2 * no * coef1 * ao * omeosq * (s.eta*(2+0.5*etasq) + ecco*(0.5+2*etasq) -
		g.j2*tsi/(ao*psisq)*(-3*s.con41*(1-2*eeta+etasq*(1.5-0.5*eeta))+
			0.75*s.x1mth2*(2*etasq-eeta*(1+etasq))*math.Cos(2*el.ArgPerigee)))
	s.cc5 = 2 * coef1 * ao * omeosq * (1 + 2.75*(etasq+eeta) + eeta*etasq)

	// Вековые скорости от J2 и J4.
	temp1 := 1.5 * g.j2 * pinvsq * no
	temp2 := 0.5 * temp1 * g.j2 * pinvsq
	temp3 := -0.46875 * g.j4 * pinvsq * pinvsq * no
	s.mdot = no + 0.5*temp1*rteosq*s.con41 + 0.0625*temp2*rteosq*(13-78*cosio2+137*cosio4)
	s.argpdot = -0.5*temp1*con42 + 0.0625*temp2*(7-114*cosio2+395*cosio4) +
		temp3*(3-36*cosio2+49*cosio4)
	xhdot1 := -temp1 * cosio
	s.nodedot = xhdot1 + (0.5*temp2*(4-19*cosio2)+2*temp3*(3-7*cosio2))*cosio

	s.omgcof = bstar * cc3 * math.Cos(el.ArgPerigee)
	if ecco > circularEcc {
		s.xmcof = -x2o3 * coef * bstar / eeta
	}
	s.nodecf = 3.5 * omeosq * xhdot1 * s.cc1
	s.t2cof = 1.5 * s.cc1

	var guarded bool
	s.xlcof, guarded = longPeriodCoeff(g.j3oj2, sinio, cosio)
	if guarded {
		el.Guards |= NearSingularGeometry
	}
	s.aycof = -0.5 * g.j3oj2 * sinio
	s.delmo = math.Pow(1+s.eta*math.Cos(el.MeanAnomaly), 3)
	s.sinmao = math.Sin(el.MeanAnomaly)

	if el.Regime == DeepSpace {
		s.isimp = true
	}

	if !s.isimp {
		cc1sq := s.cc1 * s.cc1
		s.d2 = 4 * ao * tsi * cc1sq
		temp := s.d2 * tsi * s.cc1 / 3
		s.d3 = (17*ao + sfour) * temp
		s.d4 = 0.5 * temp * ao * tsi * (221*ao + 31*sfour) * s.cc1
		s.t3cof = s.d2 + 2*cc1sq
		s.t4cof = 0.25 * (3*s.d3 + s.cc1*(12*s.d2+10*cc1sq))
		s.t5cof = 0.2 * (3*s.d4 + 12*s.cc1*s.d3 + 6*s.d2*s.d2 + 15*cc1sq*(2*s.d2+cc1sq))
	}
}

// longPeriodCoeff считает xlcof; при cos i → -1 знаменатель заменяется порогом.
func longPeriodCoeff(j3oj2, sini, cosi float64) (xlcof float64, guarded bool) {
	den := 1 + cosi
	if math.Abs(den) <= polarGuard {
		den = polarGuard
		guarded = true
	}

	return -0.25 * j3oj2 * sini * (3 + 5*cosi) / den, guarded
}

// MeanState средние элементы на момент Tsince после вековых возмущений
// (и, для SDP4, вековых лунно-солнечных и резонансных поправок).
// Расстояния в земных радиусах, углы в радианах.
type MeanState struct {
	Tsince        float64
	SemiMajorAxis float64
	Eccentricity  float64
	Inclination   float64
	RAAN          float64
	ArgPerigee    float64
	MeanAnomaly   float64
	MeanMotion    float64 // рад/мин
	Warnings      Warning
}

// PerigeeRadius возвращает радиус перигея, земные радиусы.
func (m MeanState) PerigeeRadius() float64 {
	return m.SemiMajorAxis * (1 - m.Eccentricity)
}

// ApogeeRadius возвращает радиус апогея, земные радиусы.
func (m MeanState) ApogeeRadius() float64 {
	return m.SemiMajorAxis * (1 + m.Eccentricity)
}

// EccentricAnomaly решает уравнение Кеплера для средней аномалии.
func (m MeanState) EccentricAnomaly() float64 {
	e, _ := SolveKepler(m.MeanAnomaly, m.Eccentricity)

	return e
}

// Radius возвращает радиус на невозмущённом эллипсе средних элементов, земные радиусы.
func (m MeanState) Radius() float64 {
	return m.SemiMajorAxis * (1 - m.Eccentricity*math.Cos(m.EccentricAnomaly()))
}

// TrueAnomaly возвращает истинную аномалию средних элементов, рад.
func (m MeanState) TrueAnomaly() float64 {
	return TrueAnomaly(m.EccentricAnomaly(), m.Eccentricity)
}

// Secular применяет вековые возмущения к элементам на момент tsince (мин).
// Ошибка возвращается при нечисловом tsince и при выходе за пределы модели; снижение
// перигея ниже поверхности отмечается флагом DecayedOrbit.
func Secular(el *Elements, tsince float64) (MeanState, error) {
	if el == nil {
		return MeanState{}, ErrNilElements
	}
	if math.IsNaN(tsince) || math.IsInf(tsince, 0) {
		return MeanState{}, fmt.Errorf("%w: %v", ErrInvalidTsince, tsince)
	}

	s := &el.sec
	t := tsince

	xmdf := el.MeanAnomaly + s.mdot*t
	argpdf := el.ArgPerigee + s.argpdot*t
	nodedf := el.RAAN + s.nodedot*t
	argpm := argpdf
	mm := xmdf
	t2 := t * t
	nodem := nodedf + s.nodecf*t2
	tempa := 1 - s.cc1*t
	tempe := el.Bstar * s.cc4 * t
	templ := s.t2cof * t2

	if !s.isimp {
		delomg := s.omgcof * t
		delm := s.xmcof * (math.Pow(1+s.eta*math.Cos(xmdf), 3) - s.delmo)
		temp := delomg + delm
		mm = xmdf + temp
		argpm = argpdf - temp
		t3 := t2 * t
		t4 := t3 * t
		tempa = tempa - s.d2*t2 - s.d3*t3 - s.d4*t4
		tempe += el.Bstar * s.cc5 * (math.Sin(mm) - s.sinmao)
		templ += s.t3cof*t3 + t4*(s.t4cof+t*s.t5cof)
	}

	nm := el.MeanMotion
	em := el.Eccentricity
	inclm := el.Inclination
	if el.deep != nil {
		em, argpm, inclm, mm, nodem, nm = el.deep.secular(el, t, em, argpm, inclm, mm, nodem)
	}

	if nm <= 0 {
		return MeanState{}, &ModelError{Tsince: t, Reason: ReasonMeanMotion, Value: nm}
	}

	am := math.Pow(el.grav.xke/nm, x2o3) * tempa * tempa
	nm = el.grav.xke / math.Pow(am, 1.5)
	em -= tempe

	if em >= 1 || em < -0.001 {
		return MeanState{}, &ModelError{Tsince: t, Reason: ReasonEccentricity, Value: em}
	}

	var warn Warning
	if em < minEccentricity {
		em = minEccentricity
		warn |= NearSingularGeometry
	}

	mm += el.MeanMotion * templ
	xlm := mm + argpm + nodem
	nodem = math.Mod(nodem, twoPi)
	argpm = math.Mod(argpm, twoPi)
	xlm = math.Mod(xlm, twoPi)
	mm = math.Mod(xlm-argpm-nodem, twoPi)

	if am*(1-em) < 1 {
		warn |= DecayedOrbit
	}

	return MeanState{
		Tsince:        t,
		SemiMajorAxis: am,
		Eccentricity:  em,
		Inclination:   inclm,
		RAAN:          nodem,
		ArgPerigee:    argpm,
		MeanAnomaly:   mm,
		MeanMotion:    nm,
		Warnings:      warn,
	}, nil
}
