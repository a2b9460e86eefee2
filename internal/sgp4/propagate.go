package sgp4

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// StateVector положение (км) и скорость (км/с) в системе TEME на момент Tsince (мин от эпохи).
type StateVector struct {
	Tsince   float64
	Position r3.Vec
	Velocity r3.Vec
	Warnings Warning
}

// Radius возвращает расстояние от центра Земли, км.
func (sv StateVector) Radius() float64 {
	return r3.Norm(sv.Position)
}

// Speed возвращает модуль скорости, км/с.
func (sv StateVector) Speed() float64 {
	return r3.Norm(sv.Velocity)
}

// Warning возвращает предупреждение пропагации или nil, если флагов нет.
func (sv StateVector) Warning() error {
	if sv.Warnings == 0 {
		return nil
	}

	return &PropagationWarning{Tsince: sv.Tsince, Flags: sv.Warnings}
}

func (sv StateVector) String() string {
	return fmt.Sprintf("t=%.4f min R[%.6f, %.6f, %.6f km] V[%.9f, %.9f, %.9f km/s]",
		sv.Tsince,
		sv.Position.X, sv.Position.Y, sv.Position.Z,
		sv.Velocity.X, sv.Velocity.Y, sv.Velocity.Z,
	)
}

// Propagate вычисляет вектор состояния на tsince минут от эпохи.
// Ошибка возвращается только при выходе за пределы модели (*ModelError);
// нефатальные флаги доступны через StateVector.Warnings.
func Propagate(el *Elements, tsince float64) (StateVector, error) {
	if el == nil {
		return StateVector{}, ErrNilElements
	}

	ms, err := Secular(el, tsince)
	if err != nil {
		return StateVector{}, err
	}

	g := el.grav
	s := &el.sec

	ep := ms.Eccentricity
	xincp := ms.Inclination
	argpp := ms.ArgPerigee
	nodep := ms.RAAN
	mp := ms.MeanAnomaly
	sinip, cosip := math.Sincos(xincp)

	aycof, xlcof := s.aycof, s.xlcof
	con41, x1mth2, x7thm1 := s.con41, s.x1mth2, s.x7thm1
	warn := ms.Warnings | el.Guards

	if el.deep != nil {
		ep, xincp, nodep, argpp, mp = el.deep.periodics(el.OpsMode, tsince, ep, xincp, nodep, argpp, mp)
		if xincp < 0 {
			xincp = -xincp
			nodep += math.Pi
			argpp -= math.Pi
		}
		if ep < 0 || ep > 1 {
			return StateVector{}, &ModelError{Tsince: tsince, Reason: ReasonPerturbedEccentricity, Value: ep}
		}

		sinip, cosip = math.Sincos(xincp)
		aycof = -0.5 * g.j3oj2 * sinip
		var guarded bool
		xlcof, guarded = longPeriodCoeff(g.j3oj2, sinip, cosip)
		if guarded {
			warn |= NearSingularGeometry
		}

		cosisq := cosip * cosip
		con41 = 3*cosisq - 1
		x1mth2 = 1 - cosisq
		x7thm1 = 7*cosisq - 1
	}

	am := ms.SemiMajorAxis
	nm := ms.MeanMotion

	// Долгопериодические поправки.
	axnl := ep * math.Cos(argpp)
	temp := 1 / (am * (1 - ep*ep))
	aynl := ep*math.Sin(argpp) + temp*aycof
	xl := mp + argpp + nodep + temp*xlcof*axnl

	u := math.Mod(xl-nodep, twoPi)
	sineo1, coseo1 := solveEccentricLongitude(u, axnl, aynl)

	// Короткопериодические поправки.
	ecose := axnl*coseo1 + aynl*sineo1
	esine := axnl*sineo1 - aynl*coseo1
	el2 := axnl*axnl + aynl*aynl
	pl := am * (1 - el2)
	if pl < 0 {
		return StateVector{}, &ModelError{Tsince: tsince, Reason: ReasonSemiLatusRectum, Value: pl}
	}

	rl := am * (1 - ecose)
	rdotl := math.Sqrt(am) * esine / rl
	rvdotl := math.Sqrt(pl) / rl
	betal := math.Sqrt(1 - el2)
	temp = esine / (1 + betal)
	sinu := am / rl * (sineo1 - aynl - axnl*temp)
	cosu := am / rl * (coseo1 - axnl + aynl*temp)
	su := math.Atan2(sinu, cosu)
	sin2u := (cosu + cosu) * sinu
	cos2u := 1 - 2*sinu*sinu

	temp = 1 / pl
	temp1 := 0.5 * g.j2 * temp
	temp2 := temp1 * temp

	mrt := rl*(1-1.5*temp2*betal*con41) + 0.5*temp1*x1mth2*cos2u
	su -= 0.25 * temp2 * x7thm1 * sin2u
	xnode := nodep + 1.5*temp2*cosip*sin2u
	xinc := xincp + 1.5*temp2*cosip*sinip*cos2u
	mvt := rdotl - nm*temp1*x1mth2*sin2u/g.xke
	rvdot := rvdotl + nm*temp1*(x1mth2*cos2u+1.5*con41)/g.xke

	// Ориентация в TEME.
	sinsu, cossu := math.Sincos(su)
	snod, cnod := math.Sincos(xnode)
	sini, cosi := math.Sincos(xinc)
	xmx := -snod * cosi
	xmy := cnod * cosi
	ux := r3.Vec{X: xmx*sinsu + cnod*cossu, Y: xmy*sinsu + snod*cossu, Z: sini * sinsu}
	vx := r3.Vec{X: xmx*cossu - cnod*sinsu, Y: xmy*cossu - snod*sinsu, Z: sini * cossu}

	if mrt < 1 {
		warn |= DecayedOrbit
	}

	vkmpersec := g.radius * g.xke / 60.0

	return StateVector{
		Tsince:   tsince,
		Position: r3.Scale(mrt*g.radius, ux),
		Velocity: r3.Scale(vkmpersec, r3.Add(r3.Scale(mvt, ux), r3.Scale(rvdot, vx))),
		Warnings: warn,
	}, nil
}
