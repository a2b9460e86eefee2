package sgp4

import "math"

// Константы лунно-солнечных возмущений.
const (
	zes    = 0.01675
	zel    = 0.05490
	zns    = 1.19459e-5
	znl    = 1.5835218e-4
	c1ss   = 2.9864797e-6
	c1l    = 4.7968065e-7
	zsinis = 0.39785416
	zcosis = 0.91744867
	zcosgs = 0.1945905
	zsings = -0.98088458

	// rptim угловая скорость вращения Земли, рад/мин.
	rptim = 4.37526908801129966e-3

	// Граница почти экваториальной орбиты для лунно-солнечных скоростей узла (3°).
	equatorialGuard = 5.2359877e-2

	// Lyddane-форма периодик применяется ниже этого наклонения, рад.
	lyddaneIncl = 0.2
)

// Шаг интегрирования резонанса. Интегрирование всегда начинается с эпохи.
const (
	resonanceStep  = 720.0
	resonanceStep2 = 259200.0 // resonanceStep² / 2
)

// thirdBody коэффициенты одного возмущающего тела (Солнце или Луна).
type thirdBody struct {
	s1, s2, s3, s4, s5, s6, s7 float64
	z1, z2, z3                 float64
	z11, z12, z13              float64
	z21, z22, z23              float64
	z31, z32, z33              float64
}

// bodyGeometry ориентация плоскости орбиты возмущающего тела.
type bodyGeometry struct {
	cosg, sing float64
	cosi, sini float64
	cosh, sinh float64
	cc         float64
}

// deepSpace константы SDP4: лунно-солнечные периодики, вековые скорости и резонанс.
type deepSpace struct {
	zmol, zmos float64

	// Солнечные периодики.
	se2, se3, si2, si3, sl2, sl3, sl4 float64
	sgh2, sgh3, sgh4, sh2, sh3        float64
	// Лунные периодики.
	ee2, e3, xi2, xi3, xl2, xl3, xl4 float64
	xgh2, xgh3, xgh4, xh2, xh3       float64

	// Вековые скорости.
	dedt, didt, dmdt, domdt, dnodt float64

	irez         Resonance
	xlamo, xfact float64

	// 24 ч резонанс.
	del1, del2, del3 float64
	// 12 ч резонанс.
	d2201, d2211, d3210, d3222, d4410 float64
	d4422, d5220, d5232, d5421, d5433 float64
}

// newDeepSpace инициализирует поправки глубокого космоса на эпоху.
func newDeepSpace(el *Elements) *deepSpace {
	ds := &deepSpace{}

	epoch := el.EpochJD - jd1950
	nm := el.MeanMotion
	em := el.Eccentricity
	emsq := em * em
	betasq := 1 - emsq
	rtemsq := math.Sqrt(betasq)
	snodm, cnodm := math.Sincos(el.RAAN)
	sinomm, cosomm := math.Sincos(el.ArgPerigee)
	sinim, cosim := math.Sincos(el.Inclination)

	// Положение Луны на эпоху.
	day := epoch + 18261.5
	xnodce := math.Mod(4.5236020-9.2422029e-4*day, twoPi)
	stem, ctem := math.Sincos(xnodce)
	zcosil := 0.91375164 - 0.03568096*ctem
	zsinil := math.Sqrt(1 - zcosil*zcosil)
	zsinhl := 0.089683511 * stem / zsinil
	zcoshl := math.Sqrt(1 - zsinhl*zsinhl)
	gam := 5.8351514 + 0.0019443680*day
	zx := 0.39785416 * stem / zsinil
	zy := zcoshl*ctem + 0.91744867*zsinhl*stem
	zx = gam + math.Atan2(zx, zy) - xnodce
	zsingl, zcosgl := math.Sincos(zx)

	ds.zmol = math.Mod(4.7199672+0.22997150*day-gam, twoPi)
	ds.zmos = math.Mod(6.2565837+0.017201977*day, twoPi)

	orbit := orbitGeometry{
		sinim: sinim, cosim: cosim,
		sinomm: sinomm, cosomm: cosomm,
		emsq: emsq, betasq: betasq, rtemsq: rtemsq,
		em: em, xnoi: 1 / nm,
	}

	sun := orbit.terms(bodyGeometry{
		cosg: zcosgs, sing: zsings,
		cosi: zcosis, sini: zsinis,
		cosh: cnodm, sinh: snodm,
		cc: c1ss,
	})
	moon := orbit.terms(bodyGeometry{
		cosg: zcosgl, sing: zsingl,
		cosi: zcosil, sini: zsinil,
		cosh: zcoshl*cnodm + zsinhl*snodm,
		sinh: snodm*zcoshl - cnodm*zsinhl,
		cc:   c1l,
	})

	ds.se2 = 2 * sun.s1 * sun.s6
	ds.se3 = 2 * sun.s1 * sun.s7
	ds.si2 = 2 * sun.s2 * sun.z12
	ds.si3 = 2 * sun.s2 * (sun.z13 - sun.z11)
	ds.sl2 = -2 * sun.s3 * sun.z2
	ds.sl3 = -2 * sun.s3 * (sun.z3 - sun.z1)
	ds.sl4 = -2 * sun.s3 * (-21 - 9*emsq) * zes
	ds.sgh2 = 2 * sun.s4 * sun.z32
	ds.sgh3 = 2 * sun.s4 * (sun.z33 - sun.z31)
	ds.sgh4 = -18 * sun.s4 * zes
	ds.sh2 = -2 * sun.s2 * sun.z22
	ds.sh3 = -2 * sun.s2 * (sun.z23 - sun.z21)

	ds.ee2 = 2 * moon.s1 * moon.s6
	ds.e3 = 2 * moon.s1 * moon.s7
	ds.xi2 = 2 * moon.s2 * moon.z12
	ds.xi3 = 2 * moon.s2 * (moon.z13 - moon.z11)
	ds.xl2 = -2 * moon.s3 * moon.z2
	ds.xl3 = -2 * moon.s3 * (moon.z3 - moon.z1)
	ds.xl4 = -2 * moon.s3 * (-21 - 9*emsq) * zel
	ds.xgh2 = 2 * moon.s4 * moon.z32
	ds.xgh3 = 2 * moon.s4 * (moon.z33 - moon.z31)
	ds.xgh4 = -18 * moon.s4 * zel
	ds.xh2 = -2 * moon.s2 * moon.z22
	ds.xh3 = -2 * moon.s2 * (moon.z23 - moon.z21)

	ds.initRates(el, sun, moon, emsq, sinim, cosim)
	ds.initResonance(el, emsq, sinim, cosim)

	return ds
}

// orbitGeometry величины орбиты спутника, общие для Солнца и Луны.
type orbitGeometry struct {
	sinim, cosim   float64
	sinomm, cosomm float64
	emsq, betasq   float64
	rtemsq, em     float64
	xnoi           float64
}

// terms вычисляет коэффициенты возмущения от одного тела.
func (o orbitGeometry) terms(b bodyGeometry) thirdBody {
	a1 := b.cosg*b.cosh + b.sing*b.cosi*b.sinh
	a3 := -b.sing*b.cosh + b.cosg*b.cosi*b.sinh
	a7 := -b.cosg*b.sinh + b.sing*b.cosi*b.cosh
	a8 := b.sing * b.sini
	a9 := b.sing*b.sinh + b.cosg*b.cosi*b.cosh
	a10 := b.cosg * b.sini
	a2 := o.cosim*a7 + o.sinim*a8
	a4 := o.cosim*a9 + o.sinim*a10
	a5 := -o.sinim*a7 + o.cosim*a8
	a6 := -o.sinim*a9 + o.cosim*a10

	x1 := a1*o.cosomm + a2*o.sinomm
	x2 := a3*o.cosomm + a4*o.sinomm
	x3 := -a1*o.sinomm + a2*o.cosomm
	x4 := -a3*o.sinomm + a4*o.cosomm
	x5 := a5 * o.sinomm
	x6 := a6 * o.sinomm
	x7 := a5 * o.cosomm
	x8 := a6 * o.cosomm

	var t thirdBody
	emsq := o.emsq

	t.z31 = 12*x1*x1 - 3*x3*x3
	t.z32 = 24*x1*x2 - 6*x3*x4
	t.z33 = 12*x2*x2 - 3*x4*x4
	t.z1 = 3*(a1*a1+a2*a2) + t.z31*emsq
	t.z2 = 6*(a1*a3+a2*a4) + t.z32*emsq
	t.z3 = 3*(a3*a3+a4*a4) + t.z33*emsq
	t.z11 = -6*a1*a5 + emsq*(-24*x1*x7-6*x3*x5)
	t.z12 = -6*(a1*a6+a3*a5) + emsq*(-24*(x2*x7+x1*x8)-6*(x3*x6+x4*x5))
	t.z13 = -6*a3*a6 + emsq*(-24*x2*x8-6*x4*x6)
	t.z21 = 6*a2*a5 + emsq*(24*x1*x5-6*x3*x7)
	t.z22 = 6*(a4*a5+a2*a6) + emsq*(24*(x2*x5+x1*x6)-6*(x4*x7+x3*x8))
	t.z23 = 6*a4*a6 + emsq*(24*x2*x6-6*x4*x8)
	t.z1 = t.z1 + t.z1 + o.betasq*t.z31
	t.z2 = t.z2 + t.z2 + o.betasq*t.z32
	t.z3 = t.z3 + t.z3 + o.betasq*t.z33

	t.s3 = b.cc * o.xnoi
	t.s2 = -0.5 * t.s3 / o.rtemsq
	t.s4 = t.s3 * o.rtemsq
	t.s1 = -15 * o.em * t.s4
	t.s5 = x1*x3 + x2*x4
	t.s6 = x2*x3 + x1*x4
	t.s7 = x2*x4 - x1*x3

	return t
}

// initRates вычисляет вековые лунно-солнечные скорости элементов.
func (ds *deepSpace) initRates(el *Elements, sun, moon thirdBody, emsq, sinim, cosim float64) {
	inclm := el.Inclination
	nearEquatorial := inclm < equatorialGuard || inclm > math.Pi-equatorialGuard
	if nearEquatorial {
		el.Guards |= NearSingularGeometry
	}

	ses := sun.s1 * zns * sun.s5
	sis := sun.s2 * zns * (sun.z11 + sun.z13)
	sls := -zns * sun.s3 * (sun.z1 + sun.z3 - 14 - 6*emsq)
	sghs := sun.s4 * zns * (sun.z31 + sun.z33 - 6)
	shs := -zns * sun.s2 * (sun.z21 + sun.z23)
	if nearEquatorial {
		shs = 0
	}
	if sinim != 0 {
		shs /= sinim
	}
	sgs := sghs - cosim*shs

	ds.dedt = ses + moon.s1*znl*moon.s5
	ds.didt = sis + moon.s2*znl*(moon.z11+moon.z13)
	ds.dmdt = sls - znl*moon.s3*(moon.z1+moon.z3-14-6*emsq)
	sghl := moon.s4 * znl * (moon.z31 + moon.z33 - 6)
	shll := -znl * moon.s2 * (moon.z21 + moon.z23)
	if nearEquatorial {
		shll = 0
	}
	ds.domdt = sgs + sghl
	ds.dnodt = shs
	if sinim != 0 {
		ds.domdt -= cosim / sinim * shll
		ds.dnodt += shll / sinim
	}
}

// initResonance определяет тип резонанса и его коэффициенты.
func (ds *deepSpace) initResonance(el *Elements, emsq, sinim, cosim float64) {
	nm := el.MeanMotion
	em := el.Eccentricity

	switch {
	case nm > 0.0034906585 && nm < 0.0052359877:
		ds.irez = ResonanceSynchronous
	case nm >= 8.26e-3 && nm <= 9.24e-3 && em >= 0.5:
		ds.irez = ResonanceHalfDay
	default:
		return
	}

	s := &el.sec
	theta := math.Mod(el.gsto, twoPi)
	aonv := math.Pow(nm/el.grav.xke, x2o3)

	if ds.irez == ResonanceSynchronous {
		const (
			q22 = 1.7891679e-6
			q31 = 2.1460748e-6
			q33 = 2.2123015e-7
		)
		g200 := 1 + emsq*(-2.5+0.8125*emsq)
		g310 := 1 + 2*emsq
		g300 := 1 + emsq*(-6+6.60937*emsq)
		f220 := 0.75 * (1 + cosim) * (1 + cosim)
		f311 := 0.9375*sinim*sinim*(1+3*cosim) - 0.75*(1+cosim)
		f330 := 1 + cosim
		f330 = 1.875 * f330 * f330 * f330
		del1 := 3 * nm * nm * aonv * aonv
		ds.del2 = 2 * del1 * f220 * g200 * q22
		ds.del3 = 3 * del1 * f330 * g300 * q33 * aonv
		ds.del1 = del1 * f311 * g310 * q31 * aonv

		ds.xlamo = math.Mod(el.MeanAnomaly+el.RAAN+el.ArgPerigee-theta, twoPi)
		ds.xfact = s.mdot + (s.argpdot + s.nodedot) - rptim + ds.dmdt + ds.domdt + ds.dnodt - nm

		return
	}

	const (
		root22 = 1.7891679e-6
		root32 = 3.7393792e-7
		root44 = 7.3636953e-9
		root52 = 1.1428639e-7
		root54 = 2.1765803e-9
	)

	cosisq := cosim * cosim
	eoc := em * emsq
	g201 := -0.306 - (em-0.64)*0.440

	var g211, g310, g322, g410, g422, g520, g521, g532, g533 float64
	if em <= 0.65 {
		g211 = 3.616 - 13.2470*em + 16.2900*emsq
		g310 = -19.302 + 117.3900*em - 228.4190*emsq + 156.5910*eoc
		g322 = -18.9068 + 109.7927*em - 214.6334*emsq + 146.5816*eoc
		g410 = -41.122 + 242.6940*em - 471.0940*emsq + 313.9530*eoc
		g422 = -146.407 + 841.8800*em - 1629.014*emsq + 1083.4350*eoc
		g520 = -532.114 + 3017.977*em - 5740.032*emsq + 3708.2760*eoc
	} else {
		g211 = -72.099 + 331.819*em - 508.738*emsq + 266.724*eoc
		g310 = -346.844 + 1582.851*em - 2415.925*emsq + 1246.113*eoc
		g322 = -342.585 + 1554.908*em - 2366.899*emsq + 1215.972*eoc
		g410 = -1052.797 + 4758.686*em - 7193.992*emsq + 3651.957*eoc
		g422 = -3581.690 + 16178.110*em - 24462.770*emsq + 12422.520*eoc
		if em > 0.715 {
			g520 = -5149.66 + 29936.92*em - 54087.36*emsq + 31324.56*eoc
		} else {
			g520 = 1464.74 - 4664.75*em + 3763.64*emsq
		}
	}
	if em < 0.7 {
		g533 = -919.22770 + 4988.6100*em - 9064.7700*emsq + 5542.21*eoc
		g521 = -822.71072 + 4568.6173*em - 8491.4146*emsq + 5337.524*eoc
		g532 = -853.66600 + 4690.2500*em - 8624.7700*emsq + 5341.4*eoc
	} else {
		g533 = -37995.780 + 161616.52*em - 229838.20*emsq + 109377.94*eoc
		g521 = -51752.104 + 218913.95*em - 309468.16*emsq + 146349.42*eoc
		g532 = -40023.880 + 170470.89*em - 242699.48*emsq + 115605.82*eoc
	}

	sini2 := sinim * sinim
	f220 := 0.75 * (1 + 2*cosim + cosisq)
	f221 := 1.5 * sini2
	f321 := 1.875 * sinim * (1 - 2*cosim - 3*cosisq)
	f322 := -1.875 * sinim * (1 + 2*cosim - 3*cosisq)
	f441 := 35 * sini2 * f220
	f442 := 39.3750 * sini2 * sini2
	f522 := 9.84375 * sinim * (sini2*(1-2*cosim-5*cosisq) + 0.33333333*(-2+4*cosim+6*cosisq))
	f523 := sinim * (4.92187512*sini2*(-2-4*cosim+10*cosisq) + 6.56250012*(1+2*cosim-3*cosisq))
	f542 := 29.53125 * sinim * (2 - 8*cosim + cosisq*(-12+8*cosim+10*cosisq))
	f543 := 29.53125 * sinim * (-2 - 8*cosim + cosisq*(12+8*cosim-10*cosisq))

	xno2 := nm * nm
	ainv2 := aonv * aonv
	temp1 := 3 * xno2 * ainv2
	temp := temp1 * root22
	ds.d2201 = temp * f220 * g201
	ds.d2211 = temp * f221 * g211
	temp1 *= aonv
	temp = temp1 * root32
	ds.d3210 = temp * f321 * g310
	ds.d3222 = temp * f322 * g322
	temp1 *= aonv
	temp = 2 * temp1 * root44
	ds.d4410 = temp * f441 * g410
	ds.d4422 = temp * f442 * g422
	temp1 *= aonv
	temp = temp1 * root52
	ds.d5220 = temp * f522 * g520
	ds.d5232 = temp * f523 * g532
	temp = 2 * temp1 * root54
	ds.d5421 = temp * f542 * g521
	ds.d5433 = temp * f543 * g533

	ds.xlamo = math.Mod(el.MeanAnomaly+el.RAAN+el.RAAN-theta-theta, twoPi)
	ds.xfact = s.mdot + ds.dmdt + 2*(s.nodedot+ds.dnodt-rptim) - nm
}

// secular добавляет лунно-солнечные вековые поправки и, при резонансе,
// интегрирует резонансные члены шагом ±720 мин от эпохи до t.
// Число шагов зависит только от t, поэтому результат воспроизводим.
func (ds *deepSpace) secular(el *Elements, t, em, argpm, inclm, mm, nodem float64) (
	emOut, argpmOut, inclmOut, mmOut, nodemOut, nmOut float64,
) {
	theta := math.Mod(el.gsto+t*rptim, twoPi)
	em += ds.dedt * t
	inclm += ds.didt * t
	argpm += ds.domdt * t
	nodem += ds.dnodt * t
	mm += ds.dmdt * t
	nm := el.MeanMotion

	if ds.irez == ResonanceNone {
		return em, argpm, inclm, mm, nodem, nm
	}

	delt := resonanceStep
	if t < 0 {
		delt = -resonanceStep
	}

	atime := 0.0
	xni := el.MeanMotion
	xli := ds.xlamo

	var xndt, xldot, xnddt float64
	for {
		xndt, xldot, xnddt = ds.derivatives(el, atime, xli, xni)
		if math.Abs(t-atime) < resonanceStep {
			break
		}
		xli += xldot*delt + xndt*resonanceStep2
		xni += xndt*delt + xnddt*resonanceStep2
		atime += delt
	}

	ft := t - atime
	nm = xni + xndt*ft + xnddt*ft*ft*0.5
	xl := xli + xldot*ft + xndt*ft*ft*0.5
	if ds.irez == ResonanceSynchronous {
		mm = xl - nodem - argpm + theta
	} else {
		mm = xl - 2*nodem + 2*theta
	}

	return em, argpm, inclm, mm, nodem, nm
}

// derivatives возвращает ṅ, λ̇ и n̈ резонансных членов в точке интегрирования.
func (ds *deepSpace) derivatives(el *Elements, atime, xli, xni float64) (xndt, xldot, xnddt float64) {
	const (
		fasx2 = 0.13130908
		fasx4 = 2.8843198
		fasx6 = 0.37448087
		g22   = 5.7686396
		g32   = 0.95240898
		g44   = 1.8014998
		g52   = 1.0508330
		g54   = 4.4108898
	)

	xldot = xni + ds.xfact

	if ds.irez == ResonanceSynchronous {
		xndt = ds.del1*math.Sin(xli-fasx2) + ds.del2*math.Sin(2*(xli-fasx4)) + ds.del3*math.Sin(3*(xli-fasx6))
		xnddt = ds.del1*math.Cos(xli-fasx2) + 2*ds.del2*math.Cos(2*(xli-fasx4)) + 3*ds.del3*math.Cos(3*(xli-fasx6))

		return xndt, xldot, xnddt * xldot
	}

	xomi := el.ArgPerigee + el.sec.argpdot*atime
	x2omi := xomi + xomi
	x2li := xli + xli

	xndt = ds.d2201*math.Sin(x2omi+xli-g22) + ds.d2211*math.Sin(xli-g22) +
		ds.d3210*math.Sin(xomi+xli-g32) + ds.d3222*math.Sin(-xomi+xli-g32) +
		ds.d4410*math.Sin(x2omi+x2li-g44) + ds.d4422*math.Sin(x2li-g44) +
		ds.d5220*math.Sin(xomi+xli-g52) + ds.d5232*math.Sin(-xomi+xli-g52) +
		ds.d5421*math.Sin(xomi+x2li-g54) + ds.d5433*math.Sin(-xomi+x2li-g54)
	xnddt = ds.d2201*math.Cos(x2omi+xli-g22) + ds.d2211*math.Cos(xli-g22) +
		ds.d3210*math.Cos(xomi+xli-g32) + ds.d3222*math.Cos(-xomi+xli-g32) +
		ds.d5220*math.Cos(xomi+xli-g52) + ds.d5232*math.Cos(-xomi+xli-g52) +
		2*(ds.d4410*math.Cos(x2omi+x2li-g44)+ds.d4422*math.Cos(x2li-g44)+
			ds.d5421*math.Cos(xomi+x2li-g54)+ds.d5433*math.Cos(-xomi+x2li-g54))

	return xndt, xldot, xnddt * xldot
}

// periodics применяет лунно-солнечные долгопериодические поправки.
// При наклонении ниже 0.2 рад используется форма Lyddane.
func (ds *deepSpace) periodics(mode OpsMode, t, ep, inclp, nodep, argpp, mp float64) (
	epOut, inclpOut, nodepOut, argppOut, mpOut float64,
) {
	zm := ds.zmos + zns*t
	zf := zm + 2*zes*math.Sin(zm)
	sinzf, coszf := math.Sincos(zf)
	f2 := 0.5*sinzf*sinzf - 0.25
	f3 := -0.5 * sinzf * coszf
	ses := ds.se2*f2 + ds.se3*f3
	sis := ds.si2*f2 + ds.si3*f3
	sls := ds.sl2*f2 + ds.sl3*f3 + ds.sl4*sinzf
	sghs := ds.sgh2*f2 + ds.sgh3*f3 + ds.sgh4*sinzf
	shs := ds.sh2*f2 + ds.sh3*f3

	zm = ds.zmol + znl*t
	zf = zm + 2*zel*math.Sin(zm)
	sinzf, coszf = math.Sincos(zf)
	f2 = 0.5*sinzf*sinzf - 0.25
	f3 = -0.5 * sinzf * coszf
	sel := ds.ee2*f2 + ds.e3*f3
	sil := ds.xi2*f2 + ds.xi3*f3
	sll := ds.xl2*f2 + ds.xl3*f3 + ds.xl4*sinzf
	sghl := ds.xgh2*f2 + ds.xgh3*f3 + ds.xgh4*sinzf
	shll := ds.xh2*f2 + ds.xh3*f3

	pe := ses + sel
	pinc := sis + sil
	pl := sls + sll
	pgh := sghs + sghl
	ph := shs + shll

	inclp += pinc
	ep += pe
	sinip, cosip := math.Sincos(inclp)

	if inclp >= lyddaneIncl {
		ph /= sinip
		pgh -= cosip * ph
		argpp += pgh
		nodep += ph
		mp += pl

		return ep, inclp, nodep, argpp, mp
	}

	sinop, cosop := math.Sincos(nodep)
	alfdp := sinip*sinop + ph*cosop + pinc*cosip*sinop
	betdp := sinip*cosop - ph*sinop + pinc*cosip*cosop

	nodep = math.Mod(nodep, twoPi)
	if nodep < 0 && mode == OpsAFSPC {
		nodep += twoPi
	}
	xls := mp + argpp + cosip*nodep
	dls := pl + pgh - pinc*nodep*sinip
	xls += dls
	xnoh := nodep
	nodep = math.Atan2(alfdp, betdp)
	if nodep < 0 && mode == OpsAFSPC {
		nodep += twoPi
	}
	if math.Abs(xnoh-nodep) > math.Pi {
		if nodep < xnoh {
			nodep += twoPi
		} else {
			nodep -= twoPi
		}
	}
	mp += pl
	argpp = xls - mp - cosip*nodep

	return ep, inclp, nodep, argpp, mp
}
