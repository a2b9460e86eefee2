package sgp4

import "math"

const (
	keplerTolerance = 1.0e-12
	keplerMaxStep   = 0.95

	// Предел итераций для классического уравнения Кеплера.
	keplerMaxIter = 25
	// Предел итераций для уравнения в эксцентрической долготе (как в SGP4).
	longitudeMaxIter = 10
)

// SolveKepler решает M = E - e·sin(E) методом Ньютона с начальным
// приближением E = M и ограничением шага ±0.95 рад.
// Возвращает E и число выполненных итераций.
func SolveKepler(meanAnomaly, ecc float64) (float64, int) {
	m := math.Mod(meanAnomaly, twoPi)
	e := m

	iter := 0
	for iter < keplerMaxIter {
		iter++

		sinE, cosE := math.Sincos(e)
		step := (m - e + ecc*sinE) / (1 - ecc*cosE)
		step = clampStep(step)
		e += step

		if math.Abs(step) < keplerTolerance {
			break
		}
	}

	return e, iter
}

// TrueAnomaly переводит эксцентрическую аномалию в истинную.
func TrueAnomaly(eccAnomaly, ecc float64) float64 {
	sinE, cosE := math.Sincos(eccAnomaly)

	return math.Atan2(math.Sqrt(1-ecc*ecc)*sinE, cosE-ecc)
}

// solveEccentricLongitude решает уравнение Кеплера в переменных
// (axn, ayn) и возвращает sin и cos решения.
// Синус и косинус берутся с последней итерации до обновления угла.
func solveEccentricLongitude(u, axnl, aynl float64) (sineo1, coseo1 float64) {
	eo1 := u
	tem5 := 9999.9

	for ktr := 1; math.Abs(tem5) >= keplerTolerance && ktr <= longitudeMaxIter; ktr++ {
		sineo1, coseo1 = math.Sincos(eo1)
		tem5 = 1 - coseo1*axnl - sineo1*aynl
		tem5 = (u - aynl*coseo1 + axnl*sineo1 - eo1) / tem5
		tem5 = clampStep(tem5)
		eo1 += tem5
	}

	return sineo1, coseo1
}

func clampStep(step float64) float64 {
	switch {
	case step > keplerMaxStep:
		return keplerMaxStep
	case step < -keplerMaxStep:
		return -keplerMaxStep
	default:
		return step
	}
}
