package crosscheck

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/art-injener/orbitprop/internal/sgp4"
)

// Point результат сверки в одной точке.
type Point struct {
	Tsince    float64
	State     sgp4.StateVector
	OraclePos r3.Vec
	OracleVel r3.Vec
}

// PositionDelta возвращает расхождение положений, км.
func (p Point) PositionDelta() float64 {
	return r3.Norm(r3.Sub(p.State.Position, p.OraclePos))
}

// VelocityDelta возвращает расхождение скоростей, км/с.
func (p Point) VelocityDelta() float64 {
	return r3.Norm(r3.Sub(p.State.Velocity, p.OracleVel))
}

// Compare рассчитывает обе модели в моменты tsinces.
// При ошибке любой модели возвращаются уже сверенные точки.
func Compare(p *sgp4.Propagator, o *Oracle, tsinces []float64) ([]Point, error) {
	points := make([]Point, 0, len(tsinces))

	for _, ts := range tsinces {
		sv, err := p.Propagate(ts)
		if err != nil {
			return points, fmt.Errorf("propagate tsince=%.4f: %w", ts, err)
		}

		pos, vel, err := o.Propagate(ts)
		if err != nil {
			return points, err
		}

		points = append(points, Point{Tsince: ts, State: sv, OraclePos: pos, OracleVel: vel})
	}

	return points, nil
}

// MaxDelta возвращает наибольшие расхождения положения и скорости.
func MaxDelta(points []Point) (pos, vel float64) {
	for _, p := range points {
		pos = max(pos, p.PositionDelta())
		vel = max(vel, p.VelocityDelta())
	}

	return pos, vel
}
