// Package crosscheck сверяет собственную реализацию SGP4/SDP4 с независимой
// библиотекой go-satellite.
package crosscheck

import (
	"errors"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/art-injener/orbitprop/internal/sgp4"
	"github.com/art-injener/orbitprop/internal/tle"
)

// Ошибки сверки.
var (
	ErrNilTLE       = errors.New("TLE is nil")
	ErrUnsupported  = errors.New("TLE not supported by oracle")
	ErrOracleFailed = errors.New("oracle propagation failed")
)

const maxOracleNoradNumber = 99999

// Oracle независимый пропагатор go-satellite.
// Библиотека всегда работает в улучшенном режиме и отбрасывает доли секунды эпохи,
// поэтому точное совпадение ожидается только для эпох с целым числом секунд.
type Oracle struct {
	tle     *tle.TLE
	sat     satellite.Satellite
	gravity sgp4.GravityModel
}

// NewOracle инициализирует go-satellite по строкам TLE.
// Строки должны быть уже проверены tle.Parse: go-satellite завершает процесс на невалидном вводе.
func NewOracle(t *tle.TLE, g sgp4.GravityModel) (*Oracle, error) {
	if t == nil {
		return nil, ErrNilTLE
	}

	if t.Line1 == "" || t.Line2 == "" {
		return nil, fmt.Errorf("%w: missing Line1 or Line2", ErrUnsupported)
	}

	// Alpha-5 номера go-satellite не разбирает.
	if t.NoradID > maxOracleNoradNumber {
		return nil, fmt.Errorf("%w: alpha-5 catalog number %d", ErrUnsupported, t.NoradID)
	}

	var gravConst satellite.Gravity

	switch g {
	case sgp4.GravityWGS72:
		gravConst = satellite.GravityWGS72
	case sgp4.GravityWGS72Old:
		gravConst = satellite.GravityWGS72Old
	case sgp4.GravityWGS84:
		gravConst = satellite.GravityWGS84
	default:
		return nil, fmt.Errorf("%w: gravity model %v", ErrUnsupported, g)
	}

	return &Oracle{
		tle:     t,
		sat:     satellite.TLEToSat(t.Line1, t.Line2, gravConst),
		gravity: g,
	}, nil
}

// Propagate рассчитывает положение (км) и скорость (км/с) на tsince минут от эпохи.
// Момент округляется до целой секунды.
func (o *Oracle) Propagate(tsince float64) (pos, vel r3.Vec, err error) {
	if o == nil {
		return r3.Vec{}, r3.Vec{}, ErrNilTLE
	}

	at := o.tle.Epoch.Add(time.Duration(math.Round(tsince*60)) * time.Second).UTC()
	year, month, day := at.Date()
	hour, minute, sec := at.Clock()

	p, v := satellite.Propagate(o.sat, year, int(month), day, hour, minute, sec)

	pos = r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
	vel = r3.Vec{X: v.X, Y: v.Y, Z: v.Z}

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf(
			"%w: position contains NaN at tsince=%.4f (possible orbital decay)",
			ErrOracleFailed, tsince,
		)
	}

	return pos, vel, nil
}

// Gravity возвращает гравитационную модель оракула.
func (o *Oracle) Gravity() sgp4.GravityModel {
	return o.gravity
}
