package sgp4

import (
	"fmt"
	"math"
	"strings"
)

// GravityModel определяет набор гравитационных констант модели.
type GravityModel int

const (
	// GravityWGS72 — WGS-72, стандарт для TLE.
	GravityWGS72 GravityModel = iota
	// GravityWGS72Old — WGS-72 с xke из Spacetrack Report #3.
	GravityWGS72Old
	// GravityWGS84 — WGS-84.
	GravityWGS84
)

// gravity константы модели. Расстояния в км, время в минутах.
type gravity struct {
	mu     float64 // км³/с²
	radius float64 // экваториальный радиус, км
	xke    float64 // sqrt(mu) в земных радиусах^1.5 / мин
	j2     float64
	j3     float64
	j4     float64
	j3oj2  float64
}

func (g GravityModel) constants() gravity {
	var c gravity

	switch g {
	case GravityWGS72Old:
		c = gravity{mu: 398600.79964, radius: 6378.135, xke: 0.0743669161,
			j2: 0.001082616, j3: -0.00000253881, j4: -0.00000165597}
	case GravityWGS84:
		c = gravity{mu: 398600.5, radius: 6378.137,
			j2: 0.00108262998905, j3: -0.00000253215306, j4: -0.00000161098761}
		c.xke = 60.0 / math.Sqrt(c.radius*c.radius*c.radius/c.mu)
	default:
		c = gravity{mu: 398600.8, radius: 6378.135,
			j2: 0.001082616, j3: -0.00000253881, j4: -0.00000165597}
		c.xke = 60.0 / math.Sqrt(c.radius*c.radius*c.radius/c.mu)
	}

	c.j3oj2 = c.j3 / c.j2

	return c
}

func (g GravityModel) String() string {
	switch g {
	case GravityWGS72:
		return "wgs72"
	case GravityWGS72Old:
		return "wgs72old"
	case GravityWGS84:
		return "wgs84"
	default:
		return fmt.Sprintf("GravityModel(%d)", int(g))
	}
}

// ParseGravityModel разбирает имя модели: wgs72, wgs72old, wgs84.
func ParseGravityModel(s string) (GravityModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wgs72":
		return GravityWGS72, nil
	case "wgs72old":
		return GravityWGS72Old, nil
	case "wgs84":
		return GravityWGS84, nil
	default:
		return GravityWGS72, fmt.Errorf("unknown gravity model %q", s)
	}
}

// OpsMode выбирает вариант расчёта звёздного времени и узла в периодиках.
type OpsMode int

const (
	// OpsImproved улучшенный режим (IAU-82 GMST).
	OpsImproved OpsMode = iota
	// OpsAFSPC совместимость с кодом AFSPC.
	OpsAFSPC
)

func (m OpsMode) String() string {
	if m == OpsAFSPC {
		return "afspc"
	}

	return "improved"
}

// ParseOpsMode разбирает режим: improved (i) или afspc (a).
func ParseOpsMode(s string) (OpsMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "i", "improved":
		return OpsImproved, nil
	case "a", "afspc":
		return OpsAFSPC, nil
	default:
		return OpsImproved, fmt.Errorf("unknown ops mode %q", s)
	}
}
