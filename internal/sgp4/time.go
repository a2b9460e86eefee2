package sgp4

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const jd2000 = 2451545.0

// GMST возвращает гринвичское среднее звёздное время (IAU-82) в радианах
// в диапазоне [0, 2π) для юлианской даты UT1.
func GMST(jd float64) float64 {
	tut1 := (jd - jd2000) / 36525.0
	temp := -6.2e-6*tut1*tut1*tut1 + 0.093104*tut1*tut1 +
		(876600.0*3600+8640184.812866)*tut1 + 67310.54841
	temp = math.Mod(temp*deg2rad/240.0, twoPi)
	if temp < 0 {
		temp += twoPi
	}

	return temp
}

// gstoAFSPC звёздное время на эпоху по формуле AFSPC (отсчёт от 1970).
// epoch — дни от jd1950.
func gstoAFSPC(epoch float64) float64 {
	const (
		c1     = 1.72027916940703639e-2
		thgr70 = 1.7321343856509374
		fk5r   = 5.07551419432269442e-15
	)

	ts70 := epoch - 7305.0
	ds70 := math.Floor(ts70 + 1.0e-8)
	tfrac := ts70 - ds70

	gsto := math.Mod(thgr70+c1*ds70+(c1+twoPi)*tfrac+ts70*ts70*fk5r, twoPi)
	if gsto < 0 {
		gsto += twoPi
	}

	return gsto
}

// JulianDate возвращает юлианскую дату момента t (UTC).
func JulianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JDToTime переводит юлианскую дату в время UTC.
func JDToTime(jd float64) time.Time {
	return julian.JDToTime(jd).UTC()
}
