package sgp4

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/art-injener/orbitprop/internal/tle"
)

func TestConvert_Regime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		line1, line2  string
		wantRegime    Regime
		wantResonance Resonance
	}{
		{"ISS", issLine1, issLine2, NearEarth, ResonanceNone},
		{"STR#3 88888", str3Line1, str3Line2, NearEarth, ResonanceNone},
		{"STR#3 11801", sdp4Line1, sdp4Line2, DeepSpace, ResonanceNone},
		{"Molniya", molniyaLine1, molniyaLine2, DeepSpace, ResonanceHalfDay},
		{"GEO", geoLine1, geoLine2, DeepSpace, ResonanceSynchronous},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			el := mustConvert(t, tt.line1, tt.line2)

			if el.Regime != tt.wantRegime {
				t.Errorf("Regime = %v, want %v", el.Regime, tt.wantRegime)
			}

			if el.Resonance != tt.wantResonance {
				t.Errorf("Resonance = %v, want %v", el.Resonance, tt.wantResonance)
			}

			if (el.Period >= DeepSpacePeriod) != (el.Regime == DeepSpace) {
				t.Errorf("Period = %v inconsistent with regime %v", el.Period, el.Regime)
			}
		})
	}
}

func TestConvert_Units(t *testing.T) {
	t.Parallel()

	el := mustConvert(t, issLine1, issLine2)

	if got, want := el.Inclination, 51.64*math.Pi/180; math.Abs(got-want) > 1e-12 {
		t.Errorf("Inclination = %v, want %v", got, want)
	}

	if got, want := el.KozaiMeanMotion, 15.49815571*twoPi/minutesPerDay; math.Abs(got-want) > 1e-15 {
		t.Errorf("KozaiMeanMotion = %v, want %v", got, want)
	}

	// Восстановленное движение близко к исходному, но не равно ему.
	if el.MeanMotion == el.KozaiMeanMotion || math.Abs(el.MeanMotion/el.KozaiMeanMotion-1) > 1e-3 {
		t.Errorf("MeanMotion = %v, Kozai = %v", el.MeanMotion, el.KozaiMeanMotion)
	}

	if alt := el.PerigeeAltitude(); alt < 380 || alt > 430 {
		t.Errorf("PerigeeAltitude() = %v km, want ~410", alt)
	}

	if el.Guards != 0 {
		t.Errorf("Guards = %v, want none", el.Guards)
	}

	wantEpoch := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	if !el.Epoch.Equal(wantEpoch) {
		t.Errorf("Epoch = %v, want %v", el.Epoch, wantEpoch)
	}

	if got := el.EpochTime(); got.Sub(wantEpoch).Abs() > time.Millisecond {
		t.Errorf("EpochTime() = %v, want %v", got, wantEpoch)
	}

	if got := el.Tsince(wantEpoch.Add(90 * time.Minute)); math.Abs(got-90) > 1e-9 {
		t.Errorf("Tsince() = %v, want 90", got)
	}
}

func TestConvert_GuardsNearSingular(t *testing.T) {
	t.Parallel()

	el := mustConvert(t, geoLine1, geoLine2)
	if !el.Guards.Has(NearSingularGeometry) {
		t.Fatalf("Guards = %v, want near-singular", el.Guards)
	}

	sv, err := Propagate(el, 0)
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}

	if w := sv.Warning(); !errors.Is(w, ErrNearSingularGeometry) {
		t.Errorf("Warning() = %v, want ErrNearSingularGeometry", w)
	}

	if w := sv.Warning(); errors.Is(w, ErrDecayedOrbit) {
		t.Errorf("Warning() = %v, unexpected ErrDecayedOrbit", w)
	}
}

// rawTLE собирает TLE без разбора строк.
func rawTLE(ecc, meanMotion, incl, meanAnomaly float64) *tle.TLE {
	return &tle.TLE{
		NoradID:      99999,
		EpochYear:    2024,
		EpochDay:     1.5,
		Epoch:        tle.EpochTime(2024, 1.5),
		Bstar:        1e-4,
		Inclination:  incl,
		RAAN:         10,
		Eccentricity: ecc,
		ArgOfPerigee: 20,
		MeanAnomaly:  meanAnomaly,
		MeanMotion:   meanMotion,
	}
}

func TestConvert_InvalidElements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tle  *tle.TLE
	}{
		{"eccentricity above one", rawTLE(1.2, 15, 51, 0)},
		{"negative eccentricity", rawTLE(-0.1, 15, 51, 0)},
		{"zero mean motion", rawTLE(0.001, 0, 51, 0)},
		{"negative mean motion", rawTLE(0.001, -3, 51, 0)},
		{"NaN mean motion", rawTLE(0.001, math.NaN(), 51, 0)},
		{"inclination out of range", rawTLE(0.001, 15, 200, 0)},
		{"NaN inclination", rawTLE(0.001, 15, math.NaN(), 0)},
		{"NaN eccentricity", rawTLE(math.NaN(), 15, 51, 0)},
		{"Inf mean anomaly", rawTLE(0.001, 15, 51, math.Inf(1))},
		{"orbit inside Earth", rawTLE(0.001, 18, 51, 0)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			el, err := Convert(tt.tle)
			if !errors.Is(err, ErrInvalidElements) {
				t.Fatalf("Convert() error = %v, want ErrInvalidElements", err)
			}

			var ie *InvalidElementError
			if !errors.As(err, &ie) {
				t.Errorf("Convert() error type = %T, want *InvalidElementError", err)
			}

			if el != nil {
				t.Error("Convert() returned elements with error")
			}
		})
	}
}

func TestConvert_NilTLE(t *testing.T) {
	t.Parallel()

	if _, err := Convert(nil); !errors.Is(err, ErrNilTLE) {
		t.Errorf("Convert(nil) error = %v, want ErrNilTLE", err)
	}
}

func TestConvert_DecayedPerigee(t *testing.T) {
	t.Parallel()

	// a ≈ 6640 км, e = 0.1: перигей под поверхностью.
	el, err := Convert(rawTLE(0.1, 16.5, 51, 0))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	sv, err := Propagate(el, 0)
	if err != nil {
		t.Fatalf("Propagate() error = %v", err)
	}

	if !sv.Warnings.Has(DecayedOrbit) {
		t.Errorf("Warnings = %v, want decayed orbit", sv.Warnings)
	}

	if !errors.Is(sv.Warning(), ErrDecayedOrbit) {
		t.Errorf("Warning() = %v, want ErrDecayedOrbit", sv.Warning())
	}
}

func TestGMST(t *testing.T) {
	t.Parallel()

	// J2000.0: 280.46061837°.
	if got, want := GMST(jd2000), 4.894961212823059; math.Abs(got-want) > 1e-12 {
		t.Errorf("GMST(J2000) = %v, want %v", got, want)
	}

	for _, jd := range []float64{2444514.48708465, 2453911.83215444, 2460311.0} {
		if d := math.Abs(gstoAFSPC(jd-jd1950) - GMST(jd)); d > 1e-9 {
			t.Errorf("jd=%v: |AFSPC - IAU82| = %g", jd, d)
		}
	}
}

func TestParseGravityModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    GravityModel
		wantErr bool
	}{
		{"", GravityWGS72, false},
		{"wgs72", GravityWGS72, false},
		{"WGS72OLD", GravityWGS72Old, false},
		{" wgs84 ", GravityWGS84, false},
		{"egm96", GravityWGS72, true},
	}

	for _, tt := range tests {
		got, err := ParseGravityModel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseGravityModel(%q) = %v, %v; want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}

	for _, g := range []GravityModel{GravityWGS72, GravityWGS72Old, GravityWGS84} {
		got, err := ParseGravityModel(g.String())
		if err != nil || got != g {
			t.Errorf("round trip %v: got %v, %v", g, got, err)
		}
	}
}

func TestParseOpsMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    OpsMode
		wantErr bool
	}{
		{"", OpsImproved, false},
		{"i", OpsImproved, false},
		{"improved", OpsImproved, false},
		{"a", OpsAFSPC, false},
		{"AFSPC", OpsAFSPC, false},
		{"x", OpsImproved, true},
	}

	for _, tt := range tests {
		got, err := ParseOpsMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOpsMode(%q) = %v, %v; want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func BenchmarkConvert(b *testing.B) {
	t := mustParse(b, molniyaLine1, molniyaLine2)

	for i := 0; i < b.N; i++ {
		if _, err := Convert(t); err != nil {
			b.Fatal(err)
		}
	}
}
