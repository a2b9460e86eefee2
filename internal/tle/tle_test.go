package tle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"
)

// makeTLELine добавляет контрольную сумму к строке TLE из 68 символов.
func makeTLELine(line68 string) string {
	if len(line68) != 68 {
		panic(fmt.Sprintf("line must be 68 chars, got %d", len(line68)))
	}

	return line68 + strconv.Itoa(Checksum(line68))
}

var (
	issLine1 = makeTLELine("1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  999")
	issLine2 = makeTLELine("2 25544  51.6400 247.4627 0006703 130.5360 325.0288 15.4981557142340")

	// Тестовый набор 88888 из Spacetrack Report #3.
	str3Line1 = makeTLELine("1 88888U          80275.98708465  .00073094  13844-3  66816-4 0    8")
	str3Line2 = makeTLELine("2 88888  72.8435 115.9689 0086731  52.6988 110.5714 16.05824518  105")
)

// TestChecksum проверяет алгоритм Modulo-10.
func TestChecksum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"digits only", "12345", 5},
		{"minus counts as one", "1-1-1", 5},
		{"letters and dots ignored", "A.B+C 9", 9},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Checksum(tt.in); got != tt.want {
				t.Errorf("Checksum(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// TestParse проверяет разбор всех полей ISS.
func TestParse(t *testing.T) {
	t.Parallel()

	got, err := Parse(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.NoradID != 25544 {
		t.Errorf("NoradID = %d, want 25544", got.NoradID)
	}
	if got.Classification != "U" {
		t.Errorf("Classification = %q, want U", got.Classification)
	}
	if got.IntlDesignator != "98067A" {
		t.Errorf("IntlDesignator = %q, want 98067A", got.IntlDesignator)
	}
	if got.EpochYear != 2024 || got.EpochDay != 1.5 {
		t.Errorf("epoch = %d/%v, want 2024/1.5", got.EpochYear, got.EpochDay)
	}
	if want := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC); !got.Epoch.Equal(want) {
		t.Errorf("Epoch = %v, want %v", got.Epoch, want)
	}

	floats := []struct {
		name      string
		got, want float64
		tol       float64
	}{
		{"MeanMotionDot", got.MeanMotionDot, 0.00016717, 1e-12},
		{"MeanMotionDot2", got.MeanMotionDot2, 0, 0},
		{"Bstar", got.Bstar, 1.027e-4, 1e-12},
		{"Inclination", got.Inclination, 51.64, 1e-9},
		{"RAAN", got.RAAN, 247.4627, 1e-9},
		{"Eccentricity", got.Eccentricity, 0.0006703, 1e-12},
		{"ArgOfPerigee", got.ArgOfPerigee, 130.536, 1e-9},
		{"MeanAnomaly", got.MeanAnomaly, 325.0288, 1e-9},
		{"MeanMotion", got.MeanMotion, 15.49815571, 1e-9},
	}
	for _, f := range floats {
		if math.Abs(f.got-f.want) > f.tol {
			t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
		}
	}

	if got.RevNumber != 42340 {
		t.Errorf("RevNumber = %d, want 42340", got.RevNumber)
	}
	if got.ElementSetNo != 999 {
		t.Errorf("ElementSetNo = %d, want 999", got.ElementSetNo)
	}
}

// TestParse_SpacetrackReport проверяет набор без международного обозначения
// и с ненулевой второй производной.
func TestParse_SpacetrackReport(t *testing.T) {
	t.Parallel()

	got, err := Parse(str3Line1, str3Line2)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.IntlDesignator != "" {
		t.Errorf("IntlDesignator = %q, want empty", got.IntlDesignator)
	}
	if got.EpochYear != 1980 {
		t.Errorf("EpochYear = %d, want 1980", got.EpochYear)
	}
	if math.Abs(got.MeanMotionDot2-0.13844e-3) > 1e-15 {
		t.Errorf("MeanMotionDot2 = %e, want 1.3844e-4", got.MeanMotionDot2)
	}
	if math.Abs(got.Bstar-0.66816e-4) > 1e-15 {
		t.Errorf("Bstar = %e, want 6.6816e-5", got.Bstar)
	}
	if math.Abs(got.Eccentricity-0.0086731) > 1e-12 {
		t.Errorf("Eccentricity = %v, want 0.0086731", got.Eccentricity)
	}
}

// TestParseLines проверяет 2- и 3-строчный форматы.
func TestParseLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lines    []string
		wantName string
	}{
		{"two lines", []string{issLine1, issLine2}, ""},
		{"three lines", []string{"ISS (ZARYA)", issLine1, issLine2}, "ISS (ZARYA)"},
		{"zero-prefixed name", []string{"0 ISS (ZARYA)", issLine1, issLine2}, "ISS (ZARYA)"},
		{"blank lines skipped", []string{"", issLine1, "  ", issLine2, ""}, ""},
		{"trailing CR", []string{issLine1 + "\r", issLine2 + "\r"}, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLines(tt.lines)
			if err != nil {
				t.Fatalf("ParseLines() error = %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.NoradID != 25544 {
				t.Errorf("NoradID = %d, want 25544", got.NoradID)
			}
		})
	}
}

// TestParse_Errors проверяет, что некорректный текст даёт FormatError с нужной причиной.
func TestParse_Errors(t *testing.T) {
	t.Parallel()

	corrupt := func(line string, idx int, c byte) string {
		b := []byte(line)
		b[idx] = c

		return string(b)
	}
	// Замена цифры с сохранением суммы даёт «правильную» контрольную сумму
	// при некорректном содержимом поля.
	badIncl := makeTLELine(corrupt(issLine2, 10, 'x')[:68])
	badEcc := makeTLELine(corrupt(issLine2, 28, '.')[:68])
	otherID := makeTLELine(strings.Replace(issLine2[:68], "25544", "25545", 1))
	withIncl := func(field string) string {
		return makeTLELine(issLine2[:8] + field + issLine2[16:68])
	}

	tests := []struct {
		name     string
		l1, l2   string
		wantErr  error
		wantLine int
	}{
		{"bad checksum line 1", issLine1[:68] + "0", issLine2, ErrInvalidChecksum, 1},
		{"bad checksum line 2", issLine1, corrupt(issLine2, 68, '0'), ErrInvalidChecksum, 2},
		{"non-digit checksum", issLine1[:68] + "X", issLine2, ErrInvalidChecksum, 1},
		{"short line", issLine1[:40], issLine2, ErrLineTooShort, 1},
		{"wrong marker", issLine2, issLine2, ErrInvalidLineNumber, 1},
		{"marker without space", makeTLELine("1" + issLine1[2:68] + "0")[:69], issLine2, ErrInvalidLineNumber, 1},
		{"bad inclination", issLine1, badIncl, ErrInvalidField, 2},
		{"bad eccentricity", issLine1, badEcc, ErrInvalidField, 2},
		{"NaN inclination", issLine1, withIncl("     NaN"), ErrInvalidField, 2},
		{"Inf inclination", issLine1, withIncl("    +Inf"), ErrInvalidField, 2},
		{"hex inclination", issLine1, withIncl("  0x1p-2"), ErrInvalidField, 2},
		{"exponent inclination", issLine1, withIncl("   5.1e1"), ErrInvalidField, 2},
		{"id mismatch", issLine1, otherID, ErrNoradIDMismatch, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.l1, tt.l2)
			if err == nil {
				t.Fatalf("Parse() = %+v, want error", got)
			}
			if got != nil {
				t.Errorf("Parse() returned partial result %+v", got)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}

			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not *FormatError", err)
			}
			if fe.Line != tt.wantLine {
				t.Errorf("FormatError.Line = %d, want %d", fe.Line, tt.wantLine)
			}
		})
	}
}

// TestParseLines_Count проверяет отказ при неверном числе строк.
func TestParseLines_Count(t *testing.T) {
	t.Parallel()

	for _, lines := range [][]string{nil, {issLine1}, {"a", "b", issLine1, issLine2}} {
		if _, err := ParseLines(lines); !errors.Is(err, ErrInvalidTLEFormat) {
			t.Errorf("ParseLines(%d lines) error = %v, want ErrInvalidTLEFormat", len(lines), err)
		}
	}
}

// TestParseExponent проверяет запись ±NNNNN±E.
func TestParseExponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"10270-3", 1.027e-4, false},
		{" 00000-0", 0, false},
		{"00000+0", 0, false},
		{"-10270-3", -1.027e-4, false},
		{"+56789-4", 5.6789e-5, false},
		{"12345+1", 1.2345, false},
		{"14311-1", 0.014311, false},
		{"", 0, false},
		{"1x345-3", 0, true},
		{"12345-x", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := parseExponent(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseExponent(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if math.Abs(got-tt.want) > 1e-15 {
				t.Errorf("parseExponent(%q) = %e, want %e", tt.in, got, tt.want)
			}
		})
	}
}

// TestFullYear фиксирует границу двузначного года.
func TestFullYear(t *testing.T) {
	t.Parallel()

	tests := []struct{ yy, want int }{
		{0, 2000},
		{24, 2024},
		{56, 2056},
		{57, 1957},
		{80, 1980},
		{99, 1999},
	}
	for _, tt := range tests {
		if got := FullYear(tt.yy); got != tt.want {
			t.Errorf("FullYear(%d) = %d, want %d", tt.yy, got, tt.want)
		}
	}
}

// TestParse_EpochPivot проверяет годы 56 и 57 на разобранных строках.
func TestParse_EpochPivot(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		yy   string
		want int
	}{{"56", 2056}, {"57", 1957}} {
		l1 := makeTLELine("1 25544U 98067A   " + tc.yy + issLine1[20:68])
		got, err := Parse(l1, issLine2)
		if err != nil {
			t.Fatalf("Parse(%s) error = %v", tc.yy, err)
		}
		if got.EpochYear != tc.want {
			t.Errorf("EpochYear for %s = %d, want %d", tc.yy, got.EpochYear, tc.want)
		}
		if got.Epoch.Year() != tc.want {
			t.Errorf("Epoch.Year() for %s = %d, want %d", tc.yy, got.Epoch.Year(), tc.want)
		}
	}
}

// TestParseNoradID_Alpha5 проверяет номера в формате Alpha-5.
func TestParseNoradID_Alpha5(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"25544", 25544, false},
		{"00001", 1, false},
		{"A0000", 100000, false},
		{"H9999", 179999, false},
		{"J0000", 180000, false},
		{"P0000", 230000, false},
		{"Z9999", 339999, false},
		{"I0000", 0, true},
		{"O0000", 0, true},
		{"A12", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseNoradID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseNoradID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseNoradID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestTLE_Period проверяет период по среднему движению.
func TestTLE_Period(t *testing.T) {
	t.Parallel()

	got, err := Parse(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p := got.Period(); math.Abs(p-1440/15.49815571) > 1e-9 {
		t.Errorf("Period() = %v", p)
	}
	if s := got.String(); s != issLine1+"\n"+issLine2 {
		t.Errorf("String() = %q", s)
	}
}

func BenchmarkParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Parse(issLine1, issLine2)
	}
}
