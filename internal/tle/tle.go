// Package tle реализует разбор двухстрочных наборов орбитальных элементов (TLE).
package tle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Ошибки разбора TLE.
var (
	ErrInvalidTLEFormat  = errors.New("invalid TLE format")
	ErrInvalidChecksum   = errors.New("invalid TLE checksum")
	ErrInvalidLineNumber = errors.New("invalid TLE line number")
	ErrLineTooShort      = errors.New("TLE line too short")
	ErrNoradIDMismatch   = errors.New("NORAD ID mismatch between lines")
	ErrInvalidAlpha5     = errors.New("invalid Alpha-5 NORAD ID format")
	ErrInvalidField      = errors.New("invalid TLE field")
)

// LineLength длина строки TLE вместе с контрольной суммой.
const LineLength = 69

// PivotYear граница двузначного года эпохи: 00-56 -> 2000-2056, 57-99 -> 1957-1999.
const PivotYear = 57

// FormatError описывает некорректный текст TLE.
// Line равен 1 или 2, либо 0 если ошибка относится к набору в целом.
type FormatError struct {
	Line  int
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("tle")
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " %s", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(line int, field string, err error) *FormatError {
	return &FormatError{Line: line, Field: field, Err: err}
}

// TLE разобранный набор элементов. Значения в единицах формата TLE:
// градусы, обороты/сутки, B* в обратных земных радиусах.
type TLE struct {
	Name           string
	NoradID        int
	Classification string
	IntlDesignator string

	EpochYear int     // четырёхзначный год эпохи
	EpochDay  float64 // день года с дробной частью, 1.0 = 1 января 00:00 UTC
	Epoch     time.Time

	MeanMotionDot  float64 // ṅ/2, оборотов/сутки²
	MeanMotionDot2 float64 // n̈/6, оборотов/сутки³
	Bstar          float64
	EphemerisType  int
	ElementSetNo   int

	Inclination  float64
	RAAN         float64
	Eccentricity float64
	ArgOfPerigee float64
	MeanAnomaly  float64
	MeanMotion   float64
	RevNumber    int

	Line1 string
	Line2 string
}

// alpha5 буквы Alpha-5 (без I и O) и их числовые префиксы.
var alpha5 = map[byte]int{
	'A': 10, 'B': 11, 'C': 12, 'D': 13, 'E': 14, 'F': 15, 'G': 16, 'H': 17,
	'J': 18, 'K': 19, 'L': 20, 'M': 21, 'N': 22,
	'P': 23, 'Q': 24, 'R': 25, 'S': 26, 'T': 27, 'U': 28, 'V': 29, 'W': 30,
	'X': 31, 'Y': 32, 'Z': 33,
}

// ParseLines разбирает TLE в 2-строчном или 3-строчном (с именем) виде.
func ParseLines(lines []string) (*TLE, error) {
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, strings.TrimRight(l, " \t\r"))
		}
	}

	switch {
	case len(nonEmpty) == 2:
		return Parse(nonEmpty[0], nonEmpty[1])
	case len(nonEmpty) == 3:
		t, err := Parse(nonEmpty[1], nonEmpty[2])
		if err != nil {
			return nil, err
		}
		t.Name = strings.TrimSpace(strings.TrimPrefix(nonEmpty[0], "0 "))

		return t, nil
	default:
		return nil, formatErr(0, "", fmt.Errorf("%w: need 2 or 3 lines, got %d", ErrInvalidTLEFormat, len(nonEmpty)))
	}
}

// Parse разбирает пару строк TLE.
// Обе строки проверяются на длину, номер строки и контрольную сумму
// до разбора полей; частичный результат не возвращается.
func Parse(line1, line2 string) (*TLE, error) {
	if err := checkLine(line1, 1); err != nil {
		return nil, err
	}
	if err := checkLine(line2, 2); err != nil {
		return nil, err
	}

	t := &TLE{Line1: line1, Line2: line2}

	if err := t.decodeLine1(line1); err != nil {
		return nil, err
	}
	if err := t.decodeLine2(line2); err != nil {
		return nil, err
	}

	return t, nil
}

// checkLine проверяет длину, маркер строки и контрольную сумму.
func checkLine(line string, n int) error {
	if len(line) < LineLength {
		return formatErr(n, "", fmt.Errorf("%w: length %d, need %d", ErrLineTooShort, len(line), LineLength))
	}

	marker := byte('0' + n)
	if line[0] != marker || line[1] != ' ' {
		return formatErr(n, "", fmt.Errorf("%w: starts with %q, expected \"%c \"", ErrInvalidLineNumber, line[:2], marker))
	}

	want := line[LineLength-1]
	if want < '0' || want > '9' {
		return formatErr(n, "checksum", fmt.Errorf("%w: %q is not a digit", ErrInvalidChecksum, want))
	}
	if got := Checksum(line[:LineLength-1]); got != int(want-'0') {
		return formatErr(n, "checksum", fmt.Errorf("%w: computed %d, line has %c", ErrInvalidChecksum, got, want))
	}

	return nil
}

// Checksum считает контрольную сумму Modulo-10: сумма цифр плюс 1 за каждый минус.
func Checksum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}

	return sum % 10
}

// decodeLine1 разбирает Line 1.
//
//	Col  3-7    Satellite Number (поддерживает Alpha-5)
//	Col  8      Classification
//	Col 10-17   International Designator
//	Col 19-32   Epoch (YYDDD.DDDDDDDD)
//	Col 34-43   ṅ/2
//	Col 45-52   n̈/6 (±NNNNN±E)
//	Col 54-61   B* (±NNNNN±E)
//	Col 63      Ephemeris Type
//	Col 65-68   Element Set Number
func (t *TLE) decodeLine1(line string) error {
	var err error

	if t.NoradID, err = parseNoradID(strings.TrimSpace(line[2:7])); err != nil {
		return formatErr(1, "satellite number", err)
	}
	t.Classification = string(line[7])
	t.IntlDesignator = strings.TrimSpace(line[9:17])

	if t.EpochYear, t.EpochDay, err = parseEpoch(line[18:32]); err != nil {
		return formatErr(1, "epoch", err)
	}
	t.Epoch = EpochTime(t.EpochYear, t.EpochDay)

	if t.MeanMotionDot, err = parseFloat(line[33:43]); err != nil {
		return formatErr(1, "mean motion dot", err)
	}
	if t.MeanMotionDot2, err = parseExponent(line[44:52]); err != nil {
		return formatErr(1, "mean motion ddot", err)
	}
	if t.Bstar, err = parseExponent(line[53:61]); err != nil {
		return formatErr(1, "bstar", err)
	}

	// Тип эфемерид и номер набора на расчёт не влияют, пустые поля допустимы.
	t.EphemerisType, _ = strconv.Atoi(strings.TrimSpace(line[62:63]))
	t.ElementSetNo, _ = strconv.Atoi(strings.TrimSpace(line[64:68]))

	return nil
}

// decodeLine2 разбирает Line 2.
//
//	Col  3-7    Satellite Number
//	Col  9-16   Inclination (градусы)
//	Col 18-25   RAAN (градусы)
//	Col 27-33   Eccentricity (десятичная точка подразумевается)
//	Col 35-42   Argument of Perigee (градусы)
//	Col 44-51   Mean Anomaly (градусы)
//	Col 53-63   Mean Motion (оборотов/сутки)
//	Col 64-68   Revolution Number
func (t *TLE) decodeLine2(line string) error {
	id, err := parseNoradID(strings.TrimSpace(line[2:7]))
	if err != nil {
		return formatErr(2, "satellite number", err)
	}
	if id != t.NoradID {
		return formatErr(0, "satellite number", fmt.Errorf("%w: line 1 has %d, line 2 has %d", ErrNoradIDMismatch, t.NoradID, id))
	}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"inclination", line[8:16], &t.Inclination},
		{"raan", line[17:25], &t.RAAN},
		{"argument of perigee", line[34:42], &t.ArgOfPerigee},
		{"mean anomaly", line[43:51], &t.MeanAnomaly},
		{"mean motion", line[52:63], &t.MeanMotion},
	}
	for _, f := range fields {
		if *f.dst, err = parseFloat(f.raw); err != nil {
			return formatErr(2, f.name, err)
		}
	}

	ecc := strings.TrimSpace(line[26:33])
	if ecc == "" || strings.ContainsAny(ecc, ".+-") {
		return formatErr(2, "eccentricity", fmt.Errorf("%w: %q", ErrInvalidField, ecc))
	}
	if t.Eccentricity, err = parseFloat("0." + ecc); err != nil {
		return formatErr(2, "eccentricity", err)
	}

	t.RevNumber, _ = strconv.Atoi(strings.TrimSpace(line[63:68]))

	return nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidField)
	}
	// Поля TLE записываются только цифрами, точкой и знаком.
	if strings.Trim(s, "0123456789.+-") != "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidField, s)
	}

	return v, nil
}

// parseNoradID разбирает номер в каталоге: 5 цифр или Alpha-5 (буква + 4 цифры).
func parseNoradID(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidAlpha5)
	}

	if c := s[0]; c >= 'A' && c <= 'Z' {
		prefix, ok := alpha5[c]
		if !ok {
			return 0, fmt.Errorf("%w: invalid letter %c (I and O not allowed)", ErrInvalidAlpha5, c)
		}
		if len(s) != 5 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAlpha5, s)
		}
		rest, err := strconv.Atoi(s[1:])
		if err != nil || rest < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAlpha5, s)
		}

		return prefix*10000 + rest, nil
	}

	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: satellite number %q", ErrInvalidField, s)
	}

	return id, nil
}

// parseExponent разбирает запись TLE вида "±NNNNN±E", то есть ±0.NNNNN × 10^±E.
func parseExponent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}

	mant, exp := s, "0"
	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		mant, exp = s[:i], s[i:]
	}

	m, err := strconv.ParseFloat("0."+strings.TrimSpace(mant), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: mantissa %q", ErrInvalidField, mant)
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return 0, fmt.Errorf("%w: exponent %q", ErrInvalidField, exp)
	}

	return sign * m * math.Pow(10, float64(e)), nil
}

// parseEpoch разбирает эпоху YYDDD.DDDDDDDD.
func parseEpoch(s string) (year int, day float64, err error) {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return 0, 0, fmt.Errorf("%w: epoch %q", ErrInvalidField, s)
	}

	yy, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: epoch year %q", ErrInvalidField, s[:2])
	}
	day, err = strconv.ParseFloat(s[2:], 64)
	if err != nil || day < 1 || day >= 367 {
		return 0, 0, fmt.Errorf("%w: epoch day %q", ErrInvalidField, s[2:])
	}

	return FullYear(yy), day, nil
}

// FullYear переводит двузначный год эпохи в четырёхзначный.
func FullYear(yy int) int {
	if yy < PivotYear {
		return 2000 + yy
	}

	return 1900 + yy
}

// EpochTime переводит год и день года в UTC. Точность до наносекунды.
func EpochTime(year int, day float64) time.Time {
	base := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	return base.Add(time.Duration(math.Round((day - 1) * 24 * float64(time.Hour))))
}

// Period возвращает период обращения в минутах по среднему движению TLE.
func (t *TLE) Period() float64 {
	if t.MeanMotion <= 0 {
		return 0
	}

	return 1440.0 / t.MeanMotion
}

// String возвращает TLE в 2- или 3-строчном виде.
func (t *TLE) String() string {
	if t.Name != "" {
		return t.Name + "\n" + t.Line1 + "\n" + t.Line2
	}

	return t.Line1 + "\n" + t.Line2
}
