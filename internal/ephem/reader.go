// Package ephem читает эталонные эфемериды для сверки пропагатора.
//
// Формат файла: две строки TLE (опционально с именем), затем заголовок
// SGP4 или SDP4 и строки "tsince x y z", затем заголовок XDOT и строки
// "xdot ydot zdot" в том же порядке. Также допускаются строки из семи
// колонок "tsince x y z xdot ydot zdot".
package ephem

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/art-injener/orbitprop/internal/tle"
)

// Ошибки чтения эталона.
var (
	ErrNoTLE         = errors.New("reference file has no TLE")
	ErrNoRows        = errors.New("reference file has no position rows")
	ErrRowCount      = errors.New("velocity row count does not match position rows")
	ErrMalformedLine = errors.New("malformed reference row")
)

type section int

const (
	sectionNone section = iota
	sectionPositions
	sectionVelocities
)

// Reference эталонные точки одного спутника.
type Reference struct {
	TLE   *tle.TLE
	Model string // SGP4 или SDP4, если заголовок присутствует

	Tsince     []float64
	Positions  []r3.Vec // км
	Velocities []r3.Vec // км/с, пусто если в файле нет скоростей
}

// HasVelocities сообщает, содержит ли эталон скорости.
func (r *Reference) HasVelocities() bool {
	return len(r.Velocities) > 0
}

// Len возвращает число эталонных точек.
func (r *Reference) Len() int {
	return len(r.Tsince)
}

// ReadFile читает эталон из файла.
func ReadFile(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open reference file")
	}
	defer f.Close()

	ref, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	slog.Debug("reference loaded",
		slog.String("path", path),
		slog.Int("norad_id", ref.TLE.NoradID),
		slog.String("model", ref.Model),
		slog.Int("rows", ref.Len()),
		slog.Bool("velocities", ref.HasVelocities()),
	)

	return ref, nil
}

// Read разбирает эталон из r.
func Read(r io.Reader) (*Reference, error) {
	var (
		ref      Reference
		tleLines []string
		tleDone  bool
		sec      = sectionNone
		lineNo   int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch upper := strings.ToUpper(line); {
		case strings.HasPrefix(upper, "SDP4"), strings.HasPrefix(upper, "SGP4"):
			ref.Model = upper[:4]
			sec = sectionPositions

			continue
		case strings.HasPrefix(upper, "XDOT"):
			sec = sectionVelocities

			continue
		}

		fields, numeric := parseNumbers(line)

		// До первой строки данных идут имя спутника и TLE. Строка 2 TLE
		// может целиком состоять из чисел, как и строки данных из 7 столбцов,
		// поэтому сбор TLE заканчивается на строке 2.
		if !tleDone && sec == sectionNone && ref.Len() == 0 && isTLEText(line, numeric, len(tleLines)) {
			tleLines = append(tleLines, line)
			tleDone = strings.HasPrefix(line, "2 ")

			continue
		}

		if !numeric {
			return nil, errors.Wrapf(ErrMalformedLine, "line %d: %q", lineNo, line)
		}

		if sec == sectionNone {
			sec = sectionPositions
		}

		if err := ref.addRow(sec, fields); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan reference")
	}

	if len(tleLines) == 0 {
		return nil, ErrNoTLE
	}

	t, err := tle.ParseLines(tleLines)
	if err != nil {
		return nil, errors.Wrap(err, "parse reference TLE")
	}
	ref.TLE = t

	if ref.Len() == 0 {
		return nil, ErrNoRows
	}

	if n := len(ref.Velocities); n != 0 && n != ref.Len() {
		return nil, errors.Wrapf(ErrRowCount, "%d velocities for %d positions", n, ref.Len())
	}

	return &ref, nil
}

func (r *Reference) addRow(sec section, f []float64) error {
	switch {
	case sec == sectionPositions && len(f) == 4:
		r.Tsince = append(r.Tsince, f[0])
		r.Positions = append(r.Positions, r3.Vec{X: f[1], Y: f[2], Z: f[3]})
	case sec == sectionPositions && len(f) == 7:
		r.Tsince = append(r.Tsince, f[0])
		r.Positions = append(r.Positions, r3.Vec{X: f[1], Y: f[2], Z: f[3]})
		r.Velocities = append(r.Velocities, r3.Vec{X: f[4], Y: f[5], Z: f[6]})
	case sec == sectionVelocities && len(f) == 3:
		r.Velocities = append(r.Velocities, r3.Vec{X: f[0], Y: f[1], Z: f[2]})
	default:
		return errors.Wrapf(ErrMalformedLine, "unexpected %d columns", len(f))
	}

	return nil
}

// isTLEText сообщает, похожа ли строка на имя спутника или строку TLE.
// Имя допускается только первой строкой.
func isTLEText(line string, numeric bool, collected int) bool {
	if len(line) >= tle.LineLength && (strings.HasPrefix(line, "1 ") || strings.HasPrefix(line, "2 ")) {
		return true
	}

	return !numeric && collected == 0
}

// parseNumbers разбирает строку из чисел через пробел.
func parseNumbers(line string) ([]float64, bool) {
	parts := strings.Fields(line)
	out := make([]float64, 0, len(parts))

	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}

	return out, true
}
