// Package report печатает таблицы сравнения рассчитанных векторов состояния с эталоном.
package report

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Level оценка расхождения.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelFail
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelFail:
		return "fail"
	default:
		return "ok"
	}
}

// Limit пороги предупреждения и ошибки.
type Limit struct {
	Warn float64 `yaml:"warn" mapstructure:"warn"`
	Fail float64 `yaml:"fail" mapstructure:"fail"`
}

// Classify относит расхождение к уровню. Граница включается в нижний уровень.
func (l Limit) Classify(delta float64) Level {
	switch {
	case delta > l.Fail:
		return LevelFail
	case delta > l.Warn:
		return LevelWarn
	default:
		return LevelOK
	}
}

// Thresholds пороги раскраски таблиц.
type Thresholds struct {
	PositionAxis  Limit `yaml:"position_axis" mapstructure:"position_axis"`   // км
	PositionTotal Limit `yaml:"position_total" mapstructure:"position_total"` // км
	VelocityAxis  Limit `yaml:"velocity_axis" mapstructure:"velocity_axis"`   // км/с
	VelocityTotal Limit `yaml:"velocity_total" mapstructure:"velocity_total"` // км/с
}

// DefaultThresholds возвращает пороги по умолчанию.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PositionAxis:  Limit{Warn: 150, Fail: 300},
		PositionTotal: Limit{Warn: 200, Fail: 700},
		VelocityAxis:  Limit{Warn: 0.03, Fail: 0.05},
		VelocityTotal: Limit{Warn: 0.05, Fail: 0.1},
	}
}

// Row одна строка сравнения.
type Row struct {
	Tsince    float64
	Reference r3.Vec
	Simulated r3.Vec
	// Oracle значение независимой модели, nil если сверка не выполнялась.
	Oracle *r3.Vec
}

// AxisDeltas возвращает модули расхождений по осям.
func (r Row) AxisDeltas() []float64 {
	d := r3.Sub(r.Reference, r.Simulated)

	return []float64{math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)}
}

// TotalDelta возвращает сумму модулей расхождений по осям.
func (r Row) TotalDelta() float64 {
	return floats.Norm(r.AxisDeltas(), 1)
}

// Distance возвращает евклидово расхождение.
func (r Row) Distance() float64 {
	return r3.Norm(r3.Sub(r.Reference, r.Simulated))
}

// Writer печатает таблицы в w.
type Writer struct {
	w  io.Writer
	th Thresholds

	green, yellow, red *color.Color
}

// NewWriter создаёт Writer. При colored == false ANSI-коды не выводятся.
func NewWriter(w io.Writer, th Thresholds, colored bool) *Writer {
	wr := &Writer{
		w:      w,
		th:     th,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
	}

	for _, c := range []*color.Color{wr.green, wr.yellow, wr.red} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return wr
}

func (w *Writer) paint(level Level, s string) string {
	switch level {
	case LevelWarn:
		return w.yellow.Sprint(s)
	case LevelFail:
		return w.red.Sprint(s)
	default:
		return w.green.Sprint(s)
	}
}

// Positions печатает таблицу сравнения положений (км).
func (w *Writer) Positions(rows []Row) error {
	return w.table("Position comparison [km]", rows, w.th.PositionAxis, w.th.PositionTotal, "%10.2f", "%8.2f")
}

// Velocities печатает таблицу сравнения скоростей (км/с).
func (w *Writer) Velocities(rows []Row) error {
	return w.table("Velocity comparison [km/s]", rows, w.th.VelocityAxis, w.th.VelocityTotal, "%10.5f", "%8.5f")
}

// oracleMissing выводится в строках без значения независимой модели.
const oracleMissing = "-"

func (w *Writer) table(title string, rows []Row, axis, total Limit, valFmt, deltaFmt string) error {
	withOracle := slices.ContainsFunc(rows, func(r Row) bool { return r.Oracle != nil })

	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", title)
	fmt.Fprintf(&b, "%10s | %-36s | %-36s | %-33s | %8s", "TSINCE", "REFERENCE", "SIMULATED", "DELTA", "TOTAL")
	if withOracle {
		fmt.Fprintf(&b, " | %10s", "ORACLE Δ")
	}
	b.WriteString("\n")

	vec := func(v r3.Vec) string {
		return fmt.Sprintf(valFmt+" "+valFmt+" "+valFmt, v.X, v.Y, v.Z)
	}

	for _, r := range rows {
		deltas := r.AxisDeltas()
		cells := make([]string, len(deltas))
		for i, d := range deltas {
			cells[i] = w.paint(axis.Classify(d), fmt.Sprintf("%-10s", fmt.Sprintf(deltaFmt, d)))
		}

		tot := r.TotalDelta()
		fmt.Fprintf(&b, "%10.3f | %-36s | %-36s | %s | %s",
			r.Tsince, vec(r.Reference), vec(r.Simulated),
			strings.Join(cells, " "),
			w.paint(total.Classify(tot), fmt.Sprintf(deltaFmt, tot)),
		)

		switch {
		case r.Oracle != nil:
			fmt.Fprintf(&b, " | "+deltaFmt, r3.Norm(r3.Sub(*r.Oracle, r.Simulated)))
		case withOracle:
			fmt.Fprintf(&b, " | %8s", oracleMissing)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w.w, b.String())

	return err
}

// Summary сводная статистика расхождений.
type Summary struct {
	Count       int
	MaxPosition float64 // км
	RMSPosition float64 // км
	MaxVelocity float64 // км/с
	RMSVelocity float64 // км/с
	Worst       Level
}

// Summarize считает максимальные и среднеквадратичные евклидовы расхождения.
// vel может быть пустым.
func Summarize(pos, vel []Row, th Thresholds) Summary {
	s := Summary{Count: len(pos)}

	s.MaxPosition, s.RMSPosition = maxRMS(pos)
	s.MaxVelocity, s.RMSVelocity = maxRMS(vel)

	for _, r := range pos {
		s.Worst = max(s.Worst, th.PositionTotal.Classify(r.TotalDelta()))
	}
	for _, r := range vel {
		s.Worst = max(s.Worst, th.VelocityTotal.Classify(r.TotalDelta()))
	}

	return s
}

func maxRMS(rows []Row) (maxV, rms float64) {
	if len(rows) == 0 {
		return 0, 0
	}

	d := make([]float64, len(rows))
	for i, r := range rows {
		d[i] = r.Distance()
	}

	return floats.Max(d), floats.Norm(d, 2) / math.Sqrt(float64(len(d)))
}

// Summary печатает сводку.
func (w *Writer) Summary(s Summary) error {
	_, err := fmt.Fprintf(w.w,
		"\nPoints: %d  max |Δr| = %.4f km  rms |Δr| = %.4f km  max |Δv| = %.6f km/s  rms |Δv| = %.6f km/s  result: %s\n",
		s.Count, s.MaxPosition, s.RMSPosition, s.MaxVelocity, s.RMSVelocity,
		w.paint(s.Worst, s.Worst.String()),
	)

	return err
}
