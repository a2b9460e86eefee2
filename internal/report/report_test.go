package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLimit_Classify(t *testing.T) {
	t.Parallel()

	l := Limit{Warn: 150, Fail: 300}

	tests := []struct {
		delta float64
		want  Level
	}{
		{0, LevelOK},
		{150, LevelOK},
		{150.01, LevelWarn},
		{300, LevelWarn},
		{300.5, LevelFail},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, l.Classify(tt.delta), "delta=%v", tt.delta)
	}
}

func TestRow_Deltas(t *testing.T) {
	t.Parallel()

	r := Row{
		Reference: r3.Vec{X: 10, Y: -5, Z: 3},
		Simulated: r3.Vec{X: 7, Y: -1, Z: 3},
	}

	assert.Equal(t, []float64{3, 4, 0}, r.AxisDeltas())
	assert.InDelta(t, 7.0, r.TotalDelta(), 1e-12)
	assert.InDelta(t, 5.0, r.Distance(), 1e-12)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	pos := []Row{
		{Reference: r3.Vec{X: 3}, Simulated: r3.Vec{}},
		{Reference: r3.Vec{Y: 4}, Simulated: r3.Vec{}},
	}
	vel := []Row{
		{Reference: r3.Vec{Z: 0.2}, Simulated: r3.Vec{}},
	}

	s := Summarize(pos, vel, DefaultThresholds())

	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 4.0, s.MaxPosition, 1e-12)
	assert.InDelta(t, math.Sqrt(12.5), s.RMSPosition, 1e-12)
	assert.InDelta(t, 0.2, s.MaxVelocity, 1e-12)
	assert.Equal(t, LevelFail, s.Worst)

	empty := Summarize(nil, nil, DefaultThresholds())
	assert.Zero(t, empty.MaxPosition)
	assert.Equal(t, LevelOK, empty.Worst)
}

func TestWriter_Plain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultThresholds(), false)

	rows := []Row{
		{Tsince: 0, Reference: r3.Vec{X: 2328.97, Y: -5995.22, Z: 1719.97}, Simulated: r3.Vec{X: 2328.96, Y: -5995.21, Z: 1719.98}},
		{Tsince: 360, Reference: r3.Vec{X: 2456.10, Y: -6071.94, Z: 1222.89}, Simulated: r3.Vec{X: 2856.10, Y: -6071.94, Z: 1222.89}},
	}

	require.NoError(t, w.Positions(rows))
	require.NoError(t, w.Summary(Summarize(rows, nil, DefaultThresholds())))

	out := buf.String()
	assert.Contains(t, out, "Position comparison [km]")
	assert.Contains(t, out, "400.00")
	assert.Contains(t, out, "result: warn")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriter_Colored(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultThresholds(), true)

	oracle := r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}
	rows := []Row{{Tsince: 0, Reference: r3.Vec{X: 0.1}, Simulated: r3.Vec{X: 0.11}, Oracle: &oracle}}

	require.NoError(t, w.Velocities(rows))

	out := buf.String()
	assert.Contains(t, out, "\x1b[32m")
	assert.Contains(t, out, "ORACLE")
}

func TestWriter_PartialOracle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultThresholds(), false)

	oracle := r3.Vec{X: 7000.5}
	rows := []Row{
		{Tsince: 0, Reference: r3.Vec{X: 7000}, Simulated: r3.Vec{X: 7000}},
		{Tsince: 360, Reference: r3.Vec{X: 7000}, Simulated: r3.Vec{X: 7000}, Oracle: &oracle},
	}

	require.NoError(t, w.Positions(rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "ORACLE")
	assert.True(t, strings.HasSuffix(lines[2], " |        -"), "row without oracle: %q", lines[2])
	assert.True(t, strings.HasSuffix(lines[3], " |     0.50"), "row with oracle: %q", lines[3])
}
