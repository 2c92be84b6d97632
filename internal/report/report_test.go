package report

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sulloa07/orbit-sim/internal/sim"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

func newTestWriter(width, height int) (*Writer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	return NewWriter(out, slog.New(slog.NewTextHandler(logs, nil)), width, height), out, logs
}

func arc() []core.Sample {
	return []core.Sample{
		{Index: 0, Time: 0, Position: core.Position{X: 0, Y: 0}},
		{Index: 1, Time: 1, Position: core.Position{X: 3, Y: 4}},
		{Index: 2, Time: 2, Position: core.Position{X: 6, Y: 5}},
		{Index: 3, Time: 3, Position: core.Position{X: 9, Y: 4}},
	}
}

func TestSummarize(t *testing.T) {
	res := &sim.Result{
		Trajectory: arc(),
		Final: sim.State{
			Position: core.Position{X: 12, Y: 0},
			Elapsed:  3,
			Fuel:     0.25,
			Terminal: true,
		},
		Ticks:  4,
		Landed: true,
	}

	s := Summarize(res)
	assert.Equal(t, 5.0, s.MaxAltitude)
	assert.Equal(t, 12.0, s.Range)
	assert.Equal(t, 3.0, s.FlightTime)
	assert.Equal(t, 4, s.Ticks)
	assert.True(t, s.Landed)
	assert.Equal(t, 0.25, s.FuelRemaining)
	// 5 + sqrt(10) + sqrt(10) + 5
	assert.InDelta(t, 16.3245553, s.PathLength, 1e-6)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(&sim.Result{})
	assert.Zero(t, s.MaxAltitude)
	assert.Zero(t, s.PathLength)
}

func TestSummarize_LandedOnPad(t *testing.T) {
	res := &sim.Result{
		Trajectory: []core.Sample{{Index: 0}},
		Final:      sim.State{Terminal: true},
		Ticks:      1,
		Landed:     true,
	}

	s := Summarize(res)
	assert.True(t, s.Landed)
	assert.Zero(t, s.MaxAltitude)
	assert.Zero(t, s.PathLength)
}

func TestReports(t *testing.T) {
	w, out, logs := newTestWriter(0, 0)

	summary := core.RunSummary{MaxAltitude: 123.456, Range: 7.89, FlightTime: 14.3, PathLength: 250.04}
	w.Reports(summary, nil, []string{Range, "apogee", MaxAltitude, FlightTime, PathLength, Impact})

	assert.Equal(t, "Final range: 7.9m\n"+
		"Maximum altitude: 123.5m\n"+
		"Flight time: 14.3s\n"+
		"Path length: 250.0m\n", out.String())
	assert.Contains(t, logs.String(), "report=apogee")
	assert.Contains(t, logs.String(), "Impact report needs a launch site")
}

func TestReports_Impact(t *testing.T) {
	w, out, _ := newTestWriter(0, 0)

	w.Reports(core.RunSummary{Range: 111319.49 / 2}, &core.LaunchSite{Latitude: 60, Longitude: 10}, []string{Impact})
	assert.Equal(t, "Impact point: lat=60.000000, lon=11.000000\n", out.String())
}

func TestTrajectory_Layout(t *testing.T) {
	w, out, _ := newTestWriter(10, 4)
	w.Trajectory(arc())

	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 1+1+1+5+1+1)

	assert.Equal(t, "", lines[0])
	assert.Equal(t, "Trajectory (max height: 5.0m, range: 9.0m)", lines[1])
	assert.Equal(t, strings.Repeat("-", 11), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "5.0m |"))
	assert.True(t, strings.HasPrefix(lines[4], "    |"))
	assert.True(t, strings.HasPrefix(lines[7], "0m +"))
	assert.Equal(t, "       0m     9.0m", lines[8])
	assert.Equal(t, "", lines[9])

	// Ground row: origin plotted over the dashes.
	assert.Equal(t, "0m +*----------", lines[7])
	// Peak at x=6 -> column int(6/0.9)=6, top row.
	assert.Equal(t, "5.0m |      *    ", lines[3])
	for _, l := range lines[3:8] {
		row := l[strings.Index(l, "|")+1:]
		if strings.HasPrefix(l, "0m +") {
			row = strings.TrimPrefix(l, "0m +")
		}
		assert.Len(t, row, 11)
	}
}

func TestTrajectory_FlatAndEmpty(t *testing.T) {
	w, out, logs := newTestWriter(0, 0)

	w.Trajectory(nil)
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "No trajectory to display")

	w.Trajectory([]core.Sample{{}})
	text := out.String()
	assert.Contains(t, text, "Trajectory (max height: 0.0m, range: 0.0m)")
	assert.Contains(t, text, "0m +*"+strings.Repeat("-", DefaultWidth))
}
