// Package report renders simulation results as text: an ASCII trajectory
// plot and scalar report lines.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/sulloa07/orbit-sim/internal/geo"
	"github.com/sulloa07/orbit-sim/internal/sim"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// Report names understood by Writer.Reports.
const (
	MaxAltitude = "max_altitude"
	Range       = "range"
	FlightTime  = "flight_time"
	PathLength  = "path_length"
	Impact      = "impact"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 20
)

// Writer renders reports to out. Problems (unknown report names, missing
// launch site) are logged and never stop the remaining reports.
type Writer struct {
	out    io.Writer
	logger *slog.Logger
	width  int
	height int
}

// NewWriter creates a Writer. Non-positive sizes fall back to 80x20.
func NewWriter(out io.Writer, logger *slog.Logger, width, height int) *Writer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{out: out, logger: logger, width: width, height: height}
}

// Summarize reduces a run result to its scalar outcome.
func Summarize(res *sim.Result) core.RunSummary {
	s := core.RunSummary{
		Range:         res.Final.Position.X,
		FlightTime:    res.Final.Elapsed,
		Ticks:         res.Ticks,
		Landed:        res.Landed,
		FuelRemaining: res.Final.Fuel,
	}
	if len(res.Trajectory) > 0 {
		s.MaxAltitude = lo.MaxBy(res.Trajectory, func(a, b core.Sample) bool {
			return a.Position.Y > b.Position.Y
		}).Position.Y
	}

	var landing *core.Position
	if res.Landed {
		landing = &res.Final.Position
	}
	// a run that never left the pad has no line to measure
	if length, err := geo.PathLength(res.Trajectory, landing); err == nil {
		s.PathLength = length
	}
	return s
}

// Reports writes one line per requested report, in request order.
func (w *Writer) Reports(summary core.RunSummary, site *core.LaunchSite, names []string) {
	for _, name := range names {
		switch name {
		case MaxAltitude:
			fmt.Fprintf(w.out, "Maximum altitude: %.1fm\n", summary.MaxAltitude)
		case Range:
			fmt.Fprintf(w.out, "Final range: %.1fm\n", summary.Range)
		case FlightTime:
			fmt.Fprintf(w.out, "Flight time: %.1fs\n", summary.FlightTime)
		case PathLength:
			fmt.Fprintf(w.out, "Path length: %.1fm\n", summary.PathLength)
		case Impact:
			w.impact(summary, site)
		default:
			w.logger.Warn("Unknown report requested", "report", name)
		}
	}
}

func (w *Writer) impact(summary core.RunSummary, site *core.LaunchSite) {
	if site == nil {
		w.logger.Warn("Impact report needs a launch site; set latitude and longitude in environment")
		return
	}
	p, err := geo.ImpactPoint(*site, summary.Range)
	if err != nil {
		w.logger.Warn("Could not compute impact point", "error", err,
			"latitude", site.Latitude, "longitude", site.Longitude)
		return
	}
	fmt.Fprintf(w.out, "Impact point: lat=%.6f, lon=%.6f\n", p.Latitude, p.Longitude)
}

// Trajectory draws the samples on a width x height character grid, with
// the ground as the bottom row.
func (w *Writer) Trajectory(samples []core.Sample) {
	if len(samples) == 0 {
		w.logger.Warn("No trajectory to display")
		return
	}

	maxHeight := lo.MaxBy(samples, func(a, b core.Sample) bool { return a.Position.Y > b.Position.Y }).Position.Y
	maxRange := lo.MaxBy(samples, func(a, b core.Sample) bool { return a.Position.X > b.Position.X }).Position.X

	heightScale := 1.0
	if maxHeight > 0 {
		heightScale = maxHeight / float64(w.height)
	}
	rangeScale := 1.0
	if maxRange > 0 {
		rangeScale = maxRange / float64(w.width)
	}

	grid := make([][]byte, w.height+1)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", w.width+1))
	}
	for x := range grid[w.height] {
		grid[w.height][x] = '-'
	}

	for _, s := range samples {
		gx := int(s.Position.X / rangeScale)
		gy := w.height - int(s.Position.Y/heightScale)
		if gx >= 0 && gx <= w.width && gy >= 0 && gy <= w.height {
			grid[gy][gx] = '*'
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nTrajectory (max height: %.1fm, range: %.1fm)\n", maxHeight, maxRange)
	b.WriteString(strings.Repeat("-", w.width+1))
	b.WriteByte('\n')
	for y, row := range grid {
		switch y {
		case 0:
			fmt.Fprintf(&b, "%.1fm |%s\n", maxHeight, row)
		case w.height:
			fmt.Fprintf(&b, "0m +%s\n", row)
		default:
			fmt.Fprintf(&b, "    |%s\n", row)
		}
	}
	fmt.Fprintf(&b, "%s0m%s%.1fm\n", strings.Repeat(" ", 7), strings.Repeat(" ", max(w.width-5, 0)), maxRange)

	io.WriteString(w.out, b.String())
}
