package convert

import (
	"github.com/sulloa07/orbit-sim/internal/model"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// RunToSummary reads the stored outcome of a run.
func RunToSummary(r model.Run) core.RunSummary {
	return core.RunSummary{
		MaxAltitude:   r.MaxAltitude,
		Range:         r.Range,
		FlightTime:    r.FlightTime,
		PathLength:    r.PathLength,
		Ticks:         r.Ticks,
		Landed:        r.Landed,
		FuelRemaining: r.FuelRemaining,
	}
}

// TrajectorySampleToCore converts a stored sample back to a core.Sample.
func TrajectorySampleToCore(s model.TrajectorySample) core.Sample {
	return core.Sample{
		Index:    s.Idx,
		Time:     s.Time,
		Position: core.Position{X: s.X, Y: s.Y},
	}
}
