// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sulloa07/orbit-sim/internal/model"
	"github.com/sulloa07/orbit-sim/pkg/core"
	"gorm.io/datatypes"
)

// toJSON marshals v for a JSON column. nil slices are stored as "[]".
func toJSON(v any) datatypes.JSON {
	if list, ok := v.([]string); ok && len(list) == 0 {
		return datatypes.JSON("[]")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(data)
}

// CoreToRun converts a core.Run to a GORM model.Run.
// core.Run.ID maps to Run.UUID; the row ID is assigned by the database.
func CoreToRun(r core.Run) model.Run {
	return model.Run{
		UUID:        r.ID,
		Flight:      r.Flight,
		StartTime:   r.StartTime,
		Dt:          r.Dt,
		Rocket:      toJSON(r.Rocket),
		Environment: toJSON(r.Environment),
		Display:     toJSON(r.Directive.Display),
		Reports:     toJSON(r.Directive.Reports),
	}
}

// CoreToTrajectorySample converts a core.Sample of the run with the given row ID.
func CoreToTrajectorySample(runID uint, s core.Sample) model.TrajectorySample {
	return model.TrajectorySample{
		RunID: runID,
		Idx:   s.Index,
		Time:  s.Time,
		X:     s.Position.X,
		Y:     s.Position.Y,
	}
}

// CoreToFiredAction converts a core.FiredAction of the run with the given row ID.
func CoreToFiredAction(runID uint, a core.FiredAction) model.FiredAction {
	return model.FiredAction{
		RunID:        runID,
		Time:         a.Time,
		Altitude:     a.Altitude,
		Trigger:      a.Trigger.String(),
		TriggerValue: a.TriggerValue,
		Property:     a.Property.String(),
		Value:        a.Value,
	}
}

// ApplySummary copies the run outcome onto r and stamps its end time.
func ApplySummary(r *model.Run, s core.RunSummary, end time.Time) {
	r.MaxAltitude = s.MaxAltitude
	r.Range = s.Range
	r.FlightTime = s.FlightTime
	r.PathLength = s.PathLength
	r.Ticks = s.Ticks
	r.Landed = s.Landed
	r.FuelRemaining = s.FuelRemaining
	r.EndTime = sql.NullTime{Time: end, Valid: true}
}
