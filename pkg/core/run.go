// pkg/core/run.go
package core

import "time"

// Position is a point of the 2D trajectory: X is range, Y altitude, in meters.
type Position struct {
	X float64
	Y float64
}

// Run identifies one executed simulate directive.
type Run struct {
	ID          string
	Flight      string
	StartTime   time.Time
	Dt          float64
	Rocket      RocketConfig
	Environment EnvironmentConfig
	Directive   SimulationDirective
}

// Sample is one trajectory point with the elapsed time it was taken at.
type Sample struct {
	Index    int
	Time     float64
	Position Position
}

// FiredAction records an action applied by the engine.
type FiredAction struct {
	Time         float64
	Altitude     float64
	Trigger      ConditionKind
	TriggerValue float64
	Property     Property
	Value        float64
}

// RunSummary holds the scalar outcome of a run.
type RunSummary struct {
	MaxAltitude   float64
	Range         float64
	FlightTime    float64
	PathLength    float64
	Ticks         int
	Landed        bool
	FuelRemaining float64
}
