// pkg/core/program.go
package core

import "slices"

// DisplayTrajectory is the display option that requests the ASCII plot.
const DisplayTrajectory = "trajectory"

// SimulationDirective is the content of a simulate block.
// Dt of zero means the engine default.
type SimulationDirective struct {
	Display []string
	Reports []string
	Dt      float64
}

// DefaultDirective displays the trajectory and requests no reports.
func DefaultDirective() SimulationDirective {
	return SimulationDirective{Display: []string{DisplayTrajectory}}
}

// Displays reports whether the named display option was requested.
func (d SimulationDirective) Displays(name string) bool {
	return slices.Contains(d.Display, name)
}

// StatementKind names the top-level block a Statement came from.
type StatementKind string

const (
	RocketStatement      StatementKind = "rocket"
	EnvironmentStatement StatementKind = "environment"
	FlightStatement      StatementKind = "flight"
	SimulateStatement    StatementKind = "simulate"
)

// Statement is one executable step of a Program.
//
// Rocket, Environment and Flight always hold the configuration current at
// this point in the document, so a simulate statement carries its own
// snapshot and later redefinitions cannot reach it.
type Statement struct {
	Kind        StatementKind
	Line        int
	Rocket      RocketConfig
	Environment EnvironmentConfig
	Flight      FlightPlan
	Directive   SimulationDirective
}

// Program is a parsed document, in source order.
type Program struct {
	Statements []Statement
}

// Simulations returns the simulate statements of p.
func (p Program) Simulations() []Statement {
	var out []Statement
	for _, s := range p.Statements {
		if s.Kind == SimulateStatement {
			out = append(out, s)
		}
	}
	return out
}
