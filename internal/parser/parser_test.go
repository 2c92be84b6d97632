package parser

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sulloa07/orbit-sim/pkg/core"
)

func newTestParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

const launchDoc = `
rocket {
    mass = 1
    fuel = 0.5
    thrust = 20
    burnRate = 0.1
    diameter = 0.03
    dragCoefficient = 1.14
}

environment {
    gravity = 9.81
}

flight vertical {
    at t=0 {
        angle = 90
        power = 100%
    }
}

simulate {
    report = max_altitude
}
`

func kinds(diags []Diagnostic) []DiagnosticKind {
	out := make([]DiagnosticKind, len(diags))
	for i, d := range diags {
		out[i] = d.Kind
	}
	return out
}

func TestNewParser(t *testing.T) {
	require.NotNil(t, NewParser(nil))
}

func TestParse_LaunchDocument(t *testing.T) {
	prog, diags := newTestParser().Parse(launchDoc)
	require.Empty(t, diags)
	require.Len(t, prog.Statements, 4)

	assert.Equal(t, core.RocketStatement, prog.Statements[0].Kind)
	assert.Equal(t, core.EnvironmentStatement, prog.Statements[1].Kind)
	assert.Equal(t, core.FlightStatement, prog.Statements[2].Kind)

	sims := prog.Simulations()
	require.Len(t, sims, 1)
	sim := sims[0]

	assert.Equal(t, core.DefaultRocket(), sim.Rocket)
	assert.Equal(t, 9.81, sim.Environment.Gravity)
	assert.Nil(t, sim.Environment.LaunchSite)
	assert.Equal(t, "vertical", sim.Flight.Name)
	require.Len(t, sim.Flight.Events, 1)

	ev := sim.Flight.Events[0]
	assert.Equal(t, core.TimeCondition, ev.Condition)
	assert.Equal(t, 0.0, ev.Value)
	assert.Equal(t, []core.Action{
		{Type: core.ActionSet, Property: core.AngleProperty, Value: 90},
		{Type: core.ActionSet, Property: core.PowerProperty, Value: 100},
	}, ev.Actions)

	assert.Equal(t, []string{core.DisplayTrajectory}, sim.Directive.Display)
	assert.Equal(t, []string{"max_altitude"}, sim.Directive.Reports)
}

func TestParse_CrossSectionArea(t *testing.T) {
	for _, d := range []float64{0.03, 0.1, 1, 2.5} {
		prog, _ := newTestParser().Parse("rocket {\n diameter = " + core.Number(d).String() + "\n}\nsimulate {\n}\n")
		sim := prog.Simulations()[0]
		assert.InDelta(t, math.Pi*(d/2)*(d/2), sim.Rocket.CrossSectionArea(), 1e-12)
	}
}

func TestParse_RocketMergesOverCurrent(t *testing.T) {
	src := `
rocket {
    mass = 3
    Cd = 0.5
    fizzbuzz = True
}
rocket {
    thrust = 50
}
simulate {
}
`
	prog, diags := newTestParser().Parse(src)
	require.Empty(t, diags)

	r := prog.Simulations()[0].Rocket
	assert.Equal(t, 3.0, r.Mass)
	assert.Equal(t, 0.5, r.DragCoefficient)
	assert.Equal(t, 50.0, r.Thrust)
	assert.Equal(t, 0.5, r.Fuel)
	assert.True(t, r.FizzBuzz)
}

func TestParse_SnapshotAtDirective(t *testing.T) {
	src := `
rocket {
    mass = 2
}
flight first {
    at t=1 {
        power = 50
    }
}
simulate {
}
rocket {
    mass = 4
}
flight second {
}
simulate {
    display none
}
`
	prog, diags := newTestParser().Parse(src)
	require.Empty(t, diags)

	sims := prog.Simulations()
	require.Len(t, sims, 2)

	assert.Equal(t, 2.0, sims[0].Rocket.Mass)
	assert.Equal(t, "first", sims[0].Flight.Name)
	assert.Len(t, sims[0].Flight.Events, 1)

	assert.Equal(t, 4.0, sims[1].Rocket.Mass)
	assert.Equal(t, "second", sims[1].Flight.Name)
	assert.Empty(t, sims[1].Flight.Events)
	assert.False(t, sims[1].Directive.Displays(core.DisplayTrajectory))
}

func TestParse_StatementsDoNotShareEvents(t *testing.T) {
	src := "flight f {\n at t=1 {\n power = 10\n }\n}\nsimulate {\n}\n"
	prog, _ := newTestParser().Parse(src)

	prog.Statements[0].Flight.Events[0].Actions[0].Value = 99
	assert.Equal(t, 10.0, prog.Statements[1].Flight.Events[0].Actions[0].Value)
}

func TestParse_UnknownTopLevel(t *testing.T) {
	src := `
orbit {
    apogee = 100
}
launch now
rocket {
    mass = 2
}
simulate {
}
`
	prog, diags := newTestParser().Parse(src)
	assert.Equal(t, []DiagnosticKind{UnknownTopLevelStatement, UnknownTopLevelStatement}, kinds(diags))
	assert.Equal(t, "Unknown statement: launch now", diags[1].Message)

	require.Len(t, prog.Statements, 2)
	assert.Equal(t, 2.0, prog.Simulations()[0].Rocket.Mass)
}

func TestParse_InvalidEventCondition(t *testing.T) {
	src := `
flight f {
    at velocity=10 {
        power = 100
    }
    at t=soon {
        power = 100
    }
    at altitude=500 {
        angle = 45
    }
}
simulate {
}
`
	prog, diags := newTestParser().Parse(src)
	assert.Equal(t, []DiagnosticKind{InvalidEventCondition, InvalidEventCondition}, kinds(diags))

	events := prog.Simulations()[0].Flight.Events
	require.Len(t, events, 1)
	assert.Equal(t, core.AltitudeCondition, events[0].Condition)
	assert.Equal(t, 500.0, events[0].Value)
}

func TestParse_InvalidValues(t *testing.T) {
	src := `
rocket {
    mass = heavy
    thrust = 30
    colour = red
    fizzbuzz = maybe
}
environment {
    gravity = lots
}
flight f {
    at t=0 {
        angle = up
        throttle = 5
        power = 80
    }
}
simulate {
    dt = -1
    sparkle
}
`
	prog, diags := newTestParser().Parse(src)
	assert.Equal(t, []DiagnosticKind{
		InvalidValue, UnknownProperty, InvalidValue,
		InvalidValue,
		InvalidValue, UnknownProperty,
		InvalidValue, UnknownProperty,
	}, kinds(diags))

	sim := prog.Simulations()[0]
	assert.Equal(t, 1.0, sim.Rocket.Mass)
	assert.Equal(t, 30.0, sim.Rocket.Thrust)
	assert.False(t, sim.Rocket.FizzBuzz)
	assert.Equal(t, 9.81, sim.Environment.Gravity)
	assert.Equal(t, []core.Action{{Type: core.ActionSet, Property: core.PowerProperty, Value: 80}},
		sim.Flight.Events[0].Actions)
	assert.Zero(t, sim.Directive.Dt)
}

func TestParse_SimulateForms(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		display []string
		reports []string
		dt      float64
	}{
		{"defaults", "", []string{"trajectory"}, nil, 0},
		{"inline lists", "display trajectory\nreport max_altitude, range", []string{"trajectory"}, []string{"max_altitude", "range"}, 0},
		{"assignments", "display = none\nreports = \"range,flight_time\"\ndt = 0.05", []string{}, []string{"range", "flight_time"}, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, diags := newTestParser().Parse("simulate {\n" + tt.body + "\n}\n")
			require.Empty(t, diags)
			d := prog.Simulations()[0].Directive
			assert.Equal(t, tt.display, d.Display)
			assert.Equal(t, tt.reports, d.Reports)
			assert.Equal(t, tt.dt, d.Dt)
		})
	}
}

func TestParse_EnvironmentLaunchSite(t *testing.T) {
	prog, diags := newTestParser().Parse("environment {\n gravity = 1.62\n latitude = 28.5\n longitude = -80.6\n}\nsimulate {\n}\n")
	require.Empty(t, diags)

	env := prog.Simulations()[0].Environment
	assert.Equal(t, 1.62, env.Gravity)
	require.NotNil(t, env.LaunchSite)
	assert.Equal(t, core.LaunchSite{Latitude: 28.5, Longitude: -80.6}, *env.LaunchSite)

	_, diags = newTestParser().Parse("environment {\n latitude = 120\n}\n")
	assert.Equal(t, []DiagnosticKind{InvalidValue}, kinds(diags))
}

func TestParse_FlightName(t *testing.T) {
	prog, _ := newTestParser().Parse("flight {\n name = \"apollo\"\n}\nflight {\n}\n")
	assert.Equal(t, "apollo", prog.Statements[0].Flight.Name)
	assert.Equal(t, "unnamed", prog.Statements[1].Flight.Name)
}

func TestParse_UnterminatedIsReported(t *testing.T) {
	prog, diags := newTestParser().Parse("rocket {\n mass = 5\n")
	assert.Equal(t, []DiagnosticKind{UnterminatedBlock}, kinds(diags))
	require.Len(t, prog.Statements, 1)
	assert.Equal(t, 5.0, prog.Statements[0].Rocket.Mass)
}

func TestDiagnostic_Error(t *testing.T) {
	d := Diagnostic{Kind: InvalidValue, Line: 7, Message: "bad"}
	assert.Equal(t, "line 7: InvalidValue: bad", d.Error())
}
