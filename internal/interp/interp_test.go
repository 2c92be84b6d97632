package interp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sulloa07/orbit-sim/internal/config"
	"github.com/sulloa07/orbit-sim/internal/dispatcher"
	"github.com/sulloa07/orbit-sim/internal/logging"
	"github.com/sulloa07/orbit-sim/internal/mission"
	"github.com/sulloa07/orbit-sim/internal/parser"
	"github.com/sulloa07/orbit-sim/internal/report"
	"github.com/sulloa07/orbit-sim/internal/sim"
	"github.com/sulloa07/orbit-sim/internal/storage"
	"github.com/sulloa07/orbit-sim/internal/storage/memory"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

type recordedRun struct {
	run     core.Run
	samples int
	fired   int
	summary core.RunSummary
}

type fakeTelemetry struct {
	runs []recordedRun
	err  error
}

func (f *fakeTelemetry) WriteRun(run core.Run, samples []core.Sample, fired []core.FiredAction, summary core.RunSummary) error {
	f.runs = append(f.runs, recordedRun{run: run, samples: len(samples), fired: len(fired), summary: summary})
	return f.err
}

// failingBackend rejects every run.
type failingBackend struct{}

func (failingBackend) Init() error                              { return nil }
func (failingBackend) Close() error                             { return nil }
func (failingBackend) StartRun(*core.Run) error                 { return errors.New("disk full") }
func (failingBackend) EndRun(*core.RunSummary) error            { return nil }
func (failingBackend) RecordSample(*core.Sample) error          { return nil }
func (failingBackend) RecordFiredAction(*core.FiredAction) error { return nil }

var _ storage.Backend = failingBackend{}

type fixture struct {
	svc     *Service
	out     *bytes.Buffer
	logs    *bytes.Buffer
	mission *mission.Context
}

func newFixture(t *testing.T, opts sim.Options) *fixture {
	t.Helper()
	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)
	engine, err := sim.New(out, logger, opts)
	require.NoError(t, err)

	mc := mission.NewContext()
	svc := NewService(Dependencies{
		Out:        out,
		Logger:     logger,
		Dispatcher: d,
		Engine:     engine,
		Reporter:   report.NewWriter(out, logger, 0, 0),
		Mission:    mc,
	})
	return &fixture{svc: svc, out: out, logs: logs, mission: mc}
}

func parse(t *testing.T, src string) core.Program {
	t.Helper()
	prog, diags := parser.NewParser(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Parse(src)
	require.Empty(t, diags)
	return prog
}

const launchDoc = `
rocket {
    mass = 1
    thrust = 20
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
    report = max_altitude, range
}
`

func TestNewService_RegistersHandlers(t *testing.T) {
	f := newFixture(t, sim.Options{})
	for _, kind := range []core.StatementKind{core.RocketStatement, core.EnvironmentStatement, core.FlightStatement, core.SimulateStatement} {
		assert.True(t, f.svc.deps.Dispatcher.HasHandler(string(kind)), kind)
	}
}

func TestExecute_LaunchDocument(t *testing.T) {
	f := newFixture(t, sim.Options{})
	require.NoError(t, f.svc.Execute(context.Background(), parse(t, launchDoc)))

	out := f.out.String()
	assert.Contains(t, out, "Defined rocket: mass=1.0kg, thrust=20.0N\n")
	assert.Contains(t, out, "Defined environment with gravity=9.81\n")
	assert.Contains(t, out, "Defined flight sequence: vertical\n")
	assert.Contains(t, out, "\nRunning simulation\n"+strings.Repeat("-", 40)+"\n")
	assert.Contains(t, out, "t=0.0s: angle=90.0°\n")
	assert.Contains(t, out, "Fuel depleted")
	assert.Contains(t, out, "Rocket landed at x=")
	assert.Contains(t, out, "Trajectory (max height: ")
	assert.Contains(t, out, "Maximum altitude: ")
	assert.Contains(t, out, "Final range: ")

	// echoes come before the run, reports after the landing line
	assert.Less(t, strings.Index(out, "Defined rocket"), strings.Index(out, "Running simulation"))
	assert.Less(t, strings.Index(out, "Rocket landed"), strings.Index(out, "Maximum altitude"))

	assert.Nil(t, f.mission.GetRun())
}

func TestExecute_FizzBuzzEcho(t *testing.T) {
	f := newFixture(t, sim.Options{})
	require.NoError(t, f.svc.Execute(context.Background(), parse(t, "rocket {\n  fizzbuzz = true\n}\n")))
	assert.Equal(t, "Defined rocket: mass=1.0kg, thrust=20.0N\nFizzBuzz deployment enabled!\n", f.out.String())
}

func TestExecute_DisplayNone(t *testing.T) {
	f := newFixture(t, sim.Options{})
	require.NoError(t, f.svc.Execute(context.Background(), parse(t, "simulate {\n  display none\n}\n")))
	assert.NotContains(t, f.out.String(), "Trajectory (max height")
	assert.Contains(t, f.out.String(), "Rocket landed at x=0.0m after 0.0s\n")
}

func TestExecute_RecordsRuns(t *testing.T) {
	f := newFixture(t, sim.Options{})
	backend := memory.New(config.MemoryConfig{})
	telemetry := &fakeTelemetry{}
	f.svc.SetBackend(backend)
	f.svc.SetTelemetry(telemetry)

	src := launchDoc + `
rocket {
    mass = 2
}

simulate {
    display none
}
`
	require.NoError(t, f.svc.Execute(context.Background(), parse(t, src)))

	runs := backend.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, 1.0, runs[0].Run.Rocket.Mass)
	assert.Equal(t, 2.0, runs[1].Run.Rocket.Mass)
	assert.Equal(t, "vertical", runs[0].Run.Flight)
	assert.Equal(t, 0.1, runs[0].Run.Dt)
	assert.NotEqual(t, runs[0].Run.ID, runs[1].Run.ID)
	require.NotNil(t, runs[0].Summary)
	assert.True(t, runs[0].Summary.Landed)
	assert.NotEmpty(t, runs[0].Samples)
	assert.Len(t, runs[0].Fired, 2)

	require.Len(t, telemetry.runs, 2)
	assert.Equal(t, runs[0].Run.ID, telemetry.runs[0].run.ID)
	assert.Equal(t, len(runs[0].Samples), telemetry.runs[0].samples)
	assert.Equal(t, *runs[0].Summary, telemetry.runs[0].summary)
}

func TestExecute_RecordingFailuresDoNotFailRun(t *testing.T) {
	f := newFixture(t, sim.Options{})
	f.svc.SetBackend(failingBackend{})
	f.svc.SetTelemetry(&fakeTelemetry{err: errors.New("influx down")})

	require.NoError(t, f.svc.Execute(context.Background(), parse(t, "simulate {\n}\n")))
	assert.Contains(t, f.logs.String(), "Failed to store run")
	assert.Contains(t, f.logs.String(), "Failed to write run telemetry")
}

func TestExecute_ContinuesAfterFailure(t *testing.T) {
	f := newFixture(t, sim.Options{MaxTime: 0.5})
	backend := memory.New(config.MemoryConfig{})
	f.svc.SetBackend(backend)

	src := launchDoc + "\nsimulate {\n  display none\n}\n"
	err := f.svc.Execute(context.Background(), parse(t, src))

	require.Error(t, err)
	assert.ErrorIs(t, err, sim.ErrTimeLimit)
	assert.Equal(t, 2, strings.Count(f.out.String(), "Running simulation"))
	assert.Len(t, backend.Runs(), 2)
	assert.Contains(t, f.logs.String(), "Simulation stopped early")
}

func TestExecute_Cancelled(t *testing.T) {
	f := newFixture(t, sim.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.svc.Execute(ctx, parse(t, launchDoc))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.out.String())
}

func TestHandleSimulate_Outcome(t *testing.T) {
	f := newFixture(t, sim.Options{})
	prog := parse(t, launchDoc)

	res, err := f.svc.deps.Dispatcher.Dispatch(context.Background(), dispatcher.NewEvent(prog.Simulations()[0]))
	require.NoError(t, err)

	outcome, ok := res.(*Outcome)
	require.True(t, ok)
	assert.Equal(t, outcome.Result.Ticks, outcome.Summary.Ticks)
	assert.Greater(t, outcome.Summary.MaxAltitude, 0.0)
	assert.Equal(t, "vertical", outcome.Run.Flight)
}
