// Package interp executes a parsed program statement by statement. Each
// statement is routed through the dispatcher to the handler of its kind.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sulloa07/orbit-sim/internal/dispatcher"
	"github.com/sulloa07/orbit-sim/internal/mission"
	"github.com/sulloa07/orbit-sim/internal/report"
	"github.com/sulloa07/orbit-sim/internal/sim"
	"github.com/sulloa07/orbit-sim/internal/storage"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// Telemetry receives every finished run.
type Telemetry interface {
	WriteRun(run core.Run, samples []core.Sample, fired []core.FiredAction, summary core.RunSummary) error
}

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Out        io.Writer
	Logger     *slog.Logger
	Dispatcher *dispatcher.Dispatcher
	Engine     *sim.Engine
	Reporter   *report.Writer
	Mission    *mission.Context
}

// Outcome is what the simulate handler returns.
type Outcome struct {
	Run     core.Run
	Result  *sim.Result
	Summary core.RunSummary
}

// Service provides the statement handlers.
type Service struct {
	deps      Dependencies
	backend   storage.Backend
	telemetry Telemetry
}

// NewService creates the service and registers its handlers on deps.Dispatcher.
func NewService(deps Dependencies) *Service {
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Mission == nil {
		deps.Mission = mission.NewContext()
	}

	s := &Service{deps: deps}

	d := deps.Dispatcher
	d.Register(string(core.RocketStatement), s.handleRocket, dispatcher.Logged())
	d.Register(string(core.EnvironmentStatement), s.handleEnvironment, dispatcher.Logged())
	d.Register(string(core.FlightStatement), s.handleFlight, dispatcher.Logged())
	d.Register(string(core.SimulateStatement), s.handleSimulate, dispatcher.Logged())

	return s
}

// SetBackend sets the storage backend every run is recorded to.
func (s *Service) SetBackend(b storage.Backend) {
	s.backend = b
}

// SetTelemetry sets the sink finished runs are exported to.
func (s *Service) SetTelemetry(t Telemetry) {
	s.telemetry = t
}

// Execute runs prog in order. A failing statement does not stop the ones
// after it; all failures are returned joined. Cancelling ctx stops execution.
func (s *Service) Execute(ctx context.Context, prog core.Program) error {
	var errs []error
	for _, stmt := range prog.Statements {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.deps.Dispatcher.Dispatch(ctx, dispatcher.NewEvent(stmt)); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %s: %w", stmt.Line, stmt.Kind, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) handleRocket(_ context.Context, e dispatcher.Event) (any, error) {
	r := e.Statement.Rocket
	fmt.Fprintf(s.deps.Out, "Defined rocket: mass=%skg, thrust=%sN\n", core.FormatNumber(r.Mass), core.FormatNumber(r.Thrust))
	if r.FizzBuzz {
		fmt.Fprintln(s.deps.Out, "FizzBuzz deployment enabled!")
	}
	return r, nil
}

func (s *Service) handleEnvironment(_ context.Context, e dispatcher.Event) (any, error) {
	env := e.Statement.Environment
	fmt.Fprintf(s.deps.Out, "Defined environment with gravity=%s\n", core.FormatNumber(env.Gravity))
	if env.LaunchSite != nil {
		s.deps.Logger.Debug("Launch site set",
			"latitude", env.LaunchSite.Latitude,
			"longitude", env.LaunchSite.Longitude)
	}
	return env, nil
}

func (s *Service) handleFlight(_ context.Context, e dispatcher.Event) (any, error) {
	plan := e.Statement.Flight
	fmt.Fprintf(s.deps.Out, "Defined flight sequence: %s\n", plan.Name)
	return plan, nil
}

func (s *Service) handleSimulate(ctx context.Context, e dispatcher.Event) (any, error) {
	stmt := e.Statement
	out := s.deps.Out

	fmt.Fprintf(out, "\nRunning simulation\n%s\n", strings.Repeat("-", 40))

	run := core.Run{
		ID:          uuid.NewString(),
		Flight:      stmt.Flight.Name,
		StartTime:   time.Now(),
		Dt:          stmt.Directive.Dt,
		Rocket:      stmt.Rocket,
		Environment: stmt.Environment,
		Directive:   stmt.Directive,
	}
	s.deps.Mission.SetRun(&run)
	defer s.deps.Mission.Clear()

	res, runErr := s.deps.Engine.Run(ctx, sim.Scenario{
		Rocket:      stmt.Rocket,
		Environment: stmt.Environment,
		Flight:      stmt.Flight,
		Dt:          stmt.Directive.Dt,
	})
	if runErr != nil && ctx.Err() != nil {
		return nil, runErr
	}
	run.Dt = res.Dt

	summary := report.Summarize(res)
	if stmt.Directive.Displays(core.DisplayTrajectory) {
		s.deps.Reporter.Trajectory(res.Trajectory)
	}
	s.deps.Reporter.Reports(summary, stmt.Environment.LaunchSite, stmt.Directive.Reports)

	s.record(&run, res, summary)

	if runErr != nil {
		s.deps.Logger.Warn("Simulation stopped early", "error", runErr, "ticks", res.Ticks)
		return &Outcome{Run: run, Result: res, Summary: summary}, runErr
	}
	return &Outcome{Run: run, Result: res, Summary: summary}, nil
}

// record hands the finished run to the optional backend and telemetry sink.
// Failures are logged; they never fail the statement.
func (s *Service) record(run *core.Run, res *sim.Result, summary core.RunSummary) {
	if s.backend != nil {
		if err := persist(s.backend, run, res, summary); err != nil {
			s.deps.Logger.Error("Failed to store run", "error", err)
		} else if exp, ok := s.backend.(storage.Exportable); ok && exp.GetExportedFilePath() != "" {
			s.deps.Logger.Info("Run exported", "path", exp.GetExportedFilePath())
		}
	}
	if s.telemetry != nil {
		if err := s.telemetry.WriteRun(*run, res.Trajectory, res.Fired, summary); err != nil {
			s.deps.Logger.Error("Failed to write run telemetry", "error", err)
		}
	}
}

func persist(b storage.Backend, run *core.Run, res *sim.Result, summary core.RunSummary) error {
	if err := b.StartRun(run); err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	for i := range res.Trajectory {
		if err := b.RecordSample(&res.Trajectory[i]); err != nil {
			return fmt.Errorf("record sample %d: %w", i, err)
		}
	}
	for i := range res.Fired {
		if err := b.RecordFiredAction(&res.Fired[i]); err != nil {
			return fmt.Errorf("record fired action: %w", err)
		}
	}
	if err := b.EndRun(&summary); err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	return nil
}
