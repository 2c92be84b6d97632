package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sulloa07/orbit-sim/pkg/core"
)

// DefaultDt is the integration step used when neither the engine options nor
// the scenario set one.
const DefaultDt = 0.1

// timeEpsilon absorbs float error in tick*dt when comparing against event times.
const timeEpsilon = 1e-9

var (
	// ErrTimeLimit is returned when a run reaches Options.MaxTime before landing.
	ErrTimeLimit = errors.New("simulation time limit reached before landing")
	// ErrZeroMass is returned when an action sets the running mass to zero.
	ErrZeroMass = errors.New("rocket mass is zero")
)

// Options configures an Engine.
type Options struct {
	// Dt is the fixed step in seconds. Zero means DefaultDt.
	Dt float64
	// MaxTime bounds simulated seconds. Zero runs until landing.
	MaxTime float64
}

// Scenario is the snapshot a single run starts from.
type Scenario struct {
	Rocket      core.RocketConfig
	Environment core.EnvironmentConfig
	Flight      core.FlightPlan
	// Dt overrides the engine step when positive.
	Dt float64
}

// State is the mutable state of a run.
type State struct {
	Position core.Position
	Velocity Vec2
	Elapsed  float64
	Mass     float64
	Fuel     float64
	Angle    float64
	Power    float64
	Terminal bool
}

// Result is what a run leaves behind.
type Result struct {
	Trajectory []core.Sample
	Final      State
	Fired      []core.FiredAction
	// Flight is the run's own copy of the plan, with Processed flags set.
	Flight core.FlightPlan
	Dt     float64
	Ticks  int
	Landed bool
}

// Engine runs fixed-step trajectory simulations. Runs share nothing; an
// Engine may be reused for any number of them.
type Engine struct {
	out    io.Writer
	logger *slog.Logger
	opts   Options

	ticks      metric.Int64Counter
	flightTime metric.Float64Histogram

	// afterTick, when set, sees the state at the end of every tick.
	afterTick func(State)
}

// New creates an Engine writing flight annotations to out.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(out io.Writer, logger *slog.Logger, opts Options) (*Engine, error) {
	if opts.Dt == 0 {
		opts.Dt = DefaultDt
	}
	if opts.Dt < 0 || math.IsNaN(opts.Dt) {
		return nil, fmt.Errorf("invalid time step %g", opts.Dt)
	}
	if opts.MaxTime < 0 {
		return nil, fmt.Errorf("invalid max time %g", opts.MaxTime)
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{out: out, logger: logger, opts: opts}

	m := meter()
	var err error

	e.ticks, err = m.Int64Counter(
		"sim.ticks",
		metric.WithDescription("Total integration steps executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	e.flightTime, err = m.Float64Histogram(
		"sim.flight_time",
		metric.WithDescription("Simulated seconds from launch to landing"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flight time histogram: %w", err)
	}

	return e, nil
}

// run holds the per-run working set.
type run struct {
	*Engine
	sc     Scenario
	dt     float64
	state  State
	times  []*core.Event
	alts   []*core.Event
	cursor int
	res    *Result
}

// Run simulates sc until the rocket lands.
//
// The returned Result is non-nil even when an error is returned, holding
// everything computed up to that point.
func (e *Engine) Run(ctx context.Context, sc Scenario) (*Result, error) {
	r := e.newRun(sc)

	r.applyLaunchEvents()

	var err error
	for tick := 0; ; tick++ {
		if err = ctx.Err(); err != nil {
			break
		}
		r.state.Elapsed = float64(tick) * r.dt
		if e.opts.MaxTime > 0 && r.state.Elapsed > e.opts.MaxTime+timeEpsilon {
			err = fmt.Errorf("%w: %gs", ErrTimeLimit, e.opts.MaxTime)
			break
		}
		if err = r.step(tick); err != nil {
			break
		}
		r.res.Ticks++
		if e.afterTick != nil {
			e.afterTick(r.state)
		}
		if r.state.Terminal {
			break
		}
	}

	r.res.Final = r.state
	r.res.Landed = r.state.Terminal

	attrs := metric.WithAttributes(attribute.String("flight", sc.Flight.Name))
	e.ticks.Add(ctx, int64(r.res.Ticks), attrs)
	if r.res.Landed {
		e.flightTime.Record(ctx, r.state.Elapsed, attrs)
	}

	e.logger.Debug("Simulation finished",
		"flight", sc.Flight.Name,
		"ticks", r.res.Ticks,
		"landed", r.res.Landed,
		"elapsed", r.state.Elapsed)

	return r.res, err
}

func (e *Engine) newRun(sc Scenario) *run {
	dt := e.opts.Dt
	if sc.Dt > 0 {
		dt = sc.Dt
	}

	plan := sc.Flight.Clone()
	r := &run{
		Engine: e,
		sc:     sc,
		dt:     dt,
		state: State{
			Mass:  sc.Rocket.Mass,
			Fuel:  sc.Rocket.Fuel,
			Angle: 90,
		},
		res: &Result{Flight: plan, Dt: dt},
	}

	for i := range plan.Events {
		ev := &plan.Events[i]
		switch ev.Condition {
		case core.TimeCondition:
			r.times = append(r.times, ev)
		case core.AltitudeCondition:
			r.alts = append(r.alts, ev)
		}
	}
	slices.SortStableFunc(r.times, func(a, b *core.Event) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})

	return r
}

// applyLaunchEvents applies time events due at or before t=0 so they take
// effect on the first tick. The cursor moves past them; they never fire again.
func (r *run) applyLaunchEvents() {
	for r.cursor < len(r.times) && r.times[r.cursor].Value <= 0 {
		r.fire(r.times[r.cursor])
		r.cursor++
	}
}

func (r *run) step(tick int) error {
	st := &r.state

	r.res.Trajectory = append(r.res.Trajectory, core.Sample{
		Index:    tick,
		Time:     st.Elapsed,
		Position: st.Position,
	})

	if r.sc.Rocket.FizzBuzz && st.Elapsed > 0 {
		r.fizzBuzz()
	}

	for r.cursor < len(r.times) && r.times[r.cursor].Value <= st.Elapsed+timeEpsilon {
		r.fire(r.times[r.cursor])
		r.cursor++
	}

	// Altitude events fire on every tick regardless of altitude.
	for _, ev := range r.alts {
		r.fire(ev)
	}

	if st.Mass == 0 {
		return fmt.Errorf("at t=%.1fs: %w", st.Elapsed, ErrZeroMass)
	}

	thrust := 0.0
	if st.Fuel > 0 {
		thrust = r.sc.Rocket.Thrust * (st.Power / 100)
	}
	force := Thrust(thrust, st.Angle).
		Add(Gravity(st.Mass, r.sc.Environment.Gravity)).
		Add(Drag(AirDensity(st.Position.Y), r.sc.Rocket.DragCoefficient, r.sc.Rocket.CrossSectionArea(), st.Velocity))

	accel := force.Scale(1 / st.Mass)
	st.Velocity = st.Velocity.Add(accel.Scale(r.dt))
	st.Position.X += st.Velocity.X * r.dt
	st.Position.Y += st.Velocity.Y * r.dt

	if st.Position.Y < 0 {
		st.Position.Y = 0
		st.Terminal = true
		fmt.Fprintf(r.out, "Rocket landed at x=%.1fm after %.1fs\n", st.Position.X, st.Elapsed)
		return nil
	}

	r.burn()
	return nil
}

// burn consumes fuel for one tick. Every kilogram of fuel burned leaves the
// running mass too.
func (r *run) burn() {
	st := &r.state
	if st.Power <= 0 || st.Fuel <= 0 {
		return
	}

	used := math.Min(r.sc.Rocket.BurnRate*(st.Power/100)*r.dt, st.Fuel)
	st.Fuel -= used
	st.Mass -= used

	if st.Fuel <= timeEpsilon {
		st.Mass -= st.Fuel
		st.Fuel = 0
		fmt.Fprintf(r.out, "t=%.1fs: Fuel depleted\n", st.Elapsed)
	}
}

func (r *run) fire(ev *core.Event) {
	st := &r.state
	for _, a := range ev.Actions {
		if a.Type != core.ActionSet {
			continue
		}
		switch a.Property {
		case core.AngleProperty:
			st.Angle = a.Value
		case core.PowerProperty:
			st.Power = a.Value
		case core.MassProperty:
			st.Mass = a.Value
		}

		if ev.Condition == core.AltitudeCondition {
			fmt.Fprintf(r.out, "alt=%.1fm: %s=%s%s\n", st.Position.Y, a.Property, core.FormatNumber(a.Value), a.Property.Unit())
		} else {
			fmt.Fprintf(r.out, "t=%.1fs: %s=%s%s\n", st.Elapsed, a.Property, core.FormatNumber(a.Value), a.Property.Unit())
		}

		r.res.Fired = append(r.res.Fired, core.FiredAction{
			Time:         st.Elapsed,
			Altitude:     st.Position.Y,
			Trigger:      ev.Condition,
			TriggerValue: ev.Value,
			Property:     a.Property,
			Value:        a.Value,
		})
	}
	ev.Processed = true
}

func (r *run) fizzBuzz() {
	st := &r.state
	n := int(math.RoundToEven(st.Elapsed))

	var word string
	switch {
	case n%15 == 0:
		word = "FIZZBUZZ"
	case n%3 == 0:
		word = "FIZZ"
	case n%5 == 0:
		word = "BUZZ"
	default:
		return
	}
	fmt.Fprintf(r.out, "At %.1fs altitude=%.1fm: Deployed %s!\n", st.Elapsed, st.Position.Y, word)
}
