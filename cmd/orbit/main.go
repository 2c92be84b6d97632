package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/sulloa07/orbit-sim/internal/config"
	"github.com/sulloa07/orbit-sim/internal/dispatcher"
	"github.com/sulloa07/orbit-sim/internal/influx"
	"github.com/sulloa07/orbit-sim/internal/interp"
	"github.com/sulloa07/orbit-sim/internal/logging"
	"github.com/sulloa07/orbit-sim/internal/mission"
	"github.com/sulloa07/orbit-sim/internal/model/convert"
	"github.com/sulloa07/orbit-sim/internal/parser"
	"github.com/sulloa07/orbit-sim/internal/report"
	"github.com/sulloa07/orbit-sim/internal/sim"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	AppName string = "orbit"
)

// flags holds the parsed command line.
type flags struct {
	configDir string
	logLevel  string
	dt        float64
	maxTime   float64
	storage   string

	file  string
	limit int
	runID string
}

func newApp() (*kingpin.Application, *flags) {
	f := &flags{}
	app := kingpin.New(AppName, "Interpreter and trajectory simulator for the orbit rocket DSL.")
	app.Version(fmt.Sprintf("%s (built %s)", Version, BuildDate))

	app.Flag("config-dir", "Directory holding "+config.FileName).Default(".").StringVar(&f.configDir)
	app.Flag("log-level", "Log level (debug, info, warn, error)").StringVar(&f.logLevel)
	app.Flag("dt", "Integration step in seconds").Float64Var(&f.dt)
	app.Flag("max-time", "Simulated seconds before a run is stopped, 0 for unbounded").Default("-1").Float64Var(&f.maxTime)
	app.Flag("storage", "Run storage backend (none, memory, sqlite, postgres)").StringVar(&f.storage)

	run := app.Command("run", "Interpret and simulate a program").Default()
	run.Arg("file", "Program file").Required().ExistingFileVar(&f.file)

	runs := app.Command("runs", "List stored runs")
	runs.Flag("limit", "Maximum runs to list, 0 for all").Default("20").IntVar(&f.limit)

	plot := app.Command("plot", "Redraw the trajectory of a stored run")
	plot.Arg("run", "Run UUID").Required().StringVar(&f.runID)

	return app, f
}

// applyOverrides lets command line flags win over the config file.
func (f *flags) applyOverrides() {
	if f.logLevel != "" {
		config.Set("logLevel", f.logLevel)
	}
	if f.dt > 0 {
		config.Set("sim.dt", f.dt)
	}
	if f.maxTime >= 0 {
		config.Set("sim.maxTime", f.maxTime)
	}
	if f.storage != "" {
		config.Set("storage.type", f.storage)
	}
}

func main() {
	app, f := newApp()
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(execute(ctx, command, f, os.Stdout, os.Stderr))
}

func execute(ctx context.Context, command string, f *flags, stdout, stderr io.Writer) int {
	configErr := config.Load(f.configDir)
	f.applyOverrides()

	sess, err := openSession(ctx, stderr, time.Now())
	if err != nil {
		fmt.Fprintf(stderr, "orbit: %v\n", err)
		return 1
	}
	defer sess.Close()

	if configErr != nil {
		sess.Logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		sess.Logger.Info("Loaded config", "dir", f.configDir)
	}

	switch command {
	case "runs":
		err = listRuns(f.limit, stdout, sess)
	case "plot":
		err = plotRun(f.runID, stdout, sess)
	default:
		err = runFile(ctx, f.file, stdout, sess)
	}
	if err != nil {
		sess.Logger.Error("Command failed", "command", command, "error", err)
		return 1
	}
	return 0
}

// runFile parses and executes the program at path.
func runFile(ctx context.Context, path string, stdout io.Writer, sess *session) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read program: %w", err)
	}

	prog, diags := parser.NewParser(sess.Logger).Parse(string(src))
	sess.Logger.Info("Program parsed",
		"file", path,
		"statements", len(prog.Statements),
		"simulations", len(prog.Simulations()),
		"diagnostics", len(diags))

	d, err := dispatcher.New(logging.NewDispatcherLogger(sess.Zerolog))
	if err != nil {
		return err
	}

	simCfg := config.GetSimConfig()
	engine, err := sim.New(stdout, sess.Logger, sim.Options{Dt: simCfg.Dt, MaxTime: simCfg.MaxTime})
	if err != nil {
		return err
	}

	display := config.GetDisplayConfig()
	svc := interp.NewService(interp.Dependencies{
		Out:        stdout,
		Logger:     sess.Logger,
		Dispatcher: d,
		Engine:     engine,
		Reporter:   report.NewWriter(stdout, sess.Logger, display.Width, display.Height),
		Mission:    sess.Mission,
	})

	backend, err := createStorageBackend(config.GetStorageConfig(), config.GetDBConfig(), sess.Zerolog)
	if err != nil {
		return err
	}
	if backend != nil {
		if err := backend.Init(); err != nil {
			return fmt.Errorf("failed to initialize storage backend: %w", err)
		}
		defer func() {
			if err := backend.Close(); err != nil {
				sess.Logger.Error("Failed to close storage backend", "error", err)
			}
		}()
		svc.SetBackend(backend)
	}

	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		manager := influx.NewManager(sess.Zerolog, influxCfg)
		if err := manager.Connect(ctx); err != nil {
			sess.Logger.Warn("InfluxDB telemetry unavailable", "error", err)
		} else {
			defer manager.Close()
			svc.SetTelemetry(manager)
		}
	}

	return svc.Execute(ctx, prog)
}

func listRuns(limit int, stdout io.Writer, sess *session) error {
	store, err := openRunStore(config.GetStorageConfig(), config.GetDBConfig(), sess.Zerolog)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tFLIGHT\tSTARTED\tTICKS\tMAX ALT\tRANGE\tLANDED")
	for _, r := range runs {
		s := convert.RunToSummary(r)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1fm\t%.1fm\t%t\n",
			r.UUID,
			r.Flight,
			humanize.Time(r.StartTime),
			humanize.Comma(int64(s.Ticks)),
			s.MaxAltitude,
			s.Range,
			s.Landed)
	}
	return w.Flush()
}

func plotRun(runID string, stdout io.Writer, sess *session) error {
	store, err := openRunStore(config.GetStorageConfig(), config.GetDBConfig(), sess.Zerolog)
	if err != nil {
		return err
	}
	defer store.Close()

	samples, err := store.Trajectory(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.New("run has no trajectory samples")
	}

	run, err := store.Run(runID)
	if err != nil {
		return err
	}

	display := config.GetDisplayConfig()
	w := report.NewWriter(stdout, sess.Logger, display.Width, display.Height)
	w.Trajectory(samples)
	w.Reports(convert.RunToSummary(run), nil, []string{report.MaxAltitude, report.Range, report.FlightTime, report.PathLength})
	return nil
}

// session holds the loggers and telemetry of one invocation.
type session struct {
	Logger  *slog.Logger
	Zerolog zerolog.Logger
	Mission *mission.Context

	slogManager *logging.SlogManager
	closers     []func() error
}

// Close flushes and releases every sink, in reverse order of opening.
func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.slogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "orbit: flushing logs: %v\n", err)
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}
