package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sulloa07/orbit-sim/internal/config"
	"github.com/sulloa07/orbit-sim/internal/logging"
	"github.com/sulloa07/orbit-sim/internal/mission"
	intOtel "github.com/sulloa07/orbit-sim/internal/otel"
)

// openSession sets up logging for one invocation: console, session log file,
// optional Graylog and optional OTel export. A session log file that cannot
// be created is reported and skipped; the console keeps logging.
func openSession(ctx context.Context, stderr io.Writer, start time.Time) (*session, error) {
	s := &session{
		Mission:     mission.NewContext(),
		slogManager: logging.NewSlogManager(),
	}
	level := config.GetString("logLevel")

	// fileSink stays a nil interface when there is no log file
	var fileSink io.Writer
	logFilePath, logFile, fileErr := openLogFile(config.GetString("logsDir"), start)
	if logFile != nil {
		fileSink = logFile
		s.closers = append(s.closers, logFile.Close)
	}

	opts := logging.SetupOptions{
		Console: stderr,
		File:    fileSink,
		Level:   level,
		Context: logging.RunAttrs(s.Mission),
	}

	var graylogErr error
	if config.GetBool("graylog.enabled") {
		gw, err := logging.NewGraylogWriter(config.GetString("graylog.address"))
		if err != nil {
			graylogErr = err
		} else {
			opts.Graylog = gw
			s.closers = append(s.closers, gw.Close)
		}
	}

	// Initialize OTel provider if enabled (after log file is created)
	var otelErr error
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		provider, err := intOtel.New(ctx, intOtel.FromConfig(otelCfg, fileSink))
		if err != nil {
			otelErr = err
		} else {
			opts.Provider = provider.LoggerProvider()
			s.closers = append(s.closers, func() error {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return provider.Shutdown(shutdownCtx)
			})
		}
	}

	s.slogManager.Setup(opts)
	s.Logger = s.slogManager.Logger()

	// storage and telemetry log through zerolog, to the same file
	var zw io.Writer = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339, NoColor: true}
	if fileSink != nil {
		zw = zerolog.MultiLevelWriter(fileSink, zw)
	}
	s.Zerolog = logging.NewZerolog(zw, level)

	switch {
	case fileErr != nil:
		s.Logger.Warn("Session log file unavailable, logging to console only", "error", fileErr, "version", Version)
	case logFile != nil:
		s.Logger.Info("Begin logging in logs directory", "path", logFilePath, "version", Version)
	}
	if graylogErr != nil {
		s.Logger.Error("Failed to connect to Graylog", "error", graylogErr)
	}
	if otelErr != nil {
		s.Logger.Error("Failed to initialize OTel provider", "error", otelErr)
	} else if otelCfg.Enabled {
		s.Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	}

	return s, nil
}

// openLogFile creates logsDir and the session log file in it, moving an
// existing file of the same name to .old. An empty logsDir disables the file.
func openLogFile(logsDir string, start time.Time) (string, *os.File, error) {
	if logsDir == "" {
		return "", nil, nil
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create logs dir: %w", err)
	}

	path := logging.LogFilePath(logsDir, AppName, start)
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".old")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return path, nil, fmt.Errorf("failed to create log file %s: %w", path, err)
	}
	return path, f, nil
}
