package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/sulloa07/orbit-sim/internal/config"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// Measurement names written per run.
const (
	MeasurementTrajectory  = "trajectory"
	MeasurementFiredAction = "fired_action"
	MeasurementRunSummary  = "run_summary"
)

// ErrDisabled is returned by Connect when influx.enabled is false.
var ErrDisabled = errors.New("influx telemetry is disabled")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Logger       zerolog.Logger

	cfg        config.InfluxConfig
	backupFile io.Closer
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig) *Manager {
	return &Manager{
		IsValid: false,
		Logger:  log,
		cfg:     cfg,
	}
}

// ServerURL is the address the client connects to.
func (m *Manager) ServerURL() string {
	return fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port)
}

// Connect establishes a connection to InfluxDB. When the server cannot be
// reached, points go to the gzip line protocol backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.ServerURL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Err(err).Str("backupPath", m.cfg.BackupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		return m.openBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.IsValid = true
	m.Logger.Info().Str("url", m.ServerURL()).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.BackupWriter = gzip.NewWriter(file)
	m.backupFile = file
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgName := m.cfg.Org

	// ensure org exists
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	// ensure bucket exists with 90 day retention
	bucket := m.cfg.Bucket
	if _, err = m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err != nil {
		m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90, // 90 days
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
			return err
		}
	}

	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)

	errorsCh := m.Writer.Errors()
	go func() {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}()
}

// WritePoint writes a point to InfluxDB or backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if !strings.HasSuffix(lineProtocol, "\n") {
		lineProtocol += "\n"
	}
	if _, err := m.BackupWriter.Write([]byte(lineProtocol)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// WriteRun sends every point of a finished run.
func (m *Manager) WriteRun(run core.Run, samples []core.Sample, fired []core.FiredAction, summary core.RunSummary) error {
	points := RunPoints(run, samples, fired, summary)
	for _, p := range points {
		if err := m.WritePoint(p); err != nil {
			return err
		}
	}
	m.Logger.Debug().Str("run", run.ID).Int("points", len(points)).Msg("Run telemetry written")
	return nil
}

// RunPoints builds the points for one run. Sample timestamps are the run start
// plus the simulated elapsed time.
func RunPoints(run core.Run, samples []core.Sample, fired []core.FiredAction, summary core.RunSummary) []*influxdb2_write.Point {
	tags := func() map[string]string {
		return map[string]string{"run_id": run.ID, "flight": run.Flight}
	}
	at := func(elapsed float64) time.Time {
		return run.StartTime.Add(time.Duration(elapsed * float64(time.Second)))
	}

	points := make([]*influxdb2_write.Point, 0, len(samples)+len(fired)+1)
	for _, s := range samples {
		points = append(points, influxdb2_write.NewPoint(MeasurementTrajectory, tags(), map[string]interface{}{
			"t": s.Time,
			"x": s.Position.X,
			"y": s.Position.Y,
		}, at(s.Time)))
	}

	for _, a := range fired {
		t := tags()
		t["trigger"] = a.Trigger.String()
		t["property"] = a.Property.String()
		points = append(points, influxdb2_write.NewPoint(MeasurementFiredAction, t, map[string]interface{}{
			"altitude":      a.Altitude,
			"trigger_value": a.TriggerValue,
			"value":         a.Value,
		}, at(a.Time)))
	}

	points = append(points, influxdb2_write.NewPoint(MeasurementRunSummary, tags(), map[string]interface{}{
		"max_altitude":   summary.MaxAltitude,
		"range":          summary.Range,
		"flight_time":    summary.FlightTime,
		"path_length":    summary.PathLength,
		"ticks":          summary.Ticks,
		"landed":         summary.Landed,
		"fuel_remaining": summary.FuelRemaining,
	}, at(summary.FlightTime)))

	return points
}

// Close flushes pending writes and releases the client and backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	var errs []error
	if m.BackupWriter != nil {
		errs = append(errs, m.BackupWriter.Close())
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		errs = append(errs, m.backupFile.Close())
		m.backupFile = nil
	}
	return errors.Join(errs...)
}
