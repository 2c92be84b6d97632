// internal/storage/memory/export_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sulloa07/orbit-sim/internal/config"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

func recordRun(t *testing.T, b *Backend) {
	t.Helper()
	run := testRun("0f3c2a9e-1111-2222-3333-444455556666")
	run.Environment.LaunchSite = &core.LaunchSite{Latitude: 28.5, Longitude: -80.6}

	require.NoError(t, b.StartRun(run))
	require.NoError(t, b.RecordSample(&core.Sample{Index: 0}))
	require.NoError(t, b.RecordSample(&core.Sample{Index: 1, Time: 0.1, Position: core.Position{X: 0.2, Y: 0.9}}))
	require.NoError(t, b.RecordFiredAction(&core.FiredAction{
		Trigger: core.TimeCondition, Property: core.AngleProperty, Value: 90,
	}))
	require.NoError(t, b.EndRun(&core.RunSummary{MaxAltitude: 0.9, Range: 0.3, Ticks: 2, Landed: true}))
}

func TestBuildExport(t *testing.T) {
	b := New(config.MemoryConfig{})
	recordRun(t, b)

	rec := b.Runs()[0]
	exp := buildExport(&rec)

	assert.Equal(t, "vertical climb", exp.Flight)
	assert.Equal(t, "2026-03-01T12:00:00Z", exp.StartTime)
	assert.Equal(t, 1.14, exp.Rocket.DragCoefficient)
	assert.Equal(t, 9.81, exp.Gravity)
	require.NotNil(t, exp.Site)
	assert.Equal(t, 28.5, exp.Site.Latitude)
	assert.Equal(t, []string{"max_altitude"}, exp.Reports)
	assert.Equal(t, [][3]float64{{0, 0, 0}, {0.1, 0.2, 0.9}}, exp.Positions)
	assert.Equal(t, []ActionExport{{Trigger: "t", Property: "angle", Value: 90}}, exp.Events)
	assert.Equal(t, SummaryExport{MaxAltitude: 0.9, Range: 0.3, Ticks: 2, Landed: true}, exp.Summary)
}

func TestExport_GzipJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true, Format: "json"})
	recordRun(t, b)

	path := b.GetExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "vertical_climb_20260301_120000_0f3c2a9e.json.gz"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var exp RunExport
	require.NoError(t, json.NewDecoder(gz).Decode(&exp))
	assert.Equal(t, "0f3c2a9e-1111-2222-3333-444455556666", exp.ID)
	assert.Len(t, exp.Positions, 2)
	assert.True(t, exp.Summary.Landed)
}

func TestExport_PlainYAML(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, Format: "YAML"})
	recordRun(t, b)

	path := b.GetExportedFilePath()
	assert.Equal(t, ".yaml", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var exp RunExport
	require.NoError(t, yaml.Unmarshal(data, &exp))
	assert.Equal(t, "vertical climb", exp.Flight)
	assert.Equal(t, -80.6, exp.Site.Longitude)
	assert.Contains(t, string(data), "maxAltitude: 0.9")
}

func TestExport_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "runs")
	b := New(config.MemoryConfig{OutputDir: dir})
	recordRun(t, b)

	_, err := os.Stat(b.GetExportedFilePath())
	assert.NoError(t, err)
}
