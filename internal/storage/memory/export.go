// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sulloa07/orbit-sim/pkg/core"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// RunExport is the root structure of an exported run file
type RunExport struct {
	ID        string         `json:"id" yaml:"id"`
	Flight    string         `json:"flight" yaml:"flight"`
	StartTime string         `json:"startTime" yaml:"startTime"`
	Dt        float64        `json:"dt" yaml:"dt"`
	Rocket    RocketExport   `json:"rocket" yaml:"rocket"`
	Gravity   float64        `json:"gravity" yaml:"gravity"`
	Site      *SiteExport    `json:"launchSite,omitempty" yaml:"launchSite,omitempty"`
	Reports   []string       `json:"reports" yaml:"reports"`
	Summary   SummaryExport  `json:"summary" yaml:"summary"`
	Events    []ActionExport `json:"events" yaml:"events"`
	Positions [][3]float64   `json:"positions" yaml:"positions"` // [t, x, y]
}

// RocketExport is the rocket configuration a run started from
type RocketExport struct {
	Mass            float64 `json:"mass" yaml:"mass"`
	Fuel            float64 `json:"fuel" yaml:"fuel"`
	Thrust          float64 `json:"thrust" yaml:"thrust"`
	BurnRate        float64 `json:"burnRate" yaml:"burnRate"`
	Diameter        float64 `json:"diameter" yaml:"diameter"`
	DragCoefficient float64 `json:"dragCoefficient" yaml:"dragCoefficient"`
}

// SiteExport is the launch site, in degrees
type SiteExport struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// SummaryExport is the scalar outcome of a run
type SummaryExport struct {
	MaxAltitude   float64 `json:"maxAltitude" yaml:"maxAltitude"`
	Range         float64 `json:"range" yaml:"range"`
	FlightTime    float64 `json:"flightTime" yaml:"flightTime"`
	PathLength    float64 `json:"pathLength" yaml:"pathLength"`
	Ticks         int     `json:"ticks" yaml:"ticks"`
	Landed        bool    `json:"landed" yaml:"landed"`
	FuelRemaining float64 `json:"fuelRemaining" yaml:"fuelRemaining"`
}

// ActionExport is one fired action
type ActionExport struct {
	Time     float64 `json:"t" yaml:"t"`
	Altitude float64 `json:"altitude" yaml:"altitude"`
	Trigger  string  `json:"trigger" yaml:"trigger"`
	Property string  `json:"property" yaml:"property"`
	Value    float64 `json:"value" yaml:"value"`
}

func buildExport(rec *RunRecord) RunExport {
	r := rec.Run
	out := RunExport{
		ID:        r.ID,
		Flight:    r.Flight,
		StartTime: r.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Dt:        r.Dt,
		Rocket: RocketExport{
			Mass:            r.Rocket.Mass,
			Fuel:            r.Rocket.Fuel,
			Thrust:          r.Rocket.Thrust,
			BurnRate:        r.Rocket.BurnRate,
			Diameter:        r.Rocket.Diameter,
			DragCoefficient: r.Rocket.DragCoefficient,
		},
		Gravity:   r.Environment.Gravity,
		Reports:   append([]string{}, r.Directive.Reports...),
		Events:    make([]ActionExport, 0, len(rec.Fired)),
		Positions: make([][3]float64, 0, len(rec.Samples)),
	}
	if site := r.Environment.LaunchSite; site != nil {
		out.Site = &SiteExport{Latitude: site.Latitude, Longitude: site.Longitude}
	}
	if s := rec.Summary; s != nil {
		out.Summary = SummaryExport(*s)
	}
	for _, a := range rec.Fired {
		out.Events = append(out.Events, ActionExport{
			Time:     a.Time,
			Altitude: a.Altitude,
			Trigger:  a.Trigger.String(),
			Property: a.Property.String(),
			Value:    a.Value,
		})
	}
	for _, s := range rec.Samples {
		out.Positions = append(out.Positions, [3]float64{s.Time, s.Position.X, s.Position.Y})
	}
	return out
}

// exportFileName is <flight>_<timestamp>_<id prefix>.<format>[.gz].
func (b *Backend) exportFileName(r core.Run) string {
	flight := strings.NewReplacer(" ", "_", ":", "_", "/", "_").Replace(r.Flight)
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("%s_%s_%s.%s", flight, r.StartTime.Format("20060102_150405"), id, b.format())
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	return name
}

func (b *Backend) format() string {
	if strings.EqualFold(b.cfg.Format, FormatYAML) {
		return FormatYAML
	}
	return FormatJSON
}

// export writes rec to the output directory. An empty directory disables
// export.
func (b *Backend) export(rec *RunRecord) error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, b.exportFileName(rec.Run))
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if b.cfg.CompressOutput {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := encode(w, b.format(), buildExport(rec)); err != nil {
		return fmt.Errorf("failed to encode run %s: %w", rec.Run.ID, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func encode(w io.Writer, format string, data RunExport) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	return json.NewEncoder(w).Encode(data)
}
