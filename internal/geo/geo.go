package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/sulloa07/orbit-sim/pkg/core"
)

// Launch sites are projected to web mercator (EPSG:3857) so that downrange
// distances in meters can be added directly, then projected back to 4326.

var (
	// ErrInvalidCoordinates is returned when a launch site cannot be projected.
	ErrInvalidCoordinates = errors.New("invalid coordinates provided")
	// ErrDegenerateTrajectory is returned when the samples do not form a line,
	// for example a rocket that never left the pad.
	ErrDegenerateTrajectory = errors.New("trajectory has fewer than two distinct points")
)

// mercatorLimit is the latitude beyond which EPSG:3857 is undefined.
const mercatorLimit = 85.06

// Trajectory builds an XY LineString from trajectory samples.
// Fewer than two samples give an empty line.
func Trajectory(samples []core.Sample) (geom.LineString, error) {
	if len(samples) < 2 {
		return geom.LineString{}, nil
	}
	distinct := false
	flat := make([]float64, 0, len(samples)*2)
	for _, s := range samples {
		if s.Position != samples[0].Position {
			distinct = true
		}
		flat = append(flat, s.Position.X, s.Position.Y)
	}
	if !distinct {
		return geom.LineString{}, ErrDegenerateTrajectory
	}

	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("%w: %w", ErrDegenerateTrajectory, err)
	}
	return ls, nil
}

// PathLength is the polyline length of the trajectory, in meters. The landing
// position is appended when given, since the trajectory stops one tick short.
// A degenerate trajectory has length 0 and returns ErrDegenerateTrajectory.
func PathLength(samples []core.Sample, landing *core.Position) (float64, error) {
	if landing != nil {
		samples = append(samples[:len(samples):len(samples)], core.Sample{Position: *landing})
	}
	ls, err := Trajectory(samples)
	if err != nil {
		return 0, err
	}
	return ls.Length(), nil
}

// Coords3857From4326 projects a longitude/latitude pair to web mercator.
func Coords3857From4326(longitude, latitude float64) (geom.Point, error) {
	if math.IsNaN(latitude) || math.IsNaN(longitude) ||
		math.Abs(latitude) > mercatorLimit || math.Abs(longitude) > 180 {
		return geom.Point{}, ErrInvalidCoordinates
	}
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	p, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: x, Y: y}})
	if err != nil {
		return geom.Point{}, fmt.Errorf("%w: %w", ErrInvalidCoordinates, err)
	}
	return p, nil
}

// ImpactPoint returns the site displaced downrange meters due east.
// The mercator scale factor at the site latitude converts ground meters
// to projected meters.
func ImpactPoint(site core.LaunchSite, downrange float64) (core.LaunchSite, error) {
	p, err := Coords3857From4326(site.Longitude, site.Latitude)
	if err != nil {
		return core.LaunchSite{}, err
	}
	xy, ok := p.XY()
	if !ok {
		return core.LaunchSite{}, ErrInvalidCoordinates
	}

	scale := 1 / math.Cos(site.Latitude*math.Pi/180)
	back := wgs84.EPSG().Transform(3857, 4326)
	lon, lat, _ := back(xy.X+downrange*scale, xy.Y, 0)

	return core.LaunchSite{Latitude: lat, Longitude: lon}, nil
}
