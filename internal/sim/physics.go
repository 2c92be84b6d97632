package sim

import "math"

const (
	seaLevelDensity = 1.22 // kg/m³
	densityFloor    = 1000.0
	densityCeiling  = 14000.0
)

// Vec2 is a 2D vector in the range/altitude plane.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

// Norm is the Euclidean length of v.
func (v Vec2) Norm() float64 { return math.Hypot(v.X, v.Y) }

// AirDensity returns air density in kg/m³ at the given altitude.
// It is constant below 1 km, loses 10% per km up to 14 km, and is frozen at
// the 14 km value above that.
func AirDensity(altitude float64) float64 {
	if altitude < densityFloor {
		return seaLevelDensity
	}
	return seaLevelDensity * math.Pow(0.9, math.Min(altitude, densityCeiling)/1000)
}

// Thrust decomposes a thrust magnitude along angle, in degrees from +x.
func Thrust(magnitude, angle float64) Vec2 {
	rad := angle * math.Pi / 180
	return Vec2{magnitude * math.Cos(rad), magnitude * math.Sin(rad)}
}

// Drag returns the drag force opposing velocity v:
// 0.5·ρ·Cd·A·|v|², zero when the rocket is at rest.
func Drag(rho, cd, area float64, v Vec2) Vec2 {
	speed := v.Norm()
	if speed == 0 {
		return Vec2{}
	}
	magnitude := 0.5 * rho * cd * area * speed * speed
	return v.Scale(-magnitude / speed)
}

// Gravity returns the weight of mass under g, pointing down.
func Gravity(mass, g float64) Vec2 {
	return Vec2{0, -mass * g}
}
