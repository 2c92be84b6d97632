// pkg/core/rocket.go
package core

import "math"

// RocketConfig describes the single-stage vehicle.
// Masses are kg, thrust N, burn rate kg/s at 100% power, diameter m.
type RocketConfig struct {
	Mass            float64
	Fuel            float64
	Thrust          float64
	BurnRate        float64
	Diameter        float64
	DragCoefficient float64
	FizzBuzz        bool
}

// DefaultRocket is the configuration in effect before any rocket block.
func DefaultRocket() RocketConfig {
	return RocketConfig{
		Mass:            1.0,
		Fuel:            0.5,
		Thrust:          20.0,
		BurnRate:        0.1,
		Diameter:        0.03,
		DragCoefficient: 1.14,
	}
}

// CrossSectionArea is π·(diameter/2)², in m².
func (r RocketConfig) CrossSectionArea() float64 {
	radius := r.Diameter / 2
	return math.Pi * radius * radius
}

// LaunchSite is an optional geographic anchor for the flight, in degrees.
type LaunchSite struct {
	Latitude  float64
	Longitude float64
}

// EnvironmentConfig holds the atmospheric setting.
type EnvironmentConfig struct {
	Gravity    float64
	LaunchSite *LaunchSite
}

// DefaultEnvironment is the environment in effect before any environment block.
func DefaultEnvironment() EnvironmentConfig {
	return EnvironmentConfig{Gravity: 9.81}
}
