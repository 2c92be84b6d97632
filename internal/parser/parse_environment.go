package parser

import (
	"github.com/sulloa07/orbit-sim/internal/util"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// parseEnvironment merges the assignments of an environment block over prev.
// Setting either latitude or longitude anchors the flight to a launch site.
func (p *Parser) parseEnvironment(b Block, prev core.EnvironmentConfig) core.EnvironmentConfig {
	env := prev
	var site core.LaunchSite
	if prev.LaunchSite != nil {
		site = *prev.LaunchSite
	}
	anchored := prev.LaunchSite != nil
	p.nested(b)

	for _, l := range b.Lines {
		key, raw, ok := util.SplitAssignment(l.Text)
		if !ok {
			p.warn(UnknownProperty, l.Num, "environment: expected property = value, got %q", l.Text)
			continue
		}

		var field *float64
		switch key {
		case "gravity":
			field = &env.Gravity
		case "latitude":
			field = &site.Latitude
		case "longitude":
			field = &site.Longitude
		default:
			p.warn(UnknownProperty, l.Num, "environment: unknown property %q", key)
			continue
		}

		f, ok := ParseValue(raw).Float()
		if !ok {
			p.warn(InvalidValue, l.Num, "environment: %s expects a number, got %q", key, raw)
			continue
		}
		*field = f
		if key != "gravity" {
			anchored = true
		}
	}

	if anchored {
		if site.Latitude < -90 || site.Latitude > 90 {
			p.warn(InvalidValue, b.Line, "environment: latitude %g out of range, launch site ignored", site.Latitude)
			env.LaunchSite = nil
			return env
		}
		env.LaunchSite = &site
	}
	return env
}
