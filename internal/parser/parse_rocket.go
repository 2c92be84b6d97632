package parser

import (
	"github.com/sulloa07/orbit-sim/internal/util"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// parseRocket merges the assignments of a rocket block over prev.
func (p *Parser) parseRocket(b Block, prev core.RocketConfig) core.RocketConfig {
	r := prev
	p.nested(b)

	for _, l := range b.Lines {
		key, raw, ok := util.SplitAssignment(l.Text)
		if !ok {
			p.warn(UnknownProperty, l.Num, "rocket: expected property = value, got %q", l.Text)
			continue
		}
		v := ParseValue(raw)

		var field *float64
		switch key {
		case "mass":
			field = &r.Mass
		case "fuel":
			field = &r.Fuel
		case "thrust":
			field = &r.Thrust
		case "burnRate":
			field = &r.BurnRate
		case "diameter":
			field = &r.Diameter
		case "Cd", "dragCoefficient":
			field = &r.DragCoefficient
		case "fizzbuzz", "fizzbuzzEnabled":
			flag, ok := v.Truthy()
			if !ok {
				p.warn(InvalidValue, l.Num, "rocket: %s expects a boolean, got %q", key, raw)
				continue
			}
			r.FizzBuzz = flag
			continue
		default:
			p.warn(UnknownProperty, l.Num, "rocket: unknown property %q", key)
			continue
		}

		f, ok := v.Float()
		if !ok {
			p.warn(InvalidValue, l.Num, "rocket: %s expects a number, got %q", key, raw)
			continue
		}
		*field = f
	}

	return r
}
