package parser

import (
	"strconv"

	"github.com/sulloa07/orbit-sim/internal/util"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

const unnamedFlight = "unnamed"

// parseFlight builds a fresh flight plan. Nothing carries over from the
// previous plan.
func (p *Parser) parseFlight(b Block) core.FlightPlan {
	plan := core.FlightPlan{Name: util.TrimQuotes(b.Header)}

	for _, l := range b.Lines {
		key, raw, ok := util.SplitAssignment(l.Text)
		if ok && key == "name" {
			plan.Name = ParseValue(raw).String()
			continue
		}
		p.warn(UnknownProperty, l.Num, "flight: unexpected line %q", l.Text)
	}
	if plan.Name == "" {
		plan.Name = unnamedFlight
	}

	for _, c := range b.Children {
		if c.Keyword != "at" {
			p.warn(UnknownProperty, c.Line, "flight: unexpected block %q", c.Text())
			continue
		}
		ev, ok := p.parseEvent(c)
		if !ok {
			continue
		}
		plan.Events = append(plan.Events, ev)
	}

	return plan
}

// parseEvent reads one `at <kind>=<value> { ... }` block.
func (p *Parser) parseEvent(b Block) (core.Event, bool) {
	ev := core.Event{Line: b.Line}

	kind, raw, ok := util.SplitAssignment(b.Header)
	if !ok {
		p.warn(InvalidEventCondition, b.Line, "event condition %q is not <kind>=<value>", b.Header)
		return ev, false
	}
	switch kind {
	case "t":
		ev.Condition = core.TimeCondition
	case "altitude":
		ev.Condition = core.AltitudeCondition
	default:
		p.warn(InvalidEventCondition, b.Line, "unknown event condition %q", kind)
		return ev, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.warn(InvalidEventCondition, b.Line, "event condition value %q is not a number", raw)
		return ev, false
	}
	ev.Value = v

	p.nested(b)
	for _, l := range b.Lines {
		action, ok := p.parseAction(l)
		if ok {
			ev.Actions = append(ev.Actions, action)
		}
	}

	return ev, true
}

func (p *Parser) parseAction(l Line) (core.Action, bool) {
	key, raw, ok := util.SplitAssignment(l.Text)
	if !ok {
		p.warn(UnknownProperty, l.Num, "event: expected property = value, got %q", l.Text)
		return core.Action{}, false
	}

	action := core.Action{Type: core.ActionSet}
	switch key {
	case "angle":
		action.Property = core.AngleProperty
	case "power":
		action.Property = core.PowerProperty
	case "mass":
		action.Property = core.MassProperty
	default:
		p.warn(UnknownProperty, l.Num, "event: unknown property %q", key)
		return action, false
	}

	f, ok := ParseValue(raw).Float()
	if !ok {
		p.warn(InvalidValue, l.Num, "event: %s expects a number, got %q", key, raw)
		return action, false
	}
	action.Value = f
	return action, true
}
