// pkg/core/flight.go
package core

// ConditionKind selects what triggers an Event.
type ConditionKind uint8

const (
	TimeCondition ConditionKind = iota
	AltitudeCondition
)

func (k ConditionKind) String() string {
	if k == AltitudeCondition {
		return "altitude"
	}
	return "t"
}

// Property is the piece of engine state an Action overwrites.
type Property uint8

const (
	AngleProperty Property = iota
	PowerProperty
	MassProperty
)

func (p Property) String() string {
	switch p {
	case PowerProperty:
		return "power"
	case MassProperty:
		return "mass"
	default:
		return "angle"
	}
}

// Unit is the display suffix used in event annotations.
func (p Property) Unit() string {
	switch p {
	case PowerProperty:
		return "%"
	case MassProperty:
		return "kg"
	default:
		return "°"
	}
}

// ActionSet is the only action type the DSL produces.
const ActionSet = "set"

// Action overwrites one property with a value.
type Action struct {
	Type     string
	Property Property
	Value    float64
}

// Event is one `at <kind>=<value> { ... }` block of a flight plan.
type Event struct {
	Condition ConditionKind
	Value     float64
	Actions   []Action
	Processed bool
	Line      int
}

// FlightPlan is an ordered list of events, in source order.
type FlightPlan struct {
	Name   string
	Events []Event
}

// Clone returns a deep copy so a run can mutate its events freely.
func (p FlightPlan) Clone() FlightPlan {
	out := FlightPlan{Name: p.Name, Events: make([]Event, len(p.Events))}
	for i, e := range p.Events {
		e.Actions = append([]Action(nil), e.Actions...)
		out.Events[i] = e
	}
	return out
}
