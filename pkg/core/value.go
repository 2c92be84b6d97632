// pkg/core/value.go
package core

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	TextValue ValueKind = iota
	NumberValue
	BoolValue
)

func (k ValueKind) String() string {
	switch k {
	case NumberValue:
		return "number"
	case BoolValue:
		return "bool"
	default:
		return "text"
	}
}

// Value is the right-hand side of a DSL assignment after coercion.
// Exactly one of Num, Flag or Text is meaningful, selected by Kind.
type Value struct {
	Kind ValueKind
	Num  float64
	Flag bool
	Text string
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{Kind: NumberValue, Num: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{Kind: BoolValue, Flag: b} }

// Text returns an opaque text Value.
func Text(s string) Value { return Value{Kind: TextValue, Text: s} }

// Float reports the numeric magnitude. Only numbers convert; booleans and
// text do not.
func (v Value) Float() (float64, bool) {
	if v.Kind == NumberValue {
		return v.Num, true
	}
	return 0, false
}

// Truthy reports the boolean reading of v. Numbers are true when non-zero.
func (v Value) Truthy() (bool, bool) {
	switch v.Kind {
	case BoolValue:
		return v.Flag, true
	case NumberValue:
		return v.Num != 0, true
	default:
		return false, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case NumberValue:
		return FormatNumber(v.Num)
	case BoolValue:
		return strconv.FormatBool(v.Flag)
	default:
		return v.Text
	}
}

// FormatNumber renders f the way program output shows numbers: the shortest
// decimal that round-trips, always with a fractional part ("1.0", "0.03").
// Magnitudes of 1e16 and above, or below 1e-4, use exponent form ("1e-05").
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if a := math.Abs(f); a != 0 && (a >= 1e16 || a < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
