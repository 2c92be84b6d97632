package parser

import "fmt"

// DiagnosticKind classifies a problem found while reading a document.
type DiagnosticKind string

const (
	// UnterminatedBlock: a block has no closing brace. The block still
	// extends to end of input.
	UnterminatedBlock DiagnosticKind = "UnterminatedBlock"
	// UnknownTopLevelStatement: a top-level keyword other than rocket,
	// environment, flight or simulate. The statement is skipped.
	UnknownTopLevelStatement DiagnosticKind = "UnknownTopLevelStatement"
	// InvalidEventCondition: an `at` header with an unknown condition kind or
	// a non-numeric value. The event is dropped.
	InvalidEventCondition DiagnosticKind = "InvalidEventCondition"
	// InvalidValue: a value of the wrong type for its property. The prior
	// value is kept.
	InvalidValue DiagnosticKind = "InvalidValue"
	// UnknownProperty: an assignment or nested block the block kind does not
	// understand. It is ignored.
	UnknownProperty DiagnosticKind = "UnknownProperty"
)

// Diagnostic is a non-fatal problem. Parsing always continues past it.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}
