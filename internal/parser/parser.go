package parser

import (
	"fmt"
	"log/slog"

	"github.com/sulloa07/orbit-sim/pkg/core"
)

// Parser turns a flight document into a core.Program.
//
// A Parser carries the configuration in effect while walking one document.
// It is reset at the start of every Parse call and is not safe for
// concurrent use.
type Parser struct {
	logger *slog.Logger

	rocket core.RocketConfig
	env    core.EnvironmentConfig
	flight core.FlightPlan
	diags  []Diagnostic
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse reads src into an ordered Program.
//
// Every statement carries a snapshot of the rocket, environment and flight
// plan defined before it. Problems never abort parsing; they are returned
// as diagnostics and logged as warnings.
func (p *Parser) Parse(src string) (core.Program, []Diagnostic) {
	p.rocket = core.DefaultRocket()
	p.env = core.DefaultEnvironment()
	p.flight = core.FlightPlan{}
	p.diags = nil

	blocks, diags := ParseBlocks(src)
	for _, d := range diags {
		p.report(d)
	}

	var prog core.Program
	for _, b := range blocks {
		stmt, ok := p.statement(b)
		if !ok {
			continue
		}
		prog.Statements = append(prog.Statements, stmt)
	}

	p.logger.Debug("Parsed document",
		"statements", len(prog.Statements),
		"diagnostics", len(p.diags))

	return prog, p.diags
}

func (p *Parser) statement(b Block) (core.Statement, bool) {
	if b.Bare {
		p.warn(UnknownTopLevelStatement, b.Line, "Unknown statement: %s", b.Text())
		return core.Statement{}, false
	}

	var (
		kind      core.StatementKind
		directive core.SimulationDirective
	)
	switch b.Keyword {
	case "rocket":
		kind = core.RocketStatement
		p.rocket = p.parseRocket(b, p.rocket)
	case "environment":
		kind = core.EnvironmentStatement
		p.env = p.parseEnvironment(b, p.env)
	case "flight":
		kind = core.FlightStatement
		p.flight = p.parseFlight(b)
	case "simulate":
		kind = core.SimulateStatement
		directive = p.parseSimulate(b)
	default:
		p.warn(UnknownTopLevelStatement, b.Line, "Unknown statement: %s", b.Text())
		return core.Statement{}, false
	}

	return core.Statement{
		Kind:        kind,
		Line:        b.Line,
		Rocket:      p.rocket,
		Environment: p.snapshotEnv(),
		Flight:      p.flight.Clone(),
		Directive:   directive,
	}, true
}

// snapshotEnv copies the launch site so statements never share it.
func (p *Parser) snapshotEnv() core.EnvironmentConfig {
	env := p.env
	if env.LaunchSite != nil {
		site := *env.LaunchSite
		env.LaunchSite = &site
	}
	return env
}

// nested reports every child block of a block kind that takes none.
func (p *Parser) nested(b Block) {
	for _, c := range b.Children {
		p.warn(UnknownProperty, c.Line, "unexpected block %q inside %s", c.Text(), b.Keyword)
	}
}

func (p *Parser) warn(kind DiagnosticKind, line int, format string, args ...any) {
	p.report(Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) report(d Diagnostic) {
	p.diags = append(p.diags, d)
	p.logger.Warn(d.Message, "kind", string(d.Kind), "line", d.Line)
}
