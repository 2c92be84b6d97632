package parser

import (
	"strings"

	"github.com/sulloa07/orbit-sim/internal/util"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// parseSimulate builds the directive of a simulate block. Both
// `display a,b` and `display = a,b` forms are accepted, likewise for
// report/reports. `display none` turns every display off.
func (p *Parser) parseSimulate(b Block) core.SimulationDirective {
	d := core.DefaultDirective()
	p.nested(b)

	for _, l := range b.Lines {
		key, raw, ok := util.SplitAssignment(l.Text)
		if !ok {
			key, raw = splitHeader(l.Text)
		}

		switch key {
		case "display":
			d.Display = displayList(raw)
		case "report", "reports":
			d.Reports = util.SplitList(util.TrimQuotes(raw))
		case "dt":
			f, ok := ParseValue(raw).Float()
			if !ok || f <= 0 {
				p.warn(InvalidValue, l.Num, "simulate: dt expects a positive number, got %q", raw)
				continue
			}
			d.Dt = f
		default:
			p.warn(UnknownProperty, l.Num, "simulate: unknown setting %q", l.Text)
		}
	}

	return d
}

func displayList(raw string) []string {
	list := util.SplitList(util.TrimQuotes(raw))
	if len(list) == 1 && strings.EqualFold(list[0], "none") {
		return []string{}
	}
	return list
}
