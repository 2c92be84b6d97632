package parser

import (
	"strconv"
	"strings"

	"github.com/sulloa07/orbit-sim/internal/util"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// ParseValue coerces the raw right-hand side of an assignment.
//
// Rules, in order: case-insensitive true/false become booleans; a trailing
// '%' yields the number before it on a 0-100 scale ("50%" is 50, not 0.5);
// anything ParseFloat accepts is a number; everything else is kept as text
// with surrounding double quotes removed.
func ParseValue(raw string) core.Value {
	s := strings.TrimSpace(raw)

	switch strings.ToLower(s) {
	case "true":
		return core.Bool(true)
	case "false":
		return core.Bool(false)
	}

	if before, ok := strings.CutSuffix(s, "%"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(before), 64); err == nil {
			return core.Number(f)
		}
		return core.Text(s)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return core.Number(f)
	}

	return core.Text(util.TrimQuotes(s))
}
