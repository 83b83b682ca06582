package metrics

import (
	"fmt"

	"github.com/dusk-indust/codescope/internal/ir"
)

// Suggestion thresholds.
const (
	LargeFileLOC   = 500
	HighFanOut     = 10
	HighFanIn      = 10
	LargeSymbolLOC = 80
)

// Suggestions returns refactoring hints for m based on its size, coupling and
// the size of its symbols.
func Suggestions(m *ir.Module) []string {
	var out []string

	if m.LOC > LargeFileLOC {
		out = append(out, "Large file detected - consider splitting into smaller modules")
	}
	if n := len(m.Outgoing); n > HighFanOut {
		out = append(out, fmt.Sprintf("High fan-out (%d) - consider reducing dependencies", n))
	}
	if n := len(m.Incoming); n > HighFanIn {
		out = append(out, fmt.Sprintf("High fan-in (%d) - consider extracting shared utilities", n))
	}
	for _, s := range m.Symbols {
		if s.LOC > LargeSymbolLOC {
			out = append(out, fmt.Sprintf("Large %s '%s' (%d LOC) - consider splitting", s.Kind, s.Name, s.LOC))
		}
	}

	return out
}
