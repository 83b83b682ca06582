// Package export renders analyzed modules and reports as JSON, YAML,
// Markdown, aligned tables and Mermaid diagrams.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/ir"
)

// Format names an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
	FormatMermaid  Format = "mermaid"
)

// Formats lists every format accepted by ParseFormat.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatMarkdown, FormatMermaid}

// ParseFormat maps a case-insensitive name to its Format. "markdown" and
// "yml" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "mermaid":
		return FormatMermaid, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, joinFormats())
}

func joinFormats() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// SortBy orders symbols in rendered output.
type SortBy string

const (
	SortLOC        SortBy = "loc"        // descending
	SortName       SortBy = "name"       // ascending
	SortComplexity SortBy = "complexity" // descending, non-functions last
	SortIssues     SortBy = "issues"     // breach count, descending
)

// ParseSort maps a case-insensitive name to its SortBy.
func ParseSort(s string) (SortBy, error) {
	switch by := SortBy(strings.ToLower(strings.TrimSpace(s))); by {
	case SortLOC, SortName, SortComplexity, SortIssues:
		return by, nil
	case "":
		return SortLOC, nil
	}
	return "", fmt.Errorf("unknown sort %q (want loc, name, complexity or issues)", s)
}

// Options tune rendering.
type Options struct {
	Sort SortBy // SortLOC when empty
}

// SortSymbols returns a sorted copy of symbols. Ties keep source order.
func SortSymbols(symbols []ir.Symbol, by SortBy) []ir.Symbol {
	out := make([]ir.Symbol, len(symbols))
	copy(out, symbols)

	var less func(a, b ir.Symbol) bool
	switch by {
	case SortName:
		less = func(a, b ir.Symbol) bool { return a.Name < b.Name }
	case SortComplexity:
		less = func(a, b ir.Symbol) bool { return complexity(a) > complexity(b) }
	case SortIssues:
		less = func(a, b ir.Symbol) bool { return breaches(a.Metrics) > breaches(b.Metrics) }
	default:
		less = func(a, b ir.Symbol) bool { return a.LOC > b.LOC }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func complexity(s ir.Symbol) int {
	if s.BranchingComplexity == nil {
		return -1
	}
	return *s.BranchingComplexity
}

func breaches(metrics []ir.QualityMetric) int {
	n := 0
	for _, q := range metrics {
		if q.Severity.Breach() {
			n++
		}
	}
	return n
}

// sorted returns a copy of m with its symbols ordered by opts.
func sorted(m *ir.Module, opts Options) *ir.Module {
	cp := m.Clone()
	cp.Symbols = SortSymbols(cp.Symbols, opts.Sort)
	return cp
}

func sortedReport(r *analysis.Report, opts Options) *analysis.Report {
	cp := *r
	cp.Modules = make([]*ir.Module, len(r.Modules))
	for i, m := range r.Modules {
		cp.Modules[i] = sorted(m, opts)
	}
	return &cp
}

// WriteModule renders one module. Mermaid is not available for a single
// module.
func WriteModule(w io.Writer, m *ir.Module, f Format, opts Options) error {
	m = sorted(m, opts)
	switch f {
	case FormatJSON:
		return WriteJSON(w, m)
	case FormatYAML:
		return WriteYAML(w, m)
	case FormatMarkdown:
		_, err := io.WriteString(w, ModuleMarkdown(m))
		return err
	case FormatTable:
		return WriteModuleTable(w, m)
	}
	return fmt.Errorf("format %q is not supported for a single file", f)
}

// WriteReport renders a directory report.
func WriteReport(w io.Writer, r *analysis.Report, f Format, opts Options) error {
	r = sortedReport(r, opts)
	switch f {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatMarkdown:
		_, err := io.WriteString(w, ReportMarkdown(r))
		return err
	case FormatTable:
		return WriteReportTable(w, r)
	case FormatMermaid:
		if r.Graph == nil {
			return fmt.Errorf("report has no dependency graph")
		}
		_, err := io.WriteString(w, Mermaid(r.Graph, r.Clusters))
		return err
	}
	return fmt.Errorf("unknown format %q", f)
}

// metricCategory groups a metric name for display.
func metricCategory(name string) string {
	switch {
	case containsAny(name, "file", "loc", "comment", "blank"):
		return "Size"
	case containsAny(name, "function", "class", "interface", "type"):
		return "Structure"
	case containsAny(name, "fan", "import", "coupling"):
		return "Coupling"
	case strings.Contains(name, "complexity"):
		return "Complexity"
	}
	return "Other"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func statusIcon(s ir.Severity) string {
	switch s {
	case ir.SeverityError:
		return "✗"
	case ir.SeverityWarning:
		return "⚠"
	}
	return "✓"
}

func thresholdText(t *float64) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *t)
}

// issues lists the names of breaching metrics, underscores as spaces.
func issues(metrics []ir.QualityMetric) []string {
	var out []string
	for _, q := range metrics {
		if q.Severity.Breach() {
			out = append(out, strings.ReplaceAll(q.Name, "_", " "))
		}
	}
	return out
}

func language(m *ir.Module) string {
	if m.Language == nil {
		return "unknown"
	}
	return *m.Language
}
