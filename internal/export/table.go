package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/ir"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteModuleTable writes a console view of one module.
func WriteModuleTable(w io.Writer, m *ir.Module) error {
	tw := newTabWriter(w)
	writeModuleTable(tw, m)
	return tw.Flush()
}

func writeModuleTable(tw *tabwriter.Writer, m *ir.Module) {
	fmt.Fprintf(tw, "Target: %s (%s, %d LOC, %d comment, %d blank)\n\n",
		m.Path, language(m), m.LOC, m.CommentLines, m.BlankLines)

	if len(m.Metrics) > 0 {
		fmt.Fprintln(tw, "[Quality Metrics]")
		fmt.Fprintln(tw, "CATEGORY\tMETRIC\tVALUE\tTHRESHOLD\tSTATUS")
		for _, q := range m.Metrics {
			fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\t%s\n",
				metricCategory(q.Name), q.Name, q.Value, thresholdText(q.Threshold), statusIcon(q.Severity))
		}
		for _, q := range m.Metrics {
			if q.Message != nil {
				fmt.Fprintf(tw, "  %s %s\n", statusIcon(q.Severity), *q.Message)
			}
		}
		fmt.Fprintln(tw)
	}

	if len(m.Symbols) > 0 {
		fmt.Fprintln(tw, "[Structure]")
		fmt.Fprintln(tw, "TYPE\tNAME\tLOC\tCOMPLEXITY\tISSUES")
		for _, s := range m.Symbols {
			cx := "-"
			if s.BranchingComplexity != nil {
				cx = fmt.Sprint(*s.BranchingComplexity)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Kind, s.Name, s.LOC, cx, strings.Join(issues(s.Metrics), ", "))
		}
		fmt.Fprintln(tw)
	}

	if len(m.Outgoing) > 0 {
		fmt.Fprintln(tw, "[Outgoing]")
		fmt.Fprintln(tw, "TARGET\tRELATION\tSTRENGTH")
		for _, e := range m.Outgoing {
			if e.Target != nil {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\n", *e.Target, e.Relation, e.Strength)
			}
		}
		fmt.Fprintln(tw)
	}

	if len(m.Incoming) > 0 {
		fmt.Fprintln(tw, "[Incoming]")
		fmt.Fprintln(tw, "SOURCE\tRELATION\tSTRENGTH")
		for _, e := range m.Incoming {
			if e.Source != nil {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\n", *e.Source, e.Relation, e.Strength)
			}
		}
		fmt.Fprintln(tw)
	}

	if len(m.Suggestions) > 0 {
		fmt.Fprintln(tw, "[Suggestions]")
		for _, s := range m.Suggestions {
			fmt.Fprintf(tw, "  - %s\n", s)
		}
		fmt.Fprintln(tw)
	}
}

// WriteReportTable writes one row per module followed by the summary.
func WriteReportTable(w io.Writer, r *analysis.Report) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "FILE\tLANGUAGE\tLOC\tSYMBOLS\tFAN-OUT\tFAN-IN\tISSUES")
	for _, m := range r.Modules {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			m.Path, language(m), m.LOC, len(m.Symbols), len(m.Outgoing), len(m.Incoming), breaches(m.Findings()))
	}
	fmt.Fprintln(tw)

	s := r.Summary
	fmt.Fprintf(tw, "Files:\t%d (%d failed)\n", s.Files, s.Failures)
	fmt.Fprintf(tw, "Lines:\t%d code, %d comment, %d blank\n", s.LOC, s.CommentLines, s.BlankLines)
	fmt.Fprintf(tw, "Symbols:\t%d (%d functions, avg complexity %.2f)\n", s.Symbols, s.Functions, s.AvgComplexity)
	fmt.Fprintf(tw, "Findings:\t%d error, %d warning, %d info\n", s.Findings.Error, s.Findings.Warning, s.Findings.Info)
	if len(r.Cycles) > 0 {
		fmt.Fprintf(tw, "Cycles:\t%d\n", len(r.Cycles))
	}
	for _, e := range r.Errors {
		fmt.Fprintf(tw, "error:\t%s: %s\n", e.Path, e.Message)
	}
	return tw.Flush()
}
