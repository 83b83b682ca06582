package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/ir"
)

// ModuleMarkdown renders one module as a Markdown document.
func ModuleMarkdown(m *ir.Module) string {
	var sb strings.Builder
	writeModuleMarkdown(&sb, m, 1)
	return sb.String()
}

// ReportMarkdown renders a report: the summary, cycles, clusters, then one
// section per module.
func ReportMarkdown(r *analysis.Report) string {
	var sb strings.Builder
	s := r.Summary

	fmt.Fprintf(&sb, "# codescope report: %s\n\n", r.Root)
	fmt.Fprintf(&sb, "**Files:** %d | **Failures:** %d | **LOC:** %d | **Comment:** %d | **Blank:** %d\n\n",
		s.Files, s.Failures, s.LOC, s.CommentLines, s.BlankLines)
	fmt.Fprintf(&sb, "**Symbols:** %d | **Functions:** %d | **Avg complexity:** %.2f\n\n",
		s.Symbols, s.Functions, s.AvgComplexity)
	fmt.Fprintf(&sb, "**Findings:** %d error, %d warning, %d info\n\n",
		s.Findings.Error, s.Findings.Warning, s.Findings.Info)

	if len(s.TopFiles) > 0 {
		sb.WriteString("## Largest Files\n\n")
		sb.WriteString("| File | LOC |\n")
		sb.WriteString("|------|-----|\n")
		for _, f := range s.TopFiles {
			fmt.Fprintf(&sb, "| %s | %d |\n", f.Path, f.LOC)
		}
		sb.WriteString("\n")
	}

	if len(r.Cycles) > 0 {
		sb.WriteString("## Import Cycles\n\n")
		for _, c := range r.Cycles {
			fmt.Fprintf(&sb, "- %s\n", strings.Join(c, " → "))
		}
		sb.WriteString("\n")
	}

	if len(r.Clusters) > 0 {
		sb.WriteString("## Clusters\n\n")
		sb.WriteString("| Cluster | Members | Cohesion |\n")
		sb.WriteString("|---------|---------|----------|\n")
		for _, c := range r.Clusters {
			fmt.Fprintf(&sb, "| %s | %d | %.2f |\n", clusterLabel(c.Name), len(c.Members), c.Cohesion)
		}
		sb.WriteString("\n")
	}

	if len(r.Errors) > 0 {
		sb.WriteString("## Errors\n\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&sb, "- `%s`: %s\n", e.Path, e.Message)
		}
		sb.WriteString("\n")
	}

	for _, m := range r.Modules {
		writeModuleMarkdown(&sb, m, 2)
	}
	return sb.String()
}

func writeModuleMarkdown(sb *strings.Builder, m *ir.Module, level int) {
	h := strings.Repeat("#", level)
	sub := h + "#"

	fmt.Fprintf(sb, "%s %s\n\n", h, m.Path)
	fmt.Fprintf(sb, "**Language:** %s | **LOC:** %d | **Comment:** %d | **Blank:** %d\n\n",
		language(m), m.LOC, m.CommentLines, m.BlankLines)

	if len(m.Metrics) > 0 {
		fmt.Fprintf(sb, "%s Quality Metrics\n\n", sub)
		sb.WriteString("| Category | Metric | Value | Threshold | Status |\n")
		sb.WriteString("|----------|--------|-------|-----------|--------|\n")
		for _, q := range m.Metrics {
			fmt.Fprintf(sb, "| %s | %s | %.0f | %s | %s |\n",
				metricCategory(q.Name), q.Name, q.Value, thresholdText(q.Threshold), statusIcon(q.Severity))
		}
		sb.WriteString("\n")
	}

	if len(m.Symbols) > 0 {
		fmt.Fprintf(sb, "%s Structure\n\n", sub)
		sb.WriteString("| Type | Name | LOC | Complexity | Issues |\n")
		sb.WriteString("|------|------|-----|------------|--------|\n")
		for _, s := range m.Symbols {
			cx := "-"
			if s.BranchingComplexity != nil {
				cx = fmt.Sprint(*s.BranchingComplexity)
			}
			iss := "-"
			if names := issues(s.Metrics); len(names) > 0 {
				iss = strings.Join(names, ", ")
			}
			fmt.Fprintf(sb, "| %s | %s | %d | %s | %s |\n", s.Kind, s.Name, s.LOC, cx, iss)
		}
		sb.WriteString("\n")
	}

	if len(m.Outgoing) > 0 || len(m.Incoming) > 0 {
		fmt.Fprintf(sb, "%s Dependencies\n\n", sub)
		sb.WriteString("| Direction | Module | Relation | Strength |\n")
		sb.WriteString("|-----------|--------|----------|----------|\n")
		for _, e := range m.Outgoing {
			if e.Target != nil {
				fmt.Fprintf(sb, "| out | %s | %s | %.2f |\n", *e.Target, e.Relation, e.Strength)
			}
		}
		for _, e := range m.Incoming {
			if e.Source != nil {
				fmt.Fprintf(sb, "| in | %s | %s | %.2f |\n", *e.Source, e.Relation, e.Strength)
			}
		}
		sb.WriteString("\n")
	}

	if len(m.Suggestions) > 0 {
		fmt.Fprintf(sb, "%s Suggestions\n\n", sub)
		for _, s := range m.Suggestions {
			fmt.Fprintf(sb, "- %s\n", s)
		}
		sb.WriteString("\n")
	}
}

func clusterLabel(name string) string {
	if name == "" {
		return "(root)"
	}
	return name
}
