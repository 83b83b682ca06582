package analysis

import (
	"sort"
	"time"

	"github.com/dusk-indust/codescope/internal/graph"
	"github.com/dusk-indust/codescope/internal/ir"
)

// TopFilesLimit bounds Summary.TopFiles.
const TopFilesLimit = 10

// Report is the result of analyzing a set of files.
type Report struct {
	ID          string          `json:"id" yaml:"id"`
	Root        string          `json:"root" yaml:"root"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Modules     []*ir.Module    `json:"modules" yaml:"modules"`
	Summary     Summary         `json:"summary" yaml:"summary"`
	Cycles      [][]string      `json:"cycles" yaml:"cycles"`
	Clusters    []graph.Cluster `json:"clusters" yaml:"clusters"`
	Errors      []FileError     `json:"errors" yaml:"errors"`
	Skipped     []FileError     `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Graph holds the resolved dependency graph of Modules.
	Graph *graph.DependencyGraph `json:"-" yaml:"-"`
}

// FileError records a file left out of the report.
type FileError struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

// Module returns the analyzed module at path, or nil.
func (r *Report) Module(path string) *ir.Module {
	for _, m := range r.Modules {
		if m.Path == path {
			return m
		}
	}
	return nil
}

// Summary aggregates a report's modules.
type Summary struct {
	Files         int           `json:"files" yaml:"files"`
	Failures      int           `json:"failures" yaml:"failures"`
	LOC           int           `json:"loc" yaml:"loc"`
	CommentLines  int           `json:"comment_lines" yaml:"comment_lines"`
	BlankLines    int           `json:"blank_lines" yaml:"blank_lines"`
	Symbols       int           `json:"symbols" yaml:"symbols"`
	Functions     int           `json:"functions" yaml:"functions"`
	Findings      FindingCounts `json:"findings" yaml:"findings"`
	AvgComplexity float64       `json:"avg_complexity" yaml:"avg_complexity"`
	TopFiles      []FileSize    `json:"top_files" yaml:"top_files"`
}

// FindingCounts counts findings by severity.
type FindingCounts struct {
	Info    int `json:"info" yaml:"info"`
	Warning int `json:"warning" yaml:"warning"`
	Error   int `json:"error" yaml:"error"`
}

// Breaches returns the number of warning and error findings.
func (c FindingCounts) Breaches() int {
	return c.Warning + c.Error
}

func (c *FindingCounts) add(s ir.Severity) {
	switch s {
	case ir.SeverityError:
		c.Error++
	case ir.SeverityWarning:
		c.Warning++
	default:
		c.Info++
	}
}

// FileSize pairs a module path with its code line count.
type FileSize struct {
	Path string `json:"path" yaml:"path"`
	LOC  int    `json:"loc" yaml:"loc"`
}

// Summarize aggregates modules. AvgComplexity is the mean branching
// complexity over functions, 0 when there are none.
func Summarize(modules []*ir.Module, failures int) Summary {
	s := Summary{Files: len(modules), Failures: failures, TopFiles: []FileSize{}}

	complexity, scored := 0, 0
	for _, m := range modules {
		s.LOC += m.LOC
		s.CommentLines += m.CommentLines
		s.BlankLines += m.BlankLines
		s.Symbols += len(m.Symbols)
		for _, sym := range m.Symbols {
			if sym.Kind == ir.SymbolKindFunction {
				s.Functions++
			}
			if sym.BranchingComplexity != nil {
				complexity += *sym.BranchingComplexity
				scored++
			}
		}
		for _, f := range m.Findings() {
			s.Findings.add(f.Severity)
		}
		s.TopFiles = append(s.TopFiles, FileSize{Path: m.Path, LOC: m.LOC})
	}
	if scored > 0 {
		s.AvgComplexity = float64(complexity) / float64(scored)
	}

	sort.Slice(s.TopFiles, func(i, j int) bool {
		a, b := s.TopFiles[i], s.TopFiles[j]
		if a.LOC != b.LOC {
			return a.LOC > b.LOC
		}
		return a.Path < b.Path
	})
	if len(s.TopFiles) > TopFilesLimit {
		s.TopFiles = s.TopFiles[:TopFilesLimit]
	}
	return s
}
