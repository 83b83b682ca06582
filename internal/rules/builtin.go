package rules

import (
	"fmt"

	"github.com/dusk-indust/codescope/internal/ir"
)

// Default thresholds of the built-in rules.
const (
	DefaultMaxFileLOC          = 300
	DefaultMaxFunctionLOC      = 40
	DefaultMaxComplexity       = 10
	DefaultMaxFunctionsPerFile = 20
	DefaultMaxTypesPerFile     = 30
	DefaultMaxFanOut           = 7
	DefaultMaxImports          = 15
)

// Defaults returns a registry of every built-in rule with default thresholds
// and Warning severity.
func Defaults() *Registry {
	return NewRegistry(
		&FileSizeRule{MaxLOC: DefaultMaxFileLOC, Severity: ir.SeverityWarning},
		&FunctionSizeRule{MaxLOC: DefaultMaxFunctionLOC, Severity: ir.SeverityWarning},
		&ComplexityRule{Max: DefaultMaxComplexity, Severity: ir.SeverityWarning},
		&CouplingRule{MaxFanOut: DefaultMaxFanOut, MaxImports: DefaultMaxImports, Severity: ir.SeverityWarning},
		&StructureStatsRule{MaxFunctions: DefaultMaxFunctionsPerFile, MaxTypes: DefaultMaxTypesPerFile, Severity: ir.SeverityWarning},
	)
}

// ---------- File size ----------

// FileSizeRule reports the code line count of a module and flags modules
// longer than MaxLOC.
type FileSizeRule struct {
	MaxLOC   int
	Severity ir.Severity
}

func (r *FileSizeRule) Name() string { return "file_size" }

func (r *FileSizeRule) CheckModule(m *ir.Module) []ir.QualityMetric {
	out := []ir.QualityMetric{{
		Name:      "file_loc",
		Value:     float64(m.LOC),
		Threshold: ir.Ptr(float64(r.MaxLOC)),
		Severity:  ir.SeverityInfo,
	}}
	if m.LOC > r.MaxLOC {
		out = append(out, ir.QualityMetric{
			Name:      "file_size",
			Value:     float64(m.LOC),
			Threshold: ir.Ptr(float64(r.MaxLOC)),
			Severity:  r.Severity,
			Message:   ir.Ptr(fmt.Sprintf("File has %d lines, exceeds threshold of %d", m.LOC, r.MaxLOC)),
		})
	}
	return out
}

func (r *FileSizeRule) CheckSymbol(*ir.Symbol) []ir.QualityMetric { return nil }

// ---------- Function size ----------

// FunctionSizeRule flags functions longer than MaxLOC lines.
type FunctionSizeRule struct {
	MaxLOC   int
	Severity ir.Severity
}

func (r *FunctionSizeRule) Name() string { return "function_size" }

func (r *FunctionSizeRule) CheckModule(m *ir.Module) []ir.QualityMetric {
	var offenders []offender
	for _, s := range m.Symbols {
		if s.Kind == ir.SymbolKindFunction && s.LOC > r.MaxLOC {
			offenders = append(offenders, offender{name: s.Name, value: s.LOC})
		}
	}
	return aggregate("large_function_count", offenders, fmt.Sprintf("%d lines", r.MaxLOC), "%s (%d LOC)", r.Severity)
}

func (r *FunctionSizeRule) CheckSymbol(s *ir.Symbol) []ir.QualityMetric {
	if s.Kind != ir.SymbolKindFunction {
		return nil
	}
	return []ir.QualityMetric{measure("function_size", float64(s.LOC), float64(r.MaxLOC), r.Severity, func() string {
		return fmt.Sprintf("Function has %d lines, exceeds threshold of %d", s.LOC, r.MaxLOC)
	})}
}

// ---------- Complexity ----------

// ComplexityRule flags functions whose branching complexity exceeds Max.
type ComplexityRule struct {
	Max      int
	Severity ir.Severity
}

func (r *ComplexityRule) Name() string { return "complexity" }

func (r *ComplexityRule) CheckModule(m *ir.Module) []ir.QualityMetric {
	var offenders []offender
	for _, s := range m.Symbols {
		if s.Kind == ir.SymbolKindFunction && s.BranchingComplexity != nil && *s.BranchingComplexity > r.Max {
			offenders = append(offenders, offender{name: s.Name, value: *s.BranchingComplexity})
		}
	}
	return aggregate("high_complexity_count", offenders, fmt.Sprintf("complexity threshold of %d", r.Max), "%s (complexity: %d)", r.Severity)
}

func (r *ComplexityRule) CheckSymbol(s *ir.Symbol) []ir.QualityMetric {
	if s.Kind != ir.SymbolKindFunction || s.BranchingComplexity == nil {
		return nil
	}
	c := *s.BranchingComplexity
	return []ir.QualityMetric{measure("cyclomatic_complexity", float64(c), float64(r.Max), r.Severity, func() string {
		return fmt.Sprintf("Cyclomatic complexity %d exceeds threshold of %d", c, r.Max)
	})}
}

// ---------- Coupling ----------

// CouplingRule reports fan-out, fan-in and import counts. Fan-in is
// informational only.
type CouplingRule struct {
	MaxFanOut  int
	MaxImports int
	Severity   ir.Severity
}

func (r *CouplingRule) Name() string { return "coupling" }

func (r *CouplingRule) CheckModule(m *ir.Module) []ir.QualityMetric {
	fanOut := len(m.Outgoing)
	imports := len(m.Outgoing)

	return []ir.QualityMetric{
		measure("fan_out", float64(fanOut), float64(r.MaxFanOut), r.Severity, func() string {
			return fmt.Sprintf("Module has %d dependencies, exceeds threshold of %d", fanOut, r.MaxFanOut)
		}),
		info("fan_in", float64(len(m.Incoming))),
		measure("import_count", float64(imports), float64(r.MaxImports), r.Severity, func() string {
			return fmt.Sprintf("Module has %d imports, exceeds threshold of %d", imports, r.MaxImports)
		}),
	}
}

func (r *CouplingRule) CheckSymbol(*ir.Symbol) []ir.QualityMetric { return nil }

// ---------- Structure stats ----------

// StructureStatsRule counts symbols by kind and flags modules declaring too
// many functions or type definitions.
type StructureStatsRule struct {
	MaxFunctions int
	MaxTypes     int
	Severity     ir.Severity

	// TypesSeverity applies to type definition breaches. Severity is used
	// when it is empty.
	TypesSeverity ir.Severity
}

func (r *StructureStatsRule) Name() string { return "structure_stats" }

func (r *StructureStatsRule) CheckModule(m *ir.Module) []ir.QualityMetric {
	functions := m.CountKind(ir.SymbolKindFunction)
	interfaces := m.CountKind(ir.SymbolKindInterface)
	typeDefs := interfaces + m.CountKind(ir.SymbolKindType) + m.CountKind(ir.SymbolKindEnum)
	typesSev := r.TypesSeverity
	if typesSev == "" {
		typesSev = r.Severity
	}

	out := []ir.QualityMetric{
		measure("function_count", float64(functions), float64(r.MaxFunctions), r.Severity, func() string {
			return fmt.Sprintf("File has %d functions, exceeds threshold of %d", functions, r.MaxFunctions)
		}),
		info("class_count", float64(m.CountKind(ir.SymbolKindClass))),
		info("interface_count", float64(interfaces)),
		measure("type_definition_count", float64(typeDefs), float64(r.MaxTypes), typesSev, func() string {
			return fmt.Sprintf("File has %d type definitions, exceeds threshold of %d", typeDefs, r.MaxTypes)
		}),
	}
	if m.CommentLines > 0 {
		out = append(out, info("comment_lines", float64(m.CommentLines)))
	}
	if m.BlankLines > 0 {
		out = append(out, info("blank_lines", float64(m.BlankLines)))
	}
	return out
}

func (r *StructureStatsRule) CheckSymbol(*ir.Symbol) []ir.QualityMetric { return nil }
