// Package ir defines the normalized intermediate representation produced for
// every analyzed source file: symbols, dependency edges and quality findings.
package ir

// --- Enums ---

// SymbolKind classifies a declared code entity.
type SymbolKind string

const (
	SymbolKindClass     SymbolKind = "class"
	SymbolKindFunction  SymbolKind = "function"
	SymbolKindConst     SymbolKind = "const"
	SymbolKindVariable  SymbolKind = "variable"
	SymbolKindInterface SymbolKind = "interface"
	SymbolKindType      SymbolKind = "type"
	SymbolKindEnum      SymbolKind = "enum"
)

// SymbolKinds lists every symbol kind in declaration order.
var SymbolKinds = []SymbolKind{
	SymbolKindClass,
	SymbolKindFunction,
	SymbolKindConst,
	SymbolKindVariable,
	SymbolKindInterface,
	SymbolKindType,
	SymbolKindEnum,
}

// Valid reports whether k is one of the known symbol kinds.
func (k SymbolKind) Valid() bool {
	for _, known := range SymbolKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Relation classifies a dependency edge.
type Relation string

const (
	RelationImport    Relation = "import"
	RelationUse       Relation = "use"
	RelationInherit   Relation = "inherit"
	RelationAggregate Relation = "aggregate"
	RelationCompose   Relation = "compose"
)

// Valid reports whether r is one of the known relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationImport, RelationUse, RelationInherit, RelationAggregate, RelationCompose:
		return true
	}
	return false
}

// Severity is the level attached to a quality finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rank orders severities so that Info < Warning < Error.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Breach reports whether s marks a threshold breach.
func (s Severity) Breach() bool {
	return s.Rank() > 0
}

// ImportStrength is the heuristic weight given to a static import edge.
const ImportStrength = 0.7

// --- Models ---

// QualityMetric is a single finding emitted by a rule.
type QualityMetric struct {
	Name      string   `json:"name" yaml:"name"`
	Value     float64  `json:"value" yaml:"value"`
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Message   *string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// Symbol is a declared code entity within a module.
type Symbol struct {
	Kind      SymbolKind `json:"kind" yaml:"kind"`
	Name      string     `json:"name" yaml:"name"`
	LOC       int        `json:"loc" yaml:"loc"`
	StartLine int        `json:"start_line,omitempty" yaml:"start_line,omitempty"`

	// BranchingComplexity is set for functions only.
	BranchingComplexity *int     `json:"branching_complexity,omitempty" yaml:"branching_complexity,omitempty"`
	SizeScore           *float64 `json:"size_score,omitempty" yaml:"size_score,omitempty"`

	Metrics []QualityMetric `json:"metrics" yaml:"metrics"`
}

// DepEdge is a directed dependency between two modules. Either endpoint may be
// unknown when the edge was recorded from raw import text.
type DepEdge struct {
	Source   *string  `json:"source,omitempty" yaml:"source,omitempty"`
	Target   *string  `json:"target,omitempty" yaml:"target,omitempty"`
	Relation Relation `json:"relation" yaml:"relation"`
	Strength float64  `json:"strength" yaml:"strength"`
	Files    *int     `json:"files,omitempty" yaml:"files,omitempty"`
}

// Module is the IR of one analyzed file. LOC, CommentLines and BlankLines
// partition the physical lines of the file.
type Module struct {
	Path         string  `json:"path" yaml:"path"`
	Language     *string `json:"language,omitempty" yaml:"language,omitempty"`
	LOC          int     `json:"loc" yaml:"loc"`
	CommentLines int     `json:"comment_lines" yaml:"comment_lines"`
	BlankLines   int     `json:"blank_lines" yaml:"blank_lines"`

	Symbols  []Symbol        `json:"symbols" yaml:"symbols"`
	Metrics  []QualityMetric `json:"metrics" yaml:"metrics"`
	Outgoing []DepEdge       `json:"outgoing" yaml:"outgoing"`
	Incoming []DepEdge       `json:"incoming" yaml:"incoming"`

	CompositeScore *float64 `json:"composite_score,omitempty" yaml:"composite_score,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// NewModule returns a Module for path with every collection initialized.
func NewModule(path string) *Module {
	return &Module{
		Path:     path,
		Symbols:  []Symbol{},
		Metrics:  []QualityMetric{},
		Outgoing: []DepEdge{},
		Incoming: []DepEdge{},
	}
}

// NewImportEdge returns the edge recorded for a raw import of target.
func NewImportEdge(target string) DepEdge {
	return DepEdge{
		Target:   Ptr(target),
		Relation: RelationImport,
		Strength: ImportStrength,
	}
}

// TotalLines returns the physical line count of the module.
func (m *Module) TotalLines() int {
	return m.LOC + m.CommentLines + m.BlankLines
}

// CountKind returns how many symbols of kind k the module declares.
func (m *Module) CountKind(k SymbolKind) int {
	n := 0
	for _, s := range m.Symbols {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// Findings returns every module-level and symbol-level finding.
func (m *Module) Findings() []QualityMetric {
	out := make([]QualityMetric, 0, len(m.Metrics))
	out = append(out, m.Metrics...)
	for _, s := range m.Symbols {
		out = append(out, s.Metrics...)
	}
	return out
}

// Normalize replaces nil collections with empty ones so that serialized
// output never carries null arrays.
func (m *Module) Normalize() {
	if m.Symbols == nil {
		m.Symbols = []Symbol{}
	}
	if m.Metrics == nil {
		m.Metrics = []QualityMetric{}
	}
	if m.Outgoing == nil {
		m.Outgoing = []DepEdge{}
	}
	if m.Incoming == nil {
		m.Incoming = []DepEdge{}
	}
	for i := range m.Symbols {
		if m.Symbols[i].Metrics == nil {
			m.Symbols[i].Metrics = []QualityMetric{}
		}
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
