package mcptools

import (
	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/graph"
	"github.com/dusk-indust/codescope/internal/ir"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK generates each tool's JSON schema from these structs.

// AnalyzeFileInput is the input for the analyze_file MCP tool.
type AnalyzeFileInput struct {
	Path string `json:"path" jsonschema:"path of the source file to analyze"`
}

// AnalyzeFileOutput is the result of the analyze_file MCP tool.
type AnalyzeFileOutput struct {
	Module *ir.Module `json:"module"`
}

// AnalyzeDirectoryInput is the input for the analyze_directory MCP tool.
type AnalyzeDirectoryInput struct {
	Path           string `json:"path" jsonschema:"directory to analyze recursively"`
	IncludeModules bool   `json:"includeModules,omitempty" jsonschema:"include the full IR of every module (default: summary only)"`
}

// AnalyzeDirectoryOutput is the result of the analyze_directory MCP tool.
type AnalyzeDirectoryOutput struct {
	ID          string               `json:"id"`
	Root        string               `json:"root"`
	GeneratedAt string               `json:"generatedAt"`
	Summary     analysis.Summary     `json:"summary"`
	Cycles      [][]string           `json:"cycles"`
	Clusters    []graph.Cluster      `json:"clusters"`
	Errors      []analysis.FileError `json:"errors"`
	Modules     []*ir.Module         `json:"modules,omitempty"`
}

// GetCouplingInput is the input for the get_coupling MCP tool.
type GetCouplingInput struct {
	Path string `json:"path" jsonschema:"module path relative to the last analyzed directory, or an absolute path inside it"`
}

// GetCouplingOutput is the result of the get_coupling MCP tool.
type GetCouplingOutput struct {
	Path     string   `json:"path"`
	FanIn    int      `json:"fanIn"`
	FanOut   int      `json:"fanOut"`
	Incoming []string `json:"incoming"`
	Outgoing []string `json:"outgoing"`
}

// QuerySymbolsInput is the input for the query_symbols MCP tool.
type QuerySymbolsInput struct {
	Query string `json:"query" jsonschema:"search query for symbol names (case-insensitive substring match)"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by symbol kind: class, function, const, variable, interface, type, enum"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QuerySymbolsOutput is the result of the query_symbols MCP tool.
type QuerySymbolsOutput struct {
	Symbols []graph.SymbolRecord `json:"symbols"`
	Total   int                  `json:"total"`
}

// AssessImpactInput is the input for the assess_impact MCP tool.
type AssessImpactInput struct {
	ChangedFiles []string `json:"changedFiles" jsonschema:"module paths that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact MCP tool.
type AssessImpactOutput struct {
	Impact graph.Impact `json:"impact"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct{}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []graph.Cluster `json:"clusters"`
}
