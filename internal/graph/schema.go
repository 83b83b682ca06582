package graph

// ModuleRecord is the persisted form of a module.
type ModuleRecord struct {
	Path           string  `json:"path"`
	Language       string  `json:"language"`
	LOC            int     `json:"loc"`
	CompositeScore float64 `json:"composite_score"`
	Findings       int     `json:"findings"`
}

// SymbolRecord is the persisted form of a symbol.
type SymbolRecord struct {
	Module     string `json:"module"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	LOC        int    `json:"loc"`
	StartLine  int    `json:"start_line"`
	Complexity int    `json:"complexity"` // 0 when not a function
}

// ImportRecord is one resolved import between persisted modules.
type ImportRecord struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Cluster is a group of modules connected by imports.
type Cluster struct {
	Name     string   `json:"name" yaml:"name"`
	Cohesion float64  `json:"cohesion" yaml:"cohesion"`
	Members  []string `json:"members" yaml:"members"`
}

// Stats summarizes a persisted snapshot.
type Stats struct {
	Modules  int `json:"modules"`
	Symbols  int `json:"symbols"`
	Imports  int `json:"imports"`
	Clusters int `json:"clusters"`
}

// Impact is the set of modules affected by a change to some modules.
type Impact struct {
	Direct     []string `json:"direct"`
	Transitive []string `json:"transitive"`
	Risk       float64  `json:"risk"` // transitive / total modules
}
