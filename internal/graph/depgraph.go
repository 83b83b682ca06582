// Package graph holds the module dependency graph: construction from Module
// IR, import resolution, fan-in/fan-out queries, cycles and clusters, plus
// optional snapshot persistence.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dominikbraun/graph"

	"github.com/dusk-indust/codescope/internal/ir"
)

// DependencyGraph is a directed graph of modules keyed by path. Each library
// edge carries the list of ir.DepEdge values between one ordered pair, so
// parallel imports are preserved.
type DependencyGraph struct {
	mu sync.RWMutex
	g  graph.Graph[string, string]
}

// New returns an empty DependencyGraph.
func New() *DependencyGraph {
	return &DependencyGraph{g: graph.New(graph.StringHash, graph.Directed())}
}

// AddModule registers path as a node. Adding a known path is a no-op.
func (d *DependencyGraph) AddModule(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.g.AddVertex(path) // ErrVertexAlreadyExists is the only failure
}

// HasModule reports whether path is a node.
func (d *DependencyGraph) HasModule(path string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, err := d.g.Vertex(path)
	return err == nil
}

// AddEdge records edge from src to tgt. The edge is dropped, and false
// returned, when either endpoint is not a node.
func (d *DependencyGraph) AddEdge(src, tgt string, edge ir.DepEdge) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.g.Vertex(src); err != nil {
		return false
	}
	if _, err := d.g.Vertex(tgt); err != nil {
		return false
	}

	existing, err := d.g.Edge(src, tgt)
	if errors.Is(err, graph.ErrEdgeNotFound) {
		return d.g.AddEdge(src, tgt, graph.EdgeData([]ir.DepEdge{edge.Clone()})) == nil
	}
	if err != nil {
		return false
	}
	payload := append(edgesOf(existing), edge.Clone())
	return d.g.UpdateEdge(src, tgt, graph.EdgeData(payload)) == nil
}

// edgesOf returns the ir.DepEdge payload of a library edge.
func edgesOf(e graph.Edge[string]) []ir.DepEdge {
	payload, _ := e.Properties.Data.([]ir.DepEdge)
	return payload
}

// Len returns the number of modules.
func (d *DependencyGraph) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, _ := d.g.Order()
	return n
}

// Modules returns every node path, sorted.
func (d *DependencyGraph) Modules() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	adj, _ := d.g.AdjacencyMap()
	out := make([]string, 0, len(adj))
	for p := range adj {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// FanOut returns the number of edges leaving path, counting parallel edges.
func (d *DependencyGraph) FanOut(path string) int {
	return len(d.Outgoing(path))
}

// FanIn returns the number of edges entering path, counting parallel edges.
func (d *DependencyGraph) FanIn(path string) int {
	return len(d.Incoming(path))
}

// Outgoing returns the edges leaving path ordered by target. Unknown paths
// yield an empty slice.
func (d *DependencyGraph) Outgoing(path string) []ir.DepEdge {
	d.mu.RLock()
	defer d.mu.RUnlock()
	adj, err := d.g.AdjacencyMap()
	if err != nil {
		return []ir.DepEdge{}
	}
	return collect(adj[path])
}

// Incoming returns the edges entering path ordered by source. Unknown paths
// yield an empty slice.
func (d *DependencyGraph) Incoming(path string) []ir.DepEdge {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pred, err := d.g.PredecessorMap()
	if err != nil {
		return []ir.DepEdge{}
	}
	return collect(pred[path])
}

func collect(neighbors map[string]graph.Edge[string]) []ir.DepEdge {
	keys := make([]string, 0, len(neighbors))
	for k := range neighbors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []ir.DepEdge{}
	for _, k := range keys {
		for _, e := range edgesOf(neighbors[k]) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Link is one ordered pair of modules with the number of edges between them.
type Link struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Count  int    `json:"count" yaml:"count"`
}

// Links returns every connected pair ordered by source then target.
func (d *DependencyGraph) Links() []Link {
	d.mu.RLock()
	defer d.mu.RUnlock()
	adj, err := d.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	var out []Link
	for src, targets := range adj {
		for tgt, e := range targets {
			out = append(out, Link{Source: src, Target: tgt, Count: len(edgesOf(e))})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Cycles returns the import cycles: strongly connected components with more
// than one module plus self-imports. Members and cycles are sorted.
func (d *DependencyGraph) Cycles() [][]string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sccs, err := graph.StronglyConnectedComponents(d.g)
	if err != nil {
		return nil
	}
	adj, _ := d.g.AdjacencyMap()

	var out [][]string
	for _, scc := range sccs {
		if len(scc) == 1 {
			if _, self := adj[scc[0]][scc[0]]; !self {
				continue
			}
		}
		members := append([]string(nil), scc...)
		sort.Strings(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// ErrCyclic is returned by TopologicalOrder when the graph has a cycle.
var ErrCyclic = errors.New("dependency graph has cycles")

// TopologicalOrder lists modules so that every module precedes the modules
// it imports. Ties break lexically.
func (d *DependencyGraph) TopologicalOrder() ([]string, error) {
	if cycles := d.Cycles(); len(cycles) > 0 {
		return nil, fmt.Errorf("topological order: %w (%d)", ErrCyclic, len(cycles))
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	order, err := graph.StableTopologicalSort(d.g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("topological order: %w", err)
	}
	return order, nil
}

// Index builds the graph from modules. Every module becomes a node; each
// outgoing import is resolved against the module set and, when resolved,
// added as an edge. Modules are updated in place: outgoing edges gain their
// source path (the target keeps the raw specifier) and Incoming is replaced
// with the resolved edges that point at the module.
func Index(root string, modules []*ir.Module) *DependencyGraph {
	d := New()
	paths := make([]string, 0, len(modules))
	for _, m := range modules {
		d.AddModule(m.Path)
		paths = append(paths, m.Path)
	}

	r := NewResolver(root, paths)
	for _, m := range modules {
		lang := ""
		if m.Language != nil {
			lang = *m.Language
		}
		for i := range m.Outgoing {
			out := &m.Outgoing[i]
			out.Source = ir.Ptr(m.Path)
			if out.Target == nil {
				continue
			}
			target, ok := r.Resolve(lang, m.Path, *out.Target)
			if !ok {
				continue
			}
			resolved := out.Clone()
			resolved.Target = ir.Ptr(target)
			d.AddEdge(m.Path, target, resolved)
		}
	}

	for _, m := range modules {
		m.Incoming = d.Incoming(m.Path)
	}
	return d
}
