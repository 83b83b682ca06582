package graph

import (
	"context"
	"fmt"
	"io"

	"github.com/dusk-indust/codescope/internal/ir"
)

// Store persists a snapshot of an analyzed tree.
// Implementations: KuzuStore (cgo builds), MemStore.
type Store interface {
	io.Closer

	// InitSchema is called once before any data is inserted.
	InitSchema(ctx context.Context) error

	AddModule(ctx context.Context, rec ModuleRecord) error
	AddSymbol(ctx context.Context, rec SymbolRecord) error
	AddImport(ctx context.Context, rec ImportRecord) error
	AddCluster(ctx context.Context, c Cluster) error

	Module(ctx context.Context, path string) (*ModuleRecord, error)
	QuerySymbols(ctx context.Context, query string, limit int) ([]SymbolRecord, error)
	Imports(ctx context.Context) ([]ImportRecord, error)
	Clusters(ctx context.Context) ([]Cluster, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Save writes modules, their symbols, the resolved imports of g and its
// clusters into s. The schema must already exist.
func Save(ctx context.Context, s Store, g *DependencyGraph, modules []*ir.Module) error {
	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.AddModule(ctx, moduleRecord(m)); err != nil {
			return fmt.Errorf("save module %s: %w", m.Path, err)
		}
		for _, sym := range m.Symbols {
			if err := s.AddSymbol(ctx, symbolRecord(m.Path, sym)); err != nil {
				return fmt.Errorf("save symbol %s in %s: %w", sym.Name, m.Path, err)
			}
		}
	}

	for _, p := range g.Modules() {
		for _, e := range g.Outgoing(p) {
			rec := ImportRecord{Source: p, Target: *e.Target, Relation: string(e.Relation)}
			if err := s.AddImport(ctx, rec); err != nil {
				return fmt.Errorf("save import %s -> %s: %w", rec.Source, rec.Target, err)
			}
		}
	}

	for _, c := range g.Clusters() {
		if err := s.AddCluster(ctx, c); err != nil {
			return fmt.Errorf("save cluster %s: %w", c.Name, err)
		}
	}
	return nil
}

func moduleRecord(m *ir.Module) ModuleRecord {
	rec := ModuleRecord{Path: m.Path, LOC: m.LOC}
	for _, f := range m.Findings() {
		if f.Severity.Breach() {
			rec.Findings++
		}
	}
	if m.Language != nil {
		rec.Language = *m.Language
	}
	if m.CompositeScore != nil {
		rec.CompositeScore = *m.CompositeScore
	}
	return rec
}

func symbolRecord(module string, s ir.Symbol) SymbolRecord {
	rec := SymbolRecord{
		Module:    module,
		Name:      s.Name,
		Kind:      string(s.Kind),
		LOC:       s.LOC,
		StartLine: s.StartLine,
	}
	if s.BranchingComplexity != nil {
		rec.Complexity = *s.BranchingComplexity
	}
	return rec
}

// symbolID identifies a symbol within a snapshot. Start lines keep
// same-named declarations in one module apart.
func symbolID(rec SymbolRecord) string {
	return fmt.Sprintf("%s:%s:%d", rec.Module, rec.Name, rec.StartLine)
}
