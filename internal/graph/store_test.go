package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codescope/internal/ir"
)

// snapshotModules returns three modules where a imports b twice and b
// imports c.
func snapshotModules() []*ir.Module {
	a := ir.NewModule("src/a.ts")
	a.Language = ir.Ptr("typescript")
	a.LOC = 12
	a.CompositeScore = ir.Ptr(0.25)
	a.Symbols = append(a.Symbols,
		ir.Symbol{Kind: ir.SymbolKindFunction, Name: "run", LOC: 5, StartLine: 3, BranchingComplexity: ir.Ptr(2)},
		ir.Symbol{Kind: ir.SymbolKindClass, Name: "Runner", LOC: 4, StartLine: 9},
	)
	a.Metrics = append(a.Metrics, ir.QualityMetric{Name: "file_size", Value: 12, Severity: ir.SeverityWarning})
	a.Outgoing = append(a.Outgoing, ir.NewImportEdge("./b"), ir.NewImportEdge("./b.ts"))

	b := ir.NewModule("src/b.ts")
	b.Language = ir.Ptr("typescript")
	b.Symbols = append(b.Symbols, ir.Symbol{Kind: ir.SymbolKindFunction, Name: "runB", LOC: 1, StartLine: 1, BranchingComplexity: ir.Ptr(1)})
	b.Outgoing = append(b.Outgoing, ir.NewImportEdge("./c"))

	c := ir.NewModule("src/c.ts")
	c.Language = ir.Ptr("typescript")
	return []*ir.Module{a, b, c}
}

func TestSave_MemStore(t *testing.T) {
	ctx := context.Background()
	modules := snapshotModules()
	g := Index("", modules)

	s := NewMemStore()
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, Save(ctx, s, g, modules))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Modules: 3, Symbols: 3, Imports: 3, Clusters: 1}, *stats)

	rec, err := s.Module(ctx, "src/a.ts")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, ModuleRecord{Path: "src/a.ts", Language: "typescript", LOC: 12, CompositeScore: 0.25, Findings: 1}, *rec)

	missing, err := s.Module(ctx, "nope.ts")
	require.NoError(t, err)
	assert.Nil(t, missing)

	syms, err := s.QuerySymbols(ctx, "RUN", 0)
	require.NoError(t, err)
	require.Len(t, syms, 3)
	assert.Equal(t, "run", syms[0].Name)
	assert.Equal(t, 2, syms[0].Complexity)
	assert.Equal(t, "Runner", syms[1].Name)
	assert.Equal(t, 0, syms[1].Complexity)
	assert.Equal(t, "src/b.ts", syms[2].Module)

	limited, err := s.QuerySymbols(ctx, "run", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	imports, err := s.Imports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ImportRecord{
		{Source: "src/a.ts", Target: "src/b.ts", Relation: "import"},
		{Source: "src/a.ts", Target: "src/b.ts", Relation: "import"},
		{Source: "src/b.ts", Target: "src/c.ts", Relation: "import"},
	}, imports)

	clusters, err := s.Clusters(ctx)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "src/", clusters[0].Name)
}

func TestSave_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	modules := snapshotModules()
	err := Save(ctx, NewMemStore(), Index("", modules), modules)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSymbolID(t *testing.T) {
	a := symbolID(SymbolRecord{Module: "m.go", Name: "f", StartLine: 1})
	b := symbolID(SymbolRecord{Module: "m.go", Name: "f", StartLine: 9})
	assert.NotEqual(t, a, b)
	assert.Equal(t, "m.go:f:1", a)
}
