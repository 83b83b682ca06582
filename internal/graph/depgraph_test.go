package graph

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codescope/internal/adapter"
	"github.com/dusk-indust/codescope/internal/ir"
)

func importEdge(src, tgt string) ir.DepEdge {
	e := ir.NewImportEdge(tgt)
	e.Source = ir.Ptr(src)
	return e
}

// buildGraph returns a graph with the given nodes and one edge per pair.
func buildGraph(t *testing.T, nodes []string, pairs [][2]string) *DependencyGraph {
	t.Helper()
	g := New()
	for _, n := range nodes {
		g.AddModule(n)
	}
	for _, p := range pairs {
		require.True(t, g.AddEdge(p[0], p[1], importEdge(p[0], p[1])), "%s -> %s", p[0], p[1])
	}
	return g
}

// ---------------------------------------------------------------------------
// Construction and fan queries
// ---------------------------------------------------------------------------

func TestDependencyGraph_SingleEdgeFan(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}})

	assert.Equal(t, 1, g.FanOut("A"))
	assert.Equal(t, 1, g.FanIn("B"))
	assert.Equal(t, 0, g.FanIn("A"))
	assert.Equal(t, 0, g.FanOut("B"))
}

func TestDependencyGraph_AddModuleIdempotent(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}})
	g.AddModule("A")
	g.AddModule("A")

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.FanOut("A"), "re-adding a module keeps its edges")
	assert.Equal(t, []string{"A", "B"}, g.Modules())
}

func TestDependencyGraph_EdgeToUnknownModuleDropped(t *testing.T) {
	g := buildGraph(t, []string{"A"}, nil)

	assert.False(t, g.AddEdge("A", "missing", importEdge("A", "missing")))
	assert.False(t, g.AddEdge("missing", "A", importEdge("missing", "A")))
	assert.Equal(t, 0, g.FanOut("A"))
	assert.Equal(t, 0, g.FanIn("A"))
	assert.False(t, g.HasModule("missing"))
}

func TestDependencyGraph_ParallelEdgesKept(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}})
	use := importEdge("A", "B")
	use.Relation = ir.RelationUse
	require.True(t, g.AddEdge("A", "B", use))

	assert.Equal(t, 2, g.FanOut("A"))
	assert.Equal(t, 2, g.FanIn("B"))

	out := g.Outgoing("A")
	require.Len(t, out, 2)
	assert.Equal(t, ir.RelationImport, out[0].Relation)
	assert.Equal(t, ir.RelationUse, out[1].Relation)

	assert.Equal(t, []Link{{Source: "A", Target: "B", Count: 2}}, g.Links())
}

func TestDependencyGraph_UnknownPaths(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.FanIn("nope"))
	assert.Equal(t, 0, g.FanOut("nope"))
	assert.NotNil(t, g.Outgoing("nope"))
	assert.Empty(t, g.Outgoing("nope"))
	assert.NotNil(t, g.Incoming("nope"))
	assert.Empty(t, g.Incoming("nope"))
}

func TestDependencyGraph_IncomingSortedBySource(t *testing.T) {
	g := buildGraph(t, []string{"hub", "c", "a", "b"}, [][2]string{{"c", "hub"}, {"a", "hub"}, {"b", "hub"}})

	in := g.Incoming("hub")
	require.Len(t, in, 3)
	var sources []string
	for _, e := range in {
		sources = append(sources, *e.Source)
	}
	assert.Equal(t, []string{"a", "b", "c"}, sources)
}

func TestDependencyGraph_ReturnedEdgesAreCopies(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}})
	out := g.Outgoing("A")
	*out[0].Target = "changed"

	assert.Equal(t, "B", *g.Outgoing("A")[0].Target)
}

func TestDependencyGraph_ConcurrentReads(t *testing.T) {
	g := buildGraph(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, 1, g.FanOut("A"))
			assert.Equal(t, 1, g.FanIn("C"))
		}()
	}
	wg.Wait()
}

// ---------------------------------------------------------------------------
// Cycles and ordering
// ---------------------------------------------------------------------------

func TestDependencyGraph_Cycles(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "d", "e", "self"},
		[][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "e"}, {"e", "c"}, {"a", "c"}, {"self", "self"}},
	)

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d", "e"}, {"self"}}, g.Cycles())

	_, err := g.TopologicalOrder()
	assert.ErrorIs(t, err, ErrCyclic)
}

func TestDependencyGraph_TopologicalOrder(t *testing.T) {
	g := buildGraph(t, []string{"app", "lib", "util", "log"},
		[][2]string{{"app", "lib"}, {"lib", "util"}, {"app", "log"}})

	assert.Empty(t, g.Cycles())
	order, err := g.TopologicalOrder()
	require.NoError(t, err)

	pos := make(map[string]int, len(order))
	for i, p := range order {
		pos[p] = i
	}
	require.Len(t, order, 4)
	assert.Less(t, pos["app"], pos["lib"])
	assert.Less(t, pos["lib"], pos["util"])
	assert.Less(t, pos["app"], pos["log"])
}

// ---------------------------------------------------------------------------
// Index
// ---------------------------------------------------------------------------

func parseFixture(t *testing.T, root, rel string) *ir.Module {
	t.Helper()
	source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	m, err := adapter.DefaultRegistry().Parse(rel, source)
	require.NoError(t, err)
	return m
}

func TestIndex_TypeScriptFixture(t *testing.T) {
	root := "../../testdata/fixtures/ts_project"
	modules := []*ir.Module{
		parseFixture(t, root, "src/app.ts"),
		parseFixture(t, root, "src/lib/helper.ts"),
		parseFixture(t, root, "src/lib/types.ts"),
		parseFixture(t, root, "src/polyfill.ts"),
	}

	g := Index(root, modules)
	app, helper, types, polyfill := modules[0], modules[1], modules[2], modules[3]

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 3, g.FanOut("src/app.ts"), "path is external and stays unresolved")
	assert.Equal(t, 1, g.FanOut("src/lib/helper.ts"))
	assert.Equal(t, 2, g.FanIn("src/lib/types.ts"))

	// Outgoing keeps raw specifiers and gains the importer as source.
	require.Len(t, app.Outgoing, 4)
	for _, e := range app.Outgoing {
		require.NotNil(t, e.Source)
		assert.Equal(t, "src/app.ts", *e.Source)
	}
	assert.Equal(t, "./lib/helper", *app.Outgoing[0].Target)

	// Incoming edges carry resolved paths.
	require.Len(t, types.Incoming, 2)
	assert.Equal(t, "src/app.ts", *types.Incoming[0].Source)
	assert.Equal(t, "src/lib/helper.ts", *types.Incoming[1].Source)
	assert.Equal(t, "src/lib/types.ts", *types.Incoming[0].Target)

	require.Len(t, helper.Incoming, 1)
	require.Len(t, polyfill.Incoming, 1)
	assert.Empty(t, app.Incoming)

	assert.Empty(t, g.Cycles())
	clusters := g.Clusters()
	require.Len(t, clusters, 1)
	assert.Equal(t, "src/", clusters[0].Name)
	assert.Len(t, clusters[0].Members, 4)
}

func TestIndex_ModulesWithoutLanguage(t *testing.T) {
	a := ir.NewModule("a.txt")
	a.Outgoing = append(a.Outgoing, ir.NewImportEdge("b.txt"), ir.NewImportEdge("c.txt"))
	b := ir.NewModule("b.txt")

	g := Index("", []*ir.Module{a, b})
	assert.Equal(t, 1, g.FanOut("a.txt"), "exact paths resolve, unknown ones are dropped")
	require.Len(t, b.Incoming, 1)
	assert.Equal(t, "a.txt", *b.Incoming[0].Source)
}
