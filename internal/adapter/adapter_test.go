package adapter

import (
	"errors"
	"os"
	"testing"

	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// readFixture reads a test fixture relative to the project root.
func readFixture(t *testing.T, relPath string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../" + relPath)
	require.NoError(t, err, "reading fixture %s", relPath)
	return data
}

func findSymbol(symbols []ir.Symbol, name string) *ir.Symbol {
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i]
		}
	}
	return nil
}

func symbolNames(symbols []ir.Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.Name
	}
	return out
}

func importTargets(edges []ir.DepEdge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = *e.Target
	}
	return out
}

func parse(t *testing.T, a Adapter, path, source string) *ir.Module {
	t.Helper()
	m, err := a.Parse(path, []byte(source))
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

// assertModuleInvariants checks the structural invariants every module holds.
func assertModuleInvariants(t *testing.T, m *ir.Module, source []byte) {
	t.Helper()
	assert.Equal(t, metrics.LineCount(source), m.TotalLines(), "line classes must cover every line")
	for _, s := range m.Symbols {
		assert.GreaterOrEqual(t, s.LOC, 1, "symbol %s loc", s.Name)
		assert.True(t, s.Kind.Valid(), "symbol %s kind", s.Name)
		if s.Kind == ir.SymbolKindFunction {
			assert.NotNil(t, s.BranchingComplexity, "function %s needs complexity", s.Name)
		} else {
			assert.Nil(t, s.BranchingComplexity, "%s %s must not carry complexity", s.Kind, s.Name)
		}
		assert.NotNil(t, s.Metrics)
	}
	for _, e := range m.Outgoing {
		assert.Nil(t, e.Source)
		require.NotNil(t, e.Target)
		assert.NotEmpty(t, *e.Target)
		assert.Equal(t, ir.RelationImport, e.Relation)
		assert.InDelta(t, ir.ImportStrength, e.Strength, 1e-9)
	}
	assert.NotNil(t, m.Incoming)
	assert.Empty(t, m.Incoming)
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestDefaultRegistry_Extensions(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{
		".cjs", ".cts", ".go", ".js", ".jsx", ".mjs", ".mts", ".py", ".pyi", ".rs", ".ts", ".tsx",
	}, r.Extensions())

	assert.True(t, r.Supports("src/App.TSX"))
	assert.False(t, r.Supports("README.md"))
}

func TestRegistry_ParseUnsupported(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Parse("notes.txt", []byte("hello"))
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "notes.txt", pe.Path)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRegistry_DispatchesByExtension(t *testing.T) {
	r := DefaultRegistry()

	m, err := r.Parse("a.go", []byte("package a\n\nfunc A() {}\n"))
	require.NoError(t, err)
	assert.Equal(t, "go", *m.Language)
	assert.Equal(t, []string{"A"}, symbolNames(m.Symbols))

	m, err = r.Parse("b.py", []byte("def b():\n    pass\n"))
	require.NoError(t, err)
	assert.Equal(t, "python", *m.Language)
	assert.Equal(t, []string{"b"}, symbolNames(m.Symbols))
}

type stubAdapter struct {
	exts []string
	err  error
}

func (s stubAdapter) MatchExtensions() []string { return s.exts }

func (s stubAdapter) Parse(path string, _ []byte) (*ir.Module, error) {
	if s.err != nil {
		return nil, s.err
	}
	return ir.NewModule(path), nil
}

func TestRegistry_WrapsAdapterErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(stubAdapter{exts: []string{".x"}, err: boom})

	_, err := r.Parse("f.x", nil)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "parse f.x")
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry(NewTypeScriptAdapter())
	r.Register(stubAdapter{exts: []string{".TS"}})

	m, err := r.Parse("a.ts", []byte("function f() {}"))
	require.NoError(t, err)
	assert.Empty(t, m.Symbols, "stub adapter should have handled .ts")
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"a.ts":        "typescript",
		"a.tsx":       "tsx",
		"a.js":        "javascript",
		"a.jsx":       "javascript",
		"x/y/main.go": "go",
		"s.py":        "python",
		"lib.rs":      "rust",
		"README.md":   "unknown",
		"Makefile":    "unknown",
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
}
