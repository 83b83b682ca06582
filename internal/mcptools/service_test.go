package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codescope/internal/analysis"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fixtureAbsPath returns the absolute path to the ts_project fixture.
func fixtureAbsPath(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../testdata/fixtures/ts_project")
	require.NoError(t, err)
	return abs
}

func newService(t *testing.T) *CodeScopeService {
	t.Helper()
	svc := NewCodeScopeService(analysis.New(analysis.Options{}), nil)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// indexedService returns a service that has analyzed the fixture.
func indexedService(t *testing.T) *CodeScopeService {
	t.Helper()
	svc := newService(t)
	_, _, err := svc.AnalyzeDirectory(context.Background(), nil, AnalyzeDirectoryInput{Path: fixtureAbsPath(t)})
	require.NoError(t, err)
	return svc
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAnalyzeFile(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, out, err := svc.AnalyzeFile(ctx, nil, AnalyzeFileInput{Path: filepath.Join(fixtureAbsPath(t), "src", "lib", "helper.ts")})
	require.NoError(t, err)
	require.NotNil(t, out.Module)
	assert.Len(t, out.Module.Symbols, 2)
	assert.NotEmpty(t, out.Module.Metrics)

	_, _, err = svc.AnalyzeFile(ctx, nil, AnalyzeFileInput{})
	assert.ErrorContains(t, err, "path is required")

	_, _, err = svc.AnalyzeFile(ctx, nil, AnalyzeFileInput{Path: filepath.Join(t.TempDir(), "missing.ts")})
	assert.Error(t, err)
}

func TestAnalyzeDirectory(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, out, err := svc.AnalyzeDirectory(ctx, nil, AnalyzeDirectoryInput{Path: fixtureAbsPath(t)})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.NotEmpty(t, out.GeneratedAt)
	assert.Equal(t, 4, out.Summary.Files)
	assert.Empty(t, out.Cycles)
	assert.NotNil(t, out.Errors)
	require.Len(t, out.Clusters, 1)
	assert.Nil(t, out.Modules, "modules are omitted unless requested")

	_, out, err = svc.AnalyzeDirectory(ctx, nil, AnalyzeDirectoryInput{Path: fixtureAbsPath(t), IncludeModules: true})
	require.NoError(t, err)
	assert.Len(t, out.Modules, 4)
}

func TestAnalyzeDirectory_InvalidPath(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, _, err := svc.AnalyzeDirectory(ctx, nil, AnalyzeDirectoryInput{})
	assert.ErrorContains(t, err, "path is required")

	_, _, err = svc.AnalyzeDirectory(ctx, nil, AnalyzeDirectoryInput{Path: filepath.Join(t.TempDir(), "nope")})
	assert.ErrorContains(t, err, "cannot access path")

	file := filepath.Join(t.TempDir(), "a.ts")
	require.NoError(t, os.WriteFile(file, []byte("export {};\n"), 0o644))
	_, _, err = svc.AnalyzeDirectory(ctx, nil, AnalyzeDirectoryInput{Path: file})
	assert.ErrorContains(t, err, "not a directory")
}

func TestSnapshotTools_RequireIndex(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, _, err := svc.GetCoupling(ctx, nil, GetCouplingInput{Path: "a.ts"})
	assert.ErrorIs(t, err, ErrNotIndexed)
	_, _, err = svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Query: "x"})
	assert.ErrorIs(t, err, ErrNotIndexed)
	_, _, err = svc.AssessImpact(ctx, nil, AssessImpactInput{ChangedFiles: []string{"a.ts"}})
	assert.ErrorIs(t, err, ErrNotIndexed)
	_, _, err = svc.GetClusters(ctx, nil, GetClustersInput{})
	assert.ErrorIs(t, err, ErrNotIndexed)
}

func TestGetCoupling(t *testing.T) {
	svc := indexedService(t)
	ctx := context.Background()

	_, out, err := svc.GetCoupling(ctx, nil, GetCouplingInput{Path: "src/lib/types.ts"})
	require.NoError(t, err)
	assert.Equal(t, GetCouplingOutput{
		Path:     "src/lib/types.ts",
		FanIn:    2,
		FanOut:   0,
		Incoming: []string{"src/app.ts", "src/lib/helper.ts"},
		Outgoing: []string{},
	}, out)

	abs := filepath.Join(fixtureAbsPath(t), "src", "app.ts")
	_, out, err = svc.GetCoupling(ctx, nil, GetCouplingInput{Path: abs})
	require.NoError(t, err)
	assert.Equal(t, "src/app.ts", out.Path)
	assert.Equal(t, 3, out.FanOut)
	assert.Equal(t, []string{"src/lib/helper.ts", "src/lib/types.ts", "src/polyfill.ts"}, out.Outgoing)

	_, _, err = svc.GetCoupling(ctx, nil, GetCouplingInput{Path: "src/unknown.ts"})
	assert.ErrorContains(t, err, "not found")
}

func TestQuerySymbols(t *testing.T) {
	svc := indexedService(t)
	ctx := context.Background()

	_, out, err := svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Query: "HELP"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "helper", out.Symbols[0].Name)
	assert.Equal(t, "src/lib/helper.ts", out.Symbols[0].Module)

	_, out, err = svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Kind: "Interface"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	for _, s := range out.Symbols {
		assert.Equal(t, "interface", s.Kind)
	}

	_, out, err = svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
}

func TestAssessImpact(t *testing.T) {
	svc := indexedService(t)
	ctx := context.Background()

	_, out, err := svc.AssessImpact(ctx, nil, AssessImpactInput{ChangedFiles: []string{"./src/lib/types.ts"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.ts", "src/lib/helper.ts"}, out.Impact.Direct)
	assert.Equal(t, []string{"src/app.ts", "src/lib/helper.ts"}, out.Impact.Transitive)
	assert.InDelta(t, 0.5, out.Impact.Risk, 1e-9)

	_, _, err = svc.AssessImpact(ctx, nil, AssessImpactInput{})
	assert.ErrorContains(t, err, "changedFiles is required")
}

func TestGetClusters(t *testing.T) {
	svc := indexedService(t)

	_, out, err := svc.GetClusters(context.Background(), nil, GetClustersInput{})
	require.NoError(t, err)
	require.Len(t, out.Clusters, 1)
	assert.Equal(t, "src/", out.Clusters[0].Name)
	assert.Len(t, out.Clusters[0].Members, 4)
}

func TestModulePath(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		in, want string
	}{
		{"src/a.ts", "src/a.ts"},
		{"./src/a.ts", "src/a.ts"},
		{filepath.Join(root, "src", "a.ts"), "src/a.ts"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, modulePath(root, tt.in), tt.in)
	}
}
