package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/graph"
	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/logging"
)

// ErrNotIndexed is returned by tools that need a prior analyze_directory call.
var ErrNotIndexed = errors.New("no directory analyzed yet; call analyze_directory first")

// CodeScopeService holds the analyzer used by the MCP tool handlers and the
// snapshot of the last analyzed directory.
type CodeScopeService struct {
	analyzer *analysis.Analyzer
	logger   *slog.Logger

	mu     sync.RWMutex
	report *analysis.Report
	store  graph.Store
}

// NewCodeScopeService creates a CodeScopeService backed by analyzer.
func NewCodeScopeService(analyzer *analysis.Analyzer, logger *slog.Logger) *CodeScopeService {
	return &CodeScopeService{analyzer: analyzer, logger: logging.OrDiscard(logger)}
}

// Close releases the snapshot store.
func (s *CodeScopeService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store, s.report = nil, nil
	return err
}

// AnalyzeFile analyzes a single source file.
func (s *CodeScopeService) AnalyzeFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeFileInput,
) (*mcp.CallToolResult, AnalyzeFileOutput, error) {
	if input.Path == "" {
		return nil, AnalyzeFileOutput{}, fmt.Errorf("path is required")
	}
	m, err := s.analyzer.AnalyzeFile(ctx, input.Path)
	if err != nil {
		return nil, AnalyzeFileOutput{}, err
	}
	return nil, AnalyzeFileOutput{Module: m}, nil
}

// AnalyzeDirectory analyzes a directory tree and keeps the result as the
// snapshot queried by the other tools.
func (s *CodeScopeService) AnalyzeDirectory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeDirectoryInput,
) (*mcp.CallToolResult, AnalyzeDirectoryOutput, error) {
	if input.Path == "" {
		return nil, AnalyzeDirectoryOutput{}, fmt.Errorf("path is required")
	}
	info, err := os.Stat(input.Path)
	if err != nil {
		return nil, AnalyzeDirectoryOutput{}, fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return nil, AnalyzeDirectoryOutput{}, fmt.Errorf("path is not a directory: %s", input.Path)
	}

	report, err := s.analyzer.AnalyzeDir(ctx, input.Path)
	if err != nil {
		return nil, AnalyzeDirectoryOutput{}, err
	}

	store := graph.NewMemStore()
	if err := store.InitSchema(ctx); err != nil {
		return nil, AnalyzeDirectoryOutput{}, fmt.Errorf("init schema: %w", err)
	}
	if err := graph.Save(ctx, store, report.Graph, report.Modules); err != nil {
		return nil, AnalyzeDirectoryOutput{}, fmt.Errorf("save snapshot: %w", err)
	}
	s.swap(report, store)

	out := AnalyzeDirectoryOutput{
		ID:          report.ID,
		Root:        report.Root,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Summary:     report.Summary,
		Cycles:      nonNil(report.Cycles),
		Clusters:    nonNil(report.Clusters),
		Errors:      nonNil(report.Errors),
	}
	if input.IncludeModules {
		out.Modules = report.Modules
	}
	return nil, out, nil
}

func (s *CodeScopeService) swap(report *analysis.Report, store graph.Store) {
	s.mu.Lock()
	old := s.store
	s.report, s.store = report, store
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("close previous snapshot", "err", err)
		}
	}
}

func (s *CodeScopeService) snapshot() (*analysis.Report, graph.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return nil, nil, ErrNotIndexed
	}
	return s.report, s.store, nil
}

// GetCoupling returns the fan-in and fan-out of one module of the snapshot.
func (s *CodeScopeService) GetCoupling(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetCouplingInput,
) (*mcp.CallToolResult, GetCouplingOutput, error) {
	report, _, err := s.snapshot()
	if err != nil {
		return nil, GetCouplingOutput{}, err
	}
	path := modulePath(report.Root, input.Path)
	g := report.Graph
	if !g.HasModule(path) {
		return nil, GetCouplingOutput{}, fmt.Errorf("module %q not found in %s", input.Path, report.Root)
	}

	return nil, GetCouplingOutput{
		Path:     path,
		FanIn:    g.FanIn(path),
		FanOut:   g.FanOut(path),
		Incoming: endpoints(g.Incoming(path), func(e ir.DepEdge) *string { return e.Source }),
		Outgoing: endpoints(g.Outgoing(path), func(e ir.DepEdge) *string { return e.Target }),
	}, nil
}

// modulePath maps p to the slash-separated module path used by the graph.
func modulePath(root, p string) string {
	if filepath.IsAbs(p) {
		if absRoot, err := filepath.Abs(root); err == nil {
			if rel, err := filepath.Rel(absRoot, p); err == nil && !strings.HasPrefix(rel, "..") {
				p = rel
			}
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(p)), "./")
}

// endpoints returns the distinct endpoints of edges in order.
func endpoints(edges []ir.DepEdge, end func(ir.DepEdge) *string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, e := range edges {
		p := end(e)
		if p == nil || seen[*p] {
			continue
		}
		seen[*p] = true
		out = append(out, *p)
	}
	return out
}

// QuerySymbols searches the snapshot's symbols by name substring match.
func (s *CodeScopeService) QuerySymbols(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuerySymbolsInput,
) (*mcp.CallToolResult, QuerySymbolsOutput, error) {
	_, store, err := s.snapshot()
	if err != nil {
		return nil, QuerySymbolsOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	// Filter by kind before applying the limit.
	symbols, err := store.QuerySymbols(ctx, input.Query, 0)
	if err != nil {
		return nil, QuerySymbolsOutput{}, fmt.Errorf("query symbols: %w", err)
	}
	out := []graph.SymbolRecord{}
	for _, sym := range symbols {
		if input.Kind != "" && !strings.EqualFold(sym.Kind, input.Kind) {
			continue
		}
		out = append(out, sym)
		if len(out) == limit {
			break
		}
	}
	return nil, QuerySymbolsOutput{Symbols: out, Total: len(out)}, nil
}

// AssessImpact computes the blast radius of modifying a set of modules.
func (s *CodeScopeService) AssessImpact(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedFiles is required")
	}
	report, _, err := s.snapshot()
	if err != nil {
		return nil, AssessImpactOutput{}, err
	}
	changed := make([]string, len(input.ChangedFiles))
	for i, f := range input.ChangedFiles {
		changed[i] = modulePath(report.Root, f)
	}
	return nil, AssessImpactOutput{Impact: report.Graph.Impact(changed)}, nil
}

// GetClusters returns the clusters of the snapshot.
func (s *CodeScopeService) GetClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	_, store, err := s.snapshot()
	if err != nil {
		return nil, GetClustersOutput{}, err
	}
	clusters, err := store.Clusters(ctx)
	if err != nil {
		return nil, GetClustersOutput{}, fmt.Errorf("get clusters: %w", err)
	}
	return nil, GetClustersOutput{Clusters: nonNil(clusters)}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
