package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
)

var _ Store = (*MemStore)(nil)

// MemStore implements Store with maps guarded by a RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	modules  map[string]ModuleRecord
	symbols  map[string]SymbolRecord
	imports  []ImportRecord
	clusters []Cluster
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		modules: make(map[string]ModuleRecord),
		symbols: make(map[string]SymbolRecord),
	}
}

// InitSchema is a no-op.
func (m *MemStore) InitSchema(context.Context) error { return nil }

// AddModule stores rec keyed by path, replacing any previous record.
func (m *MemStore) AddModule(_ context.Context, rec ModuleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules[rec.Path] = rec
	return nil
}

// AddSymbol stores rec keyed by module, name and start line.
func (m *MemStore) AddSymbol(_ context.Context, rec SymbolRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[symbolID(rec)] = rec
	return nil
}

// AddImport appends rec.
func (m *MemStore) AddImport(_ context.Context, rec ImportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imports = append(m.imports, rec)
	return nil
}

// AddCluster appends c.
func (m *MemStore) AddCluster(_ context.Context, c Cluster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = append(m.clusters, c)
	return nil
}

// Module returns the record for path, or nil if absent.
func (m *MemStore) Module(_ context.Context, path string) (*ModuleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.modules[path]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// QuerySymbols returns symbols whose name contains query, case-insensitively,
// ordered by module and line. A limit <= 0 returns every match.
func (m *MemStore) QuerySymbols(_ context.Context, query string, limit int) ([]SymbolRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	var out []SymbolRecord
	for _, s := range m.symbols {
		if strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].StartLine < out[j].StartLine
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Imports returns a copy of every stored import.
func (m *MemStore) Imports(context.Context) ([]ImportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ImportRecord, len(m.imports))
	copy(out, m.imports)
	return out, nil
}

// Clusters returns a copy of every stored cluster.
func (m *MemStore) Clusters(context.Context) ([]Cluster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Cluster, len(m.clusters))
	copy(out, m.clusters)
	return out, nil
}

// Stats returns record counts.
func (m *MemStore) Stats(context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Stats{
		Modules:  len(m.modules),
		Symbols:  len(m.symbols),
		Imports:  len(m.imports),
		Clusters: len(m.clusters),
	}, nil
}

// Close is a no-op.
func (m *MemStore) Close() error { return nil }
