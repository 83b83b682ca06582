//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements Store on an embedded KuzuDB database. It requires
// cgo because go-kuzu wraps the C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

var _ Store = (*KuzuStore)(nil)

// OpenKuzuStore opens the database at dir, or an in-memory database when dir
// is empty. KuzuDB creates the leaf directory itself.
func OpenKuzuStore(dir string) (*KuzuStore, error) {
	target := ":memory:"
	if dir != "" {
		if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
			return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
		}
		target = dir
	}
	db, err := kuzu.OpenDatabase(target, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema ----------

// Node tables precede relationship tables.
var ddl = []string{
	`CREATE NODE TABLE IF NOT EXISTS Module(
		path STRING,
		language STRING,
		loc INT64,
		composite_score DOUBLE,
		findings INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Symbol(
		id STRING,
		module STRING,
		name STRING,
		kind STRING,
		loc INT64,
		start_line INT64,
		complexity INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Cluster(
		name STRING,
		cohesion DOUBLE,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DECLARES(FROM Module TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS IMPORTS(FROM Module TO Module, relation STRING)`,
	`CREATE REL TABLE IF NOT EXISTS BELONGS_TO(FROM Module TO Cluster)`,
}

// InitSchema creates every table that does not exist yet.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddl {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Writes ----------

// AddModule merges a Module node.
func (s *KuzuStore) AddModule(_ context.Context, rec ModuleRecord) error {
	return s.exec(
		`MERGE (m:Module {path: $path})
		 SET m.language = $lang, m.loc = $loc, m.composite_score = $score, m.findings = $findings`,
		map[string]any{
			"path":     rec.Path,
			"lang":     rec.Language,
			"loc":      int64(rec.LOC),
			"score":    rec.CompositeScore,
			"findings": int64(rec.Findings),
		},
	)
}

// AddSymbol creates a Symbol node and links it to its module.
func (s *KuzuStore) AddSymbol(_ context.Context, rec SymbolRecord) error {
	return s.exec(
		`MATCH (m:Module {path: $module})
		 CREATE (m)-[:DECLARES]->(:Symbol {
			id: $id,
			module: $module,
			name: $name,
			kind: $kind,
			loc: $loc,
			start_line: $line,
			complexity: $cx
		 })`,
		map[string]any{
			"id":     symbolID(rec),
			"module": rec.Module,
			"name":   rec.Name,
			"kind":   rec.Kind,
			"loc":    int64(rec.LOC),
			"line":   int64(rec.StartLine),
			"cx":     int64(rec.Complexity),
		},
	)
}

// AddImport creates an IMPORTS relationship between two stored modules.
func (s *KuzuStore) AddImport(_ context.Context, rec ImportRecord) error {
	return s.exec(
		`MATCH (a:Module {path: $src}), (b:Module {path: $dst})
		 CREATE (a)-[:IMPORTS {relation: $rel}]->(b)`,
		map[string]any{"src": rec.Source, "dst": rec.Target, "rel": rec.Relation},
	)
}

// AddCluster creates a Cluster node and its BELONGS_TO memberships.
func (s *KuzuStore) AddCluster(_ context.Context, c Cluster) error {
	if err := s.exec(
		"MERGE (c:Cluster {name: $name}) SET c.cohesion = $cohesion",
		map[string]any{"name": c.Name, "cohesion": c.Cohesion},
	); err != nil {
		return err
	}
	for _, member := range c.Members {
		if err := s.exec(
			`MATCH (m:Module {path: $path}), (c:Cluster {name: $name})
			 CREATE (m)-[:BELONGS_TO]->(c)`,
			map[string]any{"path": member, "name": c.Name},
		); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Reads ----------

// Module returns the record for path, or nil if absent.
func (s *KuzuStore) Module(_ context.Context, path string) (*ModuleRecord, error) {
	rows, err := s.query(
		`MATCH (m:Module {path: $path})
		 RETURN m.path, m.language, m.loc, m.composite_score, m.findings`,
		map[string]any{"path": path},
	)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	r := rows[0]
	return &ModuleRecord{
		Path:           toString(r[0]),
		Language:       toString(r[1]),
		LOC:            toInt(r[2]),
		CompositeScore: toFloat64(r[3]),
		Findings:       toInt(r[4]),
	}, nil
}

// QuerySymbols returns symbols whose name contains query.
func (s *KuzuStore) QuerySymbols(_ context.Context, query string, limit int) ([]SymbolRecord, error) {
	if limit <= 0 {
		limit = 1 << 20
	}
	rows, err := s.query(
		`MATCH (s:Symbol) WHERE lower(s.name) CONTAINS lower($q)
		 RETURN s.module, s.name, s.kind, s.loc, s.start_line, s.complexity
		 ORDER BY s.module, s.start_line
		 LIMIT $lim`,
		map[string]any{"q": query, "lim": int64(limit)},
	)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, SymbolRecord{
			Module:     toString(r[0]),
			Name:       toString(r[1]),
			Kind:       toString(r[2]),
			LOC:        toInt(r[3]),
			StartLine:  toInt(r[4]),
			Complexity: toInt(r[5]),
		})
	}
	return out, nil
}

// Imports returns every IMPORTS relationship.
func (s *KuzuStore) Imports(_ context.Context) ([]ImportRecord, error) {
	rows, err := s.query(
		`MATCH (a:Module)-[r:IMPORTS]->(b:Module)
		 RETURN a.path, b.path, r.relation ORDER BY a.path, b.path`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]ImportRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, ImportRecord{Source: toString(r[0]), Target: toString(r[1]), Relation: toString(r[2])})
	}
	return out, nil
}

// Clusters returns every cluster with its members.
func (s *KuzuStore) Clusters(_ context.Context) ([]Cluster, error) {
	rows, err := s.query("MATCH (c:Cluster) RETURN c.name, c.cohesion ORDER BY c.name", nil)
	if err != nil {
		return nil, err
	}
	out := make([]Cluster, 0, len(rows))
	for _, r := range rows {
		name := toString(r[0])
		memberRows, err := s.query(
			"MATCH (m:Module)-[:BELONGS_TO]->(c:Cluster {name: $name}) RETURN m.path ORDER BY m.path",
			map[string]any{"name": name},
		)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toString(mr[0]))
		}
		out = append(out, Cluster{Name: name, Cohesion: toFloat64(r[1]), Members: members})
	}
	return out, nil
}

// Stats returns node and IMPORTS counts.
func (s *KuzuStore) Stats(_ context.Context) (*Stats, error) {
	var st Stats
	counts := []struct {
		cypher string
		dst    *int
	}{
		{"MATCH (n:Module) RETURN count(n)", &st.Modules},
		{"MATCH (n:Symbol) RETURN count(n)", &st.Symbols},
		{"MATCH ()-[r:IMPORTS]->() RETURN count(r)", &st.Imports},
		{"MATCH (n:Cluster) RETURN count(n)", &st.Clusters},
	}
	for _, c := range counts {
		rows, err := s.query(c.cypher, nil)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			*c.dst = toInt(rows[0][0])
		}
	}
	return &st, nil
}

// ---------- Helpers ----------

// exec runs a parameterized statement that returns no rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a statement and collects every row in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var (
		res *kuzu.QueryResult
		err error
	)
	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int32:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
