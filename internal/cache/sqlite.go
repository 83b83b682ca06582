package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // pure Go driver

	"github.com/dusk-indust/codescope/internal/ir"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists modules as zstd-compressed JSON in a SQLite file.
// Each path keeps only its most recent entry.
type SQLiteStore struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

const schema = `CREATE TABLE IF NOT EXISTS modules (
	key        TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_modules_path ON modules(path);`

// OpenSQLite opens or creates the cache database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: init %s: %w", path, err)
		}
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("cache: zstd decoder: %w", err)
	}
	return &SQLiteStore{db: db, enc: enc, dec: dec}, nil
}

// Get returns the module stored under hash, or ErrMiss.
func (s *SQLiteStore) Get(ctx context.Context, hash string) (*ir.Module, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM modules WHERE key = ?", hash).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read: %w", err)
	}

	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("cache: decompress: %w", err)
	}
	var m ir.Module
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("cache: decode: %w", err)
	}
	m.Normalize()
	return &m, nil
}

// Put stores m under hash and drops older entries for the same path.
func (s *SQLiteStore) Put(ctx context.Context, hash string, m *ir.Module) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	blob := s.enc.EncodeAll(raw, nil)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM modules WHERE path = ? AND key <> ?", m.Path, hash); err != nil {
		return fmt.Errorf("cache: prune: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO modules (key, path, data, updated_at) VALUES (?, ?, ?, ?)",
		hash, m.Path, blob, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("cache: write: %w", err)
	}
	return tx.Commit()
}

// Len returns the number of stored entries.
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM modules").Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}

// Close releases the codecs and the database.
func (s *SQLiteStore) Close() error {
	s.dec.Close()
	_ = s.enc.Close()
	return s.db.Close()
}
