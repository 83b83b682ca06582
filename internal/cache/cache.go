// Package cache keeps parsed Module IR keyed by file identity so unchanged
// files skip re-parsing. An in-memory otter tier fronts an optional
// persistent Store.
package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter"
	"golang.org/x/crypto/blake2b"

	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/logging"
)

// ErrMiss is returned when no entry exists for a key.
var ErrMiss = errors.New("cache miss")

// FileKey identifies one version of a file. Path is the absolute path of
// the file on disk.
type FileKey struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// KeyFor returns the key of the file at path described by info.
func KeyFor(path string, info fs.FileInfo) FileKey {
	return FileKey{Path: path, Size: info.Size(), ModTime: info.ModTime()}
}

// Hash returns hex(blake2b-256("path:size:mtime_unix_nano")).
func (k FileKey) Hash() string {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%s:%d:%d", k.Path, k.Size, k.ModTime.UnixNano())))
	return hex.EncodeToString(sum[:])
}

// Store is a persistent tier addressed by FileKey hashes.
type Store interface {
	Get(ctx context.Context, hash string) (*ir.Module, error) // ErrMiss when absent
	Put(ctx context.Context, hash string, m *ir.Module) error
	Close() error
}

// Cache is safe for concurrent use. Callers always receive and hand over
// copies, so cached modules are never aliased.
type Cache struct {
	mem    otter.Cache[string, *ir.Module]
	store  Store
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New returns a cache holding up to capacity modules in memory, backed by
// store when it is non-nil.
func New(capacity int, store Store, logger *slog.Logger) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache: capacity must be positive, got %d", capacity)
	}
	mem, err := otter.MustBuilder[string, *ir.Module](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("cache: build memory tier: %w", err)
	}
	return &Cache{mem: mem, store: store, logger: logging.OrDiscard(logger)}, nil
}

// Get returns a copy of the module cached for key, or ErrMiss.
func (c *Cache) Get(ctx context.Context, key FileKey) (*ir.Module, error) {
	h := key.Hash()
	if m, ok := c.mem.Get(h); ok {
		c.hits.Add(1)
		c.logger.Debug("cache hit", "path", key.Path, "tier", "memory")
		return m.Clone(), nil
	}
	if c.store != nil {
		m, err := c.store.Get(ctx, h)
		switch {
		case err == nil:
			c.hits.Add(1)
			c.mem.Set(h, m)
			c.logger.Debug("cache hit", "path", key.Path, "tier", "store")
			return m.Clone(), nil
		case !errors.Is(err, ErrMiss):
			c.logger.Warn("cache read failed", "path", key.Path, "err", err)
		}
	}
	c.misses.Add(1)
	return nil, ErrMiss
}

// Put stores a copy of m under key in every tier.
func (c *Cache) Put(ctx context.Context, key FileKey, m *ir.Module) error {
	h := key.Hash()
	cp := m.Clone()
	c.mem.Set(h, cp)
	if c.store == nil {
		return nil
	}
	if err := c.store.Put(ctx, h, cp); err != nil {
		return fmt.Errorf("cache: put %s: %w", key.Path, err)
	}
	return nil
}

// Stats returns the hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of modules in the memory tier.
func (c *Cache) Len() int {
	return c.mem.Size()
}

// Close releases the memory tier and closes the store.
func (c *Cache) Close() error {
	c.mem.Close()
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
