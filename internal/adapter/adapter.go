// Package adapter turns source files into Module IR. Each Adapter handles a
// set of file extensions; the Registry dispatches a path to its adapter.
package adapter

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/codescope/internal/ir"
)

// Adapter parses one family of source files into Module IR.
type Adapter interface {
	// MatchExtensions returns the lowercase extensions (with leading dot)
	// this adapter handles.
	MatchExtensions() []string

	// Parse builds the Module IR for the file at path with the given content.
	Parse(path string, source []byte) (*ir.Module, error)
}

var (
	// ErrUnsupported is returned when no adapter handles a file extension.
	ErrUnsupported = errors.New("unsupported file type")

	// ErrNilTree is returned when the grammar parser produced no tree.
	ErrNilTree = errors.New("parser returned no syntax tree")
)

// ParseError reports that a single file could not be turned into IR. It is
// terminal for that file and never retried.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Registry maps file extensions to adapters. Later registrations win for
// extensions claimed twice.
type Registry struct {
	byExt map[string]Adapter
}

// NewRegistry returns a Registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byExt: make(map[string]Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// DefaultRegistry returns a Registry with the TypeScript, TSX/JavaScript, Go,
// Python and Rust adapters.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewTypeScriptAdapter(),
		NewTSXAdapter(),
		NewGoAdapter(),
		NewPythonAdapter(),
		NewRustAdapter(),
	)
}

// Register adds a to the registry under each of its extensions.
func (r *Registry) Register(a Adapter) {
	for _, ext := range a.MatchExtensions() {
		r.byExt[strings.ToLower(ext)] = a
	}
}

// For returns the adapter registered for path's extension.
func (r *Registry) For(path string) (Adapter, bool) {
	a, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return a, ok
}

// Supports reports whether some adapter handles path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.For(path)
	return ok
}

// Extensions returns every registered extension in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse dispatches path to its adapter. Failures are returned as *ParseError.
func (r *Registry) Parse(path string, source []byte) (*ir.Module, error) {
	a, ok := r.For(path)
	if !ok {
		return nil, &ParseError{Path: path, Err: ErrUnsupported}
	}
	m, err := a.Parse(path, source)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return m, nil
}

// DetectLanguage names the language of path from its extension, or
// "unknown".
func DetectLanguage(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "ts", "mts", "cts":
		return "typescript"
	case "tsx":
		return "tsx"
	case "js", "jsx", "mjs", "cjs":
		return "javascript"
	case "go":
		return "go"
	case "py", "pyi":
		return "python"
	case "rs":
		return "rust"
	default:
		return "unknown"
	}
}
