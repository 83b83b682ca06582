// Package discover finds the source files of a directory tree that the
// analyzer should parse.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dusk-indust/codescope/internal/adapter"
)

// FileEntry is one discovered file.
type FileEntry struct {
	Path     string // slash-separated, relative to the root
	Abs      string
	Size     int64
	Language string
	Info     fs.FileInfo
}

// Skipped is a matching file left out of the result.
type Skipped struct {
	Path   string
	Reason string
}

// Result lists discovered files sorted by path.
type Result struct {
	Files   []FileEntry
	Skipped []Skipped
}

// Options filter the walk. Zero values mean no limit.
type Options struct {
	// Extensions restricts files to these extensions (".ts"), matched
	// case-insensitively. Empty accepts every extension.
	Extensions []string

	// Exclude holds glob patterns matched against root-relative paths.
	Exclude []string

	// MaxDepth bounds directory nesting; files directly under the root are at
	// depth 1.
	MaxDepth int

	// MaxFileSize skips larger files, in bytes.
	MaxFileSize int64
}

var skipDirs = map[string]struct{}{
	"node_modules":  {},
	"vendor":        {},
	"target":        {},
	"dist":          {},
	"build":         {},
	"__pycache__":   {},
	"venv":          {},
	".venv":         {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	".tox":          {},
	".mypy_cache":   {},
	".pytest_cache": {},
}

// SkipDir reports whether a directory named name is never walked: hidden
// directories and well-known dependency or build output directories.
func SkipDir(name string) bool {
	_, skip := skipDirs[name]
	return skip || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

type matcher struct {
	exts    map[string]bool
	exclude []excludePattern
	gi      *ignore.GitIgnore
}

type excludePattern struct {
	g        glob.Glob
	rootOnly glob.Glob // pattern without a leading "**/", for root-level paths
}

func newMatcher(root string, opts Options) (*matcher, error) {
	m := &matcher{exts: make(map[string]bool, len(opts.Extensions))}
	for _, e := range opts.Extensions {
		m.exts[strings.ToLower(e)] = true
	}
	for _, p := range opts.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("discover: exclude pattern %q: %w", p, err)
		}
		ep := excludePattern{g: g}
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			if rg, err := glob.Compile(rest, '/'); err == nil {
				ep.rootOnly = rg
			}
		}
		m.exclude = append(m.exclude, ep)
	}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		m.gi = gi
	}
	return m, nil
}

func (m *matcher) excluded(rel string, dir bool) bool {
	if m.gi != nil && (m.gi.MatchesPath(rel) || (dir && m.gi.MatchesPath(rel+"/"))) {
		return true
	}
	for _, ep := range m.exclude {
		if ep.g.Match(rel) || (dir && ep.g.Match(rel+"/**")) {
			return true
		}
		if ep.rootOnly != nil && !strings.Contains(rel, "/") && ep.rootOnly.Match(rel) {
			return true
		}
	}
	return false
}

func (m *matcher) accepts(name string) bool {
	if len(m.exts) == 0 {
		return true
	}
	return m.exts[strings.ToLower(filepath.Ext(name))]
}

// Files walks root and returns the files to analyze. Hidden entries,
// well-known dependency and build directories, .gitignore matches and
// excluded paths are skipped. Symlinks are not followed.
func Files(root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("discover: %s is not a directory", root)
	}

	m, err := newMatcher(root, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // unreadable entries are skipped
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()
		depth := strings.Count(rel, "/") + 1

		if d.IsDir() {
			if SkipDir(name) {
				return filepath.SkipDir
			}
			if (opts.MaxDepth > 0 && depth >= opts.MaxDepth) || m.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}
		if !m.accepts(name) || m.excluded(rel, false) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
			res.Skipped = append(res.Skipped, Skipped{
				Path:   rel,
				Reason: fmt.Sprintf("size %d exceeds limit %d", fi.Size(), opts.MaxFileSize),
			})
			return nil
		}

		res.Files = append(res.Files, FileEntry{
			Path:     rel,
			Abs:      path,
			Size:     fi.Size(),
			Language: adapter.DetectLanguage(name),
			Info:     fi,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover: walk %s: %w", root, err)
	}

	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Path < res.Files[j].Path })
	return res, nil
}
