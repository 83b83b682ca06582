// Package watch re-analyzes a directory tree when its source files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/discover"
	"github.com/dusk-indust/codescope/internal/graph"
	"github.com/dusk-indust/codescope/internal/logging"
)

// DefaultDebounce is the quiet period before a batch of changes is analyzed.
const DefaultDebounce = 300 * time.Millisecond

// Event describes one re-analysis.
type Event struct {
	// Changed lists the module paths touched since the previous analysis.
	Changed []string

	// Removed lists changed paths that no longer exist.
	Removed []string

	// Impact holds the modules importing Changed, directly or transitively.
	Impact graph.Impact

	Report *analysis.Report
}

// Options configure a Watcher.
type Options struct {
	Debounce time.Duration // DefaultDebounce when zero
	Logger   *slog.Logger

	// OnChange is called after every re-analysis, from the Run goroutine.
	OnChange func(Event)
}

// Watcher analyzes root once, then again after each batch of file changes.
type Watcher struct {
	analyzer *analysis.Analyzer
	root     string
	opts     Options
	logger   *slog.Logger
	fsw      *fsnotify.Watcher

	mu     sync.RWMutex
	report *analysis.Report
}

// New watches every directory under root that analysis would walk.
func New(a *analysis.Analyzer, root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		analyzer: a,
		root:     root,
		opts:     opts,
		logger:   logging.OrDiscard(opts.Logger),
		fsw:      fsw,
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree adds dir and its walkable subdirectories to the watch list.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && discover.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Report returns the most recent analysis, or nil before the first one.
func (w *Watcher) Report() *analysis.Report {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.report
}

// Run performs the initial analysis and then re-analyzes after changes until
// ctx is canceled. It closes the watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if _, err := w.analyze(ctx); err != nil {
		return err
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if rel, ok := w.relevant(ev); ok {
				pending[rel] = true
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if err := w.reanalyze(ctx, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Warn("re-analysis failed", "err", err)
			}
		}
	}
}

// relevant maps ev to a module path when it touches a supported file. New
// directories are added to the watch list.
func (w *Watcher) relevant(ev fsnotify.Event) (string, bool) {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !discover.SkipDir(filepath.Base(ev.Name)) {
				if err := w.addTree(ev.Name); err != nil {
					w.logger.Warn("watch new directory", "path", ev.Name, "err", err)
				}
			}
			return "", false
		}
	}
	if !w.analyzer.Supports(ev.Name) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) analyze(ctx context.Context) (*analysis.Report, error) {
	report, err := w.analyzer.AnalyzeDir(ctx, w.root)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.report = report
	w.mu.Unlock()
	return report, nil
}

func (w *Watcher) reanalyze(ctx context.Context, changed []string) error {
	report, err := w.analyze(ctx)
	if err != nil {
		return err
	}

	ev := Event{Changed: changed, Removed: []string{}, Report: report}
	for _, p := range changed {
		m := report.Module(p)
		if m == nil {
			_, err := os.Stat(filepath.Join(w.root, filepath.FromSlash(p)))
			if errors.Is(err, fs.ErrNotExist) {
				ev.Removed = append(ev.Removed, p)
				w.logger.Info("module removed", "path", p)
			} else {
				// Still on disk, but discovery or parsing dropped it.
				w.logger.Debug("module not analyzed", "path", p)
			}
			continue
		}
		findings := 0
		for _, q := range m.Findings() {
			if !q.Severity.Breach() {
				continue
			}
			findings++
			msg := ""
			if q.Message != nil {
				msg = *q.Message
			}
			w.logger.Warn("finding", "path", p, "metric", q.Name, "severity", q.Severity, "value", q.Value, "message", msg)
		}
		w.logger.Info("module analyzed", "path", p, "loc", m.LOC, "symbols", len(m.Symbols), "findings", findings)
	}

	ev.Impact = report.Graph.Impact(changed)
	if len(ev.Impact.Transitive) > 0 {
		w.logger.Info("change impact",
			"direct", len(ev.Impact.Direct),
			"transitive", len(ev.Impact.Transitive),
			"risk", ev.Impact.Risk,
		)
	}

	if w.opts.OnChange != nil {
		w.opts.OnChange(ev)
	}
	return nil
}
