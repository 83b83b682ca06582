// Package analysis runs the per-file pipeline (parse, graph, rules) over
// single files and whole directory trees.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/codescope/internal/adapter"
	"github.com/dusk-indust/codescope/internal/cache"
	"github.com/dusk-indust/codescope/internal/config"
	"github.com/dusk-indust/codescope/internal/discover"
	"github.com/dusk-indust/codescope/internal/graph"
	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/logging"
	"github.com/dusk-indust/codescope/internal/metrics"
	"github.com/dusk-indust/codescope/internal/rules"
)

// Options wires an Analyzer. Every field is optional.
type Options struct {
	Config   *config.Config    // config.Default() when nil
	Adapters *adapter.Registry // adapter.DefaultRegistry() when nil
	Rules    *rules.Registry   // Config.Registry() when nil
	Cache    *cache.Cache
	Logger   *slog.Logger

	// OnProgress is called from worker goroutines; it must be safe for
	// concurrent use.
	OnProgress func(ProgressEvent)
}

// Analyzer turns source files into rule-checked Module IR. It is safe for
// concurrent use.
type Analyzer struct {
	cfg        *config.Config
	adapters   *adapter.Registry
	rules      *rules.Registry
	cache      *cache.Cache
	logger     *slog.Logger
	onProgress func(ProgressEvent)
}

// New returns an Analyzer built from opts.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		cfg:        opts.Config,
		adapters:   opts.Adapters,
		rules:      opts.Rules,
		cache:      opts.Cache,
		logger:     logging.OrDiscard(opts.Logger),
		onProgress: opts.OnProgress,
	}
	if a.cfg == nil {
		a.cfg = config.Default()
	}
	if a.adapters == nil {
		a.adapters = adapter.DefaultRegistry()
	}
	if a.rules == nil {
		a.rules = a.cfg.Registry()
	}
	return a
}

// Config returns the configuration the analyzer runs with.
func (a *Analyzer) Config() *config.Config {
	return a.cfg
}

// Supports reports whether some adapter handles path.
func (a *Analyzer) Supports(path string) bool {
	return a.adapters.Supports(path)
}

// AnalyzeSource builds the Module IR of source as if read from path. The
// module has no graph context, so its fan-in is zero.
func (a *Analyzer) AnalyzeSource(path string, source []byte) (*ir.Module, error) {
	m, err := a.adapters.Parse(filepath.ToSlash(path), source)
	if err != nil {
		return nil, err
	}
	a.finish(m)
	return m, nil
}

// AnalyzeFile reads and analyzes the file at path.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*ir.Module, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("analyze %s: is a directory", path)
	}
	m, _, err := a.parse(ctx, path, filepath.ToSlash(path), info)
	if err != nil {
		return nil, err
	}
	a.finish(m)
	return m, nil
}

// AnalyzeDir discovers the supported files under root and analyzes them as
// one batch.
func (a *Analyzer) AnalyzeDir(ctx context.Context, root string) (*Report, error) {
	res, err := discover.Files(root, discover.Options{
		Extensions:  a.adapters.Extensions(),
		Exclude:     a.cfg.Analysis.Exclude,
		MaxDepth:    a.cfg.Analysis.MaxDepth,
		MaxFileSize: a.cfg.Analysis.MaxFileSize,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", root, err)
	}
	a.logger.Debug("discovered files", "root", root, "files", len(res.Files), "skipped", len(res.Skipped))

	report, err := a.AnalyzeFiles(ctx, root, res.Files)
	if err != nil {
		return nil, err
	}
	for _, s := range res.Skipped {
		report.Skipped = append(report.Skipped, FileError{Path: s.Path, Message: s.Reason})
	}
	return report, nil
}

// AnalyzeFiles parses files in parallel, builds their dependency graph and
// applies the rules. Modules keep the order of files. A file that cannot be
// read or parsed is recorded in Report.Errors and does not stop the batch.
// Canceling ctx stops scheduling further files and returns ctx's error.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, root string, files []discover.FileEntry) (*Report, error) {
	start := time.Now()
	total := len(files)
	parsed := make([]*ir.Module, total)
	failed := make([]error, total)

	workers := a.cfg.Analysis.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			a.emit(ProgressEvent{Path: f.Path, Index: i, Total: total, Status: ProgressWorking})

			m, cached, err := a.parse(ctx, f.Abs, f.Path, f.Info)
			if err != nil {
				failed[i] = err
				a.logger.Warn("analysis failed", "path", f.Path, "err", err)
				a.emit(ProgressEvent{Path: f.Path, Index: i, Total: total, Status: ProgressFailed, Message: err.Error()})
				return nil
			}
			parsed[i] = m

			status := ProgressComplete
			if cached {
				status = ProgressCached
			}
			a.emit(ProgressEvent{Path: f.Path, Index: i, Total: total, Status: status})
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", root, err)
	}

	report := &Report{
		ID:          uuid.NewString(),
		Root:        root,
		GeneratedAt: start.UTC(),
		Modules:     make([]*ir.Module, 0, total),
		Errors:      []FileError{},
	}
	for i, m := range parsed {
		if m != nil {
			report.Modules = append(report.Modules, m)
			continue
		}
		if failed[i] != nil {
			report.Errors = append(report.Errors, FileError{Path: files[i].Path, Message: failed[i].Error()})
		}
	}

	report.Graph = graph.Index(root, report.Modules)
	for _, m := range report.Modules {
		a.finish(m)
	}
	report.Summary = Summarize(report.Modules, len(report.Errors))
	report.Cycles = report.Graph.Cycles()
	report.Clusters = report.Graph.Clusters()

	a.logger.Info("analysis complete",
		"root", root,
		"files", report.Summary.Files,
		"failures", report.Summary.Failures,
		"findings", report.Summary.Findings.Breaches(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}

// parse returns the pre-rule IR of the file at abs, stored under the module
// path rel. The cache is consulted first; fresh results are written back.
// Cache entries are keyed by the absolute file path, so the same file seen
// under different roots shares an entry and takes the current rel.
func (a *Analyzer) parse(ctx context.Context, abs, rel string, info os.FileInfo) (*ir.Module, bool, error) {
	if !a.adapters.Supports(rel) {
		return nil, false, &adapter.ParseError{Path: rel, Err: adapter.ErrUnsupported}
	}

	var key cache.FileKey
	useCache := a.cache != nil && info != nil
	if useCache {
		full, err := filepath.Abs(abs)
		if err != nil {
			return nil, false, fmt.Errorf("resolve %s: %w", rel, err)
		}
		key = cache.KeyFor(full, info)
		m, err := a.cache.Get(ctx, key)
		if err == nil {
			m.Path = rel
			return m, true, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			a.logger.Warn("cache lookup failed", "path", rel, "err", err)
		}
	}

	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", rel, err)
	}
	m, err := a.adapters.Parse(rel, source)
	if err != nil {
		return nil, false, err
	}

	if useCache {
		if err := a.cache.Put(ctx, key, m); err != nil {
			a.logger.Warn("cache write failed", "path", rel, "err", err)
		}
	}
	return m, false, nil
}

// finish applies the rules and, when enabled, attaches suggestions.
func (a *Analyzer) finish(m *ir.Module) {
	a.rules.Apply(m)
	if a.cfg.Analysis.Suggest {
		m.Suggestions = metrics.Suggestions(m)
	}
	m.Normalize()
}

func (a *Analyzer) emit(ev ProgressEvent) {
	if a.onProgress != nil {
		a.onProgress(ev)
	}
}
