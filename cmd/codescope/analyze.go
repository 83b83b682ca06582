package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/cache"
	"github.com/dusk-indust/codescope/internal/config"
	"github.com/dusk-indust/codescope/internal/export"
)

type analyzeFlags struct {
	Format     string
	Output     string
	Sort       string
	MaxDepth   int
	NoSuggest  bool
	NoCache    bool
	NoProgress bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a source file or every supported file under a directory",
		Long: `Analyze a source file or a directory tree.

A file is reported on its own. A directory is walked (respecting .gitignore
and the configured excludes), its imports are resolved into a dependency
graph, and the report adds a summary, import cycles and clusters.

Formats: table, json, yaml, md, mermaid (directories only).
Sort keys for symbols: loc, name, complexity, issues.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return a.runAnalyze(cmd, path, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.Format, "format", "f", "table", "output format: table, json, yaml, md, mermaid")
	f.StringVarP(&flags.Output, "output", "o", "", "write the report to a file instead of stdout")
	f.StringVar(&flags.Sort, "sort", "loc", "symbol order: loc, name, complexity, issues")
	f.IntVar(&flags.MaxDepth, "max-depth", 0, "maximum directory depth, 0 for unlimited (overrides config)")
	f.BoolVar(&flags.NoSuggest, "no-suggest", false, "omit refactoring suggestions")
	f.BoolVar(&flags.NoCache, "no-cache", false, "disable the parse cache")
	f.BoolVar(&flags.NoProgress, "no-progress", false, "hide the progress bar")
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, path string, flags analyzeFlags) error {
	format, err := export.ParseFormat(flags.Format)
	if err != nil {
		return err
	}
	sortBy, err := export.ParseSort(flags.Sort)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	root := path
	if !info.IsDir() {
		root = filepath.Dir(path)
	}

	cfg := a.load(cmd, root)
	if cmd.Flags().Changed("max-depth") {
		cfg.Analysis.MaxDepth = flags.MaxDepth
	}
	if flags.NoSuggest {
		cfg.Analysis.Suggest = false
	}
	if flags.NoCache {
		cfg.Cache.Enabled = false
	}

	opts := analysis.Options{Config: cfg, Logger: a.logger}
	c, err := openCache(root, cfg, a.logger)
	if err != nil {
		return err
	}
	if c != nil {
		defer c.Close()
		opts.Cache = c
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), flags.Output)
	if err != nil {
		return err
	}
	defer closeOut()
	exportOpts := export.Options{Sort: sortBy}

	if !info.IsDir() {
		m, err := analysis.New(opts).AnalyzeFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		return export.WriteModule(out, m, format, exportOpts)
	}

	if !flags.NoProgress {
		bar := startProgress(cmd.ErrOrStderr(), a.logger)
		opts.OnProgress = bar.emit
		defer bar.stop()
	}
	report, err := analysis.New(opts).AnalyzeDir(cmd.Context(), path)
	if err != nil {
		return err
	}
	if c != nil {
		hits, misses := c.Stats()
		a.logger.Debug("cache stats", "hits", hits, "misses", misses)
	}
	return export.WriteReport(out, report, format, exportOpts)
}

// openCache returns the parse cache configured for root, or nil when caching
// is disabled. A persistent store that cannot be opened leaves the cache
// memory-only.
func openCache(root string, cfg *config.Config, logger *slog.Logger) (*cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	var store cache.Store
	if cfg.Cache.Path != "" {
		dbPath := cfg.Cache.Path
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(root, dbPath)
		}
		s, err := cache.OpenSQLite(dbPath)
		if err != nil {
			logger.Warn("persistent cache unavailable", "path", dbPath, "err", err)
		} else {
			store = s
		}
	}
	c, err := cache.New(cfg.Cache.Capacity, store, logger)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return c, nil
}

// openOutput returns stdout, or the file at path when one is given.
func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// progress drives a progress bar from analyzer events. The bar is created
// on the first event, once the batch size is known.
type progress struct {
	reporter *analysis.ProgressReporter
	done     chan struct{}
}

func startProgress(w io.Writer, logger *slog.Logger) *progress {
	p := &progress{
		reporter: analysis.NewProgressReporter(256),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		var bar *progressbar.ProgressBar
		for ev := range p.reporter.Subscribe() {
			logger.Debug(analysis.FormatProgress(ev))
			if bar == nil {
				bar = progressbar.NewOptions(ev.Total,
					progressbar.OptionSetWriter(w),
					progressbar.OptionSetDescription("Analyzing"),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
					progressbar.OptionSetItsString("files/s"),
					progressbar.OptionThrottle(65*time.Millisecond),
					progressbar.OptionClearOnFinish(),
				)
			}
			if ev.Done() {
				_ = bar.Add(1)
			}
		}
		if bar != nil {
			_ = bar.Finish()
		}
	}()
	return p
}

func (p *progress) emit(ev analysis.ProgressEvent) {
	p.reporter.Emit(ev)
}

// stop closes the event stream and waits for the bar to finish. It must run
// after the analysis has returned.
func (p *progress) stop() {
	p.reporter.Close()
	<-p.done
}
