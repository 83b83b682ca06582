package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-analyze a directory whenever its source files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return a.runWatch(cmd, path, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-analyzing")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, path string, debounce time.Duration) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch: %s is not a directory", path)
	}

	cfg := a.load(cmd, path)
	opts := analysis.Options{Config: cfg, Logger: a.logger}
	c, err := openCache(path, cfg, a.logger)
	if err != nil {
		return err
	}
	if c != nil {
		defer c.Close()
		opts.Cache = c
	}

	out := cmd.OutOrStdout()
	w, err := watch.New(analysis.New(opts), path, watch.Options{
		Debounce: debounce,
		Logger:   a.logger,
		OnChange: func(ev watch.Event) { writeChange(out, ev) },
	})
	if err != nil {
		return err
	}
	a.logger.Info("watching", "root", path)
	return w.Run(cmd.Context())
}

func writeChange(w io.Writer, ev watch.Event) {
	s := ev.Report.Summary
	fmt.Fprintf(w, "[%s] %s: %d files, %d findings",
		time.Now().Format("15:04:05"), strings.Join(ev.Changed, ", "), s.Files, s.Findings.Breaches())
	if len(ev.Impact.Transitive) > 0 {
		fmt.Fprintf(w, ", affects %d modules (risk %.2f)", len(ev.Impact.Transitive), ev.Impact.Risk)
	}
	fmt.Fprintln(w)
}
