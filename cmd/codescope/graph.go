package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/export"
	"github.com/dusk-indust/codescope/internal/graph"
)

type graphFlags struct {
	Format string
	DB     string
}

func newGraphCmd(a *app) *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Print the import graph of a directory",
		Long: `Analyze a directory and print its resolved import graph.

Formats:
  mermaid  Mermaid flowchart grouped by cluster
  cycles   import cycles, one per line
  order    modules ordered so that importers precede their imports

With --db the snapshot (modules, symbols, imports, clusters) is also
persisted into a KuzuDB database directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return a.runGraph(cmd, path, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "mermaid", "output: mermaid, cycles, order")
	cmd.Flags().StringVar(&flags.DB, "db", "", "persist the snapshot into a KuzuDB directory")
	return cmd
}

func (a *app) runGraph(cmd *cobra.Command, path string, flags graphFlags) error {
	switch flags.Format {
	case "mermaid", "cycles", "order":
	default:
		return fmt.Errorf("unknown graph format %q (want mermaid, cycles, order)", flags.Format)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("graph: %s is not a directory", path)
	}

	cfg := a.load(cmd, path)
	report, err := analysis.New(analysis.Options{Config: cfg, Logger: a.logger}).AnalyzeDir(cmd.Context(), path)
	if err != nil {
		return err
	}

	if flags.DB != "" {
		if err := a.saveSnapshot(cmd, flags.DB, report); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch flags.Format {
	case "cycles":
		return writeCycles(out, report.Cycles)
	case "order":
		order, err := report.Graph.TopologicalOrder()
		if err != nil {
			return err
		}
		for _, p := range order {
			fmt.Fprintln(out, p)
		}
		return nil
	}
	_, err = io.WriteString(out, export.Mermaid(report.Graph, report.Clusters))
	return err
}

func writeCycles(w io.Writer, cycles [][]string) error {
	if len(cycles) == 0 {
		_, err := fmt.Fprintln(w, "no import cycles")
		return err
	}
	noun := "cycles"
	if len(cycles) == 1 {
		noun = "cycle"
	}
	fmt.Fprintf(w, "%d import %s:\n", len(cycles), noun)
	for _, c := range cycles {
		if _, err := fmt.Fprintf(w, "  %s\n", strings.Join(c, " <-> ")); err != nil {
			return err
		}
	}
	return nil
}

// saveSnapshot writes report into the KuzuDB database at dir.
func (a *app) saveSnapshot(cmd *cobra.Command, dir string, report *analysis.Report) error {
	ctx := cmd.Context()
	store, err := graph.OpenKuzuStore(dir)
	if err != nil {
		return fmt.Errorf("open graph: %w", err)
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	if err := graph.Save(ctx, store, report.Graph, report.Modules); err != nil {
		return err
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("snapshot saved",
		"db", dir,
		"modules", stats.Modules,
		"symbols", stats.Symbols,
		"imports", stats.Imports,
		"clusters", stats.Clusters,
	)
	return nil
}
