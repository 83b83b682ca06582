package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/codescope/internal/analysis"
	"github.com/dusk-indust/codescope/internal/cache"
	"github.com/dusk-indust/codescope/internal/mcptools"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio, or streamable HTTP with --http)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "serve streamable HTTP on this address instead of stdio, e.g. :8080")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, addr string) error {
	cfg := a.load(cmd, ".")

	// Tools analyze arbitrary directories, so only the memory tier is used.
	opts := analysis.Options{Config: cfg, Logger: a.logger}
	if cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache.Capacity, nil, a.logger)
		if err != nil {
			return err
		}
		defer c.Close()
		opts.Cache = c
	}

	svc := mcptools.NewCodeScopeService(analysis.New(opts), a.logger)
	defer svc.Close()

	mcptools.Version = version
	server := mcptools.NewCodeScopeMCPServer(svc)

	if addr != "" {
		a.logger.Info("serving MCP over HTTP", "addr", addr)
		return mcptools.RunHTTP(cmd.Context(), server, addr)
	}
	return mcptools.RunStdio(cmd.Context(), server)
}
