package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codescope/internal/config"
	"github.com/dusk-indust/codescope/internal/logging"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// globalFlags are shared by every command. Empty log settings defer to the
// [log] section of the configuration.
type globalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// app carries the global flags and the logger of one invocation.
type app struct {
	flags  globalFlags
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "codescope",
		Short: "Structural code analysis for TypeScript, Go, Python and Rust",
		Long: `codescope parses source files into a language-neutral IR, resolves their
imports into a dependency graph and reports size, complexity and coupling
findings against configurable thresholds.

Examples:
  codescope analyze ./src
  codescope analyze --format md src/app.ts
  codescope graph --format cycles .
  codescope serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigPath, "config", "", "config file (default: .codescope.toml in the target directory)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.LogFormat, "log-format", "", "log format: text or json")

	root.AddCommand(
		newAnalyzeCmd(a),
		newInitCmd(a),
		newGraphCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration for dir and builds the logger from it. The
// log flags override the configured level and format.
func (a *app) load(cmd *cobra.Command, dir string) *config.Config {
	stderr := cmd.ErrOrStderr()
	boot := logging.New(stderr, logging.ParseLevel(a.flags.LogLevel), a.flags.LogFormat)
	cfg := config.LoadOrDefault(dir, a.flags.ConfigPath, boot)

	level, format := cfg.Log.Level, cfg.Log.Format
	if a.flags.LogLevel != "" {
		level = a.flags.LogLevel
	}
	if a.flags.LogFormat != "" {
		format = a.flags.LogFormat
	}
	a.logger = logging.New(stderr, logging.ParseLevel(level), format)
	return cfg
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the codescope version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "codescope %s\n", version)
			return err
		},
	}
}
