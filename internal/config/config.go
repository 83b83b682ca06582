// Package config loads codescope settings from .codescope.toml (or YAML)
// with CODESCOPE_* environment overrides, and builds the rule registry.
package config

import (
	"strings"

	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/rules"
)

// Config is the complete codescope configuration.
type Config struct {
	Rules    RulesConfig    `mapstructure:"rules" toml:"rules" yaml:"rules"`
	Analysis AnalysisConfig `mapstructure:"analysis" toml:"analysis" yaml:"analysis"`
	Cache    CacheConfig    `mapstructure:"cache" toml:"cache" yaml:"cache"`
	Log      LogConfig      `mapstructure:"log" toml:"log" yaml:"log"`
}

// RulesConfig holds rule thresholds.
type RulesConfig struct {
	MaxFileLOC          int            `mapstructure:"max_file_loc" toml:"max_file_loc" yaml:"max_file_loc"`
	MaxFunctionLOC      int            `mapstructure:"max_function_loc" toml:"max_function_loc" yaml:"max_function_loc"`
	MaxComplexity       int            `mapstructure:"max_complexity" toml:"max_complexity" yaml:"max_complexity"`
	MaxFunctionsPerFile int            `mapstructure:"max_functions_per_file" toml:"max_functions_per_file" yaml:"max_functions_per_file"`
	MaxTypesPerFile     int            `mapstructure:"max_types_per_file" toml:"max_types_per_file" yaml:"max_types_per_file"`
	MaxFanOut           int            `mapstructure:"max_fan_out" toml:"max_fan_out" yaml:"max_fan_out"`
	MaxImports          int            `mapstructure:"max_imports" toml:"max_imports" yaml:"max_imports"`
	Severity            SeverityConfig `mapstructure:"severity" toml:"severity" yaml:"severity"`
}

// SeverityConfig names the severity reported when a threshold is exceeded.
// Values are matched case-insensitively by ParseSeverity.
type SeverityConfig struct {
	MaxFileLOC          string `mapstructure:"max_file_loc" toml:"max_file_loc" yaml:"max_file_loc"`
	MaxFunctionLOC      string `mapstructure:"max_function_loc" toml:"max_function_loc" yaml:"max_function_loc"`
	MaxComplexity       string `mapstructure:"max_complexity" toml:"max_complexity" yaml:"max_complexity"`
	MaxFanOut           string `mapstructure:"max_fan_out" toml:"max_fan_out" yaml:"max_fan_out"`
	MaxFunctionsPerFile string `mapstructure:"max_functions_per_file" toml:"max_functions_per_file" yaml:"max_functions_per_file"`
	MaxTypesPerFile     string `mapstructure:"max_types_per_file" toml:"max_types_per_file" yaml:"max_types_per_file"`
}

// AnalysisConfig controls file discovery and the batch pipeline.
type AnalysisConfig struct {
	Workers     int      `mapstructure:"workers" toml:"workers" yaml:"workers"`                   // 0 = GOMAXPROCS
	MaxFileSize int64    `mapstructure:"max_file_size" toml:"max_file_size" yaml:"max_file_size"` // bytes, 0 = unlimited
	MaxDepth    int      `mapstructure:"max_depth" toml:"max_depth" yaml:"max_depth"`             // 0 = unlimited
	Exclude     []string `mapstructure:"exclude" toml:"exclude" yaml:"exclude"`
	Suggest     bool     `mapstructure:"suggest" toml:"suggest" yaml:"suggest"`
}

// CacheConfig controls the parse cache.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled" toml:"enabled" yaml:"enabled"`
	Path     string `mapstructure:"path" toml:"path" yaml:"path"` // relative to the analyzed root
	Capacity int    `mapstructure:"capacity" toml:"capacity" yaml:"capacity"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level  string `mapstructure:"level" toml:"level" yaml:"level"`
	Format string `mapstructure:"format" toml:"format" yaml:"format"` // "text" or "json"
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rules: RulesConfig{
			MaxFileLOC:          rules.DefaultMaxFileLOC,
			MaxFunctionLOC:      rules.DefaultMaxFunctionLOC,
			MaxComplexity:       rules.DefaultMaxComplexity,
			MaxFunctionsPerFile: rules.DefaultMaxFunctionsPerFile,
			MaxTypesPerFile:     rules.DefaultMaxTypesPerFile,
			MaxFanOut:           rules.DefaultMaxFanOut,
			MaxImports:          rules.DefaultMaxImports,
			Severity: SeverityConfig{
				MaxFileLOC:          "Warning",
				MaxFunctionLOC:      "Warning",
				MaxComplexity:       "Warning",
				MaxFanOut:           "Warning",
				MaxFunctionsPerFile: "Warning",
				MaxTypesPerFile:     "Warning",
			},
		},
		Analysis: AnalysisConfig{
			MaxFileSize: 1 << 20,
			Exclude:     []string{"**/*.d.ts"},
			Suggest:     true,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Path:     ".codescope/cache.db",
			Capacity: 4096,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ParseSeverity maps "error" and "warning" (any case) to their severities.
// Everything else is Info.
func ParseSeverity(s string) ir.Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return ir.SeverityError
	case "warning":
		return ir.SeverityWarning
	}
	return ir.SeverityInfo
}

// Registry builds the built-in rules from c in the order file_size,
// function_size, complexity, coupling, structure_stats.
func (c *Config) Registry() *rules.Registry {
	r, sev := c.Rules, c.Rules.Severity
	return rules.NewRegistry(
		&rules.FileSizeRule{MaxLOC: r.MaxFileLOC, Severity: ParseSeverity(sev.MaxFileLOC)},
		&rules.FunctionSizeRule{MaxLOC: r.MaxFunctionLOC, Severity: ParseSeverity(sev.MaxFunctionLOC)},
		&rules.ComplexityRule{Max: r.MaxComplexity, Severity: ParseSeverity(sev.MaxComplexity)},
		&rules.CouplingRule{MaxFanOut: r.MaxFanOut, MaxImports: r.MaxImports, Severity: ParseSeverity(sev.MaxFanOut)},
		&rules.StructureStatsRule{
			MaxFunctions:  r.MaxFunctionsPerFile,
			MaxTypes:      r.MaxTypesPerFile,
			Severity:      ParseSeverity(sev.MaxFunctionsPerFile),
			TypesSeverity: ParseSeverity(sev.MaxTypesPerFile),
		},
	)
}
