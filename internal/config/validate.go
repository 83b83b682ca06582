package config

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeThreshold indicates a rule threshold below zero.
	ErrNegativeThreshold = errors.New("negative threshold")

	// ErrInvalidAnalysis indicates a negative worker, size or depth limit.
	ErrInvalidAnalysis = errors.New("invalid analysis settings")

	// ErrInvalidCache indicates an enabled cache without a usable path or capacity.
	ErrInvalidCache = errors.New("invalid cache settings")

	// ErrInvalidLogFormat indicates a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Validate reports every invalid field of cfg joined into one error.
func Validate(cfg *Config) error {
	var errs []error

	thresholds := []struct {
		key   string
		value int
	}{
		{"rules.max_file_loc", cfg.Rules.MaxFileLOC},
		{"rules.max_function_loc", cfg.Rules.MaxFunctionLOC},
		{"rules.max_complexity", cfg.Rules.MaxComplexity},
		{"rules.max_functions_per_file", cfg.Rules.MaxFunctionsPerFile},
		{"rules.max_types_per_file", cfg.Rules.MaxTypesPerFile},
		{"rules.max_fan_out", cfg.Rules.MaxFanOut},
		{"rules.max_imports", cfg.Rules.MaxImports},
	}
	for _, th := range thresholds {
		if th.value < 0 {
			errs = append(errs, fmt.Errorf("%w: %s = %d", ErrNegativeThreshold, th.key, th.value))
		}
	}

	a := cfg.Analysis
	if a.Workers < 0 || a.MaxFileSize < 0 || a.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: workers, max_file_size and max_depth must be >= 0", ErrInvalidAnalysis))
	}

	if cfg.Cache.Enabled && (cfg.Cache.Path == "" || cfg.Cache.Capacity <= 0) {
		errs = append(errs, fmt.Errorf("%w: enabled cache needs a path and a positive capacity", ErrInvalidCache))
	}

	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, cfg.Log.Format))
	}

	return errors.Join(errs...)
}
