package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dusk-indust/codescope/internal/logging"
)

// FileNames are the config files looked up in a directory, in order.
var FileNames = []string{".codescope.toml", ".codescope.yaml", ".codescope.yml"}

// EnvPrefix prefixes every environment override, e.g.
// CODESCOPE_RULES_MAX_FILE_LOC.
const EnvPrefix = "CODESCOPE"

// ConfigError reports a config file that could not be read or is invalid.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Discover returns the first config file of FileNames present in dir, or ""
// when there is none.
func Discover(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads path over the defaults and applies environment overrides.
// An empty path loads defaults and environment only. Unreadable, malformed
// or invalid files yield a *ConfigError.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := Validate(cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// LoadOrDefault loads explicit when set, otherwise the config discovered in
// dir. Any failure is logged at Warn and the defaults are returned.
func LoadOrDefault(dir, explicit string, logger *slog.Logger) *Config {
	logger = logging.OrDiscard(logger)
	path := explicit
	if path == "" {
		path = Discover(dir)
	}

	cfg, err := Load(path)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			logger.Warn("using default configuration", "path", ce.Path, "err", ce.Err)
		} else {
			logger.Warn("using default configuration", "err", err)
		}
		return Default()
	}
	if path != "" {
		logger.Debug("loaded configuration", "path", path)
	}
	return cfg
}

// newViper returns a viper instance primed with defaults and environment
// lookups. Every key is given a default so AutomaticEnv can see it.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("rules.max_file_loc", d.Rules.MaxFileLOC)
	v.SetDefault("rules.max_function_loc", d.Rules.MaxFunctionLOC)
	v.SetDefault("rules.max_complexity", d.Rules.MaxComplexity)
	v.SetDefault("rules.max_functions_per_file", d.Rules.MaxFunctionsPerFile)
	v.SetDefault("rules.max_types_per_file", d.Rules.MaxTypesPerFile)
	v.SetDefault("rules.max_fan_out", d.Rules.MaxFanOut)
	v.SetDefault("rules.max_imports", d.Rules.MaxImports)

	v.SetDefault("rules.severity.max_file_loc", d.Rules.Severity.MaxFileLOC)
	v.SetDefault("rules.severity.max_function_loc", d.Rules.Severity.MaxFunctionLOC)
	v.SetDefault("rules.severity.max_complexity", d.Rules.Severity.MaxComplexity)
	v.SetDefault("rules.severity.max_fan_out", d.Rules.Severity.MaxFanOut)
	v.SetDefault("rules.severity.max_functions_per_file", d.Rules.Severity.MaxFunctionsPerFile)
	v.SetDefault("rules.severity.max_types_per_file", d.Rules.Severity.MaxTypesPerFile)

	v.SetDefault("analysis.workers", d.Analysis.Workers)
	v.SetDefault("analysis.max_file_size", d.Analysis.MaxFileSize)
	v.SetDefault("analysis.max_depth", d.Analysis.MaxDepth)
	v.SetDefault("analysis.exclude", d.Analysis.Exclude)
	v.SetDefault("analysis.suggest", d.Analysis.Suggest)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.capacity", d.Cache.Capacity)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	return v
}
