package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/dusk-indust/codescope/internal/rules"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// ---------------------------------------------------------------------------
// Defaults and severity
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 300, cfg.Rules.MaxFileLOC)
	assert.Equal(t, 40, cfg.Rules.MaxFunctionLOC)
	assert.Equal(t, 10, cfg.Rules.MaxComplexity)
	assert.Equal(t, 20, cfg.Rules.MaxFunctionsPerFile)
	assert.Equal(t, 30, cfg.Rules.MaxTypesPerFile)
	assert.Equal(t, 7, cfg.Rules.MaxFanOut)
	assert.Equal(t, 15, cfg.Rules.MaxImports)
	assert.Equal(t, "Warning", cfg.Rules.Severity.MaxComplexity)
	assert.Equal(t, int64(1<<20), cfg.Analysis.MaxFileSize)
	assert.True(t, cfg.Analysis.Suggest)
	assert.True(t, cfg.Cache.Enabled)
	assert.NoError(t, Validate(cfg))
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want ir.Severity
	}{
		{"Error", ir.SeverityError},
		{"ERROR", ir.SeverityError},
		{"error", ir.SeverityError},
		{"Warning", ir.SeverityWarning},
		{" warning ", ir.SeverityWarning},
		{"Info", ir.SeverityInfo},
		{"", ir.SeverityInfo},
		{"fatal", ir.SeverityInfo},
		{"warn", ir.SeverityInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSeverity(tt.in))
		})
	}
}

func TestRegistry_OrderAndThresholds(t *testing.T) {
	cfg := Default()
	cfg.Rules.MaxComplexity = 3
	cfg.Rules.Severity.MaxComplexity = "error"
	cfg.Rules.Severity.MaxFileLOC = "nonsense"

	reg := cfg.Registry()
	var names []string
	for _, r := range reg.Rules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"file_size", "function_size", "complexity", "coupling", "structure_stats"}, names)

	cx, ok := reg.Rules()[2].(*rules.ComplexityRule)
	require.True(t, ok)
	assert.Equal(t, 3, cx.Max)
	assert.Equal(t, ir.SeverityError, cx.Severity)

	fs, ok := reg.Rules()[0].(*rules.FileSizeRule)
	require.True(t, ok)
	assert.Equal(t, ir.SeverityInfo, fs.Severity, "unknown severity strings degrade to info")
}

func TestRegistry_TypeDefinitionSeverity(t *testing.T) {
	cfg := Default()
	cfg.Rules.MaxTypesPerFile = 0
	cfg.Rules.Severity.MaxTypesPerFile = "error"
	cfg.Rules.Severity.MaxFunctionsPerFile = "info"

	m := ir.NewModule("a.ts")
	m.Symbols = append(m.Symbols, ir.Symbol{Kind: ir.SymbolKindEnum, Name: "Color", LOC: 3, Metrics: []ir.QualityMetric{}})
	cfg.Registry().Apply(m)

	var found bool
	for _, q := range m.Metrics {
		if q.Name != "type_definition_count" {
			continue
		}
		found = true
		assert.Equal(t, 1.0, q.Value)
		assert.Equal(t, ir.SeverityError, q.Severity)
	}
	assert.True(t, found, "type_definition_count reported")
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	p := writeConfig(t, t.TempDir(), ".codescope.toml", `
[rules]
max_file_loc = 500
max_complexity = 15

[rules.severity]
max_complexity = "Error"

[analysis]
workers = 4
exclude = ["vendor/**", "**/*.gen.ts"]
suggest = false

[cache]
enabled = false
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Rules.MaxFileLOC)
	assert.Equal(t, 15, cfg.Rules.MaxComplexity)
	assert.Equal(t, 40, cfg.Rules.MaxFunctionLOC, "unset keys keep defaults")
	assert.Equal(t, "Error", cfg.Rules.Severity.MaxComplexity)
	assert.Equal(t, "Warning", cfg.Rules.Severity.MaxFileLOC)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, []string{"vendor/**", "**/*.gen.ts"}, cfg.Analysis.Exclude)
	assert.False(t, cfg.Analysis.Suggest)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, ".codescope/cache.db", cfg.Cache.Path)
}

func TestLoad_YAML(t *testing.T) {
	p := writeConfig(t, t.TempDir(), ".codescope.yaml", `
rules:
  max_fan_out: 3
  severity:
    max_fan_out: error
log:
  level: debug
  format: json
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Rules.MaxFanOut)
	assert.Equal(t, "error", cfg.Rules.Severity.MaxFanOut)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	p := writeConfig(t, t.TempDir(), ".codescope.toml", "[rules]\nmax_file_loc = 500\n")
	t.Setenv("CODESCOPE_RULES_MAX_FILE_LOC", "900")
	t.Setenv("CODESCOPE_RULES_SEVERITY_MAX_FILE_LOC", "Error")
	t.Setenv("CODESCOPE_LOG_LEVEL", "debug")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Rules.MaxFileLOC, "environment wins over the file")
	assert.Equal(t, "Error", cfg.Rules.Severity.MaxFileLOC)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		is   error
	}{
		{"missing file", filepath.Join(dir, "absent.toml"), nil},
		{"malformed toml", writeConfig(t, dir, "bad.toml", "[rules\nmax_file_loc = "), nil},
		{"negative threshold", writeConfig(t, dir, "neg.toml", "[rules]\nmax_complexity = -1\n"), ErrNegativeThreshold},
		{"bad log format", writeConfig(t, dir, "log.toml", "[log]\nformat = \"xml\"\n"), ErrInvalidLogFormat},
		{"cache without capacity", writeConfig(t, dir, "cache.toml", "[cache]\ncapacity = 0\n"), ErrInvalidCache},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path)
			require.Error(t, err)
			assert.Nil(t, cfg)

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.path, ce.Path)
			assert.Contains(t, err.Error(), tt.path)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Discover(dir))

	yml := writeConfig(t, dir, ".codescope.yml", "rules:\n  max_imports: 1\n")
	assert.Equal(t, yml, Discover(dir))

	toml := writeConfig(t, dir, ".codescope.toml", "[rules]\nmax_imports = 2\n")
	assert.Equal(t, toml, Discover(dir), "toml takes precedence")
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("discovers config in dir", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ".codescope.toml", "[rules]\nmax_imports = 2\n")
		cfg := LoadOrDefault(dir, "", nil)
		assert.Equal(t, 2, cfg.Rules.MaxImports)
	})

	t.Run("explicit path wins", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ".codescope.toml", "[rules]\nmax_imports = 2\n")
		other := writeConfig(t, t.TempDir(), "custom.toml", "[rules]\nmax_imports = 9\n")
		cfg := LoadOrDefault(dir, other, nil)
		assert.Equal(t, 9, cfg.Rules.MaxImports)
	})

	t.Run("malformed file degrades with a warning", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, ".codescope.toml", "not = [valid")

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		cfg := LoadOrDefault(dir, "", logger)

		assert.Equal(t, Default(), cfg)
		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "using default configuration")
	})

	t.Run("no config", func(t *testing.T) {
		assert.Equal(t, Default(), LoadOrDefault(t.TempDir(), "", nil))
	})
}

// ---------------------------------------------------------------------------
// WriteDefault
// ---------------------------------------------------------------------------

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefault(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".codescope.toml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[rules.severity]")
	assert.Contains(t, string(data), "max_file_loc = 300")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "written defaults load back unchanged")

	_, err = WriteDefault(dir, false)
	assert.ErrorIs(t, err, ErrConfigExists)

	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))
	_, err = WriteDefault(dir, true)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "junk")
}
