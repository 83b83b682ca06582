package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrConfigExists is returned by WriteDefault when the file is present and
// overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

const header = "# codescope configuration. Environment variables prefixed with\n" +
	"# CODESCOPE_ override any key, e.g. CODESCOPE_RULES_MAX_FILE_LOC=500.\n\n"

// WriteDefault writes the default configuration to dir/.codescope.toml and
// returns the path written.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, FileNames[0])
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("write %s: %w", path, ErrConfigExists)
	}

	f, err := os.Create(path)
	if err != nil {
		return path, fmt.Errorf("write %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(header); err != nil {
		return path, fmt.Errorf("write %s: %w", path, err)
	}
	if err := toml.NewEncoder(w).Encode(Default()); err != nil {
		return path, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return path, fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}
