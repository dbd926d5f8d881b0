package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	CatalogPath string `toml:"catalog_path"`
	LogDir      string `toml:"log_dir"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Packing bounds the atlas packer.
type Packing struct {
	MaxAtlasWidth  int `toml:"max_atlas_width"`
	MaxAtlasHeight int `toml:"max_atlas_height"`
	Padding        int `toml:"padding"`
}

// Workflow controls pipeline scheduling.
type Workflow struct {
	Workers        int `toml:"workers"`
	PollIntervalMS int `toml:"poll_interval_ms"`
}

// Config is the full application configuration.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`
	Packing  Packing  `toml:"packing"`
	Workflow Workflow `toml:"workflow"`
}

// DefaultConfigPath returns the expanded default config file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/asepack/config.toml")
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is
// not an error: defaults apply, and the returned bool reports whether a
// file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// EnsureDirectories creates the configured directories if missing.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.LogDir, filepath.Dir(c.Paths.CatalogPath)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
