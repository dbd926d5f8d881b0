package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"asepack/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("no config file should exist in a fresh home")
	}
	if want := filepath.Join(home, ".config/asepack/config.toml"); path != want {
		t.Fatalf("expected resolved path %s, got %s", want, path)
	}
	if cfg.Workflow.Workers != 2 || cfg.Packing.MaxAtlasWidth != 2048 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !strings.HasPrefix(cfg.Paths.OutputDir, home) {
		t.Fatalf("expected output dir expanded under home, got %s", cfg.Paths.OutputDir)
	}
}

func TestLoadCustomPathOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "asepack.toml")
	body := `
[paths]
output_dir = "` + dir + `/out"

[packing]
max_atlas_width = 512
padding = 4

[workflow]
workers = 8
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing file at %s, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Packing.MaxAtlasWidth != 512 || cfg.Packing.Padding != 4 {
		t.Fatalf("unexpected packing config: %+v", cfg.Packing)
	}
	if cfg.Workflow.Workers != 8 {
		t.Fatalf("expected 8 workers, got %d", cfg.Workflow.Workers)
	}
	// Fields the file omits keep their defaults.
	if cfg.Packing.MaxAtlasHeight != 2048 {
		t.Fatalf("expected default atlas height, got %d", cfg.Packing.MaxAtlasHeight)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad log level", "[logging]\nlevel = \"loud\"\n"},
		{"bad log format", "[logging]\nformat = \"xml\"\n"},
		{"negative padding", "[packing]\npadding = -1\n"},
		{"padding exceeds atlas", "[packing]\nmax_atlas_width = 4\npadding = 2\n"},
		{"negative workers", "[workflow]\nworkers = -1\n"},
		{"malformed toml", "[packing\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected Load to fail")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("sample file should exist")
	}
	defaults := config.Default()
	if cfg.Logging != defaults.Logging || cfg.Packing != defaults.Packing || cfg.Workflow != defaults.Workflow {
		t.Fatalf("sample should match defaults, got %+v", cfg)
	}
}

func TestEnsureDirectoriesCreatesConfiguredTree(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.CatalogPath = filepath.Join(base, "db", "catalog.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, filepath.Dir(cfg.Paths.CatalogPath), cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, got %v (%v)", dir, info, err)
		}
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/sprites")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if got != filepath.Join(home, "sprites") {
		t.Fatalf("expected path under home, got %s", got)
	}
}
