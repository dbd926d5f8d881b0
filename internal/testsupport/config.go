// Package testsupport provides shared helpers for package tests: per-test
// configs rooted in temp directories, synthetic documents, and in-memory
// byte sources and decoders for driving the pipeline without real files.
package testsupport

import (
	"path/filepath"
	"testing"

	"asepack/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.CatalogPath = filepath.Join(base, "catalog.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}
