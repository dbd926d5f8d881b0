package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizePacking()
	c.normalizeWorkflow()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = defaultCatalogPath
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizePacking() {
	if c.Packing.MaxAtlasWidth == 0 {
		c.Packing.MaxAtlasWidth = defaultMaxAtlasWidth
	}
	if c.Packing.MaxAtlasHeight == 0 {
		c.Packing.MaxAtlasHeight = defaultMaxAtlasHeight
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers == 0 {
		c.Workflow.Workers = defaultWorkers
	}
	if c.Workflow.PollIntervalMS == 0 {
		c.Workflow.PollIntervalMS = defaultPollIntervalMS
	}
}
