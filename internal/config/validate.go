package config

import "fmt"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validatePacking(); err != nil {
		return err
	}
	return c.validateWorkflow()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validatePacking() error {
	if c.Packing.MaxAtlasWidth < 1 {
		return fmt.Errorf("packing.max_atlas_width must be positive, got %d", c.Packing.MaxAtlasWidth)
	}
	if c.Packing.MaxAtlasHeight < 1 {
		return fmt.Errorf("packing.max_atlas_height must be positive, got %d", c.Packing.MaxAtlasHeight)
	}
	if c.Packing.Padding < 0 {
		return fmt.Errorf("packing.padding must not be negative, got %d", c.Packing.Padding)
	}
	if 2*c.Packing.Padding >= c.Packing.MaxAtlasWidth || 2*c.Packing.Padding >= c.Packing.MaxAtlasHeight {
		return fmt.Errorf("packing.padding %d leaves no room inside a %dx%d atlas",
			c.Packing.Padding, c.Packing.MaxAtlasWidth, c.Packing.MaxAtlasHeight)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers < 1 {
		return fmt.Errorf("workflow.workers must be positive, got %d", c.Workflow.Workers)
	}
	if c.Workflow.PollIntervalMS < 1 {
		return fmt.Errorf("workflow.poll_interval_ms must be positive, got %d", c.Workflow.PollIntervalMS)
	}
	return nil
}
