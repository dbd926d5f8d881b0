// Package config loads, normalizes, and validates the TOML configuration
// shared by the asepack CLI and pipeline.
package config
