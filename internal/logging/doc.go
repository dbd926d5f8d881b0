// Package logging configures log/slog output for asepack: a compact
// colored console handler for terminals, JSON for machine consumption,
// and attr helpers with the repository's standard field keys.
package logging
