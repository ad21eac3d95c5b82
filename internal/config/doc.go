// Package config loads, normalizes, and validates scribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// INBOX_DIR and TRANSCRIBE_MODEL. Precedence is defaults, then file, then
// environment. The Config type centralizes every knob the CLI needs, so the
// inbox layout and external service settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
