// Package services defines shared utilities consumed by the ingestion
// pipeline and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp item names, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent error-log categories and fatal/non-fatal handling.
//   - Thin abstractions that make command execution against external tools
//     testable.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform across stages.
package services
