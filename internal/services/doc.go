// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and segment positions
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the statuses recorded in render history (failed vs invalid).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
