// Package main hosts the lyricvid CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the logger and
// hands work to the internal packages: render runs the pipeline, plan prints
// the segment and image layout without touching the network, check reports
// binary and directory readiness, and history lists past renders.
//
// Keep this package lean: new behaviour belongs in the internal packages and
// is surfaced here through flags and output formatting.
package main
