// Package storyboard turns planned segments into captioned image files.
//
// For every segment the Fetcher requests max(1, floor(duration/seconds per
// image)) pictures, writes each to <dir>/<segment>_<start>_<slot>.png,
// captions it and records a SlotResult. A failed slot is handled by the configured policy:
// skip it, stretch its siblings over the lost time, or abort the run.
package storyboard
