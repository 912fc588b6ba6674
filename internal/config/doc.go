// Package config loads, normalizes, and validates lyricvid configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file from the working directory,
// and honours environment fallbacks such as LYRICVID_IMAGE_BASE_URL. The
// Config type centralizes every knob the pipeline and CLI need so the work
// directory, image endpoint, overlay font and ffmpeg binaries are discovered
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
