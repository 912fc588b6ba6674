// Package notifications delivers render events via ntfy.
//
// The ntfy implementation publishes to the topic URL configured in
// config.toml and degrades to a no-op when no topic is set, so the pipeline
// can always call the Service without checking configuration first.
package notifications
