// Package imagegen fetches AI-generated images from a Pollinations-style
// prompt endpoint.
//
// # Request Shape
//
// Each request is a single HTTP GET of
//
//	{base_url}/{escaped prompt}?height=H&width=W&nologo=true&model=flux-{style}&seed=N
//
// with a fresh seed in [0, 1000000] so identical prompts still produce
// different pictures.
//
// # Failure Handling
//
// The client never retries. Non-2xx responses surface as *StatusError.
// Payloads over 64 MiB surface as ErrTooLarge and payloads that do not sniff
// as an image surface as ErrNotImage, so callers can apply their own
// per-image policy.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Generate: fetch one image for a prompt.
// Client.RequestURL: build the request URL for a prompt and seed.
package imagegen
