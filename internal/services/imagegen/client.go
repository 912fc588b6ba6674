package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://image.pollinations.ai/prompt"
	defaultHTTPTimeout = 120 * time.Second
	maxSeed            = 1_000_000
	maxBodyBytes       = 64 << 20
	errorBodyLimit     = 512
)

// ErrNotImage is returned when the endpoint answers with a payload that is
// not a recognised image format.
var ErrNotImage = errors.New("response is not an image")

// ErrTooLarge is returned when the image payload exceeds the body limit.
var ErrTooLarge = errors.New("image payload too large")

// Config captures the endpoint and picture settings.
type Config struct {
	BaseURL        string
	Style          string
	Width          int
	Height         int
	NoLogo         bool
	TimeoutSeconds int
	// MinIntervalMS spaces consecutive requests; 0 disables pacing.
	MinIntervalMS int
}

// SeedSource yields request seeds. *rand.Rand from math/rand/v2 satisfies it.
type SeedSource interface {
	IntN(n int) int
}

type globalSeeds struct{}

func (globalSeeds) IntN(n int) int { return rand.IntN(n) }

// Image is one fetched picture.
type Image struct {
	Data      []byte
	MIME      string
	Extension string
	Seed      int
	URL       string
}

// StatusError reports a non-2xx response from the image endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("image request: http %d", e.StatusCode)
	}
	return fmt.Sprintf("image request: http %d: %s", e.StatusCode, body)
}

// Client requests images from the prompt endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	seeds      SeedSource
	maxBody    int64
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSeedSource overrides the random seed source (useful for tests).
func WithSeedSource(src SeedSource) Option {
	return func(c *Client) {
		if src != nil {
			c.seeds = src
		}
	}
}

// NewClient constructs an image client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.Style = strings.TrimSpace(cfg.Style)

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		seeds:      globalSeeds{},
		maxBody:    maxBodyBytes,
	}
	if cfg.MinIntervalMS > 0 {
		client.limiter = rate.NewLimiter(rate.Every(time.Duration(cfg.MinIntervalMS)*time.Millisecond), 1)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model returns the model query value derived from the configured style.
func (c *Client) Model() string {
	if c.cfg.Style == "" {
		return "flux"
	}
	return "flux-" + c.cfg.Style
}

// RequestURL builds the GET URL for prompt and seed.
func (c *Client) RequestURL(prompt string, seed int) string {
	return fmt.Sprintf("%s/%s?height=%d&width=%d&nologo=%t&model=%s&seed=%d",
		c.cfg.BaseURL,
		url.PathEscape(prompt),
		c.cfg.Height,
		c.cfg.Width,
		c.cfg.NoLogo,
		url.QueryEscape(c.Model()),
		seed,
	)
}

// Generate fetches one image for prompt using a fresh random seed.
func (c *Client) Generate(ctx context.Context, prompt string) (Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Image{}, errors.New("image request: prompt required")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Image{}, fmt.Errorf("image request: wait for slot: %w", err)
		}
	}

	seed := c.seeds.IntN(maxSeed + 1)
	target := c.RequestURL(prompt, seed)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Image{}, fmt.Errorf("image request: build: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return Image{}, &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return Image{}, fmt.Errorf("image request: read body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return Image{}, fmt.Errorf("image request: %w (limit %d bytes)", ErrTooLarge, c.maxBody)
	}
	if !filetype.IsImage(data) {
		return Image{}, fmt.Errorf("image request: %w (%d bytes, content-type %q)", ErrNotImage, len(data), resp.Header.Get("Content-Type"))
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return Image{}, fmt.Errorf("image request: sniff payload: %w", err)
	}

	return Image{
		Data:      data,
		MIME:      kind.MIME.Value,
		Extension: kind.Extension,
		Seed:      seed,
		URL:       target,
	}, nil
}
