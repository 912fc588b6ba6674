package pipeline

import (
	"log/slog"
	"time"

	"lyricvid/internal/config"
	"lyricvid/internal/history"
	"lyricvid/internal/logging"
	"lyricvid/internal/notifications"
	"lyricvid/internal/render"
	"lyricvid/internal/services/imagegen"
	"lyricvid/internal/storyboard"
)

// Request names the inputs and output of one render.
type Request struct {
	SubtitlePath string
	AudioPath    string
	OutputPath   string
	// Style overrides image.style when set.
	Style string
}

// Report summarises a finished (or failed) render.
type Report struct {
	RunID           string
	Output          string
	Segments        int
	Planned         int
	Fetched         int
	Failed          int
	AudioSeconds    float64
	RenderedSeconds float64
	Elapsed         time.Duration
}

// Drift returns how far the rendered video falls short of the audio.
func (r Report) Drift() float64 {
	return r.AudioSeconds - r.RenderedSeconds
}

// Runner executes renders against a fixed configuration.
type Runner struct {
	cfg           *config.Config
	logger        *slog.Logger
	generator     storyboard.Generator
	notifier      notifications.Service
	history       *history.Store
	assemblerOpts []render.Option
	now           func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithGenerator replaces the HTTP image client, which is otherwise built per
// run from image settings and the requested style.
func WithGenerator(gen storyboard.Generator) Option {
	return func(r *Runner) {
		if gen != nil {
			r.generator = gen
		}
	}
}

// WithNotifier overrides the notification service derived from config.
func WithNotifier(n notifications.Service) Option {
	return func(r *Runner) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithHistory records every run in store.
func WithHistory(store *history.Store) Option {
	return func(r *Runner) {
		r.history = store
	}
}

// WithAssemblerOptions forwards options to the video assembler.
func WithAssemblerOptions(opts ...render.Option) Option {
	return func(r *Runner) {
		r.assemblerOpts = append(r.assemblerOpts, opts...)
	}
}

// NewRunner constructs a Runner.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		notifier: notifications.NewService(cfg),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) generatorFor(style string) storyboard.Generator {
	if r.generator != nil {
		return r.generator
	}
	return imagegen.NewClient(imagegen.Config{
		BaseURL:        r.cfg.Image.BaseURL,
		Style:          style,
		Width:          r.cfg.Image.Width,
		Height:         r.cfg.Image.Height,
		NoLogo:         r.cfg.Image.NoLogo,
		TimeoutSeconds: r.cfg.Image.TimeoutSeconds,
		MinIntervalMS:  r.cfg.Image.MinIntervalMS,
	})
}
