package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"lyricvid/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfgVal.Image.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithImageEndpoint points the image client at url, typically an httptest server.
func WithImageEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Image.BaseURL = url
	}
}

// WithFailurePolicy overrides the per-image failure policy.
func WithFailurePolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Image.FailurePolicy = policy
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		for _, name := range names {
			b.writeStub(name, "#!/bin/sh\nexit 0\n")
		}
		b.prependPath()
	}
}

// WithFakeFFprobe installs an ffprobe stub that reports one audio stream of
// the given duration and points the config at it.
func WithFakeFFprobe(seconds float64) ConfigOption {
	return func(b *configBuilder) {
		payload := fmt.Sprintf(`{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3"}],"format":{"duration":"%.3f"}}`, seconds)
		b.cfg.Video.FFprobeBinary = b.writeStub("ffprobe", "#!/bin/sh\ncat <<'JSON'\n"+payload+"\nJSON\n")
	}
}

// WithFakeFFmpeg installs an ffmpeg stub that writes a placeholder file at its
// last argument and points the config at it.
func WithFakeFFmpeg() ConfigOption {
	return func(b *configBuilder) {
		script := "#!/bin/sh\nfor last; do :; done\necho fake-video > \"$last\"\n"
		b.cfg.Video.FFmpegBinary = b.writeStub("ffmpeg", script)
	}
}

// WithFailingFFmpeg installs an ffmpeg stub that prints msg to stderr and exits 1.
func WithFailingFFmpeg(msg string) ConfigOption {
	return func(b *configBuilder) {
		script := fmt.Sprintf("#!/bin/sh\necho %q >&2\nexit 1\n", msg)
		b.cfg.Video.FFmpegBinary = b.writeStub("ffmpeg", script)
	}
}

func (b *configBuilder) binDir() string {
	dir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return dir
}

func (b *configBuilder) writeStub(name, script string) string {
	target := filepath.Join(b.binDir(), name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

func (b *configBuilder) prependPath() {
	b.t.Setenv("PATH", b.binDir()+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
