package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lyricvid/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "lyricvid", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.HistoryDB != filepath.Join(tempHome, ".local", "share", "lyricvid", "history.db") {
		t.Fatalf("unexpected history db: %q", cfg.Paths.HistoryDB)
	}
	if cfg.Image.Width != 1920 || cfg.Image.Height != 1080 {
		t.Fatalf("unexpected resolution: %dx%d", cfg.Image.Width, cfg.Image.Height)
	}
	if cfg.Image.Style != "realism" {
		t.Fatalf("unexpected style: %q", cfg.Image.Style)
	}
	if cfg.Image.SecondsPerImage != 4 {
		t.Fatalf("unexpected seconds per image: %v", cfg.Image.SecondsPerImage)
	}
	if cfg.Image.FailurePolicy != config.FailurePolicySkip {
		t.Fatalf("expected skip policy by default, got %q", cfg.Image.FailurePolicy)
	}
	if cfg.Video.FPS != 24 {
		t.Fatalf("expected 24 fps, got %d", cfg.Video.FPS)
	}
	if cfg.Overlay.FontPath != "" {
		t.Fatalf("expected embedded font by default, got %q", cfg.Overlay.FontPath)
	}
	if cfg.Overlay.BackgroundAlpha != 128 {
		t.Fatalf("unexpected background alpha: %d", cfg.Overlay.BackgroundAlpha)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "lyricvid.toml")

	type payload struct {
		Image struct {
			Style         string `toml:"style"`
			FailurePolicy string `toml:"failure_policy"`
			Width         int    `toml:"width"`
		} `toml:"image"`
		Video struct {
			FPS int `toml:"fps"`
		} `toml:"video"`
	}
	custom := payload{}
	custom.Image.Style = " Anime "
	custom.Image.FailurePolicy = "Stretch"
	custom.Image.Width = 1280
	custom.Video.FPS = 30
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Image.Style != "anime" {
		t.Fatalf("expected normalized style, got %q", cfg.Image.Style)
	}
	if cfg.Image.FailurePolicy != config.FailurePolicyStretch {
		t.Fatalf("expected stretch policy, got %q", cfg.Image.FailurePolicy)
	}
	if cfg.Image.Width != 1280 || cfg.Image.Height != 1080 {
		t.Fatalf("unexpected resolution: %dx%d", cfg.Image.Width, cfg.Image.Height)
	}
	if cfg.Video.FPS != 30 {
		t.Fatalf("expected fps override, got %d", cfg.Video.FPS)
	}
}

func TestLoadRejectsUnknownFailurePolicy(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	configPath := filepath.Join(t.TempDir(), "lyricvid.toml")
	if err := os.WriteFile(configPath, []byte("[image]\nfailure_policy = \"retry\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "image.failure_policy") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadReadsDotEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workDir := t.TempDir()
	t.Chdir(workDir)
	t.Setenv("LYRICVID_IMAGE_BASE_URL", "")
	os.Unsetenv("LYRICVID_IMAGE_BASE_URL")
	t.Setenv("LYRICVID_NTFY_TOPIC", "")
	os.Unsetenv("LYRICVID_NTFY_TOPIC")

	env := "LYRICVID_IMAGE_BASE_URL=http://127.0.0.1:9999/prompt/\nLYRICVID_NTFY_TOPIC=https://ntfy.example/renders\n"
	if err := os.WriteFile(filepath.Join(workDir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("LYRICVID_IMAGE_BASE_URL")
		os.Unsetenv("LYRICVID_NTFY_TOPIC")
	})

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Image.BaseURL != "http://127.0.0.1:9999/prompt" {
		t.Fatalf("expected base url from .env, got %q", cfg.Image.BaseURL)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/renders" {
		t.Fatalf("expected ntfy topic from .env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestValidateRejectsRelativeNtfyTopic(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = "my-topic"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for topic without scheme")
	}
}

func TestValidateReportsFirstInvalidImageField(t *testing.T) {
	for i := 0; i < 20; i++ {
		cfg := config.Default()
		cfg.Image.Width = 0
		cfg.Image.Height = -1
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error for non-positive image size")
		}
		if !strings.Contains(err.Error(), "image.width") {
			t.Fatalf("expected image.width to be reported first, got %v", err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	defaults := config.Default()
	if cfg.Image.BaseURL != defaults.Image.BaseURL {
		t.Fatalf("sample base url drifted from defaults: %q", cfg.Image.BaseURL)
	}
	if cfg.Image.GapPrompt != defaults.Image.GapPrompt {
		t.Fatalf("sample gap prompt drifted from defaults: %q", cfg.Image.GapPrompt)
	}
}
