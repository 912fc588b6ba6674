package main

import (
	"bytes"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lyricvid/internal/config"
	"lyricvid/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	srtPath    string
	audioPath  string
	outputPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	payload := testsupport.PNG(t, 320, 180, color.RGBA{G: 160, A: 255})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)

	opts = append([]testsupport.ConfigOption{
		testsupport.WithFakeFFprobe(10),
		testsupport.WithFakeFFmpeg(),
		testsupport.WithImageEndpoint(server.URL),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "lyricvid.toml"),
		baseDir:    base,
		srtPath:    filepath.Join(base, "input", "song.srt"),
		audioPath:  filepath.Join(base, "input", "song.mp3"),
		outputPath: filepath.Join(base, "out", "song.mp4"),
	}
	testsupport.WriteFile(t, env.srtPath, []byte(testsupport.SampleSRT))
	testsupport.WriteFile(t, env.audioPath, []byte("audio"))
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
