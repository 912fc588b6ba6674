package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lyricvid/internal/config"
	"lyricvid/internal/fileutil"
	"lyricvid/internal/logging"
	"lyricvid/internal/services"
	"lyricvid/internal/storyboard"
)

const (
	stageName       = "assemble"
	scriptName      = "images.ffconcat"
	stderrTailLines = 20
	evenScaleFilter = "scale=trunc(iw/2)*2:trunc(ih/2)*2"
)

// commandRunner executes name with args and returns its captured stderr.
type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

// Settings holds the encoder parameters.
type Settings struct {
	FFmpegBinary string
	FPS          int
	VideoCodec   string
	AudioCodec   string
	PixelFormat  string
	// LogDir receives full ffmpeg stderr when encoding fails.
	LogDir string
}

// SettingsFromConfig derives encoder settings from configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		FFmpegBinary: cfg.FFmpegBinary(),
		FPS:          cfg.Video.FPS,
		VideoCodec:   cfg.Video.VideoCodec,
		AudioCodec:   cfg.Video.AudioCodec,
		PixelFormat:  cfg.Video.PixelFormat,
		LogDir:       cfg.Paths.LogDir,
	}
}

// Assembler muxes images and audio into a video.
type Assembler struct {
	settings Settings
	run      commandRunner
	logger   *slog.Logger
}

// Option customizes the assembler.
type Option func(*Assembler)

// WithCommandRunner overrides how ffmpeg is executed (useful for tests).
func WithCommandRunner(r commandRunner) Option {
	return func(a *Assembler) {
		if r != nil {
			a.run = r
		}
	}
}

// NewAssembler constructs an assembler.
func NewAssembler(settings Settings, logger *slog.Logger, opts ...Option) *Assembler {
	if strings.TrimSpace(settings.FFmpegBinary) == "" {
		settings.FFmpegBinary = "ffmpeg"
	}
	if settings.FPS <= 0 {
		settings.FPS = 24
	}
	if settings.VideoCodec == "" {
		settings.VideoCodec = "libx264"
	}
	if settings.AudioCodec == "" {
		settings.AudioCodec = "aac"
	}
	if settings.PixelFormat == "" {
		settings.PixelFormat = "yuv420p"
	}
	a := &Assembler{
		settings: settings,
		run:      defaultCommandRunner,
		logger:   logging.NewComponentLogger(logger, "render"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Args returns the ffmpeg arguments for a concat script, audio file and output.
func (a *Assembler) Args(scriptPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", scriptPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-r", strconv.Itoa(a.settings.FPS),
		"-c:v", a.settings.VideoCodec,
		"-pix_fmt", a.settings.PixelFormat,
		"-c:a", a.settings.AudioCodec,
		"-vf", evenScaleFilter,
		outputPath,
	}
}

// Assemble writes the concat script next to the first entry and encodes the
// video to outputPath.
func (a *Assembler) Assemble(ctx context.Context, entries []storyboard.Entry, audioPath, outputPath string) error {
	ctx = services.WithStage(ctx, stageName)
	logger := logging.WithContext(ctx, a.logger)

	if len(entries) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "build script", "no images to assemble", nil)
	}
	scriptPath := filepath.Join(filepath.Dir(entries[0].Path), scriptName)
	if err := writeScriptFile(scriptPath, entries); err != nil {
		return services.Wrap(services.ErrValidation, stageName, "build script", scriptPath, err)
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrConfiguration, stageName, "prepare output", dir, err)
		}
	}

	args := a.Args(scriptPath, audioPath, outputPath)
	logger.Info("encoding video",
		logging.Int("images", len(entries)),
		logging.String("output", outputPath),
		logging.Int("fps", a.settings.FPS),
	)
	started := time.Now()
	stderr, err := a.run(ctx, a.settings.FFmpegBinary, args...)
	if err != nil {
		detail := stderrTail(stderr, stderrTailLines)
		if logPath := a.writeToolLog(args, stderr); logPath != "" {
			detail += " (full log: " + logPath + ")"
		}
		return services.Wrap(services.ErrExternalTool, stageName, "ffmpeg", detail, err)
	}
	logger.Info("video encoded",
		logging.String("output", outputPath),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return nil
}

func writeScriptFile(path string, entries []storyboard.Entry) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteConcatScript(w, entries)
	})
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

func stderrTail(stderr string, lines int) string {
	trimmed := strings.TrimSpace(stderr)
	if trimmed == "" {
		return "ffmpeg failed without output"
	}
	all := strings.Split(trimmed, "\n")
	if len(all) > lines {
		all = all[len(all)-lines:]
	}
	return strings.Join(all, "\n")
}

func (a *Assembler) writeToolLog(args []string, stderr string) string {
	logDir := strings.TrimSpace(a.settings.LogDir)
	if logDir == "" {
		return ""
	}
	toolDir := filepath.Join(logDir, "tool")
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		a.logger.Warn("failed to create tool log directory; ffmpeg stderr not captured",
			logging.Error(err),
			logging.String(logging.FieldEventType, "tool_log_dir_failed"),
			logging.String(logging.FieldErrorHint, "check paths.log_dir permissions"),
		)
		return ""
	}
	timestamp := time.Now().UTC().Format("20060102T150405.000Z")
	path := filepath.Join(toolDir, fmt.Sprintf("%s-ffmpeg.log", timestamp))

	var payload strings.Builder
	payload.WriteString("command: ")
	payload.WriteString(strings.Join(append([]string{a.settings.FFmpegBinary}, args...), " "))
	payload.WriteString("\nstderr:\n")
	payload.WriteString(stderr)
	payload.WriteByte('\n')

	if err := os.WriteFile(path, []byte(payload.String()), 0o644); err != nil {
		a.logger.Warn("failed to write tool log; ffmpeg stderr detail lost",
			logging.Error(err),
			logging.String(logging.FieldEventType, "tool_log_write_failed"),
			logging.String(logging.FieldErrorHint, "check paths.log_dir permissions"),
		)
		return ""
	}
	return path
}
