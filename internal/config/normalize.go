package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeImage()
	if err := c.normalizeOverlay(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = filepath.Join(filepath.Dir(c.Paths.LogDir), "history.db")
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeImage() {
	if value, ok := os.LookupEnv("LYRICVID_IMAGE_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Image.BaseURL = value
	}
	c.Image.BaseURL = strings.TrimRight(strings.TrimSpace(c.Image.BaseURL), "/")
	if c.Image.BaseURL == "" {
		c.Image.BaseURL = defaultImageBaseURL
	}
	c.Image.Style = strings.ToLower(strings.TrimSpace(c.Image.Style))
	if c.Image.Style == "" {
		c.Image.Style = defaultImageStyle
	}
	if c.Image.Width <= 0 {
		c.Image.Width = defaultImageWidth
	}
	if c.Image.Height <= 0 {
		c.Image.Height = defaultImageHeight
	}
	if c.Image.SecondsPerImage <= 0 {
		c.Image.SecondsPerImage = defaultSecondsPerImage
	}
	c.Image.GapPrompt = strings.TrimSpace(c.Image.GapPrompt)
	if c.Image.TimeoutSeconds <= 0 {
		c.Image.TimeoutSeconds = defaultImageTimeout
	}
	if c.Image.MinIntervalMS < 0 {
		c.Image.MinIntervalMS = 0
	}
	c.Image.FailurePolicy = strings.ToLower(strings.TrimSpace(c.Image.FailurePolicy))
	if c.Image.FailurePolicy == "" {
		c.Image.FailurePolicy = defaultFailurePolicy
	}
}

func (c *Config) normalizeOverlay() error {
	if c.Overlay.FontPath == "" {
		if value, ok := os.LookupEnv("LYRICVID_FONT_PATH"); ok {
			c.Overlay.FontPath = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Overlay.FontPath, err = expandPath(strings.TrimSpace(c.Overlay.FontPath)); err != nil {
		return fmt.Errorf("overlay.font_path: %w", err)
	}
	if c.Overlay.FontSize <= 0 {
		c.Overlay.FontSize = defaultFontSize
	}
	if c.Overlay.Padding < 0 {
		c.Overlay.Padding = defaultOverlayPadding
	}
	if c.Overlay.BottomOffset < 0 {
		c.Overlay.BottomOffset = defaultBottomOffset
	}
	return nil
}

func (c *Config) normalizeVideo() {
	if c.Video.FPS <= 0 {
		c.Video.FPS = defaultFPS
	}
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	if c.Video.FFmpegBinary == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)
	if c.Video.FFprobeBinary == "" {
		c.Video.FFprobeBinary = defaultFFprobeBinary
	}
	c.Video.VideoCodec = strings.TrimSpace(c.Video.VideoCodec)
	if c.Video.VideoCodec == "" {
		c.Video.VideoCodec = defaultVideoCodec
	}
	c.Video.AudioCodec = strings.TrimSpace(c.Video.AudioCodec)
	if c.Video.AudioCodec == "" {
		c.Video.AudioCodec = defaultAudioCodec
	}
	c.Video.PixelFormat = strings.TrimSpace(c.Video.PixelFormat)
	if c.Video.PixelFormat == "" {
		c.Video.PixelFormat = defaultPixelFormat
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("LYRICVID_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
