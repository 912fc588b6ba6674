package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateImage(); err != nil {
		return err
	}
	if err := c.validateOverlay(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateImage() error {
	parsed, err := url.Parse(c.Image.BaseURL)
	if err != nil {
		return fmt.Errorf("image.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("image.base_url must be an http(s) URL, got %q", c.Image.BaseURL)
	}
	if err := ensurePositive(
		positiveField{"image.width", c.Image.Width},
		positiveField{"image.height", c.Image.Height},
		positiveField{"image.timeout_seconds", c.Image.TimeoutSeconds},
	); err != nil {
		return err
	}
	if c.Image.SecondsPerImage <= 0 {
		return errors.New("image.seconds_per_image must be positive")
	}
	switch c.Image.FailurePolicy {
	case FailurePolicySkip, FailurePolicyStretch, FailurePolicyAbort:
	default:
		return fmt.Errorf("image.failure_policy must be one of %s, %s, %s (got %q)",
			FailurePolicySkip, FailurePolicyStretch, FailurePolicyAbort, c.Image.FailurePolicy)
	}
	return nil
}

func (c *Config) validateOverlay() error {
	if c.Overlay.FontSize <= 0 {
		return errors.New("overlay.font_size must be positive")
	}
	if c.Overlay.BackgroundAlpha < 0 || c.Overlay.BackgroundAlpha > 255 {
		return errors.New("overlay.background_alpha must be between 0 and 255")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	if strings.ContainsAny(c.Video.VideoCodec, " \t") || strings.ContainsAny(c.Video.AudioCodec, " \t") {
		return errors.New("video codecs must be single ffmpeg encoder names")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL (e.g. https://ntfy.sh/my-topic), got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

type positiveField struct {
	name  string
	value int
}

// ensurePositive reports the first non-positive field in argument order.
func ensurePositive(fields ...positiveField) error {
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%s must be positive", f.name)
		}
	}
	return nil
}
