package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"lyricvid/internal/config"
)

const userAgent = "lyricvid/0.1.0"

// RenderSummary describes a finished render.
type RenderSummary struct {
	OutputPath   string
	Images       int
	FailedImages int
	AudioSeconds float64
	Elapsed      time.Duration
}

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyRenderCompleted(ctx context.Context, summary RenderSummary) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, summary RenderSummary) error {
	elapsed := summary.Elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	name := filepath.Base(strings.TrimSpace(summary.OutputPath))
	message := fmt.Sprintf("🎬 Video ready: %s\n%d images, %.2fs of audio, rendered in %s",
		name, summary.Images, summary.AudioSeconds, elapsed)
	title := "lyricvid - Render Complete"
	tags := []string{"lyricvid", "render", "completed"}
	if summary.FailedImages > 0 {
		title = "lyricvid - Render Complete (with skipped images)"
		message += fmt.Sprintf("\n%d image requests failed", summary.FailedImages)
		tags = append(tags, "warning")
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    tags,
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "lyricvid - Error",
		message:  builder.String(),
		tags:     []string{"lyricvid", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "lyricvid - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"lyricvid", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRenderCompleted(context.Context, RenderSummary) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error           { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
