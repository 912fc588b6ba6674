package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lyricvid/internal/config"
	"lyricvid/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *[]captured) {
	t.Helper()
	var requests []captured
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRenderCompleted(context.Background(), notifications.RenderSummary{}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("x"), "render"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyRenderCompleted(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL + "/lyricvid"
	svc := notifications.NewService(&cfg)

	err := svc.NotifyRenderCompleted(context.Background(), notifications.RenderSummary{
		OutputPath:   "/videos/song.mp4",
		Images:       12,
		AudioSeconds: 187.13,
		Elapsed:      95 * time.Second,
	})
	if err != nil {
		t.Fatalf("NotifyRenderCompleted returned error: %v", err)
	}
	got := (*requests)[0]
	if got.title != "lyricvid - Render Complete" || got.tags != "lyricvid,render,completed" {
		t.Fatalf("unexpected headers %+v", got)
	}
	if !strings.Contains(got.body, "song.mp4") || !strings.Contains(got.body, "12 images") || !strings.Contains(got.body, "1m35s") {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestNtfyRenderCompletedWithFailures(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyRenderCompleted(context.Background(), notifications.RenderSummary{OutputPath: "out.mp4", Images: 3, FailedImages: 2}); err != nil {
		t.Fatalf("NotifyRenderCompleted returned error: %v", err)
	}
	got := (*requests)[0]
	if !strings.Contains(got.title, "skipped images") || !strings.HasSuffix(got.tags, ",warning") {
		t.Fatalf("unexpected headers %+v", got)
	}
	if !strings.Contains(got.body, "2 image requests failed") {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestNtfyErrorAndTest(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyError(context.Background(), errors.New("ffmpeg failed"), "render song.mp4"); err != nil {
		t.Fatalf("NotifyError returned error: %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification returned error: %v", err)
	}
	errReq := (*requests)[0]
	if errReq.priority != "high" || !strings.Contains(errReq.body, "with render song.mp4: ffmpeg failed") {
		t.Fatalf("unexpected error notification %+v", errReq)
	}
	testReq := (*requests)[1]
	if testReq.priority != "low" || testReq.title != "lyricvid - Test" {
		t.Fatalf("unexpected test notification %+v", testReq)
	}
}

func TestNtfyNonSuccessStatus(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
