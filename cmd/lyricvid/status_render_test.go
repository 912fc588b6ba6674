package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"lyricvid/internal/deps"
	"lyricvid/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Available: false},
		{Name: "FFprobe", Available: true, Path: "/usr/bin/ffprobe"},
		{Name: "Extra", Available: false, Optional: true, Detail: "not configured"},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] not available") {
		t.Fatalf("expected error detail in first line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] Ready (/usr/bin/ffprobe)") {
		t.Fatalf("expected ready detail in second line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN] not configured") {
		t.Fatalf("expected warn detail in third line, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing dependencies:") {
		t.Fatalf("expected missing dependencies summary, got %q", lines[3])
	}
}

func TestPreflightLines(t *testing.T) {
	lines := preflightLines([]preflight.Result{
		{Name: "Work directory", Passed: true, Detail: "/tmp (read/write ok)"},
		{Name: "Overlay font", Detail: "missing.ttf (error: no such file)"},
	}, false)
	if !strings.Contains(lines[0], "[OK]") || !strings.Contains(lines[1], "[ERROR]") {
		t.Fatalf("unexpected preflight lines: %q", lines)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:      "00:00.00",
		1.5:    "00:01.50",
		65.25:  "01:05.25",
		-3:     "00:00.00",
		600.01: "10:00.01",
	}
	for in, want := range cases {
		if got := formatTimestamp(in); got != want {
			t.Fatalf("formatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncate result %q", got)
	}
	if got := truncate("a much longer caption line", 10); got != "a much ..." {
		t.Fatalf("unexpected truncate result %q", got)
	}
}
