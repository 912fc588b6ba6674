package subtitles

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateSRTContentClean(t *testing.T) {
	path := writeSRT(t, "1\n00:00:00,000 --> 00:00:04,000\nintro\n\n2\n00:00:04,000 --> 00:00:10,000\nverse\n")
	if issues := ValidateSRTContent(path, 10.0); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidateSRTContentReportsIssues(t *testing.T) {
	path := writeSRT(t, strings.Join([]string{
		"1", "00:00:02,000 --> 00:00:06,000", "first", "",
		"2", "00:00:05,000 --> 00:00:05,000", "overlap", "",
		"3", "00:00:09,000 --> 00:00:12,000", "late", "",
	}, "\n"))

	issues := ValidateSRTContent(path, 10.0)
	joined := strings.Join(issues, "\n")
	for _, want := range []string{"zero_length_cue: index=2", "out_of_order_cue: index=2", "cue_past_audio_end: index=3"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in issues %v", want, issues)
		}
	}
}

func TestValidateSRTContentSkipsAudioCheckWhenUnknown(t *testing.T) {
	path := writeSRT(t, "1\n00:00:00,000 --> 00:05:00,000\nlong\n")
	if issues := ValidateSRTContent(path, 0); len(issues) != 0 {
		t.Fatalf("expected no issues without audio length, got %v", issues)
	}
}

func TestValidateSRTContentEmptyAndBroken(t *testing.T) {
	empty := writeSRT(t, "\n")
	if issues := ValidateSRTContent(empty, 0); len(issues) != 1 || issues[0] != "empty_subtitle_file" {
		t.Fatalf("expected empty_subtitle_file, got %v", issues)
	}

	broken := writeSRT(t, "1\nno timing\n")
	issues := ValidateSRTContent(broken, 0)
	if len(issues) != 1 || !strings.HasPrefix(issues[0], "parse_error:") {
		t.Fatalf("expected parse_error, got %v", issues)
	}

	missing := ValidateSRTContent(filepath.Join(t.TempDir(), "none.srt"), 0)
	if len(missing) != 1 || !strings.HasPrefix(missing[0], "read_error:") {
		t.Fatalf("expected read_error, got %v", missing)
	}
}
