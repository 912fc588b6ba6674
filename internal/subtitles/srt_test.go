package subtitles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseBasicBlocks(t *testing.T) {
	input := `1
00:00:01,000 --> 00:00:05,000
Hello world

2
00:00:06,500 --> 00:00:09,250
first line
second line
`
	captions, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(captions) != 2 {
		t.Fatalf("expected 2 captions, got %d", len(captions))
	}
	first := captions[0]
	if first.Index != 1 || first.Start != 1.0 || first.End != 5.0 {
		t.Fatalf("unexpected first caption %+v", first)
	}
	if first.Joined() != "Hello world" {
		t.Fatalf("unexpected text %q", first.Joined())
	}
	second := captions[1]
	if second.Start != 6.5 || second.End != 9.25 {
		t.Fatalf("unexpected second timing %+v", second)
	}
	if len(second.Text) != 2 || second.Text[0] != "first line" || second.Text[1] != "second line" {
		t.Fatalf("unexpected second text %#v", second.Text)
	}
	if got := second.Duration(); got != 2.75 {
		t.Fatalf("expected duration 2.75, got %v", got)
	}
}

func TestParseFlushesFinalBlockWithoutTrailingBlank(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:02,000\nno trailing newline"
	captions, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(captions) != 1 || captions[0].Joined() != "no trailing newline" {
		t.Fatalf("unexpected captions %+v", captions)
	}
}

func TestParseAcceptsBOMCRLFAndPeriodMillis(t *testing.T) {
	input := "\ufeff1\r\n00:01:02.500 --> 01:00:00.5\r\n  padded text  \r\n\r\n\r\n"
	captions, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(captions) != 1 {
		t.Fatalf("expected 1 caption, got %d", len(captions))
	}
	if captions[0].Start != 62.5 || captions[0].End != 3600.5 {
		t.Fatalf("unexpected timing %+v", captions[0])
	}
	if captions[0].Text[0] != "padded text" {
		t.Fatalf("expected trimmed text, got %q", captions[0].Text[0])
	}
}

func TestParseNumericLyricAfterTimestamp(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:03,000\n99\nred balloons\n"
	captions, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := captions[0].Joined(); got != "99 red balloons" {
		t.Fatalf("expected numeric lyric kept as text, got %q", got)
	}
}

func TestParseAssignsIndexWhenMissing(t *testing.T) {
	input := "00:00:00,000 --> 00:00:01,000\na\n\n00:00:01,000 --> 00:00:02,000\nb\n"
	captions, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if captions[0].Index != 1 || captions[1].Index != 2 {
		t.Fatalf("expected sequential indexes, got %d and %d", captions[0].Index, captions[1].Index)
	}
}

func TestParseIgnoresPositionHints(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:02,000 X1:100 X2:200 Y1:10 Y2:20\ntext\n"
	captions, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if captions[0].End != 2.0 {
		t.Fatalf("expected end 2.0, got %v", captions[0].End)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
		line  int
	}{
		{name: "missing timestamp", input: "1\nlyric\n\n", want: ErrMissingTimestamp, line: 2},
		{name: "index without timing at blank", input: "1\n\n", want: ErrMissingTimestamp, line: 1},
		{name: "two indexes", input: "1\n2\n", want: ErrMissingTimestamp, line: 2},
		{name: "invalid timestamp", input: "1\n00:00:xx,000 --> 00:00:01,000\ntext\n", want: ErrInvalidTimestamp, line: 2},
		{name: "end before start", input: "1\n00:00:05,000 --> 00:00:01,000\ntext\n", want: ErrInvalidTimestamp, line: 2},
		{name: "minutes out of range", input: "1\n00:61:00,000 --> 01:00:00,000\ntext\n", want: ErrInvalidTimestamp, line: 2},
		{name: "missing text", input: "1\n00:00:00,000 --> 00:00:01,000\n\n", want: ErrMissingText, line: 1},
		{name: "missing text at eof", input: "1\n00:00:00,000 --> 00:00:01,000", want: ErrMissingText, line: 1},
		{name: "text first", input: "hello\n", want: ErrTextBeforeIndex, line: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			captions, err := Parse(strings.NewReader(tc.input))
			if err == nil {
				t.Fatalf("expected error, got captions %+v", captions)
			}
			if captions != nil {
				t.Fatalf("expected no partial result, got %+v", captions)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if parseErr.Line != tc.line {
				t.Fatalf("expected line %d, got %d (%v)", tc.line, parseErr.Line, err)
			}
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	captions, err := Parse(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(captions) != 0 {
		t.Fatalf("expected no captions, got %d", len(captions))
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "absent.srt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseSRTTimestamp(t *testing.T) {
	cases := map[string]float64{
		"00:00:00,000": 0,
		"00:00:01,000": 1,
		"01:02:03,500": 3723.5,
		"10:00:00,250": 36000.25,
		"00:00:02.5":   2.5,
	}
	for input, want := range cases {
		got, err := parseSRTTimestamp(input)
		if err != nil {
			t.Fatalf("parseSRTTimestamp(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("parseSRTTimestamp(%q) = %v, want %v", input, got, want)
		}
	}
	for _, bad := range []string{"", "00:00:01", "00:01,000", "-1:00:00,000", "00:00:01,0000",
		"99999999999999999999:00:00,000", "00:000:01,000"} {
		if _, err := parseSRTTimestamp(bad); !errors.Is(err, ErrInvalidTimestamp) {
			t.Fatalf("parseSRTTimestamp(%q) expected ErrInvalidTimestamp, got %v", bad, err)
		}
	}
}

func writeSRT(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.srt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	return path
}
