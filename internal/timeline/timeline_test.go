package timeline

import (
	"testing"

	"lyricvid/internal/subtitles"
)

func caption(start, end float64, lines ...string) subtitles.Caption {
	return subtitles.Caption{Start: start, End: end, Text: lines}
}

func TestInterpolateSingleCaption(t *testing.T) {
	got := Interpolate([]subtitles.Caption{caption(1.0, 5.0, "Hello world")}, 10.0)
	want := []Segment{
		{Start: 0, End: 1, Duration: 1, Gap: true},
		{Prompt: "Hello world", Line: "Hello world", Start: 1, End: 5, Duration: 4},
		{Start: 5, End: 10, Duration: 5, Gap: true},
	}
	assertSegments(t, got, want)
}

func TestInterpolateNoGapsWhenCaptionsCoverAudio(t *testing.T) {
	captions := []subtitles.Caption{
		caption(0, 3.5, "a"),
		caption(3.5, 7, "b"),
		caption(7, 12.25, "c"),
	}
	for _, seg := range Interpolate(captions, 12.25) {
		if seg.Gap {
			t.Fatalf("unexpected gap %+v", seg)
		}
	}
}

func TestInterpolateOmitsDegenerateGaps(t *testing.T) {
	captions := []subtitles.Caption{
		caption(0, 2, "a"),
		caption(1.5, 4, "overlaps"),
		caption(6, 9, "c"),
	}
	got := Interpolate(captions, 8)
	gaps := 0
	for _, seg := range got {
		if seg.Gap {
			gaps++
			if seg.Start >= seg.End {
				t.Fatalf("degenerate gap %+v", seg)
			}
			if seg.Duration != seg.End-seg.Start {
				t.Fatalf("gap duration %v does not match span %+v", seg.Duration, seg)
			}
		}
	}
	if gaps != 1 {
		t.Fatalf("expected only the [4,6) gap, got %d gaps in %+v", gaps, got)
	}
}

func TestInterpolateWithoutCaptions(t *testing.T) {
	got := Interpolate(nil, 30)
	assertSegments(t, got, []Segment{{Start: 0, End: 30, Duration: 30, Gap: true}})

	if got := Interpolate(nil, 0); len(got) != 0 {
		t.Fatalf("expected nothing for zero audio, got %+v", got)
	}
}

func TestPlanCaptionTwoLines(t *testing.T) {
	got := PlanCaption(caption(0, 4, "A", "B"))
	want := []Segment{
		{Prompt: "A B", Line: "A", Start: 0, End: 2, Duration: 2},
		{Prompt: "A B", Line: "B", Start: 2, End: 4, Duration: 2},
	}
	assertSegments(t, got, want)
}

func TestPlanCaptionTilesSpanExactly(t *testing.T) {
	spans := []subtitles.Caption{
		caption(0.1, 0.7, "a", "b", "c"),
		caption(13.337, 19.001, "1", "2", "3", "4", "5", "6", "7"),
		caption(100, 100.3, "x", "y"),
	}
	for _, c := range spans {
		segments := PlanCaption(c)
		if len(segments) != len(c.Text) {
			t.Fatalf("expected %d segments, got %d", len(c.Text), len(segments))
		}
		if segments[0].Start != c.Start {
			t.Fatalf("first start %v != caption start %v", segments[0].Start, c.Start)
		}
		if segments[len(segments)-1].End != c.End {
			t.Fatalf("last end %v != caption end %v", segments[len(segments)-1].End, c.End)
		}
		want := (c.End - c.Start) / float64(len(c.Text))
		for i, seg := range segments {
			if seg.Duration != want {
				t.Fatalf("segment %d duration %v, want %v", i, seg.Duration, want)
			}
			if i > 0 && segments[i-1].End != seg.Start {
				t.Fatalf("segment %d start %v does not match previous end %v", i, seg.Start, segments[i-1].End)
			}
		}
	}
}

func TestPlanCaptionWithoutText(t *testing.T) {
	if got := PlanCaption(caption(0, 1)); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestPlanInterleavesGaps(t *testing.T) {
	captions := []subtitles.Caption{
		caption(2, 6, "one", "two"),
		caption(8, 9, "three"),
	}
	got := Plan(captions, 10)
	want := []Segment{
		{Start: 0, End: 2, Duration: 2, Gap: true},
		{Prompt: "one two", Line: "one", Start: 2, End: 4, Duration: 2},
		{Prompt: "one two", Line: "two", Start: 4, End: 6, Duration: 2},
		{Start: 6, End: 8, Duration: 2, Gap: true},
		{Prompt: "three", Line: "three", Start: 8, End: 9, Duration: 1},
		{Start: 9, End: 10, Duration: 1, Gap: true},
	}
	assertSegments(t, got, want)

	if span := Span(got); span != 10 {
		t.Fatalf("expected span 10, got %v", span)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start != got[i-1].End {
			t.Fatalf("plan not contiguous at %d: %+v", i, got)
		}
	}
}

func TestSpanEmpty(t *testing.T) {
	if Span(nil) != 0 {
		t.Fatal("expected zero span")
	}
}

func assertSegments(t *testing.T, got, want []Segment) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
