package timeline

import (
	"lyricvid/internal/subtitles"
)

// Segment is one planning record. Gap segments carry no prompt.
type Segment struct {
	// Prompt is the owning caption's lines joined with a single space.
	Prompt string
	// Line is the caption line this segment's time slice was derived from.
	Line     string
	Start    float64
	End      float64
	Duration float64
	Gap      bool
}

type entry struct {
	segment Segment
	caption *subtitles.Caption
}

// Interpolate returns one placeholder segment per caption, spanning the whole
// caption, interleaved with gap segments so that the result is contiguous
// from 0 to audioLength. Empty gaps are omitted.
func Interpolate(captions []subtitles.Caption, audioLength float64) []Segment {
	entries := interpolate(captions, audioLength)
	segments := make([]Segment, len(entries))
	for i, e := range entries {
		segments[i] = e.segment
	}
	return segments
}

func interpolate(captions []subtitles.Caption, audioLength float64) []entry {
	entries := make([]entry, 0, len(captions)*2+1)
	cursor := 0.0
	for i := range captions {
		caption := &captions[i]
		if gap, ok := newGap(cursor, caption.Start); ok {
			entries = append(entries, entry{segment: gap})
		}
		entries = append(entries, entry{
			segment: Segment{
				Prompt:   caption.Joined(),
				Line:     caption.Joined(),
				Start:    caption.Start,
				End:      caption.End,
				Duration: caption.End - caption.Start,
			},
			caption: caption,
		})
		if caption.End > cursor {
			cursor = caption.End
		}
	}
	if gap, ok := newGap(cursor, audioLength); ok {
		entries = append(entries, entry{segment: gap})
	}
	return entries
}

func newGap(start, end float64) (Segment, bool) {
	if end <= start {
		return Segment{}, false
	}
	return Segment{Start: start, End: end, Duration: end - start, Gap: true}, true
}

// PlanCaption divides the caption span evenly across its text lines. Every
// segment carries the caption's joined text as its prompt. Boundaries shared
// by neighbouring segments are computed by the same expression so they match
// exactly.
func PlanCaption(c subtitles.Caption) []Segment {
	n := len(c.Text)
	if n == 0 {
		return nil
	}
	prompt := c.Joined()
	d := c.End - c.Start
	step := d / float64(n)

	segments := make([]Segment, n)
	for i, line := range c.Text {
		start := c.Start
		if i > 0 {
			start = boundary(c, i, n)
		}
		end := c.End
		if i < n-1 {
			end = boundary(c, i+1, n)
		}
		segments[i] = Segment{
			Prompt:   prompt,
			Line:     line,
			Start:    start,
			End:      end,
			Duration: step,
		}
	}
	return segments
}

// boundary returns the start of line k, which is also the end of line k-1.
func boundary(c subtitles.Caption, k, n int) float64 {
	return c.Start + float64(k)*(c.End-c.Start)/float64(n)
}

// Plan interpolates gaps and expands every caption into its per-line
// segments, producing the ordered planning sequence.
func Plan(captions []subtitles.Caption, audioLength float64) []Segment {
	entries := interpolate(captions, audioLength)
	segments := make([]Segment, 0, len(entries))
	for _, e := range entries {
		if e.caption == nil {
			segments = append(segments, e.segment)
			continue
		}
		segments = append(segments, PlanCaption(*e.caption)...)
	}
	return segments
}

// Span returns the total time covered by segments, measured from the first
// start to the last end.
func Span(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].End - segments[0].Start
}
