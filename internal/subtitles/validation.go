package subtitles

import (
	"errors"
	"fmt"
)

// audioTolerance absorbs probe rounding when comparing cue ends to the audio length.
const audioTolerance = 0.05

// ValidateSRTContent checks an SRT file for issues that do not stop a render.
// Returns a list of issues found; empty slice means validation passed.
// audioSeconds <= 0 skips the audio length comparison.
func ValidateSRTContent(path string, audioSeconds float64) []string {
	var issues []string

	captions, err := ParseFile(path)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			return append(issues, fmt.Sprintf("parse_error: %v", parseErr))
		}
		return append(issues, fmt.Sprintf("read_error: %v", err))
	}
	if len(captions) == 0 {
		return append(issues, "empty_subtitle_file")
	}

	for i, caption := range captions {
		if caption.End == caption.Start {
			issues = append(issues, fmt.Sprintf("zero_length_cue: index=%d at=%.3fs", caption.Index, caption.Start))
		}
		if i > 0 && caption.Start < captions[i-1].End {
			issues = append(issues, fmt.Sprintf("out_of_order_cue: index=%d starts=%.3fs before previous end=%.3fs",
				caption.Index, caption.Start, captions[i-1].End))
		}
		if audioSeconds > 0 && caption.End > audioSeconds+audioTolerance {
			issues = append(issues, fmt.Sprintf("cue_past_audio_end: index=%d end=%.3fs audio=%.2fs",
				caption.Index, caption.End, audioSeconds))
		}
	}

	return issues
}
