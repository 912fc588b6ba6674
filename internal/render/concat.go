package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lyricvid/internal/storyboard"
)

// WriteConcatScript writes an ffmpeg concat demuxer script for entries.
func WriteConcatScript(w io.Writer, entries []storyboard.Entry) error {
	if len(entries) == 0 {
		return errors.New("concat script: no entries")
	}
	buf := bufio.NewWriter(w)
	fmt.Fprintln(buf, "ffconcat version 1.0")
	for _, entry := range entries {
		if entry.Duration <= 0 {
			return fmt.Errorf("concat script: %s has non-positive duration %v", entry.Path, entry.Duration)
		}
		fmt.Fprintf(buf, "file %s\n", quotePath(entry.Path))
		fmt.Fprintf(buf, "duration %s\n", formatSeconds(entry.Duration))
	}
	// The demuxer ignores the duration of the final entry unless the file is repeated.
	fmt.Fprintf(buf, "file %s\n", quotePath(entries[len(entries)-1].Path))
	return buf.Flush()
}

// ScriptDuration sums the duration directives of a concat script.
func ScriptDuration(r io.Reader) (float64, error) {
	scanner := bufio.NewScanner(r)
	var total float64
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		value, ok := strings.CutPrefix(line, "duration ")
		if !ok {
			continue
		}
		seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, fmt.Errorf("concat script: parse duration %q: %w", value, err)
		}
		total += seconds
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("concat script: %w", err)
	}
	return total, nil
}

func quotePath(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
