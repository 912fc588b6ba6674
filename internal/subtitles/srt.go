package subtitles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Caption is one timed SRT block.
type Caption struct {
	Index int
	Start float64
	End   float64
	Text  []string
}

// Duration returns the caption span in seconds.
func (c Caption) Duration() float64 {
	return c.End - c.Start
}

// Joined returns the caption lines separated by a single space.
func (c Caption) Joined() string {
	return strings.Join(c.Text, " ")
}

var (
	// ErrMissingTimestamp reports a block with no "start --> end" line.
	ErrMissingTimestamp = errors.New("missing timestamp line")
	// ErrInvalidTimestamp reports a timestamp line that cannot be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrMissingText reports a block with timing but no text lines.
	ErrMissingText = errors.New("missing caption text")
	// ErrTextBeforeIndex reports text that appears before any block header.
	ErrTextBeforeIndex = errors.New("text before cue index")
)

// ParseError locates a malformed block.
type ParseError struct {
	Line  int
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("srt line %d (cue %d): %v", e.Line, e.Index, e.Err)
	}
	return fmt.Sprintf("srt line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const arrow = "-->"

// ParseFile reads and parses the SRT file at path.
func ParseFile(path string) ([]Caption, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open srt: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

type block struct {
	index     int
	hasIndex  bool
	hasTime   bool
	start     float64
	end       float64
	text      []string
	startLine int
}

func (b *block) empty() bool {
	return !b.hasIndex && !b.hasTime && len(b.text) == 0
}

// Parse reads SRT blocks from r. Any malformed block fails the whole input.
func Parse(r io.Reader) ([]Caption, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		captions []Caption
		current  block
		lineNo   int
	)

	flush := func() error {
		if current.empty() {
			return nil
		}
		index := current.index
		if !current.hasIndex {
			index = len(captions) + 1
		}
		if !current.hasTime {
			return &ParseError{Line: current.startLine, Index: index, Err: ErrMissingTimestamp}
		}
		if len(current.text) == 0 {
			return &ParseError{Line: current.startLine, Index: index, Err: ErrMissingText}
		}
		captions = append(captions, Caption{
			Index: index,
			Start: current.start,
			End:   current.end,
			Text:  current.text,
		})
		current = block{}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		line = strings.TrimSpace(line)

		if current.empty() {
			current.startLine = lineNo
		}

		switch {
		case line == "":
			if err := flush(); err != nil {
				return nil, err
			}
		case isDigits(line) && !current.hasTime:
			if current.hasIndex {
				return nil, &ParseError{Line: lineNo, Index: current.index, Err: ErrMissingTimestamp}
			}
			index, err := strconv.Atoi(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("cue index %q: %w", line, err)}
			}
			current.index = index
			current.hasIndex = true
		case strings.Contains(line, arrow) && !current.hasTime:
			start, end, err := parseTimeRange(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Index: current.index, Err: err}
			}
			current.start = start
			current.end = end
			current.hasTime = true
		default:
			if !current.hasTime {
				if !current.hasIndex {
					return nil, &ParseError{Line: lineNo, Err: ErrTextBeforeIndex}
				}
				return nil, &ParseError{Line: lineNo, Index: current.index, Err: ErrMissingTimestamp}
			}
			current.text = append(current.text, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return captions, nil
}

func parseTimeRange(line string) (float64, float64, error) {
	startText, endText, _ := strings.Cut(line, arrow)
	// Position hints such as "X1:100 X2:200" may follow the end timestamp.
	if fields := strings.Fields(endText); len(fields) > 0 {
		endText = fields[0]
	}
	start, err := parseSRTTimestamp(startText)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseSRTTimestamp(endText)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("%w: end %s precedes start %s", ErrInvalidTimestamp, strings.TrimSpace(endText), strings.TrimSpace(startText))
	}
	return start, end, nil
}

// maxHourDigits bounds the hour field so hours*3600 cannot overflow.
const maxHourDigits = 6

func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: empty timestamp", ErrInvalidTimestamp)
	}
	// SRT uses a comma before milliseconds; some tools emit a period.
	clock, fraction, ok := strings.Cut(strings.Replace(value, ".", ",", 1), ",")
	if !ok || fraction == "" || len(fraction) > 3 || !isDigits(fraction) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	for i, part := range hms {
		limit := 2
		if i == 0 {
			limit = maxHourDigits
		}
		if !isDigits(part) || len(part) > limit {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
		}
	}
	var fields [4]int
	for i, part := range []string{hms[0], hms[1], hms[2], fraction + strings.Repeat("0", 3-len(fraction))} {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidTimestamp, value, err)
		}
		fields[i] = n
	}
	hours, minutes, seconds, millis := fields[0], fields[1], fields[2], fields[3]
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
