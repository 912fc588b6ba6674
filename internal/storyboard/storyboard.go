package storyboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"lyricvid/internal/config"
	"lyricvid/internal/fileutil"
	"lyricvid/internal/logging"
	"lyricvid/internal/services"
	"lyricvid/internal/services/imagegen"
	"lyricvid/internal/timeline"
)

const stageName = "fetch"

// Generator produces one image for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (imagegen.Image, error)
}

// Captioner draws text onto the image stored at path, rewriting it as PNG.
type Captioner interface {
	Apply(path, text string) error
}

// Entry is one generated image and the time it stays on screen.
type Entry struct {
	Path     string
	Duration float64
	Start    float64
	End      float64
	Lyric    string
}

// SlotResult reports the outcome of a single image request. Segment and
// Slot are zero-based.
type SlotResult struct {
	Segment int
	Slot    int
	Entry   Entry
	Err     error
}

// OK reports whether the slot produced an image.
func (r SlotResult) OK() bool {
	return r.Err == nil
}

// Result collects everything the fetch stage produced.
type Result struct {
	Entries []Entry
	Slots   []SlotResult
	Planned int
	Failed  int
}

// Duration returns the summed on-screen time of all entries.
func (r Result) Duration() float64 {
	var total float64
	for _, entry := range r.Entries {
		total += entry.Duration
	}
	return total
}

// Options controls image planning.
type Options struct {
	SecondsPerImage float64
	GapPrompt       string
	Policy          string
	AudioLength     float64
}

// Fetcher requests, stores and captions the images for a plan.
type Fetcher struct {
	generator Generator
	captioner Captioner
	opts      Options
	logger    *slog.Logger
}

// NewFetcher constructs a fetcher. A nil captioner leaves images uncaptioned.
func NewFetcher(generator Generator, captioner Captioner, opts Options, logger *slog.Logger) *Fetcher {
	if opts.SecondsPerImage <= 0 {
		opts.SecondsPerImage = 4
	}
	if opts.Policy == "" {
		opts.Policy = config.FailurePolicySkip
	}
	return &Fetcher{
		generator: generator,
		captioner: captioner,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "storyboard"),
	}
}

// ImageCount returns how many images cover duration seconds, at least one.
func ImageCount(duration, secondsPerImage float64) int {
	if secondsPerImage <= 0 {
		return 1
	}
	count := int(math.Floor(duration / secondsPerImage))
	if count < 1 {
		return 1
	}
	return count
}

// SegmentDuration returns the on-screen time for segments[i]. The last
// segment runs to the end of the audio when audioLength lies beyond its start.
func SegmentDuration(segments []timeline.Segment, i int, audioLength float64) float64 {
	seg := segments[i]
	if i == len(segments)-1 && audioLength > seg.Start {
		return audioLength - seg.Start
	}
	return seg.End - seg.Start
}

// ImageName returns the file name for a slot. The segment index keeps names
// unique when segments share a start time.
func ImageName(segment int, start float64, slot int) string {
	return fmt.Sprintf("%04d_%.2f_%d.png", segment, start, slot)
}

// Slot is one planned image request.
type Slot struct {
	Segment  int
	Slot     int
	Prompt   string
	Lyric    string
	Start    float64
	End      float64
	Duration float64
	Name     string
}

// PlanSlots lays out every image request for segments without fetching.
func PlanSlots(segments []timeline.Segment, opts Options) []Slot {
	if opts.SecondsPerImage <= 0 {
		opts.SecondsPerImage = 4
	}
	var slots []Slot
	for i, seg := range segments {
		duration := SegmentDuration(segments, i, opts.AudioLength)
		count := ImageCount(duration, opts.SecondsPerImage)
		prompt, lyric := seg.Prompt, seg.Prompt
		if seg.Gap {
			prompt, lyric = opts.GapPrompt, ""
		}
		for j := 0; j < count; j++ {
			slots = append(slots, Slot{
				Segment:  i,
				Slot:     j,
				Prompt:   prompt,
				Lyric:    lyric,
				Start:    seg.Start,
				End:      seg.End,
				Duration: duration / float64(count),
				Name:     ImageName(i, seg.Start, j),
			})
		}
	}
	return slots
}

// Fetch generates every planned image into dir. Per-slot failures follow the
// configured policy; write errors and cancellation always stop the run.
func (f *Fetcher) Fetch(ctx context.Context, dir string, segments []timeline.Segment) (Result, error) {
	ctx = services.WithStage(ctx, stageName)
	slots := PlanSlots(segments, f.opts)
	result := Result{Planned: len(slots)}

	for start := 0; start < len(slots); {
		end := start
		for end < len(slots) && slots[end].Segment == slots[start].Segment {
			end++
		}
		if err := f.fetchSegment(ctx, dir, slots[start:end], &result); err != nil {
			return result, err
		}
		start = end
	}
	return result, nil
}

func (f *Fetcher) fetchSegment(ctx context.Context, dir string, slots []Slot, result *Result) error {
	segCtx := services.WithSegment(ctx, slots[0].Segment+1)
	logger := logging.WithContext(segCtx, f.logger)

	firstEntry := len(result.Entries)
	for _, slot := range slots {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := f.fetchSlot(segCtx, dir, slot)
		result.Slots = append(result.Slots, SlotResult{Segment: slot.Segment, Slot: slot.Slot, Entry: entry, Err: err})
		if err == nil {
			result.Entries = append(result.Entries, entry)
			logger.Debug("image ready",
				logging.String("path", entry.Path),
				logging.Float64("duration", entry.Duration),
			)
			continue
		}
		if isFatal(err) {
			return err
		}
		result.Failed++
		if f.opts.Policy == config.FailurePolicyAbort {
			return services.Wrap(services.ErrExternalTool, stageName, "generate image",
				fmt.Sprintf("image %d of segment %d failed", slot.Slot+1, slot.Segment+1), err)
		}
		logging.WarnWithContext(logger, "image request failed; slot skipped", "image_fetch_failed",
			logging.Int("slot", slot.Slot),
			logging.String("prompt", slot.Prompt),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the image endpoint or raise image.timeout_seconds"),
			logging.String(logging.FieldImpact, "video runs shorter than the audio for this segment"),
		)
	}

	survivors := result.Entries[firstEntry:]
	if f.opts.Policy == config.FailurePolicyStretch && len(survivors) > 0 && len(survivors) < len(slots) {
		total := slots[0].Duration * float64(len(slots))
		share := total / float64(len(survivors))
		for i := range survivors {
			survivors[i].Duration = share
		}
		logger.Info("stretched surviving images over failed slots",
			logging.Int("survivors", len(survivors)),
			logging.Int("planned", len(slots)),
			logging.Float64("duration", share),
		)
	}
	return nil
}

// errFatal marks local failures that no policy may skip.
type errFatal struct{ err error }

func (e errFatal) Error() string { return e.err.Error() }
func (e errFatal) Unwrap() error { return e.err }

func isFatal(err error) bool {
	var fatal errFatal
	return errors.As(err, &fatal) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (f *Fetcher) fetchSlot(ctx context.Context, dir string, slot Slot) (Entry, error) {
	img, err := f.generator.Generate(ctx, slot.Prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Entry{}, ctxErr
		}
		return Entry{}, err
	}

	path := filepath.Join(dir, slot.Name)
	if err := fileutil.WriteFileAtomic(path, img.Data, 0o644); err != nil {
		return Entry{}, errFatal{services.Wrap(services.ErrExternalTool, stageName, "write image", path, err)}
	}
	if f.captioner != nil {
		if err := f.captioner.Apply(path, slot.Lyric); err != nil {
			return Entry{}, fmt.Errorf("caption %s: %w", slot.Name, err)
		}
	}

	return Entry{
		Path:     path,
		Duration: slot.Duration,
		Start:    slot.Start,
		End:      slot.End,
		Lyric:    slot.Lyric,
	}, nil
}
