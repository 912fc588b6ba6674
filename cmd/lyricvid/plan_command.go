package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"lyricvid/internal/config"
	"lyricvid/internal/media/ffprobe"
	"lyricvid/internal/storyboard"
	"lyricvid/internal/subtitles"
	"lyricvid/internal/timeline"
)

const planTextWidth = 48

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var srtPath string
	var audioPath string
	var duration float64

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the segment and image plan without fetching anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			srtPath = flagOrEnv(srtPath, envSubtitlePath)
			audioPath = flagOrEnv(audioPath, envAudioPath)
			if srtPath == "" {
				return fmt.Errorf("missing required input: --srt")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			audioSeconds := duration
			if audioSeconds <= 0 {
				if audioPath == "" {
					return fmt.Errorf("missing required input: --audio or --duration")
				}
				audioSeconds, err = ffprobe.AudioDuration(cmd.Context(), cfg.FFprobeBinary(), audioPath)
				if err != nil {
					return fmt.Errorf("probe audio: %w", err)
				}
			}

			captions, err := subtitles.ParseFile(srtPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, issue := range subtitles.ValidateSRTContent(srtPath, audioSeconds) {
				fmt.Fprintf(out, "warning: %s\n", issue)
			}
			segments := timeline.Plan(captions, audioSeconds)
			writePlan(out, cfg, segments, audioSeconds)
			return nil
		},
	}

	cmd.Flags().StringVar(&srtPath, "srt", "", "SRT subtitle file (env "+envSubtitlePath+")")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Audio track to probe (env "+envAudioPath+")")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Audio length in seconds; skips ffprobe when set")
	return cmd
}

func writePlan(out io.Writer, cfg *config.Config, segments []timeline.Segment, audioSeconds float64) {
	slots := storyboard.PlanSlots(segments, storyboard.Options{
		SecondsPerImage: cfg.Image.SecondsPerImage,
		GapPrompt:       cfg.Image.GapPrompt,
		AudioLength:     audioSeconds,
	})
	images := make([]int, len(segments))
	for _, slot := range slots {
		images[slot.Segment]++
	}

	rows := make([][]string, 0, len(segments))
	for i, seg := range segments {
		text := seg.Line
		if seg.Gap {
			text = "(gap) " + cfg.Image.GapPrompt
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatTimestamp(seg.Start),
			formatTimestamp(seg.End),
			formatSeconds(storyboard.SegmentDuration(segments, i, audioSeconds)),
			strconv.Itoa(images[i]),
			truncate(text, planTextWidth),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "End", "Length", "Images", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d segments, %d images, %s of audio\n", len(segments), len(slots), formatSeconds(audioSeconds))
}
