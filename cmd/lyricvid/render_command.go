package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lyricvid/internal/history"
	"lyricvid/internal/pipeline"
)

// Environment fallbacks for render inputs, typically set in .env.
const (
	envSubtitlePath = "LYRICVID_SRT_PATH"
	envAudioPath    = "LYRICVID_AUDIO_PATH"
	envOutputPath   = "LYRICVID_OUTPUT_PATH"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var req pipeline.Request

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a lyric video from subtitles and audio",
		Long: "Render a lyric video from an SRT file and an audio track.\n\n" +
			"Paths not given as flags are read from " + envSubtitlePath + ", " +
			envAudioPath + " and " + envOutputPath + " (a .env file in the working directory is honoured).",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SubtitlePath = flagOrEnv(req.SubtitlePath, envSubtitlePath)
			req.AudioPath = flagOrEnv(req.AudioPath, envAudioPath)
			req.OutputPath = flagOrEnv(req.OutputPath, envOutputPath)
			if missing := missingInputs(req); len(missing) > 0 {
				return fmt.Errorf("missing required input: %s", strings.Join(missing, ", "))
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			return ctx.withHistory(func(store *history.Store) error {
				runner := pipeline.NewRunner(cfg, logger, pipeline.WithHistory(store))
				report, err := runner.Run(cmd.Context(), req)
				if err != nil {
					return err
				}
				printReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.SubtitlePath, "srt", "", "SRT subtitle file (env "+envSubtitlePath+")")
	cmd.Flags().StringVar(&req.AudioPath, "audio", "", "Audio track (env "+envAudioPath+")")
	cmd.Flags().StringVarP(&req.OutputPath, "output", "o", "", "Output MP4 path (env "+envOutputPath+")")
	cmd.Flags().StringVar(&req.Style, "style", "", "Image style, sent as model=flux-<style> (default image.style)")
	return cmd
}

func flagOrEnv(value, key string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(key))
}

func missingInputs(req pipeline.Request) []string {
	var missing []string
	if req.SubtitlePath == "" {
		missing = append(missing, "--srt")
	}
	if req.AudioPath == "" {
		missing = append(missing, "--audio")
	}
	if req.OutputPath == "" {
		missing = append(missing, "--output")
	}
	return missing
}

func printReport(cmd *cobra.Command, report pipeline.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rendered %s\n", report.Output)
	fmt.Fprintf(out, "  Run ID:    %s\n", report.RunID)
	fmt.Fprintf(out, "  Segments:  %d\n", report.Segments)
	fmt.Fprintf(out, "  Images:    %d of %d (%d failed)\n", report.Fetched, report.Planned, report.Failed)
	fmt.Fprintf(out, "  Duration:  %s video / %s audio\n", formatSeconds(report.RenderedSeconds), formatSeconds(report.AudioSeconds))
	fmt.Fprintf(out, "  Elapsed:   %s\n", formatElapsed(report.Elapsed))
}
