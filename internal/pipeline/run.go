package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lyricvid/internal/history"
	"lyricvid/internal/logging"
	"lyricvid/internal/media/ffprobe"
	"lyricvid/internal/notifications"
	"lyricvid/internal/overlay"
	"lyricvid/internal/preflight"
	"lyricvid/internal/render"
	"lyricvid/internal/services"
	"lyricvid/internal/storyboard"
	"lyricvid/internal/subtitles"
	"lyricvid/internal/timeline"
)

// driftTolerance is the shortfall in seconds below which a rendered video
// counts as matching the audio.
const driftTolerance = 0.05

// Run renders req. The returned Report is populated as far as the run got,
// including on error.
func (r *Runner) Run(ctx context.Context, req Request) (report Report, err error) {
	req, err = normalizeRequest(req)
	if err != nil {
		return report, err
	}
	if req.Style == "" {
		req.Style = r.cfg.Image.Style
	}
	report.Output = req.OutputPath

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "render", "prepare output", filepath.Dir(req.OutputPath), err)
	}
	lockPath := req.OutputPath + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "render", "acquire lock", lockPath, err)
	}
	if !locked {
		return report, services.Wrap(services.ErrTransient, "render", "acquire lock", "another render is writing "+req.OutputPath, nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	report.RunID = uuid.NewString()
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)
	started := r.now()

	r.begin(ctx, logger, req, report.RunID)
	defer func() {
		report.Elapsed = r.now().Sub(started)
		r.finish(ctx, logger, report, err)
		r.notify(ctx, logger, report, err)
	}()

	logger.Info("render started",
		logging.String(logging.FieldEventType, "render_start"),
		logging.String("subtitles", req.SubtitlePath),
		logging.String("audio", req.AudioPath),
		logging.String("output", req.OutputPath),
		logging.String("style", req.Style),
	)
	err = r.render(ctx, logger, req, &report)
	if err != nil {
		logging.ErrorWithContext(logger, "render failed", "render_failed",
			logging.Error(err),
			logging.Alert("render_failed"),
			logging.String("failure_status", services.FailureStatus(err)),
			logging.Int("images", report.Fetched),
			logging.Int("failed_images", report.Failed),
		)
		return report, err
	}

	logger.Info("render complete",
		logging.String(logging.FieldEventType, "render_complete"),
		logging.String("output", report.Output),
		logging.Int("images", report.Fetched),
		logging.Int("failed_images", report.Failed),
		logging.Float64("audio_seconds", report.AudioSeconds),
		logging.Float64("rendered_seconds", report.RenderedSeconds),
		logging.Duration("elapsed", r.now().Sub(started)),
	)
	return report, nil
}

func (r *Runner) render(ctx context.Context, logger *slog.Logger, req Request, report *Report) error {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "ensure directories", "", err)
	}
	if err := preflight.Failures(preflight.RunAll(ctx, r.cfg)); err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "run checks", "", err)
	}

	captions, err := subtitles.ParseFile(req.SubtitlePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "parse", "read subtitles", req.SubtitlePath, err)
	}

	audioSeconds, err := ffprobe.AudioDuration(ctx, r.cfg.FFprobeBinary(), req.AudioPath)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, ffprobe.ErrNoAudio) {
			marker = services.ErrValidation
		}
		return services.Wrap(marker, "probe", "audio duration", req.AudioPath, err)
	}
	report.AudioSeconds = audioSeconds

	for _, c := range captions {
		logger.Debug("caption",
			logging.Int("index", c.Index),
			logging.Float64("start", c.Start),
			logging.Float64("end", c.End),
			logging.String("text", c.Joined()),
		)
	}

	segments := timeline.Plan(captions, audioSeconds)
	report.Segments = len(segments)
	if len(segments) == 0 {
		return services.Wrap(services.ErrValidation, "plan", "segments", "no captions and no audio to cover", nil)
	}
	logger.Info("segments planned",
		logging.Int("captions", len(captions)),
		logging.Int("segments", len(segments)),
		logging.Float64("planned_seconds", timeline.Span(segments)),
		logging.Float64("audio_seconds", audioSeconds),
	)

	renderer, err := overlay.NewRenderer(r.cfg.Overlay)
	if err != nil {
		return err
	}
	defer renderer.Close()

	workDir, err := os.MkdirTemp(r.cfg.Paths.WorkDir, "render-")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "fetch", "create work dir", r.cfg.Paths.WorkDir, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logging.WarnWithContext(logger, "failed to remove work directory", "work_dir_cleanup_failed",
				logging.String("path", workDir),
				logging.Error(rmErr),
				logging.String(logging.FieldErrorHint, "remove the directory by hand"),
				logging.String(logging.FieldImpact, "temporary images remain on disk"),
			)
		}
	}()

	fetcher := storyboard.NewFetcher(r.generatorFor(req.Style), renderer, storyboard.Options{
		SecondsPerImage: r.cfg.Image.SecondsPerImage,
		GapPrompt:       r.cfg.Image.GapPrompt,
		Policy:          r.cfg.Image.FailurePolicy,
		AudioLength:     audioSeconds,
	}, r.logger)
	result, err := fetcher.Fetch(ctx, workDir, segments)
	report.Planned = result.Planned
	report.Fetched = len(result.Entries)
	report.Failed = result.Failed
	report.RenderedSeconds = result.Duration()
	if err != nil {
		return err
	}
	if len(result.Entries) == 0 {
		return services.Wrap(services.ErrExternalTool, "fetch", "generate images",
			fmt.Sprintf("all %d image requests failed", result.Planned), nil)
	}
	if report.Drift() > driftTolerance {
		logging.WarnWithContext(logger, "video shorter than audio", "render_drift",
			logging.Alert("drift"),
			logging.Float64("audio_seconds", report.AudioSeconds),
			logging.Float64("rendered_seconds", report.RenderedSeconds),
			logging.Int("failed_images", report.Failed),
			logging.String(logging.FieldErrorHint, "set image.failure_policy = \"stretch\" to keep sync"),
			logging.String(logging.FieldImpact, "captions drift ahead of the audio after failed images"),
		)
	}

	assembler := render.NewAssembler(render.SettingsFromConfig(r.cfg), r.logger, r.assemblerOpts...)
	return assembler.Assemble(ctx, result.Entries, req.AudioPath, req.OutputPath)
}

func (r *Runner) begin(ctx context.Context, logger *slog.Logger, req Request, runID string) {
	if r.history == nil {
		return
	}
	_, err := r.history.Begin(ctx, history.Run{
		RunID:        runID,
		SubtitlePath: req.SubtitlePath,
		AudioPath:    req.AudioPath,
		OutputPath:   req.OutputPath,
		Style:        req.Style,
		StartedAt:    r.now(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record render start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_db"),
			logging.String(logging.FieldImpact, "this render will be missing from history"),
		)
	}
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, report Report, runErr error) {
	if r.history == nil {
		return
	}
	status := history.StatusSucceeded
	if runErr != nil {
		status = history.Status(services.FailureStatus(runErr))
	}
	err := r.history.Finish(context.WithoutCancel(ctx), report.RunID, history.Outcome{
		Status:          status,
		AudioSeconds:    report.AudioSeconds,
		RenderedSeconds: report.RenderedSeconds,
		ImagesPlanned:   report.Planned,
		ImagesFetched:   report.Fetched,
		ImagesFailed:    report.Failed,
		Err:             runErr,
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record render outcome", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_db"),
			logging.String(logging.FieldImpact, "history shows this render as running"),
		)
	}
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, report Report, runErr error) {
	ctx = context.WithoutCancel(ctx)
	var err error
	if runErr != nil {
		err = r.notifier.NotifyError(ctx, runErr, "render "+filepath.Base(report.Output))
	} else {
		err = r.notifier.NotifyRenderCompleted(ctx, notifications.RenderSummary{
			OutputPath:   report.Output,
			Images:       report.Fetched,
			FailedImages: report.Failed,
			AudioSeconds: report.AudioSeconds,
			Elapsed:      report.Elapsed,
		})
	}
	if err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "no push notification for this render"),
		)
	}
}

func normalizeRequest(req Request) (Request, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"subtitle path", &req.SubtitlePath},
		{"audio path", &req.AudioPath},
		{"output path", &req.OutputPath},
	}
	for _, f := range fields {
		trimmed := strings.TrimSpace(*f.value)
		if trimmed == "" {
			return req, services.Wrap(services.ErrValidation, "render", "request", f.name+" is required", nil)
		}
		abs, err := filepath.Abs(trimmed)
		if err != nil {
			return req, services.Wrap(services.ErrValidation, "render", "request", f.name, err)
		}
		*f.value = abs
	}
	req.Style = strings.TrimSpace(req.Style)
	return req, nil
}
