// Package pipeline orchestrates the subtitle job: audio extraction,
// transcription, subtitle persistence, optional translation, and burning,
// with progress events, cancellation, and per-stage failure classification.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"subburn/internal/config"
	"subburn/internal/domain"
	"subburn/internal/media"
	"subburn/internal/srt"
	"subburn/internal/transcribe"
	"subburn/internal/translate"
)

// supportedContainers lists the source video extensions a job accepts.
var supportedContainers = []string{".mp4", ".mkv", ".mov", ".avi", ".webm", ".m4v"}

// translateAttempts is how many times one caption is tried before the
// source text is kept.
const translateAttempts = 3

// defaultRetryDelays spaces the retries of a failed caption translation.
var defaultRetryDelays = []time.Duration{time.Second, 3 * time.Second}

// Transcriber produces timed segments from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) ([]domain.Segment, error)
}

// VideoTools covers the ffmpeg operations the pipeline needs.
type VideoTools interface {
	Probe(ctx context.Context, videoPath string) (media.ProbeInfo, error)
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outputPath string, style media.Style, quality media.Quality) error
}

// ModelStore resolves transcription models to local files.
type ModelStore interface {
	IsPresent(modelID string) bool
	Asset(modelID string) (domain.ModelAsset, error)
	EnsureDownloaded(ctx context.Context, modelID string, onProgress func(fraction float64)) (domain.ModelAsset, error)
}

// Recorder persists finished jobs. Recording failures are logged, never
// surfaced to the job itself.
type Recorder interface {
	Record(job domain.Job) error
}

// JobSpec describes one requested run. Settings are snapshotted here at
// submission; later configuration changes do not affect the run.
type JobSpec struct {
	SourcePath string
	Stages     domain.StageSelection
	Settings   config.Settings
	Observer   Observer
}

// Options wires a Runner's collaborators.
type Options struct {
	Models      ModelStore
	Video       VideoTools
	Transcriber Transcriber
	Translator  translate.Translator
	Recorder    Recorder
	Logger      *slog.Logger
}

// Runner executes subtitle jobs one at a time. A second Start while a job
// is active fails with ErrJobAlreadyRunning.
type Runner struct {
	models      ModelStore
	video       VideoTools
	transcriber Transcriber
	translator  translate.Translator
	recorder    Recorder
	logger      *slog.Logger

	// retryDelays is overridable in tests to avoid real backoff sleeps.
	retryDelays []time.Duration

	mu     sync.Mutex
	job    domain.Job
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner constructs an idle runner.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		models:      opts.Models,
		video:       opts.Video,
		transcriber: opts.Transcriber,
		translator:  opts.Translator,
		recorder:    opts.Recorder,
		logger:      logger,
		retryDelays: defaultRetryDelays,
		job:         domain.Job{Status: domain.JobStatusIdle},
	}
}

// Start validates the request and launches the worker goroutine. The
// returned job snapshot carries the assigned ID.
func (r *Runner) Start(spec JobSpec) (domain.Job, error) {
	if err := r.validate(spec); err != nil {
		return domain.Job{}, err
	}

	r.mu.Lock()
	if r.job.Status == domain.JobStatusRunning {
		r.mu.Unlock()
		return domain.Job{}, ErrJobAlreadyRunning
	}

	job := domain.Job{
		ID:         uuid.NewString(),
		SourcePath: spec.SourcePath,
		Stages:     spec.Stages,
		Status:     domain.JobStatusRunning,
		StartedAt:  time.Now(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.job = job
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	r.logger.Info("job started", "job", job.ID, "source", job.SourcePath,
		"transcribe", spec.Stages.Transcribe, "translate", spec.Stages.Translate, "burn", spec.Stages.Burn)

	go func() {
		defer close(done)
		r.run(ctx, job, spec)
	}()
	return job, nil
}

// Cancel requests cooperative cancellation of the active job. The job
// reaches the cancelled status asynchronously.
func (r *Runner) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job.Status != domain.JobStatusRunning || r.cancel == nil {
		return ErrNoRunningJob
	}
	r.logger.Info("job cancel requested", "job", r.job.ID)
	r.cancel()
	return nil
}

// Status returns a snapshot of the most recent job.
func (r *Runner) Status() domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneJob(r.job)
}

// Wait blocks until the active job's worker has finished. Returns
// immediately when no job was started.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// validate applies the pre-start checks: the settings snapshot, the
// source file, and the stage selection.
func (r *Runner) validate(spec JobSpec) error {
	if err := config.Validate(spec.Settings); err != nil {
		return stageFailure("", KindValidation, err)
	}
	if !spec.Stages.Any() {
		return stageFailure("", KindValidation, errors.New("no stages selected"))
	}

	info, err := os.Stat(spec.SourcePath)
	if err != nil {
		return stageFailure("", KindValidation, fmt.Errorf("source video: %w", err))
	}
	if info.IsDir() {
		return stageFailure("", KindValidation, fmt.Errorf("source video %s is a directory", spec.SourcePath))
	}
	ext := strings.ToLower(filepath.Ext(spec.SourcePath))
	if !slices.Contains(supportedContainers, ext) {
		return stageFailure("", KindValidation,
			fmt.Errorf("unsupported container %q, expected one of %s", ext, strings.Join(supportedContainers, ", ")))
	}

	if spec.Stages.Translate && r.translator == nil {
		return stageFailure("", KindValidation, errors.New("translation requested but no translation engine is configured"))
	}
	if !spec.Stages.Transcribe {
		if _, err := os.Stat(siblingSubtitlePath(spec.SourcePath)); err != nil {
			return stageFailure("", KindValidation,
				fmt.Errorf("transcription disabled and no subtitle file next to the video: %w", err))
		}
	}
	return nil
}

// run executes the worker body and settles the terminal state.
func (r *Runner) run(ctx context.Context, job domain.Job, spec JobSpec) {
	d := newDispatcher(spec.Observer)

	err := r.execute(ctx, &job, spec, d)

	job.FinishedAt = time.Now()
	switch {
	case err == nil:
		job.Status = domain.JobStatusCompleted
		job.Progress = 1
		r.logger.Info("job completed", "job", job.ID, "outputs", job.Outputs)
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		job.Status = domain.JobStatusCancelled
		r.logger.Info("job cancelled", "job", job.ID, "stage", job.CurrentStage)
	default:
		job.Status = domain.JobStatusFailed
		job.Err = err.Error()
		r.logger.Error("job failed", "job", job.ID, "stage", job.CurrentStage, "error", err)
	}

	r.mu.Lock()
	r.job = cloneJob(job)
	r.cancel = nil
	r.mu.Unlock()

	if r.recorder != nil {
		if recErr := r.recorder.Record(cloneJob(job)); recErr != nil {
			r.logger.Warn("recording job history failed", "job", job.ID, "error", recErr)
		}
	}

	d.finish(TerminalEvent{Job: cloneJob(job)})
	d.close()
}

// execute walks the selected stages in order. It returns nil on success,
// a context error on cancellation, and a *StageError on failure.
func (r *Runner) execute(ctx context.Context, job *domain.Job, spec JobSpec, d *dispatcher) error {
	st := spec.Settings

	workDir, err := os.MkdirTemp("", "subburn-*")
	if err != nil {
		return stageFailure("", KindPersistence, fmt.Errorf("create work directory: %w", err))
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	base := strings.TrimSuffix(filepath.Base(job.SourcePath), filepath.Ext(job.SourcePath))
	subtitlePath := filepath.Join(st.OutputDir, base+".srt")
	translatedPath := filepath.Join(st.OutputDir, base+"."+st.TargetLanguage+".srt")
	outputVideoPath := filepath.Join(st.OutputDir, base+"_subtitled.mp4")

	// Stage progress plumbing. Fractions within a stage never decrease,
	// and each stage closes at 1.0 before the next one opens.
	var floor float64
	emit := func(stage domain.Stage, fraction float64, message string) {
		if fraction > 1 {
			fraction = 1
		}
		if fraction < floor {
			return
		}
		floor = fraction
		r.mu.Lock()
		r.job.CurrentStage = stage
		r.job.Progress = fraction
		r.mu.Unlock()
		job.CurrentStage = stage
		job.Progress = fraction
		d.progress(ProgressEvent{JobID: job.ID, Stage: stage, Fraction: fraction, Message: message})
	}
	begin := func(stage domain.Stage, message string) {
		floor = 0
		emit(stage, 0, message)
	}
	addWarning := func(stage domain.Stage, message string) {
		warning := domain.Warning{Stage: stage, Message: message}
		job.Warnings = append(job.Warnings, warning)
		r.mu.Lock()
		r.job.Warnings = append(r.job.Warnings, warning)
		r.mu.Unlock()
	}
	setOutputs := func(mutate func(*domain.Outputs)) {
		mutate(&job.Outputs)
		r.mu.Lock()
		r.job.Outputs = job.Outputs
		r.mu.Unlock()
	}

	var doc srt.Document

	if spec.Stages.Transcribe {
		modelPath, err := r.ensureModel(ctx, st.Model, begin, emit)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		begin(domain.StageExtractingAudio, "probing source video")
		info, err := r.video.Probe(ctx, job.SourcePath)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return stageFailure(domain.StageExtractingAudio, KindExtraction, err)
		}
		if !info.HasAudio {
			return stageFailure(domain.StageExtractingAudio, KindExtraction,
				errors.New("source video has no audio track"))
		}
		emit(domain.StageExtractingAudio, 0.25, "extracting audio")

		audioPath := filepath.Join(workDir, base+".wav")
		if err := r.video.ExtractAudio(ctx, job.SourcePath, audioPath); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return stageFailure(domain.StageExtractingAudio, KindExtraction, err)
		}
		emit(domain.StageExtractingAudio, 1, "audio extracted")
		if err := ctx.Err(); err != nil {
			return err
		}

		begin(domain.StageTranscribing, "transcribing audio")
		segments, err := r.transcriber.Transcribe(ctx, transcribe.Request{
			AudioPath:     audioPath,
			ModelPath:     modelPath,
			Language:      st.SourceLanguage,
			AudioDuration: info.Duration,
			OnProgress: func(fraction float64) {
				emit(domain.StageTranscribing, fraction, "")
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return stageFailure(domain.StageTranscribing, KindTranscription, err)
		}
		emit(domain.StageTranscribing, 1, "transcription finished")
		if err := ctx.Err(); err != nil {
			return err
		}

		begin(domain.StageWritingSubtitles, "writing subtitle file")
		doc, err = srt.FromSegments(segments)
		if err != nil {
			kind := KindPersistence
			if errors.Is(err, srt.ErrEmptyTranscript) {
				kind = KindEmptyTranscript
			}
			return stageFailure(domain.StageWritingSubtitles, kind, err)
		}
		if err := writeSubtitleFile(subtitlePath, doc); err != nil {
			return stageFailure(domain.StageWritingSubtitles, KindPersistence, err)
		}
		setOutputs(func(o *domain.Outputs) { o.SubtitlePath = subtitlePath })
		emit(domain.StageWritingSubtitles, 1, "subtitle file written")
	} else {
		existing := siblingSubtitlePath(job.SourcePath)
		data, err := os.ReadFile(existing)
		if err != nil {
			return stageFailure("", KindValidation, fmt.Errorf("read subtitle file: %w", err))
		}
		doc, err = srt.Parse(string(data))
		if err != nil {
			return stageFailure("", KindValidation, fmt.Errorf("parse subtitle file %s: %w", existing, err))
		}
		subtitlePath = existing
		setOutputs(func(o *domain.Outputs) { o.SubtitlePath = existing })
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	burnDoc := doc

	if spec.Stages.Translate {
		begin(domain.StageTranslating, "translating captions")
		texts := doc.Texts()
		translated := make([]string, len(texts))
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := r.translateCaption(ctx, text, st)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				addWarning(domain.StageTranslating,
					fmt.Sprintf("caption %d kept original text after %d attempts: %v", i+1, translateAttempts, err))
				out = text
			}
			translated[i] = out
			emit(domain.StageTranslating, float64(i+1)/float64(len(texts)),
				fmt.Sprintf("caption %d/%d", i+1, len(texts)))
		}

		transDoc, err := doc.WithTranslatedText(translated)
		if err != nil {
			return stageFailure(domain.StageTranslating, KindPersistence, err)
		}
		if err := writeSubtitleFile(translatedPath, transDoc); err != nil {
			return stageFailure(domain.StageTranslating, KindPersistence, err)
		}
		setOutputs(func(o *domain.Outputs) { o.TranslatedSubtitlePath = translatedPath })
		emit(domain.StageTranslating, 1, "translation finished")
		burnDoc = transDoc
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if spec.Stages.Burn {
		begin(domain.StageBurning, "burning subtitles")
		if st.Uppercase {
			burnDoc = burnDoc.Uppercased()
		}
		burnPath := filepath.Join(workDir, base+".burn.srt")
		if err := os.WriteFile(burnPath, []byte(burnDoc.Render()), 0o644); err != nil {
			return stageFailure(domain.StageBurning, KindPersistence, fmt.Errorf("stage burn subtitles: %w", err))
		}
		if err := os.MkdirAll(st.OutputDir, 0o755); err != nil {
			return stageFailure(domain.StageBurning, KindPersistence, fmt.Errorf("create output directory: %w", err))
		}

		style := media.Style{
			FontFamily:      st.FontFamily,
			FontSize:        st.FontSize,
			FontColor:       st.FontColor,
			OutlineColor:    st.OutlineColor,
			BackgroundColor: st.BackgroundColor,
			Position:        st.Position,
		}
		quality := media.Quality{CRF: st.VideoQuality, Preset: st.VideoPreset}
		if err := r.video.BurnSubtitles(ctx, job.SourcePath, burnPath, outputVideoPath, style, quality); err != nil {
			// The encode may have left a partial output behind. Earlier
			// artifacts (the subtitle files) are kept.
			_ = os.Remove(outputVideoPath)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return stageFailure(domain.StageBurning, KindEncoding, err)
		}
		if ctx.Err() != nil {
			_ = os.Remove(outputVideoPath)
			return ctx.Err()
		}
		setOutputs(func(o *domain.Outputs) { o.VideoPath = outputVideoPath })
		emit(domain.StageBurning, 1, "video encoded")
	}

	return nil
}

// ensureModel resolves the model file, downloading it first when absent.
func (r *Runner) ensureModel(ctx context.Context, modelID string, begin func(domain.Stage, string), emit func(domain.Stage, float64, string)) (string, error) {
	if r.models.IsPresent(modelID) {
		asset, err := r.models.Asset(modelID)
		if err != nil {
			return "", stageFailure(domain.StageDownloadingModel, KindDownload, err)
		}
		return asset.LocalPath, nil
	}

	begin(domain.StageDownloadingModel, "downloading model "+modelID)
	asset, err := r.models.EnsureDownloaded(ctx, modelID, func(fraction float64) {
		emit(domain.StageDownloadingModel, fraction, "")
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", stageFailure(domain.StageDownloadingModel, KindDownload, err)
	}
	emit(domain.StageDownloadingModel, 1, "model ready")
	return asset.LocalPath, nil
}

// translateCaption tries one caption up to translateAttempts times with
// backoff between attempts.
func (r *Runner) translateCaption(ctx context.Context, text string, st config.Settings) (string, error) {
	var lastErr error
	for attempt := 0; attempt < translateAttempts; attempt++ {
		if attempt > 0 {
			delay := r.retryDelays[min(attempt-1, len(r.retryDelays)-1)]
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
		out, err := r.translator.Translate(ctx, text, st.SourceLanguage, st.TargetLanguage)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Debug("caption translation attempt failed", "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

// writeSubtitleFile persists a document, keeping a .bak copy of any file
// it overwrites. The write goes through a temp file so a failure cannot
// leave a truncated subtitle behind.
func writeSubtitleFile(path string, doc srt.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("back up existing subtitle file: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(doc.Render()), 0o644); err != nil {
		return fmt.Errorf("write subtitle file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move subtitle file into place: %w", err)
	}
	return nil
}

// siblingSubtitlePath is where an existing subtitle file is expected when
// transcription is not part of the run.
func siblingSubtitlePath(videoPath string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return base + ".srt"
}

// cloneJob deep-copies a job so callers cannot share the warnings slice.
func cloneJob(job domain.Job) domain.Job {
	out := job
	out.Warnings = append([]domain.Warning(nil), job.Warnings...)
	return out
}
