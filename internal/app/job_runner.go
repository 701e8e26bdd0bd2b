package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/pkg/logger"
	"go.uber.org/zap"
)

// JobObserver is told about every job state change. It receives a copy
// of the job and must not block for long.
type JobObserver interface {
	JobUpdated(job domain.Job)
}

// JobRunner runs a single job from start to its terminal event
type JobRunner struct {
	extractor domain.Extractor
	finalizer domain.Finalizer
	tagger    domain.Tagger
	config    *domain.DownloadConfig
	logger    *zap.Logger
	events    *logger.MultiLogger
	observers []JobObserver
}

// NewJobRunner creates a job runner. tagger and events may be nil.
func NewJobRunner(
	extractor domain.Extractor,
	finalizer domain.Finalizer,
	tagger domain.Tagger,
	config *domain.DownloadConfig,
	logger *zap.Logger,
	events *logger.MultiLogger,
) *JobRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobRunner{
		extractor: extractor,
		finalizer: finalizer,
		tagger:    tagger,
		config:    config,
		logger:    logger,
		events:    events,
	}
}

// AddObserver registers an observer for job updates
func (r *JobRunner) AddObserver(observer JobObserver) {
	r.observers = append(r.observers, observer)
}

// Run executes job and emits exactly one terminal event through reporter.
// Cancellation is observed through ctx before extraction starts and again
// after it finishes; a cancelled job leaves no output file behind.
// The returned error is nil only if the job completed.
func (r *JobRunner) Run(ctx context.Context, job *domain.Job, reporter *Reporter) error {
	incomingDir := filepath.Join(r.config.IncomingDir(), job.ID)
	defer r.removeIncoming(incomingDir)

	title, path, err := r.run(ctx, job, incomingDir, reporter)
	if err != nil {
		job.MarkFailed(err)
		reporter.Fail(err)
		r.logFailure(job, err)
		r.publish(job)
		return err
	}

	job.MarkCompleted(title, path)
	reporter.Complete(title, path)
	r.logger.Info("Job completed",
		zap.String("id", job.ID),
		zap.String("video_id", job.VideoID),
		zap.String("file", path))
	if r.events != nil {
		r.events.LogJobEvent("job_completed",
			zap.String("job_id", job.ID),
			zap.String("video_id", job.VideoID),
			zap.String("title", title),
			zap.String("file", path))
	}
	r.publish(job)
	return nil
}

func (r *JobRunner) run(ctx context.Context, job *domain.Job, incomingDir string, reporter *Reporter) (string, string, error) {
	if ctx.Err() != nil {
		return "", "", domain.NewCancelledError(context.Cause(ctx))
	}

	job.MarkProcessing()
	r.publish(job)
	r.logger.Info("Processing job",
		zap.String("id", job.ID),
		zap.String("video_id", job.VideoID),
		zap.String("url", job.URL))
	if r.events != nil {
		r.events.LogJobEvent("job_started",
			zap.String("job_id", job.ID),
			zap.String("video_id", job.VideoID),
			zap.String("url", job.URL))
	}

	if err := os.MkdirAll(r.config.Dir, 0755); err != nil {
		return "", "", domain.NewExtractionError(fmt.Errorf("failed to create download directory: %w", err))
	}
	if err := os.MkdirAll(incomingDir, 0755); err != nil {
		return "", "", domain.NewExtractionError(fmt.Errorf("failed to create incoming directory: %w", err))
	}

	result, err := r.extractor.Extract(ctx, domain.ExtractRequest{
		JobID:     job.ID,
		URL:       job.URL,
		OutputDir: incomingDir,
	}, reporter.Progress)
	if err != nil {
		if ctx.Err() != nil {
			return "", "", domain.NewCancelledError(context.Cause(ctx))
		}
		var jobErr *domain.JobError
		if errors.As(err, &jobErr) {
			return "", "", jobErr
		}
		return "", "", domain.NewExtractionError(err)
	}

	if ctx.Err() != nil {
		removeBestEffort(result.FilePath)
		return "", "", domain.NewCancelledError(context.Cause(ctx))
	}

	title := result.Title
	if title == "" {
		title = job.VideoID
	}

	if r.tagger != nil && r.config.WriteTags {
		if err := r.tagger.Tag(result.FilePath, *result); err != nil {
			r.logger.Warn("Failed to write tags",
				zap.String("id", job.ID),
				zap.String("file", result.FilePath),
				zap.Error(err))
		}
	}

	path, err := r.finalizer.Finalize(ctx, result.FilePath, title)
	if err != nil {
		removeBestEffort(result.FilePath)
		if ctx.Err() != nil {
			return "", "", domain.NewCancelledError(context.Cause(ctx))
		}
		return "", "", domain.NewExtractionError(err)
	}

	return title, path, nil
}

func (r *JobRunner) logFailure(job *domain.Job, err error) {
	if job.Status == domain.StatusCancelled {
		r.logger.Info("Job cancelled", zap.String("id", job.ID), zap.String("video_id", job.VideoID))
	} else {
		r.logger.Error("Job failed",
			zap.String("id", job.ID),
			zap.String("video_id", job.VideoID),
			zap.Error(err))
	}

	if r.events == nil {
		return
	}
	r.events.LogJobEvent("job_"+string(job.Status),
		zap.String("job_id", job.ID),
		zap.String("video_id", job.VideoID),
		zap.String("error_kind", string(job.ErrorKind)),
		zap.String("error", job.ErrorMessage))
	if job.Status == domain.StatusFailed {
		r.events.LogAppError("Job failed",
			zap.String("job_id", job.ID),
			zap.String("url", job.URL),
			zap.Error(err))
	}
}

// publish sends a snapshot of job to every observer
func (r *JobRunner) publish(job *domain.Job) {
	for _, observer := range r.observers {
		observer.JobUpdated(*job)
	}
}

func (r *JobRunner) removeIncoming(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Warn("Failed to remove incoming directory", zap.String("dir", dir), zap.Error(err))
	}
}

// removeBestEffort deletes path, ignoring failures
func removeBestEffort(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

// ExitCode maps a job result to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
