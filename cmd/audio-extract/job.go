package main

import (
	"context"
	"os"
	"syscall"

	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/internal/infrastructure"
	"github.com/yourusername/audio-extract-go/pkg/logger"
	"go.uber.org/zap"
)

// runJob extracts the audio of videoID and reports it on stdout.
// Signal handling starts before any setup so an interrupt at any point
// still ends in exactly one terminal event.
func (e *cliEnv) runJob(ctx context.Context, videoID string) error {
	reporter := app.NewReporter(app.NewJSONLineEmitter(e.stdout), nil)
	canceller, jobCtx := app.NewCanceller(ctx, reporter.Cancelled)
	defer canceller.Release()
	stop := canceller.WatchSignals(os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := e.prepareJob(jobCtx)
	if err != nil {
		reporter.Fail(err)
		return &reportedError{err: err}
	}
	defer deps.close()

	job := domain.NewJob(videoID, deps.config.Extractor.URLTemplate)
	if err := deps.runner.Run(jobCtx, job, reporter); err != nil {
		return &reportedError{err: err}
	}
	return nil
}

// jobDeps holds everything a single CLI job needs
type jobDeps struct {
	config  *domain.Config
	log     *zap.Logger
	runner  *app.JobRunner
	closers []func() error
}

func (d *jobDeps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
	_ = d.log.Sync()
}

// prepareJob loads the configuration and wires the runner. Reading the
// config can block (a FIFO or a hung network mount), so setup runs aside
// and a cancellation of ctx wins over it.
func (e *cliEnv) prepareJob(ctx context.Context) (*jobDeps, error) {
	type result struct {
		deps *jobDeps
		err  error
	}
	done := make(chan result, 1)
	go func() {
		deps, err := e.buildJobDeps()
		done <- result{deps: deps, err: err}
	}()

	select {
	case r := <-done:
		return r.deps, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.deps != nil {
				r.deps.close()
			}
		}()
		return nil, domain.NewCancelledError(context.Cause(ctx))
	}
}

func (e *cliEnv) buildJobDeps() (*jobDeps, error) {
	config, err := e.loadConfig()
	if err != nil {
		return nil, err
	}

	log, events, err := newLoggers(config)
	if err != nil {
		return nil, err
	}
	deps := &jobDeps{config: config, log: log}
	if events != nil {
		deps.closers = append(deps.closers, events.Close)
	}

	deps.runner = newJobRunner(config, log, events)
	if config.History.Enabled {
		repo, err := infrastructure.NewSQLiteJobRepository(config.History.DatabasePath)
		if err != nil {
			log.Warn("History disabled", zap.String("path", config.History.DatabasePath), zap.Error(err))
		} else {
			deps.closers = append(deps.closers, repo.Close)
			deps.runner.AddObserver(app.NewHistoryRecorder(repo, log))
		}
	}
	if config.Notification.Enabled {
		deps.runner.AddObserver(infrastructure.NewNotificationService(&config.Notification, log))
	}
	return deps, nil
}

// newJobRunner wires the yt-dlp extractor, finalizer and tagger
func newJobRunner(config *domain.Config, log *zap.Logger, events *logger.MultiLogger) *app.JobRunner {
	extractor := infrastructure.NewYTDLPExtractor(&config.Extractor, config.Logging.LogsDir, log)
	finalizer := infrastructure.NewFileFinalizer(config.Download.Dir, log)
	return app.NewJobRunner(extractor, finalizer, infrastructure.NewID3Tagger(), &config.Download, log, events)
}
