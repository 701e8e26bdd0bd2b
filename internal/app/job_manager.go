package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/pkg/logger"
	"go.uber.org/zap"
)

var (
	// ErrJobNotFound is returned for unknown job IDs
	ErrJobNotFound = errors.New("job not found")

	// ErrJobTerminal is returned when cancelling a finished job
	ErrJobTerminal = errors.New("job already in terminal state")

	// ErrManagerStopped is returned when submitting after Shutdown
	ErrManagerStopped = errors.New("job manager stopped")
)

// jobEntry is the manager's view of one job
type jobEntry struct {
	snapshot   domain.Job
	canceller  *Canceller
	stream     *EventStream
	finishedAt time.Time // zero while the job runs
}

// JobManager runs jobs submitted over the HTTP API, at most
// ConcurrentLimit at a time. Finished jobs stay visible until they are
// older than the configured retention or pushed out by newer ones.
type JobManager struct {
	runner      *JobRunner
	config      *domain.Config
	logger      *zap.Logger
	multiLogger *logger.MultiLogger
	semaphore   chan struct{}
	now         func() time.Time

	mu      sync.RWMutex
	jobs    map[string]*jobEntry
	baseCtx context.Context
	stop    context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// NewJobManager creates a job manager and registers it with runner
func NewJobManager(runner *JobRunner, config *domain.Config, logger *zap.Logger, multiLogger *logger.MultiLogger) *JobManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	m := &JobManager{
		runner:      runner,
		config:      config,
		logger:      logger,
		multiLogger: multiLogger,
		semaphore:   make(chan struct{}, config.Download.ConcurrentLimit),
		now:         time.Now,
		jobs:        make(map[string]*jobEntry),
		baseCtx:     ctx,
		stop:        stop,
	}
	runner.AddObserver(m)
	return m
}

// JobUpdated stores the latest snapshot of a job
func (m *JobManager) JobUpdated(job domain.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.jobs[job.ID]; ok {
		entry.snapshot = job
	}
}

// Submit queues a job for videoID and starts it as soon as a slot is free
func (m *JobManager) Submit(videoID string) (*domain.Job, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, domain.ErrInvalidArguments
	}

	job := domain.NewJob(videoID, m.config.Extractor.URLTemplate)
	stream := NewEventStream()
	reporter := NewReporter(stream, m.logger)

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil, ErrManagerStopped
	}
	m.evictLocked()
	canceller, ctx := NewCanceller(m.baseCtx, reporter.Cancelled)
	m.jobs[job.ID] = &jobEntry{snapshot: *job, canceller: canceller, stream: stream}
	m.wg.Add(1)
	m.mu.Unlock()

	m.runner.publish(job)
	if m.multiLogger != nil {
		m.multiLogger.LogJobEvent("job_queued",
			zap.String("job_id", job.ID),
			zap.String("video_id", videoID))
	}

	go m.process(ctx, canceller, job, reporter)

	return job, nil
}

func (m *JobManager) process(ctx context.Context, canceller *Canceller, job *domain.Job, reporter *Reporter) {
	defer m.wg.Done()
	defer canceller.Release()

	// A job cancelled while waiting still runs so it reports its terminal event
	select {
	case m.semaphore <- struct{}{}:
		defer func() { <-m.semaphore }()
	case <-ctx.Done():
	}

	_ = m.runner.Run(ctx, job, reporter)
	m.finished(job.ID)
}

// finished stamps the job's completion time and applies the retention limits
func (m *JobManager) finished(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.jobs[id]; ok {
		entry.finishedAt = m.now()
	}
	m.evictLocked()
}

// evictLocked drops finished jobs past the retention period, then the
// oldest finished jobs beyond MaxFinishedJobs. Running jobs are never
// evicted. Callers must hold m.mu.
func (m *JobManager) evictLocked() {
	retention := m.config.Server.JobRetention
	limit := m.config.Server.MaxFinishedJobs

	var finished []string
	for id, entry := range m.jobs {
		if entry.finishedAt.IsZero() {
			continue
		}
		if retention > 0 && m.now().Sub(entry.finishedAt) >= retention {
			delete(m.jobs, id)
			continue
		}
		finished = append(finished, id)
	}

	if limit <= 0 || len(finished) <= limit {
		return
	}
	sort.Slice(finished, func(i, j int) bool {
		return m.jobs[finished[i]].finishedAt.Before(m.jobs[finished[j]].finishedAt)
	})
	for _, id := range finished[:len(finished)-limit] {
		delete(m.jobs, id)
	}
	m.logger.Debug("Evicted finished jobs", zap.Int("count", len(finished)-limit))
}

// Get returns a snapshot of the job with id
func (m *JobManager) Get(id string) (domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return entry.snapshot, nil
}

// List returns snapshots of all retained jobs, newest first
func (m *JobManager) List() []domain.Job {
	m.mu.Lock()
	m.evictLocked()
	jobs := make([]domain.Job, 0, len(m.jobs))
	for _, entry := range m.jobs {
		jobs = append(jobs, entry.snapshot)
	}
	m.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// Events returns the event stream of the job with id
func (m *JobManager) Events(id string) (*EventStream, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return entry.stream, nil
}

// Cancel requests cancellation of the job with id
func (m *JobManager) Cancel(id string) error {
	m.mu.RLock()
	entry, ok := m.jobs[id]
	var terminal bool
	if ok {
		terminal = entry.snapshot.IsTerminal() || entry.stream.Closed()
	}
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if terminal {
		return ErrJobTerminal
	}

	if entry.canceller.Cancel() {
		m.logger.Info("Job cancellation requested", zap.String("id", id))
	}
	return nil
}

// Stopped reports whether Shutdown has been called
func (m *JobManager) Stopped() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopped
}

// Shutdown cancels every running job and waits for them to finish or ctx to expire
func (m *JobManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	entries := make([]*jobEntry, 0, len(m.jobs))
	for _, entry := range m.jobs {
		entries = append(entries, entry)
	}
	m.mu.Unlock()

	for _, entry := range entries {
		entry.canceller.Cancel()
	}
	m.stop()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
