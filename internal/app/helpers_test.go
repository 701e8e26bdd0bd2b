package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

// recordingSink collects emitted events
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (s *recordingSink) Emit(event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}

func (s *recordingSink) Terminal() []domain.Event {
	var terminal []domain.Event
	for _, ev := range s.Events() {
		if ev.IsTerminal() {
			terminal = append(terminal, ev)
		}
	}
	return terminal
}

// recordingObserver collects job snapshots
type recordingObserver struct {
	mu   sync.Mutex
	jobs []domain.Job
}

func (o *recordingObserver) JobUpdated(job domain.Job) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.jobs = append(o.jobs, job)
}

func (o *recordingObserver) Statuses() []domain.JobStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	statuses := make([]domain.JobStatus, len(o.jobs))
	for i, job := range o.jobs {
		statuses[i] = job.Status
	}
	return statuses
}

// fakeExtractor writes <title>.mp3 into the output directory the way
// yt-dlp's %(title)s template would
type fakeExtractor struct {
	title   string
	updates []domain.ProgressUpdate
	err     error

	// block waits for ctx cancellation after writing the file
	block   bool
	started chan struct{}

	// beforeReturn runs after the file is written, before a successful return
	beforeReturn func()

	calls atomic.Int32
}

func (f *fakeExtractor) Extract(ctx context.Context, req domain.ExtractRequest, onProgress domain.ProgressFunc) (*domain.ExtractResult, error) {
	f.calls.Add(1)

	path := filepath.Join(req.OutputDir, f.title+".mp3")
	if err := os.WriteFile(path, []byte("fake mp3 audio payload"), 0644); err != nil {
		return nil, err
	}
	for _, update := range f.updates {
		onProgress(update)
	}
	if f.started != nil {
		close(f.started)
	}
	if f.block {
		<-ctx.Done()
		return nil, domain.NewCancelledError(context.Cause(ctx))
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.beforeReturn != nil {
		f.beforeReturn()
	}
	return &domain.ExtractResult{ID: "abc123", Title: f.title, Uploader: "Someone", FilePath: path}, nil
}

// moveFinalizer moves files into dir under the sanitized title
type moveFinalizer struct {
	dir string
	err error
}

func (f *moveFinalizer) Finalize(ctx context.Context, src, title string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	dest := filepath.Join(f.dir, domain.SanitizeFilename(title)+filepath.Ext(src))
	if err := os.Rename(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// recordingTagger remembers tagged paths
type recordingTagger struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (t *recordingTagger) Tag(path string, result domain.ExtractResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append(t.paths, path)
	return t.err
}

// memoryRepo is an in-memory JobRepository
type memoryRepo struct {
	mu   sync.Mutex
	jobs map[string]domain.Job
	err  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{jobs: make(map[string]domain.Job)}
}

func (m *memoryRepo) Save(job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.jobs[job.ID] = *job
	return nil
}

func (m *memoryRepo) FindByID(id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &job, nil
}

func (m *memoryRepo) FindByVideoID(videoID string) ([]*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*domain.Job
	for _, job := range m.jobs {
		if job.VideoID == videoID {
			job := job
			jobs = append(jobs, &job)
		}
	}
	return jobs, nil
}

func (m *memoryRepo) FindAll(filters map[string]interface{}, limit int) ([]*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*domain.Job
	for _, job := range m.jobs {
		job := job
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

func (m *memoryRepo) GetStats() (*domain.JobStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.JobStats{Total: int64(len(m.jobs))}, nil
}

func (m *memoryRepo) Close() error { return nil }

// newTestRunner wires a runner around fakes rooted in a temp download dir
func newTestRunner(dir string, extractor domain.Extractor, tagger domain.Tagger) (*JobRunner, *recordingObserver) {
	config := &domain.DownloadConfig{Dir: dir, ConcurrentLimit: 2, WriteTags: true}
	runner := NewJobRunner(extractor, &moveFinalizer{dir: dir}, tagger, config, nil, nil)
	observer := &recordingObserver{}
	runner.AddObserver(observer)
	return runner, observer
}
