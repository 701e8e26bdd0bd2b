package app

import (
	"errors"
	"sync"

	"github.com/yourusername/audio-extract-go/internal/domain"
	"go.uber.org/zap"
)

// Reporter translates a job's progress into protocol events.
// It emits at most one converting event, at most one cancelled event and
// exactly one terminal event; anything after the terminal event is dropped.
// Reporter is safe for concurrent use.
type Reporter struct {
	sink   EventSink
	logger *zap.Logger

	mu         sync.Mutex
	converting bool
	cancelled  bool
	terminal   bool
}

// NewReporter creates a reporter writing to sink
func NewReporter(sink EventSink, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{sink: sink, logger: logger}
}

// Progress handles one native extractor update
func (r *Reporter) Progress(update domain.ProgressUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.terminal || r.cancelled {
		return
	}

	switch update.Status {
	case domain.ProgressDownloading:
		r.emit(domain.NewDownloadProgress(update))
	case domain.ProgressFinished, domain.ProgressPostProcessing:
		if !r.converting {
			r.converting = true
			r.emit(domain.NewConvertingProgress())
		}
	}
}

// Cancelled reports a cancellation request
func (r *Reporter) Cancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.terminal || r.cancelled {
		return
	}
	r.cancelled = true
	r.emit(domain.NewCancelledProgress())
}

// Complete emits the terminal success event. It returns false if a
// terminal event was already emitted.
func (r *Reporter) Complete(title, filename string) bool {
	return r.finish(domain.NewCompleteEvent(title, filename))
}

// Fail emits the terminal error event for err. It returns false if a
// terminal event was already emitted.
func (r *Reporter) Fail(err error) bool {
	return r.finish(domain.NewErrorEvent(errorMessage(err)))
}

// Finished reports whether the terminal event has been emitted
func (r *Reporter) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminal
}

func (r *Reporter) finish(event domain.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.terminal {
		return false
	}
	r.terminal = true
	r.emit(event)
	return true
}

// emit must be called with mu held
func (r *Reporter) emit(event domain.Event) {
	if err := r.sink.Emit(event); err != nil {
		r.logger.Warn("Failed to emit event",
			zap.String("type", string(event.EventType())),
			zap.Error(err))
	}
}

// errorMessage is the user-visible text for a terminal failure
func errorMessage(err error) string {
	var jobErr *domain.JobError
	if errors.As(err, &jobErr) {
		return jobErr.Message
	}
	return err.Error()
}
