package app

import (
	"context"
	"errors"
	"sync"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

// ErrStreamClosed is returned when emitting after the terminal event
var ErrStreamClosed = errors.New("event stream closed")

// EventStream records a job's events so any number of readers can replay
// them from the start and follow new ones. It closes itself after the
// terminal event.
type EventStream struct {
	mu      sync.Mutex
	events  []domain.Event
	closed  bool
	changed chan struct{}
}

// NewEventStream creates an empty stream
func NewEventStream() *EventStream {
	return &EventStream{changed: make(chan struct{})}
}

// Emit appends event and wakes waiting readers
func (s *EventStream) Emit(event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}
	s.events = append(s.events, event)
	if event.IsTerminal() {
		s.closed = true
	}
	close(s.changed)
	s.changed = make(chan struct{})
	return nil
}

// Next returns the events after cursor, blocking until at least one is
// available. done is true once the returned batch ends with the terminal event.
func (s *EventStream) Next(ctx context.Context, cursor int) (events []domain.Event, done bool, err error) {
	for {
		s.mu.Lock()
		if cursor < 0 {
			cursor = 0
		}
		if cursor < len(s.events) {
			events = append([]domain.Event(nil), s.events[cursor:]...)
			done = s.closed
			s.mu.Unlock()
			return events, done, nil
		}
		if s.closed {
			s.mu.Unlock()
			return nil, true, nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// Snapshot returns every event emitted so far
func (s *EventStream) Snapshot() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}

// Closed reports whether the terminal event has been emitted
func (s *EventStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
