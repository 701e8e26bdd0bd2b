package app

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

// EventSink receives protocol events for one job
type EventSink interface {
	Emit(event domain.Event) error
}

// JSONLineEmitter writes each event as one JSON object per line.
// Every event is written immediately; nothing is buffered.
type JSONLineEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLineEmitter creates an emitter writing to w
func NewJSONLineEmitter(w io.Writer) *JSONLineEmitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLineEmitter{enc: enc}
}

// Emit writes event followed by a newline
func (e *JSONLineEmitter) Emit(event domain.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(event)
}
