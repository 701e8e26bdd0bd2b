package domain

import "math"

// EventType tags each line of the event protocol
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Phase labels a progress event
type Phase string

const (
	PhaseDownloading Phase = "downloading"
	PhaseConverting  Phase = "converting"
	PhaseCancelled   Phase = "cancelled"
)

// Placeholders used when the extractor does not report a value
const (
	NotAvailable      = "N/A"
	DefaultPercentStr = "0%"
	ConvertingStatus  = "Converting..."
	CancellingStatus  = "Cancelling..."
)

// Event is one line of the stdout protocol
type Event interface {
	EventType() EventType
	IsTerminal() bool
}

// ProgressEvent reports intermediate job progress.
// Percentage is a float64 when byte counts are known and the extractor's
// percentage string otherwise.
type ProgressEvent struct {
	Type       EventType `json:"type"`
	Percentage any       `json:"percentage,omitempty"`
	Speed      string    `json:"speed,omitempty"`
	ETA        string    `json:"eta,omitempty"`
	Downloaded *int64    `json:"downloaded,omitempty"`
	Total      *int64    `json:"total,omitempty"`
	Status     string    `json:"status,omitempty"`
	Phase      Phase     `json:"phase,omitempty"`
}

func (e *ProgressEvent) EventType() EventType { return EventProgress }
func (e *ProgressEvent) IsTerminal() bool     { return false }

// CompleteEvent is the terminal success event
type CompleteEvent struct {
	Type     EventType `json:"type"`
	Success  bool      `json:"success"`
	Title    string    `json:"title"`
	Filename string    `json:"filename"`
}

func (e *CompleteEvent) EventType() EventType { return EventComplete }
func (e *CompleteEvent) IsTerminal() bool     { return true }

// ErrorEvent is the terminal failure event
type ErrorEvent struct {
	Type    EventType `json:"type"`
	Success bool      `json:"success"`
	Error   string    `json:"error"`
}

func (e *ErrorEvent) EventType() EventType { return EventError }
func (e *ErrorEvent) IsTerminal() bool     { return true }

// NewDownloadProgress builds a downloading-phase event from a native update.
// Byte counts win over the extractor's percentage string when both are known.
func NewDownloadProgress(u ProgressUpdate) *ProgressEvent {
	ev := &ProgressEvent{
		Type:  EventProgress,
		Speed: orNotAvailable(u.Speed),
		ETA:   orNotAvailable(u.ETA),
		Phase: PhaseDownloading,
	}
	if u.DownloadedBytes != nil && u.TotalBytes != nil && *u.TotalBytes > 0 {
		ev.Percentage = Percent(*u.DownloadedBytes, *u.TotalBytes)
		downloaded, total := *u.DownloadedBytes, *u.TotalBytes
		ev.Downloaded = &downloaded
		ev.Total = &total
		return ev
	}
	if u.PercentStr != "" {
		ev.Percentage = u.PercentStr
	} else {
		ev.Percentage = DefaultPercentStr
	}
	return ev
}

// NewConvertingProgress is emitted once when transcoding starts
func NewConvertingProgress() *ProgressEvent {
	return &ProgressEvent{
		Type:       EventProgress,
		Percentage: float64(100),
		Status:     ConvertingStatus,
		Phase:      PhaseConverting,
	}
}

// NewCancelledProgress is emitted once when cancellation is requested
func NewCancelledProgress() *ProgressEvent {
	return &ProgressEvent{
		Type:   EventProgress,
		Status: CancellingStatus,
		Phase:  PhaseCancelled,
	}
}

// NewCompleteEvent builds the terminal success event
func NewCompleteEvent(title, filename string) *CompleteEvent {
	return &CompleteEvent{Type: EventComplete, Success: true, Title: title, Filename: filename}
}

// NewErrorEvent builds the terminal failure event
func NewErrorEvent(message string) *ErrorEvent {
	return &ErrorEvent{Type: EventError, Success: false, Error: message}
}

// Percent returns downloaded/total*100 rounded to one decimal
func Percent(downloaded, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(downloaded)/float64(total)*1000) / 10
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
