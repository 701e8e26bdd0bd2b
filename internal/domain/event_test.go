package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestPercent(t *testing.T) {
	tests := []struct {
		downloaded int64
		total      int64
		expected   float64
	}{
		{0, 1000, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{512, 1024, 50},
		{1000, 1000, 100},
		{5, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Percent(tt.downloaded, tt.total))
	}
}

func TestNewDownloadProgress_ByteCounts(t *testing.T) {
	ev := NewDownloadProgress(ProgressUpdate{
		Status:          ProgressDownloading,
		DownloadedBytes: int64Ptr(1),
		TotalBytes:      int64Ptr(3),
		PercentStr:      " 33.3%",
		Speed:           "1.00MiB/s",
		ETA:             "00:02",
	})

	assert.Equal(t, 33.3, ev.Percentage)
	assert.Equal(t, int64(1), *ev.Downloaded)
	assert.Equal(t, int64(3), *ev.Total)
	assert.Equal(t, "1.00MiB/s", ev.Speed)
	assert.Equal(t, "00:02", ev.ETA)
	assert.Equal(t, PhaseDownloading, ev.Phase)
}

func TestNewDownloadProgress_FallsBackToPercentString(t *testing.T) {
	ev := NewDownloadProgress(ProgressUpdate{
		Status:          ProgressDownloading,
		DownloadedBytes: int64Ptr(100),
		PercentStr:      "12.5%",
	})

	assert.Equal(t, "12.5%", ev.Percentage)
	assert.Nil(t, ev.Downloaded)
	assert.Nil(t, ev.Total)
	assert.Equal(t, NotAvailable, ev.Speed)
	assert.Equal(t, NotAvailable, ev.ETA)
}

func TestNewDownloadProgress_NoInformation(t *testing.T) {
	ev := NewDownloadProgress(ProgressUpdate{Status: ProgressDownloading})

	assert.Equal(t, DefaultPercentStr, ev.Percentage)
}

func TestEvent_JSONShape(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "converting",
			event:    NewConvertingProgress(),
			expected: `{"type":"progress","percentage":100,"status":"Converting...","phase":"converting"}`,
		},
		{
			name:     "cancelled",
			event:    NewCancelledProgress(),
			expected: `{"type":"progress","status":"Cancelling...","phase":"cancelled"}`,
		},
		{
			name:     "complete",
			event:    NewCompleteEvent("My Song!", "/tmp/downloads/My Song.mp3"),
			expected: `{"type":"complete","success":true,"title":"My Song!","filename":"/tmp/downloads/My Song.mp3"}`,
		},
		{
			name:     "error",
			event:    NewErrorEvent(MessageVideoIDRequired),
			expected: `{"type":"error","success":false,"error":"Video ID required"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestEvent_Terminal(t *testing.T) {
	assert.False(t, NewConvertingProgress().IsTerminal())
	assert.True(t, NewCompleteEvent("t", "/f").IsTerminal())
	assert.True(t, NewErrorEvent("e").IsTerminal())
	assert.Equal(t, EventError, NewErrorEvent("e").EventType())
}
