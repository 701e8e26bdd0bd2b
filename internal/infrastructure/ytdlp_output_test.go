package infrastructure

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/audio-extract-go/internal/domain"
)

func downloadLine(fields ...string) string {
	return strings.Join(append([]string{downloadMarker}, fields...), "\t")
}

func TestParseDownloadLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		status     domain.ProgressStatus
		downloaded *int64
		total      *int64
		percent    string
		speed      string
		eta        string
	}{
		{
			name:       "known total",
			line:       downloadLine("downloading", "512", "1024", "NA", " 50.0%", "1.00MiB/s", "00:01"),
			status:     domain.ProgressDownloading,
			downloaded: int64Ptr(512),
			total:      int64Ptr(1024),
			percent:    "50.0%",
			speed:      "1.00MiB/s",
			eta:        "00:01",
		},
		{
			name:       "estimated total",
			line:       downloadLine("downloading", "100", "NA", "2048.7", "4.9%", "Unknown", "NA"),
			status:     domain.ProgressDownloading,
			downloaded: int64Ptr(100),
			total:      int64Ptr(2048),
			percent:    "4.9%",
		},
		{
			name:    "nothing known",
			line:    downloadLine("downloading", "NA", "NA", "NA", "NA", "NA", "NA"),
			status:  domain.ProgressDownloading,
			percent: "",
		},
		{
			name:       "finished",
			line:       downloadLine("finished", "1024", "1024", "NA", "100.0%", "NA", "NA"),
			status:     domain.ProgressFinished,
			downloaded: int64Ptr(1024),
			total:      int64Ptr(1024),
			percent:    "100.0%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, ok := parseDownloadLine(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.status, update.Status)
			assert.Equal(t, tt.downloaded, update.DownloadedBytes)
			assert.Equal(t, tt.total, update.TotalBytes)
			assert.Equal(t, tt.percent, update.PercentStr)
			assert.Equal(t, tt.speed, update.Speed)
			assert.Equal(t, tt.eta, update.ETA)
		})
	}
}

func TestParseDownloadLine_Malformed(t *testing.T) {
	_, ok := parseDownloadLine(downloadLine("downloading", "1"))
	assert.False(t, ok)

	_, ok = parseDownloadLine("[download]  50.0% of 1.00MiB")
	assert.False(t, ok)
}

func TestOutputParser_HandleLine(t *testing.T) {
	var mu sync.Mutex
	var updates []domain.ProgressUpdate
	parser := newOutputParser(func(u domain.ProgressUpdate) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, u)
	})

	lines := []string{
		"[youtube] Extracting URL: https://www.youtube.com/watch?v=abc",
		downloadLine("downloading", "10", "100", "NA", "10.0%", "1KiB/s", "00:09") + "\r",
		postprocessMarker + "\tstarted\tExtractAudio",
		postprocessMarker + "\tfinished\tExtractAudio",
		"WARNING: something odd",
		"ERROR: first failure",
		"ERROR: [youtube] abc: Video unavailable",
		resultMarker + ` {"id": "abc", "title": "My Song!", "uploader": "Band", "filepath": "/tmp/x/My Song!.mp3"}`,
	}
	for _, line := range lines {
		parser.handleLine(line)
	}

	require.Len(t, updates, 2)
	assert.Equal(t, domain.ProgressDownloading, updates[0].Status)
	assert.Equal(t, "00:09", updates[0].ETA)
	assert.Equal(t, domain.ProgressPostProcessing, updates[1].Status)

	assert.Equal(t, "[youtube] abc: Video unavailable", parser.LastError())

	result := parser.Result()
	require.NotNil(t, result)
	assert.Equal(t, "abc", result.ID)
	assert.Equal(t, "My Song!", result.Title)
	assert.Equal(t, "Band", result.Uploader)
	assert.Equal(t, "/tmp/x/My Song!.mp3", result.FilePath)
}

func TestOutputParser_NilCallback(t *testing.T) {
	parser := newOutputParser(nil)
	assert.NotPanics(t, func() {
		parser.handleLine(downloadLine("downloading", "1", "2", "NA", "50%", "NA", "NA"))
	})
	assert.Nil(t, parser.Result())
}

func TestParseByteCount(t *testing.T) {
	assert.Nil(t, parseByteCount("NA"))
	assert.Nil(t, parseByteCount(""))
	assert.Nil(t, parseByteCount("-5"))
	assert.Nil(t, parseByteCount("lots"))
	assert.Equal(t, int64Ptr(42), parseByteCount(" 42 "))
	assert.Equal(t, int64Ptr(42), parseByteCount("42.9"))
}

func int64Ptr(n int64) *int64 {
	return &n
}
