package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)
	log.Info("hello", zap.String("video_id", "abc"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"video_id":"abc"`)
}

func TestResolveFormat(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "json", resolveFormat("json", f))
	assert.Equal(t, "console", resolveFormat("console", f))
	assert.Equal(t, "json", resolveFormat("auto", f), "regular files are not terminals")
}

func TestMultiLogger_RequiresLogsDir(t *testing.T) {
	_, err := NewMultiLogger(MultiLoggerConfig{Level: "info"})
	require.Error(t, err)
}

func TestMultiLogger_WritesAndReadsBack(t *testing.T) {
	dir := t.TempDir()

	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)

	ml.LogJobEvent("job_started", zap.String("job_id", "j-1"), zap.String("video_id", "abc"))
	ml.LogJobEvent("job_completed", zap.String("job_id", "j-1"), zap.String("file", "/tmp/downloads/My Song.mp3"))
	ml.LogAppError("finalize failed", zap.String("job_id", "j-2"))
	require.NoError(t, ml.Close())

	reader := NewLogReader(dir)

	entries, err := reader.ReadTodayLogs(CategoryJob, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "job_started", entries[0].Message)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "abc", entries[0].Fields["video_id"])

	last, err := reader.ReadTodayLogs(CategoryJob, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "job_completed", last[0].Message)

	found, err := reader.SearchLogs(CategoryJob, time.Now(), "my song", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "job_completed", found[0].Message)

	errs, err := reader.ReadTodayLogs(CategoryError, 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "error", errs[0].Level)
}

func TestLogReader_MissingFile(t *testing.T) {
	entries, err := NewLogReader(t.TempDir()).ReadTodayLogs(CategoryJob, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseEntry_PlainLine(t *testing.T) {
	entry := parseEntry("not json", CategoryJob)
	assert.Equal(t, "not json", entry.Message)
	assert.Equal(t, "info", entry.Level)
}
