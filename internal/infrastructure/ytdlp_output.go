package infrastructure

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/yourusername/audio-extract-go/internal/domain"
)

// Line markers yt-dlp is asked to print through its templates
const (
	downloadMarker    = "[audio-extract:download]"
	postprocessMarker = "[audio-extract:postprocess]"
	resultMarker      = "[audio-extract:result]"
	errorPrefix       = "ERROR:"

	// ytdlpMissing is what yt-dlp prints for an unavailable template field
	ytdlpMissing = "NA"
)

var (
	downloadTemplate = "download:" + strings.Join([]string{
		downloadMarker,
		"%(progress.status)s",
		"%(progress.downloaded_bytes)s",
		"%(progress.total_bytes)s",
		"%(progress.total_bytes_estimate)s",
		"%(progress._percent_str)s",
		"%(progress._speed_str)s",
		"%(progress._eta_str)s",
	}, "\t")

	postprocessTemplate = "postprocess:" + strings.Join([]string{
		postprocessMarker,
		"%(progress.status)s",
		"%(progress.postprocessor)s",
	}, "\t")

	resultTemplate = "after_move:" + resultMarker + " %(.{id,title,uploader,filepath})j"
)

// outputParser turns yt-dlp output lines into progress updates, the final
// result and the last reported error. Lines arrive from both pipes
// concurrently.
type outputParser struct {
	onProgress domain.ProgressFunc

	mu        sync.Mutex
	result    *domain.ExtractResult
	lastError string
}

func newOutputParser(onProgress domain.ProgressFunc) *outputParser {
	if onProgress == nil {
		onProgress = func(domain.ProgressUpdate) {}
	}
	return &outputParser{onProgress: onProgress}
}

// handleLine processes one output line
func (p *outputParser) handleLine(line string) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, downloadMarker):
		if update, ok := parseDownloadLine(trimmed); ok {
			p.onProgress(update)
		}
	case strings.HasPrefix(trimmed, postprocessMarker):
		if update, ok := parsePostprocessLine(trimmed); ok {
			p.onProgress(update)
		}
	case strings.HasPrefix(trimmed, resultMarker):
		var result domain.ExtractResult
		payload := strings.TrimSpace(strings.TrimPrefix(trimmed, resultMarker))
		if err := json.Unmarshal([]byte(payload), &result); err == nil {
			p.mu.Lock()
			p.result = &result
			p.mu.Unlock()
		}
	case strings.HasPrefix(trimmed, errorPrefix):
		p.mu.Lock()
		p.lastError = strings.TrimSpace(strings.TrimPrefix(trimmed, errorPrefix))
		p.mu.Unlock()
	}
}

// Result returns the reported output, if any
func (p *outputParser) Result() *domain.ExtractResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// LastError returns the last ERROR line without its prefix
func (p *outputParser) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastError
}

// parseDownloadLine parses a line produced by downloadTemplate
func parseDownloadLine(line string) (domain.ProgressUpdate, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 || fields[0] != downloadMarker {
		return domain.ProgressUpdate{}, false
	}

	update := domain.ProgressUpdate{
		Status:          parseDownloadStatus(fields[1]),
		DownloadedBytes: parseByteCount(fields[2]),
		TotalBytes:      parseByteCount(fields[3]),
		PercentStr:      cleanField(fields[5]),
		Speed:           cleanField(fields[6]),
		ETA:             cleanField(fields[7]),
	}
	if update.TotalBytes == nil {
		update.TotalBytes = parseByteCount(fields[4])
	}
	return update, true
}

// parsePostprocessLine parses a line produced by postprocessTemplate.
// Only the start of post-processing is interesting.
func parsePostprocessLine(line string) (domain.ProgressUpdate, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 || fields[0] != postprocessMarker {
		return domain.ProgressUpdate{}, false
	}
	if strings.TrimSpace(fields[1]) != "started" {
		return domain.ProgressUpdate{}, false
	}
	return domain.ProgressUpdate{Status: domain.ProgressPostProcessing}, true
}

func parseDownloadStatus(s string) domain.ProgressStatus {
	switch strings.TrimSpace(s) {
	case "downloading":
		return domain.ProgressDownloading
	case "finished":
		return domain.ProgressFinished
	case "error":
		return domain.ProgressError
	default:
		return domain.ProgressStatus(strings.TrimSpace(s))
	}
}

// parseByteCount accepts integer or float byte counts; NA and garbage are unknown
func parseByteCount(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == ytdlpMissing {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		n := int64(f)
		return &n
	}
	return nil
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if s == ytdlpMissing || strings.EqualFold(s, "Unknown") {
		return ""
	}
	return s
}
