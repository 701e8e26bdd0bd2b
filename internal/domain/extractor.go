package domain

import "context"

// ProgressStatus is the extractor's native per-chunk status
type ProgressStatus string

const (
	ProgressDownloading    ProgressStatus = "downloading"
	ProgressFinished       ProgressStatus = "finished"
	ProgressPostProcessing ProgressStatus = "postprocessing"
	ProgressError          ProgressStatus = "error"
)

// ProgressUpdate is one native progress callback from the extractor.
// Nil byte counts mean the extractor did not know them.
type ProgressUpdate struct {
	Status          ProgressStatus
	DownloadedBytes *int64
	TotalBytes      *int64
	PercentStr      string
	Speed           string
	ETA             string
}

// ProgressFunc receives native progress updates
type ProgressFunc func(update ProgressUpdate)

// ExtractRequest describes one extract-download-transcode operation
type ExtractRequest struct {
	JobID     string
	URL       string
	OutputDir string
}

// ExtractResult is what the extractor produced
type ExtractResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Uploader string `json:"uploader"`
	FilePath string `json:"filepath"`
}

// Extractor performs the extract, download and transcode operation.
// Cancelling ctx must abort a running operation.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest, onProgress ProgressFunc) (*ExtractResult, error)
}
