package domain

import "context"

// Finalizer moves an extracted file to its final, sanitized location
type Finalizer interface {
	// Finalize moves src to the output directory under SanitizeFilename(title)
	// and returns the absolute final path.
	Finalize(ctx context.Context, src, title string) (string, error)
}

// Tagger writes metadata tags into a finished audio file
type Tagger interface {
	Tag(path string, result ExtractResult) error
}
