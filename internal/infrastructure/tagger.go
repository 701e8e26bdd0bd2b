package infrastructure

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/yourusername/audio-extract-go/internal/domain"
)

// ID3Tagger writes title, artist and source frames into MP3 files
type ID3Tagger struct{}

// NewID3Tagger creates a tagger
func NewID3Tagger() *ID3Tagger {
	return &ID3Tagger{}
}

// Tag updates the ID3 frames of path. Non-MP3 files are left untouched.
func (t *ID3Tagger) Tag(path string, result domain.ExtractResult) error {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open tags: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	// TIT2
	if result.Title != "" {
		tag.SetTitle(result.Title)
	}

	// TPE1
	if result.Uploader != "" {
		tag.SetArtist(result.Uploader)
	}

	if result.ID != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "source",
			Text:        result.ID,
		})
	}

	return tag.Save()
}
