package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

const (
	// DefaultSearchLimit is the number of results a search returns by default
	DefaultSearchLimit = 10

	// MaxSearchLimit caps the number of results of one search
	MaxSearchLimit = 50
)

var (
	// ErrQueryRequired is returned for a blank search query
	ErrQueryRequired = errors.New("Query is required")

	// ErrSearchFailed wraps a failure reported by the search backend
	ErrSearchFailed = errors.New("search failed")
)

// SearchResult is one video found by a search or listed in a playlist
type SearchResult struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Thumbnail      string  `json:"thumbnail"`
	Duration       float64 `json:"duration"` // seconds, 0 when unknown
	DurationString string  `json:"duration_string"`
	Channel        string  `json:"channel,omitempty"`
}

// Searcher finds videos that can then be submitted as jobs
type Searcher interface {
	// Search returns up to limit videos matching query
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// Playlist lists every video of the playlist at url
	Playlist(ctx context.Context, url string) ([]SearchResult, error)
}

var playlistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[?&]list=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`(?i)youtube\.com/playlist/([a-zA-Z0-9_-]+)`),
}

// PlaylistID extracts the playlist ID from a YouTube URL
func PlaylistID(s string) (string, bool) {
	if !strings.Contains(s, "youtube.com") && !strings.Contains(s, "youtu.be") {
		return "", false
	}
	for _, pattern := range playlistPatterns {
		if match := pattern.FindStringSubmatch(s); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// Lookup runs query against searcher: a playlist URL lists the playlist,
// anything else is a keyword search limited to limit results.
func Lookup(ctx context.Context, searcher Searcher, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	if _, ok := PlaylistID(query); ok {
		return searcher.Playlist(ctx, query)
	}
	return searcher.Search(ctx, query, ClampSearchLimit(limit))
}

// ClampSearchLimit maps limit into [1, MaxSearchLimit], zero or less
// meaning DefaultSearchLimit
func ClampSearchLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	}
	return limit
}

// FormatDuration renders seconds as M:SS or H:MM:SS
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int(math.Round(seconds))
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
