package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/yourusername/audio-extract-go/internal/domain"
	"go.uber.org/zap"
)

const videoURLTemplate = "https://www.youtube.com/watch?v=%s"

// flatPlaylist is the part of `yt-dlp --flat-playlist -J` output we read
type flatPlaylist struct {
	Title   string      `json:"title"`
	Entries []flatEntry `json:"entries"`
}

type flatEntry struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	Duration   float64         `json:"duration"`
	Channel    string          `json:"channel"`
	Uploader   string          `json:"uploader"`
	Thumbnail  string          `json:"thumbnail"`
	Thumbnails []flatThumbnail `json:"thumbnails"`
}

type flatThumbnail struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

// Search returns up to limit videos matching query
func (e *YTDLPExtractor) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	return e.listFlat(ctx, fmt.Sprintf("ytsearch%d:%s", domain.ClampSearchLimit(limit), query))
}

// Playlist lists every video of the playlist at url without downloading
func (e *YTDLPExtractor) Playlist(ctx context.Context, url string) ([]domain.SearchResult, error) {
	return e.listFlat(ctx, url)
}

// SearchArgs returns the yt-dlp arguments listing target without resolving
// each entry
func (e *YTDLPExtractor) SearchArgs(target string) []string {
	args := []string{"--flat-playlist", "-J", "--no-warnings", "--no-colors"}
	if e.config.CookieFile != "" && fileExists(e.config.CookieFile) {
		args = append(args, "--cookies", e.config.CookieFile)
	}
	return append(args, "--", target)
}

func (e *YTDLPExtractor) listFlat(ctx context.Context, target string) ([]domain.SearchResult, error) {
	args := e.SearchArgs(target)
	e.logger.Debug("Listing with yt-dlp", zap.String("target", target), zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)
	setSysProcAttr(cmd)
	cmd.WaitDelay = processWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, domain.NewCancelledError(context.Cause(ctx))
		}
		parser := newOutputParser(nil)
		for _, line := range strings.Split(stderr.String(), "\n") {
			parser.handleLine(line)
		}
		msg := parser.LastError()
		if msg == "" {
			msg = fmt.Sprintf("yt-dlp failed: %v", err)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrSearchFailed, msg)
	}

	var playlist flatPlaylist
	if err := json.Unmarshal(stdout.Bytes(), &playlist); err != nil {
		return nil, fmt.Errorf("%w: invalid yt-dlp output: %v", domain.ErrSearchFailed, err)
	}

	results := make([]domain.SearchResult, 0, len(playlist.Entries))
	for _, entry := range playlist.Entries {
		if entry.ID == "" {
			continue
		}
		results = append(results, entry.toResult())
	}
	return results, nil
}

func (f flatEntry) toResult() domain.SearchResult {
	url := f.URL
	if !strings.HasPrefix(url, "http") {
		url = fmt.Sprintf(videoURLTemplate, f.ID)
	}
	channel := f.Channel
	if channel == "" {
		channel = f.Uploader
	}
	return domain.SearchResult{
		ID:             f.ID,
		Title:          f.Title,
		URL:            url,
		Thumbnail:      f.thumbnail(),
		Duration:       f.Duration,
		DurationString: domain.FormatDuration(f.Duration),
		Channel:        channel,
	}
}

// thumbnail prefers the thumbnail closest to 320px wide, YouTube's medium size
func (f flatEntry) thumbnail() string {
	if f.Thumbnail != "" {
		return f.Thumbnail
	}
	best, bestDiff := "", math.MaxInt
	for _, thumb := range f.Thumbnails {
		if thumb.URL == "" {
			continue
		}
		diff := thumb.Width - 320
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = thumb.URL, diff
		}
	}
	if best != "" {
		return best
	}
	return "https://i.ytimg.com/vi/" + f.ID + "/mqdefault.jpg"
}
