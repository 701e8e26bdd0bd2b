package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		input string
		id    string
		ok    bool
	}{
		{"https://www.youtube.com/playlist?list=PLabc_123-x", "PLabc_123-x", true},
		{"https://www.youtube.com/watch?v=abc123&list=PLxyz", "PLxyz", true},
		{"https://youtu.be/abc123?list=PLxyz", "PLxyz", true},
		{"https://youtube.com/playlist/PLqrs", "PLqrs", true},
		{"https://www.youtube.com/watch?v=abc123", "", false},
		{"lofi list=PLabc", "", false},
		{"chill beats", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, ok := PlaylistID(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestClampSearchLimit(t *testing.T) {
	assert.Equal(t, DefaultSearchLimit, ClampSearchLimit(0))
	assert.Equal(t, DefaultSearchLimit, ClampSearchLimit(-3))
	assert.Equal(t, 5, ClampSearchLimit(5))
	assert.Equal(t, MaxSearchLimit, ClampSearchLimit(500))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", FormatDuration(0))
	assert.Equal(t, "0:07", FormatDuration(7))
	assert.Equal(t, "3:32", FormatDuration(211.6))
	assert.Equal(t, "1:02:03", FormatDuration(3723))
}

type recordingSearcher struct {
	query    string
	limit    int
	playlist string
}

func (s *recordingSearcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	s.query, s.limit = query, limit
	return []SearchResult{{ID: "abc123"}}, nil
}

func (s *recordingSearcher) Playlist(ctx context.Context, url string) ([]SearchResult, error) {
	s.playlist = url
	return []SearchResult{{ID: "a"}, {ID: "b"}}, nil
}

func TestLookup(t *testing.T) {
	searcher := &recordingSearcher{}

	_, err := Lookup(context.Background(), searcher, "   ", 0)
	assert.ErrorIs(t, err, ErrQueryRequired)

	results, err := Lookup(context.Background(), searcher, " chill beats ", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "chill beats", searcher.query)
	assert.Equal(t, DefaultSearchLimit, searcher.limit)

	url := "https://www.youtube.com/playlist?list=PLabc"
	results, err = Lookup(context.Background(), searcher, url, 3)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, url, searcher.playlist)
}
