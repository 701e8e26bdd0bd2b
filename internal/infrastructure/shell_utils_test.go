package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain flag", "--no-playlist", "--no-playlist"},
		{"plain path", "/tmp/downloads/.incoming/job-1", "/tmp/downloads/.incoming/job-1"},
		{"empty string", "", "''"},
		{"output template", "/tmp/dl/%(title)s.%(ext)s", "'/tmp/dl/%(title)s.%(ext)s'"},
		{"progress template with tabs", "download:[x]\t%(progress.status)s", "'download:[x]\t%(progress.status)s'"},
		{"path with spaces", "/tmp/my music", "'/tmp/my music'"},
		{"single quote", "/tmp/it's here", `'/tmp/it'"'"'s here'`},
		{"dollar and backtick", "$HOME/`x`", "'$HOME/`x`'"},
		{"url with query", "https://www.youtube.com/watch?v=abc&t=1", "'https://www.youtube.com/watch?v=abc&t=1'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscape(tt.input))
		})
	}
}

func TestShellEscapeCommand(t *testing.T) {
	tests := []struct {
		name     string
		binary   string
		args     []string
		expected string
	}{
		{
			name:     "no args",
			binary:   "yt-dlp",
			expected: "yt-dlp",
		},
		{
			name:     "audio extraction",
			binary:   "yt-dlp",
			args:     []string{"-x", "--audio-format", "mp3", "--audio-quality", "192"},
			expected: "yt-dlp -x --audio-format mp3 --audio-quality 192",
		},
		{
			name:     "binary and output with spaces",
			binary:   "/opt/my tools/yt-dlp",
			args:     []string{"-o", "/tmp/my music/%(title)s.%(ext)s"},
			expected: "'/opt/my tools/yt-dlp' -o '/tmp/my music/%(title)s.%(ext)s'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellEscapeCommand(tt.binary, tt.args...))
		})
	}
}

func TestIsShellSpecialChar(t *testing.T) {
	for _, c := range " \t'\"$`\\!*?[](){}|;<>&~#%\n\r" {
		assert.True(t, isShellSpecialChar(c), "expected %q to be special", c)
	}
	for _, c := range "abcABC123_-./:@=+" {
		assert.False(t, isShellSpecialChar(c), "expected %q to be plain", c)
	}
}
