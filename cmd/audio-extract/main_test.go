package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// eventLines decodes every stdout line as a JSON object
func eventLines(t *testing.T, stdout string) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	for _, line := range strings.Split(strings.TrimRight(stdout, "\n"), "\n") {
		if line == "" {
			continue
		}
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &event), line)
		events = append(events, event)
	}
	return events
}

func TestExecute_WrongArgumentCount(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"none", nil},
		{"two", []string{"abc", "def"}},
		{"blank", []string{"   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputDir := filepath.Join(t.TempDir(), "never-created")
			args := append([]string{"--output-dir", outputDir}, tt.args...)

			code, stdout, _ := runCLI(t, args...)
			assert.Equal(t, 1, code)

			events := eventLines(t, stdout)
			require.Len(t, events, 1)
			assert.Equal(t, "error", events[0]["type"])
			assert.Equal(t, false, events[0]["success"])
			assert.Equal(t, "Video ID required", events[0]["error"])
			assert.NoDirExists(t, outputDir)
		})
	}
}

func TestExecute_UnknownFlagIsJSONError(t *testing.T) {
	code, stdout, _ := runCLI(t, "--bogus", "abc123")
	assert.Equal(t, 1, code)

	events := eventLines(t, stdout)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0]["type"])
	assert.Contains(t, events[0]["error"], "bogus")
}

func TestExecute_InvalidConfigIsJSONError(t *testing.T) {
	code, stdout, _ := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "abc123")
	assert.Equal(t, 1, code)

	events := eventLines(t, stdout)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0]["type"])
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "conf", "config.yaml")

	code, stdout, _ := runCLI(t, "config", "init", "--path", target)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, target)
	assert.FileExists(t, target)

	code, stdout, stderr := runCLI(t, "config", "init", "--path", target)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "already exists")

	code, stdout, _ = runCLI(t, "--config", target, "config", "validate")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Configuration is valid")
}

func TestHistory_Disabled(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("history:\n  enabled: false\n"), 0644))

	code, stdout, stderr := runCLI(t, "--config", configPath, "history")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "history is disabled")
}

func TestLogs_InvalidCategory(t *testing.T) {
	code, _, stderr := runCLI(t, "logs", "download")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid argument")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
}

func TestRenderStats(t *testing.T) {
	out := renderTable([]string{"Status", "Jobs"}, [][]string{{"Completed", "3"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "Completed")
	assert.Contains(t, out, "3")
	assert.Empty(t, renderTable(nil, nil, nil))
}

// writeTestConfig writes a YAML config rooted in a temp directory and
// returns its path and the download directory
func writeTestConfig(t *testing.T, ytdlp string, extra string) (string, string) {
	t.Helper()
	base := t.TempDir()
	downloadDir := filepath.Join(base, "downloads")
	configPath := filepath.Join(base, "config.yaml")
	content := fmt.Sprintf(`download:
  dir: %s
extractor:
  ytdlp_binary: %s
logging:
  output_path: %s
%s`, downloadDir, ytdlp, filepath.Join(base, "audio-extract.log"), extra)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath, downloadDir
}
