//go:build !windows

package main

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliArgsEnv = "AUDIO_EXTRACT_TEST_CLI_ARGS"

const fakeYTDLPSlow = `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then out="$arg"; fi
  prev="$arg"
done
dir=$(dirname "$out")
printf 'partial' > "$dir/My Song!.webm.part"
printf '[audio-extract:download]\tdownloading\t128\t1024\tNA\t 12.5%%\t1.00MiB/s\t00:10\n' >&2
sleep 30
`

// TestCLISubprocess runs the CLI inside a child test binary so the
// signal tests can interrupt a real process.
func TestCLISubprocess(t *testing.T) {
	raw, ok := os.LookupEnv(cliArgsEnv)
	if !ok {
		t.Skip("only runs as a child process")
	}
	os.Exit(execute(strings.Split(raw, "\x1f"), os.Stdout, os.Stderr))
}

func cliCommand(t *testing.T, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^TestCLISubprocess$")
	cmd.Env = append(os.Environ(), cliArgsEnv+"="+strings.Join(args, "\x1f"))
	cmd.WaitDelay = 10 * time.Second
	return cmd
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "unexpected wait error: %v", err)
	return exitErr.ExitCode()
}

func TestExecute_InterruptWhileLoadingConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, syscall.Mkfifo(configPath, 0600))

	cmd := cliCommand(t, "--config", configPath, "abc123")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	require.NoError(t, cmd.Start())

	// A non-blocking writer open succeeds only once the child is blocked
	// reading the config.
	var writer *os.File
	require.Eventually(t, func() bool {
		f, err := os.OpenFile(configPath, os.O_WRONLY|syscall.O_NONBLOCK, 0)
		if err != nil {
			return false
		}
		writer = f
		return true
	}, 10*time.Second, 10*time.Millisecond)
	defer writer.Close()

	require.NoError(t, cmd.Process.Signal(os.Interrupt))
	assert.Equal(t, 1, exitCode(t, cmd.Wait()))

	events := eventLines(t, stdout.String())
	require.NotEmpty(t, events)
	terminal := events[len(events)-1]
	assert.Equal(t, "error", terminal["type"])
	assert.Equal(t, false, terminal["success"])
	assert.Equal(t, "Download cancelled", terminal["error"])
	for _, event := range events[:len(events)-1] {
		assert.Equal(t, "progress", event["type"])
	}
}

func TestExecute_InterruptDuringDownload(t *testing.T) {
	configPath, downloadDir := writeTestConfig(t, writeScript(t, fakeYTDLPSlow), "")

	cmd := cliCommand(t, "--config", configPath, "abc123")
	pipe, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	reader := bufio.NewReader(pipe)
	first, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.NoError(t, cmd.Process.Signal(os.Interrupt))

	rest, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, 1, exitCode(t, cmd.Wait()))

	events := eventLines(t, first+string(rest))
	require.Len(t, events, 3)
	assert.Equal(t, "progress", events[0]["type"])
	assert.Equal(t, "downloading", events[0]["phase"])
	assert.Equal(t, 12.5, events[0]["percentage"])
	assert.Equal(t, "cancelled", events[1]["phase"])
	assert.Equal(t, "Cancelling...", events[1]["status"])
	assert.Equal(t, "error", events[2]["type"])
	assert.Equal(t, "Download cancelled", events[2]["error"])

	var leftovers []string
	require.NoError(t, filepath.WalkDir(downloadDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			leftovers = append(leftovers, path)
		}
		return nil
	}))
	assert.Empty(t, leftovers)
}
