package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/domain"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// reportedError marks a job failure whose terminal event is already on stdout
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// execute runs the CLI and returns the process exit code. Failures of the
// root job command are always reported as a single JSON error event on
// stdout; subcommands report errors on stderr.
func execute(args []string, stdout, stderr io.Writer) int {
	env := &cliEnv{stdout: stdout, stderr: stderr}
	root := newRootCommand(env)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	if err == nil {
		return 0
	}

	var reported *reportedError
	if errors.As(err, &reported) {
		return app.ExitCode(reported.err)
	}

	if cmd == root {
		_ = app.NewJSONLineEmitter(stdout).Emit(domain.NewErrorEvent(err.Error()))
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}
