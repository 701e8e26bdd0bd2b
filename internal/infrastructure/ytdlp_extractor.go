package infrastructure

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/yourusername/audio-extract-go/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// processWaitDelay bounds how long Wait keeps reading output after the process is signalled
	processWaitDelay = 10 * time.Second

	maxLineSize = 1024 * 1024
)

// YTDLPExtractor implements Extractor by running yt-dlp
type YTDLPExtractor struct {
	config  *domain.ExtractorConfig
	logsDir string
	logger  *zap.Logger
}

// NewYTDLPExtractor creates a yt-dlp extractor. Raw yt-dlp output is
// appended to a per-day file in logsDir unless logsDir is empty.
func NewYTDLPExtractor(config *domain.ExtractorConfig, logsDir string, logger *zap.Logger) *YTDLPExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPExtractor{
		config:  config,
		logsDir: logsDir,
		logger:  logger,
	}
}

// BuildArgs returns the yt-dlp arguments for req.
// Note: exec.Command passes args directly to the process, no shell quoting needed.
func (e *YTDLPExtractor) BuildArgs(req domain.ExtractRequest) []string {
	args := []string{
		"-f", e.config.Format,
		"-x",
		"--audio-format", e.config.AudioFormat,
		"--audio-quality", e.config.AudioQuality,
		"-o", filepath.Join(req.OutputDir, "%(title)s.%(ext)s"),
		"--no-playlist",
		"--newline",
		"--no-colors",
		"--quiet",
		"--progress",
		"--no-simulate",
		"--progress-template", downloadTemplate,
		"--progress-template", postprocessTemplate,
		"--print", resultTemplate,
	}

	if e.config.CookieFile != "" && fileExists(e.config.CookieFile) {
		args = append(args, "--cookies", e.config.CookieFile)
	}

	args = append(args, e.config.ExtraArgs...)

	// End of options: an identifier starting with "-" stays a URL
	args = append(args, "--", req.URL)
	return args
}

// Extract downloads req.URL and transcodes it into req.OutputDir.
// Cancelling ctx terminates yt-dlp.
func (e *YTDLPExtractor) Extract(ctx context.Context, req domain.ExtractRequest, onProgress domain.ProgressFunc) (*domain.ExtractResult, error) {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	args := e.BuildArgs(req)
	parser := newOutputParser(onProgress)

	downloadLog, err := e.openLogFile()
	if err != nil {
		e.logger.Warn("Failed to open extract log", zap.Error(err))
	}
	if downloadLog != nil {
		defer downloadLog.Close()
		e.writeLogHeader(downloadLog, req.JobID, ShellEscapeCommand(e.config.YTDLPBinary, args...))
	}

	e.logger.Debug("Starting yt-dlp",
		zap.String("job_id", req.JobID),
		zap.String("url", req.URL),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)
	setSysProcAttr(cmd)
	cmd.WaitDelay = processWaitDelay

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	var logMu sync.Mutex
	handle := func(line string) {
		if downloadLog != nil {
			logMu.Lock()
			downloadLog.WriteString(line + "\n")
			logMu.Unlock()
		}
		parser.handleLine(line)
	}

	var g errgroup.Group
	g.Go(func() error { return scanLines(stdoutR, handle) })
	g.Go(func() error { return scanLines(stderrR, handle) })

	runErr := cmd.Start()
	if runErr == nil {
		runErr = cmd.Wait()
	}
	stdoutW.Close()
	stderrW.Close()
	if err := g.Wait(); err != nil {
		e.logger.Warn("Failed to read yt-dlp output", zap.Error(err))
	}

	if ctx.Err() != nil {
		e.footer(downloadLog, false, "cancelled")
		return nil, domain.NewCancelledError(context.Cause(ctx))
	}

	if runErr != nil {
		msg := parser.LastError()
		if msg == "" {
			msg = fmt.Sprintf("yt-dlp failed: %v", runErr)
		}
		e.footer(downloadLog, false, msg)
		return nil, errors.New(msg)
	}

	result := parser.Result()
	if result == nil || result.FilePath == "" {
		e.footer(downloadLog, false, "No output file reported")
		return nil, fmt.Errorf("yt-dlp did not report an output file")
	}
	if !fileExists(result.FilePath) {
		e.footer(downloadLog, false, "Output file missing: "+result.FilePath)
		return nil, fmt.Errorf("yt-dlp output file missing: %s", result.FilePath)
	}

	e.footer(downloadLog, true, fmt.Sprintf("Extracted: %s", result.FilePath))
	return result, nil
}

// scanLines feeds every line of r to handle. On a read error the rest of r
// is drained so the writer never blocks.
func scanLines(r io.Reader, handle func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		handle(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

// openLogFile opens the extract log file for today; nil when logging is disabled
func (e *YTDLPExtractor) openLogFile() (*os.File, error) {
	if e.logsDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(e.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	return os.OpenFile(ExtractLogPath(e.logsDir, time.Now()), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// ExtractLogPath returns the raw yt-dlp output log for date
func ExtractLogPath(logsDir string, date time.Time) string {
	return filepath.Join(logsDir, "extract-"+date.Format("20060102")+".log")
}

// writeLogHeader writes the extraction start marker
func (e *YTDLPExtractor) writeLogHeader(file *os.File, jobID, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	file.WriteString(fmt.Sprintf("\n=== [%s] Extract: %s ===\n", timestamp, jobID))
	file.WriteString(fmt.Sprintf("$ %s\n", cmdLine))
}

// footer writes the extraction end marker if a log file is open
func (e *YTDLPExtractor) footer(file *os.File, success bool, message string) {
	if file == nil {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	file.WriteString(fmt.Sprintf("[%s] %s: %s\n", timestamp, status, message))
	file.WriteString("=== END ===\n\n")
}
