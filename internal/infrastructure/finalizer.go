package infrastructure

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"go.uber.org/zap"
)

const (
	// finalizeLockName serializes renames into the output directory across processes
	finalizeLockName = ".finalize.lock"
	lockRetryDelay   = 50 * time.Millisecond
	defaultAudioExt  = ".mp3"
)

// FileFinalizer moves extracted files into the output directory under
// their sanitized title. Concurrent finalizations of titles that sanitize
// to the same name are serialized; the last one wins.
type FileFinalizer struct {
	outputDir string
	logger    *zap.Logger
}

// NewFileFinalizer creates a finalizer writing into outputDir
func NewFileFinalizer(outputDir string, logger *zap.Logger) *FileFinalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileFinalizer{outputDir: outputDir, logger: logger}
}

// Finalize moves src to <outputDir>/<SanitizeFilename(title)><ext>
func (f *FileFinalizer) Finalize(ctx context.Context, src, title string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("extracted file not found: %w", err)
	}

	dir, err := filepath.Abs(f.outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	dest := filepath.Join(dir, FinalFilename(title, src))

	lock := flock.New(filepath.Join(dir, finalizeLockName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("failed to lock output directory: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("failed to lock output directory: %s", dir)
	}
	defer lock.Unlock()

	if src == dest {
		return dest, nil
	}

	if _, err := os.Stat(dest); err == nil {
		f.logger.Info("Replacing existing file", zap.String("path", dest))
	}

	if err := moveFile(src, dest); err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", src, dest, err)
	}

	return dest, nil
}

// FinalFilename is the sanitized title plus the extension of src
func FinalFilename(title, src string) string {
	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = defaultAudioExt
	}
	return domain.SanitizeFilename(title) + ext
}

// moveFile renames src to dst, falling back to copy and delete across devices
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// copyFile copies src into dst through a temporary file in dst's directory
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// fileExists checks if a regular file exists
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
