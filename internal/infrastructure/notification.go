package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/yourusername/audio-extract-go/internal/domain"
	"go.uber.org/zap"
)

// commandRunner runs a notification command; swapped in tests
type commandRunner func(name string, args ...string) error

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// NotificationService sends desktop notifications when jobs finish
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    commandRunner
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run:    runCommand,
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// JobUpdated notifies about finished jobs and ignores other transitions
func (n *NotificationService) JobUpdated(job domain.Job) {
	switch job.Status {
	case domain.StatusCompleted:
		n.NotifyJobCompleted(job)
	case domain.StatusFailed:
		n.NotifyJobFailed(job)
	}
}

// NotifyJobCompleted sends notification when a job completes
func (n *NotificationService) NotifyJobCompleted(job domain.Job) {
	title := "Audio Ready"
	message := fmt.Sprintf("Saved: %s", truncateString(job.Title, 60))
	n.Send(title, message)
}

// NotifyJobFailed sends notification when a job fails
func (n *NotificationService) NotifyJobFailed(job domain.Job) {
	title := "Audio Extraction Failed"
	message := fmt.Sprintf("%s: %s", job.VideoID, truncateString(job.ErrorMessage, 60))
	n.Send(title, message)
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// truncateString truncates a string to maxLen runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
