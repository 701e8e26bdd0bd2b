package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yourusername/audio-extract-go/internal/app"
	"github.com/yourusername/audio-extract-go/internal/domain"
	"github.com/yourusername/audio-extract-go/pkg/logger"
	"go.uber.org/zap"
)

// cliEnv carries the output streams and persistent flags shared by commands
type cliEnv struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	outputDir  string
}

func newRootCommand(env *cliEnv) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "audio-extract [flags] <video-id>",
		Short: "Extract a video's audio track as MP3",
		Long: `Downloads the audio of a video with yt-dlp, converts it to MP3 and
reports progress as newline-delimited JSON events on stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          videoIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runJob(cmd.Context(), args[0])
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&env.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&env.outputDir, "output-dir", "o", "", "Directory for finished MP3 files")

	rootCmd.AddCommand(newServeCommand(env))
	rootCmd.AddCommand(newSearchCommand(env))
	rootCmd.AddCommand(newHistoryCommand(env))
	rootCmd.AddCommand(newLogsCommand(env))
	rootCmd.AddCommand(newConfigCommand(env))

	return rootCmd
}

// videoIDArg accepts exactly one non-blank positional argument
func videoIDArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return domain.ErrInvalidArguments
	}
	return nil
}

// loadConfig reads the configuration and applies command-line overrides
func (e *cliEnv) loadConfig() (*domain.Config, error) {
	config, err := app.LoadConfig(e.configPath)
	if err != nil {
		return nil, err
	}
	if dir := strings.TrimSpace(e.outputDir); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve output directory: %w", err)
		}
		config.Download.Dir = abs
	}
	return config, nil
}

// newLoggers builds the diagnostic logger and, when a logs directory is
// configured, the categorized event logger
func newLoggers(config *domain.Config) (*zap.Logger, *logger.MultiLogger, error) {
	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if config.Logging.LogsDir == "" {
		return log, nil, nil
	}
	events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Logging.LogsDir,
	})
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("failed to initialize event logs: %w", err)
	}
	return log, events, nil
}
