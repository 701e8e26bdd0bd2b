package domain

import (
	"path/filepath"
	"time"
)

// Config represents the application configuration
type Config struct {
	Download     DownloadConfig     `mapstructure:"download"`
	Extractor    ExtractorConfig    `mapstructure:"extractor"`
	Server       ServerConfig       `mapstructure:"server"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	Dir             string `mapstructure:"dir"`
	ConcurrentLimit int    `mapstructure:"concurrent_limit"`
	WriteTags       bool   `mapstructure:"write_tags"`
}

// IncomingDir is where in-flight jobs write before finalization
func (c DownloadConfig) IncomingDir() string {
	return filepath.Join(c.Dir, ".incoming")
}

// ExtractorConfig contains yt-dlp configuration
type ExtractorConfig struct {
	YTDLPBinary  string   `mapstructure:"ytdlp_binary"`
	URLTemplate  string   `mapstructure:"url_template"`
	Format       string   `mapstructure:"format"`
	AudioFormat  string   `mapstructure:"audio_format"`
	AudioQuality string   `mapstructure:"audio_quality"`
	CookieFile   string   `mapstructure:"cookie_file"`
	ExtraArgs    []string `mapstructure:"extra_args"`
}

// ServerConfig contains configuration for the serve command
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Finished jobs are dropped from memory after JobRetention, and only the
	// newest MaxFinishedJobs are kept. Zero disables either limit.
	JobRetention    time.Duration `mapstructure:"job_retention"`
	MaxFinishedJobs int           `mapstructure:"max_finished_jobs"`
}

// HistoryConfig contains the optional job journal configuration
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // auto, json, console
	OutputPath string `mapstructure:"output_path"` // stderr, stdout, or file path
	LogsDir    string `mapstructure:"logs_dir"`    // categorized log files; empty disables
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{
			Dir:             "/tmp/downloads",
			ConcurrentLimit: 2,
			WriteTags:       true,
		},
		Extractor: ExtractorConfig{
			YTDLPBinary:  "yt-dlp",
			URLTemplate:  "https://www.youtube.com/watch?v=%s",
			Format:       "bestaudio/best",
			AudioFormat:  "mp3",
			AudioQuality: "192",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			JobRetention:    time.Hour,
			MaxFinishedJobs: 100,
		},
		History: HistoryConfig{
			Enabled:      false,
			DatabasePath: "$HOME/.audio-extract/history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "auto",
			OutputPath: "stderr",
		},
	}
}
