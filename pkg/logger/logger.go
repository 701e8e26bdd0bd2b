package logger

import (
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // auto, json, console
	OutputPath string // stderr, stdout, or file path
}

// New creates a new logger based on configuration.
// Stdout is reserved for the event protocol, so the default output is stderr.
func New(config Config) (*zap.Logger, error) {
	// Parse log level
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	// Configure output
	var writer zapcore.WriteSyncer
	var file *os.File
	switch config.OutputPath {
	case "stderr", "":
		file = os.Stderr
		writer = zapcore.AddSync(os.Stderr)
	case "stdout":
		file = os.Stdout
		writer = zapcore.AddSync(os.Stdout)
	default:
		f, err := os.OpenFile(config.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		file = f
		writer = zapcore.AddSync(f)
	}

	format := resolveFormat(config.Format, file)

	// Configure encoder
	var encoderConfig zapcore.EncoderConfig
	if format == "json" {
		encoderConfig = zap.NewProductionEncoderConfig()
	} else {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Create encoder
	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, writer, level)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// resolveFormat maps "auto" to console on a terminal and json elsewhere
func resolveFormat(format string, file *os.File) string {
	switch format {
	case "json", "console":
		return format
	}
	fd := file.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return "console"
	}
	return "json"
}

// NewDefault creates a default logger writing to stderr
func NewDefault() *zap.Logger {
	logger, err := New(Config{
		Level:      "info",
		Format:     "auto",
		OutputPath: "stderr",
	})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
