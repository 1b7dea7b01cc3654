package observability

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/syntrava/assistant-gateway/internal/config"
)

// SetupLogger configures a JSON slog logger with environment fields.
func SetupLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(cfg)}
	h := slog.NewJSONHandler(logOutput(cfg), opts)
	logger := slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
	return logger
}

// logLevel honours LOG_LEVEL, otherwise debug in dev and info elsewhere.
func logLevel(cfg config.Config) slog.Level {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if cfg.IsDev() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// logOutput returns a rotating file when LOG_OUTPUT=file and stdout otherwise.
// An unwritable log directory degrades to stdout.
func logOutput(cfg config.Config) io.Writer {
	if cfg.LogOutput != "file" || cfg.LogFilePath == "" {
		return os.Stdout
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
		slog.Error("log directory unavailable, using stdout", slog.String("path", cfg.LogFilePath), slog.Any("error", err))
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.LogFileMaxSizeMB, // megabytes
		MaxBackups: cfg.LogFileMaxBackups,
		MaxAge:     cfg.LogFileMaxAgeDays, // days
		Compress:   true,
	}
}
