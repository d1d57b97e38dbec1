package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileConfig controls optional rotating file output.
type LogFileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger returns a slog.Logger configured for the desired verbosity and
// format. When a file path is set, output is duplicated to a size-rotated log
// file alongside stdout.
func NewLogger(level string, json bool, file LogFileConfig) *slog.Logger {
	handlerLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		handlerLevel = slog.LevelDebug
	case "warn":
		handlerLevel = slog.LevelWarn
	case "error":
		handlerLevel = slog.LevelError
	}

	var out io.Writer = os.Stdout
	if file.Path != "" {
		maxSize := file.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 16
		}
		rotated := &lumberjack.Logger{
			Filename:   file.Path,
			MaxSize:    maxSize,
			MaxBackups: file.MaxBackups,
		}
		out = io.MultiWriter(os.Stdout, rotated)
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: handlerLevel})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: handlerLevel})
	}

	return slog.New(handler)
}
