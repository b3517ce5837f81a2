// Package logging attaches a zerolog logger to the context.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/calder-ops/impactcheck/internal/storage"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 30
)

// Config defines logger creation options.
// For production leave Writer nil and provide a filesystem for file logging;
// tests pass an in-memory Writer instead.
type Config struct {
	Writer io.Writer
	Repo   string
	Level  zerolog.Level
}

// New returns a context carrying the configured logger.
func New(ctx context.Context, fs afero.Fs, config Config) (context.Context, error) {
	writer := config.Writer
	if writer == nil {
		if fs == nil {
			return nil, errors.New("filesystem required when no writer provided")
		}
		logFile, err := storage.New(fs).GetLogPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get log path: %w", err)
		}
		writer = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
			MaxAge:     maxLogAgeDays,
		}
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Str("repo", config.Repo).
		Logger().
		Level(config.Level)

	return logger.WithContext(ctx), nil
}

// Get retrieves the logger from ctx, or a disabled logger if none is attached.
func Get(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
