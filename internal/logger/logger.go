package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/polkiloo/floristportal/internal/config"
)

// New creates a JSON slog.Logger writing to stdout at the configured level.
// With LogFile set, records also go to a size-rotated file; the returned
// closer releases it and is a no-op otherwise.
func New(cfg *config.Config) (*slog.Logger, io.Closer) {
	return build(cfg, os.Stdout)
}

func build(cfg *config.Config, stdout io.Writer) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	var out io.Writer = stdout
	var closer io.Closer = nopCloser{}

	if cfg != nil {
		level = cfg.LogLevel
		if cfg.LogFile != "" {
			file := &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.LogMaxSizeMB,
				MaxBackups: cfg.LogMaxBackups,
				MaxAge:     cfg.LogMaxAgeDays,
				Compress:   true,
			}
			out = io.MultiWriter(stdout, file)
			closer = file
		}
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
