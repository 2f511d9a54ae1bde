// Package logger builds the zap logger that backs the process-wide slog default.
// Call sites log through log/slog; zap does the encoding.
package logger

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger. encoding "console" gives coloured development output,
// anything else gives JSON suitable for log aggregation.
func New(level, encoding string) (*zap.Logger, error) {
	var cfg zap.Config
	if encoding == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.MessageKey = "msg"
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = lvl

	return cfg.Build()
}

// NewSlog wraps a zap logger in a slog.Logger.
func NewSlog(z *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(z.Core()))
}

// Setup builds the zap logger and installs it as slog's default.
// The caller should defer Sync on the returned logger.
func Setup(level, encoding string) (*zap.Logger, error) {
	z, err := New(level, encoding)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(NewSlog(z))
	return z, nil
}
