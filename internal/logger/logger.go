// Package logger wires log/slog to a zap core so every package can log with
// slog while output format and level come from configuration.
package logger

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Format values accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New builds a zap logger for format ("text" or "json") and level
// ("debug", "info", "warn", "error"), installs it as the slog default and
// redirects the standard library logger to it. Call the returned function
// before exit to flush buffered entries.
func New(format, level string) (*slog.Logger, func(), error) {
	var cfg zap.Config
	switch format {
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	case FormatText, "":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level.SetLevel(ParseLevel(level))

	zl, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}
	zap.RedirectStdLog(zl)

	l := FromCore(zl.Core())
	slog.SetDefault(l)
	return l, func() { _ = zl.Sync() }, nil
}

// FromCore returns a slog.Logger writing to core.
func FromCore(core zapcore.Core) *slog.Logger {
	return slog.New(zapslog.NewHandler(core, zapslog.WithCaller(true)))
}

// ParseLevel maps a level name to a zap level; unknown names mean info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
