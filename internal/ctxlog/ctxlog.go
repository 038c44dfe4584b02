// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevelEnvVar selects the minimum level written to stderr, using slog
// level names such as DEBUG or WARN+2. Unset or invalid means WARN, so
// user-facing output is not interleaved with log records.
const LogLevelEnvVar = "COMMANDS_WRAPPER_LOG_LEVEL"

const loggerPrefix = "commands-wrapper"

type loggerKey struct{}

// LevelVar is shared by every logger this package builds.
var LevelVar = &slog.LevelVar{}

// DefaultLogger writes pretty records to stderr. Stdout is reserved for
// output that shells consume, such as the hook script and cd targets.
var DefaultLogger = NewLogger(os.Stderr)

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// NewLogger returns a pretty logger writing to w at the shared level.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(NewPrettyHandler(&slog.HandlerOptions{Level: LevelVar},
		WithAutoColour(),
		WithDestinationWriter(w),
		WithPrefix(loggerPrefix),
	))
}

// New stores logger in ctx. A nil logger stores DefaultLogger.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// With returns a context whose logger adds args to every record.
func With(ctx context.Context, args ...any) context.Context {
	return New(ctx, Logger(ctx).With(args...))
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return DefaultLogger
}

// Debug logs at debug level with the logger of ctx.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).DebugContext(ctx, msg, args...)
}

// Info logs at info level with the logger of ctx.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).InfoContext(ctx, msg, args...)
}

// Warn logs at warn level with the logger of ctx.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).WarnContext(ctx, msg, args...)
}

// Error logs at error level with the logger of ctx.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).ErrorContext(ctx, msg, args...)
}

func logLevelFromEnv() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(os.Getenv(LogLevelEnvVar)))); err != nil {
		return slog.LevelWarn
	}

	return l
}
