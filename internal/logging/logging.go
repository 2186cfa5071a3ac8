// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the structured logger used across the client.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Debug mode lowers the level and keeps
// caller annotations; otherwise info and above.
func New(debug bool) *zap.Logger {
	return NewWithSink(debug, os.Stderr)
}

// NewWithSink builds a logger writing to the given sink. Used by tests and by
// the TUI, which must keep stdout free for rendering.
func NewWithSink(debug bool, sink io.Writer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(sink),
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// Nop returns a logger that discards everything. Handy default for tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
