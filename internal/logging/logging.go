// Package logging provides the small structured-logging wrapper used by
// bvh.Build and cmd/proxbench. It is a scaled-down cousin of the teacher
// repo's logging package: a *zap.SugaredLogger underneath, console-encoded,
// colored levels, no network appenders or log-registry machinery, since
// nothing here ships logs anywhere but stderr.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the sugared logging handle passed through the bvh and
// cmd/proxbench packages. It embeds *zap.SugaredLogger so callers can use
// the familiar Infow/Warnw/Debugw structured-field API directly.
type Logger struct {
	*zap.SugaredLogger
}

// newConfig returns the console-encoder configuration shared by every
// constructor below: colored level names, ISO8601 timestamps, no
// stacktrace capture (this is a library, not a service).
func newConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg
}

// NewLogger returns a Logger named name at info level, writing to stderr.
func NewLogger(name string) *Logger {
	cfg := newConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base, err := cfg.Build()
	if err != nil {
		// zap.Config.Build only fails on a malformed encoder/sink config,
		// which newConfig never produces; a nop logger is a safe fallback
		// rather than panicking a caller that just wants to log.
		return &Logger{zap.NewNop().Sugar()}
	}
	return &Logger{base.Named(name).Sugar()}
}

// NewDebugLogger returns a Logger named name at debug level.
func NewDebugLogger(name string) *Logger {
	cfg := newConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	base, err := cfg.Build()
	if err != nil {
		return &Logger{zap.NewNop().Sugar()}
	}
	return &Logger{base.Named(name).Sugar()}
}

// NewTestLogger returns a Logger that writes through tb.Log, so test output
// only appears when the test fails or -v is passed.
func NewTestLogger(tb testing.TB) *Logger {
	return &Logger{zaptest.NewLogger(tb).Sugar()}
}
