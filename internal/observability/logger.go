// Package observability provides the process-wide CLI logger.
//
// Commands log human-facing progress through CLILogger. Library packages
// under pkg/ never log; they return errors to the command layer.
package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the logger used by command implementations.
//
// It is a no-op logger until InitCLILogger is called so that tests and
// library consumers never hit a nil pointer.
var CLILogger = zap.NewNop()

// InitCLILogger configures CLILogger for the named binary.
//
// Output goes to stderr with a console encoder, no timestamps or caller
// annotations, so stdout stays clean for generated documents and JSONL.
// verbose lowers the level to debug.
func InitCLILogger(name string, verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	CLILogger = newConsoleLogger(name, zap.NewAtomicLevelAt(level))
}

// InitCLILoggerWithLevel configures CLILogger from a level name
// (debug, info, warn, error). Unknown names fall back to info.
func InitCLILoggerWithLevel(name, levelName string) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(levelName)))); err != nil {
		level = zapcore.InfoLevel
	}
	CLILogger = newConsoleLogger(name, zap.NewAtomicLevelAt(level))
}

func newConsoleLogger(name string, level zap.AtomicLevel) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	logger := zap.New(core)
	if name != "" {
		logger = logger.Named(name)
	}
	return logger
}

// Sync flushes CLILogger, ignoring the EINVAL that stderr returns on some
// platforms.
func Sync() {
	_ = CLILogger.Sync()
}
