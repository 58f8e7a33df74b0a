// Package log provides a thin, opinionated wrapper around zap.SugaredLogger.
// It exists so the rest of the codebase depends on a small, stable logging
// surface instead of zap directly, and so log level and output can be
// reconfigured at runtime via Init.
package log

import (
	"fmt"
	"io"
	"os"
	"unicode"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level names accepted by Init.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)

var (
	logger  *zap.SugaredLogger
	level   string
	atomLvl zap.AtomicLevel

	// panicOnInvalidChars makes the logger panic when asked to log a string
	// containing non-printable bytes, instead of silently emitting them.
	// Disabled by default; tests toggle it explicitly.
	panicOnInvalidChars = false

	// logTestWriter and logTestWriterName let tests redirect output without
	// touching the filesystem or stdio.
	logTestWriter     io.Writer = os.Stderr
	logTestWriterName           = "test"
)

func init() {
	atomLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = newLogger(atomLvl, os.Stderr)
	level = LogLevelInfo
}

func zapLevel(s string) zapcore.Level {
	switch s {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func newLogger(lvl zap.AtomicLevel, w io.Writer) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// Init configures the global logger. output may be "stdout", "stderr", or a
// file path. extraWriters, if non-nil, additionally receive every log line
// (used by tests to capture output).
func Init(lvl string, output string, extraWriters []io.Writer) error {
	var w io.Writer
	switch output {
	case "stdout":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	case logTestWriterName:
		w = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("log: cannot open output %q: %w", output, err)
		}
		w = f
	}
	if len(extraWriters) > 0 {
		ws := append([]io.Writer{w}, extraWriters...)
		w = io.MultiWriter(ws...)
	}
	atomLvl = zap.NewAtomicLevelAt(zapLevel(lvl))
	logger = newLogger(atomLvl, w)
	level = lvl
	return nil
}

// Level returns the currently configured log level name.
func Level() string {
	return level
}

func checkInvalidChars(args ...interface{}) {
	if !panicOnInvalidChars {
		return
	}
	for _, a := range args {
		s, ok := a.(string)
		if !ok {
			if b, ok := a.([]byte); ok {
				s = string(b)
			} else {
				continue
			}
		}
		for _, r := range s {
			if r == unicode.ReplacementChar || (r < 0x20 && r != '\n' && r != '\t') {
				panic(fmt.Sprintf("log: invalid character in log message: %q", s))
			}
		}
	}
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) {
	checkInvalidChars(args...)
	logger.Debugf(format, args...)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	checkInvalidChars(args...)
	logger.Infof(format, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) {
	checkInvalidChars(args...)
	logger.Warnf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	checkInvalidChars(args...)
	logger.Errorf(format, args...)
}

// Fatalf logs a formatted message at fatal level and exits the process.
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// Debugw logs a message with structured key/value pairs at debug level.
func Debugw(msg string, kv ...interface{}) {
	logger.Debugw(msg, kv...)
}

// Infow logs a message with structured key/value pairs at info level.
func Infow(msg string, kv ...interface{}) {
	logger.Infow(msg, kv...)
}

// Warnw logs a message with structured key/value pairs at warn level.
func Warnw(msg string, kv ...interface{}) {
	logger.Warnw(msg, kv...)
}

// Errorw logs a message with structured key/value pairs at error level.
func Errorw(msg string, kv ...interface{}) {
	logger.Errorw(msg, kv...)
}

// Info logs its arguments at info level.
func Info(args ...interface{}) {
	logger.Info(args...)
}

// Warn logs its arguments at warn level.
func Warn(args ...interface{}) {
	logger.Warn(args...)
}

// Error logs its arguments at error level.
func Error(args ...interface{}) {
	logger.Error(args...)
}

// Fatal logs its arguments at fatal level and exits the process.
func Fatal(args ...interface{}) {
	logger.Fatal(args...)
}

// Print logs its arguments at info level, mirroring the standard library's
// log.Print for drop-in compatibility with code ported from elsewhere.
func Print(args ...interface{}) {
	logger.Info(args...)
}

// Println logs its arguments at info level.
func Println(args ...interface{}) {
	logger.Info(args...)
}

// Printf logs a formatted message at info level.
func Printf(format string, args ...interface{}) {
	logger.Infof(format, args...)
}
