// Package log wraps zerolog behind package-level event helpers so the rest
// of the tracker never holds a logger instance.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	logger     zerolog.Logger
	loggerLock sync.RWMutex
)

func init() {
	// Pretty console output when attached to a terminal, JSON otherwise
	// (piped into a service manager or a file).
	var output io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}

	logger = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

// SetLevel sets the global log level at runtime.
func SetLevel(levelStr string) {
	level := parseLogLevel(levelStr)
	loggerLock.Lock()
	logger = logger.Level(level)
	loggerLock.Unlock()
}

func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger.Debug()
}

// Info logs an info message.
func Info() *zerolog.Event {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger.Info()
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger.Warn()
}

// Error logs an error message.
func Error() *zerolog.Event {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger.Error()
}

// Fatal logs a fatal message and exits.
func Fatal() *zerolog.Event {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger.Fatal()
}

// Logger returns the underlying zerolog.Logger for integrations.
func Logger() zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}
