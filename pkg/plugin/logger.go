package plugin

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger defines the interface for plugin logging
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// DefaultLogger writes key/value records through charmbracelet/log
type DefaultLogger struct {
	log *log.Logger
}

// NewDefaultLogger creates a default logger writing to standard error
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return NewLogger(os.Stderr, level)
}

// NewLogger creates a default logger writing to w
func NewLogger(w io.Writer, level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		log: log.NewWithOptions(w, log.Options{
			Prefix: "kedro",
			Level:  charmLevel(level),
		}),
	}
}

func (l *DefaultLogger) Debug(msg string, args ...interface{}) {
	l.log.Debug(msg, args...)
}

func (l *DefaultLogger) Info(msg string, args ...interface{}) {
	l.log.Info(msg, args...)
}

func (l *DefaultLogger) Warn(msg string, args ...interface{}) {
	l.log.Warn(msg, args...)
}

func (l *DefaultLogger) Error(msg string, args ...interface{}) {
	l.log.Error(msg, args...)
}

func charmLevel(level LogLevel) log.Level {
	switch level {
	case LogLevelDebug:
		return log.DebugLevel
	case LogLevelInfo:
		return log.InfoLevel
	case LogLevelWarn:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

// ParseLogLevel converts "debug", "info", "warn" or "error" to a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
