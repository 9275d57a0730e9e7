package internal

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Log source tags used in structured logger contexts.
const (
	SourceApp      = "app"
	SourceLoader   = "loader"
	SourceAnalysis = "analysis"
	SourceReport   = "report"
)

// Logger provides leveled logging on top of a logfmt structured logger
type Logger struct {
	level LogLevel
	root  *log.Logger
	base  *log.Logger
}

// NewLogger creates a new logger with the specified level writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing logfmt lines to w
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	base := log.NewWithOptions(w, log.Options{
		TimeFunction:    log.NowUTC,
		TimeFormat:      time.RFC3339Nano,
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
	return &Logger{level: level, root: base, base: base.With("source", SourceApp)}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLogLevel maps ERROR, WARN, INFO, DEBUG or TRACE to a level; anything else is INFO
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// With returns a logger tagged with the given source
func (l *Logger) With(source string) *Logger {
	return &Logger{level: l.level, root: l.root, base: l.root.With("source", source)}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LogLevelError {
		l.base.Errorf(format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LogLevelWarn {
		l.base.Warnf(format, args...)
	}
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.base.Infof(format, args...)
	}
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.base.Debugf(format, args...)
	}
}

// Trace logs trace messages at debug severity with a trace marker
func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LogLevelTrace {
		l.base.With("trace", true).Debugf(format, args...)
	}
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// SetLevel changes the verbosity
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
