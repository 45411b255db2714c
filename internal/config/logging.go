package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mrz1836/payreq/internal/fileutil"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// ParseLogLevel parses a log level string.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelError:
		return "error"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// slogLevel maps a LogLevel to the minimum slog level it lets through.
func (l LogLevel) slogLevel() slog.Level {
	if l == LogLevelDebug {
		return slog.LevelDebug
	}
	return slog.LevelError
}

// Logger writes leveled log lines to an append-only file. It also exposes
// the same file through a structured *slog.Logger.
type Logger struct {
	mu         sync.Mutex
	level      LogLevel
	file       *os.File
	out        *lockedWriter
	filePath   string
	jsonOutput bool
	structured *slog.Logger
}

// lockedWriter serializes writes from the line logger and the slog handler.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// NewLogger creates a new logger. Nothing is opened when level is off or
// filePath is empty.
func NewLogger(level LogLevel, filePath string) (*Logger, error) {
	logger := &Logger{
		level:    level,
		filePath: filePath,
	}

	if level == LogLevelOff || filePath == "" {
		return logger, nil
	}

	filePath = ExpandPath(filePath)
	if err := fileutil.EnsureDir(filePath, configDirPermissions); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	logger.file = f
	logger.out = &lockedWriter{w: f}
	logger.filePath = filePath

	return logger, nil
}

// NewStructuredLogger creates a logger whose structured output is JSON.
func NewStructuredLogger(level LogLevel, filePath string) (*Logger, error) {
	logger, err := NewLogger(level, filePath)
	if err != nil {
		return nil, err
	}
	logger.SetJSONOutput(true)
	return logger, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.out = nil
		l.structured = nil
		return err
	}
	return nil
}

// SetLevel changes the log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.structured = nil
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.filePath
}

// SetJSONOutput switches the structured logger between JSON and text handlers.
func (l *Logger) SetJSONOutput(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonOutput = enabled
	l.structured = nil
}

// Structured returns a slog logger writing to the log file, or nil when
// logging is disabled.
func (l *Logger) Structured() *slog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.structuredLocked()
}

func (l *Logger) structuredLocked() *slog.Logger {
	if l.out == nil || l.level == LogLevelOff {
		return nil
	}
	if l.structured != nil {
		return l.structured
	}

	opts := &slog.HandlerOptions{Level: l.level.slogLevel()}
	var h slog.Handler
	if l.jsonOutput {
		h = slog.NewJSONHandler(l.out, opts)
	} else {
		h = slog.NewTextHandler(l.out, opts)
	}
	l.structured = slog.New(h)
	return l.structured
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

// DebugAttrs logs a structured debug record.
func (l *Logger) DebugAttrs(msg string, attrs ...slog.Attr) {
	l.logAttrs(slog.LevelDebug, msg, attrs...)
}

// ErrorAttrs logs a structured error record.
func (l *Logger) ErrorAttrs(msg string, attrs ...slog.Attr) {
	l.logAttrs(slog.LevelError, msg, attrs...)
}

func (l *Logger) logAttrs(level slog.Level, msg string, attrs ...slog.Attr) {
	s := l.Structured()
	if s == nil {
		return
	}
	s.LogAttrs(context.Background(), level, msg, attrs...)
}

// Writer returns an io.Writer that writes to the logger at the specified level.
func (l *Logger) Writer(level LogLevel) io.Writer {
	return &logWriter{logger: l, level: level}
}

// log writes a log line if the level is enabled.
func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level == LogLevelOff || level > l.level || l.out == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	levelStr := strings.ToUpper(level.String())
	msg := fmt.Sprintf(format, args...)

	_, _ = fmt.Fprintf(l.out, "%s [%s] %s\n", timestamp, levelStr, msg)
}

// logWriter implements io.Writer for the logger.
type logWriter struct {
	logger *Logger
	level  LogLevel
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.logger.log(w.level, "%s", strings.TrimSpace(string(p)))
	return len(p), nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{level: LogLevelOff}
}
