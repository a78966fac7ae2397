// Package logging provides structured, leveled logging for tagwatch.
// Every check cycle carries a correlation ID through its context so one
// cycle's registry, state and notifier log lines can be tied together.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// contextKey is used for storing values in context.
type contextKey string

const correlationIDKey contextKey = "correlation_id"

// Logger is a structured logger with level support.
type Logger struct {
	mu     sync.Mutex
	output io.Writer
	level  Level
	json   bool
	fields map[string]interface{}
}

// entry is the JSON wire form of a single log line.
type entry struct {
	Timestamp     string                 `json:"ts"`
	Level         string                 `json:"level"`
	Message       string                 `json:"msg"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
}

// New creates a logger configured from LOG_LEVEL and LOG_FORMAT.
func New() *Logger {
	return &Logger{
		output: os.Stderr,
		level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		json:   os.Getenv("LOG_FORMAT") == "json",
		fields: make(map[string]interface{}),
	}
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetJSON enables or disables JSON output format.
func (l *Logger) SetJSON(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.json = enabled
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{
		output: l.output,
		level:  l.level,
		json:   l.json,
		fields: newFields,
	}
}

// log is the internal logging function.
func (l *Logger) log(ctx context.Context, level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	var correlationID string
	if ctx != nil {
		if id, ok := ctx.Value(correlationIDKey).(string); ok {
			correlationID = id
		}
	}

	if l.json {
		e := entry{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Level:         level.String(),
			Message:       msg,
			CorrelationID: correlationID,
		}
		if len(l.fields) > 0 {
			e.Fields = l.fields
		}

		data, err := json.Marshal(e)
		if err != nil {
			fmt.Fprintf(l.output, "ERROR: failed to marshal log entry: %v\n", err)
			return
		}
		fmt.Fprintln(l.output, string(data))
		return
	}

	// Human-readable format
	timestamp := time.Now().Format("2006/01/02 15:04:05")
	var parts []string

	if correlationID != "" && len(correlationID) >= 8 {
		parts = append(parts, fmt.Sprintf("[%s]", correlationID[:8]))
	}
	parts = append(parts, fmt.Sprintf("[%s]", level.String()), msg)

	if len(l.fields) > 0 {
		fieldParts := make([]string, 0, len(l.fields))
		for k, v := range l.fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("{%s}", strings.Join(fieldParts, ", ")))
	}

	fmt.Fprintf(l.output, "%s %s\n", timestamp, strings.Join(parts, " "))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(context.Background(), LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(context.Background(), LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(context.Background(), LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(context.Background(), LevelError, format, args...)
}

// DebugContext logs a debug message with context.
func (l *Logger) DebugContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelDebug, format, args...)
}

// InfoContext logs an info message with context.
func (l *Logger) InfoContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelInfo, format, args...)
}

// WarnContext logs a warning message with context.
func (l *Logger) WarnContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelWarn, format, args...)
}

// ErrorContext logs an error message with context.
func (l *Logger) ErrorContext(ctx context.Context, format string, args ...interface{}) {
	l.log(ctx, LevelError, format, args...)
}

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// GetCorrelationID retrieves the correlation ID from context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}
