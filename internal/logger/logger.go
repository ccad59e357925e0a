package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	apperrors "github.com/notedhq/noted/internal/errors"
)

// Level orders log severities. Entries below a logger's level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "unknown"
	}
	return levelNames[l]
}

// LogEntry is one JSON line of output.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Component string                 `json:"component,omitempty"`
	Error     *ErrorDetails          `json:"error,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// ErrorDetails carries the structured parts of an error alongside its text.
// Code and Category are filled in when the error is an AppError.
type ErrorDetails struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Category   string `json:"category,omitempty"`
	StackTrace string `json:"stack_trace,omitempty"`
}

// Logger writes structured JSON log lines. Safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	level     Level
	component string
}

var defaultLogger = New(os.Stdout, LevelInfo, "")

func New(out io.Writer, level Level, component string) *Logger {
	return &Logger{out: out, level: level, component: component}
}

// SetDefault replaces the process-wide logger that component loggers are
// derived from. Call it once, before handlers are constructed.
func SetDefault(l *Logger) { defaultLogger = l }

// Default returns the process-wide logger.
func Default() *Logger { return defaultLogger }

// WithComponent returns a copy of the logger tagged with a component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{out: l.out, level: l.level, component: component}
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelDebug, msg, nil, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelInfo, msg, nil, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelWarn, msg, nil, fields)
}

// Error logs err along with msg. Error entries carry the caller and a stack
// trace, plus the error's code and category when it is an AppError.
func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.write(ctx, LevelError, msg, err, fields)
}

func (l *Logger) write(ctx context.Context, level Level, msg string, err error, fields []map[string]interface{}) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		RequestID: apperrors.GetRequestID(ctx),
		Component: l.component,
	}
	if len(fields) > 0 {
		entry.Fields = fields[0]
	}

	if level >= LevelError {
		entry.Caller = callerLocation()
	}

	if err != nil {
		details := &ErrorDetails{Message: err.Error()}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			details.Code = appErr.Code
			details.Category = string(appErr.Category)
		}
		if level >= LevelError {
			details.StackTrace = stackTrace()
		}
		entry.Error = details
	}

	line, _ := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(line)
	l.out.Write([]byte{'\n'})
}

// callerLocation reports the file:line that invoked the logging method,
// trimmed to the last two path elements.
func callerLocation() string {
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		return ""
	}
	parts := strings.Split(file, "/")
	if len(parts) > 2 {
		file = strings.Join(parts[len(parts)-2:], "/")
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func stackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
