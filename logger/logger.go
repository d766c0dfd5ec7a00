package logger

import (
	"encoding/json"
	"io"
	"log"
	"maps"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// Logger writes one JSON object per line, filtered by level
type Logger struct {
	level  Level
	mu     sync.Mutex
	logger *log.Logger
}

// logEntry represents a structured log entry
type logEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// New creates a logger at the given level. A nil output logs to stderr so
// that stdout stays free for task output and the array-job protocol.
func New(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	return &Logger{
		level:  ParseLevel(level),
		logger: log.New(output, "", 0),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{level: ERROR + 1, logger: log.New(io.Discard, "", 0)}
}

// ParseLevel converts a level name to Level, defaulting to INFO
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

func (l *Logger) writeLogEntry(level Level, message string, fields map[string]any) {
	if l.level > level {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     getLevelName(level),
		Message:   message,
		Fields:    fields,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if data, err := json.Marshal(entry); err == nil {
		l.logger.Println(string(data))
	} else {
		// Fallback to simple format if JSON fails
		l.logger.Printf("[%s] %s", entry.Level, message)
	}
}

func getLevelName(level Level) string {
	switch level {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func firstFields(fields []map[string]any) map[string]any {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// Core logging methods - always structured
func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.writeLogEntry(DEBUG, message, firstFields(fields))
}

func (l *Logger) Info(message string, fields ...map[string]any) {
	l.writeLogEntry(INFO, message, firstFields(fields))
}

func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.writeLogEntry(WARN, message, firstFields(fields))
}

func (l *Logger) Error(message string, fields ...map[string]any) {
	l.writeLogEntry(ERROR, message, firstFields(fields))
}

// Invocation logs an event about one index of a submitted job.
func (l *Logger) Invocation(jobID string, index int, message string, fields ...map[string]any) {
	allFields := map[string]any{
		"job_id": jobID,
		"index":  index,
		"type":   "invocation",
	}

	if f := firstFields(fields); f != nil {
		maps.Copy(allFields, f)
	}

	l.writeLogEntry(INFO, message, allFields)
}

func (l *Logger) HTTP(method, path string, statusCode int, duration time.Duration, fields ...map[string]any) {
	allFields := map[string]any{
		"http_method": method,
		"http_path":   path,
		"http_status": statusCode,
		"duration_ns": duration.Nanoseconds(),
		"type":        "http_request",
	}

	if f := firstFields(fields); f != nil {
		maps.Copy(allFields, f)
	}

	l.writeLogEntry(INFO, "HTTP request completed", allFields)
}
