// internal/logging/logging.go
// Package logging fans the standard logger out to stdout and a log file and
// formats lines as "<time> - <name> - <LEVEL> - <message>".
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05,000"

var (
	mu      sync.Mutex
	logFile *os.File
	debug   bool
	now     = time.Now
)

// Init points the standard logger at a freshly truncated file at logPath
// (when set) and, if console is true, at stdout. With neither, output is discarded.
func Init(logPath string, console bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	if console {
		writers = append(writers, os.Stdout)
	}

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	log.SetFlags(0)
	if len(writers) == 0 {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// Close releases the log file and restores stderr output.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(os.Stderr)
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// SetDebug toggles DEBUG lines.
func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

func debugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

// Logger writes lines tagged with a component name.
type Logger struct {
	name string
}

// New returns a Logger for the named component.
func New(name string) *Logger {
	if strings.TrimSpace(name) == "" {
		name = "fncall"
	}
	return &Logger{name: name}
}

// Debug logs only when debug output is enabled.
func (l *Logger) Debug(format string, args ...any) {
	if !debugEnabled() {
		return
	}
	l.emit("DEBUG", format, args...)
}

func (l *Logger) Info(format string, args ...any)  { l.emit("INFO", format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.emit("WARNING", format, args...) }
func (l *Logger) Error(format string, args ...any) { l.emit("ERROR", format, args...) }

func (l *Logger) emit(level, format string, args ...any) {
	log.Println(formatLine(now(), l.name, level, fmt.Sprintf(format, args...)))
}

func formatLine(ts time.Time, name, level, msg string) string {
	return strings.Join([]string{ts.Format(timeLayout), name, level, msg}, " - ")
}

var events = New("fncall")

// LogEvent records a free-form INFO line.
func LogEvent(format string, args ...any) {
	events.Info(format, args...)
}

// LogRequest records a payload crossing a process boundary.
func LogRequest(direction, host, function string, payload any) {
	events.Info("%s", buildRequestMessage(direction, host, function, payload))
}

func buildRequestMessage(direction, host, function string, payload any) string {
	dir := strings.TrimSpace(direction)
	if dir != "" {
		dir = strings.ToUpper(dir)
	}
	hostValue := strings.TrimSpace(host)
	if hostValue == "" {
		hostValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", dir)}
	parts = append(parts, fmt.Sprintf("host=%s", hostValue))
	if function = strings.TrimSpace(function); function != "" {
		parts = append(parts, fmt.Sprintf("function=%s", function))
	}
	parts = append(parts, fmt.Sprintf("payload=%s", formatPayload(payload)))
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return strings.TrimSpace(string(v))
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
