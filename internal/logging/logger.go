// Package logging provides the leveled console logger used across imgmin.
//
// Console lines are written to a swappable writer so the progress UI can
// take over stdout while a batch runs; an optional log file receives every
// line with a timestamp and no styling.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level tags. Print lines (INFO) carry no tag on the console.
const (
	LevelInfo    = "INFO"
	LevelSuccess = "SUCCESS"
	LevelWarn    = "WARN"
	LevelError   = "ERROR"
	LevelDebug   = "DEBUG"
)

var levelStyles = map[string]lipgloss.Style{
	LevelSuccess: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A3BE8C")),
	LevelWarn:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EBCB8B")),
	LevelError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BF616A")),
	LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7A8291")),
}

// Options configure a Logger.
type Options struct {
	Out       io.Writer // Console sink; os.Stdout when nil.
	LogFile   string    // Optional file receiving timestamped copies of every line.
	Verbosity int       // Debug lines are emitted when > 0.
}

// Logger is safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	file      *os.File
	verbosity int
}

// New creates a Logger. Call Close when a log file was configured.
func New(opts Options) (*Logger, error) {
	l := &Logger{out: opts.Out, verbosity: opts.Verbosity}
	if l.out == nil {
		l.out = os.Stdout
	}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger {
	return &Logger{out: io.Discard}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// SetOutput swaps the console sink and returns the previous one.
func (l *Logger) SetOutput(w io.Writer) io.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.out
	l.out = w
	return prev
}

// Writer returns a writer that logs each line it receives at debug level.
// External tool output is routed through it in verbose mode.
func (l *Logger) Writer() io.Writer {
	return lineWriter{l: l}
}

// Verbosity returns the configured verbosity.
func (l *Logger) Verbosity() int { return l.verbosity }

func (l *Logger) line(level, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	console := text
	if style, ok := levelStyles[level]; ok {
		console = style.Render("["+level+"]") + " " + text
	}
	_, _ = io.WriteString(l.out, console+"\n")

	if l.file != nil {
		ts := time.Now().Format("2006-01-02 15:04:05")
		_, _ = io.WriteString(l.file, ts+" ["+level+"] "+text+"\n")
	}
}

// Print writes an untagged console line (logged as INFO in the file).
func (l *Logger) Print(format string, args ...interface{}) {
	l.line(LevelInfo, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(LevelSuccess, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red).
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(LevelError, fmt.Sprintf(format, args...))
}

// Debug logs only when verbosity is above zero.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity <= 0 {
		return
	}
	l.line(LevelDebug, fmt.Sprintf(format, args...))
}

type lineWriter struct{ l *Logger }

func (w lineWriter) Write(p []byte) (int, error) {
	for _, s := range strings.Split(strings.TrimRight(string(p), "\r\n"), "\n") {
		if s = strings.TrimRight(s, "\r"); s != "" {
			w.l.Debug("%s", s)
		}
	}
	return len(p), nil
}
