package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Out: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	l.Print("Original size: %s", "2.86 MB")
	l.Warn("careful")
	l.Success("'a.png' minified in 120ms.")
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "Original size: 2.86 MB\n") {
		t.Errorf("missing print line: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "careful") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[SUCCESS]") || !strings.Contains(out, "'a.png' minified in 120ms.") {
		t.Errorf("missing success line: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line emitted without verbosity: %q", out)
	}
}

func TestLoggerDebugWithVerbosity(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Out: &buf, Verbosity: 1})
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("shown %d", 1)
	if !strings.Contains(buf.String(), "shown 1") {
		t.Errorf("debug line missing: %q", buf.String())
	}
}

func TestLoggerWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "imgmin.log")

	var console bytes.Buffer
	l, err := New(Options{Out: &console, LogFile: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Error("to file")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte("[ERROR] to file")) {
		t.Errorf("log file content: %s", b)
	}
}

func TestSetOutputAndWriter(t *testing.T) {
	var first, second bytes.Buffer
	l, err := New(Options{Out: &first, Verbosity: 1})
	if err != nil {
		t.Fatal(err)
	}

	prev := l.SetOutput(&second)
	if prev != &first {
		t.Fatal("SetOutput did not return the previous writer")
	}

	if _, err := l.Writer().Write([]byte("tool says hi\r\nsecond line\n")); err != nil {
		t.Fatal(err)
	}
	if first.Len() != 0 {
		t.Errorf("old writer received output: %q", first.String())
	}
	if !strings.Contains(second.String(), "tool says hi") || !strings.Contains(second.String(), "second line") {
		t.Errorf("tool output missing: %q", second.String())
	}
}
