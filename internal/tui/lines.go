package tui

import (
	"strings"

	"imgmin/internal/minify"
)

// LineWriter forwards every written line as a ProgressLine event. The
// logger writes one line per call, so partial lines are not buffered.
type LineWriter struct {
	Send func(minify.Progress)
}

func (w LineWriter) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\n")
	for _, line := range strings.Split(text, "\n") {
		w.Send(minify.Progress{Kind: minify.ProgressLine, Line: line})
	}
	return len(p), nil
}
