// Package minify runs the best-of-N compression chain over a batch of
// images: each file is copied to a working path, every applicable tool is
// applied in order, and only results smaller than the best so far are kept.
package minify

import (
	"errors"
	"time"
)

var (
	// ErrAbortRun wraps a condition that stops the whole batch.
	ErrAbortRun = errors.New("run aborted")
	// ErrDeclined is returned when the user answers no to the confirmation prompt.
	ErrDeclined = errors.New("batch declined by user")
)

// Input is one file to minify. Rel is the path below the walked root and is
// used to mirror sub-directories under an output directory.
type Input struct {
	Path string
	Rel  string
}

// Status is the terminal state of one pipeline run.
type Status int

const (
	StatusDone Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome reports what happened to one file.
type Outcome struct {
	Input      Input
	Status     Status
	Reason     string
	Output     string
	InputSize  int64
	OutputSize int64
	Elapsed    time.Duration
}

// Summary aggregates outcomes across a batch.
type Summary struct {
	Total       int
	Done        int
	Skipped     int
	Failed      int
	InputBytes  int64
	OutputBytes int64
}

// Add folds o into the summary.
func (s *Summary) Add(o Outcome) {
	switch o.Status {
	case StatusDone:
		s.Done++
		s.InputBytes += o.InputSize
		s.OutputBytes += o.OutputSize
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// Saved is the number of bytes removed across finished files.
func (s Summary) Saved() int64 { return s.InputBytes - s.OutputBytes }

// Verdict is the tracker's judgement on one tool run.
type Verdict int

const (
	VerdictSmaller Verdict = iota
	VerdictSame
	VerdictBigger
	VerdictInvalid
)

func (v Verdict) String() string {
	switch v {
	case VerdictSmaller:
		return "(smaller)"
	case VerdictSame:
		return "(same)"
	case VerdictBigger:
		return "(bigger, ignoring)"
	case VerdictInvalid:
		return "(invalid, ignoring)"
	default:
		return "(?)"
	}
}

// ProgressKind identifies a Progress event.
type ProgressKind int

const (
	ProgressBatchStart ProgressKind = iota
	ProgressFileStart
	ProgressToolStart
	ProgressHeartbeat
	ProgressToolEnd
	ProgressFileEnd
	ProgressLine
)

// Progress is emitted to the UI while a batch runs. Only the fields that
// belong to Kind are set.
type Progress struct {
	Kind    ProgressKind
	Index   int // 1-based file number
	Total   int
	Name    string
	Tool    string
	Elapsed time.Duration
	Verdict Verdict
	Size    int64
	Outcome Outcome
	Line    string
}

// ProgressFunc receives progress events. It must not block for long.
type ProgressFunc func(Progress)

func (f ProgressFunc) emit(p Progress) {
	if f != nil {
		f(p)
	}
}
