package minify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"imgmin/internal/fsx"
	"imgmin/pkg/imgutil"
)

// Tracker keeps the smallest version of a working copy seen so far. The
// best size lives in memory and the best bytes in a private snapshot file.
// After every Observe the working copy is never larger than the snapshot.
type Tracker struct {
	work   string
	snap   string
	best   int64
	format imgutil.Format
	verify bool
	closed bool
}

// NewTracker snapshots work as the initial best. When verify is set,
// smaller results must decode as format before they are accepted.
func NewTracker(work string, format imgutil.Format, verify bool) (*Tracker, error) {
	info, err := os.Stat(work)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(filepath.Dir(work), ".best-*")
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	snap := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(snap)
		return nil, err
	}
	if err := fsx.CopyFile(work, snap); err != nil {
		_ = os.Remove(snap)
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	return &Tracker{work: work, snap: snap, best: info.Size(), format: format, verify: verify}, nil
}

// Best is the smallest size observed so far.
func (t *Tracker) Best() int64 { return t.best }

// Observe compares the working copy with the snapshot after a tool run. It
// returns the verdict and the size the tool produced. Rejected results are
// replaced by the snapshot before Observe returns.
func (t *Tracker) Observe() (Verdict, int64, error) {
	info, err := os.Stat(t.work)
	if errors.Is(err, os.ErrNotExist) {
		return VerdictInvalid, 0, t.restore()
	}
	if err != nil {
		return VerdictInvalid, 0, err
	}
	size := info.Size()

	switch {
	case size == t.best:
		return VerdictSame, size, nil
	case size > t.best:
		return VerdictBigger, size, t.restore()
	case size == 0:
		return VerdictInvalid, size, t.restore()
	}

	if t.verify {
		if err := imgutil.Verify(t.work, t.format); err != nil {
			return VerdictInvalid, size, t.restore()
		}
	}
	if err := fsx.CopyFile(t.work, t.snap); err != nil {
		return VerdictSmaller, size, fmt.Errorf("update snapshot: %w", err)
	}
	t.best = size
	return VerdictSmaller, size, nil
}

func (t *Tracker) restore() error {
	if err := fsx.RemoveIfExists(t.work); err != nil {
		return fmt.Errorf("remove rejected result: %w", err)
	}
	if err := fsx.CopyFile(t.snap, t.work); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

// Close removes the snapshot. It is safe to call more than once.
func (t *Tracker) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return fsx.RemoveIfExists(t.snap)
}
