package minify

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"imgmin/internal/imgtest"
	"imgmin/pkg/imgutil"
)

func newTracked(t *testing.T, data []byte, verify bool) (*Tracker, string) {
	t.Helper()
	work := imgtest.Write(t, t.TempDir(), "work.png", data)
	tr, err := NewTracker(work, imgutil.FormatPNG, verify)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr, work
}

func observe(t *testing.T, tr *Tracker) (Verdict, int64) {
	t.Helper()
	v, size, err := tr.Observe()
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	return v, size
}

func TestTrackerVerdicts(t *testing.T) {
	orig := bytes.Repeat([]byte("a"), 100)
	tr, work := newTracked(t, orig, false)

	smaller := bytes.Repeat([]byte("b"), 80)
	if err := os.WriteFile(work, smaller, 0o644); err != nil {
		t.Fatal(err)
	}
	if v, size := observe(t, tr); v != VerdictSmaller || size != 80 || tr.Best() != 80 {
		t.Fatalf("got %v %d best=%d", v, size, tr.Best())
	}

	// Same size with different bytes: accepted without touching the snapshot.
	if err := os.WriteFile(work, bytes.Repeat([]byte("c"), 80), 0o644); err != nil {
		t.Fatal(err)
	}
	if v, _ := observe(t, tr); v != VerdictSame {
		t.Fatalf("got %v", v)
	}

	if err := os.WriteFile(work, bytes.Repeat([]byte("d"), 120), 0o644); err != nil {
		t.Fatal(err)
	}
	if v, size := observe(t, tr); v != VerdictBigger || size != 120 {
		t.Fatalf("got %v %d", v, size)
	}
	got, err := os.ReadFile(work)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, smaller) {
		t.Fatalf("working copy not restored from snapshot: %q", got[:4])
	}
	if tr.Best() != 80 {
		t.Fatalf("best changed on regression: %d", tr.Best())
	}
}

func TestTrackerRejectsUndecodableResult(t *testing.T) {
	orig := imgtest.PNG(t, 8, 8)
	tr, work := newTracked(t, orig, true)

	if err := os.WriteFile(work, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if v, _ := observe(t, tr); v != VerdictInvalid {
		t.Fatalf("got %v", v)
	}
	got, _ := os.ReadFile(work)
	if !bytes.Equal(got, orig) {
		t.Fatal("invalid result not rolled back")
	}
	if tr.Best() != int64(len(orig)) {
		t.Fatalf("best changed: %d", tr.Best())
	}
}

func TestTrackerRestoresDeletedWorkingCopy(t *testing.T) {
	orig := []byte("0123456789")
	tr, work := newTracked(t, orig, false)

	if err := os.Remove(work); err != nil {
		t.Fatal(err)
	}
	if v, _ := observe(t, tr); v != VerdictInvalid {
		t.Fatalf("got %v", v)
	}
	got, err := os.ReadFile(work)
	if err != nil || !bytes.Equal(got, orig) {
		t.Fatalf("not restored: %q %v", got, err)
	}
}

func TestTrackerRejectsEmptyResult(t *testing.T) {
	tr, work := newTracked(t, []byte("0123456789"), false)
	if err := os.WriteFile(work, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if v, _ := observe(t, tr); v != VerdictInvalid {
		t.Fatalf("got %v", v)
	}
	if info, _ := os.Stat(work); info.Size() != 10 {
		t.Fatalf("size %d", info.Size())
	}
}

func TestTrackerCloseRemovesSnapshot(t *testing.T) {
	tr, work := newTracked(t, []byte("abc"), false)
	snap := tr.snap
	if filepath.Dir(snap) != filepath.Dir(work) {
		t.Fatalf("snapshot in %s", snap)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := os.Stat(snap); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("snapshot left behind")
	}
}
