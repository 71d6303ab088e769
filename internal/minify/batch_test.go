package minify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imgmin/internal/config"
	"imgmin/internal/fsx"
	"imgmin/internal/imgtest"
	"imgmin/internal/logging"
)

type scriptedProcessor struct {
	seen     []string
	statuses map[string]Status
	errs     map[string]error
}

func (s *scriptedProcessor) Process(_ context.Context, in Input) (Outcome, error) {
	name := filepath.Base(in.Path)
	s.seen = append(s.seen, name)
	out := Outcome{Input: in, Status: s.statuses[name], InputSize: 100, OutputSize: 60}
	return out, s.errs[name]
}

type answer struct {
	yes    bool
	asked  int
	prompt string
}

func (a *answer) Confirm(prompt string) (bool, error) {
	a.asked++
	a.prompt = prompt
	return a.yes, nil
}

func inputs(names ...string) []Input {
	out := make([]Input, len(names))
	for i, n := range names {
		out[i] = Input{Path: filepath.Join("/photos", n), Rel: n}
	}
	return out
}

func newBatch(t *testing.T, cfg config.Config, proc Processor, confirm Confirmer, progress ProgressFunc) (*Batch, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log, err := logging.New(logging.Options{Out: &buf})
	if err != nil {
		t.Fatal(err)
	}
	return NewBatch(cfg, proc, confirm, log, progress), &buf
}

func TestBatchContinuesPastSkipsAndFailures(t *testing.T) {
	proc := &scriptedProcessor{statuses: map[string]Status{
		"a.jpg": StatusDone,
		"b.xyz": StatusSkipped,
		"c.png": StatusFailed,
		"d.gif": StatusDone,
	}}
	var events []ProgressKind
	b, logBuf := newBatch(t, config.Default(), proc, nil, func(p Progress) { events = append(events, p.Kind) })

	sum, err := b.Run(context.Background(), inputs("a.jpg", "b.xyz", "c.png", "d.gif"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(proc.seen, ",") != "a.jpg,b.xyz,c.png,d.gif" {
		t.Fatalf("order: %v", proc.seen)
	}
	if sum.Total != 4 || sum.Done != 2 || sum.Skipped != 1 || sum.Failed != 1 {
		t.Fatalf("summary %+v", sum)
	}
	if sum.InputBytes != 200 || sum.Saved() != 80 {
		t.Fatalf("bytes %+v", sum)
	}

	logs := logBuf.String()
	if !strings.Contains(logs, "4 file(s) supplied.") || !strings.Contains(logs, "Working on file 3/4: 'c.png'") {
		t.Fatalf("headers missing:\n%s", logs)
	}
	if events[0] != ProgressBatchStart || events[len(events)-1] != ProgressFileEnd {
		t.Fatalf("events %v", events)
	}
}

func TestBatchSingleFileHeader(t *testing.T) {
	proc := &scriptedProcessor{}
	b, logBuf := newBatch(t, config.Default(), proc, nil, nil)
	if _, err := b.Run(context.Background(), inputs("only.jpg")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logBuf.String(), "Working on file: 'only.jpg'") {
		t.Fatalf("header: %s", logBuf.String())
	}
}

func TestBatchStopsOnAbort(t *testing.T) {
	proc := &scriptedProcessor{
		statuses: map[string]Status{"b.png": StatusFailed},
		errs:     map[string]error{"b.png": fmt.Errorf("%w: tool missing", ErrAbortRun)},
	}
	b, _ := newBatch(t, config.Default(), proc, nil, nil)

	sum, err := b.Run(context.Background(), inputs("a.png", "b.png", "c.png"))
	if !errors.Is(err, ErrAbortRun) {
		t.Fatalf("expected ErrAbortRun, got %v", err)
	}
	if len(proc.seen) != 2 || sum.Failed != 1 {
		t.Fatalf("seen %v summary %+v", proc.seen, sum)
	}
}

func TestBatchStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	proc := &scriptedProcessor{}
	b, _ := newBatch(t, config.Default(), proc, nil, nil)

	if _, err := b.Run(ctx, inputs("a.png", "b.png")); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
	if len(proc.seen) != 0 {
		t.Fatalf("processed after cancel: %v", proc.seen)
	}
}

func manyInputs(n int) []Input {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("img%02d.png", i)
	}
	return inputs(names...)
}

func TestBatchConfirmationDeclined(t *testing.T) {
	dir := t.TempDir()
	var files []Input
	for i := 0; i < 31; i++ {
		path := imgtest.Write(t, dir, fmt.Sprintf("img%02d.png", i), imgtest.PNG(t, 2, 2))
		files = append(files, Input{Path: path, Rel: filepath.Base(path)})
	}

	cfg := config.Default()
	cfg.TempDir = t.TempDir()
	runner := &fakeRunner{}
	p, err := NewPipeline(cfg, runner, logging.Discard(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ans := &answer{yes: false}
	b, _ := newBatch(t, cfg, p, ans, nil)

	_, err = b.Run(context.Background(), files)
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if ans.asked != 1 || !strings.Contains(ans.prompt, "31") {
		t.Fatalf("prompt: %d %q", ans.asked, ans.prompt)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("tools ran: %v", runner.calls)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 31 {
		t.Fatalf("files modified: %d entries", len(entries))
	}
}

func TestBatchConfirmationAccepted(t *testing.T) {
	proc := &scriptedProcessor{}
	ans := &answer{yes: true}
	b, _ := newBatch(t, config.Default(), proc, ans, nil)
	if _, err := b.Run(context.Background(), manyInputs(31)); err != nil {
		t.Fatal(err)
	}
	if len(proc.seen) != 31 {
		t.Fatalf("processed %d", len(proc.seen))
	}
}

func TestNeedsConfirmation(t *testing.T) {
	cases := []struct {
		name   string
		n      int
		mutate func(*config.Config)
		want   bool
	}{
		{"at threshold", 30, func(*config.Config) {}, false},
		{"above threshold", 31, func(*config.Config) {}, true},
		{"test mode", 31, func(c *config.Config) { c.TestMode = true }, false},
		{"skip warnings", 31, func(c *config.Config) { c.SkipWarnings = true }, false},
		{"overwrite", 31, func(c *config.Config) { c.Overwrite = true }, false},
		{"custom threshold", 6, func(c *config.Config) { c.ConfirmThreshold = 5 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			b := NewBatch(cfg, &scriptedProcessor{}, nil, logging.Discard(), nil)
			if got := b.NeedsConfirmation(tc.n); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPromptConfirmer(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"Y\r\n": true,
		"yes\n": false,
		"n\n":   false,
		"":      false,
	}
	for in, want := range cases {
		var out bytes.Buffer
		ok, err := PromptConfirmer{In: strings.NewReader(in), Out: &out}.Confirm("go? ")
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if ok != want {
			t.Errorf("%q: got %v, want %v", in, ok, want)
		}
		if out.String() != "go? " {
			t.Errorf("prompt written as %q", out.String())
		}
	}
}

func TestBatchNeverOverwritesAnotherInput(t *testing.T) {
	dir := t.TempDir()
	first := imgtest.Write(t, dir, "a.png", imgtest.PNG(t, 8, 8))
	userMin := imgtest.PNG(t, 6, 6)
	second := imgtest.Write(t, dir, "a.min.png", userMin)

	cfg := testConfig(t)
	p, _ := newPipeline(t, cfg, &fakeRunner{})
	b, logBuf := newBatch(t, cfg, p, nil, nil)

	sum, err := b.Run(context.Background(), []Input{
		{Path: first, Rel: "a.png"},
		{Path: second, Rel: "a.min.png"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Skipped != 1 || sum.Done != 1 {
		t.Fatalf("summary %+v\n%s", sum, logBuf.String())
	}

	got, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, userMin) {
		t.Fatalf("a.min.png changed: %d -> %d bytes", len(userMin), len(got))
	}
	if !fsx.Exists(filepath.Join(dir, "a.min.min.png")) {
		t.Fatal("a.min.png was not minified in its own turn")
	}
}

