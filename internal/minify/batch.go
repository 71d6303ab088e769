package minify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"imgmin/internal/config"
	"imgmin/internal/logging"
)

// Processor handles one file. *Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, in Input) (Outcome, error)
}

// inputReserver is implemented by processors that must not write over any
// file of the batch.
type inputReserver interface {
	Reserve(inputs []Input)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// PromptConfirmer reads the answer from In after writing the prompt to Out.
// Only "y" or "Y" counts as yes.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (c PromptConfirmer) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprint(c.Out, prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return strings.TrimSpace(line) == "y" || strings.TrimSpace(line) == "Y", nil
}

// Batch drives the Processor over an ordered file list.
type Batch struct {
	cfg      config.Config
	proc     Processor
	confirm  Confirmer
	log      *logging.Logger
	progress ProgressFunc

	confirmed bool
}

// NewBatch wires a batch controller. confirm may be nil when the threshold
// prompt can never trigger.
func NewBatch(cfg config.Config, proc Processor, confirm Confirmer, log *logging.Logger, progress ProgressFunc) *Batch {
	return &Batch{cfg: cfg, proc: proc, confirm: confirm, log: log, progress: progress}
}

// NeedsConfirmation reports whether n files require the user to confirm.
func (b *Batch) NeedsConfirmation(n int) bool {
	return n > b.cfg.ConfirmThreshold && !b.cfg.TestMode && !b.cfg.SkipWarnings && !b.cfg.Overwrite
}

// Confirm asks the user to approve a batch of n files when the threshold
// rules require it, returning ErrDeclined unless the answer is yes. Run
// calls it as well; callers use it to prompt before a UI takes over the
// terminal.
func (b *Batch) Confirm(n int) error {
	if b.confirmed || !b.NeedsConfirmation(n) {
		return nil
	}
	if b.confirm == nil {
		return ErrDeclined
	}
	ok, err := b.confirm.Confirm(fmt.Sprintf("%d files supplied. Minify them all? [y/N] ", n))
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if !ok {
		return ErrDeclined
	}
	b.confirmed = true
	return nil
}

// Run processes inputs in order. Every file is attempted regardless of how
// the previous one ended; only cancellation or an abort policy stops the
// loop early.
func (b *Batch) Run(ctx context.Context, inputs []Input) (Summary, error) {
	sum := Summary{Total: len(inputs)}
	if err := b.Confirm(len(inputs)); err != nil {
		return sum, err
	}

	if r, ok := b.proc.(inputReserver); ok {
		r.Reserve(inputs)
	}

	b.log.Print("%d file(s) supplied.", len(inputs))
	b.log.Print("")
	b.log.Print("===============")
	b.progress.emit(Progress{Kind: ProgressBatchStart, Total: len(inputs)})

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		name := filepath.Base(in.Path)
		b.log.Print("")
		if len(inputs) == 1 {
			b.log.Print("Working on file: '%s'", name)
		} else {
			b.log.Print("Working on file %d/%d: '%s'", i+1, len(inputs), name)
		}
		b.progress.emit(Progress{Kind: ProgressFileStart, Index: i + 1, Total: len(inputs), Name: name})

		out, err := b.proc.Process(ctx, in)
		sum.Add(out)
		b.progress.emit(Progress{Kind: ProgressFileEnd, Index: i + 1, Total: len(inputs), Name: name, Outcome: out})
		if out.Status == StatusDone {
			b.log.Print("")
			b.log.Print("===============")
		}
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}
