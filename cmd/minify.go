package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"imgmin/internal/config"
	"imgmin/internal/logging"
	"imgmin/internal/minify"
	"imgmin/internal/tools"
	"imgmin/internal/tui"
)

func runMinify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.ToolDir == "" {
		cfg.ToolDir = tools.DefaultToolDir()
	}
	pauseOnExit = cfg.Pause

	log, err := logging.New(logging.Options{Out: os.Stdout, LogFile: cfg.LogFile, Verbosity: cfg.Verbosity})
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputs := minify.Expand(args, cfg.Output, log)
	if len(inputs) == 0 {
		return errors.New("no input files")
	}

	runner := &tools.ExecRunner{
		ToolDir:     cfg.ToolDir,
		Quality:     cfg.Quality,
		Priority:    cfg.Priority,
		PreserveICC: cfg.PreserveICC,
		Log:         log,
	}

	var sum minify.Summary
	if useUI(cfg) {
		sum, err = runWithUI(ctx, cancel, cfg, runner, log, inputs)
	} else {
		sum, err = runPlain(ctx, cfg, runner, log, inputs)
	}

	switch {
	case errors.Is(err, minify.ErrDeclined):
		return errors.New("aborted by user")
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.BatchRows(sum)))
		return errors.New("interrupted")
	case err != nil:
		fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.BatchRows(sum)))
		return err
	}

	if !cfg.TestMode {
		fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.BatchRows(sum)))
	}
	if sum.Failed > 0 {
		return errFilesFailed
	}
	return nil
}

func useUI(cfg config.Config) bool {
	if cfg.Plain || cfg.TestMode {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func newBatch(cfg config.Config, runner tools.Runner, log *logging.Logger, progress minify.ProgressFunc) (*minify.Batch, error) {
	pipeline, err := minify.NewPipeline(cfg, runner, log, progress)
	if err != nil {
		return nil, err
	}
	confirm := minify.PromptConfirmer{In: os.Stdin, Out: os.Stdout}
	return minify.NewBatch(cfg, pipeline, confirm, log, progress), nil
}

func runPlain(ctx context.Context, cfg config.Config, runner *tools.ExecRunner, log *logging.Logger, inputs []minify.Input) (minify.Summary, error) {
	batch, err := newBatch(cfg, runner, log, nil)
	if err != nil {
		return minify.Summary{}, err
	}
	return batch.Run(ctx, inputs)
}

// runWithUI hands the terminal to the progress view for the duration of the
// batch. Log lines travel through the same channel as progress events.
func runWithUI(ctx context.Context, cancel context.CancelFunc, cfg config.Config, runner *tools.ExecRunner, log *logging.Logger, inputs []minify.Input) (minify.Summary, error) {
	updates := make(chan minify.Progress, 64)
	uiDone := make(chan struct{})

	send := func(p minify.Progress) {
		select {
		case updates <- p:
		case <-uiDone:
		}
	}

	batch, err := newBatch(cfg, runner, log, send)
	if err != nil {
		return minify.Summary{}, err
	}
	// The prompt needs stdin, so ask before bubbletea takes it over.
	if err := batch.Confirm(len(inputs)); err != nil {
		return minify.Summary{}, err
	}

	runner.Heartbeat = func(spec tools.Spec, elapsed time.Duration) {
		send(minify.Progress{Kind: minify.ProgressHeartbeat, Tool: spec.Display, Elapsed: elapsed})
	}
	prev := log.SetOutput(tui.LineWriter{Send: send})

	program := tea.NewProgram(tui.NewModel(updates, cancel))
	go func() {
		defer close(uiDone)
		if _, err := program.Run(); err != nil {
			cancel()
		}
	}()

	sum, runErr := batch.Run(ctx, inputs)
	close(updates)
	<-uiDone
	log.SetOutput(prev)
	runner.Heartbeat = nil
	return sum, runErr
}

func waitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "Press Enter to continue...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
