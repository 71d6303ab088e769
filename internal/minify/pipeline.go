package minify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"imgmin/internal/config"
	"imgmin/internal/fsx"
	"imgmin/internal/logging"
	"imgmin/internal/metadata"
	"imgmin/internal/tools"
	"imgmin/pkg/imgutil"
)

const separator = "-----------------------------------"

// Pipeline minifies one file at a time. It is not safe for concurrent use.
type Pipeline struct {
	cfg      config.Config
	runner   tools.Runner
	log      *logging.Logger
	progress ProgressFunc
	target   imgutil.Format
	toolOpts tools.Options
	inputs   map[string]bool // absolute paths of every file in the batch
}

// NewPipeline builds a Pipeline from a validated configuration.
func NewPipeline(cfg config.Config, runner tools.Runner, log *logging.Logger, progress ProgressFunc) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      cfg,
		runner:   runner,
		log:      log,
		progress: progress,
		toolOpts: tools.Options{
			Lossy:    cfg.Lossy,
			NoStrip:  !cfg.BuiltinStrip,
			Disabled: cfg.DisabledTools,
		},
	}
	if cfg.Format != "" {
		target, err := imgutil.ParseFormat(cfg.Format)
		if err != nil {
			return nil, err
		}
		p.target = target
	}
	return p, nil
}

// Reserve records the batch's input paths. Process never publishes over any
// of them, whether or not that input has had its turn yet.
func (p *Pipeline) Reserve(inputs []Input) {
	p.inputs = make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if abs, err := filepath.Abs(in.Path); err == nil {
			p.inputs[abs] = true
		}
	}
}

// Process runs one file through detection, the tool chain and publishing.
// Per-file problems are reported in the Outcome; a non-nil error means the
// batch must stop (cancellation or an abort policy).
func (p *Pipeline) Process(ctx context.Context, in Input) (Outcome, error) {
	start := time.Now()
	out := Outcome{Input: in}

	det := imgutil.Detect(in.Path)
	if det.Err != nil {
		p.log.Print("%s", skipMessage(det.Err))
		p.log.Debug("%s: %v", in.Path, det.Err)
		return skipped(out, det.Err.Error()), nil
	}

	format, convert := p.chooseFormat(det.Format)
	if !format.Minifiable() {
		p.log.Print("Unknown file format! Skipping file...")
		return skipped(out, fmt.Sprintf("no tools for %s", det.Format)), nil
	}

	output, err := OutputPath(in, format, p.cfg)
	if err != nil {
		p.log.Error("%s: %v", in.Path, err)
		return failed(out, err.Error()), nil
	}
	out.Output = output
	if p.inputs[output] {
		p.log.Warn("Output '%s' is another input file. Skipping file...", output)
		return skipped(out, "output path is another input"), nil
	}
	work := WorkingPath(p.cfg.TempDir, output)

	p.log.Debug("Input: '%s'", in.Path)
	p.log.Debug("Temp: '%s'", work)
	p.log.Debug("Output: '%s'", output)

	if p.cfg.TestMode {
		p.log.Print("Input:  '%s'", in.Path)
		p.log.Print("Output: '%s'", output)
		return skipped(out, "test mode"), nil
	}

	if err := fsx.RemoveIfExists(work); err != nil {
		p.log.Warn("Temporary file '%s' already exists and could not be deleted, probably in use. Skipping file...", work)
		return skipped(out, "stale working copy"), nil
	}

	info, err := os.Stat(in.Path)
	if err != nil {
		p.log.Error("%v", err)
		return failed(out, err.Error()), nil
	}
	out.InputSize = info.Size()

	p.log.Print("")
	p.log.Print("Original size: %s", SizeSuffix(out.InputSize))
	p.log.Print(separator)
	p.logMetadata(in.Path)

	if err := os.MkdirAll(filepath.Dir(work), 0o755); err != nil {
		p.log.Error("create temp directory: %v", err)
		return failed(out, err.Error()), nil
	}

	published := false
	defer func() {
		if !published {
			_ = os.Remove(work)
		}
	}()

	if convert {
		p.log.Print("Converting %s to %s", det.Format, format)
		err = Convert(in.Path, work, format, p.cfg.Quality)
	} else {
		err = fsx.CopyFile(in.Path, work)
	}
	if err != nil {
		p.log.Error("could not create working copy: %v", err)
		return failed(out, err.Error()), nil
	}

	tracker, err := NewTracker(work, format, p.cfg.Verify)
	if err != nil {
		p.log.Error("%v", err)
		return failed(out, err.Error()), nil
	}
	defer tracker.Close()

	if o, err := p.runChain(ctx, out, format, work, tracker); err != nil || o.Status == StatusFailed {
		return o, err
	}

	if err := p.publish(work, output); err != nil {
		p.log.Error("could not write '%s': %v", output, err)
		out = failed(out, err.Error())
		if p.cfg.OnPublishError == config.PolicyAbort {
			return out, fmt.Errorf("%w: %v", ErrAbortRun, err)
		}
		return out, nil
	}
	published = true

	if info, err := os.Stat(output); err == nil {
		out.OutputSize = info.Size()
	}
	out.Status = StatusDone
	out.Elapsed = time.Since(start)

	p.log.Print(separator)
	p.log.Print("")
	p.log.Success("'%s' minified in %s.", filepath.Base(in.Path), FormatElapsed(out.Elapsed))
	p.log.Print("%s => %s (%s%%)", SizeSuffix(out.InputSize), SizeSuffix(out.OutputSize), Ratio(out.InputSize, out.OutputSize))
	if det.Width > 0 {
		p.log.Print("%d x %d, %d pixels.", det.Width, det.Height, det.Width*det.Height)
	}
	return out, nil
}

// runChain applies every selected tool in catalog order.
func (p *Pipeline) runChain(ctx context.Context, out Outcome, format imgutil.Format, work string, tracker *Tracker) (Outcome, error) {
	for _, spec := range tools.Select(format, p.toolOpts) {
		if err := ctx.Err(); err != nil {
			return failed(out, "interrupted"), err
		}

		p.progress.emit(Progress{Kind: ProgressToolStart, Tool: spec.Display})
		err := p.runner.Run(ctx, spec, work)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return failed(out, "interrupted"), ctxErr
		}
		if err != nil {
			if p.cfg.OnToolError == config.PolicyAbort {
				p.log.Error("%v", err)
				return failed(out, err.Error()), fmt.Errorf("%w: %v", ErrAbortRun, err)
			}
			p.log.Warn("%v, skipping tool", err)
			continue
		}

		verdict, size, err := tracker.Observe()
		if err != nil {
			p.log.Error("%s: %v", spec.Display, err)
			return failed(out, err.Error()), nil
		}
		p.log.Print("%s", statLine(spec.Display, verdict, size))
		p.log.Debug("with args: %v", spec.Resolve(work, p.cfg.Quality))
		p.progress.emit(Progress{Kind: ProgressToolEnd, Tool: spec.Display, Verdict: verdict, Size: size})
	}
	return out, nil
}

// logMetadata lists the metadata the chain is about to strip. Verbose only.
func (p *Pipeline) logMetadata(path string) {
	if p.log.Verbosity() <= 0 {
		return
	}
	report, err := metadata.Inspect(path)
	if err != nil {
		p.log.Debug("metadata: %v", err)
		return
	}
	for _, d := range report.Details {
		p.log.Debug("Metadata: %s (%d)", d.Category, len(d.Values))
	}
}

func (p *Pipeline) publish(work, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	if err := fsx.RemoveIfExists(output); err != nil {
		return err
	}
	return fsx.Move(work, output)
}

// chooseFormat returns the format to minify as and whether a conversion is
// needed first.
func (p *Pipeline) chooseFormat(detected imgutil.Format) (imgutil.Format, bool) {
	if p.target == imgutil.FormatSkip || p.target == detected {
		return detected, false
	}
	if detected == imgutil.FormatAPNG && p.target == imgutil.FormatPNG {
		return detected, false
	}
	if detected.Animated() || detected == imgutil.FormatTGA {
		p.log.Warn("%s images are not converted, keeping %s", detected, detected)
		return detected, false
	}
	return p.target, true
}

func skipMessage(err error) string {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "File not found! Skipping file..."
	case errors.Is(err, imgutil.ErrUnknownFormat):
		return "Unknown file format! Skipping file..."
	default:
		return "Something went wrong! Skipping file..."
	}
}

func skipped(o Outcome, reason string) Outcome {
	o.Status = StatusSkipped
	o.Reason = reason
	return o
}

func failed(o Outcome, reason string) Outcome {
	o.Status = StatusFailed
	o.Reason = reason
	return o
}
