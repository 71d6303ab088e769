package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"imgmin/internal/logging"
	"imgmin/internal/strip"
)

// ErrToolNotFound means the executable is in neither the tool directory nor
// PATH.
var ErrToolNotFound = errors.New("tool executable not found")

// LaunchError reports a tool that could not be started. A tool that starts
// and exits non-zero is not a LaunchError.
type LaunchError struct {
	Tool string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Tool, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Runner executes one tool against file and waits for it.
type Runner interface {
	Run(ctx context.Context, spec Spec, file string) error
}

// HeartbeatFunc receives the elapsed time of a running tool.
type HeartbeatFunc func(spec Spec, elapsed time.Duration)

// DefaultHeartbeat is the interval between heartbeat calls.
const DefaultHeartbeat = 100 * time.Millisecond

// ExecRunner runs catalog entries as child processes. Builtin entries run
// in-process.
type ExecRunner struct {
	ToolDir     string
	Quality     int
	Priority    string
	PreserveICC bool
	Log         *logging.Logger
	Heartbeat   HeartbeatFunc
	Interval    time.Duration
}

// DefaultToolDir is the "minifiers" directory next to the running binary.
func DefaultToolDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "minifiers")
}

// Lookup resolves name to an executable path, trying the tool directory
// before PATH.
func (r *ExecRunner) Lookup(name string) (string, error) {
	if r.ToolDir != "" {
		for _, candidate := range executableNames(name) {
			p := filepath.Join(r.ToolDir, candidate)
			if isExecutable(p) {
				return p, nil
			}
		}
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return p, nil
}

func (r *ExecRunner) Run(ctx context.Context, spec Spec, file string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if spec.Builtin {
		return r.runBuiltin(spec, file)
	}

	path, err := r.Lookup(spec.Name)
	if err != nil {
		return &LaunchError{Tool: spec.Display, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, spec.Resolve(file, r.Quality)...)
	cmd.Dir = filepath.Dir(file)
	if r.Log != nil && r.Log.Verbosity() > 0 {
		cmd.Stdout = r.Log.Writer()
		cmd.Stderr = r.Log.Writer()
	}

	if err := cmd.Start(); err != nil {
		return &LaunchError{Tool: spec.Display, Err: err}
	}
	if err := setPriority(cmd.Process.Pid, r.Priority); err != nil {
		r.debug("could not set %s priority for %s: %v", r.Priority, spec.Display, err)
	}

	err = r.wait(ctx, cmd, spec)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		r.debug("%s exited with code %d", spec.Display, exitErr.ExitCode())
	case err != nil:
		r.debug("%s: %v", spec.Display, err)
	}
	return nil
}

// wait blocks until the process exits while a heartbeat reports progress.
func (r *ExecRunner) wait(ctx context.Context, cmd *exec.Cmd, spec Spec) error {
	start := time.Now()
	done := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return cmd.Wait()
	})
	if r.Heartbeat != nil {
		interval := r.Interval
		if interval <= 0 {
			interval = DefaultHeartbeat
		}
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return nil
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					r.Heartbeat(spec, time.Since(start))
				}
			}
		})
	}
	return g.Wait()
}

func (r *ExecRunner) runBuiltin(spec Spec, file string) error {
	switch spec.Name {
	case StripName:
		if err := strip.File(file, spec.Format, r.PreserveICC); err != nil {
			// Treated like a non-zero exit: the working copy is untouched.
			r.debug("%s: %v", spec.Display, err)
		}
		return nil
	default:
		return &LaunchError{Tool: spec.Display, Err: fmt.Errorf("unknown builtin %q", spec.Name)}
	}
}

func (r *ExecRunner) debug(format string, args ...interface{}) {
	if r.Log != nil {
		r.Log.Debug(format, args...)
	}
}

func executableNames(name string) []string {
	if runtime.GOOS == "windows" {
		return []string{name + ".exe", name}
	}
	return []string{name}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&fs.FileMode(0o111) != 0
}
