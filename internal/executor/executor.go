// Package executor runs resolved jobs as child processes, one at a time.
//
// Each job gets its resolved variables plus HOME, USER, USERNAME and
// SCRIPT_DIR. Every process invocation also gets a fresh temporary directory,
// exposed as TMP_DIR and TEMP_DIR, which is removed when the process exits.
package executor

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/vk/devmaker/internal/ctxlog"
	"github.com/vk/devmaker/internal/fsutil"
	"github.com/vk/devmaker/internal/job"
)

// Runner executes jobs found under a root directory.
type Runner struct {
	root     string
	env      Environment
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	tempRoot string
	hostEnv  func() []string
}

// Option configures a Runner.
type Option func(*Runner)

// WithEnvironment overrides how the invoking user's details are looked up.
func WithEnvironment(env Environment) Option {
	return func(r *Runner) { r.env = env }
}

// WithIO sets the standard streams handed to child processes.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdin, r.stdout, r.stderr = stdin, stdout, stderr
	}
}

// WithTempRoot sets the directory job temporary directories are created in.
// The default is os.TempDir.
func WithTempRoot(dir string) Option {
	return func(r *Runner) { r.tempRoot = dir }
}

// New creates a Runner for jobs under root. Child processes inherit the
// process's standard streams unless WithIO is given.
func New(root string, opts ...Option) *Runner {
	r := &Runner{
		root:    root,
		env:     HostEnvironment{},
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		hostEnv: os.Environ,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one job: its deps.sh when present, then its main runnable.
// A failing deps.sh stops the job before the main runnable starts.
func (r *Runner) Run(ctx context.Context, j job.Resolved) error {
	ctx, logger := ctxlog.With(ctx, "job", j.Name)
	logger.Info("▶️ Starting job")

	env, err := r.processEnv(j)
	if err != nil {
		return err
	}

	if j.HasDepsScript {
		deps := filepath.Join(j.ScriptDir(r.root), job.DepsScript)
		logger.Debug("Running deps script.", "path", deps)
		if err := r.runProcess(ctx, j, env, deps); err != nil {
			return err
		}
	}

	runnable, err := r.findRunner(j)
	if err != nil {
		return err
	}
	if err := r.runProcess(ctx, j, env, runnable); err != nil {
		return err
	}

	logger.Info("✅ Finished job")
	return nil
}

// RunAll executes jobs in order and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context, jobs []job.Resolved) error {
	for _, j := range jobs {
		if err := r.Run(ctx, j); err != nil {
			return err
		}
	}
	return nil
}

// findRunner prefers run.sh and otherwise takes the first run.* entry the
// file system enumerates. With several run.* files the choice depends on
// directory order, which is not guaranteed to be sorted.
func (r *Runner) findRunner(j job.Resolved) (string, error) {
	dir := j.ScriptDir(r.root)
	if def := filepath.Join(dir, job.DefaultRunner); fsutil.IsRegularFile(def) {
		return def, nil
	}
	for p, err := range fsutil.Matches(dir, job.RunnerPattern) {
		if err != nil {
			return "", &NoRunnerError{Job: j.Name, Err: err}
		}
		if fsutil.IsRegularFile(p) {
			return p, nil
		}
	}
	return "", &NoRunnerError{Job: j.Name}
}
