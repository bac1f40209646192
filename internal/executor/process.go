package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/vk/devmaker/internal/ctxlog"
	"github.com/vk/devmaker/internal/fsutil"
	"github.com/vk/devmaker/internal/job"
)

// runProcess runs one script of a job with its own temporary directory. The
// directory is removed after the process exits, whatever the outcome.
func (r *Runner) runProcess(ctx context.Context, j job.Resolved, env job.EnvMap, runnable string) (err error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executing runnable.", "path", runnable)

	if err := fsutil.EnsureExecutable(runnable); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp(r.tempRoot, j.Name+"-")
	if err != nil {
		return fmt.Errorf("creating temp dir for job '%s': %w", j.Name, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			err = withCleanupError(err, fmt.Errorf("removing temp dir for job '%s': %w", j.Name, rmErr))
		}
	}()
	logger.Debug("Created job temp dir.", "tmp_dir", tmpDir)

	cmd := exec.CommandContext(ctx, runnable)
	cmd.Env = mergeEnv(r.hostEnv(), env, job.EnvMap{"TMP_DIR": tmpDir, "TEMP_DIR": tmpDir})
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	runErr := cmd.Run()
	if runErr == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		// ExitCode is -1 when the process was killed by a signal.
		code := exitErr.ExitCode()
		logger.Debug("Job process failed.", "path", runnable, "exit_code", code)
		return &JobFailedError{Job: j.Name, Code: code}
	}
	return fmt.Errorf("executing %s for job '%s': %w", runnable, j.Name, runErr)
}

// withCleanupError adds a cleanup failure to err, keeping the message on one
// line. err stays the one matched by errors.As.
func withCleanupError(err, cleanupErr error) error {
	if err == nil {
		return cleanupErr
	}
	return fmt.Errorf("%w (also: %v)", err, cleanupErr)
}
