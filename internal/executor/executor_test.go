package executor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/devmaker/internal/ctxlog"
	"github.com/vk/devmaker/internal/job"
)

type fakeEnv struct {
	home, user string
	err        error
}

func (f fakeEnv) HomeDir() (string, error)  { return f.home, f.err }
func (f fakeEnv) Username() (string, error) { return f.user, nil }

type fixture struct {
	root    string
	tmpRoot string
	stdout  *bytes.Buffer
	runner  *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		root:    t.TempDir(),
		tmpRoot: t.TempDir(),
		stdout:  &bytes.Buffer{},
	}
	f.runner = New(f.root,
		WithEnvironment(fakeEnv{home: "/home/tester", user: "tester"}),
		WithIO(strings.NewReader(""), f.stdout, &bytes.Buffer{}),
		WithTempRoot(f.tmpRoot),
	)
	f.runner.hostEnv = func() []string { return []string{"PATH=" + os.Getenv("PATH"), "HOST_ONLY=host"} }
	return f
}

func (f *fixture) script(t *testing.T, jobName, file, body string, mode os.FileMode) string {
	t.Helper()
	p := filepath.Join(f.root, jobName, file)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), mode))
	require.NoError(t, os.Chmod(p, mode))
	return p
}

func (f *fixture) assertTempCleaned(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tmpRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "job temp dirs must be removed")
}

func TestRun_EnvironmentConstruction(t *testing.T) {
	f := newFixture(t)
	f.script(t, "env", "run.sh", `echo "HOME=$HOME"
echo "USER=$USER"
echo "USERNAME=$USERNAME"
echo "SCRIPT_DIR=$SCRIPT_DIR"
echo "GIT_USER=$GIT_USER"
echo "HOST_ONLY=$HOST_ONLY"
[ -d "$TMP_DIR" ] && echo "TMP_OK"
[ "$TMP_DIR" = "$TEMP_DIR" ] && echo "TEMP_SAME"`, 0o755)

	j := job.Resolved{
		Name: "env",
		Env:  job.EnvMap{"GIT_USER": "alice", "HOME": "/overridden", "USER": "nobody"},
	}
	require.NoError(t, f.runner.Run(context.Background(), j))

	out := f.stdout.String()
	assert.Contains(t, out, "HOME=/home/tester\n")
	assert.Contains(t, out, "USER=tester\n")
	assert.Contains(t, out, "USERNAME=tester\n")
	assert.Contains(t, out, "SCRIPT_DIR="+filepath.Join(f.root, "env")+"\n")
	assert.Contains(t, out, "GIT_USER=alice\n")
	assert.Contains(t, out, "HOST_ONLY=host\n")
	assert.Contains(t, out, "TMP_OK\n")
	assert.Contains(t, out, "TEMP_SAME\n")
	f.assertTempCleaned(t)

	// The job itself is not modified.
	assert.Equal(t, "/overridden", j.Env["HOME"])
}

func TestRun_DepsScriptRunsFirst(t *testing.T) {
	f := newFixture(t)
	f.script(t, "git", "deps.sh", `echo deps`, 0o755)
	f.script(t, "git", "run.sh", `echo main`, 0o755)

	require.NoError(t, f.runner.Run(context.Background(), job.Resolved{Name: "git", HasDepsScript: true}))
	assert.Equal(t, "deps\nmain\n", f.stdout.String())
	f.assertTempCleaned(t)
}

func TestRun_DepsScriptIgnoredWithoutFlag(t *testing.T) {
	f := newFixture(t)
	f.script(t, "git", "deps.sh", `echo deps`, 0o755)
	f.script(t, "git", "run.sh", `echo main`, 0o755)

	require.NoError(t, f.runner.Run(context.Background(), job.Resolved{Name: "git"}))
	assert.Equal(t, "main\n", f.stdout.String())
}

func TestRun_DepsScriptFailureAbortsJob(t *testing.T) {
	f := newFixture(t)
	f.script(t, "git", "deps.sh", `exit 4`, 0o755)
	f.script(t, "git", "run.sh", `echo main`, 0o755)

	err := f.runner.Run(context.Background(), job.Resolved{Name: "git", HasDepsScript: true})
	var failed *JobFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, 4, failed.Code)
	assert.Empty(t, f.stdout.String())
	f.assertTempCleaned(t)
}

func TestRun_NonZeroExit(t *testing.T) {
	f := newFixture(t)
	f.script(t, "broken", "run.sh", `exit 3`, 0o755)

	err := f.runner.Run(context.Background(), job.Resolved{Name: "broken"})
	assert.EqualError(t, err, "job 'broken' failed with exit code 3")
	f.assertTempCleaned(t)
}

func TestRun_FailureLogsNothingAtWarn(t *testing.T) {
	f := newFixture(t)
	f.script(t, "broken", "run.sh", `exit 7`, 0o755)
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	err := f.runner.Run(ctx, job.Resolved{Name: "broken"})
	assert.EqualError(t, err, "job 'broken' failed with exit code 7")
	assert.Empty(t, logs.String(), "the returned error is the only report of a failure")
}

func TestWithCleanupError(t *testing.T) {
	cleanup := errors.New("removing temp dir for job 'x': busy")
	assert.Equal(t, cleanup, withCleanupError(nil, cleanup))

	err := withCleanupError(&JobFailedError{Job: "x", Code: 2}, cleanup)
	assert.EqualError(t, err, "job 'x' failed with exit code 2 (also: removing temp dir for job 'x': busy)")
	assert.NotContains(t, err.Error(), "\n")
	var failed *JobFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, 2, failed.Code)
}

func TestRun_KilledBySignal(t *testing.T) {
	f := newFixture(t)
	f.script(t, "killed", "run.sh", `kill -9 $$`, 0o755)

	err := f.runner.Run(context.Background(), job.Resolved{Name: "killed"})
	var failed *JobFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, -1, failed.Code)
	f.assertTempCleaned(t)
}

func TestRun_MakesScriptExecutable(t *testing.T) {
	f := newFixture(t)
	p := f.script(t, "plain", "run.sh", `echo ran`, 0o644)

	require.NoError(t, f.runner.Run(context.Background(), job.Resolved{Name: "plain"}))
	assert.Equal(t, "ran\n", f.stdout.String())

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o744), info.Mode().Perm())
}

func TestRun_FallbackRunner(t *testing.T) {
	f := newFixture(t)
	f.script(t, "alt", "run.bash", `echo alt`, 0o755)

	require.NoError(t, f.runner.Run(context.Background(), job.Resolved{Name: "alt"}))
	assert.Equal(t, "alt\n", f.stdout.String())
}

func TestRun_PrefersRunSh(t *testing.T) {
	f := newFixture(t)
	f.script(t, "both", "run.bash", `echo alt`, 0o755)
	f.script(t, "both", "run.sh", `echo default`, 0o755)

	require.NoError(t, f.runner.Run(context.Background(), job.Resolved{Name: "both"}))
	assert.Equal(t, "default\n", f.stdout.String())
}

func TestRun_NoRunner(t *testing.T) {
	f := newFixture(t)
	f.script(t, "empty", "install.sh", `echo nope`, 0o755)

	err := f.runner.Run(context.Background(), job.Resolved{Name: "empty"})
	var noRunner *NoRunnerError
	require.True(t, errors.As(err, &noRunner))
	assert.EqualError(t, err, "no runner found for job 'empty'")
}

func TestRun_HomeDirFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.env = fakeEnv{err: errors.New("no home")}
	f.script(t, "x", "run.sh", `echo ran`, 0o755)

	err := f.runner.Run(context.Background(), job.Resolved{Name: "x"})
	assert.ErrorContains(t, err, "cannot find home dir: no home")
	assert.Empty(t, f.stdout.String())
}

func TestRunAll_StopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	f.script(t, "first", "run.sh", `echo first`, 0o755)
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "missing"), 0o755))
	f.script(t, "last", "run.sh", `echo last`, 0o755)

	err := f.runner.RunAll(context.Background(), []job.Resolved{
		{Name: "first"},
		{Name: "missing"},
		{Name: "last"},
	})
	var noRunner *NoRunnerError
	require.True(t, errors.As(err, &noRunner))
	assert.Equal(t, "missing", noRunner.Job)
	assert.Equal(t, "first\n", f.stdout.String())
	f.assertTempCleaned(t)
}

func TestMergeEnv(t *testing.T) {
	got := mergeEnv(
		[]string{"PATH=/bin", "HOME=/root", "malformed"},
		job.EnvMap{"HOME": "/home/x", "A": "1"},
		job.EnvMap{"A": "2"},
	)
	assert.Equal(t, []string{"A=2", "HOME=/home/x", "PATH=/bin"}, got)
}
