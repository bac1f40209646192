package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mode(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Mode().Perm()
}

func TestEnsureExecutable(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		from os.FileMode
		want os.FileMode
	}{
		{name: "adds owner execute", from: 0o644, want: 0o744},
		{name: "keeps restrictive bits", from: 0o600, want: 0o700},
		{name: "already executable is untouched", from: 0o755, want: 0o755},
		{name: "group execute counts as executable", from: 0o654, want: 0o654},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "run.sh")
			touch(t, path, tc.from)

			require.NoError(t, EnsureExecutable(path))
			assert.Equal(t, tc.want, mode(t, path))

			// Idempotent.
			require.NoError(t, EnsureExecutable(path))
			assert.Equal(t, tc.want, mode(t, path))
		})
	}
}

func TestEnsureExecutable_Missing(t *testing.T) {
	t.Parallel()
	err := EnsureExecutable(filepath.Join(t.TempDir(), "missing.sh"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
