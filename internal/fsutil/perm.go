package fsutil

import (
	"fmt"
	"os"
)

// EnsureExecutable adds the owner execute bit to path unless some execute
// bit is already set. Other permission bits are preserved, and an already
// executable file is left untouched.
func EnsureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking permissions of %s: %w", path, err)
	}
	if info.Mode().Perm()&0o111 != 0 {
		return nil
	}
	if err := os.Chmod(path, info.Mode()|0o100); err != nil {
		return fmt.Errorf("making %s executable: %w", path, err)
	}
	return nil
}
