// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
)

const readBatch = 64

// Matches yields the paths of entries in dir whose names match pattern
// (filepath.Match syntax), in the order the file system returns them. That
// order is not sorted and may differ between file systems; callers must not
// rely on it beyond "some match, if any". A read failure is yielded as an
// error and ends the sequence.
func Matches(dir, pattern string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			yield("", err)
			return
		}

		f, err := os.Open(dir)
		if err != nil {
			yield("", err)
			return
		}
		defer f.Close()

		for {
			entries, err := f.ReadDir(readBatch)
			for _, e := range entries {
				if ok, _ := filepath.Match(pattern, e.Name()); ok {
					if !yield(filepath.Join(dir, e.Name()), nil) {
						return
					}
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
		}
	}
}

// IsRegularFile reports whether path exists and is a regular file, following
// symlinks.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
