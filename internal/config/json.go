package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/devmaker/internal/ctxlog"
	"github.com/vk/devmaker/internal/job"
)

// JSONLoader reads info.json metadata files.
type JSONLoader struct{}

// NewJSONLoader creates a new JSON metadata loader.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// FileName implements Loader.
func (l *JSONLoader) FileName() string { return job.InfoFileJSON }

// Load implements Loader.
func (l *JSONLoader) Load(ctx context.Context, dir string) (*Info, bool, error) {
	path := filepath.Join(dir, l.FileName())
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Info{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ctxlog.FromContext(ctx).Debug("Parsing info file.", "path", path)
	var info Info
	dec := json.NewDecoder(f)
	if err := dec.Decode(&info); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	// The file must hold exactly one JSON value.
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, true, fmt.Errorf("failed to parse %s: trailing data after metadata object", path)
	}
	return &info, true, nil
}
