package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/devmaker/internal/config"
	"github.com/vk/devmaker/internal/ctxlog"
	"github.com/vk/devmaker/internal/job"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL metadata loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is the top-level shape of an info.hcl file.
type fileRoot struct {
	Depends []string       `hcl:"depends,optional"`
	Ask     []string       `hcl:"ask,optional"`
	Env     hcl.Expression `hcl:"env,optional"`
	Remain  hcl.Body       `hcl:",remain"`
}

// FileName implements config.Loader.
func (l *Loader) FileName() string { return job.InfoFileHCL }

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, dir string) (*config.Info, bool, error) {
	logger := ctxlog.FromContext(ctx)
	path := filepath.Join(dir, l.FileName())

	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &config.Info{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	logger.Debug("Parsing info file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, true, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, true, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	info := &config.Info{
		Depends: root.Depends,
		Ask:     root.Ask,
	}
	if isExprDefined(ctx, root.Env, "env") {
		env, err := decodeEnv(root.Env)
		if err != nil {
			return nil, true, fmt.Errorf("in %s: %w", path, err)
		}
		info.Env = env
	}

	logger.Debug("HCL info loaded.", "path", path, "depends", len(info.Depends), "ask", len(info.Ask), "env", len(info.Env))
	return info, true, nil
}
