// Package discovery finds jobs under a root directory and reads each one
// into a job.Spec.
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vk/devmaker/internal/config"
	"github.com/vk/devmaker/internal/ctxlog"
	"github.com/vk/devmaker/internal/fsutil"
	"github.com/vk/devmaker/internal/job"
)

// Discoverer turns job directories into specs using the configured
// metadata loaders.
type Discoverer struct {
	root    string
	loaders []config.Loader
}

// New creates a Discoverer for root. A job directory may hold at most one of
// the metadata files the loaders read.
func New(root string, loaders ...config.Loader) *Discoverer {
	return &Discoverer{root: root, loaders: loaders}
}

// JobNames returns the name of every directory directly under the root that
// contains a main runnable, sorted by name. The root path is used as is, so
// glob metacharacters in it are not interpreted.
func (d *Discoverer) JobNames(ctx context.Context) ([]string, error) {
	ctxlog.FromContext(ctx).Debug("Scanning for job runners.", "root", d.root, "pattern", job.RunnerPattern)

	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve job names: %w", err)
	}

	var names []string
	for _, e := range entries {
		dir := filepath.Join(d.root, e.Name())
		if !isDir(dir) {
			continue
		}
		found, err := hasRunner(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve job names: %w", err)
		}
		if found {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// hasRunner reports whether dir holds a regular file matching run.*.
func hasRunner(dir string) (bool, error) {
	for p, err := range fsutil.Matches(dir, job.RunnerPattern) {
		if err != nil {
			return false, err
		}
		if fsutil.IsRegularFile(p) {
			return true, nil
		}
	}
	return false, nil
}

// ParseJob reads the job directory called name into a Spec.
func (d *Discoverer) ParseJob(ctx context.Context, name string) (job.Spec, error) {
	ctxlog.FromContext(ctx).Debug("Parsing job files.", "job", name)
	dir := filepath.Join(d.root, name)

	info := &config.Info{}
	var source string
	for _, l := range d.loaders {
		loaded, found, err := l.Load(ctx, dir)
		if err != nil {
			return job.Spec{}, fmt.Errorf("job '%s': %w", name, err)
		}
		if !found {
			continue
		}
		if source != "" {
			return job.Spec{}, fmt.Errorf("job '%s' has both %s and %s", name, source, l.FileName())
		}
		info, source = loaded, l.FileName()
	}

	env := info.Env
	if env == nil {
		env = job.EnvMap{}
	}
	return job.Spec{
		Name:          name,
		ProvidedEnv:   env,
		Depends:       info.Depends,
		AskFor:        info.Ask,
		HasDepsScript: fsutil.IsRegularFile(filepath.Join(dir, job.DepsScript)),
	}, nil
}

// Specs discovers every job and parses it, in name order.
func (d *Discoverer) Specs(ctx context.Context) ([]job.Spec, error) {
	names, err := d.JobNames(ctx)
	if err != nil {
		return nil, err
	}
	specs := make([]job.Spec, 0, len(names))
	for _, name := range names {
		spec, err := d.ParseJob(ctx, name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
