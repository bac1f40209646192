// Package job defines the job model shared by the resolution, scheduling and
// execution stages: a Spec as discovered on disk and a Resolved job whose
// variables have all been filled in.
package job

import (
	"path/filepath"
	"strings"
)

const (
	// DepsScript is the optional preparation script run before the main runnable.
	DepsScript = "deps.sh"
	// DefaultRunner is the preferred main runnable of a job.
	DefaultRunner = "run.sh"
	// RunnerPattern matches alternate main runnables when DefaultRunner is absent.
	RunnerPattern = "run.*"
	// InfoFileJSON and InfoFileHCL are the supported job metadata files.
	InfoFileJSON = "info.json"
	InfoFileHCL  = "info.hcl"
	// SecureSuffix marks an ask variable whose interactive input must be masked.
	SecureSuffix = "_SECURE"
)

// EnvMap maps variable names to values.
type EnvMap = map[string]string

// Spec is a job as discovered under the root directory, before its ask
// variables have been resolved.
type Spec struct {
	Name          string
	ProvidedEnv   EnvMap
	Depends       []string
	AskFor        []string
	HasDepsScript bool
}

// Resolved is a job whose environment is final. It is treated as immutable
// once built.
type Resolved struct {
	Name          string
	Env           EnvMap
	Depends       []string
	HasDepsScript bool
}

// ID returns the job name. Together with DependsOn it lets the scheduler
// order resolved jobs.
func (r Resolved) ID() string { return r.Name }

// DependsOn returns the names of the jobs that must run first.
func (r Resolved) DependsOn() []string { return r.Depends }

// ScriptDir returns the directory holding the job's scripts.
func (r Resolved) ScriptDir(root string) string {
	return filepath.Join(root, r.Name)
}

// SecureNameCheck strips a trailing SecureSuffix from name and reports
// whether it was present.
func SecureNameCheck(name string) (string, bool) {
	if stripped, ok := strings.CutSuffix(name, SecureSuffix); ok {
		return stripped, true
	}
	return name, false
}

// EncodeKey normalizes a declared environment key: uppercase, with every
// character outside [A-Z0-9_] replaced by an underscore.
func EncodeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.ToUpper(key))
}
