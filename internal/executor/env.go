package executor

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"os/user"
	"slices"
	"strings"

	"github.com/vk/devmaker/internal/job"
)

// Environment describes the invoking user.
type Environment interface {
	HomeDir() (string, error)
	Username() (string, error)
}

// HostEnvironment reads the invoking user from the operating system.
type HostEnvironment struct{}

// HomeDir implements Environment.
func (HostEnvironment) HomeDir() (string, error) {
	return os.UserHomeDir()
}

// Username implements Environment. It falls back to $USER when the user
// database has no entry for the current uid.
func (HostEnvironment) Username() (string, error) {
	u, err := user.Current()
	if err == nil && u.Username != "" {
		return u.Username, nil
	}
	if name := os.Getenv("USER"); name != "" {
		return name, nil
	}
	if err == nil {
		err = errors.New("empty username")
	}
	return "", err
}

// processEnv copies the job's env and sets the keys every job receives.
// Those keys take precedence over anything the job declared.
func (r *Runner) processEnv(j job.Resolved) (job.EnvMap, error) {
	env := maps.Clone(j.Env)
	if env == nil {
		env = job.EnvMap{}
	}

	home, err := r.env.HomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot find home dir: %w", err)
	}
	username, err := r.env.Username()
	if err != nil {
		return nil, fmt.Errorf("cannot determine username: %w", err)
	}

	env["HOME"] = home
	env["USER"] = username
	env["USERNAME"] = username
	env["SCRIPT_DIR"] = j.ScriptDir(r.root)
	return env, nil
}

// mergeEnv overlays the given maps onto base KEY=value entries, later maps
// winning, and returns the result sorted by key.
func mergeEnv(base []string, overlays ...job.EnvMap) []string {
	merged := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	for _, o := range overlays {
		maps.Copy(merged, o)
	}

	out := make([]string, 0, len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		out = append(out, k+"="+merged[k])
	}
	return out
}
