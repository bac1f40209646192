package vars

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/devmaker/internal/ctxlog"
	"github.com/vk/devmaker/internal/job"
)

// Options selects which sources a Resolver may consult. It is fixed for the
// whole run.
type Options struct {
	// ForceEmpty resolves every variable to "" without consulting any source.
	ForceEmpty bool
	// AllowEnv permits reading the host process environment.
	AllowEnv bool
	// Interactive permits prompting the operator.
	Interactive bool
	// CmdVars are NAME=value pairs given to the invocation.
	CmdVars job.EnvMap
	// FileVars are NAME=value pairs read from the ask file.
	FileVars job.EnvMap
}

// UnresolvableError reports a variable that no source supplied.
type UnresolvableError struct {
	Name string
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("could not resolve var: %s", e.Name)
}

// Resolver produces the value of ask variables from a fixed chain of sources.
type Resolver struct {
	opts      *Options
	prompter  Prompter
	lookupEnv func(string) (string, bool)
}

// NewResolver creates a Resolver. The prompter is only used when
// opts.Interactive is set and may be nil otherwise.
func NewResolver(opts *Options, prompter Prompter) *Resolver {
	return &Resolver{
		opts:      opts,
		prompter:  prompter,
		lookupEnv: os.LookupEnv,
	}
}

// source supplies a value for a variable, or reports that it has none.
type source struct {
	name string
	try  func(ctx context.Context, name string, secure bool) (string, bool)
}

func (r *Resolver) sources() []source {
	return []source{
		{"force-empty", r.tryEmpty},
		{"environment", r.tryEnv},
		{"command line", r.tryCmd},
		{"ask file", r.tryFile},
		{"prompt", r.tryPrompt},
	}
}

// Resolve returns the variable name with any secure suffix stripped and its
// value from the first source that supplies one. An empty value counts as
// supplied.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, string, error) {
	logger := ctxlog.FromContext(ctx)
	name, secure := job.SecureNameCheck(raw)
	logger.Debug("Querying var.", "var", name, "secure", secure)

	for _, src := range r.sources() {
		if value, ok := src.try(ctx, name, secure); ok {
			logger.Debug("Var resolved.", "var", name, "source", src.name)
			return name, value, nil
		}
		// An interrupted prompt aborts the run instead of leaving the var
		// unresolved.
		if err := ctx.Err(); err != nil {
			return name, "", err
		}
	}
	return name, "", &UnresolvableError{Name: name}
}

func (r *Resolver) tryEmpty(_ context.Context, _ string, _ bool) (string, bool) {
	return "", r.opts.ForceEmpty
}

func (r *Resolver) tryEnv(_ context.Context, name string, _ bool) (string, bool) {
	if !r.opts.AllowEnv {
		return "", false
	}
	return r.lookupEnv(name)
}

func (r *Resolver) tryCmd(_ context.Context, name string, _ bool) (string, bool) {
	v, ok := r.opts.CmdVars[name]
	return v, ok
}

func (r *Resolver) tryFile(_ context.Context, name string, _ bool) (string, bool) {
	v, ok := r.opts.FileVars[name]
	return v, ok
}

func (r *Resolver) tryPrompt(ctx context.Context, name string, secure bool) (string, bool) {
	if !r.opts.Interactive || r.prompter == nil {
		return "", false
	}
	v, err := r.prompter.Prompt(ctx, name, secure)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Prompt failed.", "var", name, "error", err)
		return "", false
	}
	return v, true
}

// ResolveAll resolves every ask variable of every spec, in job order and
// then declaration order. Each distinct name is resolved once and shared by
// all jobs asking for it.
func (r *Resolver) ResolveAll(ctx context.Context, specs []job.Spec) (job.EnvMap, error) {
	answers := make(job.EnvMap)
	for _, spec := range specs {
		for _, raw := range spec.AskFor {
			name, _ := job.SecureNameCheck(raw)
			if _, done := answers[name]; done {
				continue
			}
			key, value, err := r.Resolve(ctx, raw)
			if err != nil {
				return nil, err
			}
			answers[key] = value
		}
	}
	return answers, nil
}

// Fill builds the resolved job from a spec and the shared answers. The job's
// declared environment is drained into the result after the ask variables,
// with its keys encoded, so declared values win on collision.
func Fill(spec job.Spec, answers job.EnvMap) (job.Resolved, error) {
	env := make(job.EnvMap, len(spec.AskFor)+len(spec.ProvidedEnv))
	for _, raw := range spec.AskFor {
		name, _ := job.SecureNameCheck(raw)
		value, ok := answers[name]
		if !ok {
			return job.Resolved{}, &UnresolvableError{Name: name}
		}
		env[name] = value
	}

	for k, v := range spec.ProvidedEnv {
		env[job.EncodeKey(k)] = v
		delete(spec.ProvidedEnv, k)
	}

	return job.Resolved{
		Name:          spec.Name,
		Env:           env,
		Depends:       spec.Depends,
		HasDepsScript: spec.HasDepsScript,
	}, nil
}
