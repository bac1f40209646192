package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/devmaker/internal/ctxlog"
	"github.com/vk/devmaker/internal/dag"
	"github.com/vk/devmaker/internal/executor"
	"github.com/vk/devmaker/internal/job"
	"github.com/vk/devmaker/internal/report"
	"github.com/vk/devmaker/internal/vars"
)

// Run executes the main application logic: discover and parse every job,
// resolve all ask variables up front, schedule, then either report or run.
// The first failure of any stage aborts the run.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	info, err := os.Stat(a.config.RootDir)
	if err != nil {
		return fmt.Errorf("cannot read script root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("script root %s is not a directory", a.config.RootDir)
	}

	a.logger.Info("🔍 Retrieving jobs.", "root", a.config.RootDir)
	specs, err := a.discoverer.Specs(ctx)
	if err != nil {
		return err
	}
	a.logger.Debug("Jobs parsed.", "count", len(specs))

	opts, err := a.resolverOptions()
	if err != nil {
		return err
	}

	a.logger.Info("❓ Querying ask variables.")
	answers, err := vars.NewResolver(opts, a.prompter).ResolveAll(ctx, specs)
	if err != nil {
		return err
	}

	a.logger.Debug("Populating asked variables.", "vars", len(answers))
	resolved := make([]job.Resolved, 0, len(specs))
	for _, spec := range specs {
		r, err := vars.Fill(spec, answers)
		if err != nil {
			return err
		}
		resolved = append(resolved, r)
	}

	a.logger.Info("🗂️ Scheduling jobs.")
	queue, err := dag.Schedule(resolved)
	if err != nil {
		return err
	}

	if a.config.DryRun {
		a.logger.Debug("Dry run, reporting schedule.", "jobs", len(queue))
		return report.New(a.outW, !a.config.NoColor).Write(queue)
	}

	runner := executor.New(a.config.RootDir, a.runnerOpts...)

	if name := a.config.SingleJob; name != "" {
		for _, j := range queue {
			if j.Name == name {
				a.logger.Info("🚀 Running single job.", "job", name)
				return runner.Run(ctx, j)
			}
		}
		return fmt.Errorf("cannot locate job: %s", name)
	}

	if len(queue) == 0 {
		a.logger.Warn("No jobs found, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting execution...", "jobs", len(queue))
	if err := runner.RunAll(ctx, queue); err != nil {
		return err
	}
	a.logger.Info("🏁 Execution finished.")
	return nil
}

// resolverOptions reads the ask file and the NAME=value pairs of the
// invocation into the options the resolver runs with.
func (a *App) resolverOptions() (*vars.Options, error) {
	opts := &vars.Options{
		ForceEmpty:  a.config.ForceEmptyVars,
		AllowEnv:    a.config.AllowEnv,
		Interactive: a.config.Interactive,
	}

	if a.config.AskFile != "" {
		a.logger.Debug("Parsing ask file.", "path", a.config.AskFile)
		fileVars, err := vars.ParseFile(a.config.AskFile)
		if err != nil {
			return nil, err
		}
		opts.FileVars = fileVars
	}

	if len(a.config.WithVars) > 0 {
		cmdVars, err := vars.ParsePairs(a.config.WithVars, vars.SourceCommandLine)
		if err != nil {
			return nil, err
		}
		opts.CmdVars = cmdVars
	}

	return opts, nil
}
