package app

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vk/devmaker/internal/config"
	"github.com/vk/devmaker/internal/discovery"
	"github.com/vk/devmaker/internal/executor"
	"github.com/vk/devmaker/internal/hcl"
	"github.com/vk/devmaker/internal/vars"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	runID      string
	prompter   vars.Prompter
	discoverer *discovery.Discoverer
	runnerOpts []executor.Option
}

// Option customizes an App. Used mostly by tests.
type Option func(*App)

// WithPrompter replaces the terminal prompter used in interactive mode.
func WithPrompter(p vars.Prompter) Option {
	return func(a *App) { a.prompter = p }
}

// WithRunnerOptions passes options through to the job runner.
func WithRunnerOptions(opts ...executor.Option) Option {
	return func(a *App) { a.runnerOpts = append(a.runnerOpts, opts...) }
}

// NewApp is the constructor for the main application. The dry-run report is
// written to outW and logs to logW. Every App gets its own run id, attached
// to all of its log records.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("run_id", runID)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		runID:      runID,
		prompter:   vars.NewTerminalPrompter(),
		discoverer: discovery.New(cfg.RootDir, config.NewJSONLoader(), hcl.NewLoader()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunID identifies this run in the logs.
func (a *App) RunID() string {
	return a.runID
}
