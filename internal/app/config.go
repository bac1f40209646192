package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RootDir string // directory holding one sub-directory per job

	Interactive    bool
	DryRun         bool
	AllowEnv       bool
	AskFile        string
	WithVars       []string // NAME=value pairs
	SingleJob      string
	ForceEmptyVars bool

	LogFormat string
	LogLevel  string
	NoColor   bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.RootDir == "" {
		return nil, errors.New("RootDir is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
