package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/devmaker/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects the values of a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("devmaker", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Devmaker - Apply startup scripts to a dev machine.

Usage:
  devmaker [options] SCRIPT_ROOT

Arguments:
  SCRIPT_ROOT
    The root directory containing one sub-directory per job.

Options:
`)
		flagSet.PrintDefaults()
	}

	var interactive, dryRun, noAllowEnv, forceEmpty bool
	var askFile, singleJob string
	var withVars stringList

	flagSet.BoolVar(&interactive, "interactive", false, "Allow asking for askable vars interactively.")
	flagSet.BoolVar(&interactive, "i", false, "Allow asking for askable vars interactively (shorthand).")
	flagSet.BoolVar(&dryRun, "dry-run", false, "Don't run anything, just report how the run would go.")
	flagSet.BoolVar(&dryRun, "n", false, "Don't run anything, just report how the run would go (shorthand).")
	flagSet.BoolVar(&noAllowEnv, "no-allow-env", false, "Don't read askable vars from environment variables.")
	flagSet.BoolVar(&noAllowEnv, "E", false, "Don't read askable vars from environment variables (shorthand).")
	flagSet.StringVar(&askFile, "ask-file", "", "A VARNAME=value formatted file to read vars from.")
	flagSet.StringVar(&askFile, "a", "", "A VARNAME=value formatted file to read vars from (shorthand).")
	flagSet.Var(&withVars, "with-vars", "A VARNAME=value pair. May be repeated.")
	flagSet.Var(&withVars, "w", "A VARNAME=value pair. May be repeated (shorthand).")
	flagSet.StringVar(&singleJob, "single-job", "", "A single job to run, ignoring dependencies.")
	flagSet.StringVar(&singleJob, "s", "", "A single job to run, ignoring dependencies (shorthand).")
	flagSet.BoolVar(&forceEmpty, "force-empty-vars", false, "Set all queried vars to empty strings. Useful for testing.")
	flagSet.BoolVar(&forceEmpty, "e", false, "Set all queried vars to empty strings (shorthand).")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	noColorFlag := flagSet.Bool("no-color", false, "Disable colors in the dry-run report.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	switch flagSet.NArg() {
	case 0:
		slog.Debug("No script root provided, printing usage.")
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "missing required argument: SCRIPT_ROOT"}
	case 1:
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args()[1:], " "))}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		RootDir:        flagSet.Arg(0),
		Interactive:    interactive,
		DryRun:         dryRun,
		AllowEnv:       !noAllowEnv,
		AskFile:        askFile,
		WithVars:       withVars,
		SingleJob:      singleJob,
		ForceEmptyVars: forceEmpty,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		NoColor:        *noColorFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
