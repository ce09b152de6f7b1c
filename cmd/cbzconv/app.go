package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/alnah/go-cbzconv"
	"github.com/alnah/go-cbzconv/internal/config"
	"github.com/alnah/go-cbzconv/internal/hints"
	"github.com/alnah/go-cbzconv/internal/logging"
)

// ErrUsage wraps command line parse errors.
var ErrUsage = errors.New("invalid usage")

// commands lists the subcommands; anything else is handed to convert.
var commands = map[string]bool{
	"convert":    true,
	"library":    true,
	"doctor":     true,
	"completion": true,
	"version":    true,
	"help":       true,
}

// run dispatches args to a command and returns the process exit code.
func run(args []string, env *Environment) int {
	cmd, rest := splitCommand(args)

	var err error
	switch cmd {
	case "convert":
		err = runConvert(rest, env)
	case "library":
		err = runLibrary(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "cbzconv %s\n", Version)
	case "help":
		runHelp(rest, env)
	}

	if err != nil {
		printError(env.Stderr, err)
	}
	return exitCodeFor(err)
}

// splitCommand returns the command named by args[0] and its arguments.
// Without a known command, convert is implied.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "help", nil
	}
	switch {
	case commands[args[0]]:
		return args[0], args[1:]
	case args[0] == "-h" || args[0] == "--help":
		return "help", args[1:]
	default:
		return "convert", args
	}
}

// printError writes err with an actionable hint when one applies.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err))
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, cbzconv.ErrBusy):
		return hints.ForScratchLocked()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultName))
	case errors.Is(err, cbzconv.ErrOutputUnavailable):
		return hints.ForOutputDirectory()
	case errors.Is(err, cbzconv.ErrNothingProduced):
		return hints.ForNothingProduced()
	case errors.Is(err, cbzconv.ErrMixedGroups):
		return hints.ForMixedGroups()
	case errors.Is(err, cbzconv.ErrLibraryNotFound):
		return hints.ForLibraryNotFound()
	default:
		return ""
	}
}

// loadConfig loads the config named by the flag, then by CBZCONV_CONFIG.
// Without either, the default config file is used when present.
func loadConfig(flagName string, env *envConfig) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = env.ConfigPath
	}
	if name != "" {
		cfg, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfig(config.DefaultName)
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the CLI logger. --quiet and --verbose win over the
// configured level.
func newLogger(cfg config.LogConfig, f commonFlags, w io.Writer) (*slog.Logger, error) {
	level := cfg.Level
	format := cfg.Format
	if f.logLevel != "" {
		level = f.logLevel
	}
	if f.logFormat != "" {
		format = f.logFormat
	}
	switch {
	case f.quiet:
		level = "error"
	case f.verbose:
		level = "debug"
	}

	logger, err := logging.New(logging.Options{Level: level, Format: format, Writer: w})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return logger, nil
}

// applyMemoryLimit sets the Go soft memory limit when configured.
func applyMemoryLimit(mib int, logger *slog.Logger) {
	if mib <= 0 {
		return
	}
	prev := debug.SetMemoryLimit(int64(mib) << 20)
	logger.Debug("memory limit set", "limit_mib", mib, "previous", prev)
}
