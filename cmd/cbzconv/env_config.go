package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-cbzconv/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // CBZCONV_CONFIG: config file name or path
	OutputDir  string // CBZCONV_OUTPUT_DIR: output directory
	ScratchDir string // CBZCONV_SCRATCH_DIR: scratch directory
	LibraryDir string // CBZCONV_LIBRARY_DIR: Mihon data directory
	LogLevel   string // CBZCONV_LOG_LEVEL: debug, info, warn, error
	MaxPages   int    // CBZCONV_MAX_PAGES: pages per output file
	BatchSize  int    // CBZCONV_BATCH_SIZE: pages per memory batch
}

// knownEnvVars lists valid CBZCONV_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"CBZCONV_CONFIG":      true,
	"CBZCONV_OUTPUT_DIR":  true,
	"CBZCONV_SCRATCH_DIR": true,
	"CBZCONV_LIBRARY_DIR": true,
	"CBZCONV_LOG_LEVEL":   true,
	"CBZCONV_MAX_PAGES":   true,
	"CBZCONV_BATCH_SIZE":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Numeric values that do not parse as positive integers are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("CBZCONV_CONFIG"),
		OutputDir:  getenv("CBZCONV_OUTPUT_DIR"),
		ScratchDir: getenv("CBZCONV_SCRATCH_DIR"),
		LibraryDir: getenv("CBZCONV_LIBRARY_DIR"),
		LogLevel:   getenv("CBZCONV_LOG_LEVEL"),
	}
	cfg.MaxPages = positiveInt(getenv("CBZCONV_MAX_PAGES"))
	cfg.BatchSize = positiveInt(getenv("CBZCONV_BATCH_SIZE"))
	return cfg
}

func positiveInt(s string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
		return n
	}
	return 0
}

// warnUnknownEnvVars logs warnings for unrecognized CBZCONV_* variables.
// Helps catch typos like CBZCONV_OUTPUT instead of CBZCONV_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, "CBZCONV_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables win over the config file; flags are applied later and win
// over both: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.ScratchDir != "" {
		cfg.Scratch.Dir = env.ScratchDir
	}
	if env.LibraryDir != "" {
		cfg.Library.Dir = env.LibraryDir
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.MaxPages > 0 {
		cfg.Conversion.MaxPages = env.MaxPages
	}
	if env.BatchSize > 0 {
		cfg.Conversion.BatchSize = env.BatchSize
	}
}
