// Package config loads the YAML configuration file of the cbzconv CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-cbzconv/internal/fileutil"
	"github.com/alnah/go-cbzconv/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxNameLength     = 200  // output.name
	MaxLanguageLength = 35   // output.language, BCP 47 tag
	MaxPathLength     = 4096 // PATH_MAX on Linux
)

// MaxMemoryLimitMiB caps limits.memoryLimitMiB at 1 TiB.
const MaxMemoryLimitMiB = 1 << 20

// DefaultName is the config name searched when none is given.
const DefaultName = "cbzconv"

// Accepted enum values. Empty strings mean "use the default".
var (
	SortModes  = []string{"name", "archive"}
	Formats    = []string{"pdf", "epub"}
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"console", "json"}
	configExts = []string{".yaml", ".yml"}
	appDirName = "cbzconv"
)

// Config holds all configuration of the CLI.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion"`
	Output     OutputConfig     `yaml:"output"`
	Scratch    ScratchConfig    `yaml:"scratch"`
	Library    LibraryConfig    `yaml:"library"`
	Log        LogConfig        `yaml:"log"`
	Limits     LimitsConfig     `yaml:"limits"`
	Assets     AssetsConfig     `yaml:"assets"`
}

// ConversionConfig mirrors the job knobs.
type ConversionConfig struct {
	MaxPages     int    `yaml:"maxPages"`     // pages per output file, <= 0 = default (10000)
	BatchSize    int    `yaml:"batchSize"`    // pages per memory batch, <= 0 = default (200)
	Sort         string `yaml:"sort"`         // "name" or "archive"
	Merge        bool   `yaml:"merge"`        // merge all inputs into one logical source
	Compress     bool   `yaml:"compress"`     // recompress images and use compact PDF streams
	ChapterNames bool   `yaml:"chapterNames"` // append chapter numbers to output names
	Format       string `yaml:"format"`       // "pdf" or "epub"
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir  string `yaml:"dir"`  // empty = current directory
	Name     string `yaml:"name"`     // custom output name, empty = derived from inputs
	Language string `yaml:"language"` // EPUB dc:language, empty = "en"
}

// ScratchConfig defines the temporary working directory.
type ScratchConfig struct {
	Dir string `yaml:"dir"` // empty = user cache dir
}

// LibraryConfig points at a Mihon data directory.
type LibraryConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig defines logger options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// LimitsConfig defines runtime resource limits.
type LimitsConfig struct {
	MemoryLimitMiB int `yaml:"memoryLimitMiB"` // soft Go memory limit, 0 = unset
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// DefaultConfig returns a Config with built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Conversion: ConversionConfig{
			MaxPages:  10000,
			BatchSize: 200,
			Sort:      "name",
			Format:    "pdf",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks enum values, ranges, and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	enums := []struct {
		field, value string
		allowed      []string
	}{
		{"conversion.sort", c.Conversion.Sort, SortModes},
		{"conversion.format", c.Conversion.Format, Formats},
		{"log.level", c.Log.Level, LogLevels},
		{"log.format", c.Log.Format, LogFormats},
	}
	for _, e := range enums {
		if err := validateEnum(e.field, e.value, e.allowed); err != nil {
			return err
		}
	}

	if c.Limits.MemoryLimitMiB < 0 || c.Limits.MemoryLimitMiB > MaxMemoryLimitMiB {
		return fmt.Errorf("%w: limits.memoryLimitMiB %d (must be between 0 and %d)",
			ErrInvalidValue, c.Limits.MemoryLimitMiB, MaxMemoryLimitMiB)
	}

	if err := validateFieldLength("output.name", c.Output.Name, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.language", c.Output.Language, MaxLanguageLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Output.Name, "/\\\x00") {
		return fmt.Errorf("%w: output.name %q contains a path separator", ErrInvalidValue, c.Output.Name)
	}
	paths := map[string]string{
		"output.dir":      c.Output.Dir,
		"scratch.dir":     c.Scratch.Dir,
		"library.dir":     c.Library.Dir,
		"assets.basePath": c.Assets.BasePath,
	}
	for field, value := range paths {
		if err := validateFieldLength(field, value, MaxPathLength); err != nil {
			return err
		}
	}
	return nil
}

func validateEnum(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (must be one of %s)", ErrInvalidValue, field, value, strings.Join(allowed, ", "))
}

// validateFieldLength returns an error if value exceeds maxLength characters.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s is %d characters (max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads a config file by name or path and layers it over
// DefaultConfig. Names are searched in the current directory, then in the
// user config directory (~/.config/cbzconv/).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !strings.ContainsAny(nameOrPath, "/\\") {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations LoadConfig tries for name, in order.
// The default name maps to config.yaml inside the user config directory.
func SearchPaths(name string) []string {
	paths := make([]string, 0, len(configExts)*2)
	for _, ext := range configExts {
		paths = append(paths, name+ext)
	}
	userName := name
	if name == DefaultName {
		userName = "config"
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range configExts {
			paths = append(paths, filepath.Join(userConfigDir, appDirName, userName+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
