package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Conversion.MaxPages != 10000 {
		t.Errorf("Conversion.MaxPages = %d, want 10000", cfg.Conversion.MaxPages)
	}
	if cfg.Conversion.BatchSize != 200 {
		t.Errorf("Conversion.BatchSize = %d, want 200", cfg.Conversion.BatchSize)
	}
	if cfg.Conversion.Sort != "name" {
		t.Errorf("Conversion.Sort = %q, want %q", cfg.Conversion.Sort, "name")
	}
	if cfg.Conversion.Format != "pdf" {
		t.Errorf("Conversion.Format = %q, want %q", cfg.Conversion.Format, "pdf")
	}
	if cfg.Conversion.Merge || cfg.Conversion.Compress || cfg.Conversion.ChapterNames {
		t.Error("boolean conversion options should default to false")
	}
	if cfg.Output.Dir != "" {
		t.Errorf("Output.Dir = %q, want empty", cfg.Output.Dir)
	}
	if cfg.Assets.BasePath != "" {
		t.Errorf("Assets.BasePath = %q, want empty", cfg.Assets.BasePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty", value: "", maxLength: 10},
		{name: "at limit", value: strings.Repeat("a", 10), maxLength: 10},
		{name: "over limit", value: strings.Repeat("a", 11), maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("field", tt.value, tt.maxLength)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("error = %v, want ErrFieldTooLong", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty enums use defaults", mutate: func(c *Config) {
			c.Conversion.Sort, c.Conversion.Format, c.Log.Level, c.Log.Format = "", "", "", ""
		}},
		{name: "archive sort", mutate: func(c *Config) { c.Conversion.Sort = "archive" }},
		{name: "enum is case insensitive", mutate: func(c *Config) { c.Conversion.Format = "EPUB" }},
		{name: "non-positive sizes fall back later", mutate: func(c *Config) {
			c.Conversion.MaxPages, c.Conversion.BatchSize = 0, -5
		}},
		{name: "unknown sort", mutate: func(c *Config) { c.Conversion.Sort = "date" }, wantErr: ErrInvalidValue},
		{name: "unknown format", mutate: func(c *Config) { c.Conversion.Format = "mobi" }, wantErr: ErrInvalidValue},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: ErrInvalidValue},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: ErrInvalidValue},
		{name: "negative memory limit", mutate: func(c *Config) { c.Limits.MemoryLimitMiB = -1 }, wantErr: ErrInvalidValue},
		{name: "memory limit too high", mutate: func(c *Config) { c.Limits.MemoryLimitMiB = MaxMemoryLimitMiB + 1 }, wantErr: ErrInvalidValue},
		{name: "name with separator", mutate: func(c *Config) { c.Output.Name = "a/b" }, wantErr: ErrInvalidValue},
		{name: "name too long", mutate: func(c *Config) { c.Output.Name = strings.Repeat("n", MaxNameLength+1) }, wantErr: ErrFieldTooLong},
		{name: "language too long", mutate: func(c *Config) { c.Output.Language = strings.Repeat("l", MaxLanguageLength+1) }, wantErr: ErrFieldTooLong},
		{name: "scratch dir too long", mutate: func(c *Config) { c.Scratch.Dir = strings.Repeat("d", MaxPathLength+1) }, wantErr: ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config over defaults", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "test.yaml", `conversion:
  maxPages: 250
  merge: true
  format: epub
output:
  dir: "/tmp/out"
log:
  level: debug
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Conversion.MaxPages != 250 {
			t.Errorf("Conversion.MaxPages = %d, want 250", cfg.Conversion.MaxPages)
		}
		if cfg.Conversion.BatchSize != 200 {
			t.Errorf("Conversion.BatchSize = %d, want default 200", cfg.Conversion.BatchSize)
		}
		if !cfg.Conversion.Merge {
			t.Error("Conversion.Merge = false, want true")
		}
		if cfg.Conversion.Format != "epub" {
			t.Errorf("Conversion.Format = %q, want %q", cfg.Conversion.Format, "epub")
		}
		if cfg.Output.Dir != "/tmp/out" {
			t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, "/tmp/out")
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
		}
		if cfg.Log.Format != "console" {
			t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, "console")
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "invalid.yaml", "conversion: [unclosed")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "unknown.yaml", "conversion:\n  pagesPerFile: 10\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid enum returns ErrInvalidValue", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "enum.yaml", "conversion:\n  sort: random\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("field too long returns ErrFieldTooLong", func(t *testing.T) {
		content := "output:\n  name: \"" + strings.Repeat("x", MaxNameLength+1) + "\"\n"
		path := writeConfig(t, t.TempDir(), "toolong.yaml", content)
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrFieldTooLong) {
			t.Errorf("error = %v, want ErrFieldTooLong", err)
		}
	})

	t.Run("unreadable file returns read error not ErrConfigNotFound", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores file permissions")
		}
		path := writeConfig(t, t.TempDir(), "unreadable.yaml", "log:\n  level: info\n")
		if err := os.Chmod(path, 0o000); err != nil {
			t.Fatalf("setup chmod: %v", err)
		}
		defer func() { _ = os.Chmod(path, 0o600) }()

		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("expected error for unreadable file")
		}
		if errors.Is(err, ErrConfigNotFound) {
			t.Error("error should not be ErrConfigNotFound for permission error")
		}
	})

	t.Run("config name resolves yaml in current directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "myconfig.yml", "conversion:\n  batchSize: 50\n")
		t.Chdir(dir)

		cfg, err := LoadConfig("myconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Conversion.BatchSize != 50 {
			t.Errorf("Conversion.BatchSize = %d, want 50", cfg.Conversion.BatchSize)
		}
	})

	t.Run("config name resolves user config directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", home)
		t.Setenv("HOME", home)
		t.Chdir(t.TempDir())

		userDir, err := os.UserConfigDir()
		if err != nil {
			t.Skipf("no user config dir: %v", err)
		}
		if err := os.MkdirAll(filepath.Join(userDir, "cbzconv"), 0o750); err != nil {
			t.Fatal(err)
		}
		writeConfig(t, filepath.Join(userDir, "cbzconv"), "config.yaml", "conversion:\n  compress: true\n")

		cfg, err := LoadConfig("config")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if !cfg.Conversion.Compress {
			t.Error("Conversion.Compress = false, want true")
		}
	})

	t.Run("unresolved name lists searched paths", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := LoadConfig("missing-config")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "missing-config.yaml") {
			t.Errorf("error %q should list searched paths", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths(DefaultName)
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least the local candidates", paths)
	}
	if paths[0] != "cbzconv.yaml" || paths[1] != "cbzconv.yml" {
		t.Errorf("SearchPaths() starts with %v, want local yaml then yml", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.HasSuffix(p, filepath.Join("cbzconv", "config.yaml")) &&
			!strings.HasSuffix(p, filepath.Join("cbzconv", "config.yml")) {
			t.Errorf("user path %q should be config.yaml under the cbzconv config dir", p)
		}
	}

	named := SearchPaths("work")
	if last := named[len(named)-1]; len(named) > 2 && !strings.HasSuffix(last, filepath.Join("cbzconv", "work.yml")) {
		t.Errorf("SearchPaths(work) last = %q, want cbzconv/work.yml", last)
	}
}
