package cbzconv

import "log/slog"

// converterConfig holds construction-time settings.
type converterConfig struct {
	scratchDir string
	assetPath  string
	language   string
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. Status lines are logged at Info, skipped
// pages at Warn. Defaults to a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Converter) {
		c.progress = fn
	}
}

// WithScratchDir sets the directory for temporary files.
// Its contents are deleted at the start and end of every job.
func WithScratchDir(dir string) Option {
	return func(c *Converter) {
		if dir != "" {
			c.cfg.scratchDir = dir
		}
	}
}

// WithAssetPath loads EPUB templates and styles from dir, falling back to
// the embedded ones for anything missing.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithLanguage sets the language declared in EPUB output. Defaults to "en".
func WithLanguage(lang string) Option {
	return func(c *Converter) {
		c.cfg.language = lang
	}
}
