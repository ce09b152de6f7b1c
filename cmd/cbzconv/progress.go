package main

import (
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/alnah/go-cbzconv/internal/logging"
)

// progressReporter receives the converter's progress messages.
type progressReporter interface {
	Update(msg string)
	Finish()
}

// newProgress returns a spinner on terminals and a sampled debug log
// everywhere else.
func newProgress(env *Environment, logger *slog.Logger, quiet bool) progressReporter {
	if !quiet && env.IsTerminal != nil && env.IsTerminal(env.Stderr) {
		return newBarProgress(env.Stderr)
	}
	return &logProgress{logger: logger, sampler: logging.NewProgressSampler(10)}
}

// pageMessage matches the per-image message and captures its stage prefix.
var pageMessage = regexp.MustCompile(`^(.*?)(?:\s*-\s*)?Processing image file (\d+) of (\d+)$`)

// parseProgress splits msg into its stage and a completion percentage.
// Messages without a page counter report -1.
func parseProgress(msg string) (stage string, percent float64) {
	m := pageMessage.FindStringSubmatch(msg)
	if m == nil {
		return msg, -1
	}
	n, _ := strconv.Atoi(m[2])
	total, _ := strconv.Atoi(m[3])
	if total <= 0 {
		return m[1], -1
	}
	return strings.TrimSpace(m[1]), float64(n) * 100 / float64(total)
}

// barProgress shows an indeterminate spinner counting pages.
type barProgress struct {
	bar *progressbar.ProgressBar
}

func newBarProgress(w io.Writer) *barProgress {
	return &barProgress{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Starting"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)}
}

func (p *barProgress) Update(msg string) {
	p.bar.Describe(msg)
	if pageMessage.MatchString(msg) {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	_ = p.bar.Finish()
}

// logProgress logs progress at debug level, once per stage and 10% step.
type logProgress struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func (p *logProgress) Update(msg string) {
	stage, percent := parseProgress(msg)
	if !p.sampler.ShouldLog(percent, stage) {
		return
	}
	if percent < 0 {
		p.logger.Debug(msg)
		return
	}
	p.logger.Debug("progress", "stage", stage, "percent", int(percent))
}

func (p *logProgress) Finish() {
	p.sampler.Reset()
}
