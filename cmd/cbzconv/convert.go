package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-cbzconv"
	"github.com/alnah/go-cbzconv/internal/config"
	"github.com/alnah/go-cbzconv/internal/fileutil"
)

// runConvert orchestrates one conversion job.
func runConvert(args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	// Load configuration: flags > env > file > defaults
	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, flags.common, env.Stderr)
	if err != nil {
		return err
	}
	applyMemoryLimit(cfg.Limits.MemoryLimitMiB, logger)

	sources, err := resolveSources(positional, flags.series, cfg.Library.Dir)
	if err != nil {
		return err
	}

	job, err := buildJob(cfg, sources)
	if err != nil {
		return err
	}
	if job.Merge && !cbzconv.CanMerge(job.Sources) {
		logger.Warn("Merge disabled: sources belong to different series")
		job.Merge = false
	}

	outDir, err := fileutil.ExpandHome(cfg.Output.Dir)
	if err != nil {
		return err
	}
	out, err := cbzconv.NewDirOutput(outDir)
	if err != nil {
		return err
	}
	job.Output = out

	scratchDir, err := fileutil.ExpandHome(cfg.Scratch.Dir)
	if err != nil {
		return err
	}

	progress := newProgress(env, logger, flags.common.quiet)
	conv, err := cbzconv.NewConverter(
		cbzconv.WithLogger(logger),
		cbzconv.WithProgress(progress.Update),
		cbzconv.WithScratchDir(scratchDir),
		cbzconv.WithAssetPath(cfg.Assets.BasePath),
		cbzconv.WithLanguage(cfg.Output.Language),
	)
	if err != nil {
		return err
	}

	unlock, err := conv.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	logger.Debug("starting conversion",
		"sources", len(job.Sources), "format", job.Format, "merge", job.Merge,
		"output", out.Dir(), "scratch", conv.ScratchDir())

	start := env.Now()
	res, err := conv.Convert(job)
	progress.Finish()

	if res != nil && !flags.common.quiet {
		printResults(env.Stdout, res, env.Now().Sub(start))
	}
	return err
}

// mergeFlags merges CLI flags into config. Only flags given on the
// command line override config values.
func mergeFlags(f *convertFlags, cfg *config.Config) {
	if f.set["output"] {
		cfg.Output.Dir = f.output
	}
	if f.set["name"] {
		cfg.Output.Name = f.name
	}
	if f.set["language"] {
		cfg.Output.Language = f.language
	}
	if f.set["max-pages"] {
		cfg.Conversion.MaxPages = f.maxPages
	}
	if f.set["batch-size"] {
		cfg.Conversion.BatchSize = f.batchSize
	}
	if f.set["merge"] {
		cfg.Conversion.Merge = f.merge
	}
	if f.set["sort"] {
		cfg.Conversion.Sort = f.sort
	}
	if f.set["compress"] {
		cfg.Conversion.Compress = f.compress
	}
	if f.set["chapter-names"] {
		cfg.Conversion.ChapterNames = f.chapterNames
	}
	if f.set["format"] {
		cfg.Conversion.Format = f.format
	}
	if f.set["library"] {
		cfg.Library.Dir = f.library
	}
	if f.set["scratch-dir"] {
		cfg.Scratch.Dir = f.scratchDir
	}
	if f.set["asset-path"] {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.set["log-level"] {
		cfg.Log.Level = f.common.logLevel
	}
	if f.set["log-format"] {
		cfg.Log.Format = f.common.logFormat
	}
}

// buildJob maps the resolved config onto a job without an output.
func buildJob(cfg *config.Config, sources []cbzconv.Source) (cbzconv.Job, error) {
	format, err := cbzconv.ParseFormat(cfg.Conversion.Format)
	if err != nil {
		return cbzconv.Job{}, err
	}
	sort, err := cbzconv.ParseSortMode(cfg.Conversion.Sort)
	if err != nil {
		return cbzconv.Job{}, err
	}
	return cbzconv.Job{
		Sources:      sources,
		MaxPages:     cfg.Conversion.MaxPages,
		BatchSize:    cfg.Conversion.BatchSize,
		Merge:        cfg.Conversion.Merge,
		Sort:         sort,
		Compress:     cfg.Conversion.Compress,
		ChapterNames: cfg.Conversion.ChapterNames,
		CustomName:   cfg.Output.Name,
		Format:       format,
	}, nil
}
