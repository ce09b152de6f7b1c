package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-cbzconv"
	"github.com/alnah/go-cbzconv/internal/fileutil"
)

// runLibrary lists the series of a Mihon library.
// The directory comes from the argument, CBZCONV_LIBRARY_DIR, or library.dir.
func runLibrary(args []string, env *Environment) error {
	flags, positional, err := parseLibraryFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: library takes at most one directory", ErrUsage)
	}

	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)

	dir := cfg.Library.Dir
	if len(positional) == 1 {
		dir = positional[0]
	}
	if dir == "" {
		dir = "."
	}
	dir, err = fileutil.ExpandHome(dir)
	if err != nil {
		return err
	}

	series, err := cbzconv.ScanLibrary(dir)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		fmt.Fprintf(env.Stdout, "No series found in %s\n", dir)
		return nil
	}

	rows := make([][]string, 0, len(series))
	for _, s := range series {
		rows = append(rows, []string{
			s.Title,
			s.Extension,
			strconv.Itoa(len(s.Chapters)),
			humanize.IBytes(uint64(seriesSize(s))), // #nosec G115 -- sizes are never negative
		})
	}
	fmt.Fprintln(env.Stdout, renderTable(
		[]string{"Series", "Source", "Chapters", "Size"},
		rows, nil,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	))
	if !flags.common.quiet {
		fmt.Fprintln(env.Stdout, "Convert one with: cbzconv convert --library", dir, "--series <title>")
	}
	return nil
}

// seriesSize sums the chapter file sizes. Unreadable files count as zero.
func seriesSize(s cbzconv.Series) int64 {
	var n int64
	for _, c := range s.Chapters {
		if info, err := os.Stat(c.ID); err == nil {
			n += info.Size()
		}
	}
	return n
}
