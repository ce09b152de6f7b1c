package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	logLevel  string
	logFormat string
	quiet     bool
	verbose   bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common commonFlags

	output       string
	name         string
	language     string
	maxPages     int
	batchSize    int
	merge        bool
	sort         string
	compress     bool
	chapterNames bool
	format       string
	series       string
	library      string
	scratchDir   string
	assetPath    string

	// set records the flags given on the command line.
	set map[string]bool
}

// libraryFlags holds flags for the library command.
type libraryFlags struct {
	common commonFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addConvertFlags registers the convert flags on fs.
func addConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVarP(&f.name, "name", "n", "", "custom output name")
	fs.IntVar(&f.maxPages, "max-pages", 0, "pages per output file (0 = 10000)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "pages per memory batch (0 = 200)")
	fs.BoolVar(&f.merge, "merge", false, "merge all inputs into one output")
	fs.StringVar(&f.sort, "sort", "", "page order: name, archive")
	fs.BoolVar(&f.compress, "compress", false, "recompress images and write compact PDF")
	fs.BoolVar(&f.chapterNames, "chapter-names", false, "suffix output names with chapter numbers")
	fs.StringVar(&f.format, "format", "", "output format: pdf, epub")
	fs.StringVar(&f.language, "language", "", "EPUB language tag (default en)")
	fs.StringVar(&f.series, "series", "", "convert a series from the Mihon library")
	fs.StringVar(&f.library, "library", "", "Mihon data directory")
	fs.StringVar(&f.scratchDir, "scratch-dir", "", "directory for temporary files")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding the EPUB templates")

	addCommonFlags(fs, &f.common)
}

// newConvertFlagSet creates the convert FlagSet bound to f.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	addConvertFlags(fs, f)
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
// Usage and parse errors are written to usage.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{set: make(map[string]bool)}
	fs := newConvertFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	return f, fs.Args(), nil
}

// parseLibraryFlags parses library command flags and returns positional args.
func parseLibraryFlags(args []string, usage io.Writer) (*libraryFlags, []string, error) {
	fs := flag.NewFlagSet("library", flag.ContinueOnError)
	f := &libraryFlags{}
	addCommonFlags(fs, &f.common)
	fs.SetOutput(usage)
	fs.Usage = func() { printLibraryUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
