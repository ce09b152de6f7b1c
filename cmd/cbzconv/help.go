package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cbzconv <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert CBZ/CBR archives to PDF or EPUB (default)")
	fmt.Fprintln(w, "  library     List the series of a Mihon library")
	fmt.Fprintln(w, "  doctor      Check the scratch and output directories")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'cbzconv help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cbzconv convert <archive|dir>... [flags]")
	fmt.Fprintln(w, "       cbzconv convert --series <title> [--library <dir>] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert comic book archives to PDF or EPUB.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  archive    .cbz, .cbr, .zip or .rar file")
	fmt.Fprintln(w, "  dir        Directory; its .cbz and .cbr files are converted in name order")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: current directory)")
	fmt.Fprintln(w, "  -n, --name <s>            Custom output name")
	fmt.Fprintln(w, "      --format <s>          Output format: pdf, epub")
	fmt.Fprintln(w, "      --chapter-names       Suffix names with chapter numbers")
	fmt.Fprintln(w, "      --language <tag>      EPUB language tag (default: en)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --merge               Merge all inputs into one output")
	fmt.Fprintln(w, "      --sort <s>            Page order: name, archive")
	fmt.Fprintln(w, "      --compress            Recompress images (JPEG 75) and write compact PDF")
	fmt.Fprintln(w, "      --max-pages <n>       Pages per output file (default: 10000)")
	fmt.Fprintln(w, "      --batch-size <n>      Pages rendered per memory batch (default: 200)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Library:")
	fmt.Fprintln(w, "      --series <title>      Convert a series from the Mihon library")
	fmt.Fprintln(w, "      --library <dir>       Mihon data directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resources:")
	fmt.Fprintln(w, "      --scratch-dir <dir>   Directory for temporary files")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory overriding the EPUB templates")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Log format: console, json")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printLibraryUsage prints usage for the library command.
func printLibraryUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cbzconv library [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the series downloaded by Mihon under <dir>/downloads.")
	fmt.Fprintln(w, "Without dir, CBZCONV_LIBRARY_DIR or library.dir is used.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only print the table")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "library":
		printLibraryUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: cbzconv doctor [--json] [--config <name>]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check the scratch and output directories and report runtime limits.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: cbzconv version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: cbzconv help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
