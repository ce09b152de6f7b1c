package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	TakesFiles bool // accepts archive or directory arguments
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"sort":       {Values: []string{"name", "archive"}},
	"format":     {Values: []string{"pdf", "epub"}},
	"log-level":  {Values: []string{"debug", "info", "warn", "error"}},
	"log-format": {Values: []string{"console", "json"}},

	// File flags with glob patterns
	"config": {FileGlob: "*.yaml,*.yml"},

	// Directory flags
	"output":      {IsDir: true},
	"library":     {IsDir: true},
	"scratch-dir": {IsDir: true},
	"asset-path":  {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	convertFS := newConvertFlagSet(&convertFlags{})

	libraryFS := flag.NewFlagSet("library", flag.ContinueOnError)
	addCommonFlags(libraryFS, &commonFlags{})

	return []commandDef{
		{Name: "convert", Desc: "Convert comic archives to PDF or EPUB", Flags: extractFlagsFromFlagSet(convertFS), TakesFiles: true},
		{Name: "library", Desc: "List the series of a Mihon library", Flags: extractFlagsFromFlagSet(libraryFS)},
		{Name: "doctor", Desc: "Check the scratch and output directories", Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "print JSON"}}},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		generateBash(w)
	case ShellZsh:
		generateZsh(w)
	case ShellFish:
		generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	return nil
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func flagWords(c commandDef) string {
	var words []string
	for _, f := range c.Flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

func generateBash(w io.Writer) {
	cmds := getCommands()

	fmt.Fprintln(w, "# bash completion for cbzconv")
	fmt.Fprintln(w, "_cbzconv() {")
	fmt.Fprintln(w, "    local cur prev cmd")
	fmt.Fprintln(w, `    cur="${COMP_WORDS[COMP_CWORD]}"`)
	fmt.Fprintln(w, `    prev="${COMP_WORDS[COMP_CWORD-1]}"`)
	fmt.Fprintln(w, `    cmd="${COMP_WORDS[1]}"`)
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    if [[ ${COMP_CWORD} -eq 1 && ${cur} != -* ]]; then`)
	fmt.Fprintf(w, "        COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", commandNames(cmds))
	fmt.Fprintln(w, "        return")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    case "${prev}" in`)
	for _, f := range cmds[0].Flags {
		names := "--" + f.Long
		if f.Short != "" {
			names += "|-" + f.Short
		}
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(w, "        %s) COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") ); return ;;\n", names, strings.Join(f.Values, " "))
		case flagDir:
			fmt.Fprintf(w, "        %s) COMPREPLY=( $(compgen -d -- \"${cur}\") ); return ;;\n", names)
		case flagFile:
			fmt.Fprintf(w, "        %s) COMPREPLY=( $(compgen -f -- \"${cur}\") ); return ;;\n", names)
		}
	}
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    if [[ ${cur} == -* ]]; then`)
	fmt.Fprintln(w, `        case "${cmd}" in`)
	for _, c := range cmds {
		if len(c.Flags) > 0 {
			fmt.Fprintf(w, "            %s) COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") ) ;;\n", c.Name, flagWords(c))
		}
	}
	fmt.Fprintf(w, "            *) COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") ) ;;\n", flagWords(cmds[0]))
	fmt.Fprintln(w, "        esac")
	fmt.Fprintln(w, "        return")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `    if [[ ${cmd} == completion ]]; then`)
	fmt.Fprintln(w, `        COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )`)
	fmt.Fprintln(w, "        return")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w, `    COMPREPLY=( $(compgen -f -X '!*.@(cbz|cbr|zip|rar|CBZ|CBR)' -- "${cur}") $(compgen -d -- "${cur}") )`)
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "shopt -s extglob")
	fmt.Fprintln(w, "complete -F _cbzconv cbzconv")
}

func generateZsh(w io.Writer) {
	cmds := getCommands()

	fmt.Fprintln(w, "#compdef cbzconv")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "_cbzconv() {")
	fmt.Fprintln(w, "    local -a commands")
	fmt.Fprintln(w, "    commands=(")
	for _, c := range cmds {
		fmt.Fprintf(w, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	fmt.Fprintln(w, "    )")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    if (( CURRENT == 2 )); then")
	fmt.Fprintln(w, "        _describe 'command' commands")
	fmt.Fprintln(w, "        _files -g '*.(cbz|cbr)'")
	fmt.Fprintln(w, "        return")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    case $words[2] in")
	for _, c := range cmds {
		if len(c.Flags) == 0 && !c.TakesFiles {
			continue
		}
		fmt.Fprintf(w, "        %s)\n", c.Name)
		fmt.Fprintln(w, "            _arguments \\")
		for _, f := range c.Flags {
			fmt.Fprintf(w, "                '--%s[%s]%s' \\\n", f.Long, zshEscape(f.Desc), zshAction(f))
		}
		if c.TakesFiles {
			fmt.Fprintln(w, "                '*:archive:_files -g \"*.(cbz|cbr|zip|rar)\"'")
		} else {
			fmt.Fprintln(w, "                '*:directory:_files -/'")
		}
		fmt.Fprintln(w, "            ;;")
	}
	fmt.Fprintln(w, "        completion)")
	fmt.Fprintln(w, "            _values 'shell' bash zsh fish")
	fmt.Fprintln(w, "            ;;")
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `_cbzconv "$@"`)
}

func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagDir:
		return fmt.Sprintf(":%s:_files -/", f.Long)
	case flagFile:
		return fmt.Sprintf(":%s:_files", f.Long)
	default:
		return fmt.Sprintf(":%s:", f.Long)
	}
}

func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", `'\''`)
	s = strings.ReplaceAll(s, "[", `\[`)
	return strings.ReplaceAll(s, "]", `\]`)
}

func generateFish(w io.Writer) {
	cmds := getCommands()

	fmt.Fprintln(w, "# fish completion for cbzconv")
	fmt.Fprintln(w, "complete -c cbzconv -f")
	for _, c := range cmds {
		fmt.Fprintf(w, "complete -c cbzconv -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	for _, c := range cmds {
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c cbzconv -n '__fish_seen_subcommand_from %s' -l %s", c.Name, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			case flagFile:
				line += " -r -F"
			case flagString, flagInt:
				line += " -x"
			}
			line += fmt.Sprintf(" -d '%s'", fishEscape(f.Desc))
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, "complete -c cbzconv -n '__fish_seen_subcommand_from convert' -F")
	fmt.Fprintln(w, "complete -c cbzconv -n '__fish_seen_subcommand_from completion' -x -a 'bash zsh fish'")
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cbzconv completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(cbzconv completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(cbzconv completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    cbzconv completion fish > ~/.config/fish/completions/cbzconv.fish")
}
