package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	md2docx "github.com/alnah/go-md2docx"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
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

// takesValue reports whether the flag consumes the next word.
func (f flagDef) takesValue() bool {
	return f.Type != flagBool
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool     // accepts file arguments
	FilePattern string   // glob for file arguments (e.g., "*.md")
	Args        []string // fixed positional values
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
	"strategy": {Values: md2docx.Strategies()},

	// File flags with glob patterns
	"config":      {FileGlob: "*.yaml,*.yml"},
	"template":    {FileGlob: "*.docx"},
	"pandoc-path": {FileGlob: "*"},

	// Directory flags
	"output":     {IsDir: true},
	"asset-path": {IsDir: true},
}

var supportedShells = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

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
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
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
// convert and serve flags come from the FlagSets the parsers use.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "convert",
			Desc:        "Convert markdown files to .docx",
			Flags:       extractFlagsFromFlagSet(newConvertFlagSet(&convertFlags{})),
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:  "serve",
			Desc:  "Run the HTTP conversion endpoint",
			Flags: extractFlagsFromFlagSet(newServeFlagSet(&serveFlags{})),
		},
		{
			Name:  "doctor",
			Desc:  "Check system configuration",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "machine-readable output"}},
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: slices.Clone(commands),
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: supportedShells,
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var b strings.Builder
	cmds := getCommands()

	switch shell {
	case ShellBash:
		generateBash(&b, cmds)
	case ShellZsh:
		generateZsh(&b, cmds)
	case ShellFish:
		generateFish(&b, cmds)
	case ShellPowerShell:
		generatePowerShell(&b, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(supportedShells, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
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
	fmt.Fprintln(w, "Usage: md2docx completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(md2docx completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(md2docx completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    md2docx completion fish > ~/.config/fish/completions/md2docx.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    md2docx completion powershell | Out-String | Invoke-Expression")
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(b *strings.Builder, cmds []commandDef) {
	names := commandNames(cmds)

	b.WriteString("# bash completion for md2docx\n\n")
	b.WriteString("_md2docx_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=($(compgen -W %q -- \"$cur\") %s)\n", strings.Join(names, " "), bashFileGlob("*.md,*.markdown"))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, cmd := range cmds {
		fmt.Fprintf(b, "        %s)\n", cmd.Name)

		if valued := flagsWithArg(cmd.Flags); len(valued) > 0 {
			b.WriteString("            case \"$prev\" in\n")
			for _, f := range valued {
				fmt.Fprintf(b, "                %s)\n", strings.Join(flagSpellings(f), "|"))
				switch f.Type {
				case flagEnum:
					fmt.Fprintf(b, "                    COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(f.Values, " "))
				case flagFile:
					fmt.Fprintf(b, "                    COMPREPLY=(%s $(compgen -d -- \"$cur\"))\n", bashFileGlob(f.FileGlob))
				case flagDir:
					b.WriteString("                    COMPREPLY=($(compgen -d -- \"$cur\"))\n")
				}
				b.WriteString("                    return\n")
				b.WriteString("                    ;;\n")
			}
			b.WriteString("            esac\n")
		}

		if len(cmd.Flags) > 0 {
			var spellings []string
			for _, f := range cmd.Flags {
				spellings = append(spellings, flagSpellings(f)...)
			}
			b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(b, "                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(spellings, " "))
			b.WriteString("                return\n")
			b.WriteString("            fi\n")
		}

		switch {
		case cmd.TakesFiles:
			fmt.Fprintf(b, "            COMPREPLY=(%s $(compgen -d -- \"$cur\"))\n", bashFileGlob(cmd.FilePattern))
		case len(cmd.Args) > 0:
			b.WriteString("            if [[ ${COMP_CWORD} -eq 2 ]]; then\n")
			fmt.Fprintf(b, "                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(cmd.Args, " "))
			b.WriteString("            fi\n")
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -o filenames -F _md2docx_completions md2docx\n")
}

// bashFileGlob expands a comma-separated glob list into compgen calls.
func bashFileGlob(glob string) string {
	var parts []string
	for _, g := range splitGlob(glob) {
		if g == "*" {
			parts = append(parts, "$(compgen -f -- \"$cur\")")
			continue
		}
		parts = append(parts, fmt.Sprintf("$(compgen -f -X '!%s' -- \"$cur\")", g))
	}
	return strings.Join(parts, " ")
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(b *strings.Builder, cmds []commandDef) {
	b.WriteString("#compdef md2docx\n\n")
	b.WriteString("_md2docx() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, cmd := range cmds {
		fmt.Fprintf(b, "        '%s:%s'\n", cmd.Name, zshEscape(cmd.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	fmt.Fprintf(b, "        _files -g '%s'\n", zshGlob("*.md,*.markdown"))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    local cmd=\"${words[2]}\"\n")
	b.WriteString("    shift words\n")
	b.WriteString("    (( CURRENT-- ))\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, cmd := range cmds {
		var specs []string
		for _, f := range cmd.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case cmd.TakesFiles:
			specs = append(specs, fmt.Sprintf("'*:file:_files -g \"%s\"'", zshGlob(cmd.FilePattern)))
		case len(cmd.Args) > 0:
			specs = append(specs, fmt.Sprintf("'1:%s:(%s)'", cmd.Name, strings.Join(cmd.Args, " ")))
		}
		if len(specs) == 0 {
			continue
		}

		fmt.Fprintf(b, "        %s)\n", cmd.Name)
		b.WriteString("            _arguments -s \\\n")
		for i, spec := range specs {
			b.WriteString("                " + spec)
			if i < len(specs)-1 {
				b.WriteString(" \\")
			}
			b.WriteString("\n")
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _md2docx md2docx\n")
}

func zshFlagSpec(f flagDef) string {
	var names string
	if f.Short != "" {
		names = fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'", f.Short, f.Long, f.Short, f.Long)
	} else {
		names = "'--" + f.Long
	}
	spec := names + "[" + zshEscape(f.Desc) + "]"

	switch f.Type {
	case flagBool:
	case flagEnum:
		spec += ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		spec += ":file:_files -g \"" + zshGlob(f.FileGlob) + "\""
	case flagDir:
		spec += ":dir:_files -/"
	default:
		spec += ":" + f.Long + ": "
	}
	return spec + "'"
}

// zshGlob turns "*.yaml,*.yml" into "*.(yaml|yml)".
func zshGlob(glob string) string {
	globs := splitGlob(glob)
	if len(globs) == 1 {
		return globs[0]
	}
	exts := make([]string, 0, len(globs))
	for _, g := range globs {
		exts = append(exts, strings.TrimPrefix(g, "*."))
	}
	return "*.(" + strings.Join(exts, "|") + ")"
}

var zshEscaper = strings.NewReplacer(`'`, `'\''`, `[`, `\[`, `]`, `\]`, `:`, `\:`)

func zshEscape(s string) string {
	return zshEscaper.Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# fish completion for md2docx\n\n")
	b.WriteString("function __fish_md2docx_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_md2docx_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test \"$argv[1]\" = \"$cmd[2]\"\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c md2docx -f\n")

	for _, cmd := range cmds {
		fmt.Fprintf(b, "complete -c md2docx -n __fish_md2docx_needs_command -a %s -d '%s'\n", cmd.Name, fishEscape(cmd.Desc))
	}
	fmt.Fprintf(b, "complete -c md2docx -n __fish_md2docx_needs_command -a '%s'\n", fishSuffix("*.md,*.markdown"))

	for _, cmd := range cmds {
		b.WriteString("\n")
		cond := fmt.Sprintf("-n '__fish_md2docx_using_command %s'", cmd.Name)
		for _, f := range cmd.Flags {
			line := "complete -c md2docx " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long + " -d '" + fishEscape(f.Desc) + "'"
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagFile:
				line += " -x -a '" + fishSuffix(f.FileGlob) + "'"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			b.WriteString(line + "\n")
		}
		switch {
		case cmd.TakesFiles:
			fmt.Fprintf(b, "complete -c md2docx %s -a '%s'\n", cond, fishSuffix(cmd.FilePattern))
		case len(cmd.Args) > 0:
			fmt.Fprintf(b, "complete -c md2docx %s -a '%s'\n", cond, strings.Join(cmd.Args, " "))
		}
	}
}

// fishSuffix builds a command substitution completing files by extension.
func fishSuffix(glob string) string {
	var calls []string
	for _, g := range splitGlob(glob) {
		if g == "*" {
			calls = append(calls, "__fish_complete_path")
			continue
		}
		calls = append(calls, "__fish_complete_suffix "+strings.TrimPrefix(g, "*"))
	}
	return "(" + strings.Join(calls, "; ") + ")"
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# powershell completion for md2docx\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName md2docx -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, cmd := range cmds {
		fmt.Fprintf(b, "        '%s' = '%s'\n", cmd.Name, psEscape(cmd.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = @{\n")
	for _, cmd := range cmds {
		if len(cmd.Flags) == 0 {
			continue
		}
		var spellings []string
		for _, f := range cmd.Flags {
			for _, s := range flagSpellings(f) {
				spellings = append(spellings, "'"+s+"'")
			}
		}
		fmt.Fprintf(b, "        '%s' = @(%s)\n", cmd.Name, strings.Join(spellings, ", "))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $values = @{\n")
	seen := map[string]bool{}
	for _, cmd := range cmds {
		for _, f := range cmd.Flags {
			if f.Type != flagEnum {
				continue
			}
			for _, s := range flagSpellings(f) {
				if seen[s] {
					continue
				}
				seen[s] = true
				fmt.Fprintf(b, "        '%s' = @(%s)\n", s, psList(f.Values))
			}
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $positional = @{\n")
	for _, cmd := range cmds {
		if len(cmd.Args) > 0 {
			fmt.Fprintf(b, "        '%s' = @(%s)\n", cmd.Name, psList(cmd.Args))
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString(`    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })
    $count = $elements.Count
    if ($wordToComplete -ne '') { $count-- }

    if ($count -le 1) {
        $commands.GetEnumerator() | Where-Object { $_.Key -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)
        }
        return
    }

    $cmd = $elements[1]
    $prev = $elements[$count - 1]

    if ($values.ContainsKey($prev)) {
        $values[$prev] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
        return
    }

    if ($wordToComplete -like '-*' -and $flags.ContainsKey($cmd)) {
        $flags[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)
        }
        return
    }

    if ($count -eq 2 -and $positional.ContainsKey($cmd)) {
        $positional[$cmd] | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
        }
    }
}
`)
}

func psEscape(s string) string {
	return strings.ReplaceAll(s, `'`, `''`)
}

func psList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + psEscape(v) + "'"
	}
	return strings.Join(quoted, ", ")
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, cmd := range cmds {
		names[i] = cmd.Name
	}
	return names
}

// flagSpellings returns "--long" and, when set, "-s".
func flagSpellings(f flagDef) []string {
	s := []string{"--" + f.Long}
	if f.Short != "" {
		s = append(s, "-"+f.Short)
	}
	return s
}

func flagsWithArg(flags []flagDef) []flagDef {
	var out []flagDef
	for _, f := range flags {
		if f.takesValue() {
			out = append(out, f)
		}
	}
	return out
}

func splitGlob(glob string) []string {
	var out []string
	for _, g := range strings.Split(glob, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
