package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/SuperCuber/pilang/config"
	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
	"github.com/SuperCuber/pilang/pkg/pilang/evaluator"
	"github.com/SuperCuber/pilang/pkg/pilang/help"
	"github.com/SuperCuber/pilang/pkg/pilang/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")
	quietFlag       = flag.Bool("q", false, "Skip the startup banner")
	quietLongFlag   = flag.Bool("quiet", false, "Skip the startup banner")

	// Input flags
	evalFlag     = flag.String("e", "", "Use a string as the input value")
	evalLongFlag = flag.String("eval", "", "Use a string as the input value")
	rcFlag       = flag.String("rc", "", "Use a specific rc file")

	// Execution flags
	scriptFlag     = flag.String("s", "", "Run a command file against the input")
	scriptLongFlag = flag.String("script", "", "Run a command file against the input")
	watchFlag      = flag.Bool("w", false, "Report when the input file changes on disk")
	watchLongFlag  = flag.Bool("watch", false, "Report when the input file changes on disk")
)

func main() {
	// Check for subcommands first (before flag parsing)
	if len(os.Args) > 1 && os.Args[1] == "help" {
		helpCommand(os.Args[2:])
		return
	}

	// Customize flag usage message
	flag.Usage = printHelp
	flag.Parse()

	// Check for help flag
	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	// Check for version flag
	if *versionFlag || *versionLongFlag {
		fmt.Printf("pi version %s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.Load(*rcFlag, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Get eval text (prefer -e over --eval if both set)
	evalText := *evalFlag
	if evalText == "" {
		evalText = *evalLongFlag
	}

	scriptPath := *scriptFlag
	if scriptPath == "" {
		scriptPath = *scriptLongFlag
	}

	watch := *watchFlag || *watchLongFlag
	quiet := *quietFlag || *quietLongFlag

	if len(flag.Args()) > 1 {
		fmt.Fprintf(os.Stderr, "Error: unexpected argument %q (pi takes at most one input file)\n", flag.Args()[1])
		os.Exit(2)
	}

	// Resolve the input source: named file > -e string > piped stdin.
	var seedText, seedPath string
	switch {
	case len(flag.Args()) > 0:
		seedPath = flag.Args()[0]
		text, perr := evaluator.ReadFileString(seedPath)
		if perr != nil {
			fmt.Fprintln(os.Stderr, perr.PrettyString())
			os.Exit(1)
		}
		seedText = text
	case evalText != "":
		seedText = evalText
	case stdinRedirected():
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Error: could not read stdin: %v\n", readErr)
			os.Exit(1)
		}
		seedText = string(data)
	}

	interp := newInterpreter(seedText, cfg)

	opts := repl.Options{
		Version:     Version,
		Prompt:      cfg.Prompt,
		HistoryFile: cfg.HistoryFile,
		SampleSize:  cfg.SampleSize,
		Quiet:       quiet,
	}

	// Script mode
	if scriptPath != "" {
		src, readErr := os.ReadFile(scriptPath)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Error: could not read script %s: %v\n", scriptPath, readErr)
			os.Exit(1)
		}
		if perr := repl.RunScript(interp, opts, scriptPath, string(src), os.Stdout); perr != nil {
			printScriptError(string(src), perr)
			os.Exit(1)
		}
		return
	}

	// REPL mode
	if seedPath != "" || seedText != "" {
		opts.Reload = func() (*evaluator.Interpreter, error) {
			text := seedText
			if seedPath != "" {
				t, perr := evaluator.ReadFileString(seedPath)
				if perr != nil {
					return nil, perr
				}
				text = t
			}
			return newInterpreter(text, cfg), nil
		}
	}

	if watch {
		if seedPath == "" {
			fmt.Fprintln(os.Stderr, "Warning: --watch needs an input file, ignoring")
		} else if ch, watchErr := watchSeed(seedPath); watchErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not watch %s: %v\n", seedPath, watchErr)
		} else {
			opts.Watch = ch
		}
	}

	repl.Start(interp, opts, os.Stdout)
}

// newInterpreter builds an interpreter seeded with text and applies the
// rc-file settings that live on the root scope.
func newInterpreter(seed string, cfg *config.Config) *evaluator.Interpreter {
	interp := evaluator.New(seed)
	if cfg.Locale != "" {
		interp.SetLocale(cfg.Locale)
	}
	if len(cfg.SQL) > 0 {
		interp.Scope().SQLAliases = cfg.SQL
	}
	return interp
}

// stdinRedirected reports whether stdin is a pipe or file rather than a
// terminal.
func stdinRedirected() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) == 0
}

func printHelp() {
	fmt.Printf(`pi - interactive data exploration shell version %s

Usage:
  pi [options] [file]
  pi -e "text" [options]
  pi help <topic>

Commands:
  help <topic>          Show help for a builtin, directive, or guide topic

Display Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -q, --quiet           Skip the startup banner

Input Options:
  -e, --eval <text>     Use a string as the input value
  --rc <path>           Use a specific rc file (default: ~/.pirc.yaml)

Execution Options:
  -s, --script <file>   Run a command file against the input, print the final value
  -w, --watch           Report when the input file changes on disk

Input Sources:
  The session value starts as the named file's contents (.gz files are
  decompressed), the -e string, or piped stdin, in that order. With no
  input it starts as an empty string.

Examples:
  pi                          Start an empty session
  pi data.json                Explore a file (parse it with json(this))
  pi logs.ndjson.gz           Gzipped input is decompressed transparently
  pi -e '{"a": 1}'            Explore an inline string
  cat data.json | pi -s t.pi  Transform piped input with a command file
  pi -w data.json             Report file changes (:reload picks them up)
  pi help builtins            List builtin functions
  pi help navigation          Explain the >> and << commands

For more information, visit: https://github.com/SuperCuber/pilang
`, Version)
}

// helpCommand implements the 'pi help <topic>' subcommand
func helpCommand(args []string) {
	// Check for --json flag
	jsonOutput := false
	var topic string

	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if topic == "" {
		fmt.Fprintln(os.Stderr, `Usage: pi help [--json] <topic>

Topics:
  builtins           List all builtin functions by category
  directives         List the : directives available in the shell
  navigation         Explain descending into and out of containers
  <builtin>          Help for a specific builtin (json, sql, datefmt, ...)
  <directive>        Help for a specific directive (:save, :all, ...)

Examples:
  pi help builtins
  pi help navigation
  pi help json
  pi help :save
  pi help --json sql`)
		os.Exit(1)
	}

	result, err := help.DescribeTopic(topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		data, err := help.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(help.FormatText(result, 80))
	}
}

// printScriptError prints a script failure with source context
func printScriptError(source string, err *perrors.PiError) {
	fmt.Fprintln(os.Stderr, err.PrettyString())
	printSourceContext(strings.Split(source, "\n"), err.Line, err.Column)
}

// printSourceContext prints the source line and error pointer
func printSourceContext(lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := lines[lineNum-1]

	// Calculate how many columns to trim from the left
	trimCount := 0
	for i := 0; i < len(sourceLine); i++ {
		if sourceLine[i] == ' ' || sourceLine[i] == '\t' {
			if sourceLine[i] == '\t' {
				trimCount += 8
			} else {
				trimCount++
			}
		} else {
			break
		}
	}

	// Trim left whitespace from the source line
	trimmedLine := strings.TrimLeft(sourceLine, " \t")

	// Show the trimmed line with slight indentation
	fmt.Fprintf(os.Stderr, "    %s\n", trimmedLine)

	// Show pointer to the error position
	if colNum > 0 {
		// Calculate visual column accounting for tabs (8 spaces each) up to error position
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}

		// Adjust pointer position by subtracting trimmed columns
		adjustedCol := max(visualCol-trimCount, 0)

		pointer := strings.Repeat(" ", adjustedCol) + "^"
		fmt.Fprintf(os.Stderr, "    %s\n", pointer)
	}
}

// watchSeed watches the input file's directory and reports write or
// create events for the file itself. Watching the directory survives
// editors that replace the file on save.
func watchSeed(path string) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	changes := make(chan string, 8)
	go func() {
		defer watcher.Close()

		// Debounce duration - wait for rapid changes to settle
		const debounce = 100 * time.Millisecond
		var lastChange time.Time

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					close(changes)
					return
				}

				// Only handle write and create events
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if filepath.Base(event.Name) != filepath.Base(abs) {
					continue
				}

				// Debounce rapid changes
				if time.Since(lastChange) < debounce {
					continue
				}
				lastChange = time.Now()

				select {
				case changes <- path:
				default:
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					close(changes)
					return
				}
			}
		}
	}()

	return changes, nil
}
