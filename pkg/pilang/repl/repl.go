// Package repl implements the interactive shell: line editing, history,
// completion, value previews and the : directives.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/SuperCuber/pilang/pkg/pilang/ast"
	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
	"github.com/SuperCuber/pilang/pkg/pilang/evaluator"
	"github.com/SuperCuber/pilang/pkg/pilang/help"
	"github.com/SuperCuber/pilang/pkg/pilang/parser"
	"github.com/SuperCuber/pilang/pkg/pilang/pilang"
)

const PI_LOGO = `
█▀█ █
█▀▀ █ `

// defaultAllBound is how many elements :all realizes per container when
// no bound is given
const defaultAllBound = 1000

// defaultSampleSize is how many elements previews realize per container
const defaultSampleSize = 3

// Options configures a shell session. The zero value gives the stock
// prompt, history location and preview size.
type Options struct {
	Version     string
	Prompt      string // prompt base, "pi" by default
	HistoryFile string
	SampleSize  int
	Quiet       bool // suppress the banner

	// Reload builds a fresh interpreter from the original input. nil
	// disables :reload.
	Reload func() (*evaluator.Interpreter, error)

	// Watch delivers paths that changed on disk; the shell prints a
	// notice before the next prompt. nil disables notices.
	Watch <-chan string
}

// languageWords are the keywords offered by tab completion alongside the
// scope names and directives
var languageWords = []string{
	"true", "false", "null", "this", "and", "or",
	"exit", "quit",
}

// Start runs the shell until the user quits. Commands run against interp;
// every successful command is followed by a sampled preview of the
// current value.
func Start(interp *evaluator.Interpreter, opts Options, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	// Enable Ctrl+C to abort current line
	line.SetCtrlCAborts(true)

	// Set up tab completion over keywords, directives and scope names.
	// The scope is read per keystroke so names bound by descends appear.
	line.SetCompleter(func(input string) []string {
		return filterCompletions(input, completionWords(interp))
	})

	// Load command history from file
	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".pi_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	// Save history on exit
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	promptBase := opts.Prompt
	if promptBase == "" {
		promptBase = "pi"
	}
	sample := opts.SampleSize
	if sample <= 0 {
		sample = defaultSampleSize
	}

	// log() output follows the session writer
	interp.SetLogger(pilang.WriterLogger(out))

	if !opts.Quiet {
		fmt.Fprintf(out, "%s", PI_LOGO)
		fmt.Fprintln(out, "v", opts.Version)
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
		fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
		fmt.Fprintln(out, "Type ':help' for directives")
		fmt.Fprintln(out, "")
	}

	for {
		printWatchNotices(opts.Watch, out)

		input, err := line.Prompt(buildPrompt(promptBase, interp.Status()))
		if err != nil {
			// Ctrl+D or Ctrl+C
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(input)

		if trimmed == "exit" || trimmed == "quit" {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		cmd, directive, perr := parser.ParseLine(input)
		if perr != nil {
			printError(out, perr)
			continue
		}

		if directive != nil {
			if quit := handleDirective(directive, interp, opts, sample, out); quit {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			continue
		}

		if cmd == nil {
			continue
		}

		if err := interp.Run(cmd); err != nil {
			printError(out, err)
			continue
		}

		preview(out, interp.Value(), sample)
	}
}

// buildPrompt renders the open-frame chain into the prompt:
// "pi> ", "pi list> ", "pi list / dict (k: v)> "
func buildPrompt(base string, status []string) string {
	if len(status) == 0 {
		return base + "> "
	}
	return base + " " + strings.Join(status, " / ") + "> "
}

// preview samples and prints the current value. A preview realization
// failure is reported but the command that produced the value stays
// committed, so the pull can be retried with :all or another preview.
func preview(out io.Writer, value evaluator.Object, sample int) {
	if err := evaluator.RealizeUpTo(value, sample); err != nil {
		printError(out, err)
		return
	}
	io.WriteString(out, value.Inspect())
	io.WriteString(out, "\n")
}

// handleDirective runs one : directive. Returns true when the shell
// should exit.
func handleDirective(d *ast.Directive, interp *evaluator.Interpreter, opts Options, sample int, out io.Writer) bool {
	switch d.Name {
	case "undo":
		interp.Undo()
		preview(out, interp.Value(), sample)

	case "status":
		status := interp.Status()
		if len(status) == 0 {
			fmt.Fprintln(out, "(no open containers)")
		} else {
			fmt.Fprintln(out, "open: "+strings.Join(status, " / "))
		}

	case "scope":
		printScope(interp.Scope(), out)

	case "all":
		bound := defaultAllBound
		if len(d.Args) > 0 {
			n, err := strconv.Atoi(d.Args[0])
			if err != nil || n < 1 {
				fmt.Fprintf(out, "Usage: :all [n] (n must be a positive integer, got %s)\n", d.Args[0])
				return false
			}
			bound = n
		}
		value := interp.Value()
		if err := evaluator.RealizeUpTo(value, bound); err != nil {
			printError(out, err)
			return false
		}
		io.WriteString(out, value.Inspect())
		io.WriteString(out, "\n")
		if evaluator.HasPending(value) {
			fmt.Fprintf(out, "(more than %d elements; raise the bound with :all <n>)\n", bound)
		}

	case "pp":
		value := interp.Value()
		if err := evaluator.RealizeUpTo(value, sample); err != nil {
			printError(out, err)
			return false
		}
		io.WriteString(out, evaluator.PrettyInspect(value))
		io.WriteString(out, "\n")

	case "save":
		if len(d.Args) != 1 {
			fmt.Fprintln(out, "Usage: :save <path>")
			return false
		}
		saveValue(interp.Value(), d.Args[0], out)

	case "reload":
		if opts.Reload == nil {
			fmt.Fprintln(out, "Nothing to reload in this session")
			return false
		}
		fresh, err := opts.Reload()
		if err != nil {
			fmt.Fprintf(out, "Reload failed: %v\n", err)
			return false
		}
		*interp = *fresh
		interp.SetLogger(pilang.WriterLogger(out))
		fmt.Fprintln(out, "Reloaded")

	case "help":
		showHelp(strings.Join(d.Args, " "), out)

	case "quit", "exit":
		return true

	default:
		msg := fmt.Sprintf("Unknown directive :%s", d.Name)
		names := make([]string, 0, len(help.Directives))
		for _, dir := range help.Directives {
			names = append(names, strings.TrimPrefix(dir.Name, ":"))
		}
		if closest := perrors.FindClosestMatch(d.Name, names); closest != "" {
			msg += fmt.Sprintf(" (did you mean :%s?)", closest)
		} else {
			msg += " (type :help for directives)"
		}
		fmt.Fprintln(out, msg)
	}

	return false
}

// printScope displays the variables bound in the current frame, skipping
// the builtin functions
func printScope(scope *evaluator.Scope, out io.Writer) {
	var shown int
	for _, name := range scope.Names() {
		obj, _ := scope.Get(name)
		if _, isBuiltin := obj.(*evaluator.Builtin); isBuiltin {
			continue
		}
		shown++

		value := obj.Inspect()
		if strings.Contains(value, "\n") {
			// Indent continuation lines by 2 spaces
			lines := strings.Split(value, "\n")
			for i := 1; i < len(lines); i++ {
				lines[i] = "  " + lines[i]
			}
			value = strings.Join(lines, "\n")
		} else if len(value) > 60 {
			value = value[:57] + "..."
		}

		fmt.Fprintf(out, "  %s: %s = %s\n", name, evaluator.TypeName(obj), value)
	}
	if shown == 0 {
		fmt.Fprintln(out, "(no variables; descend into a dict to bind some)")
	}
}

// saveValue writes the fully realized value to path as JSON
func saveValue(value evaluator.Object, path string, out io.Writer) {
	if err := evaluator.RealizeDeep(value); err != nil {
		printError(out, err)
		return
	}
	text, err := evaluator.ToJSON(value)
	if err != nil {
		printError(out, err)
		return
	}
	if werr := os.WriteFile(path, []byte(text+"\n"), 0644); werr != nil {
		fmt.Fprintf(out, "Could not write %s: %v\n", path, werr)
		return
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
}

// showHelp renders a help topic; with no topic it shows the directives
func showHelp(topic string, out io.Writer) {
	if topic == "" {
		topic = "directives"
	}
	result, err := help.DescribeTopic(topic)
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	io.WriteString(out, help.FormatText(result, 80))
}

// completionWords collects everything tab completion can offer: language
// keywords, directives and the names bound in the current scope
func completionWords(interp *evaluator.Interpreter) []string {
	words := make([]string, 0, len(languageWords)+len(help.Directives)+1)
	words = append(words, languageWords...)
	for _, d := range help.Directives {
		words = append(words, d.Name)
	}
	words = append(words, ":exit")
	words = append(words, interp.Scope().Names()...)
	return words
}

// filterCompletions returns completion suggestions based on current input
func filterCompletions(line string, words []string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	// Don't complete if line ends with whitespace
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	// Complete the last word, keeping the rest of the line. liner
	// replaces the whole line with the returned candidates.
	fields := strings.Fields(line)
	lastWord := fields[len(fields)-1]
	prefix := line[:len(line)-len(lastWord)]

	var matches []string
	for _, word := range words {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}

// printWatchNotices reports files that changed since the last prompt.
// The channel is drained without blocking; repeated events for the same
// path collapse into one notice.
func printWatchNotices(watch <-chan string, out io.Writer) {
	var seen map[string]bool
	for {
		select {
		case path, ok := <-watch:
			if !ok {
				return
			}
			if seen == nil {
				seen = make(map[string]bool)
			}
			if !seen[path] {
				seen[path] = true
				fmt.Fprintf(out, "%s changed on disk (:reload to pick it up)\n", path)
			}
		default:
			return
		}
	}
}

func printError(out io.Writer, err *perrors.PiError) {
	io.WriteString(out, err.PrettyString())
	io.WriteString(out, "\n")
}
