package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SuperCuber/pilang/pkg/pilang/ast"
	"github.com/SuperCuber/pilang/pkg/pilang/evaluator"
	"github.com/SuperCuber/pilang/pkg/pilang/parser"
)

// runLine parses and runs one command, failing the test on any error.
func runLine(t *testing.T, interp *evaluator.Interpreter, line string) {
	t.Helper()
	cmd, _, err := parser.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error for %q: %s", line, err.Message)
	}
	if runErr := interp.Run(cmd); runErr != nil {
		t.Fatalf("run error for %q: %s", line, runErr.Message)
	}
}

// mustDirective parses a : line, failing the test if it is not one.
func mustDirective(t *testing.T, line string) *ast.Directive {
	t.Helper()
	_, d, err := parser.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error for %q: %s", line, err.Message)
	}
	if d == nil {
		t.Fatalf("expected a directive for %q", line)
	}
	return d
}

// directive runs one directive against interp and returns its output and
// whether it asked the shell to exit.
func directive(t *testing.T, interp *evaluator.Interpreter, opts Options, line string) (string, bool) {
	t.Helper()
	var out bytes.Buffer
	quit := handleDirective(mustDirective(t, line), interp, opts, defaultSampleSize, &out)
	return out.String(), quit
}

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		status   []string
		expected string
	}{
		{"root", "pi", nil, "pi> "},
		{"open list", "pi", []string{"list"}, "pi list> "},
		{"nested", "pi", []string{"list", "dict (k: v)"}, "pi list / dict (k: v)> "},
		{"custom base", "data", []string{"list"}, "data list> "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildPrompt(tt.base, tt.status)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFilterCompletions(t *testing.T) {
	words := []string{"true", "false", "null", "this", ":save", ":status"}

	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{"empty line", "", nil},
		{"whitespace only", "   ", nil},
		{"trailing space", "json ", nil},
		{"simple prefix", "tr", []string{"true"}},
		{"directive prefix", ":sa", []string{":save"}},
		{"multiple matches", ":s", []string{":save", ":status"}},
		{"keeps earlier words", "1 + th", []string{"1 + this"}},
		{"no match", "zz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterCompletions(tt.line, words)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestStatusDirective(t *testing.T) {
	interp := evaluator.New(`{"a": 1}`)

	out, _ := directive(t, interp, Options{}, ":status")
	if out != "(no open containers)\n" {
		t.Errorf("expected the empty status message, got %q", out)
	}

	runLine(t, interp, "json")
	runLine(t, interp, ">>")

	out, _ = directive(t, interp, Options{}, ":status")
	if out != "open: dict (k: v)\n" {
		t.Errorf("expected the open frame, got %q", out)
	}
}

func TestUndoDirective(t *testing.T) {
	interp := evaluator.New("seed")
	runLine(t, interp, "1")
	runLine(t, interp, "2")

	out, quit := directive(t, interp, Options{}, ":undo")
	if quit {
		t.Fatal("undo should not exit the shell")
	}
	if out != "1\n" {
		t.Errorf("expected the previous value preview, got %q", out)
	}
}

func TestAllDirective(t *testing.T) {
	interp := evaluator.New("")
	runLine(t, interp, "range 100")

	out, _ := directive(t, interp, Options{}, ":all 5")
	if !strings.HasPrefix(out, "[0, 1, 2, 3, 4, ...]") {
		t.Errorf("expected five realized elements, got %q", out)
	}
	if !strings.Contains(out, "more than 5 elements") {
		t.Errorf("expected a note about the remaining stream, got %q", out)
	}

	// A large enough bound exhausts the stream and drops the note.
	out, _ = directive(t, interp, Options{}, ":all 200")
	if strings.Contains(out, "...") || strings.Contains(out, "more than") {
		t.Errorf("expected a fully realized list, got %q", out)
	}
	if !strings.Contains(out, "99]") {
		t.Errorf("expected the last element, got %q", out)
	}
}

func TestAllDirectiveBadBound(t *testing.T) {
	interp := evaluator.New("")

	for _, arg := range []string{"abc", "0", "-3"} {
		out, _ := directive(t, interp, Options{}, ":all "+arg)
		if !strings.Contains(out, "Usage: :all [n]") {
			t.Errorf("expected a usage message for %q, got %q", arg, out)
		}
	}
}

func TestSaveDirective(t *testing.T) {
	interp := evaluator.New(`{"a": 1}`)
	runLine(t, interp, "json")

	path := filepath.Join(t.TempDir(), "out.json")
	out, _ := directive(t, interp, Options{}, ":save "+path)
	if !strings.Contains(out, "Wrote "+path) {
		t.Errorf("expected a write confirmation, got %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read saved file: %v", err)
	}
	if string(data) != `{"a":1}`+"\n" {
		t.Errorf("expected compact JSON with a trailing newline, got %q", string(data))
	}
}

func TestSaveDirectiveUsage(t *testing.T) {
	interp := evaluator.New("")

	out, _ := directive(t, interp, Options{}, ":save")
	if !strings.Contains(out, "Usage: :save <path>") {
		t.Errorf("expected a usage message, got %q", out)
	}
}

func TestReloadDirective(t *testing.T) {
	interp := evaluator.New("old")
	runLine(t, interp, "1 + 1")

	out, _ := directive(t, interp, Options{}, ":reload")
	if out != "Nothing to reload in this session\n" {
		t.Errorf("expected the no-reload message, got %q", out)
	}

	opts := Options{Reload: func() (*evaluator.Interpreter, error) {
		return evaluator.New("new"), nil
	}}
	out, _ = directive(t, interp, opts, ":reload")
	if out != "Reloaded\n" {
		t.Errorf("expected a reload confirmation, got %q", out)
	}

	str, ok := interp.Value().(*evaluator.String)
	if !ok || str.Value != "new" {
		t.Errorf("expected the fresh seed after reload, got %s", interp.Value().Inspect())
	}
}

func TestQuitDirectives(t *testing.T) {
	interp := evaluator.New("")

	for _, line := range []string{":quit", ":exit"} {
		if _, quit := directive(t, interp, Options{}, line); !quit {
			t.Errorf("expected %s to exit the shell", line)
		}
	}
	if _, quit := directive(t, interp, Options{}, ":status"); quit {
		t.Error("expected :status to keep the shell running")
	}
}

func TestUnknownDirective(t *testing.T) {
	interp := evaluator.New("")

	out, _ := directive(t, interp, Options{}, ":stats")
	if !strings.Contains(out, "Unknown directive :stats") {
		t.Errorf("expected an unknown directive message, got %q", out)
	}
	if !strings.Contains(out, "did you mean :status?") {
		t.Errorf("expected a suggestion, got %q", out)
	}

	out, _ = directive(t, interp, Options{}, ":zzzzzz")
	if !strings.Contains(out, "type :help for directives") {
		t.Errorf("expected the help fallback, got %q", out)
	}
}

func TestScopeDirective(t *testing.T) {
	interp := evaluator.New(`{"name": "Ada"}`)

	out, _ := directive(t, interp, Options{}, ":scope")
	if !strings.Contains(out, "no variables") {
		t.Errorf("expected the empty scope message, got %q", out)
	}

	runLine(t, interp, "json")
	runLine(t, interp, ">> key: val")

	out, _ = directive(t, interp, Options{}, ":scope")
	if !strings.Contains(out, "key: string = \"name\"") {
		t.Errorf("expected the bound key, got %q", out)
	}
	if !strings.Contains(out, "val:") {
		t.Errorf("expected the bound value name, got %q", out)
	}
}

func TestHelpDirective(t *testing.T) {
	interp := evaluator.New("")

	// No topic lists the directives.
	out, _ := directive(t, interp, Options{}, ":help")
	if !strings.Contains(out, ":save <path>") {
		t.Errorf("expected the directive list, got %q", out)
	}

	out, _ = directive(t, interp, Options{}, ":help json")
	if !strings.Contains(out, "json(text)") {
		t.Errorf("expected the json builtin help, got %q", out)
	}

	out, _ = directive(t, interp, Options{}, ":help nonsense")
	if !strings.Contains(out, "unknown topic") {
		t.Errorf("expected an unknown topic message, got %q", out)
	}
}

func TestPrintWatchNotices(t *testing.T) {
	var out bytes.Buffer

	// A nil channel is silent.
	printWatchNotices(nil, &out)
	if out.Len() != 0 {
		t.Errorf("expected no output for a nil channel, got %q", out.String())
	}

	ch := make(chan string, 4)
	ch <- "data.json"
	ch <- "data.json"
	ch <- "other.json"

	printWatchNotices(ch, &out)
	text := out.String()
	if strings.Count(text, "data.json changed on disk") != 1 {
		t.Errorf("expected one collapsed notice for data.json, got %q", text)
	}
	if !strings.Contains(text, "other.json changed on disk") {
		t.Errorf("expected a notice for other.json, got %q", text)
	}
}

func TestRunScript(t *testing.T) {
	tests := []struct {
		name     string
		seed     string
		src      string
		expected string
	}{
		{
			name:     "final container as compact json",
			seed:     `{"a": [1, 2]}`,
			src:      "json\n",
			expected: `{"a":[1,2]}` + "\n",
		},
		{
			name:     "final string raw",
			seed:     "plain text",
			src:      "# nothing to do\n",
			expected: "plain text\n",
		},
		{
			name:     "directives run in scripts",
			seed:     `[1, 2, 3]`,
			src:      "json\n:status\nlen this\n",
			expected: "(no open containers)\n3\n",
		},
		{
			name:     "log output goes to the script writer",
			seed:     `[1, 2, 3]`,
			src:      "json\nlog this\nlen this\n",
			expected: "[1, 2, 3]\n3\n",
		},
		{
			name:     "quit stops without printing",
			seed:     "x",
			src:      ":quit\n1\n",
			expected: "",
		},
		{
			name:     "bare exit stops without printing",
			seed:     "x",
			src:      "exit\n1\n",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp := evaluator.New(tt.seed)
			var out bytes.Buffer
			if err := RunScript(interp, Options{}, "test.pi", tt.src, &out); err != nil {
				t.Fatalf("script failed: %s", err.Message)
			}
			if out.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, out.String())
			}
		})
	}
}

func TestRunScriptErrorPosition(t *testing.T) {
	interp := evaluator.New("[1]")
	var out bytes.Buffer

	err := RunScript(interp, Options{}, "bad.pi", "json\nnope\n", &out)
	if err == nil {
		t.Fatal("expected a script error")
	}
	if err.File != "bad.pi" {
		t.Errorf("expected the script path, got %q", err.File)
	}
	if err.Line != 2 {
		t.Errorf("expected line 2, got %d", err.Line)
	}
}
