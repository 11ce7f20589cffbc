package repl

import (
	"fmt"
	"io"
	"strings"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
	"github.com/SuperCuber/pilang/pkg/pilang/evaluator"
	"github.com/SuperCuber/pilang/pkg/pilang/parser"
	"github.com/SuperCuber/pilang/pkg/pilang/pilang"
)

// RunScript executes a command file against interp, one command per
// line, and prints the final value. Directives behave as they do in the
// shell, and :quit (or a bare exit) stops the script without printing.
// Returned errors carry the script path and line number.
func RunScript(interp *evaluator.Interpreter, opts Options, path, src string, out io.Writer) *perrors.PiError {
	sample := opts.SampleSize
	if sample <= 0 {
		sample = defaultSampleSize
	}
	interp.SetLogger(pilang.WriterLogger(out))

	for i, lineText := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(lineText)
		if trimmed == "exit" || trimmed == "quit" {
			return nil
		}

		cmd, directive, perr := parser.ParseLine(lineText)
		if perr != nil {
			return perr.WithFile(path).WithPosition(i+1, perr.Column)
		}
		if directive != nil {
			if quit := handleDirective(directive, interp, opts, sample, out); quit {
				return nil
			}
			continue
		}
		if cmd == nil {
			continue
		}
		if err := interp.Run(cmd); err != nil {
			return err.WithFile(path).WithPosition(i+1, err.Column)
		}
	}

	return printFinal(interp.Value(), out)
}

// printFinal fully realizes the final value and writes it as JSON.
// Strings are written raw so script output can feed a pipeline
// directly.
func printFinal(value evaluator.Object, out io.Writer) *perrors.PiError {
	if err := evaluator.RealizeDeep(value); err != nil {
		return err
	}
	if s, ok := value.(*evaluator.String); ok {
		fmt.Fprintln(out, s.Value)
		return nil
	}
	text, err := evaluator.ToJSON(value)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}
