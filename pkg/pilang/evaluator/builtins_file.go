package evaluator

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// ReadFileString reads a local file and returns its contents. Files
// ending in .gz are decompressed transparently.
func ReadFileString(path string) (string, *perrors.PiError) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", perrors.New("IO-0001", map[string]any{"Path": path, "Detail": readErr.Error()})
	}

	if strings.HasSuffix(path, ".gz") {
		gz, gzErr := gzip.NewReader(bytes.NewReader(data))
		if gzErr != nil {
			return "", perrors.New("IO-0001", map[string]any{"Path": path, "Detail": gzErr.Error()})
		}
		defer gz.Close()

		data, gzErr = io.ReadAll(gz)
		if gzErr != nil {
			return "", perrors.New("IO-0001", map[string]any{"Path": path, "Detail": gzErr.Error()})
		}
	}

	return string(data), nil
}

// builtinFile reads a local file and returns its contents as a string.
func builtinFile(scope *Scope, args []Object) (Object, *perrors.PiError) {
	path, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}

	text, err := ReadFileString(path)
	if err != nil {
		return nil, err
	}

	return &String{Value: text}, nil
}

// builtinLines splits a string into a lazy list of lines. A trailing
// newline does not produce an empty final element, and CRLF endings are
// handled.
func builtinLines(scope *Scope, args []Object) (Object, *perrors.PiError) {
	text, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}

	remaining := strings.TrimSuffix(text, "\n")
	if remaining == "" {
		return &List{}, nil
	}

	exhausted := false
	return &List{Pending: StreamFunc(func() (Object, bool, *perrors.PiError) {
		if exhausted {
			return nil, false, nil
		}
		line := remaining
		if idx := strings.Index(remaining, "\n"); idx >= 0 {
			line = remaining[:idx]
			remaining = remaining[idx+1:]
		} else {
			exhausted = true
		}
		return &String{Value: strings.TrimSuffix(line, "\r")}, true, nil
	})}, nil
}
