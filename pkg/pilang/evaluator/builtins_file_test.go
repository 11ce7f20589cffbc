package evaluator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// TestFileReadsContents checks plain file reading.
func TestFileReadsContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("hello from disk\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	result, err := builtinFile(NewScope(), []Object{&String{Value: path}})
	if err != nil {
		t.Fatalf("file failed: %s", err.Message)
	}
	if s := result.(*String).Value; s != "hello from disk\n" {
		t.Errorf("Unexpected contents: %q", s)
	}
}

// TestFileDecompressesGzip checks that a .gz suffix triggers transparent
// decompression.
func TestFileDecompressesGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("compressed content")); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "data.txt.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	result, err := builtinFile(NewScope(), []Object{&String{Value: path}})
	if err != nil {
		t.Fatalf("file failed: %s", err.Message)
	}
	if s := result.(*String).Value; s != "compressed content" {
		t.Errorf("Unexpected contents: %q", s)
	}
}

// TestFileErrors checks missing files and corrupt gzip data.
func TestFileErrors(t *testing.T) {
	_, err := testEval(t, `file "/no/such/file.txt"`)
	if err == nil {
		t.Fatalf("Expected an error, got none")
	}
	if err.Code != "IO-0001" {
		t.Errorf("Expected IO-0001, got %s", err.Code)
	}
	if !strings.HasPrefix(err.Message, "Could not read /no/such/file.txt") {
		t.Errorf("Unexpected message: %q", err.Message)
	}

	path := filepath.Join(t.TempDir(), "broken.gz")
	if writeErr := os.WriteFile(path, []byte("not gzip at all"), 0o644); writeErr != nil {
		t.Fatalf("WriteFile failed: %v", writeErr)
	}
	_, err = builtinFile(NewScope(), []Object{&String{Value: path}})
	if err == nil || err.Code != "IO-0001" {
		t.Errorf("Expected IO-0001 for corrupt gzip, got %v", err)
	}
}

// TestLines checks line splitting across endings and edge shapes.
func TestLines(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`lines "a\nb\nc\n"`, `["a", "b", "c"]`},
		{`lines "a\nb"`, `["a", "b"]`},
		{`lines "a\r\nb\r\n"`, `["a", "b"]`},
		{`lines "one"`, `["one"]`},
		{`lines "a\n\nb\n"`, `["a", "", "b"]`},
		{`lines ""`, "[]"},
	}

	for _, tt := range tests {
		result := mustEval(t, tt.input)
		if got := deepInspect(t, result); got != tt.expected {
			t.Errorf("Expected %s, got %s for input %q", tt.expected, got, tt.input)
		}
	}
}

// TestLinesIsLazy checks that lines are produced on demand.
func TestLinesIsLazy(t *testing.T) {
	result := mustEval(t, `lines "a\nb\nc\n"`)
	list := result.(*List)

	if list.Pending == nil {
		t.Fatalf("Expected pending lines")
	}
	if err := list.RealizeN(1); err != nil {
		t.Fatalf("RealizeN failed: %s", err.Message)
	}
	if len(list.Elements) != 1 || list.Elements[0].Inspect() != `"a"` {
		t.Errorf("Unexpected first line: %s", list.Inspect())
	}
	if list.Pending == nil {
		t.Errorf("Expected the remaining lines to stay pending")
	}
}
