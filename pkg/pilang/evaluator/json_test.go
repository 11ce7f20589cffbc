package evaluator

import (
	"math"
	"strings"
	"testing"
)

// TestParseJSONScalars checks the number model: whole non-negative
// numbers are integers, everything else floats.
func TestParseJSONScalars(t *testing.T) {
	tests := []struct {
		input    string
		expected Object
	}{
		{"1", &Integer{Value: 1}},
		{"0", &Integer{Value: 0}},
		{"18446744073709551615", &Integer{Value: math.MaxUint64}},
		{"-1", &Float{Value: -1}},
		{"1.5", &Float{Value: 1.5}},
		{"1e3", &Float{Value: 1000}},
		{"18446744073709551616", &Float{Value: 18446744073709551616}},
		{`"hi"`, &String{Value: "hi"}},
		{"true", TRUE},
		{"false", FALSE},
		{"null", NULL},
	}

	for _, tt := range tests {
		result, err := ParseJSON(tt.input)
		if err != nil {
			t.Errorf("ParseJSON failed for %q: %s", tt.input, err.Message)
			continue
		}
		if !Equals(result, tt.expected) {
			t.Errorf("Expected %s, got %s for input %q", tt.expected.Inspect(), result.Inspect(), tt.input)
		}
	}
}

// TestParseJSONKeyOrder checks that object keys come out in document
// order, not sorted or shuffled.
func TestParseJSONKeyOrder(t *testing.T) {
	result, err := ParseJSON(`{"zebra": 1, "apple": 2, "mid": 3}`)
	if err != nil {
		t.Fatalf("ParseJSON failed: %s", err.Message)
	}
	if result.Inspect() != `{"zebra": 1, "apple": 2, "mid": 3}` {
		t.Errorf("Key order lost: %s", result.Inspect())
	}
}

// TestParseJSONDuplicateKeys checks that a repeated key keeps its first
// position but takes the last value.
func TestParseJSONDuplicateKeys(t *testing.T) {
	result, err := ParseJSON(`{"a": 1, "b": 2, "a": 3}`)
	if err != nil {
		t.Fatalf("ParseJSON failed: %s", err.Message)
	}
	if result.Inspect() != `{"a": 3, "b": 2}` {
		t.Errorf("Expected {\"a\": 3, \"b\": 2}, got %s", result.Inspect())
	}
}

// TestParseJSONNested checks mixed nesting round-trips through Inspect.
func TestParseJSONNested(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`[[1, 2], [3]]`, "[[1, 2], [3]]"},
		{`{"rows": [{"x": null}, true]}`, `{"rows": [{"x": null}, true]}`},
		{`[]`, "[]"},
		{`{}`, "{}"},
	}

	for _, tt := range tests {
		result, err := ParseJSON(tt.input)
		if err != nil {
			t.Errorf("ParseJSON failed for %q: %s", tt.input, err.Message)
			continue
		}
		if result.Inspect() != tt.expected {
			t.Errorf("Expected %s, got %s for input %q", tt.expected, result.Inspect(), tt.input)
		}
	}
}

// TestParseJSONErrors checks malformed documents and trailing garbage.
func TestParseJSONErrors(t *testing.T) {
	inputs := []string{
		"",
		"{",
		"[1,]",
		"{'a': 1}",
		"1 2",
		"[1] x",
	}

	for _, input := range inputs {
		_, err := ParseJSON(input)
		if err == nil {
			t.Errorf("Expected an error for input %q, got none", input)
			continue
		}
		if err.Code != "PARSE-0001" {
			t.Errorf("Expected PARSE-0001, got %s for input %q", err.Code, input)
		}
		if !strings.HasPrefix(err.Message, "Could not parse JSON") {
			t.Errorf("Unexpected message %q for input %q", err.Message, input)
		}
	}
}

// TestParseJSONLeadingTrailingSpace checks that plain whitespace around
// a document is fine.
func TestParseJSONLeadingTrailingSpace(t *testing.T) {
	result, err := ParseJSON("  [1, 2]\n")
	if err != nil {
		t.Fatalf("ParseJSON failed: %s", err.Message)
	}
	if result.Inspect() != "[1, 2]" {
		t.Errorf("Expected [1, 2], got %s", result.Inspect())
	}
}

// TestToJSON checks compact serialization with key order intact.
func TestToJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`{"b": [1, 2.5, true, null], "a": "x"}`, `{"b":[1,2.5,true,null],"a":"x"}`},
		{"[]", "[]"},
		{"{}", "{}"},
		{`"he said \"hi\""`, `"he said \"hi\""`},
	}

	for _, tt := range tests {
		parsed, err := ParseJSON(tt.input)
		if err != nil {
			t.Fatalf("ParseJSON failed for %q: %s", tt.input, err.Message)
		}
		out, err := ToJSON(parsed)
		if err != nil {
			t.Errorf("ToJSON failed for %q: %s", tt.input, err.Message)
			continue
		}
		if out != tt.expected {
			t.Errorf("Expected %s, got %s for input %q", tt.expected, out, tt.input)
		}
	}
}

// TestToJSONNonFiniteFloats checks that infinities and NaN degrade to
// null instead of producing invalid JSON.
func TestToJSONNonFiniteFloats(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		out, err := ToJSON(&Float{Value: v})
		if err != nil {
			t.Errorf("ToJSON failed for %v: %s", v, err.Message)
			continue
		}
		if out != "null" {
			t.Errorf("Expected null for %v, got %s", v, out)
		}
	}
}

// TestToJSONRejectsFunctions checks that functions have no JSON form.
func TestToJSONRejectsFunctions(t *testing.T) {
	_, err := ToJSON(builtins["len"])
	if err == nil {
		t.Fatalf("Expected an error, got none")
	}
	if err.Message != "cannot serialize a function as JSON" {
		t.Errorf("Unexpected message: %q", err.Message)
	}
}

// TestToJSONWritesRealizedPrefix checks that serialization never pulls
// from a pending stream.
func TestToJSONWritesRealizedPrefix(t *testing.T) {
	src := &countingStream{limit: 10}
	list := &List{Elements: []Object{&Integer{Value: 42}}, Pending: src}

	out, err := ToJSON(list)
	if err != nil {
		t.Fatalf("ToJSON failed: %s", err.Message)
	}
	if out != "[42]" {
		t.Errorf("Expected [42], got %s", out)
	}
	if src.pulls != 0 {
		t.Errorf("Expected no pulls, got %d", src.pulls)
	}
}
