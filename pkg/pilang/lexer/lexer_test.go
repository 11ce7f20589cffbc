package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `json
get 1
assoc("a", 3 + 4.5)
[1, -2] {"k": true, "n": null}
>> k: v
<< k: v * 2
this and false or true
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "json"},
		{IDENT, "get"},
		{INT, "1"},
		{IDENT, "assoc"},
		{LPAREN, "("},
		{STRING, "a"},
		{COMMA, ","},
		{INT, "3"},
		{PLUS, "+"},
		{FLOAT, "4.5"},
		{RPAREN, ")"},
		{LBRACKET, "["},
		{INT, "1"},
		{COMMA, ","},
		{MINUS, "-"},
		{INT, "2"},
		{RBRACKET, "]"},
		{LBRACE, "{"},
		{STRING, "k"},
		{COLON, ":"},
		{TRUE, "true"},
		{COMMA, ","},
		{STRING, "n"},
		{COLON, ":"},
		{NULL, "null"},
		{RBRACE, "}"},
		{SHIFT_RIGHT, ">>"},
		{IDENT, "k"},
		{COLON, ":"},
		{IDENT, "v"},
		{SHIFT_LEFT, "<<"},
		{IDENT, "k"},
		{COLON, ":"},
		{IDENT, "v"},
		{ASTERISK, "*"},
		{INT, "2"},
		{IDENT, "this"},
		{AND, "and"},
		{FALSE, "false"},
		{OR, "or"},
		{TRUE, "true"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"plain"`, "plain"},
		{`"tab\there"`, "tab\there"},
		{`"line\nbreak"`, "line\nbreak"},
		{`"quote\"inside"`, `quote"inside`},
		{`"back\\slash"`, `back\slash`},
		{`"unknown\qescape"`, `unknown\qescape`},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Fatalf("input %q: expected STRING, got %q", tt.input, tok.Type)
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %q: literal = %q, want %q", tt.input, tok.Literal, tt.expected)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"never ends`)
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
	if tok.Literal != UnterminatedString {
		t.Errorf("literal = %q, want %q", tok.Literal, UnterminatedString)
	}
}

func TestComments(t *testing.T) {
	input := "json # parse the seed\n# a whole comment line\nget 0"

	expected := []struct {
		typ     TokenType
		literal string
	}{
		{IDENT, "json"},
		{IDENT, "get"},
		{INT, "0"},
		{EOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Literal != want.literal {
			t.Fatalf("tokens[%d] = (%q, %q), want (%q, %q)",
				i, tok.Type, tok.Literal, want.typ, want.literal)
		}
	}
}

func TestLineAndColumn(t *testing.T) {
	input := "json\nget 10"

	l := New(input)

	tok := l.NextToken() // json
	if tok.Line != 1 || tok.Column != 1 {
		t.Errorf("json at line %d column %d, want 1:1", tok.Line, tok.Column)
	}

	tok = l.NextToken() // get
	if tok.Line != 2 || tok.Column != 1 {
		t.Errorf("get at line %d column %d, want 2:1", tok.Line, tok.Column)
	}

	tok = l.NextToken() // 10
	if tok.Line != 2 || tok.Column != 5 {
		t.Errorf("10 at line %d column %d, want 2:5", tok.Line, tok.Column)
	}
}

func TestIllegalCharacters(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"5 > 3", ">"},
		{"5 < 3", "<"},
		{"a = 1", "="},
		{"x ; y", ";"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		var tok Token
		for tok = l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
			if tok.Type == ILLEGAL {
				break
			}
		}
		if tok.Type != ILLEGAL {
			t.Fatalf("input %q: expected an ILLEGAL token", tt.input)
		}
		if tok.Literal != tt.literal {
			t.Errorf("input %q: illegal literal = %q, want %q", tt.input, tok.Literal, tt.literal)
		}
	}
}
