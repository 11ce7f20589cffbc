// Package ast defines the nodes produced by the parser: one Command or
// Directive per input line, with Commands built from Expression trees.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/SuperCuber/pilang/pkg/pilang/lexer"
)

// Node is the interface implemented by all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Command is one executable line: an expression, a descend or an ascend.
type Command interface {
	Node
	commandNode()
}

// ============================================================================
// Commands
// ============================================================================

// ExpressionCommand wraps an expression used as a whole command
type ExpressionCommand struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (ec *ExpressionCommand) commandNode()         {}
func (ec *ExpressionCommand) TokenLiteral() string { return ec.Token.Literal }
func (ec *ExpressionCommand) String() string {
	if ec.Expression != nil {
		return ec.Expression.String()
	}
	return ""
}

// ShiftRight is the descend command: `>>` or `>> k: v`.
// Key and Value are both nil or both set.
type ShiftRight struct {
	Token lexer.Token // the >> token
	Key   *Identifier
	Value *Identifier
}

func (sr *ShiftRight) commandNode()         {}
func (sr *ShiftRight) TokenLiteral() string { return sr.Token.Literal }
func (sr *ShiftRight) String() string {
	if sr.Key != nil {
		return ">> " + sr.Key.String() + ": " + sr.Value.String()
	}
	return ">>"
}

// ShiftLeft is the ascend command: `<<` or `<< keyExpr: valueExpr`.
// KeyExpr and ValueExpr are both nil or both set.
type ShiftLeft struct {
	Token     lexer.Token // the << token
	KeyExpr   Expression
	ValueExpr Expression
}

func (sl *ShiftLeft) commandNode()         {}
func (sl *ShiftLeft) TokenLiteral() string { return sl.Token.Literal }
func (sl *ShiftLeft) String() string {
	if sl.KeyExpr != nil {
		return "<< " + sl.KeyExpr.String() + ": " + sl.ValueExpr.String()
	}
	return "<<"
}

// Directive is a host instruction such as `:undo` or `:save out.json`.
// The interpreter never sees these; the REPL and script runner act on them.
type Directive struct {
	Name string
	Args []string
}

func (d *Directive) TokenLiteral() string { return ":" + d.Name }
func (d *Directive) String() string {
	if len(d.Args) == 0 {
		return ":" + d.Name
	}
	return ":" + d.Name + " " + strings.Join(d.Args, " ")
}

// ============================================================================
// Expressions
// ============================================================================

// Identifier represents an identifier like `json` or `v`
type Identifier struct {
	Token lexer.Token // the IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral represents an unsigned integer literal
type IntegerLiteral struct {
	Token lexer.Token
	Value uint64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// FloatLiteral represents a floating point literal
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

// StringLiteral represents a quoted string literal
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// Boolean represents true or false
type Boolean struct {
	Token lexer.Token
	Value bool
}

func (b *Boolean) expressionNode()      {}
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) String() string       { return b.Token.Literal }

// NullLiteral represents the null keyword
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// This represents the current value keyword
type This struct {
	Token lexer.Token
}

func (t *This) expressionNode()      {}
func (t *This) TokenLiteral() string { return t.Token.Literal }
func (t *This) String() string       { return "this" }

// PrefixExpression represents a prefix operator expression like -x
type PrefixExpression struct {
	Token    lexer.Token // the prefix token, e.g. -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

// InfixExpression represents a binary operator expression like x + y
type InfixExpression struct {
	Token    lexer.Token // the operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// ListLiteral represents a list literal like [1, 2, 3]
type ListLiteral struct {
	Token    lexer.Token // the [ token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	var out bytes.Buffer

	elements := []string{}
	for _, el := range ll.Elements {
		elements = append(elements, el.String())
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

// DictEntry is one key/value pair of a DictLiteral. Keys are literal strings.
type DictEntry struct {
	Key   string
	Value Expression
}

// DictLiteral represents a dict literal like {"a": 1, "b": 2}
type DictLiteral struct {
	Token   lexer.Token // the { token
	Entries []DictEntry
}

func (dl *DictLiteral) expressionNode()      {}
func (dl *DictLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DictLiteral) String() string {
	var out bytes.Buffer

	pairs := []string{}
	for _, entry := range dl.Entries {
		pairs = append(pairs, strconv.Quote(entry.Key)+": "+entry.Value.String())
	}

	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")

	return out.String()
}

// CallExpression represents a function call, either parenthesized
// `get(x, 1)` or shell style `get 1`
type CallExpression struct {
	Token     lexer.Token // the function name token
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}
