// Package parser turns one line of shell input into an ast.Command or an
// ast.Directive. Commands are expressions plus the two navigation forms
// `>>` and `<<`; directives are host instructions introduced by `:`.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SuperCuber/pilang/pkg/pilang/ast"
	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
	"github.com/SuperCuber/pilang/pkg/pilang/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	LOGIC_OR  // or
	LOGIC_AND // and
	SUM       // + or -
	PRODUCT   // * or /
	PREFIX    // -x
	CALL      // get(x) or `get x`
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.OR:       LOGIC_OR,
	lexer.AND:      LOGIC_AND,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.SLASH:    PRODUCT,
	lexer.ASTERISK: PRODUCT,
	lexer.LPAREN:   CALL,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	errors []*perrors.PiError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.THIS, p.parseThis)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseListLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseDictLiteral)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.AND, p.parseInfixExpression)
	p.registerInfix(lexer.OR, p.parseInfixExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)

	// Read two tokens so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Errors returns the structured errors collected while parsing
func (p *Parser) Errors() []*perrors.PiError {
	return p.errors
}

// addError records a structured error.
// Only the first error is kept - subsequent errors are usually cascading noise.
func (p *Parser) addError(err *perrors.PiError) {
	if len(p.errors) > 0 {
		return
	}
	p.errors = append(p.errors, err)
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseLine classifies and parses a single line of input. Exactly one of
// the three results is non-nil, except for blank lines where all are nil.
func ParseLine(line string) (ast.Command, *ast.Directive, *perrors.PiError) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil, nil
	}

	if strings.HasPrefix(trimmed, ":") {
		fields := strings.Fields(trimmed[1:])
		if len(fields) == 0 {
			return nil, nil, perrors.NewWithPosition("SYN-0004", 1, 1, map[string]any{"Token": ":"})
		}
		return nil, &ast.Directive{Name: fields[0], Args: fields[1:]}, nil
	}

	p := New(lexer.New(line))
	cmd := p.ParseCommand()
	if len(p.errors) > 0 {
		return nil, nil, p.errors[0]
	}
	return cmd, nil, nil
}

// ParseCommand parses one command and requires the line to be fully
// consumed. Returns nil for an empty line or on error.
func (p *Parser) ParseCommand() ast.Command {
	var cmd ast.Command

	switch p.curToken.Type {
	case lexer.EOF:
		return nil
	case lexer.SHIFT_RIGHT:
		cmd = p.parseShiftRight()
	case lexer.SHIFT_LEFT:
		cmd = p.parseShiftLeft()
	default:
		tok := p.curToken
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		cmd = &ast.ExpressionCommand{Token: tok, Expression: expr}
	}

	if cmd != nil && !p.peekTokenIs(lexer.EOF) {
		p.peekError(lexer.EOF)
		return nil
	}

	return cmd
}

// parseShiftRight parses `>>` optionally followed by `key: value` names
func (p *Parser) parseShiftRight() ast.Command {
	cmd := &ast.ShiftRight{Token: p.curToken}

	if p.peekTokenIs(lexer.EOF) {
		return cmd
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	cmd.Key = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	cmd.Value = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	return cmd
}

// parseShiftLeft parses `<<` optionally followed by `keyExpr: valueExpr`
func (p *Parser) parseShiftLeft() ast.Command {
	cmd := &ast.ShiftLeft{Token: p.curToken}

	if p.peekTokenIs(lexer.EOF) {
		return cmd
	}

	p.nextToken()
	cmd.KeyExpr = p.parseExpression(LOWEST)
	if cmd.KeyExpr == nil {
		return nil
	}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}

	p.nextToken()
	cmd.ValueExpr = p.parseExpression(LOWEST)
	if cmd.ValueExpr == nil {
		return nil
	}

	return cmd
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError()
		return nil
	}

	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// parseIdentifier parses an identifier, turning it into a shell-style call
// when operands follow it on the same line: `get 1` becomes get(1).
func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.peekStartsArgument() {
		return ident
	}

	call := &ast.CallExpression{Token: ident.Token, Function: ident}
	for p.peekStartsArgument() {
		p.nextToken()
		arg := p.parseShellArgument()
		if arg == nil {
			return nil
		}
		call.Arguments = append(call.Arguments, arg)
	}
	return call
}

// peekStartsArgument reports whether the peek token can begin a shell-style
// call argument. Operators are excluded so `x - 1` stays a subtraction.
func (p *Parser) peekStartsArgument() bool {
	switch p.peekToken.Type {
	case lexer.IDENT, lexer.INT, lexer.FLOAT, lexer.STRING,
		lexer.TRUE, lexer.FALSE, lexer.NULL, lexer.THIS,
		lexer.LBRACKET, lexer.LBRACE:
		return true
	}
	return false
}

// parseShellArgument parses one argument of a shell-style call. A bare
// identifier stays a reference so `f a b` is f(a, b), not f(a(b)).
func (p *Parser) parseShellArgument() ast.Expression {
	if p.curTokenIs(lexer.IDENT) {
		return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	return p.parseExpression(PREFIX)
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseUint(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError(perrors.NewSimple(perrors.ClassSyntax,
			fmt.Sprintf("could not parse %q as integer", p.curToken.Literal)).
			WithPosition(p.curToken.Line, p.curToken.Column))
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(perrors.NewSimple(perrors.ClassSyntax,
			fmt.Sprintf("could not parse %q as float", p.curToken.Literal)).
			WithPosition(p.curToken.Line, p.curToken.Column))
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curToken.Type == lexer.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseThis() ast.Expression {
	return &ast.This{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	list.Elements = p.parseExpressionList(lexer.RBRACKET)
	if list.Elements == nil {
		return nil
	}
	return list
}

// parseDictLiteral parses `{"key": expr, ...}`. Keys are literal strings.
func (p *Parser) parseDictLiteral() ast.Expression {
	dict := &ast.DictLiteral{Token: p.curToken}

	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.expectPeek(lexer.STRING) {
			return nil
		}
		key := p.curToken.Literal

		if !p.expectPeek(lexer.COLON) {
			return nil
		}

		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}

		dict.Entries = append(dict.Entries, ast.DictEntry{Key: key, Value: value})

		if !p.peekTokenIs(lexer.RBRACE) {
			if !p.expectPeek(lexer.COMMA) {
				return nil
			}
		}
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}

	return dict
}

// parseExpressionList parses a comma-separated expression list up to end.
// Returns a non-nil (possibly empty) slice on success, nil on error.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	list = append(list, expr)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume comma
		// Allow a trailing comma before the closing delimiter
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		list = append(list, expr)
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

// parseCallExpression parses the parenthesized call form `name(args)`
func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.addError(perrors.NewWithPosition("SYN-0004",
			p.curToken.Line, p.curToken.Column,
			map[string]any{"Token": "("}))
		return nil
	}

	call := &ast.CallExpression{Token: ident.Token, Function: ident}
	call.Arguments = p.parseExpressionList(lexer.RPAREN)
	if call.Arguments == nil {
		return nil
	}
	return call
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	got := p.peekToken.Literal
	if got == "" {
		got = readableTokenName(p.peekToken.Type)
	}

	// Report after the last successfully parsed token
	line := p.curToken.Line
	column := p.curToken.Column + len(p.curToken.Literal)

	p.addError(perrors.NewWithPosition("SYN-0003", line, column, map[string]any{
		"Expected": readableTokenName(t),
		"Got":      got,
	}))
}

func (p *Parser) noPrefixParseFnError() {
	tok := p.curToken

	if tok.Type == lexer.ILLEGAL {
		if tok.Literal == lexer.UnterminatedString {
			p.addError(perrors.NewWithPosition("SYN-0002", tok.Line, tok.Column, nil))
		} else {
			p.addError(perrors.NewWithPosition("SYN-0001", tok.Line, tok.Column,
				map[string]any{"Char": tok.Literal}))
		}
		return
	}

	literal := tok.Literal
	if literal == "" {
		literal = readableTokenName(tok.Type)
	}
	p.addError(perrors.NewWithPosition("SYN-0004", tok.Line, tok.Column,
		map[string]any{"Token": literal}))
}

func (p *Parser) peekPrecedence() int {
	if precedence, ok := precedences[p.peekToken.Type]; ok {
		return precedence
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if precedence, ok := precedences[p.curToken.Type]; ok {
		return precedence
	}
	return LOWEST
}

// readableTokenName renders a token type for error messages
func readableTokenName(t lexer.TokenType) string {
	switch t {
	case lexer.EOF:
		return "end of line"
	case lexer.IDENT:
		return "an identifier"
	case lexer.STRING:
		return "a string"
	case lexer.COLON:
		return ":"
	case lexer.COMMA:
		return ","
	case lexer.RPAREN:
		return ")"
	case lexer.RBRACKET:
		return "]"
	case lexer.RBRACE:
		return "}"
	default:
		return t.String()
	}
}
