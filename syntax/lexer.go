// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes shader source code.
type Lexer struct {
	source string
	name   string
	pos    int
	line   int
	column int

	start       int
	startLine   int
	startColumn int

	tokens []Token
}

// NewLexer creates a new lexer for the given source. The name identifies
// the unit in spans and error messages.
func NewLexer(source, name string) *Lexer {
	// Estimate ~1 token per 6 characters of source.
	estTokens := len(source) / 6
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		name:   name,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize is shorthand for NewLexer(source, name).Tokenize().
func Tokenize(source, name string) ([]Token, error) {
	return NewLexer(source, name).Tokenize()
}

// Tokenize returns all tokens from the source, terminated by TokenEOF.
// Comments and whitespace are discarded.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.startLine = l.line
		l.startColumn = l.column
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Source: l.name,
		Line:   l.line,
		Column: l.column,
		Offset: l.pos,
	})

	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	r := l.advance()

	switch r {
	// Single-character tokens
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case ';':
		l.addToken(TokenSemicolon)
	case '?':
		l.addToken(TokenQuestion)
	case '~':
		l.addToken(TokenTilde)
	case '.':
		if isDigit(l.peek()) {
			l.fraction()
		} else {
			l.addToken(TokenDot)
		}
	case '%':
		if l.match('=') {
			l.addToken(TokenPercentEqual)
		} else {
			l.addToken(TokenPercent)
		}
	case '^':
		if l.match('=') {
			l.addToken(TokenCaretEqual)
		} else {
			l.addToken(TokenCaret)
		}

	// Operators that could be one or two characters
	case '+':
		if l.match('+') {
			l.addToken(TokenPlusPlus)
		} else if l.match('=') {
			l.addToken(TokenPlusEqual)
		} else {
			l.addToken(TokenPlus)
		}
	case '-':
		if l.match('-') {
			l.addToken(TokenMinusMinus)
		} else if l.match('=') {
			l.addToken(TokenMinusEqual)
		} else if l.match('>') {
			l.addToken(TokenArrow)
		} else {
			l.addToken(TokenMinus)
		}
	case '*':
		if l.match('=') {
			l.addToken(TokenStarEqual)
		} else {
			l.addToken(TokenStar)
		}
	case '/':
		if l.match('/') {
			// Line comment
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		} else if l.match('*') {
			return l.blockComment()
		} else if l.match('=') {
			l.addToken(TokenSlashEqual)
		} else {
			l.addToken(TokenSlash)
		}
	case '=':
		if l.match('=') {
			l.addToken(TokenEqualEqual)
		} else {
			l.addToken(TokenEqual)
		}
	case '!':
		if l.match('=') {
			l.addToken(TokenBangEqual)
		} else {
			l.addToken(TokenBang)
		}
	case '<':
		if l.match('<') {
			if l.match('=') {
				l.addToken(TokenLessLessEqual)
			} else {
				l.addToken(TokenLessLess)
			}
		} else if l.match('=') {
			l.addToken(TokenLessEqual)
		} else {
			l.addToken(TokenLess)
		}
	case '>':
		if l.match('>') {
			if l.match('=') {
				l.addToken(TokenGreaterGreaterEqual)
			} else {
				l.addToken(TokenGreaterGreater)
			}
		} else if l.match('=') {
			l.addToken(TokenGreaterEqual)
		} else {
			l.addToken(TokenGreater)
		}
	case '&':
		if l.match('&') {
			l.addToken(TokenAmpAmp)
		} else if l.match('=') {
			l.addToken(TokenAmpEqual)
		} else {
			l.addToken(TokenAmpersand)
		}
	case '|':
		if l.match('|') {
			l.addToken(TokenPipePipe)
		} else if l.match('=') {
			l.addToken(TokenPipeEqual)
		} else {
			l.addToken(TokenPipe)
		}

	// Extension markers
	case '$':
		return l.marker(TokenFlag, "custom flag")
	case '@':
		return l.marker(TokenStage, "stage marker")
	case '#':
		return l.directive()
	case '"':
		return l.stringLiteral()

	// Whitespace
	case ' ', '\r', '\t', '\f', '\v':
		// Ignore whitespace
	case '\n':
		l.line++
		l.column = 1

	default:
		if isDigit(r) {
			l.number()
		} else if isAlpha(r) || r == '_' {
			l.identifier()
		} else {
			return l.errorf("unexpected character %q", r)
		}
	}

	return nil
}

// blockComment skips a /* */ comment. Comments do not nest.
func (l *Lexer) blockComment() error {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		if l.advance() == '\n' {
			l.line++
			l.column = 1
		}
	}
	return l.errorf("unterminated block comment")
}

func (l *Lexer) stringLiteral() error {
	for l.peek() != '"' {
		if l.isAtEnd() || l.peek() == '\n' {
			return l.errorf("unterminated string literal")
		}
		l.advance()
	}
	l.advance() // closing quote
	l.addToken(TokenStringLiteral)
	return nil
}

// marker scans $name and @Name. The lexeme excludes the sigil.
func (l *Lexer) marker(kind TokenKind, what string) error {
	if !isAlpha(l.peek()) && l.peek() != '_' {
		return l.errorf("expected name after %s sigil", what)
	}
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	l.addToken(kind)
	return nil
}

func (l *Lexer) directive() error {
	for isAlpha(l.peek()) {
		l.advance()
	}
	switch l.source[l.start+1 : l.pos] {
	case "include", "define":
		l.addToken(TokenDirective)
		return nil
	case "":
		return l.errorf("expected directive name after '#'")
	default:
		return l.errorf("unknown directive %q", l.source[l.start:l.pos])
	}
}

func (l *Lexer) number() {
	if l.source[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
		if l.peek() == 'u' || l.peek() == 'U' {
			l.advance()
		}
		l.addToken(TokenIntLiteral)
		return
	}

	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && l.dotStartsFraction() {
		l.advance() // consume '.'
		l.fraction()
		return
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		l.exponent()
		l.floatSuffix()
		l.addToken(TokenFloatLiteral)
		return
	}

	if l.peek() == 'f' || l.peek() == 'F' {
		l.advance()
		l.addToken(TokenFloatLiteral)
		return
	}

	if l.peek() == 'u' || l.peek() == 'U' {
		l.advance()
	}

	l.addToken(TokenIntLiteral)
}

// dotStartsFraction reports whether the '.' after an integer part
// continues the literal. "1.", "1.5", "1.e2" and "1.f" are floats; "1.x"
// is a member access on 1.
func (l *Lexer) dotStartsFraction() bool {
	rest := l.source[l.pos+1:]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case 'e', 'E':
		exp := rest[1:]
		if exp != "" && (exp[0] == '+' || exp[0] == '-') {
			exp = exp[1:]
		}
		return exp != "" && isDigit(rune(exp[0]))
	case 'f', 'F':
		r, _ := utf8.DecodeRuneInString(rest[1:])
		return len(rest) == 1 || !isAlphaNumeric(r) && r != '_'
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !isAlpha(r) && r != '_'
}

// fraction scans the digits after a decimal point.
func (l *Lexer) fraction() {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		l.exponent()
	}
	l.floatSuffix()
	l.addToken(TokenFloatLiteral)
}

func (l *Lexer) exponent() {
	l.advance()
	if l.peek() == '+' || l.peek() == '-' {
		l.advance()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) floatSuffix() {
	if l.peek() == 'f' || l.peek() == 'F' {
		l.advance()
	}
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := l.source[l.start:l.pos]
	if kind, ok := keywords[text]; ok {
		l.addToken(kind)
		return
	}
	l.addToken(TokenIdent)
}

func (l *Lexer) addToken(kind TokenKind) {
	lexeme := l.source[l.start:l.pos]
	switch kind {
	case TokenFlag, TokenStage, TokenDirective:
		lexeme = lexeme[1:]
	case TokenStringLiteral:
		lexeme = lexeme[1 : len(lexeme)-1]
	}
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: lexeme,
		Source: l.name,
		Line:   l.startLine,
		Column: l.startColumn,
		Offset: l.start,
	})
}

func (l *Lexer) errorf(format string, args ...any) error {
	return &LexicalError{
		Message: fmt.Sprintf(format, args...),
		Span: Span{
			Source: l.name,
			Start:  Position{Line: l.startLine, Column: l.startColumn, Offset: l.start},
		},
	}
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r != expected {
		return false
	}
	l.pos += size
	l.column++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
