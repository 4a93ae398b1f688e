// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package syntax

import "fmt"

// LexicalError reports a character sequence that cannot start any token.
type LexicalError struct {
	Message string
	Span    Span
}

// Error implements the error interface.
func (e *LexicalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// ParseError reports a token sequence that does not match the grammar,
// or a declaration that breaks a structural rule (duplicate field,
// misplaced unsized array).
type ParseError struct {
	Message  string
	Expected string // description of what the parser wanted; may be empty
	Found    Token
	Span     Span

	// Related points at a second location involved in the error,
	// such as the first declaration of a duplicated field.
	Related *Span
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("expected %s, found %s", e.Expected, describe(e.Found))
	}
	if e.Related != nil {
		return fmt.Sprintf("%s: %s (previously declared at %s)", e.Span, msg, e.Related)
	}
	return fmt.Sprintf("%s: %s", e.Span, msg)
}

func describe(tok Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of input"
	case TokenIdent, TokenIntLiteral, TokenFloatLiteral, TokenBoolLiteral:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Lexeme)
	case TokenFlag:
		return fmt.Sprintf("custom flag $%s", tok.Lexeme)
	case TokenStage:
		return fmt.Sprintf("stage marker @%s", tok.Lexeme)
	case TokenDirective:
		return fmt.Sprintf("directive #%s", tok.Lexeme)
	default:
		return tok.Kind.String()
	}
}
