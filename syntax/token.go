// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package syntax

import "fmt"

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	TokenBoolLiteral
	TokenStringLiteral

	// Extension markers
	TokenFlag      // $name
	TokenStage     // @Name
	TokenDirective // #include, #define

	// Operators
	TokenPlus                // +
	TokenMinus               // -
	TokenStar                // *
	TokenSlash               // /
	TokenPercent             // %
	TokenAmpersand           // &
	TokenPipe                // |
	TokenCaret               // ^
	TokenTilde               // ~
	TokenBang                // !
	TokenEqual               // =
	TokenLess                // <
	TokenGreater             // >
	TokenDot                 // .
	TokenComma               // ,
	TokenColon               // :
	TokenSemicolon           // ;
	TokenQuestion            // ?
	TokenArrow               // ->
	TokenPlusPlus            // ++
	TokenMinusMinus          // --
	TokenEqualEqual          // ==
	TokenBangEqual           // !=
	TokenLessEqual           // <=
	TokenGreaterEqual        // >=
	TokenAmpAmp              // &&
	TokenPipePipe            // ||
	TokenLessLess            // <<
	TokenGreaterGreater      // >>
	TokenPlusEqual           // +=
	TokenMinusEqual          // -=
	TokenStarEqual           // *=
	TokenSlashEqual          // /=
	TokenPercentEqual        // %=
	TokenAmpEqual            // &=
	TokenPipeEqual           // |=
	TokenCaretEqual          // ^=
	TokenLessLessEqual       // <<=
	TokenGreaterGreaterEqual // >>=

	// Delimiters
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBrace    // {
	TokenRightBrace   // }
	TokenLeftBracket  // [
	TokenRightBracket // ]

	// Keywords
	TokenBreak
	TokenBuffer
	TokenConst
	TokenContinue
	TokenDiscard
	TokenElse
	TokenFor
	TokenIf
	TokenIn
	TokenInout
	TokenLayout
	TokenOut
	TokenPushConstant
	TokenReadonly
	TokenReturn
	TokenStruct
	TokenUniform
	TokenWhile
)

var tokenNames = [...]string{
	TokenEOF:                 "EOF",
	TokenIdent:               "identifier",
	TokenIntLiteral:          "integer literal",
	TokenFloatLiteral:        "float literal",
	TokenBoolLiteral:         "bool literal",
	TokenStringLiteral:       "string literal",
	TokenFlag:                "custom flag",
	TokenStage:               "stage marker",
	TokenDirective:           "directive",
	TokenPlus:                "'+'",
	TokenMinus:               "'-'",
	TokenStar:                "'*'",
	TokenSlash:               "'/'",
	TokenPercent:             "'%'",
	TokenAmpersand:           "'&'",
	TokenPipe:                "'|'",
	TokenCaret:               "'^'",
	TokenTilde:               "'~'",
	TokenBang:                "'!'",
	TokenEqual:               "'='",
	TokenLess:                "'<'",
	TokenGreater:             "'>'",
	TokenDot:                 "'.'",
	TokenComma:               "','",
	TokenColon:               "':'",
	TokenSemicolon:           "';'",
	TokenQuestion:            "'?'",
	TokenArrow:               "'->'",
	TokenPlusPlus:            "'++'",
	TokenMinusMinus:          "'--'",
	TokenEqualEqual:          "'=='",
	TokenBangEqual:           "'!='",
	TokenLessEqual:           "'<='",
	TokenGreaterEqual:        "'>='",
	TokenAmpAmp:              "'&&'",
	TokenPipePipe:            "'||'",
	TokenLessLess:            "'<<'",
	TokenGreaterGreater:      "'>>'",
	TokenPlusEqual:           "'+='",
	TokenMinusEqual:          "'-='",
	TokenStarEqual:           "'*='",
	TokenSlashEqual:          "'/='",
	TokenPercentEqual:        "'%='",
	TokenAmpEqual:            "'&='",
	TokenPipeEqual:           "'|='",
	TokenCaretEqual:          "'^='",
	TokenLessLessEqual:       "'<<='",
	TokenGreaterGreaterEqual: "'>>='",
	TokenLeftParen:           "'('",
	TokenRightParen:          "')'",
	TokenLeftBrace:           "'{'",
	TokenRightBrace:          "'}'",
	TokenLeftBracket:         "'['",
	TokenRightBracket:        "']'",
	TokenBreak:               "'break'",
	TokenBuffer:              "'buffer'",
	TokenConst:               "'const'",
	TokenContinue:            "'continue'",
	TokenDiscard:             "'discard'",
	TokenElse:                "'else'",
	TokenFor:                 "'for'",
	TokenIf:                  "'if'",
	TokenIn:                  "'in'",
	TokenInout:               "'inout'",
	TokenLayout:              "'layout'",
	TokenOut:                 "'out'",
	TokenPushConstant:        "'push_constant'",
	TokenReadonly:            "'readonly'",
	TokenReturn:              "'return'",
	TokenStruct:              "'struct'",
	TokenUniform:             "'uniform'",
	TokenWhile:               "'while'",
}

// String returns a human-readable name for the token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) && tokenNames[k] != "" {
		return tokenNames[k]
	}
	return fmt.Sprintf("token(%d)", k)
}

// keywords maps reserved words to their token kinds.
// Type names are not keywords; they lex as identifiers and are
// resolved against the builtin table.
var keywords = map[string]TokenKind{
	"break":         TokenBreak,
	"buffer":        TokenBuffer,
	"const":         TokenConst,
	"continue":      TokenContinue,
	"discard":       TokenDiscard,
	"else":          TokenElse,
	"false":         TokenBoolLiteral,
	"for":           TokenFor,
	"if":            TokenIf,
	"in":            TokenIn,
	"inout":         TokenInout,
	"layout":        TokenLayout,
	"out":           TokenOut,
	"push_constant": TokenPushConstant,
	"readonly":      TokenReadonly,
	"return":        TokenReturn,
	"struct":        TokenStruct,
	"true":          TokenBoolLiteral,
	"uniform":       TokenUniform,
	"while":         TokenWhile,
}

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Source string // name of the unit the token came from
	Line   int
	Column int
	Offset int
}

// Span returns the source location of the token.
func (t Token) Span() Span {
	return Span{
		Source: t.Source,
		Start:  Position{Line: t.Line, Column: t.Column, Offset: t.Offset},
	}
}

// Position represents a location in source code.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span represents the starting location of a node in a named source unit.
type Span struct {
	Source string
	Start  Position
}

// String formats the span as source:line:column.
func (s Span) String() string {
	if s.Source == "" {
		return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Source, s.Start.Line, s.Start.Column)
}

// IsValid reports whether the span points at a real location.
func (s Span) IsValid() bool {
	return s.Start.Line > 0
}
