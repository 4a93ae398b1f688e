// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/ashl/builtins"
	"github.com/gogpu/ashl/syntax"
)

// GLSL operator precedence, lowest first. An operand is parenthesized
// when its own precedence is below what its position requires.
const (
	precLowest = iota
	precTernary
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

type operator struct {
	text string
	prec int
}

var binaryOperators = map[syntax.TokenKind]operator{
	syntax.TokenPipePipe:       {"||", precLogicalOr},
	syntax.TokenAmpAmp:         {"&&", precLogicalAnd},
	syntax.TokenPipe:           {"|", precBitOr},
	syntax.TokenCaret:          {"^", precBitXor},
	syntax.TokenAmpersand:      {"&", precBitAnd},
	syntax.TokenEqualEqual:     {"==", precEquality},
	syntax.TokenBangEqual:      {"!=", precEquality},
	syntax.TokenLess:           {"<", precRelational},
	syntax.TokenLessEqual:      {"<=", precRelational},
	syntax.TokenGreater:        {">", precRelational},
	syntax.TokenGreaterEqual:   {">=", precRelational},
	syntax.TokenLessLess:       {"<<", precShift},
	syntax.TokenGreaterGreater: {">>", precShift},
	syntax.TokenPlus:           {"+", precAdditive},
	syntax.TokenMinus:          {"-", precAdditive},
	syntax.TokenStar:           {"*", precMultiplicative},
	syntax.TokenSlash:          {"/", precMultiplicative},
	syntax.TokenPercent:        {"%", precMultiplicative},
}

var unaryOperators = map[syntax.TokenKind]string{
	syntax.TokenMinus:      "-",
	syntax.TokenPlus:       "+",
	syntax.TokenBang:       "!",
	syntax.TokenTilde:      "~",
	syntax.TokenPlusPlus:   "++",
	syntax.TokenMinusMinus: "--",
}

var assignOperators = map[syntax.TokenKind]string{
	syntax.TokenEqual:               "=",
	syntax.TokenPlusEqual:           "+=",
	syntax.TokenMinusEqual:          "-=",
	syntax.TokenStarEqual:           "*=",
	syntax.TokenSlashEqual:          "/=",
	syntax.TokenPercentEqual:        "%=",
	syntax.TokenAmpEqual:            "&=",
	syntax.TokenPipeEqual:           "|=",
	syntax.TokenCaretEqual:          "^=",
	syntax.TokenLessLessEqual:       "<<=",
	syntax.TokenGreaterGreaterEqual: ">>=",
}

// writeExpression renders e, parenthesized if its precedence is below minPrec.
func (w *Writer) writeExpression(e syntax.Expr, minPrec int) (string, error) {
	text, prec, err := w.expression(e)
	if err != nil {
		return "", err
	}
	if prec < minPrec {
		return "(" + text + ")", nil
	}
	return text, nil
}

// expression renders e and reports its precedence.
//
//nolint:gocyclo,cyclop // Expression kinds require many cases
func (w *Writer) expression(e syntax.Expr) (string, int, error) {
	switch e := e.(type) {
	case *syntax.Literal:
		return e.Value, precPrimary, nil

	case *syntax.Ident:
		name, err := w.identName(e)
		return name, precPrimary, err

	case *syntax.UnaryExpr:
		return w.writeUnary(e)

	case *syntax.BinaryExpr:
		return w.writeBinary(e)

	case *syntax.TernaryExpr:
		cond, err := w.writeExpression(e.Cond, precLogicalOr)
		if err != nil {
			return "", 0, err
		}
		accept, err := w.writeExpression(e.Then, precLowest)
		if err != nil {
			return "", 0, err
		}
		reject, err := w.writeExpression(e.Else, precTernary)
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("%s ? %s : %s", cond, accept, reject), precTernary, nil

	case *syntax.CallExpr:
		return w.writeCall(e)

	case *syntax.MemberExpr:
		return w.writeMember(e)

	case *syntax.IndexExpr:
		base, err := w.postfixBase(e.X)
		if err != nil {
			return "", 0, err
		}
		index, err := w.writeExpression(e.Index, precLowest)
		if err != nil {
			return "", 0, err
		}
		return base + "[" + index + "]", precPostfix, nil

	case *syntax.ArrayLiteral:
		return "", 0, &AssertionError{Message: "array literal outside a variable initializer", Span: e.Span}

	default:
		return "", 0, &AssertionError{Message: fmt.Sprintf("unexpected expression %T", e)}
	}
}

// identName returns the output spelling of a resolved identifier.
func (w *Writer) identName(id *syntax.Ident) (string, error) {
	switch id.Ref.Kind {
	case syntax.RefSymbol:
		if int(id.Ref.Index) >= len(w.module.Symbols) {
			return "", &AssertionError{Message: fmt.Sprintf("identifier %s has a dangling binding", id.Name), Span: id.Span}
		}
		return w.symbolName(int(id.Ref.Index)), nil
	case syntax.RefBuiltin:
		e := builtins.At(int(id.Ref.Index))
		if e.Kind == builtins.KindType {
			return e.GLSL, nil
		}
		return e.Name, nil
	default:
		return "", &AssertionError{Message: fmt.Sprintf("unresolved identifier %s", id.Name), Span: id.Span}
	}
}

// writeUnary writes a unary expression.
func (w *Writer) writeUnary(u *syntax.UnaryExpr) (string, int, error) {
	op, ok := unaryOperators[u.Op]
	if !ok {
		return "", 0, &AssertionError{Message: fmt.Sprintf("unsupported unary operator %s", u.Op), Span: u.Span}
	}

	if u.Postfix {
		operand, err := w.postfixBase(u.X)
		if err != nil {
			return "", 0, err
		}
		return operand + op, precPostfix, nil
	}

	operand, err := w.writeExpression(u.X, precUnary)
	if err != nil {
		return "", 0, err
	}
	// Keep "- -x" from lexing as "--x".
	if strings.HasPrefix(operand, "-") && op[len(op)-1] == '-' ||
		strings.HasPrefix(operand, "+") && op[len(op)-1] == '+' {
		operand = "(" + operand + ")"
	}
	return op + operand, precUnary, nil
}

// writeBinary writes a binary expression. Operators are left
// associative, so the right operand needs a strictly higher precedence.
func (w *Writer) writeBinary(b *syntax.BinaryExpr) (string, int, error) {
	op, ok := binaryOperators[b.Op]
	if !ok {
		return "", 0, &AssertionError{Message: fmt.Sprintf("unsupported binary operator %s", b.Op), Span: b.Span}
	}
	left, err := w.writeExpression(b.Left, op.prec)
	if err != nil {
		return "", 0, err
	}
	right, err := w.writeExpression(b.Right, op.prec+1)
	if err != nil {
		return "", 0, err
	}
	return left + " " + op.text + " " + right, op.prec, nil
}

// writeCall writes a function call, constructor, or x.length().
func (w *Writer) writeCall(c *syntax.CallExpr) (string, int, error) {
	var callee string
	switch fn := c.Func.(type) {
	case *syntax.Ident:
		name, err := w.identName(fn)
		if err != nil {
			return "", 0, err
		}
		callee = name
	case *syntax.MemberExpr:
		base, err := w.postfixBase(fn.X)
		if err != nil {
			return "", 0, err
		}
		callee = base + "." + fn.Name
	default:
		return "", 0, &AssertionError{Message: fmt.Sprintf("unexpected callee %T", fn), Span: c.Span}
	}

	args := make([]string, 0, len(c.Args))
	for _, arg := range c.Args {
		s, err := w.writeExpression(arg, precLowest)
		if err != nil {
			return "", 0, err
		}
		args = append(args, s)
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), precPostfix, nil
}

// writeMember writes field access and swizzles.
func (w *Writer) writeMember(m *syntax.MemberExpr) (string, int, error) {
	base, err := w.postfixBase(m.X)
	if err != nil {
		return "", 0, err
	}
	switch m.Field {
	case syntax.FieldUnresolved:
		return "", 0, &AssertionError{Message: fmt.Sprintf("unresolved member .%s", m.Name), Span: m.Span}
	case syntax.FieldSwizzle, syntax.FieldLength:
		return base + "." + m.Name, precPostfix, nil
	default:
		// Field names were escaped where the struct was written.
		return base + "." + escapeKeyword(m.Name), precPostfix, nil
	}
}

// postfixBase renders the operand of a postfix operator. Literals are
// parenthesized so that 1.0.x is not produced.
func (w *Writer) postfixBase(x syntax.Expr) (string, error) {
	if _, ok := x.(*syntax.Literal); ok {
		s, err := w.writeExpression(x, precPrimary)
		if err != nil {
			return "", err
		}
		return "(" + s + ")", nil
	}
	return w.writeExpression(x, precPostfix)
}
