// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/ashl/syntax"
)

// writeBlock writes the statements of a block at the current indentation.
func (w *Writer) writeBlock(block *syntax.BlockStmt) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Stmts {
		if err := w.writeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// writeStatement writes a single statement.
//
//nolint:gocyclo,cyclop // Statement kinds require many cases
func (w *Writer) writeStatement(stmt syntax.Stmt) error {
	switch s := stmt.(type) {
	case *syntax.BlockStmt:
		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(s); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")

	case *syntax.VarDecl:
		text, err := w.localVar(s)
		if err != nil {
			return err
		}
		w.writeLine("%s;", text)

	case *syntax.AssignStmt:
		text, err := w.assignment(s)
		if err != nil {
			return err
		}
		w.writeLine("%s;", text)

	case *syntax.ExprStmt:
		text, err := w.writeExpression(s.X, precLowest)
		if err != nil {
			return err
		}
		w.writeLine("%s;", text)

	case *syntax.IfStmt:
		return w.writeIf(s, false)

	case *syntax.ForStmt:
		return w.writeFor(s)

	case *syntax.WhileStmt:
		cond, err := w.writeExpression(s.Cond, precLowest)
		if err != nil {
			return err
		}
		w.writeLine("while (%s) {", cond)
		return w.writeBody(s.Body)

	case *syntax.ReturnStmt:
		if s.Value == nil {
			w.writeLine("return;")
			return nil
		}
		value, err := w.writeExpression(s.Value, precLowest)
		if err != nil {
			return err
		}
		w.writeLine("return %s;", value)

	case *syntax.BreakStmt:
		w.writeLine("break;")

	case *syntax.ContinueStmt:
		w.writeLine("continue;")

	case *syntax.DiscardStmt:
		w.writeLine("discard;")

	default:
		return &AssertionError{Message: fmt.Sprintf("unexpected statement %T", stmt)}
	}
	return nil
}

// writeBody writes an indented block and its closing brace. The opening
// line has already been written.
func (w *Writer) writeBody(body *syntax.BlockStmt) error {
	w.pushIndent()
	if err := w.writeBlock(body); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeIf writes an if statement. Else-if chains stay flat.
func (w *Writer) writeIf(s *syntax.IfStmt, chained bool) error {
	cond, err := w.writeExpression(s.Cond, precLowest)
	if err != nil {
		return err
	}
	if chained {
		w.writeLine("} else if (%s) {", cond)
	} else {
		w.writeLine("if (%s) {", cond)
	}
	w.pushIndent()
	if err := w.writeBlock(s.Then); err != nil {
		return err
	}
	w.popIndent()

	switch e := s.Else.(type) {
	case nil:
		w.writeLine("}")
		return nil
	case *syntax.IfStmt:
		return w.writeIf(e, true)
	case *syntax.BlockStmt:
		w.writeLine("} else {")
		return w.writeBody(e)
	default:
		return &AssertionError{Message: fmt.Sprintf("unexpected else branch %T", e), Span: s.Span}
	}
}

// writeFor writes a C-style for loop with an inline header.
func (w *Writer) writeFor(s *syntax.ForStmt) error {
	var init, cond, post string
	var err error
	if s.Init != nil {
		if init, err = w.inlineStatement(s.Init); err != nil {
			return err
		}
	}
	if s.Cond != nil {
		if cond, err = w.writeExpression(s.Cond, precLowest); err != nil {
			return err
		}
		cond = " " + cond
	}
	if s.Post != nil {
		if post, err = w.inlineStatement(s.Post); err != nil {
			return err
		}
		post = " " + post
	}
	w.writeLine("for (%s;%s;%s) {", init, cond, post)
	return w.writeBody(s.Body)
}

// inlineStatement renders a for-loop header clause without its semicolon.
func (w *Writer) inlineStatement(stmt syntax.Stmt) (string, error) {
	switch s := stmt.(type) {
	case *syntax.VarDecl:
		return w.localVar(s)
	case *syntax.AssignStmt:
		return w.assignment(s)
	case *syntax.ExprStmt:
		return w.writeExpression(s.X, precLowest)
	default:
		return "", &AssertionError{Message: fmt.Sprintf("unexpected statement %T in for header", stmt), Span: stmt.Pos()}
	}
}

func (w *Writer) localVar(v *syntax.VarDecl) (string, error) {
	idx, ok := w.symbolIndex(v)
	if !ok {
		return "", &AssertionError{Message: fmt.Sprintf("local %s has no symbol", v.Name), Span: v.Span}
	}
	return w.varDecl(v, w.symbolName(idx))
}

func (w *Writer) assignment(s *syntax.AssignStmt) (string, error) {
	op, ok := assignOperators[s.Op]
	if !ok {
		return "", &AssertionError{Message: fmt.Sprintf("unsupported assignment operator %s", s.Op), Span: s.Span}
	}
	left, err := w.writeExpression(s.Left, precUnary)
	if err != nil {
		return "", err
	}
	right, err := w.writeExpression(s.Right, precLowest)
	if err != nil {
		return "", err
	}
	return left + " " + op + " " + right, nil
}
