// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resolve

import (
	"fmt"

	"github.com/gogpu/ashl/syntax"
)

// UnresolvedSymbolError reports a name with no visible declaration.
type UnresolvedSymbolError struct {
	Name  string
	Span  syntax.Span
	Scope string // innermost scope searched, e.g. "function main in @Vertex"
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("%s: undeclared identifier %q in %s", e.Span, e.Name, e.Scope)
}

// TypeMismatchError reports a name used in a role its declaration does
// not support: a value used as a type, a call with the wrong number of
// arguments, an invalid swizzle, and similar.
type TypeMismatchError struct {
	Name    string
	Span    syntax.Span
	Message string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// RedeclarationError reports a name declared twice in one scope.
type RedeclarationError struct {
	Name     string
	Span     syntax.Span
	Previous syntax.Span
}

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("%s: %q redeclared (previous declaration at %s)", e.Span, e.Name, e.Previous)
}

// BindingConflictError reports two resources sharing a descriptor slot.
type BindingConflictError struct {
	Set      int64
	Binding  int64
	Name     string
	Span     syntax.Span
	Previous string // name of the resource that claimed the slot first
}

func (e *BindingConflictError) Error() string {
	return fmt.Sprintf("%s: %s uses set %d binding %d, already used by %s",
		e.Span, e.Name, e.Set, e.Binding, e.Previous)
}

// EntryPointError reports a stage that does not declare exactly one main.
type EntryPointError struct {
	Stage string
	Span  syntax.Span
	Count int
}

func (e *EntryPointError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("%s: stage @%s has no main function", e.Span, e.Stage)
	}
	return fmt.Sprintf("%s: stage @%s has %d main functions", e.Span, e.Stage, e.Count)
}
