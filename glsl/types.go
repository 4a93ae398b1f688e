// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/ashl/builtins"
	"github.com/gogpu/ashl/syntax"
)

// typeName returns the full GLSL type name, with any array suffix
// attached to the type (e.g., "vec2[3]"). Use declarator for variable
// declarations.
func (w *Writer) typeName(t syntax.Type) (string, error) {
	base, suffix, err := w.typeParts(t)
	if err != nil {
		return "", err
	}
	return base + suffix, nil
}

// declarator renders "base name[N]".
func (w *Writer) declarator(t syntax.Type, name string) (string, error) {
	base, suffix, err := w.typeParts(t)
	if err != nil {
		return "", err
	}
	return base + " " + name + suffix, nil
}

// typeParts splits a type into its base name and array suffix.
func (w *Writer) typeParts(t syntax.Type) (base, suffix string, err error) {
	switch t := t.(type) {
	case *syntax.NamedType:
		base, err = w.namedType(t)
		return base, "", err
	case *syntax.ArrayType:
		base, err = w.namedTypeOf(t.Elem)
		if err != nil {
			return "", "", err
		}
		if t.Size == nil {
			return base, "[]", nil
		}
		size, err := w.writeExpression(t.Size, precLowest)
		if err != nil {
			return "", "", err
		}
		return base, "[" + size + "]", nil
	default:
		return "", "", &AssertionError{Message: fmt.Sprintf("unexpected type %T", t)}
	}
}

func (w *Writer) namedTypeOf(t syntax.Type) (string, error) {
	nt, ok := t.(*syntax.NamedType)
	if !ok {
		return "", &AssertionError{Message: "arrays of arrays are not supported", Span: t.Pos()}
	}
	return w.namedType(nt)
}

// namedType normalizes builtin aliases (float4 -> vec4) and returns the
// output name of struct types.
func (w *Writer) namedType(t *syntax.NamedType) (string, error) {
	switch t.Ref.Kind {
	case syntax.RefBuiltin:
		e := builtins.At(int(t.Ref.Index))
		if e.Kind != builtins.KindType {
			return "", &AssertionError{Message: fmt.Sprintf("%s is not a type", e), Span: t.Span}
		}
		return e.GLSL, nil
	case syntax.RefSymbol:
		return w.symbolName(int(t.Ref.Index)), nil
	default:
		return "", &AssertionError{Message: fmt.Sprintf("unresolved type %s", t.Name), Span: t.Span}
	}
}
