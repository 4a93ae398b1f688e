// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resolve

import (
	"fmt"
	"strings"

	"github.com/gogpu/ashl/builtins"
	"github.com/gogpu/ashl/syntax"
)

// swizzleSets are the component name sets; one swizzle may not mix them.
var swizzleSets = [...]string{"xyzw", "rgba", "stpq"}

func (r *resolver) resolveExpr(e syntax.Expr) error {
	switch e := e.(type) {
	case *syntax.Literal:
		return nil

	case *syntax.Ident:
		b, ok := r.lookup(e.Name)
		if !ok {
			return r.unresolved(e.Name, e.Span)
		}
		if !isValue(b) {
			return &TypeMismatchError{
				Name:    e.Name,
				Span:    e.Span,
				Message: fmt.Sprintf("%s used as a value", describe(b, e.Name)),
			}
		}
		e.Ref = b.ref
		return nil

	case *syntax.UnaryExpr:
		if err := r.resolveExpr(e.X); err != nil {
			return err
		}
		if e.Op == syntax.TokenPlusPlus || e.Op == syntax.TokenMinusMinus {
			return r.checkWritable(e.X)
		}
		return nil

	case *syntax.BinaryExpr:
		if err := r.resolveExpr(e.Left); err != nil {
			return err
		}
		return r.resolveExpr(e.Right)

	case *syntax.TernaryExpr:
		if err := r.resolveExpr(e.Cond); err != nil {
			return err
		}
		if err := r.resolveExpr(e.Then); err != nil {
			return err
		}
		return r.resolveExpr(e.Else)

	case *syntax.IndexExpr:
		if err := r.resolveExpr(e.X); err != nil {
			return err
		}
		return r.resolveExpr(e.Index)

	case *syntax.MemberExpr:
		return r.resolveMember(e)

	case *syntax.CallExpr:
		return r.resolveCall(e)

	case *syntax.ArrayLiteral:
		return &TypeMismatchError{
			Span:    e.Span,
			Message: "array literal is only allowed as a variable initializer",
		}

	default:
		return fmt.Errorf("resolve: unexpected expression %T", e)
	}
}

// isValue reports whether a binding can be used as an expression operand.
func isValue(b binding) bool {
	if b.builtin != nil {
		return b.builtin.Kind == builtins.KindVariable
	}
	switch b.symbol.Kind {
	case syntax.SymbolStruct, syntax.SymbolFunction:
		return false
	}
	return true
}

func (r *resolver) resolveMember(e *syntax.MemberExpr) error {
	if err := r.resolveExpr(e.X); err != nil {
		return err
	}
	base := r.typeOf(e.X)
	switch {
	case base == nil:
		e.Field = syntax.FieldUnchecked
		return nil

	case base.array:
		return r.memberMismatch(e, base)

	case base.strct != nil || base.block != nil:
		for i, f := range base.fields() {
			if f.Name == e.Name {
				e.Field = i
				return nil
			}
		}
		return &UnresolvedSymbolError{Name: e.Name, Span: e.Span, Scope: base.name()}
	}

	switch base.builtin.Category {
	case builtins.CategoryScalar, builtins.CategoryVector:
		if !validSwizzle(e.Name, base.builtin.Size) {
			return &TypeMismatchError{
				Name:    e.Name,
				Span:    e.Span,
				Message: fmt.Sprintf("invalid swizzle .%s on %s", e.Name, base.builtin.Name),
			}
		}
		e.Field = syntax.FieldSwizzle
		return nil
	}
	return r.memberMismatch(e, base)
}

func (r *resolver) memberMismatch(e *syntax.MemberExpr, base *valueType) error {
	what := base.name()
	if base.array {
		what = "array of " + what
	}
	return &TypeMismatchError{
		Name:    e.Name,
		Span:    e.Span,
		Message: fmt.Sprintf("%s has no member %s", what, e.Name),
	}
}

// validSwizzle reports whether name selects 1 to 4 components, all from
// one name set and all within the first size components.
func validSwizzle(name string, size int) bool {
	if len(name) == 0 || len(name) > 4 {
		return false
	}
	for _, set := range swizzleSets {
		if !strings.ContainsRune(set, rune(name[0])) {
			continue
		}
		for i := 0; i < len(name); i++ {
			idx := strings.IndexByte(set, name[i])
			if idx < 0 || idx >= size {
				return false
			}
		}
		return true
	}
	return false
}

func (r *resolver) resolveCall(call *syntax.CallExpr) error {
	for _, arg := range call.Args {
		if err := r.resolveExpr(arg); err != nil {
			return err
		}
	}

	switch fn := call.Func.(type) {
	case *syntax.MemberExpr:
		return r.resolveLength(call, fn)
	case *syntax.Ident:
		b, ok := r.lookup(fn.Name)
		if !ok {
			return r.unresolved(fn.Name, fn.Span)
		}
		fn.Ref = b.ref
		return r.checkArity(call, fn, b)
	default:
		return &TypeMismatchError{Span: call.Span, Message: "expression is not callable"}
	}
}

// resolveLength handles x.length().
func (r *resolver) resolveLength(call *syntax.CallExpr, m *syntax.MemberExpr) error {
	if err := r.resolveExpr(m.X); err != nil {
		return err
	}
	if m.Name != "length" {
		return &TypeMismatchError{Name: m.Name, Span: m.Span, Message: fmt.Sprintf("method %s is not supported", m.Name)}
	}
	if len(call.Args) != 0 {
		return &TypeMismatchError{
			Name:    m.Name,
			Span:    call.Span,
			Message: fmt.Sprintf("length() takes no arguments, got %d", len(call.Args)),
		}
	}
	base := r.typeOf(m.X)
	switch {
	case base == nil:
		m.Field = syntax.FieldUnchecked
	case base.array:
		m.Field = syntax.FieldLength
	case base.builtin != nil && (base.builtin.Category == builtins.CategoryVector ||
		base.builtin.Category == builtins.CategoryMatrix):
		m.Field = syntax.FieldLength
	default:
		return r.memberMismatch(m, base)
	}
	return nil
}

func (r *resolver) checkArity(call *syntax.CallExpr, fn *syntax.Ident, b binding) error {
	got := len(call.Args)
	mismatch := func(want string) error {
		return &TypeMismatchError{
			Name:    fn.Name,
			Span:    call.Span,
			Message: fmt.Sprintf("%s expects %s, got %d", describe(b, fn.Name), want, got),
		}
	}

	if e := b.builtin; e != nil {
		switch e.Kind {
		case builtins.KindType:
			if got == 0 {
				return mismatch("at least 1 argument")
			}
			return nil
		case builtins.KindFunction:
			if got < e.MinArgs || got > e.MaxArgs {
				if e.MinArgs == e.MaxArgs {
					return mismatch(plural(e.MinArgs))
				}
				return mismatch(fmt.Sprintf("%d to %d arguments", e.MinArgs, e.MaxArgs))
			}
			return nil
		}
	} else {
		switch d := b.symbol.Decl.(type) {
		case *syntax.FunctionDecl:
			if got != len(d.Params) {
				return mismatch(plural(len(d.Params)))
			}
			return nil
		case *syntax.StructDecl:
			if got != len(d.Fields) {
				return mismatch(plural(len(d.Fields)))
			}
			return nil
		}
	}
	return &TypeMismatchError{
		Name:    fn.Name,
		Span:    fn.Span,
		Message: fmt.Sprintf("%s is not a function", describe(b, fn.Name)),
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}

// checkWritable rejects writes to read-only builtin variables such as
// gl_VertexIndex.
func (r *resolver) checkWritable(e syntax.Expr) error {
	for {
		switch x := e.(type) {
		case *syntax.MemberExpr:
			e = x.X
			continue
		case *syntax.IndexExpr:
			e = x.X
			continue
		case *syntax.Ident:
			if b := r.bindingOf(x.Ref); b.builtin != nil && b.builtin.ReadOnly {
				return &TypeMismatchError{
					Name:    x.Name,
					Span:    x.Span,
					Message: fmt.Sprintf("cannot assign to read-only %s", x.Name),
				}
			}
		}
		return nil
	}
}
