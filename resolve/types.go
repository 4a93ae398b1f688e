// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resolve

import (
	"github.com/gogpu/ashl/builtins"
	"github.com/gogpu/ashl/syntax"
)

// valueType is the inferred type of an expression, tracked only as far
// as member access needs it. Exactly one of builtin, strct and block
// is set.
type valueType struct {
	builtin *builtins.Entry
	strct   *syntax.StructDecl
	block   *syntax.UniformBlockDecl
	array   bool
}

func (t *valueType) fields() []*syntax.Field {
	switch {
	case t.strct != nil:
		return t.strct.Fields
	case t.block != nil:
		return t.block.Fields
	}
	return nil
}

func (t *valueType) name() string {
	switch {
	case t.strct != nil:
		return "struct " + t.strct.Name
	case t.block != nil:
		return "block " + t.block.Name
	case t.builtin != nil:
		return t.builtin.Name
	}
	return "unknown"
}

func builtinType(name string) *valueType {
	if e := builtins.Get(name); e != nil && e.Kind == builtins.KindType {
		return &valueType{builtin: e}
	}
	return nil
}

// declaredType converts a resolved type expression.
func (r *resolver) declaredType(t syntax.Type) *valueType {
	switch t := t.(type) {
	case *syntax.NamedType:
		b := r.bindingOf(t.Ref)
		switch {
		case b.builtin != nil:
			return &valueType{builtin: b.builtin}
		case b.symbol != nil:
			if st, ok := b.symbol.Decl.(*syntax.StructDecl); ok {
				return &valueType{strct: st}
			}
		}
	case *syntax.ArrayType:
		if elem := r.declaredType(t.Elem); elem != nil {
			elem.array = true
			return elem
		}
	}
	return nil
}

// typeOf infers the type of a resolved expression, or returns nil.
func (r *resolver) typeOf(e syntax.Expr) *valueType {
	switch e := e.(type) {
	case *syntax.Literal:
		switch e.Kind {
		case syntax.LiteralBool:
			return builtinType("bool")
		case syntax.LiteralFloat:
			return builtinType("float")
		default:
			if last := e.Value[len(e.Value)-1]; last == 'u' || last == 'U' {
				return builtinType("uint")
			}
			return builtinType("int")
		}

	case *syntax.Ident:
		return r.symbolType(r.bindingOf(e.Ref))

	case *syntax.MemberExpr:
		base := r.typeOf(e.X)
		if base == nil {
			return nil
		}
		switch {
		case e.Field >= 0:
			fields := base.fields()
			if e.Field < len(fields) {
				return r.declaredType(fields[e.Field].Type)
			}
		case e.Field == syntax.FieldSwizzle:
			return builtinType(builtins.VectorOf(base.builtin.Scalar, len(e.Name)))
		}
		return nil

	case *syntax.IndexExpr:
		base := r.typeOf(e.X)
		if base == nil {
			return nil
		}
		if base.array {
			elem := *base
			elem.array = false
			return &elem
		}
		if b := base.builtin; b != nil {
			switch b.Category {
			case builtins.CategoryVector:
				return builtinType(builtins.VectorOf(b.Scalar, 1))
			case builtins.CategoryMatrix:
				return builtinType(builtins.ColumnOf(b))
			}
		}
		return nil

	case *syntax.CallExpr:
		return r.callType(e)

	case *syntax.UnaryExpr:
		if e.Op == syntax.TokenBang {
			return builtinType("bool")
		}
		return r.typeOf(e.X)

	case *syntax.BinaryExpr:
		switch e.Op {
		case syntax.TokenEqualEqual, syntax.TokenBangEqual,
			syntax.TokenLess, syntax.TokenLessEqual, syntax.TokenGreater, syntax.TokenGreaterEqual,
			syntax.TokenAmpAmp, syntax.TokenPipePipe:
			return builtinType("bool")
		}
		left, right := r.typeOf(e.Left), r.typeOf(e.Right)
		if left == nil || right == nil {
			return nil
		}
		// Scalar op vector and matrix * vector produce a vector.
		if lb, rb := left.builtin, right.builtin; lb != nil && rb != nil && !left.array && !right.array {
			if rb.Category == builtins.CategoryVector && lb.Category != builtins.CategoryVector {
				return right
			}
		}
		return left

	case *syntax.TernaryExpr:
		return r.typeOf(e.Then)
	}
	return nil
}

func (r *resolver) symbolType(b binding) *valueType {
	if b.builtin != nil {
		if b.builtin.Kind == builtins.KindVariable {
			return builtinType(b.builtin.Type)
		}
		return nil
	}
	if b.symbol == nil {
		return nil
	}
	switch d := b.symbol.Decl.(type) {
	case *syntax.VarDecl:
		return r.declaredType(d.Type)
	case *syntax.Param:
		return r.declaredType(d.Type)
	case *syntax.UniformBlockDecl:
		return &valueType{block: d}
	case *syntax.DefineDecl:
		if d.Value != nil && !r.inferring[d] {
			r.inferring[d] = true
			defer delete(r.inferring, d)
			return r.typeOf(d.Value)
		}
	}
	return nil
}

func (r *resolver) callType(call *syntax.CallExpr) *valueType {
	switch fn := call.Func.(type) {
	case *syntax.MemberExpr:
		return builtinType("int") // x.length()
	case *syntax.Ident:
		b := r.bindingOf(fn.Ref)
		if b.symbol != nil {
			switch d := b.symbol.Decl.(type) {
			case *syntax.FunctionDecl:
				return r.declaredType(d.ReturnType)
			case *syntax.StructDecl:
				return &valueType{strct: d}
			}
			return nil
		}
		if e := b.builtin; e != nil {
			switch e.Kind {
			case builtins.KindType:
				return &valueType{builtin: e}
			case builtins.KindFunction:
				switch e.Returns {
				case builtins.ReturnsUnknown:
					return nil
				case builtins.ReturnsArgType:
					if len(call.Args) > 0 {
						return r.typeOf(call.Args[0])
					}
					return nil
				default:
					return builtinType(e.Returns)
				}
			}
		}
	}
	return nil
}
