// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package resolve binds every name in a parsed unit to its declaration.
//
// Names are looked up from the innermost scope outwards: block scopes,
// function parameters, the enclosing stage block, file scope, and
// finally the builtin table. File-scope and stage-scope declarations are
// visible throughout their scope; locals become visible after their
// declaration. Stage blocks with the same tag share one scope.
//
// Resolution annotates the AST in place: Ident.Ref, NamedType.Ref and
// MemberExpr.Field are filled in, and Module.Symbols holds the declared
// symbols. Along the way it checks call arity, member and swizzle
// access, redeclarations, descriptor binding uniqueness, and that every
// stage has exactly one main function. It does not type-check
// expressions beyond what member access needs.
package resolve

import (
	"fmt"

	"github.com/gogpu/ashl/builtins"
	"github.com/gogpu/ashl/syntax"
)

type resolver struct {
	m      *syntax.Module
	scopes []*scope
	stage  string               // current stage tag, "" at file scope
	fn     *syntax.FunctionDecl // current function, nil outside bodies

	slots     map[[2]int64]string // (set, binding) -> resource name
	inferring map[*syntax.DefineDecl]bool
}

// Resolve binds all references in m and returns m. The first error
// stops resolution; the module may then be partially annotated.
func Resolve(m *syntax.Module) (*syntax.Module, error) {
	r := &resolver{
		m:         m,
		slots:     make(map[[2]int64]string),
		inferring: make(map[*syntax.DefineDecl]bool),
	}
	m.Symbols = nil

	r.push(scopeFile)
	var globals []syntax.Decl
	var stageOrder []string
	stages := make(map[string][]*syntax.StageBlock)
	for _, d := range m.Decls {
		if sb, ok := d.(*syntax.StageBlock); ok {
			if _, seen := stages[sb.Stage.Name]; !seen {
				stageOrder = append(stageOrder, sb.Stage.Name)
			}
			stages[sb.Stage.Name] = append(stages[sb.Stage.Name], sb)
			continue
		}
		globals = append(globals, d)
	}

	if err := r.declareAll(globals); err != nil {
		return nil, err
	}
	if err := r.resolveAll(globals); err != nil {
		return nil, err
	}

	for _, name := range stageOrder {
		if err := r.resolveStage(name, stages[name]); err != nil {
			return nil, err
		}
	}
	r.pop()

	return m, nil
}

func (r *resolver) resolveStage(name string, blocks []*syntax.StageBlock) error {
	r.stage = name
	defer func() { r.stage = "" }()

	r.push(scopeStage)
	defer r.pop()

	var decls []syntax.Decl
	for _, sb := range blocks {
		decls = append(decls, sb.Decls...)
	}
	if err := r.declareAll(decls); err != nil {
		return err
	}
	if err := r.resolveAll(decls); err != nil {
		return err
	}

	mains := 0
	for _, d := range decls {
		if fn, ok := d.(*syntax.FunctionDecl); ok && fn.Name == "main" {
			mains++
		}
	}
	if mains != 1 {
		return &EntryPointError{Stage: name, Span: blocks[0].Span, Count: mains}
	}
	return nil
}

// declareAll enters every named declaration into the current scope
// before any of them is resolved, so order does not matter.
func (r *resolver) declareAll(decls []syntax.Decl) error {
	for _, d := range decls {
		var err error
		switch d := d.(type) {
		case *syntax.StructDecl:
			err = r.declare(d.Name, syntax.SymbolStruct, d, d.Span)
		case *syntax.UniformBlockDecl:
			err = r.declare(d.Name, syntax.SymbolBlock, d, d.Span)
		case *syntax.VarDecl:
			err = r.declare(d.Name, syntax.SymbolVar, d, d.Span)
		case *syntax.DefineDecl:
			err = r.declare(d.Name, syntax.SymbolDefine, d, d.Span)
		case *syntax.FunctionDecl:
			err = r.declare(d.Name, syntax.SymbolFunction, d, d.Span)
		case *syntax.LayoutDecl:
		case *syntax.IncludeDirective:
			return fmt.Errorf("%s: #include %q must be resolved before reference resolution", d.Span, d.Path)
		default:
			return fmt.Errorf("resolve: unexpected declaration %T", d)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveAll(decls []syntax.Decl) error {
	for _, d := range decls {
		if err := r.resolveDecl(d); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveDecl(d syntax.Decl) error {
	switch d := d.(type) {
	case *syntax.StructDecl:
		return r.resolveFields(d.Fields)
	case *syntax.UniformBlockDecl:
		if err := r.resolveLayout(d.Layout); err != nil {
			return err
		}
		if err := r.claimSlot(d.Layout, d.Name, d.Span); err != nil {
			return err
		}
		return r.resolveFields(d.Fields)
	case *syntax.VarDecl:
		if err := r.resolveLayout(d.Layout); err != nil {
			return err
		}
		if err := r.claimSlot(d.Layout, d.Name, d.Span); err != nil {
			return err
		}
		return r.resolveVar(d)
	case *syntax.LayoutDecl:
		return r.resolveLayout(d.Layout)
	case *syntax.DefineDecl:
		if d.Value == nil {
			return nil
		}
		return r.resolveExpr(d.Value)
	case *syntax.FunctionDecl:
		return r.resolveFunction(d)
	default:
		return fmt.Errorf("resolve: unexpected declaration %T", d)
	}
}

func (r *resolver) resolveFields(fields []*syntax.Field) error {
	for _, f := range fields {
		if err := r.resolveObjectType(f.Type, f.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveLayout(layout syntax.Layout) error {
	for _, q := range layout {
		if q.Value == nil {
			continue
		}
		if err := r.resolveExpr(q.Value); err != nil {
			return err
		}
	}
	return nil
}

// claimSlot records the (set, binding) pair of a resource and rejects
// a second resource on the same slot.
func (r *resolver) claimSlot(layout syntax.Layout, name string, span syntax.Span) error {
	set, bind, ok := r.foldDefines(layout).Binding()
	if !ok {
		return nil
	}
	key := [2]int64{set, bind}
	if prev, taken := r.slots[key]; taken {
		return &BindingConflictError{Set: set, Binding: bind, Name: name, Span: span, Previous: prev}
	}
	r.slots[key] = name
	return nil
}

// foldDefines returns a copy of a resolved layout in which every value
// naming a #define is replaced by the define's value.
func (r *resolver) foldDefines(layout syntax.Layout) syntax.Layout {
	folded := make(syntax.Layout, len(layout))
	for i, q := range layout {
		seen := make(map[*syntax.DefineDecl]bool)
		for {
			id, ok := q.Value.(*syntax.Ident)
			if !ok || id.Ref.Kind != syntax.RefSymbol {
				break
			}
			def, ok := r.m.Symbols[id.Ref.Index].Decl.(*syntax.DefineDecl)
			if !ok || def.Value == nil || seen[def] {
				break
			}
			seen[def] = true
			q.Value = def.Value
		}
		folded[i] = q
	}
	return folded
}

// resolveVar resolves a variable's type and initializer. Local
// variables are declared by the caller afterwards.
func (r *resolver) resolveVar(v *syntax.VarDecl) error {
	if err := r.resolveObjectType(v.Type, v.Name); err != nil {
		return err
	}
	if lit, ok := v.Init.(*syntax.ArrayLiteral); ok {
		for _, e := range lit.Elems {
			if err := r.resolveExpr(e); err != nil {
				return err
			}
		}
		return nil
	}
	if v.Init != nil {
		return r.resolveExpr(v.Init)
	}
	return nil
}

func (r *resolver) resolveFunction(fn *syntax.FunctionDecl) error {
	if err := r.resolveType(fn.ReturnType); err != nil {
		return err
	}

	r.fn = fn
	defer func() { r.fn = nil }()

	r.push(scopeFunction)
	defer r.pop()

	for _, p := range fn.Params {
		if err := r.resolveObjectType(p.Type, p.Name); err != nil {
			return err
		}
		if err := r.declare(p.Name, syntax.SymbolParam, p, p.Span); err != nil {
			return err
		}
	}
	// The outermost block of the body shares the parameter scope.
	for _, s := range fn.Body.Stmts {
		if err := r.resolveStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveBlock(b *syntax.BlockStmt) error {
	r.push(scopeBlock)
	defer r.pop()

	for _, s := range b.Stmts {
		if err := r.resolveStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveStmt(s syntax.Stmt) error {
	switch s := s.(type) {
	case *syntax.BlockStmt:
		return r.resolveBlock(s)
	case *syntax.VarDecl:
		if err := r.resolveVar(s); err != nil {
			return err
		}
		return r.declare(s.Name, syntax.SymbolLocal, s, s.Span)
	case *syntax.AssignStmt:
		if err := r.resolveExpr(s.Left); err != nil {
			return err
		}
		if err := r.checkWritable(s.Left); err != nil {
			return err
		}
		return r.resolveExpr(s.Right)
	case *syntax.IfStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		if err := r.resolveBlock(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.resolveStmt(s.Else)
		}
		return nil
	case *syntax.ForStmt:
		// The init declaration is scoped to the loop.
		r.push(scopeBlock)
		defer r.pop()
		if s.Init != nil {
			if err := r.resolveStmt(s.Init); err != nil {
				return err
			}
		}
		if s.Cond != nil {
			if err := r.resolveExpr(s.Cond); err != nil {
				return err
			}
		}
		if s.Post != nil {
			if err := r.resolveStmt(s.Post); err != nil {
				return err
			}
		}
		return r.resolveBlock(s.Body)
	case *syntax.WhileStmt:
		if err := r.resolveExpr(s.Cond); err != nil {
			return err
		}
		return r.resolveBlock(s.Body)
	case *syntax.ReturnStmt:
		if s.Value == nil {
			return nil
		}
		return r.resolveExpr(s.Value)
	case *syntax.ExprStmt:
		return r.resolveExpr(s.X)
	case *syntax.BreakStmt, *syntax.ContinueStmt, *syntax.DiscardStmt:
		return nil
	default:
		return fmt.Errorf("resolve: unexpected statement %T", s)
	}
}

// resolveType binds the names in a type expression.
func (r *resolver) resolveType(t syntax.Type) error {
	switch t := t.(type) {
	case *syntax.NamedType:
		b, ok := r.lookup(t.Name)
		if !ok {
			return r.unresolved(t.Name, t.Span)
		}
		switch {
		case b.symbol != nil && b.symbol.Kind.IsType():
		case b.builtin != nil && b.builtin.Kind == builtins.KindType:
		default:
			return &TypeMismatchError{
				Name:    t.Name,
				Span:    t.Span,
				Message: fmt.Sprintf("%s is not a type", describe(b, t.Name)),
			}
		}
		t.Ref = b.ref
		return nil
	case *syntax.ArrayType:
		if err := r.resolveType(t.Elem); err != nil {
			return err
		}
		if t.Size != nil {
			return r.resolveExpr(t.Size)
		}
		return nil
	default:
		return fmt.Errorf("resolve: unexpected type %T", t)
	}
}

// resolveObjectType resolves the type of a field, parameter or
// variable, which cannot be void.
func (r *resolver) resolveObjectType(t syntax.Type, name string) error {
	if err := r.resolveType(t); err != nil {
		return err
	}
	elem := t
	if arr, ok := t.(*syntax.ArrayType); ok {
		elem = arr.Elem
	}
	if nt, ok := elem.(*syntax.NamedType); ok && nt.Ref.Kind == syntax.RefBuiltin {
		if builtins.At(int(nt.Ref.Index)).Category == builtins.CategoryVoid {
			return &TypeMismatchError{
				Name:    name,
				Span:    nt.Span,
				Message: fmt.Sprintf("%s cannot have type void", name),
			}
		}
	}
	return nil
}

// describe names what a binding refers to, for error messages.
func describe(b binding, name string) string {
	switch {
	case b.symbol != nil:
		return fmt.Sprintf("%s %s", b.symbol.Kind, name)
	case b.builtin != nil:
		return fmt.Sprintf("builtin %s %s", b.builtin.Kind, name)
	default:
		return name
	}
}
