// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resolve

import (
	"github.com/gogpu/ashl/builtins"
	"github.com/gogpu/ashl/syntax"
)

type scopeKind uint8

const (
	scopeFile scopeKind = iota
	scopeStage
	scopeFunction
	scopeBlock
)

type scope struct {
	kind  scopeKind
	names map[string]int // symbol index
}

// binding is the result of a name lookup.
type binding struct {
	ref     syntax.Ref
	symbol  *syntax.Symbol  // set for RefSymbol
	builtin *builtins.Entry // set for RefBuiltin
}

func (r *resolver) push(kind scopeKind) {
	r.scopes = append(r.scopes, &scope{kind: kind, names: make(map[string]int)})
}

func (r *resolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare adds a symbol to the innermost scope.
func (r *resolver) declare(name string, kind syntax.SymbolKind, decl syntax.Node, span syntax.Span) error {
	top := r.scopes[len(r.scopes)-1]
	if prev, dup := top.names[name]; dup {
		return &RedeclarationError{Name: name, Span: span, Previous: r.m.Symbols[prev].Span}
	}
	top.names[name] = len(r.m.Symbols)
	r.m.Symbols = append(r.m.Symbols, syntax.Symbol{
		Name:   name,
		Kind:   kind,
		Decl:   decl,
		Span:   span,
		Stage:  r.stage,
		Global: kind != syntax.SymbolParam && kind != syntax.SymbolLocal,
	})
	return nil
}

// lookup searches the scope stack from the innermost scope outwards,
// then the builtin table.
func (r *resolver) lookup(name string) (binding, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if idx, ok := r.scopes[i].names[name]; ok {
			return binding{ref: syntax.SymbolRef(idx), symbol: &r.m.Symbols[idx]}, true
		}
	}
	if idx, ok := builtins.Lookup(name); ok {
		return binding{ref: syntax.BuiltinRef(idx), builtin: builtins.At(idx)}, true
	}
	return binding{}, false
}

// bindingOf returns the binding a resolved reference points at.
func (r *resolver) bindingOf(ref syntax.Ref) binding {
	switch ref.Kind {
	case syntax.RefSymbol:
		return binding{ref: ref, symbol: &r.m.Symbols[ref.Index]}
	case syntax.RefBuiltin:
		return binding{ref: ref, builtin: builtins.At(int(ref.Index))}
	}
	return binding{}
}

// describeScope names the innermost scope for error messages.
func (r *resolver) describeScope() string {
	where := "file scope"
	if r.stage != "" {
		where = "@" + r.stage
	}
	if r.fn != nil {
		if r.stage != "" {
			return "function " + r.fn.Name + " in " + where
		}
		return "function " + r.fn.Name
	}
	return where
}

func (r *resolver) unresolved(name string, span syntax.Span) error {
	return &UnresolvedSymbolError{Name: name, Span: span, Scope: r.describeScope()}
}
