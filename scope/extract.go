// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package scope reduces a resolved multi-stage unit to a single stage.
//
// Extract keeps the selected stage block and every file-scope declaration
// its declarations reach, directly or through nested calls, so the result
// can be rendered as a self-contained single-stage program. Reachability
// is computed over the symbol arena filled in by package resolve.
package scope

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/ashl/syntax"
)

// NotFoundError reports a stage that the unit does not define.
type NotFoundError struct {
	Stage     string
	Source    string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s: stage @%s not found: unit has no stage blocks", e.Source, e.Stage)
	}
	return fmt.Sprintf("%s: stage @%s not found (available: @%s)",
		e.Source, e.Stage, strings.Join(e.Available, ", @"))
}

// ErrUnresolved is returned when Extract is given a module whose
// references have not been resolved.
var ErrUnresolved = errors.New("scope: module has not been resolved")

// Extract returns a new module containing the stage blocks tagged stage
// and the file-scope declarations reachable from them, in source order.
// The stage may be given with or without its @ sigil. The input module
// is not modified; the result shares its declarations and symbol arena.
func Extract(m *syntax.Module, stage string) (*syntax.Module, error) {
	stage = strings.TrimPrefix(stage, "@")

	var blocks []*syntax.StageBlock
	for _, sb := range m.StageBlocks() {
		if sb.Stage.Name == stage {
			blocks = append(blocks, sb)
		}
	}
	if len(blocks) == 0 {
		return nil, &NotFoundError{Stage: stage, Source: m.Source, Available: m.Stages()}
	}
	if len(m.Symbols) == 0 {
		return nil, ErrUnresolved
	}

	g := newGraph(m)
	for _, sb := range blocks {
		for _, d := range sb.Decls {
			g.markFrom(d)
		}
	}

	out := &syntax.Module{Source: m.Source, Symbols: m.Symbols}
	for _, d := range m.Decls {
		switch d := d.(type) {
		case *syntax.StageBlock:
			if d.Stage.Name == stage {
				out.Decls = append(out.Decls, d)
			}
		default:
			if g.keep(d) {
				out.Decls = append(out.Decls, d)
			}
		}
	}
	return out, nil
}

// graph is the reference graph between file-scope symbols.
type graph struct {
	m     *syntax.Module
	index map[syntax.Node]int // declaration -> symbol index
	live  []bool
}

func newGraph(m *syntax.Module) *graph {
	g := &graph{
		m:     m,
		index: make(map[syntax.Node]int),
		live:  make([]bool, len(m.Symbols)),
	}
	for i, s := range m.Symbols {
		if s.Global && s.Stage == "" {
			g.index[s.Decl] = i
		}
	}
	return g
}

// keep reports whether a file-scope declaration survives extraction.
// Declarations without a symbol, such as a file-scope layout(...) in;,
// are always kept.
func (g *graph) keep(d syntax.Decl) bool {
	i, ok := g.index[d]
	if !ok {
		return true
	}
	return g.live[i]
}

// refs returns the file-scope symbols a node references.
func (g *graph) refs(n syntax.Node) []int {
	var out []int
	syntax.Inspect(n, func(n syntax.Node) bool {
		var ref syntax.Ref
		switch n := n.(type) {
		case *syntax.Ident:
			ref = n.Ref
		case *syntax.NamedType:
			ref = n.Ref
		default:
			return true
		}
		if s := g.m.Symbol(ref); s != nil && s.Global && s.Stage == "" {
			out = append(out, int(ref.Index))
		}
		return true
	})
	return out
}

// markFrom marks every file-scope symbol reachable from root. The walk
// uses an explicit stack and the live set, so recursive functions
// terminate.
func (g *graph) markFrom(root syntax.Node) {
	stack := g.refs(root)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if g.live[i] {
			continue
		}
		g.live[i] = true
		stack = append(stack, g.refs(g.m.Symbols[i].Decl)...)
	}
}
