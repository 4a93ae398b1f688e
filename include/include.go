// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package include splices #include directives into a parsed unit.
//
// Each directive is replaced, in place, by the declarations of the unit
// it names. An include inside a stage block splices into that block.
// A unit is spliced at most once: later directives naming the same path
// are dropped, so diamond-shaped include graphs are fine. A directive
// that reaches back into the chain of units currently being spliced is
// a cycle and fails with *CycleError.
package include

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/ashl/syntax"
)

// NotFoundError reports an include path the loader does not know.
type NotFoundError struct {
	Path string
	Span syntax.Span // location of the directive
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: include %q not found", e.Span, e.Path)
}

// CycleError reports a chain of includes that leads back to one of
// its own members. Chain starts at the root unit and ends with the
// repeated path.
type CycleError struct {
	Chain []string
	Span  syntax.Span // location of the directive closing the cycle
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: include cycle: %s", e.Span, strings.Join(e.Chain, " → "))
}

// Resolve returns a module in which every include directive has been
// replaced by the declarations of the unit it names. The input module
// is not modified. A module without directives is returned as is.
func Resolve(m *syntax.Module, loader Loader) (*syntax.Module, error) {
	if !hasIncludes(m.Decls) {
		return m, nil
	}
	if loader == nil {
		loader = MapLoader(nil)
	}

	r := &resolver{
		loader: loader,
		stack:  []string{m.Source},
		done:   map[spliced]bool{{path: m.Source}: true},
	}
	decls, err := r.splice(m.Decls, "")
	if err != nil {
		return nil, err
	}
	return &syntax.Module{Source: m.Source, Decls: decls}, nil
}

type resolver struct {
	loader Loader
	stack  []string         // units currently being spliced, outermost first
	done   map[spliced]bool // units already spliced, per scope
}

// spliced identifies a unit spliced into one scope. Stage is "" for
// file scope, whose declarations every stage block sees.
type spliced struct {
	stage string
	path  string
}

func (r *resolver) visible(path, stage string) bool {
	return r.done[spliced{path: path}] || r.done[spliced{stage: stage, path: path}]
}

// splice expands the directives in decls. stage is the enclosing stage
// block's tag, or "" at file scope.
func (r *resolver) splice(decls []syntax.Decl, stage string) ([]syntax.Decl, error) {
	out := make([]syntax.Decl, 0, len(decls))
	for _, d := range decls {
		switch d := d.(type) {
		case *syntax.IncludeDirective:
			included, err := r.include(d, stage)
			if err != nil {
				return nil, err
			}
			out = append(out, included...)
		case *syntax.StageBlock:
			inner, err := r.splice(d.Decls, d.Stage.Name)
			if err != nil {
				return nil, err
			}
			block := *d
			block.Decls = inner
			out = append(out, &block)
		default:
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *resolver) include(d *syntax.IncludeDirective, stage string) ([]syntax.Decl, error) {
	for _, open := range r.stack {
		if open == d.Path {
			chain := append(append([]string(nil), r.stack...), d.Path)
			return nil, &CycleError{Chain: chain, Span: d.Span}
		}
	}
	if r.visible(d.Path, stage) {
		return nil, nil
	}

	src, err := r.loader.Load(d.Path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Path: d.Path, Span: d.Span}
		}
		return nil, fmt.Errorf("%s: loading %q: %w", d.Span, d.Path, err)
	}

	unit, err := syntax.Parse(src, d.Path)
	if err != nil {
		return nil, fmt.Errorf("in %q included at %s: %w", d.Path, d.Span, err)
	}
	if stage != "" {
		if blocks := unit.StageBlocks(); len(blocks) > 0 {
			return nil, &syntax.ParseError{
				Message: fmt.Sprintf("%q declares stage block %s and cannot be included inside @%s", d.Path, blocks[0].Stage, stage),
				Span:    d.Span,
			}
		}
	}

	r.stack = append(r.stack, d.Path)
	decls, err := r.splice(unit.Decls, stage)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}
	r.done[spliced{stage: stage, path: d.Path}] = true
	return decls, nil
}

func hasIncludes(decls []syntax.Decl) bool {
	for _, d := range decls {
		switch d := d.(type) {
		case *syntax.IncludeDirective:
			return true
		case *syntax.StageBlock:
			if hasIncludes(d.Decls) {
				return true
			}
		}
	}
	return false
}
