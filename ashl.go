// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ashl provides a Pure Go compiler for ashl, an extended shading
// language, to GLSL.
//
// ashl is GLSL with struct declarations, a richer layout qualifier syntax,
// engine-specific $ flags, #include, and several pipeline stages authored
// in one file as @Stage { } blocks. Compile turns one stage of a unit into
// a standalone GLSL program:
//
//	source := `
//	layout(location = 0) uniform float4 tint;
//	@Fragment {
//	    layout(location = 0) out float4 oColor;
//	    void main() { oColor = tint; }
//	}
//	`
//	opts := ashl.DefaultOptions()
//	opts.Stage = "Fragment"
//	glslCode, info, err := ashl.Compile(source, "tint.ash", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The package also exposes each compilation stage on its own. The
// pipeline is Tokenize, Parse, ResolveIncludes, ResolveReferences,
// ExtractScope, and Generate.
package ashl

import (
	"fmt"

	"github.com/gogpu/ashl/glsl"
	"github.com/gogpu/ashl/include"
	"github.com/gogpu/ashl/resolve"
	"github.com/gogpu/ashl/scope"
	"github.com/gogpu/ashl/syntax"
)

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// Stage selects the stage block to compile, with or without the @
	// sigil. Empty compiles the unit as is, which only works for units
	// without stage blocks.
	Stage string

	// Loader supplies the source of #include paths. A nil Loader
	// knows no paths.
	Loader include.Loader

	// GLSL configures code generation.
	GLSL glsl.Options
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		GLSL: glsl.DefaultOptions(),
	}
}

// StageOutput is the result of compiling one stage.
type StageOutput struct {
	Stage string
	GLSL  string
	Info  glsl.TranslationInfo
}

// Compile compiles one stage of an ashl unit to GLSL.
//
// The compilation pipeline is:
//  1. Parse source to AST
//  2. Splice #include directives
//  3. Resolve references
//  4. Extract the selected stage (if opts.Stage is set)
//  5. Generate GLSL
func Compile(source, name string, opts CompileOptions) (string, glsl.TranslationInfo, error) {
	module, err := prepare(source, name, opts.Loader)
	if err != nil {
		return "", glsl.TranslationInfo{}, err
	}

	if opts.Stage != "" {
		module, err = ExtractScope(module, opts.Stage)
		if err != nil {
			return "", glsl.TranslationInfo{}, err
		}
	}

	return Generate(module, opts.GLSL)
}

// CompileStages compiles every stage of an ashl unit, in the order the
// stages first appear. The unit is parsed and resolved once. opts.Stage
// is ignored.
func CompileStages(source, name string, opts CompileOptions) ([]StageOutput, error) {
	module, err := prepare(source, name, opts.Loader)
	if err != nil {
		return nil, err
	}

	stages := module.Stages()
	if len(stages) == 0 {
		return nil, fmt.Errorf("extract error: %s: unit has no stage blocks", name)
	}

	outputs := make([]StageOutput, 0, len(stages))
	for _, stage := range stages {
		scoped, err := ExtractScope(module, stage)
		if err != nil {
			return nil, err
		}
		code, info, err := Generate(scoped, opts.GLSL)
		if err != nil {
			return nil, fmt.Errorf("@%s: %w", stage, err)
		}
		outputs = append(outputs, StageOutput{Stage: stage, GLSL: code, Info: info})
	}
	return outputs, nil
}

// prepare runs the stages shared by every output of a unit.
func prepare(source, name string, loader include.Loader) (*syntax.Module, error) {
	module, err := Parse(source, name)
	if err != nil {
		return nil, err
	}
	module, err = ResolveIncludes(module, loader)
	if err != nil {
		return nil, err
	}
	return ResolveReferences(module)
}

// Tokenize splits ashl source into tokens. Name identifies the source
// in error messages.
func Tokenize(source, name string) ([]syntax.Token, error) {
	tokens, err := syntax.Tokenize(source, name)
	if err != nil {
		return nil, fmt.Errorf("tokenization error: %w", err)
	}
	return tokens, nil
}

// Parse parses ashl source code to AST (Abstract Syntax Tree).
//
// This is the first stage of compilation. The AST represents the syntactic
// structure of the unit; names are not yet bound to declarations.
func Parse(source, name string) (*syntax.Module, error) {
	tokens, err := Tokenize(source, name)
	if err != nil {
		return nil, err
	}

	module, err := syntax.NewParser(tokens).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return module, nil
}

// ResolveIncludes replaces every #include directive with the
// declarations of the unit it names.
func ResolveIncludes(module *syntax.Module, loader include.Loader) (*syntax.Module, error) {
	module, err := include.Resolve(module, loader)
	if err != nil {
		return nil, fmt.Errorf("include error: %w", err)
	}
	return module, nil
}

// ResolveReferences binds every name in the module to its declaration
// or to a builtin, and checks call arity and member access.
func ResolveReferences(module *syntax.Module) (*syntax.Module, error) {
	module, err := resolve.Resolve(module)
	if err != nil {
		return nil, fmt.Errorf("resolve error: %w", err)
	}
	return module, nil
}

// ExtractScope reduces a resolved module to one stage and the global
// declarations it uses.
func ExtractScope(module *syntax.Module, stage string) (*syntax.Module, error) {
	scoped, err := scope.Extract(module, stage)
	if err != nil {
		return nil, fmt.Errorf("extract error: %w", err)
	}
	return scoped, nil
}

// Generate renders a resolved, single-stage module as GLSL.
//
// This is the final stage of compilation.
func Generate(module *syntax.Module, opts glsl.Options) (string, glsl.TranslationInfo, error) {
	code, info, err := glsl.Compile(module, opts)
	if err != nil {
		return "", glsl.TranslationInfo{}, fmt.Errorf("GLSL generation error: %w", err)
	}
	return code, info, nil
}
