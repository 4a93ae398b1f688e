// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package syntax provides lexing and parsing of ashl shader source.
//
// ashl is GLSL extended with engine-facing features: struct and
// interface block declarations with richer layout lists, $-prefixed
// custom layout flags, arrow-bodied functions, and several pipeline
// stages authored in one file using @Stage { ... } blocks.
//
// # Components
//
//   - Lexer: Tokenizes source code into tokens
//   - Parser: Parses tokens into an AST (Abstract Syntax Tree)
//   - AST: Type definitions for the abstract syntax tree
//   - Inspect: Depth-first traversal of AST nodes
//
// # Usage
//
//	source := `
//	@Fragment {
//	    layout(location = 0) out float4 oColor;
//	    void main() { oColor = float4(1.0); }
//	}
//	`
//
//	module, err := syntax.Parse(source, "shader.ash")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The parser only checks structure. Names are bound to declarations
// by package resolve.
package syntax
