// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl generates GLSL source code from a resolved ashl module.
//
// The module must have passed reference resolution and, when it declares
// stage blocks, scope extraction to a single stage. Several GLSL versions
// are supported:
//
//   - GLSL ES 3.00: WebGL 2.0, Mobile OpenGL ES 3.0
//   - GLSL 3.30 Core: Desktop OpenGL 3.3+
//   - GLSL ES 3.10: Android 5.0+ with compute shaders
//   - GLSL 4.50 Core: Desktop OpenGL 4.5 and Vulkan (default)
//
// # Basic Usage
//
//	source, info, err := glsl.Compile(module, glsl.DefaultOptions())
//
// # Output Layout
//
// Declarations are written in a fixed order: defines, structs, uniform
// and buffer blocks, global variables, function prototypes, and function
// bodies. Builtin type aliases are normalized (float4 becomes vec4), and
// uniform blocks are emitted with a Name_block type and a Name instance.
//
// # Reserved Words
//
// Identifiers that collide with GLSL reserved words or the gl_ prefix
// are escaped by prefixing them with an underscore.
package glsl
