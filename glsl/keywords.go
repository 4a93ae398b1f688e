// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"

	"github.com/gogpu/ashl/builtins"
)

// reservedWords are the GLSL words a user identifier must not take,
// besides the builtin table. Based on the GLSL 4.60 and GLSL ES 3.20
// specifications.
var reservedWords = []string{
	// Keywords
	"attribute", "const", "uniform", "varying", "buffer", "shared",
	"coherent", "volatile", "restrict", "readonly", "writeonly",
	"layout", "centroid", "flat", "smooth", "noperspective", "patch", "sample",
	"break", "continue", "do", "for", "while", "switch", "case", "default",
	"if", "else", "subroutine", "in", "out", "inout", "true", "false",
	"invariant", "precise", "discard", "return", "struct",

	// Precision qualifiers
	"lowp", "mediump", "highp", "precision",

	// Reserved for future use
	"common", "partition", "active", "asm", "class", "union", "enum",
	"typedef", "template", "this", "resource", "goto", "inline", "noinline",
	"public", "static", "extern", "external", "interface", "long", "short",
	"half", "fixed", "unsigned", "superp", "input", "output",
	"hvec2", "hvec3", "hvec4", "fvec2", "fvec3", "fvec4",
	"sampler3DRect", "filter", "sizeof", "cast", "namespace", "using",

	// Types outside the builtin table
	"atomic_uint",
	"sampler2DRect", "sampler1DShadow", "sampler2DRectShadow",
	"sampler1DArrayShadow", "samplerCubeArrayShadow", "sampler2DMSArray",
	"isampler1D", "isampler2DRect", "isampler1DArray", "isamplerCubeArray",
	"isamplerBuffer", "isampler2DMS", "isampler2DMSArray",
	"usampler1D", "usampler2DRect", "usampler1DArray", "usamplerCubeArray",
	"usamplerBuffer", "usampler2DMS", "usampler2DMSArray",
	"image2DRect", "image1DArray", "imageCubeArray", "imageBuffer",
	"image2DMS", "image2DMSArray",

	// Images and functions outside the builtin table
	"iimage1D", "iimage1DArray", "iimage2DArray", "iimage2DMS", "iimage2DMSArray",
	"iimage2DRect", "iimageBuffer", "iimageCube", "iimageCubeArray",
	"uimage1D", "uimage1DArray", "uimage2DArray", "uimage2DMS", "uimage2DMSArray",
	"uimage2DRect", "uimageBuffer", "uimageCube", "uimageCubeArray",
	"asinh", "acosh", "atanh", "frexp", "ldexp", "noise1", "noise2", "noise3", "noise4",
	"packDouble2x32", "unpackDouble2x32", "uaddCarry", "usubBorrow",
	"umulExtended", "imulExtended",
	"dFdxCoarse", "dFdxFine", "dFdyCoarse", "dFdyFine", "fwidthCoarse", "fwidthFine",
	"interpolateAtCentroid", "interpolateAtOffset", "interpolateAtSample",
	"texelFetchOffset", "textureGatherOffset", "textureGatherOffsets",
	"textureGradOffset", "textureLodOffset", "textureProjGrad",
	"textureProjGradOffset", "textureProjLod", "textureProjLodOffset",
	"textureProjOffset", "textureQueryLod", "textureSamples", "imageSamples",
	"imageAtomicAdd", "imageAtomicAnd", "imageAtomicOr", "imageAtomicXor",
	"imageAtomicMin", "imageAtomicMax", "imageAtomicExchange", "imageAtomicCompSwap",
	"atomicCounter", "atomicCounterIncrement", "atomicCounterDecrement",
	"atomicCounterAdd", "atomicCounterSubtract", "atomicCounterMin",
	"atomicCounterMax", "atomicCounterAnd", "atomicCounterOr", "atomicCounterXor",
	"atomicCounterExchange", "atomicCounterCompSwap",
	"memoryBarrierAtomicCounter", "memoryBarrierBuffer", "memoryBarrierImage",
	"EmitVertex", "EndPrimitive", "EmitStreamVertex", "EndStreamPrimitive",

	// The entry point
	"main",
}

// glslKeywords holds every reserved word plus the name and GLSL
// spelling of every builtin entry, so that a user declaration never
// shadows a builtin in the output.
var glslKeywords = buildKeywords()

func buildKeywords() map[string]struct{} {
	words := make(map[string]struct{}, len(reservedWords)+builtins.Len()*2)
	for _, w := range reservedWords {
		words[w] = struct{}{}
	}
	for i := 0; i < builtins.Len(); i++ {
		e := builtins.At(i)
		words[e.Name] = struct{}{}
		if e.GLSL != "" {
			words[e.GLSL] = struct{}{}
		}
	}
	return words
}

// isKeyword checks if a name is a GLSL keyword, a builtin, or uses the
// reserved gl_ prefix.
func isKeyword(name string) bool {
	if strings.HasPrefix(name, "gl_") {
		return true
	}
	_, ok := glslKeywords[name]
	return ok
}

// escapeKeyword escapes a name if it conflicts with GLSL keywords.
// Returns the name with underscore prefix if it's reserved.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	if isKeyword(name) {
		return "_" + name
	}
	return name
}
