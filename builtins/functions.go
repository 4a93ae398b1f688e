// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builtins

type fn struct {
	name     string
	min, max int
	returns  string
}

func registerFunctions() {
	groups := [][]fn{
		// Angle and trigonometry
		{
			{"radians", 1, 1, ReturnsArgType},
			{"degrees", 1, 1, ReturnsArgType},
			{"sin", 1, 1, ReturnsArgType},
			{"cos", 1, 1, ReturnsArgType},
			{"tan", 1, 1, ReturnsArgType},
			{"asin", 1, 1, ReturnsArgType},
			{"acos", 1, 1, ReturnsArgType},
			{"atan", 1, 2, ReturnsArgType},
			{"sinh", 1, 1, ReturnsArgType},
			{"cosh", 1, 1, ReturnsArgType},
			{"tanh", 1, 1, ReturnsArgType},
		},
		// Exponential
		{
			{"pow", 2, 2, ReturnsArgType},
			{"exp", 1, 1, ReturnsArgType},
			{"log", 1, 1, ReturnsArgType},
			{"exp2", 1, 1, ReturnsArgType},
			{"log2", 1, 1, ReturnsArgType},
			{"sqrt", 1, 1, ReturnsArgType},
			{"inversesqrt", 1, 1, ReturnsArgType},
		},
		// Common
		{
			{"abs", 1, 1, ReturnsArgType},
			{"sign", 1, 1, ReturnsArgType},
			{"floor", 1, 1, ReturnsArgType},
			{"trunc", 1, 1, ReturnsArgType},
			{"round", 1, 1, ReturnsArgType},
			{"roundEven", 1, 1, ReturnsArgType},
			{"ceil", 1, 1, ReturnsArgType},
			{"fract", 1, 1, ReturnsArgType},
			{"mod", 2, 2, ReturnsArgType},
			{"modf", 2, 2, ReturnsArgType},
			{"min", 2, 2, ReturnsArgType},
			{"max", 2, 2, ReturnsArgType},
			{"clamp", 3, 3, ReturnsArgType},
			{"mix", 3, 3, ReturnsArgType},
			{"step", 2, 2, ReturnsUnknown},
			{"smoothstep", 3, 3, ReturnsUnknown},
			{"isnan", 1, 1, ReturnsArgType},
			{"isinf", 1, 1, ReturnsArgType},
			{"fma", 3, 3, ReturnsArgType},
			{"floatBitsToInt", 1, 1, ReturnsArgType},
			{"floatBitsToUint", 1, 1, ReturnsArgType},
			{"intBitsToFloat", 1, 1, ReturnsArgType},
			{"uintBitsToFloat", 1, 1, ReturnsArgType},
		},
		// Packing
		{
			{"packUnorm2x16", 1, 1, "uint"},
			{"packSnorm2x16", 1, 1, "uint"},
			{"packUnorm4x8", 1, 1, "uint"},
			{"packSnorm4x8", 1, 1, "uint"},
			{"packHalf2x16", 1, 1, "uint"},
			{"unpackUnorm2x16", 1, 1, "vec2"},
			{"unpackSnorm2x16", 1, 1, "vec2"},
			{"unpackUnorm4x8", 1, 1, "vec4"},
			{"unpackSnorm4x8", 1, 1, "vec4"},
			{"unpackHalf2x16", 1, 1, "vec2"},
		},
		// Geometric
		{
			{"length", 1, 1, "float"},
			{"distance", 2, 2, "float"},
			{"dot", 2, 2, "float"},
			{"cross", 2, 2, "vec3"},
			{"normalize", 1, 1, ReturnsArgType},
			{"faceforward", 3, 3, ReturnsArgType},
			{"reflect", 2, 2, ReturnsArgType},
			{"refract", 3, 3, ReturnsArgType},
		},
		// Matrix
		{
			{"matrixCompMult", 2, 2, ReturnsArgType},
			{"outerProduct", 2, 2, ReturnsUnknown},
			{"transpose", 1, 1, ReturnsUnknown},
			{"determinant", 1, 1, "float"},
			{"inverse", 1, 1, ReturnsArgType},
		},
		// Vector relational
		{
			{"lessThan", 2, 2, ReturnsUnknown},
			{"lessThanEqual", 2, 2, ReturnsUnknown},
			{"greaterThan", 2, 2, ReturnsUnknown},
			{"greaterThanEqual", 2, 2, ReturnsUnknown},
			{"equal", 2, 2, ReturnsUnknown},
			{"notEqual", 2, 2, ReturnsUnknown},
			{"any", 1, 1, "bool"},
			{"all", 1, 1, "bool"},
			{"not", 1, 1, ReturnsArgType},
		},
		// Integer
		{
			{"bitfieldExtract", 3, 3, ReturnsArgType},
			{"bitfieldInsert", 4, 4, ReturnsArgType},
			{"bitfieldReverse", 1, 1, ReturnsArgType},
			{"bitCount", 1, 1, ReturnsUnknown},
			{"findLSB", 1, 1, ReturnsUnknown},
			{"findMSB", 1, 1, ReturnsUnknown},
		},
		// Texture
		{
			{"texture", 2, 3, "vec4"},
			{"textureProj", 2, 3, "vec4"},
			{"textureLod", 3, 3, "vec4"},
			{"textureOffset", 3, 4, "vec4"},
			{"textureGrad", 4, 4, "vec4"},
			{"textureGather", 2, 3, "vec4"},
			{"texelFetch", 2, 3, "vec4"},
			{"textureSize", 1, 2, ReturnsUnknown},
			{"textureQueryLevels", 1, 1, "int"},
			{"imageLoad", 2, 2, "vec4"},
			{"imageStore", 3, 3, "void"},
			{"imageSize", 1, 1, ReturnsUnknown},
			{"subpassLoad", 1, 1, "vec4"},
		},
		// Derivatives
		{
			{"dFdx", 1, 1, ReturnsArgType},
			{"dFdy", 1, 1, ReturnsArgType},
			{"fwidth", 1, 1, ReturnsArgType},
		},
		// Atomics and synchronization
		{
			{"atomicAdd", 2, 2, ReturnsArgType},
			{"atomicMin", 2, 2, ReturnsArgType},
			{"atomicMax", 2, 2, ReturnsArgType},
			{"atomicAnd", 2, 2, ReturnsArgType},
			{"atomicOr", 2, 2, ReturnsArgType},
			{"atomicXor", 2, 2, ReturnsArgType},
			{"atomicExchange", 2, 2, ReturnsArgType},
			{"atomicCompSwap", 3, 3, ReturnsArgType},
			{"barrier", 0, 0, "void"},
			{"memoryBarrier", 0, 0, "void"},
			{"memoryBarrierShared", 0, 0, "void"},
			{"groupMemoryBarrier", 0, 0, "void"},
		},
		// GL_EXT_nonuniform_qualifier
		{
			{"nonuniformEXT", 1, 1, ReturnsArgType},
		},
	}

	for _, group := range groups {
		for _, f := range group {
			register(Entry{Name: f.name, Kind: KindFunction, MinArgs: f.min, MaxArgs: f.max, Returns: f.returns})
		}
	}
}
