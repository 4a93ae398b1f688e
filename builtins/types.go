// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builtins

import "strconv"

var vectorPrefixes = []struct {
	glsl   string // vec, ivec, ...
	alias  string // float, int, ...
	scalar Scalar
}{
	{"vec", "float", ScalarFloat},
	{"ivec", "int", ScalarInt},
	{"uvec", "uint", ScalarUint},
	{"bvec", "bool", ScalarBool},
	{"dvec", "double", ScalarDouble},
}

var opaqueTypes = []string{
	"sampler", "samplerShadow",
	"sampler1D", "sampler2D", "sampler3D", "samplerCube",
	"sampler1DArray", "sampler2DArray", "samplerCubeArray",
	"sampler2DShadow", "sampler2DArrayShadow", "samplerCubeShadow",
	"sampler2DMS", "samplerBuffer",
	"isampler2D", "isampler3D", "isampler2DArray", "isamplerCube",
	"usampler2D", "usampler3D", "usampler2DArray", "usamplerCube",
	"texture1D", "texture2D", "texture3D", "textureCube",
	"texture2DArray", "textureCubeArray", "texture2DMS",
	"itexture2D", "utexture2D",
	"image1D", "image2D", "image3D", "imageCube", "image2DArray",
	"iimage2D", "iimage3D", "uimage2D", "uimage3D",
	"subpassInput",
}

func registerTypes() {
	register(Entry{Name: "void", Kind: KindType, GLSL: "void", Category: CategoryVoid})

	for _, s := range []struct {
		name   string
		scalar Scalar
	}{
		{"bool", ScalarBool},
		{"int", ScalarInt},
		{"uint", ScalarUint},
		{"float", ScalarFloat},
		{"double", ScalarDouble},
	} {
		register(Entry{Name: s.name, Kind: KindType, GLSL: s.name, Category: CategoryScalar, Scalar: s.scalar, Size: 1})
	}

	// vec2..vec4 and their float2..float4 aliases.
	for _, p := range vectorPrefixes {
		for n := 2; n <= 4; n++ {
			glsl := p.glsl + strconv.Itoa(n)
			register(Entry{Name: glsl, Kind: KindType, GLSL: glsl, Category: CategoryVector, Scalar: p.scalar, Size: n})
			register(Entry{Name: p.alias + strconv.Itoa(n), Kind: KindType, GLSL: glsl, Category: CategoryVector, Scalar: p.scalar, Size: n})
		}
	}

	// matCxR, the square shorthands matN, and floatCxR aliases.
	for _, p := range []struct {
		glsl, alias string
		scalar      Scalar
	}{
		{"mat", "float", ScalarFloat},
		{"dmat", "double", ScalarDouble},
	} {
		for c := 2; c <= 4; c++ {
			square := p.glsl + strconv.Itoa(c)
			register(Entry{Name: square, Kind: KindType, GLSL: square, Category: CategoryMatrix, Scalar: p.scalar, Size: c, Rows: c})
			for r := 2; r <= 4; r++ {
				dims := strconv.Itoa(c) + "x" + strconv.Itoa(r)
				glsl := p.glsl + dims
				if c == r {
					glsl = square
				}
				register(Entry{Name: p.glsl + dims, Kind: KindType, GLSL: glsl, Category: CategoryMatrix, Scalar: p.scalar, Size: c, Rows: r})
				register(Entry{Name: p.alias + dims, Kind: KindType, GLSL: glsl, Category: CategoryMatrix, Scalar: p.scalar, Size: c, Rows: r})
			}
		}
	}

	for _, name := range opaqueTypes {
		register(Entry{Name: name, Kind: KindType, GLSL: name, Category: CategoryOpaque})
	}
}

// VectorOf returns the GLSL name of the vector with n components of the
// given scalar type, or the scalar type itself when n is 1.
func VectorOf(scalar Scalar, n int) string {
	if n == 1 {
		switch scalar {
		case ScalarBool:
			return "bool"
		case ScalarInt:
			return "int"
		case ScalarUint:
			return "uint"
		case ScalarDouble:
			return "double"
		default:
			return "float"
		}
	}
	for _, p := range vectorPrefixes {
		if p.scalar == scalar {
			return p.glsl + strconv.Itoa(n)
		}
	}
	return "vec" + strconv.Itoa(n)
}

// ColumnOf returns the GLSL name of a matrix's column vector type.
func ColumnOf(matrix *Entry) string {
	return VectorOf(matrix.Scalar, matrix.Rows)
}
