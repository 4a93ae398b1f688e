// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package builtins defines the names every shader can use without
// declaring them: scalar, vector, matrix and opaque types (including the
// float4-style aliases), GLSL library functions, and gl_ variables.
//
// The table is built once during package initialization and never
// modified afterwards, so it is safe for concurrent use. Entries are
// addressed by index; syntax.Ref values of kind RefBuiltin index into it.
package builtins

import "fmt"

// Kind classifies a builtin entry.
type Kind uint8

const (
	KindType Kind = iota
	KindFunction
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindFunction:
		return "function"
	case KindVariable:
		return "variable"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Category classifies builtin types.
type Category uint8

const (
	CategoryVoid Category = iota
	CategoryScalar
	CategoryVector
	CategoryMatrix
	CategoryOpaque // samplers, textures, images
)

// Scalar identifies the component type of scalars, vectors and matrices.
type Scalar uint8

const (
	ScalarNone Scalar = iota
	ScalarBool
	ScalarInt
	ScalarUint
	ScalarFloat
	ScalarDouble
)

// Return type markers for functions whose result is not a fixed type.
const (
	// ReturnsArgType means the call has the type of its first argument.
	ReturnsArgType = ""
	// ReturnsUnknown means the result type depends on more than the
	// argument shape and is not tracked.
	ReturnsUnknown = "?"
)

// Entry is one builtin name.
type Entry struct {
	Name string
	Kind Kind

	// Types.
	GLSL     string // GLSL spelling; differs from Name for aliases
	Category Category
	Scalar   Scalar
	Size     int // vector components or matrix columns
	Rows     int // matrix rows

	// Functions.
	MinArgs int
	MaxArgs int
	Returns string // type name, ReturnsArgType or ReturnsUnknown

	// Variables.
	Type     string // type name of the variable
	ReadOnly bool
}

// IsAlias reports whether a type entry is spelled differently in GLSL.
func (e *Entry) IsAlias() bool {
	return e.Kind == KindType && e.GLSL != e.Name
}

func (e *Entry) String() string {
	return fmt.Sprintf("builtin %s %s", e.Kind, e.Name)
}

var (
	table []Entry
	index map[string]int
)

func init() {
	index = make(map[string]int, 320)
	registerTypes()
	registerFunctions()
	registerVariables()
}

func register(e Entry) {
	if _, dup := index[e.Name]; dup {
		panic("builtins: duplicate entry " + e.Name)
	}
	index[e.Name] = len(table)
	table = append(table, e)
}

// Lookup returns the index of the builtin with the given name.
func Lookup(name string) (int, bool) {
	i, ok := index[name]
	return i, ok
}

// At returns the entry at index i. It panics if i is out of range.
func At(i int) *Entry {
	return &table[i]
}

// Get returns the entry with the given name, or nil.
func Get(name string) *Entry {
	if i, ok := index[name]; ok {
		return &table[i]
	}
	return nil
}

// Len returns the number of entries.
func Len() int {
	return len(table)
}
