// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/ashl/syntax"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	// Desktop OpenGL versions
	Version330 = Version{Major: 3, Minor: 30, ES: false} // OpenGL 3.3 Core
	Version400 = Version{Major: 4, Minor: 0, ES: false}  // OpenGL 4.0
	Version410 = Version{Major: 4, Minor: 10, ES: false} // OpenGL 4.1
	Version420 = Version{Major: 4, Minor: 20, ES: false} // OpenGL 4.2
	Version430 = Version{Major: 4, Minor: 30, ES: false} // OpenGL 4.3 (compute shaders)
	Version450 = Version{Major: 4, Minor: 50, ES: false} // OpenGL 4.5 / Vulkan
	Version460 = Version{Major: 4, Minor: 60, ES: false} // OpenGL 4.6

	// OpenGL ES / WebGL versions
	VersionES300 = Version{Major: 3, Minor: 0, ES: true}  // ES 3.0 / WebGL 2.0
	VersionES310 = Version{Major: 3, Minor: 10, ES: true} // ES 3.1 (compute shaders)
	VersionES320 = Version{Major: 3, Minor: 20, ES: true} // ES 3.2
)

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return v.VersionNumber() + " es"
	}
	return v.VersionNumber() + " core"
}

// VersionNumber returns just the numeric version (e.g., "330", "300").
func (v Version) VersionNumber() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// SupportsCompute returns true if this version supports compute shaders.
func (v Version) SupportsCompute() bool {
	if v.ES {
		return v.Major > 3 || (v.Major == 3 && v.Minor >= 10)
	}
	return v.Major > 4 || (v.Major == 4 && v.Minor >= 30)
}

// SupportsStorageBuffers returns true if this version supports storage buffers.
func (v Version) SupportsStorageBuffers() bool {
	if v.ES {
		return v.Major > 3 || (v.Major == 3 && v.Minor >= 10)
	}
	return v.Major > 4 || (v.Major == 4 && v.Minor >= 30)
}

// WriterFlags control output formatting.
type WriterFlags uint32

const (
	// WriterFlagNone uses default settings.
	WriterFlagNone WriterFlags = 0

	// WriterFlagDebugInfo adds source location comments before functions.
	WriterFlagDebugInfo WriterFlags = 1 << iota
)

// Options configures GLSL code generation.
type Options struct {
	// LangVersion is the target GLSL version.
	// Defaults to Version450 if zero.
	LangVersion Version

	// Indent is the indentation unit. Defaults to four spaces.
	Indent string

	// WriterFlags control output formatting.
	WriterFlags WriterFlags

	// ForceHighPrecision declares highp defaults for all float, int and
	// sampler types (ES only). If false, only float and int get defaults.
	ForceHighPrecision bool
}

// DefaultOptions returns sensible default options for GLSL generation.
func DefaultOptions() Options {
	return Options{
		LangVersion:        Version450,
		Indent:             "    ",
		ForceHighPrecision: true,
	}
}

// TranslationInfo contains metadata about the translation.
type TranslationInfo struct {
	// Stage is the stage the module was scoped to. It is the zero Stage
	// for a module without stage blocks.
	Stage syntax.Stage

	// Extensions lists GLSL extensions required by the shader, in the
	// order their #extension lines appear.
	Extensions []string

	// CustomFlags maps a declaration name to the $ layout flags that have
	// no GLSL spelling and were left out of the output, e.g. "$variable=512".
	CustomFlags map[string][]string
}

// AssertionError reports a module that should never reach the generator,
// such as one with unresolved names. It indicates a defect in an earlier
// pipeline stage, not a problem with the shader source.
type AssertionError struct {
	Message string
	Span    syntax.Span
}

func (e *AssertionError) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("%s: internal error: %s", e.Span, e.Message)
	}
	return "internal error: " + e.Message
}

// Compile generates GLSL source code from a resolved module that has been
// scoped to at most one stage.
// Returns the GLSL source as a string, translation info, or an error.
func Compile(module *syntax.Module, options Options) (string, TranslationInfo, error) {
	// Apply defaults for zero values
	if options.LangVersion.Major == 0 {
		options.LangVersion = Version450
	}
	if options.Indent == "" {
		options.Indent = "    "
	}

	w, err := newWriter(module, &options)
	if err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}

	info := TranslationInfo{
		Stage:       w.stage,
		Extensions:  w.extensions,
		CustomFlags: w.customFlags,
	}

	return w.String(), info, nil
}
