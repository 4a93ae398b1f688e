// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/ashl/builtins"
	"github.com/gogpu/ashl/syntax"
)

// Writer generates GLSL source code from a resolved module.
type Writer struct {
	module  *syntax.Module
	options *Options

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Name management, keyed by symbol index
	names     map[int]string
	namer     *namer
	declIndex map[syntax.Node]int

	// Declarations grouped by output section, globals before stage
	// declarations
	defines   []*syntax.DefineDecl
	structs   []*syntax.StructDecl
	blocks    []*syntax.UniformBlockDecl
	layouts   []*syntax.LayoutDecl
	globals   []*syntax.VarDecl
	functions []*syntax.FunctionDecl

	// Output tracking
	stage       syntax.Stage
	extensions  []string
	customFlags map[string][]string
}

// namer generates unique identifiers.
type namer struct {
	usedNames map[string]struct{}
	counter   uint32
}

func newNamer() *namer {
	return &namer{
		usedNames: make(map[string]struct{}),
	}
}

// call generates a unique name based on the given base.
func (n *namer) call(base string) string {
	// Escape reserved words
	escaped := escapeKeyword(base)

	// First try the base name directly
	if _, used := n.usedNames[escaped]; !used {
		n.usedNames[escaped] = struct{}{}
		return escaped
	}

	// Add numeric suffix
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if _, used := n.usedNames[candidate]; !used {
			n.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

// reserve marks a name as taken without escaping it.
func (n *namer) reserve(name string) {
	n.usedNames[name] = struct{}{}
}

// newWriter creates a new GLSL writer and sorts the module's
// declarations into output sections.
func newWriter(module *syntax.Module, options *Options) (*Writer, error) {
	w := &Writer{
		module:      module,
		options:     options,
		names:       make(map[int]string),
		namer:       newNamer(),
		declIndex:   make(map[syntax.Node]int, len(module.Symbols)),
		customFlags: make(map[string][]string),
	}
	for i := range module.Symbols {
		w.declIndex[module.Symbols[i].Decl] = i
	}

	var stageDecls []syntax.Decl
	for _, d := range module.Decls {
		sb, ok := d.(*syntax.StageBlock)
		if !ok {
			if err := w.collect(d); err != nil {
				return nil, err
			}
			continue
		}
		if w.stage.Name != "" && w.stage.Name != sb.Stage.Name {
			return nil, &AssertionError{
				Message: fmt.Sprintf("module contains stages %s and %s; extract one stage first", w.stage, sb.Stage),
				Span:    sb.Span,
			}
		}
		w.stage = sb.Stage
		stageDecls = append(stageDecls, sb.Decls...)
	}
	for _, d := range stageDecls {
		if err := w.collect(d); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *Writer) collect(d syntax.Decl) error {
	switch d := d.(type) {
	case *syntax.DefineDecl:
		w.defines = append(w.defines, d)
	case *syntax.StructDecl:
		w.structs = append(w.structs, d)
	case *syntax.UniformBlockDecl:
		w.blocks = append(w.blocks, d)
	case *syntax.LayoutDecl:
		w.layouts = append(w.layouts, d)
	case *syntax.VarDecl:
		w.globals = append(w.globals, d)
	case *syntax.FunctionDecl:
		w.functions = append(w.functions, d)
	case *syntax.IncludeDirective:
		return &AssertionError{Message: fmt.Sprintf("unresolved #include %q", d.Path), Span: d.Span}
	default:
		return &AssertionError{Message: fmt.Sprintf("unexpected declaration %T", d), Span: d.Pos()}
	}
	return nil
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates GLSL code for the entire module.
func (w *Writer) writeModule() error {
	if err := w.checkVersion(); err != nil {
		return err
	}

	// 1. Write version directive and extensions
	w.writeVersionDirective()
	w.writeExtensions()

	// 2. Write precision qualifiers (ES only)
	w.writePrecisionQualifiers()

	// 3. Register all global names
	if err := w.registerNames(); err != nil {
		return err
	}

	// 4. Write macros
	if err := w.writeDefines(); err != nil {
		return err
	}

	// 5. Write type definitions (structs)
	if err := w.writeTypes(); err != nil {
		return err
	}

	// 6. Write uniform and buffer blocks
	if err := w.writeBlocks(); err != nil {
		return err
	}

	// 7. Write global variables (uniforms, inputs, outputs)
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}

	// 8. Write prototypes, then function definitions
	if err := w.writePrototypes(); err != nil {
		return err
	}
	return w.writeFunctions()
}

// checkVersion rejects stages and resources the target version lacks.
func (w *Writer) checkVersion() error {
	v := w.options.LangVersion
	if w.stage.Kind == syntax.StageCompute && !v.SupportsCompute() {
		return fmt.Errorf("compute shaders require GLSL 430 or 310 es, target is %s", v)
	}
	for _, b := range w.blocks {
		if b.Storage == syntax.StorageBuffer && !v.SupportsStorageBuffers() {
			return fmt.Errorf("%s: buffer block %s requires GLSL 430 or 310 es, target is %s", b.Span, b.Name, v)
		}
	}
	return nil
}

// writeVersionDirective writes the #version directive.
func (w *Writer) writeVersionDirective() {
	w.writeLine("#version %s", w.options.LangVersion.String())
}

// writeExtensions scans the module for constructs that need a GLSL
// extension and writes the #extension lines.
func (w *Writer) writeExtensions() {
	seen := make(map[string]bool)
	require := func(ext string) {
		if !seen[ext] {
			seen[ext] = true
			w.extensions = append(w.extensions, ext)
		}
	}

	for _, b := range w.blocks {
		if b.Layout.Has("scalar") {
			require("GL_EXT_scalar_block_layout")
		}
	}
	for _, g := range w.globals {
		if g.Storage == syntax.StorageUniform && syntax.IsUnsizedArray(g.Type) {
			require("GL_EXT_nonuniform_qualifier")
		}
	}
	for _, fn := range w.functions {
		syntax.Inspect(fn, func(n syntax.Node) bool {
			if id, ok := n.(*syntax.Ident); ok && id.Ref.Kind == syntax.RefBuiltin &&
				builtins.At(int(id.Ref.Index)).Name == "nonuniformEXT" {
				require("GL_EXT_nonuniform_qualifier")
			}
			return true
		})
	}

	for _, ext := range w.extensions {
		w.writeLine("#extension %s : require", ext)
	}
	w.writeLine("")
}

// writePrecisionQualifiers writes precision qualifiers for ES.
func (w *Writer) writePrecisionQualifiers() {
	if !w.options.LangVersion.ES {
		return
	}

	// ES requires precision qualifiers
	w.writeLine("precision highp float;")
	w.writeLine("precision highp int;")
	if w.options.ForceHighPrecision {
		w.writeLine("precision highp sampler2D;")
		w.writeLine("precision highp sampler3D;")
		w.writeLine("precision highp samplerCube;")
	}
	w.writeLine("")
}

// registerNames assigns unique names to all global symbols in output
// order. The stage entry point keeps the name main, as does a file-scope
// main in a module without stage blocks.
func (w *Writer) registerNames() error {
	w.namer.reserve("main")
	stageless := w.stage.Name == ""

	register := func(node syntax.Node, name string) error {
		idx, ok := w.symbolIndex(node)
		if !ok {
			return &AssertionError{Message: fmt.Sprintf("%s has no symbol; the module was not resolved", name), Span: node.Pos()}
		}
		s := &w.module.Symbols[idx]
		if s.Kind == syntax.SymbolFunction && s.Name == "main" && (s.Stage != "" || stageless) {
			w.names[idx] = "main"
			return nil
		}
		w.names[idx] = w.namer.call(name)
		return nil
	}

	for _, d := range w.defines {
		if err := register(d, d.Name); err != nil {
			return err
		}
	}
	for _, d := range w.structs {
		if err := register(d, d.Name); err != nil {
			return err
		}
	}
	for _, d := range w.blocks {
		if err := register(d, d.Name); err != nil {
			return err
		}
	}
	for _, d := range w.globals {
		if err := register(d, d.Name); err != nil {
			return err
		}
	}
	for _, d := range w.functions {
		if err := register(d, d.Name); err != nil {
			return err
		}
	}
	return nil
}

// symbolIndex finds the symbol a declaration introduced.
func (w *Writer) symbolIndex(decl syntax.Node) (int, bool) {
	idx, ok := w.declIndex[decl]
	return idx, ok
}

// symbolName returns the output name of a resolved symbol. Locals and
// parameters are only escaped; they may shadow globals.
func (w *Writer) symbolName(idx int) string {
	if name, ok := w.names[idx]; ok {
		return name
	}
	name := escapeKeyword(w.module.Symbols[idx].Name)
	w.names[idx] = name
	return name
}

// declName returns the output name of a global declaration registered
// by registerNames.
func (w *Writer) declName(decl syntax.Node) string {
	if idx, ok := w.symbolIndex(decl); ok {
		return w.symbolName(idx)
	}
	return ""
}

// writeDefines writes #define macros.
func (w *Writer) writeDefines() error {
	for _, d := range w.defines {
		name := w.declName(d)
		if d.Value == nil {
			w.writeLine("#define %s", name)
			continue
		}
		// The preprocessor substitutes text, so a compound value is
		// parenthesized to keep its meaning at every use.
		value, err := w.writeExpression(d.Value, precPostfix)
		if err != nil {
			return err
		}
		w.writeLine("#define %s %s", name, value)
	}
	if len(w.defines) > 0 {
		w.writeLine("")
	}
	return nil
}

// writeTypes writes struct type definitions, dependencies first.
func (w *Writer) writeTypes() error {
	written := make(map[*syntax.StructDecl]bool)
	var write func(st *syntax.StructDecl) error
	write = func(st *syntax.StructDecl) error {
		if written[st] {
			return nil
		}
		written[st] = true
		for _, f := range st.Fields {
			if dep := w.structOf(f.Type); dep != nil {
				if err := write(dep); err != nil {
					return err
				}
			}
		}
		w.writeLine("struct %s {", w.declName(st))
		w.pushIndent()
		if err := w.writeFields(st.Fields); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
		return nil
	}

	for _, st := range w.structs {
		if err := write(st); err != nil {
			return err
		}
	}
	return nil
}

// structOf returns the struct a field type refers to, if any.
func (w *Writer) structOf(t syntax.Type) *syntax.StructDecl {
	if arr, ok := t.(*syntax.ArrayType); ok {
		t = arr.Elem
	}
	nt, ok := t.(*syntax.NamedType)
	if !ok {
		return nil
	}
	if s := w.module.Symbol(nt.Ref); s != nil {
		st, _ := s.Decl.(*syntax.StructDecl)
		return st
	}
	return nil
}

func (w *Writer) writeFields(fields []*syntax.Field) error {
	for _, f := range fields {
		decl, err := w.declarator(f.Type, escapeKeyword(f.Name))
		if err != nil {
			return err
		}
		w.writeLine("%s;", decl)
	}
	return nil
}

// writeBlocks writes uniform, buffer and push constant blocks. The block
// name is kept as the instance name so that name.field access stays valid.
func (w *Writer) writeBlocks() error {
	for _, b := range w.blocks {
		name := w.declName(b)
		qualifiers, storage := b.Layout, b.Storage.String()
		if b.Storage == syntax.StoragePushConstant {
			qualifiers = append(syntax.Layout{{Key: "push_constant"}}, b.Layout...)
			storage = syntax.StorageUniform.String()
		}
		layout, err := w.layoutPrefix(b.Name, qualifiers)
		if err != nil {
			return err
		}
		if b.ReadOnly {
			storage = "readonly " + storage
		}
		w.writeLine("%s%s %s_block {", layout, storage, name)
		w.pushIndent()
		if err := w.writeFields(b.Fields); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("} %s;", name)
		w.writeLine("")
	}
	return nil
}

// writeGlobalVariables writes layout declarations and uniform, input,
// output and const declarations.
func (w *Writer) writeGlobalVariables() error {
	for _, l := range w.layouts {
		layout, err := w.layoutPrefix("", l.Layout)
		if err != nil {
			return err
		}
		w.writeLine("%s%s;", layout, l.Storage)
	}

	for _, g := range w.globals {
		line, err := w.varDecl(g, w.declName(g))
		if err != nil {
			return err
		}
		w.writeLine("%s;", line)
	}
	if len(w.layouts)+len(w.globals) > 0 {
		w.writeLine("")
	}
	return nil
}

// varDecl renders a variable declaration without the semicolon.
func (w *Writer) varDecl(v *syntax.VarDecl, name string) (string, error) {
	var sb strings.Builder

	layout, err := w.layoutPrefix(v.Name, v.Layout)
	if err != nil {
		return "", err
	}
	sb.WriteString(layout)
	for _, q := range v.Layout {
		if interp, ok := interpolationQualifier(q); ok {
			sb.WriteString(interp)
			sb.WriteByte(' ')
		}
	}
	if v.Const {
		sb.WriteString("const ")
	}
	if v.Storage != syntax.StorageNone {
		sb.WriteString(v.Storage.String())
		sb.WriteByte(' ')
	}

	typ := v.Type
	lit, isList := v.Init.(*syntax.ArrayLiteral)
	if isList && syntax.IsUnsizedArray(typ) {
		// Give the declaration the size of its initializer.
		arr := typ.(*syntax.ArrayType)
		typ = &syntax.ArrayType{
			Elem: arr.Elem,
			Size: &syntax.Literal{Kind: syntax.LiteralInt, Value: fmt.Sprint(len(lit.Elems)), Span: arr.Span},
			Span: arr.Span,
		}
	}
	decl, err := w.declarator(typ, name)
	if err != nil {
		return "", err
	}
	sb.WriteString(decl)

	if v.Init != nil {
		var init string
		if isList {
			init, err = w.arrayConstructor(typ, lit)
		} else {
			init, err = w.writeExpression(v.Init, precLowest)
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(" = ")
		sb.WriteString(init)
	}
	return sb.String(), nil
}

// arrayConstructor renders an array literal as T[N](a, b, ...).
func (w *Writer) arrayConstructor(typ syntax.Type, lit *syntax.ArrayLiteral) (string, error) {
	base, suffix, err := w.typeParts(typ)
	if err != nil {
		return "", err
	}
	args := make([]string, 0, len(lit.Elems))
	for _, e := range lit.Elems {
		s, err := w.writeExpression(e, precLowest)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}
	return fmt.Sprintf("%s%s(%s)", base, suffix, strings.Join(args, ", ")), nil
}

// layoutPrefix renders "layout(...) " for the qualifiers GLSL knows, or
// "" when none remain. Custom flags without a GLSL spelling are recorded
// under owner in the translation info.
func (w *Writer) layoutPrefix(owner string, layout syntax.Layout) (string, error) {
	var parts []string
	for _, q := range layout {
		if q.Custom {
			if _, ok := interpolationQualifier(q); ok {
				continue
			}
			flag := q.Name()
			if q.Value != nil {
				value, err := w.writeExpression(q.Value, precLowest)
				if err != nil {
					return "", err
				}
				flag += "=" + value
			}
			w.customFlags[owner] = append(w.customFlags[owner], flag)
			continue
		}
		if q.Value == nil {
			parts = append(parts, q.Key)
			continue
		}
		value, err := w.writeExpression(q.Value, precLowest)
		if err != nil {
			return "", err
		}
		parts = append(parts, q.Key+" = "+value)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "layout(" + strings.Join(parts, ", ") + ") ", nil
}

// interpolationQualifier maps an interpolation or auxiliary flag such
// as $flat to its GLSL qualifier.
func interpolationQualifier(q syntax.Qualifier) (string, bool) {
	if !q.Custom || q.Value != nil {
		return "", false
	}
	switch q.Key {
	case "flat", "noperspective", "smooth", "centroid", "sample", "invariant":
		return q.Key, true
	}
	return "", false
}

// writePrototypes declares every function other than main, so that
// definitions may appear in any order.
func (w *Writer) writePrototypes() error {
	n := 0
	for _, fn := range w.functions {
		name := w.declName(fn)
		if name == "main" {
			continue
		}
		sig, err := w.signature(fn, name)
		if err != nil {
			return err
		}
		w.writeLine("%s;", sig)
		n++
	}
	if n > 0 {
		w.writeLine("")
	}
	return nil
}

// writeFunctions writes function definitions.
func (w *Writer) writeFunctions() error {
	for i, fn := range w.functions {
		if err := w.writeFunction(fn); err != nil {
			return err
		}
		if i < len(w.functions)-1 {
			w.writeLine("")
		}
	}
	return nil
}

// writeFunction writes a single function definition.
func (w *Writer) writeFunction(fn *syntax.FunctionDecl) error {
	if w.options.WriterFlags&WriterFlagDebugInfo != 0 {
		w.writeLine("// %s", fn.Span)
	}
	sig, err := w.signature(fn, w.declName(fn))
	if err != nil {
		return err
	}
	w.writeLine("%s {", sig)
	w.pushIndent()
	if err := w.writeBlock(fn.Body); err != nil {
		return err
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

func (w *Writer) signature(fn *syntax.FunctionDecl, name string) (string, error) {
	ret, err := w.typeName(fn.ReturnType)
	if err != nil {
		return "", err
	}
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		idx, ok := w.symbolIndex(p)
		if !ok {
			return "", &AssertionError{Message: fmt.Sprintf("parameter %s has no symbol", p.Name), Span: p.Span}
		}
		decl, err := w.declarator(p.Type, w.symbolName(idx))
		if err != nil {
			return "", err
		}
		var qual string
		if p.Const {
			qual = "const "
		}
		switch p.Dir {
		case syntax.ParamOut:
			qual += "out "
		case syntax.ParamInOut:
			qual += "inout "
		default:
			if p.Explicit {
				qual += "in "
			}
		}
		params = append(params, qual+decl)
	}
	return fmt.Sprintf("%s %s(%s)", ret, name, strings.Join(params, ", ")), nil
}

// Output helpers

// writeLine writes a line with indentation and newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	if format != "" {
		w.writeIndent()
	}
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString(w.options.Indent)
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
