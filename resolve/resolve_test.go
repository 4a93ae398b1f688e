// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package resolve

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/ashl/builtins"
	"github.com/gogpu/ashl/syntax"
)

const batchSource = `
struct QuadRenderInfo
{
    int textureId;
    float4 color;
    float2 size;
    mat3 transform;
};

layout(set = 1, binding = 0, scalar) uniform batch_info {
    float time;
    mat4 projection;
    QuadRenderInfo quads[1024];
};

@Vertex {
    layout(location = 0) out float2 oUV;

    void main() {
        QuadRenderInfo renderInfo = batch_info.quads[gl_VertexIndex];
        oUV = renderInfo.size;
    }
}

@Fragment {
    layout(location = 0) in float2 iUV;
    layout(location = 1, $flat) in int iQuadIndex;
    layout(location = 0) out float4 oColor;

    void main() {
        oColor = batch_info.quads[iQuadIndex].color;
    }

    int foo(float[20] x) -> true ? 1 : 20;
}
`

func resolveSource(t *testing.T, source string) *syntax.Module {
	t.Helper()
	m, err := syntax.Parse(source, "test.ash")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Resolve(m)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	return out
}

func resolveFailure(t *testing.T, source string) error {
	t.Helper()
	m, err := syntax.Parse(source, "test.ash")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Resolve(m)
	if err == nil {
		t.Fatal("expected resolve error, got nil")
	}
	if out != nil {
		t.Error("expected nil module on error")
	}
	return err
}

// unbound lists every identifier, type name or member left unresolved.
func unbound(m *syntax.Module) []string {
	var missing []string
	for _, d := range m.Decls {
		syntax.Inspect(d, func(n syntax.Node) bool {
			switch n := n.(type) {
			case *syntax.Ident:
				if !n.Ref.IsBound() {
					missing = append(missing, n.Name+"@"+n.Span.String())
				}
			case *syntax.NamedType:
				if !n.Ref.IsBound() {
					missing = append(missing, n.Name+"@"+n.Span.String())
				}
			case *syntax.MemberExpr:
				if n.Field == syntax.FieldUnresolved {
					missing = append(missing, "."+n.Name+"@"+n.Span.String())
				}
			}
			return true
		})
	}
	return missing
}

// refName returns the name a resolved reference points at.
func refName(m *syntax.Module, ref syntax.Ref) string {
	switch ref.Kind {
	case syntax.RefSymbol:
		return m.Symbol(ref).Name
	case syntax.RefBuiltin:
		return "builtin " + builtins.At(int(ref.Index)).Name
	}
	return "<unbound>"
}

// findIdents returns all identifier uses with the given name.
func findIdents(m *syntax.Module, name string) []*syntax.Ident {
	var found []*syntax.Ident
	for _, d := range m.Decls {
		syntax.Inspect(d, func(n syntax.Node) bool {
			if id, ok := n.(*syntax.Ident); ok && id.Name == name {
				found = append(found, id)
			}
			return true
		})
	}
	return found
}

func TestResolveBatchUnit(t *testing.T) {
	m := resolveSource(t, batchSource)

	if missing := unbound(m); len(missing) > 0 {
		t.Fatalf("expected every reference bound, unresolved: %v", missing)
	}

	// Struct, block, and per-stage declarations are all symbols.
	kinds := make(map[string]syntax.SymbolKind)
	stages := make(map[string]string)
	for _, s := range m.Symbols {
		kinds[s.Name] = s.Kind
		if s.Global {
			stages[s.Name] = s.Stage
		}
	}
	if kinds["QuadRenderInfo"] != syntax.SymbolStruct {
		t.Errorf("expected QuadRenderInfo to be a struct, got %s", kinds["QuadRenderInfo"])
	}
	if kinds["batch_info"] != syntax.SymbolBlock {
		t.Errorf("expected batch_info to be a block, got %s", kinds["batch_info"])
	}
	if kinds["renderInfo"] != syntax.SymbolLocal || kinds["x"] != syntax.SymbolParam {
		t.Errorf("expected renderInfo local and x param, got %s and %s", kinds["renderInfo"], kinds["x"])
	}
	if stages["oUV"] != "Vertex" || stages["oColor"] != "Fragment" || stages["batch_info"] != "" {
		t.Errorf("unexpected stage ownership: %v", stages)
	}

	vi := findIdents(m, "gl_VertexIndex")
	if len(vi) != 1 || vi[0].Ref.Kind != syntax.RefBuiltin {
		t.Fatalf("expected gl_VertexIndex bound to the builtin table, got %v", vi)
	}
}

func TestResolveMemberFields(t *testing.T) {
	m := resolveSource(t, batchSource)

	fields := make(map[string]int)
	for _, d := range m.Decls {
		syntax.Inspect(d, func(n syntax.Node) bool {
			if me, ok := n.(*syntax.MemberExpr); ok {
				fields[me.Name] = me.Field
			}
			return true
		})
	}
	for name, want := range map[string]int{"quads": 2, "size": 2, "color": 1} {
		if got := fields[name]; got != want {
			t.Errorf("expected .%s to resolve to field %d, got %d", name, want, got)
		}
	}
}

func TestResolveUndeclaredIdentifier(t *testing.T) {
	err := resolveFailure(t, `@Vertex {
void main() {
    int a = 1;
    a = a + 1;
 int y = foo;
}
}`)
	var uerr *UnresolvedSymbolError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnresolvedSymbolError, got %T: %v", err, err)
	}
	if uerr.Name != "foo" {
		t.Errorf("expected name foo, got %q", uerr.Name)
	}
	if uerr.Span.Start.Line != 5 || uerr.Span.Start.Column != 10 {
		t.Errorf("expected position 5:10, got %d:%d", uerr.Span.Start.Line, uerr.Span.Start.Column)
	}
	if uerr.Scope != "function main in @Vertex" {
		t.Errorf("expected scope description, got %q", uerr.Scope)
	}
	if !strings.HasPrefix(err.Error(), "test.ash:5:10: ") {
		t.Errorf("expected message to start with the position, got %q", err.Error())
	}
}

func TestResolveShadowing(t *testing.T) {
	m := resolveSource(t, `
float value;
float sin;
@Fragment {
    float value;
    void main() {
        float value = 1.0;
        {
            float value = value + 2.0;
            value = value * 3.0;
        }
        value = sin;
    }
}`)

	uses := findIdents(m, "value")
	if len(uses) != 4 {
		t.Fatalf("expected 4 uses of value, got %d", len(uses))
	}
	// Initializer sees the outer local; the inner assignment sees the
	// inner local; the final assignment sees the outer local again.
	syms := make([]*syntax.Symbol, len(uses))
	for i, u := range uses {
		syms[i] = m.Symbol(u.Ref)
		if syms[i] == nil || syms[i].Kind != syntax.SymbolLocal {
			t.Fatalf("use %d: expected a local, got %+v", i, syms[i])
		}
	}
	if syms[0] != syms[3] {
		t.Error("expected the initializer and the outer assignment to bind the same local")
	}
	if syms[1] != syms[2] || syms[1] == syms[0] {
		t.Error("expected the inner assignment to bind the inner local")
	}

	// A file-scope declaration shadows the builtin of the same name.
	sin := findIdents(m, "sin")
	if len(sin) != 1 || sin[0].Ref.Kind != syntax.RefSymbol {
		t.Errorf("expected sin bound to the global variable, got %v", sin)
	}
}

func TestResolveStageScopes(t *testing.T) {
	// Stage declarations are invisible to other stages.
	err := resolveFailure(t, `
@Vertex {
    float shared;
    void main() {}
}
@Fragment {
    void main() { float x = shared; }
}`)
	var uerr *UnresolvedSymbolError
	if !errors.As(err, &uerr) || uerr.Name != "shared" {
		t.Fatalf("expected shared to be unresolved in @Fragment, got %v", err)
	}

	// Blocks with the same tag share a scope, in any order.
	m := resolveSource(t, `
@Vertex { void main() { helper(); } }
@Vertex { void helper() {} }`)
	if missing := unbound(m); len(missing) > 0 {
		t.Errorf("expected merged stage blocks to resolve, unresolved: %v", missing)
	}

	// Forward references at file scope.
	m = resolveSource(t, `
float twice(float x) -> half(x) * 4.0;
float half(float x) -> x / 2.0;
@Compute { layout(local_size_x = GROUP) in; void main() {} }
#define GROUP 64
`)
	if missing := unbound(m); len(missing) > 0 {
		t.Errorf("expected forward references to resolve, unresolved: %v", missing)
	}
}

func TestResolveLocalScopes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ident  string
	}{
		{"use before declaration", "@Vertex { void main() { x = 1; int x; } }", "x"},
		{"block local after block", "@Vertex { void main() { { int x; } x = 1; } }", "x"},
		{"for variable after loop", "@Vertex { void main() { for (int i = 0; i < 2; i++) {} i = 0; } }", "i"},
		{"parameter of other function", "float f(float p) -> p; @Vertex { void main() { float y = p; } }", "p"},
		{"self initializer", "@Vertex { void main() { int x = x; } }", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolveFailure(t, tt.source)
			var uerr *UnresolvedSymbolError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected *UnresolvedSymbolError, got %T: %v", err, err)
			}
			if uerr.Name != tt.ident {
				t.Errorf("expected %q unresolved, got %q", tt.ident, uerr.Name)
			}
		})
	}
}

func TestResolveRedeclaration(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		line     int
		previous int
	}{
		{"globals", "float a;\nint a;", 2, 1},
		{"function overload", "float f(float x) -> x;\nint f(int x) -> x;", 2, 1},
		{"struct and var", "struct S { int x; };\nfloat S;", 2, 1},
		{"same stage twice", "@Vertex { float v; void main() {} }\n@Vertex { float v; }", 2, 1},
		{"locals", "@Vertex { void main() {\nint a;\nint a; } }", 3, 2},
		{"local and parameter", "float f(float x) {\nfloat x = 1.0;\nreturn x; }", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolveFailure(t, tt.source)
			var rerr *RedeclarationError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *RedeclarationError, got %T: %v", err, err)
			}
			if rerr.Span.Start.Line != tt.line || rerr.Previous.Start.Line != tt.previous {
				t.Errorf("expected lines %d and %d, got %s and %s", tt.line, tt.previous, rerr.Span, rerr.Previous)
			}
		})
	}
}

func TestResolveStageShadowsGlobal(t *testing.T) {
	m := resolveSource(t, `
float v;
@Vertex { float v; void main() { v = 1.0; } }`)
	uses := findIdents(m, "v")
	if len(uses) != 1 {
		t.Fatalf("expected one use of v, got %d", len(uses))
	}
	if sym := m.Symbol(uses[0].Ref); sym == nil || sym.Stage != "Vertex" {
		t.Errorf("expected v bound to the stage variable, got %+v", sym)
	}
}

func TestResolveBindingConflict(t *testing.T) {
	err := resolveFailure(t, `
layout(set = 0, binding = 1) uniform A { float a; };
layout(binding = 1) uniform sampler2D tex;
@Fragment { void main() {} }`)
	var berr *BindingConflictError
	if !errors.As(err, &berr) {
		t.Fatalf("expected *BindingConflictError, got %T: %v", err, err)
	}
	if berr.Name != "tex" || berr.Previous != "A" || berr.Set != 0 || berr.Binding != 1 {
		t.Errorf("unexpected conflict %+v", berr)
	}

	// Different sets do not conflict.
	resolveSource(t, `
layout(set = 0, binding = 1) uniform A { float a; };
layout(set = 1, binding = 1) uniform B { float b; };
@Fragment { void main() {} }`)
}

func TestResolveBindingConflictThroughDefines(t *testing.T) {
	err := resolveFailure(t, `
#define MATERIAL_SET 2
#define ALBEDO_BINDING 3
#define SLOT ALBEDO_BINDING
layout(set = MATERIAL_SET, binding = ALBEDO_BINDING) uniform sampler2D albedo;
layout(set = 2, binding = SLOT) uniform sampler2D normals;
@Fragment { void main() {} }`)
	var berr *BindingConflictError
	if !errors.As(err, &berr) {
		t.Fatalf("expected *BindingConflictError, got %T: %v", err, err)
	}
	if berr.Name != "normals" || berr.Previous != "albedo" || berr.Set != 2 || berr.Binding != 3 {
		t.Errorf("unexpected conflict %+v", berr)
	}

	// Push constant blocks take no descriptor slot.
	resolveSource(t, `
layout(set = 0, binding = 0) uniform sampler2D albedo;
push_constant pc { float4 tint; };
layout(push_constant) uniform more { float alpha; };
@Fragment { void main() {} }`)
}

func TestResolveEntryPoints(t *testing.T) {
	tests := []struct {
		name   string
		source string
		count  int
	}{
		{"missing", "@Vertex { void helper() {} }", 0},
		{"split blocks", "@Vertex { void main() {} }\n@Vertex { void other() {} }\n@Fragment { void other() {} }", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolveFailure(t, tt.source)
			var eerr *EntryPointError
			if !errors.As(err, &eerr) {
				t.Fatalf("expected *EntryPointError, got %T: %v", err, err)
			}
			if eerr.Count != tt.count {
				t.Errorf("expected count %d, got %d", tt.count, eerr.Count)
			}
		})
	}

	// Two mains in one stage are a redeclaration.
	err := resolveFailure(t, "@Vertex { void main() {} }\n@Vertex { void main() {} }")
	var rerr *RedeclarationError
	if !errors.As(err, &rerr) {
		t.Errorf("expected *RedeclarationError for duplicate main, got %v", err)
	}

	// A main outside any stage is an ordinary function.
	resolveSource(t, "void main() {}")
}

func TestResolveTypeMismatch(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"arity", "float f(float a, float b) -> a + b;\n@Vertex { void main() { float x = f(1.0); } }", "expects 2 arguments, got 1"},
		{"builtin arity", "@Vertex { void main() { float x = mod(1.0); } }", "expects 2 arguments, got 1"},
		{"builtin range", "@Vertex { void main() { float x = atan(1.0, 2.0, 3.0); } }", "expects 1 to 2 arguments, got 3"},
		{"constructor arity", "struct S { int a; int b; };\n@Vertex { void main() { S s = S(1); } }", "expects 2 arguments, got 1"},
		{"empty constructor", "@Vertex { void main() { float4 v = float4(); } }", "at least 1 argument"},
		{"call a variable", "float g;\n@Vertex { void main() { float x = g(1.0); } }", "is not a function"},
		{"variable as type", "float g;\n@Vertex { void main() { g x; } }", "is not a type"},
		{"type as value", "@Vertex { void main() { float x = float4; } }", "used as a value"},
		{"function as value", "float f() -> 1.0;\n@Vertex { void main() { float x = f; } }", "used as a value"},
		{"void variable", "@Vertex { void main() { void x; } }", "cannot have type void"},
		{"bad swizzle", "@Vertex { void main() { float2 v = float2(1.0); float z = v.z; } }", "invalid swizzle .z on float2"},
		{"mixed swizzle", "@Vertex { void main() { float4 v = float4(1.0); float2 z = v.xg; } }", "invalid swizzle"},
		{"long swizzle", "@Vertex { void main() { float4 v = float4(1.0); float4 z = v.xyzwx; } }", "invalid swizzle"},
		{"matrix member", "@Vertex { void main() { mat4 m = mat4(1.0); float z = m.x; } }", "mat4 has no member x"},
		{"array member", "@Vertex { void main() { float a[2]; float z = a.x; } }", "array of float has no member x"},
		{"length args", "@Vertex { void main() { float a[2]; int n = a.length(1); } }", "length() takes no arguments"},
		{"read-only builtin", "@Vertex { void main() { gl_VertexIndex = 1; } }", "cannot assign to read-only gl_VertexIndex"},
		{"read-only increment", "@Vertex { void main() { gl_VertexIndex++; } }", "read-only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolveFailure(t, tt.source)
			var terr *TypeMismatchError
			if !errors.As(err, &terr) {
				t.Fatalf("expected *TypeMismatchError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected message containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestResolveUnknownMember(t *testing.T) {
	err := resolveFailure(t, `
struct Light { float3 dir; };
@Fragment { void main() { Light l = Light(float3(0.0)); float3 c = l.color; } }`)
	var uerr *UnresolvedSymbolError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnresolvedSymbolError, got %T: %v", err, err)
	}
	if uerr.Name != "color" || uerr.Scope != "struct Light" {
		t.Errorf("expected color unresolved in struct Light, got %q in %q", uerr.Name, uerr.Scope)
	}
}

func TestResolveSwizzlesAndLength(t *testing.T) {
	m := resolveSource(t, `
layout(binding = 0) buffer Particles { float4 data[]; };
@Compute {
    layout(local_size_x = 64) in;
    void main() {
        float4 p = Particles.data[0];
        float3 rgb = p.rgb;
        float2 st = p.st;
        float x = p.x;
        float xx = x.x;
        p.xy = rgb.zx;
        int n = Particles.data.length() + p.length();
        float m = mat3(1.0)[1].y;
        float f = float2(1.0).yx.x;
        float c = max(p, float4(0.0)).w;
    }
}`)

	var swizzles, lengths, unchecked int
	for _, d := range m.Decls {
		syntax.Inspect(d, func(n syntax.Node) bool {
			if me, ok := n.(*syntax.MemberExpr); ok {
				switch me.Field {
				case syntax.FieldSwizzle:
					swizzles++
				case syntax.FieldLength:
					lengths++
				case syntax.FieldUnchecked:
					unchecked++
				}
			}
			return true
		})
	}
	if swizzles != 10 {
		t.Errorf("expected 10 swizzles, got %d", swizzles)
	}
	if lengths != 2 {
		t.Errorf("expected 2 length calls, got %d", lengths)
	}
	if unchecked != 0 {
		t.Errorf("expected every member checked, got %d unchecked", unchecked)
	}
}

func TestResolveUncheckedMember(t *testing.T) {
	// The result type of step is not tracked, so its members are not checked.
	m := resolveSource(t, `@Fragment { void main() { float w = step(0.5, float4(1.0)).w; } }`)
	var field int
	for _, d := range m.Decls {
		syntax.Inspect(d, func(n syntax.Node) bool {
			if me, ok := n.(*syntax.MemberExpr); ok {
				field = me.Field
			}
			return true
		})
	}
	if field != syntax.FieldUnchecked {
		t.Errorf("expected FieldUnchecked, got %d", field)
	}
}

func TestResolveLeftoverInclude(t *testing.T) {
	err := resolveFailure(t, `#include "common.ash"`)
	if !strings.Contains(err.Error(), "must be resolved before") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestResolveRecursiveDefine(t *testing.T) {
	// Self-referential defines resolve; type inference must not loop.
	m := resolveSource(t, `#define LOOP LOOP.x
@Vertex { void main() { float y = LOOP; } }`)
	if got := refName(m, findIdents(m, "LOOP")[1].Ref); got != "LOOP" {
		t.Errorf("expected LOOP bound to the define, got %s", got)
	}
}

func TestResolveIsRepeatable(t *testing.T) {
	m := resolveSource(t, batchSource)
	n := len(m.Symbols)
	if _, err := Resolve(m); err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if len(m.Symbols) != n {
		t.Errorf("expected %d symbols after re-resolving, got %d", n, len(m.Symbols))
	}
}
