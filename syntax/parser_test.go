// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package syntax

import (
	"errors"
	"strings"
	"testing"
)

// Helper function to parse source code
func parseSource(t *testing.T, source string) *Module {
	t.Helper()
	module, err := Parse(source, "test.ash")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return module
}

// Helper function to parse source code that must fail with a ParseError
func parseFailure(t *testing.T, source string) *ParseError {
	t.Helper()
	module, err := Parse(source, "test.ash")
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
	if module != nil {
		t.Error("expected nil module on error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	return perr
}

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

func TestParseMultiStageUnit(t *testing.T) {
	module := parseSource(t, batchSource)

	if module.Source != "test.ash" {
		t.Errorf("expected source test.ash, got %q", module.Source)
	}
	if len(module.Decls) != 4 {
		t.Fatalf("expected 4 top-level declarations, got %d", len(module.Decls))
	}

	st, ok := module.Decls[0].(*StructDecl)
	if !ok {
		t.Fatalf("expected *StructDecl, got %T", module.Decls[0])
	}
	if st.Name != "QuadRenderInfo" || len(st.Fields) != 4 {
		t.Errorf("expected QuadRenderInfo with 4 fields, got %s with %d", st.Name, len(st.Fields))
	}

	block, ok := module.Decls[1].(*UniformBlockDecl)
	if !ok {
		t.Fatalf("expected *UniformBlockDecl, got %T", module.Decls[1])
	}
	if block.Storage != StorageUniform {
		t.Errorf("expected uniform storage, got %v", block.Storage)
	}
	set, binding, ok := block.Layout.Binding()
	if !ok || set != 1 || binding != 0 {
		t.Errorf("expected set 1 binding 0, got %d %d (ok=%v)", set, binding, ok)
	}
	if !block.Layout.Has("scalar") {
		t.Error("expected scalar qualifier")
	}
	arr, ok := block.Fields[2].Type.(*ArrayType)
	if !ok {
		t.Fatalf("expected array field, got %T", block.Fields[2].Type)
	}
	if size, _ := arr.Size.(*Literal).Int(); size != 1024 {
		t.Errorf("expected size 1024, got %d", size)
	}

	stages := module.Stages()
	if len(stages) != 2 || stages[0] != "Vertex" || stages[1] != "Fragment" {
		t.Errorf("expected [Vertex Fragment], got %v", stages)
	}

	frag := module.Decls[3].(*StageBlock)
	if frag.Stage.Kind != StageFragment {
		t.Errorf("expected fragment stage kind, got %v", frag.Stage.Kind)
	}
	if len(frag.Decls) != 5 {
		t.Fatalf("expected 5 fragment declarations, got %d", len(frag.Decls))
	}
	flat := frag.Decls[1].(*VarDecl)
	if flat.Storage != StorageIn {
		t.Errorf("expected in storage, got %v", flat.Storage)
	}
	q, ok := flat.Layout.Lookup("$flat")
	if !ok || !q.Custom || q.Value != nil {
		t.Errorf("expected valueless custom flag $flat, got %+v (ok=%v)", q, ok)
	}
}

func TestParseArrowFunction(t *testing.T) {
	module := parseSource(t, `int foo(float[20] x) -> true ? 1 : 20;`)

	fn, ok := module.Decls[0].(*FunctionDecl)
	if !ok {
		t.Fatalf("expected *FunctionDecl, got %T", module.Decls[0])
	}
	if !fn.Arrow {
		t.Error("expected arrow function")
	}
	if len(fn.Params) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(fn.Params))
	}
	if arr, ok := fn.Params[0].Type.(*ArrayType); !ok || arr.Size == nil {
		t.Errorf("expected sized array parameter, got %T", fn.Params[0].Type)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected body with 1 statement, got %d", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ReturnStmt)
	if !ok {
		t.Fatalf("expected *ReturnStmt, got %T", fn.Body.Stmts[0])
	}
	tern, ok := ret.Value.(*TernaryExpr)
	if !ok {
		t.Fatalf("expected *TernaryExpr, got %T", ret.Value)
	}
	if lit, ok := tern.Cond.(*Literal); !ok || lit.Kind != LiteralBool {
		t.Errorf("expected bool condition, got %T", tern.Cond)
	}
}

func TestParseDuplicateField(t *testing.T) {
	perr := parseFailure(t, `struct S {
    float4 color;
    float2 uv;
    float4 color;
};`)

	if perr.Span.Start.Line != 4 || perr.Span.Start.Column != 12 {
		t.Errorf("expected error at 4:12, got %s", perr.Span)
	}
	if perr.Related == nil {
		t.Fatal("expected related position of first declaration")
	}
	if perr.Related.Start.Line != 2 || perr.Related.Start.Column != 12 {
		t.Errorf("expected related position 2:12, got %s", perr.Related)
	}
	msg := perr.Error()
	if !strings.Contains(msg, "color") || !strings.Contains(msg, "test.ash:2:12") {
		t.Errorf("expected message naming both positions, got %q", msg)
	}
}

func TestParseUnsizedArrays(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name: "final block field",
			source: `layout(set = 0, binding = 0) buffer Data {
    int count;
    float data[];
};`,
		},
		{
			name: "non-final block field",
			source: `layout(set = 0, binding = 0) uniform B {
    float data[];
    int count;
};`,
			wantErr: "must be the last field",
		},
		{
			name:    "struct field",
			source:  `struct S { float data[]; };`,
			wantErr: "cannot be an unsized array",
		},
		{
			name:   "uniform descriptor array",
			source: `layout(set = 0, binding = 0, $variable = 512, $partial) uniform sampler2D GLOBAL_TEXTURES[];`,
		},
		{
			name:   "local with array literal",
			source: `void main() { float2 v[] = { float2(0.0), float2(1.0) }; }`,
		},
		{
			name:    "local without initializer",
			source:  `void main() { float v[]; }`,
			wantErr: "array literal initializer",
		},
		{
			name:    "parameter",
			source:  `void f(float v[]) {}`,
			wantErr: "unsized array",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module, err := Parse(tt.source, "test.ash")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(module.Decls) != 1 {
					t.Errorf("expected 1 declaration, got %d", len(module.Decls))
				}
				return
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if !strings.Contains(perr.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, perr.Error())
			}
		})
	}
}

func TestParseUnsizedFieldErrorPosition(t *testing.T) {
	perr := parseFailure(t, `layout(set = 0, binding = 0) uniform B {
    float data[];
    int count;
};`)
	if perr.Span.Start.Line != 2 || perr.Span.Start.Column != 11 {
		t.Errorf("expected error at the unsized field 2:11, got %s", perr.Span)
	}
}

func TestParseArrayOfArrays(t *testing.T) {
	for _, src := range []string{
		`float[2] x[3];`,
		`float x[2][3];`,
		`struct S { int a[2][2]; };`,
	} {
		perr := parseFailure(t, src)
		if !strings.Contains(perr.Message, "arrays of arrays") {
			t.Errorf("%q: expected arrays of arrays error, got %q", src, perr.Error())
		}
	}
}

func TestParseLayout(t *testing.T) {
	module := parseSource(t,
		`layout(set = 0, binding = 0, $variable=512, $partial) uniform sampler2D GLOBAL_TEXTURES[];`)

	v := module.Decls[0].(*VarDecl)
	if v.Storage != StorageUniform {
		t.Errorf("expected uniform storage, got %v", v.Storage)
	}
	names := make([]string, len(v.Layout))
	for i, q := range v.Layout {
		names[i] = q.Name()
	}
	if got := strings.Join(names, ","); got != "set,binding,$variable,$partial" {
		t.Errorf("expected ordered qualifiers, got %s", got)
	}
	variable, _ := v.Layout.Lookup("$variable")
	if n, ok := variable.IntValue(); !ok || n != 512 {
		t.Errorf("expected $variable=512, got %d (ok=%v)", n, ok)
	}
	if !IsUnsizedArray(v.Type) {
		t.Errorf("expected unsized array type, got %T", v.Type)
	}
}

func TestParsePushConstantBlock(t *testing.T) {
	module := parseSource(t, `
push_constant(scalar, $partial) draw_constants {
    float4x4 mvp;
    float4 tint;
};

@Fragment {
    layout(push_constant) uniform fragment_constants { float alpha; };
    push_constant material { int index; };
}
`)

	draw := module.Decls[0].(*UniformBlockDecl)
	if draw.Storage != StoragePushConstant {
		t.Errorf("expected push constant storage, got %v", draw.Storage)
	}
	if len(draw.Layout) != 2 || draw.Layout[0].Name() != "scalar" || draw.Layout[1].Name() != "$partial" {
		t.Errorf("unexpected qualifiers %+v", draw.Layout)
	}
	if len(draw.Fields) != 2 || draw.Fields[1].Name != "tint" {
		t.Errorf("unexpected fields %+v", draw.Fields)
	}

	stage := module.StageBlocks()[0]
	spelled := stage.Decls[0].(*UniformBlockDecl)
	if spelled.Storage != StoragePushConstant {
		t.Errorf("expected layout(push_constant) uniform to be a push constant block, got %v", spelled.Storage)
	}
	if spelled.Layout.Has("push_constant") {
		t.Error("expected push_constant to move from the layout into the storage class")
	}
	if bare := stage.Decls[1].(*UniformBlockDecl); bare.Storage != StoragePushConstant || len(bare.Layout) != 0 {
		t.Errorf("unexpected bare push constant block %+v", bare)
	}
}

func TestParsePushConstantErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{"binding", "push_constant(binding = 0) pc { float a; };", "cannot have a binding qualifier"},
		{"set", "layout(set = 1, push_constant) uniform pc { float a; };", "cannot have a set qualifier"},
		{"unsized field", "push_constant pc { int n; float a[]; };", "cannot have unsized array field"},
		{"missing name", "push_constant { float a; };", "push constant block name"},
		{"missing semicolon", "push_constant pc { float a; }", "expected ';'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseFailure(t, tt.source)
			if !strings.Contains(perr.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, perr.Error())
			}
		})
	}
}

func TestParseDuplicateLayoutKey(t *testing.T) {
	perr := parseFailure(t, `layout(location = 0, location = 1) out float4 c;`)
	if !strings.Contains(perr.Message, "duplicate layout qualifier") {
		t.Errorf("unexpected error: %v", perr)
	}
	if perr.Related == nil {
		t.Error("expected related position")
	}
}

func TestParseStageTags(t *testing.T) {
	module := parseSource(t, `@Vertex { } @Mesh { } @Compute { }`)
	blocks := module.StageBlocks()
	if len(blocks) != 3 {
		t.Fatalf("expected 3 stage blocks, got %d", len(blocks))
	}
	tests := []struct {
		kind StageKind
		name string
	}{
		{StageVertex, "Vertex"},
		{StageOther, "Mesh"},
		{StageCompute, "Compute"},
	}
	for i, tt := range tests {
		if blocks[i].Stage.Kind != tt.kind || blocks[i].Stage.Name != tt.name {
			t.Errorf("block %d: expected %v %s, got %v %s",
				i, tt.kind, tt.name, blocks[i].Stage.Kind, blocks[i].Stage.Name)
		}
	}
}

func TestParseNestedStageBlock(t *testing.T) {
	perr := parseFailure(t, `@Vertex { @Fragment { } }`)
	if !strings.Contains(perr.Message, "cannot be nested") {
		t.Errorf("unexpected error: %v", perr)
	}
}

func TestParseDirectives(t *testing.T) {
	module := parseSource(t, `#include "common.ash"
#define COUNT 4
#define ENABLED
float weights[COUNT];
`)
	if len(module.Decls) != 4 {
		t.Fatalf("expected 4 declarations, got %d", len(module.Decls))
	}
	inc := module.Decls[0].(*IncludeDirective)
	if inc.Path != "common.ash" {
		t.Errorf("expected include path common.ash, got %q", inc.Path)
	}
	def := module.Decls[1].(*DefineDecl)
	if lit, ok := def.Value.(*Literal); !ok || lit.Value != "4" {
		t.Errorf("expected define value 4, got %#v", def.Value)
	}
	if bare := module.Decls[2].(*DefineDecl); bare.Value != nil {
		t.Errorf("expected bare define, got value %#v", bare.Value)
	}
	v := module.Decls[3].(*VarDecl)
	arr := v.Type.(*ArrayType)
	if id, ok := arr.Size.(*Ident); !ok || id.Name != "COUNT" {
		t.Errorf("expected size COUNT, got %#v", arr.Size)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"a + b * c", "(a + (b * c))"},
		{"(a + b) * c", "((a + b) * c)"},
		{"a || b && c", "(a || (b && c))"},
		{"a == b < c", "(a == (b < c))"},
		{"a & b | c ^ d", "((a & b) | (c ^ d))"},
		{"a << 1 + b", "(a << (1 + b))"},
		{"a - b - c", "((a - b) - c)"},
		{"a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"-a * b", "((-a) * b)"},
		{"!a.b[c]", "(!a.b[c])"},
		{"i++ + --j", "((i++) + (--j))"},
		{"f(x, y).xy", "f(x, y).xy"},
		{"v.length()", "v.length()"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			module := parseSource(t, "void main() { x = "+tt.expr+"; }")
			fn := module.Decls[0].(*FunctionDecl)
			assign := fn.Body.Stmts[0].(*AssignStmt)
			if got := dump(assign.Right); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	module := parseSource(t, `
void main() {
    int total = 0;
    const float scale = 2.0;
    for (int i = 0; i < 4; i++) total += i;
    while (total > 0) { total--; }
    if (total == 0) total = 1; else if (total < 0) discard; else { return; }
    float2 uvs[] = { float2(0.0), float2(1.0, 0.0), };
    extentToPoints(extent, tl, tr);
}`)

	body := module.Decls[0].(*FunctionDecl).Body.Stmts
	if len(body) != 7 {
		t.Fatalf("expected 7 statements, got %d", len(body))
	}

	if v := body[1].(*VarDecl); !v.Const || v.Name != "scale" {
		t.Errorf("expected const scale, got %+v", v)
	}

	loop := body[2].(*ForStmt)
	if _, ok := loop.Init.(*VarDecl); !ok {
		t.Errorf("expected declaration in for init, got %T", loop.Init)
	}
	if post, ok := loop.Post.(*ExprStmt); !ok {
		t.Errorf("expected expression post statement, got %T", loop.Post)
	} else if u, ok := post.X.(*UnaryExpr); !ok || !u.Postfix || u.Op != TokenPlusPlus {
		t.Errorf("expected i++, got %#v", post.X)
	}
	if len(loop.Body.Stmts) != 1 {
		t.Errorf("expected single statement body wrapped in block, got %d statements", len(loop.Body.Stmts))
	}
	if assign, ok := loop.Body.Stmts[0].(*AssignStmt); !ok || assign.Op != TokenPlusEqual {
		t.Errorf("expected compound assignment, got %T", loop.Body.Stmts[0])
	}

	ifs := body[4].(*IfStmt)
	elseIf, ok := ifs.Else.(*IfStmt)
	if !ok {
		t.Fatalf("expected else-if, got %T", ifs.Else)
	}
	if _, ok := elseIf.Then.Stmts[0].(*DiscardStmt); !ok {
		t.Errorf("expected discard, got %T", elseIf.Then.Stmts[0])
	}
	if _, ok := elseIf.Else.(*BlockStmt); !ok {
		t.Errorf("expected else block, got %T", elseIf.Else)
	}

	uvs := body[5].(*VarDecl)
	lit, ok := uvs.Init.(*ArrayLiteral)
	if !ok || len(lit.Elems) != 2 {
		t.Errorf("expected array literal with 2 elements, got %#v", uvs.Init)
	}

	if _, ok := body[6].(*ExprStmt).X.(*CallExpr); !ok {
		t.Errorf("expected call statement, got %T", body[6])
	}
}

func TestParseDeclaratorLists(t *testing.T) {
	module := parseSource(t, `
layout(location = 0) out float4 oColor, oNormal;
const int A = 1, B[2] = {1, 2};

@Vertex {
    float2 tl, br;
    void main() {
        float x = 1.0, y, z[3];
        if (x > 0.0) float u, v;
    }
}
`)

	var globals []string
	for _, d := range module.Decls {
		if v, ok := d.(*VarDecl); ok {
			globals = append(globals, v.Name)
		}
	}
	if got := strings.Join(globals, ","); got != "oColor,oNormal,A,B" {
		t.Errorf("expected oColor,oNormal,A,B, got %s", got)
	}
	normal := module.Decls[1].(*VarDecl)
	if normal.Storage != StorageOut || !normal.Layout.Has("location") {
		t.Errorf("expected oNormal to share the qualifiers, got %+v", normal)
	}
	b := module.Decls[3].(*VarDecl)
	if !b.Const || b.Init == nil {
		t.Errorf("expected const B with an initializer, got %+v", b)
	}
	if _, ok := b.Type.(*ArrayType); !ok {
		t.Errorf("expected B to be an array, got %T", b.Type)
	}

	stage := module.StageBlocks()[0]
	if len(stage.Decls) != 3 || stage.Decls[1].(*VarDecl).Name != "br" {
		t.Fatalf("expected tl, br, main in the stage block, got %d decls", len(stage.Decls))
	}
	body := stage.Decls[2].(*FunctionDecl).Body.Stmts
	var locals []string
	for _, s := range body {
		if v, ok := s.(*VarDecl); ok {
			locals = append(locals, v.Name)
		}
	}
	if got := strings.Join(locals, ","); got != "x,y,z" {
		t.Errorf("expected locals x,y,z, got %s", got)
	}
	if _, ok := body[1].(*VarDecl).Type.(*ArrayType); ok {
		t.Error("expected y to keep the base type")
	}
	if _, ok := body[2].(*VarDecl).Type.(*ArrayType); !ok {
		t.Error("expected z to be an array")
	}
	then := body[3].(*IfStmt).Then.Stmts
	if len(then) != 2 {
		t.Errorf("expected u and v in the branch body, got %d statements", len(then))
	}
}

func TestParseForInitDeclaresOneVariable(t *testing.T) {
	perr := parseFailure(t, "void f() { for (int i = 0, j = 0; i < 4; i++) {} }")
	if !strings.Contains(perr.Message, "single variable") {
		t.Errorf("unexpected error: %v", perr)
	}
}

func TestParseParameters(t *testing.T) {
	module := parseSource(t, `void split(in float4 e, out float2 tl, inout int n, const float k) {}
void main(void) {}`)
	fn := module.Decls[0].(*FunctionDecl)
	want := []ParamDir{ParamIn, ParamOut, ParamInOut, ParamIn}
	for i, p := range fn.Params {
		if p.Dir != want[i] {
			t.Errorf("param %s: expected direction %d, got %d", p.Name, want[i], p.Dir)
		}
	}
	if !fn.Params[3].Const || fn.Params[3].Explicit {
		t.Error("expected implicit-direction const parameter k")
	}
	if main := module.Decls[1].(*FunctionDecl); len(main.Params) != 0 {
		t.Errorf("expected (void) to declare no parameters, got %d", len(main.Params))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		line    int
		column  int
		wantErr string
	}{
		{"missing semicolon", "void main() {\n    return 1\n}", 3, 1, "expected ';'"},
		{"unterminated block", "void main() {\n    x = 1;\n", 3, 1, "unterminated block"},
		{"duplicate parameter", "void f(int a, float a) {}", 1, 21, "duplicate parameter"},
		{"array literal in expression", "void main() { x = {1, 2}; }", 1, 19, "only allowed as a variable initializer"},
		{"qualified function", "uniform void f() {}", 1, 1, "cannot have storage"},
		{"not a declaration", "return 1;", 1, 1, "expected declaration"},
		{"not callable", "void main() { x = (a + b)(1); }", 1, 26, "not callable"},
		{"missing body", "void main();", 1, 12, "function body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseFailure(t, tt.source)
			if perr.Span.Start.Line != tt.line || perr.Span.Start.Column != tt.column {
				t.Errorf("expected error at %d:%d, got %s (%v)", tt.line, tt.column, perr.Span, perr)
			}
			if !strings.Contains(perr.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, perr.Error())
			}
		})
	}
}
