// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package include

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/ashl/syntax"
)

func parse(t *testing.T, source, name string) *syntax.Module {
	t.Helper()
	m, err := syntax.Parse(source, name)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return m
}

// declNames lists declaration names in order, descending into stage blocks.
func declNames(decls []syntax.Decl) []string {
	var names []string
	for _, d := range decls {
		switch d := d.(type) {
		case *syntax.StructDecl:
			names = append(names, d.Name)
		case *syntax.UniformBlockDecl:
			names = append(names, d.Name)
		case *syntax.VarDecl:
			names = append(names, d.Name)
		case *syntax.FunctionDecl:
			names = append(names, d.Name)
		case *syntax.DefineDecl:
			names = append(names, d.Name)
		case *syntax.IncludeDirective:
			names = append(names, "#"+d.Path)
		case *syntax.StageBlock:
			names = append(names, "@"+d.Stage.Name+"{")
			names = append(names, declNames(d.Decls)...)
			names = append(names, "}")
		}
	}
	return names
}

func TestResolveSplicesInPlace(t *testing.T) {
	loader := MapLoader{
		"common.ash": "struct Light { float3 dir; };\n#define MAX_LIGHTS 4\n",
		"frag.ash":   "float shade(float x) -> x;",
	}
	m := parse(t, `float before;
#include "common.ash"
float after;
@Fragment {
    #include "frag.ash"
    void main() {}
}`, "main.ash")

	out, err := Resolve(m, loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "before Light MAX_LIGHTS after @Fragment{ shade main }"
	if got := strings.Join(declNames(out.Decls), " "); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if out.Source != "main.ash" {
		t.Errorf("expected root source name to be kept, got %q", out.Source)
	}

	// The input module is left alone.
	if got := strings.Join(declNames(m.Decls), " "); !strings.Contains(got, "#common.ash") {
		t.Errorf("input module was modified: %q", got)
	}

	// Spliced declarations keep the location of their own unit.
	light := out.Decls[1].(*syntax.StructDecl)
	if light.Span.Source != "common.ash" || light.Span.Start.Line != 1 {
		t.Errorf("expected Light at common.ash:1, got %s", light.Span)
	}
}

func TestResolveNested(t *testing.T) {
	loader := MapLoader{
		"a.ash": "#include \"b.ash\"\nfloat a;",
		"b.ash": "float b;",
	}
	out, err := Resolve(parse(t, `#include "a.ash"
float root;`, "root.ash"), loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(declNames(out.Decls), " "); got != "b a root" {
		t.Errorf("expected \"b a root\", got %q", got)
	}
}

func TestResolveCycle(t *testing.T) {
	loader := MapLoader{
		"A": "#include \"B\"\nfloat a;",
		"B": "#include \"A\"\nfloat b;",
	}
	m := parse(t, loader["A"], "A")

	_, err := Resolve(m, loader)
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if got := strings.Join(cycle.Chain, ","); got != "A,B,A" {
		t.Errorf("expected chain A,B,A, got %s", got)
	}
	if !strings.Contains(err.Error(), "A → B → A") {
		t.Errorf("expected message naming the chain, got %q", err.Error())
	}
	if cycle.Span.Source != "B" || cycle.Span.Start.Line != 1 {
		t.Errorf("expected cycle reported at the directive in B, got %s", cycle.Span)
	}
}

func TestResolveSelfInclude(t *testing.T) {
	m := parse(t, `#include "self.ash"`, "self.ash")
	_, err := Resolve(m, MapLoader{"self.ash": `#include "self.ash"`})
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
}

func TestResolveIncludeOnce(t *testing.T) {
	loader := MapLoader{
		"b.ash":      "#include \"common.ash\"\nfloat b;",
		"c.ash":      "#include \"common.ash\"\nfloat c;",
		"common.ash": "struct Shared { int x; };",
	}
	out, err := Resolve(parse(t, `#include "b.ash"
#include "c.ash"
#include "common.ash"`, "root.ash"), loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(declNames(out.Decls), " "); got != "Shared b c" {
		t.Errorf("expected \"Shared b c\", got %q", got)
	}
}

func TestResolveIncludeOncePerStage(t *testing.T) {
	loader := MapLoader{
		"util.ash":   "float helper() -> 1.0;",
		"common.ash": "struct Shared { int x; };",
	}
	out, err := Resolve(parse(t, `#include "common.ash"
@Vertex {
    #include "util.ash"
    #include "common.ash"
}
@Fragment {
    #include "util.ash"
    #include "util.ash"
}`, "root.ash"), loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Each stage gets its own copy; file-scope units are visible everywhere.
	want := "Shared @Vertex{ helper } @Fragment{ helper }"
	if got := strings.Join(declNames(out.Decls), " "); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolveNotFound(t *testing.T) {
	m := parse(t, "\n#include \"missing.ash\"", "root.ash")
	_, err := Resolve(m, MapLoader{})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if nf.Path != "missing.ash" {
		t.Errorf("expected path missing.ash, got %q", nf.Path)
	}
	if nf.Span.Start.Line != 2 || nf.Span.Start.Column != 1 {
		t.Errorf("expected directive position 2:1, got %s", nf.Span)
	}
}

func TestResolveLoaderFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	loader := LoaderFunc(func(path string) (string, error) {
		if path == "gone.ash" {
			return "", fmt.Errorf("lookup %s: %w", path, ErrNotFound)
		}
		return "", boom
	})

	_, err := Resolve(parse(t, `#include "gone.ash"`, "root.ash"), loader)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected wrapped ErrNotFound to become *NotFoundError, got %v", err)
	}

	_, err = Resolve(parse(t, `#include "other.ash"`, "root.ash"), loader)
	if !errors.Is(err, boom) {
		t.Errorf("expected loader error to be wrapped, got %v", err)
	}
}

func TestResolveParseErrorInIncludedUnit(t *testing.T) {
	loader := MapLoader{"bad.ash": "struct S { float x; float x; };"}
	_, err := Resolve(parse(t, `#include "bad.ash"`, "root.ash"), loader)
	var perr *syntax.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *syntax.ParseError, got %v", err)
	}
	if perr.Span.Source != "bad.ash" {
		t.Errorf("expected error located in bad.ash, got %s", perr.Span)
	}
	if !strings.Contains(err.Error(), `"bad.ash"`) {
		t.Errorf("expected error to name the include, got %q", err.Error())
	}
}

func TestResolveStageBlockInsideStage(t *testing.T) {
	loader := MapLoader{"stage.ash": "@Vertex { void main() {} }"}
	_, err := Resolve(parse(t, `@Fragment { #include "stage.ash" }`, "root.ash"), loader)
	var perr *syntax.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *syntax.ParseError, got %v", err)
	}
}

func TestResolveIdempotent(t *testing.T) {
	loader := MapLoader{"common.ash": "float shared;"}
	m := parse(t, `#include "common.ash"
@Vertex { void main() {} }`, "root.ash")

	once, err := Resolve(m, loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Resolve(once, loader)
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if twice != once {
		t.Error("expected a module without directives to be returned unchanged")
	}

	plain := parse(t, `float x;`, "plain.ash")
	out, err := Resolve(plain, nil)
	if err != nil || out != plain {
		t.Errorf("expected plain module returned as is, got %v, %v", out, err)
	}
}
