// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package syntax

import "fmt"

// Inspect traverses an AST in depth-first source order. It calls f(node)
// for each node; if f returns true, Inspect visits the node's children.
// Layout qualifier values are visited as children of their declaration.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	switch n := node.(type) {
	case *StructDecl:
		for _, field := range n.Fields {
			Inspect(field, f)
		}
	case *Field:
		Inspect(n.Type, f)
	case *UniformBlockDecl:
		inspectLayout(n.Layout, f)
		for _, field := range n.Fields {
			Inspect(field, f)
		}
	case *LayoutDecl:
		inspectLayout(n.Layout, f)
	case *VarDecl:
		inspectLayout(n.Layout, f)
		Inspect(n.Type, f)
		Inspect(n.Init, f)
	case *FunctionDecl:
		Inspect(n.ReturnType, f)
		for _, param := range n.Params {
			Inspect(param, f)
		}
		if n.Body != nil {
			Inspect(n.Body, f)
		}
	case *Param:
		Inspect(n.Type, f)
	case *StageBlock:
		for _, d := range n.Decls {
			Inspect(d, f)
		}
	case *IncludeDirective:
	case *DefineDecl:
		Inspect(n.Value, f)

	case *NamedType:
	case *ArrayType:
		Inspect(n.Elem, f)
		Inspect(n.Size, f)

	case *BlockStmt:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *AssignStmt:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *IfStmt:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *ForStmt:
		Inspect(n.Init, f)
		Inspect(n.Cond, f)
		Inspect(n.Post, f)
		Inspect(n.Body, f)
	case *WhileStmt:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)
	case *ReturnStmt:
		Inspect(n.Value, f)
	case *ExprStmt:
		Inspect(n.X, f)
	case *BreakStmt, *ContinueStmt, *DiscardStmt:

	case *Literal, *Ident:
	case *UnaryExpr:
		Inspect(n.X, f)
	case *BinaryExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *TernaryExpr:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *CallExpr:
		Inspect(n.Func, f)
		for _, arg := range n.Args {
			Inspect(arg, f)
		}
	case *MemberExpr:
		Inspect(n.X, f)
	case *IndexExpr:
		Inspect(n.X, f)
		Inspect(n.Index, f)
	case *ArrayLiteral:
		for _, e := range n.Elems {
			Inspect(e, f)
		}

	default:
		panic(fmt.Sprintf("syntax.Inspect: unexpected node type %T", n))
	}
}

func inspectLayout(l Layout, f func(Node) bool) {
	for _, q := range l {
		Inspect(q.Value, f)
	}
}
