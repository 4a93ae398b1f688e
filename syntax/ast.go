// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package syntax

import "strconv"

// Module represents one compilation unit.
type Module struct {
	// Source is the name of the unit the declarations were parsed from.
	Source string
	Decls  []Decl

	// Symbols is the binding arena filled in by reference resolution.
	// Ident.Ref and NamedType.Ref index into it.
	Symbols []Symbol
}

// Symbol returns the symbol a reference points at, or nil if the
// reference is unbound or points into the builtin table.
func (m *Module) Symbol(ref Ref) *Symbol {
	if ref.Kind != RefSymbol || int(ref.Index) >= len(m.Symbols) {
		return nil
	}
	return &m.Symbols[ref.Index]
}

// StageBlocks returns the stage blocks of the module in source order.
func (m *Module) StageBlocks() []*StageBlock {
	var blocks []*StageBlock
	for _, d := range m.Decls {
		if sb, ok := d.(*StageBlock); ok {
			blocks = append(blocks, sb)
		}
	}
	return blocks
}

// Stages returns the distinct stage names present in the module.
func (m *Module) Stages() []string {
	var names []string
	seen := make(map[string]bool)
	for _, sb := range m.StageBlocks() {
		if !seen[sb.Stage.Name] {
			seen[sb.Stage.Name] = true
			names = append(names, sb.Stage.Name)
		}
	}
	return names
}

// RefKind tells which table a Ref indexes.
type RefKind uint8

const (
	RefNone    RefKind = iota // unbound
	RefSymbol                 // Module.Symbols
	RefBuiltin                // builtins package tables
)

// Ref is a non-owning binding from a use site to its declaration.
type Ref struct {
	Kind  RefKind
	Index uint32
}

// SymbolRef returns a reference to Module.Symbols[i].
func SymbolRef(i int) Ref { return Ref{Kind: RefSymbol, Index: uint32(i)} }

// BuiltinRef returns a reference to entry i of a builtin table.
func BuiltinRef(i int) Ref { return Ref{Kind: RefBuiltin, Index: uint32(i)} }

// IsBound reports whether the reference has been resolved.
func (r Ref) IsBound() bool { return r.Kind != RefNone }

// SymbolKind classifies a declared symbol.
type SymbolKind uint8

const (
	SymbolStruct SymbolKind = iota
	SymbolBlock
	SymbolVar
	SymbolDefine
	SymbolFunction
	SymbolParam
	SymbolLocal
)

var symbolKindNames = [...]string{
	SymbolStruct:   "struct",
	SymbolBlock:    "uniform block",
	SymbolVar:      "variable",
	SymbolDefine:   "define",
	SymbolFunction: "function",
	SymbolParam:    "parameter",
	SymbolLocal:    "local variable",
}

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return "symbol(" + strconv.Itoa(int(k)) + ")"
}

// IsType reports whether symbols of this kind name a type.
func (k SymbolKind) IsType() bool { return k == SymbolStruct }

// Symbol is a declared name.
type Symbol struct {
	Name string
	Kind SymbolKind
	Decl Node // *StructDecl, *UniformBlockDecl, *VarDecl, *DefineDecl, *FunctionDecl or *Param
	Span Span

	// Stage is the stage block the symbol was declared in, or "" for
	// declarations at file scope.
	Stage string

	// Global is true for declarations at file or stage scope, as
	// opposed to parameters and locals.
	Global bool
}

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() Span
}

// Decl is the interface for declarations.
type Decl interface {
	Node
	declNode()
}

// Stmt is the interface for statements.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for expressions.
type Expr interface {
	Node
	exprNode()
}

// Type is the interface for type expressions.
type Type interface {
	Node
	typeNode()
}

// Qualifier is one entry of a layout(...) list.
type Qualifier struct {
	Key    string
	Custom bool // $-prefixed engine flag
	Value  Expr // nil for boolean flags
	Span   Span
}

// Name returns the key as written, with the $ sigil for custom flags.
func (q Qualifier) Name() string {
	if q.Custom {
		return "$" + q.Key
	}
	return q.Key
}

// IntValue returns the qualifier value when it is an integer literal.
func (q Qualifier) IntValue() (int64, bool) {
	lit, ok := q.Value.(*Literal)
	if !ok || lit.Kind != LiteralInt {
		return 0, false
	}
	return lit.Int()
}

// Layout is an ordered layout qualifier list. Keys are unique.
type Layout []Qualifier

// Lookup returns the qualifier with the given key. Custom flags are
// looked up with their $ sigil.
func (l Layout) Lookup(name string) (Qualifier, bool) {
	for _, q := range l {
		if q.Name() == name {
			return q, true
		}
	}
	return Qualifier{}, false
}

// Has reports whether the layout contains the given key.
func (l Layout) Has(name string) bool {
	_, ok := l.Lookup(name)
	return ok
}

// without returns a copy of the layout without the given key.
func (l Layout) without(name string) Layout {
	out := make(Layout, 0, len(l))
	for _, q := range l {
		if q.Name() != name {
			out = append(out, q)
		}
	}
	return out
}

// Binding returns the descriptor set and binding of a layout. The set
// defaults to 0 when only a binding is given.
func (l Layout) Binding() (set, binding int64, ok bool) {
	b, found := l.Lookup("binding")
	if !found {
		return 0, 0, false
	}
	binding, ok = b.IntValue()
	if !ok {
		return 0, 0, false
	}
	if s, found := l.Lookup("set"); found {
		if set, ok = s.IntValue(); !ok {
			return 0, 0, false
		}
	}
	return set, binding, true
}

// StorageClass is the storage qualifier of a global variable or block.
type StorageClass uint8

const (
	StorageNone StorageClass = iota
	StorageIn
	StorageOut
	StorageUniform
	StorageBuffer
	StoragePushConstant
)

func (s StorageClass) String() string {
	switch s {
	case StorageIn:
		return "in"
	case StorageOut:
		return "out"
	case StorageUniform:
		return "uniform"
	case StorageBuffer:
		return "buffer"
	case StoragePushConstant:
		return "push_constant"
	default:
		return ""
	}
}

// StructDecl represents a struct declaration.
type StructDecl struct {
	Name   string
	Fields []*Field
	Span   Span
}

func (s *StructDecl) Pos() Span { return s.Span }
func (s *StructDecl) declNode() {}

// Field represents a struct or block field.
type Field struct {
	Name string
	Type Type
	Span Span
}

func (f *Field) Pos() Span { return f.Span }

// UniformBlockDecl represents a uniform, buffer or push constant block.
// The block name doubles as the instance name: fields are accessed
// as Name.field.
type UniformBlockDecl struct {
	Name     string
	Layout   Layout
	Storage  StorageClass // StorageUniform, StorageBuffer or StoragePushConstant
	ReadOnly bool
	Fields   []*Field
	Span     Span
}

func (u *UniformBlockDecl) Pos() Span { return u.Span }
func (u *UniformBlockDecl) declNode() {}

// VarDecl represents a global or local variable declaration.
type VarDecl struct {
	Name    string
	Type    Type
	Init    Expr
	Layout  Layout
	Storage StorageClass
	Const   bool
	Span    Span
}

func (v *VarDecl) Pos() Span { return v.Span }
func (v *VarDecl) declNode() {}
func (v *VarDecl) stmtNode() {} // local declarations are statements

// LayoutDecl represents a qualifier-only declaration such as
// layout(local_size_x = 8) in;
type LayoutDecl struct {
	Layout  Layout
	Storage StorageClass // StorageIn or StorageOut
	Span    Span
}

func (l *LayoutDecl) Pos() Span { return l.Span }
func (l *LayoutDecl) declNode() {}

// ParamDir is the direction of a function parameter.
type ParamDir uint8

const (
	ParamIn ParamDir = iota
	ParamOut
	ParamInOut
)

// FunctionDecl represents a function definition.
type FunctionDecl struct {
	Name       string
	ReturnType Type
	Params     []*Param
	Body       *BlockStmt

	// Arrow is true when the function was written as T f(...) -> expr;
	// Body then holds a single ReturnStmt.
	Arrow bool
	Span  Span
}

func (f *FunctionDecl) Pos() Span { return f.Span }
func (f *FunctionDecl) declNode() {}

// Param represents a function parameter.
type Param struct {
	Name string
	Type Type
	Dir  ParamDir
	// Explicit is true when the direction was written out.
	Explicit bool
	Const    bool
	Span     Span
}

func (p *Param) Pos() Span { return p.Span }

// StageBlock groups the declarations of one pipeline stage.
type StageBlock struct {
	Stage Stage
	Decls []Decl
	Span  Span
}

func (s *StageBlock) Pos() Span { return s.Span }
func (s *StageBlock) declNode() {}

// IncludeDirective represents #include "path".
type IncludeDirective struct {
	Path string
	Span Span
}

func (i *IncludeDirective) Pos() Span { return i.Span }
func (i *IncludeDirective) declNode() {}

// DefineDecl represents #define NAME value. Value is nil for a bare
// #define NAME.
type DefineDecl struct {
	Name  string
	Value Expr
	Span  Span
}

func (d *DefineDecl) Pos() Span { return d.Span }
func (d *DefineDecl) declNode() {}

// NamedType represents a scalar, vector, matrix, opaque or struct type.
type NamedType struct {
	Name string
	Ref  Ref
	Span Span
}

func (n *NamedType) Pos() Span { return n.Span }
func (n *NamedType) typeNode() {}

// ArrayType represents T[N], or T[] when Size is nil.
type ArrayType struct {
	Elem Type
	Size Expr // nil for unsized arrays
	Span Span
}

func (a *ArrayType) Pos() Span { return a.Span }
func (a *ArrayType) typeNode() {}

// BlockStmt represents a braced statement list.
type BlockStmt struct {
	Stmts []Stmt
	Span  Span
}

func (b *BlockStmt) Pos() Span { return b.Span }
func (b *BlockStmt) stmtNode() {}

// AssignStmt represents plain and compound assignment.
type AssignStmt struct {
	Op    TokenKind // TokenEqual, TokenPlusEqual, ...
	Left  Expr
	Right Expr
	Span  Span
}

func (a *AssignStmt) Pos() Span { return a.Span }
func (a *AssignStmt) stmtNode() {}

// IfStmt represents an if statement.
type IfStmt struct {
	Cond Expr
	Then *BlockStmt
	Else Stmt // nil, *BlockStmt or *IfStmt
	Span Span
}

func (i *IfStmt) Pos() Span { return i.Span }
func (i *IfStmt) stmtNode() {}

// ForStmt represents a C-style for loop. Each header part may be nil.
type ForStmt struct {
	Init Stmt
	Cond Expr
	Post Stmt
	Body *BlockStmt
	Span Span
}

func (f *ForStmt) Pos() Span { return f.Span }
func (f *ForStmt) stmtNode() {}

// WhileStmt represents a while loop.
type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	Span Span
}

func (w *WhileStmt) Pos() Span { return w.Span }
func (w *WhileStmt) stmtNode() {}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	Value Expr // nil for a bare return
	Span  Span
}

func (r *ReturnStmt) Pos() Span { return r.Span }
func (r *ReturnStmt) stmtNode() {}

// ExprStmt represents an expression evaluated for its side effects.
type ExprStmt struct {
	X    Expr
	Span Span
}

func (e *ExprStmt) Pos() Span { return e.Span }
func (e *ExprStmt) stmtNode() {}

// BreakStmt represents break.
type BreakStmt struct{ Span Span }

func (b *BreakStmt) Pos() Span { return b.Span }
func (b *BreakStmt) stmtNode() {}

// ContinueStmt represents continue.
type ContinueStmt struct{ Span Span }

func (c *ContinueStmt) Pos() Span { return c.Span }
func (c *ContinueStmt) stmtNode() {}

// DiscardStmt represents discard.
type DiscardStmt struct{ Span Span }

func (d *DiscardStmt) Pos() Span { return d.Span }
func (d *DiscardStmt) stmtNode() {}

// LiteralKind classifies a literal.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
)

// Literal represents a numeric or boolean literal. Value is the
// lexeme as written.
type Literal struct {
	Kind  LiteralKind
	Value string
	Span  Span
}

func (l *Literal) Pos() Span { return l.Span }
func (l *Literal) exprNode() {}

// Int parses an integer literal, accepting hex and a u suffix.
func (l *Literal) Int() (int64, bool) {
	if l.Kind != LiteralInt {
		return 0, false
	}
	text := l.Value
	if n := len(text); n > 0 && (text[n-1] == 'u' || text[n-1] == 'U') {
		text = text[:n-1]
	}
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Ident represents a reference to a named value or function.
type Ident struct {
	Name string
	Ref  Ref
	Span Span
}

func (i *Ident) Pos() Span { return i.Span }
func (i *Ident) exprNode() {}

// UnaryExpr represents -x, !x, ~x, ++x, --x, x++ and x--.
type UnaryExpr struct {
	Op      TokenKind
	X       Expr
	Postfix bool
	Span    Span
}

func (u *UnaryExpr) Pos() Span { return u.Span }
func (u *UnaryExpr) exprNode() {}

// BinaryExpr represents a binary operation.
type BinaryExpr struct {
	Op    TokenKind
	Left  Expr
	Right Expr
	Span  Span
}

func (b *BinaryExpr) Pos() Span { return b.Span }
func (b *BinaryExpr) exprNode() {}

// TernaryExpr represents cond ? a : b.
type TernaryExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	Span Span
}

func (t *TernaryExpr) Pos() Span { return t.Span }
func (t *TernaryExpr) exprNode() {}

// CallExpr represents a function call or a type constructor.
// Func is an *Ident, or a *MemberExpr for x.length().
type CallExpr struct {
	Func Expr
	Args []Expr
	Span Span
}

func (c *CallExpr) Pos() Span { return c.Span }
func (c *CallExpr) exprNode() {}

// Special MemberExpr.Field values. Non-negative values index the
// field list of the base struct or block.
const (
	FieldUnresolved = -1
	FieldSwizzle    = -2
	FieldLength     = -3 // array .length
	FieldUnchecked  = -4 // base type could not be determined
)

// MemberExpr represents x.name.
type MemberExpr struct {
	X     Expr
	Name  string
	Field int
	Span  Span
}

func (m *MemberExpr) Pos() Span { return m.Span }
func (m *MemberExpr) exprNode() {}

// IndexExpr represents x[i].
type IndexExpr struct {
	X     Expr
	Index Expr
	Span  Span
}

func (i *IndexExpr) Pos() Span { return i.Span }
func (i *IndexExpr) exprNode() {}

// ArrayLiteral represents { a, b, c }. It only appears as a variable
// initializer.
type ArrayLiteral struct {
	Elems []Expr
	Span  Span
}

func (a *ArrayLiteral) Pos() Span { return a.Span }
func (a *ArrayLiteral) exprNode() {}
