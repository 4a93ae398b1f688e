// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package syntax

import (
	"fmt"
)

// Parser parses tokens into an AST. It stops at the first error.
type Parser struct {
	tokens  []Token
	current int

	// pending holds the declarators after the first in a list such as
	// "float a, b;". Whoever collects the first one collects these next.
	pending []*VarDecl
}

// NewParser creates a new parser for the given tokens. The token slice
// must end with TokenEOF, as produced by Tokenize.
func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		tokens = append(tokens, Token{Kind: TokenEOF})
	}
	return &Parser{tokens: tokens}
}

// Parse parses the tokens and returns a Module AST.
func (p *Parser) Parse() (*Module, error) {
	module := &Module{Source: p.peek().Source}

	for !p.isAtEnd() {
		if p.match(TokenSemicolon) {
			continue
		}
		decl, err := p.declaration(true)
		if err != nil {
			return nil, err
		}
		module.Decls = append(module.Decls, decl)
		for _, v := range p.takePending() {
			module.Decls = append(module.Decls, v)
		}
	}

	return module, nil
}

// Parse tokenizes and parses source in one step.
func Parse(source, name string) (*Module, error) {
	tokens, err := Tokenize(source, name)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// declaration parses a file-scope or stage-scope declaration.
func (p *Parser) declaration(topLevel bool) (Decl, *ParseError) {
	switch tok := p.peek(); tok.Kind {
	case TokenDirective:
		return p.directive()
	case TokenStage:
		if !topLevel {
			return nil, p.errorAt(tok, "stage blocks cannot be nested")
		}
		return p.stageBlock()
	case TokenStruct:
		return p.structDecl()
	case TokenPushConstant:
		return p.pushConstantBlock()
	case TokenLayout, TokenConst, TokenIn, TokenOut, TokenUniform, TokenBuffer, TokenReadonly, TokenIdent:
		return p.qualifiedDecl()
	default:
		return nil, p.expected("declaration")
	}
}

func (p *Parser) directive() (Decl, *ParseError) {
	tok := p.advance()
	switch tok.Lexeme {
	case "include":
		if !p.check(TokenStringLiteral) {
			return nil, p.expected("include path string")
		}
		path := p.advance()
		if path.Lexeme == "" {
			return nil, p.errorAt(path, "empty include path")
		}
		p.match(TokenSemicolon)
		return &IncludeDirective{Path: path.Lexeme, Span: tok.Span()}, nil
	case "define":
		name, err := p.expectIdent("macro name")
		if err != nil {
			return nil, err
		}
		def := &DefineDecl{Name: name.Lexeme, Span: name.Span()}
		// The value, if any, must start on the directive's line.
		if next := p.peek(); next.Kind != TokenEOF && next.Line == tok.Line && next.Source == tok.Source {
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			def.Value = value
		}
		return def, nil
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("unknown directive #%s", tok.Lexeme))
	}
}

func (p *Parser) stageBlock() (*StageBlock, *ParseError) {
	tok := p.advance()
	block := &StageBlock{Stage: StageFromName(tok.Lexeme), Span: tok.Span()}

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}
	for !p.check(TokenRightBrace) {
		if p.isAtEnd() {
			return nil, p.unterminated(tok, "stage block")
		}
		if p.match(TokenSemicolon) {
			continue
		}
		decl, err := p.declaration(false)
		if err != nil {
			return nil, err
		}
		block.Decls = append(block.Decls, decl)
		for _, v := range p.takePending() {
			block.Decls = append(block.Decls, v)
		}
	}
	p.advance() // }
	p.match(TokenSemicolon)

	return block, nil
}

func (p *Parser) structDecl() (*StructDecl, *ParseError) {
	p.advance() // struct
	name, err := p.expectIdent("struct name")
	if err != nil {
		return nil, err
	}

	fields, err := p.fieldList(name, false)
	if err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)

	return &StructDecl{Name: name.Lexeme, Fields: fields, Span: name.Span()}, nil
}

// fieldList parses { T a; T b[N]; ... }. Unsized arrays are only
// accepted as the final field of an interface block.
func (p *Parser) fieldList(owner Token, block bool) ([]*Field, *ParseError) {
	open := p.peek()
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	var fields []*Field
	seen := make(map[string]*Field)
	var unsized *Field

	for !p.check(TokenRightBrace) {
		if p.isAtEnd() {
			return nil, p.unterminated(open, "field list")
		}
		typ, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdent("field name")
		if err != nil {
			return nil, err
		}
		typ, err = p.nameArraySuffix(typ)
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenSemicolon); err != nil {
			return nil, err
		}

		field := &Field{Name: name.Lexeme, Type: typ, Span: name.Span()}
		if prev, dup := seen[field.Name]; dup {
			related := prev.Span
			return nil, &ParseError{
				Message: fmt.Sprintf("duplicate field %q in %s", field.Name, owner.Lexeme),
				Found:   name,
				Span:    field.Span,
				Related: &related,
			}
		}
		if unsized != nil {
			return nil, &ParseError{
				Message: fmt.Sprintf("unsized array field %q must be the last field of %s", unsized.Name, owner.Lexeme),
				Span:    unsized.Span,
			}
		}
		if IsUnsizedArray(typ) {
			if !block {
				return nil, &ParseError{
					Message: fmt.Sprintf("struct field %q cannot be an unsized array", field.Name),
					Found:   name,
					Span:    field.Span,
				}
			}
			unsized = field
		}
		seen[field.Name] = field
		fields = append(fields, field)
	}
	p.advance() // }

	if len(fields) == 0 {
		return nil, p.errorAt(owner, fmt.Sprintf("%s has no fields", owner.Lexeme))
	}
	return fields, nil
}

// qualifiedDecl parses blocks, global variables and functions, which
// all start with an optional layout and storage qualifiers.
func (p *Parser) qualifiedDecl() (Decl, *ParseError) {
	start := p.peek()

	var layout Layout
	if p.check(TokenLayout) {
		var err *ParseError
		if layout, err = p.layout(); err != nil {
			return nil, err
		}
	}

	var (
		storage   StorageClass
		isConst   bool
		readOnly  bool
		qualified = layout != nil
	)
	for {
		tok := p.peek()
		var next StorageClass
		switch tok.Kind {
		case TokenConst:
			if isConst {
				return nil, p.errorAt(tok, "duplicate const qualifier")
			}
			isConst = true
			p.advance()
			qualified = true
			continue
		case TokenReadonly:
			readOnly = true
			p.advance()
			qualified = true
			continue
		case TokenIn:
			next = StorageIn
		case TokenOut:
			next = StorageOut
		case TokenUniform:
			next = StorageUniform
		case TokenBuffer:
			next = StorageBuffer
		}
		if next == StorageNone {
			break
		}
		if storage != StorageNone {
			return nil, p.errorAt(tok, fmt.Sprintf("conflicting storage qualifiers %s and %s", storage, next))
		}
		storage = next
		qualified = true
		p.advance()
	}

	if layout != nil && (storage == StorageIn || storage == StorageOut) && !isConst && !readOnly && p.match(TokenSemicolon) {
		return &LayoutDecl{Layout: layout, Storage: storage, Span: start.Span()}, nil
	}

	// Interface block: uniform Name { ... };
	if (storage == StorageUniform || storage == StorageBuffer) && p.check(TokenIdent) && p.checkNext(TokenLeftBrace) {
		if isConst {
			return nil, p.errorAt(start, "interface blocks cannot be const")
		}
		name := p.advance()
		fields, err := p.fieldList(name, true)
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenSemicolon); err != nil {
			return nil, err
		}
		block := &UniformBlockDecl{
			Name:     name.Lexeme,
			Layout:   layout,
			Storage:  storage,
			ReadOnly: readOnly,
			Fields:   fields,
			Span:     name.Span(),
		}
		// layout(push_constant) uniform is the GLSL spelling of a push
		// constant block.
		if q, ok := layout.Lookup("push_constant"); ok && storage == StorageUniform && q.Value == nil {
			block.Storage = StoragePushConstant
			block.Layout = layout.without("push_constant")
			if err := checkPushConstant(block); err != nil {
				return nil, err
			}
		}
		return block, nil
	}
	if storage == StorageBuffer {
		return nil, p.expected("buffer block name followed by '{'")
	}
	if readOnly && storage != StorageUniform {
		return nil, p.errorAt(start, "readonly only applies to uniform and buffer declarations")
	}

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent("declaration name")
	if err != nil {
		return nil, err
	}

	if p.check(TokenLeftParen) {
		if qualified {
			return nil, p.errorAt(start, fmt.Sprintf("function %s cannot have storage or layout qualifiers", name.Lexeme))
		}
		return p.functionDecl(typ, name)
	}

	global := func(name Token) (*VarDecl, *ParseError) {
		decl, err := p.declarator(typ, name)
		if err != nil {
			return nil, err
		}
		decl.Layout = layout
		decl.Storage = storage
		decl.Const = isConst
		if IsUnsizedArray(decl.Type) && storage == StorageUniform && decl.Init == nil {
			return decl, nil
		}
		if err := checkUnsizedVar(decl, name); err != nil {
			return nil, err
		}
		return decl, nil
	}

	decl, err := global(name)
	if err != nil {
		return nil, err
	}
	for p.match(TokenComma) {
		next, err := p.expectIdent("variable name")
		if err != nil {
			return nil, err
		}
		v, err := global(next)
		if err != nil {
			return nil, err
		}
		p.pending = append(p.pending, v)
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}
	return decl, nil
}

// declarator parses the part of a variable declaration after its name:
// an optional array size and an optional initializer.
func (p *Parser) declarator(typ Type, name Token) (*VarDecl, *ParseError) {
	typ, err := p.nameArraySuffix(typ)
	if err != nil {
		return nil, err
	}
	decl := &VarDecl{Name: name.Lexeme, Type: typ, Span: name.Span()}

	if p.match(TokenEqual) {
		init, err := p.initializer()
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	return decl, nil
}

// takePending returns and clears the queued declarators.
func (p *Parser) takePending() []*VarDecl {
	pending := p.pending
	p.pending = nil
	return pending
}

func checkUnsizedVar(decl *VarDecl, name Token) *ParseError {
	if !IsUnsizedArray(decl.Type) {
		return nil
	}
	if _, ok := decl.Init.(*ArrayLiteral); ok {
		return nil
	}
	return &ParseError{
		Message: fmt.Sprintf("unsized array %q needs an array literal initializer", decl.Name),
		Found:   name,
		Span:    name.Span(),
	}
}

// layout parses layout(key, key = value, $flag, $flag = value).
func (p *Parser) layout() (Layout, *ParseError) {
	p.advance() // layout
	return p.qualifierList()
}

// qualifierList parses (key[=value], ...).
func (p *Parser) qualifierList() (Layout, *ParseError) {
	open := p.peek()
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}

	var layout Layout
	for {
		tok := p.peek()
		var q Qualifier
		switch tok.Kind {
		case TokenIdent, TokenPushConstant:
			q = Qualifier{Key: tok.Lexeme, Span: tok.Span()}
		case TokenFlag:
			q = Qualifier{Key: tok.Lexeme, Custom: true, Span: tok.Span()}
		default:
			return nil, p.expected("layout qualifier")
		}
		p.advance()

		if p.match(TokenEqual) {
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			q.Value = value
		}
		if prev, dup := layout.Lookup(q.Name()); dup {
			related := prev.Span
			return nil, &ParseError{
				Message: fmt.Sprintf("duplicate layout qualifier %q", q.Name()),
				Found:   tok,
				Span:    q.Span,
				Related: &related,
			}
		}
		layout = append(layout, q)

		if p.match(TokenRightParen) {
			return layout, nil
		}
		if p.isAtEnd() {
			return nil, p.unterminated(open, "layout qualifier list")
		}
		if err := p.expectErr(TokenComma); err != nil {
			return nil, err
		}
	}
}

// pushConstantBlock parses push_constant[(qualifiers)] Name { fields };
func (p *Parser) pushConstantBlock() (*UniformBlockDecl, *ParseError) {
	p.advance() // push_constant

	var layout Layout
	if p.check(TokenLeftParen) {
		var err *ParseError
		if layout, err = p.qualifierList(); err != nil {
			return nil, err
		}
	}
	name, err := p.expectIdent("push constant block name")
	if err != nil {
		return nil, err
	}
	fields, err := p.fieldList(name, true)
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	block := &UniformBlockDecl{
		Name:    name.Lexeme,
		Layout:  layout,
		Storage: StoragePushConstant,
		Fields:  fields,
		Span:    name.Span(),
	}
	if err := checkPushConstant(block); err != nil {
		return nil, err
	}
	return block, nil
}

// checkPushConstant rejects qualifiers and fields a push constant block
// cannot have. Push constants live outside descriptor sets.
func checkPushConstant(b *UniformBlockDecl) *ParseError {
	for _, key := range []string{"set", "binding", "push_constant"} {
		if q, ok := b.Layout.Lookup(key); ok {
			return &ParseError{
				Message: fmt.Sprintf("push constant block %s cannot have a %s qualifier", b.Name, key),
				Span:    q.Span,
			}
		}
	}
	if last := b.Fields[len(b.Fields)-1]; IsUnsizedArray(last.Type) {
		return &ParseError{
			Message: fmt.Sprintf("push constant block %s cannot have unsized array field %q", b.Name, last.Name),
			Span:    last.Span,
		}
	}
	return nil
}

func (p *Parser) functionDecl(ret Type, name Token) (*FunctionDecl, *ParseError) {
	if IsUnsizedArray(ret) {
		return nil, p.errorAt(name, fmt.Sprintf("function %s cannot return an unsized array", name.Lexeme))
	}
	fn := &FunctionDecl{Name: name.Lexeme, ReturnType: ret, Span: name.Span()}

	p.advance() // (
	// f(void) declares no parameters.
	if p.check(TokenIdent) && p.peek().Lexeme == "void" && p.checkNext(TokenRightParen) {
		p.advance()
	}
	seen := make(map[string]*Param)
	for !p.check(TokenRightParen) {
		param, err := p.parameter()
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[param.Name]; dup {
			related := prev.Span
			return nil, &ParseError{
				Message: fmt.Sprintf("duplicate parameter %q in function %s", param.Name, fn.Name),
				Span:    param.Span,
				Related: &related,
			}
		}
		seen[param.Name] = param
		fn.Params = append(fn.Params, param)

		if !p.check(TokenRightParen) {
			if err := p.expectErr(TokenComma); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // )

	if arrow := p.peek(); p.match(TokenArrow) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenSemicolon); err != nil {
			return nil, err
		}
		fn.Arrow = true
		fn.Body = &BlockStmt{
			Stmts: []Stmt{&ReturnStmt{Value: value, Span: arrow.Span()}},
			Span:  arrow.Span(),
		}
		return fn, nil
	}

	if !p.check(TokenLeftBrace) {
		return nil, p.expected("function body or '->'")
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *Parser) parameter() (*Param, *ParseError) {
	param := &Param{}
	if p.match(TokenConst) {
		param.Const = true
	}
	switch {
	case p.match(TokenIn):
		param.Dir, param.Explicit = ParamIn, true
	case p.match(TokenOut):
		param.Dir, param.Explicit = ParamOut, true
	case p.match(TokenInout):
		param.Dir, param.Explicit = ParamInOut, true
	}

	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent("parameter name")
	if err != nil {
		return nil, err
	}
	typ, err = p.nameArraySuffix(typ)
	if err != nil {
		return nil, err
	}
	if IsUnsizedArray(typ) {
		return nil, p.errorAt(name, fmt.Sprintf("parameter %q cannot be an unsized array", name.Lexeme))
	}
	param.Name = name.Lexeme
	param.Type = typ
	param.Span = name.Span()
	return param, nil
}

// typeSpec parses Name or Name[N] or Name[].
func (p *Parser) typeSpec() (Type, *ParseError) {
	name, err := p.expectIdent("type name")
	if err != nil {
		return nil, err
	}
	var typ Type = &NamedType{Name: name.Lexeme, Span: name.Span()}
	if p.check(TokenLeftBracket) {
		return p.arraySuffix(typ)
	}
	return typ, nil
}

// nameArraySuffix parses an optional [N] after a declared name.
func (p *Parser) nameArraySuffix(typ Type) (Type, *ParseError) {
	if !p.check(TokenLeftBracket) {
		return typ, nil
	}
	if _, ok := typ.(*ArrayType); ok {
		return nil, p.errorAt(p.peek(), "arrays of arrays are not supported")
	}
	return p.arraySuffix(typ)
}

func (p *Parser) arraySuffix(elem Type) (Type, *ParseError) {
	open := p.advance() // [
	arr := &ArrayType{Elem: elem, Span: open.Span()}
	if !p.check(TokenRightBracket) {
		size, err := p.expression()
		if err != nil {
			return nil, err
		}
		arr.Size = size
	}
	if err := p.expectErr(TokenRightBracket); err != nil {
		return nil, err
	}
	if p.check(TokenLeftBracket) {
		return nil, p.errorAt(p.peek(), "arrays of arrays are not supported")
	}
	return arr, nil
}

// IsUnsizedArray reports whether t is an array without a size.
func IsUnsizedArray(t Type) bool {
	arr, ok := t.(*ArrayType)
	return ok && arr.Size == nil
}

// block parses a braced statement list.
func (p *Parser) block() (*BlockStmt, *ParseError) {
	open := p.peek()
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	block := &BlockStmt{Span: open.Span()}
	for !p.check(TokenRightBrace) {
		if p.isAtEnd() {
			return nil, p.unterminated(open, "block")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		for _, v := range p.takePending() {
			block.Stmts = append(block.Stmts, v)
		}
	}
	p.advance() // }

	return block, nil
}

// body parses a loop or branch body. A single statement is wrapped
// in a block.
func (p *Parser) body() (*BlockStmt, *ParseError) {
	if p.check(TokenLeftBrace) {
		return p.block()
	}
	start := p.peek()
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	block := &BlockStmt{Span: start.Span()}
	if stmt != nil {
		block.Stmts = append(block.Stmts, stmt)
	}
	for _, v := range p.takePending() {
		block.Stmts = append(block.Stmts, v)
	}
	return block, nil
}

// statement parses a statement. An empty statement returns nil.
func (p *Parser) statement() (Stmt, *ParseError) {
	tok := p.peek()
	switch tok.Kind {
	case TokenSemicolon:
		p.advance()
		return nil, nil
	case TokenLeftBrace:
		return p.block()
	case TokenIf:
		return p.ifStmt()
	case TokenFor:
		return p.forStmt()
	case TokenWhile:
		return p.whileStmt()
	case TokenReturn:
		return p.returnStmt()
	case TokenBreak:
		p.advance()
		return &BreakStmt{Span: tok.Span()}, p.expectErr(TokenSemicolon)
	case TokenContinue:
		p.advance()
		return &ContinueStmt{Span: tok.Span()}, p.expectErr(TokenSemicolon)
	case TokenDiscard:
		p.advance()
		return &DiscardStmt{Span: tok.Span()}, p.expectErr(TokenSemicolon)
	}

	stmt, err := p.simpleStmt()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}
	return stmt, nil
}

// simpleStmt parses a local declaration, an assignment or an expression
// statement, without the trailing semicolon.
func (p *Parser) simpleStmt() (Stmt, *ParseError) {
	if p.check(TokenConst) || p.isLocalDecl() {
		return p.localDecl()
	}
	return p.exprOrAssignStmt()
}

// isLocalDecl reports whether the upcoming tokens are "T name" or
// "T[N] name".
func (p *Parser) isLocalDecl() bool {
	if !p.check(TokenIdent) {
		return false
	}
	i := p.current + 1
	if p.tokens[i].Kind == TokenLeftBracket {
		depth := 0
		for ; i < len(p.tokens); i++ {
			switch p.tokens[i].Kind {
			case TokenLeftBracket:
				depth++
			case TokenRightBracket:
				depth--
			case TokenEOF, TokenSemicolon, TokenLeftBrace, TokenRightBrace:
				return false
			}
			if depth == 0 {
				break
			}
		}
		i++
	}
	return i < len(p.tokens) && p.tokens[i].Kind == TokenIdent
}

func (p *Parser) localDecl() (*VarDecl, *ParseError) {
	isConst := p.match(TokenConst)
	typ, err := p.typeSpec()
	if err != nil {
		return nil, err
	}
	local := func() (*VarDecl, *ParseError) {
		name, err := p.expectIdent("variable name")
		if err != nil {
			return nil, err
		}
		decl, err := p.declarator(typ, name)
		if err != nil {
			return nil, err
		}
		decl.Const = isConst
		if err := checkUnsizedVar(decl, name); err != nil {
			return nil, err
		}
		return decl, nil
	}

	decl, err := local()
	if err != nil {
		return nil, err
	}
	for p.match(TokenComma) {
		v, err := local()
		if err != nil {
			return nil, err
		}
		p.pending = append(p.pending, v)
	}
	return decl, nil
}

func (p *Parser) exprOrAssignStmt() (Stmt, *ParseError) {
	start := p.peek()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.isAssignOp(p.peek().Kind) {
		op := p.advance()
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Op: op.Kind, Left: expr, Right: value, Span: start.Span()}, nil
	}

	return &ExprStmt{X: expr, Span: start.Span()}, nil
}

func (p *Parser) ifStmt() (*IfStmt, *ParseError) {
	tok := p.advance() // if
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	then, err := p.body()
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{Cond: cond, Then: then, Span: tok.Span()}
	if p.match(TokenElse) {
		if p.check(TokenIf) {
			elseIf, err := p.ifStmt()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseIf
		} else {
			els, err := p.body()
			if err != nil {
				return nil, err
			}
			stmt.Else = els
		}
	}
	return stmt, nil
}

func (p *Parser) forStmt() (*ForStmt, *ParseError) {
	tok := p.advance() // for
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	stmt := &ForStmt{Span: tok.Span()}

	if !p.check(TokenSemicolon) {
		init, err := p.simpleStmt()
		if err != nil {
			return nil, err
		}
		if len(p.pending) > 0 {
			return nil, p.errorAt(tok, "for-loop initializer must declare a single variable")
		}
		stmt.Init = init
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	if !p.check(TokenSemicolon) {
		cond, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	if !p.check(TokenRightParen) {
		post, err := p.exprOrAssignStmt()
		if err != nil {
			return nil, err
		}
		stmt.Post = post
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.body()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) whileStmt() (*WhileStmt, *ParseError) {
	tok := p.advance() // while
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body, Span: tok.Span()}, nil
}

func (p *Parser) returnStmt() (*ReturnStmt, *ParseError) {
	tok := p.advance() // return
	stmt := &ReturnStmt{Span: tok.Span()}
	if !p.check(TokenSemicolon) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}
	return stmt, nil
}

// initializer parses a variable initializer, which may be an array
// literal.
func (p *Parser) initializer() (Expr, *ParseError) {
	if !p.check(TokenLeftBrace) {
		return p.expression()
	}
	open := p.advance()
	lit := &ArrayLiteral{Span: open.Span()}
	for !p.check(TokenRightBrace) {
		if p.isAtEnd() {
			return nil, p.unterminated(open, "array literal")
		}
		elem, err := p.expression()
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, elem)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	if len(lit.Elems) == 0 {
		return nil, p.errorAt(open, "empty array literal")
	}
	return lit, nil
}

// expression parses an expression.
func (p *Parser) expression() (Expr, *ParseError) {
	return p.ternary()
}

// ternary parses cond ? a : b, which associates to the right.
func (p *Parser) ternary() (Expr, *ParseError) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if !p.match(TokenQuestion) {
		return cond, nil
	}
	then, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenColon); err != nil {
		return nil, err
	}
	els, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return &TernaryExpr{Cond: cond, Then: then, Else: els, Span: tok.Span()}, nil
}

// binaryLevels lists the left-associative binary operators from
// lowest to highest precedence.
var binaryLevels = [][]TokenKind{
	{TokenPipePipe},
	{TokenAmpAmp},
	{TokenPipe},
	{TokenCaret},
	{TokenAmpersand},
	{TokenEqualEqual, TokenBangEqual},
	{TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual},
	{TokenLessLess, TokenGreaterGreater},
	{TokenPlus, TokenMinus},
	{TokenStar, TokenSlash, TokenPercent},
}

func (p *Parser) logicalOr() (Expr, *ParseError) {
	return p.binary(0)
}

// binary parses the operators of binaryLevels[level] and above.
func (p *Parser) binary(level int) (Expr, *ParseError) {
	if level == len(binaryLevels) {
		return p.unary()
	}
	left, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		if !containsKind(binaryLevels[level], op.Kind) {
			return left, nil
		}
		p.advance()
		right, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op.Kind, Left: left, Right: right, Span: op.Span()}
	}
}

func containsKind(kinds []TokenKind, kind TokenKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// unary parses prefix operators.
func (p *Parser) unary() (Expr, *ParseError) {
	switch tok := p.peek(); tok.Kind {
	case TokenMinus, TokenPlus, TokenBang, TokenTilde, TokenPlusPlus, TokenMinusMinus:
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: tok.Kind, X: operand, Span: tok.Span()}, nil
	}
	return p.postfix()
}

// postfix parses calls, indexing, member access and x++ / x--.
func (p *Parser) postfix() (Expr, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenLeftParen:
			switch fn := expr.(type) {
			case *Ident:
			case *MemberExpr:
				if fn.Name != "length" {
					return nil, p.errorAt(tok, fmt.Sprintf("member %q is not callable", fn.Name))
				}
			default:
				return nil, p.errorAt(tok, "expression is not callable")
			}
			p.advance()
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{Func: expr, Args: args, Span: expr.Pos()}
		case TokenLeftBracket:
			p.advance()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectErr(TokenRightBracket); err != nil {
				return nil, err
			}
			expr = &IndexExpr{X: expr, Index: index, Span: tok.Span()}
		case TokenDot:
			p.advance()
			name, err := p.expectIdent("member name")
			if err != nil {
				return nil, err
			}
			expr = &MemberExpr{X: expr, Name: name.Lexeme, Field: FieldUnresolved, Span: name.Span()}
		case TokenPlusPlus, TokenMinusMinus:
			p.advance()
			expr = &UnaryExpr{Op: tok.Kind, X: expr, Postfix: true, Span: tok.Span()}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) arguments() ([]Expr, *ParseError) {
	var args []Expr
	for !p.check(TokenRightParen) {
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.check(TokenRightParen) {
			if err := p.expectErr(TokenComma); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // )
	return args, nil
}

// primary parses literals, identifiers and parenthesized expressions.
func (p *Parser) primary() (Expr, *ParseError) {
	tok := p.peek()
	switch tok.Kind {
	case TokenIntLiteral:
		p.advance()
		return &Literal{Kind: LiteralInt, Value: tok.Lexeme, Span: tok.Span()}, nil
	case TokenFloatLiteral:
		p.advance()
		return &Literal{Kind: LiteralFloat, Value: tok.Lexeme, Span: tok.Span()}, nil
	case TokenBoolLiteral:
		p.advance()
		return &Literal{Kind: LiteralBool, Value: tok.Lexeme, Span: tok.Span()}, nil
	case TokenIdent:
		p.advance()
		return &Ident{Name: tok.Lexeme, Span: tok.Span()}, nil
	case TokenLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenLeftBrace:
		return nil, p.errorAt(tok, "array literal is only allowed as a variable initializer")
	default:
		return nil, p.expected("expression")
	}
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkNext(kind TokenKind) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectErr(kind TokenKind) *ParseError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	return p.expected(kind.String())
}

func (p *Parser) expectIdent(what string) (Token, *ParseError) {
	if !p.check(TokenIdent) {
		return Token{}, p.expected(what)
	}
	return p.advance(), nil
}

func (p *Parser) expected(what string) *ParseError {
	tok := p.peek()
	return &ParseError{Expected: what, Found: tok, Span: tok.Span()}
}

func (p *Parser) errorAt(tok Token, msg string) *ParseError {
	return &ParseError{Message: msg, Found: tok, Span: tok.Span()}
}

func (p *Parser) unterminated(open Token, what string) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf("unterminated %s opened at %s", what, open.Span()),
		Found:   p.peek(),
		Span:    p.peek().Span(),
	}
}

func (p *Parser) isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual,
		TokenSlashEqual, TokenPercentEqual, TokenAmpEqual, TokenPipeEqual,
		TokenCaretEqual, TokenLessLessEqual, TokenGreaterGreaterEqual:
		return true
	}
	return false
}
