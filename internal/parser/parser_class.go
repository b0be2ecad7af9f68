package parser

import (
	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/token"
)

func (p *Parser) parseFunctionDecl(async, overloadOnly bool) ast.Stmt {
	pos := p.cur().Pos
	p.expect(token.FUNCTION)
	generator := p.match(token.STAR)
	name := p.advance().Lexeme
	tps := p.parseOptionalTypeParams()
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.match(token.COLON) {
		ret = p.parseTypeExpr()
	}
	var body *ast.Block
	if p.curIs(token.LBRACE) {
		body = p.parseBlock()
	} else {
		p.consumeSemicolon() // bodyless overload signature
	}
	return &ast.FunctionDecl{Loc: ast.At(pos), Name: name, TypeParams: tps, Params: params, ReturnType: ret, Body: body, Async: async, Generator: generator}
}

func (p *Parser) parseClassDecl(abstract bool) ast.Stmt {
	pos := p.cur().Pos
	p.expect(token.CLASS)
	name := p.advance().Lexeme
	tps := p.parseOptionalTypeParams()
	var extends *ast.HeritageClause
	var implements []ast.HeritageClause
	if p.match(token.EXTENDS) {
		h := p.parseHeritageClause()
		extends = &h
	}
	if p.match(token.IMPLEMENTS) {
		for {
			implements = append(implements, p.parseHeritageClause())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	members := p.parseClassBody()
	return &ast.ClassDecl{Loc: ast.At(pos), Name: name, TypeParams: tps, Extends: extends, Implements: implements, Members: members, Abstract: abstract}
}

func (p *Parser) parseHeritageClause() ast.HeritageClause {
	name := p.advance().Lexeme
	var typeArgs []ast.TypeExpr
	if p.curIs(token.LT) {
		typeArgs = p.parseTypeArgList()
	}
	return ast.HeritageClause{Name: name, TypeArgs: typeArgs}
}

func (p *Parser) parseClassBody() []ast.ClassMember {
	p.expect(token.LBRACE)
	var members []ast.ClassMember
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.match(token.SEMICOLON) {
			continue
		}
		members = append(members, p.parseClassMember())
	}
	p.expect(token.RBRACE)
	return members
}

func (p *Parser) parseClassMember() ast.ClassMember {
	pos := p.cur().Pos
	var accessMod string
	var static, readonly, abstract, async, override bool
	kind := ast.AccessorMethod

loop:
	for {
		switch p.cur().Type {
		case token.PUBLIC, token.PRIVATE, token.PROTECTED:
			accessMod = p.advance().Lexeme
		case token.STATIC:
			if p.peekIs(token.LBRACE) {
				break loop
			}
			static = true
			p.advance()
		case token.READONLY:
			readonly = true
			p.advance()
		case token.ABSTRACT:
			abstract = true
			p.advance()
		case token.ASYNC:
			async = true
			p.advance()
		case token.IDENT:
			if p.cur().Lexeme == "override" {
				override = true
				p.advance()
				continue
			}
			break loop
		default:
			break loop
		}
	}

	if static && p.curIs(token.LBRACE) {
		return &ast.StaticBlock{Loc: ast.At(pos), Body: p.parseBlock()}
	}

	generator := p.match(token.STAR)

	if p.curIs(token.GET) && !p.peekIs(token.LPAREN) {
		p.advance()
		kind = ast.AccessorGet
	} else if p.curIs(token.SET) && !p.peekIs(token.LPAREN) {
		p.advance()
		kind = ast.AccessorSet
	}

	var name string
	var computed ast.Expr
	if p.match(token.LBRACKET) {
		computed = p.parseExpression(precLowest)
		p.expect(token.RBRACKET)
	} else if p.curIs(token.CONSTRUCTOR) {
		p.advance()
		name = "constructor"
		kind = ast.AccessorConstructor
	} else {
		name = p.advance().Lexeme
	}

	// Field (no parens follow) vs method/accessor/constructor.
	if !p.curIs(token.LPAREN) && kind != ast.AccessorConstructor {
		optional := p.match(token.QUESTION)
		_ = optional
		var typeAnn ast.TypeExpr
		if p.match(token.COLON) {
			typeAnn = p.parseTypeExpr()
		}
		var init ast.Expr
		if p.match(token.ASSIGN) {
			init = p.parseExpression(precAssign)
		}
		p.consumeSemicolon()
		return &ast.FieldDecl{Loc: ast.At(pos), Name: name, TypeAnn: typeAnn, Init: init, Static: static, Readonly: readonly, AccessMod: accessMod, Abstract: abstract, Computed: computed}
	}

	tps := p.parseOptionalTypeParams()
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.match(token.COLON) {
		ret = p.parseTypeExpr()
	}
	var body *ast.Block
	if p.curIs(token.LBRACE) {
		body = p.parseBlock()
	} else {
		p.consumeSemicolon()
	}
	return &ast.Accessor{Loc: ast.At(pos), Kind: kind, Name: name, TypeParams: tps, Params: params, ReturnType: ret, Body: body, Static: static, AccessMod: accessMod, Abstract: abstract, Async: async, Generator: generator, Override: override, Computed: computed}
}

func (p *Parser) parseInterfaceDecl() ast.Stmt {
	pos := p.cur().Pos
	p.expect(token.INTERFACE)
	name := p.advance().Lexeme
	tps := p.parseOptionalTypeParams()
	var extends []ast.HeritageClause
	if p.match(token.EXTENDS) {
		for {
			extends = append(extends, p.parseHeritageClause())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.LBRACE)
	var members []ast.InterfaceMember
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		members = append(members, p.parseInterfaceMember())
		p.match(token.SEMICOLON)
		p.match(token.COMMA)
	}
	p.expect(token.RBRACE)
	return &ast.InterfaceDecl{Loc: ast.At(pos), Name: name, TypeParams: tps, Extends: extends, Members: members}
}

func (p *Parser) parseInterfaceMember() ast.InterfaceMember {
	readonly := p.match(token.READONLY)
	if p.curIs(token.LBRACKET) && (p.peek(1).Type == token.IDENT) && p.peek(2).Type == token.COLON {
		// index signature `[key: K]: V`
		p.advance()
		p.advance()
		p.expect(token.COLON)
		keyType := p.parseTypeExpr()
		p.expect(token.RBRACKET)
		p.expect(token.COLON)
		valType := p.parseTypeExpr()
		return ast.InterfaceMember{TypeAnn: valType, IsIndex: true, IndexKey: keyType, Readonly: readonly}
	}
	name := p.advance().Lexeme
	optional := p.match(token.QUESTION)
	if p.curIs(token.LPAREN) {
		params := p.parseParamList()
		var ret ast.TypeExpr
		if p.match(token.COLON) {
			ret = p.parseTypeExpr()
		}
		return ast.InterfaceMember{Name: name, Params: params, ReturnType: ret, Optional: optional, IsMethod: true, Readonly: readonly}
	}
	p.expect(token.COLON)
	typ := p.parseTypeExpr()
	return ast.InterfaceMember{Name: name, TypeAnn: typ, Optional: optional, Readonly: readonly}
}
