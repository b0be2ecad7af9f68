package parser

import (
	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/token"
)

// parseTypeExpr parses a full type-annotation expression, handling union
// and intersection at the top and delegating to parsePostfixType for
// `T[]`/`T[K]` and parsePrimaryType for the atomic forms (spec.md §4.3).
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	return p.parseConditionalType()
}

func (p *Parser) parseConditionalType() ast.TypeExpr {
	pos := p.cur().Pos
	check := p.parseUnionType()
	if p.match(token.EXTENDS) {
		ext := p.parseUnionType()
		p.expect(token.QUESTION)
		trueT := p.parseTypeExpr()
		p.expect(token.COLON)
		falseT := p.parseTypeExpr()
		return &ast.ConditionalType{Loc: ast.At(pos), Check: check, Extends: ext, True: trueT, False: falseT}
	}
	return check
}

func (p *Parser) parseUnionType() ast.TypeExpr {
	pos := p.cur().Pos
	p.match(token.PIPE) // leading `|` is legal before the first member
	first := p.parseIntersectionType()
	if !p.curIs(token.PIPE) {
		return first
	}
	members := []ast.TypeExpr{first}
	for p.match(token.PIPE) {
		members = append(members, p.parseIntersectionType())
	}
	return &ast.UnionType{Loc: ast.At(pos), Members: members}
}

func (p *Parser) parseIntersectionType() ast.TypeExpr {
	pos := p.cur().Pos
	p.match(token.AMP)
	first := p.parsePostfixType()
	if !p.curIs(token.AMP) {
		return first
	}
	members := []ast.TypeExpr{first}
	for p.match(token.AMP) {
		members = append(members, p.parsePostfixType())
	}
	return &ast.IntersectionType{Loc: ast.At(pos), Members: members}
}

func (p *Parser) parsePostfixType() ast.TypeExpr {
	t := p.parsePrimaryType()
	for {
		if p.curIs(token.LBRACKET) {
			pos := p.cur().Pos
			p.advance()
			if p.match(token.RBRACKET) {
				t = &ast.ArrayType{Loc: ast.At(pos), Elem: t}
				continue
			}
			idx := p.parseTypeExpr()
			p.expect(token.RBRACKET)
			t = &ast.IndexedAccessType{Loc: ast.At(pos), Object: t, Index: idx}
			continue
		}
		break
	}
	return t
}

func (p *Parser) parsePrimaryType() ast.TypeExpr {
	pos := p.cur().Pos
	switch p.cur().Type {
	case token.LPAREN:
		if params, ok := p.tryParseFunctionType(); ok {
			return params
		}
		p.advance()
		inner := p.parseTypeExpr()
		p.expect(token.RPAREN)
		return &ast.ParenthesizedType{Loc: ast.At(pos), Inner: inner}
	case token.LBRACKET:
		return p.parseTupleType()
	case token.LBRACE:
		return p.parseObjectOrMappedType()
	case token.STRING:
		t := p.advance()
		return &ast.LiteralType{Loc: ast.At(pos), Kind: ast.LiteralTypeString, Str: t.Literal.Str}
	case token.NUMBER:
		t := p.advance()
		return &ast.LiteralType{Loc: ast.At(pos), Kind: ast.LiteralTypeNumber, Num: t.Literal.Number}
	case token.TRUE, token.FALSE:
		t := p.advance()
		return &ast.LiteralType{Loc: ast.At(pos), Kind: ast.LiteralTypeBoolean, Bool: t.Type == token.TRUE}
	case token.TEMPLATE_FULL, token.TEMPLATE_HEAD:
		return p.parseTemplateLiteralType()
	case token.KEYOF:
		p.advance()
		return &ast.KeyOfType{Loc: ast.At(pos), Operand: p.parsePostfixType()}
	case token.TYPEOF:
		p.advance()
		return &ast.TypeOfType{Loc: ast.At(pos), Expr: p.parseExpression(precCall)}
	case token.INFER:
		p.advance()
		name := p.advance().Lexeme
		var constraint ast.TypeExpr
		if p.curIs(token.EXTENDS) {
			// `infer R extends C` (TS 4.7+); only valid within a
			// conditional-type Extends clause so no ambiguity with the
			// enclosing `extends` of the conditional itself at this depth.
		}
		return &ast.InferType{Loc: ast.At(pos), Name: name, Constraint: constraint}
	case token.NEW:
		p.advance()
		return p.parseFunctionTypeTail(pos)
	default:
		name := p.advance().Lexeme
		var typeArgs []ast.TypeExpr
		if p.curIs(token.LT) {
			typeArgs = p.parseTypeArgList()
		}
		return &ast.TypeRef{Loc: ast.At(pos), Name: name, TypeArgs: typeArgs}
	}
}

// tryParseFunctionType speculatively parses `(params) => T`, backtracking
// if the parenthesized group turns out not to be a function type (e.g. a
// parenthesized union).
func (p *Parser) tryParseFunctionType() (ast.TypeExpr, bool) {
	mark := p.c.mark()
	errMark := len(p.errors)
	params := p.parseParamList()
	if p.curIs(token.ARROW) {
		pos := p.cur().Pos
		p.advance()
		ret := p.parseTypeExpr()
		return &ast.FunctionType{Loc: ast.At(pos), Params: params, ReturnType: ret}, true
	}
	p.c.reset(mark)
	p.errors = p.errors[:errMark]
	return nil, false
}

func (p *Parser) parseFunctionTypeTail(pos token.Position) ast.TypeExpr {
	params := p.parseParamList()
	p.expect(token.ARROW)
	ret := p.parseTypeExpr()
	return &ast.FunctionType{Loc: ast.At(pos), Params: params, ReturnType: ret}
}

func (p *Parser) parseTupleType() ast.TypeExpr {
	pos := p.cur().Pos
	p.expect(token.LBRACKET)
	var elems []ast.TupleElement
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		var el ast.TupleElement
		if p.match(token.DOTDOTDOT) {
			el.Rest = true
		}
		if p.curIs(token.IDENT) && p.peekIs(token.COLON) {
			el.Label = p.advance().Lexeme
			p.advance()
		}
		el.Type = p.parseTypeExpr()
		if p.match(token.QUESTION) {
			el.Optional = true
		}
		elems = append(elems, el)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACKET)
	return &ast.TupleType{Loc: ast.At(pos), Elements: elems}
}

func (p *Parser) parseObjectOrMappedType() ast.TypeExpr {
	pos := p.cur().Pos
	p.expect(token.LBRACE)
	// Mapped type: `{ [K in Keys]?: V }`, possibly with `+`/`-` modifiers.
	if p.isMappedTypeStart() {
		return p.parseMappedTypeBody(pos)
	}
	var members []ast.ObjectTypeMember
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		readonly := p.match(token.READONLY)
		if p.curIs(token.LBRACKET) && p.peek(1).Type == token.IDENT && p.peek(2).Type == token.COLON {
			p.advance()
			p.advance()
			p.expect(token.COLON)
			keyType := p.parseTypeExpr()
			p.expect(token.RBRACKET)
			p.expect(token.COLON)
			valType := p.parseTypeExpr()
			members = append(members, ast.ObjectTypeMember{Type: valType, IsIndex: true, IndexKey: keyType, Readonly: readonly})
		} else {
			name := p.advance().Lexeme
			optional := p.match(token.QUESTION)
			if p.curIs(token.LPAREN) {
				params := p.parseParamList()
				var ret ast.TypeExpr
				if p.match(token.COLON) {
					ret = p.parseTypeExpr()
				}
				members = append(members, ast.ObjectTypeMember{Name: name, IsMethod: true, Params: params, ReturnType: ret, Optional: optional, Readonly: readonly})
			} else {
				p.expect(token.COLON)
				typ := p.parseTypeExpr()
				members = append(members, ast.ObjectTypeMember{Name: name, Type: typ, Optional: optional, Readonly: readonly})
			}
		}
		if !p.match(token.COMMA) {
			p.match(token.SEMICOLON)
		}
	}
	p.expect(token.RBRACE)
	return &ast.ObjectType{Loc: ast.At(pos), Members: members}
}

func (p *Parser) isMappedTypeStart() bool {
	i := 0
	if p.peek(i).Type == token.PLUS || p.peek(i).Type == token.MINUS {
		i++
	}
	if p.peek(i).Type != token.READONLY {
		// no readonly modifier; mapped type still requires `[`
		if p.peek(i).Type != token.LBRACKET {
			return false
		}
	} else {
		i++
	}
	if p.peek(i).Type != token.LBRACKET {
		return false
	}
	return p.peek(i+1).Type == token.IDENT && p.peek(i+2).Type == token.IN
}

func (p *Parser) parseMappedTypeBody(pos token.Position) ast.TypeExpr {
	m := &ast.MappedType{Loc: ast.At(pos)}
	if p.match(token.PLUS) {
		m.ReadonlyMod = 1
	} else if p.match(token.MINUS) {
		m.ReadonlyMod = -1
	}
	if p.match(token.READONLY) {
		if m.ReadonlyMod == 0 {
			m.ReadonlyMod = 1
		}
	}
	p.expect(token.LBRACKET)
	m.TypeParamName = p.advance().Lexeme
	p.expect(token.IN)
	m.Constraint = p.parseTypeExpr()
	if p.match(token.AS) {
		m.NameType = p.parseTypeExpr()
	}
	p.expect(token.RBRACKET)
	if p.match(token.PLUS) {
		m.OptionalMod = 1
	} else if p.match(token.MINUS) {
		m.OptionalMod = -1
	}
	if p.match(token.QUESTION) {
		if m.OptionalMod == 0 {
			m.OptionalMod = 1
		}
	}
	p.expect(token.COLON)
	m.Value = p.parseTypeExpr()
	p.match(token.SEMICOLON)
	p.expect(token.RBRACE)
	return m
}

func (p *Parser) parseTemplateLiteralType() ast.TypeExpr {
	pos := p.cur().Pos
	first := p.advance()
	lit := &ast.TemplateLiteralType{Loc: ast.At(pos)}
	lit.Chunks = append(lit.Chunks, ast.TemplateLiteralTypeChunk{Text: first.Literal.Str})
	if first.Type == token.TEMPLATE_FULL {
		return lit
	}
	for {
		typ := p.parseTypeExpr()
		lit.Chunks[len(lit.Chunks)-1].Type = typ
		closing := p.cur()
		if closing.Type != token.RBRACE {
			p.addErrorf(closing.Pos, "expected '}' to close template type interpolation, got %s %q", closing.Type, closing.Lexeme)
			break
		}
		cont := p.c.resumeTemplate(closing)
		p.advance()
		lit.Chunks = append(lit.Chunks, ast.TemplateLiteralTypeChunk{Text: cont.Literal.Str})
		if cont.Type == token.TEMPLATE_TAIL {
			break
		}
		if cont.Type != token.TEMPLATE_MIDDLE {
			break
		}
	}
	return lit
}

func (p *Parser) parseTypeArgList() []ast.TypeExpr {
	p.expect(token.LT)
	var args []ast.TypeExpr
	for !p.curIs(token.GT) && !p.curIs(token.EOF) {
		args = append(args, p.parseTypeExpr())
		if !p.match(token.COMMA) {
			break
		}
	}
	// `>>`/`>>>` are lexed as single shift tokens; a nested generic closer
	// (`Foo<Bar<Baz>>`) needs to split one off instead of failing expect.
	p.closeAngleBracket()
	return args
}

// closeAngleBracket consumes one `>` from the current token, splitting a
// multi-character shift/shift-assign operator if necessary, since the
// lexer has no type-position context to avoid producing `>>` for nested
// generics like `Array<Array<T>>`.
func (p *Parser) closeAngleBracket() {
	switch p.cur().Type {
	case token.GT:
		p.advance()
	case token.SHR:
		p.splitCurrentToken(token.GT, ">")
	case token.USHR:
		p.splitCurrentToken(token.SHR, ">>")
	case token.GT_EQ:
		p.splitCurrentToken(token.ASSIGN, "=")
	default:
		p.expect(token.GT)
	}
}

// splitCurrentToken replaces the current multi-character token with a
// shorter one of the same leading character(s), leaving the remainder in
// place of the cursor's current slot for the next read.
func (p *Parser) splitCurrentToken(remaining token.Type, remainingLexeme string) {
	pos := p.cur().Pos
	p.c.buf[p.c.idx] = token.Token{Type: remaining, Lexeme: remainingLexeme, Pos: token.Position{Line: pos.Line, Column: pos.Column + 1}}
}
