package parser

import (
	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/token"
)

func (p *Parser) registerExprFns() {
	p.prefixFns[token.NUMBER] = p.parseNumberLiteral
	p.prefixFns[token.STRING] = p.parseStringLiteral
	p.prefixFns[token.BIGINT] = p.parseBigIntLiteral
	p.prefixFns[token.TRUE] = p.parseBoolLiteral
	p.prefixFns[token.FALSE] = p.parseBoolLiteral
	p.prefixFns[token.NULL] = p.parseNullLiteral
	p.prefixFns[token.UNDEFINED] = p.parseUndefinedLiteral
	p.prefixFns[token.IDENT] = p.parseIdentOrArrow
	p.prefixFns[token.THIS] = p.parseThis
	p.prefixFns[token.SUPER] = p.parseSuper
	p.prefixFns[token.LPAREN] = p.parseGroupOrArrow
	p.prefixFns[token.LBRACKET] = p.parseArrayLiteral
	p.prefixFns[token.LBRACE] = p.parseObjectLiteral
	p.prefixFns[token.FUNCTION] = p.parseFunctionExprAsExpr
	p.prefixFns[token.ASYNC] = p.parseAsyncPrefix
	p.prefixFns[token.NEW] = p.parseNew
	p.prefixFns[token.REGEX] = p.parseRegex
	p.prefixFns[token.TEMPLATE_FULL] = p.parseTemplateLiteral
	p.prefixFns[token.TEMPLATE_HEAD] = p.parseTemplateLiteral
	p.prefixFns[token.AWAIT] = p.parseAwait
	p.prefixFns[token.YIELD] = p.parseYield
	p.prefixFns[token.TYPEOF] = p.parseUnaryPrefix
	p.prefixFns[token.VOID] = p.parseUnaryPrefix
	p.prefixFns[token.DELETE] = p.parseUnaryPrefix
	p.prefixFns[token.BANG] = p.parseUnaryPrefix
	p.prefixFns[token.TILDE] = p.parseUnaryPrefix
	p.prefixFns[token.PLUS] = p.parseUnaryPrefix
	p.prefixFns[token.MINUS] = p.parseUnaryPrefix
	p.prefixFns[token.PLUS_PLUS] = p.parsePrefixIncrement
	p.prefixFns[token.MINUS_MINUS] = p.parsePrefixIncrement
	p.prefixFns[token.IMPORT] = p.parseDynamicImport
	p.prefixFns[token.LT] = p.parseLegacyTypeAssertion

	binOps := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.STAR_STAR,
		token.EQ, token.NOT_EQ, token.STRICT_EQ, token.STRICT_NOT_EQ,
		token.LT, token.GT, token.LT_EQ, token.GT_EQ,
		token.AMP, token.PIPE, token.CARET, token.SHL, token.SHR, token.USHR,
		token.INSTANCEOF, token.IN,
	}
	for _, t := range binOps {
		p.infixFns[t] = p.parseBinary
	}
	p.infixFns[token.AND_AND] = p.parseLogical
	p.infixFns[token.OR_OR] = p.parseLogical
	p.infixFns[token.QUESTION_QUESTION] = p.parseNullish
	p.infixFns[token.QUESTION] = p.parseTernary
	p.infixFns[token.LPAREN] = p.parseCall
	p.infixFns[token.LBRACKET] = p.parseIndex
	p.infixFns[token.DOT] = p.parseMember
	p.infixFns[token.QUESTION_DOT] = p.parseOptionalMember
	p.infixFns[token.PLUS_PLUS] = p.parsePostfixIncrement
	p.infixFns[token.MINUS_MINUS] = p.parsePostfixIncrement
	p.infixFns[token.AS] = p.parseAsExpression
	for t := range assignOps {
		p.infixFns[t] = p.parseAssignLike
	}
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.cur().Type]; ok {
		return pr
	}
	if assignOps[p.cur().Type] {
		return precAssign
	}
	return precLowest
}

// parseExpression is the Pratt engine's core loop: parse one prefix
// expression, then repeatedly fold in infix/postfix operators whose
// precedence exceeds minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expr {
	prefix, ok := p.prefixFns[p.cur().Type]
	if !ok {
		p.addErrorf(p.cur().Pos, "unexpected token %s %q in expression", p.cur().Type, p.cur().Lexeme)
		tok := p.advance()
		return &ast.Literal{Loc: ast.At(tok.Pos), Kind: ast.LitUndefined}
	}
	left := prefix()

	for !p.curIs(token.SEMICOLON) && minPrec < p.peekPrecedence() {
		infix, ok := p.infixFns[p.cur().Type]
		if !ok {
			break
		}
		// ** is right-associative: let the recursive call re-enter at the
		// same precedence level instead of one above it.
		left = infix(left)
	}
	return left
}

// parseExpressionList parses a full `expr, expr, ...` at comma precedence,
// returning a single Expr (statements that need comma-expressions just keep
// the last value; this engine does not emit a dedicated Sequence-expression
// node, matching the minimal comma-operator support spec.md targets).
func (p *Parser) parseExpressionList() ast.Expr {
	expr := p.parseExpression(precAssign)
	for p.match(token.COMMA) {
		expr = p.parseExpression(precAssign)
	}
	return expr
}

func (p *Parser) parseNumberLiteral() ast.Expr {
	t := p.advance()
	return &ast.Literal{Loc: ast.At(t.Pos), Kind: ast.LitNumber, Num: t.Literal.Number}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	t := p.advance()
	return &ast.Literal{Loc: ast.At(t.Pos), Kind: ast.LitString, Str: t.Literal.Str}
}

func (p *Parser) parseBigIntLiteral() ast.Expr {
	t := p.advance()
	return &ast.Literal{Loc: ast.At(t.Pos), Kind: ast.LitBigInt, BigIntText: t.Literal.Str}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	t := p.advance()
	return &ast.Literal{Loc: ast.At(t.Pos), Kind: ast.LitBoolean, Bool: t.Type == token.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expr {
	t := p.advance()
	return &ast.Literal{Loc: ast.At(t.Pos), Kind: ast.LitNull}
}

func (p *Parser) parseUndefinedLiteral() ast.Expr {
	t := p.advance()
	return &ast.Literal{Loc: ast.At(t.Pos), Kind: ast.LitUndefined}
}

func (p *Parser) parseThis() ast.Expr {
	t := p.advance()
	return &ast.This{Loc: ast.At(t.Pos)}
}

func (p *Parser) parseSuper() ast.Expr {
	t := p.advance()
	return &ast.Super{Loc: ast.At(t.Pos)}
}

func (p *Parser) parseRegex() ast.Expr {
	t := p.advance()
	pattern, flags := splitRegexLexeme(t.Lexeme)
	return &ast.RegexLiteral{Loc: ast.At(t.Pos), Pattern: pattern, Flags: flags}
}

func splitRegexLexeme(lexeme string) (pattern, flags string) {
	if len(lexeme) < 2 || lexeme[0] != '/' {
		return lexeme, ""
	}
	for i := len(lexeme) - 1; i > 0; i-- {
		if lexeme[i] == '/' {
			return lexeme[1:i], lexeme[i+1:]
		}
	}
	return lexeme[1:], ""
}

func (p *Parser) parseDynamicImport() ast.Expr {
	pos := p.cur().Pos
	p.advance()
	p.expect(token.LPAREN)
	spec := p.parseExpression(precAssign)
	p.expect(token.RPAREN)
	return &ast.DynamicImport{Loc: ast.At(pos), Specifier: spec}
}

// parseLegacyTypeAssertion handles `<T>expr`, the non-JSX cast syntax. Since
// this engine targets a TS superset without JSX, `<` at expression-prefix
// position is unambiguous.
func (p *Parser) parseLegacyTypeAssertion() ast.Expr {
	pos := p.cur().Pos
	p.advance()
	typ := p.parseTypeExpr()
	p.expect(token.GT)
	expr := p.parseExpression(precUnary)
	return &ast.TypeAssertion{Loc: ast.At(pos), Expr: expr, Type: typ}
}

func (p *Parser) parseAsExpression(left ast.Expr) ast.Expr {
	pos := p.cur().Pos
	p.advance()
	typ := p.parseTypeExpr()
	return &ast.TypeAssertion{Loc: ast.At(pos), Expr: left, Type: typ}
}

func (p *Parser) parseAwait() ast.Expr {
	pos := p.cur().Pos
	p.advance()
	val := p.parseExpression(precUnary)
	return &ast.Await{Loc: ast.At(pos), Value: val}
}

func (p *Parser) parseYield() ast.Expr {
	pos := p.cur().Pos
	p.advance()
	delegate := p.match(token.STAR)
	if p.curIs(token.SEMICOLON) || p.curIs(token.RBRACE) || p.curIs(token.RPAREN) || p.curIs(token.RBRACKET) || p.curIs(token.COMMA) || p.curIs(token.EOF) || p.c.precededByNewline() {
		return &ast.Yield{Loc: ast.At(pos), Delegate: delegate}
	}
	val := p.parseExpression(precAssign)
	return &ast.Yield{Loc: ast.At(pos), Value: val, Delegate: delegate}
}

func (p *Parser) parseUnaryPrefix() ast.Expr {
	t := p.advance()
	operand := p.parseExpression(precUnary)
	return &ast.Unary{Loc: ast.At(t.Pos), Op: t.Type, Operand: operand}
}

func (p *Parser) parsePrefixIncrement() ast.Expr {
	t := p.advance()
	operand := p.parseExpression(precUnary)
	return &ast.PrefixIncrement{Loc: ast.At(t.Pos), Op: t.Type, Operand: operand}
}

func (p *Parser) parsePostfixIncrement(left ast.Expr) ast.Expr {
	t := p.advance()
	return &ast.PostfixIncrement{Loc: ast.At(t.Pos), Op: t.Type, Operand: left}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	t := p.advance()
	prec := precedences[t.Type]
	rightMin := prec
	if t.Type == token.STAR_STAR {
		rightMin-- // right-associative
	}
	right := p.parseExpression(rightMin)
	return &ast.Binary{Loc: ast.At(t.Pos), Op: t.Type, Left: left, Right: right}
}

func (p *Parser) parseLogical(left ast.Expr) ast.Expr {
	t := p.advance()
	right := p.parseExpression(precedences[t.Type])
	return &ast.Logical{Loc: ast.At(t.Pos), Op: t.Type, Left: left, Right: right}
}

func (p *Parser) parseNullish(left ast.Expr) ast.Expr {
	t := p.advance()
	right := p.parseExpression(precNullish)
	return &ast.NullishCoalescing{Loc: ast.At(t.Pos), Left: left, Right: right}
}

func (p *Parser) parseTernary(left ast.Expr) ast.Expr {
	pos := p.cur().Pos
	p.advance()
	then := p.parseExpression(precAssign)
	p.expect(token.COLON)
	els := p.parseExpression(precAssign)
	return &ast.Ternary{Loc: ast.At(pos), Cond: left, Then: then, Else: els}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	pos := p.cur().Pos
	p.advance()
	var args []ast.Expr
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.match(token.DOTDOTDOT) {
			args = append(args, &ast.Spread{Loc: ast.At(p.cur().Pos), Value: p.parseExpression(precAssign)})
		} else {
			args = append(args, p.parseExpression(precAssign))
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return &ast.Call{Loc: ast.At(pos), Callee: left, Args: args}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	pos := p.cur().Pos
	p.advance()
	idx := p.parseExpression(precLowest)
	p.expect(token.RBRACKET)
	return &ast.GetIndex{Loc: ast.At(pos), Object: left, Index: idx}
}

func (p *Parser) parseMember(left ast.Expr) ast.Expr {
	pos := p.cur().Pos
	p.advance()
	name := p.advance().Lexeme
	return &ast.Get{Loc: ast.At(pos), Object: left, Name: name}
}

func (p *Parser) parseOptionalMember(left ast.Expr) ast.Expr {
	pos := p.cur().Pos
	p.advance()
	if p.curIs(token.LPAREN) {
		call := p.parseCall(left).(*ast.Call)
		call.Optional = true
		return call
	}
	if p.curIs(token.LBRACKET) {
		p.advance()
		idx := p.parseExpression(precLowest)
		p.expect(token.RBRACKET)
		return &ast.GetIndex{Loc: ast.At(pos), Object: left, Index: idx, Optional: true}
	}
	name := p.advance().Lexeme
	return &ast.Get{Loc: ast.At(pos), Object: left, Name: name, Optional: true}
}

// parseNew parses `new Callee.Chain(args)`. The callee chain is limited to
// member/index access (`.`, `?.`, `[...]`) without consuming a `(` as a
// plain call, since the first parenthesized group after the callee chain
// belongs to `new` itself and must land in New.Args rather than wrapping
// the result in a separate Call node.
func (p *Parser) parseNew() ast.Expr {
	pos := p.cur().Pos
	p.advance()
	if p.curIs(token.NEW) {
		inner := p.parseNew()
		return p.finishNewArgs(pos, inner)
	}
	callee := p.parseNewCalleeChain()
	return p.finishNewArgs(pos, callee)
}

func (p *Parser) parseNewCalleeChain() ast.Expr {
	prefix, ok := p.prefixFns[p.cur().Type]
	if !ok {
		p.addErrorf(p.cur().Pos, "unexpected token %s %q after 'new'", p.cur().Type, p.cur().Lexeme)
		tok := p.advance()
		return &ast.Literal{Loc: ast.At(tok.Pos), Kind: ast.LitUndefined}
	}
	expr := prefix()
	for {
		switch p.cur().Type {
		case token.DOT:
			expr = p.parseMember(expr)
		case token.QUESTION_DOT:
			expr = p.parseOptionalMember(expr)
		case token.LBRACKET:
			expr = p.parseIndex(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) finishNewArgs(pos token.Position, callee ast.Expr) ast.Expr {
	n := &ast.New{Loc: ast.At(pos), Callee: callee}
	if p.curIs(token.LPAREN) {
		call := p.parseCall(callee).(*ast.Call)
		n.Args = call.Args
	}
	return n
}

func (p *Parser) parseArrayLiteral() ast.Expr {
	pos := p.cur().Pos
	p.advance()
	var elems []ast.Expr
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.match(token.DOTDOTDOT) {
			elems = append(elems, &ast.Spread{Loc: ast.At(p.cur().Pos), Value: p.parseExpression(precAssign)})
		} else {
			elems = append(elems, p.parseExpression(precAssign))
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACKET)
	return &ast.ArrayLiteral{Loc: ast.At(pos), Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Expr {
	pos := p.cur().Pos
	p.advance()
	var props []ast.ObjectProperty
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.match(token.DOTDOTDOT) {
			props = append(props, ast.ObjectProperty{Spread: true, Value: p.parseExpression(precAssign)})
			if !p.match(token.COMMA) {
				break
			}
			continue
		}
		var key string
		var computed ast.Expr
		if p.match(token.LBRACKET) {
			computed = p.parseExpression(precLowest)
			p.expect(token.RBRACKET)
		} else if p.curIs(token.STRING) {
			key = p.advance().Literal.Str
		} else if p.curIs(token.NUMBER) {
			key = p.advance().Lexeme
		} else {
			key = p.advance().Lexeme
		}
		// Shorthand method: `name(params) { body }`.
		if p.curIs(token.LPAREN) {
			fn := p.parseFunctionLikeTail(false, false)
			props = append(props, ast.ObjectProperty{Key: key, Computed: computed, Value: fn})
			if !p.match(token.COMMA) {
				break
			}
			continue
		}
		if p.match(token.COLON) {
			val := p.parseExpression(precAssign)
			props = append(props, ast.ObjectProperty{Key: key, Computed: computed, Value: val})
		} else {
			// Shorthand property `{ name }`.
			props = append(props, ast.ObjectProperty{Key: key, Value: &ast.Variable{Loc: ast.At(pos), Name: key}, Shorthand: true})
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.ObjectLiteral{Loc: ast.At(pos), Properties: props}
}

// parseFunctionLikeTail parses `(params): RetType { body }` starting at the
// '(' and wraps it as an ArrowFunction node, since internal/ast has no
// separate anonymous-function-expression variant; object methods and
// `function(){}` expressions share ArrowFunction's shape but keep `this`
// unbound to the call site the way an arrow would, a deliberate, narrower
// simplification noted in DESIGN.md.
func (p *Parser) parseFunctionLikeTail(async, generator bool) *ast.ArrowFunction {
	pos := p.cur().Pos
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.match(token.COLON) {
		ret = p.parseTypeExpr()
	}
	body := p.parseBlock()
	_ = generator
	return &ast.ArrowFunction{Loc: ast.At(pos), Params: params, ReturnType: ret, Body: body, Async: async}
}

func (p *Parser) parseFunctionExprAsExpr() ast.Expr {
	pos := p.cur().Pos
	p.advance()
	generator := p.match(token.STAR)
	if p.curIs(token.IDENT) {
		p.advance() // named function expression: name is non-binding here
	}
	fn := p.parseFunctionLikeTail(false, generator)
	fn.Loc = ast.At(pos)
	return fn
}

func (p *Parser) parseAsyncPrefix() ast.Expr {
	pos := p.cur().Pos
	if p.peekIs(token.FUNCTION) {
		p.advance()
		p.advance()
		generator := p.match(token.STAR)
		if p.curIs(token.IDENT) {
			p.advance()
		}
		fn := p.parseFunctionLikeTail(true, generator)
		fn.Loc = ast.At(pos)
		return fn
	}
	if p.peekIs(token.LPAREN) || (p.peek(1).Type == token.IDENT && p.peek(2).Type == token.ARROW) {
		p.advance()
		arrow := p.parseArrowFromHere(pos)
		arrow.Async = true
		return arrow
	}
	// Plain identifier named "async" used as a value.
	t := p.advance()
	return &ast.Variable{Loc: ast.At(t.Pos), Name: t.Lexeme}
}

// parseIdentOrArrow disambiguates a bare identifier from the start of a
// single-parameter arrow function `x => expr`.
func (p *Parser) parseIdentOrArrow() ast.Expr {
	if p.peekIs(token.ARROW) {
		pos := p.cur().Pos
		name := p.advance().Lexeme
		p.advance() // =>
		return p.finishArrow(pos, []ast.Param{{Name: name}}, nil)
	}
	t := p.advance()
	return &ast.Variable{Loc: ast.At(t.Pos), Name: t.Lexeme}
}

// parseGroupOrArrow disambiguates `(expr)` from an arrow function's
// parameter list by speculatively parsing a parenthesized parameter list
// and backtracking via the cursor's saved index if it turns out not to be
// followed by `=>`.
func (p *Parser) parseGroupOrArrow() ast.Expr {
	pos := p.cur().Pos
	mark := p.c.mark()
	errMark := len(p.errors)
	if params, ok := p.tryParseArrowParams(); ok && p.curIs(token.ARROW) {
		p.advance()
		return p.finishArrow(pos, params, nil)
	}
	p.c.reset(mark)
	p.errors = p.errors[:errMark]
	p.expect(token.LPAREN)
	inner := p.parseExpressionList()
	p.expect(token.RPAREN)
	return &ast.Grouping{Loc: ast.At(pos), Inner: inner}
}

// parseArrowFromHere parses a parameter list already known (by lookahead in
// parseAsyncPrefix) to introduce an arrow function.
func (p *Parser) parseArrowFromHere(pos token.Position) *ast.ArrowFunction {
	var params []ast.Param
	if p.curIs(token.IDENT) {
		params = []ast.Param{{Name: p.advance().Lexeme}}
	} else {
		params, _ = p.tryParseArrowParams()
	}
	p.expect(token.ARROW)
	return p.finishArrow(pos, params, nil)
}

func (p *Parser) finishArrow(pos token.Position, params []ast.Param, ret ast.TypeExpr) *ast.ArrowFunction {
	arrow := &ast.ArrowFunction{Loc: ast.At(pos), Params: params, ReturnType: ret}
	if p.curIs(token.LBRACE) {
		arrow.Body = p.parseBlock()
	} else {
		arrow.ExprBody = p.parseExpression(precAssign)
	}
	return arrow
}

// tryParseArrowParams attempts to parse `(params)` possibly followed by a
// `: ReturnType` annotation, returning ok=false (with the cursor left
// wherever parsing stopped; the caller resets on failure) if the contents
// cannot be a parameter list.
func (p *Parser) tryParseArrowParams() (params []ast.Param, ok bool) {
	if !p.curIs(token.LPAREN) {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	params = p.parseParamList()
	if p.match(token.COLON) {
		p.parseTypeExpr()
	}
	return params, true
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LPAREN)
	var params []ast.Param
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		var param ast.Param
		switch p.cur().Type {
		case token.PUBLIC, token.PRIVATE, token.PROTECTED, token.READONLY:
			param.AccessMod = p.advance().Lexeme
		}
		if p.match(token.DOTDOTDOT) {
			param.Rest = true
		}
		param.Name = p.parseBindingName()
		if p.match(token.QUESTION) {
			param.Optional = true
		}
		if p.match(token.COLON) {
			param.TypeAnn = p.parseTypeExpr()
		}
		if p.match(token.ASSIGN) {
			param.Default = p.parseExpression(precAssign)
		}
		params = append(params, param)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseAssignLike(left ast.Expr) ast.Expr {
	t := p.advance()
	value := p.parseExpression(precAssign - 1)
	switch t.Type {
	case token.ASSIGN:
		if get, ok := left.(*ast.Get); ok {
			return &ast.Set{Loc: ast.At(t.Pos), Object: get.Object, Name: get.Name, Value: value}
		}
		if idx, ok := left.(*ast.GetIndex); ok {
			return &ast.SetIndex{Loc: ast.At(t.Pos), Object: idx.Object, Index: idx.Index, Value: value}
		}
		return &ast.Assign{Loc: ast.At(t.Pos), Target: left, Value: value}
	case token.AND_ASSIGN, token.OR_ASSIGN, token.QQ_ASSIGN:
		if get, ok := left.(*ast.Get); ok {
			return &ast.LogicalSet{Loc: ast.At(t.Pos), Op: t.Type, Object: get.Object, Name: get.Name, Value: value}
		}
		if idx, ok := left.(*ast.GetIndex); ok {
			return &ast.LogicalSetIndex{Loc: ast.At(t.Pos), Op: t.Type, Object: idx.Object, Index: idx.Index, Value: value}
		}
		return &ast.LogicalAssign{Loc: ast.At(t.Pos), Op: t.Type, Target: left, Value: value}
	default:
		if get, ok := left.(*ast.Get); ok {
			return &ast.CompoundSet{Loc: ast.At(t.Pos), Op: t.Type, Object: get.Object, Name: get.Name, Value: value}
		}
		if idx, ok := left.(*ast.GetIndex); ok {
			return &ast.CompoundSetIndex{Loc: ast.At(t.Pos), Op: t.Type, Object: idx.Object, Index: idx.Index, Value: value}
		}
		return &ast.CompoundAssign{Loc: ast.At(t.Pos), Op: t.Type, Target: left, Value: value}
	}
}

// parseTemplateLiteral reassembles the HEAD/MIDDLE/TAIL (or FULL) token
// sequence the lexer emits into one TemplateLiteral node, parsing each
// `${...}` hole as a full expression and resuming lexing of the literal
// text via the cursor's resumeTemplate bridge once that hole's closing `}`
// is reached (spec.md §4.1).
func (p *Parser) parseTemplateLiteral() ast.Expr {
	pos := p.cur().Pos
	first := p.advance()
	lit := &ast.TemplateLiteral{Loc: ast.At(pos)}
	lit.Chunks = append(lit.Chunks, ast.TemplateChunk{Text: first.Literal.Str})
	if first.Type == token.TEMPLATE_FULL {
		return lit
	}
	for {
		expr := p.parseExpression(precLowest)
		lit.Chunks[len(lit.Chunks)-1].Expr = expr
		closing := p.cur()
		if closing.Type != token.RBRACE {
			p.addErrorf(closing.Pos, "expected '}' to close template interpolation, got %s %q", closing.Type, closing.Lexeme)
			break
		}
		cont := p.c.resumeTemplate(closing)
		p.advance()
		lit.Chunks = append(lit.Chunks, ast.TemplateChunk{Text: cont.Literal.Str})
		if cont.Type == token.TEMPLATE_TAIL {
			break
		}
		if cont.Type != token.TEMPLATE_MIDDLE {
			p.addErrorf(cont.Pos, "malformed template literal continuation")
			break
		}
	}
	return lit
}
