package parser

import (
	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/token"
)

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur().Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.CONST:
		if p.peekIs(token.ENUM) {
			p.advance()
			return p.parseEnum(true)
		}
		return p.parseVarStatement()
	case token.VAR, token.LET:
		return p.parseVarStatement()
	case token.FUNCTION:
		return p.parseFunctionDecl(false, false)
	case token.ASYNC:
		if p.peekIs(token.FUNCTION) {
			p.advance()
			return p.parseFunctionDecl(true, false)
		}
		return p.parseExpressionStatement()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile("")
	case token.DO:
		return p.parseDoWhile("")
	case token.FOR:
		return p.parseFor("")
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.SWITCH:
		return p.parseSwitch("")
	case token.TRY:
		return p.parseTry()
	case token.THROW:
		return p.parseThrow()
	case token.CLASS:
		return p.parseClassDecl(false)
	case token.ABSTRACT:
		if p.peekIs(token.CLASS) {
			p.advance()
			return p.parseClassDecl(true)
		}
		return p.parseExpressionStatement()
	case token.INTERFACE:
		return p.parseInterfaceDecl()
	case token.ENUM:
		return p.parseEnum(false)
	case token.TYPE:
		if p.peekIs(token.IDENT) {
			return p.parseTypeAlias()
		}
		return p.parseExpressionStatement()
	case token.NAMESPACE, token.MODULE:
		return p.parseNamespace()
	case token.IMPORT:
		return p.parseImport()
	case token.EXPORT:
		return p.parseExport()
	case token.DECLARE:
		return p.parseDeclare()
	case token.USING:
		return p.parseUsing(false)
	case token.SEMICOLON:
		p.advance()
		return nil
	case token.IDENT:
		if p.peekIs(token.COLON) {
			return p.parseLabeled()
		}
		if p.cur().Lexeme == "using" && p.peekIs(token.IDENT) {
			return p.parseUsing(false)
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	pos := p.cur().Pos
	p.expect(token.LBRACE)
	b := &ast.Block{Loc: ast.At(pos)}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		start := p.c.mark()
		if s := p.parseStatement(); s != nil {
			b.Statements = append(b.Statements, s)
		}
		if p.c.mark() == start {
			p.synchronize()
		}
	}
	p.expect(token.RBRACE)
	return b
}

func (p *Parser) parseExpressionStatement() ast.Stmt {
	pos := p.cur().Pos
	if p.curIs(token.STRING) && p.cur().Literal.Str == "use strict" {
		value := p.cur().Literal.Str
		p.advance()
		p.consumeSemicolon()
		return &ast.Directive{Loc: ast.At(pos), Value: value}
	}
	expr := p.parseExpressionList()
	p.consumeSemicolon()
	return &ast.ExpressionStmt{Loc: ast.At(pos), Expr: expr}
}

func varKindFor(t token.Type) ast.VarKind {
	switch t {
	case token.LET:
		return ast.VarLet
	case token.CONST:
		return ast.VarConst
	default:
		return ast.VarVar
	}
}

func (p *Parser) parseVarStatement() ast.Stmt {
	pos := p.cur().Pos
	kind := varKindFor(p.cur().Type)
	p.advance()
	decls := p.parseVarDeclList(kind)
	p.consumeSemicolon()
	if len(decls) == 1 {
		return decls[0]
	}
	stmts := make([]ast.Stmt, len(decls))
	for i, d := range decls {
		stmts[i] = d
	}
	return &ast.Sequence{Loc: ast.At(pos), Statements: stmts}
}

// parseVarDeclList parses one or more comma-separated declarators sharing
// kind, without consuming the trailing semicolon (used directly by
// for-loop initializers as well as parseVarStatement).
func (p *Parser) parseVarDeclList(kind ast.VarKind) []*ast.VarDecl {
	var decls []*ast.VarDecl
	for {
		decls = append(decls, p.parseOneVarDecl(kind))
		if !p.match(token.COMMA) {
			break
		}
	}
	return decls
}

func (p *Parser) parseOneVarDecl(kind ast.VarKind) *ast.VarDecl {
	pos := p.cur().Pos
	name := p.parseBindingName()
	var typeAnn ast.TypeExpr
	if p.match(token.COLON) {
		typeAnn = p.parseTypeExpr()
	}
	var init ast.Expr
	if p.match(token.ASSIGN) {
		init = p.parseExpression(precAssign)
	}
	return &ast.VarDecl{Loc: ast.At(pos), Kind: kind, Name: name, TypeAnn: typeAnn, Init: init}
}

// parseBindingName accepts a plain identifier or a keyword used as a name.
// Destructuring patterns are not parsed: any other token records a parse
// error and yields the placeholder name "_error".
func (p *Parser) parseBindingName() string {
	if p.curIs(token.IDENT) || p.cur().Type.IsKeyword() {
		return p.advance().Lexeme
	}
	p.addErrorf(p.cur().Pos, "expected binding name, got %s %q", p.cur().Type, p.cur().Lexeme)
	return "_error"
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	var val ast.Expr
	if !p.curIs(token.SEMICOLON) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) && !p.c.precededByNewline() {
		val = p.parseExpression(precLowest)
	}
	p.consumeSemicolon()
	return &ast.Return{Loc: ast.At(pos), Value: val}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	then := p.parseStatement()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.parseStatement()
	}
	return &ast.If{Loc: ast.At(pos), Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile(label string) ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	p.expect(token.LPAREN)
	cond := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.While{Loc: ast.At(pos), Cond: cond, Body: body, Label: label}
}

func (p *Parser) parseDoWhile(label string) ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	body := p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	p.match(token.SEMICOLON)
	return &ast.DoWhile{Loc: ast.At(pos), Body: body, Cond: cond, Label: label}
}

func (p *Parser) parseFor(label string) ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	isAwait := p.match(token.AWAIT)
	p.expect(token.LPAREN)

	// for (var/let/const NAME of|in EXPR) body
	if p.curIs(token.VAR) || p.curIs(token.LET) || p.curIs(token.CONST) {
		kind := varKindFor(p.cur().Type)
		p.advance()
		name := p.parseBindingName()
		if p.curIs(token.OF) {
			p.advance()
			iterable := p.parseExpression(precLowest)
			p.expect(token.RPAREN)
			body := p.parseStatement()
			return &ast.ForOf{Loc: ast.At(pos), Kind: kind, IsDecl: true, Name: name, Iterable: iterable, Body: body, Await: isAwait, Label: label}
		}
		if p.curIs(token.IN) {
			p.advance()
			obj := p.parseExpression(precLowest)
			p.expect(token.RPAREN)
			body := p.parseStatement()
			return &ast.ForIn{Loc: ast.At(pos), Kind: kind, IsDecl: true, Name: name, Object: obj, Body: body, Label: label}
		}
		// classic C-style for with a declaration initializer.
		var typeAnn ast.TypeExpr
		if p.match(token.COLON) {
			typeAnn = p.parseTypeExpr()
		}
		var init ast.Expr
		if p.match(token.ASSIGN) {
			init = p.parseExpression(precAssign)
		}
		first := &ast.VarDecl{Loc: ast.At(pos), Kind: kind, Name: name, TypeAnn: typeAnn, Init: init}
		var initStmt ast.Stmt = first
		if p.curIs(token.COMMA) {
			decls := []*ast.VarDecl{first}
			for p.match(token.COMMA) {
				decls = append(decls, p.parseOneVarDecl(kind))
			}
			stmts := make([]ast.Stmt, len(decls))
			for i, d := range decls {
				stmts[i] = d
			}
			initStmt = &ast.Sequence{Loc: ast.At(pos), Statements: stmts}
		}
		return p.parseForRest(pos, initStmt, label)
	}

	// for (;;) or for (expr of|in expr)
	if p.curIs(token.SEMICOLON) {
		return p.parseForRest(pos, nil, label)
	}
	expr := p.parseExpression(precLowest)
	if p.curIs(token.OF) {
		p.advance()
		iterable := p.parseExpression(precLowest)
		p.expect(token.RPAREN)
		body := p.parseStatement()
		name := exprAsBindingName(expr)
		return &ast.ForOf{Loc: ast.At(pos), IsDecl: false, Name: name, Iterable: iterable, Body: body, Await: isAwait, Label: label}
	}
	if p.curIs(token.IN) {
		p.advance()
		obj := p.parseExpression(precLowest)
		p.expect(token.RPAREN)
		body := p.parseStatement()
		name := exprAsBindingName(expr)
		return &ast.ForIn{Loc: ast.At(pos), IsDecl: false, Name: name, Object: obj, Body: body, Label: label}
	}
	initStmt := &ast.ExpressionStmt{Loc: ast.At(pos), Expr: expr}
	return p.parseForRest(pos, initStmt, label)
}

// exprAsBindingName extracts the variable name from a for-of/for-in target
// that is an existing binding (`for (x of xs)`) rather than a fresh
// declaration.
func exprAsBindingName(e ast.Expr) string {
	if v, ok := e.(*ast.Variable); ok {
		return v.Name
	}
	return "_target"
}

func (p *Parser) parseForRest(pos token.Position, init ast.Stmt, label string) ast.Stmt {
	p.expect(token.SEMICOLON)
	var cond ast.Expr
	if !p.curIs(token.SEMICOLON) {
		cond = p.parseExpression(precLowest)
	}
	p.expect(token.SEMICOLON)
	var post ast.Expr
	if !p.curIs(token.RPAREN) {
		post = p.parseExpression(precLowest)
	}
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.For{Loc: ast.At(pos), Init: init, Cond: cond, Post: post, Body: body, Label: label}
}

func (p *Parser) parseBreak() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	label := ""
	if p.curIs(token.IDENT) && !p.c.precededByNewline() {
		label = p.advance().Lexeme
	}
	p.consumeSemicolon()
	return &ast.Break{Loc: ast.At(pos), Label: label}
}

func (p *Parser) parseContinue() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	label := ""
	if p.curIs(token.IDENT) && !p.c.precededByNewline() {
		label = p.advance().Lexeme
	}
	p.consumeSemicolon()
	return &ast.Continue{Loc: ast.At(pos), Label: label}
}

func (p *Parser) parseLabeled() ast.Stmt {
	pos := p.cur().Pos
	label := p.advance().Lexeme
	p.expect(token.COLON)
	switch p.cur().Type {
	case token.WHILE:
		return p.parseWhile(label)
	case token.DO:
		return p.parseDoWhile(label)
	case token.FOR:
		return p.parseFor(label)
	case token.SWITCH:
		return p.parseSwitch(label)
	default:
		return &ast.LabeledStatement{Loc: ast.At(pos), Label: label, Body: p.parseStatement()}
	}
}

func (p *Parser) parseSwitch(label string) ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	p.expect(token.LPAREN)
	disc := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	var cases []ast.SwitchCase
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		var test ast.Expr
		if p.match(token.CASE) {
			test = p.parseExpression(precLowest)
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		var stmts []ast.Stmt
		for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			if s := p.parseStatement(); s != nil {
				stmts = append(stmts, s)
			}
		}
		cases = append(cases, ast.SwitchCase{Test: test, Statements: stmts})
	}
	p.expect(token.RBRACE)
	return &ast.Switch{Loc: ast.At(pos), Discriminant: disc, Cases: cases, Label: label}
}

func (p *Parser) parseTry() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	body := p.parseBlock()
	var catch *ast.CatchClause
	var fin *ast.Block
	if p.match(token.CATCH) {
		param := ""
		if p.match(token.LPAREN) {
			param = p.parseBindingName()
			if p.match(token.COLON) {
				p.parseTypeExpr()
			}
			p.expect(token.RPAREN)
		}
		catch = &ast.CatchClause{Param: param, Body: p.parseBlock()}
	}
	if p.match(token.FINALLY) {
		fin = p.parseBlock()
	}
	return &ast.TryCatch{Loc: ast.At(pos), Body: body, Catch: catch, Finally: fin}
}

func (p *Parser) parseThrow() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	val := p.parseExpression(precLowest)
	p.consumeSemicolon()
	return &ast.Throw{Loc: ast.At(pos), Value: val}
}

func (p *Parser) parseUsing(isAwait bool) ast.Stmt {
	pos := p.cur().Pos
	if p.cur().Lexeme == "using" {
		p.advance()
	} else {
		p.expect(token.USING)
	}
	name := p.parseBindingName()
	var init ast.Expr
	if p.match(token.ASSIGN) {
		init = p.parseExpression(precAssign)
	}
	p.consumeSemicolon()
	return &ast.Using{Loc: ast.At(pos), Name: name, Initializer: init, Await: isAwait}
}

func (p *Parser) parseTypeAlias() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	name := p.advance().Lexeme
	tps := p.parseOptionalTypeParams()
	p.expect(token.ASSIGN)
	val := p.parseTypeExpr()
	p.consumeSemicolon()
	return &ast.TypeAlias{Loc: ast.At(pos), Name: name, TypeParams: tps, Value: val}
}

func (p *Parser) parseEnum(isConst bool) ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	name := p.advance().Lexeme
	p.expect(token.LBRACE)
	kind := ast.EnumNumeric
	if isConst {
		kind = ast.EnumConst
	}
	var members []ast.EnumMember
	sawString := false
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		mName := p.advance().Lexeme
		var val ast.Expr
		if p.match(token.ASSIGN) {
			val = p.parseExpression(precAssign)
			if lit, ok := val.(*ast.Literal); ok && lit.Kind == ast.LitString {
				sawString = true
			}
		}
		members = append(members, ast.EnumMember{Name: mName, Value: val})
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	if sawString && !isConst {
		kind = ast.EnumString
	}
	return &ast.Enum{Loc: ast.At(pos), Name: name, Kind: kind, Members: members}
}

func (p *Parser) parseNamespace() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	name := p.advance().Lexeme
	for p.match(token.DOT) {
		name += "." + p.advance().Lexeme
	}
	block := p.parseBlock()
	return &ast.Namespace{Loc: ast.At(pos), Name: name, Body: block.Statements}
}

func (p *Parser) parseImport() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	// import X = require("m") | import X = NS.Y
	if p.curIs(token.IDENT) && p.peekIs(token.ASSIGN) {
		name := p.advance().Lexeme
		p.expect(token.ASSIGN)
		val := p.parseExpression(precAssign)
		p.consumeSemicolon()
		return &ast.ImportAlias{Loc: ast.At(pos), Name: name, Value: val}
	}
	imp := &ast.Import{Loc: ast.At(pos)}
	if p.curIs(token.STRING) {
		imp.ModulePath = p.advance().Literal.Str
		p.consumeSemicolon()
		return imp
	}
	if p.curIs(token.STAR) {
		p.advance()
		p.expect(token.AS)
		imp.Namespace = p.advance().Lexeme
	} else if p.curIs(token.IDENT) {
		imp.Default = p.advance().Lexeme
		if p.match(token.COMMA) {
			if p.match(token.STAR) {
				p.expect(token.AS)
				imp.Namespace = p.advance().Lexeme
			} else {
				imp.Specifiers = p.parseImportSpecifiers()
			}
		}
	} else if p.curIs(token.LBRACE) {
		imp.Specifiers = p.parseImportSpecifiers()
	}
	p.expect(token.FROM)
	imp.ModulePath = p.expect(token.STRING).Literal.Str
	p.consumeSemicolon()
	return imp
}

func (p *Parser) parseImportSpecifiers() []ast.ImportSpecifier {
	p.expect(token.LBRACE)
	var specs []ast.ImportSpecifier
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		name := p.advance().Lexeme
		alias := ""
		if p.match(token.AS) {
			alias = p.advance().Lexeme
		}
		specs = append(specs, ast.ImportSpecifier{Name: name, Alias: alias})
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	return specs
}

func (p *Parser) parseExport() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	if p.match(token.DEFAULT) {
		var decl ast.Stmt
		switch p.cur().Type {
		case token.FUNCTION:
			decl = p.parseFunctionDecl(false, false)
		case token.CLASS:
			decl = p.parseClassDecl(false)
		default:
			expr := p.parseExpression(precAssign)
			p.consumeSemicolon()
			decl = &ast.ExpressionStmt{Loc: ast.At(pos), Expr: expr}
		}
		return &ast.Export{Loc: ast.At(pos), Decl: decl, Default: true}
	}
	if p.curIs(token.STAR) {
		p.advance()
		p.expect(token.FROM)
		mp := p.expect(token.STRING).Literal.Str
		p.consumeSemicolon()
		return &ast.Export{Loc: ast.At(pos), ModulePath: mp}
	}
	if p.curIs(token.LBRACE) {
		specs := p.parseImportSpecifiers()
		mp := ""
		if p.match(token.FROM) {
			mp = p.expect(token.STRING).Literal.Str
		}
		p.consumeSemicolon()
		return &ast.Export{Loc: ast.At(pos), Specifiers: specs, ModulePath: mp}
	}
	decl := p.parseStatement()
	return &ast.Export{Loc: ast.At(pos), Decl: decl}
}

func (p *Parser) parseDeclare() ast.Stmt {
	pos := p.cur().Pos
	p.advance()
	if p.curIs(token.IDENT) && p.cur().Lexeme == "global" {
		p.advance()
		block := p.parseBlock()
		return &ast.DeclareGlobal{Loc: ast.At(pos), Body: block.Statements}
	}
	if p.match(token.MODULE) || p.match(token.NAMESPACE) {
		name := ""
		if p.curIs(token.STRING) {
			name = p.advance().Literal.Str
		} else {
			name = p.advance().Lexeme
			for p.match(token.DOT) {
				name += "." + p.advance().Lexeme
			}
		}
		block := p.parseBlock()
		return &ast.DeclareModule{Loc: ast.At(pos), Name: name, Body: block.Statements}
	}
	// declare function/class/var/const: parse as the underlying decl, body omitted for function overloads.
	return p.parseStatement()
}

func (p *Parser) parseOptionalTypeParams() []ast.TypeParam {
	if !p.curIs(token.LT) {
		return nil
	}
	p.advance()
	var tps []ast.TypeParam
	for !p.curIs(token.GT) && !p.curIs(token.EOF) {
		tp := ast.TypeParam{Name: p.advance().Lexeme}
		if p.match(token.EXTENDS) {
			tp.Constraint = p.parseTypeExpr()
		}
		if p.match(token.ASSIGN) {
			tp.Default = p.parseTypeExpr()
		}
		tps = append(tps, tp)
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.GT)
	return tps
}
