package parser

import (
	"strings"
	"testing"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/lexer"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		var sb strings.Builder
		for _, e := range errs {
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
		t.Fatalf("parse errors for %q:\n%s", src, sb.String())
	}
	return prog
}

func singleStmt(t *testing.T, src string) ast.Stmt {
	t.Helper()
	prog := parseOK(t, src)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d for %q", len(prog.Statements), src)
	}
	return prog.Statements[0]
}

func singleExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	stmt := singleStmt(t, src)
	es, ok := stmt.(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("expected *ast.ExpressionStmt, got %T for %q", stmt, src)
	}
	return es.Expr
}

func TestVarDeclarations(t *testing.T) {
	stmt := singleStmt(t, "let x: number = 42;")
	decl, ok := stmt.(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", stmt)
	}
	if decl.Kind != ast.VarLet || decl.Name != "x" {
		t.Fatalf("unexpected decl %+v", decl)
	}
}

func TestConstEnumDispatch(t *testing.T) {
	stmt := singleStmt(t, "const enum Color { Red, Green, Blue }")
	en, ok := stmt.(*ast.Enum)
	if !ok {
		t.Fatalf("expected *ast.Enum, got %T", stmt)
	}
	if en.Kind != ast.EnumConst {
		t.Fatalf("expected const enum, got kind %v", en.Kind)
	}
	if len(en.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(en.Members))
	}
}

func TestTernaryPrecedence(t *testing.T) {
	expr := singleExpr(t, "a ? b : c;")
	tern, ok := expr.(*ast.Ternary)
	if !ok {
		t.Fatalf("expected *ast.Ternary, got %T", expr)
	}
	if tern.Then == nil || tern.Else == nil {
		t.Fatalf("ternary missing branches: %+v", tern)
	}
}

func TestNewWithCalleeChainAndArgs(t *testing.T) {
	expr := singleExpr(t, "new Foo.Bar(1, 2);")
	n, ok := expr.(*ast.New)
	if !ok {
		t.Fatalf("expected *ast.New, got %T", expr)
	}
	if len(n.Args) != 2 {
		t.Fatalf("expected 2 args landed on New.Args, got %d (%+v)", len(n.Args), n.Args)
	}
	if _, ok := n.Callee.(*ast.Get); !ok {
		t.Fatalf("expected callee chain *ast.Get, got %T", n.Callee)
	}
}

func TestNestedNew(t *testing.T) {
	expr := singleExpr(t, "new new Foo()();")
	outer, ok := expr.(*ast.New)
	if !ok {
		t.Fatalf("expected outer *ast.New, got %T", expr)
	}
	if _, ok := outer.Callee.(*ast.New); !ok {
		t.Fatalf("expected inner callee to be *ast.New, got %T", outer.Callee)
	}
}

func TestArrowFunctionVsGrouping(t *testing.T) {
	expr := singleExpr(t, "(a, b) => a + b;")
	arrow, ok := expr.(*ast.ArrowFunction)
	if !ok {
		t.Fatalf("expected *ast.ArrowFunction, got %T", expr)
	}
	if len(arrow.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(arrow.Params))
	}

	expr = singleExpr(t, "(a, b);")
	if _, ok := expr.(*ast.Grouping); !ok {
		t.Fatalf("expected *ast.Grouping for a non-arrow parenthesized expr, got %T", expr)
	}
}

func TestArrowBacktrackDoesNotLeakErrors(t *testing.T) {
	p := New(lexer.New("(a, b);"))
	prog := p.ParseProgram()
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement")
	}
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("expected no errors after arrow-params backtracking, got %v", errs)
	}
}

func TestTemplateLiteralWithHoles(t *testing.T) {
	expr := singleExpr(t, "`a${1}b${2}c`;")
	tmpl, ok := expr.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("expected *ast.TemplateLiteral, got %T", expr)
	}
	if len(tmpl.Chunks) != 3 {
		t.Fatalf("expected 3 chunks (a+1, b+2, c), got %d", len(tmpl.Chunks))
	}
	if tmpl.Chunks[0].Text != "a" || tmpl.Chunks[1].Text != "b" || tmpl.Chunks[2].Text != "c" {
		t.Fatalf("unexpected chunk texts: %+v", tmpl.Chunks)
	}
}

func TestCommaExpressionList(t *testing.T) {
	expr := singleExpr(t, "a, b, c;")
	v, ok := expr.(*ast.Variable)
	if !ok || v.Name != "c" {
		t.Fatalf("expected comma-operator result to be the last expression (c), got %#v", expr)
	}
}

func TestGenericTypeArgSplitting(t *testing.T) {
	stmt := singleStmt(t, "let x: Array<Array<number>>;")
	decl, ok := stmt.(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", stmt)
	}
	outer, ok := decl.TypeAnn.(*ast.TypeRef)
	if !ok || outer.Name != "Array" || len(outer.TypeArgs) != 1 {
		t.Fatalf("unexpected outer type %+v", decl.TypeAnn)
	}
	inner, ok := outer.TypeArgs[0].(*ast.TypeRef)
	if !ok || inner.Name != "Array" {
		t.Fatalf("unexpected inner type %+v", outer.TypeArgs[0])
	}
}

func TestFunctionOverloadSignatureHasNilBody(t *testing.T) {
	prog := parseOK(t, "function f(x: number): number;\nfunction f(x: string): string { return x; }")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	first, ok := prog.Statements[0].(*ast.FunctionDecl)
	if !ok || first.Body != nil {
		t.Fatalf("expected first overload signature to have a nil body, got %+v", first)
	}
}

func TestClassWithAccessorsAndStaticBlock(t *testing.T) {
	src := `
class Point {
  static count = 0;
  private _x: number;
  constructor(x: number) { this._x = x; }
  get x(): number { return this._x; }
  static { Point.count = 0; }
}`
	stmt := singleStmt(t, src)
	cls, ok := stmt.(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected *ast.ClassDecl, got %T", stmt)
	}
	if len(cls.Members) == 0 {
		t.Fatalf("expected class members to be parsed")
	}
}

func TestForOfAndForIn(t *testing.T) {
	singleStmt(t, "for (const x of xs) { x; }")
	singleStmt(t, "for (const k in obj) { k; }")
}

func TestTryCatchFinally(t *testing.T) {
	stmt := singleStmt(t, "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }")
	tc, ok := stmt.(*ast.TryCatch)
	if !ok {
		t.Fatalf("expected *ast.TryCatch, got %T", stmt)
	}
	if tc.Catch == nil || tc.Finally == nil {
		t.Fatalf("expected both catch and finally, got %+v", tc)
	}
}

func TestUnionAndIntersectionTypes(t *testing.T) {
	stmt := singleStmt(t, "let x: string | number;")
	decl := stmt.(*ast.VarDecl)
	if _, ok := decl.TypeAnn.(*ast.UnionType); !ok {
		t.Fatalf("expected *ast.UnionType, got %T", decl.TypeAnn)
	}
}

func TestConditionalTypeAndFunctionType(t *testing.T) {
	stmt := singleStmt(t, "type Fn = (x: number) => string;")
	alias, ok := stmt.(*ast.TypeAlias)
	if !ok {
		t.Fatalf("expected *ast.TypeAlias, got %T", stmt)
	}
	if _, ok := alias.Value.(*ast.FunctionType); !ok {
		t.Fatalf("expected *ast.FunctionType, got %T", alias.Value)
	}
}
