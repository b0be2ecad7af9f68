// Package ast defines the Abstract Syntax Tree produced by the parser and
// consumed by the type checker, interpreter, and emitter (spec.md §3).
//
// The tree is immutable after parsing: nodes are constructed once by the
// parser and never mutated by downstream passes. The type checker instead
// records its findings out-of-band in a TypeMap keyed by node identity
// (internal/types.TypeMap), and the interpreter/emitter never write back
// into AST fields. Two disjoint tagged variants exist, Expr and Stmt, each
// a closed set of node structs implementing a small marker interface so the
// compiler enforces exhaustiveness is intentional at each switch site.
package ast

import (
	"strings"

	"github.com/scriptlang/tsforge/internal/token"
)

// Node is implemented by every AST node: expressions and statements alike.
type Node interface {
	Pos() token.Position
	String() string
}

// Expr is implemented by every expression node (spec.md §3 Expr variant).
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node (spec.md §3 Stmt variant).
type Stmt interface {
	Node
	stmtNode()
}

// Program is the root node: the ordered list of top-level statements.
type Program struct {
	Statements []Stmt
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Statements {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Param describes one function/arrow/method parameter after destructuring
// and parameter-property desugaring has named it (spec.md §4.2): the parser
// never emits a Param whose Name is a pattern — array/object patterns are
// replaced by a synthetic name plus prologue statements in the body.
type Param struct {
	Name         string
	TypeAnn      TypeExpr // nil if untyped
	Default      Expr     // nil if none
	Rest         bool
	Optional     bool
	AccessMod    string // "public"|"private"|"protected"|"readonly"|"" — parameter property modifier
	IsSynthetic  bool   // true for desugared destructuring/rest holders (_paramN)
}

// TypeParam is a generic type parameter, e.g. `<T extends U = D>`.
type TypeParam struct {
	Name       string
	Constraint TypeExpr
	Default    TypeExpr
}

// TypeExpr is the syntactic (unresolved) type annotation tree produced by
// the parser; internal/typecheck resolves each TypeExpr into a
// internal/types.TypeInfo. Kept separate from TypeInfo because the parser
// runs before any binding resolution exists.
type TypeExpr interface {
	Node
	typeExprNode()
}
