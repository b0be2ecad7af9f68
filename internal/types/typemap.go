package types

import "github.com/scriptlang/tsforge/internal/ast"

// TypeMap records the type checker's findings out-of-band, keyed by AST
// node identity, so the AST itself stays immutable after parsing (see the
// internal/ast package doc comment). internal/interpreter and
// internal/bytecode both consult a frozen TypeMap to pick representations
// (e.g. whether a for-of target is an array fast path or a generic
// iterator) without re-deriving types at runtime.
type TypeMap struct {
	exprTypes map[ast.Expr]TypeInfo
	declTypes map[ast.Node]TypeInfo // function/class/var declaration sites
}

// NewTypeMap returns an empty, writable TypeMap.
func NewTypeMap() *TypeMap {
	return &TypeMap{
		exprTypes: make(map[ast.Expr]TypeInfo),
		declTypes: make(map[ast.Node]TypeInfo),
	}
}

// SetExprType records the resolved type of an expression node.
func (m *TypeMap) SetExprType(e ast.Expr, t TypeInfo) {
	m.exprTypes[e] = t
}

// ExprType returns the resolved type of an expression node, or Unknown if
// the checker never visited it (e.g. dead code after an unconditional
// return, still parsed but not type-checked).
func (m *TypeMap) ExprType(e ast.Expr) TypeInfo {
	if t, ok := m.exprTypes[e]; ok {
		return t
	}
	return Unknown
}

// SetDeclType records the resolved type of a declaration site (a
// FunctionDecl's FunctionType, a ClassDecl's *ClassInfo, a VarDecl's
// element type, and so on).
func (m *TypeMap) SetDeclType(n ast.Node, t TypeInfo) {
	m.declTypes[n] = t
}

// DeclType returns the resolved type of a declaration site, or Unknown.
func (m *TypeMap) DeclType(n ast.Node) TypeInfo {
	if t, ok := m.declTypes[n]; ok {
		return t
	}
	return Unknown
}
