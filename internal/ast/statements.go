package ast

import (
	"strings"

	"github.com/scriptlang/tsforge/internal/token"
)

// VarKind discriminates var/let/const binding statements.
type VarKind int

const (
	VarVar VarKind = iota
	VarLet
	VarConst
)

// VarDecl is one `var/let/const name: T = init` binding. Multiple comma
// separated declarators in one statement are desugared by the parser into
// a Sequence of VarDecl statements sharing the same VarKind.
type VarDecl struct {
	Loc
	Kind     VarKind
	Name     string
	TypeAnn  TypeExpr
	Init     Expr // nil if uninitialized
}

func (v *VarDecl) stmtNode() {}
func (v *VarDecl) String() string {
	kw := [...]string{"var", "let", "const"}[v.Kind]
	if v.Init != nil {
		return kw + " " + v.Name + " = " + v.Init.String() + ";"
	}
	return kw + " " + v.Name + ";"
}

// ExpressionStmt wraps an expression evaluated for its side effects.
type ExpressionStmt struct {
	Loc
	Expr Expr
}

func (e *ExpressionStmt) stmtNode()      {}
func (e *ExpressionStmt) String() string { return e.Expr.String() + ";" }

// Sequence groups statements produced by one source statement via
// desugaring (destructuring prologues, comma-separated var declarators)
// without introducing a new lexical scope, unlike Block.
type Sequence struct {
	Loc
	Statements []Stmt
}

func (s *Sequence) stmtNode() {}
func (s *Sequence) String() string {
	parts := make([]string, len(s.Statements))
	for i, st := range s.Statements {
		parts[i] = st.String()
	}
	return strings.Join(parts, " ")
}

// Block is a `{ ... }` statement list that introduces a child scope.
type Block struct {
	Loc
	Statements []Stmt
}

func (b *Block) stmtNode() {}
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Statements {
		sb.WriteString("  " + s.String() + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// FunctionDecl is a named function declaration or a bodyless overload
// signature (spec.md §4.2: Body == nil marks an overload signature,
// consulted only by the type checker).
type FunctionDecl struct {
	Loc
	Name       string
	TypeParams []TypeParam
	Params     []Param
	ReturnType TypeExpr
	Body       *Block // nil for an overload signature
	Async      bool
	Generator  bool
	Strict     bool // set once the directive prologue of Body is scanned
}

func (f *FunctionDecl) stmtNode() {}
func (f *FunctionDecl) String() string {
	prefix := ""
	if f.Async {
		prefix = "async "
	}
	star := ""
	if f.Generator {
		star = "*"
	}
	if f.Body == nil {
		return prefix + "function" + star + " " + f.Name + "(...);"
	}
	return prefix + "function" + star + " " + f.Name + "(...) " + f.Body.String()
}

// Return is `return expr;` (expr nil for bare `return;`).
type Return struct {
	Loc
	Value Expr
}

func (r *Return) stmtNode() {}
func (r *Return) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

// If is `if (cond) then else alt`.
type If struct {
	Loc
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else branch
}

func (i *If) stmtNode() {}
func (i *If) String() string {
	s := "if (" + i.Cond.String() + ") " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

// While is `while (cond) body`.
type While struct {
	Loc
	Cond Expr
	Body Stmt
	Label string
}

func (w *While) stmtNode()      {}
func (w *While) String() string { return "while (" + w.Cond.String() + ") " + w.Body.String() }

// DoWhile is `do body while (cond);`.
type DoWhile struct {
	Loc
	Body  Stmt
	Cond  Expr
	Label string
}

func (d *DoWhile) stmtNode() {}
func (d *DoWhile) String() string {
	return "do " + d.Body.String() + " while (" + d.Cond.String() + ");"
}

// For is a classic C-style `for (init; cond; post) body`. Any of Init,
// Cond, Post may be nil.
type For struct {
	Loc
	Init  Stmt
	Cond  Expr
	Post  Expr
	Body  Stmt
	Label string
}

func (f *For) stmtNode() {}
func (f *For) String() string {
	return "for (...) " + f.Body.String()
}

// ForOf is `for (decl of iterable) body`; Await marks `for await (...)`.
type ForOf struct {
	Loc
	Kind     VarKind
	IsDecl   bool // false when the binding is an existing variable, not `var/let/const x`
	Name     string
	Iterable Expr
	Body     Stmt
	Await    bool
	Label    string
}

func (f *ForOf) stmtNode() {}
func (f *ForOf) String() string {
	prefix := "for"
	if f.Await {
		prefix = "for await"
	}
	return prefix + " (" + f.Name + " of " + f.Iterable.String() + ") " + f.Body.String()
}

// ForIn is `for (decl in obj) body`.
type ForIn struct {
	Loc
	Kind   VarKind
	IsDecl bool
	Name   string
	Object Expr
	Body   Stmt
	Label  string
}

func (f *ForIn) stmtNode() {}
func (f *ForIn) String() string {
	return "for (" + f.Name + " in " + f.Object.String() + ") " + f.Body.String()
}

// Break is `break;` or `break label;`.
type Break struct {
	Loc
	Label string
}

func (b *Break) stmtNode() {}
func (b *Break) String() string {
	if b.Label != "" {
		return "break " + b.Label + ";"
	}
	return "break;"
}

// Continue is `continue;` or `continue label;`.
type Continue struct {
	Loc
	Label string
}

func (c *Continue) stmtNode() {}
func (c *Continue) String() string {
	if c.Label != "" {
		return "continue " + c.Label + ";"
	}
	return "continue;"
}

// LabeledStatement attaches Label to Body (spec.md §4.2: labels bind to the
// statement immediately following; loop labels accept break/continue,
// non-loop labels accept only break).
type LabeledStatement struct {
	Loc
	Label string
	Body  Stmt
}

func (l *LabeledStatement) stmtNode()      {}
func (l *LabeledStatement) String() string { return l.Label + ": " + l.Body.String() }

// SwitchCase is one `case expr:` or `default:` arm; Test is nil for default.
type SwitchCase struct {
	Test       Expr
	Statements []Stmt
}

// Switch is `switch (disc) { case ... }`.
type Switch struct {
	Loc
	Discriminant Expr
	Cases        []SwitchCase
	Label        string
}

func (s *Switch) stmtNode() {}
func (s *Switch) String() string {
	return "switch (" + s.Discriminant.String() + ") { ... }"
}

// CatchClause is the `catch (param) body` part of a TryCatch; Param is ""
// for a parameterless `catch { ... }`, and ParamPattern destructuring has
// already been desugared into Body's prologue like function parameters.
type CatchClause struct {
	Param string
	Body  *Block
}

// TryCatch is `try body catch(e) handler finally cleanup`; Catch and
// Finally are independently optional but at least one must be present.
type TryCatch struct {
	Loc
	Body    *Block
	Catch   *CatchClause // nil if no catch clause
	Finally *Block       // nil if no finally clause
}

func (t *TryCatch) stmtNode() {}
func (t *TryCatch) String() string {
	s := "try " + t.Body.String()
	if t.Catch != nil {
		s += " catch (" + t.Catch.Param + ") " + t.Catch.Body.String()
	}
	if t.Finally != nil {
		s += " finally " + t.Finally.String()
	}
	return s
}

// Throw is `throw expr;`.
type Throw struct {
	Loc
	Value Expr
}

func (t *Throw) stmtNode()      {}
func (t *Throw) String() string { return "throw " + t.Value.String() + ";" }

// TypeAlias is `type Name<T> = TypeExpr;`.
type TypeAlias struct {
	Loc
	Name       string
	TypeParams []TypeParam
	Value      TypeExpr
}

func (t *TypeAlias) stmtNode()      {}
func (t *TypeAlias) String() string { return "type " + t.Name + " = " + t.Value.String() + ";" }

// EnumMember is one `Name = initializer` entry; Value is nil for numeric
// enums relying on auto-increment.
type EnumMember struct {
	Name  string
	Value Expr
}

// EnumKind discriminates numeric/string/heterogeneous/const enums
// (spec.md §4.3 Enums).
type EnumKind int

const (
	EnumNumeric EnumKind = iota
	EnumString
	EnumHeterogeneous
	EnumConst
)

// Enum is `const? enum Name { Members }`.
type Enum struct {
	Loc
	Name    string
	Kind    EnumKind
	Members []EnumMember
}

func (e *Enum) stmtNode()      {}
func (e *Enum) String() string { return "enum " + e.Name + " { ... }" }

// Namespace is `namespace Name { body }`; merges with prior declarations of
// the same name in the same scope (spec.md §3 RuntimeEnv: namespace
// merging).
type Namespace struct {
	Loc
	Name string
	Body []Stmt
}

func (n *Namespace) stmtNode()      {}
func (n *Namespace) String() string { return "namespace " + n.Name + " { ... }" }

// ImportSpecifier is one named import/export binding, optionally aliased.
type ImportSpecifier struct {
	Name  string
	Alias string // "" if not aliased
}

// Import is `import { a as b, c } from "module"` or `import Default from "m"`
// or `import * as NS from "m"`.
type Import struct {
	Loc
	Default     string // "" if no default import
	Namespace   string // "" if no `* as NS` import
	Specifiers  []ImportSpecifier
	ModulePath  string
}

func (i *Import) stmtNode()      {}
func (i *Import) String() string { return "import ... from \"" + i.ModulePath + "\";" }

// ImportAlias is `import X = require("m")` / `import X = NS.Y` (namespace
// aliasing form distinct from module Import).
type ImportAlias struct {
	Loc
	Name  string
	Value Expr
}

func (i *ImportAlias) stmtNode()      {}
func (i *ImportAlias) String() string { return "import " + i.Name + " = " + i.Value.String() + ";" }

// Export wraps a declaration or re-export; Decl is nil for `export { a, b }`
// / `export * from "m"` forms, which instead populate Specifiers/ModulePath.
type Export struct {
	Loc
	Decl       Stmt
	Default    bool
	Specifiers []ImportSpecifier
	ModulePath string // "" unless this is a re-export
}

func (e *Export) stmtNode() {}
func (e *Export) String() string {
	if e.Decl != nil {
		return "export " + e.Decl.String()
	}
	return "export { ... };"
}

// DeclareModule is `declare module "name" { body }`.
type DeclareModule struct {
	Loc
	Name string
	Body []Stmt
}

func (d *DeclareModule) stmtNode()      {}
func (d *DeclareModule) String() string { return "declare module \"" + d.Name + "\" { ... }" }

// DeclareGlobal is `declare global { body }`.
type DeclareGlobal struct {
	Loc
	Body []Stmt
}

func (d *DeclareGlobal) stmtNode()      {}
func (d *DeclareGlobal) String() string { return "declare global { ... }" }

// Using is `using name = initializer;` (or `await using` when Await is set).
// A nil Initializer is legal and skipped at disposal time (spec.md §4.4).
type Using struct {
	Loc
	Name        string
	Initializer Expr
	Await       bool
}

func (u *Using) stmtNode() {}
func (u *Using) String() string {
	prefix := "using"
	if u.Await {
		prefix = "await using"
	}
	if u.Initializer == nil {
		return prefix + " " + u.Name + ";"
	}
	return prefix + " " + u.Name + " = " + u.Initializer.String() + ";"
}

// Directive is a leading string-expression-only statement such as
// `"use strict";`, recognized by the parser's directive-prologue scan
// (spec.md §4.2).
type Directive struct {
	Loc
	Value string
}

func (d *Directive) stmtNode()      {}
func (d *Directive) String() string { return "\"" + d.Value + "\";" }

// unusedTokenRef keeps the token import live for files in this package that
// only need token.Position via Loc; statements.go itself does not reference
// token.Type directly but ast.go's sibling files do.
var _ = token.EOF
