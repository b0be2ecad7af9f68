package ast

import (
	"fmt"
	"strings"

	"github.com/scriptlang/tsforge/internal/token"
)

// Loc carries the source position shared by every node and implements
// Pos(); each concrete node still writes its own String(). Exported (and
// its field P exported) so the parser package can populate it directly in
// struct literals when constructing nodes.
type Loc struct{ P token.Position }

func (l Loc) Pos() token.Position { return l.P }

// At constructs a Loc for the parser to embed when building a node.
func At(p token.Position) Loc { return Loc{P: p} }

// Literal is a literal expression: number, string, boolean, null, undefined,
// or bigint (spec.md §3 Expr.Literal).
type Literal struct {
	Loc
	Kind  LiteralKind
	Num   float64
	Str   string
	Bool  bool
	BigIntText string
}

// LiteralKind discriminates the payload carried by a Literal node.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitBoolean
	LitNull
	LitUndefined
	LitBigInt
)

func (l *Literal) exprNode() {}
func (l *Literal) String() string {
	switch l.Kind {
	case LitNumber:
		return fmt.Sprintf("%v", l.Num)
	case LitString:
		return fmt.Sprintf("%q", l.Str)
	case LitBoolean:
		return fmt.Sprintf("%v", l.Bool)
	case LitNull:
		return "null"
	case LitUndefined:
		return "undefined"
	case LitBigInt:
		return l.BigIntText + "n"
	}
	return "<literal>"
}

// Variable references a bound name (spec.md §3 Expr.Variable).
type Variable struct {
	Loc
	Name string
}

func (v *Variable) exprNode()     {}
func (v *Variable) String() string { return v.Name }

// This and Super are the two receiver pseudo-expressions.
type This struct{ Loc }
type Super struct{ Loc }

func (t *This) exprNode()      {}
func (t *This) String() string { return "this" }
func (s *Super) exprNode()      {}
func (s *Super) String() string { return "super" }

// Binary is a binary operator expression (+ - * / % ** & | ^ << >> >>> < > etc).
type Binary struct {
	Loc
	Op    token.Type
	Left  Expr
	Right Expr
}

func (b *Binary) exprNode() {}
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op.String(), b.Right.String())
}

// Logical is && and ||, kept distinct from Binary because of short-circuit
// evaluation semantics.
type Logical struct {
	Loc
	Op    token.Type // AND_AND | OR_OR
	Left  Expr
	Right Expr
}

func (l *Logical) exprNode() {}
func (l *Logical) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Left.String(), l.Op.String(), l.Right.String())
}

// NullishCoalescing is the `??` operator, kept distinct from Logical because
// it tests for null/undefined rather than falsiness.
type NullishCoalescing struct {
	Loc
	Left  Expr
	Right Expr
}

func (n *NullishCoalescing) exprNode()      {}
func (n *NullishCoalescing) String() string { return fmt.Sprintf("(%s ?? %s)", n.Left.String(), n.Right.String()) }

// Ternary is `cond ? then : else`.
type Ternary struct {
	Loc
	Cond Expr
	Then Expr
	Else Expr
}

func (t *Ternary) exprNode() {}
func (t *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Cond.String(), t.Then.String(), t.Else.String())
}

// Unary is a prefix unary operator: - + ! ~ typeof void delete.
type Unary struct {
	Loc
	Op      token.Type
	Operand Expr
}

func (u *Unary) exprNode()      {}
func (u *Unary) String() string { return fmt.Sprintf("(%s%s)", u.Op.String(), u.Operand.String()) }

// PrefixIncrement and PostfixIncrement are ++/-- applied before or after the
// operand is read, kept as distinct nodes because their result value differs.
type PrefixIncrement struct {
	Loc
	Op      token.Type // PLUS_PLUS | MINUS_MINUS
	Operand Expr
}

type PostfixIncrement struct {
	Loc
	Op      token.Type
	Operand Expr
}

func (p *PrefixIncrement) exprNode()       {}
func (p *PrefixIncrement) String() string  { return p.Op.String() + p.Operand.String() }
func (p *PostfixIncrement) exprNode()      {}
func (p *PostfixIncrement) String() string { return p.Operand.String() + p.Op.String() }

// Assign is a plain `=` assignment; Target is a Variable, Get, or GetIndex.
type Assign struct {
	Loc
	Target Expr
	Value  Expr
}

func (a *Assign) exprNode()      {}
func (a *Assign) String() string { return fmt.Sprintf("(%s = %s)", a.Target.String(), a.Value.String()) }

// CompoundAssign is `+= -= *= /= %= **= &= |= ^= <<= >>= >>>=`.
type CompoundAssign struct {
	Loc
	Op     token.Type
	Target Expr
	Value  Expr
}

func (c *CompoundAssign) exprNode() {}
func (c *CompoundAssign) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Target.String(), c.Op.String(), c.Value.String())
}

// LogicalAssign is `&&= ||= ??=`, kept distinct because the right-hand side
// evaluates conditionally.
type LogicalAssign struct {
	Loc
	Op     token.Type
	Target Expr
	Value  Expr
}

func (l *LogicalAssign) exprNode() {}
func (l *LogicalAssign) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Target.String(), l.Op.String(), l.Value.String())
}

// Call invokes a callable with a list of arguments; any argument may be a
// Spread node. Optional indicates `?.(`.
type Call struct {
	Loc
	Callee   Expr
	Args     []Expr
	Optional bool
	TypeArgs []TypeExpr
}

func (c *Call) exprNode() {}
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(parts, ", "))
}

// New is a `new Ctor(args)` expression.
type New struct {
	Loc
	Callee Expr
	Args   []Expr
}

func (n *New) exprNode() {}
func (n *New) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("new %s(%s)", n.Callee.String(), strings.Join(parts, ", "))
}

// Get is property access `obj.name` (or `obj?.name` when Optional).
type Get struct {
	Loc
	Object   Expr
	Name     string
	Optional bool
}

func (g *Get) exprNode() {}
func (g *Get) String() string {
	if g.Optional {
		return fmt.Sprintf("%s?.%s", g.Object.String(), g.Name)
	}
	return fmt.Sprintf("%s.%s", g.Object.String(), g.Name)
}

// Set is a property assignment target formed as `Get(obj, name) = value`;
// the parser emits this instead of nesting Assign{Target: Get{...}} so the
// interpreter/emitter can special-case receiver-evaluated-once semantics
// (spec.md §4.5). Assign with a Get target is still accepted; Set is
// produced by compound/logical-assign desugaring paths that must not
// re-evaluate the receiver.
type Set struct {
	Loc
	Object Expr
	Name   string
	Value  Expr
}

func (s *Set) exprNode()      {}
func (s *Set) String() string { return fmt.Sprintf("%s.%s = %s", s.Object.String(), s.Name, s.Value.String()) }

// GetIndex is `obj[index]` (or `obj?.[index]`).
type GetIndex struct {
	Loc
	Object   Expr
	Index    Expr
	Optional bool
}

func (g *GetIndex) exprNode()      {}
func (g *GetIndex) String() string { return fmt.Sprintf("%s[%s]", g.Object.String(), g.Index.String()) }

// SetIndex is `obj[index] = value`.
type SetIndex struct {
	Loc
	Object Expr
	Index  Expr
	Value  Expr
}

func (s *SetIndex) exprNode() {}
func (s *SetIndex) String() string {
	return fmt.Sprintf("%s[%s] = %s", s.Object.String(), s.Index.String(), s.Value.String())
}

// CompoundSet / CompoundSetIndex / LogicalSet / LogicalSetIndex mirror
// CompoundAssign/LogicalAssign for property and index receivers, so the
// receiver is computed exactly once (spec.md §4.5).
type CompoundSet struct {
	Loc
	Op     token.Type
	Object Expr
	Name   string
	Value  Expr
}
type CompoundSetIndex struct {
	Loc
	Op     token.Type
	Object Expr
	Index  Expr
	Value  Expr
}
type LogicalSet struct {
	Loc
	Op     token.Type
	Object Expr
	Name   string
	Value  Expr
}
type LogicalSetIndex struct {
	Loc
	Op     token.Type
	Object Expr
	Index  Expr
	Value  Expr
}

func (c *CompoundSet) exprNode() {}
func (c *CompoundSet) String() string {
	return fmt.Sprintf("%s.%s %s= %s", c.Object.String(), c.Name, c.Op.String(), c.Value.String())
}
func (c *CompoundSetIndex) exprNode() {}
func (c *CompoundSetIndex) String() string {
	return fmt.Sprintf("%s[%s] %s= %s", c.Object.String(), c.Index.String(), c.Op.String(), c.Value.String())
}
func (l *LogicalSet) exprNode() {}
func (l *LogicalSet) String() string {
	return fmt.Sprintf("%s.%s %s= %s", l.Object.String(), l.Name, l.Op.String(), l.Value.String())
}
func (l *LogicalSetIndex) exprNode() {}
func (l *LogicalSetIndex) String() string {
	return fmt.Sprintf("%s[%s] %s= %s", l.Object.String(), l.Index.String(), l.Op.String(), l.Value.String())
}

// ArrayLiteral is `[a, b, ...rest]`.
type ArrayLiteral struct {
	Loc
	Elements []Expr // may contain *Spread
}

func (a *ArrayLiteral) exprNode() {}
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectProperty is one `key: value` pair of an ObjectLiteral, or a
// `...spread` entry when Spread is set.
type ObjectProperty struct {
	Key      string
	Computed Expr // non-nil for `[expr]: value`
	Value    Expr
	Spread   bool
	Shorthand bool
}

// ObjectLiteral is `{ k: v, ...rest }`.
type ObjectLiteral struct {
	Loc
	Properties []ObjectProperty
}

func (o *ObjectLiteral) exprNode() {}
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		if p.Spread {
			parts[i] = "..." + p.Value.String()
			continue
		}
		parts[i] = fmt.Sprintf("%s: %s", p.Key, p.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Spread is `...expr` used inside call arguments, array literals, and
// object literals.
type Spread struct {
	Loc
	Value Expr
}

func (s *Spread) exprNode()      {}
func (s *Spread) String() string { return "..." + s.Value.String() }

// Grouping is a parenthesized expression, kept as its own node so the
// printer can round-trip parentheses the source actually contained.
type Grouping struct {
	Loc
	Inner Expr
}

func (g *Grouping) exprNode()      {}
func (g *Grouping) String() string { return "(" + g.Inner.String() + ")" }

// ArrowFunction is `(params) => body` or `async (params) => body`.
type ArrowFunction struct {
	Loc
	TypeParams []TypeParam
	Params     []Param
	ReturnType TypeExpr
	Body       Stmt // *Block for `=> { ... }`, or a single Return-wrapping expression body
	ExprBody   Expr // non-nil when body is a bare expression, Body is nil in that case
	Async      bool
}

func (a *ArrowFunction) exprNode() {}
func (a *ArrowFunction) String() string {
	parts := make([]string, len(a.Params))
	for i, p := range a.Params {
		parts[i] = p.Name
	}
	prefix := ""
	if a.Async {
		prefix = "async "
	}
	if a.ExprBody != nil {
		return fmt.Sprintf("%s(%s) => %s", prefix, strings.Join(parts, ", "), a.ExprBody.String())
	}
	return fmt.Sprintf("%s(%s) => %s", prefix, strings.Join(parts, ", "), a.Body.String())
}

// TemplateChunk pairs a literal string chunk with the interpolated
// expression that follows it (nil for the final chunk).
type TemplateChunk struct {
	Text string
	Expr Expr // nil for the last chunk
}

// TemplateLiteral is a backtick string with zero or more `${expr}` holes.
type TemplateLiteral struct {
	Loc
	Chunks []TemplateChunk
}

func (t *TemplateLiteral) exprNode() {}
func (t *TemplateLiteral) String() string {
	var sb strings.Builder
	sb.WriteByte('`')
	for _, c := range t.Chunks {
		sb.WriteString(c.Text)
		if c.Expr != nil {
			sb.WriteString("${")
			sb.WriteString(c.Expr.String())
			sb.WriteByte('}')
		}
	}
	sb.WriteByte('`')
	return sb.String()
}

// TypeAssertion is `expr as T` (or `<T>expr`).
type TypeAssertion struct {
	Loc
	Expr Expr
	Type TypeExpr
}

func (t *TypeAssertion) exprNode()      {}
func (t *TypeAssertion) String() string { return fmt.Sprintf("(%s as %s)", t.Expr.String(), t.Type.String()) }

// Await is `await expr`; only meaningful inside an async function body.
type Await struct {
	Loc
	Value Expr
}

func (a *Await) exprNode()      {}
func (a *Await) String() string { return "await " + a.Value.String() }

// Yield is `yield expr` or `yield* expr` (Delegate).
type Yield struct {
	Loc
	Value    Expr // nil for bare `yield`
	Delegate bool
}

func (y *Yield) exprNode() {}
func (y *Yield) String() string {
	if y.Delegate {
		return "yield* " + y.Value.String()
	}
	if y.Value == nil {
		return "yield"
	}
	return "yield " + y.Value.String()
}

// DynamicImport is `import(specifier)`.
type DynamicImport struct {
	Loc
	Specifier Expr
}

func (d *DynamicImport) exprNode()      {}
func (d *DynamicImport) String() string { return fmt.Sprintf("import(%s)", d.Specifier.String()) }

// RegexLiteral is `/pattern/flags`.
type RegexLiteral struct {
	Loc
	Pattern string
	Flags   string
}

func (r *RegexLiteral) exprNode()      {}
func (r *RegexLiteral) String() string { return fmt.Sprintf("/%s/%s", r.Pattern, r.Flags) }

