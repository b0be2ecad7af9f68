package ast

import "strings"

// TypeRef is a named type reference, optionally generic: `Name<Args...>`.
// Covers primitive keyword types (number, string, boolean, any, unknown,
// never, void, null, undefined, object, symbol, bigint) as well as
// user-defined class/interface/alias/type-parameter references — the
// distinction is resolved by internal/typecheck, not by the parser.
type TypeRef struct {
	Loc
	Name     string
	TypeArgs []TypeExpr
}

func (t *TypeRef) typeExprNode() {}
func (t *TypeRef) String() string {
	if len(t.TypeArgs) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.TypeArgs))
	for i, a := range t.TypeArgs {
		parts[i] = a.String()
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

// LiteralTypeKind discriminates the literal-value type forms.
type LiteralTypeKind int

const (
	LiteralTypeString LiteralTypeKind = iota
	LiteralTypeNumber
	LiteralTypeBoolean
)

// LiteralType is a literal type such as `"a"`, `42`, or `true`.
type LiteralType struct {
	Loc
	Kind LiteralTypeKind
	Str  string
	Num  float64
	Bool bool
}

func (l *LiteralType) typeExprNode() {}
func (l *LiteralType) String() string {
	switch l.Kind {
	case LiteralTypeString:
		return "\"" + l.Str + "\""
	case LiteralTypeBoolean:
		if l.Bool {
			return "true"
		}
		return "false"
	default:
		return "<num>"
	}
}

// UnionType is `A | B | C`.
type UnionType struct {
	Loc
	Members []TypeExpr
}

func (u *UnionType) typeExprNode() {}
func (u *UnionType) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// IntersectionType is `A & B & C`.
type IntersectionType struct {
	Loc
	Members []TypeExpr
}

func (i *IntersectionType) typeExprNode() {}
func (i *IntersectionType) String() string {
	parts := make([]string, len(i.Members))
	for idx, m := range i.Members {
		parts[idx] = m.String()
	}
	return strings.Join(parts, " & ")
}

// ArrayType is `T[]`.
type ArrayType struct {
	Loc
	Elem TypeExpr
}

func (a *ArrayType) typeExprNode()      {}
func (a *ArrayType) String() string      { return a.Elem.String() + "[]" }

// TupleElement is one element of a TupleType, allowing optional and rest
// positions (e.g. `[string, number?, ...boolean[]]`).
type TupleElement struct {
	Type     TypeExpr
	Optional bool
	Rest     bool
	Label    string // "" if unlabeled
}

// TupleType is `[T, U, ...]`.
type TupleType struct {
	Loc
	Elements []TupleElement
}

func (t *TupleType) typeExprNode() {}
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Type.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectTypeMember is one property or method signature in an ObjectType
// literal (`{ a: string; b(): void }`), or an index signature when
// IsIndex is set.
type ObjectTypeMember struct {
	Name       string
	Type       TypeExpr
	Optional   bool
	Readonly   bool
	IsMethod   bool
	Params     []Param
	ReturnType TypeExpr
	IsIndex    bool     // `[key: K]: V` index signature
	IndexKey   TypeExpr // key type of an index signature
}

// ObjectType is an inline object type literal `{ ... }`.
type ObjectType struct {
	Loc
	Members []ObjectTypeMember
}

func (o *ObjectType) typeExprNode()      {}
func (o *ObjectType) String() string      { return "{ ... }" }

// FunctionType is `(params) => ReturnType`.
type FunctionType struct {
	Loc
	TypeParams []TypeParam
	Params     []Param
	ReturnType TypeExpr
}

func (f *FunctionType) typeExprNode() {}
func (f *FunctionType) String() string {
	return "(...) => " + f.ReturnType.String()
}

// KeyOfType is `keyof T`.
type KeyOfType struct {
	Loc
	Operand TypeExpr
}

func (k *KeyOfType) typeExprNode()      {}
func (k *KeyOfType) String() string      { return "keyof " + k.Operand.String() }

// TypeOfType is `typeof expr` used in type position, referencing a value's
// inferred type rather than a named type.
type TypeOfType struct {
	Loc
	Expr Expr
}

func (t *TypeOfType) typeExprNode()      {}
func (t *TypeOfType) String() string      { return "typeof " + t.Expr.String() }

// IndexedAccessType is `T[K]`.
type IndexedAccessType struct {
	Loc
	Object TypeExpr
	Index  TypeExpr
}

func (i *IndexedAccessType) typeExprNode() {}
func (i *IndexedAccessType) String() string {
	return i.Object.String() + "[" + i.Index.String() + "]"
}

// MappedType is `{ [K in Keys]?: V }`, with ReadonlyMod/OptionalMod
// encoding the `+`/`-` modifier prefixes (0 = absent, +1 = add, -1 = remove).
type MappedType struct {
	Loc
	TypeParamName string
	Constraint    TypeExpr // the `Keys` in `K in Keys`
	NameType      TypeExpr // `as` remapping clause; nil if absent
	Value         TypeExpr
	ReadonlyMod   int
	OptionalMod   int
}

func (m *MappedType) typeExprNode()      {}
func (m *MappedType) String() string      { return "{ [" + m.TypeParamName + " in ...]: ... }" }

// ConditionalType is `Check extends Extends ? True : False`.
type ConditionalType struct {
	Loc
	Check   TypeExpr
	Extends TypeExpr
	True    TypeExpr
	False   TypeExpr
}

func (c *ConditionalType) typeExprNode() {}
func (c *ConditionalType) String() string {
	return c.Check.String() + " extends " + c.Extends.String() + " ? " + c.True.String() + " : " + c.False.String()
}

// InferType is the `infer R` placeholder, legal only inside the Extends
// clause of a ConditionalType.
type InferType struct {
	Loc
	Name       string
	Constraint TypeExpr // nil if unconstrained
}

func (i *InferType) typeExprNode()      {}
func (i *InferType) String() string      { return "infer " + i.Name }

// TemplateLiteralType is a type-level template literal, e.g.
// `` `on${Capitalize<Event>}` ``; Chunks alternates literal text and
// embedded TypeExpr holes, parallel to ast.TemplateLiteral.
type TemplateLiteralTypeChunk struct {
	Text string
	Type TypeExpr // nil for a trailing/leading pure-text chunk
}

type TemplateLiteralType struct {
	Loc
	Chunks []TemplateLiteralTypeChunk
}

func (t *TemplateLiteralType) typeExprNode() {}
func (t *TemplateLiteralType) String() string {
	var sb strings.Builder
	sb.WriteString("`")
	for _, c := range t.Chunks {
		sb.WriteString(c.Text)
		if c.Type != nil {
			sb.WriteString("${" + c.Type.String() + "}")
		}
	}
	sb.WriteString("`")
	return sb.String()
}

// ParenthesizedType wraps a TypeExpr to preserve explicit grouping, e.g.
// in `(A | B)[]` where precedence would otherwise be ambiguous.
type ParenthesizedType struct {
	Loc
	Inner TypeExpr
}

func (p *ParenthesizedType) typeExprNode()      {}
func (p *ParenthesizedType) String() string      { return "(" + p.Inner.String() + ")" }
