// Package types implements the structural type system consumed by
// internal/typecheck and shared, via TypeMap, with internal/interpreter
// and internal/bytecode for runtime representation decisions (spec.md §3
// TypeInfo, §4.3).
//
// TypeInfo is a small interface (Kind and String); every concrete kind is a
// plain type telling itself apart by its Kind tag. Unlike the DWScript type
// registries this is grounded on (internal/interp/types.TypeSystem),
// lookups here are case-sensitive and there is no single god-object:
// internal/typecheck's Checker owns class/interface/enum registries built
// during signature collection, and a TypeInfo tree is otherwise immutable
// and comparable via IsAssignable / Identical.
package types

import (
	"strconv"
	"strings"
)

// Kind tags the concrete variant of a TypeInfo.
type Kind int

const (
	KindAny Kind = iota
	KindUnknown
	KindNever
	KindVoid
	KindNull
	KindUndefined
	KindString
	KindNumber
	KindBoolean
	KindBigInt
	KindSymbol
	KindStringLiteral
	KindNumberLiteral
	KindBooleanLiteral
	KindTemplateLiteral
	KindUnion
	KindIntersection
	KindArray
	KindTuple
	KindRecord // plain object/interface-shape type: `{ a: string }`
	KindFunction
	KindInterface
	KindClass
	KindInstance // an instantiated Class (the type of `new C()`)
	KindGenericClass
	KindGenericInterface
	KindInstantiatedGeneric
	KindTypeParameter
	KindKeyOf
	KindMapped
	KindIndexedAccess
	KindConditional
	KindIntrinsicString // Uppercase<S>/Lowercase<S>/Capitalize<S>/Uncapitalize<S>
	KindEnum
	KindNamespace
	KindPromise
	KindGenerator
	KindAsyncGenerator
	KindIterator
	KindMap
	KindSet
	KindWeakMap
	KindWeakSet
	KindRegExp
	KindMutableClass // see MutableClass
)

var kindNames = map[Kind]string{
	KindAny: "any", KindUnknown: "unknown", KindNever: "never", KindVoid: "void",
	KindNull: "null", KindUndefined: "undefined", KindString: "string",
	KindNumber: "number", KindBoolean: "boolean", KindBigInt: "bigint",
	KindSymbol: "symbol", KindStringLiteral: "string-literal",
	KindNumberLiteral: "number-literal", KindBooleanLiteral: "boolean-literal",
	KindTemplateLiteral: "template-literal", KindUnion: "union",
	KindIntersection: "intersection", KindArray: "array", KindTuple: "tuple",
	KindRecord: "record", KindFunction: "function", KindInterface: "interface",
	KindClass: "class", KindInstance: "instance", KindGenericClass: "generic-class",
	KindGenericInterface: "generic-interface", KindInstantiatedGeneric: "instantiated-generic",
	KindTypeParameter: "type-parameter", KindKeyOf: "keyof", KindMapped: "mapped",
	KindIndexedAccess: "indexed-access", KindConditional: "conditional",
	KindIntrinsicString: "intrinsic-string", KindEnum: "enum", KindNamespace: "namespace",
	KindPromise: "promise", KindGenerator: "generator", KindAsyncGenerator: "async-generator",
	KindIterator: "iterator", KindMap: "map", KindSet: "set", KindWeakMap: "weakmap",
	KindWeakSet: "weakset", KindRegExp: "regexp", KindMutableClass: "mutable-class",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown-kind"
}

// TypeInfo is the interface every concrete type-system node implements.
// Consumers tell variants apart either by Kind() or with a Go type switch
// (internal/typecheck and this package use both); the interface itself
// never grows new methods.
type TypeInfo interface {
	Kind() Kind
	String() string
}

// Singleton primitive kinds. These are safe to compare by pointer identity
// since they carry no payload; Identical compares primitives by Kind(), so
// values built independently (e.g. decoded from a cache) still match.
var (
	Any       TypeInfo = primitive{KindAny}
	Unknown   TypeInfo = primitive{KindUnknown}
	Never     TypeInfo = primitive{KindNever}
	Void      TypeInfo = primitive{KindVoid}
	Null      TypeInfo = primitive{KindNull}
	Undefined TypeInfo = primitive{KindUndefined}
	String    TypeInfo = primitive{KindString}
	Number    TypeInfo = primitive{KindNumber}
	Boolean   TypeInfo = primitive{KindBoolean}
	BigIntT   TypeInfo = primitive{KindBigInt}
	SymbolT   TypeInfo = primitive{KindSymbol}
)

type primitive struct{ kind Kind }

func (p primitive) Kind() Kind      { return p.kind }
func (p primitive) String() string  { return p.kind.String() }

// StringLiteralType is the type of a specific string value, e.g. `"GET"`.
type StringLiteralType struct{ Value string }

func (s StringLiteralType) Kind() Kind     { return KindStringLiteral }
func (s StringLiteralType) String() string { return "\"" + s.Value + "\"" }

// NumberLiteralType is the type of a specific numeric value, e.g. `42`.
type NumberLiteralType struct{ Value float64 }

func (n NumberLiteralType) Kind() Kind     { return KindNumberLiteral }
func (n NumberLiteralType) String() string { return formatNumber(n.Value) }

// BooleanLiteralType is the type of `true` or `false` specifically.
type BooleanLiteralType struct{ Value bool }

func (b BooleanLiteralType) Kind() Kind     { return KindBooleanLiteral }
func (b BooleanLiteralType) String() string { return formatBool(b.Value) }

// TemplateLiteralChunk alternates literal text with an embedded type hole,
// mirroring ast.TemplateLiteralTypeChunk once type expressions are resolved.
type TemplateLiteralChunk struct {
	Text string
	Type TypeInfo // nil for a pure-text chunk
}

// TemplateLiteralTypeInfo is a resolved type-level template literal, used
// both as a type (`on${string}`) and, after string-union expansion, as a
// source for enumerating concrete StringLiteralType members.
type TemplateLiteralTypeInfo struct{ Chunks []TemplateLiteralChunk }

func (t TemplateLiteralTypeInfo) Kind() Kind { return KindTemplateLiteral }
func (t TemplateLiteralTypeInfo) String() string {
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

// UnionType is `A | B | C`; Members is kept in first-seen order.
// IsAssignable checks it member by member, while Identical compares two
// unions by their String() form, so member order matters there.
type UnionType struct{ Members []TypeInfo }

func (u UnionType) Kind() Kind { return KindUnion }
func (u UnionType) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// IntersectionType is `A & B & C`.
type IntersectionType struct{ Members []TypeInfo }

func (i IntersectionType) Kind() Kind { return KindIntersection }
func (i IntersectionType) String() string {
	parts := make([]string, len(i.Members))
	for idx, m := range i.Members {
		parts[idx] = m.String()
	}
	return strings.Join(parts, " & ")
}

// ArrayType is `T[]`.
type ArrayType struct{ Elem TypeInfo }

func (a ArrayType) Kind() Kind     { return KindArray }
func (a ArrayType) String() string { return a.Elem.String() + "[]" }

// TupleElement is one fixed, optional, or rest position in a TupleType.
type TupleElement struct {
	Type     TypeInfo
	Optional bool
	Rest     bool
	Label    string
}

// TupleType is `[T, U?, ...V[]]`.
type TupleType struct{ Elements []TupleElement }

func (t TupleType) Kind() Kind { return KindTuple }
func (t TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Type.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PropertyInfo is one member of a RecordType/InterfaceInfo/ClassInfo shape.
type PropertyInfo struct {
	Name     string
	Type     TypeInfo
	Optional bool
	Readonly bool
}

// IndexSignature is a `{ [key: K]: V }` catch-all member.
type IndexSignature struct {
	KeyType   TypeInfo // String, Number, or a union/template-literal of string literals
	ValueType TypeInfo
}

// RecordType is a structural object-shape type with no nominal identity,
// produced by object type literals and `Record<K, V>` / mapped types after
// expansion (spec.md §4.3 structural typing).
type RecordType struct {
	Properties []PropertyInfo
	Index      *IndexSignature // nil if the shape has no index signature
}

func (r RecordType) Kind() Kind { return KindRecord }
func (r RecordType) String() string {
	parts := make([]string, len(r.Properties))
	for i, p := range r.Properties {
		opt := ""
		if p.Optional {
			opt = "?"
		}
		parts[i] = p.Name + opt + ": " + p.Type.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// ParamInfo mirrors ast.Param after type resolution.
type ParamInfo struct {
	Name     string
	Type     TypeInfo
	Optional bool
	Rest     bool
	Default  bool // true if a default value expression is present
}

// FunctionType is a callable signature, including arrow/method/overload
// member shapes; TypeParams is non-empty for a generic signature that has
// not yet been instantiated.
type FunctionType struct {
	TypeParams []string
	Params     []ParamInfo
	Return     TypeInfo
	Async      bool
	Generator  bool
	ThisType   TypeInfo // nil unless an explicit `this` parameter was declared
}

func (f FunctionType) Kind() Kind { return KindFunction }
func (f FunctionType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	return "(" + strings.Join(parts, ", ") + ") => " + f.Return.String()
}

// MethodInfo is one member of InterfaceInfo/ClassInfo, reusing
// FunctionType for the signature and adding member-specific modifiers.
type MethodInfo struct {
	Name      string
	Signature FunctionType
	Static    bool
	AccessMod string // "public"|"private"|"protected"
	Abstract  bool
	IsGetter  bool
	IsSetter  bool
}

// InterfaceInfo is a nominal-by-name, structural-by-content interface
// declaration (spec.md §4.3: interfaces are erased at runtime and exist
// only in TypeInfo/TypeMap).
type InterfaceInfo struct {
	Name       string
	TypeParams []string
	Extends    []TypeInfo // resolved base interface/instantiated-generic types
	Properties []PropertyInfo
	Methods    []MethodInfo
}

func (i *InterfaceInfo) Kind() Kind     { return KindInterface }
func (i *InterfaceInfo) String() string { return i.Name }

// FieldInfo is one class field, instance or static.
type FieldInfo struct {
	Name      string
	Type      TypeInfo
	Readonly  bool
	Static    bool
	AccessMod string
	Abstract  bool
}

// ClassInfo is a nominal class type: two classes with identical member
// shapes but different declarations are NOT interchangeable (spec.md §4.3
// nominal class identity, contrasted with structural interfaces/records).
type ClassInfo struct {
	Name        string
	TypeParams  []string
	Super       *ClassInfo // nil for a root class
	Implements  []*InterfaceInfo
	Fields      []FieldInfo
	Methods     []MethodInfo
	Abstract    bool
	Constructor *FunctionType // nil if the class has no explicit constructor
}

func (c *ClassInfo) Kind() Kind     { return KindClass }
func (c *ClassInfo) String() string { return c.Name }

// IsSubclassOf reports whether c is class, or is a (possibly indirect)
// subclass of, target — used by InstanceType compatibility and `instanceof`
// narrowing.
func (c *ClassInfo) IsSubclassOf(target *ClassInfo) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == target || cur.Name == target.Name {
			return true
		}
	}
	return false
}

// InstanceType is the type of a value produced by `new C()`: distinct from
// ClassInfo itself, which denotes the constructor/static side.
type InstanceType struct{ Class *ClassInfo }

func (i InstanceType) Kind() Kind     { return KindInstance }
func (i InstanceType) String() string { return i.Class.Name }

// GenericClassType / GenericInterfaceType are the unsubstituted, type-
// parameterized forms referenced before a `<...>` instantiation is applied.
type GenericClassType struct{ Class *ClassInfo }

func (g GenericClassType) Kind() Kind     { return KindGenericClass }
func (g GenericClassType) String() string { return g.Class.Name }

type GenericInterfaceType struct{ Interface *InterfaceInfo }

func (g GenericInterfaceType) Kind() Kind     { return KindGenericInterface }
func (g GenericInterfaceType) String() string { return g.Interface.Name }

// InstantiatedGenericType is a generic class/interface with TypeArgs
// substituted for its TypeParams, built by internal/typecheck each time it
// resolves a generic reference with type arguments; no instantiation cache
// is kept (spec.md §4.3 Generics).
type InstantiatedGenericType struct {
	Generic  TypeInfo // GenericClassType or GenericInterfaceType
	TypeArgs []TypeInfo
}

func (i InstantiatedGenericType) Kind() Kind { return KindInstantiatedGeneric }
func (i InstantiatedGenericType) String() string {
	parts := make([]string, len(i.TypeArgs))
	for idx, a := range i.TypeArgs {
		parts[idx] = a.String()
	}
	return i.Generic.String() + "<" + strings.Join(parts, ", ") + ">"
}

// TypeParameterType is an unresolved reference to a generic type parameter
// within a generic declaration's own body, e.g. `T` inside `class Box<T>`.
type TypeParameterType struct {
	Name       string
	Constraint TypeInfo // nil if unconstrained
	Default    TypeInfo // nil if no default
}

func (t TypeParameterType) Kind() Kind     { return KindTypeParameter }
func (t TypeParameterType) String() string { return t.Name }

// KeyOfType is `keyof T`, kept as written; internal/typecheck does not
// expand it into a union of literal key types.
type KeyOfType struct{ Operand TypeInfo }

func (k KeyOfType) Kind() Kind     { return KindKeyOf }
func (k KeyOfType) String() string { return "keyof " + k.Operand.String() }

// MappedType is `{ [K in Keys]?: V }`, kept as written; internal/typecheck
// does not expand it into a RecordType.
type MappedType struct {
	ParamName   string
	Constraint  TypeInfo // the `Keys` operand, usually a KeyOfType or union
	NameType    TypeInfo // `as` remapping; nil if absent
	Value       TypeInfo
	ReadonlyMod int // -1 remove, 0 unchanged, +1 add
	OptionalMod int
}

func (m MappedType) Kind() Kind     { return KindMapped }
func (m MappedType) String() string { return "{ [" + m.ParamName + " in ...]: ... }" }

// IndexedAccessType is `T[K]`.
type IndexedAccessType struct {
	Object TypeInfo
	Index  TypeInfo
}

func (i IndexedAccessType) Kind() Kind { return KindIndexedAccess }
func (i IndexedAccessType) String() string {
	return i.Object.String() + "[" + i.Index.String() + "]"
}

// ConditionalType is `Check extends Extends ? True : False`, kept as
// written; internal/typecheck does not evaluate it.
type ConditionalType struct {
	Check, Extends, True, False TypeInfo
	InferNames                  []string // names bound by `infer` within Extends
}

func (c ConditionalType) Kind() Kind { return KindConditional }
func (c ConditionalType) String() string {
	return c.Check.String() + " extends " + c.Extends.String() + " ? " + c.True.String() + " : " + c.False.String()
}

// IntrinsicStringOp names one of the four built-in string-manipulation
// type operators.
type IntrinsicStringOp int

const (
	IntrinsicUppercase IntrinsicStringOp = iota
	IntrinsicLowercase
	IntrinsicCapitalize
	IntrinsicUncapitalize
)

// IntrinsicStringType is `Uppercase<S>` and friends, kept as written;
// internal/typecheck does not apply the operator to S.
type IntrinsicStringType struct {
	Op      IntrinsicStringOp
	Operand TypeInfo
}

func (i IntrinsicStringType) Kind() Kind { return KindIntrinsicString }
func (i IntrinsicStringType) String() string {
	names := [...]string{"Uppercase", "Lowercase", "Capitalize", "Uncapitalize"}
	return names[i.Op] + "<" + i.Operand.String() + ">"
}

// EnumMemberInfo is one member of an EnumType.
type EnumMemberInfo struct {
	Name        string
	StringValue string  // populated for string/heterogeneous enums
	NumValue    float64 // populated for numeric/heterogeneous enums
	IsString    bool
}

// EnumType is a numeric, string, or heterogeneous enum declaration.
type EnumType struct {
	Name    string
	Members []EnumMemberInfo
	Const   bool
}

func (e *EnumType) Kind() Kind     { return KindEnum }
func (e *EnumType) String() string { return e.Name }

// NamespaceType is the type of a `namespace N { ... }` declaration,
// exposing its exported member bindings as a flat name->TypeInfo map.
type NamespaceType struct {
	Name    string
	Members map[string]TypeInfo
}

func (n *NamespaceType) Kind() Kind     { return KindNamespace }
func (n *NamespaceType) String() string { return n.Name }

// PromiseType is `Promise<T>`.
type PromiseType struct{ Elem TypeInfo }

func (p PromiseType) Kind() Kind     { return KindPromise }
func (p PromiseType) String() string { return "Promise<" + p.Elem.String() + ">" }

// GeneratorType is `Generator<Yield, Return, Next>`.
type GeneratorType struct{ Yield, Return, Next TypeInfo }

func (g GeneratorType) Kind() Kind { return KindGenerator }
func (g GeneratorType) String() string {
	return "Generator<" + g.Yield.String() + ", " + g.Return.String() + ", " + g.Next.String() + ">"
}

// AsyncGeneratorType is `AsyncGenerator<Yield, Return, Next>`.
type AsyncGeneratorType struct{ Yield, Return, Next TypeInfo }

func (a AsyncGeneratorType) Kind() Kind { return KindAsyncGenerator }
func (a AsyncGeneratorType) String() string {
	return "AsyncGenerator<" + a.Yield.String() + ", " + a.Return.String() + ", " + a.Next.String() + ">"
}

// IteratorType is `Iterator<T>`.
type IteratorType struct{ Elem TypeInfo }

func (i IteratorType) Kind() Kind     { return KindIterator }
func (i IteratorType) String() string { return "Iterator<" + i.Elem.String() + ">" }

// MapType is `Map<K, V>`.
type MapType struct{ Key, Value TypeInfo }

func (m MapType) Kind() Kind     { return KindMap }
func (m MapType) String() string { return "Map<" + m.Key.String() + ", " + m.Value.String() + ">" }

// SetType is `Set<T>`.
type SetType struct{ Elem TypeInfo }

func (s SetType) Kind() Kind     { return KindSet }
func (s SetType) String() string { return "Set<" + s.Elem.String() + ">" }

// WeakMapType is `WeakMap<K, V>`; K is restricted to object types, enforced
// by internal/typecheck rather than encoded in the TypeInfo itself.
type WeakMapType struct{ Key, Value TypeInfo }

func (w WeakMapType) Kind() Kind { return KindWeakMap }
func (w WeakMapType) String() string {
	return "WeakMap<" + w.Key.String() + ", " + w.Value.String() + ">"
}

// WeakSetType is `WeakSet<T>`.
type WeakSetType struct{ Elem TypeInfo }

func (w WeakSetType) Kind() Kind     { return KindWeakSet }
func (w WeakSetType) String() string { return "WeakSet<" + w.Elem.String() + ">" }

// RegExpType is the type of a regular expression literal/RegExp instance.
type RegExpType struct{}

func (r RegExpType) Kind() Kind     { return KindRegExp }
func (r RegExpType) String() string { return "RegExp" }

// MutableClass wraps a ClassInfo with a Frozen flag and its own Kind.
// internal/typecheck never constructs one: its signature-collection pass
// installs a plain *ClassInfo for each class and fills in its members in
// place, and nothing sets Frozen.
type MutableClass struct {
	*ClassInfo
	Frozen bool
}

func (m *MutableClass) Kind() Kind { return KindMutableClass }

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
