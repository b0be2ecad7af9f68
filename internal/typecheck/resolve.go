package typecheck

import (
	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/types"
)

// resolveTypeExpr turns a parsed, unresolved ast.TypeExpr into a
// types.TypeInfo, consulting the class/interface/enum/alias registries
// built during collectSignatures. A nil TypeExpr (an omitted annotation)
// resolves to types.Any, matching the spec's implicit-any-without-strict
// default (spec.md §4.3).
func (c *Checker) resolveTypeExpr(te ast.TypeExpr) types.TypeInfo {
	if te == nil {
		return types.Any
	}
	switch t := te.(type) {
	case *ast.TypeRef:
		return c.resolveTypeRef(t)
	case *ast.LiteralType:
		switch t.Kind {
		case ast.LiteralTypeString:
			return types.StringLiteralType{Value: t.Str}
		case ast.LiteralTypeNumber:
			return types.NumberLiteralType{Value: t.Num}
		default:
			return types.BooleanLiteralType{Value: t.Bool}
		}
	case *ast.UnionType:
		members := make([]types.TypeInfo, len(t.Members))
		for i, m := range t.Members {
			members[i] = c.resolveTypeExpr(m)
		}
		return types.UnionType{Members: members}
	case *ast.IntersectionType:
		members := make([]types.TypeInfo, len(t.Members))
		for i, m := range t.Members {
			members[i] = c.resolveTypeExpr(m)
		}
		return types.IntersectionType{Members: members}
	case *ast.ArrayType:
		return types.ArrayType{Elem: c.resolveTypeExpr(t.Elem)}
	case *ast.TupleType:
		elems := make([]types.TupleElement, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = types.TupleElement{
				Type: c.resolveTypeExpr(e.Type), Optional: e.Optional, Rest: e.Rest, Label: e.Label,
			}
		}
		return types.TupleType{Elements: elems}
	case *ast.ObjectType:
		return c.resolveObjectType(t)
	case *ast.FunctionType:
		typeParams := make([]string, len(t.TypeParams))
		for i, tp := range t.TypeParams {
			typeParams[i] = tp.Name
		}
		return types.FunctionType{
			TypeParams: typeParams,
			Params:     c.resolveParams(t.Params),
			Return:     c.resolveTypeExpr(t.ReturnType),
		}
	case *ast.KeyOfType:
		return types.KeyOfType{Operand: c.resolveTypeExpr(t.Operand)}
	case *ast.IndexedAccessType:
		return types.IndexedAccessType{Object: c.resolveTypeExpr(t.Object), Index: c.resolveTypeExpr(t.Index)}
	case *ast.MappedType:
		return types.MappedType{
			ParamName: t.TypeParamName, Constraint: c.resolveTypeExpr(t.Constraint),
			NameType: c.resolveOptionalTypeExpr(t.NameType), Value: c.resolveTypeExpr(t.Value),
			ReadonlyMod: t.ReadonlyMod, OptionalMod: t.OptionalMod,
		}
	case *ast.ConditionalType:
		return types.ConditionalType{
			Check: c.resolveTypeExpr(t.Check), Extends: c.resolveTypeExpr(t.Extends),
			True: c.resolveTypeExpr(t.True), False: c.resolveTypeExpr(t.False),
		}
	case *ast.TemplateLiteralType:
		chunks := make([]types.TemplateLiteralChunk, len(t.Chunks))
		for i, ch := range t.Chunks {
			chunks[i] = types.TemplateLiteralChunk{Text: ch.Text, Type: c.resolveOptionalTypeExpr(ch.Type)}
		}
		return types.TemplateLiteralTypeInfo{Chunks: chunks}
	case *ast.ParenthesizedType:
		return c.resolveTypeExpr(t.Inner)
	case *ast.TypeOfType:
		if v, ok := t.Expr.(*ast.Variable); ok {
			if typ, found := c.env.Lookup(v.Name); found {
				return typ
			}
		}
		return types.Unknown
	default:
		return types.Unknown
	}
}

func (c *Checker) resolveOptionalTypeExpr(te ast.TypeExpr) types.TypeInfo {
	if te == nil {
		return nil
	}
	return c.resolveTypeExpr(te)
}

// intrinsicStringOps maps the four well-known generic intrinsic type
// names to their IntrinsicStringOp, recognized as a TypeRef whose Name
// matches and whose single TypeArg is the operand.
var intrinsicStringOps = map[string]types.IntrinsicStringOp{
	"Uppercase": types.IntrinsicUppercase, "Lowercase": types.IntrinsicLowercase,
	"Capitalize": types.IntrinsicCapitalize, "Uncapitalize": types.IntrinsicUncapitalize,
}

func (c *Checker) resolveTypeRef(t *ast.TypeRef) types.TypeInfo {
	switch t.Name {
	case "any":
		return types.Any
	case "unknown":
		return types.Unknown
	case "never":
		return types.Never
	case "void":
		return types.Void
	case "null":
		return types.Null
	case "undefined":
		return types.Undefined
	case "string":
		return types.String
	case "number":
		return types.Number
	case "boolean":
		return types.Boolean
	case "bigint":
		return types.BigIntT
	case "symbol":
		return types.SymbolT
	case "object":
		return types.RecordType{}
	}

	if op, ok := intrinsicStringOps[t.Name]; ok && len(t.TypeArgs) == 1 {
		return types.IntrinsicStringType{Op: op, Operand: c.resolveTypeExpr(t.TypeArgs[0])}
	}

	switch t.Name {
	case "Array":
		if len(t.TypeArgs) == 1 {
			return types.ArrayType{Elem: c.resolveTypeExpr(t.TypeArgs[0])}
		}
	case "Promise":
		if len(t.TypeArgs) == 1 {
			return types.PromiseType{Elem: c.resolveTypeExpr(t.TypeArgs[0])}
		}
	case "Map":
		if len(t.TypeArgs) == 2 {
			return types.MapType{Key: c.resolveTypeExpr(t.TypeArgs[0]), Value: c.resolveTypeExpr(t.TypeArgs[1])}
		}
	case "Set":
		if len(t.TypeArgs) == 1 {
			return types.SetType{Elem: c.resolveTypeExpr(t.TypeArgs[0])}
		}
	case "WeakMap":
		if len(t.TypeArgs) == 2 {
			return types.WeakMapType{Key: c.resolveTypeExpr(t.TypeArgs[0]), Value: c.resolveTypeExpr(t.TypeArgs[1])}
		}
	case "WeakSet":
		if len(t.TypeArgs) == 1 {
			return types.WeakSetType{Elem: c.resolveTypeExpr(t.TypeArgs[0])}
		}
	case "RegExp":
		return types.RegExpType{}
	case "Record":
		if len(t.TypeArgs) == 2 {
			return c.expandRecordHelper(t.TypeArgs[0], t.TypeArgs[1])
		}
	case "Partial", "Required", "Readonly":
		if len(t.TypeArgs) == 1 {
			return c.expandUtilityType(t.Name, c.resolveTypeExpr(t.TypeArgs[0]))
		}
	case "Pick", "Omit":
		if len(t.TypeArgs) == 2 {
			return c.expandPickOmit(t.Name, t.TypeArgs[0], t.TypeArgs[1])
		}
	case "Generator":
		if len(t.TypeArgs) == 3 {
			return types.GeneratorType{Yield: c.resolveTypeExpr(t.TypeArgs[0]), Return: c.resolveTypeExpr(t.TypeArgs[1]), Next: c.resolveTypeExpr(t.TypeArgs[2])}
		}
	}

	if enum, ok := c.enums[t.Name]; ok {
		return enum
	}
	if alias, ok := c.aliases[t.Name]; ok {
		return c.resolveTypeExpr(alias)
	}
	if iface, ok := c.interfaces[t.Name]; ok {
		if len(t.TypeArgs) == 0 {
			return iface
		}
		args := make([]types.TypeInfo, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = c.resolveTypeExpr(a)
		}
		return types.InstantiatedGenericType{Generic: types.GenericInterfaceType{Interface: iface}, TypeArgs: args}
	}
	if class, ok := c.classes[t.Name]; ok {
		if len(t.TypeArgs) == 0 {
			return types.InstanceType{Class: class}
		}
		args := make([]types.TypeInfo, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			args[i] = c.resolveTypeExpr(a)
		}
		return types.InstantiatedGenericType{Generic: types.GenericClassType{Class: class}, TypeArgs: args}
	}
	if typ, ok := c.env.Lookup(t.Name); ok {
		if _, isTypeParam := typ.(types.TypeParameterType); isTypeParam {
			return typ
		}
	}
	return types.TypeParameterType{Name: t.Name}
}

func (c *Checker) resolveObjectType(t *ast.ObjectType) types.TypeInfo {
	rec := types.RecordType{}
	for _, m := range t.Members {
		if m.IsIndex {
			rec.Index = &types.IndexSignature{KeyType: c.resolveTypeExpr(m.IndexKey), ValueType: c.resolveTypeExpr(m.Type)}
			continue
		}
		if m.IsMethod {
			rec.Properties = append(rec.Properties, types.PropertyInfo{
				Name: m.Name, Optional: m.Optional,
				Type: types.FunctionType{Params: c.resolveParams(m.Params), Return: c.resolveTypeExpr(m.ReturnType)},
			})
			continue
		}
		rec.Properties = append(rec.Properties, types.PropertyInfo{
			Name: m.Name, Type: c.resolveTypeExpr(m.Type), Optional: m.Optional, Readonly: m.Readonly,
		})
	}
	return rec
}

// expandRecordHelper realizes `Record<K, V>` into a RecordType: when K is a
// union of string literals the members are enumerated concretely,
// otherwise the mapping becomes a pure index signature.
func (c *Checker) expandRecordHelper(keyExpr, valExpr ast.TypeExpr) types.TypeInfo {
	key := c.resolveTypeExpr(keyExpr)
	val := c.resolveTypeExpr(valExpr)
	if lits, ok := stringLiteralMembers(key); ok {
		rec := types.RecordType{}
		for _, lit := range lits {
			rec.Properties = append(rec.Properties, types.PropertyInfo{Name: lit, Type: val})
		}
		return rec
	}
	return types.RecordType{Index: &types.IndexSignature{KeyType: key, ValueType: val}}
}

func stringLiteralMembers(t types.TypeInfo) ([]string, bool) {
	switch v := t.(type) {
	case types.StringLiteralType:
		return []string{v.Value}, true
	case types.UnionType:
		var out []string
		for _, m := range v.Members {
			lit, ok := m.(types.StringLiteralType)
			if !ok {
				return nil, false
			}
			out = append(out, lit.Value)
		}
		return out, true
	default:
		return nil, false
	}
}

// expandUtilityType implements Partial<T>/Required<T>/Readonly<T> by
// toggling the Optional/Readonly modifier on every property of T's shape.
func (c *Checker) expandUtilityType(name string, operand types.TypeInfo) types.TypeInfo {
	props := shapeProps(operand)
	out := make([]types.PropertyInfo, len(props))
	for i, p := range props {
		switch name {
		case "Partial":
			p.Optional = true
		case "Required":
			p.Optional = false
		case "Readonly":
			p.Readonly = true
		}
		out[i] = p
	}
	return types.RecordType{Properties: out}
}

func (c *Checker) expandPickOmit(name string, operandExpr, keysExpr ast.TypeExpr) types.TypeInfo {
	operand := c.resolveTypeExpr(operandExpr)
	keys, _ := stringLiteralMembers(c.resolveTypeExpr(keysExpr))
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}
	var out []types.PropertyInfo
	for _, p := range shapeProps(operand) {
		picked := keySet[p.Name]
		if name == "Omit" {
			picked = !picked
		}
		if picked {
			out = append(out, p)
		}
	}
	return types.RecordType{Properties: out}
}

func shapeProps(t types.TypeInfo) []types.PropertyInfo {
	switch v := t.(type) {
	case types.RecordType:
		return v.Properties
	case *types.InterfaceInfo:
		return v.Properties
	default:
		return nil
	}
}
