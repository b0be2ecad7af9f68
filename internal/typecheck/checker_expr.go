package typecheck

import (
	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/token"
	"github.com/scriptlang/tsforge/internal/types"
)

// checkExpr type-checks an expression, records its resolved type in the
// TypeMap, and returns that type so callers (checkStmt, or an enclosing
// checkExpr) can use it without a second TypeMap lookup.
func (c *Checker) checkExpr(expr ast.Expr, env *TypeEnv) types.TypeInfo {
	t := c.checkExprUncached(expr, env)
	if t == nil {
		t = types.Unknown
	}
	c.typeMap.SetExprType(expr, t)
	return t
}

func (c *Checker) checkExprUncached(expr ast.Expr, env *TypeEnv) types.TypeInfo {
	switch e := expr.(type) {
	case *ast.Literal:
		return c.checkLiteral(e)
	case *ast.Variable:
		if t, ok := env.Lookup(e.Name); ok {
			return t
		}
		c.errorAt(e, ErrUndefinedName, "undefined name %q", e.Name)
		return types.Any
	case *ast.This:
		if t, ok := env.Lookup("this"); ok {
			return t
		}
		return types.Any
	case *ast.Super:
		return types.Any
	case *ast.Binary:
		return c.checkBinary(e, env)
	case *ast.Logical:
		left := c.checkExpr(e.Left, env)
		right := c.checkExpr(e.Right, env)
		return types.UnionType{Members: []types.TypeInfo{left, right}}
	case *ast.NullishCoalescing:
		left := c.checkExpr(e.Left, env)
		right := c.checkExpr(e.Right, env)
		return types.UnionType{Members: []types.TypeInfo{stripNullish(left), right}}
	case *ast.Ternary:
		c.checkExpr(e.Cond, env)
		then := c.checkExpr(e.Then, env)
		els := c.checkExpr(e.Else, env)
		if types.Identical(then, els) {
			return then
		}
		return types.UnionType{Members: []types.TypeInfo{then, els}}
	case *ast.Unary:
		return c.checkUnary(e, env)
	case *ast.PrefixIncrement:
		return c.checkExpr(e.Operand, env)
	case *ast.PostfixIncrement:
		return c.checkExpr(e.Operand, env)
	case *ast.Assign:
		return c.checkAssign(e, env)
	case *ast.CompoundAssign, *ast.LogicalAssign:
		return c.checkCompoundLikeAssign(expr, env)
	case *ast.Call:
		return c.checkCall(e, env)
	case *ast.New:
		return c.checkNew(e, env)
	case *ast.Get:
		return c.checkGet(e, env)
	case *ast.Set:
		objType := c.checkExpr(e.Object, env)
		valType := c.checkExpr(e.Value, env)
		c.checkPropertyAssignable(e, objType, e.Name, valType)
		return valType
	case *ast.GetIndex:
		return c.checkGetIndex(e, env)
	case *ast.SetIndex:
		c.checkExpr(e.Object, env)
		c.checkExpr(e.Index, env)
		return c.checkExpr(e.Value, env)
	case *ast.CompoundSet, *ast.CompoundSetIndex, *ast.LogicalSet, *ast.LogicalSetIndex:
		return c.checkReceiverOnceAssign(expr, env)
	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(e, env)
	case *ast.ObjectLiteral:
		return c.checkObjectLiteral(e, env)
	case *ast.Spread:
		return c.checkExpr(e.Value, env)
	case *ast.Grouping:
		return c.checkExpr(e.Inner, env)
	case *ast.ArrowFunction:
		return c.checkArrowFunction(e, env)
	case *ast.TemplateLiteral:
		for _, chunk := range e.Chunks {
			if chunk.Expr != nil {
				c.checkExpr(chunk.Expr, env)
			}
		}
		return types.String
	case *ast.TypeAssertion:
		c.checkExpr(e.Expr, env)
		return c.resolveTypeExpr(e.Type)
	case *ast.Await:
		inner := c.checkExpr(e.Value, env)
		if p, ok := inner.(types.PromiseType); ok {
			return p.Elem
		}
		return inner
	case *ast.Yield:
		if e.Value != nil {
			return c.checkExpr(e.Value, env)
		}
		return types.Undefined
	case *ast.DynamicImport:
		c.checkExpr(e.Specifier, env)
		return types.PromiseType{Elem: types.Any}
	case *ast.RegexLiteral:
		return types.RegExpType{}
	default:
		return types.Unknown
	}
}

func (c *Checker) checkLiteral(l *ast.Literal) types.TypeInfo {
	switch l.Kind {
	case ast.LitNumber:
		return types.NumberLiteralType{Value: l.Num}
	case ast.LitString:
		return types.StringLiteralType{Value: l.Str}
	case ast.LitBoolean:
		return types.BooleanLiteralType{Value: l.Bool}
	case ast.LitNull:
		return types.Null
	case ast.LitUndefined:
		return types.Undefined
	case ast.LitBigInt:
		return types.BigIntT
	default:
		return types.Unknown
	}
}

func stripNullish(t types.TypeInfo) types.TypeInfo {
	u, ok := t.(types.UnionType)
	if !ok {
		if t.Kind() == types.KindNull || t.Kind() == types.KindUndefined {
			return types.Never
		}
		return t
	}
	var kept []types.TypeInfo
	for _, m := range u.Members {
		if m.Kind() != types.KindNull && m.Kind() != types.KindUndefined {
			kept = append(kept, m)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return types.UnionType{Members: kept}
}

var numericBinaryOps = map[token.Type]bool{
	token.MINUS: true, token.STAR: true, token.SLASH: true, token.PERCENT: true,
	token.STAR_STAR: true, token.AMP: true, token.PIPE: true, token.CARET: true,
	token.SHL: true, token.SHR: true, token.USHR: true,
}

var comparisonOps = map[token.Type]bool{
	token.LT: true, token.GT: true, token.LT_EQ: true, token.GT_EQ: true,
}

var equalityOps = map[token.Type]bool{
	token.EQ: true, token.NOT_EQ: true, token.STRICT_EQ: true, token.STRICT_NOT_EQ: true,
}

func (c *Checker) checkBinary(b *ast.Binary, env *TypeEnv) types.TypeInfo {
	left := c.checkExpr(b.Left, env)
	right := c.checkExpr(b.Right, env)

	switch {
	case b.Op == token.PLUS:
		if left.Kind() == types.KindString || right.Kind() == types.KindString {
			return types.String
		}
		return types.Number
	case numericBinaryOps[b.Op]:
		return types.Number
	case comparisonOps[b.Op]:
		return types.Boolean
	case equalityOps[b.Op]:
		return types.Boolean
	case b.Op == token.INSTANCEOF:
		return types.Boolean
	case b.Op == token.IN:
		return types.Boolean
	default:
		return types.Unknown
	}
}

func (c *Checker) checkUnary(u *ast.Unary, env *TypeEnv) types.TypeInfo {
	operandType := c.checkExpr(u.Operand, env)
	switch u.Op {
	case token.BANG:
		return types.Boolean
	case token.TYPEOF:
		return types.String
	case token.VOID:
		return types.Undefined
	case token.DELETE:
		return types.Boolean
	case token.MINUS, token.PLUS, token.TILDE:
		if operandType.Kind() == types.KindBigInt {
			return types.BigIntT
		}
		return types.Number
	default:
		return types.Unknown
	}
}

func (c *Checker) checkAssign(a *ast.Assign, env *TypeEnv) types.TypeInfo {
	valType := c.checkExpr(a.Value, env)
	if v, ok := a.Target.(*ast.Variable); ok {
		if env.IsReadonly(v.Name) {
			c.errorAt(a, ErrConstAssignment, "cannot assign to %q because it is a constant", v.Name)
		}
		if declared, found := env.Lookup(v.Name); found && !types.IsAssignable(valType, declared) {
			c.errorAt(a, ErrTypeMismatch, "cannot assign %s to %q of type %s", valType.String(), v.Name, declared.String())
		}
	} else {
		c.checkExpr(a.Target, env)
	}
	return valType
}

func (c *Checker) checkCompoundLikeAssign(expr ast.Expr, env *TypeEnv) types.TypeInfo {
	switch e := expr.(type) {
	case *ast.CompoundAssign:
		c.checkExpr(e.Target, env)
		return c.checkExpr(e.Value, env)
	case *ast.LogicalAssign:
		c.checkExpr(e.Target, env)
		return c.checkExpr(e.Value, env)
	default:
		return types.Unknown
	}
}

func (c *Checker) checkReceiverOnceAssign(expr ast.Expr, env *TypeEnv) types.TypeInfo {
	switch e := expr.(type) {
	case *ast.CompoundSet:
		c.checkExpr(e.Object, env)
		return c.checkExpr(e.Value, env)
	case *ast.CompoundSetIndex:
		c.checkExpr(e.Object, env)
		c.checkExpr(e.Index, env)
		return c.checkExpr(e.Value, env)
	case *ast.LogicalSet:
		c.checkExpr(e.Object, env)
		return c.checkExpr(e.Value, env)
	case *ast.LogicalSetIndex:
		c.checkExpr(e.Object, env)
		c.checkExpr(e.Index, env)
		return c.checkExpr(e.Value, env)
	default:
		return types.Unknown
	}
}

func (c *Checker) checkCall(call *ast.Call, env *TypeEnv) types.TypeInfo {
	calleeType := c.checkExpr(call.Callee, env)
	argTypes := make([]types.TypeInfo, len(call.Args))
	for i, a := range call.Args {
		argTypes[i] = c.checkExpr(a, env)
	}
	fn, ok := calleeType.(types.FunctionType)
	if !ok {
		if calleeType.Kind() == types.KindAny {
			return types.Any
		}
		c.errorAt(call, ErrInvalidOperation, "expression is not callable")
		return types.Any
	}
	required := requiredParamCountFor(fn)
	if len(argTypes) < required {
		c.errorAt(call, ErrArityMismatch, "expected at least %d argument(s), got %d", required, len(argTypes))
	}
	for i, want := range fn.Params {
		if i >= len(argTypes) {
			break
		}
		if !types.IsAssignable(argTypes[i], want.Type) {
			c.errorAt(call.Args[i], ErrTypeMismatch, "argument of type %s is not assignable to parameter of type %s", argTypes[i].String(), want.Type.String())
		}
	}
	if fn.Async {
		return types.PromiseType{Elem: fn.Return}
	}
	return fn.Return
}

func requiredParamCountFor(f types.FunctionType) int {
	n := 0
	for _, p := range f.Params {
		if p.Optional || p.Rest || p.Default {
			break
		}
		n++
	}
	return n
}

func (c *Checker) checkNew(n *ast.New, env *TypeEnv) types.TypeInfo {
	calleeType := c.checkExpr(n.Callee, env)
	for _, a := range n.Args {
		c.checkExpr(a, env)
	}
	switch ct := calleeType.(type) {
	case *types.ClassInfo:
		if ct.Abstract {
			c.errorAt(n, ErrAbstractInstantiation, "cannot create an instance of abstract class %s", ct.Name)
		}
		return types.InstanceType{Class: ct}
	case types.InstanceType:
		return ct
	default:
		return types.Any
	}
}

func (c *Checker) checkGet(g *ast.Get, env *TypeEnv) types.TypeInfo {
	objType := c.checkExpr(g.Object, env)
	t := c.resolvePropertyType(objType, g.Name)
	if t == nil {
		if objType.Kind() != types.KindAny {
			c.errorAt(g, ErrMissingProperty, "property %q does not exist on type %s", g.Name, objType.String())
		}
		return types.Any
	}
	if g.Optional {
		return types.UnionType{Members: []types.TypeInfo{t, types.Undefined}}
	}
	return t
}

func (c *Checker) resolvePropertyType(objType types.TypeInfo, name string) types.TypeInfo {
	switch ot := objType.(type) {
	case types.InstanceType:
		for cur := ot.Class; cur != nil; cur = cur.Super {
			for _, f := range cur.Fields {
				if f.Name == name {
					return f.Type
				}
			}
			for _, m := range cur.Methods {
				if m.Name == name {
					return m.Signature
				}
			}
		}
		return nil
	case *types.ClassInfo:
		for _, f := range ot.Fields {
			if f.Name == name && f.Static {
				return f.Type
			}
		}
		for _, m := range ot.Methods {
			if m.Name == name && m.Static {
				return m.Signature
			}
		}
		return nil
	case types.RecordType:
		for _, p := range ot.Properties {
			if p.Name == name {
				return p.Type
			}
		}
		if ot.Index != nil {
			return ot.Index.ValueType
		}
		return nil
	case *types.InterfaceInfo:
		for _, p := range ot.Properties {
			if p.Name == name {
				return p.Type
			}
		}
		return nil
	case *types.NamespaceType:
		return ot.Members[name]
	case types.ArrayType, types.TupleType:
		if name == "length" {
			return types.Number
		}
		return nil
	default:
		if name == "length" && objType.Kind() == types.KindString {
			return types.Number
		}
		return nil
	}
}

func (c *Checker) checkPropertyAssignable(n ast.Node, objType types.TypeInfo, name string, valType types.TypeInfo) {
	want := c.resolvePropertyType(objType, name)
	if want != nil && !types.IsAssignable(valType, want) {
		c.errorAt(n, ErrTypeMismatch, "cannot assign %s to property %q of type %s", valType.String(), name, want.String())
	}
}

func (c *Checker) checkGetIndex(g *ast.GetIndex, env *TypeEnv) types.TypeInfo {
	objType := c.checkExpr(g.Object, env)
	c.checkExpr(g.Index, env)
	switch ot := objType.(type) {
	case types.ArrayType:
		return ot.Elem
	case types.TupleType:
		return types.Unknown // precise literal-index narrowing is left to the interpreter's bounds check
	case types.MapType:
		return types.UnionType{Members: []types.TypeInfo{ot.Value, types.Undefined}}
	case types.RecordType:
		if ot.Index != nil {
			return ot.Index.ValueType
		}
	}
	return types.Any
}

func (c *Checker) checkArrayLiteral(a *ast.ArrayLiteral, env *TypeEnv) types.TypeInfo {
	var elemTypes []types.TypeInfo
	for _, el := range a.Elements {
		elemTypes = append(elemTypes, widenLiteral(c.checkExpr(el, env)))
	}
	if len(elemTypes) == 0 {
		return types.ArrayType{Elem: types.Any}
	}
	unique := dedupeTypes(elemTypes)
	if len(unique) == 1 {
		return types.ArrayType{Elem: unique[0]}
	}
	return types.ArrayType{Elem: types.UnionType{Members: unique}}
}

func dedupeTypes(ts []types.TypeInfo) []types.TypeInfo {
	var out []types.TypeInfo
	for _, t := range ts {
		dup := false
		for _, seen := range out {
			if types.Identical(seen, t) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

func (c *Checker) checkObjectLiteral(o *ast.ObjectLiteral, env *TypeEnv) types.TypeInfo {
	rec := types.RecordType{}
	for _, p := range o.Properties {
		if p.Spread {
			if spreadType, ok := c.checkExpr(p.Value, env).(types.RecordType); ok {
				rec.Properties = append(rec.Properties, spreadType.Properties...)
			}
			continue
		}
		valType := widenLiteral(c.checkExpr(p.Value, env))
		rec.Properties = append(rec.Properties, types.PropertyInfo{Name: p.Key, Type: valType})
	}
	return rec
}

func (c *Checker) checkArrowFunction(a *ast.ArrowFunction, env *TypeEnv) types.TypeInfo {
	sig := types.FunctionType{
		Params: c.resolveParams(a.Params), Return: c.resolveOptionalTypeExpr(a.ReturnType),
		Async: a.Async,
	}
	fnEnv := env.Enclosed()
	for i, p := range a.Params {
		fnEnv.Define(p.Name, sig.Params[i].Type)
	}
	prevReturn, prevAsync := c.currentFunctionReturn, c.currentFunctionAsync
	var bodyReturn types.TypeInfo
	if a.ExprBody != nil {
		bodyReturn = widenLiteral(c.checkExpr(a.ExprBody, fnEnv))
	} else {
		c.currentFunctionReturn = sig.Return
		if c.currentFunctionReturn == nil {
			c.currentFunctionReturn = types.Any
		}
		c.currentFunctionAsync = a.Async
		c.checkStmt(a.Body, fnEnv)
		bodyReturn = c.currentFunctionReturn
	}
	c.currentFunctionReturn, c.currentFunctionAsync = prevReturn, prevAsync
	if sig.Return == nil {
		sig.Return = bodyReturn
	}
	return sig
}
