package interpreter

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/token"
	"github.com/scriptlang/tsforge/internal/runtime"
)

// eval dispatches one expression, delegating every value-semantics
// operation (Add/Equals/StrictEquals/Truthy/GetProperty/...) to
// internal/runtime's RuntimeFacade so internal/bytecode's VM sees
// identical operator behavior.
func (i *Interpreter) eval(e ast.Expr, env *runtime.Environment) (runtime.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return evalLiteral(n)
	case *ast.Variable:
		v, ok := env.Get(n.Name)
		if !ok {
			return nil, i.throwNamed("ReferenceError", n.Name+" is not defined")
		}
		return v, nil
	case *ast.This:
		v, ok := env.Get("this")
		if !ok {
			return runtime.Undefined, nil
		}
		return v, nil
	case *ast.Super:
		return nil, fmt.Errorf("interpreter: bare super is only valid as a call/member receiver")
	case *ast.Binary:
		return i.evalBinary(n, env)
	case *ast.Logical:
		return i.evalLogical(n, env)
	case *ast.NullishCoalescing:
		return i.evalNullish(n, env)
	case *ast.Ternary:
		cond, err := i.eval(n.Cond, env)
		if err != nil {
			return nil, err
		}
		if runtime.Truthy(cond) {
			return i.eval(n.Then, env)
		}
		return i.eval(n.Else, env)
	case *ast.Unary:
		return i.evalUnary(n, env)
	case *ast.PrefixIncrement:
		return i.evalIncrement(n.Operand, n.Op, env, true)
	case *ast.PostfixIncrement:
		return i.evalIncrement(n.Operand, n.Op, env, false)
	case *ast.Assign:
		return i.evalAssign(n, env)
	case *ast.CompoundAssign:
		return i.evalCompoundAssign(n, env)
	case *ast.LogicalAssign:
		return i.evalLogicalAssign(n, env)
	case *ast.Call:
		return i.evalCall(n, env)
	case *ast.New:
		return i.evalNew(n, env)
	case *ast.Get:
		return i.evalGet(n, env)
	case *ast.Set:
		v, err := i.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		obj, err := i.eval(n.Object, env)
		if err != nil {
			return nil, err
		}
		if err := i.setProperty(obj, n.Name, v); err != nil {
			return nil, err
		}
		return v, nil
	case *ast.GetIndex:
		return i.evalGetIndex(n, env)
	case *ast.SetIndex:
		obj, err := i.eval(n.Object, env)
		if err != nil {
			return nil, err
		}
		idx, err := i.eval(n.Index, env)
		if err != nil {
			return nil, err
		}
		v, err := i.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		if err := runtime.SetIndex(obj, idx, v); err != nil {
			return nil, i.wrapFacadeError(err)
		}
		return v, nil
	case *ast.CompoundSet:
		return i.evalCompoundSet(n, env)
	case *ast.CompoundSetIndex:
		return i.evalCompoundSetIndex(n, env)
	case *ast.LogicalSet:
		return i.evalLogicalSet(n, env)
	case *ast.LogicalSetIndex:
		return i.evalLogicalSetIndex(n, env)
	case *ast.ArrayLiteral:
		return i.evalArrayLiteral(n, env)
	case *ast.ObjectLiteral:
		return i.evalObjectLiteral(n, env)
	case *ast.Spread:
		return i.eval(n.Value, env) // evaluated by the containing call/array/object form
	case *ast.Grouping:
		return i.eval(n.Inner, env)
	case *ast.ArrowFunction:
		return i.makeArrowFunction(n, env)
	case *ast.TemplateLiteral:
		return i.evalTemplateLiteral(n, env)
	case *ast.TypeAssertion:
		return i.eval(n.Expr, env) // erased at runtime
	case *ast.Await:
		v, err := i.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		return i.awaitValue(v)
	case *ast.Yield:
		return i.evalYield(n, env)
	case *ast.DynamicImport:
		return nil, fmt.Errorf("interpreter: dynamic import is resolved by pkg/tsforge, not the interpreter")
	case *ast.RegexLiteral:
		return i.evalRegexLiteral(n)
	default:
		return nil, fmt.Errorf("interpreter: unhandled expression %T", e)
	}
}

func evalLiteral(n *ast.Literal) (runtime.Value, error) {
	switch n.Kind {
	case ast.LitNumber:
		return runtime.Number(n.Num), nil
	case ast.LitString:
		return runtime.String(n.Str), nil
	case ast.LitBoolean:
		return runtime.BoolValue(n.Bool), nil
	case ast.LitNull:
		return runtime.Null, nil
	case ast.LitUndefined:
		return runtime.Undefined, nil
	case ast.LitBigInt:
		bi, ok := new(big.Int).SetString(n.BigIntText, 10)
		if !ok {
			return nil, fmt.Errorf("SyntaxError: invalid BigInt literal %q", n.BigIntText)
		}
		return runtime.BigInt{Int: bi}, nil
	}
	return runtime.Undefined, nil
}

func (i *Interpreter) evalBinary(n *ast.Binary, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	if n.Op == token.INSTANCEOF {
		rightClass, err := i.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		class, ok := rightClass.(*runtime.Class)
		if !ok {
			return nil, i.throwNamed("TypeError", "Right-hand side of 'instanceof' is not callable")
		}
		return runtime.BoolValue(runtime.InstanceOf(left, class)), nil
	}
	if n.Op == token.IN {
		right, err := i.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue(runtime.In(left, right)), nil
	}
	right, err := i.eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	return i.applyBinaryOp(n.Op, left, right)
}

// applyBinaryOp delegates to internal/runtime's shared BinaryOp so the
// tree walker and internal/bytecode's VM apply identical operator
// semantics; only the error-wrapping (turning a plain facade error into a
// catchable Error instance) is interpreter-specific.
func (i *Interpreter) applyBinaryOp(op token.Type, left, right runtime.Value) (runtime.Value, error) {
	v, err := runtime.BinaryOp(op, left, right)
	return v, i.wrapFacadeError(err)
}

func (i *Interpreter) evalLogical(n *ast.Logical, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	truthy := runtime.Truthy(left)
	if n.Op == token.AND_AND && !truthy {
		return left, nil
	}
	if n.Op == token.OR_OR && truthy {
		return left, nil
	}
	return i.eval(n.Right, env)
}

func (i *Interpreter) evalNullish(n *ast.NullishCoalescing, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	if left != nil && left.Kind() != runtime.KindNull && left.Kind() != runtime.KindUndefined {
		return left, nil
	}
	return i.eval(n.Right, env)
}

func (i *Interpreter) evalUnary(n *ast.Unary, env *runtime.Environment) (runtime.Value, error) {
	if n.Op == token.TYPEOF {
		if v, ok := n.Operand.(*ast.Variable); ok {
			val, found := env.Get(v.Name)
			if !found {
				return runtime.String("undefined"), nil
			}
			return runtime.String(runtime.TypeOf(val)), nil
		}
	}
	if n.Op == token.DELETE {
		return i.evalDelete(n.Operand, env)
	}
	operand, err := i.eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.MINUS:
		if bi, ok := operand.(runtime.BigInt); ok {
			return runtime.BigInt{Int: new(big.Int).Neg(bi.Int)}, nil
		}
		return runtime.Number(-runtime.ToNumber(operand)), nil
	case token.PLUS:
		return runtime.Number(runtime.ToNumber(operand)), nil
	case token.BANG:
		return runtime.BoolValue(!runtime.Truthy(operand)), nil
	case token.TILDE:
		return runtime.Number(float64(^int32(int64(runtime.ToNumber(operand))))), nil
	case token.TYPEOF:
		return runtime.String(runtime.TypeOf(operand)), nil
	case token.VOID:
		return runtime.Undefined, nil
	default:
		return nil, fmt.Errorf("interpreter: unhandled unary operator %s", n.Op)
	}
}

func (i *Interpreter) evalDelete(target ast.Expr, env *runtime.Environment) (runtime.Value, error) {
	switch t := target.(type) {
	case *ast.Get:
		obj, err := i.eval(t.Object, env)
		if err != nil {
			return nil, err
		}
		if o, ok := obj.(*runtime.Object); ok {
			o.Delete(t.Name)
		}
		return runtime.True, nil
	case *ast.GetIndex:
		obj, err := i.eval(t.Object, env)
		if err != nil {
			return nil, err
		}
		idx, err := i.eval(t.Index, env)
		if err != nil {
			return nil, err
		}
		if o, ok := obj.(*runtime.Object); ok {
			o.Delete(runtime.ToStringValue(idx))
		}
		return runtime.True, nil
	default:
		return runtime.True, nil
	}
}

func (i *Interpreter) evalIncrement(operand ast.Expr, op token.Type, env *runtime.Environment, prefix bool) (runtime.Value, error) {
	old, err := i.eval(operand, env)
	if err != nil {
		return nil, err
	}
	oldNum := runtime.ToNumber(old)
	var newNum float64
	if op == token.PLUS_PLUS {
		newNum = oldNum + 1
	} else {
		newNum = oldNum - 1
	}
	if err := i.assignTo(operand, runtime.Number(newNum), env); err != nil {
		return nil, err
	}
	if prefix {
		return runtime.Number(newNum), nil
	}
	return runtime.Number(oldNum), nil
}

// assignTo writes v to a Variable/Get/GetIndex target, used by ++/--
// where the parser hasn't already desugared the target into a Set node.
func (i *Interpreter) assignTo(target ast.Expr, v runtime.Value, env *runtime.Environment) error {
	switch t := target.(type) {
	case *ast.Variable:
		if err := env.Set(t.Name, v); err != nil {
			return i.wrapFacadeError(err)
		}
		return nil
	case *ast.Get:
		obj, err := i.eval(t.Object, env)
		if err != nil {
			return err
		}
		if err := i.setProperty(obj, t.Name, v); err != nil {
			return err
		}
		return nil
	case *ast.GetIndex:
		obj, err := i.eval(t.Object, env)
		if err != nil {
			return err
		}
		idx, err := i.eval(t.Index, env)
		if err != nil {
			return err
		}
		if err := runtime.SetIndex(obj, idx, v); err != nil {
			return i.wrapFacadeError(err)
		}
		return nil
	default:
		return fmt.Errorf("interpreter: invalid assignment target %T", target)
	}
}

func (i *Interpreter) evalAssign(n *ast.Assign, env *runtime.Environment) (runtime.Value, error) {
	v, err := i.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := i.assignTo(n.Target, v, env); err != nil {
		return nil, err
	}
	return v, nil
}

func (i *Interpreter) evalCompoundAssign(n *ast.CompoundAssign, env *runtime.Environment) (runtime.Value, error) {
	old, err := i.eval(n.Target, env)
	if err != nil {
		return nil, err
	}
	rhs, err := i.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	result, err := i.applyBinaryOp(compoundBaseOp(n.Op), old, rhs)
	if err != nil {
		return nil, err
	}
	if err := i.assignTo(n.Target, result, env); err != nil {
		return nil, err
	}
	return result, nil
}

func compoundBaseOp(op token.Type) token.Type {
	switch op {
	case token.PLUS_ASSIGN:
		return token.PLUS
	case token.MINUS_ASSIGN:
		return token.MINUS
	case token.STAR_ASSIGN:
		return token.STAR
	case token.SLASH_ASSIGN:
		return token.SLASH
	case token.PERCENT_ASSIGN:
		return token.PERCENT
	case token.STAR_STAR_ASSIGN:
		return token.STAR_STAR
	case token.AMP_ASSIGN:
		return token.AMP
	case token.PIPE_ASSIGN:
		return token.PIPE
	case token.CARET_ASSIGN:
		return token.CARET
	case token.SHL_ASSIGN:
		return token.SHL
	case token.SHR_ASSIGN:
		return token.SHR
	case token.USHR_ASSIGN:
		return token.USHR
	default:
		return token.ILLEGAL
	}
}

func (i *Interpreter) evalLogicalAssign(n *ast.LogicalAssign, env *runtime.Environment) (runtime.Value, error) {
	old, err := i.eval(n.Target, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.AND_ASSIGN:
		if !runtime.Truthy(old) {
			return old, nil
		}
	case token.OR_ASSIGN:
		if runtime.Truthy(old) {
			return old, nil
		}
	case token.QQ_ASSIGN:
		if old != nil && old.Kind() != runtime.KindNull && old.Kind() != runtime.KindUndefined {
			return old, nil
		}
	}
	v, err := i.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := i.assignTo(n.Target, v, env); err != nil {
		return nil, err
	}
	return v, nil
}

// evalGet reads a property, special-casing `super.method` so the lookup
// starts one link above the current class in the Super chain while `this`
// stays bound to the original receiver (spec.md §4.4 class wrapper scopes
// for super).
func (i *Interpreter) evalGet(n *ast.Get, env *runtime.Environment) (runtime.Value, error) {
	if _, ok := n.Object.(*ast.Super); ok {
		return i.evalSuperGet(n.Name, env)
	}
	obj, err := i.eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	if n.Optional && (obj == nil || obj.Kind() == runtime.KindUndefined || obj.Kind() == runtime.KindNull) {
		return runtime.Undefined, nil
	}
	return i.getProperty(obj, n.Name)
}

func (i *Interpreter) evalSuperGet(name string, env *runtime.Environment) (runtime.Value, error) {
	superClassV, ok := env.Get("__superclass__")
	if !ok {
		return nil, fmt.Errorf("interpreter: 'super' used outside a subclass method")
	}
	this, _ := env.Get("this")
	inst, _ := this.(*runtime.Instance)
	superClass := superClassV.(*runtime.Class)
	method, _ := superClass.LookupMethod(name)
	if method == nil {
		return runtime.Undefined, nil
	}
	return &runtime.BoundMethod{Receiver: inst, Fn: method.Fn}, nil
}

func (i *Interpreter) evalGetIndex(n *ast.GetIndex, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	if n.Optional && (obj == nil || obj.Kind() == runtime.KindUndefined || obj.Kind() == runtime.KindNull) {
		return runtime.Undefined, nil
	}
	idx, err := i.eval(n.Index, env)
	if err != nil {
		return nil, err
	}
	v, _ := runtime.GetIndex(obj, idx)
	if v == nil {
		return runtime.Undefined, nil
	}
	return v, nil
}

func (i *Interpreter) evalCompoundSet(n *ast.CompoundSet, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	old, err := i.getProperty(obj, n.Name)
	if err != nil {
		return nil, err
	}
	rhs, err := i.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	result, err := i.applyBinaryOp(compoundBaseOp(n.Op), old, rhs)
	if err != nil {
		return nil, err
	}
	if err := i.setProperty(obj, n.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (i *Interpreter) evalCompoundSetIndex(n *ast.CompoundSetIndex, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	idx, err := i.eval(n.Index, env)
	if err != nil {
		return nil, err
	}
	old, _ := runtime.GetIndex(obj, idx)
	rhs, err := i.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	result, err := i.applyBinaryOp(compoundBaseOp(n.Op), old, rhs)
	if err != nil {
		return nil, err
	}
	if err := runtime.SetIndex(obj, idx, result); err != nil {
		return nil, i.wrapFacadeError(err)
	}
	return result, nil
}

func (i *Interpreter) evalLogicalSet(n *ast.LogicalSet, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	old, err := i.getProperty(obj, n.Name)
	if err != nil {
		return nil, err
	}
	if !logicalShouldAssign(n.Op, old) {
		return old, nil
	}
	v, err := i.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := i.setProperty(obj, n.Name, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (i *Interpreter) evalLogicalSetIndex(n *ast.LogicalSetIndex, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.eval(n.Object, env)
	if err != nil {
		return nil, err
	}
	idx, err := i.eval(n.Index, env)
	if err != nil {
		return nil, err
	}
	old, _ := runtime.GetIndex(obj, idx)
	if !logicalShouldAssign(n.Op, old) {
		return old, nil
	}
	v, err := i.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if err := runtime.SetIndex(obj, idx, v); err != nil {
		return nil, i.wrapFacadeError(err)
	}
	return v, nil
}

func logicalShouldAssign(op token.Type, old runtime.Value) bool {
	switch op {
	case token.AND_ASSIGN:
		return runtime.Truthy(old)
	case token.OR_ASSIGN:
		return !runtime.Truthy(old)
	case token.QQ_ASSIGN:
		return old == nil || old.Kind() == runtime.KindNull || old.Kind() == runtime.KindUndefined
	default:
		return false
	}
}

func (i *Interpreter) evalArrayLiteral(n *ast.ArrayLiteral, env *runtime.Environment) (runtime.Value, error) {
	elems := make([]runtime.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		if sp, ok := el.(*ast.Spread); ok {
			v, err := i.eval(sp.Value, env)
			if err != nil {
				return nil, err
			}
			spread, err := runtime.ArrayFromIterable(v)
			if err != nil {
				return nil, i.wrapFacadeError(err)
			}
			elems = append(elems, spread...)
			continue
		}
		v, err := i.eval(el, env)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return runtime.NewArray(elems...), nil
}

func (i *Interpreter) evalObjectLiteral(n *ast.ObjectLiteral, env *runtime.Environment) (runtime.Value, error) {
	obj := runtime.NewObject()
	for _, p := range n.Properties {
		if p.Spread {
			v, err := i.eval(p.Value, env)
			if err != nil {
				return nil, err
			}
			if src, ok := v.(*runtime.Object); ok {
				for _, k := range src.PropertyOrder {
					val, _ := src.Get(k)
					obj.Set(k, val)
				}
			}
			continue
		}
		key := p.Key
		if p.Computed != nil {
			kv, err := i.eval(p.Computed, env)
			if err != nil {
				return nil, err
			}
			key = runtime.ToStringValue(kv)
		}
		v, err := i.eval(p.Value, env)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	return obj, nil
}

func (i *Interpreter) evalTemplateLiteral(n *ast.TemplateLiteral, env *runtime.Environment) (runtime.Value, error) {
	var sb strings.Builder
	for _, c := range n.Chunks {
		sb.WriteString(c.Text)
		if c.Expr != nil {
			v, err := i.eval(c.Expr, env)
			if err != nil {
				return nil, err
			}
			sb.WriteString(runtime.ToStringValue(v))
		}
	}
	return runtime.String(sb.String()), nil
}

func (i *Interpreter) evalRegexLiteral(n *ast.RegexLiteral) (runtime.Value, error) {
	return i.compileRegex(n.Pattern, n.Flags)
}
