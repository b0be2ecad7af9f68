package runtime

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/scriptlang/tsforge/internal/token"
)

// This file is the RuntimeFacade (spec.md §4): free functions shared
// verbatim between internal/interpreter's tree-walking evaluator and
// internal/bytecode's VM, grounded on the teacher's adapter_*.go split
// (internal/interp/adapter_operators.go, adapter_values.go) that isolates
// value-semantics helpers from the two execution engines that call them.
// Keeping these here, rather than duplicating logic in each engine, is
// what lets the bytecode VM and the tree walker agree on every edge case
// (NaN handling, string-to-number coercion, array/object equality) without
// the two drifting apart as either one is modified.

// Truthy implements JS truthiness: false only for false, 0, -0, NaN, "",
// null, and undefined.
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case undefinedValue, nullValue:
		return false
	case Boolean:
		return bool(vv)
	case Number:
		f := float64(vv)
		return f != 0 && f == f // false for 0, -0, and NaN
	case String:
		return len(vv) > 0
	case BigInt:
		return vv.Sign() != 0
	default:
		return true
	}
}

// TypeOf implements the `typeof` operator.
func TypeOf(v Value) string {
	switch v.(type) {
	case undefinedValue:
		return "undefined"
	case nullValue:
		return "object" // JS's famous typeof null === "object" quirk, preserved intentionally
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case BigInt:
		return "bigint"
	case Symbol:
		return "symbol"
	case *Function, *NativeFunction:
		return "function"
	default:
		return "object"
	}
}

// ToNumber coerces v following JS's ToNumber abstract operation.
func ToNumber(v Value) float64 {
	switch vv := v.(type) {
	case Number:
		return float64(vv)
	case Boolean:
		if vv {
			return 1
		}
		return 0
	case undefinedValue:
		return math.NaN()
	case nullValue:
		return 0
	case String:
		s := strings.TrimSpace(string(vv))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case *Array:
		if len(vv.Elements) == 0 {
			return 0
		}
		if len(vv.Elements) == 1 {
			return ToNumber(vv.Elements[0])
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

// ToStringValue coerces v following JS's ToString abstract operation.
func ToStringValue(v Value) string {
	if v == nil {
		return "undefined"
	}
	switch vv := v.(type) {
	case *Array:
		parts := make([]string, len(vv.Elements))
		for i, e := range vv.Elements {
			if e == nil || e.Kind() == KindUndefined || e.Kind() == KindNull {
				parts[i] = ""
			} else {
				parts[i] = ToStringValue(e)
			}
		}
		return strings.Join(parts, ",")
	default:
		return v.String()
	}
}

// Add implements the `+` operator's dual string-concat/numeric-add
// dispatch (spec.md §4.5): string wins if either operand is a string
// after primitive coercion.
func Add(left, right Value) (Value, error) {
	if left.Kind() == KindBigInt || right.Kind() == KindBigInt {
		lb, rb, err := toBigIntPair(left, right)
		if err != nil {
			return nil, err
		}
		return BigInt{new(big.Int).Add(lb.Int, rb.Int)}, nil
	}
	if left.Kind() == KindString || right.Kind() == KindString {
		return String(ToStringValue(left) + ToStringValue(right)), nil
	}
	return Number(ToNumber(left) + ToNumber(right)), nil
}

func toBigIntPair(left, right Value) (BigInt, BigInt, error) {
	lb, lok := left.(BigInt)
	rb, rok := right.(BigInt)
	if !lok || !rok {
		return BigInt{}, BigInt{}, fmt.Errorf("TypeError: Cannot mix BigInt and other types, use explicit conversions")
	}
	return lb, rb, nil
}

// Equals implements `==` with JS's abstract equality coercion rules,
// restricted to the coercions spec.md actually exercises: null/undefined
// are mutually equal and equal to nothing else; same-type comparisons
// defer to StrictEquals; cross number/string/boolean comparisons coerce to
// number.
func Equals(left, right Value) bool {
	if isNullish(left) && isNullish(right) {
		return true
	}
	if isNullish(left) || isNullish(right) {
		return false
	}
	if left.Kind() == right.Kind() {
		return StrictEquals(left, right)
	}
	return ToNumber(left) == ToNumber(right)
}

func isNullish(v Value) bool {
	return v.Kind() == KindNull || v.Kind() == KindUndefined
}

// StrictEquals implements `===`: same type and same value, with reference
// identity for arrays/objects/instances/functions.
func StrictEquals(left, right Value) bool {
	if left.Kind() != right.Kind() {
		return false
	}
	switch l := left.(type) {
	case undefinedValue, nullValue:
		return true
	case Boolean:
		return l == right.(Boolean)
	case Number:
		r := right.(Number)
		return float64(l) == float64(r)
	case String:
		return l == right.(String)
	case BigInt:
		return l.Cmp(right.(BigInt).Int) == 0
	case Symbol:
		return l.data == right.(Symbol).data
	default:
		return left == right // reference identity for arrays/objects/instances/functions
	}
}

// BinaryOp applies a binary operator token to two already-evaluated
// operands, covering every JS binary operator except logical &&/||/?? and
// assignment forms (those short-circuit or need an lvalue, so they stay in
// the caller). Both internal/interpreter and internal/bytecode call this
// single implementation so the tree walker and the VM can never disagree
// on an edge case.
func BinaryOp(op token.Type, left, right Value) (Value, error) {
	switch op {
	case token.PLUS:
		return Add(left, right)
	case token.MINUS:
		if lb, ok := left.(BigInt); ok {
			if rb, ok := right.(BigInt); ok {
				return BigInt{new(big.Int).Sub(lb.Int, rb.Int)}, nil
			}
		}
		return numericOp(left, right, func(a, b float64) float64 { return a - b })
	case token.STAR:
		return numericOp(left, right, func(a, b float64) float64 { return a * b })
	case token.SLASH:
		return numericOp(left, right, func(a, b float64) float64 { return a / b })
	case token.PERCENT:
		return numericOp(left, right, math.Mod)
	case token.STAR_STAR:
		return numericOp(left, right, math.Pow)
	case token.AMP:
		return intOp(left, right, func(a, b int32) int32 { return a & b })
	case token.PIPE:
		return intOp(left, right, func(a, b int32) int32 { return a | b })
	case token.CARET:
		return intOp(left, right, func(a, b int32) int32 { return a ^ b })
	case token.SHL:
		return intOp(left, right, func(a, b int32) int32 { return a << (uint32(b) & 31) })
	case token.SHR:
		return intOp(left, right, func(a, b int32) int32 { return a >> (uint32(b) & 31) })
	case token.USHR:
		return Number(float64(uint32(int32(ToNumber(left))) >> (uint32(int32(ToNumber(right))) & 31))), nil
	case token.EQ:
		return BoolValue(Equals(left, right)), nil
	case token.NOT_EQ:
		return BoolValue(!Equals(left, right)), nil
	case token.STRICT_EQ:
		return BoolValue(StrictEquals(left, right)), nil
	case token.STRICT_NOT_EQ:
		return BoolValue(!StrictEquals(left, right)), nil
	case token.LT, token.GT, token.LT_EQ, token.GT_EQ:
		return compareOp(op, left, right)
	default:
		return nil, fmt.Errorf("TypeError: unsupported binary operator %s", op)
	}
}

func numericOp(left, right Value, f func(a, b float64) float64) (Value, error) {
	if left.Kind() == KindBigInt && right.Kind() == KindBigInt {
		return nil, fmt.Errorf("TypeError: BigInt arithmetic beyond +/- is not yet supported")
	}
	return Number(f(ToNumber(left), ToNumber(right))), nil
}

func intOp(left, right Value, f func(a, b int32) int32) (Value, error) {
	a := int32(int64(ToNumber(left)))
	b := int32(int64(ToNumber(right)))
	return Number(float64(f(a, b))), nil
}

func compareOp(op token.Type, left, right Value) (Value, error) {
	if left.Kind() == KindString && right.Kind() == KindString {
		ls, rs := string(left.(String)), string(right.(String))
		switch op {
		case token.LT:
			return BoolValue(ls < rs), nil
		case token.GT:
			return BoolValue(ls > rs), nil
		case token.LT_EQ:
			return BoolValue(ls <= rs), nil
		default:
			return BoolValue(ls >= rs), nil
		}
	}
	ln, rn := ToNumber(left), ToNumber(right)
	switch op {
	case token.LT:
		return BoolValue(ln < rn), nil
	case token.GT:
		return BoolValue(ln > rn), nil
	case token.LT_EQ:
		return BoolValue(ln <= rn), nil
	default:
		return BoolValue(ln >= rn), nil
	}
}

// GetProperty resolves `obj.name` / `obj[name]` across every object-like
// Value kind, used by both the interpreter's Get/GetIndex evaluation and
// the bytecode VM's OpGetProp/OpGetIndex handlers.
func GetProperty(obj Value, name string) (Value, bool) {
	switch o := obj.(type) {
	case *Object:
		return o.Get(name)
	case *Instance:
		if v, ok := o.Get(name); ok {
			return v, true
		}
		if m, _ := o.Class.LookupMethod(name); m != nil {
			return &BoundMethod{Receiver: o, Fn: m.Fn}, true
		}
		return nil, false
	case *Class:
		if v, ok := o.StaticFields[name]; ok {
			return v, true
		}
		if m, owner := o.LookupMethod(name); m != nil && m.Static {
			_ = owner
			return m.Fn, true
		}
		return nil, false
	case *Array:
		if name == "length" {
			return Number(len(o.Elements)), true
		}
		if idx, err := strconv.Atoi(name); err == nil && idx >= 0 && idx < len(o.Elements) {
			return o.Elements[idx], true
		}
		return arrayMethod(o, name)
	case String:
		if name == "length" {
			return Number(len([]rune(string(o)))), true
		}
		if idx, err := strconv.Atoi(name); err == nil {
			runes := []rune(string(o))
			if idx >= 0 && idx < len(runes) {
				return String(string(runes[idx])), true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// SetProperty assigns `obj.name = value` across every object-like Value
// kind that supports it; arrays/instances/objects are mutated in place.
func SetProperty(obj Value, name string, value Value) error {
	switch o := obj.(type) {
	case *Object:
		o.Set(name, value)
		return nil
	case *Instance:
		o.Set(name, value)
		return nil
	case *Class:
		o.StaticFields[name] = value
		return nil
	case *Array:
		if name == "length" {
			n := int(ToNumber(value))
			o.Elements = resizeArray(o.Elements, n)
			return nil
		}
		if idx, err := strconv.Atoi(name); err == nil && idx >= 0 {
			o.Elements = growArrayTo(o.Elements, idx)
			o.Elements[idx] = value
			return nil
		}
		return fmt.Errorf("TypeError: invalid array property %q", name)
	default:
		return fmt.Errorf("TypeError: cannot set property %q on a primitive value", name)
	}
}

func resizeArray(elems []Value, n int) []Value {
	if n <= len(elems) {
		return elems[:n]
	}
	return growArrayTo(elems, n-1)[:n]
}

func growArrayTo(elems []Value, idx int) []Value {
	for len(elems) <= idx {
		elems = append(elems, Undefined)
	}
	return elems
}

// GetIndex resolves `obj[index]` where index has already been evaluated,
// dispatching through GetProperty via string conversion for objects/
// instances, and through numeric fast paths for arrays/Maps.
func GetIndex(obj, index Value) (Value, bool) {
	if arr, ok := obj.(*Array); ok {
		if n, isNum := index.(Number); isNum {
			i := int(n)
			if i >= 0 && i < len(arr.Elements) {
				return arr.Elements[i], true
			}
			return Undefined, true
		}
	}
	if m, ok := obj.(*MapValue); ok {
		return m.Get(index)
	}
	return GetProperty(obj, ToStringValue(index))
}

// SetIndex resolves `obj[index] = value`.
func SetIndex(obj, index, value Value) error {
	if m, ok := obj.(*MapValue); ok {
		m.Set(index, value)
		return nil
	}
	return SetProperty(obj, ToStringValue(index), value)
}

// InstanceOf implements `instanceof`, walking the Super chain.
func InstanceOf(v Value, class *Class) bool {
	inst, ok := v.(*Instance)
	if !ok {
		return false
	}
	for cur := inst.Class; cur != nil; cur = cur.Super {
		if cur == class {
			return true
		}
	}
	return false
}

// In implements the `in` operator: property/index presence, not value
// truthiness.
func In(key Value, obj Value) bool {
	name := ToStringValue(key)
	switch o := obj.(type) {
	case *Array:
		if name == "length" {
			return true
		}
		if idx, err := strconv.Atoi(name); err == nil {
			return idx >= 0 && idx < len(o.Elements)
		}
		return false
	case *Object:
		_, ok := o.Get(name)
		return ok
	case *Instance:
		if _, ok := o.Get(name); ok {
			return true
		}
		m, _ := o.Class.LookupMethod(name)
		return m != nil
	default:
		return false
	}
}

// Call invokes a callable Value. Interpreted Functions and Generators are
// dispatched back through callInterpreted, supplied by
// internal/interpreter at startup (see SetInterpretedCaller), since
// internal/runtime cannot import internal/interpreter without a cycle.
var callInterpreted func(fn Value, this Value, args []Value) (Value, error)

// SetInterpretedCaller wires internal/interpreter's function-call
// evaluator into the facade so builtins (e.g. Array.prototype.map's
// callback invocation) can call back into user script code without
// internal/runtime depending on internal/interpreter.
func SetInterpretedCaller(f func(fn Value, this Value, args []Value) (Value, error)) {
	callInterpreted = f
}

// Call dispatches to a NativeFunction directly, or back into the
// interpreter/bytecode engine's call machinery for everything else.
func Call(fn Value, this Value, args []Value) (Value, error) {
	switch f := fn.(type) {
	case *NativeFunction:
		return f.Fn(nil, this, args)
	case *BoundMethod:
		if callInterpreted == nil {
			return nil, fmt.Errorf("internal error: no interpreted caller registered")
		}
		return callInterpreted(f.Fn, f.Receiver, args)
	default:
		if callInterpreted == nil {
			return nil, fmt.Errorf("internal error: no interpreted caller registered")
		}
		return callInterpreted(fn, this, args)
	}
}

// ArrayFromIterable materializes any iterable Value kind into a plain Go
// slice, used by spread (`[...x]`), for-of, Array.from, and
// Promise.all/race.
func ArrayFromIterable(v Value) ([]Value, error) {
	switch vv := v.(type) {
	case *Array:
		out := make([]Value, len(vv.Elements))
		copy(out, vv.Elements)
		return out, nil
	case String:
		runes := []rune(string(vv))
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = String(string(r))
		}
		return out, nil
	case *SetValueCollection:
		return vv.Values(), nil
	case *MapValue:
		entries := vv.Entries()
		out := make([]Value, len(entries))
		for i, e := range entries {
			out[i] = NewArray(e[0], e[1])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("TypeError: value is not iterable")
	}
}

// SortArrayStrings sorts elems in place using JS's default Array.sort
// comparator (lexicographic on the string conversion of each element),
// used when no comparator function is supplied.
func SortArrayStrings(elems []Value) {
	sort.SliceStable(elems, func(i, j int) bool {
		return ToStringValue(elems[i]) < ToStringValue(elems[j])
	})
}
