package runtime

import (
	"sort"
	"strings"
)

// arrayMethod resolves name to a bound Array.prototype-style method,
// grounded on the teacher's RegisterArrayFunctions/RegisterCollectionFunctions
// namespace (internal/builtins ledger entry: "the counterpart to the
// teacher's ... Length/Map/Filter/Reduce/..."), mirrored here as
// per-instance methods since that is how JS scripts actually call them
// (`arr.map(fn)`, not a bare `Map(arr, fn)` global). Returned as a
// NativeFunction closing over arr so GetProperty can hand it straight back
// to whichever engine (interpreter or bytecode VM) is evaluating the call,
// through the same runtime.Call dispatch every other callable value uses.
func arrayMethod(arr *Array, name string) (Value, bool) {
	wrap := func(fn NativeFn) (Value, bool) {
		return &NativeFunction{Name: "Array.prototype." + name, Fn: fn}, true
	}
	switch name {
	case "push":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			arr.Elements = append(arr.Elements, args...)
			return Number(len(arr.Elements)), nil
		})
	case "pop":
		return wrap(func(_ any, _ Value, _ []Value) (Value, error) {
			if len(arr.Elements) == 0 {
				return Undefined, nil
			}
			last := arr.Elements[len(arr.Elements)-1]
			arr.Elements = arr.Elements[:len(arr.Elements)-1]
			return last, nil
		})
	case "shift":
		return wrap(func(_ any, _ Value, _ []Value) (Value, error) {
			if len(arr.Elements) == 0 {
				return Undefined, nil
			}
			first := arr.Elements[0]
			arr.Elements = arr.Elements[1:]
			return first, nil
		})
	case "unshift":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			arr.Elements = append(append([]Value{}, args...), arr.Elements...)
			return Number(len(arr.Elements)), nil
		})
	case "slice":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			start, end := sliceBounds(len(arr.Elements), args)
			out := make([]Value, end-start)
			copy(out, arr.Elements[start:end])
			return &Array{Elements: out}, nil
		})
	case "splice":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			n := len(arr.Elements)
			start := clampIndex(n, 0, args)
			deleteCount := n - start
			if len(args) > 1 {
				deleteCount = int(ToNumber(args[1]))
				if deleteCount < 0 {
					deleteCount = 0
				}
				if start+deleteCount > n {
					deleteCount = n - start
				}
			}
			removed := append([]Value{}, arr.Elements[start:start+deleteCount]...)
			var inserted []Value
			if len(args) > 2 {
				inserted = args[2:]
			}
			tail := append([]Value{}, arr.Elements[start+deleteCount:]...)
			arr.Elements = append(append(arr.Elements[:start:start], inserted...), tail...)
			return &Array{Elements: removed}, nil
		})
	case "concat":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			out := append([]Value{}, arr.Elements...)
			for _, a := range args {
				if other, ok := a.(*Array); ok {
					out = append(out, other.Elements...)
				} else {
					out = append(out, a)
				}
			}
			return &Array{Elements: out}, nil
		})
	case "join":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			sep := ","
			if len(args) > 0 && args[0].Kind() != KindUndefined {
				sep = ToStringValue(args[0])
			}
			parts := make([]string, len(arr.Elements))
			for i, e := range arr.Elements {
				if e == nil || e.Kind() == KindUndefined || e.Kind() == KindNull {
					parts[i] = ""
				} else {
					parts[i] = ToStringValue(e)
				}
			}
			return String(strings.Join(parts, sep)), nil
		})
	case "reverse":
		return wrap(func(_ any, _ Value, _ []Value) (Value, error) {
			for i, j := 0, len(arr.Elements)-1; i < j; i, j = i+1, j-1 {
				arr.Elements[i], arr.Elements[j] = arr.Elements[j], arr.Elements[i]
			}
			return arr, nil
		})
	case "fill":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return arr, nil
			}
			start, end := sliceBounds(len(arr.Elements), args[1:])
			for i := start; i < end; i++ {
				arr.Elements[i] = args[0]
			}
			return arr, nil
		})
	case "indexOf":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return Number(-1), nil
			}
			for i, e := range arr.Elements {
				if StrictEquals(e, args[0]) {
					return Number(i), nil
				}
			}
			return Number(-1), nil
		})
	case "lastIndexOf":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return Number(-1), nil
			}
			for i := len(arr.Elements) - 1; i >= 0; i-- {
				if StrictEquals(arr.Elements[i], args[0]) {
					return Number(i), nil
				}
			}
			return Number(-1), nil
		})
	case "includes":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			if len(args) == 0 {
				return Boolean(false), nil
			}
			for _, e := range arr.Elements {
				if StrictEquals(e, args[0]) {
					return Boolean(true), nil
				}
			}
			return Boolean(false), nil
		})
	case "flat":
		return wrap(func(_ any, _ Value, _ []Value) (Value, error) {
			var out []Value
			for _, e := range arr.Elements {
				if inner, ok := e.(*Array); ok {
					out = append(out, inner.Elements...)
				} else {
					out = append(out, e)
				}
			}
			return &Array{Elements: out}, nil
		})
	case "map":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			fn, err := requireCallback(args, "map")
			if err != nil {
				return nil, err
			}
			out := make([]Value, len(arr.Elements))
			for i, e := range arr.Elements {
				v, err := Call(fn, Undefined, []Value{e, Number(i), arr})
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return &Array{Elements: out}, nil
		})
	case "filter":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			fn, err := requireCallback(args, "filter")
			if err != nil {
				return nil, err
			}
			var out []Value
			for i, e := range arr.Elements {
				v, err := Call(fn, Undefined, []Value{e, Number(i), arr})
				if err != nil {
					return nil, err
				}
				if Truthy(v) {
					out = append(out, e)
				}
			}
			return &Array{Elements: out}, nil
		})
	case "forEach":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			fn, err := requireCallback(args, "forEach")
			if err != nil {
				return nil, err
			}
			for i, e := range arr.Elements {
				if _, err := Call(fn, Undefined, []Value{e, Number(i), arr}); err != nil {
					return nil, err
				}
			}
			return Undefined, nil
		})
	case "find":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			fn, err := requireCallback(args, "find")
			if err != nil {
				return nil, err
			}
			for i, e := range arr.Elements {
				v, err := Call(fn, Undefined, []Value{e, Number(i), arr})
				if err != nil {
					return nil, err
				}
				if Truthy(v) {
					return e, nil
				}
			}
			return Undefined, nil
		})
	case "findIndex":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			fn, err := requireCallback(args, "findIndex")
			if err != nil {
				return nil, err
			}
			for i, e := range arr.Elements {
				v, err := Call(fn, Undefined, []Value{e, Number(i), arr})
				if err != nil {
					return nil, err
				}
				if Truthy(v) {
					return Number(i), nil
				}
			}
			return Number(-1), nil
		})
	case "some":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			fn, err := requireCallback(args, "some")
			if err != nil {
				return nil, err
			}
			for i, e := range arr.Elements {
				v, err := Call(fn, Undefined, []Value{e, Number(i), arr})
				if err != nil {
					return nil, err
				}
				if Truthy(v) {
					return Boolean(true), nil
				}
			}
			return Boolean(false), nil
		})
	case "every":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			fn, err := requireCallback(args, "every")
			if err != nil {
				return nil, err
			}
			for i, e := range arr.Elements {
				v, err := Call(fn, Undefined, []Value{e, Number(i), arr})
				if err != nil {
					return nil, err
				}
				if !Truthy(v) {
					return Boolean(false), nil
				}
			}
			return Boolean(true), nil
		})
	case "reduce":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			fn, err := requireCallback(args, "reduce")
			if err != nil {
				return nil, err
			}
			start := 0
			var acc Value
			if len(args) > 1 {
				acc = args[1]
			} else {
				if len(arr.Elements) == 0 {
					return nil, typeError("Reduce of empty array with no initial value")
				}
				acc = arr.Elements[0]
				start = 1
			}
			for i := start; i < len(arr.Elements); i++ {
				v, err := Call(fn, Undefined, []Value{acc, arr.Elements[i], Number(i), arr})
				if err != nil {
					return nil, err
				}
				acc = v
			}
			return acc, nil
		})
	case "sort":
		return wrap(func(_ any, _ Value, args []Value) (Value, error) {
			var cmpErr error
			less := func(i, j int) bool {
				if cmpErr != nil {
					return false
				}
				if len(args) > 0 && args[0] != nil && args[0].Kind() != KindUndefined {
					v, err := Call(args[0], Undefined, []Value{arr.Elements[i], arr.Elements[j]})
					if err != nil {
						cmpErr = err
						return false
					}
					return ToNumber(v) < 0
				}
				return ToStringValue(arr.Elements[i]) < ToStringValue(arr.Elements[j])
			}
			sort.SliceStable(arr.Elements, less)
			if cmpErr != nil {
				return nil, cmpErr
			}
			return arr, nil
		})
	default:
		return nil, false
	}
}

func requireCallback(args []Value, method string) (Value, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, typeError(method + " callback is not a function")
	}
	return args[0], nil
}

func typeError(msg string) error {
	return &facadeError{kind: "TypeError", message: msg}
}

type facadeError struct {
	kind    string
	message string
}

func (e *facadeError) Error() string { return e.kind + ": " + e.message }

func clampIndex(n, def int, args []Value) int {
	if len(args) == 0 {
		return def
	}
	i := int(ToNumber(args[0]))
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

func sliceBounds(n int, args []Value) (int, int) {
	start := 0
	end := n
	if len(args) > 0 {
		start = clampIndex(n, 0, args[:1])
	}
	if len(args) > 1 && args[1].Kind() != KindUndefined {
		end = clampIndex(n, n, args[1:2])
	}
	if end < start {
		end = start
	}
	return start, end
}
