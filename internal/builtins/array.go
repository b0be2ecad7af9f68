package builtins

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterArray wires the `Array` namespace's static methods. The teacher's
// RegisterArrayFunctions/RegisterCollectionFunctions cover the same ground
// (isArray-equivalent checks, Map/Filter/Reduce/ForEach/Every/Some/Find) as
// bare DWScript globals operating on its fixed/dynamic array types; here
// they live under `Array.` as statics (isArray, from, of) while the
// per-instance methods (map/filter/...) are resolved on property access by
// internal/runtime (array_methods.go, reached through GetProperty), since
// JS arrays are objects with prototype methods rather than free functions.
func RegisterArray(r *Registry) {
	r.Register("Array", "isArray", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.False, nil
		}
		_, ok := args[0].(*runtime.Array)
		return runtime.BoolValue(ok), nil
	}, "Reports whether a value is an Array")

	r.Register("Array", "of", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		arr := runtime.NewArray()
		arr.Elements = append(arr.Elements, args...)
		return arr, nil
	}, "Creates an array from its arguments")

	r.Register("Array", "from", func(ctx any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewArray(), nil
		}
		elems, err := runtime.ArrayFromIterable(args[0])
		if err != nil {
			if o, ok := args[0].(*runtime.Object); ok {
				elems, err = arrayFromArrayLike(o)
			}
			if err != nil {
				return nil, err
			}
		}
		if len(args) >= 2 {
			mapped := make([]runtime.Value, len(elems))
			for i, e := range elems {
				v, err := runtime.Call(args[1], runtime.Undefined, []runtime.Value{e, runtime.Number(i)})
				if err != nil {
					return nil, err
				}
				mapped[i] = v
			}
			elems = mapped
		}
		arr := runtime.NewArray()
		arr.Elements = elems
		return arr, nil
	}, "Creates an array from an iterable or array-like value, with an optional map function")
}

// arrayFromArrayLike reads a `{ length, 0, 1, ... }`-shaped object the way
// Array.from supports for non-iterable array-likes (e.g. `arguments`).
func arrayFromArrayLike(o *runtime.Object) ([]runtime.Value, error) {
	lengthVal, ok := o.Get("length")
	if !ok {
		return nil, fmt.Errorf("TypeError: value is not array-like")
	}
	n := int(runtime.ToNumber(lengthVal))
	out := make([]runtime.Value, n)
	for i := 0; i < n; i++ {
		v, ok := o.Get(fmt.Sprintf("%d", i))
		if !ok {
			v = runtime.Undefined
		}
		out[i] = v
	}
	return out, nil
}
