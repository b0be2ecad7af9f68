package builtins

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterObject wires the `Object` namespace's static methods
// (keys/values/entries/assign/freeze/isFrozen), the structural-shape
// counterpart to the teacher's RegisterVariantFunctions (VarType/
// VarIsNull/...) — both exist to let script code introspect a value's
// shape at runtime rather than only at compile time.
func RegisterObject(r *Registry) {
	r.Register("Object", "keys", objKeys, "Returns an array of a value's own enumerable property names")
	r.Register("Object", "values", objValues, "Returns an array of a value's own enumerable property values")
	r.Register("Object", "entries", objEntries, "Returns an array of [key, value] pairs")
	r.Register("Object", "assign", objAssign, "Copies own enumerable properties from sources into target")
	r.Register("Object", "freeze", objFreeze, "Marks an object as frozen, rejecting further property writes")
	r.Register("Object", "isFrozen", objIsFrozen, "Reports whether an object is frozen")
}

func propsOf(v runtime.Value) (*runtime.Object, bool) {
	o, ok := v.(*runtime.Object)
	return o, ok
}

func objKeys(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewArray(), nil
	}
	o, ok := propsOf(args[0])
	if !ok {
		return runtime.NewArray(), nil
	}
	arr := runtime.NewArray()
	for _, k := range o.PropertyOrder {
		arr.Elements = append(arr.Elements, runtime.String(k))
	}
	return arr, nil
}

func objValues(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewArray(), nil
	}
	o, ok := propsOf(args[0])
	if !ok {
		return runtime.NewArray(), nil
	}
	arr := runtime.NewArray()
	for _, k := range o.PropertyOrder {
		v, _ := o.Get(k)
		arr.Elements = append(arr.Elements, v)
	}
	return arr, nil
}

func objEntries(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewArray(), nil
	}
	o, ok := propsOf(args[0])
	if !ok {
		return runtime.NewArray(), nil
	}
	arr := runtime.NewArray()
	for _, k := range o.PropertyOrder {
		v, _ := o.Get(k)
		arr.Elements = append(arr.Elements, runtime.NewArray(runtime.String(k), v))
	}
	return arr, nil
}

func objAssign(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.Undefined, fmt.Errorf("TypeError: Object.assign requires a target argument")
	}
	target, ok := propsOf(args[0])
	if !ok {
		return nil, fmt.Errorf("TypeError: Object.assign target must be an object")
	}
	for _, src := range args[1:] {
		so, ok := propsOf(src)
		if !ok {
			continue
		}
		for _, k := range so.PropertyOrder {
			v, _ := so.Get(k)
			target.Set(k, v)
		}
	}
	return target, nil
}

func objFreeze(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.Undefined, nil
	}
	if o, ok := propsOf(args[0]); ok {
		o.Frozen = true
	}
	return args[0], nil
}

func objIsFrozen(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.True, nil
	}
	o, ok := propsOf(args[0])
	if !ok {
		return runtime.True, nil // primitives are always reported frozen, per spec
	}
	return runtime.BoolValue(o.Frozen), nil
}
