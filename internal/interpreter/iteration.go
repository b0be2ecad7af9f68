package interpreter

import "github.com/scriptlang/tsforge/internal/runtime"

// iterate resolves `for...of`'s iteration source to a concrete slice of
// values. Arrays/strings/Set/Map go through the shared
// runtime.ArrayFromIterable facade; a Generator is drained by repeatedly
// calling Next until it reports done, since internal/runtime has no
// Symbol.iterator dispatch table to walk (spec.md §4.4 simplification:
// Object's property map is string-keyed only).
func (i *Interpreter) iterate(v runtime.Value) ([]runtime.Value, error) {
	if gen, ok := v.(*runtime.Generator); ok {
		return i.drainGenerator(gen)
	}
	values, err := runtime.ArrayFromIterable(v)
	if err != nil {
		return nil, i.wrapFacadeError(err)
	}
	return values, nil
}

func (i *Interpreter) drainGenerator(gen *runtime.Generator) ([]runtime.Value, error) {
	var out []runtime.Value
	for {
		result, err := gen.Next(runtime.Undefined)
		if err != nil {
			return nil, err
		}
		if result.Done {
			return out, nil
		}
		out = append(out, result.Value)
	}
}
