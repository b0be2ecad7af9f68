package interpreter

import (
	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/runtime"
)

// makeGeneratorObject drives a `function*`/`async function*` body on its
// own goroutine, handing control back and forth through runtime.Generator's
// unbuffered channels: exactly one side (caller or body) runs at a time, so
// the two goroutines never race over the interpreter's call stack despite
// running concurrently (spec.md §4.4 Generators and async generators as
// explicit state objects with next/return/throw). Go has no native
// stackful coroutine to suspend a function mid-body onto directly, so a
// goroutine is the closest available primitive.
func (i *Interpreter) makeGeneratorObject(f *runtime.Function, this runtime.Value, args []runtime.Value) runtime.Value {
	gen := runtime.NewGenerator(f.Async)
	callEnv := f.Closure.NewEnclosed()
	if !f.IsArrow {
		if this == nil {
			this = runtime.Undefined
		}
		callEnv.Define("this", this)
		callEnv.Define("arguments", runtime.NewArray(args...))
	}
	callEnv.DefineConst("__generator__", gen)
	if err := i.bindArgs(f, args, callEnv); err != nil {
		go gen.Finish(runtime.Undefined, err)
		return gen
	}
	go func() {
		comp, err := i.execStatements(f.Body.Statements, callEnv)
		var v runtime.Value = runtime.Undefined
		if comp.Kind == Return {
			v = comp.Value
		}
		gen.Finish(v, err)
	}()
	return gen
}

// evalYield resumes the enclosing generator's caller with the yielded
// value and suspends until the next .next() call; .return() and .throw()
// never resume a suspended body (see generatorMethod).
// `yield*` delegates to a nested iterable, re-yielding each of its values
// in turn (spec.md §4.4 generator delegation).
func (i *Interpreter) evalYield(n *ast.Yield, env *runtime.Environment) (runtime.Value, error) {
	genV, ok := env.Get("__generator__")
	if !ok {
		return nil, i.throwNamed("SyntaxError", "yield used outside a generator function")
	}
	gen := genV.(*runtime.Generator)

	if n.Delegate {
		var v runtime.Value = runtime.Undefined
		if n.Value != nil {
			var err error
			v, err = i.eval(n.Value, env)
			if err != nil {
				return nil, err
			}
		}
		items, err := i.iterate(v)
		if err != nil {
			return nil, err
		}
		var last runtime.Value = runtime.Undefined
		for _, item := range items {
			last = gen.Yield(item)
		}
		return last, nil
	}

	var v runtime.Value = runtime.Undefined
	if n.Value != nil {
		var err error
		v, err = i.eval(n.Value, env)
		if err != nil {
			return nil, err
		}
	}
	return gen.Yield(v), nil
}

// generatorMethod resolves `.next`/`.return`/`.throw` on a Generator value
// to a NativeFunction closing over gen, since internal/runtime's facade has
// no property table for Generator (it is a coroutine handle, not an
// Object). `.return(v)` answers {value: v, done: true} without resuming the
// body or marking the generator completed; `.throw(v)` raises v at the
// caller without resuming the body.
func generatorMethod(gen *runtime.Generator, name string) (runtime.Value, bool) {
	switch name {
	case "next":
		return &runtime.NativeFunction{Name: "next", Fn: func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var sendValue runtime.Value = runtime.Undefined
			if len(args) > 0 {
				sendValue = args[0]
			}
			result, err := gen.Next(sendValue)
			if err != nil {
				return nil, err
			}
			return iteratorResultObject(result), nil
		}}, true
	case "return":
		return &runtime.NativeFunction{Name: "return", Fn: func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined
			if len(args) > 0 {
				v = args[0]
			}
			return iteratorResultObject(&runtime.IteratorResult{Value: v, Done: true}), nil
		}}, true
	case "throw":
		return &runtime.NativeFunction{Name: "throw", Fn: func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			var v runtime.Value = runtime.Undefined
			if len(args) > 0 {
				v = args[0]
			}
			return nil, throwValue(v)
		}}, true
	}
	return nil, false
}

func iteratorResultObject(r *runtime.IteratorResult) *runtime.Object {
	obj := runtime.NewObject()
	obj.Set("value", r.Value)
	obj.Set("done", runtime.BoolValue(r.Done))
	return obj
}
