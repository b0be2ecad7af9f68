package interpreter

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/runtime"
)

func paramBindings(params []ast.Param) []runtime.ParamBinding {
	out := make([]runtime.ParamBinding, len(params))
	for i, p := range params {
		out[i] = runtime.ParamBinding{Name: p.Name, Default: p.Default, Rest: p.Rest, Optional: p.Optional}
	}
	return out
}

// makeFunction builds an interpreted closure for a function declaration or
// function expression, capturing env as its lexical scope.
func (i *Interpreter) makeFunction(n *ast.FunctionDecl, env *runtime.Environment) *runtime.Function {
	return &runtime.Function{
		Name:      n.Name,
		Params:    paramBindings(n.Params),
		Body:      n.Body,
		Closure:   env,
		Async:     n.Async,
		Generator: n.Generator,
	}
}

// makeArrowFunction builds a Function with IsArrow set so call dispatch
// skips rebinding `this`/`arguments`; a bare-expression body is wrapped in
// a synthetic single-statement Return so callFunction's body walk is
// identical for both arrow forms.
func (i *Interpreter) makeArrowFunction(n *ast.ArrowFunction, env *runtime.Environment) (runtime.Value, error) {
	this, _ := env.Get("this")
	body := n.Body
	if body == nil {
		body = &ast.Block{Statements: []ast.Stmt{&ast.Return{Value: n.ExprBody}}}
	}
	block, ok := body.(*ast.Block)
	if !ok {
		block = &ast.Block{Statements: []ast.Stmt{body}}
	}
	return &runtime.Function{
		Params:    paramBindings(n.Params),
		Body:      block,
		Closure:   env,
		Async:     n.Async,
		IsArrow:   true,
		ThisValue: this,
	}, nil
}

// bindArgs binds args into callEnv per f.Params: defaults evaluated in
// callEnv (so a later default can reference an earlier parameter, matching
// JS parameter scoping), trailing rest parameter collects the remainder
// into an Array (spec.md §4.4 parameter binding: defaults, rest,
// spread-expansion).
func (i *Interpreter) bindArgs(f *runtime.Function, args []runtime.Value, callEnv *runtime.Environment) error {
	for idx, p := range f.Params {
		if p.Rest {
			rest := []runtime.Value{}
			if idx < len(args) {
				rest = append(rest, args[idx:]...)
			}
			callEnv.Define(p.Name, runtime.NewArray(rest...))
			return nil
		}
		var v runtime.Value
		if idx < len(args) && args[idx] != nil && args[idx].Kind() != runtime.KindUndefined {
			v = args[idx]
		} else if p.Default != nil {
			var err error
			v, err = i.eval(p.Default, callEnv)
			if err != nil {
				return err
			}
		} else {
			v = runtime.Undefined
		}
		callEnv.Define(p.Name, v)
	}
	return nil
}

// callFunction invokes f with the given receiver and already-evaluated
// args. newTarget is non-nil only for a `new` expression, letting a
// constructor body distinguish a plain call from construction if needed
// later; the interpreter itself does not yet use it beyond threading it
// through.
func (i *Interpreter) callFunction(f *runtime.Function, this runtime.Value, args []runtime.Value, newTarget *runtime.Class) (runtime.Value, error) {
	if f.Generator {
		return i.makeGeneratorObject(f, this, args), nil
	}
	if f.Async {
		return i.runAsyncFunction(f, this, args)
	}
	return i.runFunctionBody(f, this, args)
}

// runFunctionBody is the synchronous call path shared by plain functions,
// methods, and (via the Promise-wrapping in async.go) async functions.
func (i *Interpreter) runFunctionBody(f *runtime.Function, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if err := i.pushFrame(f.Name); err != nil {
		return nil, err
	}
	defer i.popFrame()

	callEnv := f.Closure.NewEnclosed()
	if !f.IsArrow {
		if this == nil {
			this = runtime.Undefined
		}
		callEnv.Define("this", this)
		callEnv.Define("arguments", runtime.NewArray(args...))
	}
	if err := i.bindArgs(f, args, callEnv); err != nil {
		return nil, err
	}
	comp, err := i.execStatements(f.Body.Statements, callEnv)
	if err != nil {
		return nil, err
	}
	if comp.Kind == Return {
		return comp.Value, nil
	}
	return runtime.Undefined, nil
}

func (i *Interpreter) evalCall(n *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	if sup, ok := n.Callee.(*ast.Super); ok {
		_ = sup
		return i.evalSuperCall(n, env)
	}
	var this runtime.Value = runtime.Undefined
	var callee runtime.Value
	var err error
	switch c := n.Callee.(type) {
	case *ast.Get:
		if _, ok := c.Object.(*ast.Super); ok {
			callee, err = i.evalSuperGet(c.Name, env)
			if err != nil {
				return nil, err
			}
			this, _ = env.Get("this")
		} else {
			this, err = i.eval(c.Object, env)
			if err != nil {
				return nil, err
			}
			if c.Optional && (this == nil || this.Kind() == runtime.KindUndefined || this.Kind() == runtime.KindNull) {
				return runtime.Undefined, nil
			}
			callee, err = i.getProperty(this, c.Name)
			if err != nil {
				return nil, err
			}
			if callee == nil || callee.Kind() == runtime.KindUndefined {
				return nil, i.throwNamed("TypeError", fmt.Sprintf("%s.%s is not a function", describeReceiver(c.Object), c.Name))
			}
		}
	case *ast.GetIndex:
		this, err = i.eval(c.Object, env)
		if err != nil {
			return nil, err
		}
		idx, err := i.eval(c.Index, env)
		if err != nil {
			return nil, err
		}
		callee, _ = runtime.GetIndex(this, idx)
	default:
		callee, err = i.eval(n.Callee, env)
		if err != nil {
			return nil, err
		}
	}
	if n.Optional && (callee == nil || callee.Kind() == runtime.KindUndefined || callee.Kind() == runtime.KindNull) {
		return runtime.Undefined, nil
	}
	args, err := i.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	return i.invoke(callee, this, args)
}

func describeReceiver(e ast.Expr) string {
	if v, ok := e.(*ast.Variable); ok {
		return v.Name
	}
	return "value"
}

// invoke dispatches a call to whatever callee resolved to: an interpreted
// Function, a native registry entry, a bound method, or a callable
// namespace object — the "__call__" convention internal/builtins uses for
// `Symbol(...)`/`BigInt(...)`/`RegExp(...)`/`Date(...)`/`assert(...)`.
func (i *Interpreter) invoke(callee runtime.Value, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if callee == nil {
		return nil, i.throwNamed("TypeError", "value is not a function")
	}
	if obj, ok := callee.(*runtime.Object); ok {
		if call, found := obj.Get("__call__"); found {
			callee = call
		}
	}
	switch fn := callee.(type) {
	case *runtime.Function:
		return i.callFunction(fn, this, args, nil)
	case *runtime.NativeFunction:
		v, err := fn.Fn(i, this, args)
		return v, i.wrapFacadeError(err)
	case *runtime.BoundMethod:
		return i.callFunction(fn.Fn, fn.Receiver, args, nil)
	default:
		return nil, i.throwNamed("TypeError", "value is not a function")
	}
}

func (i *Interpreter) evalArgs(argExprs []ast.Expr, env *runtime.Environment) ([]runtime.Value, error) {
	args := make([]runtime.Value, 0, len(argExprs))
	for _, a := range argExprs {
		if sp, ok := a.(*ast.Spread); ok {
			v, err := i.eval(sp.Value, env)
			if err != nil {
				return nil, err
			}
			spread, err := runtime.ArrayFromIterable(v)
			if err != nil {
				return nil, i.wrapFacadeError(err)
			}
			args = append(args, spread...)
			continue
		}
		v, err := i.eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}
