package interpreter

import "github.com/scriptlang/tsforge/internal/runtime"

// runAsyncFunction runs f synchronously to completion (internal/runtime's
// Promise model settles eagerly, with no real event loop or scheduler
// behind it — spec.md §5 treats script execution as single-threaded) and
// wraps its outcome in a Promise: a normal return fulfills it, a thrown
// value rejects it with that value, and any other error rejects it with
// the error's message as a plain string reason.
func (i *Interpreter) runAsyncFunction(f *runtime.Function, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	p := runtime.NewPendingPromise()
	v, err := i.runFunctionBody(f, this, args)
	if err != nil {
		if ts, ok := err.(*ThrowSignal); ok {
			p.State = runtime.PromiseRejected
			p.Value = ts.Value
			return p, nil
		}
		p.State = runtime.PromiseRejected
		p.Value = runtime.String(err.Error())
		return p, nil
	}
	p.State = runtime.PromiseFulfilled
	p.Value = v
	return p, nil
}

// awaitValue unwraps an already-settled Promise, surfacing a rejection as
// a thrown value; a non-Promise operand passes through unchanged, matching
// `await` on a non-thenable value (spec.md §9's resolved Open Question:
// for-await-of only awaits promise-like elements, everything else passes
// through as-is).
func (i *Interpreter) awaitValue(v runtime.Value) (runtime.Value, error) {
	p, ok := v.(*runtime.Promise)
	if !ok {
		return v, nil
	}
	switch p.State {
	case runtime.PromiseRejected:
		return nil, throwValue(p.Value)
	case runtime.PromiseFulfilled:
		return p.Value, nil
	default:
		return nil, i.throwNamed("TypeError", "cannot await a pending Promise: no event loop is scheduled")
	}
}

// newPromiseFromExecutor backs `new Promise((resolve, reject) => {...})`.
// internal/builtins' Promise namespace only exposes the static
// resolve/reject/all/race helpers (spec.md §4.4 Promise is modeled as an
// eagerly-settled value, not a scheduled one), so constructing one from an
// executor is handled here: the executor runs synchronously and its first
// resolve/reject call settles p, matching the common synchronous-executor
// case real code relies on.
func (i *Interpreter) newPromiseFromExecutor(executor runtime.Value) (runtime.Value, error) {
	p := runtime.NewPendingPromise()
	settle := func(state runtime.PromiseState) *runtime.NativeFunction {
		return &runtime.NativeFunction{Fn: func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
			if p.State != runtime.PromisePending {
				return runtime.Undefined, nil
			}
			p.State = state
			if len(args) > 0 {
				p.Value = args[0]
			} else {
				p.Value = runtime.Undefined
			}
			return runtime.Undefined, nil
		}}
	}
	resolve := settle(runtime.PromiseFulfilled)
	reject := settle(runtime.PromiseRejected)
	if _, err := i.invoke(executor, runtime.Undefined, []runtime.Value{resolve, reject}); err != nil {
		if ts, ok := err.(*ThrowSignal); ok {
			if p.State == runtime.PromisePending {
				p.State = runtime.PromiseRejected
				p.Value = ts.Value
			}
			return p, nil
		}
		return nil, err
	}
	return p, nil
}
