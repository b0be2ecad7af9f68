package builtins

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterPromise wires the `Promise` namespace's static constructors
// (resolve/reject/all/race), the async-execution counterpart to the
// teacher's DefaultRegistry — DWScript has no Promise concept at all, so
// these are new rather than adapted, but are grounded in the same
// Registry.Register wiring idiom and in runtime.Promise's
// State/Value/Reactions shape from internal/runtime/function.go.
func RegisterPromise(r *Registry) {
	r.Register("Promise", "resolve", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		p := runtime.NewPendingPromise()
		var v runtime.Value = runtime.Undefined
		if len(args) > 0 {
			v = args[0]
		}
		if already, ok := v.(*runtime.Promise); ok {
			return already, nil
		}
		p.State = runtime.PromiseFulfilled
		p.Value = v
		return p, nil
	}, "Returns a Promise resolved with the given value")

	r.Register("Promise", "reject", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		p := runtime.NewPendingPromise()
		p.State = runtime.PromiseRejected
		if len(args) > 0 {
			p.Value = args[0]
		} else {
			p.Value = runtime.Undefined
		}
		return p, nil
	}, "Returns a Promise rejected with the given reason")

	r.Register("Promise", "all", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewPendingPromise(), nil
		}
		items, err := runtime.ArrayFromIterable(args[0])
		if err != nil {
			return nil, err
		}
		results := runtime.NewArray()
		results.Elements = make([]runtime.Value, len(items))
		for i, item := range items {
			pr, ok := item.(*runtime.Promise)
			if !ok {
				results.Elements[i] = item
				continue
			}
			if pr.State == runtime.PromiseRejected {
				rejected := runtime.NewPendingPromise()
				rejected.State = runtime.PromiseRejected
				rejected.Value = pr.Value
				return rejected, nil
			}
			results.Elements[i] = pr.Value
		}
		p := runtime.NewPendingPromise()
		p.State = runtime.PromiseFulfilled
		p.Value = results
		return p, nil
	}, "Resolves once every promise in the iterable has settled, or rejects on the first rejection")

	r.Register("Promise", "race", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("TypeError: Promise.race requires an iterable argument")
		}
		items, err := runtime.ArrayFromIterable(args[0])
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if pr, ok := item.(*runtime.Promise); ok {
				if pr.State != runtime.PromisePending {
					return pr, nil
				}
				continue
			}
			p := runtime.NewPendingPromise()
			p.State = runtime.PromiseFulfilled
			p.Value = item
			return p, nil
		}
		return runtime.NewPendingPromise(), nil
	}, "Settles as soon as any promise in the iterable settles")
}
