package builtins

import (
	"github.com/google/uuid"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterSymbol wires `Symbol(...)` as a callable namespace entry (`Symbol`
// is itself invoked, not just dotted into) plus its `for`/`keyFor` registry
// methods. Grounded on SPEC_FULL.md's domain-stack mapping of
// google/uuid (a funvibe-funxy direct dependency in the pack) onto Symbol
// identity allocation: each runtime.Symbol already carries a unique
// pointer-boxed identity (see internal/runtime/value.go), and `Symbol(...)`
// appends the first 8 characters of a fresh uuid.NewString() to its
// description so printed symbols are told apart in diagnostics. Symbol.for
// keys its registry by the plain key string and adds no suffix.
func RegisterSymbol(r *Registry) {
	registry := make(map[string]runtime.Symbol)

	r.Register("Symbol", "__call__", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		desc := ""
		if len(args) > 0 {
			desc = runtime.ToStringValue(args[0])
		}
		return runtime.NewSymbol(desc + "#" + uuid.NewString()[:8]), nil
	}, "Creates a new unique Symbol, optionally with a description")

	r.Register("Symbol", "for", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		key := stringArg(args)
		if sym, ok := registry[key]; ok {
			return sym, nil
		}
		sym := runtime.NewSymbol(key)
		registry[key] = sym
		return sym, nil
	}, "Looks up (or creates) a Symbol in the global symbol registry")

	r.Register("Symbol", "keyFor", func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.Undefined, nil
		}
		target, ok := args[0].(runtime.Symbol)
		if !ok {
			return runtime.Undefined, nil
		}
		for key, sym := range registry {
			if sym == target {
				return runtime.String(key), nil
			}
		}
		return runtime.Undefined, nil
	}, "Returns the registry key for a Symbol previously created via Symbol.for")

	r.RegisterConstant("Symbol", "iterator", runtime.NewSymbol("Symbol.iterator"))
	r.RegisterConstant("Symbol", "asyncIterator", runtime.NewSymbol("Symbol.asyncIterator"))
}
