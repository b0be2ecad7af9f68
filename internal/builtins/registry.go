// Package builtins is the engine's BuiltInRegistry (spec.md §4.6): a
// process-wide, namespace-keyed table of native callables populated once
// at package init, grounded on the teacher's
// internal/interp/builtins/register.go Registry-plus-RegisterAll idiom.
// Where the teacher registers ~200 flat DWScript global functions under a
// handful of Category tags, this registry groups entries by JS/TS
// namespace object (console, Math, JSON, Object, Array, Promise, Number,
// Symbol, BigInt, Date, RegExp, plus Node-style module stand-ins) since
// that is how scripts reference them (`Math.sqrt(x)`, not a bare global).
package builtins

import (
	"sort"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// Entry is one registered native callable.
type Entry struct {
	Namespace string
	Name      string
	Fn        runtime.NativeFn
	Doc       string
}

// Registry holds every registered Entry, keyed by namespace then name.
type Registry struct {
	namespaces map[string]map[string]*Entry
	constants  map[string]map[string]runtime.Value
}

// NewRegistry returns an empty Registry, letting callers (tests, and
// pkg/tsforge, which builds a fresh one for each Run/Check/Compile)
// assemble their own instead of using DefaultRegistry.
func NewRegistry() *Registry {
	return &Registry{
		namespaces: make(map[string]map[string]*Entry),
		constants:  make(map[string]map[string]runtime.Value),
	}
}

// RegisterConstant adds a non-callable namespace member, such as
// Math.PI or Number.MAX_SAFE_INTEGER.
func (r *Registry) RegisterConstant(namespace, name string, value runtime.Value) {
	ns, ok := r.constants[namespace]
	if !ok {
		ns = make(map[string]runtime.Value)
		r.constants[namespace] = ns
	}
	ns[name] = value
}

// Register adds fn under namespace.name. Registering the same
// (namespace, name) pair twice replaces the earlier entry, matching the
// teacher's last-registration-wins Registry.Register behavior.
func (r *Registry) Register(namespace, name string, fn runtime.NativeFn, doc string) {
	ns, ok := r.namespaces[namespace]
	if !ok {
		ns = make(map[string]*Entry)
		r.namespaces[namespace] = ns
	}
	ns[name] = &Entry{Namespace: namespace, Name: name, Fn: fn, Doc: doc}
}

// Lookup finds a single entry by namespace and name.
func (r *Registry) Lookup(namespace, name string) (*Entry, bool) {
	ns, ok := r.namespaces[namespace]
	if !ok {
		return nil, false
	}
	e, ok := ns[name]
	return e, ok
}

// Namespace returns the registered entries for a namespace, or nil if it
// does not exist.
func (r *Registry) Namespace(namespace string) map[string]*Entry {
	return r.namespaces[namespace]
}

// Namespaces lists every registered namespace name, sorted for
// deterministic iteration (used by `tsforge check --list-builtins`-style
// tooling and by tests).
func (r *Registry) Namespaces() []string {
	out := make([]string, 0, len(r.namespaces))
	for name := range r.namespaces {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// BuildGlobals materializes every namespace as a runtime.Object of
// NativeFunction values, ready to be bound into a RuntimeEnv's global
// Environment (spec.md §3 RuntimeEnv.globals). Namespace objects are
// frozen in the sense that RuntimeEnv never re-derives them after init;
// nothing in this package prevents user code from shadowing the binding
// itself in an inner scope, which matches ordinary JS global mutability.
func (r *Registry) BuildGlobals() map[string]runtime.Value {
	objects := make(map[string]*runtime.Object)
	get := func(ns string) *runtime.Object {
		obj, ok := objects[ns]
		if !ok {
			obj = runtime.NewObject()
			objects[ns] = obj
		}
		return obj
	}
	for ns, entries := range r.namespaces {
		obj := get(ns)
		for name, e := range entries {
			obj.Set(name, &runtime.NativeFunction{Name: ns + "." + name, Fn: e.Fn})
		}
	}
	for ns, consts := range r.constants {
		obj := get(ns)
		for name, v := range consts {
			obj.Set(name, v)
		}
	}
	out := make(map[string]runtime.Value, len(objects))
	for ns, obj := range objects {
		out[ns] = obj
	}
	return out
}

// DefaultRegistry is a package-level registry populated from init(),
// mirroring the teacher's DefaultRegistry. internal/interpreter and
// internal/bytecode use whichever registry they are handed, and
// pkg/tsforge hands them a fresh NewRegistry, not this one.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry()
	RegisterAll(DefaultRegistry)
}

// RegisterAll wires every namespace's functions into r. Split out from
// init() so custom registries (sandboxed embedding, test fixtures with a
// subset of builtins) can call it selectively, same rationale as the
// teacher's RegisterAll/RegisterXFunctions split.
func RegisterAll(r *Registry) {
	RegisterConsole(r)
	RegisterMath(r)
	RegisterJSON(r)
	RegisterObject(r)
	RegisterArray(r)
	RegisterPromise(r)
	RegisterNumber(r)
	RegisterSymbol(r)
	RegisterBigInt(r)
	RegisterDate(r)
	RegisterRegExp(r)
	RegisterStubModules(r)
}
