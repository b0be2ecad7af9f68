// Package typecheck resolves internal/ast.TypeExpr annotations into
// internal/types.TypeInfo, checks every expression and statement for
// structural compatibility, and records its findings in a
// internal/types.TypeMap shared with internal/interpreter and
// internal/bytecode (spec.md §4.3).
//
// Checking runs in two passes, grounded on internal/semantic.Analyzer's
// Analyze/registries split in the teacher: a signature-collection pass
// walks every top-level declaration and installs a *types.ClassInfo shell
// for each class (plus interface, enum, alias and function entries) so
// forward references within the same compilation unit resolve, then a
// body-checking pass checks every statement and expression against the
// now-complete signature set.
package typecheck

import "github.com/scriptlang/tsforge/internal/types"

// symbol is one binding in a TypeEnv scope: a variable, function, class,
// or type alias name bound to its resolved TypeInfo.
type symbol struct {
	name     string
	typ      types.TypeInfo
	readonly bool // const bindings and readonly fields
	narrowed types.TypeInfo // present when control-flow narrowing refines typ within the current scope
}

// TypeEnv is a lexical scope chain of symbol bindings, case-sensitive
// (spec.md's case-sensitivity divergence from the teacher's
// ident.Map-backed, case-insensitive Environment).
type TypeEnv struct {
	symbols map[string]*symbol
	outer   *TypeEnv
}

// NewTypeEnv returns an empty top-level (global) scope.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{symbols: make(map[string]*symbol)}
}

// Enclosed returns a new child scope nested inside e.
func (e *TypeEnv) Enclosed() *TypeEnv {
	return &TypeEnv{symbols: make(map[string]*symbol), outer: e}
}

// Define binds name to typ in the current scope, shadowing any outer
// binding of the same name.
func (e *TypeEnv) Define(name string, typ types.TypeInfo) {
	e.symbols[name] = &symbol{name: name, typ: typ}
}

// DefineConst binds a readonly name, rejecting reassignment at check time.
func (e *TypeEnv) DefineConst(name string, typ types.TypeInfo) {
	e.symbols[name] = &symbol{name: name, typ: typ, readonly: true}
}

// Lookup searches the scope chain outward from e and returns the resolved
// type (preferring a narrowed type if one is in effect) and whether the
// binding exists.
func (e *TypeEnv) Lookup(name string) (types.TypeInfo, bool) {
	for s := e; s != nil; s = s.outer {
		if sym, ok := s.symbols[name]; ok {
			if sym.narrowed != nil {
				return sym.narrowed, true
			}
			return sym.typ, true
		}
	}
	return nil, false
}

// IsReadonly reports whether name resolves to a const/readonly binding.
func (e *TypeEnv) IsReadonly(name string) bool {
	for s := e; s != nil; s = s.outer {
		if sym, ok := s.symbols[name]; ok {
			return sym.readonly
		}
	}
	return false
}

// Narrow overrides the resolved type of an already-bound name within the
// scope where the binding lives, implementing control-flow narrowing
// (applyNarrowing calls it for `typeof x === "string"`). checkIf undoes the
// narrowing with Snapshot/Restore once the narrowed branch ends.
func (e *TypeEnv) Narrow(name string, typ types.TypeInfo) {
	for s := e; s != nil; s = s.outer {
		if sym, ok := s.symbols[name]; ok {
			sym.narrowed = typ
			return
		}
	}
}

// ClearNarrowing removes any narrowing applied to name, restoring its
// declared type.
func (e *TypeEnv) ClearNarrowing(name string) {
	for s := e; s != nil; s = s.outer {
		if sym, ok := s.symbols[name]; ok {
			sym.narrowed = nil
			return
		}
	}
}

// Snapshot captures the current narrowing state of every name visible from
// e, so a branch (e.g. the else-arm of an if) can restore the pre-branch
// narrowing after the then-arm applied its own.
func (e *TypeEnv) Snapshot() map[string]types.TypeInfo {
	snap := make(map[string]types.TypeInfo)
	for s := e; s != nil; s = s.outer {
		for name, sym := range s.symbols {
			if _, seen := snap[name]; !seen {
				snap[name] = sym.narrowed
			}
		}
	}
	return snap
}

// Restore reapplies a Snapshot captured earlier from the same scope chain.
func (e *TypeEnv) Restore(snap map[string]types.TypeInfo) {
	for s := e; s != nil; s = s.outer {
		for name, sym := range s.symbols {
			if narrowed, ok := snap[name]; ok {
				sym.narrowed = narrowed
			}
		}
	}
}
