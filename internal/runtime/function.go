package runtime

import (
	"github.com/scriptlang/tsforge/internal/ast"
)

// ParamBinding mirrors ast.Param at runtime: the name a call binds the
// corresponding argument to, its default-value expression (evaluated in
// the function's own closure if the argument is omitted), and whether it
// is a rest parameter collecting the remaining arguments into an Array.
type ParamBinding struct {
	Name     string
	Default  ast.Expr
	Rest     bool
	Optional bool
}

// Function is a user-defined, interpreted closure: a named function
// declaration, method, or non-arrow function expression. Closure captures
// the defining Environment so free variables resolve lexically.
type Function struct {
	Name      string
	Params    []ParamBinding
	Body      *ast.Block
	Closure   *Environment
	Async     bool
	Generator bool
	IsArrow   bool   // true disables its own `this`/`arguments` binding at call time
	ThisValue Value  // for an arrow function, the `this` captured from its defining scope
}

func (f *Function) Kind() ValueKind { return KindFunction }
func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return "function " + name + "() { [script code] }"
}

// ArrowFunction is an alias of Function, not a distinct type; arrow
// behavior (this-less, lexical closure) is implemented by Function.IsArrow
// plus Function.ThisValue, avoiding two near-duplicate struct definitions.
type ArrowFunction = Function

// NativeFn is the Go function signature every builtin implements:
// receiver is the bound `this` (Undefined when called unbound), args are
// already-evaluated argument values, and ctx is whatever the caller passes:
// the tree-walking interpreter passes its *interpreter.Interpreter, boxed
// as any to avoid an import cycle between internal/runtime and
// internal/interpreter, while the bytecode VM and runtime.Call pass nil.
type NativeFn func(ctx any, this Value, args []Value) (Value, error)

// NativeFunction wraps a Go-implemented builtin so it is callable through
// the same Value interface as an interpreted Function (spec.md §3
// BuiltInRegistry: every registered entry is exposed to scripts as a
// NativeFunction value).
type NativeFunction struct {
	Name string
	Fn   NativeFn
}

func (n *NativeFunction) Kind() ValueKind { return KindNativeFunction }
func (n *NativeFunction) String() string  { return "function " + n.Name + "() { [native code] }" }

// PromiseState tags a Promise's settlement.
type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// PromiseReaction is one then/catch/finally callback pair registered
// against a Promise. Nothing in the engine appends to or runs
// Promise.Reactions; promises are settled eagerly instead.
type PromiseReaction struct {
	OnFulfilled Value // callable, or nil
	OnRejected  Value // callable, or nil
	Result      *Promise
}

// Promise is the runtime representation of `Promise<T>` (spec.md §4.4):
// it is settled synchronously when created (see internal/interpreter's
// async.go); there is no microtask queue and no OS-level concurrency,
// since script execution is single threaded per spec.md §5.
type Promise struct {
	State     PromiseState
	Value     Value // fulfillment value or rejection reason
	Reactions []PromiseReaction
}

func NewPendingPromise() *Promise {
	return &Promise{State: PromisePending}
}

func (p *Promise) Kind() ValueKind { return KindPromise }
func (p *Promise) String() string  { return "[object Promise]" }

// GeneratorState tags where a Generator/AsyncGenerator sits in its
// suspend/resume lifecycle.
type GeneratorState int

const (
	GeneratorSuspendedStart GeneratorState = iota
	GeneratorSuspendedYield
	GeneratorExecuting
	GeneratorCompleted
)

// Generator is the runtime object behind a `function*` call. The teacher
// has no generator concept (DWScript lacks them); internal/interpreter
// drives this with a Go goroutine-and-channel coroutine (see
// internal/interpreter/generator.go) since Go has no native stackful
// coroutine primitive to lower a resumable function onto directly.
type Generator struct {
	State     GeneratorState
	resumeCh  chan Value
	yieldCh   chan generatorStep
	Async     bool
}

type generatorStep struct {
	value Value
	err   error
	done  bool
}

func NewGenerator(async bool) *Generator {
	return &Generator{
		State:    GeneratorSuspendedStart,
		resumeCh: make(chan Value),
		yieldCh:  make(chan generatorStep),
		Async:    async,
	}
}

func (g *Generator) Kind() ValueKind {
	if g.Async {
		return KindAsyncGenerator
	}
	return KindGenerator
}
func (g *Generator) String() string { return "[object Generator]" }

// ResumeCh exposes the resume channel to internal/interpreter's driver loop
// without internal/runtime importing it back.
func (g *Generator) ResumeCh() chan Value { return g.resumeCh }

// Yield sends a value out of the generator body and blocks until the next
// resume, returning the value passed to .next(v).
func (g *Generator) Yield(v Value) Value {
	g.yieldCh <- generatorStep{value: v}
	return <-g.resumeCh
}

// Finish signals the generator body has returned, unblocking a pending
// .next() call with {value, done: true}.
func (g *Generator) Finish(v Value, err error) {
	g.yieldCh <- generatorStep{value: v, err: err, done: true}
}

// Next resumes the generator with sendValue and blocks for the next yield
// or completion.
func (g *Generator) Next(sendValue Value) (*IteratorResult, error) {
	if g.State == GeneratorCompleted {
		return &IteratorResult{Value: Undefined, Done: true}, nil
	}
	g.State = GeneratorExecuting
	g.resumeCh <- sendValue
	step := <-g.yieldCh
	if step.done {
		g.State = GeneratorCompleted
		if step.err != nil {
			return nil, step.err
		}
		return &IteratorResult{Value: step.value, Done: true}, nil
	}
	g.State = GeneratorSuspendedYield
	return &IteratorResult{Value: step.value, Done: false}, nil
}
