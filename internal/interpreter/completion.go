// Package interpreter is the tree-walking EvaluationContext (spec.md §4.4),
// grounded on the teacher's internal/interp/evaluator package: a
// ControlFlow completion-record enum instead of panics for break/continue/
// return. A throw is not a completion kind: it travels as a ThrowSignal on
// the error return (spec.md §9 Open Question 1: every thrown value surfaces
// as one name+message record).
package interpreter

import "github.com/scriptlang/tsforge/internal/runtime"

// CompletionKind mirrors the teacher's ControlFlowKind (FlowNone/FlowBreak/
// FlowContinue/FlowExit/FlowReturn), renamed to match ECMA-262's completion
// record vocabulary. There is no Throw kind: exec()/eval() report
// exceptions through their error result as a ThrowSignal.
type CompletionKind int

const (
	Normal CompletionKind = iota
	Return
	Break
	Continue
)

// Completion is the result of executing a statement: either normal
// completion (possibly carrying the last expression-statement value, used
// only by the top-level Run for a script's final value), or a break/
// continue/return signal propagating upward to the nearest enclosing
// construct that handles it. Label is "" for an unlabeled break/continue.
type Completion struct {
	Kind  CompletionKind
	Value runtime.Value
	Label string
}

func normal(v runtime.Value) Completion { return Completion{Kind: Normal, Value: v} }

// ThrowSignal boxes a thrown runtime.Value as a Go error so it propagates
// through the same (Completion, error) return channel every exec/eval
// function already uses for host-level faults, and through
// internal/runtime's facade Call/Dispose signatures unchanged. Aliased to
// internal/runtime's ThrownValue so internal/bytecode's VM raises and
// catches the identical error shape instead of a second copy.
type ThrowSignal = runtime.ThrownValue

func throwValue(v runtime.Value) error { return runtime.Throw(v) }
