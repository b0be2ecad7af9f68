package bytecode

import (
	"fmt"
	"math"
	"math/big"

	"github.com/scriptlang/tsforge/internal/builtins"
	"github.com/scriptlang/tsforge/internal/runtime"
	"github.com/scriptlang/tsforge/internal/token"
)

// maxCallDepth bounds recursive VM calls the same way internal/interpreter
// bounds its own call stack (see interpreter.maxCallDepth), surfacing a
// catchable RangeError instead of a Go stack overflow for runaway
// recursion.
const maxCallDepth = 2000

// VM is the native execution engine's top-level context: one Global
// environment plus the shared Error class hierarchy, built exactly like
// interpreter.New builds an Interpreter so both engines expose the same
// globals and throw/recognize the identical Error/TypeError/... values.
// Unlike the teacher's VM there is no explicit Frame stack field: each
// call is a nested Go call to runFrame, so Go's own call stack stands in
// for the frame stack.
type VM struct {
	Global *runtime.Environment
	errors *runtime.ErrorClasses
	depth  int
}

// NewVM mirrors interpreter.New: installs reg's namespaces and the Error
// hierarchy into a fresh Global environment, then registers this VM as
// internal/runtime's call-dispatch hook so builtins (and any interpreted
// code a script mixes in) can call back into compiled closures.
func NewVM(reg *builtins.Registry) *VM {
	vm := &VM{
		Global: runtime.NewEnvironment(),
		errors: runtime.NewErrorClasses(),
	}
	for name, v := range reg.BuildGlobals() {
		vm.Global.DefineConst(name, v)
	}
	for name, class := range vm.errors.ByName {
		vm.Global.DefineConst(name, class)
	}
	vm.Global.DefineConst("globalThis", runtime.NewObject())
	vm.Global.DefineConst("undefined", runtime.Undefined)
	vm.Global.DefineConst("NaN", runtime.Number(math.NaN()))
	vm.Global.DefineConst("Infinity", runtime.Number(math.Inf(1)))
	runtime.SetInterpretedCaller(vm.callValue)
	return vm
}

// Run executes a compiled top-level Chunk and returns the value its last
// top-level expression statement produced (Compile emits a trailing
// OpGetLocal/OpReturn pair for exactly this, mirroring interpreter.Run's
// last-expression-statement completion value).
func (vm *VM) Run(chunk *Chunk) (runtime.Value, error) {
	topClosure := &Closure{Proto: &Proto{Name: chunk.Name, Chunk: chunk}}
	return vm.runFrame(topClosure, runtime.Undefined, nil)
}

// callFrame is one activation of a compiled chunk: its own never-pooled
// Locals slice (so a *runtime.Value pointer into it stays valid for as
// long as any closure captured it as an upvalue) and its own operand
// stack, kept separate from Locals since this is a register-style VM, not
// a pure stack machine.
type callFrame struct {
	closure *Closure
	locals  []runtime.Value
	pc      int
}

// runFrame executes one call's compiled chunk to completion. Grounded on
// the teacher's VM dispatch loop, collapsed to one big switch over OpCode
// since this VM has no packed-word decode step to separate from dispatch.
func (vm *VM) runFrame(closure *Closure, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if vm.depth >= maxCallDepth {
		return nil, vm.throwNamed("RangeError", "Maximum call stack size exceeded")
	}
	vm.depth++
	defer func() { vm.depth-- }()

	chunk := closure.Proto.Chunk
	frame := &callFrame{closure: closure, locals: make([]runtime.Value, chunk.LocalCount)}
	for i := range frame.locals {
		frame.locals[i] = runtime.Undefined
	}
	if chunk.LocalCount > 0 {
		frame.locals[0] = this
	}
	if chunk.LocalCount > 1 {
		frame.locals[1] = runtime.NewArray(append([]runtime.Value{}, args...)...)
	}
	vm.bindParams(closure.Proto, frame, args)

	var stack []runtime.Value
	push := func(v runtime.Value) { stack = append(stack, v) }
	pop := func() runtime.Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	peek := func() runtime.Value { return stack[len(stack)-1] }

	for frame.pc < len(chunk.Code) {
		instr := chunk.Code[frame.pc]
		at := frame.pc
		frame.pc++

		retVal, done, err := vm.step(frame, instr, push, pop, peek)
		if err != nil {
			if ok, landingPC := vm.handle(chunk, &stack, at, err); ok {
				frame.pc = landingPC
				continue
			}
			return nil, err
		}
		if done {
			return retVal, nil
		}
	}
	return runtime.Undefined, nil
}

// handle looks for a Handler in chunk covering the instruction at pc. On a
// match it truncates the operand stack back to empty (every Handler.Start
// is a statement boundary, where this VM's compiler always leaves the
// stack balanced at zero — see DESIGN.md), pushes the thrown value, and
// returns the catch/finally landing PC; the code there begins with the
// OpSetLocal that binds Handler.CatchSlot, mirroring compileTry's codegen
// exactly. No match means the error propagates to the caller frame
// unchanged.
func (vm *VM) handle(chunk *Chunk, stack *[]runtime.Value, pc int, err error) (bool, int) {
	thrown, ok := err.(*runtime.ThrownValue)
	if !ok {
		name, msg := runtime.ParseErrorPrefix(err.Error())
		thrown = &runtime.ThrownValue{Value: vm.errors.New(name, msg)}
	}
	// compileTry appends an outer handler before the handlers of any try
	// nested in its body, so scan from the end to find the innermost one.
	for idx := len(chunk.Handlers) - 1; idx >= 0; idx-- {
		h := chunk.Handlers[idx]
		if pc >= h.Start && pc < h.End {
			*stack = (*stack)[:0]
			*stack = append(*stack, thrown.Value)
			return true, h.CatchPC
		}
	}
	return false, 0
}

// wrapFacadeError mirrors interpreter.wrapFacadeError: a plain
// fmt.Errorf-style error from internal/runtime's facade becomes a thrown
// Error instance, parsing a leading "Name: " prefix into its name field.
func (vm *VM) wrapFacadeError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*runtime.ThrownValue); ok {
		return err
	}
	name, msg := runtime.ParseErrorPrefix(err.Error())
	return runtime.Throw(vm.errors.New(name, msg))
}

func (vm *VM) throwNamed(name, message string) error {
	return runtime.Throw(vm.errors.New(name, message))
}

// bindParams positionally copies args into each declared parameter's slot
// (slots 0/1 already hold this/arguments, reserved by NewCompiler/
// newChildCompiler for a non-arrow function), matching bindArgs' plain
// copy-then-default rule; the defaulting half (replacing an Undefined slot
// per a parameter's Default expression) is compiled bytecode emitted by
// compileFunctionBody, not this function's job. A rest parameter collects
// every remaining positional argument into an Array and is always last,
// matching bindArgs returning immediately after filling it.
func (vm *VM) bindParams(proto *Proto, frame *callFrame, args []runtime.Value) {
	base := 0
	if !proto.IsArrow {
		base = 2
	}
	for idx, p := range proto.Params {
		slot := base + idx
		if slot >= len(frame.locals) {
			return
		}
		if p.Rest {
			rest := []runtime.Value{}
			if idx < len(args) {
				rest = append(rest, args[idx:]...)
			}
			frame.locals[slot] = runtime.NewArray(rest...)
			return
		}
		if idx < len(args) && args[idx] != nil {
			frame.locals[slot] = args[idx]
		} else {
			frame.locals[slot] = runtime.Undefined
		}
	}
}

// step executes one instruction, returning the frame's return value and
// done=true only for OpReturn; every other opcode returns done=false and
// either falls through to the next instruction or has already redirected
// frame.pc itself (jumps, calls that recurse into runFrame).
func (vm *VM) step(frame *callFrame, instr Instruction, push func(runtime.Value), pop func() runtime.Value, peek func() runtime.Value) (runtime.Value, bool, error) {
	chunk := frame.closure.Proto.Chunk
	switch instr.Op {
	case OpConstant:
		push(chunk.Constants[instr.A])
	case OpUndefined:
		push(runtime.Undefined)
	case OpNull:
		push(runtime.Null)
	case OpTrue:
		push(runtime.True)
	case OpFalse:
		push(runtime.False)
	case OpPop:
		pop()
	case OpDup:
		push(peek())

	case OpGetLocal:
		push(frame.locals[instr.A])
	case OpSetLocal:
		frame.locals[instr.A] = pop()
	case OpGetUpvalue:
		push(frame.closure.Upvalues[instr.A].Get())
	case OpSetUpvalue:
		frame.closure.Upvalues[instr.A].Set(pop())
	case OpGetGlobal:
		name := string(chunk.Constants[instr.A].(runtime.String))
		v, ok := vm.Global.Get(name)
		if !ok {
			return nil, false, vm.throwNamed("ReferenceError", name+" is not defined")
		}
		push(v)
	case OpSetGlobal:
		name := string(chunk.Constants[instr.A].(runtime.String))
		v := pop()
		if err := vm.Global.Set(name, v); err != nil {
			return nil, false, vm.wrapFacadeError(err)
		}
		push(v)
	case OpDefineGlobal:
		name := string(chunk.Constants[instr.A].(runtime.String))
		vm.Global.Define(name, pop())

	case OpGetProperty:
		obj := pop()
		name := string(chunk.Constants[instr.A].(runtime.String))
		v, _ := runtime.GetProperty(obj, name)
		if v == nil {
			v = runtime.Undefined
		}
		push(v)
	case OpSetProperty:
		value := pop()
		obj := pop()
		name := string(chunk.Constants[instr.A].(runtime.String))
		if err := runtime.SetProperty(obj, name, value); err != nil {
			return nil, false, vm.wrapFacadeError(err)
		}
		push(value)
	case OpGetIndex:
		index := pop()
		obj := pop()
		v, _ := runtime.GetIndex(obj, index)
		if v == nil {
			v = runtime.Undefined
		}
		push(v)
	case OpSetIndex:
		value := pop()
		index := pop()
		obj := pop()
		if err := runtime.SetIndex(obj, index, value); err != nil {
			return nil, false, vm.wrapFacadeError(err)
		}
		push(value)

	case OpBinary:
		right := pop()
		left := pop()
		v, err := runtime.BinaryOp(token.Type(instr.A), left, right)
		if err != nil {
			return nil, false, vm.wrapFacadeError(err)
		}
		push(v)
	case OpNegate:
		operand := pop()
		if bi, ok := operand.(runtime.BigInt); ok {
			push(runtime.BigInt{Int: new(big.Int).Neg(bi.Int)})
		} else {
			push(runtime.Number(-runtime.ToNumber(operand)))
		}
	case OpUnaryPlus:
		push(runtime.Number(runtime.ToNumber(pop())))
	case OpNot:
		push(runtime.BoolValue(!runtime.Truthy(pop())))
	case OpBitNot:
		push(runtime.Number(float64(^int32(int64(runtime.ToNumber(pop()))))))
	case OpTypeofValue:
		push(runtime.String(runtime.TypeOf(pop())))
	case OpTypeofIdent:
		name := string(chunk.Constants[instr.A].(runtime.String))
		if v, ok := vm.Global.Get(name); ok {
			push(runtime.String(runtime.TypeOf(v)))
		} else {
			push(runtime.String("undefined"))
		}
	case OpInstanceof:
		right := pop()
		left := pop()
		class, ok := right.(*runtime.Class)
		if !ok {
			return nil, false, vm.throwNamed("TypeError", "Right-hand side of 'instanceof' is not callable")
		}
		push(runtime.BoolValue(runtime.InstanceOf(left, class)))
	case OpIn:
		obj := pop()
		key := pop()
		push(runtime.BoolValue(runtime.In(key, obj)))
	case OpDeleteProp:
		obj := pop()
		name := string(chunk.Constants[instr.A].(runtime.String))
		if o, ok := obj.(*runtime.Object); ok {
			o.Delete(name)
		}
		push(runtime.True)
	case OpDeleteIndex:
		index := pop()
		obj := pop()
		if o, ok := obj.(*runtime.Object); ok {
			o.Delete(runtime.ToStringValue(index))
		}
		push(runtime.True)

	case OpJump:
		frame.pc = instr.B
	case OpJumpIfFalse:
		if !runtime.Truthy(pop()) {
			frame.pc = instr.B
		}
	case OpJumpIfTrue:
		if runtime.Truthy(pop()) {
			frame.pc = instr.B
		}
	case OpJumpIfFalseKeep:
		if !runtime.Truthy(peek()) {
			frame.pc = instr.B
		}
	case OpJumpIfTrueKeep:
		if runtime.Truthy(peek()) {
			frame.pc = instr.B
		}
	case OpJumpIfNullishKeep:
		top := peek()
		if top.Kind() == runtime.KindUndefined || top.Kind() == runtime.KindNull {
			frame.pc = instr.B
		}

	case OpCall:
		argsArray := pop().(*runtime.Array)
		callee := pop()
		this := pop()
		v, err := vm.callValue(callee, this, argsArray.Elements)
		if err != nil {
			return nil, false, err
		}
		push(v)
	case OpNew:
		argsArray := pop().(*runtime.Array)
		ctor := pop()
		v, err := vm.constructValue(ctor, argsArray.Elements)
		if err != nil {
			return nil, false, err
		}
		push(v)
	case OpClosure:
		push(vm.makeClosure(frame, chunk.Protos[instr.A]))
	case OpReturn:
		return pop(), true, nil

	case OpNewArray:
		elems := make([]runtime.Value, instr.A)
		for i := instr.A - 1; i >= 0; i-- {
			elems[i] = pop()
		}
		push(runtime.NewArray(elems...))
	case OpSpread:
		iterable := pop()
		arr := pop().(*runtime.Array)
		items, err := runtime.ArrayFromIterable(iterable)
		if err != nil {
			return nil, false, vm.wrapFacadeError(err)
		}
		arr.Elements = append(arr.Elements, items...)
		push(arr)
	case OpNewObject:
		push(runtime.NewObject())
	case OpObjectSet:
		value := pop()
		obj := pop().(*runtime.Object)
		name := string(chunk.Constants[instr.A].(runtime.String))
		obj.Set(name, value)
		push(obj)
	case OpObjectSetComputed:
		value := pop()
		key := pop()
		obj := pop().(*runtime.Object)
		obj.Set(runtime.ToStringValue(key), value)
		push(obj)
	case OpObjectSpread:
		source := pop()
		obj := pop().(*runtime.Object)
		if src, ok := source.(*runtime.Object); ok {
			for _, name := range src.PropertyOrder {
				v, _ := src.Get(name)
				obj.Set(name, v)
			}
		}
		push(obj)
	case OpConcat:
		right := pop()
		left := pop()
		push(runtime.String(runtime.ToStringValue(left) + runtime.ToStringValue(right)))

	case OpThrow:
		v := pop()
		return nil, false, runtime.Throw(v)

	case OpIterNew:
		iterable := pop()
		items, err := runtime.ArrayFromIterable(iterable)
		if err != nil {
			return nil, false, vm.wrapFacadeError(err)
		}
		push(&iterState{items: items})
	case OpIterNewKeys:
		obj := pop()
		push(&iterState{items: enumerableKeys(obj)})
	case OpIterNext:
		it := peek().(*iterState)
		if it.idx >= len(it.items) {
			push(runtime.Undefined)
			push(runtime.False)
		} else {
			push(it.items[it.idx])
			it.idx++
			push(runtime.True)
		}

	case OpNewRegex:
		pattern := string(chunk.Constants[instr.A].(runtime.String))
		flags := string(chunk.Constants[instr.B].(runtime.String))
		v, err := builtins.CompileRegExp(pattern, flags)
		if err != nil {
			return nil, false, vm.throwNamed("SyntaxError", err.Error())
		}
		push(v)

	default:
		return nil, false, fmt.Errorf("bytecode: unhandled opcode %s", instr.Op)
	}
	return nil, false, nil
}

// iterState is the internal value OpIterNew/OpIterNewKeys push and
// OpIterNext peeks each pass, riding the same operand stack as ordinary
// script values (instead of a dedicated side channel) so no extra opcode
// is needed to re-push it between iterations; it implements runtime.Value
// only so it type-checks there. Script code never observes one directly
// since compileForOf/compileForIn always pop it before falling out of the
// loop.
type iterState struct {
	items []runtime.Value
	idx   int
}

func (s *iterState) Kind() runtime.ValueKind { return runtime.KindObject }
func (s *iterState) String() string          { return "[object Iterator]" }

// enumerableKeys backs for-in: own Object property names (insertion
// order) or dense Array indices as strings, matching execForIn's own-keys
// enumeration (class instances are out of scope for this engine).
func enumerableKeys(obj runtime.Value) []runtime.Value {
	switch o := obj.(type) {
	case *runtime.Object:
		keys := make([]runtime.Value, len(o.PropertyOrder))
		for i, name := range o.PropertyOrder {
			keys[i] = runtime.String(name)
		}
		return keys
	case *runtime.Array:
		keys := make([]runtime.Value, len(o.Elements))
		for i := range o.Elements {
			keys[i] = runtime.String(fmt.Sprintf("%d", i))
		}
		return keys
	default:
		return nil
	}
}

// makeClosure instantiates a Closure over proto, resolving each upvalue
// descriptor against the currently-running frame: IsLocal true captures a
// pointer directly into frame.locals (stable for the lifetime of any
// closure holding it, since frame.locals is allocated once per call and
// never resized or pooled), IsLocal false reuses the enclosing closure's
// own already-captured Upvalue cell unchanged — the same two-case scheme
// resolveUpvalue uses at compile time.
func (vm *VM) makeClosure(frame *callFrame, proto *Proto) *Closure {
	cl := &Closure{Proto: proto}
	if len(proto.Upvalues) == 0 {
		return cl
	}
	cl.Upvalues = make([]*Upvalue, len(proto.Upvalues))
	for i, d := range proto.Upvalues {
		if d.IsLocal {
			cl.Upvalues[i] = &Upvalue{Location: &frame.locals[d.Index]}
		} else {
			cl.Upvalues[i] = frame.closure.Upvalues[d.Index]
		}
	}
	return cl
}

// callValue dispatches a call to whatever the callee resolved to,
// registered as internal/runtime's SetInterpretedCaller hook so
// runtime.Call's default branch (and internal/builtins callbacks like
// Array.prototype.map's callback invocation) reach compiled closures the
// same way internal/interpreter's callInterpreted reaches interpreted
// ones. Mirrors interpreter.invoke's "__call__" namespace-object
// convention for callable builtins (Symbol(...), BigInt(...), ...).
func (vm *VM) callValue(callee runtime.Value, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if callee == nil {
		return nil, vm.throwNamed("TypeError", "value is not a function")
	}
	if obj, ok := callee.(*runtime.Object); ok {
		if call, found := obj.Get("__call__"); found {
			callee = call
		}
	}
	switch fn := callee.(type) {
	case *Closure:
		return vm.runFrame(fn, this, args)
	case *runtime.NativeFunction:
		v, err := fn.Fn(nil, this, args)
		if err != nil {
			return nil, vm.wrapFacadeError(err)
		}
		return v, nil
	case *runtime.BoundMethod:
		return vm.callValue(fn.Fn, fn.Receiver, args)
	default:
		return nil, vm.throwNamed("TypeError", "value is not a function")
	}
}

// constructValue backs `new`. User class declarations never reach this
// engine (they are unsupported(...) at compile time, see
// compiler_stmt.go), so the only *runtime.Class values compiled code can
// ever hold are the built-in Error hierarchy's — constructed here the same
// way interpreter.instantiate's nativeErr branch does, setting name/message
// directly rather than running a (nonexistent) AST constructor body.
// Everything else mirrors evalNew's current limitation: a Promise-by-
// identity special case plus Class-only construction, so `new Date(...)`/
// `new Map(...)` are not constructible through `new` in either engine.
func (vm *VM) constructValue(ctor runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if obj, ok := ctor.(*runtime.Object); ok && vm.isPromiseNamespace(obj) {
		if len(args) == 0 {
			return nil, vm.throwNamed("TypeError", "Promise resolver is not a function")
		}
		return vm.newPromiseFromExecutor(args[0])
	}
	if class, ok := ctor.(*runtime.Class); ok {
		if class.Abstract {
			return nil, vm.throwNamed("TypeError", "Cannot construct an instance of an abstract class "+class.Name)
		}
		if _, isNativeErr := vm.errors.ByName[class.Name]; isNativeErr && vm.errors.ByName[class.Name] == class {
			inst := runtime.NewInstance(class)
			inst.Set("name", runtime.String(class.Name))
			msg := ""
			if len(args) > 0 {
				msg = runtime.ToStringValue(args[0])
			}
			inst.Set("message", runtime.String(msg))
			return inst, nil
		}
		return nil, vm.throwNamed("TypeError", "constructing a class instance is not yet supported by the native engine")
	}
	return nil, vm.throwNamed("TypeError", "value is not a constructor")
}

func (vm *VM) isPromiseNamespace(obj *runtime.Object) bool {
	v, ok := vm.Global.Get("Promise")
	if !ok {
		return false
	}
	return v == runtime.Value(obj)
}

// newPromiseFromExecutor backs `new Promise((resolve, reject) => {...})`,
// grounded on interpreter.newPromiseFromExecutor but calling back through
// runtime.Call (rather than the interpreter's own invoke) so a compiled
// closure, a native function, or an interpreted function can all serve as
// the executor interchangeably.
func (vm *VM) newPromiseFromExecutor(executor runtime.Value) (runtime.Value, error) {
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
	if _, err := runtime.Call(executor, runtime.Undefined, []runtime.Value{resolve, reject}); err != nil {
		if thrown, ok := err.(*runtime.ThrownValue); ok {
			if p.State == runtime.PromisePending {
				p.State = runtime.PromiseRejected
				p.Value = thrown.Value
			}
			return p, nil
		}
		return nil, err
	}
	return p, nil
}
