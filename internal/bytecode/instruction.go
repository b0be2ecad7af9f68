// Package bytecode is the native execution engine: a compiler that lowers
// internal/ast into flat per-function instruction sequences, and a
// stack-based VM that runs them directly against internal/runtime.Value
// rather than a bytecode-local value representation — the interpreter and
// this package share one Value model and one RuntimeFacade for operator/
// property semantics (internal/runtime.BinaryOp, GetProperty, Call, ...),
// so neither engine can silently drift from the other on an edge case.
//
// Grounded on the teacher's own bytecode package: a Compiler tracking
// locals/upvalues/scope depth with an enclosing-compiler chain for nested
// closures, and a VM with an explicit call-frame stack, mirrored here
// under a collapsed, JS-shaped opcode set (no separate Int/Float
// arithmetic opcodes — JS has one Number type, and every arithmetic/
// comparison/equality opcode instead carries a token.Type operand and
// dispatches through the shared BinaryOp).
package bytecode

import "fmt"

// OpCode identifies one bytecode instruction. Kept far below the teacher's
// 116-entry set: JS's single Number type collapses the teacher's parallel
// Int/Float arithmetic blocks into one OpBinary, and property/index access
// already being facade calls removes most of the teacher's builtin-specific
// opcodes.
type OpCode byte

const (
	// Stack manipulation and literals.
	OpConstant  OpCode = iota // push Constants[A]
	OpUndefined               // push undefined
	OpNull                    // push null
	OpTrue                    // push true
	OpFalse                   // push false
	OpPop                     // discard top of stack
	OpDup                     // duplicate top of stack

	// Variable access. Locals/upvalues are resolved to slot indices at
	// compile time; globals go through the shared *runtime.Environment by
	// name (Constants[A] holds the name as a runtime.String) so builtins
	// installed by internal/builtins are visible unchanged.
	OpGetLocal
	OpSetLocal
	OpGetUpvalue
	OpSetUpvalue
	OpGetGlobal
	OpSetGlobal
	OpDefineGlobal

	// Property/index/operator dispatch, all routed through
	// internal/runtime's facade so semantics match the tree walker exactly.
	OpGetProperty  // obj -> obj.Constants[A]; pops obj, pushes value
	OpSetProperty  // obj value -> value; pops both, pushes value back
	OpGetIndex     // obj index -> value
	OpSetIndex     // obj index value -> value
	OpBinary       // left right -> result; A is the token.Type operand
	OpNegate       // operand -> -operand
	OpUnaryPlus    // operand -> +operand
	OpNot          // operand -> !operand
	OpBitNot       // operand -> ~operand
	OpTypeofValue  // operand -> typeof operand (operand already evaluated)
	OpTypeofIdent  // A is the constant index of a global name; yields "undefined" if unbound
	OpInstanceof   // value class -> bool
	OpIn           // key obj -> bool
	OpDeleteProp   // obj -> true; A names the property
	OpDeleteIndex  // obj index -> true

	// Control flow. Jump operands are absolute instruction indices, resolved
	// by patching a placeholder once the target address is known (classic
	// backpatching, same technique the teacher's compiler uses for loop/if
	// targets).
	OpJump
	OpJumpIfFalse // pops condition
	OpJumpIfTrue  // pops condition
	OpJumpIfFalseKeep // peeks condition, used for && short-circuit
	OpJumpIfTrueKeep  // peeks condition, used for || short-circuit
	OpJumpIfNullishKeep

	// Calls and closures. Arguments are always built into a single array
	// first (OpNewArray/OpSpread, the same sequence an array literal uses)
	// rather than pushed as a variable-length run of stack slots, because a
	// spread argument's expansion count is only known at runtime; OpCall
	// therefore pops a fixed 3 operands and OpNew a fixed 2, regardless of
	// how many arguments the call site has.
	OpCall    // this callee argsArray -> result
	OpNew     // ctor argsArray -> instance
	OpClosure // push a new Closure over Protos[A], capturing Upvalues per its descriptor list
	OpReturn  // pop return value, end the current frame

	// Aggregates.
	OpNewArray  // arg1..argN -> array; A is element count
	OpSpread    // array iterable -> array (appends iterable's elements)
	OpNewObject // push an empty Object
	OpObjectSet // obj value -> obj; A names the property (non-computed key)
	OpObjectSetComputed // obj key value -> obj
	OpObjectSpread      // obj source -> obj (copies source's own properties in)
	OpConcat            // left right -> string concatenation (template literal chunks)

	// Exceptions. Handler regions are recorded out-of-band in Chunk.Handlers
	// (a compiled PC range plus its catch target and slot); finally blocks
	// are inlined at every exit point at compile time rather than modeled
	// as a third runtime construct, so OpThrow/the VM's dispatch loop only
	// ever need to find a catch target.
	OpThrow

	// Iteration protocol, backing for-of/for-in: OpIterNew materializes the
	// iterable into a plain slice up front via runtime.ArrayFromIterable
	// (spec.md's iteration model has no lazy custom-iterator protocol to
	// preserve), OpIterNext yields the next element and a has-more flag.
	OpIterNew
	OpIterNext // -> value hasMore
	OpIterNewKeys // obj -> iterator over for-in's enumerable keys

	// OpNewRegex rebuilds a /pattern/flags literal's value fresh on every
	// evaluation (A/B name the pattern/flags string constants) rather than
	// baking one shared instance into the constant pool, matching the tree
	// walker evaluating a RegexLiteral node anew each time it is reached —
	// significant since a regex with the g/y flag carries mutable state
	// (lastIndex) that must not be shared across loop iterations.
	OpNewRegex

	opCodeCount
)

var opNames = [opCodeCount]string{
	OpConstant: "CONSTANT", OpUndefined: "UNDEFINED", OpNull: "NULL",
	OpTrue: "TRUE", OpFalse: "FALSE", OpPop: "POP", OpDup: "DUP",
	OpGetLocal: "GET_LOCAL", OpSetLocal: "SET_LOCAL",
	OpGetUpvalue: "GET_UPVALUE", OpSetUpvalue: "SET_UPVALUE",
	OpGetGlobal: "GET_GLOBAL", OpSetGlobal: "SET_GLOBAL", OpDefineGlobal: "DEFINE_GLOBAL",
	OpGetProperty: "GET_PROPERTY", OpSetProperty: "SET_PROPERTY",
	OpGetIndex: "GET_INDEX", OpSetIndex: "SET_INDEX",
	OpBinary: "BINARY", OpNegate: "NEGATE", OpUnaryPlus: "UNARY_PLUS",
	OpNot: "NOT", OpBitNot: "BIT_NOT",
	OpTypeofValue: "TYPEOF_VALUE", OpTypeofIdent: "TYPEOF_IDENT",
	OpInstanceof: "INSTANCEOF", OpIn: "IN",
	OpDeleteProp: "DELETE_PROP", OpDeleteIndex: "DELETE_INDEX",
	OpJump: "JUMP", OpJumpIfFalse: "JUMP_IF_FALSE", OpJumpIfTrue: "JUMP_IF_TRUE",
	OpJumpIfFalseKeep: "JUMP_IF_FALSE_KEEP", OpJumpIfTrueKeep: "JUMP_IF_TRUE_KEEP",
	OpJumpIfNullishKeep: "JUMP_IF_NULLISH_KEEP",
	OpCall: "CALL", OpNew: "NEW", OpClosure: "CLOSURE", OpReturn: "RETURN",
	OpNewArray: "NEW_ARRAY", OpSpread: "SPREAD", OpNewObject: "NEW_OBJECT",
	OpObjectSet: "OBJECT_SET", OpObjectSetComputed: "OBJECT_SET_COMPUTED",
	OpObjectSpread: "OBJECT_SPREAD", OpConcat: "CONCAT",
	OpThrow: "THROW",
	OpIterNew: "ITER_NEW", OpIterNext: "ITER_NEXT", OpIterNewKeys: "ITER_NEW_KEYS",
	OpNewRegex: "NEW_REGEX",
}

func (op OpCode) String() string {
	if op < opCodeCount {
		if n := opNames[op]; n != "" {
			return n
		}
	}
	return fmt.Sprintf("OP(%d)", op)
}

// Instruction is one decoded bytecode instruction. Kept as a typed struct
// (operand fields, not packed bits) rather than the teacher's packed
// [opcode][A][B] 32-bit word: this VM is never profiled against the
// teacher's native-code target, and a struct slice removes an entire class
// of operand-width bugs that packed bytes would risk introducing with no
// way to catch them by running the compiler.
type Instruction struct {
	Op   OpCode
	A    int // primary operand: slot index, constant index, arg count, proto index...
	B    int // secondary operand: jump target, second constant index
	Line int
}
