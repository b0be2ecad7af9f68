package bytecode

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// Handler records one compiled try/catch region: Start/End bound the PC
// range (in the same Chunk) the region covers, and CatchPC is where
// execution resumes when a thrown value surfaces inside that range,
// binding it to CatchSlot first. Regions with no catch clause (a bare
// `try { } finally { }`) still register a Handler so the VM can find the
// thrown value and re-raise it after the inlined finally block has run;
// HasCatch distinguishes the two.
type Handler struct {
	Start, End int
	HasCatch   bool
	CatchSlot  int
	CatchPC    int
}

// Chunk is one function's (or the top-level script's) compiled code: a
// flat instruction stream, its constant pool, and the function prototypes
// its OpClosure instructions reference. Grounded on the teacher's Chunk,
// minus the Helpers/Classes/Records side tables the teacher's DWScript
// compiler needed for native code generation metadata this engine has no
// equivalent of.
type Chunk struct {
	Name       string
	Code       []Instruction
	Constants  []runtime.Value
	Handlers   []Handler
	Protos     []*Proto
	LocalCount int
}

func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

func (c *Chunk) addConstant(v runtime.Value) int {
	for i, existing := range c.Constants {
		if sameConstant(existing, v) {
			return i
		}
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func sameConstant(a, b runtime.Value) bool {
	switch av := a.(type) {
	case runtime.Number:
		bv, ok := b.(runtime.Number)
		return ok && av == bv
	case runtime.String:
		bv, ok := b.(runtime.String)
		return ok && av == bv
	default:
		return false
	}
}

func (c *Chunk) emit(op OpCode, a, b, line int) int {
	c.Code = append(c.Code, Instruction{Op: op, A: a, B: b, Line: line})
	return len(c.Code) - 1
}

// UpvalueDesc tells a Proto's Closure where to find one of its free
// variables when the closure is created: either a slot in the directly
// enclosing call frame's Locals (IsLocal true), or an upvalue the
// enclosing closure itself already captured (IsLocal false, Index then
// indexes that closure's own Upvalues) — the same two-case scheme the
// teacher's Compiler upvalue struct and clox-style VMs use.
type UpvalueDesc struct {
	Index   int
	IsLocal bool
}

// Proto is a compiled function prototype: its code plus the static
// description of how to build the Closure values that reference it.
// Separate from Closure because one Proto can be instantiated into many
// Closures (once per time the defining function literal is evaluated).
type Proto struct {
	Name      string
	Params    []runtime.ParamBinding
	Chunk     *Chunk
	Upvalues  []UpvalueDesc
	IsArrow   bool
	Generator bool
	Async     bool
}

// Upvalue is a captured-variable cell. While Location is non-nil it
// aliases a live slot in some call frame's Locals slice (each call frame
// allocates its own Locals slice, so the pointer stays valid for as long
// as any closure references it, with no open/closed bookkeeping needed);
// Closed holds the value once the cell should no longer track a frame
// (used only for the rare case of explicitly detaching a cell — ordinary
// closures over a still-running enclosing call just keep Location set).
type Upvalue struct {
	Location *runtime.Value
	Closed   runtime.Value
}

func (u *Upvalue) Get() runtime.Value {
	if u.Location != nil {
		return *u.Location
	}
	return u.Closed
}

func (u *Upvalue) Set(v runtime.Value) {
	if u.Location != nil {
		*u.Location = v
		return
	}
	u.Closed = v
}

// Closure is a compiled function value: a Proto plus the Upvalue cells it
// captured at creation time. Implements runtime.Value directly so it
// flows through internal/runtime's facade (Call, property access, ...)
// exactly like an interpreted *runtime.Function.
type Closure struct {
	Proto    *Proto
	Upvalues []*Upvalue
}

func (c *Closure) Kind() runtime.ValueKind { return runtime.KindFunction }
func (c *Closure) String() string {
	name := c.Proto.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("function %s() { [native code] }", name)
}
