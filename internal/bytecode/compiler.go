package bytecode

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/runtime"
	"github.com/scriptlang/tsforge/internal/token"
)

// localVar is one compile-time local binding: which source name it holds,
// the lexical scope depth it was declared at, and the Frame.Locals slot it
// occupies. Slots are never reused once a scope exits (unlike the
// teacher's Compiler, which recycles slot numbers as blocks close) because
// each call allocates its own fresh Locals slice; reuse only matters when
// minimizing a shared value stack's footprint, which this register-style
// VM does not have.
type localVar struct {
	name  string
	depth int
	slot  int
}

// upvalueRef is a resolved free-variable reference, recorded on the
// Compiler building the closure that needs it; consumed as Proto.Upvalues
// once that function finishes compiling.
type upvalueRef struct {
	index   int
	isLocal bool
}

// loopCtx tracks one enclosing loop's break/continue patch sites so a
// `break label;`/`continue label;` nested arbitrarily deep inside it can
// still resolve to the right jump target, mirroring the teacher's
// loopContext stack in compiler_core.go.
type loopCtx struct {
	label         string
	breakJumps    []int
	continueJumps []int
	isSwitch      bool // continue never targets a switch, only break does
	finallyDepth  int  // len(Compiler.finallyStack) at loop entry; break/continue only re-runs finally blocks pushed after that
}

// Compiler lowers one function body (or the top-level script) into a
// Chunk. Grounded on the teacher's Compiler: locals/scopeDepth tracking
// plus an `enclosing` pointer chain (absent from the teacher, which never
// compiled nested closures) so a nested function's free-variable
// references walk outward the way clox-style upvalue resolution does.
type Compiler struct {
	enclosing  *Compiler
	chunk      *Chunk
	locals     []localVar
	upvalues   []upvalueRef
	scopeDepth int
	nextSlot   int
	loops      []*loopCtx
	finallyStack []*ast.Block // enclosing try/finally blocks, innermost last; see runFinallyRange
	isArrow    bool
	isTopLevel bool
	resultSlot int // top-level only: slot holding the script's last expression-statement value
	line       int
}

// NewCompiler creates the compiler for the top-level script. Like every
// non-arrow function, slot 0 is `this` (Undefined at the module level) and
// slot 1 is `arguments`, so a `this`/`arguments` reference inside top-level
// code resolves the same way it would inside a function body instead of
// needing a special case.
func NewCompiler(name string) *Compiler {
	c := &Compiler{chunk: NewChunk(name), isTopLevel: true}
	c.declareLocal("this")
	c.declareLocal("arguments")
	c.resultSlot = c.declareLocal("%result")
	return c
}

func newChildCompiler(enclosing *Compiler, name string, isArrow bool) *Compiler {
	c := &Compiler{enclosing: enclosing, chunk: NewChunk(name), isArrow: isArrow}
	if !isArrow {
		c.declareLocal("this")
		c.declareLocal("arguments")
	}
	return c
}

func (c *Compiler) emit(op OpCode, a, b int) int { return c.chunk.emit(op, a, b, c.line) }

func (c *Compiler) emitJump(op OpCode) int { return c.emit(op, 0, -1) }

func (c *Compiler) patchJump(idx int) { c.chunk.Code[idx].B = len(c.chunk.Code) }

func (c *Compiler) here() int { return len(c.chunk.Code) }

func (c *Compiler) emitLoop(op OpCode, target int) { c.emit(op, 0, target) }

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) declareLocal(name string) int {
	slot := c.nextSlot
	c.nextSlot++
	c.locals = append(c.locals, localVar{name: name, depth: c.scopeDepth, slot: slot})
	if c.nextSlot > c.chunk.LocalCount {
		c.chunk.LocalCount = c.nextSlot
	}
	return slot
}

func (c *Compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return c.locals[i].slot, true
		}
	}
	return 0, false
}

// resolveUpvalue walks the enclosing-compiler chain clox-style: a hit in
// the immediately enclosing function's locals captures IsLocal true; a hit
// further out captures the enclosing function's own upvalue by index
// instead, chaining the capture one hop at a time so every intermediate
// closure also carries it.
func (c *Compiler) resolveUpvalue(name string) (int, bool) {
	if c.enclosing == nil {
		return 0, false
	}
	if slot, ok := c.enclosing.resolveLocal(name); ok {
		return c.addUpvalue(slot, true), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(name); ok {
		return c.addUpvalue(idx, false), true
	}
	return 0, false
}

func (c *Compiler) addUpvalue(index int, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(c.upvalues) - 1
}

func (c *Compiler) currentLoop() *loopCtx {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

func (c *Compiler) findLoop(label string) *loopCtx {
	for i := len(c.loops) - 1; i >= 0; i-- {
		if label == "" || c.loops[i].label == label {
			return c.loops[i]
		}
	}
	return nil
}

// Compile lowers a whole script into its top-level Chunk.
func Compile(prog *ast.Program) (*Chunk, error) {
	c := NewCompiler("<script>")
	c.beginScope()
	if err := c.compileStatements(prog.Statements); err != nil {
		return nil, err
	}
	c.endScope()
	c.emit(OpGetLocal, c.resultSlot, 0)
	c.emit(OpReturn, 0, 0)
	return c.chunk, nil
}

// compileFunctionBody compiles params and body into a fresh Proto, used by
// both function declarations/expressions and arrow functions. The VM binds
// each declared parameter's slot positionally from the raw argument list
// before running this chunk (plain copy, Undefined past the end, the
// trailing rest parameter collecting whatever remains) — this function
// only needs to additionally compile a defaulting prologue, since a
// default expression is arbitrary script code the VM cannot evaluate
// without compiling it: for each non-rest parameter with a default, check
// whether the bound value is still Undefined and, if so, compute and
// overwrite it, mirroring bindArgs' "omitted or explicitly undefined falls
// back to Default" rule.
func (c *Compiler) compileFunctionBody(name string, params []ast.Param, body *ast.Block, isArrow, async, generator bool) (*Proto, error) {
	fc := newChildCompiler(c, name, isArrow)
	fc.beginScope()
	runtimeParams := make([]runtime.ParamBinding, len(params))
	for idx, p := range params {
		runtimeParams[idx] = runtime.ParamBinding{Name: p.Name, Default: p.Default, Rest: p.Rest, Optional: p.Optional}
		slot := fc.declareLocal(p.Name)
		if p.Rest || p.Default == nil {
			continue
		}
		fc.emit(OpGetLocal, slot, 0)
		fc.emit(OpUndefined, 0, 0)
		fc.emit(OpBinary, int(token.STRICT_EQ), 0)
		skip := fc.emitJump(OpJumpIfFalse)
		if err := fc.compileExpression(p.Default); err != nil {
			return nil, err
		}
		fc.emit(OpSetLocal, slot, 0)
		fc.patchJump(skip)
	}
	if err := fc.compileStatements(body.Statements); err != nil {
		return nil, err
	}
	fc.emit(OpUndefined, 0, 0)
	fc.emit(OpReturn, 0, 0)
	fc.endScope()
	proto := &Proto{
		Name: name, Params: runtimeParams, Chunk: fc.chunk,
		IsArrow: isArrow, Async: async, Generator: generator,
	}
	for _, uv := range fc.upvalues {
		proto.Upvalues = append(proto.Upvalues, UpvalueDesc{Index: uv.index, IsLocal: uv.isLocal})
	}
	return proto, nil
}

// unsupported reports an AST construct this engine deliberately does not
// lower to bytecode (see DESIGN.md: classes, generators, async/await,
// `using`, namespaces remain interpreter-only for now). Returning an error
// here means pkg/tsforge falls back to the interpreter for a script that
// uses one of these, rather than the compiler silently miscompiling it.
func unsupported(what string) error {
	return fmt.Errorf("bytecode: %s is not yet lowered to bytecode (run this script with the interpreter)", what)
}
