package bytecode

import (
	"fmt"
	"math/big"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/builtins"
	"github.com/scriptlang/tsforge/internal/runtime"
	"github.com/scriptlang/tsforge/internal/token"
)

// compileExpression lowers one expression, leaving exactly one value on the
// stack. Grounded statement-for-statement on interpreter/expressions.go's
// eval switch so both engines agree on evaluation order and short-circuit
// semantics.
func (c *Compiler) compileExpression(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Literal:
		return c.compileLiteral(n)
	case *ast.Variable:
		return c.compileLoadName(n.Name)
	case *ast.This:
		return c.compileLoadName("this")
	case *ast.Super:
		return unsupported("bare super expression")
	case *ast.Binary:
		return c.compileBinary(n)
	case *ast.Logical:
		return c.compileLogical(n)
	case *ast.NullishCoalescing:
		return c.compileNullish(n)
	case *ast.Ternary:
		return c.compileTernary(n)
	case *ast.Unary:
		return c.compileUnary(n)
	case *ast.PrefixIncrement:
		return c.compileIncrement(n.Operand, n.Op, true)
	case *ast.PostfixIncrement:
		return c.compileIncrement(n.Operand, n.Op, false)
	case *ast.Assign:
		return c.compileAssign(n)
	case *ast.CompoundAssign:
		return c.compileCompoundAssign(n)
	case *ast.LogicalAssign:
		return c.compileLogicalAssign(n)
	case *ast.Call:
		return c.compileCall(n)
	case *ast.New:
		return c.compileNew(n)
	case *ast.Get:
		return c.compileGet(n)
	case *ast.Set:
		return c.compileSet(n)
	case *ast.GetIndex:
		return c.compileGetIndex(n)
	case *ast.SetIndex:
		return c.compileSetIndex(n)
	case *ast.CompoundSet:
		return c.compileCompoundSet(n)
	case *ast.CompoundSetIndex:
		return c.compileCompoundSetIndex(n)
	case *ast.LogicalSet:
		return c.compileLogicalSet(n)
	case *ast.LogicalSetIndex:
		return c.compileLogicalSetIndex(n)
	case *ast.ArrayLiteral:
		return c.compileArrayLiteral(n)
	case *ast.ObjectLiteral:
		return c.compileObjectLiteral(n)
	case *ast.Spread:
		return c.compileExpression(n.Value) // evaluated by the containing call/array/object form
	case *ast.Grouping:
		return c.compileExpression(n.Inner)
	case *ast.ArrowFunction:
		return c.compileArrowFunction(n)
	case *ast.TemplateLiteral:
		return c.compileTemplateLiteral(n)
	case *ast.TypeAssertion:
		return c.compileExpression(n.Expr) // erased at runtime
	case *ast.Await:
		return unsupported("await expressions")
	case *ast.Yield:
		return unsupported("yield expressions")
	case *ast.DynamicImport:
		return unsupported("dynamic import")
	case *ast.RegexLiteral:
		return c.compileRegexLiteral(n)
	default:
		return unsupported("expression")
	}
}

func (c *Compiler) compileLiteral(n *ast.Literal) error {
	switch n.Kind {
	case ast.LitNumber:
		c.emit(OpConstant, c.chunk.addConstant(runtime.Number(n.Num)), 0)
	case ast.LitString:
		c.emit(OpConstant, c.chunk.addConstant(runtime.String(n.Str)), 0)
	case ast.LitBoolean:
		if n.Bool {
			c.emit(OpTrue, 0, 0)
		} else {
			c.emit(OpFalse, 0, 0)
		}
	case ast.LitNull:
		c.emit(OpNull, 0, 0)
	case ast.LitUndefined:
		c.emit(OpUndefined, 0, 0)
	case ast.LitBigInt:
		bi, ok := new(big.Int).SetString(n.BigIntText, 10)
		if !ok {
			return fmt.Errorf("bytecode: invalid BigInt literal %q", n.BigIntText)
		}
		c.emit(OpConstant, c.chunk.addConstant(runtime.BigInt{Int: bi}), 0)
	}
	return nil
}

// compileLoadName resolves name local -> upvalue -> global, mirroring
// env.Get's scope-chain walk in the tree walker.
func (c *Compiler) compileLoadName(name string) error {
	if slot, ok := c.resolveLocal(name); ok {
		c.emit(OpGetLocal, slot, 0)
		return nil
	}
	if idx, ok := c.resolveUpvalue(name); ok {
		c.emit(OpGetUpvalue, idx, 0)
		return nil
	}
	c.emit(OpGetGlobal, c.chunk.addConstant(runtime.String(name)), 0)
	return nil
}

// compileStoreName is compileLoadName's write-side counterpart, used by
// every assignment form whose target is a bare identifier. Each of
// OpSetLocal/OpSetUpvalue/OpSetGlobal pops the value it stores.
func (c *Compiler) compileStoreName(name string) {
	if slot, ok := c.resolveLocal(name); ok {
		c.emit(OpSetLocal, slot, 0)
		return
	}
	if idx, ok := c.resolveUpvalue(name); ok {
		c.emit(OpSetUpvalue, idx, 0)
		return
	}
	c.emit(OpSetGlobal, c.chunk.addConstant(runtime.String(name)), 0)
}

func (c *Compiler) compileBinary(n *ast.Binary) error {
	if err := c.compileExpression(n.Left); err != nil {
		return err
	}
	if err := c.compileExpression(n.Right); err != nil {
		return err
	}
	switch n.Op {
	case token.INSTANCEOF:
		c.emit(OpInstanceof, 0, 0)
	case token.IN:
		c.emit(OpIn, 0, 0)
	default:
		c.emit(OpBinary, int(n.Op), 0)
	}
	return nil
}

// compileLogical compiles && / || with peek-don't-pop short-circuit jumps:
// the left operand stays on the stack as the expression's result when it
// short-circuits, matching evalLogical returning left without evaluating
// right.
func (c *Compiler) compileLogical(n *ast.Logical) error {
	if err := c.compileExpression(n.Left); err != nil {
		return err
	}
	var shortCircuit int
	if n.Op == token.AND_AND {
		shortCircuit = c.emitJump(OpJumpIfFalseKeep)
	} else {
		shortCircuit = c.emitJump(OpJumpIfTrueKeep)
	}
	c.emit(OpPop, 0, 0)
	if err := c.compileExpression(n.Right); err != nil {
		return err
	}
	c.patchJump(shortCircuit)
	return nil
}

func (c *Compiler) compileNullish(n *ast.NullishCoalescing) error {
	if err := c.compileExpression(n.Left); err != nil {
		return err
	}
	shortCircuit := c.emitJump(OpJumpIfNullishKeep)
	c.emit(OpPop, 0, 0)
	if err := c.compileExpression(n.Right); err != nil {
		return err
	}
	c.patchJump(shortCircuit)
	return nil
}

func (c *Compiler) compileTernary(n *ast.Ternary) error {
	if err := c.compileExpression(n.Cond); err != nil {
		return err
	}
	elseJump := c.emitJump(OpJumpIfFalse)
	if err := c.compileExpression(n.Then); err != nil {
		return err
	}
	endJump := c.emitJump(OpJump)
	c.patchJump(elseJump)
	if err := c.compileExpression(n.Else); err != nil {
		return err
	}
	c.patchJump(endJump)
	return nil
}

func (c *Compiler) compileUnary(n *ast.Unary) error {
	if n.Op == token.TYPEOF {
		if v, ok := n.Operand.(*ast.Variable); ok {
			return c.compileTypeofIdent(v.Name)
		}
		if err := c.compileExpression(n.Operand); err != nil {
			return err
		}
		c.emit(OpTypeofValue, 0, 0)
		return nil
	}
	if n.Op == token.DELETE {
		return c.compileDelete(n.Operand)
	}
	if err := c.compileExpression(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case token.MINUS:
		c.emit(OpNegate, 0, 0)
	case token.PLUS:
		c.emit(OpUnaryPlus, 0, 0)
	case token.BANG:
		c.emit(OpNot, 0, 0)
	case token.TILDE:
		c.emit(OpBitNot, 0, 0)
	case token.VOID:
		c.emit(OpPop, 0, 0)
		c.emit(OpUndefined, 0, 0)
	default:
		return unsupported("unary operator " + n.Op.String())
	}
	return nil
}

// compileTypeofIdent special-cases `typeof someIdentifier` the way
// evalUnary does: an unbound global name yields "undefined" instead of
// throwing a ReferenceError, which compileLoadName's OpGetGlobal path
// cannot do without this dedicated opcode.
func (c *Compiler) compileTypeofIdent(name string) error {
	if slot, ok := c.resolveLocal(name); ok {
		c.emit(OpGetLocal, slot, 0)
		c.emit(OpTypeofValue, 0, 0)
		return nil
	}
	if idx, ok := c.resolveUpvalue(name); ok {
		c.emit(OpGetUpvalue, idx, 0)
		c.emit(OpTypeofValue, 0, 0)
		return nil
	}
	c.emit(OpTypeofIdent, c.chunk.addConstant(runtime.String(name)), 0)
	return nil
}

func (c *Compiler) compileDelete(target ast.Expr) error {
	switch t := target.(type) {
	case *ast.Get:
		if err := c.compileExpression(t.Object); err != nil {
			return err
		}
		c.emit(OpDeleteProp, c.chunk.addConstant(runtime.String(t.Name)), 0)
	case *ast.GetIndex:
		if err := c.compileExpression(t.Object); err != nil {
			return err
		}
		if err := c.compileExpression(t.Index); err != nil {
			return err
		}
		c.emit(OpDeleteIndex, 0, 0)
	default:
		c.emit(OpTrue, 0, 0)
	}
	return nil
}

// compileIncrement mirrors evalIncrement/assignTo: the operand is read once
// to get the old value, coerced to a number (OpUnaryPlus, matching
// runtime.ToNumber so `"5"++` adds numerically instead of string-
// concatenating), then the receiver is compiled a second time to store the
// result — a deliberate duplicate-evaluation match for property/index
// operands, since assignTo independently re-evaluates Object/Index rather
// than reusing the receiver evaluated while reading the old value.
func (c *Compiler) compileIncrement(operand ast.Expr, op token.Type, prefix bool) error {
	delta := 1.0
	if op == token.MINUS_MINUS {
		delta = -1.0
	}
	if err := c.compileExpression(operand); err != nil {
		return err
	}
	c.emit(OpUnaryPlus, 0, 0)
	c.emit(OpConstant, c.chunk.addConstant(runtime.Number(delta)), 0)
	c.emit(OpBinary, int(token.PLUS), 0)
	newScratch := c.declareLocal("%incnew")
	c.emit(OpSetLocal, newScratch, 0)

	switch t := operand.(type) {
	case *ast.Variable:
		c.emit(OpGetLocal, newScratch, 0)
		c.compileStoreName(t.Name)
	case *ast.Get:
		if err := c.compileExpression(t.Object); err != nil {
			return err
		}
		c.emit(OpGetLocal, newScratch, 0)
		c.emit(OpSetProperty, c.chunk.addConstant(runtime.String(t.Name)), 0)
		c.emit(OpPop, 0, 0)
	case *ast.GetIndex:
		if err := c.compileExpression(t.Object); err != nil {
			return err
		}
		if err := c.compileExpression(t.Index); err != nil {
			return err
		}
		c.emit(OpGetLocal, newScratch, 0)
		c.emit(OpSetIndex, 0, 0)
		c.emit(OpPop, 0, 0)
	default:
		return unsupported("increment target")
	}

	if prefix {
		c.emit(OpGetLocal, newScratch, 0)
		return nil
	}
	c.emit(OpGetLocal, newScratch, 0)
	c.emit(OpConstant, c.chunk.addConstant(runtime.Number(-delta)), 0)
	c.emit(OpBinary, int(token.PLUS), 0)
	return nil
}

func (c *Compiler) compileAssign(n *ast.Assign) error {
	if err := c.compileExpression(n.Value); err != nil {
		return err
	}
	switch t := n.Target.(type) {
	case *ast.Variable:
		c.emit(OpDup, 0, 0)
		c.compileStoreName(t.Name)
		return nil
	case *ast.Get:
		return c.storeValueThenSetProperty(t.Object, t.Name)
	case *ast.GetIndex:
		return c.storeValueThenSetIndex(t.Object, t.Index)
	default:
		return unsupported("assignment target")
	}
}

// storeValueThenSetProperty/-Index back Assign's fallback Get/GetIndex
// targets: the value is already computed (top of stack) before the
// receiver evaluates, matching assignTo's single evaluation of the
// receiver after the caller (evalAssign) already evaluated the value.
func (c *Compiler) storeValueThenSetProperty(objExpr ast.Expr, name string) error {
	scratch := c.declareLocal("%asgnv")
	c.emit(OpSetLocal, scratch, 0)
	if err := c.compileExpression(objExpr); err != nil {
		return err
	}
	c.emit(OpGetLocal, scratch, 0)
	c.emit(OpSetProperty, c.chunk.addConstant(runtime.String(name)), 0)
	return nil
}

func (c *Compiler) storeValueThenSetIndex(objExpr, idxExpr ast.Expr) error {
	scratch := c.declareLocal("%asgnv")
	c.emit(OpSetLocal, scratch, 0)
	if err := c.compileExpression(objExpr); err != nil {
		return err
	}
	if err := c.compileExpression(idxExpr); err != nil {
		return err
	}
	c.emit(OpGetLocal, scratch, 0)
	c.emit(OpSetIndex, 0, 0)
	return nil
}

// compileSet/compileSetIndex lower the parser's directly-emitted property/
// index assignment nodes. Set matches Assign+Get's value-then-object order;
// SetIndex evaluates object, index, value in that order (evalSetIndex's
// order, distinct from assignTo's GetIndex case).
func (c *Compiler) compileSet(n *ast.Set) error {
	if err := c.compileExpression(n.Value); err != nil {
		return err
	}
	return c.storeValueThenSetProperty(n.Object, n.Name)
}

func (c *Compiler) compileSetIndex(n *ast.SetIndex) error {
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	if err := c.compileExpression(n.Index); err != nil {
		return err
	}
	if err := c.compileExpression(n.Value); err != nil {
		return err
	}
	c.emit(OpSetIndex, 0, 0)
	return nil
}

func compoundBaseOp(op token.Type) token.Type {
	switch op {
	case token.PLUS_ASSIGN:
		return token.PLUS
	case token.MINUS_ASSIGN:
		return token.MINUS
	case token.STAR_ASSIGN:
		return token.STAR
	case token.SLASH_ASSIGN:
		return token.SLASH
	case token.PERCENT_ASSIGN:
		return token.PERCENT
	case token.STAR_STAR_ASSIGN:
		return token.STAR_STAR
	case token.AMP_ASSIGN:
		return token.AMP
	case token.PIPE_ASSIGN:
		return token.PIPE
	case token.CARET_ASSIGN:
		return token.CARET
	case token.SHL_ASSIGN:
		return token.SHL
	case token.SHR_ASSIGN:
		return token.SHR
	case token.USHR_ASSIGN:
		return token.USHR
	default:
		return token.ILLEGAL
	}
}

func (c *Compiler) compileCompoundAssign(n *ast.CompoundAssign) error {
	switch t := n.Target.(type) {
	case *ast.Variable:
		if err := c.compileLoadName(t.Name); err != nil {
			return err
		}
		if err := c.compileExpression(n.Value); err != nil {
			return err
		}
		c.emit(OpBinary, int(compoundBaseOp(n.Op)), 0)
		c.emit(OpDup, 0, 0)
		c.compileStoreName(t.Name)
		return nil
	case *ast.Get:
		return c.compileCompoundSet(&ast.CompoundSet{Loc: n.Loc, Op: n.Op, Object: t.Object, Name: t.Name, Value: n.Value})
	case *ast.GetIndex:
		return c.compileCompoundSetIndex(&ast.CompoundSetIndex{Loc: n.Loc, Op: n.Op, Object: t.Object, Index: t.Index, Value: n.Value})
	default:
		return unsupported("compound assignment target")
	}
}

// compileCompoundSet evaluates Object once (stashed in a scratch local so
// it survives past the property read and the right-hand side), matching
// evalCompoundSet's single receiver evaluation.
func (c *Compiler) compileCompoundSet(n *ast.CompoundSet) error {
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	objScratch := c.declareLocal("%csobj")
	c.emit(OpDup, 0, 0)
	c.emit(OpSetLocal, objScratch, 0)
	nameIdx := c.chunk.addConstant(runtime.String(n.Name))
	c.emit(OpGetProperty, nameIdx, 0)
	if err := c.compileExpression(n.Value); err != nil {
		return err
	}
	c.emit(OpBinary, int(compoundBaseOp(n.Op)), 0)
	resultScratch := c.declareLocal("%csres")
	c.emit(OpSetLocal, resultScratch, 0)
	c.emit(OpGetLocal, objScratch, 0)
	c.emit(OpGetLocal, resultScratch, 0)
	c.emit(OpSetProperty, nameIdx, 0)
	return nil
}

func (c *Compiler) compileCompoundSetIndex(n *ast.CompoundSetIndex) error {
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	objScratch := c.declareLocal("%csiobj")
	c.emit(OpDup, 0, 0)
	c.emit(OpSetLocal, objScratch, 0)
	if err := c.compileExpression(n.Index); err != nil {
		return err
	}
	idxScratch := c.declareLocal("%csiidx")
	c.emit(OpDup, 0, 0)
	c.emit(OpSetLocal, idxScratch, 0)
	c.emit(OpGetIndex, 0, 0)
	if err := c.compileExpression(n.Value); err != nil {
		return err
	}
	c.emit(OpBinary, int(compoundBaseOp(n.Op)), 0)
	resultScratch := c.declareLocal("%csires")
	c.emit(OpSetLocal, resultScratch, 0)
	c.emit(OpGetLocal, objScratch, 0)
	c.emit(OpGetLocal, idxScratch, 0)
	c.emit(OpGetLocal, resultScratch, 0)
	c.emit(OpSetIndex, 0, 0)
	return nil
}

func (c *Compiler) compileLogicalAssign(n *ast.LogicalAssign) error {
	switch t := n.Target.(type) {
	case *ast.Variable:
		return c.compileLogicalAssignName(t.Name, n.Op, n.Value)
	case *ast.Get:
		return c.compileLogicalSet(&ast.LogicalSet{Loc: n.Loc, Op: n.Op, Object: t.Object, Name: t.Name, Value: n.Value})
	case *ast.GetIndex:
		return c.compileLogicalSetIndex(&ast.LogicalSetIndex{Loc: n.Loc, Op: n.Op, Object: t.Object, Index: t.Index, Value: n.Value})
	default:
		return unsupported("logical assignment target")
	}
}

// compileLogicalAssignName and its Set/SetIndex siblings below all share one
// shape: read old, gate assignment on old's truthiness/nullishness with a
// peek-jump so the short-circuit path keeps old as the result (mirroring
// evalLogicalAssign/evalLogicalSet/evalLogicalSetIndex returning old
// unevaluated-right), and the assign path discards old, computes the new
// value, and stores it, which also becomes the result.
func (c *Compiler) compileLogicalAssignName(name string, op token.Type, valueExpr ast.Expr) error {
	if err := c.compileLoadName(name); err != nil {
		return err
	}
	assign := func() error {
		c.emit(OpPop, 0, 0)
		if err := c.compileExpression(valueExpr); err != nil {
			return err
		}
		c.emit(OpDup, 0, 0)
		c.compileStoreName(name)
		return nil
	}
	return c.emitLogicalGate(op, assign)
}

func (c *Compiler) compileLogicalSet(n *ast.LogicalSet) error {
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	objScratch := c.declareLocal("%lsobj")
	c.emit(OpDup, 0, 0)
	c.emit(OpSetLocal, objScratch, 0)
	nameIdx := c.chunk.addConstant(runtime.String(n.Name))
	c.emit(OpGetProperty, nameIdx, 0)
	assign := func() error {
		c.emit(OpPop, 0, 0)
		if err := c.compileExpression(n.Value); err != nil {
			return err
		}
		resultScratch := c.declareLocal("%lsres")
		c.emit(OpSetLocal, resultScratch, 0)
		c.emit(OpGetLocal, objScratch, 0)
		c.emit(OpGetLocal, resultScratch, 0)
		c.emit(OpSetProperty, nameIdx, 0)
		return nil
	}
	return c.emitLogicalGate(n.Op, assign)
}

func (c *Compiler) compileLogicalSetIndex(n *ast.LogicalSetIndex) error {
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	objScratch := c.declareLocal("%lsiobj")
	c.emit(OpDup, 0, 0)
	c.emit(OpSetLocal, objScratch, 0)
	if err := c.compileExpression(n.Index); err != nil {
		return err
	}
	idxScratch := c.declareLocal("%lsiidx")
	c.emit(OpDup, 0, 0)
	c.emit(OpSetLocal, idxScratch, 0)
	c.emit(OpGetIndex, 0, 0)
	assign := func() error {
		c.emit(OpPop, 0, 0)
		if err := c.compileExpression(n.Value); err != nil {
			return err
		}
		resultScratch := c.declareLocal("%lsires")
		c.emit(OpSetLocal, resultScratch, 0)
		c.emit(OpGetLocal, objScratch, 0)
		c.emit(OpGetLocal, idxScratch, 0)
		c.emit(OpGetLocal, resultScratch, 0)
		c.emit(OpSetIndex, 0, 0)
		return nil
	}
	return c.emitLogicalGate(n.Op, assign)
}

// emitLogicalGate expects old already on the stack (one plain push, not
// peeked) and wires up the three LogicalAssign operators around an assign
// callback that leaves the final (assigned) value on the stack:
//   - &&=: skip assigning when old is falsy (OpJumpIfFalseKeep keeps old).
//   - ||=: skip assigning when old is truthy (OpJumpIfTrueKeep keeps old).
//   - ??=: assign only when old is nullish; there is no JumpIfNotNullish
//     opcode, so the nullish check instead jumps *into* the assign branch,
//     and the fallthrough (not nullish) becomes the short-circuit path.
func (c *Compiler) emitLogicalGate(op token.Type, assign func() error) error {
	switch op {
	case token.QQ_ASSIGN:
		doAssign := c.emitJump(OpJumpIfNullishKeep)
		skipEnd := c.emitJump(OpJump)
		c.patchJump(doAssign)
		if err := assign(); err != nil {
			return err
		}
		toEnd := c.emitJump(OpJump)
		c.patchJump(skipEnd)
		c.patchJump(toEnd)
		return nil
	default:
		var skip int
		if op == token.AND_ASSIGN {
			skip = c.emitJump(OpJumpIfFalseKeep)
		} else {
			skip = c.emitJump(OpJumpIfTrueKeep)
		}
		if err := assign(); err != nil {
			return err
		}
		c.patchJump(skip)
		return nil
	}
}

// compileGet reads a property, handling optional chaining by testing the
// receiver for nullish before the property lookup and yielding undefined
// instead (evalGet's Optional short-circuit); super.method access is
// out of scope here since class bodies never reach the bytecode compiler.
func (c *Compiler) compileGet(n *ast.Get) error {
	if _, ok := n.Object.(*ast.Super); ok {
		return unsupported("super property access")
	}
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	nameIdx := c.chunk.addConstant(runtime.String(n.Name))
	if !n.Optional {
		c.emit(OpGetProperty, nameIdx, 0)
		return nil
	}
	nullishJump := c.emitJump(OpJumpIfNullishKeep)
	c.emit(OpGetProperty, nameIdx, 0)
	doneJump := c.emitJump(OpJump)
	c.patchJump(nullishJump)
	c.emit(OpPop, 0, 0)
	c.emit(OpUndefined, 0, 0)
	c.patchJump(doneJump)
	return nil
}

func (c *Compiler) compileGetIndex(n *ast.GetIndex) error {
	if err := c.compileExpression(n.Object); err != nil {
		return err
	}
	if !n.Optional {
		if err := c.compileExpression(n.Index); err != nil {
			return err
		}
		c.emit(OpGetIndex, 0, 0)
		return nil
	}
	nullishJump := c.emitJump(OpJumpIfNullishKeep)
	if err := c.compileExpression(n.Index); err != nil {
		return err
	}
	c.emit(OpGetIndex, 0, 0)
	doneJump := c.emitJump(OpJump)
	c.patchJump(nullishJump)
	c.emit(OpPop, 0, 0)
	c.emit(OpUndefined, 0, 0)
	c.patchJump(doneJump)
	return nil
}

// compileElements builds a single array value from a literal's or a call
// site's element list, folding Spread entries in one at a time via
// OpSpread (array iterable -> array) so the spread's expansion count,
// unknowable at compile time, never needs to be reflected in an operand.
// Plain elements are wrapped into a one-element array and folded in the
// same way, keeping the whole sequence uniform regardless of where a
// spread falls among the elements.
func (c *Compiler) compileElements(elements []ast.Expr) error {
	c.emit(OpNewArray, 0, 0)
	for _, el := range elements {
		if sp, ok := el.(*ast.Spread); ok {
			if err := c.compileExpression(sp.Value); err != nil {
				return err
			}
			c.emit(OpSpread, 0, 0)
			continue
		}
		if err := c.compileExpression(el); err != nil {
			return err
		}
		c.emit(OpNewArray, 1, 0)
		c.emit(OpSpread, 0, 0)
	}
	return nil
}

func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteral) error {
	return c.compileElements(n.Elements)
}

func (c *Compiler) compileObjectLiteral(n *ast.ObjectLiteral) error {
	c.emit(OpNewObject, 0, 0)
	for _, p := range n.Properties {
		if p.Spread {
			if err := c.compileExpression(p.Value); err != nil {
				return err
			}
			c.emit(OpObjectSpread, 0, 0)
			continue
		}
		if p.Computed != nil {
			if err := c.compileExpression(p.Computed); err != nil {
				return err
			}
			if err := c.compileExpression(p.Value); err != nil {
				return err
			}
			c.emit(OpObjectSetComputed, 0, 0)
			continue
		}
		if err := c.compileExpression(p.Value); err != nil {
			return err
		}
		c.emit(OpObjectSet, c.chunk.addConstant(runtime.String(p.Key)), 0)
	}
	return nil
}

func (c *Compiler) compileTemplateLiteral(n *ast.TemplateLiteral) error {
	if len(n.Chunks) == 0 {
		c.emit(OpConstant, c.chunk.addConstant(runtime.String("")), 0)
		return nil
	}
	first := n.Chunks[0]
	c.emit(OpConstant, c.chunk.addConstant(runtime.String(first.Text)), 0)
	if first.Expr != nil {
		if err := c.compileExpression(first.Expr); err != nil {
			return err
		}
		c.emit(OpConcat, 0, 0)
	}
	for _, ch := range n.Chunks[1:] {
		c.emit(OpConstant, c.chunk.addConstant(runtime.String(ch.Text)), 0)
		c.emit(OpConcat, 0, 0)
		if ch.Expr != nil {
			if err := c.compileExpression(ch.Expr); err != nil {
				return err
			}
			c.emit(OpConcat, 0, 0)
		}
	}
	return nil
}

// compileRegexLiteral validates the pattern/flags at compile time (so a bad
// regex surfaces as a SyntaxError before the script ever runs) but defers
// actually constructing the value to OpNewRegex at every evaluation,
// matching evalRegexLiteral calling compileRegex afresh each time rather
// than caching one shared instance (relevant once the g/y flags carry
// mutable lastIndex state across loop iterations).
func (c *Compiler) compileRegexLiteral(n *ast.RegexLiteral) error {
	if _, err := builtins.CompileRegExp(n.Pattern, n.Flags); err != nil {
		return fmt.Errorf("bytecode: SyntaxError: %s", err.Error())
	}
	patIdx := c.chunk.addConstant(runtime.String(n.Pattern))
	flagsIdx := c.chunk.addConstant(runtime.String(n.Flags))
	c.emit(OpNewRegex, patIdx, flagsIdx)
	return nil
}

func (c *Compiler) compileArrowFunction(n *ast.ArrowFunction) error {
	body := n.Body
	if body == nil {
		body = &ast.Block{Statements: []ast.Stmt{&ast.Return{Value: n.ExprBody}}}
	}
	block, ok := body.(*ast.Block)
	if !ok {
		block = &ast.Block{Statements: []ast.Stmt{body}}
	}
	return c.emitClosure("", n.Params, block, true, n.Async, false)
}

// compileCall lowers a call expression. The receiver (`this`) and callee
// are pushed first (OpUndefined for a bare call, or the object/property
// pair for a method call), then the argument list is folded into a single
// array (compileElements) before OpCall, matching the "this callee
// argsArray -> result" contract documented on OpCall.
func (c *Compiler) compileCall(n *ast.Call) error {
	if _, ok := n.Callee.(*ast.Super); ok {
		return unsupported("super call")
	}
	switch callee := n.Callee.(type) {
	case *ast.Get:
		if _, ok := callee.Object.(*ast.Super); ok {
			return unsupported("super method call")
		}
		return c.compileMethodCall(callee, n)
	case *ast.GetIndex:
		return c.compileIndexCall(callee, n)
	default:
		c.emit(OpUndefined, 0, 0)
		if err := c.compileExpression(n.Callee); err != nil {
			return err
		}
		return c.finishCall(n)
	}
}

// compileMethodCall evaluates the receiver once, using it both as `this`
// and as the object a property lookup resolves the callee from, mirroring
// evalCall's *ast.Get branch (including its `obj?.method(...)`
// short-circuit before args are ever evaluated).
func (c *Compiler) compileMethodCall(g *ast.Get, call *ast.Call) error {
	if err := c.compileExpression(g.Object); err != nil {
		return err
	}
	nameIdx := c.chunk.addConstant(runtime.String(g.Name))
	if !g.Optional {
		c.emit(OpDup, 0, 0)
		c.emit(OpGetProperty, nameIdx, 0)
		return c.finishCall(call)
	}
	nullishJump := c.emitJump(OpJumpIfNullishKeep)
	c.emit(OpDup, 0, 0)
	c.emit(OpGetProperty, nameIdx, 0)
	if err := c.finishCall(call); err != nil {
		return err
	}
	doneJump := c.emitJump(OpJump)
	c.patchJump(nullishJump)
	c.emit(OpPop, 0, 0)
	c.emit(OpUndefined, 0, 0)
	c.patchJump(doneJump)
	return nil
}

// compileIndexCall mirrors evalCall's *ast.GetIndex branch, which (unlike
// the Get branch) does not special-case c.Optional on the receiver at all.
func (c *Compiler) compileIndexCall(g *ast.GetIndex, call *ast.Call) error {
	if err := c.compileExpression(g.Object); err != nil {
		return err
	}
	c.emit(OpDup, 0, 0)
	if err := c.compileExpression(g.Index); err != nil {
		return err
	}
	c.emit(OpGetIndex, 0, 0)
	return c.finishCall(call)
}

// finishCall expects `this callee` already on the stack. It handles the
// call-level `?.()` short-circuit (n.Optional, tested on the callee) before
// building the argument array and emitting OpCall.
func (c *Compiler) finishCall(n *ast.Call) error {
	if !n.Optional {
		if err := c.compileElements(n.Args); err != nil {
			return err
		}
		c.emit(OpCall, 0, 0)
		return nil
	}
	nullishJump := c.emitJump(OpJumpIfNullishKeep)
	if err := c.compileElements(n.Args); err != nil {
		return err
	}
	c.emit(OpCall, 0, 0)
	doneJump := c.emitJump(OpJump)
	c.patchJump(nullishJump)
	c.emit(OpPop, 0, 0) // discard callee
	c.emit(OpPop, 0, 0) // discard this
	c.emit(OpUndefined, 0, 0)
	c.patchJump(doneJump)
	return nil
}

func (c *Compiler) compileNew(n *ast.New) error {
	if err := c.compileExpression(n.Callee); err != nil {
		return err
	}
	if err := c.compileElements(n.Args); err != nil {
		return err
	}
	c.emit(OpNew, 0, 0)
	return nil
}
