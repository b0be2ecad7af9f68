package bytecode

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/runtime"
	"github.com/scriptlang/tsforge/internal/token"
)

func (c *Compiler) patchJumpsTo(jumps []int, target int) {
	for _, j := range jumps {
		c.chunk.Code[j].B = target
	}
}

func (c *Compiler) findLoopForBreak(label string) *loopCtx {
	for i := len(c.loops) - 1; i >= 0; i-- {
		if label == "" || c.loops[i].label == label {
			return c.loops[i]
		}
	}
	return nil
}

func (c *Compiler) findLoopForContinue(label string) *loopCtx {
	for i := len(c.loops) - 1; i >= 0; i-- {
		if c.loops[i].isSwitch {
			continue
		}
		if label == "" || c.loops[i].label == label {
			return c.loops[i]
		}
	}
	return nil
}

// runFinallyRange recompiles (inlines) every finally block nested between
// the current point and depth, innermost first — see DESIGN.md: finally
// blocks have no runtime representation, they are re-emitted verbatim at
// every compile-time-known exit point (here, break/continue/return).
func (c *Compiler) runFinallyRange(depth int) error {
	for i := len(c.finallyStack) - 1; i >= depth; i-- {
		if err := c.compileStatements(c.finallyStack[i].Statements); err != nil {
			return err
		}
	}
	return nil
}

// compileStatements hoists sibling function declarations the way
// execStatements/hoistFunctions does, then lowers each statement in order.
func (c *Compiler) compileStatements(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunctionDecl); ok && fd.Body != nil {
			if err := c.hoistFunctionDecl(fd); err != nil {
				return err
			}
		}
	}
	for _, s := range stmts {
		if err := c.compileStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) hoistFunctionDecl(fd *ast.FunctionDecl) error {
	if _, ok := c.resolveLocal(fd.Name); ok {
		return nil
	}
	slot := c.declareLocal(fd.Name)
	if err := c.emitClosure(fd.Name, fd.Params, fd.Body, false, fd.Async, fd.Generator); err != nil {
		return err
	}
	c.emit(OpSetLocal, slot, 0)
	return nil
}

func (c *Compiler) emitClosure(name string, params []ast.Param, body *ast.Block, isArrow, async, generator bool) error {
	if async || generator {
		return unsupported("async/generator functions")
	}
	proto, err := c.compileFunctionBody(name, params, body, isArrow, async, generator)
	if err != nil {
		return err
	}
	idx := len(c.chunk.Protos)
	c.chunk.Protos = append(c.chunk.Protos, proto)
	c.emit(OpClosure, idx, 0)
	return nil
}

func (c *Compiler) compileStatement(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.VarDecl:
		return c.compileVarDecl(n)
	case *ast.ExpressionStmt:
		return c.compileExpressionStmt(n)
	case *ast.Sequence:
		return c.compileStatements(n.Statements)
	case *ast.Block:
		c.beginScope()
		err := c.compileStatements(n.Statements)
		c.endScope()
		return err
	case *ast.FunctionDecl:
		return nil // already hoisted by the enclosing compileStatements
	case *ast.Return:
		return c.compileReturn(n)
	case *ast.If:
		return c.compileIf(n)
	case *ast.While:
		return c.compileWhile(n)
	case *ast.DoWhile:
		return c.compileDoWhile(n)
	case *ast.For:
		return c.compileFor(n)
	case *ast.ForOf:
		return c.compileForOf(n)
	case *ast.ForIn:
		return c.compileForIn(n)
	case *ast.Break:
		return c.compileBreak(n)
	case *ast.Continue:
		return c.compileContinue(n)
	case *ast.LabeledStatement:
		return c.compileLabeled(n)
	case *ast.Switch:
		return c.compileSwitch(n)
	case *ast.TryCatch:
		return c.compileTry(n)
	case *ast.Throw:
		if err := c.compileExpression(n.Value); err != nil {
			return err
		}
		c.emit(OpThrow, 0, 0)
		return nil
	case *ast.Enum:
		return c.compileEnum(n)
	case *ast.TypeAlias:
		return nil // type-level only
	case *ast.Directive:
		return nil
	case *ast.Import, *ast.ImportAlias, *ast.DeclareModule, *ast.DeclareGlobal:
		return nil // module linkage stays pkg/tsforge's job, same as the tree walker
	case *ast.Export:
		if n.Decl != nil {
			return c.compileStatement(n.Decl)
		}
		return nil
	case *ast.ClassDecl:
		return unsupported("class declarations")
	case *ast.InterfaceDecl:
		return nil // erased at runtime
	case *ast.Namespace:
		return unsupported("namespace declarations")
	case *ast.Using:
		return unsupported("using declarations")
	default:
		return unsupported("statement")
	}
}

func (c *Compiler) compileVarDecl(n *ast.VarDecl) error {
	if n.Init != nil {
		if err := c.compileExpression(n.Init); err != nil {
			return err
		}
	} else {
		c.emit(OpUndefined, 0, 0)
	}
	slot := c.declareLocal(n.Name)
	c.emit(OpSetLocal, slot, 0)
	return nil
}

func (c *Compiler) compileExpressionStmt(n *ast.ExpressionStmt) error {
	if err := c.compileExpression(n.Expr); err != nil {
		return err
	}
	if c.isTopLevel && c.scopeDepth == 1 {
		c.emit(OpSetLocal, c.resultSlot, 0)
		return nil
	}
	c.emit(OpPop, 0, 0)
	return nil
}

func (c *Compiler) compileIf(n *ast.If) error {
	if err := c.compileExpression(n.Cond); err != nil {
		return err
	}
	elseJump := c.emitJump(OpJumpIfFalse)
	if err := c.compileStatement(n.Then); err != nil {
		return err
	}
	if n.Else != nil {
		endJump := c.emitJump(OpJump)
		c.patchJump(elseJump)
		if err := c.compileStatement(n.Else); err != nil {
			return err
		}
		c.patchJump(endJump)
		return nil
	}
	c.patchJump(elseJump)
	return nil
}

func (c *Compiler) compileWhile(n *ast.While) error {
	loopStart := c.here()
	if err := c.compileExpression(n.Cond); err != nil {
		return err
	}
	exitJump := c.emitJump(OpJumpIfFalse)
	lc := &loopCtx{label: n.Label, finallyDepth: len(c.finallyStack)}
	c.loops = append(c.loops, lc)
	err := c.compileStatement(n.Body)
	c.loops = c.loops[:len(c.loops)-1]
	if err != nil {
		return err
	}
	c.patchJumpsTo(lc.continueJumps, loopStart)
	c.emit(OpJump, 0, loopStart)
	c.patchJump(exitJump)
	c.patchJumpsTo(lc.breakJumps, c.here())
	return nil
}

func (c *Compiler) compileDoWhile(n *ast.DoWhile) error {
	bodyStart := c.here()
	lc := &loopCtx{label: n.Label, finallyDepth: len(c.finallyStack)}
	c.loops = append(c.loops, lc)
	err := c.compileStatement(n.Body)
	c.loops = c.loops[:len(c.loops)-1]
	if err != nil {
		return err
	}
	condStart := c.here()
	c.patchJumpsTo(lc.continueJumps, condStart)
	if err := c.compileExpression(n.Cond); err != nil {
		return err
	}
	c.emit(OpJumpIfTrue, 0, bodyStart)
	c.patchJumpsTo(lc.breakJumps, c.here())
	return nil
}

func (c *Compiler) compileFor(n *ast.For) error {
	c.beginScope()
	if n.Init != nil {
		if err := c.compileStatement(n.Init); err != nil {
			c.endScope()
			return err
		}
	}
	loopStart := c.here()
	hasCond := n.Cond != nil
	var exitJump int
	if hasCond {
		if err := c.compileExpression(n.Cond); err != nil {
			c.endScope()
			return err
		}
		exitJump = c.emitJump(OpJumpIfFalse)
	}
	lc := &loopCtx{label: n.Label, finallyDepth: len(c.finallyStack)}
	c.loops = append(c.loops, lc)
	err := c.compileStatement(n.Body)
	c.loops = c.loops[:len(c.loops)-1]
	if err != nil {
		c.endScope()
		return err
	}
	postStart := c.here()
	c.patchJumpsTo(lc.continueJumps, postStart)
	if n.Post != nil {
		if err := c.compileExpression(n.Post); err != nil {
			c.endScope()
			return err
		}
		c.emit(OpPop, 0, 0)
	}
	c.emit(OpJump, 0, loopStart)
	if hasCond {
		c.patchJump(exitJump)
	}
	c.patchJumpsTo(lc.breakJumps, c.here())
	c.endScope()
	return nil
}

// compileForOf lowers `for (x of xs) body`. The iterable is materialized
// up front by OpIterNew (spec.md's iteration model has no lazy custom-
// iterator protocol), then OpIterNext peeks the iterator value left on the
// stack each pass so the dispatch loop never needs a third opcode just to
// re-push it.
func (c *Compiler) compileForOf(n *ast.ForOf) error {
	if n.Await {
		return unsupported("for-await-of")
	}
	c.beginScope()
	if err := c.compileExpression(n.Iterable); err != nil {
		c.endScope()
		return err
	}
	c.emit(OpIterNew, 0, 0)
	loopStart := c.here()
	c.emit(OpIterNext, 0, 0)
	exitJump := c.emitJump(OpJumpIfFalse)

	c.beginScope()
	var slot int
	if n.IsDecl {
		slot = c.declareLocal(n.Name)
	} else if s, ok := c.resolveLocal(n.Name); ok {
		slot = s
	} else {
		return unsupported("for-of assigning to a non-local binding")
	}
	c.emit(OpSetLocal, slot, 0)

	lc := &loopCtx{label: n.Label, finallyDepth: len(c.finallyStack)}
	c.loops = append(c.loops, lc)
	err := c.compileStatement(n.Body)
	c.loops = c.loops[:len(c.loops)-1]
	c.endScope()
	if err != nil {
		c.endScope()
		return err
	}
	c.patchJumpsTo(lc.continueJumps, loopStart)
	c.emit(OpJump, 0, loopStart)
	c.patchJump(exitJump)
	c.emit(OpPop, 0, 0) // discard the leftover loop-variable value on the done path
	c.patchJumpsTo(lc.breakJumps, c.here())
	c.emit(OpPop, 0, 0) // discard the iterator
	c.endScope()
	return nil
}

func (c *Compiler) compileForIn(n *ast.ForIn) error {
	c.beginScope()
	if err := c.compileExpression(n.Object); err != nil {
		c.endScope()
		return err
	}
	c.emit(OpIterNewKeys, 0, 0)
	loopStart := c.here()
	c.emit(OpIterNext, 0, 0)
	exitJump := c.emitJump(OpJumpIfFalse)

	c.beginScope()
	var slot int
	if n.IsDecl {
		slot = c.declareLocal(n.Name)
	} else if s, ok := c.resolveLocal(n.Name); ok {
		slot = s
	} else {
		return unsupported("for-in assigning to a non-local binding")
	}
	c.emit(OpSetLocal, slot, 0)

	lc := &loopCtx{label: n.Label, finallyDepth: len(c.finallyStack)}
	c.loops = append(c.loops, lc)
	err := c.compileStatement(n.Body)
	c.loops = c.loops[:len(c.loops)-1]
	c.endScope()
	if err != nil {
		c.endScope()
		return err
	}
	c.patchJumpsTo(lc.continueJumps, loopStart)
	c.emit(OpJump, 0, loopStart)
	c.patchJump(exitJump)
	c.emit(OpPop, 0, 0)
	c.patchJumpsTo(lc.breakJumps, c.here())
	c.emit(OpPop, 0, 0)
	c.endScope()
	return nil
}

func (c *Compiler) compileBreak(n *ast.Break) error {
	lc := c.findLoopForBreak(n.Label)
	if lc == nil {
		return unsupported("break with no enclosing loop or switch")
	}
	if err := c.runFinallyRange(lc.finallyDepth); err != nil {
		return err
	}
	lc.breakJumps = append(lc.breakJumps, c.emitJump(OpJump))
	return nil
}

func (c *Compiler) compileContinue(n *ast.Continue) error {
	lc := c.findLoopForContinue(n.Label)
	if lc == nil {
		return unsupported("continue with no enclosing loop")
	}
	if err := c.runFinallyRange(lc.finallyDepth); err != nil {
		return err
	}
	lc.continueJumps = append(lc.continueJumps, c.emitJump(OpJump))
	return nil
}

func (c *Compiler) compileReturn(n *ast.Return) error {
	if n.Value != nil {
		if err := c.compileExpression(n.Value); err != nil {
			return err
		}
	} else {
		c.emit(OpUndefined, 0, 0)
	}
	if len(c.finallyStack) > 0 {
		retSlot := c.declareLocal("%retval")
		c.emit(OpSetLocal, retSlot, 0)
		if err := c.runFinallyRange(0); err != nil {
			return err
		}
		c.emit(OpGetLocal, retSlot, 0)
	}
	c.emit(OpReturn, 0, 0)
	return nil
}

// compileLabeled attaches the label to the loop/switch it wraps so
// findLoopForBreak/findLoopForContinue can match it, mirroring execLabeled.
func (c *Compiler) compileLabeled(n *ast.LabeledStatement) error {
	switch body := n.Body.(type) {
	case *ast.While:
		body.Label = n.Label
		return c.compileWhile(body)
	case *ast.DoWhile:
		body.Label = n.Label
		return c.compileDoWhile(body)
	case *ast.For:
		body.Label = n.Label
		return c.compileFor(body)
	case *ast.ForOf:
		body.Label = n.Label
		return c.compileForOf(body)
	case *ast.ForIn:
		body.Label = n.Label
		return c.compileForIn(body)
	case *ast.Switch:
		body.Label = n.Label
		return c.compileSwitch(body)
	default:
		lc := &loopCtx{label: n.Label, finallyDepth: len(c.finallyStack)}
		c.loops = append(c.loops, lc)
		err := c.compileStatement(n.Body)
		c.loops = c.loops[:len(c.loops)-1]
		if err != nil {
			return err
		}
		c.patchJumpsTo(lc.breakJumps, c.here())
		return nil
	}
}

// compileSwitch stashes the discriminant in a local once, then emits a
// linear chain of compare-and-jump tests followed by the case bodies laid
// out contiguously in source order — fallthrough between cases falls out
// for free since there is no jump between adjacent bodies unless the
// source has an explicit break, exactly mirroring execSwitch's
// `for idx := matched; idx < len(cases); idx++` loop.
func (c *Compiler) compileSwitch(n *ast.Switch) error {
	c.beginScope()
	if err := c.compileExpression(n.Discriminant); err != nil {
		c.endScope()
		return err
	}
	discSlot := c.declareLocal("%disc")
	c.emit(OpSetLocal, discSlot, 0)

	testJumps := make([]int, len(n.Cases))
	defaultIdx := -1
	for i, cs := range n.Cases {
		if cs.Test == nil {
			defaultIdx = i
			continue
		}
		c.emit(OpGetLocal, discSlot, 0)
		if err := c.compileExpression(cs.Test); err != nil {
			c.endScope()
			return err
		}
		c.emit(OpBinary, int(token.STRICT_EQ), 0)
		testJumps[i] = c.emitJump(OpJumpIfTrue)
	}
	noMatchJump := c.emitJump(OpJump)

	lc := &loopCtx{label: n.Label, isSwitch: true, finallyDepth: len(c.finallyStack)}
	c.loops = append(c.loops, lc)
	for i, cs := range n.Cases {
		if i == defaultIdx {
			c.patchJump(noMatchJump)
		} else {
			c.patchJump(testJumps[i])
		}
		if err := c.compileStatements(cs.Statements); err != nil {
			c.loops = c.loops[:len(c.loops)-1]
			c.endScope()
			return err
		}
	}
	c.loops = c.loops[:len(c.loops)-1]
	if defaultIdx < 0 {
		c.patchJump(noMatchJump)
	}
	c.patchJumpsTo(lc.breakJumps, c.here())
	c.endScope()
	return nil
}

// compileTry lowers try/catch/finally. The catch (if present) always
// handles any throw inside Start..End — JS catch clauses have no type
// filter; a bare try/finally still registers a Handler (HasCatch false) so
// the VM knows where to stash the thrown value, run finally, and re-raise
// it. Finally is compiled inline at both the normal-completion exit and
// the end of the catch body (see DESIGN.md on why finally has no runtime
// construct of its own).
func (c *Compiler) compileTry(n *ast.TryCatch) error {
	hasFinally := n.Finally != nil
	if hasFinally {
		c.finallyStack = append(c.finallyStack, n.Finally)
	}

	handlerIdx := len(c.chunk.Handlers)
	c.chunk.Handlers = append(c.chunk.Handlers, Handler{})

	start := c.here()
	c.beginScope()
	bodyErr := c.compileStatements(n.Body.Statements)
	c.endScope()
	if hasFinally {
		c.finallyStack = c.finallyStack[:len(c.finallyStack)-1]
	}
	if bodyErr != nil {
		return bodyErr
	}
	end := c.here()

	if hasFinally {
		if err := c.compileStatements(n.Finally.Statements); err != nil {
			return err
		}
	}
	var toEnd []int
	toEnd = append(toEnd, c.emitJump(OpJump))

	catchPC := c.here()
	excSlot := c.declareLocal("%exc")
	hasCatch := n.Catch != nil
	if hasCatch {
		if hasFinally {
			c.finallyStack = append(c.finallyStack, n.Finally)
		}
		c.emit(OpSetLocal, excSlot, 0)
		c.beginScope()
		if n.Catch.Param != "" {
			paramSlot := c.declareLocal(n.Catch.Param)
			c.emit(OpGetLocal, excSlot, 0)
			c.emit(OpSetLocal, paramSlot, 0)
		}
		catchErr := c.compileStatements(n.Catch.Body.Statements)
		c.endScope()
		if hasFinally {
			c.finallyStack = c.finallyStack[:len(c.finallyStack)-1]
		}
		if catchErr != nil {
			return catchErr
		}
		if hasFinally {
			if err := c.compileStatements(n.Finally.Statements); err != nil {
				return err
			}
		}
		toEnd = append(toEnd, c.emitJump(OpJump))
	} else if hasFinally {
		c.emit(OpSetLocal, excSlot, 0)
		if err := c.compileStatements(n.Finally.Statements); err != nil {
			return err
		}
		c.emit(OpGetLocal, excSlot, 0)
		c.emit(OpThrow, 0, 0)
	} else {
		c.emit(OpGetLocal, excSlot, 0)
		c.emit(OpThrow, 0, 0)
	}

	for _, j := range toEnd {
		c.patchJump(j)
	}
	c.chunk.Handlers[handlerIdx] = Handler{Start: start, End: end, HasCatch: hasCatch, CatchSlot: excSlot, CatchPC: catchPC}
	return nil
}

// compileEnum mirrors execEnum: builds a plain object whose forward
// mapping is name -> value, plus (for numeric members) a reverse
// value -> name mapping. OpObjectSet/OpObjectSetComputed both return the
// object they mutated, so the single object reference threads through the
// whole member list with no explicit dup/rebalance bookkeeping needed.
func (c *Compiler) compileEnum(n *ast.Enum) error {
	c.emit(OpNewObject, 0, 0)
	next := 0.0
	for _, m := range n.Members {
		nameIdx := c.chunk.addConstant(runtime.String(m.Name))
		numVal, isNumeric := 0.0, false
		if m.Value != nil {
			if err := c.compileExpression(m.Value); err != nil {
				return err
			}
			if lit, ok := m.Value.(*ast.Literal); ok && lit.Kind == ast.LitNumber {
				numVal, isNumeric = lit.Num, true
				next = numVal + 1
			}
		} else {
			numVal, isNumeric = next, true
			c.emit(OpConstant, c.chunk.addConstant(runtime.Number(numVal)), 0)
			next++
		}
		c.emit(OpObjectSet, nameIdx, 0)
		if isNumeric && n.Kind != ast.EnumString {
			keyIdx := c.chunk.addConstant(runtime.String(formatEnumKey(numVal)))
			c.emit(OpConstant, keyIdx, 0)
			c.emit(OpConstant, nameIdx, 0)
			c.emit(OpObjectSetComputed, 0, 0)
		}
	}
	slot := c.declareLocal(n.Name)
	c.emit(OpSetLocal, slot, 0)
	return nil
}

func formatEnumKey(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%v", v)
}
