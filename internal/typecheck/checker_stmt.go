package typecheck

import (
	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/types"
)

// checkStmt type-checks one statement in env, recording diagnostics for
// any mismatch. It never returns early on error: the goal is to report
// every problem in a compilation unit, not just the first.
func (c *Checker) checkStmt(stmt ast.Stmt, env *TypeEnv) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(s, env)
	case *ast.ExpressionStmt:
		c.checkExpr(s.Expr, env)
	case *ast.Sequence:
		for _, st := range s.Statements {
			c.checkStmt(st, env)
		}
	case *ast.Block:
		c.checkBlock(s, env)
	case *ast.FunctionDecl:
		c.checkFunctionDecl(s, env)
	case *ast.Return:
		c.checkReturn(s, env)
	case *ast.If:
		c.checkIf(s, env)
	case *ast.While:
		c.loopDepth++
		c.checkExpr(s.Cond, env)
		c.checkStmt(s.Body, env.Enclosed())
		c.loopDepth--
	case *ast.DoWhile:
		c.loopDepth++
		c.checkStmt(s.Body, env.Enclosed())
		c.checkExpr(s.Cond, env)
		c.loopDepth--
	case *ast.For:
		c.checkFor(s, env)
	case *ast.ForOf:
		c.checkForOf(s, env)
	case *ast.ForIn:
		c.checkForIn(s, env)
	case *ast.Break:
		if c.loopDepth == 0 && s.Label == "" {
			c.errorAt(s, ErrInvalidBreak, "break used outside of a loop or switch")
		}
	case *ast.Continue:
		if c.loopDepth == 0 {
			c.errorAt(s, ErrInvalidBreak, "continue used outside of a loop")
		}
	case *ast.LabeledStatement:
		c.labelStack = append(c.labelStack, s.Label)
		c.checkStmt(s.Body, env)
		c.labelStack = c.labelStack[:len(c.labelStack)-1]
	case *ast.Switch:
		c.checkSwitch(s, env)
	case *ast.TryCatch:
		c.checkTryCatch(s, env)
	case *ast.Throw:
		c.checkExpr(s.Value, env)
	case *ast.TypeAlias:
		// resolved lazily through c.aliases; nothing further to check.
	case *ast.Enum:
		// resolved in collectSignatures.
	case *ast.Namespace:
		nsEnv := env.Enclosed()
		c.collectSignatures(s.Body)
		for _, st := range s.Body {
			c.checkStmt(st, nsEnv)
		}
	case *ast.ClassDecl:
		c.checkClassDecl(s, env)
	case *ast.InterfaceDecl:
		// resolved in collectSignatures.
	case *ast.Import, *ast.ImportAlias, *ast.Export, *ast.DeclareModule, *ast.DeclareGlobal:
		// module-linkage forms: not checked; the Checker runs over a
		// single file and does no module resolution.
	case *ast.Using:
		c.checkUsing(s, env)
	case *ast.Directive:
		// "use strict" and similar: recorded on FunctionDecl.Strict by the
		// parser, nothing left to check here.
	}
}

func (c *Checker) checkBlock(b *ast.Block, env *TypeEnv) {
	child := env.Enclosed()
	c.collectSignatures(b.Statements)
	for _, st := range b.Statements {
		c.checkStmt(st, child)
	}
}

func (c *Checker) checkVarDecl(v *ast.VarDecl, env *TypeEnv) {
	declared := c.resolveOptionalTypeExpr(v.TypeAnn)
	var initType types.TypeInfo
	if v.Init != nil {
		initType = c.checkExpr(v.Init, env)
	}
	final := declared
	if final == nil {
		if initType != nil {
			final = widenLiteral(initType)
		} else {
			final = types.Any
		}
	} else if initType != nil && !types.IsAssignable(initType, final) {
		c.errorAt(v, ErrTypeMismatch, "cannot assign %s to %s %s", initType.String(), varKindName(v.Kind), v.Name)
	}
	if v.Kind == ast.VarConst {
		env.DefineConst(v.Name, final)
	} else {
		env.Define(v.Name, final)
	}
	c.typeMap.SetDeclType(v, final)
}

func varKindName(k ast.VarKind) string {
	return [...]string{"var", "let", "const"}[k]
}

// widenLiteral converts a literal type produced by inference (e.g. the
// NumberLiteralType of `const x = 1` without an annotation) to its base
// primitive, matching TypeScript's "let/var widen, const narrows only with
// an explicit `as const`" rule.
func widenLiteral(t types.TypeInfo) types.TypeInfo {
	switch t.(type) {
	case types.StringLiteralType:
		return types.String
	case types.NumberLiteralType:
		return types.Number
	case types.BooleanLiteralType:
		return types.Boolean
	default:
		return t
	}
}

func (c *Checker) checkFunctionDecl(f *ast.FunctionDecl, env *TypeEnv) {
	if f.Body == nil {
		return // overload signature, consulted only for call-site resolution
	}
	sig := c.resolveFunctionSignature(f)
	c.typeMap.SetDeclType(f, sig)
	fnEnv := env.Enclosed()
	for i, p := range f.Params {
		fnEnv.Define(p.Name, sig.Params[i].Type)
	}
	prevReturn, prevAsync := c.currentFunctionReturn, c.currentFunctionAsync
	c.currentFunctionReturn, c.currentFunctionAsync = sig.Return, f.Async
	c.collectSignatures(f.Body.Statements)
	for _, st := range f.Body.Statements {
		c.checkStmt(st, fnEnv)
	}
	c.currentFunctionReturn, c.currentFunctionAsync = prevReturn, prevAsync
}

func (c *Checker) checkReturn(r *ast.Return, env *TypeEnv) {
	if c.currentFunctionReturn == nil {
		c.errorAt(r, ErrInvalidReturn, "return used outside of a function body")
		return
	}
	var actual types.TypeInfo = types.Void
	if r.Value != nil {
		actual = c.checkExpr(r.Value, env)
	}
	want := c.currentFunctionReturn
	if c.currentFunctionAsync {
		if p, ok := want.(types.PromiseType); ok {
			want = p.Elem
		}
	}
	if want.Kind() != types.KindAny && want.Kind() != types.KindVoid && !types.IsAssignable(actual, want) {
		c.errorAt(r, ErrTypeMismatch, "returned %s is not assignable to declared return type %s", actual.String(), want.String())
	}
}

func (c *Checker) checkIf(s *ast.If, env *TypeEnv) {
	c.checkExpr(s.Cond, env)
	snap := env.Snapshot()
	c.applyNarrowing(s.Cond, env, true)
	c.checkStmt(s.Then, env)
	env.Restore(snap)
	if s.Else != nil {
		c.applyNarrowing(s.Cond, env, false)
		c.checkStmt(s.Else, env)
		env.Restore(snap)
	}
}

// applyNarrowing refines variable types within a branch guarded by its
// condition (spec.md §4.3 narrowing). Only `typeof x === "lit"` (or `==`)
// narrows x, and only in the branch where the test holds; `!` flips which
// branch that is. instanceof, truthiness, `in` and other equality tests do
// not narrow. positive is false for the negated (else) branch.
func (c *Checker) applyNarrowing(cond ast.Expr, env *TypeEnv, positive bool) {
	switch cnd := cond.(type) {
	case *ast.Binary:
		if cnd.Op.IsKeyword() {
			return
		}
		isEq := cnd.Op.String() == "===" || cnd.Op.String() == "=="
		if typeofExpr, lit, ok := typeofCompare(cnd); ok && isEq && positive {
			env.Narrow(typeofExpr, typeofToType(lit))
		}
	case *ast.Unary:
		if cnd.Op.String() == "!" {
			c.applyNarrowing(cnd.Operand, env, !positive)
		}
	case *ast.Variable:
		_ = cnd // truthiness narrowing of a bare identifier is handled by
		// the interpreter's runtime truthy() rather than statically here,
		// since "truthy" excludes only a closed set of falsy values.
	}
}

func typeofCompare(b *ast.Binary) (name string, literal string, ok bool) {
	if unary, isUnary := b.Left.(*ast.Unary); isUnary && unary.Op.String() == "typeof" {
		if v, isVar := unary.Operand.(*ast.Variable); isVar {
			if lit, isLit := b.Right.(*ast.Literal); isLit && lit.Kind == ast.LitString {
				return v.Name, lit.Str, true
			}
		}
	}
	return "", "", false
}

func typeofToType(name string) types.TypeInfo {
	switch name {
	case "string":
		return types.String
	case "number":
		return types.Number
	case "boolean":
		return types.Boolean
	case "bigint":
		return types.BigIntT
	case "symbol":
		return types.SymbolT
	case "undefined":
		return types.Undefined
	default:
		return types.Unknown
	}
}

func (c *Checker) checkFor(s *ast.For, env *TypeEnv) {
	forEnv := env.Enclosed()
	if s.Init != nil {
		c.checkStmt(s.Init, forEnv)
	}
	if s.Cond != nil {
		c.checkExpr(s.Cond, forEnv)
	}
	if s.Post != nil {
		c.checkExpr(s.Post, forEnv)
	}
	c.loopDepth++
	c.checkStmt(s.Body, forEnv.Enclosed())
	c.loopDepth--
}

func (c *Checker) checkForOf(s *ast.ForOf, env *TypeEnv) {
	iterableType := c.checkExpr(s.Iterable, env)
	elemType := iterationElementType(iterableType)
	bodyEnv := env.Enclosed()
	bodyEnv.Define(s.Name, elemType)
	c.loopDepth++
	c.checkStmt(s.Body, bodyEnv)
	c.loopDepth--
}

// iterationElementType resolves the element type a for-of loop binds,
// falling back to Any for a custom [Symbol.iterator] shape the checker
// cannot see through statically (resolved dynamically by the interpreter
// instead, per spec.md §4.4 iteration protocol resolution order).
func iterationElementType(t types.TypeInfo) types.TypeInfo {
	switch v := t.(type) {
	case types.ArrayType:
		return v.Elem
	case types.TupleType:
		if len(v.Elements) == 0 {
			return types.Any
		}
		members := make([]types.TypeInfo, len(v.Elements))
		for i, e := range v.Elements {
			members[i] = e.Type
		}
		return types.UnionType{Members: members}
	case types.SetType:
		return v.Elem
	case types.MapType:
		return types.TupleType{Elements: []types.TupleElement{{Type: v.Key}, {Type: v.Value}}}
	case types.IteratorType:
		return v.Elem
	case types.GeneratorType:
		return v.Yield
	default:
		if t == types.String {
			return types.String
		}
		return types.Any
	}
}

func (c *Checker) checkForIn(s *ast.ForIn, env *TypeEnv) {
	c.checkExpr(s.Object, env)
	bodyEnv := env.Enclosed()
	bodyEnv.Define(s.Name, types.String) // for-in always yields string keys
	c.loopDepth++
	c.checkStmt(s.Body, bodyEnv)
	c.loopDepth--
}

func (c *Checker) checkSwitch(s *ast.Switch, env *TypeEnv) {
	c.checkExpr(s.Discriminant, env)
	c.loopDepth++ // break is legal inside switch without a loop
	for _, cs := range s.Cases {
		if cs.Test != nil {
			c.checkExpr(cs.Test, env)
		}
		caseEnv := env.Enclosed()
		for _, st := range cs.Statements {
			c.checkStmt(st, caseEnv)
		}
	}
	c.loopDepth--
}

func (c *Checker) checkTryCatch(s *ast.TryCatch, env *TypeEnv) {
	c.checkBlock(s.Body, env)
	if s.Catch != nil {
		catchEnv := env.Enclosed()
		if s.Catch.Param != "" {
			catchEnv.Define(s.Catch.Param, types.Unknown) // caught values are `unknown`, not `any`
		}
		c.checkBlock(s.Catch.Body, catchEnv)
	}
	if s.Finally != nil {
		c.checkBlock(s.Finally, env)
	}
}

func (c *Checker) checkUsing(u *ast.Using, env *TypeEnv) {
	var typ types.TypeInfo = types.Any
	if u.Initializer != nil {
		typ = c.checkExpr(u.Initializer, env)
	}
	env.Define(u.Name, typ)
}

func (c *Checker) checkClassDecl(decl *ast.ClassDecl, env *TypeEnv) {
	info := c.classes[decl.Name]
	c.typeMap.SetDeclType(decl, info)
	classEnv := env.Enclosed()
	classEnv.Define("this", types.InstanceType{Class: info})
	for _, member := range decl.Members {
		switch m := member.(type) {
		case *ast.FieldDecl:
			if m.Init != nil {
				initType := c.checkExpr(m.Init, classEnv)
				fieldType := c.resolveOptionalTypeExpr(m.TypeAnn)
				if fieldType != nil && !types.IsAssignable(initType, fieldType) {
					c.errorAt(m, ErrTypeMismatch, "field %s initializer of type %s is not assignable to %s", m.Name, initType.String(), fieldType.String())
				}
			}
		case *ast.Accessor:
			if m.Body == nil {
				continue
			}
			methodEnv := classEnv.Enclosed()
			var sig types.FunctionType
			for _, meth := range info.Methods {
				if meth.Name == m.Name {
					sig = meth.Signature
					break
				}
			}
			if info.Constructor != nil && m.Kind == ast.AccessorConstructor {
				sig = *info.Constructor
			}
			for i, p := range m.Params {
				if i < len(sig.Params) {
					methodEnv.Define(p.Name, sig.Params[i].Type)
				}
			}
			prevReturn := c.currentFunctionReturn
			c.currentFunctionReturn = sig.Return
			c.collectSignatures(m.Body.Statements)
			for _, st := range m.Body.Statements {
				c.checkStmt(st, methodEnv)
			}
			c.currentFunctionReturn = prevReturn
		case *ast.StaticBlock:
			c.checkBlock(m.Body, classEnv)
		}
	}
}
