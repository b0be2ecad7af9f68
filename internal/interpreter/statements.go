package interpreter

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/runtime"
)

// execStatements runs stmts in env as one lexical block: function
// declarations are hoisted first (matching JS's function-declaration
// hoisting), then each statement runs in order, any `using`/`await using`
// declared directly in this list is disposed LIFO on every exit path
// (normal fall-through, break/continue/return, or an escaping throw), and
// a disposal failure is chained onto (not silently dropped by) whatever
// error was already propagating, mirroring runtime.DisposalStack's
// aggregate-don't-stop contract.
func (i *Interpreter) execStatements(stmts []ast.Stmt, env *runtime.Environment) (Completion, error) {
	i.hoistFunctions(stmts, env)
	var disposal runtime.DisposalStack
	var result Completion

	finish := func(comp Completion, err error) (Completion, error) {
		disposeErr := i.disposeAll(&disposal)
		if disposeErr != nil {
			if err != nil {
				return Completion{}, fmt.Errorf("%w (while unwinding: %v)", err, disposeErr)
			}
			return Completion{}, disposeErr
		}
		return comp, err
	}

	for _, s := range stmts {
		comp, err := i.exec(s, env, &disposal)
		if err != nil {
			return finish(Completion{}, err)
		}
		result = comp
		if comp.Kind != Normal {
			return finish(comp, nil)
		}
	}
	return finish(result, nil)
}

func (i *Interpreter) disposeAll(stack *runtime.DisposalStack) error {
	if stack.Empty() {
		return nil
	}
	return stack.Dispose(func(obj runtime.Value, await bool) error {
		if obj == nil || obj.Kind() == runtime.KindUndefined || obj.Kind() == runtime.KindNull {
			return nil
		}
		disposeName := "dispose"
		if await {
			disposeName = "asyncDispose"
		}
		method, ok := runtime.GetProperty(obj, disposeName)
		if !ok || method == nil {
			return nil
		}
		v, err := runtime.Call(method, obj, nil)
		if err != nil {
			return err
		}
		if await {
			if p, ok := v.(*runtime.Promise); ok && p.State == runtime.PromiseRejected {
				return fmt.Errorf("%v", runtime.ToStringValue(p.Value))
			}
		}
		return nil
	})
}

// hoistFunctions defines every non-overload top-level FunctionDecl in
// stmts before running any of them, so a function may call another one
// declared later in the same block — plain JS function-hoisting, not a
// teacher-specific behavior.
func (i *Interpreter) hoistFunctions(stmts []ast.Stmt, env *runtime.Environment) {
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunctionDecl); ok && fd.Body != nil {
			env.Define(fd.Name, i.makeFunction(fd, env))
		}
	}
}

// exec dispatches one statement. disposal is the enclosing block's
// DisposalStack (nil when a statement form introduces no `using` bindings
// of its own, e.g. inside a single-statement if-branch that isn't a Block).
func (i *Interpreter) exec(s ast.Stmt, env *runtime.Environment, disposal *runtime.DisposalStack) (Completion, error) {
	switch n := s.(type) {
	case *ast.VarDecl:
		return i.execVarDecl(n, env)
	case *ast.ExpressionStmt:
		v, err := i.eval(n.Expr, env)
		if err != nil {
			return Completion{}, err
		}
		return normal(v), nil
	case *ast.Sequence:
		return i.execStatements(n.Statements, env)
	case *ast.Block:
		return i.execStatements(n.Statements, env.NewEnclosed())
	case *ast.FunctionDecl:
		if n.Body == nil {
			return normal(runtime.Undefined), nil // overload signature: nothing to execute
		}
		if !env.Has(n.Name) {
			env.Define(n.Name, i.makeFunction(n, env))
		}
		return normal(runtime.Undefined), nil
	case *ast.Return:
		var v runtime.Value = runtime.Undefined
		if n.Value != nil {
			var err error
			v, err = i.eval(n.Value, env)
			if err != nil {
				return Completion{}, err
			}
		}
		return Completion{Kind: Return, Value: v}, nil
	case *ast.If:
		return i.execIf(n, env)
	case *ast.While:
		return i.execWhile(n, env)
	case *ast.DoWhile:
		return i.execDoWhile(n, env)
	case *ast.For:
		return i.execFor(n, env)
	case *ast.ForOf:
		return i.execForOf(n, env)
	case *ast.ForIn:
		return i.execForIn(n, env)
	case *ast.Break:
		return Completion{Kind: Break, Label: n.Label}, nil
	case *ast.Continue:
		return Completion{Kind: Continue, Label: n.Label}, nil
	case *ast.LabeledStatement:
		return i.execLabeled(n, env)
	case *ast.Switch:
		return i.execSwitch(n, env)
	case *ast.TryCatch:
		return i.execTry(n, env)
	case *ast.Throw:
		v, err := i.eval(n.Value, env)
		if err != nil {
			return Completion{}, err
		}
		return Completion{}, throwValue(v)
	case *ast.ClassDecl:
		class, err := i.evalClassDecl(n, env)
		if err != nil {
			return Completion{}, err
		}
		env.Define(n.Name, class)
		return normal(runtime.Undefined), nil
	case *ast.InterfaceDecl:
		return normal(runtime.Undefined), nil // erased at runtime (spec.md §4.3)
	case *ast.TypeAlias:
		return normal(runtime.Undefined), nil // type-level only
	case *ast.Enum:
		return i.execEnum(n, env)
	case *ast.Namespace:
		return i.execNamespace(n, env)
	case *ast.Using:
		return i.execUsing(n, env, disposal)
	case *ast.Directive:
		return normal(runtime.Undefined), nil // directives have no runtime effect
	case *ast.Import, *ast.ImportAlias, *ast.DeclareModule, *ast.DeclareGlobal:
		return normal(runtime.Undefined), nil // no-op: nothing in the engine resolves modules
	case *ast.Export:
		if n.Decl != nil {
			return i.exec(n.Decl, env, disposal)
		}
		return normal(runtime.Undefined), nil
	default:
		return Completion{}, fmt.Errorf("interpreter: unhandled statement %T", s)
	}
}

func (i *Interpreter) execVarDecl(n *ast.VarDecl, env *runtime.Environment) (Completion, error) {
	var v runtime.Value = runtime.Undefined
	if n.Init != nil {
		var err error
		v, err = i.eval(n.Init, env)
		if err != nil {
			return Completion{}, err
		}
	}
	if n.Kind == ast.VarConst {
		env.DefineConst(n.Name, v)
	} else {
		env.Define(n.Name, v)
	}
	return normal(runtime.Undefined), nil
}

func (i *Interpreter) execIf(n *ast.If, env *runtime.Environment) (Completion, error) {
	cond, err := i.eval(n.Cond, env)
	if err != nil {
		return Completion{}, err
	}
	if runtime.Truthy(cond) {
		return i.exec(n.Then, env, nil)
	}
	if n.Else != nil {
		return i.exec(n.Else, env, nil)
	}
	return normal(runtime.Undefined), nil
}

// loopSignal interprets a body's completion against an optional loop
// label: (stop, result, err). stop is true when the loop itself should
// break out or the completion should propagate further upward.
func loopSignal(comp Completion, label string) (brk bool, cont bool, propagate bool) {
	switch comp.Kind {
	case Break:
		if comp.Label == "" || comp.Label == label {
			return true, false, false
		}
		return false, false, true
	case Continue:
		if comp.Label == "" || comp.Label == label {
			return false, true, false
		}
		return false, false, true
	case Return:
		return false, false, true
	}
	return false, false, false
}

func (i *Interpreter) execWhile(n *ast.While, env *runtime.Environment) (Completion, error) {
	for {
		cond, err := i.eval(n.Cond, env)
		if err != nil {
			return Completion{}, err
		}
		if !runtime.Truthy(cond) {
			return normal(runtime.Undefined), nil
		}
		comp, err := i.exec(n.Body, env.NewEnclosed(), nil)
		if err != nil {
			return Completion{}, err
		}
		brk, _, propagate := loopSignal(comp, n.Label)
		if propagate {
			return comp, nil
		}
		if brk {
			return normal(runtime.Undefined), nil
		}
	}
}

func (i *Interpreter) execDoWhile(n *ast.DoWhile, env *runtime.Environment) (Completion, error) {
	for {
		comp, err := i.exec(n.Body, env.NewEnclosed(), nil)
		if err != nil {
			return Completion{}, err
		}
		brk, _, propagate := loopSignal(comp, n.Label)
		if propagate {
			return comp, nil
		}
		if brk {
			return normal(runtime.Undefined), nil
		}
		cond, err := i.eval(n.Cond, env)
		if err != nil {
			return Completion{}, err
		}
		if !runtime.Truthy(cond) {
			return normal(runtime.Undefined), nil
		}
	}
}

func (i *Interpreter) execFor(n *ast.For, env *runtime.Environment) (Completion, error) {
	loopEnv := env.NewEnclosed()
	if n.Init != nil {
		if _, err := i.exec(n.Init, loopEnv, nil); err != nil {
			return Completion{}, err
		}
	}
	for {
		if n.Cond != nil {
			cond, err := i.eval(n.Cond, loopEnv)
			if err != nil {
				return Completion{}, err
			}
			if !runtime.Truthy(cond) {
				return normal(runtime.Undefined), nil
			}
		}
		comp, err := i.exec(n.Body, loopEnv.NewEnclosed(), nil)
		if err != nil {
			return Completion{}, err
		}
		brk, _, propagate := loopSignal(comp, n.Label)
		if propagate {
			return comp, nil
		}
		if brk {
			return normal(runtime.Undefined), nil
		}
		if n.Post != nil {
			if _, err := i.eval(n.Post, loopEnv); err != nil {
				return Completion{}, err
			}
		}
	}
}

func (i *Interpreter) execForOf(n *ast.ForOf, env *runtime.Environment) (Completion, error) {
	iterable, err := i.eval(n.Iterable, env)
	if err != nil {
		return Completion{}, err
	}
	values, err := i.iterate(iterable)
	if err != nil {
		return Completion{}, err
	}
	for _, v := range values {
		if n.Await {
			v, err = i.awaitValue(v)
			if err != nil {
				return Completion{}, err
			}
		}
		iterEnv := env.NewEnclosed()
		if n.IsDecl {
			if n.Kind == ast.VarConst {
				iterEnv.DefineConst(n.Name, v)
			} else {
				iterEnv.Define(n.Name, v)
			}
		} else if err := iterEnv.Set(n.Name, v); err != nil {
			return Completion{}, i.wrapFacadeError(err)
		}
		comp, err := i.exec(n.Body, iterEnv, nil)
		if err != nil {
			return Completion{}, err
		}
		brk, _, propagate := loopSignal(comp, n.Label)
		if propagate {
			return comp, nil
		}
		if brk {
			break
		}
	}
	return normal(runtime.Undefined), nil
}

func (i *Interpreter) execForIn(n *ast.ForIn, env *runtime.Environment) (Completion, error) {
	obj, err := i.eval(n.Object, env)
	if err != nil {
		return Completion{}, err
	}
	keys := enumerableKeys(obj)
	for _, k := range keys {
		iterEnv := env.NewEnclosed()
		if n.IsDecl {
			iterEnv.Define(n.Name, runtime.String(k))
		} else if err := iterEnv.Set(n.Name, runtime.String(k)); err != nil {
			return Completion{}, i.wrapFacadeError(err)
		}
		comp, err := i.exec(n.Body, iterEnv, nil)
		if err != nil {
			return Completion{}, err
		}
		brk, _, propagate := loopSignal(comp, n.Label)
		if propagate {
			return comp, nil
		}
		if brk {
			break
		}
	}
	return normal(runtime.Undefined), nil
}

func enumerableKeys(v runtime.Value) []string {
	switch o := v.(type) {
	case *runtime.Object:
		return append([]string(nil), o.PropertyOrder...)
	case *runtime.Array:
		keys := make([]string, len(o.Elements))
		for idx := range o.Elements {
			keys[idx] = fmt.Sprintf("%d", idx)
		}
		return keys
	case *runtime.Instance:
		return append([]string(nil), o.FieldOrder...)
	}
	return nil
}

func (i *Interpreter) execLabeled(n *ast.LabeledStatement, env *runtime.Environment) (Completion, error) {
	switch body := n.Body.(type) {
	case *ast.While:
		body.Label = n.Label
		return i.execWhile(body, env)
	case *ast.DoWhile:
		body.Label = n.Label
		return i.execDoWhile(body, env)
	case *ast.For:
		body.Label = n.Label
		return i.execFor(body, env)
	case *ast.ForOf:
		body.Label = n.Label
		return i.execForOf(body, env)
	case *ast.ForIn:
		body.Label = n.Label
		return i.execForIn(body, env)
	case *ast.Switch:
		body.Label = n.Label
		return i.execSwitch(body, env)
	default:
		comp, err := i.exec(n.Body, env, nil)
		if err != nil {
			return Completion{}, err
		}
		if comp.Kind == Break && comp.Label == n.Label {
			return normal(runtime.Undefined), nil
		}
		return comp, nil
	}
}

func (i *Interpreter) execSwitch(n *ast.Switch, env *runtime.Environment) (Completion, error) {
	disc, err := i.eval(n.Discriminant, env)
	if err != nil {
		return Completion{}, err
	}
	switchEnv := env.NewEnclosed()
	matched := -1
	defaultIdx := -1
	for idx, c := range n.Cases {
		if c.Test == nil {
			defaultIdx = idx
			continue
		}
		testVal, err := i.eval(c.Test, switchEnv)
		if err != nil {
			return Completion{}, err
		}
		if runtime.StrictEquals(disc, testVal) {
			matched = idx
			break
		}
	}
	if matched == -1 {
		matched = defaultIdx
	}
	if matched == -1 {
		return normal(runtime.Undefined), nil
	}
	for idx := matched; idx < len(n.Cases); idx++ {
		comp, err := i.execStatements(n.Cases[idx].Statements, switchEnv)
		if err != nil {
			return Completion{}, err
		}
		if comp.Kind == Break && comp.Label == "" {
			return normal(runtime.Undefined), nil
		}
		if comp.Kind == Break && comp.Label == n.Label {
			return normal(runtime.Undefined), nil
		}
		if comp.Kind != Normal {
			return comp, nil
		}
	}
	return normal(runtime.Undefined), nil
}

func (i *Interpreter) execTry(n *ast.TryCatch, env *runtime.Environment) (Completion, error) {
	comp, err := i.execStatements(n.Body.Statements, env.NewEnclosed())
	if err != nil {
		if thrown, ok := err.(*ThrowSignal); ok && n.Catch != nil {
			catchEnv := env.NewEnclosed()
			if n.Catch.Param != "" {
				catchEnv.Define(n.Catch.Param, thrown.Value)
			}
			comp, err = i.execStatements(n.Catch.Body.Statements, catchEnv)
		}
	}
	if n.Finally != nil {
		finallyComp, finallyErr := i.execStatements(n.Finally.Statements, env.NewEnclosed())
		if finallyErr != nil {
			return Completion{}, finallyErr // finally's own throw/return supersedes try/catch's outcome
		}
		if finallyComp.Kind != Normal {
			return finallyComp, nil
		}
	}
	return comp, err
}

func (i *Interpreter) execEnum(n *ast.Enum, env *runtime.Environment) (Completion, error) {
	obj := runtime.NewObject()
	next := 0.0
	for _, m := range n.Members {
		var v runtime.Value
		if m.Value != nil {
			var err error
			v, err = i.eval(m.Value, env)
			if err != nil {
				return Completion{}, err
			}
			if num, ok := v.(runtime.Number); ok {
				next = float64(num) + 1
			}
		} else {
			v = runtime.Number(next)
			next++
		}
		obj.Set(m.Name, v)
		if num, ok := v.(runtime.Number); ok && n.Kind != ast.EnumString {
			obj.Set(runtime.ToStringValue(num), runtime.String(m.Name)) // reverse mapping, numeric enums only
		}
	}
	env.Define(n.Name, obj)
	return normal(runtime.Undefined), nil
}

// execNamespace merges Body into an existing namespace object of the same
// name if one was already declared earlier in this scope (spec.md §3
// RuntimeEnv: namespace merging), else creates a fresh one.
func (i *Interpreter) execNamespace(n *ast.Namespace, env *runtime.Environment) (Completion, error) {
	var obj *runtime.Object
	if existing, ok := env.Get(n.Name); ok {
		if o, ok := existing.(*runtime.Object); ok {
			obj = o
		}
	}
	if obj == nil {
		obj = runtime.NewObject()
		env.Define(n.Name, obj)
	}
	nsEnv := env.NewEnclosed()
	if _, err := i.execStatements(n.Body, nsEnv); err != nil {
		return Completion{}, err
	}
	for _, name := range nsEnv.OwnNames() {
		v, _ := nsEnv.Get(name)
		obj.Set(name, v)
	}
	return normal(runtime.Undefined), nil
}

func (i *Interpreter) execUsing(n *ast.Using, env *runtime.Environment, disposal *runtime.DisposalStack) (Completion, error) {
	var v runtime.Value = runtime.Undefined
	if n.Initializer != nil {
		var err error
		v, err = i.eval(n.Initializer, env)
		if err != nil {
			return Completion{}, err
		}
	}
	env.Define(n.Name, v)
	if disposal != nil && v != nil && v.Kind() != runtime.KindUndefined && v.Kind() != runtime.KindNull {
		disposal.Push(v, n.Await)
	}
	return normal(runtime.Undefined), nil
}
