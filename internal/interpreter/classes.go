package interpreter

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/runtime"
)

// getProperty wraps internal/runtime's facade GetProperty, additionally
// invoking an accessor getter when the resolved class member is one
// (spec.md §4.4 property/getter-setter semantics) — kept at the
// interpreter layer rather than in the facade itself because only the
// interpreter can propagate a getter body's thrown error back to the
// caller; the facade's GetProperty has no error channel.
func (i *Interpreter) getProperty(obj runtime.Value, name string) (runtime.Value, error) {
	if inst, ok := obj.(*runtime.Instance); ok {
		if _, fieldSet := inst.Get(name); !fieldSet {
			if m, _ := inst.Class.LookupMethod(name); m != nil && m.IsGetter {
				return i.runFunctionBody(m.Fn, inst, nil)
			}
		}
	}
	if gen, ok := obj.(*runtime.Generator); ok {
		if v, ok := generatorMethod(gen, name); ok {
			return v, nil
		}
		return runtime.Undefined, nil
	}
	v, _ := runtime.GetProperty(obj, name)
	if v == nil {
		return runtime.Undefined, nil
	}
	return v, nil
}

// setProperty mirrors getProperty for accessor setters.
func (i *Interpreter) setProperty(obj runtime.Value, name string, value runtime.Value) error {
	if inst, ok := obj.(*runtime.Instance); ok {
		if m, _ := inst.Class.LookupMethod(name); m != nil && m.IsSetter {
			_, err := i.runFunctionBody(m.Fn, inst, []runtime.Value{value})
			return err
		}
	}
	return i.wrapFacadeError(runtime.SetProperty(obj, name, value))
}

// evalClassDecl builds a runtime.Class from a class declaration: fields
// become FieldInit initializers run by instantiate, methods/getters/
// setters populate Methods, and a static block or static field initializer
// runs immediately in declaration order against the class's own Closure
// (spec.md §4.3 Classes).
func (i *Interpreter) evalClassDecl(n *ast.ClassDecl, env *runtime.Environment) (*runtime.Class, error) {
	var super *runtime.Class
	if n.Extends != nil {
		superV, ok := env.Get(n.Extends.Name)
		if !ok {
			return nil, i.throwNamed("ReferenceError", n.Extends.Name+" is not defined")
		}
		super, ok = superV.(*runtime.Class)
		if !ok {
			return nil, i.throwNamed("TypeError", n.Extends.Name+" is not a constructor")
		}
	}
	class := runtime.NewClass(n.Name, super)
	class.Abstract = n.Abstract

	// classEnv lets method bodies and field initializers resolve the
	// class's own name recursively and lets `super` resolve the parent
	// class without threading it through every call site.
	classEnv := env.NewEnclosed()
	classEnv.Define(n.Name, class)
	if super != nil {
		classEnv.DefineConst("__superclass__", super)
	}

	for _, member := range n.Members {
		switch m := member.(type) {
		case *ast.FieldDecl:
			if m.Static {
				var v runtime.Value = runtime.Undefined
				if m.Init != nil {
					var err error
					v, err = i.eval(m.Init, classEnv)
					if err != nil {
						return nil, err
					}
				}
				class.StaticFields[m.Name] = v
				continue
			}
			class.FieldNames = append(class.FieldNames, m.Name)
			init := m.Init
			class.FieldInit[m.Name] = func(this *runtime.Instance) runtime.Value {
				if init == nil {
					return runtime.Undefined
				}
				fieldEnv := classEnv.NewEnclosed()
				fieldEnv.Define("this", this)
				v, err := i.eval(init, fieldEnv)
				if err != nil {
					return runtime.Undefined
				}
				return v
			}
		case *ast.Accessor:
			if m.Kind == ast.AccessorConstructor {
				class.Constructor = i.makeMethodFunction(m, classEnv)
				continue
			}
			fn := i.makeMethodFunction(m, classEnv)
			method := &runtime.Method{
				Name: m.Name, Fn: fn, Static: m.Static,
				IsGetter: m.Kind == ast.AccessorGet, IsSetter: m.Kind == ast.AccessorSet,
				AccessMod: m.AccessMod, Abstract: m.Abstract,
			}
			class.Methods[m.Name] = method
		case *ast.StaticBlock:
			blockEnv := classEnv.NewEnclosed()
			if _, err := i.execStatements(m.Body.Statements, blockEnv); err != nil {
				return nil, err
			}
		}
	}
	return class, nil
}

func (i *Interpreter) makeMethodFunction(a *ast.Accessor, closure *runtime.Environment) *runtime.Function {
	if a.Body == nil {
		return &runtime.Function{Name: a.Name, Params: paramBindings(a.Params), Closure: closure}
	}
	return &runtime.Function{
		Name: a.Name, Params: paramBindings(a.Params), Body: a.Body, Closure: closure,
		Async: a.Async, Generator: a.Generator,
	}
}

func (i *Interpreter) evalNew(n *ast.New, env *runtime.Environment) (runtime.Value, error) {
	calleeV, err := i.eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	if v, ok := n.Callee.(*ast.Variable); ok && v.Name == "Promise" {
		if _, isObj := calleeV.(*runtime.Object); isObj {
			args, err := i.evalArgs(n.Args, env)
			if err != nil {
				return nil, err
			}
			if len(args) == 0 {
				return nil, i.throwNamed("TypeError", "Promise resolver is not a function")
			}
			return i.newPromiseFromExecutor(args[0])
		}
	}
	class, ok := calleeV.(*runtime.Class)
	if !ok {
		return nil, i.throwNamed("TypeError", describeReceiver(n.Callee)+" is not a constructor")
	}
	if class.Abstract {
		return nil, i.throwNamed("TypeError", "Cannot construct an instance of an abstract class "+class.Name)
	}
	args, err := i.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	return i.instantiate(class, args)
}

// instantiate walks the Super chain outward-in initializing declared
// fields in declaration order, then runs the most-derived constructor (or,
// absent one, implicitly forwards args to the nearest ancestor that has
// one, matching `class Sub extends Base {}`'s default-constructor rule).
// The built-in Error hierarchy is special-cased: it has no AST body to
// walk, so its "constructor" just sets name/message directly.
func (i *Interpreter) instantiate(class *runtime.Class, args []runtime.Value) (*runtime.Instance, error) {
	inst := runtime.NewInstance(class)
	i.initFields(class, inst)
	if i.nativeErr[class] {
		inst.Set("name", runtime.String(class.Name))
		msg := ""
		if len(args) > 0 {
			msg = runtime.ToStringValue(args[0])
		}
		inst.Set("message", runtime.String(msg))
		return inst, nil
	}
	ctor, _ := findConstructor(class)
	if ctor == nil {
		return inst, nil
	}
	if ctor.Body == nil {
		return inst, nil
	}
	if _, err := i.runFunctionBody(ctor, inst, args); err != nil {
		return nil, err
	}
	return inst, nil
}

func (i *Interpreter) initFields(class *runtime.Class, inst *runtime.Instance) {
	if class.Super != nil {
		i.initFields(class.Super, inst)
	}
	for _, name := range class.FieldNames {
		inst.Set(name, class.FieldInit[name](inst))
	}
}

func findConstructor(class *runtime.Class) (*runtime.Function, *runtime.Class) {
	for cur := class; cur != nil; cur = cur.Super {
		if cur.Constructor != nil {
			return cur.Constructor, cur
		}
	}
	return nil, nil
}

// evalSuperCall handles `super(args)` inside a subclass constructor,
// running the parent class's constructor against the same `this`.
func (i *Interpreter) evalSuperCall(n *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	superClassV, ok := env.Get("__superclass__")
	if !ok {
		return nil, fmt.Errorf("interpreter: 'super(...)' used outside a subclass constructor")
	}
	superClass := superClassV.(*runtime.Class)
	this, _ := env.Get("this")
	inst, _ := this.(*runtime.Instance)
	args, err := i.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	ctor, _ := findConstructor(superClass)
	if ctor == nil || ctor.Body == nil {
		return runtime.Undefined, nil
	}
	return i.runFunctionBody(ctor, inst, args)
}
