package interpreter

import "github.com/scriptlang/tsforge/internal/runtime"

// errorClasses is an alias for the hierarchy internal/runtime builds and
// internal/bytecode shares, so both engines throw and recognize the
// identical Error/TypeError/RangeError/... classes.
type errorClasses = runtime.ErrorClasses

func newErrorClasses() *errorClasses { return runtime.NewErrorClasses() }

// throwNamed is a convenience for the many places the interpreter raises a
// host-level error (bad operand types, undeclared identifiers, stack
// overflow) as a thrown value rather than a bare Go error.
func (i *Interpreter) throwNamed(name, message string) error {
	return throwValue(i.errors.New(name, message))
}

// wrapFacadeError unwraps a plain fmt.Errorf-style error coming back from
// internal/runtime's facade (Add, SetProperty, Environment.Set, ...) into
// a thrown Error instance, parsing a leading "Name: " prefix into the
// error's name field when present (the convention internal/runtime and
// internal/builtins already follow, e.g. "TypeError: ...", "RangeError:
// ...") so facade-raised errors surface to catch clauses with the same
// shape as interpreter-raised ones.
func (i *Interpreter) wrapFacadeError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*ThrowSignal); ok {
		return err
	}
	name, msg := runtime.ParseErrorPrefix(err.Error())
	return throwValue(i.errors.New(name, msg))
}
