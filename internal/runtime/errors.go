package runtime

// ErrorClasses holds the built-in Error constructor hierarchy (Error <-
// TypeError/RangeError/SyntaxError/ReferenceError/EvalError/URIError).
// Every value either execution engine throws is an *Instance of one of
// these classes with "name" and "message" fields, so a catch clause
// pattern-matches the same two fields regardless of which engine raised
// it or which category it belongs to. Shared here (rather than kept
// private to internal/interpreter) so internal/bytecode's VM constructs
// and recognizes the identical class hierarchy instead of a second copy
// that would drift from the tree walker's.
type ErrorClasses struct {
	Base   *Class
	ByName map[string]*Class
}

// NewErrorClasses builds the Error/TypeError/RangeError/... hierarchy.
// Each constructor's Body stays nil: constructing one of these is
// special-cased by both engines (setting name/message directly) rather
// than interpreting or executing a body, since these constructors have no
// user-visible source to walk.
func NewErrorClasses() *ErrorClasses {
	ec := &ErrorClasses{ByName: make(map[string]*Class)}
	ec.Base = ec.define("Error", nil)
	for _, name := range []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError"} {
		ec.define(name, ec.Base)
	}
	return ec
}

func (ec *ErrorClasses) define(name string, super *Class) *Class {
	class := NewClass(name, super)
	class.Constructor = &Function{Name: name, Params: []ParamBinding{{Name: "message"}}}
	ec.ByName[name] = class
	return class
}

// New constructs an *Instance of the named built-in error class (falling
// back to "Error" for an unregistered name) with name/message populated
// directly, bypassing the interpreted/compiled constructor call path.
func (ec *ErrorClasses) New(name, message string) *Instance {
	class, ok := ec.ByName[name]
	if !ok {
		class, name = ec.Base, "Error"
	}
	inst := NewInstance(class)
	inst.Set("name", String(name))
	inst.Set("message", String(message))
	return inst
}

// errorNames lists the built-in Error subclass names in the order
// wrapFacadeError-style helpers should try them when parsing a leading
// "Name: " prefix off a plain facade error message.
var errorNames = []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError"}

// ParseErrorPrefix splits a facade error message of the form "TypeError:
// msg" into its class name and bare message, falling back to "Error" when
// no recognized prefix is present. Used by both engines to give a plain
// fmt.Errorf-style error from this package the same {name, message} shape
// as a directly-thrown Error instance.
func ParseErrorPrefix(msg string) (name, rest string) {
	for _, candidate := range errorNames {
		prefix := candidate + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return candidate, msg[len(prefix):]
		}
	}
	return "Error", msg
}

// ThrownValue boxes a thrown Value as a Go error so both the tree-walking
// interpreter and the bytecode VM propagate a script-level throw through
// the same (result, error) return channel they already use for
// host-level faults (a bad operand, an undeclared identifier), and so a
// throw crosses internal/runtime's facade Call unchanged regardless of
// which engine is on the other end of the call.
type ThrownValue struct {
	Value Value
}

func (t *ThrownValue) Error() string {
	if s, ok := t.Value.(*Instance); ok {
		name, _ := s.Get("name")
		msg, _ := s.Get("message")
		return ToStringValue(name) + ": " + ToStringValue(msg)
	}
	return ToStringValue(t.Value)
}

// Throw wraps v as a ThrownValue error.
func Throw(v Value) error { return &ThrownValue{Value: v} }
