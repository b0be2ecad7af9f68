package interpreter

import (
	"github.com/scriptlang/tsforge/internal/builtins"
	"github.com/scriptlang/tsforge/internal/runtime"
)

// compileRegex wires a /pattern/flags literal to the shared translation
// builtins.CompileRegExp already performs for the RegExp constructor, so a
// literal and `new RegExp(...)` produce identically-behaved values.
func (i *Interpreter) compileRegex(pattern, flags string) (runtime.Value, error) {
	re, err := builtins.CompileRegExp(pattern, flags)
	if err != nil {
		return nil, i.throwNamed("SyntaxError", err.Error())
	}
	return re, nil
}
