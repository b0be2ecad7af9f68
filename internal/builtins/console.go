package builtins

import (
	"fmt"
	"os"
	"strings"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterConsole wires the `console` namespace, grounded on the teacher's
// RegisterIOFunctions (Print/PrintLn) but split across log/info/debug/warn/
// error the way Node's console does, since scripts distinguish them by
// output stream and by DevTools-style severity even though this engine
// just routes all of them through os.Stdout/os.Stderr.
func RegisterConsole(r *Registry) {
	r.Register("console", "log", consoleLog(os.Stdout), "Writes a line to stdout")
	r.Register("console", "info", consoleLog(os.Stdout), "Writes a line to stdout")
	r.Register("console", "debug", consoleLog(os.Stdout), "Writes a line to stdout")
	r.Register("console", "warn", consoleLog(os.Stderr), "Writes a line to stderr")
	r.Register("console", "error", consoleLog(os.Stderr), "Writes a line to stderr")
}

func consoleLog(w *os.File) runtime.NativeFn {
	return func(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = inspect(a)
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
		return runtime.Undefined, nil
	}
}

// inspect renders a Value the way console.log does: strings bare, every
// other kind via its String() (which already quotes/brackets itself for
// arrays, objects, etc.).
func inspect(v runtime.Value) string {
	if s, ok := v.(runtime.String); ok {
		return string(s)
	}
	return v.String()
}
