// Command tsforge is the CLI driver for the tsforge engine: run, compile,
// check, pack, fmt, and version verbs (spec.md §6/§7).
package main

import (
	"os"

	"github.com/scriptlang/tsforge/cmd/tsforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
