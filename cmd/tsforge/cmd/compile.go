package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptlang/tsforge/pkg/tsforge"
)

var (
	compileOutFile       string
	compileDisassemble   bool
	compileSkipTypeCheck bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a tsforge script to bytecode",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutFile, "out", "o", "", "write the disassembled chunk to this path instead of stdout")
	compileCmd.Flags().BoolVar(&compileDisassemble, "disassemble", false, "print the disassembled chunk to stdout")
	compileCmd.Flags().BoolVar(&compileSkipTypeCheck, "no-typecheck", false, "skip the type-checking pass before compiling")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(c *cobra.Command, args []string) error {
	file := args[0]
	data, err := os.ReadFile(file)
	if err != nil {
		exitWithError("tsforge compile: %v", err)
		return err
	}

	result, err := tsforge.Compile(string(data), file, tsforge.Options{SkipTypeCheck: compileSkipTypeCheck})
	if err != nil {
		reportRunError(err, string(data), file)
		return err
	}

	// The bytecode compiler doesn't lower every construct yet (classes,
	// async/await, generators, namespaces, using); such scripts still run
	// fine via the interpreter at `tsforge run` time, but there's no
	// chunk here to emit.
	if result.Interpreted {
		fmt.Fprintf(os.Stderr, "%s: uses a construct the bytecode compiler does not yet lower; run it with `tsforge run` instead\n", file)
		return nil
	}

	out := result.Disassembly
	if compileOutFile != "" {
		if err := os.WriteFile(compileOutFile, []byte(out), 0o644); err != nil {
			exitWithError("tsforge compile: %v", err)
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "wrote disassembly to %s\n", compileOutFile)
		}
		return nil
	}
	if compileDisassemble || compileOutFile == "" {
		fmt.Print(out)
	}
	return nil
}
