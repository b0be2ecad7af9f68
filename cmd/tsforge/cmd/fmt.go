package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptlang/tsforge/pkg/printer"
	"github.com/scriptlang/tsforge/pkg/tsforge"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Re-render a tsforge script from its parsed AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "overwrite the input file instead of printing to stdout")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(c *cobra.Command, args []string) error {
	file := args[0]
	data, err := os.ReadFile(file)
	if err != nil {
		exitWithError("tsforge fmt: %v", err)
		return err
	}
	source := string(data)

	prog, err := tsforge.Parse(source, file)
	if err != nil {
		reportRunError(err, source, file)
		return err
	}

	out := printer.Print(prog)
	if fmtWrite {
		return os.WriteFile(file, []byte(out), 0o644)
	}
	fmt.Print(out)
	return nil
}
