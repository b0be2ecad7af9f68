package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptlang/tsforge/pkg/tsforge"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Parse and type-check a tsforge script without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(c *cobra.Command, args []string) error {
	file := args[0]
	data, err := os.ReadFile(file)
	if err != nil {
		exitWithError("tsforge check: %v", err)
		return err
	}
	source := string(data)

	prog, err := tsforge.Parse(source, file)
	if err != nil {
		reportRunError(err, source, file)
		return err
	}
	if err := tsforge.Check(prog, file); err != nil {
		reportRunError(err, source, file)
		return err
	}
	fmt.Fprintf(os.Stderr, "%s: ok\n", file)
	return nil
}
