package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version/GitCommit/BuildDate are overwritten at release-build time via
// `-ldflags -X`, mirroring the teacher's cmd/dwscript version wiring.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "tsforge",
	Short:   "tsforge: a TypeScript-superset scripting engine",
	Long:    "tsforge compiles and runs a TypeScript-superset scripting language, with a bytecode VM and a tree-walking interpreter fallback for constructs the compiler does not yet lower.",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate("tsforge {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print the engine used and files written to stderr")
}

// Execute runs the root command; main exits non-zero if it returns an error.
func Execute() error {
	return rootCmd.Execute()
}

func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// colorEnabled gates ANSI diagnostic coloring on stderr being an actual
// terminal, matching the teacher's convention of never coloring piped
// output.
func colorEnabled() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
