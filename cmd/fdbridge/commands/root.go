// Package commands implements the fdbridge command line.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCmd builds the command tree. Every call returns a fresh tree, so
// flag values never carry over between invocations.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fdbridge",
		Short: "Toss mail between FrontDoor *.MSG areas and a RemoteAccess/QuickBBS message base",
		Long: `fdbridge moves echomail and netmail between directories of FTS-0001
stored messages (*.MSG) and a RemoteAccess/QuickBBS message base.

The routing table is read from fdbridge.json5 or FDTORA.CFG in the
directory named by --config-dir, $FDTORA, or the working directory.

Legacy switches are still understood:
  fdbridge /delete /kill /sin /sout /scan /diag

Exit codes: 0 no mail moved, 1 mail moved, 10 and up a fatal error.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "settings file (default: ./fdbridge.yaml if present)")
	pf.String("config-dir", "", "directory holding fdbridge.json5 or FDTORA.CFG (default: $FDTORA or .)")
	pf.String("areas", "", "routing file; overrides --config-dir")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.Bool("diag", false, "diagnostic output (debug level)")

	root.AddCommand(newTossCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newHistoryCmd())

	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(TranslateLegacy(args))
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil && !errors.Is(err, ErrMailMoved) {
		root.PrintErrln("Error:", err)
	}
	return ExitCode(err)
}
