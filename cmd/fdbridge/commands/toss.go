package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stlalpha/fdbridge/internal/prompt"
)

func newTossCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toss",
		Short: "Run one inbound and one outbound pass",
		Long: `Toss untossed *.MSG files from every area into the message base, then
toss unmoved echomail and netmail from the message base out to *.MSG files.

Examples:
  # Plain toss, deleting *.MSG files once they are in the message base
  fdbridge toss --delete

  # Re-send everything written by one user, marking it deleted afterwards
  fdbridge toss --skip-inbound --rescan "John Doe" --kill

  # Ask for the rescan name
  fdbridge toss --scan`,
		Args: cobra.NoArgs,
		RunE: runToss,
	}
	addRunFlags(cmd.Flags())
	cmd.Flags().Bool("scan", false, "prompt for the sender name to re-scan for")
	cmd.Flags().Bool("summary", true, "print a summary when the run finishes")
	return cmd
}

func runToss(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	f := cmd.Flags()
	skipIn, _ := f.GetBool("skip-inbound")
	skipOut, _ := f.GetBool("skip-outbound")
	rescan, _ := f.GetString("rescan")
	if scan, _ := f.GetBool("scan"); scan && rescan == "" {
		rescan, err = prompt.RescanName(cmd.InOrStdin(), cmd.OutOrStdout())
		if errors.Is(err, prompt.ErrCancelled) {
			e.logger.Info("rescan cancelled")
			rescan, err = "", nil
		}
		if err != nil {
			return err
		}
	}

	res, err := e.newTosser(skipIn, skipOut, rescan).RunOnce()
	if summary, _ := f.GetBool("summary"); summary {
		fmt.Fprintln(cmd.OutOrStdout(), prompt.Summary(res))
	}
	if err != nil {
		return err
	}
	if res.Moved() {
		return ErrMailMoved
	}
	return nil
}
