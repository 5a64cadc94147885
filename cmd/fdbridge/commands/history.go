package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stlalpha/fdbridge/internal/journal"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent toss runs recorded in the journal",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().String("journal", "", "journal database path")
	cmd.Flags().IntP("limit", "n", 20, "number of runs to show")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if s.Journal == "" {
		return errors.New("no journal configured (--journal or FDBRIDGE_JOURNAL)")
	}

	j, err := journal.Open(s.Journal)
	if err != nil {
		return err
	}
	defer j.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := j.Runs(limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-19s  %-8s  %8s  %8s  %9s  %s\n", "Started", "Run", "Inbound", "Outbound", "Abandoned", "Result")
	for _, r := range runs {
		result := "ok"
		if r.Error != "" {
			result = r.Error
		}
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(w, "%-19s  %-8s  %8d  %8d  %9d  %s\n",
			r.Started.Format(time.DateTime), id, r.Inbound, r.Outbound, r.Abandoned, result)
	}
	return nil
}
