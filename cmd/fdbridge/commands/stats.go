package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stlalpha/fdbridge/internal/area"
	"github.com/stlalpha/fdbridge/internal/ra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [ROOT]",
		Short: "Show message base totals",
		Long: `Show the counts record and record totals of a message base. Without ROOT
the message base named by the routing table is used, and boards are
listed with their area directories.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	var areas *area.Registry
	root := ""
	if len(args) == 1 {
		root = args[0]
		if _, _, err := loadSettings(cmd); err != nil {
			return err
		}
	} else {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		areas, root = e.areas, e.areas.Root
	}

	b, err := ra.Open(root)
	if err != nil {
		return err
	}
	defer b.Close()

	st, err := b.Stats()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Message base: %s\n", root)
	fmt.Fprintf(w, "  Messages:   %d (lowest %d, highest %d)\n", st.Counts.Total, st.Counts.Lowest, st.Counts.Highest)
	fmt.Fprintf(w, "  Headers:    %d\n", st.Headers)
	fmt.Fprintf(w, "  Index:      %d\n", st.Index)
	fmt.Fprintf(w, "  Recipients: %d\n", st.Recipients)
	fmt.Fprintf(w, "  Text:       %d blocks\n", st.Blocks)

	fmt.Fprintln(w, "\nBoard  Messages  Directory")
	for i, n := range st.Counts.Board {
		tag := i + 1
		dir := ""
		if areas != nil {
			if a, ok := areas.ByTag(tag); ok {
				dir = a.Dir
			}
		}
		if n == 0 && dir == "" {
			continue
		}
		fmt.Fprintf(w, "%5d  %8d  %s\n", tag, n, dir)
	}
	return nil
}
