package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stlalpha/fdbridge/internal/tosser"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Toss whenever *.MSG files arrive and on a schedule",
		Long: `Run a toss at startup, then again whenever a *.MSG file is written in an
area directory and on the cron schedule given by --schedule. Runs never
overlap. Stops on SIGINT or SIGTERM.

Examples:
  # Toss as mail arrives
  fdbridge watch --delete

  # Only on a schedule: every five minutes
  fdbridge watch --no-watch --schedule "@every 5m"

  # Watch, plus a full pass at the top of every hour (seconds field first)
  fdbridge watch --schedule "0 0 * * * *"`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	addRunFlags(cmd.Flags())
	cmd.Flags().String("schedule", "", "cron schedule (six fields, seconds first, or @every DURATION)")
	cmd.Flags().Duration("debounce", 0, "quiet time after the last *.MSG event before a run (default 500ms)")
	cmd.Flags().Bool("no-watch", false, "do not watch area directories")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := e.tosser(cmd)
	err = t.Watch(ctx, tosser.WatchOptions{
		Schedule: e.settings.Watch.Schedule,
		Debounce: e.settings.Watch.Debounce,
		NoWatch:  e.settings.Watch.NoWatch,
		OnRun: func(res tosser.TossResult, err error) {
			if err != nil {
				return
			}
			e.logger.WithFields(logrus.Fields{
				"run":      res.RunID,
				"inbound":  res.MessagesImported,
				"outbound": res.MessagesExported,
			}).Debug("watch run complete")
		},
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
