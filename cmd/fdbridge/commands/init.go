package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stlalpha/fdbridge/internal/area"
	"github.com/stlalpha/fdbridge/internal/ra"
)

const routingTemplate = `{
  // fdbridge routing table
  //
  // message base directory (MSGINFO.BBS, MSGHDR.BBS, ...)
  root: %q,
  areas: [
    // { dir: "/fd/netmail", tag: 1 },
    // { dir: "/fd/echo/fidonews", tag: 2 },
  ],
}
`

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init ROOT",
		Short: "Create an empty message base",
		Long: `Create the five message base files in ROOT. An existing message base is
never overwritten.

With --write-config a commented fdbridge.json5 routing table pointing at
ROOT is written to the config directory as well.`,
		Args: cobra.ExactArgs(1),
		RunE: runInit,
	}
	cmd.Flags().Bool("write-config", false, "also write a starter "+area.JSON5File)
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	s, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("%w: %v", ra.ErrBaseOpen, err)
	}
	if err := ra.Create(root); err != nil {
		return err
	}
	logger.WithField("root", root).Info("message base created")
	fmt.Fprintf(cmd.OutOrStdout(), "Message base created in %s\n", root)

	if write, _ := cmd.Flags().GetBool("write-config"); !write {
		return nil
	}
	path := filepath.Join(s.ConfigDir, area.JSON5File)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(fmt.Sprintf(routingTemplate, root)), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Routing table written to %s\n", path)
	return nil
}
