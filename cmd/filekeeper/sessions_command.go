package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmuk/filekeeper/pkg/session"
	"github.com/spf13/cobra"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List the sessions started in the current directory, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := ctx.sessionBaseDir()
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			sessions, err := session.List(baseDir, cwd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions found")
				return nil
			}
			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				_, statErr := os.Stat(filepath.Join(s.Path(), "logs"))
				rows = append(rows, []string{
					s.ID(),
					s.Timestamp().Local().Format(stampLayout),
					yesNo(statErr == nil),
					s.Path(),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Session", "Started", "Logs", "Directory"}, rows))
			return nil
		},
	}
}
