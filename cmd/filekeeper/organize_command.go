package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jmuk/filekeeper/pkg/files"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

type organizeView struct {
	Directory string          `json:"directory"`
	Moved     []files.Move    `json:"moved"`
	Skipped   []files.Skipped `json:"skipped"`
	Message   string          `json:"message"`
}

func printMoves(out io.Writer, dir string, moves []files.Move) {
	rows := make([][]string, 0, len(moves))
	for _, m := range moves {
		rel, err := filepath.Rel(dir, m.Destination)
		if err != nil {
			rel = m.Destination
		}
		rows = append(rows, []string{filepath.Base(m.Source), m.Category, rel})
	}
	fmt.Fprintln(out, renderTable([]string{"File", "Category", "Destination"}, rows))
}

// confirmOrganize asks the user to go ahead with n moves. Without a
// terminal on stdin the caller has to pass --yes.
func confirmOrganize(n int) (bool, error) {
	if !stdinIsTerminal() {
		return false, errors.New("stdin is not a terminal; pass --yes to organize without confirmation")
	}
	_, err := (&promptui.Prompt{
		Label:     fmt.Sprintf("Move %d files", n),
		IsConfirm: true,
	}).Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun bool
		yes    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "organize DIR",
		Short: "Move the files of a directory into category folders",
		Long: "Move every file directly inside DIR into a subfolder named after its category.\n" +
			"Files whose destination already exists are left in place.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ft, err := ctx.fileTools()
			if err != nil {
				return err
			}
			plan, err := ft.Plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if dryRun {
				if asJSON {
					return writeJSON(cmd, plan)
				}
				if len(plan.Moved) > 0 {
					printMoves(out, plan.Directory, plan.Moved)
				}
				printSkipped(out, plan.Skipped)
				fmt.Fprintf(out, "Would move %d files\n", len(plan.Moved))
				return nil
			}
			if len(plan.Moved) == 0 {
				if !asJSON {
					printSkipped(out, plan.Skipped)
					fmt.Fprintln(out, "Nothing to organize")
					return nil
				}
			} else if !yes {
				if !asJSON {
					printMoves(out, plan.Directory, plan.Moved)
				}
				ok, err := confirmOrganize(len(plan.Moved))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			var v organizeView
			if err := ctx.runTool(cmd.Context(), "organize_files", map[string]any{
				"directory": args[0],
			}, &v); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, v)
			}
			if yes && len(v.Moved) > 0 {
				printMoves(out, v.Directory, v.Moved)
			}
			printSkipped(out, v.Skipped)
			fmt.Fprintln(out, v.Message)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Only show what would be moved")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
