package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmuk/filekeeper/pkg/files"
	"github.com/spf13/cobra"
)

// fileView mirrors the file entries returned by the tools.
type fileView struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
	Modified  string `json:"modified"`
}

type filesView struct {
	Files   []fileView      `json:"files"`
	Skipped []files.Skipped `json:"skipped"`
}

type readView struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	Encoding  string `json:"encoding"`
	Size      int64  `json:"size"`
}

func printFiles(out io.Writer, v filesView) {
	if len(v.Files) == 0 {
		fmt.Fprintln(out, "No files found")
	} else {
		rows := make([][]string, 0, len(v.Files))
		for _, f := range v.Files {
			rows = append(rows, []string{f.Path, f.Extension, humanBytes(f.Size), formatStamp(f.Modified)})
		}
		fmt.Fprintln(out, renderTable([]string{"Path", "Ext", "Size", "Modified"}, rows, 2))
	}
	printSkipped(out, v.Skipped)
}

func printSkipped(out io.Writer, skipped []files.Skipped) {
	if len(skipped) == 0 {
		return
	}
	rows := make([][]string, 0, len(skipped))
	for _, s := range skipped {
		rows = append(rows, []string{s.Path, s.Reason})
	}
	fmt.Fprintln(out, "Skipped:")
	fmt.Fprintln(out, renderTable([]string{"Path", "Reason"}, rows))
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list DIR",
		Short: "List the files directly inside a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v filesView
			if err := ctx.runTool(cmd.Context(), "list_files", map[string]any{
				"directory": args[0],
			}, &v); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, v)
			}
			printFiles(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		ext       string
		recursive bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "search DIR [QUERY]",
		Short: "Search files by name and extension",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := map[string]any{
				"directory": args[0],
				"query":     "",
				"recursive": recursive,
			}
			if len(args) > 1 {
				in["query"] = args[1]
			}
			if ext != "" {
				in["extension"] = ext
			}
			var v filesView
			if err := ctx.runTool(cmd.Context(), "search_files", in, &v); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, v)
			}
			printFiles(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.Flags().StringVarP(&ext, "ext", "e", "", "Only match files with this extension")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Search subdirectories")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newReadCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "read PATH",
		Short: "Print the content of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v readView
			if err := ctx.runTool(cmd.Context(), "read_file", map[string]any{
				"file_path": args[0],
			}, &v); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, v)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, v.Content)
			if v.Truncated {
				fmt.Fprintf(cmd.ErrOrStderr(), "(truncated; %s total, encoding %s)\n", humanBytes(v.Size), v.Encoding)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newRulesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the organize rules and the readable file types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := ctx.fileTools()
			if err != nil {
				return err
			}
			if asJSON {
				data, err := ft.RulesJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			rules := ft.Categorizer().Rules()
			rows := make([][]string, 0, rules.Len()+1)
			for pair := rules.Oldest(); pair != nil; pair = pair.Next() {
				rows = append(rows, []string{pair.Key, strings.Join(pair.Value, " ")})
			}
			rows = append(rows, []string{files.OthersCategory, "everything else"})
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Category", "Extensions"}, rows))
			fmt.Fprintf(out, "Readable: %s (up to %d characters)\n",
				strings.Join(ft.Reader().Extensions(), " "), ft.Reader().MaxChars())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the rules as JSON")
	return cmd
}
