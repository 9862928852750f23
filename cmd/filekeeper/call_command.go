package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmuk/filekeeper/pkg/tools"
	"github.com/spf13/cobra"
)

func newCallCommand(ctx *commandContext) *cobra.Command {
	var remote string
	cmd := &cobra.Command{
		Use:   "call TOOL [JSON]",
		Short: "Call a tool with JSON arguments and print its JSON response",
		Example: `  filekeeper call list_files '{"directory": "."}'
  filekeeper call --remote nas search_files '{"directory": "/srv", "query": "tax"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := map[string]any{}
			if len(args) > 1 {
				if err := json.Unmarshal([]byte(args[1]), &in); err != nil {
					return fmt.Errorf("arguments must be a JSON object: %w", err)
				}
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			s, err := ctx.newSession()
			if err != nil {
				return err
			}
			defer s.Close()
			runCtx := s.With(cmd.Context())

			mgrs, err := tools.NewManagers(cfg, remote)
			if err != nil {
				return err
			}
			defer tools.CloseAll(mgrs)
			runner, err := tools.NewRunner(runCtx, mgrs)
			if err != nil {
				return err
			}
			out, err := runner.Run(runCtx, args[0], in)
			if err != nil {
				var toolErr *tools.ToolError
				if errors.As(err, &toolErr) {
					return fmt.Errorf("%s failed: %w", args[0], toolErr.Unwrap())
				}
				return err
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "Call the tool on a configured remote MCP server")
	return cmd
}

func newToolsCommand(ctx *commandContext) *cobra.Command {
	var (
		remote string
		schema bool
	)
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mgrs, err := tools.NewManagers(cfg, remote)
			if err != nil {
				return err
			}
			defer tools.CloseAll(mgrs)
			runner, err := tools.NewRunner(cmd.Context(), mgrs)
			if err != nil {
				return err
			}
			defs := runner.Defs()
			if schema {
				type toolSchema struct {
					Name        string `json:"name"`
					Description string `json:"description"`
					Request     any    `json:"request"`
					Response    any    `json:"response,omitempty"`
				}
				out := make([]toolSchema, 0, len(defs))
				for _, d := range defs {
					ts := toolSchema{
						Name:        d.Name(),
						Description: d.Description(),
						Request:     d.RequestSchema(),
					}
					if rs := d.ResponseSchema(); rs != nil {
						ts.Response = rs
					}
					out = append(out, ts)
				}
				return writeJSON(cmd, out)
			}
			rows := make([][]string, 0, len(defs))
			for _, d := range defs {
				rows = append(rows, []string{d.Name(), d.Description()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tool", "Description"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "List the tools of a configured remote MCP server")
	cmd.Flags().BoolVar(&schema, "schema", false, "Print the request and response JSON schemas")
	return cmd
}
