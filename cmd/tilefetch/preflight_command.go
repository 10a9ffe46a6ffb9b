package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tilefetch/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check the environment before a batch run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, result := range results {
				mark := "ok"
				if !result.Passed {
					mark = "FAIL"
					failed++
				}
				rows = append(rows, []string{result.Name, mark, result.Detail})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]col{{title: "Check"}, {title: "Status"}, {title: "Detail"}},
				rows,
			))
			if failed > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failed)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
