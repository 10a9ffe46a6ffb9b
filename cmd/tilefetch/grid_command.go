package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tilefetch/internal/tilegrid"
)

func newGridCommand(ctx *commandContext) *cobra.Command {
	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "Tile index utilities",
	}

	gridCmd.AddCommand(newGridInfoCommand(ctx))
	gridCmd.AddCommand(newGridNeighborsCommand(ctx))

	return gridCmd
}

func newGridInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info TILE",
		Short: "Show a tile's footprint summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, err := ctx.loadGrid()
			if err != nil {
				return fmt.Errorf("load tile index: %w", err)
			}

			tile := args[0]
			footprint, err := grid.Footprint(tile)
			if err != nil {
				return err
			}
			neighbors, err := grid.Neighbors(tile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tile:      %s\n", strings.ToUpper(strings.TrimSpace(tile)))
			fmt.Fprintf(out, "Vertices:  %d\n", tilegrid.CountVertices(footprint))
			fmt.Fprintf(out, "Area:      %.0f m²\n", tilegrid.Area(footprint))
			fmt.Fprintf(out, "Neighbors: %d\n", len(neighbors))
			return nil
		},
	}
}

func newGridNeighborsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors TILE",
		Short: "List the tiles touching a tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, err := ctx.loadGrid()
			if err != nil {
				return fmt.Errorf("load tile index: %w", err)
			}

			neighbors, err := grid.Neighbors(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range neighbors {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
