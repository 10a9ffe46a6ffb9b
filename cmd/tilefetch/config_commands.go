package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tilefetch/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolvedPath, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolvedPath)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}

			rows := [][]string{
				{"paths.grid_path", cfg.Paths.GridPath},
				{"paths.grid_name_property", cfg.Paths.GridNameProperty},
				{"paths.output_dir", cfg.Paths.OutputDir},
				{"paths.scratch_dir", cfg.Paths.ScratchDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"portal.url", cfg.Portal.URL},
				{"portal.product", cfg.Portal.Product},
				{"portal.year", cfg.Portal.Year},
				{"portal.step_timeout", fmt.Sprintf("%ds", cfg.Portal.StepTimeout)},
				{"portal.headless", yesNo(cfg.Portal.Headless)},
				{"download.timeout", fmt.Sprintf("%ds", cfg.Download.Timeout)},
				{"retry.max_attempts", fmt.Sprintf("%d", cfg.Retry.MaxAttempts)},
				{"retry.cooldown_seconds", fmt.Sprintf("%d", cfg.Retry.CooldownSeconds)},
				{"geometry.vertex_limit", fmt.Sprintf("%d", cfg.Geometry.VertexLimit)},
				{"geometry.expand_neighbors", yesNo(cfg.Geometry.ExpandNeighbors)},
				{"conversion.enabled", yesNo(cfg.Conversion.Enabled)},
				{"conversion.gdal_binary", cfg.Conversion.GDALBinary},
				{"logging.level", cfg.Logging.Level},
				{"logging.format", cfg.Logging.Format},
			}
			fmt.Fprintln(out, renderTable(
				[]col{{title: "Setting"}, {title: "Value"}},
				rows,
			))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if overwrite {
				if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove existing config: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point paths.grid_path at your tile index before fetching.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}
