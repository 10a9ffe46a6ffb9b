package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tilefetch/internal/runstore"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recorded tile acquisitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := runstore.Open(cfg.RunDBPath())
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer store.Close()

			jobs, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}
			if statusFlag != "" {
				if !runstore.ValidStatus(runstore.Status(statusFlag)) {
					return fmt.Errorf("unknown status %q", statusFlag)
				}
				jobs = filterJobs(jobs, runstore.Status(statusFlag))
			}

			summary, err := store.Summarize(cmd.Context())
			if err != nil {
				return fmt.Errorf("summarize jobs: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderJobsTable(jobs))
			fmt.Fprintf(out, "Total %d: %d completed, %d partial, %d failed, %d in flight\n",
				summary.Total, summary.Completed, summary.Partial, summary.Failed,
				summary.Pending+summary.Fetching)
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFlag, "status", "", "Only show jobs with this status")
	return cmd
}

func filterJobs(jobs []*runstore.Job, status runstore.Status) []*runstore.Job {
	filtered := make([]*runstore.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Status == status {
			filtered = append(filtered, job)
		}
	}
	return filtered
}

func renderJobsTable(jobs []*runstore.Job) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", job.ID),
			job.Tile,
			job.Product,
			string(job.Status),
			fmt.Sprintf("%d", job.Attempts),
			fmt.Sprintf("%d", job.Downloaded),
			job.UpdatedAt.Local().Format(time.DateTime),
			job.ErrorMessage,
		})
	}
	return renderTable(
		[]col{
			{title: "ID", numeric: true},
			{title: "Tile"},
			{title: "Product"},
			{title: "Status"},
			{title: "Attempts", numeric: true},
			{title: "Files", numeric: true},
			{title: "Updated"},
			{title: "Error"},
		},
		rows,
	)
}
