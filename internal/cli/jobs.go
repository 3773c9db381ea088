package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewJobsCmd создаёт группу команд для просмотра заданий.
func NewJobsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the job queue",
	}

	cmd.AddCommand(
		newJobsListCmd(clientFn, outputFn),
		newJobsShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newJobsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			jobs, err := client.ListJobs(ListJobsOpts{Status: status, Limit: limit})
			if err != nil {
				return err
			}

			headers := []string{"ID", "TYPE", "STATUS", "PRIORITY", "CREATED", "ERROR"}
			rows := make([][]string, len(jobs))
			for i, j := range jobs {
				rows[i] = []string{j.ID, j.Type, j.Status, strconv.Itoa(j.Priority), j.CreatedAt, j.Error}
			}

			out.Print(headers, rows, jobs)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, processing, completed, failed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of jobs")

	return cmd
}

func newJobsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show job details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.GetJob(args[0])
			if err != nil {
				return err
			}

			// Детали задания всегда в JSON: payload и result — вложенные объекты.
			out.JSON(job)
			return nil
		},
	}
}
