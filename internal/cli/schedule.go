package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewScheduleCmd создаёт группу команд для работы с расписанием.
func NewScheduleCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and regenerate the daily schedule",
	}

	cmd.AddCommand(
		newScheduleShowCmd(clientFn, outputFn),
		newScheduleRegenerateCmd(clientFn, outputFn),
	)

	return cmd
}

func scheduleRows(sched *ScheduleResponse, all bool) ([]string, [][]string) {
	headers := []string{"START", "END", "ACTIVITY", "STATUS", "PRIORITY"}

	var rows [][]string
	for _, slot := range sched.Slots {
		// По умолчанию прячем idle слоты, их большинство.
		if !all && slot.Activity == "idle" {
			continue
		}
		rows = append(rows, []string{
			slot.StartTime, slot.EndTime, slot.Activity, slot.Status, strconv.Itoa(slot.Priority),
		})
	}
	return headers, rows
}

func newScheduleShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var date string
	var all bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the schedule for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			sched, err := client.GetSchedule(date)
			if err != nil {
				return err
			}

			headers, rows := scheduleRows(sched, all)
			out.Print(headers, rows, sched)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&all, "all", false, "Include idle slots")

	return cmd
}

func newScheduleRegenerateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Regenerate today's schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			sched, err := client.RegenerateSchedule(full)
			if err != nil {
				return err
			}

			out.Success("Schedule regenerated")
			headers, rows := scheduleRows(sched, false)
			out.Print(headers, rows, sched)
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Rebuild all slots, including completed ones")

	return cmd
}
