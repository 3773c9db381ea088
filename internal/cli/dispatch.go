package cli

import (
	"github.com/spf13/cobra"
)

// NewDispatchCmd создаёт группу команд для управления диспетчеризацией.
func NewDispatchCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Control the dispatcher",
	}

	cmd.AddCommand(
		newDispatchStatusCmd(clientFn, outputFn),
		newDispatchPauseCmd(clientFn, outputFn),
		newDispatchResumeCmd(clientFn, outputFn),
		newDispatchTickCmd(clientFn, outputFn),
	)

	return cmd
}

func printDispatchState(out *Output, state *DispatchStateResponse) {
	text := "paused"
	if state.Enabled {
		text = "running"
	}
	out.Print([]string{"DISPATCH"}, [][]string{{text}}, state)
}

func newDispatchStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show dispatch state",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := clientFn().GetDispatchState()
			if err != nil {
				return err
			}
			printDispatchState(outputFn(), state)
			return nil
		},
	}
}

func newDispatchPauseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause dispatching (running jobs finish, new slots are not dispatched)",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := clientFn().PauseDispatch()
			if err != nil {
				return err
			}
			out := outputFn()
			out.Success("Dispatch paused")
			printDispatchState(out, state)
			return nil
		},
	}
}

func newDispatchResumeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume dispatching",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := clientFn().ResumeDispatch()
			if err != nil {
				return err
			}
			out := outputFn()
			out.Success("Dispatch resumed")
			printDispatchState(out, state)
			return nil
		},
	}
}

func newDispatchTickCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Request an immediate dispatcher tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().TriggerTick(); err != nil {
				return err
			}
			outputFn().Success("Tick requested")
			return nil
		},
	}
}
