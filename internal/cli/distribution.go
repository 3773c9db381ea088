package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewDistributionCmd создаёт группу команд для управления распределением.
func NewDistributionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Manage activity distribution",
	}

	cmd.AddCommand(
		newDistributionShowCmd(clientFn, outputFn),
		newDistributionSetCmd(clientFn, outputFn),
		newDistributionEnableCmd(clientFn, outputFn, true),
		newDistributionEnableCmd(clientFn, outputFn, false),
	)

	return cmd
}

func distributionRows(dist *DistributionResponse) ([]string, [][]string) {
	headers := []string{"ACTIVITY", "PLATFORM", "WEIGHT", "ENABLED"}
	rows := make([][]string, len(dist.Activities))
	for i, a := range dist.Activities {
		rows[i] = []string{a.Activity, a.Platform, strconv.Itoa(a.Weight), strconv.FormatBool(a.Enabled)}
	}
	return headers, rows
}

func newDistributionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current activity distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			dist, err := client.GetDistribution()
			if err != nil {
				return err
			}

			headers, rows := distributionRows(dist)
			out.Print(headers, rows, dist)
			return nil
		},
	}
}

func newDistributionSetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "set ACTIVITY WEIGHT",
		Short: "Set an activity weight (others are rebalanced to keep the sum at 100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid weight %q", args[1])
			}

			client := clientFn()
			out := outputFn()

			dist, err := client.SetWeight(args[0], weight)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Weight updated: %s = %d", args[0], weight))
			headers, rows := distributionRows(dist)
			out.Print(headers, rows, dist)
			return nil
		},
	}
}

func newDistributionEnableCmd(clientFn func() *Client, outputFn func() *Output, enable bool) *cobra.Command {
	use, short := "enable ACTIVITY", "Enable an activity"
	if !enable {
		use, short = "disable ACTIVITY", "Disable an activity (its slots become idle on regenerate)"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			dist, err := client.SetActivityEnabled(args[0], enable)
			if err != nil {
				return err
			}

			state := "enabled"
			if !enable {
				state = "disabled"
			}
			out.Success(fmt.Sprintf("Activity %s: %s", args[0], state))
			headers, rows := distributionRows(dist)
			out.Print(headers, rows, dist)
			return nil
		},
	}
}
