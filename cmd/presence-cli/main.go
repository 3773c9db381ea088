// Presence CLI — инструмент командной строки для управления
// распределением активностей, расписанием и сессиями через HTTP API.
//
// Использование:
//
//	presence [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	distribution  Веса и включённость активностей
//	schedule      Суточное расписание
//	jobs          Очередь заданий
//	dispatch      Управление диспетчеризацией
//	session       Браузерные сессии
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Presence/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "presence",
		Short:         "Presence CLI — social engagement automation tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewDistributionCmd(clientFn, outputFn),
		cli.NewScheduleCmd(clientFn, outputFn),
		cli.NewJobsCmd(clientFn, outputFn),
		cli.NewDispatchCmd(clientFn, outputFn),
		cli.NewSessionCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
