// Tickwork CLI — инструмент командной строки для управления
// воркерами tickwork-host через HTTP API.
//
// Использование:
//
//	tickwork [--api-url URL] [--json] <command> [subcommand] [flags]
//
// Команды:
//
//	worker     Управление воркерами
//	providers  Список провайдеров процессоров
//	timeline   Запланированные пробуждения
//	journal    Журнал запусков
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Tickwork/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "tickwork",
		Short:         "Tickwork CLI — worker wake scheduler control",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "Host API URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewWorkerCmd(clientFn, outputFn),
		cli.NewProviderCmd(clientFn, outputFn),
		cli.NewTimelineCmd(clientFn, outputFn),
		cli.NewJournalCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
