// Vigil CLI — инструмент командной строки для запуска scrape-задач
// и наблюдения за ними через HTTP API.
//
// Использование:
//
//	vigil [--api-url URL] [--json] scrape <subcommand> [flags]
//
// Команды:
//
//	scrape start   Запустить scrape-задачу
//	scrape status  Показать состояние задачи
//	scrape logs    Стримить лог задачи до завершения
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Vigil/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "vigil",
		Short:         "Vigil CLI — DULMS deadline scraper",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8000", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewScrapeCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
