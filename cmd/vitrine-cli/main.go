// Vitrine CLI — инструмент командной строки для управления
// ротациями и плагинами через HTTP API.
//
// Использование:
//
//	vitrine [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	rotation  Управление ротациями
//	plugin    Управление плагинами в ротациях
//	status    Активная ротация и журнал обновлений
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Vitrine/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "vitrine",
		Short:         "Vitrine CLI — display rotation tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRotationCmd(clientFn, outputFn),
		cli.NewPluginCmd(clientFn, outputFn),
		cli.NewStatusCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
