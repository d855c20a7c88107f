// rmqlink — инструмент командной строки для endpoint'ов RabbitMQ.
//
// Использование:
//
//	rmqlink [--config FILE] [--api-url URL] [--json] <command> [flags]
//
// Команды:
//
//	parse     Разобрать определения без подключения
//	check     Подключить все endpoint'ы и показать состояние
//	connect   Подключить один endpoint
//	endpoint  Управление endpoint'ами работающего агента
//	binding   Разрешение именованных ссылок агента
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/rmqlink/internal/broker"
	"github.com/shaiso/rmqlink/internal/cli"
	"github.com/shaiso/rmqlink/internal/config"
	"github.com/shaiso/rmqlink/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL, configPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "rmqlink",
		Short:         "rmqlink — RabbitMQ endpoint manager",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8084", "Agent API URL")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("RMQLINK_CONFIG"), "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	loadFn := func(defs []string) (*broker.Manager, error) {
		cfg, err := config.Load(configPath, config.WithEndpoints(defs))
		if err != nil {
			return nil, err
		}
		return broker.FromConfig(cfg, nil, telemetry.NewLogger(os.Stderr))
	}

	rootCmd.AddCommand(
		cli.NewParseCmd(loadFn, outputFn),
		cli.NewCheckCmd(loadFn, outputFn),
		cli.NewConnectCmd(loadFn, outputFn),
		cli.NewEndpointCmd(clientFn, outputFn),
		cli.NewBindingCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
