package main

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/urfave/cli/v3"
)

//go:embed example_config.toml
var exampleConfig string

func exampleConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "example-config",
		Usage: "show an annotated scopeq.toml",
		Description: "Print a configuration file with every key set and explained.\n\n" +
			"Examples:\n" +
			"  scopeq example-config                # show the example\n" +
			"  scopeq example-config > scopeq.toml  # start a config from it",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Print(exampleConfig)
			return nil
		},
	}
}
