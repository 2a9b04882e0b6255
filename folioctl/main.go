// Command folioctl manages a multi-holder investment ledger: it records
// buys and sells, reconstructs positions and renders valuation reports.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/mlarrea/folio/cmd"
)

func main() {
	// Shell completion, active only when invoked by the completion hooks.
	completion := &complete.Command{
		Sub: map[string]*complete.Command{
			"buy":      {},
			"sell":     {},
			"delete":   {},
			"snapshot": {},
			"history":  {},
			"refresh":  {},
			"refreshd": {},
			"declare":  {},
			"currency": {},
		},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
		},
	}
	completion.Complete("folioctl")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
