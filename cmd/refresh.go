package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	cronrunner "github.com/mlarrea/folio/internal/cron"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch and cache market data for all held tickers" }
func (*refreshCmd) Usage() string {
	return `folioctl refresh

  Pulls daily closes, dividends and FX rates for every ticker in the ledger,
  resuming each symbol from its last cached date. Symbols that fail are
  reported but do not abort the refresh.
`
}

func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (p *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.System.RefreshMarketData(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Refresh incomplete:\n%v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Market data refreshed.")
	return subcommands.ExitSuccess
}

type refreshdCmd struct{}

func (*refreshdCmd) Name() string     { return "refreshd" }
func (*refreshdCmd) Synopsis() string { return "run the market data refresh on a schedule" }
func (*refreshdCmd) Usage() string {
	return `folioctl refreshd

  Runs the market data refresh on the cron.refresh schedule until
  interrupted.
`
}

func (*refreshdCmd) SetFlags(*flag.FlagSet) {}

func (p *refreshdCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if !a.Config.Cron.Enabled {
		fmt.Fprintln(os.Stderr, "Error: cron is disabled in the configuration.")
		return subcommands.ExitFailure
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := cronrunner.New(a.System.Log, ctx)
	if _, err := runner.Add(a.Config.Cron.Refresh, func(ctx context.Context) {
		if err := a.System.RefreshMarketData(ctx); err != nil {
			a.System.Log.Warn("scheduled refresh incomplete", zap.Error(err))
		}
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error scheduling refresh %q: %v\n", a.Config.Cron.Refresh, err)
		return subcommands.ExitFailure
	}

	runner.Start()
	<-ctx.Done()
	runner.Stop()
	return subcommands.ExitSuccess
}
