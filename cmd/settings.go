package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type declareCmd struct {
	ticker   string
	currency string
}

func (*declareCmd) Name() string     { return "declare" }
func (*declareCmd) Synopsis() string { return "declare the trading currency of a ticker" }
func (*declareCmd) Usage() string {
	return `folioctl declare -s <ticker> -c <currency>

  Maps a ticker to its trading currency so prices can be converted into the
  display currency. An undeclared ticker is assumed to trade in the display
  currency.
`
}

func (p *declareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.ticker, "s", "", "Security ticker.")
	f.StringVar(&p.currency, "c", "", "ISO 4217 currency code, e.g. USD.")
}

func (p *declareCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.ticker == "" || len(p.currency) != 3 {
		fmt.Fprintln(os.Stderr, "Error: -s and a 3-letter -c are required.")
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	currency := strings.ToUpper(p.currency)
	if err := a.Store.UpsertSecurity(ctx, p.ticker, currency); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Declared %s trading in %s.\n", p.ticker, currency)
	return subcommands.ExitSuccess
}

type currencyCmd struct {
	user     string
	currency string
}

func (*currencyCmd) Name() string     { return "currency" }
func (*currencyCmd) Synopsis() string { return "set the display currency of a user" }
func (*currencyCmd) Usage() string {
	return `folioctl currency -u <user> -c <currency>

  Sets the currency all reports and stored amounts are expressed in for this
  user.
`
}

func (p *currencyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.user, "u", "", "User owning the ledger.")
	f.StringVar(&p.currency, "c", "", "ISO 4217 currency code, e.g. EUR.")
}

func (p *currencyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.user == "" || len(p.currency) != 3 {
		fmt.Fprintln(os.Stderr, "Error: -u and a 3-letter -c are required.")
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	currency := strings.ToUpper(p.currency)
	if err := a.Store.SetDisplayCurrency(ctx, p.user, currency); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Display currency of %s set to %s.\n", p.user, currency)
	return subcommands.ExitSuccess
}
