package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mlarrea/folio"
	"github.com/mlarrea/folio/date"
	"github.com/mlarrea/folio/renderer"
)

// holderFlags accumulates repeated -holder name=quantity flags.
type holderFlags map[string]folio.Quantity

func (h holderFlags) String() string { return fmt.Sprintf("%v", map[string]folio.Quantity(h)) }

func (h holderFlags) Set(value string) error {
	name, qty, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected name=quantity, got %q", value)
	}
	d, err := decimal.NewFromString(qty)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", qty, err)
	}
	h[strings.TrimSpace(name)] = folio.Q(d)
	return nil
}

// submitCmd carries the flags shared by buy and sell.
type submitCmd struct {
	side folio.Category

	user    string
	ticker  string
	day     string
	person  string
	shares  float64
	price   float64
	fees    float64
	taxes   float64
	fx      float64
	holders holderFlags
}

func (p *submitCmd) SetFlags(f *flag.FlagSet) {
	p.holders = make(holderFlags)
	f.StringVar(&p.user, "u", "", "User owning the ledger.")
	f.StringVar(&p.ticker, "s", "", "Security ticker.")
	f.StringVar(&p.day, "d", date.Today().String(), "Date of the operation.")
	f.StringVar(&p.person, "holder-name", "", "Single holder receiving all shares.")
	f.Float64Var(&p.shares, "q", 0, "Total number of shares.")
	f.Float64Var(&p.price, "p", 0, "Price per share, in the asset currency.")
	f.Float64Var(&p.fees, "fees", 0, "Total fees, in the display currency.")
	f.Float64Var(&p.taxes, "taxes", 0, "Total taxes, in the display currency.")
	f.Float64Var(&p.fx, "fx", 0, "Conversion rate to the display currency. 0 means resolve automatically.")
	f.Var(p.holders, "holder", "Repeatable holder=quantity allocation. Overrides -holder-name.")
}

func (p *submitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(p.day)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	display := a.System.Currency.DisplayCurrency(ctx, p.user)
	asset := a.System.Currency.AssetCurrency(ctx, p.ticker, display)

	req := folio.SubmitRequest{
		UserID:        p.user,
		Ticker:        p.ticker,
		On:            on,
		Side:          p.side,
		TotalShares:   folio.Q(p.shares),
		PricePerShare: folio.M(p.price, asset),
		Fees:          folio.M(p.fees, display),
		Taxes:         folio.M(p.taxes, display),
		Holders:       p.holders,
		Person:        p.person,
	}
	if p.fx != 0 {
		req.FXRate = decimal.NewFromFloat(p.fx)
	}

	records, err := a.System.SubmitTransaction(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.Transaction(records))
	return subcommands.ExitSuccess
}

type buyCmd struct{ submitCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase of shares" }
func (*buyCmd) Usage() string {
	return `folioctl buy -u <user> -s <ticker> -q <shares> -p <price> [-d <date>] [-fees <amount>] [-taxes <amount>] [-fx <rate>] (-holder-name <name> | -holder <name>=<qty> ...)

  Records a buy, optionally split across several holders. Fees and taxes are
  amortized proportionally into each holder's effective price.
`
}

func (p *buyCmd) SetFlags(f *flag.FlagSet) {
	p.side = folio.CategoryBuy
	p.submitCmd.SetFlags(f)
}

type sellCmd struct{ submitCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale of shares" }
func (*sellCmd) Usage() string {
	return `folioctl sell -u <user> -s <ticker> -q <shares> -p <price> [-d <date>] [-fees <amount>] [-taxes <amount>] [-fx <rate>] (-holder-name <name> | -holder <name>=<qty> ...)

  Records a sale, optionally split across several holders. Each holder also
  gets a realized profit or loss row computed against their average cost.
`
}

func (p *sellCmd) SetFlags(f *flag.FlagSet) {
	p.side = folio.CategorySell
	p.submitCmd.SetFlags(f)
}

type deleteCmd struct {
	user string
	txID int64
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a transaction and recompute the affected positions" }
func (*deleteCmd) Usage() string {
	return `folioctl delete -u <user> -t <transaction_id>

  Removes every row of the transaction and replays the affected positions so
  the remaining rows stay consistent.
`
}

func (p *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.user, "u", "", "User owning the ledger.")
	f.Int64Var(&p.txID, "t", 0, "Transaction id to delete.")
}

func (p *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.txID == 0 {
		fmt.Fprintln(os.Stderr, "Error: -t is required.")
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.System.DeleteTransaction(ctx, p.user, p.txID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Transaction %d deleted.\n", p.txID)
	return subcommands.ExitSuccess
}
