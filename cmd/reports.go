package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/mlarrea/folio"
	"github.com/mlarrea/folio/date"
	"github.com/mlarrea/folio/renderer"
)

// stringList collects the values of a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type snapshotCmd struct {
	user    string
	day     string
	tickers stringList
	people  stringList
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "display the open positions as of a date" }
func (*snapshotCmd) Usage() string {
	return `folioctl snapshot -u <user> [-d <date>] [-t <ticker>]... [-person <holder>]...

  Values every open position at the last known price on or before the date,
  in the user's display currency. Defaults to today. Repeatable -t and
  -person flags restrict the snapshot to those tickers or holders.
`
}

func (p *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.user, "u", "", "User owning the ledger.")
	f.StringVar(&p.day, "d", "", "Date of the snapshot. Defaults to today.")
	f.Var(&p.tickers, "t", "Restrict to this ticker. Repeatable.")
	f.Var(&p.people, "person", "Restrict to this holder. Repeatable.")
}

func (p *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var on date.Date
	if p.day != "" {
		var err error
		if on, err = date.Parse(p.day); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	views, err := a.System.Snapshot(ctx, p.user, on, folio.ReportFilter{
		Tickers: p.tickers,
		People:  p.people,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if on.IsZero() {
		on = date.Today()
	}
	printMarkdown(renderer.Snapshot(on, views))
	return subcommands.ExitSuccess
}

type historyCmd struct {
	user    string
	start   string
	end     string
	tickers stringList
	people  stringList
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the portfolio value day by day" }
func (*historyCmd) Usage() string {
	return `folioctl history -u <user> -s <start_date> [-e <end_date>] [-t <ticker>]... [-person <holder>]...

  Reconstructs the portfolio over the range from the ledger and the cached
  market data: daily market value, cost basis, profit and loss, and
  cumulative dividends. Repeatable -t and -person flags restrict the series
  to those tickers or holders.
`
}

func (p *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.user, "u", "", "User owning the ledger.")
	f.StringVar(&p.start, "s", "", "Start date of the series.")
	f.StringVar(&p.end, "e", date.Today().String(), "End date of the series. Defaults to today.")
	f.Var(&p.tickers, "t", "Restrict to this ticker. Repeatable.")
	f.Var(&p.people, "person", "Restrict to this holder. Repeatable.")
}

func (p *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := date.Parse(p.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := date.Parse(p.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	points, err := a.System.History(ctx, p.user, date.Range{From: from, To: to}, folio.ReportFilter{
		Tickers: p.tickers,
		People:  p.people,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.History(points))
	return subcommands.ExitSuccess
}
