// Package renderer turns valuation results into markdown reports.
package renderer

import (
	"fmt"
	"strings"

	"github.com/mlarrea/folio"
	"github.com/mlarrea/folio/date"
)

// Snapshot renders a point-in-time portfolio snapshot as a markdown table.
// Positions priced at their own cost basis are marked with an asterisk.
func Snapshot(on date.Date, views []folio.PositionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio on %s\n\n", on)
	if len(views) == 0 {
		fmt.Fprintln(&b, "No open position.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Ticker | Quantity | Avg Price | Price | Exposure | P&L | Perf | Since |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|:---|")

	total := folio.Money{}
	pnl := folio.Money{}
	degraded := false
	for _, v := range views {
		mark := ""
		if !v.IsLivePrice {
			mark = " *"
			degraded = true
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s%s | %s | %s | %s | %s |\n",
			v.Ticker,
			v.Quantity,
			v.AvgPrice,
			v.CurrentPrice, mark,
			v.TotalExposure,
			v.ProfitLoss.SignedString(),
			v.PerformancePct.SignedString(),
			v.AvgDate,
		)
		total = total.Add(v.TotalExposure)
		pnl = pnl.Add(v.ProfitLoss)
	}
	fmt.Fprintf(&b, "| **Total** | | | | %s | %s | | |\n", total, pnl.SignedString())
	if degraded {
		fmt.Fprintln(&b, "\n\\* no market price available, valued at cost.")
	}
	return b.String()
}

// History renders a daily portfolio series as a markdown table. Days valued
// with at least one cost-basis fallback are marked with an asterisk.
func History(points []folio.DailyPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio History\n\n")
	if len(points) == 0 {
		fmt.Fprintln(&b, "No data in range.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Date | Market Value | Cost Basis | P&L | Dividends |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")

	degraded := false
	for _, p := range points {
		mark := ""
		if p.DegradedValue {
			mark = " *"
			degraded = true
		}
		fmt.Fprintf(&b, "| %s | %s%s | %s | %s | %s |\n",
			p.On,
			p.MarketValue, mark,
			p.CostBasis,
			p.ProfitLoss.SignedString(),
			p.Dividends,
		)
	}
	if degraded {
		fmt.Fprintln(&b, "\n\\* at least one position valued at cost that day.")
	}
	return b.String()
}

// Transaction renders the stored rows of one transaction as a markdown
// table, in canonical order.
func Transaction(records []folio.Record) string {
	var b strings.Builder
	if len(records) == 0 {
		return ""
	}
	fmt.Fprintf(&b, "# Transaction %d\n\n", records[0].TransactionID)
	fmt.Fprintln(&b, "| Date | Ticker | Holder | Category | Shares | Price | Effective | Outlay | Avg Price |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|---:|---:|")
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.On, r.Ticker, r.Person, r.Category,
			r.SharesCount, r.PricePerShare, r.EffectivePrice,
			r.TotalOutlay.SignedString(), r.AvgPrice,
		)
	}
	return b.String()
}
