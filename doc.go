// Package folio is the valuation engine of a multi-holder investment
// ledger. It reconstructs positions from the complete transaction history
// rather than trusting stored aggregates.
//
// The core functionalities include:
//   - Transaction Allocation: splitting one economic event (a buy or a sell)
//     across several holders, with fees and taxes amortized proportionally
//     into each holder's effective price.
//   - Cost Basis: replaying each (ticker,person) scope in canonical order to
//     materialize the running weighted average cost on every row, with a
//     hard reset when a position is sold down to a residual.
//   - Lot Aging: a FIFO lot queue tracking the quantity-weighted average
//     acquisition date of the open position.
//   - Valuation: point-in-time snapshots and day-by-day historical series in
//     the holder's display currency, with forward-filled prices and FX rates
//     and explicit degradation flags when market data is missing.
//
// Persistence, market data retrieval and the CLI live in separate packages;
// the engine only sees the interfaces declared here, so every computation is
// testable against in-memory fakes.
package folio
