package folio

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mlarrea/folio/date"
)

// SubmitRequest is one logical transaction as entered by a user: a single
// economic event, possibly owned by several holders in given proportions.
//
// PricePerShare is quoted in the asset's trading currency; FXRate converts
// it into the holder's display currency (1 when both match). Fees and taxes
// are totals in the display currency, split proportionally across holders.
type SubmitRequest struct {
	UserID        string
	Ticker        string
	On            date.Date
	Side          Category // CategoryBuy or CategorySell
	TotalShares   Quantity
	PricePerShare Money
	Fees          Money
	Taxes         Money
	FXRate        decimal.Decimal
	Holders       map[string]Quantity // holder -> allocated shares; empty means Person gets all
	Person        string
}

// WACFunc resolves the weighted average cost of a (ticker,person) scope as
// of a date. The allocator uses it to price the cost of sold shares.
type WACFunc func(ticker, person string, on date.Date) Money

// Allocate splits one logical transaction into one real-trade record per
// holder with a positive share allocation, plus, for sells, one synthetic
// realized-gain row per holder. Holders with zero or negative shares are
// skipped. The share count summed across holders must not be zero and, when
// the request also carries a TotalShares, must match it.
func Allocate(req SubmitRequest, transactionID int64, displayCurrency string, wacOf WACFunc) ([]Record, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	ticker := NormalizeTicker(req.Ticker)
	holders := req.holders()

	totalShares := Q(0)
	for _, qty := range holders {
		totalShares = totalShares.Add(qty)
	}
	if totalShares.IsZero() {
		return nil, ErrInvalidAllocation
	}
	if len(req.Holders) > 0 && !req.TotalShares.IsZero() {
		if totalShares.Sub(req.TotalShares).Decimal().Abs().GreaterThan(residualTolerance.Decimal()) {
			return nil, validationf("holder shares sum to %s, want the total of %s", totalShares, req.TotalShares)
		}
	}

	rate := req.FXRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	priceDisplay := req.PricePerShare.MulRate(rate, displayCurrency)

	records := make([]Record, 0, 2*len(holders))
	for _, person := range sortedKeys(holders) {
		qty := holders[person]
		if !qty.IsPositive() {
			continue
		}
		ratio := qty.Div(totalShares)
		fees := req.Fees.Mul(ratio)
		taxes := req.Taxes.Mul(ratio)
		gross := priceDisplay.Mul(qty)

		var effective, outlay Money
		switch req.Side {
		case CategoryBuy:
			costBasis := gross.Add(fees).Add(taxes)
			effective = costBasis.Div(qty)
			outlay = costBasis
		case CategorySell:
			net := gross.Sub(fees).Sub(taxes)
			effective = net.Div(qty)
			outlay = net.Neg()
		}

		records = append(records, Record{
			UserID:         req.UserID,
			Ticker:         ticker,
			On:             req.On,
			Person:         person,
			Category:       req.Side,
			SharesCount:    qty,
			PricePerShare:  priceDisplay,
			EffectivePrice: effective,
			TotalOutlay:    outlay,
			Fees:           fees,
			Taxes:          taxes,
			TransactionID:  transactionID,
		})

		if req.Side == CategorySell {
			wac := wacOf(ticker, person, req.On)
			pnl, category := RealizedGain(wac, qty, priceDisplay, fees, taxes)
			records = append(records, Record{
				UserID:        req.UserID,
				Ticker:        ticker,
				On:            req.On,
				Person:        person,
				Category:      category,
				SharesCount:   qty,
				TotalOutlay:   pnl,
				TransactionID: transactionID,
			})
		}
	}
	return records, nil
}

// holders resolves the holder mapping: an explicit map wins, otherwise the
// single Person receives the full share count.
func (req SubmitRequest) holders() map[string]Quantity {
	if len(req.Holders) > 0 {
		return req.Holders
	}
	return map[string]Quantity{req.Person: req.TotalShares}
}

func (req SubmitRequest) validate() error {
	if req.UserID == "" {
		return validationf("user id is missing")
	}
	if NormalizeTicker(req.Ticker) == "" {
		return validationf("ticker is missing")
	}
	if req.On.IsZero() {
		return validationf("operation date is missing")
	}
	if req.Side != CategoryBuy && req.Side != CategorySell {
		return validationf("side must be %s or %s, got %q", CategoryBuy, CategorySell, req.Side)
	}
	if len(req.Holders) == 0 && req.Person == "" {
		return validationf("holder is missing")
	}
	if req.PricePerShare.IsNegative() {
		return validationf("price per share must not be negative, got %s", req.PricePerShare)
	}
	return nil
}

// sortedKeys yields a deterministic emission order for equal inputs.
func sortedKeys(m map[string]Quantity) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
