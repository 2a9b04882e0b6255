package folio

import (
	"github.com/shopspring/decimal"

	"github.com/mlarrea/folio/date"
)

// lot represents a single purchase of a security, kept for FIFO lot aging.
type lot struct {
	Date     date.Date
	Quantity Quantity
}

type lots []lot

// buy appends a new lot in arrival order. Non-positive quantities are skipped.
func (l lots) buy(on date.Date, quantity Quantity) lots {
	if !quantity.IsPositive() {
		return l
	}
	return append(l, lot{Date: on, Quantity: quantity})
}

// sell reduces the available lots by a given quantity using the FIFO method:
// the oldest lot is consumed first, a partially consumed lot stays at the
// front with its remaining quantity.
func (l lots) sell(quantityToSell Quantity) lots {
	var remainingLots lots

	for _, currentLot := range l {
		if quantityToSell.IsZero() {
			remainingLots = append(remainingLots, currentLot)
			continue
		}

		if currentLot.Quantity.GreaterThan(quantityToSell) {
			// Partial sale from this lot
			newLot := lot{
				Date:     currentLot.Date,
				Quantity: currentLot.Quantity.Sub(quantityToSell),
			}
			remainingLots = append(remainingLots, newLot)
			quantityToSell = Q(decimal.Zero)
		} else {
			// Full sale of this lot
			quantityToSell = quantityToSell.Sub(currentLot.Quantity)
		}
	}
	return remainingLots
}

// averageDate returns the quantity-weighted average acquisition date across
// all remaining lots, or nil when no lots remain.
func (l lots) averageDate() *date.Date {
	var totalQuantity Quantity
	weighted := decimal.Zero
	for _, currentLot := range l {
		epoch := decimal.NewFromInt(currentLot.Date.Unix())
		weighted = weighted.Add(epoch.Mul(currentLot.Quantity.Decimal()))
		totalQuantity = totalQuantity.Add(currentLot.Quantity)
	}
	if !totalQuantity.IsPositive() {
		return nil
	}
	avg := date.FromUnix(weighted.Div(totalQuantity.Decimal()).IntPart())
	return &avg
}
