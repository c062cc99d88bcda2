package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote holds the effective price and discount visibility of a product at a
// single instant. DiscountExpiry is set only while the discount is active so
// callers cannot observe a stale window, and DiscountPercent is zero outside
// the window even though the stored percentage is retained for reactivation.
type Quote struct {
	FinalPrice      decimal.Decimal
	DiscountActive  bool
	DiscountExpiry  *time.Time
	DiscountPercent decimal.Decimal
}

// PriceAt computes the pricing quote for the given stored discount fields at
// the instant now. It is a pure function: a discount is active iff the
// percentage is positive, both window bounds are set, and now falls within
// [start, end] inclusive at both edges. All comparisons are made on UTC
// instants so results do not depend on the server's local offset.
func PriceAt(price, discountPct decimal.Decimal, start, end *time.Time, now time.Time) Quote {
	if !discountActive(discountPct, start, end, now) {
		return Quote{
			FinalPrice:      price,
			DiscountPercent: decimal.Zero,
		}
	}

	final := price.Mul(hundred.Sub(discountPct)).Div(hundred).Round(2)
	if final.IsNegative() {
		final = decimal.Zero
	}

	expiry := end.UTC()
	return Quote{
		FinalPrice:      final,
		DiscountActive:  true,
		DiscountExpiry:  &expiry,
		DiscountPercent: discountPct,
	}
}

// QuoteAt computes the pricing quote for a product at the instant now.
func (p *Product) QuoteAt(now time.Time) Quote {
	return PriceAt(p.Price, p.DiscountPercentage, p.DiscountStart, p.DiscountEnd, now)
}

func discountActive(pct decimal.Decimal, start, end *time.Time, now time.Time) bool {
	if !pct.IsPositive() {
		return false
	}
	if start == nil || end == nil {
		return false
	}
	n := now.UTC()
	s := start.UTC()
	e := end.UTC()
	return !n.Before(s) && !n.After(e)
}
