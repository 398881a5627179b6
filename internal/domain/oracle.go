package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OracleResult is a validated BTC price consensus. Median is true only
// when more than one source contributed, i.e. the price actually is a
// multi-source median.
type OracleResult struct {
	Price     decimal.Decimal
	Change24h decimal.Decimal
	Sources   []string
	Median    bool
	FetchedAt time.Time
}

// MedianPrice computes the median of the given prices. For an even
// count it averages the two middle values. The input slice must be
// sorted ascending and non-empty.
func MedianPrice(sorted []decimal.Decimal) decimal.Decimal {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}

	two := decimal.NewFromInt(2)

	return sorted[n/2-1].Add(sorted[n/2]).Div(two)
}
