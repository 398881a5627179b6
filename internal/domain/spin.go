package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrizeClass orders spin prizes from most to least expensive. The
// affordability ladder walks this order downward.
type PrizeClass string

const (
	PrizeJackpot PrizeClass = "jackpot"
	PrizeBig     PrizeClass = "big"
	PrizeSmall   PrizeClass = "small"
	PrizeNoCash  PrizeClass = "no_cash"
)

// SpinDrawMax is the exclusive upper bound of the uniform draw.
// Probability bands are expressed in draw units out of this range.
const SpinDrawMax = 10000

// prizeBand maps the upper bound of a draw interval to a prize class.
// jackpot 0.05%, big 2%, small 20%, everything else no-cash.
type prizeBand struct {
	UpTo  int
	Class PrizeClass
}

var prizeBands = []prizeBand{
	{UpTo: 5, Class: PrizeJackpot},
	{UpTo: 205, Class: PrizeBig},
	{UpTo: 2205, Class: PrizeSmall},
	{UpTo: SpinDrawMax, Class: PrizeNoCash},
}

// ClassForDraw maps a uniform draw in [1, SpinDrawMax] to its prize
// class via the fixed probability bands.
func ClassForDraw(draw int) PrizeClass {
	for _, b := range prizeBands {
		if draw <= b.UpTo {
			return b.Class
		}
	}

	return PrizeNoCash
}

// NextCheaper returns the next rung down the affordability ladder.
func NextCheaper(c PrizeClass) PrizeClass {
	switch c {
	case PrizeJackpot:
		return PrizeBig
	case PrizeBig:
		return PrizeSmall
	default:
		return PrizeNoCash
	}
}

// CashPrizeTable is the per-tier USDT amount of each cash prize class.
type CashPrizeTable struct {
	Jackpot decimal.Decimal
	Big     decimal.Decimal
	Small   decimal.Decimal
}

// Amount returns the cash value of a class, or zero for no-cash.
func (t CashPrizeTable) Amount(c PrizeClass) decimal.Decimal {
	switch c {
	case PrizeJackpot:
		return t.Jackpot
	case PrizeBig:
		return t.Big
	case PrizeSmall:
		return t.Small
	default:
		return decimal.Zero
	}
}

// CoinPrize is one weighted slice of the no-cash prize table.
type CoinPrize struct {
	Coins  int64
	Weight int
}

// DefaultCoinPrizes is the weighted no-cash table. Weights need not
// sum to any particular value.
var DefaultCoinPrizes = []CoinPrize{
	{Coins: 100, Weight: 40},
	{Coins: 250, Weight: 30},
	{Coins: 500, Weight: 20},
	{Coins: 1000, Weight: 10},
}

// PickCoinPrize selects from the weighted table using a uniform draw
// in [0, totalWeight).
func PickCoinPrize(prizes []CoinPrize, draw int) CoinPrize {
	for _, p := range prizes {
		if draw < p.Weight {
			return p
		}
		draw -= p.Weight
	}

	return prizes[len(prizes)-1]
}

// TotalWeight sums the weights of a coin prize table.
func TotalWeight(prizes []CoinPrize) int {
	total := 0
	for _, p := range prizes {
		total += p.Weight
	}

	return total
}

// SpinOutcome records one completed draw.
type SpinOutcome struct {
	ID         string
	UserID     string
	TierName   string
	MonthKey   string
	Draw       int
	DrawnClass PrizeClass
	PaidClass  PrizeClass
	CashAmount decimal.Decimal
	CoinAmount int64
	Locked     bool
	CreatedAt  time.Time
}
